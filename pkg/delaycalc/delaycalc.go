// Package delaycalc holds the pure lateness arithmetic. Every function is
// deterministic and side-effect free; callers supply trusted time.
package delaycalc

import (
	"fmt"
	"math"
	"time"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// DateString formats t as the calendar-day key used by attendance records.
func DateString(t time.Time) string {
	return t.Format(DateLayout)
}

// At combines day's calendar date with an "15:04" time-of-day into a full
// timestamp in day's location.
func At(day time.Time, hhmm string) (time.Time, error) {
	tod, err := time.Parse(TimeLayout, hhmm)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time of day %q: %w", hhmm, err)
	}
	return time.Date(day.Year(), day.Month(), day.Day(),
		tod.Hour(), tod.Minute(), 0, 0, day.Location()), nil
}

// Delay returns the penalized lateness in whole minutes: minutes past the
// scheduled start, minus the grace window, floored at zero.
func Delay(now time.Time, scheduledStart string, graceMinutes int) (int, error) {
	scheduled, err := At(now, scheduledStart)
	if err != nil {
		return 0, err
	}
	if !now.After(scheduled) {
		return 0, nil
	}
	raw := wholeMinutes(now.Sub(scheduled))
	if raw <= graceMinutes {
		return 0, nil
	}
	return raw - graceMinutes, nil
}

// EarlyDeparture is the mirror of Delay for the scheduled end of day.
func EarlyDeparture(now time.Time, scheduledEnd string, graceMinutes int) (int, error) {
	scheduled, err := At(now, scheduledEnd)
	if err != nil {
		return 0, err
	}
	if !now.Before(scheduled) {
		return 0, nil
	}
	raw := wholeMinutes(scheduled.Sub(now))
	if raw <= graceMinutes {
		return 0, nil
	}
	return raw - graceMinutes, nil
}

// WorkingHours returns the shift length in hours rounded to two decimals,
// never negative.
func WorkingHours(checkIn, checkOut time.Time) float64 {
	minutes := wholeMinutes(checkOut.Sub(checkIn))
	if minutes <= 0 {
		return 0
	}
	return math.Round(float64(minutes)/60*100) / 100
}

func wholeMinutes(d time.Duration) int {
	return int(d / time.Minute)
}
