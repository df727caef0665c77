// Package workcalendar decides whether a calendar day is a working day for
// a center: holidays are exempt everywhere, and a center may carry an RRULE
// restricting its working weekdays.
package workcalendar

import (
	"context"
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	"attendance-core/models"
	"attendance-core/pkg/delaycalc"
)

// HolidayLookup answers whether a "2006-01-02" date is a registered holiday.
type HolidayLookup interface {
	IsHoliday(ctx context.Context, date string) (bool, error)
}

// ruleEpoch anchors recurrence expansion; any Monday far enough in the past
// works for the weekly/daily rules centers use.
var ruleEpoch = time.Date(2000, 1, 3, 0, 0, 0, 0, time.UTC)

type Calendar struct {
	holidays HolidayLookup
}

func New(holidays HolidayLookup) *Calendar {
	return &Calendar{holidays: holidays}
}

// IsWorkingDay reports whether day is a working day for center. A center
// without a WorkDays rule works every non-holiday day.
func (c *Calendar) IsWorkingDay(ctx context.Context, center *models.Center, day time.Time) (bool, error) {
	holiday, err := c.holidays.IsHoliday(ctx, delaycalc.DateString(day))
	if err != nil {
		return false, fmt.Errorf("holiday lookup: %w", err)
	}
	if holiday {
		return false, nil
	}
	return MatchesWorkDays(center.WorkDays, day)
}

// MatchesWorkDays checks day against an RRULE like
// "FREQ=WEEKLY;BYDAY=SU,MO,TU,WE,TH". An empty rule matches every day.
func MatchesWorkDays(rule string, day time.Time) (bool, error) {
	if rule == "" {
		return true, nil
	}
	r, err := rrule.StrToRRule(rule)
	if err != nil {
		return false, fmt.Errorf("invalid work_days rule %q: %w", rule, err)
	}
	r.DTStart(ruleEpoch)

	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	occurrences := r.Between(dayStart, dayStart.Add(24*time.Hour-time.Nanosecond), true)
	return len(occurrences) > 0, nil
}
