package delaycalc

import (
	"math"
	"testing"
	"testing/quick"
	"time"
)

func at(t *testing.T, hhmm string) time.Time {
	t.Helper()
	day := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	ts, err := At(day, hhmm)
	if err != nil {
		t.Fatalf("At(%q): %v", hhmm, err)
	}
	return ts
}

func TestDelay_WithinGrace(t *testing.T) {
	// Center starts 08:00 with 15 minutes grace; arriving 08:10 is on time.
	d, err := Delay(at(t, "08:10"), "08:00", 15)
	if err != nil {
		t.Fatal(err)
	}
	if d != 0 {
		t.Errorf("expected 0 delay minutes, got %d", d)
	}
}

func TestDelay_PastGrace(t *testing.T) {
	d, err := Delay(at(t, "08:40"), "08:00", 15)
	if err != nil {
		t.Fatal(err)
	}
	if d != 25 {
		t.Errorf("expected 25 delay minutes, got %d", d)
	}
}

func TestDelay_EarlyArrival(t *testing.T) {
	d, err := Delay(at(t, "07:30"), "08:00", 0)
	if err != nil {
		t.Fatal(err)
	}
	if d != 0 {
		t.Errorf("expected 0 delay for early arrival, got %d", d)
	}
}

func TestDelay_InvalidSchedule(t *testing.T) {
	if _, err := Delay(at(t, "08:00"), "25:99", 0); err == nil {
		t.Error("expected error for malformed schedule time")
	}
}

func TestEarlyDeparture(t *testing.T) {
	cases := []struct {
		name  string
		now   string
		end   string
		grace int
		want  int
	}{
		{"after end", "16:30", "16:00", 15, 0},
		{"within grace", "15:50", "16:00", 15, 0},
		{"past grace", "15:30", "16:00", 15, 15},
		{"no grace", "15:30", "16:00", 0, 30},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := EarlyDeparture(at(t, tc.now), tc.end, tc.grace)
			if err != nil {
				t.Fatal(err)
			}
			if got != tc.want {
				t.Errorf("EarlyDeparture(%s, %s, %d) = %d, want %d",
					tc.now, tc.end, tc.grace, got, tc.want)
			}
		})
	}
}

func TestWorkingHours_FullShift(t *testing.T) {
	// 08:00 to 16:30 is 8.5 hours.
	got := WorkingHours(at(t, "08:00"), at(t, "16:30"))
	if got != 8.5 {
		t.Errorf("expected 8.5 working hours, got %v", got)
	}
}

func TestWorkingHours_Rounding(t *testing.T) {
	// 500 minutes is 8.333... hours, rounds to 8.33.
	in := at(t, "08:00")
	got := WorkingHours(in, in.Add(500*time.Minute))
	if got != 8.33 {
		t.Errorf("expected 8.33, got %v", got)
	}
}

func TestWorkingHours_NeverNegative(t *testing.T) {
	got := WorkingHours(at(t, "16:00"), at(t, "08:00"))
	if got != 0 {
		t.Errorf("expected 0 for inverted interval, got %v", got)
	}
}

// Delay must be monotonically non-decreasing in (now - start), non-increasing
// in grace, and floored at zero. The scheduled start re-anchors to whatever
// day "now" falls on, so the properties only hold within one calendar day;
// the generators are bounded so every sample stays before midnight
// (08:00 + 900 min + 59 min < 24:00).
func TestDelay_Properties(t *testing.T) {
	base := time.Date(2024, 6, 3, 8, 0, 0, 0, time.UTC)

	nonNegative := func(lateMin uint16, grace uint8) bool {
		d, err := Delay(base.Add(time.Duration(lateMin%900)*time.Minute), "08:00", int(grace))
		return err == nil && d >= 0
	}
	if err := quick.Check(nonNegative, nil); err != nil {
		t.Error(err)
	}

	monotonicInLateness := func(lateMin uint16, extra uint8, grace uint8) bool {
		late := int(lateMin % 900)
		more := int(extra % 60)
		d1, err1 := Delay(base.Add(time.Duration(late)*time.Minute), "08:00", int(grace))
		d2, err2 := Delay(base.Add(time.Duration(late+more)*time.Minute), "08:00", int(grace))
		return err1 == nil && err2 == nil && d2 >= d1
	}
	if err := quick.Check(monotonicInLateness, nil); err != nil {
		t.Error(err)
	}

	antitoneInGrace := func(lateMin uint16, grace uint8, moreGrace uint8) bool {
		now := base.Add(time.Duration(lateMin%900) * time.Minute)
		d1, err1 := Delay(now, "08:00", int(grace))
		d2, err2 := Delay(now, "08:00", int(grace)+int(moreGrace))
		return err1 == nil && err2 == nil && d2 <= d1
	}
	if err := quick.Check(antitoneInGrace, nil); err != nil {
		t.Error(err)
	}
}

func TestDelay_CrossesMidnightReanchors(t *testing.T) {
	// 30 hours past an 08:00 start lands on the next day; the schedule
	// re-anchors there and the delay is measured against the new day.
	next := time.Date(2024, 6, 4, 14, 0, 0, 0, time.UTC)
	d, err := Delay(next, "08:00", 0)
	if err != nil {
		t.Fatalf("Delay: %v", err)
	}
	if d != 360 {
		t.Errorf("expected 360 minutes against the re-anchored day, got %d", d)
	}
}

func TestWorkingHours_Property(t *testing.T) {
	in := time.Date(2024, 6, 3, 8, 0, 0, 0, time.UTC)
	prop := func(minutes int16) bool {
		h := WorkingHours(in, in.Add(time.Duration(minutes)*time.Minute))
		if h < 0 {
			return false
		}
		// Rounded to two decimals.
		return math.Abs(h*100-math.Round(h*100)) < 1e-6
	}
	if err := quick.Check(prop, nil); err != nil {
		t.Error(err)
	}
}
