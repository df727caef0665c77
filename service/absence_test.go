package service

import (
	"context"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"attendance-core/models"
	"attendance-core/pkg/apperr"
)

func TestAbsenceSweep_MarksNoShows(t *testing.T) {
	h := newHarness()
	noShow := &models.Employee{
		ID:       primitive.NewObjectID(),
		Name:     "No Show",
		CenterID: h.center.ID,
		Active:   true,
	}
	h.employees.byID[noShow.ID] = noShow

	h.at("08:00")
	if _, err := h.svc.CheckIn(context.Background(), h.center.ID, h.employee.ID, "dev_A"); err != nil {
		t.Fatalf("CheckIn: %v", err)
	}

	// Past end (16:00) plus checkout grace (15).
	h.at("16:20")
	sweeper := NewAbsenceSweeper(h.employees, h.centers, h.attendance, h.clock, h.calendar, h.coordinator)
	marked, err := sweeper.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if marked != 1 {
		t.Fatalf("expected 1 absence, got %d", marked)
	}

	rec, err := h.attendance.FindByEmployeeAndDate(context.Background(), noShow.ID, "2024-06-03")
	if err != nil {
		t.Fatal(err)
	}
	if rec == nil || rec.Status != models.StatusAbsent {
		t.Fatalf("expected absent record for no-show, got %+v", rec)
	}

	// Checked-in employee keeps their record untouched.
	rec, _ = h.attendance.FindByEmployeeAndDate(context.Background(), h.employee.ID, "2024-06-03")
	if rec.Status != models.StatusPresent {
		t.Errorf("present employee must not be swept, got %s", rec.Status)
	}
}

func TestAbsenceSweep_SkipsBeforeClosingTime(t *testing.T) {
	h := newHarness()
	h.at("12:00")

	sweeper := NewAbsenceSweeper(h.employees, h.centers, h.attendance, h.clock, h.calendar, h.coordinator)
	marked, err := sweeper.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if marked != 0 {
		t.Errorf("sweep before closing time must mark nothing, got %d", marked)
	}
}

func TestAbsenceSweep_SkipsNonWorkingDays(t *testing.T) {
	h := newHarness()
	h.calendar.working = false
	h.at("17:00")

	sweeper := NewAbsenceSweeper(h.employees, h.centers, h.attendance, h.clock, h.calendar, h.coordinator)
	marked, err := sweeper.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if marked != 0 {
		t.Errorf("non-working day must mark nothing, got %d", marked)
	}
}

func TestAbsenceSweep_Idempotent(t *testing.T) {
	h := newHarness()
	h.at("16:20")
	sweeper := NewAbsenceSweeper(h.employees, h.centers, h.attendance, h.clock, h.calendar, h.coordinator)

	if _, err := sweeper.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	marked, err := sweeper.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if marked != 0 {
		t.Errorf("second sweep must be a no-op, got %d", marked)
	}
}

func TestAbsenceSweep_AbsentRecordCannotCheckOut(t *testing.T) {
	h := newHarness()
	h.at("16:20")
	sweeper := NewAbsenceSweeper(h.employees, h.centers, h.attendance, h.clock, h.calendar, h.coordinator)
	marked, err := sweeper.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if marked != 1 {
		t.Fatalf("expected 1 absence, got %d", marked)
	}

	h.at("20:00")
	_, err = h.svc.CheckOut(context.Background(), h.center.ID, h.employee.ID, "dev_A")
	if !apperr.IsState(err) {
		t.Fatalf("expected StateError checking out of an absent record, got %v", err)
	}
	if err.Error() != "must check in first" {
		t.Errorf("unexpected message: %q", err.Error())
	}

	rec, _ := h.attendance.FindByEmployeeAndDate(context.Background(), h.employee.ID, "2024-06-03")
	if rec.CheckOut != nil || rec.WorkingHours != 0 || rec.Status != models.StatusAbsent {
		t.Errorf("absent record was mutated by the rejected checkout: %+v", rec)
	}
}
