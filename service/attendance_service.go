// Package service drives the check-in/check-out state machine over the
// repositories. Per (employee, day) the states are NONE -> CHECKED_IN ->
// CHECKED_OUT, terminal; security is re-validated on every action rather
// than cached per session.
package service

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"attendance-core/models"
	"attendance-core/pkg/apperr"
	"attendance-core/pkg/delaycalc"
	"attendance-core/pkg/netlocation"
	"attendance-core/repository"
	syncpkg "attendance-core/sync"
)

// TimeSource is the trusted clock; see pkg/trustedtime.
type TimeSource interface {
	Now() time.Time
	Trusted() bool
}

// IdentityResolver resolves the caller's public network identity.
type IdentityResolver interface {
	Resolve(ctx context.Context) string
}

// WorkingDayChecker answers whether the center's schedule applies to a day.
type WorkingDayChecker interface {
	IsWorkingDay(ctx context.Context, center *models.Center, day time.Time) (bool, error)
}

// CommandExecutor runs every local mutation as an optimistic command:
// cache apply and event publish happen immediately, the returned channel
// delivers the authoritative write result after any compensating rollback.
type CommandExecutor interface {
	Execute(ctx context.Context, cmd syncpkg.Command) <-chan error
}

// ActionResult carries what the presentation layer needs to render an
// outcome message.
type ActionResult struct {
	Record                *models.AttendanceRecord
	Status                string
	DelayMinutes          int
	EarlyDepartureMinutes int
	WorkingHours          float64
	TimeTrusted           bool
}

type AttendanceService struct {
	centers    repository.CenterRepository
	attendance repository.AttendanceRepository
	binding    *BindingRegistry
	clock      TimeSource
	resolver   IdentityResolver
	calendar   WorkingDayChecker
	commands   CommandExecutor
}

func NewAttendanceService(
	centers repository.CenterRepository,
	attendance repository.AttendanceRepository,
	binding *BindingRegistry,
	clock TimeSource,
	resolver IdentityResolver,
	calendar WorkingDayChecker,
	commands CommandExecutor,
) *AttendanceService {
	return &AttendanceService{
		centers:    centers,
		attendance: attendance,
		binding:    binding,
		clock:      clock,
		resolver:   resolver,
		calendar:   calendar,
		commands:   commands,
	}
}

// validateAccess runs the security gates shared by both actions: network
// allow-list first, then device binding against the authoritative store.
func (s *AttendanceService) validateAccess(ctx context.Context, centerID, employeeID primitive.ObjectID, deviceID string) (*models.Center, *models.Employee, string, error) {
	center, err := s.centers.FindByID(ctx, centerID)
	if err != nil {
		return nil, nil, "", apperr.Infra("failed to load center", err)
	}
	if center == nil {
		return nil, nil, "", apperr.Statef("center not found")
	}
	if !center.Active {
		return nil, nil, "", apperr.Statef("center is not active")
	}

	identity := s.resolver.Resolve(ctx)
	if !netlocation.IsAuthorized(center, identity) {
		return nil, nil, "", apperr.Securityf("network not authorized: connect to the %s network to continue", center.Name)
	}

	employee, err := s.binding.ValidateAndBind(ctx, employeeID, deviceID)
	if err != nil {
		return nil, nil, "", err
	}
	if employee.CenterID != center.ID {
		return nil, nil, "", apperr.Statef("employee does not belong to this center")
	}

	return center, employee, identity, nil
}

// CheckIn transitions NONE -> CHECKED_IN for (employee, today). Lateness is
// fixed here and never revised afterwards.
func (s *AttendanceService) CheckIn(ctx context.Context, centerID, employeeID primitive.ObjectID, deviceID string) (*ActionResult, error) {
	center, employee, identity, err := s.validateAccess(ctx, centerID, employeeID, deviceID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	today := delaycalc.DateString(now)

	existing, err := s.attendance.FindByEmployeeAndDate(ctx, employee.ID, today)
	if err != nil {
		return nil, apperr.Infra("failed to look up today's record", err)
	}
	if existing != nil {
		return nil, apperr.Statef("already checked in today")
	}

	delay := 0
	workingDay, err := s.calendar.IsWorkingDay(ctx, center, now)
	if err != nil {
		return nil, apperr.Infra("failed to evaluate work calendar", err)
	}
	if workingDay {
		delay, err = delaycalc.Delay(now, center.StartTime, center.CheckInGrace)
		if err != nil {
			return nil, apperr.Infra("invalid center schedule", err)
		}
	}

	status := models.StatusPresent
	if delay > 0 {
		status = models.StatusLate
	}

	record := &models.AttendanceRecord{
		ID:                    primitive.NewObjectID(),
		EmployeeID:            employee.ID,
		CenterID:              center.ID,
		Date:                  today,
		CheckIn:               now,
		Status:                status,
		DelayMinutes:          delay,
		EarlyDepartureMinutes: 0,
		WorkingHours:          0,
		NetworkIdentity:       identity,
		TimeTrusted:           s.clock.Trusted(),
	}

	err = <-s.commands.Execute(ctx, syncpkg.AttendanceInsert(*record, func(ctx context.Context) error {
		_, err := s.attendance.Create(ctx, record)
		return err
	}))
	if errors.Is(err, repository.ErrDuplicateDay) {
		// A concurrent client won the unique (employee_id, date) index.
		return nil, apperr.Statef("already checked in today")
	}
	if err != nil {
		return nil, apperr.Infra("failed to store attendance record", err)
	}

	return &ActionResult{
		Record:       record,
		Status:       status,
		DelayMinutes: delay,
		TimeTrusted:  record.TimeTrusted,
	}, nil
}

// CheckOut transitions CHECKED_IN -> CHECKED_OUT. Status stays whatever
// check-in fixed it to.
func (s *AttendanceService) CheckOut(ctx context.Context, centerID, employeeID primitive.ObjectID, deviceID string) (*ActionResult, error) {
	center, employee, _, err := s.validateAccess(ctx, centerID, employeeID, deviceID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	today := delaycalc.DateString(now)

	record, err := s.attendance.FindByEmployeeAndDate(ctx, employee.ID, today)
	if err != nil {
		return nil, apperr.Infra("failed to look up today's record", err)
	}
	if record == nil {
		return nil, apperr.Statef("must check in first")
	}
	// A sweep-created absence has no check-in and is not checkout-able.
	if record.Status == models.StatusAbsent || record.CheckIn.IsZero() {
		return nil, apperr.Statef("must check in first")
	}
	if record.CheckOut != nil {
		return nil, apperr.Statef("already checked out today")
	}

	early := 0
	workingDay, err := s.calendar.IsWorkingDay(ctx, center, now)
	if err != nil {
		return nil, apperr.Infra("failed to evaluate work calendar", err)
	}
	if workingDay {
		early, err = delaycalc.EarlyDeparture(now, center.EndTime, center.CheckOutGrace)
		if err != nil {
			return nil, apperr.Infra("invalid center schedule", err)
		}
	}
	hours := delaycalc.WorkingHours(record.CheckIn, now)

	before := *record
	checkOut := now
	record.CheckOut = &checkOut
	record.EarlyDepartureMinutes = early
	record.WorkingHours = hours

	err = <-s.commands.Execute(ctx, syncpkg.AttendanceUpdate(before, *record, func(ctx context.Context) error {
		return s.attendance.SetCheckout(ctx, record.ID, checkOut, early, hours)
	}))
	if errors.Is(err, repository.ErrAlreadyCheckedOut) {
		return nil, apperr.Statef("already checked out today")
	}
	if err != nil {
		return nil, apperr.Infra("failed to store checkout", err)
	}

	return &ActionResult{
		Record:                record,
		Status:                record.Status,
		EarlyDepartureMinutes: early,
		WorkingHours:          hours,
		TimeTrusted:           s.clock.Trusted(),
	}, nil
}
