package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"attendance-core/models"
	"attendance-core/pkg/apperr"
	"attendance-core/repository"
	syncpkg "attendance-core/sync"
)

// NewDeviceIdentity mints a fresh device identifier for clients that have
// none persisted yet. The value lives in the client's storage from then on.
func NewDeviceIdentity() string {
	return "dev_" + uuid.NewString()
}

// BindingRegistry enforces the one-to-one relation between a persistent
// device identifier and an active employee. The partial unique index on
// employees.device_id is the real gate; everything here only shapes the
// errors.
type BindingRegistry struct {
	employees repository.EmployeeRepository
	commands  CommandExecutor
}

func NewBindingRegistry(employees repository.EmployeeRepository, commands CommandExecutor) *BindingRegistry {
	return &BindingRegistry{employees: employees, commands: commands}
}

// ValidateAndBind re-reads the employee from the authoritative store, checks
// the binding, and claims the device for an unbound employee. Returns the
// fresh employee record on success.
func (b *BindingRegistry) ValidateAndBind(ctx context.Context, employeeID primitive.ObjectID, deviceID string) (*models.Employee, error) {
	employee, err := b.employees.FindByID(ctx, employeeID)
	if err != nil {
		return nil, apperr.Infra("failed to load employee", err)
	}
	if employee == nil {
		return nil, apperr.Statef("employee not found")
	}
	if !employee.Active {
		return nil, apperr.Statef("employee is not active")
	}

	switch {
	case employee.DeviceID == deviceID:
		return employee, nil
	case employee.DeviceID != "":
		return nil, apperr.Securityf("device mismatch")
	}

	after := *employee
	after.DeviceID = deviceID
	err = <-b.commands.Execute(ctx, syncpkg.EmployeeUpdate(*employee, after, func(ctx context.Context) error {
		return b.employees.ClaimDevice(ctx, employeeID, deviceID)
	}))
	if errors.Is(err, repository.ErrDeviceConflict) {
		return nil, apperr.Securityf("device already claimed")
	}
	if errors.Is(err, repository.ErrNotClaimable) {
		// Lost a race against a concurrent bind or an admin action; the
		// second read settles what actually happened.
		employee, readErr := b.employees.FindByID(ctx, employeeID)
		if readErr != nil {
			return nil, apperr.Infra("failed to re-read employee after claim conflict", readErr)
		}
		if employee != nil && employee.DeviceID == deviceID {
			return employee, nil
		}
		return nil, apperr.Securityf("device mismatch")
	}
	if err != nil {
		return nil, apperr.Infra("failed to bind device", err)
	}

	employee.DeviceID = deviceID
	return employee, nil
}

// Reset clears the binding so the employee's next action claims whichever
// device performs it. Administrative operation.
func (b *BindingRegistry) Reset(ctx context.Context, employeeID primitive.ObjectID) error {
	employee, err := b.employees.FindByID(ctx, employeeID)
	if err != nil {
		return apperr.Infra("failed to load employee", err)
	}
	if employee == nil {
		return apperr.Statef("employee not found")
	}

	after := *employee
	after.DeviceID = ""
	err = <-b.commands.Execute(ctx, syncpkg.EmployeeUpdate(*employee, after, func(ctx context.Context) error {
		return b.employees.ResetDevice(ctx, employeeID)
	}))
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperr.Statef("employee not found")
	}
	if err != nil {
		return apperr.Infra("failed to reset device binding", err)
	}
	return nil
}
