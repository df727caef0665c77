package sync

import (
	"context"

	"attendance-core/config"
	"attendance-core/models"
)

// Command is one optimistic mutation: Apply updates the cache immediately,
// Write performs the authoritative store write, and Rollback is the
// compensating action restoring the cache when Write fails.
type Command struct {
	Table    string
	Applied  *Event
	Apply    func(c *Cache)
	Write    func(ctx context.Context) error
	Rollback func(c *Cache)
}

// AttendanceInsert builds the command for a new attendance row. Rollback
// removes the row again; the record must carry its id up front.
func AttendanceInsert(record models.AttendanceRecord, write func(ctx context.Context) error) Command {
	applied := Event{Table: config.AttendanceCollection, Type: EventInsert, Row: record}
	return Command{
		Table:    config.AttendanceCollection,
		Applied:  &applied,
		Apply:    func(c *Cache) { c.ApplyEvent(applied) },
		Write:    write,
		Rollback: func(c *Cache) { c.RemoveAttendance(record.ID) },
	}
}

// AttendanceUpdate builds the command for mutating an existing attendance
// row; rollback restores the before image.
func AttendanceUpdate(before, after models.AttendanceRecord, write func(ctx context.Context) error) Command {
	applied := Event{Table: config.AttendanceCollection, Type: EventUpdate, Row: after}
	return Command{
		Table:   config.AttendanceCollection,
		Applied: &applied,
		Apply:   func(c *Cache) { c.ApplyEvent(applied) },
		Write:   write,
		Rollback: func(c *Cache) {
			c.ApplyEvent(Event{Table: config.AttendanceCollection, Type: EventUpdate, Row: before})
		},
	}
}

// EmployeeUpdate builds the command for mutating an employee row (device
// claim or reset); rollback restores the before image.
func EmployeeUpdate(before, after models.Employee, write func(ctx context.Context) error) Command {
	applied := Event{Table: config.EmployeeCollection, Type: EventUpdate, Row: after}
	return Command{
		Table:   config.EmployeeCollection,
		Applied: &applied,
		Apply:   func(c *Cache) { c.ApplyEvent(applied) },
		Write:   write,
		Rollback: func(c *Cache) {
			c.ApplyEvent(Event{Table: config.EmployeeCollection, Type: EventUpdate, Row: before})
		},
	}
}
