package sync

import (
	"context"
	"log"
	"time"

	"attendance-core/config"
	"attendance-core/pkg/delaycalc"
	"attendance-core/repository"
)

// Feed is the change-notification transport. Reconnection is its own
// responsibility; the coordinator only surfaces the boolean.
type Feed interface {
	Connected() bool
}

// Coordinator owns the cache, the bus and the optimistic write path.
type Coordinator struct {
	cache      *Cache
	bus        *Bus
	feed       Feed
	now        func() time.Time
	employees  repository.EmployeeRepository
	centers    repository.CenterRepository
	attendance repository.AttendanceRepository
}

func NewCoordinator(
	cache *Cache,
	bus *Bus,
	employees repository.EmployeeRepository,
	centers repository.CenterRepository,
	attendance repository.AttendanceRepository,
) *Coordinator {
	return &Coordinator{
		cache:      cache,
		bus:        bus,
		now:        time.Now,
		employees:  employees,
		centers:    centers,
		attendance: attendance,
	}
}

func (co *Coordinator) SetFeed(feed Feed) { co.feed = feed }

func (co *Coordinator) Cache() *Cache { return co.cache }

func (co *Coordinator) Bus() *Bus { return co.bus }

// Connected reports the change feed state; false when no feed is attached.
func (co *Coordinator) Connected() bool {
	return co.feed != nil && co.feed.Connected()
}

// Execute applies the command optimistically and issues the authoritative
// write in the background. On write failure the compensating rollback runs
// and an error event is published so clients resynchronize.
func (co *Coordinator) Execute(ctx context.Context, cmd Command) <-chan error {
	cmd.Apply(co.cache)
	if cmd.Applied != nil {
		co.bus.Publish(*cmd.Applied)
	}

	done := make(chan error, 1)
	go func() {
		err := cmd.Write(ctx)
		if err != nil {
			log.Printf("sync: authoritative write on %s failed, rolling back: %v", cmd.Table, err)
			if cmd.Rollback != nil {
				cmd.Rollback(co.cache)
			}
			co.bus.Publish(Event{Table: cmd.Table, Type: EventError, Row: err.Error()})
		}
		done <- err
		close(done)
	}()
	return done
}

// Refresh re-fetches every table in full and replaces the cached slices —
// the recovery path for a degraded feed. Publishes one replace event per
// table.
func (co *Coordinator) Refresh(ctx context.Context) error {
	employees, err := co.employees.FindAllActive(ctx)
	if err != nil {
		return err
	}
	centers, err := co.centers.FindAllActive(ctx)
	if err != nil {
		return err
	}
	today := delaycalc.DateString(co.now())
	attendance, err := co.attendance.FindByDate(ctx, today)
	if err != nil {
		return err
	}

	co.cache.ReplaceEmployees(employees)
	co.cache.ReplaceCenters(centers)
	co.cache.ReplaceAttendance(attendance)

	co.bus.Publish(Event{Table: config.EmployeeCollection, Type: EventReplace})
	co.bus.Publish(Event{Table: config.CenterCollection, Type: EventReplace})
	co.bus.Publish(Event{Table: config.AttendanceCollection, Type: EventReplace})
	return nil
}
