package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"attendance-core/config"
	"attendance-core/models"
)

type stubEmployeeRepo struct {
	rows []models.Employee
	err  error
}

func (r *stubEmployeeRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Employee, error) {
	return nil, nil
}

func (r *stubEmployeeRepo) FindActiveByCenter(ctx context.Context, centerID primitive.ObjectID) ([]models.Employee, error) {
	return nil, nil
}

func (r *stubEmployeeRepo) FindAllActive(ctx context.Context) ([]models.Employee, error) {
	return r.rows, r.err
}

func (r *stubEmployeeRepo) ClaimDevice(ctx context.Context, id primitive.ObjectID, deviceID string) error {
	return nil
}

func (r *stubEmployeeRepo) ResetDevice(ctx context.Context, id primitive.ObjectID) error {
	return nil
}

func (r *stubEmployeeRepo) Create(ctx context.Context, employee *models.Employee) (*mongo.InsertOneResult, error) {
	return nil, nil
}

type stubCenterRepo struct {
	rows []models.Center
}

func (r *stubCenterRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Center, error) {
	return nil, nil
}

func (r *stubCenterRepo) FindAllActive(ctx context.Context) ([]models.Center, error) {
	return r.rows, nil
}

func (r *stubCenterRepo) Create(ctx context.Context, center *models.Center) (*mongo.InsertOneResult, error) {
	return nil, nil
}

type stubAttendanceRepo struct {
	rows []models.AttendanceRecord
}

func (r *stubAttendanceRepo) Create(ctx context.Context, record *models.AttendanceRecord) (*mongo.InsertOneResult, error) {
	return nil, nil
}

func (r *stubAttendanceRepo) FindByEmployeeAndDate(ctx context.Context, employeeID primitive.ObjectID, date string) (*models.AttendanceRecord, error) {
	return nil, nil
}

func (r *stubAttendanceRepo) SetCheckout(ctx context.Context, id primitive.ObjectID, checkOut time.Time, earlyMinutes int, workingHours float64) error {
	return nil
}

func (r *stubAttendanceRepo) FindByDate(ctx context.Context, date string) ([]models.AttendanceRecord, error) {
	return r.rows, nil
}

func (r *stubAttendanceRepo) ListWithEmployee(ctx context.Context, filter bson.M, page, limit int64) ([]models.AttendanceWithEmployee, int64, error) {
	return nil, 0, nil
}

func (r *stubAttendanceRepo) TodayWithEmployee(ctx context.Context, date string) ([]models.AttendanceWithEmployee, error) {
	return nil, nil
}

func waitEvent(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case event := <-ch:
		return event
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestBusFansOutPerTable(t *testing.T) {
	bus := NewBus()
	employeesCh, cancelEmployees := bus.Subscribe(config.EmployeeCollection)
	defer cancelEmployees()
	allCh, cancelAll := bus.Subscribe("")
	defer cancelAll()

	bus.Publish(Event{Table: config.CenterCollection, Type: EventInsert})

	if got := waitEvent(t, allCh); got.Table != config.CenterCollection {
		t.Errorf("all-tables subscriber got table %q", got.Table)
	}
	select {
	case event := <-employeesCh:
		t.Errorf("employee subscriber received foreign event %+v", event)
	default:
	}

	bus.Publish(Event{Table: config.EmployeeCollection, Type: EventDelete})
	if got := waitEvent(t, employeesCh); got.Type != EventDelete {
		t.Errorf("Type = %q, want %q", got.Type, EventDelete)
	}
}

func TestBusDropsWhenSubscriberStalls(t *testing.T) {
	bus := NewBus()
	ch, cancel := bus.Subscribe(config.EmployeeCollection)
	defer cancel()

	// Overrun the subscriber buffer without draining; Publish must not block.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 200; i++ {
			bus.Publish(Event{Table: config.EmployeeCollection, Type: EventInsert})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a stalled subscriber")
	}
	if len(ch) != cap(ch) {
		t.Errorf("buffered %d events, want full buffer of %d", len(ch), cap(ch))
	}
}

func TestCacheAppliesRowEvents(t *testing.T) {
	cache := NewCache()
	id := primitive.NewObjectID()

	cache.ApplyEvent(Event{
		Table: config.EmployeeCollection,
		Type:  EventInsert,
		Row:   models.Employee{ID: id, Name: "Dana"},
	})
	row, ok := cache.Employee(id)
	if !ok || row.Name != "Dana" {
		t.Fatalf("Employee(%s) = %+v, %v", id.Hex(), row, ok)
	}

	cache.ApplyEvent(Event{
		Table: config.EmployeeCollection,
		Type:  EventUpdate,
		Row:   models.Employee{ID: id, Name: "Dana R."},
	})
	row, _ = cache.Employee(id)
	if row.Name != "Dana R." {
		t.Errorf("after update Name = %q", row.Name)
	}

	cache.ApplyEvent(Event{Table: config.EmployeeCollection, Type: EventDelete, Row: id})
	if _, ok := cache.Employee(id); ok {
		t.Error("employee still cached after delete event")
	}
}

func TestCoordinatorExecuteWritesThrough(t *testing.T) {
	cache := NewCache()
	bus := NewBus()
	co := NewCoordinator(cache, bus, &stubEmployeeRepo{}, &stubCenterRepo{}, &stubAttendanceRepo{})

	id := primitive.NewObjectID()
	record := models.AttendanceRecord{ID: id, Status: models.StatusPresent}
	wrote := false

	done := co.Execute(context.Background(), Command{
		Table:   config.AttendanceCollection,
		Applied: &Event{Table: config.AttendanceCollection, Type: EventInsert, Row: record},
		Apply: func(c *Cache) {
			c.ApplyEvent(Event{Table: config.AttendanceCollection, Type: EventInsert, Row: record})
		},
		Write: func(ctx context.Context) error {
			wrote = true
			return nil
		},
		Rollback: func(c *Cache) { c.RemoveAttendance(id) },
	})

	if err := <-done; err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !wrote {
		t.Error("authoritative write never ran")
	}
	if _, ok := cache.AttendanceRecord(id); !ok {
		t.Error("record missing from cache after successful write")
	}
}

func TestCoordinatorRollsBackFailedWrite(t *testing.T) {
	cache := NewCache()
	bus := NewBus()
	co := NewCoordinator(cache, bus, &stubEmployeeRepo{}, &stubCenterRepo{}, &stubAttendanceRepo{})

	events, cancel := bus.Subscribe(config.AttendanceCollection)
	defer cancel()

	id := primitive.NewObjectID()
	record := models.AttendanceRecord{ID: id, Status: models.StatusPresent}
	writeErr := errors.New("connection reset")

	done := co.Execute(context.Background(), Command{
		Table:   config.AttendanceCollection,
		Applied: &Event{Table: config.AttendanceCollection, Type: EventInsert, Row: record},
		Apply: func(c *Cache) {
			c.ApplyEvent(Event{Table: config.AttendanceCollection, Type: EventInsert, Row: record})
		},
		Write:    func(ctx context.Context) error { return writeErr },
		Rollback: func(c *Cache) { c.RemoveAttendance(id) },
	})

	// Optimistic insert lands before the write result.
	if got := waitEvent(t, events); got.Type != EventInsert {
		t.Fatalf("first event = %q, want insert", got.Type)
	}
	if err := <-done; !errors.Is(err, writeErr) {
		t.Fatalf("Execute err = %v, want %v", err, writeErr)
	}
	if _, ok := cache.AttendanceRecord(id); ok {
		t.Error("record survived in cache after rollback")
	}
	if got := waitEvent(t, events); got.Type != EventError {
		t.Errorf("second event = %q, want error", got.Type)
	}
}

func TestCoordinatorRefreshReplacesTables(t *testing.T) {
	cache := NewCache()
	bus := NewBus()

	stale := primitive.NewObjectID()
	cache.ReplaceEmployees([]models.Employee{{ID: stale, Name: "Stale"}})

	fresh := models.Employee{ID: primitive.NewObjectID(), Name: "Fresh"}
	center := models.Center{ID: primitive.NewObjectID(), Name: "North"}
	co := NewCoordinator(cache, bus,
		&stubEmployeeRepo{rows: []models.Employee{fresh}},
		&stubCenterRepo{rows: []models.Center{center}},
		&stubAttendanceRepo{},
	)

	events, cancel := bus.Subscribe("")
	defer cancel()

	if err := co.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if _, ok := cache.Employee(stale); ok {
		t.Error("stale employee survived the refresh")
	}
	if _, ok := cache.Employee(fresh.ID); !ok {
		t.Error("fresh employee missing after refresh")
	}
	if _, ok := cache.Center(center.ID); !ok {
		t.Error("center missing after refresh")
	}
	for i := 0; i < 3; i++ {
		if got := waitEvent(t, events); got.Type != EventReplace {
			t.Errorf("event %d type = %q, want replace", i, got.Type)
		}
	}
}

func TestCoordinatorRefreshPropagatesFetchError(t *testing.T) {
	cache := NewCache()
	kept := models.Employee{ID: primitive.NewObjectID(), Name: "Kept"}
	cache.ReplaceEmployees([]models.Employee{kept})

	fetchErr := errors.New("no reachable servers")
	co := NewCoordinator(cache, NewBus(), &stubEmployeeRepo{err: fetchErr}, &stubCenterRepo{}, &stubAttendanceRepo{})

	if err := co.Refresh(context.Background()); !errors.Is(err, fetchErr) {
		t.Fatalf("Refresh err = %v, want %v", err, fetchErr)
	}
	if _, ok := cache.Employee(kept.ID); !ok {
		t.Error("cache was clobbered by a failed refresh")
	}
}

func TestConnectedWithoutFeed(t *testing.T) {
	co := NewCoordinator(NewCache(), NewBus(), &stubEmployeeRepo{}, &stubCenterRepo{}, &stubAttendanceRepo{})
	if co.Connected() {
		t.Error("Connected() = true with no feed attached")
	}
}
