package service

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"attendance-core/models"
	"attendance-core/repository"
)

// In-memory repository fakes reproducing the storage semantics the real
// Mongo collections enforce: the unique (employee_id, date) index and the
// partial unique index on device_id.

type fakeEmployeeRepo struct {
	byID map[primitive.ObjectID]*models.Employee
}

func newFakeEmployeeRepo(employees ...*models.Employee) *fakeEmployeeRepo {
	r := &fakeEmployeeRepo{byID: make(map[primitive.ObjectID]*models.Employee)}
	for _, e := range employees {
		r.byID[e.ID] = e
	}
	return r
}

func (r *fakeEmployeeRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Employee, error) {
	e, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	clone := *e
	return &clone, nil
}

func (r *fakeEmployeeRepo) FindActiveByCenter(ctx context.Context, centerID primitive.ObjectID) ([]models.Employee, error) {
	var out []models.Employee
	for _, e := range r.byID {
		if e.Active && e.CenterID == centerID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (r *fakeEmployeeRepo) FindAllActive(ctx context.Context) ([]models.Employee, error) {
	var out []models.Employee
	for _, e := range r.byID {
		if e.Active {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (r *fakeEmployeeRepo) ClaimDevice(ctx context.Context, id primitive.ObjectID, deviceID string) error {
	for _, other := range r.byID {
		if other.ID != id && other.DeviceID == deviceID {
			return repository.ErrDeviceConflict
		}
	}
	e, ok := r.byID[id]
	if !ok || !e.Active || e.DeviceID != "" {
		return repository.ErrNotClaimable
	}
	e.DeviceID = deviceID
	return nil
}

func (r *fakeEmployeeRepo) ResetDevice(ctx context.Context, id primitive.ObjectID) error {
	e, ok := r.byID[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	e.DeviceID = ""
	return nil
}

func (r *fakeEmployeeRepo) Create(ctx context.Context, employee *models.Employee) (*mongo.InsertOneResult, error) {
	r.byID[employee.ID] = employee
	return &mongo.InsertOneResult{InsertedID: employee.ID}, nil
}

type fakeCenterRepo struct {
	byID map[primitive.ObjectID]*models.Center
}

func newFakeCenterRepo(centers ...*models.Center) *fakeCenterRepo {
	r := &fakeCenterRepo{byID: make(map[primitive.ObjectID]*models.Center)}
	for _, c := range centers {
		r.byID[c.ID] = c
	}
	return r
}

func (r *fakeCenterRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Center, error) {
	c, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	clone := *c
	return &clone, nil
}

func (r *fakeCenterRepo) FindAllActive(ctx context.Context) ([]models.Center, error) {
	var out []models.Center
	for _, c := range r.byID {
		if c.Active {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *fakeCenterRepo) Create(ctx context.Context, center *models.Center) (*mongo.InsertOneResult, error) {
	r.byID[center.ID] = center
	return &mongo.InsertOneResult{InsertedID: center.ID}, nil
}

type dayKey struct {
	employee primitive.ObjectID
	date     string
}

type fakeAttendanceRepo struct {
	records map[dayKey]*models.AttendanceRecord
}

func newFakeAttendanceRepo() *fakeAttendanceRepo {
	return &fakeAttendanceRepo{records: make(map[dayKey]*models.AttendanceRecord)}
}

func (r *fakeAttendanceRepo) Create(ctx context.Context, record *models.AttendanceRecord) (*mongo.InsertOneResult, error) {
	key := dayKey{record.EmployeeID, record.Date}
	if _, exists := r.records[key]; exists {
		return nil, repository.ErrDuplicateDay
	}
	if record.ID.IsZero() {
		record.ID = primitive.NewObjectID()
	}
	clone := *record
	r.records[key] = &clone
	return &mongo.InsertOneResult{InsertedID: record.ID}, nil
}

func (r *fakeAttendanceRepo) FindByEmployeeAndDate(ctx context.Context, employeeID primitive.ObjectID, date string) (*models.AttendanceRecord, error) {
	rec, ok := r.records[dayKey{employeeID, date}]
	if !ok {
		return nil, nil
	}
	clone := *rec
	return &clone, nil
}

func (r *fakeAttendanceRepo) SetCheckout(ctx context.Context, id primitive.ObjectID, checkOut time.Time, earlyMinutes int, workingHours float64) error {
	for _, rec := range r.records {
		if rec.ID == id {
			if rec.CheckOut != nil {
				return repository.ErrAlreadyCheckedOut
			}
			out := checkOut
			rec.CheckOut = &out
			rec.EarlyDepartureMinutes = earlyMinutes
			rec.WorkingHours = workingHours
			return nil
		}
	}
	return repository.ErrAlreadyCheckedOut
}

func (r *fakeAttendanceRepo) FindByDate(ctx context.Context, date string) ([]models.AttendanceRecord, error) {
	var out []models.AttendanceRecord
	for _, rec := range r.records {
		if rec.Date == date {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (r *fakeAttendanceRepo) ListWithEmployee(ctx context.Context, filter bson.M, page, limit int64) ([]models.AttendanceWithEmployee, int64, error) {
	return nil, 0, nil
}

func (r *fakeAttendanceRepo) TodayWithEmployee(ctx context.Context, date string) ([]models.AttendanceWithEmployee, error) {
	return nil, nil
}

type fakeClock struct {
	now     time.Time
	trusted bool
}

func (c *fakeClock) Now() time.Time { return c.now }
func (c *fakeClock) Trusted() bool  { return c.trusted }

type fakeResolver struct {
	identity string
}

func (f *fakeResolver) Resolve(ctx context.Context) string { return f.identity }

type fakeCalendar struct {
	working bool
}

func (f *fakeCalendar) IsWorkingDay(ctx context.Context, center *models.Center, day time.Time) (bool, error) {
	return f.working, nil
}
