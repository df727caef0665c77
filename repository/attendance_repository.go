package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"attendance-core/config"
	"attendance-core/models"
)

// ErrDuplicateDay surfaces the unique (employee_id, date) index rejection:
// a record for that employee and day already exists.
var ErrDuplicateDay = errors.New("attendance record already exists for this day")

// ErrAlreadyCheckedOut means the checkout update matched no open record.
var ErrAlreadyCheckedOut = errors.New("attendance record already checked out")

type AttendanceRepository interface {
	Create(ctx context.Context, record *models.AttendanceRecord) (*mongo.InsertOneResult, error)
	FindByEmployeeAndDate(ctx context.Context, employeeID primitive.ObjectID, date string) (*models.AttendanceRecord, error)
	// SetCheckout fills the checkout fields of an open record exactly once.
	SetCheckout(ctx context.Context, id primitive.ObjectID, checkOut time.Time, earlyMinutes int, workingHours float64) error
	FindByDate(ctx context.Context, date string) ([]models.AttendanceRecord, error)
	ListWithEmployee(ctx context.Context, filter bson.M, page, limit int64) ([]models.AttendanceWithEmployee, int64, error)
	TodayWithEmployee(ctx context.Context, date string) ([]models.AttendanceWithEmployee, error)
}

type attendanceRepository struct {
	collection *mongo.Collection
}

func NewAttendanceRepository() AttendanceRepository {
	return &attendanceRepository{
		collection: config.GetCollection(config.AttendanceCollection),
	}
}

func (r *attendanceRepository) Create(ctx context.Context, record *models.AttendanceRecord) (*mongo.InsertOneResult, error) {
	if record.ID.IsZero() {
		record.ID = primitive.NewObjectID()
	}
	record.CreatedAt = time.Now()
	record.UpdatedAt = time.Now()

	res, err := r.collection.InsertOne(ctx, record)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateDay
		}
		return nil, fmt.Errorf("failed to create attendance record: %w", err)
	}
	return res, nil
}

func (r *attendanceRepository) FindByEmployeeAndDate(ctx context.Context, employeeID primitive.ObjectID, date string) (*models.AttendanceRecord, error) {
	var record models.AttendanceRecord
	filter := bson.M{"employee_id": employeeID, "date": date}
	err := r.collection.FindOne(ctx, filter).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find attendance by employee and date: %w", err)
	}
	return &record, nil
}

func (r *attendanceRepository) SetCheckout(ctx context.Context, id primitive.ObjectID, checkOut time.Time, earlyMinutes int, workingHours float64) error {
	filter := bson.M{
		"_id":       id,
		"check_out": bson.M{"$exists": false},
	}
	update := bson.M{
		"$set": bson.M{
			"check_out":               checkOut,
			"early_departure_minutes": earlyMinutes,
			"working_hours":           workingHours,
			"updated_at":              time.Now(),
		},
	}

	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update attendance checkout: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrAlreadyCheckedOut
	}
	return nil
}

func (r *attendanceRepository) FindByDate(ctx context.Context, date string) ([]models.AttendanceRecord, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"date": date})
	if err != nil {
		return nil, fmt.Errorf("failed to find attendance by date: %w", err)
	}
	defer cursor.Close(ctx)

	var records []models.AttendanceRecord
	if err = cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode attendance records: %w", err)
	}
	if len(records) == 0 {
		return []models.AttendanceRecord{}, nil
	}
	return records, nil
}

func (r *attendanceRepository) ListWithEmployee(ctx context.Context, filter bson.M, page, limit int64) ([]models.AttendanceWithEmployee, int64, error) {
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count attendance records: %w", err)
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$sort", Value: bson.D{{Key: "date", Value: -1}, {Key: "check_in", Value: -1}}}},
		{{Key: "$skip", Value: (page - 1) * limit}},
		{{Key: "$limit", Value: limit}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: config.EmployeeCollection},
			{Key: "localField", Value: "employee_id"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "employeeDetails"},
		}}},
		{{Key: "$unwind", Value: "$employeeDetails"}},
		{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: 1},
			{Key: "employee_id", Value: 1},
			{Key: "center_id", Value: 1},
			{Key: "date", Value: 1},
			{Key: "check_in", Value: 1},
			{Key: "check_out", Value: 1},
			{Key: "status", Value: 1},
			{Key: "delay_minutes", Value: 1},
			{Key: "early_departure_minutes", Value: 1},
			{Key: "working_hours", Value: 1},
			{Key: "time_trusted", Value: 1},
			{Key: "employee_name", Value: "$employeeDetails.name"},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to aggregate attendance history: %w", err)
	}
	defer cursor.Close(ctx)

	var results []models.AttendanceWithEmployee
	if err = cursor.All(ctx, &results); err != nil {
		return nil, 0, fmt.Errorf("failed to decode attendance history: %w", err)
	}
	if len(results) == 0 {
		return []models.AttendanceWithEmployee{}, total, nil
	}
	return results, total, nil
}

func (r *attendanceRepository) TodayWithEmployee(ctx context.Context, date string) ([]models.AttendanceWithEmployee, error) {
	results, _, err := r.ListWithEmployee(ctx, bson.M{"date": date}, 1, 500)
	if err != nil {
		return nil, err
	}
	return results, nil
}
