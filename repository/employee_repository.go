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

// ErrDeviceConflict means the device identifier is already bound to a
// different employee; it surfaces the unique-index rejection on device_id.
var ErrDeviceConflict = errors.New("device already bound to another employee")

// ErrNotClaimable means the employee is missing, inactive, or already bound,
// so the conditional claim update matched nothing.
var ErrNotClaimable = errors.New("employee not claimable")

type EmployeeRepository interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Employee, error)
	FindActiveByCenter(ctx context.Context, centerID primitive.ObjectID) ([]models.Employee, error)
	FindAllActive(ctx context.Context) ([]models.Employee, error)
	// ClaimDevice atomically binds deviceID to an unbound active employee.
	ClaimDevice(ctx context.Context, id primitive.ObjectID, deviceID string) error
	ResetDevice(ctx context.Context, id primitive.ObjectID) error
	Create(ctx context.Context, employee *models.Employee) (*mongo.InsertOneResult, error)
}

type employeeRepository struct {
	collection *mongo.Collection
}

func NewEmployeeRepository() EmployeeRepository {
	return &employeeRepository{
		collection: config.GetCollection(config.EmployeeCollection),
	}
}

func (r *employeeRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Employee, error) {
	var employee models.Employee
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&employee)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find employee by id: %w", err)
	}
	return &employee, nil
}

func (r *employeeRepository) FindActiveByCenter(ctx context.Context, centerID primitive.ObjectID) ([]models.Employee, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"center_id": centerID, "active": true})
	if err != nil {
		return nil, fmt.Errorf("failed to find employees for center: %w", err)
	}
	defer cursor.Close(ctx)

	var employees []models.Employee
	if err = cursor.All(ctx, &employees); err != nil {
		return nil, fmt.Errorf("failed to decode employees: %w", err)
	}
	if len(employees) == 0 {
		return []models.Employee{}, nil
	}
	return employees, nil
}

func (r *employeeRepository) FindAllActive(ctx context.Context) ([]models.Employee, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"active": true})
	if err != nil {
		return nil, fmt.Errorf("failed to find active employees: %w", err)
	}
	defer cursor.Close(ctx)

	var employees []models.Employee
	if err = cursor.All(ctx, &employees); err != nil {
		return nil, fmt.Errorf("failed to decode active employees: %w", err)
	}
	if len(employees) == 0 {
		return []models.Employee{}, nil
	}
	return employees, nil
}

// ClaimDevice is a single conditional update guarded by the partial unique
// index on device_id. Two employees racing for the same fresh device cannot
// both win: the loser gets a duplicate-key error, reported as
// ErrDeviceConflict.
func (r *employeeRepository) ClaimDevice(ctx context.Context, id primitive.ObjectID, deviceID string) error {
	filter := bson.M{
		"_id":       id,
		"active":    true,
		"device_id": bson.M{"$exists": false},
	}
	update := bson.M{
		"$set": bson.M{
			"device_id":  deviceID,
			"updated_at": time.Now(),
		},
	}

	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDeviceConflict
		}
		return fmt.Errorf("failed to claim device: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotClaimable
	}
	return nil
}

func (r *employeeRepository) ResetDevice(ctx context.Context, id primitive.ObjectID) error {
	update := bson.M{
		"$unset": bson.M{"device_id": ""},
		"$set":   bson.M{"updated_at": time.Now()},
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to reset device binding: %w", err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *employeeRepository) Create(ctx context.Context, employee *models.Employee) (*mongo.InsertOneResult, error) {
	if employee.ID.IsZero() {
		employee.ID = primitive.NewObjectID()
	}
	employee.CreatedAt = time.Now()
	employee.UpdatedAt = time.Now()

	res, err := r.collection.InsertOne(ctx, employee)
	if err != nil {
		return nil, fmt.Errorf("failed to create employee: %w", err)
	}
	return res, nil
}
