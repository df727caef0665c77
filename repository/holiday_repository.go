package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"attendance-core/config"
	"attendance-core/models"
)

var ErrDuplicateHoliday = errors.New("holiday already registered for this date")

type HolidayRepository interface {
	IsHoliday(ctx context.Context, date string) (bool, error)
	FindAll(ctx context.Context) ([]models.Holiday, error)
	Create(ctx context.Context, holiday *models.Holiday) (*mongo.InsertOneResult, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type holidayRepository struct {
	collection *mongo.Collection
}

func NewHolidayRepository() HolidayRepository {
	return &holidayRepository{
		collection: config.GetCollection(config.HolidayCollection),
	}
}

func (r *holidayRepository) IsHoliday(ctx context.Context, date string) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"date": date})
	if err != nil {
		return false, fmt.Errorf("failed to check holiday for %s: %w", date, err)
	}
	return count > 0, nil
}

func (r *holidayRepository) FindAll(ctx context.Context) ([]models.Holiday, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find holidays: %w", err)
	}
	defer cursor.Close(ctx)

	var holidays []models.Holiday
	if err = cursor.All(ctx, &holidays); err != nil {
		return nil, fmt.Errorf("failed to decode holidays: %w", err)
	}
	if len(holidays) == 0 {
		return []models.Holiday{}, nil
	}
	return holidays, nil
}

func (r *holidayRepository) Create(ctx context.Context, holiday *models.Holiday) (*mongo.InsertOneResult, error) {
	if holiday.ID.IsZero() {
		holiday.ID = primitive.NewObjectID()
	}
	res, err := r.collection.InsertOne(ctx, holiday)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateHoliday
		}
		return nil, fmt.Errorf("failed to create holiday: %w", err)
	}
	return res, nil
}

func (r *holidayRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete holiday: %w", err)
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
