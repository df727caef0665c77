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

type CenterRepository interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Center, error)
	FindAllActive(ctx context.Context) ([]models.Center, error)
	Create(ctx context.Context, center *models.Center) (*mongo.InsertOneResult, error)
}

type centerRepository struct {
	collection *mongo.Collection
}

func NewCenterRepository() CenterRepository {
	return &centerRepository{
		collection: config.GetCollection(config.CenterCollection),
	}
}

func (r *centerRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Center, error) {
	var center models.Center
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&center)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find center by id: %w", err)
	}
	return &center, nil
}

func (r *centerRepository) FindAllActive(ctx context.Context) ([]models.Center, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"active": true})
	if err != nil {
		return nil, fmt.Errorf("failed to find active centers: %w", err)
	}
	defer cursor.Close(ctx)

	var centers []models.Center
	if err = cursor.All(ctx, &centers); err != nil {
		return nil, fmt.Errorf("failed to decode centers: %w", err)
	}
	if len(centers) == 0 {
		return []models.Center{}, nil
	}
	return centers, nil
}

func (r *centerRepository) Create(ctx context.Context, center *models.Center) (*mongo.InsertOneResult, error) {
	if center.ID.IsZero() {
		center.ID = primitive.NewObjectID()
	}
	center.CreatedAt = time.Now()
	center.UpdatedAt = time.Now()

	res, err := r.collection.InsertOne(ctx, center)
	if err != nil {
		return nil, fmt.Errorf("failed to create center: %w", err)
	}
	return res, nil
}
