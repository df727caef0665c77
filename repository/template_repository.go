package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"attendance-core/config"
	"attendance-core/models"
)

type TemplateRepository interface {
	FindByType(ctx context.Context, templateType string) (*models.MessageTemplate, error)
	FindAll(ctx context.Context) ([]models.MessageTemplate, error)
	Upsert(ctx context.Context, templateType, content string) error
}

type templateRepository struct {
	collection *mongo.Collection
}

func NewTemplateRepository() TemplateRepository {
	return &templateRepository{
		collection: config.GetCollection(config.TemplateCollection),
	}
}

func (r *templateRepository) FindByType(ctx context.Context, templateType string) (*models.MessageTemplate, error) {
	var template models.MessageTemplate
	err := r.collection.FindOne(ctx, bson.M{"type": templateType}).Decode(&template)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find template %s: %w", templateType, err)
	}
	return &template, nil
}

func (r *templateRepository) FindAll(ctx context.Context) ([]models.MessageTemplate, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to find templates: %w", err)
	}
	defer cursor.Close(ctx)

	var templates []models.MessageTemplate
	if err = cursor.All(ctx, &templates); err != nil {
		return nil, fmt.Errorf("failed to decode templates: %w", err)
	}
	if len(templates) == 0 {
		return []models.MessageTemplate{}, nil
	}
	return templates, nil
}

func (r *templateRepository) Upsert(ctx context.Context, templateType, content string) error {
	filter := bson.M{"type": templateType}
	update := bson.M{"$set": bson.M{"type": templateType, "content": content}}
	opts := options.Update().SetUpsert(true)

	_, err := r.collection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return fmt.Errorf("failed to upsert template %s: %w", templateType, err)
	}
	return nil
}
