package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Holiday struct {
	ID   primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Date string             `json:"date" bson:"date"` // "2006-01-02"
	Name string             `json:"name" bson:"name"`
}

type HolidayCreatePayload struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
	Name string `json:"name" validate:"required,min=2,max=100"`
}

const (
	TemplateCheckIn       = "check_in"
	TemplateLateCheckIn   = "late_check_in"
	TemplateCheckOut      = "check_out"
	TemplateEarlyCheckOut = "early_check_out"
)

// MessageTemplate holds the operator-facing success message for one outcome
// type. Content may contain a {minutes} placeholder.
type MessageTemplate struct {
	ID      primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Type    string             `json:"type" bson:"type"`
	Content string             `json:"content" bson:"content"`
}

type TemplateUpdatePayload struct {
	Content string `json:"content" validate:"required,min=3,max=500"`
}
