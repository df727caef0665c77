package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Employee struct {
	ID         primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Name       string             `json:"name" bson:"name"`
	CenterID   primitive.ObjectID `json:"center_id" bson:"center_id"`
	Active     bool               `json:"active" bson:"active"`
	JoinedDate string             `json:"joined_date,omitempty" bson:"joined_date,omitempty"`
	// DeviceID is the client-persisted device identifier this employee is
	// bound to. Absent until the first successful check-in from a device;
	// cleared only by an administrative reset.
	DeviceID  string    `json:"device_id,omitempty" bson:"device_id,omitempty"`
	CreatedAt time.Time `json:"created_at" bson:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at,omitempty"`
}

type EmployeeCreatePayload struct {
	Name       string `json:"name" validate:"required,min=3,max=100"`
	CenterID   string `json:"center_id" validate:"required"`
	JoinedDate string `json:"joined_date" validate:"omitempty,datetime=2006-01-02"`
}
