package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	StatusPresent = "present"
	StatusLate    = "late"
	StatusAbsent  = "absent"
)

type AttendanceRecord struct {
	ID         primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	EmployeeID primitive.ObjectID `json:"employee_id" bson:"employee_id"`
	CenterID   primitive.ObjectID `json:"center_id" bson:"center_id"`
	// Date is the calendar day ("2006-01-02") derived from trusted time,
	// never from the device clock. Unique together with EmployeeID.
	Date    string     `json:"date" bson:"date"`
	CheckIn time.Time  `json:"check_in" bson:"check_in"`
	// CheckOut is nil until the employee checks out; set at most once.
	CheckOut *time.Time `json:"check_out,omitempty" bson:"check_out,omitempty"`
	// Status is fixed at check-in (present or late) and never revised.
	// The absence sweep also writes records with status "absent".
	Status                string  `json:"status" bson:"status"`
	DelayMinutes          int     `json:"delay_minutes" bson:"delay_minutes"`
	EarlyDepartureMinutes int     `json:"early_departure_minutes" bson:"early_departure_minutes"`
	WorkingHours          float64 `json:"working_hours" bson:"working_hours"`
	// NetworkIdentity is the caller's resolved public address, kept for audit.
	NetworkIdentity string `json:"network_identity,omitempty" bson:"network_identity,omitempty"`
	// TimeTrusted is false when the record timestamps were computed while the
	// time authority was degraded.
	TimeTrusted bool      `json:"time_trusted" bson:"time_trusted"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at,omitempty"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at,omitempty"`
}

type AttendanceWithEmployee struct {
	ID                    primitive.ObjectID `json:"id" bson:"_id"`
	EmployeeID            primitive.ObjectID `json:"employee_id" bson:"employee_id"`
	CenterID              primitive.ObjectID `json:"center_id" bson:"center_id"`
	Date                  string             `json:"date" bson:"date"`
	CheckIn               time.Time          `json:"check_in" bson:"check_in"`
	CheckOut              *time.Time         `json:"check_out,omitempty" bson:"check_out,omitempty"`
	Status                string             `json:"status" bson:"status"`
	DelayMinutes          int                `json:"delay_minutes" bson:"delay_minutes"`
	EarlyDepartureMinutes int                `json:"early_departure_minutes" bson:"early_departure_minutes"`
	WorkingHours          float64            `json:"working_hours" bson:"working_hours"`
	TimeTrusted           bool               `json:"time_trusted" bson:"time_trusted"`
	EmployeeName          string             `json:"employee_name" bson:"employee_name"`
}

type AttendanceActionPayload struct {
	CenterID   string `json:"center_id" validate:"required"`
	EmployeeID string `json:"employee_id" validate:"required"`
	DeviceID   string `json:"device_id" validate:"required,min=8,max=128"`
}
