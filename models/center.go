package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Center struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Name      string             `json:"name" bson:"name"`
	Active    bool               `json:"active" bson:"active"`
	StartTime string             `json:"start_time" bson:"start_time"` // "15:04"
	EndTime   string             `json:"end_time" bson:"end_time"`     // "15:04"
	// Grace windows in minutes. Lateness and early departure are only
	// penalized beyond these.
	CheckInGrace  int `json:"check_in_grace" bson:"check_in_grace"`
	CheckOutGrace int `json:"check_out_grace" bson:"check_out_grace"`
	// AuthorizedNetworkID restricts check-ins to callers whose resolved
	// public address matches exactly. Empty means unrestricted.
	AuthorizedNetworkID string `json:"authorized_network_id,omitempty" bson:"authorized_network_id,omitempty"`
	// WorkDays is an optional RRULE (e.g. "FREQ=WEEKLY;BYDAY=SU,MO,TU,WE,TH")
	// describing the center's working days. Empty means every day works.
	WorkDays  string    `json:"work_days,omitempty" bson:"work_days,omitempty"`
	CreatedAt time.Time `json:"created_at" bson:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at,omitempty"`
}

// Restricted reports whether the center enforces a network allow-list.
func (c *Center) Restricted() bool {
	return c.AuthorizedNetworkID != ""
}
