package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AlertType identifies what triggered an alert.
type AlertType string

const (
	AlertSpeed              AlertType = "speed"
	AlertGeofence           AlertType = "geofence"
	AlertMaintenance        AlertType = "maintenance"
	AlertEngine             AlertType = "engine"
	AlertBattery            AlertType = "battery"
	AlertUnauthorizedAccess AlertType = "unauthorized_access"
)

// Alert represents a notification raised for a vehicle. Geofence alerts are
// created by the tracking pipeline; once created an alert is only ever
// mutated by acknowledgement.
type Alert struct {
	ID             primitive.ObjectID     `bson:"_id,omitempty" json:"id"`
	VehicleID      string                 `bson:"vehicle_id" json:"vehicle_id"`
	Type           AlertType              `bson:"type" json:"type"`
	Description    string                 `bson:"description" json:"description"`
	Data           map[string]interface{} `bson:"data,omitempty" json:"data,omitempty"`
	Acknowledged   bool                   `bson:"acknowledged" json:"acknowledged"`
	CreatedAt      time.Time              `bson:"created_at" json:"created_at"`
	AcknowledgedAt *time.Time             `bson:"acknowledged_at,omitempty" json:"acknowledged_at,omitempty"`
}
