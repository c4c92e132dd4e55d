package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
	"time"
)

// DeviceStatus represents the operational state of a tracking device.
type DeviceStatus string

const (
	DeviceActive      DeviceStatus = "active"
	DeviceInactive    DeviceStatus = "inactive"
	DeviceMaintenance DeviceStatus = "maintenance"
)

// TrackingDevice represents a GPS unit installed in a vehicle. A device
// reports location samples for at most one vehicle at a time.
type TrackingDevice struct {
	ID             primitive.ObjectID     `bson:"_id,omitempty" json:"id"`
	SerialNumber   string                 `bson:"serial_number" json:"serial_number"`
	Model          string                 `bson:"model,omitempty" json:"model,omitempty"`
	VehicleID      string                 `bson:"vehicle_id,omitempty" json:"vehicle_id,omitempty"`
	Status         DeviceStatus           `bson:"status" json:"status"`
	Configuration  map[string]interface{} `bson:"configuration,omitempty" json:"configuration,omitempty"`
	LastConnection *time.Time             `bson:"last_connection,omitempty" json:"last_connection,omitempty"`
	CreatedAt      time.Time              `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time              `bson:"updated_at" json:"updated_at"`
}
