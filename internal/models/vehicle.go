package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
	"time"
)

// VehicleStatus represents the operational state of a vehicle.
type VehicleStatus string

const (
	VehicleActive      VehicleStatus = "active"
	VehicleParked      VehicleStatus = "parked"
	VehicleInactive    VehicleStatus = "inactive"
	VehicleMaintenance VehicleStatus = "maintenance"
)

// Vehicle represents a fleet vehicle.
type Vehicle struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Plate          string             `bson:"plate" json:"plate"`
	Brand          string             `bson:"brand" json:"brand"`
	Model          string             `bson:"model" json:"model"`
	Year           int                `bson:"year,omitempty" json:"year,omitempty"`
	Color          string             `bson:"color,omitempty" json:"color,omitempty"`
	Nickname       string             `bson:"nickname,omitempty" json:"nickname,omitempty"`
	OwnerID        string             `bson:"owner_id,omitempty" json:"owner_id,omitempty"`
	OrganizationID string             `bson:"organization_id,omitempty" json:"organization_id,omitempty"`
	Status         VehicleStatus      `bson:"status" json:"status"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updated_at"`
}

// IsValidVehicleStatus checks if a status is one of the known vehicle states.
func IsValidVehicleStatus(status VehicleStatus) bool {
	switch status {
	case VehicleActive, VehicleParked, VehicleInactive, VehicleMaintenance:
		return true
	default:
		return false
	}
}
