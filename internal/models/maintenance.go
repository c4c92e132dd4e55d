package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
	"time"
)

// MaintenanceType identifies the kind of service performed.
type MaintenanceType string

const (
	MaintenanceOilChange      MaintenanceType = "oil_change"
	MaintenanceTireRotation   MaintenanceType = "tire_rotation"
	MaintenanceInspection     MaintenanceType = "inspection"
	MaintenanceRepair         MaintenanceType = "repair"
	MaintenanceGeneralService MaintenanceType = "general_service"
)

// MaintenanceRecord represents a service event for a vehicle.
type MaintenanceRecord struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	VehicleID       string             `bson:"vehicle_id" json:"vehicle_id"`
	Type            MaintenanceType    `bson:"type" json:"type"`
	OdometerReading float64            `bson:"odometer_reading,omitempty" json:"odometer_reading,omitempty"` // kilometers
	ServiceDate     time.Time          `bson:"service_date" json:"service_date"`
	Description     string             `bson:"description,omitempty" json:"description,omitempty"`
	Cost            float64            `bson:"cost,omitempty" json:"cost,omitempty"`
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time          `bson:"updated_at" json:"updated_at"`
}

// IsValidMaintenanceType checks if a service type is recognized.
func IsValidMaintenanceType(t MaintenanceType) bool {
	switch t {
	case MaintenanceOilChange, MaintenanceTireRotation, MaintenanceInspection,
		MaintenanceRepair, MaintenanceGeneralService:
		return true
	default:
		return false
	}
}
