package models

import (
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GeofenceType identifies the geometry kind of a geofence.
type GeofenceType string

const (
	GeofenceCircle    GeofenceType = "circle"
	GeofencePolygon   GeofenceType = "polygon"
	GeofenceRectangle GeofenceType = "rectangle"
)

var ErrInvalidGeometry = errors.New("geofence coordinates do not match type")

// Bounds describes an axis-aligned rectangle in lat/lng space.
type Bounds struct {
	SouthWest Point `bson:"southWest" json:"southWest"`
	NorthEast Point `bson:"northEast" json:"northEast"`
}

// Coordinates holds the geometry of a geofence. Which fields are populated
// depends on the geofence type: circle uses Center+Radius, polygon uses
// Points, rectangle uses Bounds.
type Coordinates struct {
	Center *Point  `bson:"center,omitempty" json:"center,omitempty"`
	Radius float64 `bson:"radius,omitempty" json:"radius,omitempty"` // meters
	Points []Point `bson:"points,omitempty" json:"points,omitempty"`
	Bounds *Bounds `bson:"bounds,omitempty" json:"bounds,omitempty"`
}

// Schedule is an optional time window restricting when a geofence is active.
// It is stored with the geofence but not yet consumed by violation checks.
type Schedule struct {
	Days      []string `bson:"days,omitempty" json:"days,omitempty"`
	StartTime string   `bson:"start_time,omitempty" json:"start_time,omitempty"`
	EndTime   string   `bson:"end_time,omitempty" json:"end_time,omitempty"`
}

// Geofence represents a named monitored region. Vehicles assigned to a
// geofence are expected to stay inside it; leaving raises an alert.
type Geofence struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name           string             `bson:"name" json:"name"`
	Type           GeofenceType       `bson:"type" json:"type"`
	Coordinates    Coordinates        `bson:"coordinates" json:"coordinates"`
	Schedule       *Schedule          `bson:"schedule,omitempty" json:"schedule,omitempty"`
	CreatorID      string             `bson:"creator_id,omitempty" json:"creator_id,omitempty"`
	OrganizationID string             `bson:"organization_id,omitempty" json:"organization_id,omitempty"`
	VehicleIDs     []string           `bson:"vehicle_ids,omitempty" json:"vehicle_ids,omitempty"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updated_at"`
}

// Validate checks that the coordinates carry the fields required by the
// geofence type. Called on create and update so that stored geofences are
// structurally sound.
func (g *Geofence) Validate() error {
	if g.Name == "" {
		return errors.New("geofence name is required")
	}
	switch g.Type {
	case GeofenceCircle:
		if g.Coordinates.Center == nil {
			return fmt.Errorf("%w: circle requires a center", ErrInvalidGeometry)
		}
		if g.Coordinates.Radius <= 0 {
			return fmt.Errorf("%w: circle requires a positive radius", ErrInvalidGeometry)
		}
	case GeofencePolygon:
		if len(g.Coordinates.Points) < 3 {
			return fmt.Errorf("%w: polygon requires at least 3 points", ErrInvalidGeometry)
		}
	case GeofenceRectangle:
		if g.Coordinates.Bounds == nil {
			return fmt.Errorf("%w: rectangle requires bounds", ErrInvalidGeometry)
		}
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidGeometry, g.Type)
	}
	return nil
}
