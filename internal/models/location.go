package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Point represents a geographical coordinate in degrees.
type Point struct {
	Lat float64 `bson:"lat" json:"lat"`
	Lng float64 `bson:"lng" json:"lng"`
}

// LocationHistory represents a single location sample reported by a tracking
// device. Records are immutable once stored.
type LocationHistory struct {
	ID        primitive.ObjectID     `bson:"_id,omitempty" json:"id"`
	DeviceID  string                 `bson:"device_id" json:"device_id"`
	Latitude  float64                `bson:"latitude" json:"latitude"`
	Longitude float64                `bson:"longitude" json:"longitude"`
	Speed     *float64               `bson:"speed,omitempty" json:"speed,omitempty"`
	Heading   *float64               `bson:"heading,omitempty" json:"heading,omitempty"`
	Accuracy  *float64               `bson:"accuracy,omitempty" json:"accuracy,omitempty"`
	EventTime time.Time              `bson:"event_time" json:"event_time"`
	Metadata  map[string]interface{} `bson:"metadata,omitempty" json:"metadata,omitempty"`
}

// Point returns the sample's coordinate.
func (l *LocationHistory) Point() Point {
	return Point{Lat: l.Latitude, Lng: l.Longitude}
}
