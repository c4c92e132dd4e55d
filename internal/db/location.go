package db

import (
	"context"
	"time"

	"github.com/ukydev/fleet-tracking/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// LocationQuery narrows a location history lookup. Zero values mean
// unbounded.
type LocationQuery struct {
	Limit     int64
	StartDate time.Time
	EndDate   time.Time
}

// LocationCollection defines the interface for location history operations.
// Samples are append-only; there is no update or delete.
type LocationCollection interface {
	InsertLocation(ctx context.Context, location models.LocationHistory) (*models.LocationHistory, error)
	FindLocationsByDeviceID(ctx context.Context, deviceID string, query LocationQuery) ([]models.LocationHistory, error)
	FindLocationsByDeviceIDs(ctx context.Context, deviceIDs []string, query LocationQuery) ([]models.LocationHistory, error)
}

// MongoLocationCollection implements LocationCollection for MongoDB
type MongoLocationCollection struct {
	Collection *mongo.Collection
}

// InsertLocation inserts a location sample and returns the stored record
func (c *MongoLocationCollection) InsertLocation(ctx context.Context, location models.LocationHistory) (*models.LocationHistory, error) {
	if location.ID.IsZero() {
		location.ID = primitive.NewObjectID()
	}
	if location.EventTime.IsZero() {
		location.EventTime = time.Now()
	}

	if _, err := c.Collection.InsertOne(ctx, location); err != nil {
		return nil, err
	}
	return &location, nil
}

// FindLocationsByDeviceID returns samples for one device, newest first
func (c *MongoLocationCollection) FindLocationsByDeviceID(ctx context.Context, deviceID string, query LocationQuery) ([]models.LocationHistory, error) {
	return c.find(ctx, bson.M{"device_id": deviceID}, query)
}

// FindLocationsByDeviceIDs returns samples for a set of devices, newest first
func (c *MongoLocationCollection) FindLocationsByDeviceIDs(ctx context.Context, deviceIDs []string, query LocationQuery) ([]models.LocationHistory, error) {
	if len(deviceIDs) == 0 {
		return []models.LocationHistory{}, nil
	}
	return c.find(ctx, bson.M{"device_id": bson.M{"$in": deviceIDs}}, query)
}

func (c *MongoLocationCollection) find(ctx context.Context, filter bson.M, query LocationQuery) ([]models.LocationHistory, error) {
	timeFilter := bson.M{}
	if !query.StartDate.IsZero() {
		timeFilter["$gte"] = query.StartDate
	}
	if !query.EndDate.IsZero() {
		timeFilter["$lte"] = query.EndDate
	}
	if len(timeFilter) > 0 {
		filter["event_time"] = timeFilter
	}

	opts := options.Find().SetSort(bson.D{{Key: "event_time", Value: -1}})
	if query.Limit > 0 {
		opts.SetLimit(query.Limit)
	}

	cursor, err := c.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var locations []models.LocationHistory
	if err := cursor.All(ctx, &locations); err != nil {
		return nil, err
	}
	return locations, nil
}
