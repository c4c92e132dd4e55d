package db

import (
	"context"
	"time"

	"github.com/ukydev/fleet-tracking/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// GeofenceCollection defines the interface for geofence database operations.
// Vehicle assignment is a many-to-many relation stored as a vehicle_ids
// array on the geofence document.
type GeofenceCollection interface {
	InsertGeofence(ctx context.Context, geofence models.Geofence) (string, error)
	FindGeofenceByID(ctx context.Context, id string) (*models.Geofence, error)
	FindGeofences(ctx context.Context, filter bson.M) ([]models.Geofence, error)
	FindGeofencesByVehicleID(ctx context.Context, vehicleID string) ([]models.Geofence, error)
	UpdateGeofence(ctx context.Context, id string, geofence models.Geofence) error
	DeleteGeofence(ctx context.Context, id string) error
	AssignVehicle(ctx context.Context, geofenceID, vehicleID string) error
	UnassignVehicle(ctx context.Context, geofenceID, vehicleID string) error
	RemoveVehicleAssignments(ctx context.Context, vehicleID string) error
}

// MongoGeofenceCollection implements GeofenceCollection for MongoDB
type MongoGeofenceCollection struct {
	Collection *mongo.Collection
}

// InsertGeofence inserts a new geofence and returns its id
func (c *MongoGeofenceCollection) InsertGeofence(ctx context.Context, geofence models.Geofence) (string, error) {
	if geofence.ID.IsZero() {
		geofence.ID = primitive.NewObjectID()
	}
	geofence.CreatedAt = time.Now()
	geofence.UpdatedAt = time.Now()

	if _, err := c.Collection.InsertOne(ctx, geofence); err != nil {
		return "", err
	}
	return geofence.ID.Hex(), nil
}

// FindGeofenceByID finds a geofence by its ID
func (c *MongoGeofenceCollection) FindGeofenceByID(ctx context.Context, id string) (*models.Geofence, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var geofence models.Geofence
	if err := c.Collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&geofence); err != nil {
		return nil, notFound(err)
	}
	return &geofence, nil
}

// FindGeofences finds geofences with optional filtering
func (c *MongoGeofenceCollection) FindGeofences(ctx context.Context, filter bson.M) ([]models.Geofence, error) {
	if filter == nil {
		filter = bson.M{}
	}
	cursor, err := c.Collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var geofences []models.Geofence
	if err := cursor.All(ctx, &geofences); err != nil {
		return nil, err
	}
	return geofences, nil
}

// FindGeofencesByVehicleID finds all geofences watching a vehicle
func (c *MongoGeofenceCollection) FindGeofencesByVehicleID(ctx context.Context, vehicleID string) ([]models.Geofence, error) {
	return c.FindGeofences(ctx, bson.M{"vehicle_ids": vehicleID})
}

// UpdateGeofence replaces a geofence document, preserving its assignments
func (c *MongoGeofenceCollection) UpdateGeofence(ctx context.Context, id string, geofence models.Geofence) error {
	oid, err := objectID(id)
	if err != nil {
		return ErrNotFound
	}

	geofence.ID = oid
	geofence.UpdatedAt = time.Now()

	res, err := c.Collection.ReplaceOne(ctx, bson.M{"_id": oid}, geofence)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteGeofence deletes a geofence by its ID. Vehicle assignments live on
// the document, so they are removed with it.
func (c *MongoGeofenceCollection) DeleteGeofence(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return ErrNotFound
	}

	res, err := c.Collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AssignVehicle adds a vehicle to a geofence's watch list
func (c *MongoGeofenceCollection) AssignVehicle(ctx context.Context, geofenceID, vehicleID string) error {
	oid, err := objectID(geofenceID)
	if err != nil {
		return ErrNotFound
	}

	res, err := c.Collection.UpdateOne(
		ctx,
		bson.M{"_id": oid},
		bson.M{
			"$addToSet": bson.M{"vehicle_ids": vehicleID},
			"$set":      bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// UnassignVehicle removes a vehicle from a geofence's watch list
func (c *MongoGeofenceCollection) UnassignVehicle(ctx context.Context, geofenceID, vehicleID string) error {
	oid, err := objectID(geofenceID)
	if err != nil {
		return ErrNotFound
	}

	res, err := c.Collection.UpdateOne(
		ctx,
		bson.M{"_id": oid},
		bson.M{
			"$pull": bson.M{"vehicle_ids": vehicleID},
			"$set":  bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// RemoveVehicleAssignments removes a vehicle from every geofence, used when
// the vehicle is deleted.
func (c *MongoGeofenceCollection) RemoveVehicleAssignments(ctx context.Context, vehicleID string) error {
	_, err := c.Collection.UpdateMany(
		ctx,
		bson.M{"vehicle_ids": vehicleID},
		bson.M{"$pull": bson.M{"vehicle_ids": vehicleID}},
	)
	return err
}
