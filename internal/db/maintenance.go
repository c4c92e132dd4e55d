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

// MaintenanceCollection defines the interface for maintenance record operations
type MaintenanceCollection interface {
	InsertMaintenance(ctx context.Context, record models.MaintenanceRecord) (string, error)
	FindMaintenanceByID(ctx context.Context, id string) (*models.MaintenanceRecord, error)
	FindMaintenanceByVehicleID(ctx context.Context, vehicleID string) ([]models.MaintenanceRecord, error)
	UpdateMaintenance(ctx context.Context, id string, record models.MaintenanceRecord) error
	DeleteMaintenance(ctx context.Context, id string) error
}

// MongoMaintenanceCollection implements MaintenanceCollection for MongoDB
type MongoMaintenanceCollection struct {
	Collection *mongo.Collection
}

// InsertMaintenance inserts a maintenance record and returns its id
func (c *MongoMaintenanceCollection) InsertMaintenance(ctx context.Context, record models.MaintenanceRecord) (string, error) {
	if record.ID.IsZero() {
		record.ID = primitive.NewObjectID()
	}
	record.CreatedAt = time.Now()
	record.UpdatedAt = time.Now()

	if _, err := c.Collection.InsertOne(ctx, record); err != nil {
		return "", err
	}
	return record.ID.Hex(), nil
}

// FindMaintenanceByID finds a maintenance record by its ID
func (c *MongoMaintenanceCollection) FindMaintenanceByID(ctx context.Context, id string) (*models.MaintenanceRecord, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var record models.MaintenanceRecord
	if err := c.Collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&record); err != nil {
		return nil, notFound(err)
	}
	return &record, nil
}

// FindMaintenanceByVehicleID finds maintenance records for a vehicle,
// most recent service first
func (c *MongoMaintenanceCollection) FindMaintenanceByVehicleID(ctx context.Context, vehicleID string) ([]models.MaintenanceRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "service_date", Value: -1}})
	cursor, err := c.Collection.Find(ctx, bson.M{"vehicle_id": vehicleID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []models.MaintenanceRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// UpdateMaintenance replaces a maintenance record
func (c *MongoMaintenanceCollection) UpdateMaintenance(ctx context.Context, id string, record models.MaintenanceRecord) error {
	oid, err := objectID(id)
	if err != nil {
		return ErrNotFound
	}

	record.ID = oid
	record.UpdatedAt = time.Now()

	res, err := c.Collection.ReplaceOne(ctx, bson.M{"_id": oid}, record)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteMaintenance deletes a maintenance record by its ID
func (c *MongoMaintenanceCollection) DeleteMaintenance(ctx context.Context, id string) error {
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
