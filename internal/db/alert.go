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

// AlertCollection defines the interface for alert database operations
type AlertCollection interface {
	InsertAlert(ctx context.Context, alert models.Alert) (string, error)
	FindAlertByID(ctx context.Context, id string) (*models.Alert, error)
	FindAlerts(ctx context.Context, filter bson.M) ([]models.Alert, error)
	FindAlertsByVehicleID(ctx context.Context, vehicleID string) ([]models.Alert, error)
	AcknowledgeAlert(ctx context.Context, id string) error
}

// MongoAlertCollection implements AlertCollection for MongoDB
type MongoAlertCollection struct {
	Collection *mongo.Collection
}

// InsertAlert inserts a new alert and returns its id
func (c *MongoAlertCollection) InsertAlert(ctx context.Context, alert models.Alert) (string, error) {
	if alert.ID.IsZero() {
		alert.ID = primitive.NewObjectID()
	}
	alert.CreatedAt = time.Now()

	if _, err := c.Collection.InsertOne(ctx, alert); err != nil {
		return "", err
	}
	return alert.ID.Hex(), nil
}

// FindAlertByID finds an alert by its ID
func (c *MongoAlertCollection) FindAlertByID(ctx context.Context, id string) (*models.Alert, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var alert models.Alert
	if err := c.Collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&alert); err != nil {
		return nil, notFound(err)
	}
	return &alert, nil
}

// FindAlerts finds alerts with optional filtering, newest first
func (c *MongoAlertCollection) FindAlerts(ctx context.Context, filter bson.M) ([]models.Alert, error) {
	if filter == nil {
		filter = bson.M{}
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := c.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var alerts []models.Alert
	if err := cursor.All(ctx, &alerts); err != nil {
		return nil, err
	}
	return alerts, nil
}

// FindAlertsByVehicleID finds all alerts for a vehicle
func (c *MongoAlertCollection) FindAlertsByVehicleID(ctx context.Context, vehicleID string) ([]models.Alert, error) {
	return c.FindAlerts(ctx, bson.M{"vehicle_id": vehicleID})
}

// AcknowledgeAlert marks an alert as acknowledged
func (c *MongoAlertCollection) AcknowledgeAlert(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return ErrNotFound
	}

	res, err := c.Collection.UpdateOne(
		ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"acknowledged": true, "acknowledged_at": time.Now()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
