package db

import (
	"context"
	"time"

	"github.com/ukydev/fleet-tracking/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// DeviceCollection defines the interface for tracking device database operations
type DeviceCollection interface {
	InsertDevice(ctx context.Context, device models.TrackingDevice) (string, error)
	FindDeviceByID(ctx context.Context, id string) (*models.TrackingDevice, error)
	FindDeviceBySerial(ctx context.Context, serialNumber string) (*models.TrackingDevice, error)
	FindDevices(ctx context.Context, filter bson.M) ([]models.TrackingDevice, error)
	FindDevicesByVehicleID(ctx context.Context, vehicleID string) ([]models.TrackingDevice, error)
	UpdateDevice(ctx context.Context, id string, device models.TrackingDevice) error
	UpdateLastConnection(ctx context.Context, id string, at time.Time) error
	DeleteDevice(ctx context.Context, id string) error
}

// MongoDeviceCollection implements DeviceCollection for MongoDB
type MongoDeviceCollection struct {
	Collection *mongo.Collection
}

// InsertDevice inserts a new tracking device and returns its id
func (c *MongoDeviceCollection) InsertDevice(ctx context.Context, device models.TrackingDevice) (string, error) {
	if device.ID.IsZero() {
		device.ID = primitive.NewObjectID()
	}
	device.CreatedAt = time.Now()
	device.UpdatedAt = time.Now()
	if device.Status == "" {
		device.Status = models.DeviceInactive
	}

	if _, err := c.Collection.InsertOne(ctx, device); err != nil {
		return "", err
	}
	return device.ID.Hex(), nil
}

// FindDeviceByID finds a device by its ID
func (c *MongoDeviceCollection) FindDeviceByID(ctx context.Context, id string) (*models.TrackingDevice, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var device models.TrackingDevice
	if err := c.Collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&device); err != nil {
		return nil, notFound(err)
	}
	return &device, nil
}

// FindDeviceBySerial finds a device by its serial number
func (c *MongoDeviceCollection) FindDeviceBySerial(ctx context.Context, serialNumber string) (*models.TrackingDevice, error) {
	var device models.TrackingDevice
	if err := c.Collection.FindOne(ctx, bson.M{"serial_number": serialNumber}).Decode(&device); err != nil {
		return nil, notFound(err)
	}
	return &device, nil
}

// FindDevices finds devices with optional filtering
func (c *MongoDeviceCollection) FindDevices(ctx context.Context, filter bson.M) ([]models.TrackingDevice, error) {
	if filter == nil {
		filter = bson.M{}
	}
	cursor, err := c.Collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var devices []models.TrackingDevice
	if err := cursor.All(ctx, &devices); err != nil {
		return nil, err
	}
	return devices, nil
}

// FindDevicesByVehicleID finds all devices assigned to a vehicle
func (c *MongoDeviceCollection) FindDevicesByVehicleID(ctx context.Context, vehicleID string) ([]models.TrackingDevice, error) {
	return c.FindDevices(ctx, bson.M{"vehicle_id": vehicleID})
}

// UpdateDevice replaces a device document
func (c *MongoDeviceCollection) UpdateDevice(ctx context.Context, id string, device models.TrackingDevice) error {
	oid, err := objectID(id)
	if err != nil {
		return ErrNotFound
	}

	device.ID = oid
	device.UpdatedAt = time.Now()

	res, err := c.Collection.ReplaceOne(ctx, bson.M{"_id": oid}, device)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateLastConnection updates the last connection timestamp of a device
func (c *MongoDeviceCollection) UpdateLastConnection(ctx context.Context, id string, at time.Time) error {
	oid, err := objectID(id)
	if err != nil {
		return ErrNotFound
	}

	res, err := c.Collection.UpdateOne(
		ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"last_connection": at, "updated_at": time.Now()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteDevice deletes a device by its ID
func (c *MongoDeviceCollection) DeleteDevice(ctx context.Context, id string) error {
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
