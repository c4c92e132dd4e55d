package handlers

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/ukydev/fleet-tracking/internal/db"
	"github.com/ukydev/fleet-tracking/internal/models"
)

// MockVehicleCollection is a mock implementation of VehicleCollection
type MockVehicleCollection struct {
	mock.Mock
}

func (m *MockVehicleCollection) InsertVehicle(ctx context.Context, vehicle models.Vehicle) (string, error) {
	args := m.Called(ctx, vehicle)
	return args.String(0), args.Error(1)
}

func (m *MockVehicleCollection) FindVehicleByID(ctx context.Context, id string) (*models.Vehicle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vehicle), args.Error(1)
}

func (m *MockVehicleCollection) FindVehicles(ctx context.Context, filter bson.M) ([]models.Vehicle, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Vehicle), args.Error(1)
}

func (m *MockVehicleCollection) UpdateVehicle(ctx context.Context, id string, vehicle models.Vehicle) error {
	args := m.Called(ctx, id, vehicle)
	return args.Error(0)
}

func (m *MockVehicleCollection) UpdateVehicleStatus(ctx context.Context, id string, status models.VehicleStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockVehicleCollection) DeleteVehicle(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockDeviceCollection is a mock implementation of DeviceCollection
type MockDeviceCollection struct {
	mock.Mock
}

func (m *MockDeviceCollection) InsertDevice(ctx context.Context, device models.TrackingDevice) (string, error) {
	args := m.Called(ctx, device)
	return args.String(0), args.Error(1)
}

func (m *MockDeviceCollection) FindDeviceByID(ctx context.Context, id string) (*models.TrackingDevice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TrackingDevice), args.Error(1)
}

func (m *MockDeviceCollection) FindDeviceBySerial(ctx context.Context, serialNumber string) (*models.TrackingDevice, error) {
	args := m.Called(ctx, serialNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TrackingDevice), args.Error(1)
}

func (m *MockDeviceCollection) FindDevices(ctx context.Context, filter bson.M) ([]models.TrackingDevice, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TrackingDevice), args.Error(1)
}

func (m *MockDeviceCollection) FindDevicesByVehicleID(ctx context.Context, vehicleID string) ([]models.TrackingDevice, error) {
	args := m.Called(ctx, vehicleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TrackingDevice), args.Error(1)
}

func (m *MockDeviceCollection) UpdateDevice(ctx context.Context, id string, device models.TrackingDevice) error {
	args := m.Called(ctx, id, device)
	return args.Error(0)
}

func (m *MockDeviceCollection) UpdateLastConnection(ctx context.Context, id string, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *MockDeviceCollection) DeleteDevice(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockGeofenceCollection is a mock implementation of GeofenceCollection
type MockGeofenceCollection struct {
	mock.Mock
}

func (m *MockGeofenceCollection) InsertGeofence(ctx context.Context, geofence models.Geofence) (string, error) {
	args := m.Called(ctx, geofence)
	return args.String(0), args.Error(1)
}

func (m *MockGeofenceCollection) FindGeofenceByID(ctx context.Context, id string) (*models.Geofence, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Geofence), args.Error(1)
}

func (m *MockGeofenceCollection) FindGeofences(ctx context.Context, filter bson.M) ([]models.Geofence, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Geofence), args.Error(1)
}

func (m *MockGeofenceCollection) FindGeofencesByVehicleID(ctx context.Context, vehicleID string) ([]models.Geofence, error) {
	args := m.Called(ctx, vehicleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Geofence), args.Error(1)
}

func (m *MockGeofenceCollection) UpdateGeofence(ctx context.Context, id string, geofence models.Geofence) error {
	args := m.Called(ctx, id, geofence)
	return args.Error(0)
}

func (m *MockGeofenceCollection) DeleteGeofence(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockGeofenceCollection) AssignVehicle(ctx context.Context, geofenceID, vehicleID string) error {
	args := m.Called(ctx, geofenceID, vehicleID)
	return args.Error(0)
}

func (m *MockGeofenceCollection) UnassignVehicle(ctx context.Context, geofenceID, vehicleID string) error {
	args := m.Called(ctx, geofenceID, vehicleID)
	return args.Error(0)
}

func (m *MockGeofenceCollection) RemoveVehicleAssignments(ctx context.Context, vehicleID string) error {
	args := m.Called(ctx, vehicleID)
	return args.Error(0)
}

// MockLocationCollection is a mock implementation of LocationCollection
type MockLocationCollection struct {
	mock.Mock
}

func (m *MockLocationCollection) InsertLocation(ctx context.Context, location models.LocationHistory) (*models.LocationHistory, error) {
	args := m.Called(ctx, location)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LocationHistory), args.Error(1)
}

func (m *MockLocationCollection) FindLocationsByDeviceID(ctx context.Context, deviceID string, query db.LocationQuery) ([]models.LocationHistory, error) {
	args := m.Called(ctx, deviceID, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.LocationHistory), args.Error(1)
}

func (m *MockLocationCollection) FindLocationsByDeviceIDs(ctx context.Context, deviceIDs []string, query db.LocationQuery) ([]models.LocationHistory, error) {
	args := m.Called(ctx, deviceIDs, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.LocationHistory), args.Error(1)
}

// MockAlertCollection is a mock implementation of AlertCollection
type MockAlertCollection struct {
	mock.Mock
}

func (m *MockAlertCollection) InsertAlert(ctx context.Context, alert models.Alert) (string, error) {
	args := m.Called(ctx, alert)
	return args.String(0), args.Error(1)
}

func (m *MockAlertCollection) FindAlertByID(ctx context.Context, id string) (*models.Alert, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Alert), args.Error(1)
}

func (m *MockAlertCollection) FindAlerts(ctx context.Context, filter bson.M) ([]models.Alert, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Alert), args.Error(1)
}

func (m *MockAlertCollection) FindAlertsByVehicleID(ctx context.Context, vehicleID string) ([]models.Alert, error) {
	args := m.Called(ctx, vehicleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Alert), args.Error(1)
}

func (m *MockAlertCollection) AcknowledgeAlert(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
