package tracking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ukydev/fleet-tracking/internal/db"
	"github.com/ukydev/fleet-tracking/internal/models"
)

// --- in-memory collection fakes ---

type fakeDevices struct {
	devices         map[string]models.TrackingDevice
	lastConnections map[string]time.Time
}

func newFakeDevices() *fakeDevices {
	return &fakeDevices{
		devices:         make(map[string]models.TrackingDevice),
		lastConnections: make(map[string]time.Time),
	}
}

func (f *fakeDevices) InsertDevice(_ context.Context, device models.TrackingDevice) (string, error) {
	if device.ID.IsZero() {
		device.ID = primitive.NewObjectID()
	}
	f.devices[device.ID.Hex()] = device
	return device.ID.Hex(), nil
}

func (f *fakeDevices) FindDeviceByID(_ context.Context, id string) (*models.TrackingDevice, error) {
	device, ok := f.devices[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &device, nil
}

func (f *fakeDevices) FindDeviceBySerial(_ context.Context, serial string) (*models.TrackingDevice, error) {
	for _, d := range f.devices {
		if d.SerialNumber == serial {
			return &d, nil
		}
	}
	return nil, db.ErrNotFound
}

func (f *fakeDevices) FindDevices(_ context.Context, _ bson.M) ([]models.TrackingDevice, error) {
	out := []models.TrackingDevice{}
	for _, d := range f.devices {
		out = append(out, d)
	}
	return out, nil
}

func (f *fakeDevices) FindDevicesByVehicleID(_ context.Context, vehicleID string) ([]models.TrackingDevice, error) {
	out := []models.TrackingDevice{}
	for _, d := range f.devices {
		if d.VehicleID == vehicleID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeDevices) UpdateDevice(_ context.Context, id string, device models.TrackingDevice) error {
	if _, ok := f.devices[id]; !ok {
		return db.ErrNotFound
	}
	f.devices[id] = device
	return nil
}

func (f *fakeDevices) UpdateLastConnection(_ context.Context, id string, at time.Time) error {
	device, ok := f.devices[id]
	if !ok {
		return db.ErrNotFound
	}
	device.LastConnection = &at
	f.devices[id] = device
	f.lastConnections[id] = at
	return nil
}

func (f *fakeDevices) DeleteDevice(_ context.Context, id string) error {
	if _, ok := f.devices[id]; !ok {
		return db.ErrNotFound
	}
	delete(f.devices, id)
	return nil
}

type fakeVehicles struct {
	vehicles      map[string]models.Vehicle
	statusUpdates []models.VehicleStatus
}

func newFakeVehicles() *fakeVehicles {
	return &fakeVehicles{vehicles: make(map[string]models.Vehicle)}
}

func (f *fakeVehicles) InsertVehicle(_ context.Context, vehicle models.Vehicle) (string, error) {
	if vehicle.ID.IsZero() {
		vehicle.ID = primitive.NewObjectID()
	}
	f.vehicles[vehicle.ID.Hex()] = vehicle
	return vehicle.ID.Hex(), nil
}

func (f *fakeVehicles) FindVehicleByID(_ context.Context, id string) (*models.Vehicle, error) {
	vehicle, ok := f.vehicles[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &vehicle, nil
}

func (f *fakeVehicles) FindVehicles(_ context.Context, _ bson.M) ([]models.Vehicle, error) {
	out := []models.Vehicle{}
	for _, v := range f.vehicles {
		out = append(out, v)
	}
	return out, nil
}

func (f *fakeVehicles) UpdateVehicle(_ context.Context, id string, vehicle models.Vehicle) error {
	if _, ok := f.vehicles[id]; !ok {
		return db.ErrNotFound
	}
	f.vehicles[id] = vehicle
	return nil
}

func (f *fakeVehicles) UpdateVehicleStatus(_ context.Context, id string, status models.VehicleStatus) error {
	vehicle, ok := f.vehicles[id]
	if !ok {
		return db.ErrNotFound
	}
	vehicle.Status = status
	f.vehicles[id] = vehicle
	f.statusUpdates = append(f.statusUpdates, status)
	return nil
}

func (f *fakeVehicles) DeleteVehicle(_ context.Context, id string) error {
	if _, ok := f.vehicles[id]; !ok {
		return db.ErrNotFound
	}
	delete(f.vehicles, id)
	return nil
}

type fakeGeofences struct {
	byVehicle map[string][]models.Geofence
}

func newFakeGeofences() *fakeGeofences {
	return &fakeGeofences{byVehicle: make(map[string][]models.Geofence)}
}

func (f *fakeGeofences) InsertGeofence(_ context.Context, g models.Geofence) (string, error) {
	if g.ID.IsZero() {
		g.ID = primitive.NewObjectID()
	}
	return g.ID.Hex(), nil
}

func (f *fakeGeofences) FindGeofenceByID(_ context.Context, _ string) (*models.Geofence, error) {
	return nil, db.ErrNotFound
}

func (f *fakeGeofences) FindGeofences(_ context.Context, _ bson.M) ([]models.Geofence, error) {
	return nil, nil
}

func (f *fakeGeofences) FindGeofencesByVehicleID(_ context.Context, vehicleID string) ([]models.Geofence, error) {
	return f.byVehicle[vehicleID], nil
}

func (f *fakeGeofences) UpdateGeofence(_ context.Context, _ string, _ models.Geofence) error {
	return nil
}

func (f *fakeGeofences) DeleteGeofence(_ context.Context, _ string) error { return nil }

func (f *fakeGeofences) AssignVehicle(_ context.Context, _, _ string) error { return nil }

func (f *fakeGeofences) UnassignVehicle(_ context.Context, _, _ string) error { return nil }

func (f *fakeGeofences) RemoveVehicleAssignments(_ context.Context, _ string) error { return nil }

type fakeLocations struct {
	inserted  []models.LocationHistory
	insertErr error
}

func (f *fakeLocations) InsertLocation(_ context.Context, location models.LocationHistory) (*models.LocationHistory, error) {
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	if location.ID.IsZero() {
		location.ID = primitive.NewObjectID()
	}
	if location.EventTime.IsZero() {
		location.EventTime = time.Now()
	}
	f.inserted = append(f.inserted, location)
	return &location, nil
}

func (f *fakeLocations) FindLocationsByDeviceID(_ context.Context, deviceID string, query db.LocationQuery) ([]models.LocationHistory, error) {
	return f.FindLocationsByDeviceIDs(context.Background(), []string{deviceID}, query)
}

func (f *fakeLocations) FindLocationsByDeviceIDs(_ context.Context, deviceIDs []string, query db.LocationQuery) ([]models.LocationHistory, error) {
	ids := make(map[string]bool, len(deviceIDs))
	for _, id := range deviceIDs {
		ids[id] = true
	}
	out := []models.LocationHistory{}
	// newest first
	for i := len(f.inserted) - 1; i >= 0; i-- {
		l := f.inserted[i]
		if !ids[l.DeviceID] {
			continue
		}
		out = append(out, l)
		if query.Limit > 0 && int64(len(out)) >= query.Limit {
			break
		}
	}
	return out, nil
}

type fakeAlerts struct {
	alerts    []models.Alert
	insertErr error
	failAfter int // when insertErr is set, fail once this many alerts exist
}

func (f *fakeAlerts) InsertAlert(_ context.Context, alert models.Alert) (string, error) {
	if f.insertErr != nil && f.failAfter <= len(f.alerts) {
		return "", f.insertErr
	}
	alert.ID = primitive.NewObjectID()
	alert.CreatedAt = time.Now()
	f.alerts = append(f.alerts, alert)
	return alert.ID.Hex(), nil
}

func (f *fakeAlerts) FindAlertByID(_ context.Context, _ string) (*models.Alert, error) {
	return nil, db.ErrNotFound
}

func (f *fakeAlerts) FindAlerts(_ context.Context, _ bson.M) ([]models.Alert, error) {
	return f.alerts, nil
}

func (f *fakeAlerts) FindAlertsByVehicleID(_ context.Context, vehicleID string) ([]models.Alert, error) {
	out := []models.Alert{}
	for _, a := range f.alerts {
		if a.VehicleID == vehicleID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAlerts) AcknowledgeAlert(_ context.Context, _ string) error { return nil }

// --- fixtures ---

type fixture struct {
	service   *Service
	devices   *fakeDevices
	vehicles  *fakeVehicles
	geofences *fakeGeofences
	locations *fakeLocations
	alerts    *fakeAlerts
	deviceID  string
	vehicleID string
}

func newFixture(t *testing.T, status models.VehicleStatus) *fixture {
	t.Helper()

	devices := newFakeDevices()
	vehicles := newFakeVehicles()
	geofences := newFakeGeofences()
	locations := &fakeLocations{}
	alerts := &fakeAlerts{}

	vehicleID, err := vehicles.InsertVehicle(context.Background(), models.Vehicle{
		Plate:  "ABC-1234",
		Brand:  "Ford",
		Model:  "Transit",
		Status: status,
	})
	require.NoError(t, err)

	deviceID, err := devices.InsertDevice(context.Background(), models.TrackingDevice{
		SerialNumber: "SN-001",
		VehicleID:    vehicleID,
		Status:       models.DeviceActive,
	})
	require.NoError(t, err)

	return &fixture{
		service:   NewService(devices, vehicles, geofences, locations, alerts),
		devices:   devices,
		vehicles:  vehicles,
		geofences: geofences,
		locations: locations,
		alerts:    alerts,
		deviceID:  deviceID,
		vehicleID: vehicleID,
	}
}

func floatPtr(v float64) *float64 { return &v }

func depotCircle(vehicleID string) models.Geofence {
	return models.Geofence{
		ID:         primitive.NewObjectID(),
		Name:       "Depot",
		Type:       models.GeofenceCircle,
		VehicleIDs: []string{vehicleID},
		Coordinates: models.Coordinates{
			Center: &models.Point{Lat: -23.55, Lng: -46.63},
			Radius: 500,
		},
	}
}

// --- tests ---

func TestProcessLocationSample_PersistsSample(t *testing.T) {
	f := newFixture(t, models.VehicleActive)

	stored, err := f.service.ProcessLocationSample(context.Background(), models.LocationHistory{
		DeviceID:  f.deviceID,
		Latitude:  -23.55,
		Longitude: -46.63,
	})
	require.NoError(t, err)
	require.NotNil(t, stored)

	assert.Len(t, f.locations.inserted, 1)
	assert.False(t, stored.EventTime.IsZero(), "event time should default to ingestion time")
}

func TestProcessLocationSample_UpdatesDeviceLastConnection(t *testing.T) {
	f := newFixture(t, models.VehicleActive)
	eventTime := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	_, err := f.service.ProcessLocationSample(context.Background(), models.LocationHistory{
		DeviceID:  f.deviceID,
		Latitude:  -23.55,
		Longitude: -46.63,
		EventTime: eventTime,
	})
	require.NoError(t, err)

	assert.Equal(t, eventTime, f.devices.lastConnections[f.deviceID])
}

func TestProcessLocationSample_ZeroSpeedParksActiveVehicle(t *testing.T) {
	f := newFixture(t, models.VehicleActive)
	f.geofences.byVehicle[f.vehicleID] = []models.Geofence{depotCircle(f.vehicleID)}

	// Inside the depot circle at speed 0
	_, err := f.service.ProcessLocationSample(context.Background(), models.LocationHistory{
		DeviceID:  f.deviceID,
		Latitude:  -23.55,
		Longitude: -46.63,
		Speed:     floatPtr(0),
	})
	require.NoError(t, err)

	require.Len(t, f.vehicles.statusUpdates, 1)
	assert.Equal(t, models.VehicleParked, f.vehicles.statusUpdates[0])
	assert.Empty(t, f.alerts.alerts, "inside the geofence, no alert expected")
}

func TestProcessLocationSample_PositiveSpeedActivatesParkedVehicle(t *testing.T) {
	f := newFixture(t, models.VehicleParked)

	_, err := f.service.ProcessLocationSample(context.Background(), models.LocationHistory{
		DeviceID:  f.deviceID,
		Latitude:  -23.55,
		Longitude: -46.63,
		Speed:     floatPtr(42.5),
	})
	require.NoError(t, err)

	require.Len(t, f.vehicles.statusUpdates, 1)
	assert.Equal(t, models.VehicleActive, f.vehicles.statusUpdates[0])
}

func TestProcessLocationSample_UnchangedStatusIsNotWritten(t *testing.T) {
	f := newFixture(t, models.VehicleActive)

	_, err := f.service.ProcessLocationSample(context.Background(), models.LocationHistory{
		DeviceID:  f.deviceID,
		Latitude:  -23.55,
		Longitude: -46.63,
		Speed:     floatPtr(30),
	})
	require.NoError(t, err)

	assert.Empty(t, f.vehicles.statusUpdates)
}

func TestProcessLocationSample_MissingSpeedLeavesStatusAlone(t *testing.T) {
	f := newFixture(t, models.VehicleParked)

	_, err := f.service.ProcessLocationSample(context.Background(), models.LocationHistory{
		DeviceID:  f.deviceID,
		Latitude:  -23.55,
		Longitude: -46.63,
	})
	require.NoError(t, err)

	assert.Empty(t, f.vehicles.statusUpdates)
}

func TestProcessLocationSample_UnknownDeviceStopsQuietly(t *testing.T) {
	f := newFixture(t, models.VehicleActive)

	stored, err := f.service.ProcessLocationSample(context.Background(), models.LocationHistory{
		DeviceID:  primitive.NewObjectID().Hex(),
		Latitude:  -23.55,
		Longitude: -46.63,
		Speed:     floatPtr(0),
	})
	require.NoError(t, err)
	require.NotNil(t, stored)

	// Sample is persisted, nothing else happens
	assert.Len(t, f.locations.inserted, 1)
	assert.Empty(t, f.vehicles.statusUpdates)
	assert.Empty(t, f.alerts.alerts)
}

func TestProcessLocationSample_DeviceWithoutVehicleStopsQuietly(t *testing.T) {
	f := newFixture(t, models.VehicleActive)

	orphanID, err := f.devices.InsertDevice(context.Background(), models.TrackingDevice{
		SerialNumber: "SN-ORPHAN",
	})
	require.NoError(t, err)

	_, err = f.service.ProcessLocationSample(context.Background(), models.LocationHistory{
		DeviceID:  orphanID,
		Latitude:  -23.55,
		Longitude: -46.63,
		Speed:     floatPtr(0),
	})
	require.NoError(t, err)

	assert.Len(t, f.locations.inserted, 1)
	assert.Empty(t, f.vehicles.statusUpdates)
	assert.Empty(t, f.alerts.alerts)
	assert.NotContains(t, f.devices.lastConnections, orphanID)
}

func TestProcessLocationSample_OutsideGeofenceCreatesAlert(t *testing.T) {
	f := newFixture(t, models.VehicleActive)
	fence := depotCircle(f.vehicleID)
	f.geofences.byVehicle[f.vehicleID] = []models.Geofence{fence}

	// ~1.1 km south of the depot center, radius 500 m
	_, err := f.service.ProcessLocationSample(context.Background(), models.LocationHistory{
		DeviceID:  f.deviceID,
		Latitude:  -23.56,
		Longitude: -46.63,
		Speed:     floatPtr(0),
	})
	require.NoError(t, err)

	require.Len(t, f.alerts.alerts, 1)
	alert := f.alerts.alerts[0]
	assert.Equal(t, f.vehicleID, alert.VehicleID)
	assert.Equal(t, models.AlertGeofence, alert.Type)
	assert.Equal(t, "Vehicle left geofence: Depot", alert.Description)
	assert.False(t, alert.Acknowledged)
	assert.Equal(t, fence.ID.Hex(), alert.Data["geofenceId"])

	location, ok := alert.Data["location"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, -23.56, location["latitude"])
	assert.Equal(t, -46.63, location["longitude"])

	// speed 0 while active also parks the vehicle
	require.Len(t, f.vehicles.statusUpdates, 1)
	assert.Equal(t, models.VehicleParked, f.vehicles.statusUpdates[0])
}

func TestProcessLocationSample_OneAlertPerViolatedGeofence(t *testing.T) {
	f := newFixture(t, models.VehicleActive)
	near := depotCircle(f.vehicleID)
	far := models.Geofence{
		ID:   primitive.NewObjectID(),
		Name: "Harbor",
		Type: models.GeofenceRectangle,
		Coordinates: models.Coordinates{
			Bounds: &models.Bounds{
				SouthWest: models.Point{Lat: 10, Lng: 10},
				NorthEast: models.Point{Lat: 11, Lng: 11},
			},
		},
	}
	f.geofences.byVehicle[f.vehicleID] = []models.Geofence{near, far}

	_, err := f.service.ProcessLocationSample(context.Background(), models.LocationHistory{
		DeviceID:  f.deviceID,
		Latitude:  -23.56,
		Longitude: -46.63,
	})
	require.NoError(t, err)

	require.Len(t, f.alerts.alerts, 2)
	assert.Equal(t, "Vehicle left geofence: Depot", f.alerts.alerts[0].Description)
	assert.Equal(t, "Vehicle left geofence: Harbor", f.alerts.alerts[1].Description)
}

func TestProcessLocationSample_NoDeduplicationAcrossSamples(t *testing.T) {
	f := newFixture(t, models.VehicleActive)
	f.geofences.byVehicle[f.vehicleID] = []models.Geofence{depotCircle(f.vehicleID)}

	sample := models.LocationHistory{
		DeviceID:  f.deviceID,
		Latitude:  -23.56,
		Longitude: -46.63,
	}

	_, err := f.service.ProcessLocationSample(context.Background(), sample)
	require.NoError(t, err)
	_, err = f.service.ProcessLocationSample(context.Background(), sample)
	require.NoError(t, err)

	// A vehicle that stays outside the fence alerts on every sample; there
	// is deliberately no cooldown, so two identical samples mean two alerts.
	assert.Len(t, f.alerts.alerts, 2)
}

func TestProcessLocationSample_NoGeofencesNoAlerts(t *testing.T) {
	f := newFixture(t, models.VehicleActive)

	_, err := f.service.ProcessLocationSample(context.Background(), models.LocationHistory{
		DeviceID:  f.deviceID,
		Latitude:  80,
		Longitude: 170,
	})
	require.NoError(t, err)

	assert.Empty(t, f.alerts.alerts)
}

func TestProcessLocationSample_StorageFailurePropagates(t *testing.T) {
	f := newFixture(t, models.VehicleActive)
	f.locations.insertErr = errors.New("mongo unavailable")

	_, err := f.service.ProcessLocationSample(context.Background(), models.LocationHistory{
		DeviceID:  f.deviceID,
		Latitude:  -23.55,
		Longitude: -46.63,
	})
	assert.Error(t, err)
}

func TestProcessLocationSample_AlertFailureKeepsEarlierAlerts(t *testing.T) {
	f := newFixture(t, models.VehicleActive)
	first := depotCircle(f.vehicleID)
	second := depotCircle(f.vehicleID)
	second.Name = "Second"
	f.geofences.byVehicle[f.vehicleID] = []models.Geofence{first, second}

	// Fail the second insert: the first alert must survive
	f.alerts.insertErr = errors.New("mongo unavailable")
	f.alerts.failAfter = 1

	_, err := f.service.ProcessLocationSample(context.Background(), models.LocationHistory{
		DeviceID:  f.deviceID,
		Latitude:  -23.56,
		Longitude: -46.63,
	})
	require.Error(t, err)
	assert.Len(t, f.alerts.alerts, 1)
}

func TestLastLocation(t *testing.T) {
	f := newFixture(t, models.VehicleActive)

	_, err := f.service.ProcessLocationSample(context.Background(), models.LocationHistory{
		DeviceID:  f.deviceID,
		Latitude:  -23.55,
		Longitude: -46.63,
		EventTime: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	_, err = f.service.ProcessLocationSample(context.Background(), models.LocationHistory{
		DeviceID:  f.deviceID,
		Latitude:  -23.56,
		Longitude: -46.64,
		EventTime: time.Date(2025, 6, 1, 12, 5, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	last, err := f.service.LastLocation(context.Background(), f.vehicleID)
	require.NoError(t, err)
	assert.Equal(t, -23.56, last.Latitude)
	assert.Equal(t, -46.64, last.Longitude)
}

func TestLastLocation_NoSamples(t *testing.T) {
	f := newFixture(t, models.VehicleActive)

	_, err := f.service.LastLocation(context.Background(), f.vehicleID)
	assert.ErrorIs(t, err, db.ErrNotFound)
}
