// Package tracking implements the location ingestion pipeline: each sample
// is persisted, device and vehicle state are refreshed, and the vehicle's
// assigned geofences are checked for violations.
package tracking

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ukydev/fleet-tracking/internal/db"
	"github.com/ukydev/fleet-tracking/internal/geo"
	"github.com/ukydev/fleet-tracking/internal/models"
)

// Service runs the location pipeline against injected storage collections.
type Service struct {
	devices   db.DeviceCollection
	vehicles  db.VehicleCollection
	geofences db.GeofenceCollection
	locations db.LocationCollection
	alerts    db.AlertCollection
}

// NewService creates a tracking service
func NewService(
	devices db.DeviceCollection,
	vehicles db.VehicleCollection,
	geofences db.GeofenceCollection,
	locations db.LocationCollection,
	alerts db.AlertCollection,
) *Service {
	return &Service{
		devices:   devices,
		vehicles:  vehicles,
		geofences: geofences,
		locations: locations,
		alerts:    alerts,
	}
}

// ProcessLocationSample persists a sample and runs the follow-up steps:
// refresh the device's last connection, derive the vehicle status from
// speed, and raise one geofence alert per violated geofence. A sample whose
// device or vehicle cannot be resolved is stored and then dropped quietly.
//
// Two samples for the same vehicle race on the status read-then-write; with
// one device per vehicle the window is harmless, so no locking is done here.
func (s *Service) ProcessLocationSample(ctx context.Context, sample models.LocationHistory) (*models.LocationHistory, error) {
	if sample.EventTime.IsZero() {
		sample.EventTime = time.Now()
	}

	stored, err := s.locations.InsertLocation(ctx, sample)
	if err != nil {
		return nil, fmt.Errorf("insert location: %w", err)
	}

	device, err := s.devices.FindDeviceByID(ctx, stored.DeviceID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return stored, nil
		}
		return nil, fmt.Errorf("find device: %w", err)
	}
	if device.VehicleID == "" {
		return stored, nil
	}

	vehicle, err := s.vehicles.FindVehicleByID(ctx, device.VehicleID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return stored, nil
		}
		return nil, fmt.Errorf("find vehicle: %w", err)
	}

	if err := s.devices.UpdateLastConnection(ctx, device.ID.Hex(), stored.EventTime); err != nil {
		return nil, fmt.Errorf("update device last connection: %w", err)
	}

	newStatus := vehicle.Status
	if stored.Speed != nil {
		if *stored.Speed > 0 {
			newStatus = models.VehicleActive
		} else if *stored.Speed == 0 {
			newStatus = models.VehicleParked
		}
	}
	if newStatus != vehicle.Status {
		if err := s.vehicles.UpdateVehicleStatus(ctx, vehicle.ID.Hex(), newStatus); err != nil {
			return nil, fmt.Errorf("update vehicle status: %w", err)
		}
	}

	if err := s.checkGeofences(ctx, vehicle.ID.Hex(), stored); err != nil {
		return nil, err
	}

	return stored, nil
}

// checkGeofences raises one geofence alert per assigned geofence the sample
// falls outside of. Alerts are not deduplicated: a vehicle that stays
// outside a geofence produces a new alert on every sample.
func (s *Service) checkGeofences(ctx context.Context, vehicleID string, sample *models.LocationHistory) error {
	geofences, err := s.geofences.FindGeofencesByVehicleID(ctx, vehicleID)
	if err != nil {
		return fmt.Errorf("find geofences: %w", err)
	}
	if len(geofences) == 0 {
		return nil
	}

	point := sample.Point()
	for _, g := range geofences {
		if err := g.Validate(); err != nil {
			// Malformed geometry is treated as "not inside" and will
			// produce a violation below; surface it in the logs.
			log.WithFields(log.Fields{
				"geofence_id": g.ID.Hex(),
				"type":        g.Type,
			}).WithError(err).Warn("Geofence has malformed geometry")
		}
	}

	for _, violated := range geo.Violations(point, geofences) {
		alert := models.Alert{
			VehicleID:   vehicleID,
			Type:        models.AlertGeofence,
			Description: fmt.Sprintf("Vehicle left geofence: %s", violated.Name),
			Data: map[string]interface{}{
				"geofenceId": violated.ID.Hex(),
				"location": map[string]interface{}{
					"latitude":  sample.Latitude,
					"longitude": sample.Longitude,
				},
			},
			Acknowledged: false,
		}
		if _, err := s.alerts.InsertAlert(ctx, alert); err != nil {
			return fmt.Errorf("insert geofence alert: %w", err)
		}
	}
	return nil
}

// LocationHistory returns samples for all devices of a vehicle, newest
// first.
func (s *Service) LocationHistory(ctx context.Context, vehicleID string, query db.LocationQuery) ([]models.LocationHistory, error) {
	devices, err := s.devices.FindDevicesByVehicleID(ctx, vehicleID)
	if err != nil {
		return nil, fmt.Errorf("find devices: %w", err)
	}
	deviceIDs := make([]string, 0, len(devices))
	for _, d := range devices {
		deviceIDs = append(deviceIDs, d.ID.Hex())
	}
	return s.locations.FindLocationsByDeviceIDs(ctx, deviceIDs, query)
}

// LastLocation returns the most recent sample for a vehicle, or
// db.ErrNotFound when none exists.
func (s *Service) LastLocation(ctx context.Context, vehicleID string) (*models.LocationHistory, error) {
	locations, err := s.LocationHistory(ctx, vehicleID, db.LocationQuery{Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(locations) == 0 {
		return nil, db.ErrNotFound
	}
	return &locations[0], nil
}
