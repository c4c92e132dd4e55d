package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/ukydev/fleet-tracking/internal/db"
	"github.com/ukydev/fleet-tracking/internal/models"
	"github.com/ukydev/fleet-tracking/internal/tracking"
)

// TrackingHandler serves location ingestion and history endpoints
type TrackingHandler struct {
	tracker          *tracking.Service
	deviceCollection db.DeviceCollection
	vehicles         db.VehicleCollection
}

// NewTrackingHandler creates a tracking handler
func NewTrackingHandler(tracker *tracking.Service, devices db.DeviceCollection, vehicles db.VehicleCollection) *TrackingHandler {
	return &TrackingHandler{
		tracker:          tracker,
		deviceCollection: devices,
		vehicles:         vehicles,
	}
}

type locationRequest struct {
	Latitude  float64                `json:"latitude"`
	Longitude float64                `json:"longitude"`
	Speed     *float64               `json:"speed,omitempty"`
	Heading   *float64               `json:"heading,omitempty"`
	Accuracy  *float64               `json:"accuracy,omitempty"`
	EventTime *time.Time             `json:"event_time,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// AddLocation handles POST /api/devices/{id}/location
func (h *TrackingHandler) AddLocation(w http.ResponseWriter, r *http.Request) {
	deviceID := r.PathValue("id")

	var req locationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if req.Latitude < -90 || req.Latitude > 90 {
		http.Error(w, "Latitude must be between -90 and 90", http.StatusBadRequest)
		return
	}
	if req.Longitude < -180 || req.Longitude > 180 {
		http.Error(w, "Longitude must be between -180 and 180", http.StatusBadRequest)
		return
	}

	if _, err := h.deviceCollection.FindDeviceByID(r.Context(), deviceID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			http.Error(w, "Device not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to look up device", http.StatusInternalServerError)
		return
	}

	sample := models.LocationHistory{
		DeviceID:  deviceID,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Speed:     req.Speed,
		Heading:   req.Heading,
		Accuracy:  req.Accuracy,
		Metadata:  req.Metadata,
	}
	if req.EventTime != nil {
		sample.EventTime = *req.EventTime
	}

	stored, err := h.tracker.ProcessLocationSample(r.Context(), sample)
	if err != nil {
		http.Error(w, "Failed to process location update", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(stored)
}

// LocationHistory handles GET /api/vehicles/{id}/locations
func (h *TrackingHandler) LocationHistory(w http.ResponseWriter, r *http.Request) {
	vehicleID := r.PathValue("id")

	if _, err := h.vehicles.FindVehicleByID(r.Context(), vehicleID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			http.Error(w, "Vehicle not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to look up vehicle", http.StatusInternalServerError)
		return
	}

	query := db.LocationQuery{}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.ParseInt(limitStr, 10, 64)
		if err != nil || limit < 0 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		query.Limit = limit
	}
	if startStr := r.URL.Query().Get("startDate"); startStr != "" {
		start, err := time.Parse(time.RFC3339, startStr)
		if err != nil {
			http.Error(w, "Invalid startDate", http.StatusBadRequest)
			return
		}
		query.StartDate = start
	}
	if endStr := r.URL.Query().Get("endDate"); endStr != "" {
		end, err := time.Parse(time.RFC3339, endStr)
		if err != nil {
			http.Error(w, "Invalid endDate", http.StatusBadRequest)
			return
		}
		query.EndDate = end
	}

	locations, err := h.tracker.LocationHistory(r.Context(), vehicleID, query)
	if err != nil {
		http.Error(w, "Failed to retrieve location history", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(locations)
}

// LastLocation handles GET /api/vehicles/{id}/locations/last
func (h *TrackingHandler) LastLocation(w http.ResponseWriter, r *http.Request) {
	vehicleID := r.PathValue("id")

	if _, err := h.vehicles.FindVehicleByID(r.Context(), vehicleID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			http.Error(w, "Vehicle not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to look up vehicle", http.StatusInternalServerError)
		return
	}

	location, err := h.tracker.LastLocation(r.Context(), vehicleID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			http.Error(w, "No location data found for this vehicle", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to retrieve last location", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(location)
}
