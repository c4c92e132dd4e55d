package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ukydev/fleet-tracking/internal/db"
	"github.com/ukydev/fleet-tracking/internal/models"
	"go.mongodb.org/mongo-driver/bson"
)

// DeviceHandler serves tracking device CRUD endpoints
type DeviceHandler struct {
	deviceCollection  db.DeviceCollection
	vehicleCollection db.VehicleCollection
}

// NewDeviceHandler creates a device handler
func NewDeviceHandler(devices db.DeviceCollection, vehicles db.VehicleCollection) *DeviceHandler {
	return &DeviceHandler{
		deviceCollection:  devices,
		vehicleCollection: vehicles,
	}
}

type deviceRequest struct {
	SerialNumber  string                 `json:"serial_number"`
	Model         string                 `json:"model,omitempty"`
	VehicleID     string                 `json:"vehicle_id,omitempty"`
	Status        models.DeviceStatus    `json:"status,omitempty"`
	Configuration map[string]interface{} `json:"configuration,omitempty"`
}

// List handles GET /api/devices
func (h *DeviceHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := bson.M{}
	if vehicleID := r.URL.Query().Get("vehicleId"); vehicleID != "" {
		filter["vehicle_id"] = vehicleID
	}

	devices, err := h.deviceCollection.FindDevices(r.Context(), filter)
	if err != nil {
		http.Error(w, "Failed to retrieve devices", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(devices)
}

// Get handles GET /api/devices/{id}
func (h *DeviceHandler) Get(w http.ResponseWriter, r *http.Request) {
	device, err := h.deviceCollection.FindDeviceByID(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			http.Error(w, "Device not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to retrieve device", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(device)
}

// Create handles POST /api/devices
func (h *DeviceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req deviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if req.SerialNumber == "" {
		http.Error(w, "Serial number is required", http.StatusBadRequest)
		return
	}

	// Serial numbers are unique
	if _, err := h.deviceCollection.FindDeviceBySerial(r.Context(), req.SerialNumber); err == nil {
		http.Error(w, "Serial number already registered", http.StatusConflict)
		return
	}

	if req.VehicleID != "" {
		if _, err := h.vehicleCollection.FindVehicleByID(r.Context(), req.VehicleID); err != nil {
			if errors.Is(err, db.ErrNotFound) {
				http.Error(w, "Vehicle not found", http.StatusNotFound)
				return
			}
			http.Error(w, "Failed to look up vehicle", http.StatusInternalServerError)
			return
		}
	}

	device := models.TrackingDevice{
		SerialNumber:  req.SerialNumber,
		Model:         req.Model,
		VehicleID:     req.VehicleID,
		Status:        req.Status,
		Configuration: req.Configuration,
	}

	id, err := h.deviceCollection.InsertDevice(r.Context(), device)
	if err != nil {
		http.Error(w, "Failed to create device", http.StatusInternalServerError)
		return
	}

	created, err := h.deviceCollection.FindDeviceByID(r.Context(), id)
	if err != nil {
		http.Error(w, "Failed to retrieve created device", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

// Update handles PUT /api/devices/{id}
func (h *DeviceHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	existing, err := h.deviceCollection.FindDeviceByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			http.Error(w, "Device not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to retrieve device", http.StatusInternalServerError)
		return
	}

	var req deviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	updated := *existing
	if req.SerialNumber != "" {
		updated.SerialNumber = req.SerialNumber
	}
	if req.Model != "" {
		updated.Model = req.Model
	}
	if req.VehicleID != "" {
		if _, err := h.vehicleCollection.FindVehicleByID(r.Context(), req.VehicleID); err != nil {
			if errors.Is(err, db.ErrNotFound) {
				http.Error(w, "Vehicle not found", http.StatusNotFound)
				return
			}
			http.Error(w, "Failed to look up vehicle", http.StatusInternalServerError)
			return
		}
		updated.VehicleID = req.VehicleID
	}
	if req.Status != "" {
		updated.Status = req.Status
	}
	if req.Configuration != nil {
		updated.Configuration = req.Configuration
	}

	if err := h.deviceCollection.UpdateDevice(r.Context(), id, updated); err != nil {
		http.Error(w, "Failed to update device", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(updated)
}

// Delete handles DELETE /api/devices/{id}
func (h *DeviceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.deviceCollection.DeleteDevice(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			http.Error(w, "Device not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to delete device", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Device deleted successfully"})
}
