package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/ukydev/fleet-tracking/internal/db"
	"github.com/ukydev/fleet-tracking/internal/models"
)

// MaintenanceHandler serves maintenance record CRUD endpoints
type MaintenanceHandler struct {
	maintenanceCollection db.MaintenanceCollection
	vehicleCollection     db.VehicleCollection
}

// NewMaintenanceHandler creates a maintenance handler
func NewMaintenanceHandler(maintenance db.MaintenanceCollection, vehicles db.VehicleCollection) *MaintenanceHandler {
	return &MaintenanceHandler{
		maintenanceCollection: maintenance,
		vehicleCollection:     vehicles,
	}
}

type maintenanceRequest struct {
	VehicleID       string                 `json:"vehicle_id"`
	Type            models.MaintenanceType `json:"type"`
	OdometerReading float64                `json:"odometer_reading,omitempty"`
	ServiceDate     time.Time              `json:"service_date"`
	Description     string                 `json:"description,omitempty"`
	Cost            float64                `json:"cost,omitempty"`
}

// ListByVehicle handles GET /api/vehicles/{id}/maintenance
func (h *MaintenanceHandler) ListByVehicle(w http.ResponseWriter, r *http.Request) {
	vehicleID := r.PathValue("id")

	if _, err := h.vehicleCollection.FindVehicleByID(r.Context(), vehicleID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			http.Error(w, "Vehicle not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to look up vehicle", http.StatusInternalServerError)
		return
	}

	records, err := h.maintenanceCollection.FindMaintenanceByVehicleID(r.Context(), vehicleID)
	if err != nil {
		http.Error(w, "Failed to retrieve maintenance records", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(records)
}

// Create handles POST /api/maintenance
func (h *MaintenanceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req maintenanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if req.VehicleID == "" {
		http.Error(w, "Vehicle ID is required", http.StatusBadRequest)
		return
	}
	if !models.IsValidMaintenanceType(req.Type) {
		http.Error(w, "Invalid maintenance type", http.StatusBadRequest)
		return
	}
	if req.ServiceDate.IsZero() {
		http.Error(w, "Service date is required", http.StatusBadRequest)
		return
	}

	if _, err := h.vehicleCollection.FindVehicleByID(r.Context(), req.VehicleID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			http.Error(w, "Vehicle not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to look up vehicle", http.StatusInternalServerError)
		return
	}

	record := models.MaintenanceRecord{
		VehicleID:       req.VehicleID,
		Type:            req.Type,
		OdometerReading: req.OdometerReading,
		ServiceDate:     req.ServiceDate,
		Description:     req.Description,
		Cost:            req.Cost,
	}

	id, err := h.maintenanceCollection.InsertMaintenance(r.Context(), record)
	if err != nil {
		http.Error(w, "Failed to create maintenance record", http.StatusInternalServerError)
		return
	}

	created, err := h.maintenanceCollection.FindMaintenanceByID(r.Context(), id)
	if err != nil {
		http.Error(w, "Failed to retrieve created maintenance record", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

// Update handles PUT /api/maintenance/{id}
func (h *MaintenanceHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	existing, err := h.maintenanceCollection.FindMaintenanceByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			http.Error(w, "Maintenance record not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to retrieve maintenance record", http.StatusInternalServerError)
		return
	}

	var req maintenanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	updated := *existing
	if req.Type != "" {
		if !models.IsValidMaintenanceType(req.Type) {
			http.Error(w, "Invalid maintenance type", http.StatusBadRequest)
			return
		}
		updated.Type = req.Type
	}
	if req.OdometerReading != 0 {
		updated.OdometerReading = req.OdometerReading
	}
	if !req.ServiceDate.IsZero() {
		updated.ServiceDate = req.ServiceDate
	}
	if req.Description != "" {
		updated.Description = req.Description
	}
	if req.Cost != 0 {
		updated.Cost = req.Cost
	}

	if err := h.maintenanceCollection.UpdateMaintenance(r.Context(), id, updated); err != nil {
		http.Error(w, "Failed to update maintenance record", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(updated)
}

// Delete handles DELETE /api/maintenance/{id}
func (h *MaintenanceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.maintenanceCollection.DeleteMaintenance(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			http.Error(w, "Maintenance record not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to delete maintenance record", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Maintenance record deleted successfully"})
}
