package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ukydev/fleet-tracking/internal/db"
	"github.com/ukydev/fleet-tracking/internal/middleware"
	"github.com/ukydev/fleet-tracking/internal/models"
)

// GeofenceHandler serves geofence CRUD and vehicle assignment endpoints
type GeofenceHandler struct {
	geofenceCollection db.GeofenceCollection
	vehicleCollection  db.VehicleCollection
}

// NewGeofenceHandler creates a geofence handler
func NewGeofenceHandler(geofences db.GeofenceCollection, vehicles db.VehicleCollection) *GeofenceHandler {
	return &GeofenceHandler{
		geofenceCollection: geofences,
		vehicleCollection:  vehicles,
	}
}

type geofenceRequest struct {
	Name           string             `json:"name"`
	Type           models.GeofenceType `json:"type"`
	Coordinates    models.Coordinates `json:"coordinates"`
	Schedule       *models.Schedule   `json:"schedule,omitempty"`
	OrganizationID string             `json:"organization_id,omitempty"`
}

// List handles GET /api/geofences
func (h *GeofenceHandler) List(w http.ResponseWriter, r *http.Request) {
	geofences, err := h.geofenceCollection.FindGeofences(r.Context(), nil)
	if err != nil {
		http.Error(w, "Failed to retrieve geofences", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(geofences)
}

// Get handles GET /api/geofences/{id}
func (h *GeofenceHandler) Get(w http.ResponseWriter, r *http.Request) {
	geofence, err := h.geofenceCollection.FindGeofenceByID(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			http.Error(w, "Geofence not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to retrieve geofence", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(geofence)
}

// Create handles POST /api/geofences
func (h *GeofenceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req geofenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	geofence := models.Geofence{
		Name:           req.Name,
		Type:           req.Type,
		Coordinates:    req.Coordinates,
		Schedule:       req.Schedule,
		OrganizationID: req.OrganizationID,
	}
	if claims, ok := middleware.GetUserFromContext(r.Context()); ok {
		geofence.CreatorID = claims.UserID
	}

	if err := geofence.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	id, err := h.geofenceCollection.InsertGeofence(r.Context(), geofence)
	if err != nil {
		http.Error(w, "Failed to create geofence", http.StatusInternalServerError)
		return
	}

	created, err := h.geofenceCollection.FindGeofenceByID(r.Context(), id)
	if err != nil {
		http.Error(w, "Failed to retrieve created geofence", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

// Update handles PUT /api/geofences/{id}. Name, type and coordinates may
// all change; vehicle assignments are preserved.
func (h *GeofenceHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	existing, err := h.geofenceCollection.FindGeofenceByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			http.Error(w, "Geofence not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to retrieve geofence", http.StatusInternalServerError)
		return
	}

	var req geofenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	updated := *existing
	updated.Name = req.Name
	updated.Type = req.Type
	updated.Coordinates = req.Coordinates
	updated.Schedule = req.Schedule
	if req.OrganizationID != "" {
		updated.OrganizationID = req.OrganizationID
	}

	if err := updated.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.geofenceCollection.UpdateGeofence(r.Context(), id, updated); err != nil {
		http.Error(w, "Failed to update geofence", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(updated)
}

// Delete handles DELETE /api/geofences/{id}
func (h *GeofenceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.geofenceCollection.DeleteGeofence(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			http.Error(w, "Geofence not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to delete geofence", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Geofence deleted successfully"})
}

// AssignVehicle handles POST /api/geofences/{id}/vehicles/{vehicleId}
func (h *GeofenceHandler) AssignVehicle(w http.ResponseWriter, r *http.Request) {
	geofenceID := r.PathValue("id")
	vehicleID := r.PathValue("vehicleId")

	if _, err := h.vehicleCollection.FindVehicleByID(r.Context(), vehicleID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			http.Error(w, "Vehicle not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to look up vehicle", http.StatusInternalServerError)
		return
	}

	if err := h.geofenceCollection.AssignVehicle(r.Context(), geofenceID, vehicleID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			http.Error(w, "Geofence not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to assign vehicle to geofence", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Vehicle assigned to geofence successfully"})
}

// UnassignVehicle handles DELETE /api/geofences/{id}/vehicles/{vehicleId}
func (h *GeofenceHandler) UnassignVehicle(w http.ResponseWriter, r *http.Request) {
	geofenceID := r.PathValue("id")
	vehicleID := r.PathValue("vehicleId")

	if err := h.geofenceCollection.UnassignVehicle(r.Context(), geofenceID, vehicleID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			http.Error(w, "Geofence not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to remove vehicle from geofence", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Vehicle removed from geofence successfully"})
}

// VehicleGeofences handles GET /api/vehicles/{id}/geofences
func (h *GeofenceHandler) VehicleGeofences(w http.ResponseWriter, r *http.Request) {
	vehicleID := r.PathValue("id")

	if _, err := h.vehicleCollection.FindVehicleByID(r.Context(), vehicleID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			http.Error(w, "Vehicle not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to look up vehicle", http.StatusInternalServerError)
		return
	}

	geofences, err := h.geofenceCollection.FindGeofencesByVehicleID(r.Context(), vehicleID)
	if err != nil {
		http.Error(w, "Failed to retrieve geofences", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(geofences)
}
