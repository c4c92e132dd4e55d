package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ukydev/fleet-tracking/internal/db"
	"github.com/ukydev/fleet-tracking/internal/middleware"
	"github.com/ukydev/fleet-tracking/internal/models"
	"go.mongodb.org/mongo-driver/bson"
)

// VehicleHandler serves vehicle CRUD endpoints
type VehicleHandler struct {
	vehicleCollection  db.VehicleCollection
	geofenceCollection db.GeofenceCollection
}

// NewVehicleHandler creates a vehicle handler
func NewVehicleHandler(vehicles db.VehicleCollection, geofences db.GeofenceCollection) *VehicleHandler {
	return &VehicleHandler{
		vehicleCollection:  vehicles,
		geofenceCollection: geofences,
	}
}

type vehicleRequest struct {
	Plate          string               `json:"plate"`
	Brand          string               `json:"brand"`
	Model          string               `json:"model"`
	Year           int                  `json:"year,omitempty"`
	Color          string               `json:"color,omitempty"`
	Nickname       string               `json:"nickname,omitempty"`
	OrganizationID string               `json:"organization_id,omitempty"`
	Status         models.VehicleStatus `json:"status,omitempty"`
}

// List handles GET /api/vehicles
func (h *VehicleHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := bson.M{}
	if status := r.URL.Query().Get("status"); status != "" {
		filter["status"] = status
	}

	vehicles, err := h.vehicleCollection.FindVehicles(r.Context(), filter)
	if err != nil {
		http.Error(w, "Failed to retrieve vehicles", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(vehicles)
}

// Get handles GET /api/vehicles/{id}
func (h *VehicleHandler) Get(w http.ResponseWriter, r *http.Request) {
	vehicle, err := h.vehicleCollection.FindVehicleByID(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			http.Error(w, "Vehicle not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to retrieve vehicle", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(vehicle)
}

// Create handles POST /api/vehicles
func (h *VehicleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req vehicleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if req.Plate == "" || req.Brand == "" || req.Model == "" {
		http.Error(w, "Plate, brand and model are required", http.StatusBadRequest)
		return
	}
	if req.Status != "" && !models.IsValidVehicleStatus(req.Status) {
		http.Error(w, "Invalid vehicle status", http.StatusBadRequest)
		return
	}

	vehicle := models.Vehicle{
		Plate:          req.Plate,
		Brand:          req.Brand,
		Model:          req.Model,
		Year:           req.Year,
		Color:          req.Color,
		Nickname:       req.Nickname,
		OrganizationID: req.OrganizationID,
		Status:         req.Status,
	}
	if claims, ok := middleware.GetUserFromContext(r.Context()); ok {
		vehicle.OwnerID = claims.UserID
	}

	id, err := h.vehicleCollection.InsertVehicle(r.Context(), vehicle)
	if err != nil {
		http.Error(w, "Failed to create vehicle", http.StatusInternalServerError)
		return
	}

	created, err := h.vehicleCollection.FindVehicleByID(r.Context(), id)
	if err != nil {
		http.Error(w, "Failed to retrieve created vehicle", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

// Update handles PUT /api/vehicles/{id}
func (h *VehicleHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	existing, err := h.vehicleCollection.FindVehicleByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			http.Error(w, "Vehicle not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to retrieve vehicle", http.StatusInternalServerError)
		return
	}

	var req vehicleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	updated := *existing
	if req.Plate != "" {
		updated.Plate = req.Plate
	}
	if req.Brand != "" {
		updated.Brand = req.Brand
	}
	if req.Model != "" {
		updated.Model = req.Model
	}
	if req.Year != 0 {
		updated.Year = req.Year
	}
	if req.Color != "" {
		updated.Color = req.Color
	}
	if req.Nickname != "" {
		updated.Nickname = req.Nickname
	}
	if req.Status != "" {
		if !models.IsValidVehicleStatus(req.Status) {
			http.Error(w, "Invalid vehicle status", http.StatusBadRequest)
			return
		}
		updated.Status = req.Status
	}

	if err := h.vehicleCollection.UpdateVehicle(r.Context(), id, updated); err != nil {
		http.Error(w, "Failed to update vehicle", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(updated)
}

// Delete handles DELETE /api/vehicles/{id}. Geofence assignments for the
// vehicle are removed as part of the delete.
func (h *VehicleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := h.vehicleCollection.DeleteVehicle(r.Context(), id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			http.Error(w, "Vehicle not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to delete vehicle", http.StatusInternalServerError)
		return
	}

	if err := h.geofenceCollection.RemoveVehicleAssignments(r.Context(), id); err != nil {
		http.Error(w, "Vehicle deleted but assignments could not be removed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Vehicle deleted successfully"})
}
