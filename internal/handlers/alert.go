package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/ukydev/fleet-tracking/internal/db"
	"go.mongodb.org/mongo-driver/bson"
)

// AlertHandler serves alert listing and acknowledgement endpoints
type AlertHandler struct {
	alertCollection db.AlertCollection
}

// NewAlertHandler creates an alert handler
func NewAlertHandler(alerts db.AlertCollection) *AlertHandler {
	return &AlertHandler{alertCollection: alerts}
}

// List handles GET /api/alerts with optional vehicleId and acknowledged
// filters
func (h *AlertHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := bson.M{}
	if vehicleID := r.URL.Query().Get("vehicleId"); vehicleID != "" {
		filter["vehicle_id"] = vehicleID
	}
	if ackStr := r.URL.Query().Get("acknowledged"); ackStr != "" {
		ack, err := strconv.ParseBool(ackStr)
		if err != nil {
			http.Error(w, "Invalid acknowledged filter", http.StatusBadRequest)
			return
		}
		filter["acknowledged"] = ack
	}

	alerts, err := h.alertCollection.FindAlerts(r.Context(), filter)
	if err != nil {
		http.Error(w, "Failed to retrieve alerts", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(alerts)
}

// Get handles GET /api/alerts/{id}
func (h *AlertHandler) Get(w http.ResponseWriter, r *http.Request) {
	alert, err := h.alertCollection.FindAlertByID(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			http.Error(w, "Alert not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to retrieve alert", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(alert)
}

// Acknowledge handles POST /api/alerts/{id}/acknowledge
func (h *AlertHandler) Acknowledge(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := h.alertCollection.AcknowledgeAlert(r.Context(), id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			http.Error(w, "Alert not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to acknowledge alert", http.StatusInternalServerError)
		return
	}

	alert, err := h.alertCollection.FindAlertByID(r.Context(), id)
	if err != nil {
		http.Error(w, "Failed to retrieve alert", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(alert)
}
