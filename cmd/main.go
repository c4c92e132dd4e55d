package main

import (
	"net/http"
	"os"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/ukydev/fleet-tracking/internal/auth"
	"github.com/ukydev/fleet-tracking/internal/db"
	"github.com/ukydev/fleet-tracking/internal/handlers"
	"github.com/ukydev/fleet-tracking/internal/middleware"
	"github.com/ukydev/fleet-tracking/internal/mqtt"
	"github.com/ukydev/fleet-tracking/internal/tracking"
)

func main() {
	// .env is optional; real deployments set the environment directly
	if err := godotenv.Load(); err != nil {
		log.Debug("No .env file found, using environment")
	}

	client, err := db.ConnectMongo()
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	log.Info("Connected to MongoDB")

	dbName := os.Getenv("MONGO_DB")
	if dbName == "" {
		dbName = "fleet"
	}
	collections := db.NewCollections(client.Database(dbName))

	authService, err := auth.NewService()
	if err != nil {
		log.WithError(err).Fatal("Failed to create auth service")
	}
	authMiddleware := middleware.NewAuthMiddleware(authService)
	rateLimiter := middleware.NewRateLimitMiddleware()

	tracker := tracking.NewService(
		collections.Devices,
		collections.Vehicles,
		collections.Geofences,
		collections.Locations,
		collections.Alerts,
	)

	authHandler := handlers.NewAuthHandler(authService, collections.Users)
	vehicleHandler := handlers.NewVehicleHandler(collections.Vehicles, collections.Geofences)
	deviceHandler := handlers.NewDeviceHandler(collections.Devices, collections.Vehicles)
	geofenceHandler := handlers.NewGeofenceHandler(collections.Geofences, collections.Vehicles)
	trackingHandler := handlers.NewTrackingHandler(tracker, collections.Devices, collections.Vehicles)
	alertHandler := handlers.NewAlertHandler(collections.Alerts)
	maintenanceHandler := handlers.NewMaintenanceHandler(collections.Maintenance, collections.Vehicles)

	mux := routes(routeHandlers{
		auth:        authHandler,
		vehicles:    vehicleHandler,
		devices:     deviceHandler,
		geofences:   geofenceHandler,
		tracking:    trackingHandler,
		alerts:      alertHandler,
		maintenance: maintenanceHandler,
	})

	handler := rateLimiter.RateLimit(300, 60)(authMiddleware.Authenticate(mux))

	// MQTT ingestion is optional; without a broker the HTTP endpoint is the
	// only ingestion path
	if brokerURL := os.Getenv("MQTT_BROKER_URL"); brokerURL != "" {
		clientID := os.Getenv("MQTT_CLIENT_ID")
		if clientID == "" {
			clientID = "fleet-tracking-server"
		}
		mqttClient, err := mqtt.Connect(brokerURL, clientID)
		if err != nil {
			log.WithError(err).Fatal("Failed to connect to MQTT broker")
		}
		defer mqttClient.Disconnect(250)

		subscriber := mqtt.NewSubscriber(mqttClient, tracker)
		if err := subscriber.Start(); err != nil {
			log.WithError(err).Fatal("Failed to subscribe to device locations")
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.WithField("port", port).Info("HTTP server listening")
	log.Fatal(http.ListenAndServe(":"+port, handler))
}

type routeHandlers struct {
	auth        *handlers.AuthHandler
	vehicles    *handlers.VehicleHandler
	devices     *handlers.DeviceHandler
	geofences   *handlers.GeofenceHandler
	tracking    *handlers.TrackingHandler
	alerts      *handlers.AlertHandler
	maintenance *handlers.MaintenanceHandler
}

func routes(h routeHandlers) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("/api/auth/login", h.auth.Login)
	mux.HandleFunc("/api/auth/register", h.auth.Register)
	mux.HandleFunc("/api/auth/profile", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut {
			h.auth.UpdateProfile(w, r)
			return
		}
		h.auth.GetProfile(w, r)
	})
	mux.HandleFunc("/api/auth/password", h.auth.ChangePassword)

	mux.HandleFunc("GET /api/vehicles", h.vehicles.List)
	mux.HandleFunc("POST /api/vehicles", h.vehicles.Create)
	mux.HandleFunc("GET /api/vehicles/{id}", h.vehicles.Get)
	mux.HandleFunc("PUT /api/vehicles/{id}", h.vehicles.Update)
	mux.HandleFunc("DELETE /api/vehicles/{id}", h.vehicles.Delete)

	mux.HandleFunc("GET /api/devices", h.devices.List)
	mux.HandleFunc("POST /api/devices", h.devices.Create)
	mux.HandleFunc("GET /api/devices/{id}", h.devices.Get)
	mux.HandleFunc("PUT /api/devices/{id}", h.devices.Update)
	mux.HandleFunc("DELETE /api/devices/{id}", h.devices.Delete)

	mux.HandleFunc("GET /api/geofences", h.geofences.List)
	mux.HandleFunc("POST /api/geofences", h.geofences.Create)
	mux.HandleFunc("GET /api/geofences/{id}", h.geofences.Get)
	mux.HandleFunc("PUT /api/geofences/{id}", h.geofences.Update)
	mux.HandleFunc("DELETE /api/geofences/{id}", h.geofences.Delete)
	mux.HandleFunc("POST /api/geofences/{id}/vehicles/{vehicleId}", h.geofences.AssignVehicle)
	mux.HandleFunc("DELETE /api/geofences/{id}/vehicles/{vehicleId}", h.geofences.UnassignVehicle)
	mux.HandleFunc("GET /api/vehicles/{id}/geofences", h.geofences.VehicleGeofences)

	mux.HandleFunc("POST /api/devices/{id}/location", h.tracking.AddLocation)
	mux.HandleFunc("GET /api/vehicles/{id}/locations", h.tracking.LocationHistory)
	mux.HandleFunc("GET /api/vehicles/{id}/locations/last", h.tracking.LastLocation)

	mux.HandleFunc("GET /api/alerts", h.alerts.List)
	mux.HandleFunc("GET /api/alerts/{id}", h.alerts.Get)
	mux.HandleFunc("POST /api/alerts/{id}/acknowledge", h.alerts.Acknowledge)

	mux.HandleFunc("GET /api/vehicles/{id}/maintenance", h.maintenance.ListByVehicle)
	mux.HandleFunc("POST /api/maintenance", h.maintenance.Create)
	mux.HandleFunc("PUT /api/maintenance/{id}", h.maintenance.Update)
	mux.HandleFunc("DELETE /api/maintenance/{id}", h.maintenance.Delete)

	return mux
}
