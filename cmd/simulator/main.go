package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
)

// Location represents a geographical location with latitude and longitude coordinates.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// LocationSample is the payload posted to the device location endpoint.
type LocationSample struct {
	Latitude  float64                `json:"latitude"`
	Longitude float64                `json:"longitude"`
	Speed     *float64               `json:"speed,omitempty"`
	Heading   *float64               `json:"heading,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Cities for realistic routes
var cities = []Location{
	{Lat: 51.5074, Lng: -0.1278},   // London
	{Lat: 40.7128, Lng: -74.0060},  // New York
	{Lat: 40.4168, Lng: -3.7038},   // Madrid
	{Lat: 48.8566, Lng: 2.3522},    // Paris
	{Lat: 41.0082, Lng: 28.9784},   // Istanbul
	{Lat: 34.0522, Lng: -118.2437}, // Los Angeles
	{Lat: 37.7749, Lng: -122.4194}, // San Francisco
	{Lat: 52.5200, Lng: 13.4050},   // Berlin
	{Lat: 35.6762, Lng: 139.6503},  // Tokyo
	{Lat: -33.8688, Lng: 151.2093}, // Sydney
	{Lat: 1.3521, Lng: 103.8198},   // Singapore
	{Lat: -23.5505, Lng: -46.6333}, // São Paulo
	{Lat: 43.6532, Lng: -79.3832},  // Toronto
	{Lat: 25.2048, Lng: 55.2708},   // Dubai
	{Lat: 19.0760, Lng: 72.8777},   // Mumbai
	{Lat: -26.2041, Lng: 28.0473},  // Johannesburg
}

func jitterLocation(base Location, meters float64) Location {
	latMetersPerDeg := 111320.0
	lngMetersPerDeg := 111320.0 * math.Cos(base.Lat*math.Pi/180)
	dLat := (rand.Float64()*2 - 1) * (meters / latMetersPerDeg)
	dLng := (rand.Float64()*2 - 1) * (meters / lngMetersPerDeg)
	return Location{Lat: base.Lat + dLat, Lng: base.Lng + dLng}
}

func randomLocation() Location {
	base := cities[rand.Intn(len(cities))]
	return jitterLocation(base, 500) // start close to roads
}

var authToken string

func authorizedPost(url string, body *bytes.Buffer) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodPost, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}
	client := &http.Client{Timeout: 10 * time.Second}
	return client.Do(req)
}

func postJSON(url string, payload interface{}) (map[string]interface{}, int, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, err
	}
	resp, err := authorizedPost(url, bytes.NewBuffer(data))
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil && err != io.EOF {
		return nil, resp.StatusCode, err
	}
	return result, resp.StatusCode, nil
}

// authenticate logs the simulator user in, registering the account first
// when it does not exist yet.
func authenticate(apiURL string) error {
	username := os.Getenv("SIM_USERNAME")
	if username == "" {
		username = "simulator"
	}
	password := os.Getenv("SIM_PASSWORD")
	if password == "" {
		password = "simulator123"
	}

	result, status, err := postJSON(apiURL+"/auth/login", map[string]string{
		"username": username,
		"password": password,
	})
	if err == nil && status == http.StatusOK {
		if token, ok := result["token"].(string); ok {
			authToken = token
			return nil
		}
	}

	result, status, err = postJSON(apiURL+"/auth/register", map[string]interface{}{
		"username":  username,
		"email":     username + "@simulator.local",
		"password":  password,
		"full_name": "Fleet Simulator",
		"role":      "manager",
	})
	if err != nil {
		return fmt.Errorf("register: %w", err)
	}
	if status != http.StatusCreated {
		return fmt.Errorf("register failed with status %d", status)
	}
	token, ok := result["token"].(string)
	if !ok {
		return fmt.Errorf("no token in register response")
	}
	authToken = token
	return nil
}

var (
	brands = []string{"Ford", "Chevrolet", "Toyota", "Mercedes-Benz", "Volvo"}
	models = []string{"Transit", "Silverado", "Hilux", "Sprinter", "FH16"}
)

func createVehicle(apiURL string, index int) (string, error) {
	payload := map[string]interface{}{
		"plate": fmt.Sprintf("SIM-%04d", index),
		"brand": brands[rand.Intn(len(brands))],
		"model": models[rand.Intn(len(models))],
		"year":  2018 + rand.Intn(7),
		"color": []string{"white", "silver", "blue", "red"}[rand.Intn(4)],
	}

	result, status, err := postJSON(apiURL+"/vehicles", payload)
	if err != nil {
		return "", fmt.Errorf("create vehicle: %w", err)
	}
	if status != http.StatusCreated {
		return "", fmt.Errorf("vehicle creation failed with status %d", status)
	}
	id, ok := result["id"].(string)
	if !ok {
		return "", fmt.Errorf("invalid vehicle ID in response")
	}

	log.WithFields(log.Fields{
		"vehicle_id": id,
		"plate":      payload["plate"],
	}).Info("Created vehicle")
	return id, nil
}

func createDevice(apiURL, vehicleID string, index int) (string, error) {
	payload := map[string]interface{}{
		"serial_number": fmt.Sprintf("SIM-DEV-%04d", index),
		"model":         []string{"GT06N", "TK103", "FMB920"}[rand.Intn(3)],
		"vehicle_id":    vehicleID,
	}

	result, status, err := postJSON(apiURL+"/devices", payload)
	if err != nil {
		return "", fmt.Errorf("create device: %w", err)
	}
	if status != http.StatusCreated {
		return "", fmt.Errorf("device creation failed with status %d", status)
	}
	id, ok := result["id"].(string)
	if !ok {
		return "", fmt.Errorf("invalid device ID in response")
	}

	log.WithFields(log.Fields{
		"device_id":  id,
		"vehicle_id": vehicleID,
	}).Info("Created tracking device")
	return id, nil
}

// createDepotGeofence draws a circle around the vehicle's starting point and
// assigns the vehicle to it, so that driving away raises geofence alerts.
func createDepotGeofence(apiURL, vehicleID string, center Location, index int) error {
	payload := map[string]interface{}{
		"name": fmt.Sprintf("Depot %d", index),
		"type": "circle",
		"coordinates": map[string]interface{}{
			"center": center,
			"radius": 2000 + rand.Float64()*3000, // meters
		},
	}

	result, status, err := postJSON(apiURL+"/geofences", payload)
	if err != nil {
		return fmt.Errorf("create geofence: %w", err)
	}
	if status != http.StatusCreated {
		return fmt.Errorf("geofence creation failed with status %d", status)
	}
	geofenceID, ok := result["id"].(string)
	if !ok {
		return fmt.Errorf("invalid geofence ID in response")
	}

	_, status, err = postJSON(apiURL+"/geofences/"+geofenceID+"/vehicles/"+vehicleID, map[string]string{})
	if err != nil {
		return fmt.Errorf("assign vehicle: %w", err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("vehicle assignment failed with status %d", status)
	}

	log.WithFields(log.Fields{
		"geofence_id": geofenceID,
		"vehicle_id":  vehicleID,
	}).Info("Created depot geofence")
	return nil
}

// --- Routing & movement ---

type VehicleRoute struct {
	Points    []Location
	SegIndex  int
	SegOffset float64 // km along current segment
}

type VehicleState struct {
	DeviceID   string
	Position   Location
	SpeedKmh   float64
	BatteryPct float64
	StopTicks  int // ticks left in the current parked phase
	Route      *VehicleRoute
}

func haversineKm(a, b Location) float64 {
	R := 6371.0
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	s := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(s), math.Sqrt(1-s))
	return R * c
}

func lerp(a, b Location, t float64) Location {
	return Location{Lat: a.Lat + (b.Lat-a.Lat)*t, Lng: a.Lng + (b.Lng-a.Lng)*t}
}

func fetchOSRMRoute(start, end Location) ([]Location, error) {
	url := fmt.Sprintf("https://router.project-osrm.org/route/v1/driving/%.6f,%.6f;%.6f,%.6f?overview=full&geometries=geojson", start.Lng, start.Lat, end.Lng, end.Lat)
	resp, err := http.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("osrm status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	var obj struct {
		Routes []struct {
			Geometry struct {
				Coordinates [][]float64 `json:"coordinates"`
			} `json:"geometry"`
		} `json:"routes"`
	}
	if err := json.Unmarshal(body, &obj); err != nil {
		return nil, err
	}
	if len(obj.Routes) == 0 || len(obj.Routes[0].Geometry.Coordinates) < 2 {
		return nil, fmt.Errorf("no route")
	}
	coords := obj.Routes[0].Geometry.Coordinates
	pts := make([]Location, 0, len(coords))
	for _, c := range coords {
		if len(c) < 2 {
			continue
		}
		pts = append(pts, Location{Lat: c[1], Lng: c[0]})
	}
	return pts, nil
}

func planNewRoute(s *VehicleState) {
	start := s.Position
	// pick far city
	var end Location
	for i := 0; i < 10; i++ {
		cand := cities[rand.Intn(len(cities))]
		if haversineKm(start, cand) > 50 {
			end = jitterLocation(cand, 500)
			break
		}
	}
	pts, err := fetchOSRMRoute(start, end)
	if err != nil {
		// fallback small jitter loop
		s.Route = &VehicleRoute{Points: []Location{start, jitterLocation(start, 2000)}, SegIndex: 0, SegOffset: 0}
		return
	}
	s.Route = &VehicleRoute{Points: pts, SegIndex: 0, SegOffset: 0}
}

func stepAlongRoute(s *VehicleState, tickSec float64) {
	if s.Route == nil || len(s.Route.Points) < 2 {
		planNewRoute(s)
	}
	remKm := s.SpeedKmh * (tickSec / 3600.0)
	for remKm > 0 && s.Route.SegIndex < len(s.Route.Points)-1 {
		a := s.Route.Points[s.Route.SegIndex]
		b := s.Route.Points[s.Route.SegIndex+1]
		segLen := haversineKm(a, b)
		leftOnSeg := segLen - s.Route.SegOffset
		if remKm >= leftOnSeg {
			// advance to next segment
			s.Position = b
			s.Route.SegIndex++
			s.Route.SegOffset = 0
			remKm -= leftOnSeg
			continue
		}
		// stay on current segment
		t := (s.Route.SegOffset + remKm) / segLen
		if t < 0 {
			t = 0
		}
		if t > 1 {
			t = 1
		}
		s.Position = lerp(a, b, t)
		s.Route.SegOffset += remKm
		remKm = 0
	}
	// if reached end, plan new
	if s.Route.SegIndex >= len(s.Route.Points)-1 {
		planNewRoute(s)
	}
}

func sampleFromState(s *VehicleState) LocationSample {
	speed := s.SpeedKmh
	return LocationSample{
		Latitude:  s.Position.Lat,
		Longitude: s.Position.Lng,
		Speed:     &speed,
		Metadata:  map[string]interface{}{"battery": s.BatteryPct},
	}
}

func sendLocation(apiURL, deviceID string, sample LocationSample) {
	data, err := json.Marshal(sample)
	if err != nil {
		log.WithError(err).Error("Failed to marshal location sample")
		return
	}
	resp, err := authorizedPost(apiURL+"/devices/"+deviceID+"/location", bytes.NewBuffer(data))
	if err != nil {
		log.WithError(err).Error("Failed to send location")
		return
	}
	defer resp.Body.Close()
	log.WithFields(log.Fields{"device_id": deviceID, "status": resp.Status}).Info("Sent location")
}

func simulateVehicle(apiURL string, s *VehicleState, interval time.Duration) {
	if s.Route == nil {
		planNewRoute(s)
	}
	tick := time.NewTicker(interval)
	defer tick.Stop()
	for range tick.C {
		if s.StopTicks > 0 {
			// parked: speed 0, position frozen
			s.StopTicks--
			s.SpeedKmh = 0
		} else {
			if s.SpeedKmh == 0 {
				s.SpeedKmh = 20 + rand.Float64()*20
			}
			// small speed noise
			s.SpeedKmh += (rand.Float64()*2 - 1) * 1.5
			if s.SpeedKmh < 15 {
				s.SpeedKmh = 15
			}
			if s.SpeedKmh > 90 {
				s.SpeedKmh = 90
			}
			// occasionally pull over for a few ticks
			if rand.Float64() < 0.02 {
				s.StopTicks = 3 + rand.Intn(5)
			}

			stepAlongRoute(s, interval.Seconds())
		}

		s.BatteryPct -= 0.05
		if s.BatteryPct < 5 {
			s.BatteryPct = 100
		}

		sendLocation(apiURL, s.DeviceID, sampleFromState(s))
	}
}

func main() {
	fleetSize := 10
	if val := os.Getenv("FLEET_SIZE"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			fleetSize = n
		}
	}

	apiURL := os.Getenv("API_BASE_URL")
	if apiURL == "" {
		apiURL = "http://localhost:8080/api"
	}

	interval := 2 * time.Second
	if v := os.Getenv("SIM_TICK_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 {
			interval = time.Duration(n) * time.Second
		}
	}

	withGeofences := os.Getenv("SIM_GEOFENCES") != "false"

	log.WithFields(log.Fields{
		"fleet_size": fleetSize,
		"api_url":    apiURL,
		"interval":   interval,
		"geofences":  withGeofences,
	}).Info("Starting fleet simulation")

	if err := authenticate(apiURL); err != nil {
		log.WithError(err).Fatal("Failed to authenticate simulator user")
	}

	// Provision vehicles with devices and starting positions
	states := make([]*VehicleState, 0, fleetSize)
	for i := 0; i < fleetSize; i++ {
		vehicleID, err := createVehicle(apiURL, i+1)
		if err != nil {
			log.WithError(err).Error("Failed to create vehicle")
			continue
		}
		deviceID, err := createDevice(apiURL, vehicleID, i+1)
		if err != nil {
			log.WithError(err).Error("Failed to create device")
			continue
		}

		start := randomLocation()
		if withGeofences {
			if err := createDepotGeofence(apiURL, vehicleID, start, i+1); err != nil {
				log.WithError(err).Warn("Failed to create depot geofence")
			}
		}

		states = append(states, &VehicleState{
			DeviceID:   deviceID,
			Position:   start,
			SpeedKmh:   30 + rand.Float64()*30,
			BatteryPct: 50 + rand.Float64()*50,
		})
	}

	log.WithField("created_vehicles", len(states)).Info("Fleet provisioning completed")
	if len(states) == 0 {
		log.Error("No vehicles created. Ensure the API is reachable. Exiting.")
		time.Sleep(2 * time.Second)
		return
	}

	for _, s := range states {
		go simulateVehicle(apiURL, s, interval)
	}

	log.Info("Location simulation started")
	select {} // Block forever
}
