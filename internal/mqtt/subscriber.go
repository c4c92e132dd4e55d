// Package mqtt subscribes to device location topics and feeds samples into
// the tracking pipeline.
package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"

	"github.com/ukydev/fleet-tracking/internal/models"
)

// topicPattern matches per-device location topics, e.g.
// fleet/devices/<deviceID>/location.
const topicPattern = "fleet/devices/+/location"

// Pipeline is the part of the tracking service the subscriber needs.
type Pipeline interface {
	ProcessLocationSample(ctx context.Context, sample models.LocationHistory) (*models.LocationHistory, error)
}

// locationMessage is the wire payload published by devices.
type locationMessage struct {
	DeviceID  string                 `json:"device_id"`
	Latitude  float64                `json:"latitude"`
	Longitude float64                `json:"longitude"`
	Speed     *float64               `json:"speed,omitempty"`
	Heading   *float64               `json:"heading,omitempty"`
	Accuracy  *float64               `json:"accuracy,omitempty"`
	EventTime int64                  `json:"event_time,omitempty"` // unix seconds
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Subscriber consumes location messages from an MQTT broker.
type Subscriber struct {
	client   paho.Client
	pipeline Pipeline
}

// NewSubscriber creates a subscriber over a connected MQTT client
func NewSubscriber(client paho.Client, pipeline Pipeline) *Subscriber {
	return &Subscriber{client: client, pipeline: pipeline}
}

// Start subscribes to the location topic pattern
func (s *Subscriber) Start() error {
	token := s.client.Subscribe(topicPattern, 1, s.handleMessage)
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt subscribe: %w", err)
	}
	log.WithField("topic", topicPattern).Info("Subscribed to device locations")
	return nil
}

func (s *Subscriber) handleMessage(_ paho.Client, msg paho.Message) {
	var raw locationMessage
	if err := json.Unmarshal(msg.Payload(), &raw); err != nil {
		log.WithError(err).Warn("Dropping malformed location message")
		return
	}

	if err := validate(&raw); err != nil {
		log.WithField("device_id", raw.DeviceID).WithError(err).Warn("Dropping invalid location message")
		return
	}

	sample := models.LocationHistory{
		DeviceID:  raw.DeviceID,
		Latitude:  raw.Latitude,
		Longitude: raw.Longitude,
		Speed:     raw.Speed,
		Heading:   raw.Heading,
		Accuracy:  raw.Accuracy,
		Metadata:  raw.Metadata,
	}
	if raw.EventTime > 0 {
		sample.EventTime = time.Unix(raw.EventTime, 0)
	}

	if _, err := s.pipeline.ProcessLocationSample(context.Background(), sample); err != nil {
		log.WithField("device_id", raw.DeviceID).WithError(err).Error("Failed to process location sample")
	}
}

func validate(msg *locationMessage) error {
	if msg.DeviceID == "" {
		return fmt.Errorf("device_id: required")
	}
	if msg.Latitude < -90 || msg.Latitude > 90 {
		return fmt.Errorf("latitude: must be between -90 and 90")
	}
	if msg.Longitude < -180 || msg.Longitude > 180 {
		return fmt.Errorf("longitude: must be between -180 and 180")
	}
	return nil
}

// Connect dials the broker configured by brokerURL and clientID
func Connect(brokerURL, clientID string) (paho.Client, error) {
	opts := paho.NewClientOptions().
		AddBroker(brokerURL).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectTimeout(10 * time.Second)

	client := paho.NewClient(opts)
	token := client.Connect()
	token.Wait()
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect: %w", err)
	}
	return client, nil
}
