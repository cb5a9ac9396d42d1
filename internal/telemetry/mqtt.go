package telemetry

import (
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// Topic is the MQTT topic for per-cycle samples.
const Topic = "incubator/telemetry/samples"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "incubator/telemetry/system"

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemPublisher publishes lifecycle events alongside samples.
type SystemPublisher interface {
	PublishSystem(event SystemEvent) error
}

// SystemEvent represents a system lifecycle event (startup, shutdown,
// recalibration, sensor fault).
type SystemEvent struct {
	Timestamp time.Time
	Event     string // e.g., "STARTUP", "SHUTDOWN", "RECALIBRATE"
	Reason    string // e.g., "SIGTERM", or the fault description
	Retained  bool   // Whether the broker should retain the message
}

// SamplePayload is the MQTT message payload for one control cycle.
type SamplePayload struct {
	Incubator SampleInner `json:"incubator"`
}

// SampleInner contains the sample details.
type SampleInner struct {
	Timestamp    string  `json:"timestamp"`
	TemperatureC float64 `json:"temperature_c"`
	CO2Pct       float64 `json:"co2_pct"`
}

// FormatSamplePayload creates the JSON payload for a sample.
func FormatSamplePayload(t time.Time, tempC, co2Pct float64) ([]byte, error) {
	payload := SamplePayload{
		Incubator: SampleInner{
			Timestamp:    t.UTC().Format(time.RFC3339),
			TemperatureC: tempC,
			CO2Pct:       co2Pct,
		},
	}
	return json.Marshal(payload)
}

// SystemPayload is the MQTT message payload for system events.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}

// MQTTSink mirrors telemetry to an MQTT broker.
type MQTTSink struct {
	client paho.Client
}

// NewMQTTSink creates a sink connected to the given broker.
func NewMQTTSink(broker string) (*MQTTSink, error) {
	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID("incubator").
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second)

	client := paho.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("connection timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	return &MQTTSink{client: client}, nil
}

// Record publishes one sample at QoS 0 (at-most-once). Samples repeat
// every cycle, so a lost one is harmless.
func (s *MQTTSink) Record(t time.Time, tempC, co2Pct float64) error {
	payload, err := FormatSamplePayload(t, tempC, co2Pct)
	if err != nil {
		return fmt.Errorf("format sample payload: %w", err)
	}

	token := s.client.Publish(Topic, 0, false, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// PublishSystem publishes a lifecycle event at QoS 1 (at-least-once):
// startup and shutdown must not be silently lost.
func (s *MQTTSink) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}

	token := s.client.Publish(TopicSystem, 1, event.Retained, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish system timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish system: %w", err)
	}
	return nil
}

// IsConnected reports the client's connection state.
func (s *MQTTSink) IsConnected() bool {
	return s.client.IsConnected()
}

// Close disconnects from the broker.
func (s *MQTTSink) Close() error {
	s.client.Disconnect(1000) // 1 second timeout
	return nil
}
