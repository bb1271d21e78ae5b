// Package mqtt provides MQTT publishing with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/help-beacon/internal/logic"
)

// Topic is the MQTT topic for mode transitions.
const Topic = "beacon/help/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "beacon/help/system"

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a mode transition to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(tr logic.Transition) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT", "RECONNECTED"
	Reason     string // e.g., "SIGTERM", "SIGINT", "MQTT_DISCONNECT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload represents the MQTT message payload structure.
type Payload struct {
	Beacon BeaconPayload `json:"beacon"`
}

// BeaconPayload contains the transition details.
type BeaconPayload struct {
	Timestamp  string `json:"timestamp"`
	Event      string `json:"event"`
	Input      string `json:"input"`
	From       string `json:"from"`
	Mode       string `json:"mode"`
	IntervalMs int64  `json:"interval_ms"`
}

// FormatPayload creates the JSON payload for a mode transition.
func FormatPayload(tr logic.Transition) ([]byte, error) {
	payload := Payload{
		Beacon: BeaconPayload{
			Timestamp:  tr.Timestamp.UTC().Format(time.RFC3339),
			Event:      string(tr.Type()),
			Input:      string(tr.Input),
			From:       string(tr.From),
			Mode:       string(tr.To),
			IntervalMs: tr.Interval.Milliseconds(),
		},
	}
	return json.Marshal(payload)
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT, RECONNECTED) that don't carry a full status snapshot.
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
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}
