// Package mqtt publishes pipeline events, reports and lifecycle events to an
// MQTT broker, with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/soil-monitor/internal/events"
)

// DefaultTopicPrefix is the root of all topics published by the daemon.
const DefaultTopicPrefix = "garden/soil-monitor"

// Topics resolves topic names under a prefix.
type Topics struct {
	Prefix string
}

// Event returns the topic for a named pipeline event.
func (t Topics) Event(name string) string {
	return t.prefix() + "/events/" + name
}

// Report returns the topic for structured reports.
func (t Topics) Report() string {
	return t.prefix() + "/report"
}

// System returns the topic for lifecycle events.
func (t Topics) System() string {
	return t.prefix() + "/system"
}

func (t Topics) prefix() string {
	if t.Prefix == "" {
		return DefaultTopicPrefix
	}
	return t.Prefix
}

// Publisher publishes events to MQTT. Emit and Report are fire-and-forget:
// failures are logged, never returned to the control loop.
type Publisher interface {
	events.Sink
	events.Reporter

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
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload represents the MQTT message payload for a pipeline event.
type Payload struct {
	Soil EventPayload `json:"soil"`
}

// EventPayload contains the event details.
type EventPayload struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Data      string `json:"data"`
}

// FormatPayload creates the JSON payload for a named pipeline event.
func FormatPayload(ts time.Time, name, data string) ([]byte, error) {
	payload := Payload{
		Soil: EventPayload{
			Timestamp: ts.UTC().Format(time.RFC3339),
			Event:     name,
			Data:      data,
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
