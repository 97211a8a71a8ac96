// Package events defines the outbound notification contracts used by the
// moisture pipeline. Delivery, retries and transport belong to implementations.
package events

import (
	"encoding/json"
	"log"
)

// Event names emitted by the pipeline.
const (
	NameThreshold = "threshold"
	NameState     = "state"
	NameSettings  = "settings"
)

// Sink receives named events. Emit is fire-and-forget: implementations
// must not block the control loop on delivery and report nothing back.
type Sink interface {
	Emit(name, payload string)
}

// Report is the structured payload sent to the secondary report channel.
type Report struct {
	Moisture       int    `json:"moisture"`
	State          string `json:"state"`
	Threshold      int    `json:"threshold"`
	RollingAverage int    `json:"rolling_average"`
}

// Reporter receives structured reports. Like Sink, it is fire-and-forget.
type Reporter interface {
	Report(r Report)
}

// FormatReport returns the JSON encoding of r.
func FormatReport(r Report) ([]byte, error) {
	return json.Marshal(r)
}

// LogSink writes every event to the standard logger.
type LogSink struct{}

// Emit logs the event.
func (LogSink) Emit(name, payload string) {
	log.Printf("event: %s %q", name, payload)
}

// Multi fans an event out to every non-nil sink in order.
type Multi []Sink

// Emit forwards the event to each sink.
func (m Multi) Emit(name, payload string) {
	for _, s := range m {
		if s != nil {
			s.Emit(name, payload)
		}
	}
}
