package mqtt

import (
	"time"

	"github.com/sweeney/soil-monitor/internal/events"
)

// FakePublisher records published events for test assertions.
type FakePublisher struct {
	// Events contains all pipeline events that were emitted.
	Events []events.Emitted

	// Payloads contains the JSON payloads for pipeline events.
	Payloads [][]byte

	// Reports contains all structured reports.
	Reports []events.Report

	// SystemEvents contains all system events that were published.
	SystemEvents []SystemEvent

	// SystemPayloads contains the JSON payloads for system events.
	SystemPayloads [][]byte

	// PublishSystemError, if set, will be returned by PublishSystem.
	PublishSystemError error

	// Closed tracks if Close was called.
	Closed bool

	// Connected controls the return value of IsConnected.
	Connected bool

	// Now stamps event payloads; nil uses time.Now.
	Now func() time.Time
}

// NewFakePublisher creates a FakePublisher for testing.
func NewFakePublisher() *FakePublisher {
	return &FakePublisher{}
}

// Emit records the pipeline event.
func (f *FakePublisher) Emit(name, payload string) {
	f.Events = append(f.Events, events.Emitted{Name: name, Payload: payload})

	now := time.Now
	if f.Now != nil {
		now = f.Now
	}
	if data, err := FormatPayload(now(), name, payload); err == nil {
		f.Payloads = append(f.Payloads, data)
	}
}

// Report records the structured report.
func (f *FakePublisher) Report(r events.Report) {
	f.Reports = append(f.Reports, r)
}

// PublishSystem records the system event.
func (f *FakePublisher) PublishSystem(event SystemEvent) error {
	if f.PublishSystemError != nil {
		return f.PublishSystemError
	}

	f.SystemEvents = append(f.SystemEvents, event)

	payload, err := FormatSystemPayload(event)
	if err != nil {
		return err
	}
	f.SystemPayloads = append(f.SystemPayloads, payload)

	return nil
}

// Close marks the publisher as closed.
func (f *FakePublisher) Close() error {
	f.Closed = true
	return nil
}

// IsConnected reports whether the fake publisher is "connected".
func (f *FakePublisher) IsConnected() bool {
	return f.Connected
}

// Reset clears recorded events.
func (f *FakePublisher) Reset() {
	f.Events = nil
	f.Payloads = nil
	f.Reports = nil
	f.SystemEvents = nil
	f.SystemPayloads = nil
	f.Closed = false
	f.PublishSystemError = nil
	f.Connected = false
}
