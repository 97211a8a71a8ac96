// Package logic contains pure decision logic for moisture classification
// and button handling.
// This package has NO external dependencies (no GPIO, MQTT, OS, or time.Sleep).
// Time is always injectable via time.Time parameters.
package logic

import "time"

// State is the classified substrate state.
type State string

const (
	StateUnset State = "UNSET"
	StateDry   State = "DRY"
	StateWet   State = "WET"
)

// Token returns the event payload token for the state: "dry", "wet", or ""
// while unset.
func (s State) Token() string {
	switch s {
	case StateDry:
		return "dry"
	case StateWet:
		return "wet"
	}
	return ""
}

// Transition is a classified state change to be published.
type Transition struct {
	Timestamp time.Time
	From      State
	To        State
	Smoothed  int
	Threshold int
}

// Counts tracks the number of transitions into each state since startup.
type Counts struct {
	Dry int
	Wet int
}

// HeartbeatData contains information for a heartbeat event.
type HeartbeatData struct {
	Timestamp time.Time
	Uptime    time.Duration
	Counts    Counts
}
