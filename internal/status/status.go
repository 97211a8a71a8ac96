// Package status provides a thread-safe status tracker for the soil-monitor daemon.
// It is read by the HTTP handlers and lifecycle events.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/soil-monitor/internal/logic"
)

// NetworkInfo contains network state as written by pi-helper.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	CycleMs          int64
	StartupDeferMs   int64
	ReportIntervalMs int64
	HeartbeatMs      int64
	Broker           string
	HTTPAddr         string
	ReportChannel    string
}

// Reading is the latest output of the moisture pipeline.
type Reading struct {
	State          logic.State
	Raw            int
	RollingAverage int
	Threshold      int
	Allowance      int
	Ready          bool
	Counts         logic.Counts
	Calibrations   int
	Resets         int
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type and safe to use after the lock is released.
type Snapshot struct {
	Reading
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Network       *NetworkInfo
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			Reading:   Reading{State: logic.StateUnset},
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update stores the latest pipeline reading.
// Called from runLoop on every tick.
func (t *Tracker) Update(r Reading) {
	t.mu.Lock()
	t.snap.Reading = r
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
