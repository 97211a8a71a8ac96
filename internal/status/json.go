package status

import (
	"encoding/json"
	"time"

	"github.com/sweeney/soil-monitor/internal/logic"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event          string       `json:"event,omitempty"`
	Reason         string       `json:"reason,omitempty"`
	State          string       `json:"state"`
	Moisture       int          `json:"moisture"`
	RollingAverage int          `json:"rolling_average"`
	Threshold      int          `json:"threshold"`
	Allowance      int          `json:"allowance"`
	Ready          bool         `json:"ready"`
	UptimeSeconds  int64        `json:"uptime_seconds"`
	StartTime      string       `json:"start_time"`
	Timestamp      string       `json:"timestamp"`
	MQTT           MQTTStatus   `json:"mqtt"`
	Counts         CountsJSON   `json:"counts"`
	Network        *NetworkJSON `json:"network,omitempty"`
	Config         ConfigJSON   `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of transition and calibration counts.
type CountsJSON struct {
	Dry          int `json:"dry"`
	Wet          int `json:"wet"`
	Calibrations int `json:"calibrations"`
	Resets       int `json:"resets"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	CycleMs          int64  `json:"cycle_ms"`
	StartupDeferMs   int64  `json:"startup_defer_ms"`
	ReportIntervalMs int64  `json:"report_interval_ms"`
	HeartbeatMs      int64  `json:"heartbeat_ms"`
	Broker           string `json:"broker"`
	HTTPAddr         string `json:"http_addr"`
	ReportChannel    string `json:"report_channel,omitempty"`
}

// StateString returns the display form of s, UNKNOWN when empty.
func StateString(s logic.State) string {
	if s == "" {
		return "UNKNOWN"
	}
	return string(s)
}

func buildInner(snap Snapshot) StatusInner {
	return StatusInner{
		State:          StateString(snap.State),
		Moisture:       snap.Raw,
		RollingAverage: snap.RollingAverage,
		Threshold:      snap.Threshold,
		Allowance:      snap.Allowance,
		Ready:          snap.Ready,
		UptimeSeconds:  int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:      snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:      snap.Now.UTC().Format(time.RFC3339),
		MQTT:           MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Dry:          snap.Counts.Dry,
			Wet:          snap.Counts.Wet,
			Calibrations: snap.Calibrations,
			Resets:       snap.Resets,
		},
		Config: ConfigJSON{
			CycleMs:          snap.Config.CycleMs,
			StartupDeferMs:   snap.Config.StartupDeferMs,
			ReportIntervalMs: snap.Config.ReportIntervalMs,
			HeartbeatMs:      snap.Config.HeartbeatMs,
			Broker:           snap.Config.Broker,
			HTTPAddr:         snap.Config.HTTPAddr,
			ReportChannel:    snap.Config.ReportChannel,
		},
	}
}

func buildNetwork(snap Snapshot, inner *StatusInner) {
	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	buildNetwork(snap, &inner)

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	buildNetwork(snap, &inner)

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
