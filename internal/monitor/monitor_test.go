package monitor

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweeney/soil-monitor/internal/calibration"
	"github.com/sweeney/soil-monitor/internal/events"
	"github.com/sweeney/soil-monitor/internal/gpio"
	"github.com/sweeney/soil-monitor/internal/led"
	"github.com/sweeney/soil-monitor/internal/logic"
	"github.com/sweeney/soil-monitor/internal/sensor"
	"github.com/sweeney/soil-monitor/internal/settings"
)

var start = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

type harness struct {
	m    *Monitor
	pins *gpio.FakePins
	mem  *settings.MemStorage
	rec  *events.Recorder
}

func noSleep(time.Duration) {}

func newHarness(t *testing.T, cfg Config, threshold int32, analog []int, button []bool) *harness {
	t.Helper()
	pins := gpio.NewFakePins(analog)
	pins.Button = button
	mem := settings.NewMemStorage()
	if threshold >= 0 {
		mem.Data = settings.Settings{Version: settings.CurrentVersion, MoistureThreshold: threshold}.Encode()
	}
	rec := events.NewRecorder()
	store := settings.NewStore(mem, rec, settings.DefaultThreshold)
	reader := sensor.NewReader(pins, sensor.Config{RawMin: 0, RawMax: 100}, noSleep)
	cal := calibration.NewController(store, rec, led.New(pins, noSleep))

	m := New(cfg, Deps{
		Reader:     reader,
		Store:      store,
		Calibrator: cal,
		ButtonIn:   pins,
		Sink:       rec,
		Reporter:   rec,
	}, start)
	return &harness{m: m, pins: pins, mem: mem, rec: rec}
}

func (h *harness) run(t *testing.T, n int, step time.Duration) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(t, h.m.Cycle(start.Add(time.Duration(i)*step)))
	}
}

func TestInertDuringStartupDefer(t *testing.T) {
	cfg := Config{Allowance: 6, StartupDefer: 5 * time.Second}
	h := newHarness(t, cfg, 50, []int{30}, nil)

	h.run(t, 5, time.Second) // t=0..4s
	assert.Empty(t, h.rec.Named(events.NameState))
	assert.False(t, h.m.IsReady())
	assert.Equal(t, logic.StateUnset, h.m.Reading().State)

	require.NoError(t, h.m.Cycle(start.Add(5*time.Second)))
	assert.True(t, h.m.IsReady())
	assert.Equal(t, []events.Emitted{{Name: events.NameState, Payload: "dry"}}, h.rec.Named(events.NameState))
}

func TestSmoothedReadingDrivesTransition(t *testing.T) {
	cfg := Config{Allowance: 6}
	// Averages: 30, 42, 51, 58 (> 56 crosses the band).
	h := newHarness(t, cfg, 50, []int{30, 90, 90, 90}, nil)

	h.run(t, 3, time.Second)
	assert.Equal(t, logic.StateDry, h.m.Reading().State, "raw 90 alone must not flip the state")

	require.NoError(t, h.m.Cycle(start.Add(3*time.Second)))
	r := h.m.Reading()
	assert.Equal(t, logic.StateWet, r.State)
	assert.Equal(t, 58, r.RollingAverage)
	assert.Equal(t, 90, r.Raw)

	states := h.rec.Named(events.NameState)
	require.Len(t, states, 2)
	assert.Equal(t, "dry", states[0].Payload)
	assert.Equal(t, "wet", states[1].Payload)

	require.Len(t, h.rec.Reports, 2, "one report per state change")
	assert.Equal(t, events.Report{Moisture: 90, State: "wet", Threshold: 50, RollingAverage: 58}, h.rec.Reports[1])
}

func TestCalibrationScenario(t *testing.T) {
	cfg := Config{Allowance: 6}
	// c0: avg 55 -> WET; c1: raw 62 avg 56, button pressed; c2: avg 55 < 62-6 -> DRY.
	h := newHarness(t, cfg, 50, []int{55, 62, 55}, []bool{false, true, false})

	h.run(t, 2, time.Second)

	assert.Equal(t, int32(62), h.m.Settings().MoistureThreshold)
	assert.Equal(t, int32(62), settings.Decode(h.mem.Data).MoistureThreshold)
	assert.Equal(t, []events.Emitted{{Name: events.NameThreshold, Payload: "62"}}, h.rec.Named(events.NameThreshold))
	assert.Equal(t, 1, h.m.Reading().Calibrations)

	require.NoError(t, h.m.Cycle(start.Add(2*time.Second)))
	assert.Equal(t, logic.StateDry, h.m.Reading().State)

	want := []events.Emitted{
		{Name: events.NameState, Payload: "wet"},
		{Name: events.NameThreshold, Payload: "62"},
		{Name: events.NameState, Payload: "dry"},
	}
	assert.Equal(t, want, h.rec.Events)
	assert.Len(t, h.rec.Reports, 3)
	assert.Equal(t, 62, h.rec.Reports[1].Threshold)
}

func TestHeldButtonResetsSettings(t *testing.T) {
	cfg := Config{Allowance: 6, ResetHold: 3 * time.Second}
	h := newHarness(t, cfg, 50, []int{40}, []bool{true, true, true, true, false})

	h.run(t, 5, time.Second)

	assert.Equal(t, settings.DefaultThreshold, h.m.Settings().MoistureThreshold)
	assert.Equal(t, settings.DefaultThreshold, settings.Decode(h.mem.Data).MoistureThreshold)
	assert.Equal(t, 1, h.m.Reading().Calibrations, "press edge recalibrates before the hold")
	assert.Equal(t, 1, h.m.Reading().Resets)

	thresholds := h.rec.Named(events.NameThreshold)
	require.Len(t, thresholds, 2)
	assert.Equal(t, "40", thresholds[0].Payload)
	assert.Equal(t, "1500", thresholds[1].Payload)
	assert.Len(t, h.rec.Named(events.NameSettings), 1)
}

func TestPeriodicReport(t *testing.T) {
	cfg := Config{Allowance: 6, StartupDefer: time.Hour, ReportInterval: 30 * time.Second}
	h := newHarness(t, cfg, 50, []int{40}, nil)

	h.run(t, 7, 10*time.Second) // t=0..60s

	require.Len(t, h.rec.Reports, 2, "reports at 30s and 60s")
	assert.Equal(t, events.Report{Moisture: 40, State: "", Threshold: 50, RollingAverage: 40}, h.rec.Reports[0])
	assert.Empty(t, h.rec.Events)
}

func TestNilReporterIsAllowed(t *testing.T) {
	pins := gpio.NewFakePins([]int{70})
	store := settings.NewStore(settings.NewMemStorage(), nil, 50)
	m := New(Config{Allowance: 6, ReportInterval: time.Second}, Deps{
		Reader: sensor.NewReader(pins, sensor.Config{RawMin: 0, RawMax: 100}, noSleep),
		Store:  store,
	}, start)

	require.NoError(t, m.Cycle(start))
	require.NoError(t, m.Cycle(start.Add(time.Second)))
	assert.Equal(t, logic.StateWet, m.Reading().State)
}

func TestUnsetSettingsApplyDefaults(t *testing.T) {
	h := newHarness(t, Config{Allowance: 6}, -1, []int{40}, nil)

	assert.Equal(t, settings.DefaultThreshold, h.m.Settings().MoistureThreshold)
	assert.Equal(t, 1, h.mem.Writes)
	assert.Len(t, h.rec.Named(events.NameSettings), 1)

	// The legacy default is above the 0-100 scale; everything reads DRY.
	h.run(t, 1, time.Second)
	assert.Equal(t, logic.StateDry, h.m.Reading().State)
}

func TestSampleErrorSkipsCycle(t *testing.T) {
	h := newHarness(t, Config{Allowance: 6}, 50, []int{70}, nil)
	h.run(t, 1, time.Second)
	require.Equal(t, logic.StateWet, h.m.Reading().State)

	h.pins.ReadError = errors.New("adc fault")
	err := h.m.Cycle(start.Add(time.Second))
	require.Error(t, err)
	assert.ErrorIs(t, err, h.pins.ReadError)
	assert.Equal(t, logic.StateWet, h.m.Reading().State)
	assert.Len(t, h.rec.Named(events.NameState), 1)
}

func TestCurrentReport(t *testing.T) {
	h := newHarness(t, Config{Allowance: 6}, 50, []int{20}, nil)
	h.run(t, 1, time.Second)

	assert.Equal(t, events.Report{Moisture: 20, State: "dry", Threshold: 50, RollingAverage: 20}, h.m.CurrentReport())
}
