// Package monitor owns the per-cycle moisture pipeline: sample, classify,
// notify, and handle button-driven calibration.
package monitor

import (
	"fmt"
	"log"
	"time"

	"github.com/sweeney/soil-monitor/internal/calibration"
	"github.com/sweeney/soil-monitor/internal/events"
	"github.com/sweeney/soil-monitor/internal/logic"
	"github.com/sweeney/soil-monitor/internal/sensor"
	"github.com/sweeney/soil-monitor/internal/settings"
	"github.com/sweeney/soil-monitor/internal/status"
)

// ButtonInput reads the logical calibration button state.
type ButtonInput interface {
	ButtonPressed() (bool, error)
}

// Config holds the pipeline timing and hysteresis parameters.
type Config struct {
	Allowance      int
	StartupDefer   time.Duration
	ReportInterval time.Duration
	ResetHold      time.Duration
}

// Monitor is the single owner of pipeline state. It is driven from one loop
// and is not safe for concurrent use.
type Monitor struct {
	reader     *sensor.Reader
	classifier *logic.Classifier
	button     *logic.Button
	buttonIn   ButtonInput
	calibrator *calibration.Controller
	sink       events.Sink
	reporter   events.Reporter
	report     *logic.Interval

	settings     settings.Settings
	last         sensor.Sample
	calibrations int
	resets       int
}

// Deps are the collaborators a Monitor drives. Reporter and ButtonInput may be nil.
type Deps struct {
	Reader     *sensor.Reader
	Store      *settings.Store
	Calibrator *calibration.Controller
	ButtonIn   ButtonInput
	Sink       events.Sink
	Reporter   events.Reporter
}

// New loads settings (migrating or defaulting them as needed) and returns a
// Monitor whose startup defer window begins at startTime.
func New(cfg Config, deps Deps, startTime time.Time) *Monitor {
	m := &Monitor{
		reader:     deps.Reader,
		classifier: logic.NewClassifier(cfg.Allowance, cfg.StartupDefer, startTime),
		button:     logic.NewButton(cfg.ResetHold),
		buttonIn:   deps.ButtonIn,
		calibrator: deps.Calibrator,
		sink:       deps.Sink,
		reporter:   deps.Reporter,
		report:     logic.NewInterval(cfg.ReportInterval, startTime),
		settings:   deps.Store.Load(),
		last:       sensor.Sample{RollingAverage: -1},
	}
	log.Printf("monitor: threshold=%d allowance=%d startup-defer=%v",
		m.settings.MoistureThreshold, cfg.Allowance, cfg.StartupDefer)
	return m
}

// Cycle runs one pass of the pipeline at now. A sample failure skips the
// rest of the cycle and leaves classification untouched.
func (m *Monitor) Cycle(now time.Time) error {
	s, err := m.reader.Sample()
	if err != nil {
		return fmt.Errorf("sample: %w", err)
	}
	m.last = s

	if tr := m.classifier.Update(s.RollingAverage, m.threshold(), now); tr != nil {
		log.Printf("state: %s -> %s (avg=%d raw=%d threshold=%d)", tr.From, tr.To, tr.Smoothed, s.Raw, tr.Threshold)
		m.emit(events.NameState, tr.To.Token())
		m.sendReport()
	}

	m.handleButton(now)

	if m.report.Due(now) {
		m.sendReport()
	}
	return nil
}

func (m *Monitor) handleButton(now time.Time) {
	if m.buttonIn == nil || m.calibrator == nil {
		return
	}
	pressed, err := m.buttonIn.ButtonPressed()
	if err != nil {
		log.Printf("button read error: %v", err)
		return
	}

	switch m.button.Process(pressed, now) {
	case logic.ButtonPress:
		m.settings = m.calibrator.RequestRecalibration(m.settings, m.last.Raw)
		m.calibrations++
		m.sendReport()
	case logic.ButtonHold:
		m.settings = m.calibrator.FactoryReset()
		m.resets++
		m.sendReport()
	}
}

// CheckHeartbeat forwards to the classifier's lifecycle heartbeat.
func (m *Monitor) CheckHeartbeat(now time.Time, interval time.Duration) *logic.HeartbeatData {
	return m.classifier.CheckHeartbeat(now, interval)
}

// IsReady returns whether the startup defer window has elapsed.
func (m *Monitor) IsReady() bool {
	return m.classifier.IsReady()
}

// Settings returns the in-memory settings record.
func (m *Monitor) Settings() settings.Settings {
	return m.settings
}

// Reading returns the latest pipeline output for status consumers.
func (m *Monitor) Reading() status.Reading {
	return status.Reading{
		State:          m.classifier.State(),
		Raw:            m.last.Raw,
		RollingAverage: m.last.RollingAverage,
		Threshold:      m.threshold(),
		Allowance:      m.classifier.Allowance(),
		Ready:          m.classifier.IsReady(),
		Counts:         m.classifier.CountsSnapshot(),
		Calibrations:   m.calibrations,
		Resets:         m.resets,
	}
}

// CurrentReport builds the structured report for the current state.
func (m *Monitor) CurrentReport() events.Report {
	return events.Report{
		Moisture:       m.last.Raw,
		State:          m.classifier.State().Token(),
		Threshold:      m.threshold(),
		RollingAverage: m.last.RollingAverage,
	}
}

func (m *Monitor) threshold() int {
	return int(m.settings.MoistureThreshold)
}

func (m *Monitor) emit(name, payload string) {
	if m.sink != nil {
		m.sink.Emit(name, payload)
	}
}

func (m *Monitor) sendReport() {
	if m.reporter != nil {
		m.reporter.Report(m.CurrentReport())
	}
}
