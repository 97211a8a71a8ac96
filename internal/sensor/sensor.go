// Package sensor samples the moisture probe and maintains the rolling
// average used for classification.
package sensor

import (
	"fmt"
	"log"
	"time"

	"github.com/sweeney/soil-monitor/internal/mathx"
)

// WindowSize is the rolling-average window N.
const WindowSize = 5

// unsetAverage marks a rolling average that has not seen a sample.
const unsetAverage = -1

// Probe is the subset of pin I/O the reader needs.
type Probe interface {
	SetSensorPower(on bool) error
	ReadAnalog() (int, error)
}

// Config controls sampling and normalization.
type Config struct {
	// SettleDelay is the blocking wait between powering the probe and reading it.
	SettleDelay time.Duration
	// RawMin and RawMax bound the platform ADC range mapped onto 0-100.
	RawMin int
	RawMax int
	// Invert maps RawMax to 0 instead of 100, for probes that read high when dry.
	Invert bool
}

// Sample is one read cycle's output.
type Sample struct {
	Raw            int
	RollingAverage int
}

// Reader produces raw and smoothed moisture readings.
type Reader struct {
	probe   Probe
	cfg     Config
	sleep   func(time.Duration)
	average int
}

// NewReader creates a Reader. sleep performs the settle wait; nil uses time.Sleep.
func NewReader(probe Probe, cfg Config, sleep func(time.Duration)) *Reader {
	if sleep == nil {
		sleep = time.Sleep
	}
	return &Reader{
		probe:   probe,
		cfg:     cfg,
		sleep:   sleep,
		average: unsetAverage,
	}
}

// Sample powers the probe, waits for it to settle, reads and normalizes the
// value, powers the probe off and folds the reading into the rolling average.
// On error the rolling average is left untouched.
func (r *Reader) Sample() (Sample, error) {
	if err := r.probe.SetSensorPower(true); err != nil {
		return Sample{}, fmt.Errorf("power probe: %w", err)
	}
	r.sleep(r.cfg.SettleDelay)
	v, readErr := r.probe.ReadAnalog()
	if err := r.probe.SetSensorPower(false); err != nil {
		log.Printf("sensor: power off failed: %v", err)
	}
	if readErr != nil {
		return Sample{}, fmt.Errorf("read probe: %w", readErr)
	}

	raw := r.Normalize(v)
	r.average = Fold(r.average, raw)
	return Sample{Raw: raw, RollingAverage: r.average}, nil
}

// Normalize maps a raw ADC value onto the 0-100 scale.
func (r *Reader) Normalize(v int) int {
	if r.cfg.Invert {
		return mathx.Map(v, r.cfg.RawMin, r.cfg.RawMax, 100, 0)
	}
	return mathx.Map(v, r.cfg.RawMin, r.cfg.RawMax, 0, 100)
}

// RollingAverage returns the current average, or -1 before the first sample.
func (r *Reader) RollingAverage() int {
	return r.average
}

// Fold folds raw into avg over a window of WindowSize samples:
//
//	avg = ((N*avg) - avg + raw) / N
//
// with integer division. This is a box-smoothing approximation rather than
// a true exponential filter; expected values in tests are derived from it.
// An unset average (-1) takes raw directly.
func Fold(avg, raw int) int {
	if avg == unsetAverage {
		return raw
	}
	return ((WindowSize * avg) - avg + raw) / WindowSize
}
