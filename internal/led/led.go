// Package led sequences the feedback LED around calibration and reset.
// Sequences block the caller for their full duration.
package led

import (
	"log"
	"time"
)

// Pin drives the LED.
type Pin interface {
	SetLED(on bool) error
}

// Feedback plays blocking LED sequences.
type Feedback struct {
	pin   Pin
	sleep func(time.Duration)
}

// New creates Feedback. sleep performs the waits; nil uses time.Sleep.
func New(pin Pin, sleep func(time.Duration)) *Feedback {
	if sleep == nil {
		sleep = time.Sleep
	}
	return &Feedback{pin: pin, sleep: sleep}
}

// Blink flashes the LED n times and leaves it off.
func (f *Feedback) Blink(n int, on, off time.Duration) {
	for i := 0; i < n; i++ {
		f.set(true)
		f.sleep(on)
		f.set(false)
		f.sleep(off)
	}
}

// CalibrationStarted lights the LED steadily while the threshold is captured.
func (f *Feedback) CalibrationStarted() {
	f.set(true)
	f.sleep(time.Second)
}

// CalibrationDone confirms a captured threshold.
func (f *Feedback) CalibrationDone() {
	f.set(false)
	f.sleep(200 * time.Millisecond)
	f.Blink(3, 150*time.Millisecond, 150*time.Millisecond)
}

// ResetDone confirms a factory reset with a longer, slower sequence.
func (f *Feedback) ResetDone() {
	f.Blink(5, 400*time.Millisecond, 200*time.Millisecond)
}

func (f *Feedback) set(on bool) {
	if err := f.pin.SetLED(on); err != nil {
		log.Printf("led: %v", err)
	}
}
