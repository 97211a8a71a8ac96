package logic

import "time"

// ButtonAction is the outcome of one button sample.
type ButtonAction int

const (
	ButtonNone ButtonAction = iota
	// ButtonPress fires once on a released->pressed edge.
	ButtonPress
	// ButtonHold fires once when the button stays pressed for the hold time.
	ButtonHold
)

// Button turns per-cycle button samples into press and hold actions.
// Debounce comes from the cycle cadence.
type Button struct {
	hold      time.Duration
	pressed   bool
	since     time.Time
	holdFired bool
}

// NewButton creates a Button. hold <= 0 disables hold detection.
func NewButton(hold time.Duration) *Button {
	return &Button{hold: hold}
}

// Process takes the logical button state sampled at now.
func (b *Button) Process(pressed bool, now time.Time) ButtonAction {
	if !pressed {
		b.pressed = false
		b.holdFired = false
		return ButtonNone
	}

	if !b.pressed {
		b.pressed = true
		b.since = now
		return ButtonPress
	}

	if b.hold > 0 && !b.holdFired && now.Sub(b.since) >= b.hold {
		b.holdFired = true
		return ButtonHold
	}
	return ButtonNone
}

// Interval reports when a fixed period has elapsed, independent of any
// other activity.
type Interval struct {
	period time.Duration
	last   time.Time
}

// NewInterval creates an Interval counting from start. period <= 0 disables it.
func NewInterval(period time.Duration, start time.Time) *Interval {
	return &Interval{period: period, last: start}
}

// Due returns true and restarts the period if it has elapsed at now.
func (i *Interval) Due(now time.Time) bool {
	if i.period <= 0 {
		return false
	}
	if now.Sub(i.last) < i.period {
		return false
	}
	i.last = now
	return true
}
