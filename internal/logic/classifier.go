package logic

import "time"

// Classifier is the hysteresis state machine that turns smoothed readings
// into DRY/WET states.
//
// Elapsed time uses time.Time.Sub on the monotonic clock. Durations are
// int64 nanoseconds, so wraparound needs roughly 292 years of uptime and is
// not handled.
type Classifier struct {
	allowance     int
	startupDefer  time.Duration
	startTime     time.Time
	state         State
	ready         bool
	counts        Counts
	lastHeartbeat time.Time
}

// NewClassifier creates a classifier that stays inert until startupDefer has
// elapsed since startTime, then applies a hysteresis band of +/- allowance
// around the threshold.
func NewClassifier(allowance int, startupDefer time.Duration, startTime time.Time) *Classifier {
	return &Classifier{
		allowance:     allowance,
		startupDefer:  startupDefer,
		startTime:     startTime,
		state:         StateUnset,
		lastHeartbeat: startTime,
	}
}

// Update evaluates one smoothed reading against threshold.
// It returns the transition if the state changed, nil otherwise.
// Before the startup defer window has elapsed nothing is evaluated.
func (c *Classifier) Update(smoothed, threshold int, now time.Time) *Transition {
	if !c.ready {
		if now.Sub(c.startTime) < c.startupDefer {
			return nil
		}
		c.ready = true
	}

	next := c.next(smoothed, threshold)
	if next == c.state {
		return nil
	}

	from := c.state
	c.state = next
	switch next {
	case StateDry:
		c.counts.Dry++
	case StateWet:
		c.counts.Wet++
	}
	return &Transition{
		Timestamp: now,
		From:      from,
		To:        next,
		Smoothed:  smoothed,
		Threshold: threshold,
	}
}

// next applies the transition table. The first decision out of UNSET is a
// plain comparison; afterwards the band must be crossed.
func (c *Classifier) next(v, threshold int) State {
	switch c.state {
	case StateDry:
		if v > threshold+c.allowance {
			return StateWet
		}
	case StateWet:
		if v < threshold-c.allowance {
			return StateDry
		}
	default:
		if v < threshold {
			return StateDry
		}
		return StateWet
	}
	return c.state
}

// State returns the current classified state.
func (c *Classifier) State() State {
	return c.state
}

// IsReady returns whether the startup defer window has elapsed and
// classification has begun.
func (c *Classifier) IsReady() bool {
	return c.ready
}

// Allowance returns the hysteresis half-width.
func (c *Classifier) Allowance() int {
	return c.allowance
}

// CountsSnapshot returns transition counts since startup.
func (c *Classifier) CountsSnapshot() Counts {
	return c.counts
}

// CheckHeartbeat returns heartbeat data if the interval has elapsed since the
// last heartbeat (or startup). Returns nil if not yet ready, if the
// interval has not elapsed, or if interval is <= 0 (disabled).
func (c *Classifier) CheckHeartbeat(now time.Time, interval time.Duration) *HeartbeatData {
	if interval <= 0 {
		return nil
	}

	if !c.ready {
		return nil
	}

	if now.Sub(c.lastHeartbeat) < interval {
		return nil
	}

	c.lastHeartbeat = now
	return &HeartbeatData{
		Timestamp: now,
		Uptime:    now.Sub(c.startTime),
		Counts:    c.counts,
	}
}
