// Package calibration captures a new moisture threshold on user request and
// performs factory resets of the persisted settings.
package calibration

import (
	"log"
	"strconv"

	"github.com/sweeney/soil-monitor/internal/events"
	"github.com/sweeney/soil-monitor/internal/settings"
)

// Store is the settings persistence the controller writes through.
type Store interface {
	Load() settings.Settings
	Save(settings.Settings) error
	Clear() error
}

// Feedback brackets the blocking user-facing sequences.
type Feedback interface {
	CalibrationStarted()
	CalibrationDone()
	ResetDone()
}

// Controller is the only writer of the threshold after startup.
type Controller struct {
	store    Store
	sink     events.Sink
	feedback Feedback
}

// NewController creates a Controller. feedback may be nil.
func NewController(store Store, sink events.Sink, feedback Feedback) *Controller {
	return &Controller{store: store, sink: sink, feedback: feedback}
}

// RequestRecalibration makes currentRaw the new threshold, persists it and
// emits a threshold event. The value is not validated. A failed persist is
// logged and the new threshold still applies in memory.
func (c *Controller) RequestRecalibration(cur settings.Settings, currentRaw int) settings.Settings {
	if c.feedback != nil {
		c.feedback.CalibrationStarted()
	}

	cur.MoistureThreshold = int32(currentRaw)
	if err := c.store.Save(cur); err != nil {
		log.Printf("calibration: %v", err)
	}
	log.Printf("calibration: threshold set to %d", currentRaw)
	c.emitThreshold(cur)

	if c.feedback != nil {
		c.feedback.CalibrationDone()
	}
	return cur
}

// FactoryReset erases the persisted settings and reloads defaults, which
// persists them again and emits the settings event.
func (c *Controller) FactoryReset() settings.Settings {
	if err := c.store.Clear(); err != nil {
		log.Printf("calibration: %v", err)
	}
	s := c.store.Load()
	log.Printf("calibration: factory reset, threshold %d", s.MoistureThreshold)
	c.emitThreshold(s)

	if c.feedback != nil {
		c.feedback.ResetDone()
	}
	return s
}

func (c *Controller) emitThreshold(s settings.Settings) {
	if c.sink != nil {
		c.sink.Emit(events.NameThreshold, strconv.Itoa(int(s.MoistureThreshold)))
	}
}
