// Package gpio provides sensor power, LED, button and analog input access
// with hardware abstraction.
// The real implementation uses the Linux GPIO character device for digital
// lines and an AnalogReader for the moisture probe.
// The fake implementation allows testing without hardware.
package gpio

// Pins is the pin-I/O collaborator used by the moisture pipeline.
type Pins interface {
	// SetSensorPower switches the probe supply.
	SetSensorPower(on bool) error

	// ReadAnalog returns the raw ADC value of the probe.
	ReadAnalog() (int, error)

	// ButtonPressed returns the logical button state.
	// The input is active-low with pull-up: raw 0 = pressed.
	ButtonPressed() (bool, error)

	// SetLED drives the feedback LED.
	SetLED(on bool) error

	// Close releases pin resources.
	Close() error
}

// AnalogReader reads a single analog channel.
type AnalogReader interface {
	Read() (int, error)
	Close() error
}

// Pin definitions (BCM numbering)
const (
	DefaultPinSensorPower = 17
	DefaultPinLED         = 27
	DefaultPinButton      = 22
)

// PinConfig selects the BCM lines used by RealPins.
type PinConfig struct {
	Chip        string
	SensorPower int
	LED         int
	Button      int
}
