//go:build !linux

package gpio

import "errors"

// RealPins is not available on non-Linux platforms.
type RealPins struct{}

// NewRealPins returns an error on non-Linux platforms.
func NewRealPins(cfg PinConfig, adc AnalogReader) (*RealPins, error) {
	return nil, errors.New("gpio: not supported on this platform (requires Linux)")
}

// SetSensorPower is not implemented on non-Linux platforms.
func (p *RealPins) SetSensorPower(on bool) error {
	return errors.New("gpio: not supported")
}

// SetLED is not implemented on non-Linux platforms.
func (p *RealPins) SetLED(on bool) error {
	return errors.New("gpio: not supported")
}

// ButtonPressed is not implemented on non-Linux platforms.
func (p *RealPins) ButtonPressed() (bool, error) {
	return false, errors.New("gpio: not supported")
}

// ReadAnalog is not implemented on non-Linux platforms.
func (p *RealPins) ReadAnalog() (int, error) {
	return 0, errors.New("gpio: not supported")
}

// Close is not implemented on non-Linux platforms.
func (p *RealPins) Close() error {
	return nil
}
