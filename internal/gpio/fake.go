package gpio

import "errors"

// FakePins is a test double that returns scripted analog and button values
// and records output writes.
type FakePins struct {
	// Analog contains scripted raw ADC values.
	// Each call to ReadAnalog() consumes the next value.
	Analog []int

	// Button contains scripted logical button states.
	// Each call to ButtonPressed() consumes the next value.
	Button []bool

	analogIndex int
	buttonIndex int

	// PowerLog records every SetSensorPower call in order.
	PowerLog []bool

	// LEDLog records every SetLED call in order.
	LEDLog []bool

	// Powered is the current sensor power state.
	Powered bool

	// ReadError, if set, will be returned by ReadAnalog().
	ReadError error

	// ReadWhileUnpowered counts analog reads taken with the probe off.
	ReadWhileUnpowered int

	// Closed tracks if Close was called
	Closed bool
}

// NewFakePins creates FakePins with the given analog samples.
func NewFakePins(analog []int) *FakePins {
	return &FakePins{Analog: analog}
}

// SetSensorPower records the power state.
func (f *FakePins) SetSensorPower(on bool) error {
	f.Powered = on
	f.PowerLog = append(f.PowerLog, on)
	return nil
}

// ReadAnalog returns the next scripted value.
// If values are exhausted, returns the last value repeatedly.
func (f *FakePins) ReadAnalog() (int, error) {
	if f.ReadError != nil {
		return 0, f.ReadError
	}
	if len(f.Analog) == 0 {
		return 0, errors.New("no analog samples configured")
	}
	if !f.Powered {
		f.ReadWhileUnpowered++
	}

	v := f.Analog[f.analogIndex]
	if f.analogIndex < len(f.Analog)-1 {
		f.analogIndex++
	}
	return v, nil
}

// ButtonPressed returns the next scripted button state, or released once
// the script is exhausted.
func (f *FakePins) ButtonPressed() (bool, error) {
	if f.buttonIndex >= len(f.Button) {
		return false, nil
	}
	v := f.Button[f.buttonIndex]
	f.buttonIndex++
	return v, nil
}

// SetLED records the LED state.
func (f *FakePins) SetLED(on bool) error {
	f.LEDLog = append(f.LEDLog, on)
	return nil
}

// Close marks the pins as closed.
func (f *FakePins) Close() error {
	f.Closed = true
	return nil
}

// Reset rewinds the scripts and clears recorded writes.
func (f *FakePins) Reset() {
	f.analogIndex = 0
	f.buttonIndex = 0
	f.PowerLog = nil
	f.LEDLog = nil
	f.Powered = false
	f.ReadWhileUnpowered = 0
	f.Closed = false
}
