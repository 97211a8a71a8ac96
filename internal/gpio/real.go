//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealPins drives actual hardware using the Linux GPIO character device.
type RealPins struct {
	chip   *gpiocdev.Chip
	power  *gpiocdev.Line
	led    *gpiocdev.Line
	button *gpiocdev.Line
	adc    AnalogReader
}

// NewRealPins requests the power and LED lines as outputs (initially low)
// and the button as an input with pull-up. adc is owned by the result.
func NewRealPins(cfg PinConfig, adc AnalogReader) (*RealPins, error) {
	chipName := cfg.Chip
	if chipName == "" {
		chipName = "gpiochip0"
	}
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}
	p := &RealPins{chip: chip, adc: adc}

	p.power, err = chip.RequestLine(cfg.SensorPower, gpiocdev.AsOutput(0))
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("request sensor power pin %d: %w", cfg.SensorPower, err)
	}

	p.led, err = chip.RequestLine(cfg.LED, gpiocdev.AsOutput(0))
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("request LED pin %d: %w", cfg.LED, err)
	}

	p.button, err = chip.RequestLine(cfg.Button, gpiocdev.AsInput, gpiocdev.WithPullUp)
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("request button pin %d: %w", cfg.Button, err)
	}

	return p, nil
}

// SetSensorPower switches the probe supply line.
func (p *RealPins) SetSensorPower(on bool) error {
	if err := p.power.SetValue(boolToValue(on)); err != nil {
		return fmt.Errorf("set sensor power: %w", err)
	}
	return nil
}

// SetLED drives the LED line.
func (p *RealPins) SetLED(on bool) error {
	if err := p.led.SetValue(boolToValue(on)); err != nil {
		return fmt.Errorf("set LED: %w", err)
	}
	return nil
}

// ButtonPressed inverts the raw button line: raw 0 = pressed.
func (p *RealPins) ButtonPressed() (bool, error) {
	v, err := p.button.Value()
	if err != nil {
		return false, fmt.Errorf("read button pin: %w", err)
	}
	return v == 0, nil
}

// ReadAnalog reads the probe through the configured ADC.
func (p *RealPins) ReadAnalog() (int, error) {
	if p.adc == nil {
		return 0, fmt.Errorf("read analog: no ADC configured")
	}
	return p.adc.Read()
}

// Close releases GPIO resources.
// Outputs are reconfigured as inputs before closing so the probe is left
// unpowered and the LED dark across reboots.
func (p *RealPins) Close() error {
	var errs []error

	outputs := []struct {
		name string
		line *gpiocdev.Line
	}{
		{"sensor power", p.power},
		{"LED", p.led},
	}
	for _, o := range outputs {
		if o.line == nil {
			continue
		}
		if err := o.line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure %s pin: %w", o.name, err))
		}
		if err := o.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s pin: %w", o.name, err))
		}
	}
	if p.button != nil {
		if err := p.button.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close button pin: %w", err))
		}
	}
	if p.adc != nil {
		if err := p.adc.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close adc: %w", err))
		}
	}
	if p.chip != nil {
		if err := p.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

func boolToValue(on bool) int {
	if on {
		return 1
	}
	return 0
}
