package gpio

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/ads1x15"
	"periph.io/x/host/v3"
)

// IIOReader reads an ADC channel exposed by the Linux IIO subsystem, e.g.
// /sys/bus/iio/devices/iio:device0/in_voltage0_raw.
type IIOReader struct {
	path string
}

// NewIIOReader creates a reader for the given sysfs raw value file.
func NewIIOReader(path string) *IIOReader {
	return &IIOReader{path: path}
}

// Read returns the integer in the raw value file.
func (r *IIOReader) Read() (int, error) {
	b, err := os.ReadFile(r.path)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", r.path, err)
	}
	v, err := strconv.Atoi(strings.TrimSpace(string(b)))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", r.path, err)
	}
	return v, nil
}

// Close is a no-op; the file is reopened on every read.
func (r *IIOReader) Close() error {
	return nil
}

var hostInit sync.Once

// ADS1115Reader reads one channel of an ADS1115 on an I2C bus.
type ADS1115Reader struct {
	bus i2c.BusCloser
	pin ads1x15.PinADC
}

// NewADS1115Reader opens the I2C bus (empty name = first available) and
// binds the given channel (0-3) with a 4.096V full scale.
func NewADS1115Reader(busName string, addr uint16, channel int) (*ADS1115Reader, error) {
	var initErr error
	hostInit.Do(func() {
		_, initErr = host.Init()
	})
	if initErr != nil {
		return nil, fmt.Errorf("init periph host: %w", initErr)
	}

	ch, err := adsChannel(channel)
	if err != nil {
		return nil, err
	}

	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("open i2c bus %q: %w", busName, err)
	}

	opts := ads1x15.DefaultOpts
	if addr != 0 {
		opts.I2cAddress = addr
	}
	dev, err := ads1x15.NewADS1115(bus, &opts)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("open ads1115: %w", err)
	}

	pin, err := dev.PinForChannel(ch, 4096*physic.MilliVolt, 8*physic.Hertz, ads1x15.SaveEnergy)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("bind ads1115 channel %d: %w", channel, err)
	}

	return &ADS1115Reader{bus: bus, pin: pin}, nil
}

// Read performs a single-shot conversion and returns the raw count.
func (r *ADS1115Reader) Read() (int, error) {
	s, err := r.pin.Read()
	if err != nil {
		return 0, fmt.Errorf("read ads1115: %w", err)
	}
	return int(s.Raw), nil
}

// Close halts the channel and releases the bus.
func (r *ADS1115Reader) Close() error {
	var errs []error
	if err := r.pin.Halt(); err != nil {
		errs = append(errs, fmt.Errorf("halt ads1115: %w", err))
	}
	if err := r.bus.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close i2c bus: %w", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

func adsChannel(n int) (ads1x15.Channel, error) {
	switch n {
	case 0:
		return ads1x15.Channel0, nil
	case 1:
		return ads1x15.Channel1, nil
	case 2:
		return ads1x15.Channel2, nil
	case 3:
		return ads1x15.Channel3, nil
	}
	return 0, fmt.Errorf("ads1115 channel %d out of range 0-3", n)
}
