// Package config loads the daemon configuration from YAML.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sweeney/soil-monitor/internal/gpio"
	"github.com/sweeney/soil-monitor/internal/mqtt"
	"github.com/sweeney/soil-monitor/internal/settings"
)

// ADC drivers.
const (
	ADCDriverIIO     = "iio"
	ADCDriverADS1115 = "ads1115"
)

// Report channels.
const (
	ReportOff     = "off"
	ReportMQTT    = "mqtt"
	ReportWebhook = "webhook"
)

// Config represents the daemon configuration.
type Config struct {
	Pins        PinsConfig        `yaml:"pins"`
	ADC         ADCConfig         `yaml:"adc"`
	Sensor      SensorConfig      `yaml:"sensor"`
	Classifier  ClassifierConfig  `yaml:"classifier"`
	Calibration CalibrationConfig `yaml:"calibration"`
	Storage     StorageConfig     `yaml:"storage"`
	MQTT        MQTTConfig        `yaml:"mqtt"`
	Report      ReportConfig      `yaml:"report"`
	Loop        LoopConfig        `yaml:"loop"`
	HTTP        HTTPConfig        `yaml:"http"`
}

// PinsConfig selects GPIO lines (BCM numbering).
type PinsConfig struct {
	Chip        string `yaml:"chip"`
	SensorPower int    `yaml:"sensor_power"`
	LED         int    `yaml:"led"`
	Button      int    `yaml:"button"`
}

// ADCConfig selects the analog backend.
type ADCConfig struct {
	Driver     string `yaml:"driver"`      // "iio" or "ads1115"
	IIOPath    string `yaml:"iio_path"`    // sysfs raw value file
	I2CBus     string `yaml:"i2c_bus"`     // empty = first bus
	I2CAddress uint16 `yaml:"i2c_address"` // 0 = 0x48
	Channel    int    `yaml:"channel"`
}

// SensorConfig contains probe sampling and normalization parameters.
type SensorConfig struct {
	SettleDelay time.Duration `yaml:"settle_delay"`
	RawMin      int           `yaml:"raw_min"`
	RawMax      int           `yaml:"raw_max"`
	Invert      bool          `yaml:"invert"`
}

// ClassifierConfig contains hysteresis parameters.
type ClassifierConfig struct {
	Allowance    int           `yaml:"allowance"`
	StartupDefer time.Duration `yaml:"startup_defer"`
}

// CalibrationConfig contains threshold defaults and button timing.
type CalibrationConfig struct {
	DefaultThreshold int32         `yaml:"default_threshold"`
	ResetHold        time.Duration `yaml:"reset_hold"`
}

// StorageConfig locates the persisted settings record.
type StorageConfig struct {
	Path string `yaml:"path"`
}

// MQTTConfig contains broker connection parameters.
type MQTTConfig struct {
	Broker      string `yaml:"broker"`
	ClientID    string `yaml:"client_id"`
	TopicPrefix string `yaml:"topic_prefix"`
	BufferSize  int    `yaml:"buffer_size"`
}

// ReportConfig selects the secondary structured report channel.
type ReportConfig struct {
	Channel    string        `yaml:"channel"` // "off", "mqtt" or "webhook"
	WebhookURL string        `yaml:"webhook_url"`
	Interval   time.Duration `yaml:"interval"`
}

// LoopConfig contains control loop cadence.
type LoopConfig struct {
	Cycle     time.Duration `yaml:"cycle"`
	Heartbeat time.Duration `yaml:"heartbeat"` // 0 disables lifecycle heartbeats
}

// HTTPConfig contains the status server address.
type HTTPConfig struct {
	Addr string `yaml:"addr"` // empty disables
}

// Default returns a default configuration.
func Default() *Config {
	return &Config{
		Pins: PinsConfig{
			Chip:        "gpiochip0",
			SensorPower: gpio.DefaultPinSensorPower,
			LED:         gpio.DefaultPinLED,
			Button:      gpio.DefaultPinButton,
		},
		ADC: ADCConfig{
			Driver:  ADCDriverIIO,
			IIOPath: "/sys/bus/iio/devices/iio:device0/in_voltage0_raw",
		},
		Sensor: SensorConfig{
			SettleDelay: 20 * time.Millisecond,
			RawMin:      0,
			RawMax:      4095,
		},
		Classifier: ClassifierConfig{
			Allowance:    6,
			StartupDefer: 5 * time.Second,
		},
		Calibration: CalibrationConfig{
			DefaultThreshold: settings.DefaultThreshold,
			ResetHold:        5 * time.Second,
		},
		Storage: StorageConfig{
			Path: "/var/lib/soil-monitor/settings.bin",
		},
		MQTT: MQTTConfig{
			Broker:      "tcp://localhost:1883",
			TopicPrefix: mqtt.DefaultTopicPrefix,
			BufferSize:  mqtt.DefaultBufferSize,
		},
		Report: ReportConfig{
			Channel:  ReportMQTT,
			Interval: 30 * time.Second,
		},
		Loop: LoopConfig{
			Cycle:     time.Second,
			Heartbeat: 15 * time.Minute,
		},
		HTTP: HTTPConfig{
			Addr: ":80",
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist it
// returns defaults; missing fields keep their default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ensureDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate rejects configurations the daemon cannot run with.
func (c *Config) Validate() error {
	switch c.ADC.Driver {
	case ADCDriverIIO, ADCDriverADS1115:
	default:
		return fmt.Errorf("adc.driver %q: want %q or %q", c.ADC.Driver, ADCDriverIIO, ADCDriverADS1115)
	}
	switch c.Report.Channel {
	case ReportOff, ReportMQTT:
	case ReportWebhook:
		if c.Report.WebhookURL == "" {
			return fmt.Errorf("report.webhook_url is required for the webhook channel")
		}
	default:
		return fmt.Errorf("report.channel %q: want off, mqtt or webhook", c.Report.Channel)
	}
	if c.Sensor.RawMax == c.Sensor.RawMin {
		return fmt.Errorf("sensor.raw_min and sensor.raw_max must differ")
	}
	if c.Classifier.Allowance < 0 {
		return fmt.Errorf("classifier.allowance must not be negative")
	}
	return nil
}

// ensureDefaults fills zero values that have no meaningful zero setting.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Pins.Chip == "" {
		c.Pins.Chip = def.Pins.Chip
	}
	if c.ADC.Driver == "" {
		c.ADC.Driver = def.ADC.Driver
	}
	if c.ADC.IIOPath == "" {
		c.ADC.IIOPath = def.ADC.IIOPath
	}
	if c.Sensor.SettleDelay == 0 {
		c.Sensor.SettleDelay = def.Sensor.SettleDelay
	}
	if c.Storage.Path == "" {
		c.Storage.Path = def.Storage.Path
	}
	if c.MQTT.Broker == "" {
		c.MQTT.Broker = def.MQTT.Broker
	}
	if c.MQTT.TopicPrefix == "" {
		c.MQTT.TopicPrefix = def.MQTT.TopicPrefix
	}
	if c.MQTT.BufferSize == 0 {
		c.MQTT.BufferSize = def.MQTT.BufferSize
	}
	if c.Report.Channel == "" {
		c.Report.Channel = def.Report.Channel
	}
	if c.Loop.Cycle == 0 {
		c.Loop.Cycle = def.Loop.Cycle
	}
}
