// Command soil-monitor samples a soil moisture probe, classifies the substrate
// as dry or wet, and publishes state and threshold changes to MQTT.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sweeney/soil-monitor/internal/calibration"
	"github.com/sweeney/soil-monitor/internal/config"
	"github.com/sweeney/soil-monitor/internal/events"
	"github.com/sweeney/soil-monitor/internal/gpio"
	"github.com/sweeney/soil-monitor/internal/led"
	"github.com/sweeney/soil-monitor/internal/monitor"
	"github.com/sweeney/soil-monitor/internal/mqtt"
	"github.com/sweeney/soil-monitor/internal/sensor"
	"github.com/sweeney/soil-monitor/internal/settings"
	"github.com/sweeney/soil-monitor/internal/status"
	"github.com/sweeney/soil-monitor/internal/web"
	"github.com/sweeney/soil-monitor/internal/webhook"
)

const defaultConfigPath = "/etc/soil-monitor/config.yaml"

type options struct {
	configPath    string
	broker        string
	httpAddr      string
	printState    bool
	clearSettings bool
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", defaultConfigPath, "Path to YAML config file")
	flag.StringVar(&opts.broker, "broker", "", "MQTT broker address (overrides config)")
	flag.StringVar(&opts.httpAddr, "http", "", `HTTP status address (overrides config, "off" disables)`)
	flag.BoolVar(&opts.printState, "print-state", false, "Print one sample and the persisted threshold, then exit")
	flag.BoolVar(&opts.clearSettings, "clear-settings", false, "Erase persisted settings and exit")

	flag.Parse()

	if err := run(opts); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(opts options) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyOverrides(cfg, opts)

	storage := settings.NewFileStorage(cfg.Storage.Path)

	if opts.clearSettings {
		if err := storage.Erase(); err != nil {
			return fmt.Errorf("clear settings: %w", err)
		}
		fmt.Printf("settings cleared: %s\n", cfg.Storage.Path)
		return nil
	}

	adc, err := newAnalogReader(cfg.ADC)
	if err != nil {
		return fmt.Errorf("init adc: %w", err)
	}

	pins, err := gpio.NewRealPins(gpio.PinConfig{
		Chip:        cfg.Pins.Chip,
		SensorPower: cfg.Pins.SensorPower,
		LED:         cfg.Pins.LED,
		Button:      cfg.Pins.Button,
	}, adc)
	if err != nil {
		adc.Close()
		return fmt.Errorf("init gpio: %w", err)
	}
	defer pins.Close()

	reader := sensor.NewReader(pins, sensorConfig(cfg.Sensor), time.Sleep)

	if opts.printState {
		return printState(os.Stdout, pins, reader, storage, cfg.Sensor.SettleDelay)
	}

	publisher, err := mqtt.NewRealPublisher(mqtt.Options{
		Broker:      cfg.MQTT.Broker,
		ClientID:    cfg.MQTT.ClientID,
		TopicPrefix: cfg.MQTT.TopicPrefix,
		BufferSize:  cfg.MQTT.BufferSize,
	})
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}
	defer publisher.Close()

	var reporter events.Reporter
	switch cfg.Report.Channel {
	case config.ReportMQTT:
		reporter = publisher
	case config.ReportWebhook:
		hook := webhook.New(cfg.Report.WebhookURL, nil)
		defer hook.Close()
		reporter = hook
	}

	sink := events.Multi{events.LogSink{}, publisher}
	store := settings.NewStore(storage, sink, cfg.Calibration.DefaultThreshold)
	calibrator := calibration.NewController(store, sink, led.New(pins, time.Sleep))

	startTime := time.Now()
	mon := monitor.New(monitor.Config{
		Allowance:      cfg.Classifier.Allowance,
		StartupDefer:   cfg.Classifier.StartupDefer,
		ReportInterval: cfg.Report.Interval,
		ResetHold:      cfg.Calibration.ResetHold,
	}, monitor.Deps{
		Reader:     reader,
		Store:      store,
		Calibrator: calibrator,
		ButtonIn:   pins,
		Sink:       sink,
		Reporter:   reporter,
	}, startTime)

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(startTime, status.Config{
		CycleMs:          cfg.Loop.Cycle.Milliseconds(),
		StartupDeferMs:   cfg.Classifier.StartupDefer.Milliseconds(),
		ReportIntervalMs: cfg.Report.Interval.Milliseconds(),
		HeartbeatMs:      cfg.Loop.Heartbeat.Milliseconds(),
		Broker:           cfg.MQTT.Broker,
		HTTPAddr:         cfg.HTTP.Addr,
		ReportChannel:    cfg.Report.Channel,
	})
	tracker.Update(mon.Reading())
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}

	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	} else {
		log.Printf("published startup event")
	}

	if cfg.HTTP.Addr != "" {
		srv := web.New(cfg.HTTP.Addr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.HTTP.Addr)
	}

	log.Printf("started: cycle=%v broker=%s report=%s heartbeat=%v",
		cfg.Loop.Cycle, cfg.MQTT.Broker, cfg.Report.Channel, cfg.Loop.Heartbeat)

	ticker := time.NewTicker(cfg.Loop.Cycle)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(mon, publisher, publisher, tracker, cfg.Loop.Heartbeat, time.Now, ticker.C, sigCh)
}

func runLoop(mon *monitor.Monitor, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, heartbeat time.Duration, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			event := mqtt.SystemEvent{
				Timestamp: now(),
				Event:     "SHUTDOWN",
				Reason:    signalName,
				Retained:  true,
			}
			if tracker != nil {
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
				snap := tracker.Snapshot()
				event.RawPayload = status.FormatStatusEvent(snap, "SHUTDOWN", signalName)
			}
			if err := publisher.PublishSystem(event); err != nil {
				log.Printf("failed to publish shutdown event: %v", err)
			} else {
				log.Printf("published shutdown event")
			}
			return nil

		case <-tick:
			t := now()
			if err := mon.Cycle(t); err != nil {
				log.Printf("cycle error: %v", err)
				continue
			}

			if hb := mon.CheckHeartbeat(t, heartbeat); hb != nil {
				log.Printf("heartbeat: uptime=%v dry=%d wet=%d", hb.Uptime, hb.Counts.Dry, hb.Counts.Wet)

				hbEvent := mqtt.SystemEvent{
					Timestamp: hb.Timestamp,
					Event:     "HEARTBEAT",
				}
				if tracker != nil {
					if mqttStatus != nil {
						tracker.SetMQTTConnected(mqttStatus.IsConnected())
					}
					// Refresh network info for heartbeat
					if net := readNetworkInfo(); net != nil {
						tracker.SetNetwork(net)
					}
					tracker.Update(mon.Reading())
					hbEvent.RawPayload = status.FormatStatusEvent(tracker.Snapshot(), "HEARTBEAT", "")
				}
				if err := publisher.PublishSystem(hbEvent); err != nil {
					log.Printf("heartbeat publish error: %v", err)
				}
			}

			if tracker != nil {
				tracker.Update(mon.Reading())
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
			}
		}
	}
}

func applyOverrides(cfg *config.Config, opts options) {
	if opts.broker != "" {
		cfg.MQTT.Broker = opts.broker
	}
	switch opts.httpAddr {
	case "":
	case "off":
		cfg.HTTP.Addr = ""
	default:
		cfg.HTTP.Addr = opts.httpAddr
	}
}

func newAnalogReader(cfg config.ADCConfig) (gpio.AnalogReader, error) {
	switch cfg.Driver {
	case config.ADCDriverADS1115:
		r, err := gpio.NewADS1115Reader(cfg.I2CBus, cfg.I2CAddress, cfg.Channel)
		if err != nil {
			return nil, err
		}
		return r, nil
	case config.ADCDriverIIO:
		return gpio.NewIIOReader(cfg.IIOPath), nil
	}
	return nil, fmt.Errorf("unknown adc driver %q", cfg.Driver)
}

func sensorConfig(c config.SensorConfig) sensor.Config {
	return sensor.Config{
		SettleDelay: c.SettleDelay,
		RawMin:      c.RawMin,
		RawMax:      c.RawMax,
		Invert:      c.Invert,
	}
}

// printState takes one powered reading and prints it alongside the
// persisted record. Storage is read directly so nothing is written.
func printState(w io.Writer, pins gpio.Pins, reader *sensor.Reader, storage settings.Storage, settle time.Duration) error {
	if err := pins.SetSensorPower(true); err != nil {
		return fmt.Errorf("power sensor: %w", err)
	}
	time.Sleep(settle)
	v, readErr := pins.ReadAnalog()
	if err := pins.SetSensorPower(false); err != nil {
		log.Printf("power off sensor: %v", err)
	}
	if readErr != nil {
		return fmt.Errorf("read analog: %w", readErr)
	}

	fmt.Fprintf(w, "raw: %d, moisture: %d%%\n", v, reader.Normalize(v))

	b, err := storage.ReadRecord()
	if err != nil {
		return fmt.Errorf("read settings: %w", err)
	}
	rec := settings.Decode(b)
	if rec.Version == settings.UnsetVersion {
		fmt.Fprintln(w, "settings: unset")
		return nil
	}
	fmt.Fprintf(w, "settings: version %d, threshold %d\n", rec.Version, rec.MoistureThreshold)
	return nil
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}
