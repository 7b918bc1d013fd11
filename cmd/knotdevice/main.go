// KNoT Device Runtime
//
// This is the main entry point for a KNoT device process. It loads or
// creates the device identity, drives the device through the KNoT session
// states against the configured broker, and streams sensor telemetry once
// the session is ready.
package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/janael-pinheiro/knot-protocol-go/internal/infrastructure/amqp"
	"github.com/janael-pinheiro/knot-protocol-go/internal/infrastructure/config"
	"github.com/janael-pinheiro/knot-protocol-go/internal/infrastructure/logging"
	"github.com/janael-pinheiro/knot-protocol-go/internal/knot/device"
	"github.com/janael-pinheiro/knot-protocol-go/internal/knot/lifecycle"
	"github.com/janael-pinheiro/knot-protocol-go/internal/knot/repository"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

// telemetryInterval is the pause between sensor readings once the session
// is ready.
const telemetryInterval = 5 * time.Second

// Sensor identifiers for the default device profile.
const (
	sensorTemperature = 1
	sensorHumidity    = 2
)

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting KNoT device runtime",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)

	// Open the device store
	store, closeStore, err := repository.Open(cfg)
	if err != nil {
		return fmt.Errorf("opening device store: %w", err)
	}
	defer func() {
		if closeErr := closeStore(); closeErr != nil {
			log.Error("error closing device store", "error", closeErr)
		}
	}()

	dev, err := loadOrCreateDevice(ctx, store, cfg)
	if err != nil {
		return err
	}
	log.Info("device loaded",
		"device_id", dev.ID,
		"name", dev.Name,
		"state", string(dev.State),
	)

	// Connect to the broker
	client, err := amqp.Dial(cfg, log)
	if err != nil {
		return fmt.Errorf("connecting to broker: %w", err)
	}
	defer func() {
		log.Info("closing broker connection")
		if closeErr := client.Close(); closeErr != nil {
			log.Error("error closing broker connection", "error", closeErr)
		}
	}()

	machine := lifecycle.Assemble(client, dev, cfg, log)
	defer machine.Stop()

	// Persist whatever stage the device reached, so the next run resumes
	// instead of re-registering.
	defer func() {
		saveCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		snapshot := machine.Device()
		if saveErr := store.Save(saveCtx, &snapshot); saveErr != nil {
			log.Error("error saving device", "error", saveErr)
		} else {
			log.Info("device saved", "state", string(snapshot.State))
		}
	}()

	if err := machine.Start(ctx); err != nil {
		return fmt.Errorf("establishing device session: %w", err)
	}

	return telemetryLoop(ctx, machine, store, log)
}

// loadOrCreateDevice restores the stored device, or registers a fresh
// identity with the default sensor profile on first run.
func loadOrCreateDevice(ctx context.Context, store repository.Gateway, cfg *config.Config) (*device.Device, error) {
	dev, err := store.Load(ctx, "")
	switch {
	case err == nil:
		return dev, nil
	case errors.Is(err, repository.ErrNoStoredDevice):
	default:
		return nil, fmt.Errorf("loading device: %w", err)
	}

	dev, err = device.New(cfg.Device.Name, defaultSensors())
	if err != nil {
		return nil, fmt.Errorf("creating device: %w", err)
	}
	if err := store.Save(ctx, dev); err != nil {
		return nil, fmt.Errorf("saving new device: %w", err)
	}
	return dev, nil
}

// defaultSensors is the sensor profile a fresh device announces.
func defaultSensors() []device.SensorConfiguration {
	return []device.SensorConfiguration{
		{
			SensorID: sensorTemperature,
			Schema: device.Schema{
				TypeID:    65521,
				Unit:      0,
				ValueType: device.ValueTypeFloat,
				Name:      "temperature",
			},
			Event: device.Event{
				Change:         true,
				TimeSec:        5,
				LowerThreshold: 4.0,
				UpperThreshold: 10.0,
			},
		},
		{
			SensorID: sensorHumidity,
			Schema: device.Schema{
				TypeID:    65521,
				Unit:      0,
				ValueType: device.ValueTypeFloat,
				Name:      "humidity",
			},
			Event: device.Event{
				Change:  true,
				TimeSec: 5,
			},
		},
	}
}

// telemetryLoop publishes a reading per sensor every interval until the
// context is cancelled. Publish failures are logged and the readings
// retried with fresh values on the next tick.
func telemetryLoop(ctx context.Context, machine *lifecycle.Machine, store repository.Gateway, log *logging.Logger) error {
	ticker := time.NewTicker(telemetryInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		machine.SetData(readings())
		if err := machine.PublishData(ctx); err != nil {
			log.Warn("telemetry publish failed", "error", err)
			continue
		}

		snapshot := machine.Device()
		if err := store.Save(ctx, &snapshot); err != nil {
			log.Warn("device save failed", "error", err)
		}
	}
}

// readings samples the simulated sensors.
func readings() []device.DataPoint {
	now := time.Now().UTC().Format("2006-01-02 15:04:05")
	return []device.DataPoint{
		{SensorID: sensorTemperature, Value: 15 + rand.Float64()*10, Timestamp: now},
		{SensorID: sensorHumidity, Value: 40 + rand.Float64()*20, Timestamp: now},
	}
}

// getConfigPath returns the configuration file path.
// Uses KNOT_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("KNOT_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
