// Gray Logic Aircon Bridge
//
// This is the main entry point for the aircon bridge. It connects a Samsung
// air conditioner's local HTTPS API to the Gray Logic MQTT bus: retained
// state snapshots out, property commands in, health status on an interval.
//
// Reads go through a TTL cache with single-flight fetching and stale
// fallback; writes go through a serialising dispatcher that invalidates the
// cache after every command.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/nerrad567/gray-logic-aircon/migrations"

	"github.com/nerrad567/gray-logic-aircon/internal/aircon"
	"github.com/nerrad567/gray-logic-aircon/internal/audit"
	"github.com/nerrad567/gray-logic-aircon/internal/bridge"
	"github.com/nerrad567/gray-logic-aircon/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-aircon/internal/infrastructure/database"
	"github.com/nerrad567/gray-logic-aircon/internal/infrastructure/influxdb"
	"github.com/nerrad567/gray-logic-aircon/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-aircon/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-aircon/internal/samsung"
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

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting aircon bridge",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open database
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	// Run migrations
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	auditRepo := audit.NewSQLiteRepository(db.DB)

	// Connect to the appliance transport
	transport, err := samsung.NewClient(samsung.Config{
		Host:               cfg.Device.Host,
		Port:               cfg.Device.Port,
		Token:              cfg.Device.Token,
		CertFile:           cfg.Device.CertFile,
		KeyFile:            cfg.Device.KeyFile,
		InsecureSkipVerify: cfg.Device.InsecureSkipVerify,
		Index:              cfg.Device.Index,
		Timeout:            cfg.Device.Timeout,
	})
	if err != nil {
		return fmt.Errorf("creating device client: %w", err)
	}
	log.Info("device client ready",
		"host", cfg.Device.Host,
		"port", cfg.Device.Port,
		"index", cfg.Device.Index,
	)

	// Build the state cache and command dispatcher over the transport
	cache := aircon.NewStateCache(transport, aircon.StateCacheConfig{
		Index: cfg.Device.Index,
		TTL:   cfg.Cache.TTL,
	})
	cache.SetLogger(log.With("component", "statecache"))

	dispatcher := aircon.NewDispatcher(transport, cache, aircon.DispatcherConfig{
		EagerRefresh: cfg.Cache.EagerRefresh(),
	})
	dispatcher.SetLogger(log.With("component", "dispatcher"))

	// Connect to MQTT broker
	mqttClient, err := mqtt.Connect(cfg.MQTT, cfg.Bridge.ID)
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)

	// Set up MQTT logging callbacks
	mqttClient.SetLogger(log.With("component", "mqtt"))
	mqttClient.SetOnConnect(func() {
		log.Info("MQTT reconnected")
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})

	// Connect to InfluxDB (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(ctx, cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
	} else {
		log.Info("InfluxDB disabled")
	}

	// Start the bridge
	br, err := bridge.NewBridge(bridge.Options{
		Config:     cfg.Bridge,
		QoS:        byte(cfg.MQTT.QoS),
		Version:    version,
		MQTT:       mqttClient,
		Cache:      cache,
		Dispatcher: dispatcher,
		Audit:      auditRepo,
		Telemetry:  telemetrySink(influxClient),
	})
	if err != nil {
		return fmt.Errorf("creating bridge: %w", err)
	}
	br.SetLogger(log.With("component", "bridge"))

	if startErr := br.Start(ctx); startErr != nil {
		return fmt.Errorf("starting bridge: %w", startErr)
	}
	defer func() {
		log.Info("stopping bridge")
		br.Stop()
	}()

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// 1. Bridge (publishes "stopping" health status)
	// 2. InfluxDB (if enabled)
	// 3. MQTT
	// 4. Database

	log.Info("aircon bridge stopped")
	return nil
}

// telemetrySink adapts the optional InfluxDB client to the bridge's
// Telemetry interface. A typed nil inside a non-nil interface would defeat
// the bridge's nil check, so the conversion only happens when the client
// exists.
func telemetrySink(client *influxdb.Client) bridge.Telemetry {
	if client == nil {
		return nil
	}
	return client
}

// getConfigPath returns the configuration file path.
// Uses GRAYAIRCON_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("GRAYAIRCON_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all infrastructure connections are healthy.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - db: Database connection to check
//   - mqttClient: MQTT client to check
//   - influxClient: InfluxDB client to check (may be nil if disabled)
//
// Returns:
//   - error: First health check failure, or nil if all healthy
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if err := mqttClient.HealthCheck(ctx); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	// Appliance health is observed continuously by the bridge's poll loop
	// and reported through the health topic; an unreachable appliance at
	// startup degrades status rather than aborting.

	return nil
}
