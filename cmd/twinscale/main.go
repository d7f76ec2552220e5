// TwinScale Core - Tenant-Scoped Digital Twin Synchronization Engine
//
// This is the main entry point for the TwinScale Core application.
// TwinScale Core keeps Thing definitions synchronized across two stores:
//   - A schema/graph store holding the authoritative structural model
//   - A live-state store holding the runtime twin
//
// Identifiers are namespaced per tenant; live property updates flow from
// the state store's MQTT feed to WebSocket clients and value history.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/twinscale/twinscale-core/migrations"

	"github.com/twinscale/twinscale-core/internal/api"
	"github.com/twinscale/twinscale-core/internal/infrastructure/config"
	"github.com/twinscale/twinscale-core/internal/infrastructure/database"
	"github.com/twinscale/twinscale-core/internal/infrastructure/influxdb"
	"github.com/twinscale/twinscale-core/internal/infrastructure/logging"
	"github.com/twinscale/twinscale-core/internal/infrastructure/mqtt"
	"github.com/twinscale/twinscale-core/internal/search"
	"github.com/twinscale/twinscale-core/internal/tenant"
	"github.com/twinscale/twinscale-core/internal/thing"
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
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting TwinScale Core",
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

	// Tenant context: directory client, persisted selection, session
	session := &tenant.Session{AccessToken: cfg.Session.AccessToken}
	directory := tenant.NewDirectory(cfg.Tenants.URL, httpClient(cfg.Tenants.Timeout), session)
	tenants := tenant.NewContext(directory, tenant.NewSQLiteStore(db.DB), session)
	tenants.SetLogger(log)
	tenants.Initialize(ctx)
	log.Info("tenant context initialised",
		"state", string(tenants.State()),
		"current", tenants.CurrentID(),
		"available", len(tenants.Available()),
	)

	// Dual-store orchestrator
	schemaStore := thing.NewHTTPSchemaStore(cfg.SchemaStore.URL, httpClient(cfg.SchemaStore.Timeout), tenants)
	stateStore := thing.NewHTTPStateStore(cfg.StateStore.URL, httpClient(cfg.StateStore.Timeout))
	orchestrator := thing.NewOrchestrator(schemaStore, stateStore, tenants)
	orchestrator.SetLogger(log)

	// Hybrid search client and SQLite-backed search library
	var searchClient *search.Client
	if cfg.Search.URL != "" {
		searchClient = search.NewClient(cfg.Search.URL, httpClient(cfg.Search.Timeout))
	} else {
		log.Info("hybrid search disabled (no url configured)")
	}
	historyRepo := search.NewSQLiteHistoryRepository(db.DB)
	savedRepo := search.NewSQLiteSavedSearchRepository(db.DB)

	// Connect to MQTT broker (optional - live state feed degrades without it)
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
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

		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})
	} else {
		log.Info("MQTT disabled, live state feed unavailable")
	}

	// Connect to InfluxDB (optional - value history degrades without it)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
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
		log.Info("InfluxDB disabled, value history unavailable")
	}

	// WebSocket hub, created here so the state mirror can broadcast to it
	hub := api.NewHub(cfg.WebSocket, log)
	go hub.Run(ctx)

	// State mirror: broker -> WebSocket clients + value history
	if mqttClient != nil {
		var history thing.HistoryWriter
		if influxClient != nil {
			history = influxClient
		}
		mirror := thing.NewMirror(&mqttSubscriber{client: mqttClient}, hub, history, byte(cfg.MQTT.QoS)) //nolint:gosec // QoS is 0-2, validated at connect
		mirror.SetLogger(log)
		orchestrator.SetWatcher(mirror)
		log.Info("state mirror wired", "qos", cfg.MQTT.QoS)
	}

	// Start API server
	server, err := api.New(api.Deps{
		Config:       cfg.API,
		WS:           cfg.WebSocket,
		Logger:       log,
		Tenants:      tenants,
		Directory:    directory,
		Orchestrator: orchestrator,
		Search:       searchClient,
		History:      historyRepo,
		Saved:        savedRepo,
		MQTT:         mqttClient,
		DB:           db.DB,
		ExternalHub:  hub,
		Version:      version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if startErr := server.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		log.Info("stopping API server")
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()
	log.Info("API server started", "host", cfg.API.Host, "port", cfg.API.Port)

	// Verify infrastructure connections are healthy
	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// 1. API server
	// 2. InfluxDB (if enabled)
	// 3. MQTT (if enabled)
	// 4. Database

	log.Info("TwinScale Core stopped")
	return nil
}

// mqttSubscriber adapts the infrastructure MQTT client's error-returning
// message handler to the mirror's fire-and-forget signature.
type mqttSubscriber struct {
	client *mqtt.Client
}

func (s *mqttSubscriber) Subscribe(topic string, qos byte, handler func(topic string, payload []byte)) error {
	return s.client.Subscribe(topic, qos, func(t string, payload []byte) error {
		handler(t, payload)
		return nil
	})
}

func (s *mqttSubscriber) Unsubscribe(topic string) error {
	return s.client.Unsubscribe(topic)
}

// httpClient builds an HTTP client with the given timeout in seconds.
// A zero timeout falls back to 30 seconds rather than no timeout at all.
func httpClient(timeoutSeconds int) *http.Client {
	if timeoutSeconds <= 0 {
		timeoutSeconds = 30
	}
	return &http.Client{Timeout: time.Duration(timeoutSeconds) * time.Second}
}

// getConfigPath returns the configuration file path.
// Uses TWINSCALE_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("TWINSCALE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies infrastructure connections are healthy.
// Optional clients may be nil when their subsystem is disabled.
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}
