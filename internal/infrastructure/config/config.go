package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for TwinScale Core.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Service     ServiceConfig     `yaml:"service"`
	Database    DatabaseConfig    `yaml:"database"`
	SchemaStore SchemaStoreConfig `yaml:"schema_store"`
	StateStore  StateStoreConfig  `yaml:"state_store"`
	Tenants     TenantsConfig     `yaml:"tenants"`
	Search      SearchConfig      `yaml:"search"`
	MQTT        MQTTConfig        `yaml:"mqtt"`
	InfluxDB    InfluxDBConfig    `yaml:"influxdb"`
	API         APIConfig         `yaml:"api"`
	WebSocket   WebSocketConfig   `yaml:"websocket"`
	Logging     LoggingConfig     `yaml:"logging"`
	Session     SessionConfig     `yaml:"session"`
}

// ServiceConfig contains instance-level identification.
type ServiceConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// DatabaseConfig contains SQLite database settings.
// The local database holds the persisted tenant selection and saved searches.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// SchemaStoreConfig contains connection settings for the schema (graph) store
// service, which holds Thing structural definitions.
type SchemaStoreConfig struct {
	URL     string `yaml:"url"`
	Timeout int    `yaml:"timeout"`
}

// StateStoreConfig contains connection settings for the live-state (twin)
// store service, which holds current Thing values.
type StateStoreConfig struct {
	URL     string `yaml:"url"`
	Timeout int    `yaml:"timeout"`
}

// TenantsConfig contains connection settings for the tenant directory service.
type TenantsConfig struct {
	URL     string `yaml:"url"`
	Timeout int    `yaml:"timeout"`
}

// SearchConfig contains connection settings for the hybrid search endpoint.
type SearchConfig struct {
	URL     string `yaml:"url"`
	Timeout int    `yaml:"timeout"`
}

// SessionConfig contains the session credential used against the tenant
// directory. When the token is absent or expired, the public listing is used.
type SessionConfig struct {
	AccessToken string `yaml:"access_token"`
}

// MQTTConfig contains MQTT broker connection settings.
// The broker carries live property updates for mirrored twins.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled"`
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
	MaxAttempts  int `yaml:"max_attempts"`
}

// InfluxDBConfig contains InfluxDB connection settings for value history.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	TLS      TLSConfig        `yaml:"tls"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`
}

// TLSConfig contains TLS certificate settings.
type TLSConfig struct {
	Enabled  bool   `yaml:"enabled"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

// APITimeoutConfig contains HTTP timeout settings.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// WebSocketConfig contains WebSocket server settings.
type WebSocketConfig struct {
	Path           string `yaml:"path"`
	MaxMessageSize int    `yaml:"max_message_size"`
	PingInterval   int    `yaml:"ping_interval"`
	PongTimeout    int    `yaml:"pong_timeout"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable
// overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: TWINSCALE_SECTION_KEY
// For example: TWINSCALE_DATABASE_PATH, TWINSCALE_SCHEMA_STORE_URL
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Service: ServiceConfig{
			ID:   "twinscale-001",
			Name: "TwinScale Core",
		},
		Database: DatabaseConfig{
			Path:        "./data/twinscale.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		SchemaStore: SchemaStoreConfig{
			URL:     "http://localhost:8000/v2/fuseki",
			Timeout: 15,
		},
		StateStore: StateStoreConfig{
			URL:     "http://localhost:8000/v2/things",
			Timeout: 15,
		},
		Tenants: TenantsConfig{
			URL:     "http://localhost:8000/v2/tenants",
			Timeout: 10,
		},
		Search: SearchConfig{
			URL:     "http://localhost:8000/v2/search",
			Timeout: 15,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "twinscale-core",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
				MaxAttempts:  0,
			},
		},
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 8080,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		WebSocket: WebSocketConfig{
			Path:           "/ws",
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: TWINSCALE_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Database
	if v := os.Getenv("TWINSCALE_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// Collaborator services
	if v := os.Getenv("TWINSCALE_SCHEMA_STORE_URL"); v != "" {
		cfg.SchemaStore.URL = v
	}
	if v := os.Getenv("TWINSCALE_STATE_STORE_URL"); v != "" {
		cfg.StateStore.URL = v
	}
	if v := os.Getenv("TWINSCALE_TENANTS_URL"); v != "" {
		cfg.Tenants.URL = v
	}
	if v := os.Getenv("TWINSCALE_SEARCH_URL"); v != "" {
		cfg.Search.URL = v
	}

	// Session credential
	if v := os.Getenv("TWINSCALE_ACCESS_TOKEN"); v != "" {
		cfg.Session.AccessToken = v
	}

	// MQTT
	if v := os.Getenv("TWINSCALE_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("TWINSCALE_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("TWINSCALE_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// API
	if v := os.Getenv("TWINSCALE_API_HOST"); v != "" {
		cfg.API.Host = v
	}

	// InfluxDB
	if v := os.Getenv("TWINSCALE_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []string

	if c.Service.ID == "" {
		errs = append(errs, "service.id is required")
	}

	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	if c.SchemaStore.URL == "" {
		errs = append(errs, "schema_store.url is required")
	}
	if c.StateStore.URL == "" {
		errs = append(errs, "state_store.url is required")
	}
	if c.Tenants.URL == "" {
		errs = append(errs, "tenants.url is required")
	}
	if c.Search.URL == "" {
		errs = append(errs, "search.url is required")
	}

	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}

// GetSchemaStoreTimeout returns the schema store request timeout as a Duration.
func (c *Config) GetSchemaStoreTimeout() time.Duration {
	return time.Duration(c.SchemaStore.Timeout) * time.Second
}

// GetStateStoreTimeout returns the state store request timeout as a Duration.
func (c *Config) GetStateStoreTimeout() time.Duration {
	return time.Duration(c.StateStore.Timeout) * time.Second
}
