package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_ValidConfig(t *testing.T) {
	content := `
service:
  id: "test-instance"
database:
  path: "/tmp/test.db"
  wal_mode: true
  busy_timeout: 5
schema_store:
  url: "http://schema.local/v2/fuseki"
state_store:
  url: "http://state.local/v2/things"
tenants:
  url: "http://tenants.local/v2/tenants"
search:
  url: "http://search.local/v2/search"
mqtt:
  broker:
    host: "localhost"
    port: 1883
    client_id: "test-client"
  qos: 1
api:
  host: "0.0.0.0"
  port: 8080
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Service.ID != "test-instance" {
		t.Errorf("Service.ID = %q, want %q", cfg.Service.ID, "test-instance")
	}

	if cfg.SchemaStore.URL != "http://schema.local/v2/fuseki" {
		t.Errorf("SchemaStore.URL = %q, want %q", cfg.SchemaStore.URL, "http://schema.local/v2/fuseki")
	}

	if cfg.MQTT.Broker.Host != "localhost" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "localhost")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("invalid: [yaml: content"), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	content := `
service:
  id: ""
database:
  path: "/tmp/test.db"
api:
  port: 8080
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected validation error for empty service.id, got nil")
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Service:     ServiceConfig{ID: "twinscale-001"},
			Database:    DatabaseConfig{Path: "/data/twinscale.db"},
			SchemaStore: SchemaStoreConfig{URL: "http://schema.local"},
			StateStore:  StateStoreConfig{URL: "http://state.local"},
			Tenants:     TenantsConfig{URL: "http://tenants.local"},
			Search:      SearchConfig{URL: "http://search.local"},
			MQTT:        MQTTConfig{QoS: 1},
			API:         APIConfig{Port: 8080},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid config", func(*Config) {}, false},
		{"missing service ID", func(c *Config) { c.Service.ID = "" }, true},
		{"missing database path", func(c *Config) { c.Database.Path = "" }, true},
		{"missing schema store URL", func(c *Config) { c.SchemaStore.URL = "" }, true},
		{"missing state store URL", func(c *Config) { c.StateStore.URL = "" }, true},
		{"missing tenants URL", func(c *Config) { c.Tenants.URL = "" }, true},
		{"missing search URL", func(c *Config) { c.Search.URL = "" }, true},
		{"invalid QoS", func(c *Config) { c.MQTT.QoS = 3 }, true},
		{"invalid port low", func(c *Config) { c.API.Port = 0 }, true},
		{"invalid port high", func(c *Config) { c.API.Port = 70000 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_GetTimeouts(t *testing.T) {
	cfg := &Config{
		API: APIConfig{
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 45,
				Idle:  60,
			},
		},
		SchemaStore: SchemaStoreConfig{Timeout: 15},
		StateStore:  StateStoreConfig{Timeout: 20},
	}

	if got := cfg.GetReadTimeout().Seconds(); got != 30 {
		t.Errorf("GetReadTimeout() = %v, want 30", got)
	}

	if got := cfg.GetWriteTimeout().Seconds(); got != 45 {
		t.Errorf("GetWriteTimeout() = %v, want 45", got)
	}

	if got := cfg.GetIdleTimeout().Seconds(); got != 60 {
		t.Errorf("GetIdleTimeout() = %v, want 60", got)
	}

	if got := cfg.GetSchemaStoreTimeout().Seconds(); got != 15 {
		t.Errorf("GetSchemaStoreTimeout() = %v, want 15", got)
	}

	if got := cfg.GetStateStoreTimeout().Seconds(); got != 20 {
		t.Errorf("GetStateStoreTimeout() = %v, want 20", got)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := defaultConfig()

	t.Setenv("TWINSCALE_DATABASE_PATH", "/custom/path.db")
	t.Setenv("TWINSCALE_SCHEMA_STORE_URL", "http://schema.example.com")
	t.Setenv("TWINSCALE_STATE_STORE_URL", "http://state.example.com")
	t.Setenv("TWINSCALE_ACCESS_TOKEN", "header.payload.sig")
	t.Setenv("TWINSCALE_MQTT_HOST", "mqtt.example.com")
	t.Setenv("TWINSCALE_API_HOST", "192.168.1.1")
	t.Setenv("TWINSCALE_INFLUXDB_TOKEN", "secret-token")

	applyEnvOverrides(cfg)

	if cfg.Database.Path != "/custom/path.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/custom/path.db")
	}

	if cfg.SchemaStore.URL != "http://schema.example.com" {
		t.Errorf("SchemaStore.URL = %q, want %q", cfg.SchemaStore.URL, "http://schema.example.com")
	}

	if cfg.StateStore.URL != "http://state.example.com" {
		t.Errorf("StateStore.URL = %q, want %q", cfg.StateStore.URL, "http://state.example.com")
	}

	if cfg.Session.AccessToken != "header.payload.sig" {
		t.Errorf("Session.AccessToken = %q, want %q", cfg.Session.AccessToken, "header.payload.sig")
	}

	if cfg.MQTT.Broker.Host != "mqtt.example.com" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "mqtt.example.com")
	}

	if cfg.API.Host != "192.168.1.1" {
		t.Errorf("API.Host = %q, want %q", cfg.API.Host, "192.168.1.1")
	}

	if cfg.InfluxDB.Token != "secret-token" {
		t.Errorf("InfluxDB.Token = %q, want %q", cfg.InfluxDB.Token, "secret-token")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Service.ID == "" {
		t.Error("defaultConfig should have non-empty Service.ID")
	}

	if cfg.Database.Path == "" {
		t.Error("defaultConfig should have non-empty Database.Path")
	}

	if cfg.MQTT.Broker.Port != 1883 {
		t.Errorf("defaultConfig MQTT.Broker.Port = %d, want 1883", cfg.MQTT.Broker.Port)
	}

	if cfg.API.Port != 8080 {
		t.Errorf("defaultConfig API.Port = %d, want 8080", cfg.API.Port)
	}
}
