package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the Gray Logic Aircon Bridge.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Bridge   BridgeConfig   `yaml:"bridge"`
	Device   DeviceConfig   `yaml:"device"`
	Cache    CacheConfig    `yaml:"cache"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	InfluxDB InfluxDBConfig `yaml:"influxdb"`
	Database DatabaseConfig `yaml:"database"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// BridgeConfig contains bridge identity and polling settings.
type BridgeConfig struct {
	// ID identifies this bridge instance on the MQTT bus.
	ID string `yaml:"id"`

	// DeviceID is the Gray Logic device identifier the air conditioner
	// is exposed under (topic address, telemetry tag, audit entity).
	DeviceID string `yaml:"device_id"`

	// PollInterval is how often the bridge publishes a fresh state snapshot.
	// Default: 10s.
	PollInterval time.Duration `yaml:"poll_interval"`

	// HealthInterval is how often the bridge publishes health status.
	// Default: 30s.
	HealthInterval time.Duration `yaml:"health_interval"`
}

// DeviceConfig contains the air conditioner connection settings.
type DeviceConfig struct {
	// Host is the air conditioner's network address.
	Host string `yaml:"host"`

	// Port is the local API port. Default: 2878.
	Port int `yaml:"port"`

	// Token is the bearer credential issued during device pairing.
	Token string `yaml:"token"`

	// CertFile and KeyFile hold the TLS client certificate the device
	// requires. Leave empty to connect without a client certificate.
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`

	// InsecureSkipVerify disables server certificate verification.
	// The appliance ships with a self-signed certificate, so this is
	// commonly required.
	InsecureSkipVerify bool `yaml:"insecure_skip_verify"`

	// Index is the position of the target appliance within the device
	// list returned by the API. The same index is used for reads and
	// writes. Default: 0.
	Index int `yaml:"index"`

	// Timeout bounds every request to the device. Default: 5s.
	Timeout time.Duration `yaml:"timeout"`
}

// CacheConfig contains device state cache settings.
type CacheConfig struct {
	// TTL is how long a fetched snapshot is trusted before the next read
	// triggers a live fetch. Zero forces a fetch on every read. Default: 2s.
	TTL time.Duration `yaml:"ttl"`

	// RefreshAfterWrite re-warms the cache immediately after a successful
	// command so the next read is served without I/O. Default: true.
	RefreshAfterWrite *bool `yaml:"refresh_after_write"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
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

// InfluxDBConfig contains InfluxDB connection settings for telemetry.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// DatabaseConfig contains SQLite settings for the command audit trail.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: GRAYAIRCON_SECTION_KEY
// For example: GRAYAIRCON_DEVICE_HOST, GRAYAIRCON_DEVICE_TOKEN
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	// Start with defaults
	cfg := defaultConfig()

	// Read and parse YAML file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	refreshAfterWrite := true

	return &Config{
		Bridge: BridgeConfig{
			ID:             "aircon-bridge-01",
			DeviceID:       "aircon-01",
			PollInterval:   10 * time.Second,
			HealthInterval: 30 * time.Second,
		},
		Device: DeviceConfig{
			Port:               2878,
			Index:              0,
			Timeout:            5 * time.Second,
			InsecureSkipVerify: true,
		},
		Cache: CacheConfig{
			TTL:               2 * time.Second,
			RefreshAfterWrite: &refreshAfterWrite,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "graylogic-aircon",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
				MaxAttempts:  0,
			},
		},
		Database: DatabaseConfig{
			Path:        "./data/aircon.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: GRAYAIRCON_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Device
	if v := os.Getenv("GRAYAIRCON_DEVICE_HOST"); v != "" {
		cfg.Device.Host = v
	}
	if v := os.Getenv("GRAYAIRCON_DEVICE_TOKEN"); v != "" {
		cfg.Device.Token = v
	}

	// MQTT
	if v := os.Getenv("GRAYAIRCON_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("GRAYAIRCON_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("GRAYAIRCON_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// Database
	if v := os.Getenv("GRAYAIRCON_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// InfluxDB
	if v := os.Getenv("GRAYAIRCON_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// Bridge validation
	if c.Bridge.ID == "" {
		errs = append(errs, "bridge.id is required")
	}
	if c.Bridge.DeviceID == "" {
		errs = append(errs, "bridge.device_id is required")
	}
	if c.Bridge.PollInterval <= 0 {
		errs = append(errs, "bridge.poll_interval must be positive")
	}

	// Device validation
	if c.Device.Host == "" {
		errs = append(errs, "device.host is required (set GRAYAIRCON_DEVICE_HOST environment variable)")
	}
	if c.Device.Port < 1 || c.Device.Port > 65535 {
		errs = append(errs, "device.port must be between 1 and 65535")
	}
	if c.Device.Token == "" {
		errs = append(errs, "device.token is required (set GRAYAIRCON_DEVICE_TOKEN environment variable)")
	}
	if c.Device.Index < 0 {
		errs = append(errs, "device.index must not be negative")
	}
	if c.Device.Timeout <= 0 {
		errs = append(errs, "device.timeout must be positive")
	}
	if (c.Device.CertFile == "") != (c.Device.KeyFile == "") {
		errs = append(errs, "device.cert_file and device.key_file must be set together")
	}

	// Cache validation
	if c.Cache.TTL < 0 {
		errs = append(errs, "cache.ttl must not be negative")
	}

	// MQTT validation
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	// Database validation
	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// EagerRefresh reports whether the cache should be re-warmed after a
// successful command. Defaults to true when unset.
func (c *CacheConfig) EagerRefresh() bool {
	if c.RefreshAfterWrite == nil {
		return true
	}
	return *c.RefreshAfterWrite
}
