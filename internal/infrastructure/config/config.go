package config

import (
	"crypto/tls"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "EPICURE_"

// DefaultPath is the config file used when neither --config nor
// EPICURE_CONFIG names one.
const DefaultPath = "configs/config.yaml"

// Config is the root configuration structure for the Epicure publisher.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	MQTT     MQTTConfig     `yaml:"mqtt" envPrefix:"MQTT_"`
	Logging  LoggingConfig  `yaml:"logging" envPrefix:"LOG_"`
	Journal  JournalConfig  `yaml:"journal" envPrefix:"JOURNAL_"`
	InfluxDB InfluxDBConfig `yaml:"influxdb" envPrefix:"INFLUXDB_"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	Topic     string              `yaml:"topic" env:"TOPIC"`
	QoS       int                 `yaml:"qos" env:"QOS"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect" envPrefix:"RECONNECT_"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host         string `yaml:"host" env:"HOST"`
	Port         int    `yaml:"port" env:"PORT"`
	TLS          bool   `yaml:"tls" env:"TLS"`
	TLSVersion   string `yaml:"tls_version" env:"TLS_VERSION"`
	ClientID     string `yaml:"client_id" env:"CLIENT_ID"`
	KeepAlive    int    `yaml:"keepalive" env:"KEEPALIVE"`
	CleanSession bool   `yaml:"clean_session" env:"CLEAN_SESSION"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username" env:"USERNAME"`
	Password string `yaml:"password" env:"PASSWORD"`
}

// MQTTReconnectConfig contains reconnection settings. Delays are in seconds.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay" env:"INITIAL_DELAY"`
	MaxDelay     int `yaml:"max_delay" env:"MAX_DELAY"`

	// MaxAttempts limits attempts per disconnect episode. 0 means unlimited.
	MaxAttempts int `yaml:"max_attempts" env:"MAX_ATTEMPTS"`

	// ConnectTimeout bounds a single connect attempt and the startup wait.
	ConnectTimeout int `yaml:"connect_timeout" env:"CONNECT_TIMEOUT"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level" env:"LEVEL"`
	Format string `yaml:"format" env:"FORMAT"`
	Output string `yaml:"output" env:"OUTPUT"`
}

// JournalConfig contains the SQLite command journal settings.
type JournalConfig struct {
	Enabled     bool   `yaml:"enabled" env:"ENABLED"`
	Path        string `yaml:"path" env:"PATH"`
	WALMode     bool   `yaml:"wal_mode" env:"WAL_MODE"`
	BusyTimeout int    `yaml:"busy_timeout" env:"BUSY_TIMEOUT"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled" env:"ENABLED"`
	URL           string `yaml:"url" env:"URL"`
	Token         string `yaml:"token" env:"TOKEN"`
	Org           string `yaml:"org" env:"ORG"`
	Bucket        string `yaml:"bucket" env:"BUCKET"`
	BatchSize     int    `yaml:"batch_size" env:"BATCH_SIZE"`
	FlushInterval int    `yaml:"flush_interval" env:"FLUSH_INTERVAL"`
}

// ResolvePath picks the config file to load. An explicit flag wins, then
// EPICURE_CONFIG, then DefaultPath if it exists. An empty result means
// defaults and environment only.
func ResolvePath(flagPath string) string {
	if flagPath != "" {
		return flagPath
	}
	if v := os.Getenv(EnvPrefix + "CONFIG"); v != "" {
		return v
	}
	if _, err := os.Stat(DefaultPath); err == nil {
		return DefaultPath
	}
	return ""
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults), skipped when path is empty
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: EPICURE_SECTION_KEY
// For example: EPICURE_MQTT_HOST, EPICURE_MQTT_RECONNECT_MAX_ATTEMPTS
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with the publisher's stock settings.
func defaultConfig() *Config {
	return &Config{
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Port:       8883,
				TLS:        true,
				TLSVersion: "1.2",
				ClientID:   "epicure-publisher-fresh",
				KeepAlive:  60,
			},
			Topic: "epicure/commands",
			QoS:   1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay:   2,
				MaxDelay:       60,
				MaxAttempts:    10,
				ConnectTimeout: 10,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		Journal: JournalConfig{
			Enabled:     true,
			Path:        "./data/epicure.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		InfluxDB: InfluxDBConfig{
			BatchSize:     100,
			FlushInterval: 10,
		},
	}
}

// applyEnvOverrides applies EPICURE_* environment variables on top of cfg.
// Unset variables leave the current value untouched.
func applyEnvOverrides(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("applying environment overrides: %w", err)
	}
	return nil
}

// Validate checks the configuration for errors and reports every problem found.
func (c *Config) Validate() error {
	var errs []string

	// MQTT validation
	b := c.MQTT.Broker
	if b.Host == "" {
		errs = append(errs, "mqtt.broker.host is required (set EPICURE_MQTT_HOST environment variable)")
	}
	if b.Port < 1 || b.Port > 65535 {
		errs = append(errs, "mqtt.broker.port must be between 1 and 65535")
	}
	if b.ClientID == "" {
		errs = append(errs, "mqtt.broker.client_id is required")
	}
	if b.KeepAlive <= 0 {
		errs = append(errs, "mqtt.broker.keepalive must be positive")
	}
	if b.TLS {
		if _, err := b.MinTLSVersion(); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if c.MQTT.Topic == "" {
		errs = append(errs, "mqtt.topic is required")
	}
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	r := c.MQTT.Reconnect
	if r.InitialDelay <= 0 {
		errs = append(errs, "mqtt.reconnect.initial_delay must be positive")
	}
	if r.MaxDelay < r.InitialDelay {
		errs = append(errs, "mqtt.reconnect.max_delay must be >= initial_delay")
	}
	if r.MaxAttempts < 0 {
		errs = append(errs, "mqtt.reconnect.max_attempts must be >= 0 (0 = unlimited)")
	}
	if r.ConnectTimeout <= 0 {
		errs = append(errs, "mqtt.reconnect.connect_timeout must be positive")
	}

	// Logging validation
	switch strings.ToLower(c.Logging.Format) {
	case "json", "text", "console", "":
	default:
		errs = append(errs, "logging.format must be json, text, or console")
	}
	switch strings.ToLower(c.Logging.Output) {
	case "stderr", "stdout", "":
	default:
		errs = append(errs, "logging.output must be stderr or stdout")
	}

	// Journal validation
	if c.Journal.Enabled && c.Journal.Path == "" {
		errs = append(errs, "journal.path is required when the journal is enabled")
	}

	// InfluxDB validation
	if c.InfluxDB.Enabled {
		if c.InfluxDB.URL == "" {
			errs = append(errs, "influxdb.url is required when influxdb is enabled")
		}
		if c.InfluxDB.Org == "" {
			errs = append(errs, "influxdb.org is required when influxdb is enabled")
		}
		if c.InfluxDB.Bucket == "" {
			errs = append(errs, "influxdb.bucket is required when influxdb is enabled")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// MinTLSVersion maps tls_version to a crypto/tls version constant.
func (b MQTTBrokerConfig) MinTLSVersion() (uint16, error) {
	switch strings.TrimPrefix(strings.ToLower(b.TLSVersion), "tlsv") {
	case "1.2", "1_2", "":
		return tls.VersionTLS12, nil
	case "1.3", "1_3":
		return tls.VersionTLS13, nil
	default:
		return 0, fmt.Errorf("mqtt.broker.tls_version %q is not supported (use 1.2 or 1.3)", b.TLSVersion)
	}
}

// KeepAliveDuration returns the keepalive interval as a Duration.
func (b MQTTBrokerConfig) KeepAliveDuration() time.Duration {
	return time.Duration(b.KeepAlive) * time.Second
}

// GetInitialDelay returns the first reconnection delay as a Duration.
func (r MQTTReconnectConfig) GetInitialDelay() time.Duration {
	return time.Duration(r.InitialDelay) * time.Second
}

// GetMaxDelay returns the reconnection delay cap as a Duration.
func (r MQTTReconnectConfig) GetMaxDelay() time.Duration {
	return time.Duration(r.MaxDelay) * time.Second
}

// GetConnectTimeout returns the connect timeout as a Duration.
func (r MQTTReconnectConfig) GetConnectTimeout() time.Duration {
	return time.Duration(r.ConnectTimeout) * time.Second
}

// GetBusyTimeout returns the SQLite busy timeout as a Duration.
func (j JournalConfig) GetBusyTimeout() time.Duration {
	return time.Duration(j.BusyTimeout) * time.Second
}

// GetFlushInterval returns the InfluxDB flush interval as a Duration.
func (i InfluxDBConfig) GetFlushInterval() time.Duration {
	return time.Duration(i.FlushInterval) * time.Second
}
