package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for Gray Logic ChatOps.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	Gateway   GatewayConfig   `yaml:"gateway"`
	Slack     SlackConfig     `yaml:"slack"`
	API       APIConfig       `yaml:"api"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// MQTTConfig contains MQTT broker connection settings.
// The lighting gateway publishes device state through this broker.
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

// GatewayConfig contains lighting gateway settings.
type GatewayConfig struct {
	// TopicPrefix is the root of the gateway's MQTT topic tree.
	// Device records are published retained to {prefix}/device/{instance_id}.
	TopicPrefix string `yaml:"topic_prefix"`

	// SettleDelay is how long a fresh subscription waits for the gateway
	// to replay retained device state before listing (milliseconds).
	SettleDelay int `yaml:"settle_delay"`

	// DialTimeout bounds the shared broker connect attempt (seconds).
	DialTimeout int `yaml:"dial_timeout"`
}

// SlackConfig contains chat platform credentials and command settings.
type SlackConfig struct {
	// SigningSecret verifies inbound request signatures.
	SigningSecret string `yaml:"signing_secret"`

	// BotToken authorises Web API calls (opening dialogs).
	BotToken string `yaml:"bot_token"`

	// Command is the slash command this service answers, e.g. "/lights".
	Command string `yaml:"command"`

	// PolicyURL is linked from the policy prompt.
	PolicyURL string `yaml:"policy_url"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	TLS      TLSConfig        `yaml:"tls"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`
	Auth     APIAuthConfig    `yaml:"auth"`
}

// APIAuthConfig contains dashboard bearer token settings.
type APIAuthConfig struct {
	// TokenSecret signs and verifies dashboard tokens (HS256).
	TokenSecret string `yaml:"token_secret"`

	// TokenTTL is the default lifetime of an issued token (hours).
	TokenTTL int `yaml:"token_ttl"`
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
	MaxMessageSize int `yaml:"max_message_size"`
	PingInterval   int `yaml:"ping_interval"`
	PongTimeout    int `yaml:"pong_timeout"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
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
// Environment variables follow the pattern: CHATOPS_SECTION_KEY
// For example: CHATOPS_DATABASE_PATH, CHATOPS_SLACK_SIGNING_SECRET
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
		Database: DatabaseConfig{
			Path:        "./data/chatops.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "graylogic-chatops",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		Gateway: GatewayConfig{
			TopicPrefix: "tradfri",
			SettleDelay: 1000,
			DialTimeout: 10,
		},
		Slack: SlackConfig{
			Command: "/lights",
		},
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 8080,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
			Auth: APIAuthConfig{
				TokenTTL: 24,
			},
		},
		WebSocket: WebSocketConfig{
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
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CHATOPS_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	if v := os.Getenv("CHATOPS_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("CHATOPS_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("CHATOPS_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	if v := os.Getenv("CHATOPS_API_HOST"); v != "" {
		cfg.API.Host = v
	}

	if v := os.Getenv("CHATOPS_API_TOKEN_SECRET"); v != "" {
		cfg.API.Auth.TokenSecret = v
	}

	if v := os.Getenv("CHATOPS_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	// Slack credentials should never live in the config file.
	if v := os.Getenv("CHATOPS_SLACK_SIGNING_SECRET"); v != "" {
		cfg.Slack.SigningSecret = v
	}
	if v := os.Getenv("CHATOPS_SLACK_BOT_TOKEN"); v != "" {
		cfg.Slack.BotToken = v
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []string

	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	if c.Gateway.TopicPrefix == "" {
		errs = append(errs, "gateway.topic_prefix is required")
	}
	if c.Gateway.SettleDelay < 0 {
		errs = append(errs, "gateway.settle_delay must not be negative")
	}
	if c.Gateway.DialTimeout < 1 {
		errs = append(errs, "gateway.dial_timeout must be at least 1 second")
	}

	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	if c.API.Auth.TokenSecret == "" {
		errs = append(errs, "api.auth.token_secret is required (set CHATOPS_API_TOKEN_SECRET environment variable)")
	}
	if c.API.Auth.TokenTTL < 1 {
		errs = append(errs, "api.auth.token_ttl must be at least 1 hour")
	}

	if c.Slack.SigningSecret == "" {
		errs = append(errs, "slack.signing_secret is required (set CHATOPS_SLACK_SIGNING_SECRET environment variable)")
	}
	if !strings.HasPrefix(c.Slack.Command, "/") {
		errs = append(errs, "slack.command must start with /")
	}

	if c.InfluxDB.Enabled && c.InfluxDB.URL == "" {
		errs = append(errs, "influxdb.url is required when influxdb is enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetSettleDelay returns the gateway settle delay as a Duration.
func (c *Config) GetSettleDelay() time.Duration {
	return time.Duration(c.Gateway.SettleDelay) * time.Millisecond
}

// GetDialTimeout returns the gateway dial timeout as a Duration.
func (c *Config) GetDialTimeout() time.Duration {
	return time.Duration(c.Gateway.DialTimeout) * time.Second
}

// GetTokenTTL returns the default dashboard token lifetime as a Duration.
func (c *Config) GetTokenTTL() time.Duration {
	return time.Duration(c.API.Auth.TokenTTL) * time.Hour
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
