package config

import "time"

// ConfigSource represents where a configuration value came from.
type ConfigSource string

const (
	SourceDefault  ConfigSource = "default"
	SourceUserFile ConfigSource = "user file"
	SourceProjFile ConfigSource = "project file"
	SourceEnv      ConfigSource = "environment"
	SourceFlag     ConfigSource = "flag"
)

// ConfigWithSources holds configuration along with source information for each field.
type ConfigWithSources struct {
	Config  *Config
	Sources map[string]ConfigSource

	// Files lists the config files that were read, lowest priority first.
	Files []string
}

// Default values.
const (
	DefaultLogDir              = "~/.portfolio"
	DefaultDevicesFileName     = "devices_data.json"
	DefaultPollIntervalSeconds = 5
	DefaultAPIListen           = ":8080"
	DefaultAPITimeoutSeconds   = 10
	DefaultMQTTBroker          = "tcp://localhost:1883"
	DefaultMQTTTopic           = "iot/#"
	DefaultMQTTClientID        = "portfolio"
	DefaultAWSIoTPort          = 8883
	DefaultTableName           = "readings"
	DefaultRedisTTLSeconds     = 5
	DefaultS3Region            = "us-east-1"
)

// Config holds the full configuration for portfolio.
type Config struct {
	// Paths. An empty TodoFile keeps the to-do list in memory only.
	TodoFile    string `toml:"todo_file"`
	SchemaFile  string `toml:"schema_file"`
	DevicesFile string `toml:"devices_file"`
	LogDir      string `toml:"log_dir"`

	// Seconds between two rounds of the device poller.
	PollIntervalSeconds int `toml:"poll_interval_seconds"`

	API   APIConfig   `toml:"api"`
	MQTT  MQTTConfig  `toml:"mqtt"`
	S3    S3Config    `toml:"s3"`
	Table TableConfig `toml:"table"`
	Redis RedisConfig `toml:"redis"`

	// Logging configuration
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	LogTimestamps bool   `toml:"log_timestamps"`
	LogCaller     bool   `toml:"log_caller"`

	// Project root (computed)
	ProjectRoot string `toml:"-"`
}

// APIConfig configures both the readings client and the readings server.
type APIConfig struct {
	URL            string `toml:"url"`
	Key            string `toml:"key"`
	Listen         string `toml:"listen"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// MQTTConfig configures the MQTT connection. Certificate paths enable
// mutual TLS the way AWS IoT expects it.
type MQTTConfig struct {
	Broker   string `toml:"broker"`
	ClientID string `toml:"client_id"`
	Topic    string `toml:"topic"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	QoS      int    `toml:"qos"`
	CAFile   string `toml:"ca_file"`
	CertFile string `toml:"cert_file"`
	KeyFile  string `toml:"key_file"`
}

// S3Config configures file uploads.
type S3Config struct {
	Bucket    string `toml:"bucket"`
	Folder    string `toml:"folder"`
	Region    string `toml:"region"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
	Endpoint  string `toml:"endpoint"`
}

// TableConfig configures the readings table. ConnectionString wins over
// ServiceURL when both are set.
type TableConfig struct {
	ServiceURL       string `toml:"service_url"`
	ConnectionString string `toml:"connection_string"`
	Name             string `toml:"name"`
}

// RedisConfig configures the readings cache. An empty Addr disables it.
type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	TTLSeconds int    `toml:"ttl_seconds"`
}

// PollInterval returns the poller interval, falling back to the default for
// non-positive values.
func (c *Config) PollInterval() time.Duration {
	if c.PollIntervalSeconds <= 0 {
		return DefaultPollIntervalSeconds * time.Second
	}
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

// APITimeout returns the HTTP client timeout for readings requests.
func (c *Config) APITimeout() time.Duration {
	if c.API.TimeoutSeconds <= 0 {
		return DefaultAPITimeoutSeconds * time.Second
	}
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

// RedisTTL returns how long cached readings stay valid.
func (c *Config) RedisTTL() time.Duration {
	if c.Redis.TTLSeconds <= 0 {
		return DefaultRedisTTLSeconds * time.Second
	}
	return time.Duration(c.Redis.TTLSeconds) * time.Second
}
