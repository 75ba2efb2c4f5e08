package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// loadFromEnv overrides config from environment variables.
func loadFromEnv(cfg *Config) {
	loadFromEnvHelper(cfg, nil)
}

// loadFromEnvWithSources loads environment variables and updates source tracking.
func loadFromEnvWithSources(cfg *Config, sources map[string]ConfigSource) {
	loadFromEnvHelper(cfg, sources)
}

// envBinding maps environment variables to one field. The first variable
// that is set wins, so PORTFOLIO_* names go before the dashboard names.
type envBinding struct {
	field string
	vars  []string
	apply func(cfg *Config, v string) bool
}

func envString(set func(*Config, string)) func(*Config, string) bool {
	return func(cfg *Config, v string) bool {
		set(cfg, v)
		return true
	}
}

func envInt(set func(*Config, int)) func(*Config, string) bool {
	return func(cfg *Config, v string) bool {
		i, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return false
		}
		set(cfg, i)
		return true
	}
}

func envBool(set func(*Config, bool)) func(*Config, string) bool {
	return func(cfg *Config, v string) bool {
		set(cfg, boolFromString(v))
		return true
	}
}

func envBindings() []envBinding {
	return []envBinding{
		{"todo_file", []string{"PORTFOLIO_TODO"}, envString(func(c *Config, v string) { c.TodoFile = v })},
		{"schema_file", []string{"PORTFOLIO_SCHEMA"}, envString(func(c *Config, v string) { c.SchemaFile = v })},
		{"devices_file", []string{"PORTFOLIO_DEVICES"}, envString(func(c *Config, v string) { c.DevicesFile = v })},
		{"log_dir", []string{"PORTFOLIO_LOG_DIR"}, envString(func(c *Config, v string) { c.LogDir = v })},
		{"poll_interval_seconds", []string{"PORTFOLIO_POLL_INTERVAL"}, envInt(func(c *Config, v int) { c.PollIntervalSeconds = v })},

		{"api.url", []string{"PORTFOLIO_API_URL", "API_URL"}, envString(func(c *Config, v string) { c.API.URL = v })},
		{"api.key", []string{"PORTFOLIO_API_KEY", "API_KEY"}, envString(func(c *Config, v string) { c.API.Key = v })},
		{"api.listen", []string{"PORTFOLIO_API_LISTEN"}, envString(func(c *Config, v string) { c.API.Listen = v })},
		{"api.timeout_seconds", []string{"PORTFOLIO_API_TIMEOUT"}, envInt(func(c *Config, v int) { c.API.TimeoutSeconds = v })},

		{"mqtt.broker", []string{"PORTFOLIO_MQTT_BROKER"}, envString(func(c *Config, v string) { c.MQTT.Broker = v })},
		{"mqtt.broker", []string{"AWS_IOT_ENDPOINT"}, envString(func(c *Config, v string) { c.MQTT.Broker = awsIoTBroker(v) })},
		{"mqtt.client_id", []string{"PORTFOLIO_MQTT_CLIENT_ID"}, envString(func(c *Config, v string) { c.MQTT.ClientID = v })},
		{"mqtt.topic", []string{"PORTFOLIO_MQTT_TOPIC"}, envString(func(c *Config, v string) { c.MQTT.Topic = v })},
		{"mqtt.username", []string{"PORTFOLIO_MQTT_USERNAME", "MQTT_USERNAME"}, envString(func(c *Config, v string) { c.MQTT.Username = v })},
		{"mqtt.password", []string{"PORTFOLIO_MQTT_PASSWORD", "MQTT_PASSWORD"}, envString(func(c *Config, v string) { c.MQTT.Password = v })},
		{"mqtt.qos", []string{"PORTFOLIO_MQTT_QOS"}, envInt(func(c *Config, v int) { c.MQTT.QoS = v })},
		{"mqtt.ca_file", []string{"PORTFOLIO_MQTT_CA_FILE"}, envString(func(c *Config, v string) { c.MQTT.CAFile = v })},
		{"mqtt.cert_file", []string{"PORTFOLIO_MQTT_CERT_FILE"}, envString(func(c *Config, v string) { c.MQTT.CertFile = v })},
		{"mqtt.key_file", []string{"PORTFOLIO_MQTT_KEY_FILE"}, envString(func(c *Config, v string) { c.MQTT.KeyFile = v })},

		{"s3.bucket", []string{"PORTFOLIO_S3_BUCKET"}, envString(func(c *Config, v string) { c.S3.Bucket = v })},
		{"s3.folder", []string{"PORTFOLIO_S3_FOLDER"}, envString(func(c *Config, v string) { c.S3.Folder = v })},
		{"s3.region", []string{"PORTFOLIO_S3_REGION", "AWS_REGION"}, envString(func(c *Config, v string) { c.S3.Region = v })},
		{"s3.access_key", []string{"PORTFOLIO_S3_ACCESS_KEY", "AWS_ACCESS_KEY"}, envString(func(c *Config, v string) { c.S3.AccessKey = v })},
		{"s3.secret_key", []string{"PORTFOLIO_S3_SECRET_KEY", "AWS_SECRET_KEY"}, envString(func(c *Config, v string) { c.S3.SecretKey = v })},
		{"s3.endpoint", []string{"PORTFOLIO_S3_ENDPOINT"}, envString(func(c *Config, v string) { c.S3.Endpoint = v })},

		{"table.service_url", []string{"PORTFOLIO_TABLE_URL"}, envString(func(c *Config, v string) { c.Table.ServiceURL = v })},
		{"table.connection_string", []string{"PORTFOLIO_TABLE_CONNECTION_STRING", "AZURE_TABLES_CONNECTION_STRING"}, envString(func(c *Config, v string) { c.Table.ConnectionString = v })},
		{"table.name", []string{"PORTFOLIO_TABLE", "DYNAMODB_TABLE"}, envString(func(c *Config, v string) { c.Table.Name = v })},

		{"redis.addr", []string{"PORTFOLIO_REDIS_ADDR"}, envString(func(c *Config, v string) { c.Redis.Addr = v })},
		{"redis.password", []string{"PORTFOLIO_REDIS_PASSWORD"}, envString(func(c *Config, v string) { c.Redis.Password = v })},
		{"redis.db", []string{"PORTFOLIO_REDIS_DB"}, envInt(func(c *Config, v int) { c.Redis.DB = v })},
		{"redis.ttl_seconds", []string{"PORTFOLIO_REDIS_TTL"}, envInt(func(c *Config, v int) { c.Redis.TTLSeconds = v })},

		{"log_level", []string{"PORTFOLIO_LOG_LEVEL"}, envString(func(c *Config, v string) { c.LogLevel = v })},
		{"log_format", []string{"PORTFOLIO_LOG_FORMAT"}, envString(func(c *Config, v string) { c.LogFormat = v })},
		{"log_timestamps", []string{"PORTFOLIO_LOG_TIMESTAMPS"}, envBool(func(c *Config, v bool) { c.LogTimestamps = v })},
		{"log_caller", []string{"PORTFOLIO_LOG_CALLER"}, envBool(func(c *Config, v bool) { c.LogCaller = v })},
	}
}

// loadFromEnvHelper is the shared implementation for env loading.
// If sources is non-nil, it tracks the source of each value.
func loadFromEnvHelper(cfg *Config, sources map[string]ConfigSource) {
	applied := make(map[string]bool)
	for _, b := range envBindings() {
		if applied[b.field] {
			continue
		}
		for _, name := range b.vars {
			v := os.Getenv(name)
			if v == "" {
				continue
			}
			if b.apply(cfg, v) {
				applied[b.field] = true
				if sources != nil {
					sources[b.field] = SourceEnv
				}
			}
			break
		}
	}
}

// awsIoTBroker turns a bare AWS IoT endpoint host into a TLS broker URL.
// Values that already carry a scheme are used as is.
func awsIoTBroker(endpoint string) string {
	endpoint = strings.TrimSpace(endpoint)
	if strings.Contains(endpoint, "://") {
		return endpoint
	}
	if strings.Contains(endpoint, ":") {
		return "ssl://" + endpoint
	}
	return fmt.Sprintf("ssl://%s:%d", endpoint, DefaultAWSIoTPort)
}

// boolFromString parses a boolean from a string.
func boolFromString(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "1" || s == "true" || s == "yes" || s == "on"
}
