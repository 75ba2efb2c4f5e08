package config

import (
	"github.com/spf13/pflag"
)

// flagBinding ties a CLI flag to the config field it overrides.
type flagBinding struct {
	name  string
	field string
	apply func(cfg *Config, fs *pflag.FlagSet) error
}

func flagString(set func(*Config, string)) func(*Config, *pflag.FlagSet, string) error {
	return func(cfg *Config, fs *pflag.FlagSet, name string) error {
		v, err := fs.GetString(name)
		if err != nil {
			return err
		}
		set(cfg, v)
		return nil
	}
}

func flagInt(set func(*Config, int)) func(*Config, *pflag.FlagSet, string) error {
	return func(cfg *Config, fs *pflag.FlagSet, name string) error {
		v, err := fs.GetInt(name)
		if err != nil {
			return err
		}
		set(cfg, v)
		return nil
	}
}

func flagBool(set func(*Config, bool)) func(*Config, *pflag.FlagSet, string) error {
	return func(cfg *Config, fs *pflag.FlagSet, name string) error {
		v, err := fs.GetBool(name)
		if err != nil {
			return err
		}
		set(cfg, v)
		return nil
	}
}

func bind(name, field string, fn func(*Config, *pflag.FlagSet, string) error) flagBinding {
	return flagBinding{
		name:  name,
		field: field,
		apply: func(cfg *Config, fs *pflag.FlagSet) error { return fn(cfg, fs, name) },
	}
}

func flagBindings() []flagBinding {
	return []flagBinding{
		bind("todo", "todo_file", flagString(func(c *Config, v string) { c.TodoFile = v })),
		bind("schema", "schema_file", flagString(func(c *Config, v string) { c.SchemaFile = v })),
		bind("devices", "devices_file", flagString(func(c *Config, v string) { c.DevicesFile = v })),
		bind("log-dir", "log_dir", flagString(func(c *Config, v string) { c.LogDir = v })),
		bind("poll-interval", "poll_interval_seconds", flagInt(func(c *Config, v int) { c.PollIntervalSeconds = v })),
		bind("api-url", "api.url", flagString(func(c *Config, v string) { c.API.URL = v })),
		bind("api-key", "api.key", flagString(func(c *Config, v string) { c.API.Key = v })),
		bind("listen", "api.listen", flagString(func(c *Config, v string) { c.API.Listen = v })),
		bind("broker", "mqtt.broker", flagString(func(c *Config, v string) { c.MQTT.Broker = v })),
		bind("topic", "mqtt.topic", flagString(func(c *Config, v string) { c.MQTT.Topic = v })),
		bind("qos", "mqtt.qos", flagInt(func(c *Config, v int) { c.MQTT.QoS = v })),
		bind("bucket", "s3.bucket", flagString(func(c *Config, v string) { c.S3.Bucket = v })),
		bind("folder", "s3.folder", flagString(func(c *Config, v string) { c.S3.Folder = v })),
		bind("table", "table.name", flagString(func(c *Config, v string) { c.Table.Name = v })),
		bind("redis-addr", "redis.addr", flagString(func(c *Config, v string) { c.Redis.Addr = v })),
		bind("log-level", "log_level", flagString(func(c *Config, v string) { c.LogLevel = v })),
		bind("log-format", "log_format", flagString(func(c *Config, v string) { c.LogFormat = v })),
		bind("log-timestamps", "log_timestamps", flagBool(func(c *Config, v bool) { c.LogTimestamps = v })),
		bind("log-caller", "log_caller", flagBool(func(c *Config, v bool) { c.LogCaller = v })),
	}
}

// RegisterFlags defines the global flags on fs. Flags only override the
// config when they are set explicitly, so their defaults here are zero values
// and the usage text names the real default.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("todo", "", "Path to the to-do snapshot file (empty keeps the list in memory)")
	fs.String("schema", "", "Path to a JSON schema for the to-do snapshot (default: embedded)")
	fs.String("devices", "", "Path to the device registry file")
	fs.String("log-dir", "", "Log directory (default "+DefaultLogDir+")")
	fs.Int("poll-interval", 0, "Seconds between device polls (default 5)")
	fs.String("api-url", "", "Readings API URL")
	fs.String("api-key", "", "Readings API key sent as x-api-key")
	fs.String("listen", "", "Listen address for the readings API (default "+DefaultAPIListen+")")
	fs.String("broker", "", "MQTT broker URL (default "+DefaultMQTTBroker+")")
	fs.String("topic", "", "MQTT topic (default "+DefaultMQTTTopic+")")
	fs.Int("qos", 0, "MQTT quality of service (0, 1 or 2)")
	fs.String("bucket", "", "S3 bucket for uploads")
	fs.String("folder", "", "S3 folder (key prefix) for uploads")
	fs.String("table", "", "Readings table name (default "+DefaultTableName+")")
	fs.String("redis-addr", "", "Redis address for the readings cache (empty disables it)")
	fs.String("log-level", "", "Log level (debug, info, warn, error)")
	fs.String("log-format", "", "Log format (text, json, logfmt)")
	fs.Bool("log-timestamps", false, "Show timestamps in logs")
	fs.Bool("log-caller", false, "Show caller location in logs")
}

// applyFlags overrides cfg with every explicitly set flag.
func applyFlags(cfg *Config, fs *pflag.FlagSet) error {
	return applyFlagsWithSources(cfg, fs, nil)
}

// applyFlagsWithSources overrides cfg with every explicitly set flag and
// updates source tracking. Flags that were not registered on fs are skipped.
func applyFlagsWithSources(cfg *Config, fs *pflag.FlagSet, sources map[string]ConfigSource) error {
	if fs == nil {
		return nil
	}
	for _, b := range flagBindings() {
		if fs.Lookup(b.name) == nil || !fs.Changed(b.name) {
			continue
		}
		if err := b.apply(cfg, fs); err != nil {
			return err
		}
		if sources != nil {
			sources[b.field] = SourceFlag
		}
	}
	return nil
}
