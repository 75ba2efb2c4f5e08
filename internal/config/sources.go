package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

const (
	appName        = "portfolio"
	configFileName = "portfolio.toml"
)

// findProjectConfigFile looks for a config file in the current directory.
func findProjectConfigFile() string {
	names := []string{configFileName, "." + configFileName}
	for _, name := range names {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// findUserConfigFile looks for a user-level config file.
// Checks ~/.portfolio/portfolio.toml first, then falls back to OS-specific
// config directories if ~/.portfolio doesn't exist.
func findUserConfigFile() string {
	home, err := os.UserHomeDir()
	if err == nil {
		userConfigPath := filepath.Join(home, "."+appName, configFileName)
		if _, err := os.Stat(userConfigPath); err == nil {
			return userConfigPath
		}
	}

	if cfgDir := osUserConfigDir(); cfgDir != "" {
		userConfigPath := filepath.Join(cfgDir, appName, configFileName)
		if _, err := os.Stat(userConfigPath); err == nil {
			return userConfigPath
		}
	}

	return ""
}

// UserConfigPath returns the user config file to write to: the existing one
// if there is one, otherwise ~/.portfolio/portfolio.toml.
func UserConfigPath() (string, error) {
	if existing := findUserConfigFile(); existing != "" {
		return existing, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, "."+appName, configFileName), nil
}

// osUserConfigDir returns the OS-specific user config directory.
// Returns empty string if the directory cannot be determined.
func osUserConfigDir() string {
	switch runtime.GOOS {
	case "windows":
		if appdata := os.Getenv("APPDATA"); appdata != "" {
			return appdata
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, "Library", "Application Support")
		}
	case "linux", "openbsd", "freebsd", "netbsd":
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return xdg
		}
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, ".config")
		}
	}
	return ""
}

// defaultDevicesFile places the device registry in the per-user config
// directory, next to where the dashboard kept it.
func defaultDevicesFile() string {
	if dir := osUserConfigDir(); dir != "" {
		return filepath.Join(dir, appName, DefaultDevicesFileName)
	}
	return filepath.Join(DefaultLogDir, DefaultDevicesFileName)
}

// setDefaults applies default values to the config.
func setDefaults(cfg *Config) {
	cfg.TodoFile = ""
	cfg.DevicesFile = defaultDevicesFile()
	cfg.LogDir = DefaultLogDir
	cfg.PollIntervalSeconds = DefaultPollIntervalSeconds

	cfg.API.Listen = DefaultAPIListen
	cfg.API.TimeoutSeconds = DefaultAPITimeoutSeconds

	cfg.MQTT.Broker = DefaultMQTTBroker
	cfg.MQTT.Topic = DefaultMQTTTopic
	cfg.MQTT.ClientID = DefaultMQTTClientID

	cfg.S3.Region = DefaultS3Region
	cfg.Table.Name = DefaultTableName
	cfg.Redis.TTLSeconds = DefaultRedisTTLSeconds

	// Logging defaults
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
}

// GetConfigFile returns the active config file path (project or user).
func (cws *ConfigWithSources) GetConfigFile() string {
	if len(cws.Files) == 0 {
		return ""
	}
	return cws.Files[len(cws.Files)-1]
}

// Value returns the current value of a tracked field for display. Secrets
// are masked.
func (cws *ConfigWithSources) Value(field string) string {
	c := cws.Config
	switch field {
	case "todo_file":
		return c.TodoFile
	case "schema_file":
		return c.SchemaFile
	case "devices_file":
		return c.DevicesFile
	case "log_dir":
		return c.LogDir
	case "poll_interval_seconds":
		return fmt.Sprint(c.PollIntervalSeconds)
	case "api.url":
		return c.API.URL
	case "api.key":
		return mask(c.API.Key)
	case "api.listen":
		return c.API.Listen
	case "api.timeout_seconds":
		return fmt.Sprint(c.API.TimeoutSeconds)
	case "mqtt.broker":
		return c.MQTT.Broker
	case "mqtt.client_id":
		return c.MQTT.ClientID
	case "mqtt.topic":
		return c.MQTT.Topic
	case "mqtt.username":
		return c.MQTT.Username
	case "mqtt.password":
		return mask(c.MQTT.Password)
	case "mqtt.qos":
		return fmt.Sprint(c.MQTT.QoS)
	case "mqtt.ca_file":
		return c.MQTT.CAFile
	case "mqtt.cert_file":
		return c.MQTT.CertFile
	case "mqtt.key_file":
		return c.MQTT.KeyFile
	case "s3.bucket":
		return c.S3.Bucket
	case "s3.folder":
		return c.S3.Folder
	case "s3.region":
		return c.S3.Region
	case "s3.access_key":
		return mask(c.S3.AccessKey)
	case "s3.secret_key":
		return mask(c.S3.SecretKey)
	case "s3.endpoint":
		return c.S3.Endpoint
	case "table.service_url":
		return c.Table.ServiceURL
	case "table.connection_string":
		return mask(c.Table.ConnectionString)
	case "table.name":
		return c.Table.Name
	case "redis.addr":
		return c.Redis.Addr
	case "redis.password":
		return mask(c.Redis.Password)
	case "redis.db":
		return fmt.Sprint(c.Redis.DB)
	case "redis.ttl_seconds":
		return fmt.Sprint(c.Redis.TTLSeconds)
	case "log_level":
		return c.LogLevel
	case "log_format":
		return c.LogFormat
	case "log_timestamps":
		return fmt.Sprint(c.LogTimestamps)
	case "log_caller":
		return fmt.Sprint(c.LogCaller)
	}
	return ""
}

// Fields returns the tracked field names in display order.
func (cws *ConfigWithSources) Fields() []string {
	return configFields()
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	return "********"
}
