package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/pflag"
)

// Load loads configuration from multiple sources in priority order:
// 1. Defaults
// 2. User config file (~/.portfolio/portfolio.toml or OS-specific config dir)
// 3. Project config file (portfolio.toml or .portfolio.toml in current directory)
// 4. Environment variables
// 5. CLI flags that were explicitly set on fs
//
// fs may be nil, and must already be parsed.
func Load(fs *pflag.FlagSet) (*Config, error) {
	cws, err := LoadWithSources(fs)
	if err != nil {
		return nil, err
	}
	return cws.Config, nil
}

// LoadWithSources loads configuration and tracks the source of each value.
// Returns ConfigWithSources containing the config and a map of field names to their sources.
func LoadWithSources(fs *pflag.FlagSet) (*ConfigWithSources, error) {
	sources := make(map[string]ConfigSource)
	cfg := &Config{}
	var files []string

	// 1. Set defaults (all fields start with default source)
	setDefaults(cfg)
	for _, field := range configFields() {
		sources[field] = SourceDefault
	}

	// 2. Try to load from user config file
	if userConfigFile := findUserConfigFile(); userConfigFile != "" {
		if err := loadConfigFileWithSources(cfg, userConfigFile, sources, SourceUserFile); err != nil {
			return nil, fmt.Errorf("loading user config file %s: %w", userConfigFile, err)
		}
		files = append(files, userConfigFile)
	}

	// 3. Try to load from project config file (overrides user config)
	if projectConfigFile := findProjectConfigFile(); projectConfigFile != "" {
		if err := loadConfigFileWithSources(cfg, projectConfigFile, sources, SourceProjFile); err != nil {
			return nil, fmt.Errorf("loading project config file %s: %w", projectConfigFile, err)
		}
		files = append(files, projectConfigFile)
	}

	// 4. Override from environment
	loadFromEnvWithSources(cfg, sources)

	// 5. Apply CLI flags (they override everything)
	if err := applyFlagsWithSources(cfg, fs, sources); err != nil {
		return nil, fmt.Errorf("applying flags: %w", err)
	}

	// 6. Compute derived values
	if err := finalizeConfig(cfg); err != nil {
		return nil, fmt.Errorf("finalizing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &ConfigWithSources{
		Config:  cfg,
		Sources: sources,
		Files:   files,
	}, nil
}

// configFields returns the list of configurable field names for source tracking.
// Nested fields use the dotted TOML key.
func configFields() []string {
	return []string{
		"todo_file",
		"schema_file",
		"devices_file",
		"log_dir",
		"poll_interval_seconds",
		"api.url",
		"api.key",
		"api.listen",
		"api.timeout_seconds",
		"mqtt.broker",
		"mqtt.client_id",
		"mqtt.topic",
		"mqtt.username",
		"mqtt.password",
		"mqtt.qos",
		"mqtt.ca_file",
		"mqtt.cert_file",
		"mqtt.key_file",
		"s3.bucket",
		"s3.folder",
		"s3.region",
		"s3.access_key",
		"s3.secret_key",
		"s3.endpoint",
		"table.service_url",
		"table.connection_string",
		"table.name",
		"redis.addr",
		"redis.password",
		"redis.db",
		"redis.ttl_seconds",
		"log_level",
		"log_format",
		"log_timestamps",
		"log_caller",
	}
}

// loadConfigFile loads TOML config from the given file.
func loadConfigFile(cfg *Config, path string) (toml.MetaData, error) {
	return toml.DecodeFile(path, cfg)
}

// loadConfigFileWithSources loads TOML config and marks every key the file
// defines as coming from source.
func loadConfigFileWithSources(cfg *Config, path string, sources map[string]ConfigSource, source ConfigSource) error {
	md, err := loadConfigFile(cfg, path)
	if err != nil {
		return err
	}
	for _, field := range configFields() {
		if md.IsDefined(strings.Split(field, ".")...) {
			sources[field] = source
		}
	}
	return nil
}

// finalizeConfig expands the path settings and anchors the relative
// ones at the project root.
func finalizeConfig(cfg *Config) error {
	if cfg.ProjectRoot == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting working directory: %w", err)
		}
		cfg.ProjectRoot = wd
	}

	cfg.LogDir = expandPath(cfg.LogDir)
	for _, p := range filePaths(cfg) {
		*p = expandPath(*p)
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(cfg.ProjectRoot, *p)
		}
	}
	return nil
}

// filePaths returns the settings that name files read or written by
// commands.
func filePaths(cfg *Config) []*string {
	return []*string{
		&cfg.DevicesFile,
		&cfg.TodoFile,
		&cfg.SchemaFile,
		&cfg.MQTT.CAFile,
		&cfg.MQTT.CertFile,
		&cfg.MQTT.KeyFile,
	}
}

// expandPath replaces $VAR references and a leading ~ with the home
// directory.
func expandPath(p string) string {
	p = os.ExpandEnv(p)
	if p != "~" && !strings.HasPrefix(p, "~"+string(filepath.Separator)) {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, p[1:])
}

// Validate checks values that cannot be repaired by falling back to a default.
func (c *Config) Validate() error {
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json", "logfmt":
	default:
		return fmt.Errorf("invalid log_format %q: must be text, json or logfmt", c.LogFormat)
	}
	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "warning", "error", "fatal":
	default:
		return fmt.Errorf("invalid log_level %q: must be debug, info, warn or error", c.LogLevel)
	}
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		return fmt.Errorf("invalid mqtt.qos %d: must be 0, 1 or 2", c.MQTT.QoS)
	}
	if (c.MQTT.CertFile == "") != (c.MQTT.KeyFile == "") {
		return fmt.Errorf("mqtt.cert_file and mqtt.key_file must be set together")
	}
	return nil
}
