package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// WriteExample writes ExampleConfig to path. It refuses to overwrite an
// existing file unless force is set.
func WriteExample(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file %s already exists", path)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return os.WriteFile(path, []byte(ExampleConfig()), 0644)
}

// SaveAPISettings stores the readings API URL and key in the TOML file at
// path, keeping every other key already in the file.
func SaveAPISettings(path, url, key string) error {
	doc := map[string]any{}
	if _, err := toml.DecodeFile(path, &doc); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("read %s: %w", path, err)
	}

	api, ok := doc["api"].(map[string]any)
	if !ok {
		api = map[string]any{}
	}
	api["url"] = url
	api["key"] = key
	doc["api"] = api

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	// The file holds an API key.
	return os.WriteFile(path, buf.Bytes(), 0600)
}
