// Package store reads and writes the device registry file.
//
// The file is a single JSON object keyed by device id:
//
//	{
//	    "esp32-1": {
//	        "widgets": [
//	            {"type": "bar", "key": "temp", "name": "Temperature", "value": "--", "editing": false}
//	        ]
//	    }
//	}
//
// It is rewritten in full on every save and carries no version.
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/nibzard/portfolio-go/internal/devices"
)

// JSONFile is a devices.Store backed by a JSON file.
type JSONFile struct {
	Path string

	// Logger receives schema warnings found while loading. Nil discards
	// them.
	Logger *log.Logger
}

// New returns a store for the file at path.
func New(path string, logger *log.Logger) *JSONFile {
	return &JSONFile{Path: path, Logger: logger}
}

// Load reads the registry. A missing file is an empty registry.
func (f *JSONFile) Load() ([]devices.Device, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read devices file: %w", err)
	}

	if f.Logger != nil {
		if err := Validate(data); err != nil {
			f.Logger.Warn("devices file does not match schema", "path", f.Path, "err", err)
		}
	}
	return Decode(data)
}

// Save writes the registry with 4-space indentation.
func (f *JSONFile) Save(list []devices.Device) error {
	data, err := Encode(list)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(f.Path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create devices dir: %w", err)
		}
	}
	if err := os.WriteFile(f.Path, data, 0644); err != nil {
		return fmt.Errorf("write devices file: %w", err)
	}
	return nil
}

// Decode parses a registry document, keeping the order of its keys. A root
// that is not an object decodes to no devices, and an entry without a
// widgets list gets an empty one.
func Decode(data []byte) ([]devices.Device, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("parse devices file: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, nil
	}

	var out []devices.Device
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("parse devices file: %w", err)
		}
		id, _ := tok.(string)
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("parse devices file: device %q: %w", id, err)
		}
		out = append(out, devices.Device{ID: id, Widgets: decodeWidgets(raw)})
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("parse devices file: %w", err)
	}
	return out, nil
}

func decodeWidgets(raw json.RawMessage) []devices.Widget {
	var entry struct {
		Widgets []map[string]any `json:"widgets"`
	}
	if err := json.Unmarshal(raw, &entry); err != nil {
		return []devices.Widget{}
	}
	widgets := make([]devices.Widget, 0, len(entry.Widgets))
	for _, m := range entry.Widgets {
		if m == nil {
			continue
		}
		w := devices.Widget{
			Key:   stringField(m, "key"),
			Name:  stringField(m, "name"),
			Value: devices.NoValue,
		}
		typ := stringField(m, "type")
		if k, err := devices.ParseKind(typ); err == nil {
			w.Type = k
		} else {
			w.Type = devices.Kind(typ)
		}
		if v, ok := m["value"]; ok {
			w.Value = devices.FormatValue(v)
		}
		w.Editing, _ = m["editing"].(bool)
		widgets = append(widgets, w)
	}
	return widgets
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

// Encode renders the registry document.
func Encode(list []devices.Device) ([]byte, error) {
	data, err := json.MarshalIndent(document(list), "", "    ")
	if err != nil {
		return nil, fmt.Errorf("marshal devices file: %w", err)
	}
	return data, nil
}

// document marshals as an object whose keys follow the slice order.
type document []devices.Device

func (d document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, dev := range d {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(dev.ID)
		if err != nil {
			return nil, err
		}
		if dev.Widgets == nil {
			dev.Widgets = []devices.Widget{}
		}
		val, err := json.Marshal(dev)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
