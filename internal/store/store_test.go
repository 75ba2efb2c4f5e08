package store

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nibzard/portfolio-go/internal/devices"
)

func TestLoadMissingFile(t *testing.T) {
	f := New(filepath.Join(t.TempDir(), "devices_data.json"), nil)
	got, err := f.Load()
	if err != nil || len(got) != 0 {
		t.Errorf("Load: got (%v, %v), want empty", got, err)
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "devices_data.json")
	f := New(path, nil)

	in := []devices.Device{
		{ID: "zeta", Widgets: []devices.Widget{{Type: devices.Bar, Key: "temp", Name: "Temperature", Value: "21"}}},
		{ID: "alpha"},
	}
	if err := f.Save(in); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "\n    \"zeta\": {\n        \"widgets\": [") {
		t.Errorf("expected 4-space indentation:\n%s", data)
	}
	if !strings.Contains(string(data), `"alpha": {`+"\n"+`        "widgets": []`) {
		t.Errorf("a device without widgets should save an empty list:\n%s", data)
	}
	if err := Validate(data); err != nil {
		t.Errorf("saved file should validate: %v", err)
	}

	out, err := f.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(out) != 2 || out[0].ID != "zeta" || out[1].ID != "alpha" {
		t.Fatalf("order: got %+v", out)
	}
	w := out[0].Widgets[0]
	if w.Type != devices.Bar || w.Key != "temp" || w.Name != "Temperature" || w.Value != "21" {
		t.Errorf("widget: got %+v", w)
	}
}

func TestDecodeRepairs(t *testing.T) {
	tests := []struct {
		name string
		in   string
		ids  []string
	}{
		{"empty file", ``, nil},
		{"array root", `[1, 2, 3]`, nil},
		{"string root", `"hello"`, nil},
		{"legacy class list", `{"dev": ["BarWidget"]}`, []string{"dev"}},
		{"no widgets key", `{"dev": {}}`, []string{"dev"}},
		{"widgets null", `{"dev": {"widgets": null}}`, []string{"dev"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode([]byte(tt.in))
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if len(got) != len(tt.ids) {
				t.Fatalf("devices: got %d, want %d", len(got), len(tt.ids))
			}
			for i, d := range got {
				if d.ID != tt.ids[i] {
					t.Errorf("id %d: got %q", i, d.ID)
				}
				if d.Widgets == nil || len(d.Widgets) != 0 {
					t.Errorf("widgets: got %#v, want empty list", d.Widgets)
				}
			}
		})
	}
}

func TestDecodeWidgetFields(t *testing.T) {
	in := `{"dev": {"widgets": [
		{"type": "barras", "key": "t", "name": "T", "value": 12.5, "editing": true},
		{"type": "gauge", "key": "g", "name": "G"}
	]}}`
	got, err := Decode([]byte(in))
	if err != nil {
		t.Fatal(err)
	}
	ws := got[0].Widgets
	if ws[0].Type != devices.Bar || ws[0].Value != "12.5" || !ws[0].Editing {
		t.Errorf("first widget: got %+v", ws[0])
	}
	if ws[1].Type != "gauge" || ws[1].Value != devices.NoValue {
		t.Errorf("second widget: got %+v", ws[1])
	}
}

func TestDecodeSyntaxError(t *testing.T) {
	if _, err := Decode([]byte(`{"dev": {"widgets": [}`)); err == nil {
		t.Error("malformed JSON should fail")
	}
}

func TestValidate(t *testing.T) {
	err := Validate([]byte(`{"dev": {"widgets": [{"type": "gauge", "key": "", "name": "N"}]}}`))
	if err == nil {
		t.Fatal("expected schema errors")
	}
	var fe *FieldError
	if !errors.As(err, &fe) {
		t.Fatalf("want *FieldError, got %T", err)
	}
	if !strings.Contains(err.Error(), "dev.widgets[0]") {
		t.Errorf("error should name the widget path: %v", err)
	}

	if err := Validate([]byte(`{"dev": {"widgets": []}}`)); err != nil {
		t.Errorf("valid document: %v", err)
	}
}

func TestRegistryRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "devices_data.json")
	r, err := devices.Open(New(path, nil))
	if err != nil {
		t.Fatal(err)
	}
	r.AddDevice("esp32")
	r.AddWidget("esp32", "progress", "hum", "Humidity")
	r.ApplyReading("esp32", map[string]any{"hum": 40.0})

	again, err := devices.Open(New(path, nil))
	if err != nil {
		t.Fatal(err)
	}
	d, ok := again.Device("esp32")
	if !ok || len(d.Widgets) != 1 || d.Widgets[0].Value != "40" {
		t.Errorf("reloaded device: got %+v", d)
	}
}
