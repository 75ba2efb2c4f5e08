package ingest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nibzard/portfolio-go/internal/mqtt"
	"github.com/nibzard/portfolio-go/internal/table"
)

func TestDecodeObject(t *testing.T) {
	b := New(table.NewMemory(), nil)
	r, err := b.Decode("iot/update", []byte(`{"device_id": "esp32", "temp": 21.5, "led": true}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if r.DeviceID != "esp32" || r.Fields["temp"] != 21.5 || r.Fields["led"] != true {
		t.Errorf("reading: got %+v", r)
	}
	if _, ok := r.Fields["device_id"]; ok {
		t.Error("device_id should not be stored as a field")
	}
	if r.Time.IsZero() {
		t.Error("reading should be stamped")
	}
}

func TestDecodeBareValue(t *testing.T) {
	b := New(table.NewMemory(), nil)
	b.DefaultDevice = "dashboard"

	tests := []struct {
		topic, payload string
		device, key    string
		value          any
	}{
		{"iot/esp32/temp", "21.5", "esp32", "temp", 21.5},
		{"iot/esp32/button", "True", "esp32", "button", true},
		{"iot/status", `"ok"`, "dashboard", "status", "ok"},
		{"iot/status", "idle", "dashboard", "status", "idle"},
		{"iot/esp32/temp", "nan", "esp32", "temp", "nan"},
		{"iot/esp32/temp", "NaN", "esp32", "temp", "NaN"},
		{"iot/esp32/temp", "inf", "esp32", "temp", "inf"},
		{"iot/esp32/temp", "-Infinity", "esp32", "temp", "-Infinity"},
		{"iot/esp32/temp", "1e999", "esp32", "temp", "1e999"},
	}
	for _, tt := range tests {
		r, err := b.Decode(tt.topic, []byte(tt.payload))
		if err != nil {
			t.Errorf("Decode(%q, %q): %v", tt.topic, tt.payload, err)
			continue
		}
		if r.DeviceID != tt.device || r.Fields[tt.key] != tt.value {
			t.Errorf("Decode(%q, %q): got %+v", tt.topic, tt.payload, r)
		}
	}
}

func TestDecodeRejects(t *testing.T) {
	b := New(table.NewMemory(), nil)
	if _, err := b.Decode("iot/update", []byte(`{"temp": 1}`)); !errors.Is(err, ErrNoDevice) {
		t.Errorf("object without device: got %v", err)
	}
	if _, err := b.Decode("iot/update", []byte(`{"temp": `)); err == nil {
		t.Error("broken JSON should fail")
	}
	if _, err := b.Decode("iot/temp", []byte("1")); !errors.Is(err, ErrNoDevice) {
		t.Errorf("bare value without default device: got %v", err)
	}
}

func TestStoreWritesTable(t *testing.T) {
	tbl := table.NewMemory()
	b := New(tbl, nil)
	ctx := context.Background()

	if err := b.Store(ctx, "iot/esp32/hum", []byte("40")); err != nil {
		t.Fatalf("Store: %v", err)
	}
	r, err := tbl.Latest(ctx, "esp32")
	if err != nil || r.Fields["hum"] != 40.0 {
		t.Errorf("Latest: got (%+v, %v)", r, err)
	}
}

type fakeSubscriber struct {
	topic   string
	handler mqtt.Handler
	ready   chan struct{}
}

func (f *fakeSubscriber) Subscribe(_ context.Context, topic string, h mqtt.Handler) error {
	f.topic = topic
	f.handler = h
	close(f.ready)
	return nil
}

func TestRun(t *testing.T) {
	tbl := table.NewMemory()
	b := New(tbl, nil)
	sub := &fakeSubscriber{ready: make(chan struct{})}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.Run(ctx, sub, "iot/#") }()

	<-sub.ready
	if sub.topic != "iot/#" {
		t.Errorf("topic: got %q", sub.topic)
	}
	sub.handler("iot/update", []byte(`{"device_id": "d", "v": 1}`))
	sub.handler("iot/update", []byte(`garbage`))

	if _, err := tbl.Latest(context.Background(), "d"); err != nil {
		t.Errorf("message was not stored: %v", err)
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run: got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop")
	}
}
