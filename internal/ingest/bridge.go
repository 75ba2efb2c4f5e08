// Package ingest stores readings received over MQTT in the readings table.
package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nibzard/portfolio-go/internal/logging"
	"github.com/nibzard/portfolio-go/internal/mqtt"
	"github.com/nibzard/portfolio-go/internal/table"
)

// ErrNoDevice is returned for a message that names no device.
var ErrNoDevice = errors.New("message names no device")

// Subscriber is the part of mqtt.Manager the bridge uses.
type Subscriber interface {
	Subscribe(ctx context.Context, topic string, h mqtt.Handler) error
}

// Bridge decodes messages and writes them to a table.
type Bridge struct {
	table  table.Table
	logger *log.Logger

	// DefaultDevice receives bare values published on two-segment topics
	// such as "iot/temp".
	DefaultDevice string

	// Timeout bounds each table write.
	Timeout time.Duration

	now func() time.Time
}

// New returns a bridge writing to t.
func New(t table.Table, logger *log.Logger) *Bridge {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Bridge{table: t, logger: logger, Timeout: 10 * time.Second, now: time.Now}
}

// Run subscribes to topic and stores every message until ctx is done.
func (b *Bridge) Run(ctx context.Context, sub Subscriber, topic string) error {
	err := sub.Subscribe(ctx, topic, func(topic string, payload []byte) {
		if err := b.Store(ctx, topic, payload); err != nil {
			b.logger.Warn("dropped message", "topic", topic, "err", err)
		}
	})
	if err != nil {
		return err
	}
	b.logger.Info("bridging messages", "topic", topic)
	<-ctx.Done()
	return ctx.Err()
}

// Store decodes one message and writes it.
func (b *Bridge) Store(ctx context.Context, topic string, payload []byte) error {
	r, err := b.Decode(topic, payload)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, b.Timeout)
	defer cancel()
	if err := b.table.Put(ctx, r); err != nil {
		return fmt.Errorf("store reading for %s: %w", r.DeviceID, err)
	}
	b.logger.Debug("stored reading", "device", r.DeviceID, "fields", len(r.Fields))
	return nil
}

// Decode turns a message into a reading.
//
// A JSON object payload carries its device in "device_id" and every other
// member is a field. Any other payload is a single value: the last topic
// segment names the field and the one before it the device, so
// "iot/esp32/temp" with payload "21.5" stores temp=21.5 for esp32.
func (b *Bridge) Decode(topic string, payload []byte) (table.Reading, error) {
	payload = bytes.TrimSpace(payload)
	r := table.Reading{Time: b.now()}

	if len(payload) > 0 && payload[0] == '{' {
		var obj map[string]any
		if err := json.Unmarshal(payload, &obj); err != nil {
			return r, fmt.Errorf("decode payload: %w", err)
		}
		id, _ := obj["device_id"].(string)
		r.DeviceID = strings.TrimSpace(id)
		if r.DeviceID == "" {
			return r, ErrNoDevice
		}
		delete(obj, "device_id")
		r.Fields = obj
		return r, nil
	}

	parts := strings.Split(strings.Trim(topic, "/"), "/")
	key := parts[len(parts)-1]
	switch {
	case len(parts) >= 3:
		r.DeviceID = parts[len(parts)-2]
	default:
		r.DeviceID = b.DefaultDevice
	}
	if r.DeviceID == "" || key == "" {
		return r, ErrNoDevice
	}
	r.Fields = map[string]any{key: scalar(payload)}
	return r, nil
}

// scalar decodes a bare value: a number, a boolean or text. Sensors report
// failed reads as "nan"; non-finite numbers are kept as text since they have
// no JSON form.
func scalar(payload []byte) any {
	s := string(payload)
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return f
	}
	if v, err := strconv.ParseBool(s); err == nil {
		return v
	}
	var str string
	if json.Unmarshal(payload, &str) == nil {
		return str
	}
	return s
}
