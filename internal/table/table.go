// Package table stores device readings in a key-value table: one partition
// per device, a "latest" row plus one row per reading.
package table

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// LatestRowKey is the row holding the newest reading of a device.
const LatestRowKey = "latest"

// ErrNotFound is returned when a device has no reading.
var ErrNotFound = errors.New("reading not found")

// Reading is one set of values reported by a device.
type Reading struct {
	DeviceID string
	Time     time.Time
	Fields   map[string]any
}

// Table is implemented by Store and Memory.
type Table interface {
	Latest(ctx context.Context, deviceID string) (Reading, error)
	Put(ctx context.Context, r Reading) error
	History(ctx context.Context, deviceID string) ([]Reading, error)
}

// historyRowKey orders rows by time within a partition.
func historyRowKey(t time.Time) string {
	return t.UTC().Format("20060102T150405.000000000Z")
}

// Memory is an in-process Table.
type Memory struct {
	mu      sync.RWMutex
	latest  map[string]Reading
	history map[string][]Reading
}

// NewMemory returns an empty in-process table.
func NewMemory() *Memory {
	return &Memory{
		latest:  make(map[string]Reading),
		history: make(map[string][]Reading),
	}
}

func (m *Memory) Latest(_ context.Context, deviceID string) (Reading, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.latest[deviceID]
	if !ok {
		return Reading{}, ErrNotFound
	}
	return cloneReading(r), nil
}

// Put merges r into the latest row and appends it to the history.
func (m *Memory) Put(_ context.Context, r Reading) error {
	if r.DeviceID == "" {
		return errEmptyDevice
	}
	if r.Time.IsZero() {
		r.Time = time.Now()
	}
	r = cloneReading(r)

	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.latest[r.DeviceID]
	if !ok {
		cur = Reading{DeviceID: r.DeviceID, Fields: map[string]any{}}
	}
	for k, v := range r.Fields {
		cur.Fields[k] = v
	}
	cur.Time = r.Time
	m.latest[r.DeviceID] = cur
	m.history[r.DeviceID] = append(m.history[r.DeviceID], r)
	return nil
}

func (m *Memory) History(_ context.Context, deviceID string) ([]Reading, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Reading, 0, len(m.history[deviceID]))
	for _, r := range m.history[deviceID] {
		out = append(out, cloneReading(r))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })
	return out, nil
}

func cloneReading(r Reading) Reading {
	fields := make(map[string]any, len(r.Fields))
	for k, v := range r.Fields {
		fields[k] = v
	}
	r.Fields = fields
	return r
}

var errEmptyDevice = errors.New("reading has no device id")
