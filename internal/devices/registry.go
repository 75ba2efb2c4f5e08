package devices

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

var (
	// ErrEmptyID is returned when a device id is blank.
	ErrEmptyID = errors.New("device id is empty")
	// ErrDuplicate is returned when a device id is already registered.
	ErrDuplicate = errors.New("device already registered")
	// ErrUnknownDevice is returned for operations on an unregistered device.
	ErrUnknownDevice = errors.New("unknown device")
	// ErrUnknownKind is returned for a widget kind outside Kinds.
	ErrUnknownKind = errors.New("unknown widget kind")
	// ErrMissingField is returned when a widget field is blank.
	ErrMissingField = errors.New("missing widget field")
	// ErrNotButton is returned when toggling a widget that is not a button.
	ErrNotButton = errors.New("widget is not a button")
)

// Store persists the whole registry.
type Store interface {
	Load() ([]Device, error)
	Save(devices []Device) error
}

// Registry is the ordered set of devices. Every mutation is written through
// to the store in full; the last writer wins.
type Registry struct {
	mu      sync.Mutex
	order   []string
	devices map[string]*Device
	store   Store
}

// NewRegistry returns an empty registry backed by store. A nil store keeps
// the registry in memory.
func NewRegistry(store Store) *Registry {
	return &Registry{
		devices: make(map[string]*Device),
		store:   store,
	}
}

// Open loads the registry from store. When loading fails the returned
// registry is empty but usable, and the error says why.
func Open(store Store) (*Registry, error) {
	r := NewRegistry(store)
	if store == nil {
		return r, nil
	}
	loaded, err := store.Load()
	if err != nil {
		return r, fmt.Errorf("load devices: %w", err)
	}
	for _, d := range loaded {
		if _, dup := r.devices[d.ID]; dup || d.ID == "" {
			continue
		}
		d = d.clone()
		r.order = append(r.order, d.ID)
		r.devices[d.ID] = &d
	}
	return r, nil
}

// Devices returns a copy of every device in insertion order.
func (r *Registry) Devices() []Device {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshot()
}

// IDs returns the registered device ids in insertion order.
func (r *Registry) IDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.order...)
}

// Device returns a copy of the device with id.
func (r *Registry) Device(id string) (Device, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.devices[id]
	if !ok {
		return Device{}, false
	}
	return d.clone(), true
}

// Len returns the number of devices.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.order)
}

// AddDevice registers a device with no widgets.
func (r *Registry) AddDevice(id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrEmptyID
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.devices[id]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicate, id)
	}
	r.devices[id] = &Device{ID: id, Widgets: []Widget{}}
	r.order = append(r.order, id)
	return r.save()
}

// RemoveDevice unregisters id. Removing an unknown device does nothing.
func (r *Registry) RemoveDevice(id string) error {
	id = strings.TrimSpace(id)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.devices[id]; !ok {
		return nil
	}
	delete(r.devices, id)
	for i, o := range r.order {
		if o == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return r.save()
}

// AddWidget appends a widget to a device. Every field is required.
func (r *Registry) AddWidget(deviceID, kind, key, name string) error {
	key = strings.TrimSpace(key)
	name = strings.TrimSpace(name)
	switch {
	case strings.TrimSpace(kind) == "":
		return fmt.Errorf("%w: type", ErrMissingField)
	case key == "":
		return fmt.Errorf("%w: key", ErrMissingField)
	case name == "":
		return fmt.Errorf("%w: name", ErrMissingField)
	}
	k, err := ParseKind(kind)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	d, err := r.lookup(deviceID)
	if err != nil {
		return err
	}
	w := Widget{Type: k, Key: key, Name: name, Value: NoValue}
	if k == Button {
		w.Value = "off"
	}
	d.Widgets = append(d.Widgets, w)
	return r.save()
}

// RemoveWidget removes the widget at index. An index out of range does
// nothing.
func (r *Registry) RemoveWidget(deviceID string, index int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, err := r.lookup(deviceID)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(d.Widgets) {
		return nil
	}
	d.Widgets = append(d.Widgets[:index], d.Widgets[index+1:]...)
	return r.save()
}

// ApplyReading sets every widget of the device to its field in data, or to
// NoValue when the field is absent. A nil data resets every widget.
func (r *Registry) ApplyReading(deviceID string, data map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, err := r.lookup(deviceID)
	if err != nil {
		return err
	}
	applyReading(d, data)
	return r.save()
}

// ApplyReadings applies one reading per device id and saves once. Ids that
// are no longer registered are skipped.
func (r *Registry) ApplyReadings(readings map[string]map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	applied := 0
	for _, id := range r.order {
		data, ok := readings[id]
		if !ok {
			continue
		}
		applyReading(r.devices[id], data)
		applied++
	}
	if applied == 0 {
		return nil
	}
	return r.save()
}

func applyReading(d *Device, data map[string]any) {
	for i := range d.Widgets {
		v, ok := data[d.Widgets[i].Key]
		if !ok {
			d.Widgets[i].Value = NoValue
			continue
		}
		d.Widgets[i].Value = FormatValue(v)
	}
}

// ToggleButton flips the button widget at index and returns its new state.
func (r *Registry) ToggleButton(deviceID string, index int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, err := r.lookup(deviceID)
	if err != nil {
		return false, err
	}
	if index < 0 || index >= len(d.Widgets) {
		return false, fmt.Errorf("widget %d: index out of range", index)
	}
	w := &d.Widgets[index]
	if w.Type != Button {
		return false, fmt.Errorf("%w: %s", ErrNotButton, w.Name)
	}
	on := !w.ButtonState()
	w.Value = "off"
	if on {
		w.Value = "on"
	}
	return on, r.save()
}

func (r *Registry) lookup(id string) (*Device, error) {
	d, ok := r.devices[strings.TrimSpace(id)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDevice, id)
	}
	return d, nil
}

func (r *Registry) snapshot() []Device {
	out := make([]Device, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.devices[id].clone())
	}
	return out
}

// save must be called with r.mu held.
func (r *Registry) save() error {
	if r.store == nil {
		return nil
	}
	if err := r.store.Save(r.snapshot()); err != nil {
		return fmt.Errorf("save devices: %w", err)
	}
	return nil
}
