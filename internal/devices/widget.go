// Package devices holds the registry of dashboard devices and the widgets
// that display their readings.
package devices

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// NoValue is shown by a widget that has no reading.
const NoValue = "--"

// Kind is the presentation of a widget.
type Kind string

const (
	Bar      Kind = "bar"
	Progress Kind = "progress"
	Text     Kind = "text"
	Button   Kind = "button"
)

// Kinds lists the widget kinds in menu order.
func Kinds() []Kind {
	return []Kind{Bar, Progress, Text, Button}
}

// kindAliases maps the names older dashboard files used.
var kindAliases = map[string]Kind{
	"barras":   Bar,
	"progreso": Progress,
	"texto":    Text,
	"boton":    Button,
}

// ParseKind returns the kind named s. Matching ignores case and surrounding
// space.
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, k := range Kinds() {
		if string(k) == name {
			return k, nil
		}
	}
	if k, ok := kindAliases[name]; ok {
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Widget shows one field of a device reading.
type Widget struct {
	Type    Kind   `json:"type"`
	Key     string `json:"key"`
	Name    string `json:"name"`
	Value   string `json:"value"`
	Editing bool   `json:"editing"`
}

// ButtonState reports whether a button widget is switched on.
func (w Widget) ButtonState() bool {
	return w.Value == "on"
}

// Device is a registered device and its widgets.
type Device struct {
	ID      string   `json:"-"`
	Widgets []Widget `json:"widgets"`
}

func (d Device) clone() Device {
	d.Widgets = append([]Widget(nil), d.Widgets...)
	if d.Widgets == nil {
		d.Widgets = []Widget{}
	}
	return d
}

// FormatValue renders a decoded JSON value for display. A nil value is
// NoValue.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return NoValue
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}
