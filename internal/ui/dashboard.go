package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/nibzard/portfolio-go/internal/devices"
)

const gaugeWidth = 20

// RenderDevices draws the dashboard: one block per device with a line per
// widget.
func RenderDevices(devs []devices.Device, s Styles) string {
	if len(devs) == 0 {
		return s.Muted.Render("No devices registered.")
	}
	blocks := make([]string, 0, len(devs))
	for _, d := range devs {
		lines := []string{s.Title.UnsetMarginBottom().Render("Device: " + d.ID)}
		if len(d.Widgets) == 0 {
			lines = append(lines, s.Muted.Render("  no widgets"))
		}
		for i, w := range d.Widgets {
			lines = append(lines, fmt.Sprintf("  %d %s", i, renderWidget(w, s)))
		}
		blocks = append(blocks, lipgloss.JoinVertical(lipgloss.Left, lines...))
	}
	return strings.Join(blocks, "\n\n")
}

func renderWidget(w devices.Widget, s Styles) string {
	label := s.Text.Render(w.Name + ":")
	switch w.Type {
	case devices.Bar:
		return label + " " + bar(w.Value, s) + " " + w.Value
	case devices.Progress:
		if f, ok := fraction(w.Value); ok {
			p := progress.New(progress.WithWidth(gaugeWidth), progress.WithoutPercentage(), progress.WithDefaultGradient())
			return label + " " + p.ViewAs(f) + " " + w.Value
		}
		return label + " " + s.Muted.Render(strings.Repeat("·", gaugeWidth)) + " " + w.Value
	case devices.Button:
		state := "off"
		if w.ButtonState() {
			state = "on"
		}
		return label + " " + s.Button.Render("["+state+"]")
	}
	return label + " " + w.Value
}

// bar draws a horizontal gauge for a value between 0 and 100.
func bar(value string, s Styles) string {
	f, ok := fraction(value)
	if !ok {
		return s.Muted.Render(strings.Repeat("·", gaugeWidth))
	}
	filled := int(f*gaugeWidth + 0.5)
	return s.Button.Render(strings.Repeat("█", filled)) + s.Muted.Render(strings.Repeat("░", gaugeWidth-filled))
}

// fraction reads value as a percentage and clamps it to [0, 1].
func fraction(value string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(value), "%"), 64)
	if err != nil {
		return 0, false
	}
	f := v / 100
	if f < 0 {
		f = 0
	}
	if f > 1 {
		f = 1
	}
	return f, true
}
