package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nibzard/portfolio-go/internal/view"
)

// Styles holds the lipgloss styles used to draw the widget tree.
type Styles struct {
	Title    lipgloss.Style
	Text     lipgloss.Style
	Muted    lipgloss.Style
	Input    lipgloss.Style
	Button   lipgloss.Style
	Focused  lipgloss.Style
	Tab      lipgloss.Style
	Selected lipgloss.Style
	Done     lipgloss.Style
	Help     lipgloss.Style
}

// DefaultStyles returns the application palette.
func DefaultStyles() Styles {
	accent := lipgloss.AdaptiveColor{Light: "#5A3FC0", Dark: "#B19CFF"}
	muted := lipgloss.AdaptiveColor{Light: "#8A8A8A", Dark: "#6C6C6C"}
	return Styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(accent).MarginBottom(1),
		Text:     lipgloss.NewStyle(),
		Muted:    lipgloss.NewStyle().Foreground(muted),
		Input:    lipgloss.NewStyle().Underline(true),
		Button:   lipgloss.NewStyle().Foreground(accent),
		Focused:  lipgloss.NewStyle().Bold(true).Reverse(true),
		Tab:      lipgloss.NewStyle().Padding(0, 1),
		Selected: lipgloss.NewStyle().Padding(0, 1).Bold(true).Underline(true).Foreground(accent),
		Done:     lipgloss.NewStyle().Strikethrough(true).Foreground(muted),
		Help:     lipgloss.NewStyle().Foreground(muted).MarginTop(1),
	}
}

// focusMarker prefixes the focused node so focus is visible without color.
const focusMarker = "> "

// Renderer turns a widget tree into terminal text.
type Renderer struct {
	Styles  Styles
	Focused string

	// InputView, when set, may replace the drawing of an input, typically
	// with a live text field for the focused one.
	InputView func(n *view.Node) (string, bool)
}

// Render draws n and its visible descendants.
func (r Renderer) Render(n *view.Node) string {
	if n == nil || !n.Visible {
		return ""
	}
	switch n.Kind {
	case view.Column:
		return lipgloss.JoinVertical(lipgloss.Left, r.children(n)...)
	case view.Row:
		parts := r.children(n)
		spaced := make([]string, 0, 2*len(parts))
		for i, p := range parts {
			if i > 0 {
				spaced = append(spaced, " ")
			}
			spaced = append(spaced, p)
		}
		return lipgloss.JoinHorizontal(lipgloss.Top, spaced...)
	}
	return r.focus(n, r.leaf(n))
}

func (r Renderer) children(n *view.Node) []string {
	var out []string
	for _, c := range n.Children {
		if s := r.Render(c); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (r Renderer) leaf(n *view.Node) string {
	s := r.Styles
	switch n.Kind {
	case view.Text:
		if n.Label == "" {
			return s.Muted.Render("-")
		}
		return s.Text.Render(n.Label)
	case view.Input:
		if r.InputView != nil {
			if v, ok := r.InputView(n); ok {
				return v
			}
		}
		if n.Value == "" {
			return s.Input.Inherit(s.Muted).Render(n.Placeholder)
		}
		return s.Input.Render(n.Value)
	case view.Button:
		return s.Button.Render("[" + n.Label + "]")
	case view.Checkbox:
		box := "[ ] "
		label := s.Text.Render(n.Label)
		if n.Checked {
			box = "[x] "
			label = s.Done.Render(n.Label)
		}
		return box + label
	case view.Tab:
		if n.Selected {
			return s.Selected.Render(n.Label)
		}
		return s.Tab.Render(n.Label)
	}
	return ""
}

func (r Renderer) focus(n *view.Node, content string) string {
	if r.Focused == "" || n.ID != r.Focused {
		return content
	}
	return focusMarker + r.Styles.Focused.Render(content)
}

// helpText lists the key bindings.
func helpText() string {
	return strings.Join([]string{
		"tab/shift+tab move",
		"enter activate",
		"space toggle",
		"ctrl+f filter",
		"esc quit",
	}, " • ")
}
