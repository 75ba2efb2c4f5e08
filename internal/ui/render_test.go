package ui

import (
	"strings"
	"testing"

	"github.com/nibzard/portfolio-go/internal/todo"
	"github.com/nibzard/portfolio-go/internal/view"
)

func TestRenderTree(t *testing.T) {
	l := todo.New()
	done, _ := l.AddTask("Write report")
	l.AddTask("Call Alice")
	l.Dispatch(done.ToggleCompleted())

	tree := view.Build(l, "")
	r := Renderer{Styles: DefaultStyles(), Focused: "task/" + done.ID + "/delete"}
	out := r.Render(tree)

	for _, want := range []string{"[x] Write report", "[ ] Call Alice", "Enter Your Task", "All", "Active", "Completed", "2 of 2 shown"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if !strings.Contains(out, focusMarker+"[delete]") {
		t.Errorf("focused button should carry the marker:\n%s", out)
	}
}

func TestRenderSkipsHiddenNodes(t *testing.T) {
	l := todo.New()
	l.AddTask("visible")
	hidden, _ := l.AddTask("hidden")
	l.Dispatch(hidden.ToggleCompleted())
	l.SetFilter(todo.FilterActive)

	out := Renderer{Styles: DefaultStyles()}.Render(view.Build(l, ""))
	if strings.Contains(out, "hidden") {
		t.Errorf("hidden task was drawn:\n%s", out)
	}
	if strings.Contains(out, focusMarker) {
		t.Errorf("nothing is focused, but a marker was drawn:\n%s", out)
	}
}

func TestRenderInputOverride(t *testing.T) {
	n := &view.Node{ID: "x", Kind: view.Input, Placeholder: "type here", Visible: true}
	r := Renderer{Styles: DefaultStyles()}
	if got := r.Render(n); !strings.Contains(got, "type here") {
		t.Errorf("empty input should show its placeholder, got %q", got)
	}
	r.InputView = func(*view.Node) (string, bool) { return "LIVE", true }
	if got := r.Render(n); got != "LIVE" {
		t.Errorf("override: got %q", got)
	}
}
