package ui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nibzard/portfolio-go/internal/todo"
	"github.com/nibzard/portfolio-go/internal/view"
)

func newTestModel() *Model {
	n := 0
	list := todo.New(todo.WithIDFunc(func() string {
		n++
		return fmt.Sprintf("%d", n)
	}))
	return NewModel(list, nil)
}

func press(m *Model, keys ...tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = m.Update(k)
	}
	return cmd
}

func typeText(m *Model, s string) {
	press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

var (
	keyTab      = tea.KeyMsg{Type: tea.KeyTab}
	keyShiftTab = tea.KeyMsg{Type: tea.KeyShiftTab}
	keyEnter    = tea.KeyMsg{Type: tea.KeyEnter}
	keySpace    = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	keyFilter   = tea.KeyMsg{Type: tea.KeyCtrlF}
	keyEsc      = tea.KeyMsg{Type: tea.KeyEsc}
)

// focusOn tabs until id is focused.
func focusOn(t *testing.T, m *Model, id string) {
	t.Helper()
	for i := 0; i < 50; i++ {
		if m.Focused() == id {
			return
		}
		press(m, keyTab)
	}
	t.Fatalf("could not focus %q, stuck on %q", id, m.Focused())
}

func TestSubmitNewTask(t *testing.T) {
	m := newTestModel()
	if m.Focused() != view.NewTaskID {
		t.Fatalf("initial focus: got %q, want %q", m.Focused(), view.NewTaskID)
	}

	typeText(m, "Buy milk")
	if m.NewTaskValue() != "Buy milk" {
		t.Fatalf("NewTaskValue: got %q", m.NewTaskValue())
	}
	press(m, keyEnter)

	if m.List().Len() != 1 || m.List().Tasks()[0].Name != "Buy milk" {
		t.Fatalf("tasks: got %d", m.List().Len())
	}
	if m.NewTaskValue() != "" {
		t.Errorf("field should be cleared, got %q", m.NewTaskValue())
	}
}

func TestEmptySubmissionIsIgnored(t *testing.T) {
	m := newTestModel()
	press(m, keyEnter)
	typeText(m, "   ")
	press(m, keyEnter)

	if m.List().Len() != 0 {
		t.Errorf("Len: got %d, want 0", m.List().Len())
	}
	if m.NewTaskValue() != "" {
		t.Errorf("field should be cleared, got %q", m.NewTaskValue())
	}
}

func TestAddButtonUsesTypedName(t *testing.T) {
	m := newTestModel()
	typeText(m, "Call Alice")
	press(m, keyTab)
	if m.Focused() != view.AddID {
		t.Fatalf("focus: got %q, want %q", m.Focused(), view.AddID)
	}
	press(m, keySpace)
	if m.List().Len() != 1 || m.List().Tasks()[0].Name != "Call Alice" {
		t.Errorf("add button did not add the typed task")
	}
}

func TestFocusWraps(t *testing.T) {
	m := newTestModel()
	press(m, keyShiftTab)
	if m.Focused() != "tab/completed" {
		t.Errorf("shift+tab from first node: got %q, want tab/completed", m.Focused())
	}
	press(m, keyTab)
	if m.Focused() != view.NewTaskID {
		t.Errorf("tab from last node: got %q, want %q", m.Focused(), view.NewTaskID)
	}
}

func TestToggleAndFilter(t *testing.T) {
	m := newTestModel()
	typeText(m, "a")
	press(m, keyEnter)
	typeText(m, "b")
	press(m, keyEnter)

	focusOn(t, m, "task/1/done")
	press(m, keySpace)
	if !m.List().Task("1").Completed {
		t.Fatal("space on checkbox should complete the task")
	}

	press(m, keyFilter)
	if m.List().Filter() != todo.FilterActive {
		t.Fatalf("filter: got %v, want Active", m.List().Filter())
	}
	if m.Focused() == "task/1/done" {
		t.Error("focus should leave a hidden task")
	}
	if strings.Contains(m.View(), "[x] a") {
		t.Error("completed task should not be drawn under Active")
	}

	press(m, keyFilter)
	if m.List().Filter() != todo.FilterCompleted {
		t.Fatalf("filter: got %v, want Completed", m.List().Filter())
	}
	out := m.View()
	if !strings.Contains(out, "a") || strings.Contains(out, "[ ] b") {
		t.Errorf("Completed view:\n%s", out)
	}
}

func TestEditTaskThroughKeys(t *testing.T) {
	m := newTestModel()
	typeText(m, "Buy milk")
	press(m, keyEnter)

	focusOn(t, m, "task/1/edit")
	press(m, keyEnter)
	task := m.List().Task("1")
	if task.Mode != todo.Editing {
		t.Fatalf("Mode: got %v, want editing", task.Mode)
	}
	if m.Focused() != "task/1/name" {
		t.Fatalf("focus after edit: got %q", m.Focused())
	}

	typeText(m, "!")
	if task.EditBuffer() != "Buy milk!" {
		t.Errorf("EditBuffer: got %q", task.EditBuffer())
	}
	press(m, keyEnter)
	if task.Name != "Buy milk!" || task.Mode != todo.Viewing {
		t.Errorf("after save: got (%q, %v)", task.Name, task.Mode)
	}
	if m.Focused() != "task/1/edit" {
		t.Errorf("focus after save: got %q", m.Focused())
	}
}

func TestSubtaskThroughKeys(t *testing.T) {
	m := newTestModel()
	typeText(m, "Trip")
	press(m, keyEnter)

	focusOn(t, m, "task/1/add-subtask/button")
	press(m, keyEnter)
	if m.Focused() != "subtask/2/name" {
		t.Fatalf("focus after add subtask: got %q", m.Focused())
	}

	typeText(m, " pack")
	press(m, keyTab)
	if m.Focused() != "subtask/2/time" {
		t.Fatalf("focus: got %q, want subtask/2/time", m.Focused())
	}
	typeText(m, "9am")
	press(m, keyEnter)

	sub := m.List().Task("1").Subtask("2")
	if sub.Name != "subtask 1 pack" || sub.TimeLabel != "9am" || sub.Mode != todo.Viewing {
		t.Errorf("subtask: got (%q, %q, %v)", sub.Name, sub.TimeLabel, sub.Mode)
	}

	focusOn(t, m, "subtask/2/delete")
	press(m, keyEnter)
	if len(m.List().Task("1").Subtasks) != 0 {
		t.Error("delete should remove the subtask")
	}
}

func TestDeleteTaskMovesFocus(t *testing.T) {
	m := newTestModel()
	typeText(m, "only")
	press(m, keyEnter)

	focusOn(t, m, "task/1/delete")
	press(m, keyEnter)
	if m.List().Len() != 0 {
		t.Fatalf("Len: got %d, want 0", m.List().Len())
	}
	if m.Focused() == "task/1/delete" || m.Focused() == "" {
		t.Errorf("focus should move to an existing node, got %q", m.Focused())
	}
}

func TestQuit(t *testing.T) {
	m := newTestModel()
	cmd := press(m, keyEsc)
	if cmd == nil {
		t.Fatal("esc should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("esc should quit")
	}
	if m.View() != "" {
		t.Error("view should be empty after quitting")
	}
}

func TestLoadListAndSaveList(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "todo.json")

	list, err := LoadList(path, "")
	if err != nil || list.Len() != 0 {
		t.Fatalf("missing file: got (%v, %v)", list, err)
	}
	list.AddTask("persist me")
	if err := SaveList(path, list); err != nil {
		t.Fatalf("SaveList: %v", err)
	}

	loaded, err := LoadList(path, "")
	if err != nil {
		t.Fatalf("LoadList: %v", err)
	}
	if loaded.Len() != 1 || loaded.Tasks()[0].Name != "persist me" {
		t.Errorf("loaded: got %d tasks", loaded.Len())
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"schema_version": 7, "tasks": []}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadList(bad, ""); err == nil {
		t.Error("invalid snapshot should fail to load")
	}

	if l, err := LoadList("", ""); err != nil || l.Len() != 0 {
		t.Errorf("empty path: got (%v, %v)", l, err)
	}
}

func TestIsTTY(t *testing.T) {
	var b strings.Builder
	if IsTTY(&b) {
		t.Error("a strings.Builder is not a terminal")
	}
	f, err := os.CreateTemp(t.TempDir(), "out")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if IsTTY(f) {
		t.Error("a regular file is not a terminal")
	}
}
