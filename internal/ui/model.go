package ui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/nibzard/portfolio-go/internal/logging"
	"github.com/nibzard/portfolio-go/internal/todo"
	"github.com/nibzard/portfolio-go/internal/view"
)

// Model is the bubbletea model of the to-do application. It owns the list
// and the new-task field, and keeps a focus ring over the interactive nodes
// of the current widget tree.
type Model struct {
	list   *todo.List
	logger *log.Logger
	styles Styles

	newTask textinput.Model
	editor  textinput.Model
	editing string // id of the input node the editor is showing

	tree    *view.Node
	ring    []*view.Node
	focused string

	quitting bool
}

// NewModel returns a model over list. A nil logger discards log output.
func NewModel(list *todo.List, logger *log.Logger) *Model {
	if logger == nil {
		logger = logging.Discard()
	}
	in := textinput.New()
	in.Placeholder = "Enter Your Task"
	in.Prompt = ""
	in.CharLimit = 256

	ed := textinput.New()
	ed.Prompt = ""
	ed.CharLimit = 256

	m := &Model{
		list:    list,
		logger:  logger,
		styles:  DefaultStyles(),
		newTask: in,
		editor:  ed,
		focused: view.NewTaskID,
	}
	m.refresh()
	return m
}

// List returns the list the model edits.
func (m *Model) List() *todo.List { return m.list }

// Focused returns the id of the focused node.
func (m *Model) Focused() string { return m.focused }

// NewTaskValue returns the contents of the new-task field.
func (m *Model) NewTaskValue() string { return m.newTask.Value() }

func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	var cmd tea.Cmd
	switch key.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.quitting = true
		return m, tea.Quit
	case tea.KeyTab, tea.KeyDown:
		m.move(1)
	case tea.KeyShiftTab, tea.KeyUp:
		m.move(-1)
	case tea.KeyCtrlF:
		m.dispatch(todo.SetFilter{Filter: m.list.Filter().Next()})
	case tea.KeyEnter:
		m.activate(m.current())
	default:
		cmd = m.handleKey(key)
	}

	m.refresh()
	return m, cmd
}

func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	r := Renderer{
		Styles:    m.styles,
		Focused:   m.focused,
		InputView: m.inputView,
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.styles.Title.Render("Todos"),
		r.Render(m.tree),
		m.styles.Help.Render(helpText()),
	) + "\n"
}

// handleKey routes keys that are not navigation: text goes to the focused
// input, space activates everything else.
func (m *Model) handleKey(key tea.KeyMsg) tea.Cmd {
	n := m.current()
	if n == nil {
		return nil
	}
	if n.Kind != view.Input {
		if isSpace(key) {
			m.activate(n)
		}
		return nil
	}

	var cmd tea.Cmd
	if n.ID == view.NewTaskID {
		m.newTask, cmd = m.newTask.Update(key)
		return cmd
	}
	m.editor, cmd = m.editor.Update(key)
	if n.Bind != nil && m.editor.Value() != n.Value {
		m.dispatch(n.Bind(m.editor.Value()))
	}
	return cmd
}

// activate dispatches the action of n and moves focus where the user will
// want to continue.
func (m *Model) activate(n *view.Node) {
	if n == nil {
		return
	}
	if n.ID == view.NewTaskID || n.ID == view.AddID {
		m.submitNewTask()
		return
	}
	if n.Action == nil {
		return
	}
	m.dispatch(n.Action)
	m.followFocus(n.Action)
}

// submitNewTask adds the typed task and clears the field. An empty name is
// ignored.
func (m *Model) submitNewTask() {
	err := m.list.Dispatch(todo.AddTask{Name: m.newTask.Value()})
	if err != nil && !errors.Is(err, todo.ErrEmptyName) {
		m.logger.Warn("add task failed", "err", err)
	}
	m.newTask.Reset()
}

func (m *Model) dispatch(cmd todo.Command) {
	if err := m.list.Dispatch(cmd); err != nil {
		m.logger.Warn("command failed", "command", cmd, "err", err)
	}
}

// followFocus picks the node to focus after cmd ran.
func (m *Model) followFocus(cmd todo.Command) {
	switch c := cmd.(type) {
	case todo.BeginEdit:
		m.focused = "task/" + c.TaskID + "/name"
	case todo.SaveEdit:
		m.focused = "task/" + c.TaskID + "/edit"
	case todo.BeginSubtaskEdit:
		m.focused = "subtask/" + c.SubtaskID + "/name"
	case todo.SaveSubtaskEdit:
		m.focused = "subtask/" + c.SubtaskID + "/edit"
	case todo.AddSubtask:
		if t := m.list.Task(c.TaskID); t != nil && len(t.Subtasks) > 0 {
			m.focused = "subtask/" + t.Subtasks[len(t.Subtasks)-1].ID + "/name"
		}
	}
}

// move shifts focus by delta positions around the ring.
func (m *Model) move(delta int) {
	if len(m.ring) == 0 {
		return
	}
	i := m.index()
	if i < 0 {
		i = 0
	}
	i = (i + delta + len(m.ring)) % len(m.ring)
	m.focused = m.ring[i].ID
}

func (m *Model) index() int {
	for i, n := range m.ring {
		if n.ID == m.focused {
			return i
		}
	}
	return -1
}

func (m *Model) current() *view.Node {
	if i := m.index(); i >= 0 {
		return m.ring[i]
	}
	return nil
}

// refresh rebuilds the tree and focus ring from the list and keeps focus on
// a node that still exists.
func (m *Model) refresh() {
	prev := m.index()
	m.tree = view.Build(m.list, m.newTask.Value())
	m.ring = view.Focusable(m.tree)

	if m.index() < 0 && len(m.ring) > 0 {
		if prev < 0 {
			prev = 0
		}
		if prev >= len(m.ring) {
			prev = len(m.ring) - 1
		}
		m.focused = m.ring[prev].ID
	}
	m.syncInputs()
}

// syncInputs focuses the text field that belongs to the focused node.
func (m *Model) syncInputs() {
	n := m.current()
	if n == nil || n.ID != view.NewTaskID {
		m.newTask.Blur()
	} else {
		m.newTask.Focus()
	}

	if n == nil || n.Kind != view.Input || n.ID == view.NewTaskID {
		m.editor.Blur()
		m.editing = ""
		return
	}
	if m.editing != n.ID {
		m.editor.SetValue(n.Value)
		m.editor.Placeholder = n.Placeholder
		m.editor.CursorEnd()
		m.editing = n.ID
	}
	m.editor.Focus()
}

func (m *Model) inputView(n *view.Node) (string, bool) {
	switch {
	case n.ID == view.NewTaskID:
		return m.newTask.View(), true
	case n.ID == m.focused && n.ID == m.editing:
		return m.editor.View(), true
	}
	return "", false
}

func isSpace(key tea.KeyMsg) bool {
	return key.Type == tea.KeySpace ||
		(key.Type == tea.KeyRunes && strings.TrimSpace(string(key.Runes)) == "" && len(key.Runes) == 1)
}
