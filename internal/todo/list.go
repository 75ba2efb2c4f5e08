package todo

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ErrEmptyName is returned when a new task name is empty after trimming.
var ErrEmptyName = errors.New("task name is empty")

// ValidationError represents a validation error with context.
type ValidationError struct {
	Path string // JSON path or field name of the offending value
	Err  error  // Underlying error
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Filter selects which tasks are visible.
type Filter int

const (
	FilterAll Filter = iota
	FilterActive
	FilterCompleted
)

// Filters lists every filter in tab order.
var Filters = []Filter{FilterAll, FilterActive, FilterCompleted}

func (f Filter) String() string {
	switch f {
	case FilterActive:
		return "Active"
	case FilterCompleted:
		return "Completed"
	default:
		return "All"
	}
}

// Matches reports whether a task with the given completed flag is shown.
func (f Filter) Matches(completed bool) bool {
	return f == FilterAll ||
		(f == FilterActive && !completed) ||
		(f == FilterCompleted && completed)
}

// Next returns the filter of the following tab, wrapping around.
func (f Filter) Next() Filter {
	return Filters[(int(f)+1)%len(Filters)]
}

// ParseFilter parses a filter name, case-insensitively.
func ParseFilter(s string) (Filter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return FilterAll, nil
	case "active":
		return FilterActive, nil
	case "completed", "done":
		return FilterCompleted, nil
	}
	return FilterAll, fmt.Errorf("unknown filter %q, must be one of: all, active, completed", s)
}

// List is an ordered sequence of tasks plus the current filter. All
// mutations happen on the caller's goroutine; List is not safe for
// concurrent use.
type List struct {
	tasks    []*Task
	filter   Filter
	revision uint64
	newID    func() string
	onChange func()
}

// Option configures a List.
type Option func(*List)

// WithIDFunc sets the generator used for task and subtask ids.
func WithIDFunc(fn func() string) Option {
	return func(l *List) {
		if fn != nil {
			l.newID = fn
		}
	}
}

// WithOnChange registers a hook called after every mutation.
func WithOnChange(fn func()) Option {
	return func(l *List) {
		l.onChange = fn
	}
}

// New returns an empty list with the All filter.
func New(opts ...Option) *List {
	l := &List{newID: uuid.NewString}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// AddTask appends a new task. Names that are empty after trimming are
// rejected with a *ValidationError wrapping ErrEmptyName.
func (l *List) AddTask(name string) (*Task, error) {
	if strings.TrimSpace(name) == "" {
		return nil, &ValidationError{Path: "name", Err: ErrEmptyName}
	}
	t := &Task{
		ID:    l.newID(),
		Name:  name,
		newID: l.newID,
	}
	l.tasks = append(l.tasks, t)
	l.changed()
	return t, nil
}

// RemoveTask removes the task with the given id. Unknown ids are ignored.
func (l *List) RemoveTask(id string) {
	for i, t := range l.tasks {
		if t.ID == id {
			l.tasks = append(l.tasks[:i], l.tasks[i+1:]...)
			break
		}
	}
	l.changed()
}

// SetFilter changes the filter and recomputes visibility.
func (l *List) SetFilter(f Filter) {
	l.filter = f
	l.changed()
}

// OnTaskStatusChanged is called after a task's completed flag flipped.
func (l *List) OnTaskStatusChanged(id string) {
	l.changed()
}

// Filter returns the current filter.
func (l *List) Filter() Filter { return l.filter }

// Len returns the number of tasks, visible or not.
func (l *List) Len() int { return len(l.tasks) }

// Revision increases on every mutation.
func (l *List) Revision() uint64 { return l.revision }

// Tasks returns the tasks in insertion order.
func (l *List) Tasks() []*Task {
	out := make([]*Task, len(l.tasks))
	copy(out, l.tasks)
	return out
}

// Visible returns the tasks the current filter shows, in order.
func (l *List) Visible() []*Task {
	var out []*Task
	for _, t := range l.tasks {
		if t.visible {
			out = append(out, t)
		}
	}
	return out
}

// Task returns the task with the given id, or nil.
func (l *List) Task(id string) *Task {
	for _, t := range l.tasks {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// Dispatch applies a command. Commands that name a task or subtask that no
// longer exists are no-ops. Only AddTask can fail.
func (l *List) Dispatch(cmd Command) error {
	switch c := cmd.(type) {
	case AddTask:
		_, err := l.AddTask(c.Name)
		return err
	case DeleteTask:
		l.RemoveTask(c.TaskID)
	case StatusChanged:
		l.OnTaskStatusChanged(c.TaskID)
	case SetFilter:
		l.SetFilter(c.Filter)
	case ToggleCompleted:
		if t := l.Task(c.TaskID); t != nil {
			return l.Dispatch(t.ToggleCompleted())
		}
	case BeginEdit:
		l.withTask(c.TaskID, (*Task).BeginEdit)
	case SaveEdit:
		l.withTask(c.TaskID, func(t *Task) { t.SaveEdit(t.editBuf) })
	case SetTaskBuffer:
		l.withTask(c.TaskID, func(t *Task) { t.editBuf = c.Value })
	case AddSubtask:
		l.withTask(c.TaskID, func(t *Task) { t.AddSubtask() })
	case DeleteSubtask:
		l.withTask(c.TaskID, func(t *Task) { t.RemoveSubtask(c.SubtaskID) })
	case BeginSubtaskEdit:
		l.withSubtask(c.TaskID, c.SubtaskID, (*Subtask).BeginEdit)
	case SaveSubtaskEdit:
		l.withSubtask(c.TaskID, c.SubtaskID, func(s *Subtask) { s.SaveEdit(s.nameBuf, s.timeBuf) })
	case SetSubtaskBuffer:
		l.withSubtask(c.TaskID, c.SubtaskID, func(s *Subtask) {
			if c.Field == SubtaskTime {
				s.timeBuf = c.Value
				return
			}
			s.nameBuf = c.Value
		})
	default:
		return fmt.Errorf("unknown command %T", cmd)
	}
	return nil
}

func (l *List) withTask(id string, fn func(*Task)) {
	t := l.Task(id)
	if t == nil {
		return
	}
	fn(t)
	l.changed()
}

func (l *List) withSubtask(taskID, subtaskID string, fn func(*Subtask)) {
	t := l.Task(taskID)
	if t == nil {
		return
	}
	s := t.Subtask(subtaskID)
	if s == nil {
		return
	}
	fn(s)
	l.changed()
}

// changed recomputes derived visibility and notifies the change hook.
func (l *List) changed() {
	for _, t := range l.tasks {
		t.visible = l.filter.Matches(t.Completed)
	}
	l.revision++
	if l.onChange != nil {
		l.onChange()
	}
}

// Refresh recomputes visibility after entries were mutated directly, for
// example through Task.SaveEdit, instead of through Dispatch.
func (l *List) Refresh() {
	l.changed()
}
