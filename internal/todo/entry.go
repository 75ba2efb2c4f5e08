package todo

import "github.com/google/uuid"

// Mode is the display state of a task or subtask.
type Mode int

const (
	Viewing Mode = iota
	Editing
)

func (m Mode) String() string {
	if m == Editing {
		return "editing"
	}
	return "viewing"
}

// PlaceholderSubtaskName is the name given to freshly added subtasks.
const PlaceholderSubtaskName = "subtask 1"

// Subtask is a child item of a Task. It edits its name and time label
// together.
type Subtask struct {
	ID        string
	TaskID    string
	Name      string
	TimeLabel string
	Mode      Mode

	nameBuf string
	timeBuf string
}

// newSubtask returns a subtask that shows its edit row first, with the
// placeholder name already in the name field.
func newSubtask(id, taskID string) *Subtask {
	return &Subtask{
		ID:      id,
		TaskID:  taskID,
		Name:    PlaceholderSubtaskName,
		Mode:    Editing,
		nameBuf: PlaceholderSubtaskName,
	}
}

// Buffers returns the current contents of the name and time edit fields.
func (s *Subtask) Buffers() (name, timeLabel string) {
	return s.nameBuf, s.timeBuf
}

// SetNameBuffer replaces the name edit field.
func (s *Subtask) SetNameBuffer(v string) { s.nameBuf = v }

// SetTimeBuffer replaces the time edit field.
func (s *Subtask) SetTimeBuffer(v string) { s.timeBuf = v }

// BeginEdit fills the edit fields from the committed values and switches to
// Editing.
func (s *Subtask) BeginEdit() {
	s.nameBuf = s.Name
	s.timeBuf = s.TimeLabel
	s.Mode = Editing
}

// SaveEdit commits name and time verbatim, clears both edit fields and
// switches back to Viewing.
func (s *Subtask) SaveEdit(name, timeLabel string) {
	s.Name = name
	s.TimeLabel = timeLabel
	s.nameBuf = ""
	s.timeBuf = ""
	s.Mode = Viewing
}

// Delete returns the command that removes this subtask from its task.
func (s *Subtask) Delete() Command {
	return DeleteSubtask{TaskID: s.TaskID, SubtaskID: s.ID}
}

// Task is one to-do item.
type Task struct {
	ID        string
	Name      string
	Completed bool
	Mode      Mode
	Subtasks  []*Subtask

	visible bool
	editBuf string
	newID   func() string
}

// Visible reports whether the owning list's filter currently shows the task.
func (t *Task) Visible() bool { return t.visible }

// EditBuffer returns the contents of the name edit field.
func (t *Task) EditBuffer() string { return t.editBuf }

// SetEditBuffer replaces the name edit field.
func (t *Task) SetEditBuffer(v string) { t.editBuf = v }

// BeginEdit copies the name into the edit field and switches to Editing.
func (t *Task) BeginEdit() {
	t.editBuf = t.Name
	t.Mode = Editing
}

// SaveEdit accepts newName as is, empty included, and switches to Viewing.
func (t *Task) SaveEdit(newName string) {
	t.Name = newName
	t.Mode = Viewing
}

// ToggleCompleted flips the completed flag. The returned command must be
// dispatched to the owning list so it can recompute visibility.
func (t *Task) ToggleCompleted() Command {
	t.Completed = !t.Completed
	return StatusChanged{TaskID: t.ID}
}

// Delete returns the command that removes this task from its list.
func (t *Task) Delete() Command {
	return DeleteTask{TaskID: t.ID}
}

// AddSubtask appends a new subtask with the placeholder name.
func (t *Task) AddSubtask() *Subtask {
	gen := t.newID
	if gen == nil {
		gen = uuid.NewString
	}
	s := newSubtask(gen(), t.ID)
	t.Subtasks = append(t.Subtasks, s)
	return s
}

// RemoveSubtask removes the subtask with the given id. It reports whether a
// subtask was removed; an unknown id is not an error.
func (t *Task) RemoveSubtask(id string) bool {
	for i, s := range t.Subtasks {
		if s.ID == id {
			t.Subtasks = append(t.Subtasks[:i], t.Subtasks[i+1:]...)
			return true
		}
	}
	return false
}

// Subtask returns the subtask with the given id, or nil.
func (t *Task) Subtask(id string) *Subtask {
	for _, s := range t.Subtasks {
		if s.ID == id {
			return s
		}
	}
	return nil
}
