package todo

// Command is a message applied to a List through Dispatch.
type Command interface {
	command()
}

// SubtaskField selects one of a subtask's two edit fields.
type SubtaskField int

const (
	SubtaskName SubtaskField = iota
	SubtaskTime
)

type (
	// AddTask appends a task named Name.
	AddTask struct{ Name string }
	// DeleteTask removes a task.
	DeleteTask struct{ TaskID string }
	// StatusChanged tells the list a task's completed flag flipped.
	StatusChanged struct{ TaskID string }
	// ToggleCompleted flips a task's completed flag.
	ToggleCompleted struct{ TaskID string }
	// BeginEdit puts a task in Editing mode.
	BeginEdit struct{ TaskID string }
	// SaveEdit commits a task's edit field.
	SaveEdit struct{ TaskID string }
	// SetTaskBuffer replaces a task's edit field.
	SetTaskBuffer struct {
		TaskID string
		Value  string
	}
	// AddSubtask appends a subtask to a task.
	AddSubtask struct{ TaskID string }
	// DeleteSubtask removes a subtask from its task.
	DeleteSubtask struct{ TaskID, SubtaskID string }
	// BeginSubtaskEdit puts a subtask in Editing mode.
	BeginSubtaskEdit struct{ TaskID, SubtaskID string }
	// SaveSubtaskEdit commits both of a subtask's edit fields.
	SaveSubtaskEdit struct{ TaskID, SubtaskID string }
	// SetSubtaskBuffer replaces one of a subtask's edit fields.
	SetSubtaskBuffer struct {
		TaskID    string
		SubtaskID string
		Field     SubtaskField
		Value     string
	}
	// SetFilter changes the list filter.
	SetFilter struct{ Filter Filter }
)

func (AddTask) command()          {}
func (DeleteTask) command()       {}
func (StatusChanged) command()    {}
func (ToggleCompleted) command()  {}
func (BeginEdit) command()        {}
func (SaveEdit) command()         {}
func (SetTaskBuffer) command()    {}
func (AddSubtask) command()       {}
func (DeleteSubtask) command()    {}
func (BeginSubtaskEdit) command() {}
func (SaveSubtaskEdit) command()  {}
func (SetSubtaskBuffer) command() {}
func (SetFilter) command()        {}
