package view

import (
	"fmt"
	"strings"

	"github.com/nibzard/portfolio-go/internal/todo"
)

// Node ids that the shell refers to.
const (
	RootID    = "root"
	NewTaskID = "new-task"
	AddID     = "add"
)

// Build maps the list state and the shell's new-task field to a tree.
// Tasks hidden by the filter are kept in the tree with Visible unset.
func Build(l *todo.List, newTask string) *Node {
	input := &Node{
		ID:          NewTaskID,
		Kind:        Input,
		Value:       newTask,
		Placeholder: "Enter Your Task",
		Visible:     true,
		Action:      todo.AddTask{Name: newTask},
	}
	header := container(Row, "header", input, button(AddID, "+", todo.AddTask{Name: newTask}))

	tabs := container(Row, "tabs")
	for _, f := range todo.Filters {
		tabs.Children = append(tabs.Children, &Node{
			ID:       "tab/" + strings.ToLower(f.String()),
			Kind:     Tab,
			Label:    f.String(),
			Selected: l.Filter() == f,
			Visible:  true,
			Action:   todo.SetFilter{Filter: f},
		})
	}

	tasks := container(Column, "tasks")
	for _, t := range l.Tasks() {
		tasks.Children = append(tasks.Children, taskNode(t))
	}

	shown := len(l.Visible())
	footer := text("footer", fmt.Sprintf("%d of %d shown", shown, l.Len()))

	return container(Column, RootID, header, tabs, tasks, footer)
}

func taskNode(t *todo.Task) *Node {
	id := "task/" + t.ID
	taskID := t.ID

	display := container(Row, id+"/display",
		&Node{
			ID:      id + "/done",
			Kind:    Checkbox,
			Label:   t.Name,
			Checked: t.Completed,
			Visible: true,
			Action:  todo.ToggleCompleted{TaskID: taskID},
		},
		button(id+"/edit", "edit", todo.BeginEdit{TaskID: taskID}),
		button(id+"/delete", "delete", t.Delete()),
	)
	display.Visible = t.Mode == todo.Viewing

	edit := container(Row, id+"/editor",
		&Node{
			ID:          id + "/name",
			Kind:        Input,
			Value:       t.EditBuffer(),
			Placeholder: "Enter Your Data",
			Visible:     true,
			Action:      todo.SaveEdit{TaskID: taskID},
			Bind: func(v string) todo.Command {
				return todo.SetTaskBuffer{TaskID: taskID, Value: v}
			},
		},
		button(id+"/save", "save", todo.SaveEdit{TaskID: taskID}),
	)
	edit.Visible = t.Mode == todo.Editing

	addSub := container(Row, id+"/add-subtask",
		button(id+"/add-subtask/button", "add subtask", todo.AddSubtask{TaskID: taskID}),
	)

	subs := container(Column, id+"/subtasks")
	for _, s := range t.Subtasks {
		subs.Children = append(subs.Children, subtaskNode(s))
	}

	n := container(Column, id, display, edit, addSub, subs)
	n.Visible = t.Visible()
	return n
}

func subtaskNode(s *todo.Subtask) *Node {
	id := "subtask/" + s.ID
	taskID, subID := s.TaskID, s.ID
	nameBuf, timeBuf := s.Buffers()

	save := todo.SaveSubtaskEdit{TaskID: taskID, SubtaskID: subID}
	bind := func(field todo.SubtaskField) func(string) todo.Command {
		return func(v string) todo.Command {
			return todo.SetSubtaskBuffer{TaskID: taskID, SubtaskID: subID, Field: field, Value: v}
		}
	}

	edit := container(Row, id+"/editor",
		&Node{ID: id + "/name", Kind: Input, Label: "Subtask", Value: nameBuf, Placeholder: "Enter Your SubTask", Visible: true, Action: save, Bind: bind(todo.SubtaskName)},
		&Node{ID: id + "/time", Kind: Input, Label: "Time", Value: timeBuf, Placeholder: "Time", Visible: true, Action: save, Bind: bind(todo.SubtaskTime)},
		button(id+"/save", "save", save),
	)
	edit.Visible = s.Mode == todo.Editing

	display := container(Row, id+"/display",
		text(id+"/label", s.Name),
		text(id+"/time-label", s.TimeLabel),
		button(id+"/edit", "edit", todo.BeginSubtaskEdit{TaskID: taskID, SubtaskID: subID}),
		button(id+"/delete", "delete", s.Delete()),
	)
	display.Visible = s.Mode == todo.Viewing

	return container(Column, id, edit, display)
}
