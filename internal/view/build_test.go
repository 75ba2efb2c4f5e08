package view

import (
	"fmt"
	"testing"

	"github.com/nibzard/portfolio-go/internal/todo"
)

func newList(t *testing.T, names ...string) *todo.List {
	t.Helper()
	n := 0
	l := todo.New(todo.WithIDFunc(func() string {
		n++
		return fmt.Sprintf("%d", n)
	}))
	for _, name := range names {
		if _, err := l.AddTask(name); err != nil {
			t.Fatalf("AddTask(%q) failed: %v", name, err)
		}
	}
	return l
}

func ids(nodes []*Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.ID
	}
	return out
}

func TestBuildModeSelectsExactlyOneGroup(t *testing.T) {
	l := newList(t, "Buy milk")
	task := l.Tasks()[0]

	root := Build(l, "")
	if Find(root, "task/1/display") == nil || Find(root, "task/1/editor") != nil {
		t.Fatal("viewing task should show only the display row")
	}

	l.Dispatch(todo.BeginEdit{TaskID: task.ID})
	root = Build(l, "")
	if Find(root, "task/1/display") != nil {
		t.Error("editing task should hide the display row")
	}
	input := Find(root, "task/1/name")
	if input == nil || input.Value != "Buy milk" {
		t.Fatalf("editing task should show the name input, got %+v", input)
	}
	if cmd := input.Bind("Buy oat milk"); cmd != (todo.SetTaskBuffer{TaskID: task.ID, Value: "Buy oat milk"}) {
		t.Errorf("Bind: got %#v", cmd)
	}
}

func TestBuildHidesFilteredTasks(t *testing.T) {
	l := newList(t, "a", "b")
	l.Dispatch(todo.ToggleCompleted{TaskID: "1"})
	l.SetFilter(todo.FilterActive)

	root := Build(l, "")
	if Find(root, "task/1") != nil {
		t.Error("completed task should be hidden under Active")
	}
	if Find(root, "task/2") == nil {
		t.Error("active task should be visible under Active")
	}
	if footer := Find(root, "footer"); footer == nil || footer.Label != "1 of 2 shown" {
		t.Errorf("footer: got %+v", footer)
	}

	selected := 0
	for _, n := range Find(root, "tabs").Children {
		if n.Selected {
			selected++
			if n.Label != "Active" {
				t.Errorf("selected tab: got %q, want Active", n.Label)
			}
		}
	}
	if selected != 1 {
		t.Errorf("selected tabs: got %d, want 1", selected)
	}
}

func TestFocusableOrder(t *testing.T) {
	l := newList(t, "a")
	root := Build(l, "draft")

	want := []string{
		NewTaskID, AddID,
		"tab/all", "tab/active", "tab/completed",
		"task/1/done", "task/1/edit", "task/1/delete",
		"task/1/add-subtask/button",
	}
	got := ids(Focusable(root))
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("Focusable:\n got %v\nwant %v", got, want)
	}

	add := Find(root, AddID)
	if add.Action != (todo.AddTask{Name: "draft"}) {
		t.Errorf("add action: got %#v", add.Action)
	}
}

func TestBuildSubtaskRows(t *testing.T) {
	l := newList(t, "trip")
	l.Dispatch(todo.AddSubtask{TaskID: "1"})

	root := Build(l, "")
	name := Find(root, "subtask/2/name")
	if name == nil || name.Value != todo.PlaceholderSubtaskName {
		t.Fatalf("new subtask should show its edit row with the placeholder, got %+v", name)
	}
	if Find(root, "subtask/2/display") != nil {
		t.Error("new subtask display row should be hidden")
	}

	l.Dispatch(todo.SaveSubtaskEdit{TaskID: "1", SubtaskID: "2"})
	root = Build(l, "")
	label := Find(root, "subtask/2/label")
	if label == nil || label.Label != todo.PlaceholderSubtaskName {
		t.Errorf("saved subtask label: got %+v", label)
	}
	del := Find(root, "subtask/2/delete")
	if del == nil || del.Action != (todo.DeleteSubtask{TaskID: "1", SubtaskID: "2"}) {
		t.Errorf("delete action: got %+v", del)
	}
}

func TestKindString(t *testing.T) {
	if Checkbox.String() != "checkbox" || Kind(99).String() != "unknown" {
		t.Error("unexpected Kind names")
	}
}
