// Package view builds the widget tree for the to-do list. It does not
// draw anything; a renderer walks the tree and turns it into output.
package view

import (
	"github.com/nibzard/portfolio-go/internal/todo"
)

// Kind is the type of a node.
type Kind int

const (
	Column Kind = iota
	Row
	Text
	Input
	Button
	Checkbox
	Tab
)

func (k Kind) String() string {
	switch k {
	case Column:
		return "column"
	case Row:
		return "row"
	case Text:
		return "text"
	case Input:
		return "input"
	case Button:
		return "button"
	case Checkbox:
		return "checkbox"
	case Tab:
		return "tab"
	}
	return "unknown"
}

// Node is one element of the widget tree.
//
// Buttons, checkboxes and tabs carry the command to dispatch when they are
// activated. Inputs carry a binding: Bind returns the command that stores a
// new value for the field. An input's Action is dispatched on submit.
type Node struct {
	ID          string
	Kind        Kind
	Label       string
	Value       string
	Placeholder string
	Checked     bool
	Selected    bool
	Visible     bool
	Children    []*Node

	Action todo.Command
	Bind   func(value string) todo.Command
}

// Interactive reports whether the node can take focus.
func (n *Node) Interactive() bool {
	switch n.Kind {
	case Input, Button, Checkbox, Tab:
		return true
	}
	return false
}

// Walk visits n and its visible descendants depth-first. Hidden subtrees
// are skipped.
func Walk(n *Node, fn func(*Node)) {
	if n == nil || !n.Visible {
		return
	}
	fn(n)
	for _, c := range n.Children {
		Walk(c, fn)
	}
}

// Focusable returns the visible interactive nodes in tree order.
func Focusable(root *Node) []*Node {
	var out []*Node
	Walk(root, func(n *Node) {
		if n.Interactive() {
			out = append(out, n)
		}
	})
	return out
}

// Find returns the visible node with the given id, or nil.
func Find(root *Node, id string) *Node {
	var found *Node
	Walk(root, func(n *Node) {
		if found == nil && n.ID == id {
			found = n
		}
	})
	return found
}

func container(kind Kind, id string, children ...*Node) *Node {
	return &Node{ID: id, Kind: kind, Visible: true, Children: children}
}

func text(id, label string) *Node {
	return &Node{ID: id, Kind: Text, Label: label, Visible: true}
}

func button(id, label string, action todo.Command) *Node {
	return &Node{ID: id, Kind: Button, Label: label, Visible: true, Action: action}
}
