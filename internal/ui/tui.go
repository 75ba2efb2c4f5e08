// Package ui provides the terminal interface of the to-do list and the
// device dashboard.
package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/nibzard/portfolio-go/internal/todo"
)

// TUIOption configures the TUI behavior.
type TUIOption func(*tuiConfig)

// tuiConfig holds TUI configuration.
type tuiConfig struct {
	file       string
	schemaPath string
	logger     *log.Logger
}

// WithSnapshot loads the list from path at start and saves it there on
// quit. An empty path keeps the list in memory.
func WithSnapshot(path, schemaPath string) TUIOption {
	return func(c *tuiConfig) {
		c.file = path
		c.schemaPath = schemaPath
	}
}

// WithLogger sets the logger. The TUI owns the terminal, so it should not
// write to stdout or stderr.
func WithLogger(logger *log.Logger) TUIOption {
	return func(c *tuiConfig) {
		c.logger = logger
	}
}

// RunTUI starts the to-do TUI and blocks until the user quits or ctx is
// cancelled.
func RunTUI(ctx context.Context, opts ...TUIOption) error {
	c := &tuiConfig{}
	for _, opt := range opts {
		opt(c)
	}

	if !IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}

	list, err := LoadList(c.file, c.schemaPath)
	if err != nil {
		return err
	}

	model := NewModel(list, c.logger)
	runErr := runProgram(ctx, model)

	if c.file != "" {
		if err := SaveList(c.file, model.List()); err != nil {
			return errors.Join(runErr, err)
		}
		if c.logger != nil {
			c.logger.Info("saved to-do list", "path", c.file, "tasks", model.List().Len())
		}
	}
	return runErr
}

func runProgram(ctx context.Context, model *Model) error {
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}

// LoadList reads a snapshot into a new list. An empty path or a missing
// file yields an empty list.
func LoadList(path, schemaPath string) (*todo.List, error) {
	if path == "" {
		return todo.New(), nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return todo.New(), nil
	}

	f, err := todo.Load(path)
	if err != nil {
		return nil, err
	}
	result := f.Validate(todo.ValidationOptions{SchemaPath: schemaPath})
	if !result.Valid {
		msgs := make([]string, len(result.Errors))
		for i, e := range result.Errors {
			msgs[i] = e.Error()
		}
		return nil, fmt.Errorf("invalid to-do file %s: %s", path, strings.Join(msgs, "; "))
	}
	return f.Restore(), nil
}

// SaveList writes the list to path.
func SaveList(path string, list *todo.List) error {
	if err := todo.Snapshot(list).Save(path); err != nil {
		return fmt.Errorf("save to-do list: %w", err)
	}
	return nil
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
