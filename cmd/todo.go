package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nibzard/portfolio-go/internal/todo"
	"github.com/nibzard/portfolio-go/internal/ui"
)

func todoCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "todo",
		Short: "Open the to-do list",
		Long: "Open the interactive to-do list. With --todo the list is loaded from\n" +
			"and saved to that file, otherwise it lives in memory only.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, rl, err := a.fileLogger("todo")
			if err != nil {
				return err
			}
			defer rl.Close()

			return ui.RunTUI(cmd.Context(),
				ui.WithSnapshot(a.cfg.TodoFile, a.cfg.SchemaFile),
				ui.WithLogger(logger),
			)
		},
	}
	cmd.AddCommand(todoLsCmd(a), todoAddCmd(a))
	return cmd
}

func todoLsCmd(a *app) *cobra.Command {
	var filter string
	cmd := &cobra.Command{
		Use:   "ls",
		Short: "Print the saved to-do list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.TodoFile == "" {
				return errNoTodoFile
			}
			f, err := todo.ParseFilter(filter)
			if err != nil {
				return err
			}
			list, err := ui.LoadList(a.cfg.TodoFile, a.cfg.SchemaFile)
			if err != nil {
				return err
			}
			list.SetFilter(f)
			printTasks(a.stdout, list)
			return nil
		},
	}
	cmd.Flags().StringVar(&filter, "filter", "all", "Show all, active or completed tasks")
	return cmd
}

func todoAddCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add <name>",
		Short: "Add a task to the saved to-do list",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.TodoFile == "" {
				return errNoTodoFile
			}
			list, err := ui.LoadList(a.cfg.TodoFile, a.cfg.SchemaFile)
			if err != nil {
				return err
			}
			t, err := list.AddTask(strings.Join(args, " "))
			if err != nil {
				return err
			}
			if err := ui.SaveList(a.cfg.TodoFile, list); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "Added %s\n", t.Name)
			return nil
		},
	}
}

var errNoTodoFile = errors.New("no to-do file: pass --todo or set todo_file")

func printTasks(w io.Writer, list *todo.List) {
	visible := list.Visible()
	for _, t := range visible {
		box := "[ ]"
		if t.Completed {
			box = "[x]"
		}
		fmt.Fprintf(w, "%s %s\n", box, t.Name)
		for _, s := range t.Subtasks {
			if s.TimeLabel != "" {
				fmt.Fprintf(w, "    - %s (%s)\n", s.Name, s.TimeLabel)
				continue
			}
			fmt.Fprintf(w, "    - %s\n", s.Name)
		}
	}
	fmt.Fprintf(w, "%d of %d shown\n", len(visible), list.Len())
}
