package cmd

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nibzard/portfolio-go/internal/logging"
)

func logsCmd(a *app) *cobra.Command {
	var (
		follow bool
		lines  int
	)
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Tail the latest run log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := logging.FindLatestLog(logging.LogDir(a.cfg.LogDir))
			if err != nil {
				return fmt.Errorf("finding latest log: %w", err)
			}
			if path == "" {
				fmt.Fprintln(a.stdout, "No log files found.")
				return nil
			}

			fmt.Fprintf(a.stdout, "Tailing: %s\n", path)
			if follow {
				fmt.Fprintln(a.stdout, "(Ctrl+C to stop)")
			}
			fmt.Fprintln(a.stdout)

			err = logging.TailLog(cmd.Context(), a.stdout, path, lines, follow)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Follow the log (like tail -f)")
	cmd.Flags().IntVarP(&lines, "lines", "n", 0, "Number of lines to show (0 = all)")
	cmd.AddCommand(logsLsCmd(a))
	return cmd
}

func logsLsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "List run logs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runs, err := logging.FindLogRuns(logging.LogDir(a.cfg.LogDir))
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(a.stdout, "No log files found.")
				return nil
			}
			tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
			for _, r := range runs {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", r.ModTime.Format("2006-01-02 15:04:05"), r.Label, r.Path)
			}
			return tw.Flush()
		},
	}
}
