package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nibzard/portfolio-go/internal/config"
)

func configCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show and write configuration",
	}
	cmd.AddCommand(configShowCmd(a), configInitCmd(a), configSetAPICmd(a))
	return cmd
}

func configShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration and where each value came from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(a.sources.Files) == 0 {
				fmt.Fprintln(a.stdout, "Config files: none")
			} else {
				fmt.Fprintf(a.stdout, "Config files: %s\n", strings.Join(a.sources.Files, ", "))
			}
			fmt.Fprintln(a.stdout)

			tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
			for _, field := range a.sources.Fields() {
				source := a.sources.Sources[field]
				if source == "" {
					source = config.SourceDefault
				}
				fmt.Fprintf(tw, "%s\t%s\t(%s)\n", field, a.sources.Value(field), source)
			}
			return tw.Flush()
		},
	}
}

func configInitCmd(a *app) *cobra.Command {
	var (
		force   bool
		project bool
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write an example config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "portfolio.toml"
			if !project {
				p, err := config.UserConfigPath()
				if err != nil {
					return err
				}
				path = p
			}
			if err := config.WriteExample(path, force); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "Wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	cmd.Flags().BoolVar(&project, "project", false, "Write ./portfolio.toml instead of the user config")
	return cmd
}

func configSetAPICmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set-api <url> <key>",
		Short: "Save the readings API URL and key in the user config",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.UserConfigPath()
			if err != nil {
				return err
			}
			if err := config.SaveAPISettings(path, args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "Saved API settings to %s\n", path)
			return nil
		},
	}
}
