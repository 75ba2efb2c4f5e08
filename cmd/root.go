// Package cmd implements the CLI command structure for portfolio.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/nibzard/portfolio-go/internal/config"
	"github.com/nibzard/portfolio-go/internal/logging"
)

// Version is set via ldflags at build time.
var Version = "dev"

// app carries what every command needs once flags are parsed.
type app struct {
	cfg     *config.Config
	sources *config.ConfigWithSources
	logger  *log.Logger

	stdout io.Writer
	stderr io.Writer
}

// Run executes the portfolio CLI.
func Run(ctx context.Context, args []string) error {
	return execute(ctx, args, os.Stdout, os.Stderr)
}

func execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	root := newRootCommand(stdout, stderr)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:           "portfolio",
		Short:         "Terminal editions of the portfolio demo apps",
		Long:          "portfolio bundles a hierarchical to-do list, an IoT device dashboard,\nan MQTT client, a readings API and an S3 uploader.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetVersionTemplate("portfolio version {{.Version}}\n")
	config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(
		todoCmd(a),
		devicesCmd(a),
		mqttCmd(a),
		uploadCmd(a),
		apiCmd(a),
		configCmd(a),
		logsCmd(a),
		versionCmd(a),
	)
	return root
}

// load reads the layered configuration and builds the stderr logger.
func (a *app) load(cmd *cobra.Command) error {
	cws, err := config.LoadWithSources(cmd.Flags())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	a.sources = cws
	a.cfg = cws.Config
	a.logger = logging.New(a.stderr, a.logOptions())
	return nil
}

func (a *app) logOptions() logging.Options {
	opts := logging.DefaultOptions()
	if a.cfg.LogLevel != "" {
		opts.Level = a.cfg.LogLevel
	}
	if a.cfg.LogFormat != "" {
		opts.Format = a.cfg.LogFormat
	}
	opts.Timestamps = a.cfg.LogTimestamps
	opts.Caller = a.cfg.LogCaller
	return opts
}

// fileLogger sends log output to a run log under the log dir, for commands
// that own the terminal.
func (a *app) fileLogger(label string) (*log.Logger, *logging.RunLogger, error) {
	rl, err := logging.NewRunLogger(a.cfg.LogDir, label)
	if err != nil {
		return nil, nil, err
	}
	opts := a.logOptions()
	opts.Timestamps = true
	return logging.New(rl.Writer(), opts), rl, nil
}

func versionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(a.stdout, "portfolio version %s\n", Version)
			return nil
		},
	}
}
