package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nibzard/portfolio-go/internal/devices"
	"github.com/nibzard/portfolio-go/internal/mqtt"
	"github.com/nibzard/portfolio-go/internal/readings"
	"github.com/nibzard/portfolio-go/internal/store"
	"github.com/nibzard/portfolio-go/internal/ui"
)

func devicesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "devices",
		Aliases: []string{"dev"},
		Short:   "Manage dashboard devices and their widgets",
	}
	cmd.AddCommand(
		devicesLsCmd(a),
		devicesAddCmd(a),
		devicesRmCmd(a),
		widgetCmd(a),
		devicesRefreshCmd(a),
		devicesWatchCmd(a),
		devicesCheckCmd(a),
	)
	return cmd
}

func devicesLsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "List devices and widgets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.openRegistry(false)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.stdout, ui.RenderDevices(reg.Devices(), ui.DefaultStyles()))
			return nil
		},
	}
}

func devicesAddCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add <device-id>",
		Short: "Register a device",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.openRegistry(true)
			if err != nil {
				return err
			}
			if err := reg.AddDevice(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "Added device %s\n", strings.TrimSpace(args[0]))
			return nil
		},
	}
}

func devicesRmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <device-id>",
		Short: "Remove a device",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.openRegistry(true)
			if err != nil {
				return err
			}
			return reg.RemoveDevice(args[0])
		},
	}
}

func widgetCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "widget",
		Short: "Manage the widgets of a device",
	}
	cmd.AddCommand(widgetAddCmd(a), widgetRmCmd(a), widgetToggleCmd(a))
	return cmd
}

func widgetAddCmd(a *app) *cobra.Command {
	kinds := make([]string, 0, len(devices.Kinds()))
	for _, k := range devices.Kinds() {
		kinds = append(kinds, string(k))
	}
	return &cobra.Command{
		Use:       "add <device-id> <type> <key> <name>",
		Short:     "Add a widget (type: " + strings.Join(kinds, ", ") + ")",
		Args:      cobra.MinimumNArgs(4),
		ValidArgs: kinds,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.openRegistry(true)
			if err != nil {
				return err
			}
			name := strings.Join(args[3:], " ")
			if err := reg.AddWidget(args[0], args[1], args[2], name); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "Added %s widget %q to %s\n", strings.ToLower(args[1]), name, args[0])
			return nil
		},
	}
}

func widgetRmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <device-id> <index>",
		Short: "Remove the widget at index (see devices ls)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid widget index %q", args[1])
			}
			reg, err := a.openRegistry(true)
			if err != nil {
				return err
			}
			return reg.RemoveWidget(args[0], index)
		},
	}
}

func widgetToggleCmd(a *app) *cobra.Command {
	var noPublish bool
	cmd := &cobra.Command{
		Use:   "toggle <device-id> <index>",
		Short: "Flip a button widget and publish its state to " + mqtt.ButtonTopic,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid widget index %q", args[1])
			}
			reg, err := a.openRegistry(true)
			if err != nil {
				return err
			}
			on, err := reg.ToggleButton(args[0], index)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "Button is %s\n", map[bool]string{true: "on", false: "off"}[on])
			if noPublish {
				return nil
			}
			return a.publishButton(cmd.Context(), on)
		},
	}
	cmd.Flags().BoolVar(&noPublish, "no-publish", false, "Only change the saved state")
	return cmd
}

// publishButton sends "True" or "False", the payload the devices expect.
func (a *app) publishButton(ctx context.Context, on bool) error {
	m := a.mqttManager(false, nil)
	if err := m.Open(ctx); err != nil {
		return err
	}
	defer m.Close()
	payload := "False"
	if on {
		payload = "True"
	}
	return m.Publish(ctx, mqtt.ButtonTopic, []byte(payload))
}

func devicesRefreshCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Fetch every device once and save the readings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.openRegistry(true)
			if err != nil {
				return err
			}
			fetcher, closeFn := a.fetcher()
			defer closeFn()

			readings.NewPoller(fetcher, reg, readings.WithLogger(a.logger)).PollOnce(cmd.Context())
			fmt.Fprintln(a.stdout, ui.RenderDevices(reg.Devices(), ui.DefaultStyles()))
			return nil
		},
	}
}

func devicesWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Poll every device on an interval and redraw the dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.openRegistry(false)
			if err != nil {
				return err
			}
			fetcher, closeFn := a.fetcher()
			defer closeFn()

			styles := ui.DefaultStyles()
			clear := ui.IsTTY(a.stdout)
			p := readings.NewPoller(fetcher, reg,
				readings.WithInterval(a.cfg.PollInterval()),
				readings.WithLogger(a.logger),
				readings.OnUpdate(func(devs []devices.Device) {
					if clear {
						fmt.Fprint(a.stdout, "\033[H\033[2J")
					}
					fmt.Fprintln(a.stdout, ui.RenderDevices(devs, styles))
				}),
			)
			a.logger.Info("polling devices", "interval", a.cfg.PollInterval(), "devices", reg.Len())
			err = p.Run(cmd.Context())
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}

func devicesCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the device registry file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.cfg.DevicesFile
			data, err := os.ReadFile(path)
			if errors.Is(err, os.ErrNotExist) {
				fmt.Fprintf(a.stdout, "%s: not found (no devices yet)\n", path)
				return nil
			}
			if err != nil {
				return err
			}
			if err := store.Validate(data); err != nil {
				fmt.Fprintf(a.stdout, "%s: invalid\n", path)
				for _, line := range strings.Split(err.Error(), "\n") {
					fmt.Fprintf(a.stdout, "  - %s\n", line)
				}
				return errors.New("devices file failed validation")
			}
			fmt.Fprintf(a.stdout, "%s: valid\n", path)
			return nil
		},
	}
}
