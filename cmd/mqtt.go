package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nibzard/portfolio-go/internal/ingest"
)

func mqttCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mqtt",
		Short: "Publish, subscribe and bridge MQTT messages",
	}
	cmd.AddCommand(mqttPubCmd(a), mqttSubCmd(a), mqttBridgeCmd(a))
	return cmd
}

func mqttPubCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "pub <topic> <message>",
		Short: "Publish one message",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m := a.mqttManager(false, nil)
			if err := m.Open(cmd.Context()); err != nil {
				return err
			}
			defer m.Close()

			msg := strings.Join(args[1:], " ")
			if err := m.Publish(cmd.Context(), args[0], []byte(msg)); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "Published to %s\n", args[0])
			return nil
		},
	}
}

func mqttSubCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sub [topic]",
		Short: "Print messages until interrupted (default topic from config)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				a.cfg.MQTT.Topic = args[0]
			}
			m := a.mqttManager(true, func(topic string, payload []byte) {
				fmt.Fprintf(a.stdout, "%s %s\n", topic, payload)
			})
			if err := m.Open(cmd.Context()); err != nil {
				return err
			}
			defer m.Close()

			a.logger.Info("listening", "broker", a.cfg.MQTT.Broker, "topic", a.cfg.MQTT.Topic)
			<-cmd.Context().Done()
			return nil
		},
	}
}

func mqttBridgeCmd(a *app) *cobra.Command {
	var device string
	cmd := &cobra.Command{
		Use:   "bridge [topic]",
		Short: "Store incoming messages as readings in the readings table",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			topic := a.cfg.MQTT.Topic
			if len(args) == 1 {
				topic = args[0]
			}
			t, err := a.table(ctx)
			if err != nil {
				return err
			}
			m := a.mqttManager(false, nil)
			if err := m.Open(ctx); err != nil {
				return err
			}
			defer m.Close()

			b := ingest.New(t, a.logger)
			b.DefaultDevice = device
			err = b.Run(ctx, m, topic)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringVar(&device, "device", "", "Device id for topics that do not name one")
	return cmd
}
