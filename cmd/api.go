package cmd

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/nibzard/portfolio-go/internal/api"
)

func apiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "api",
		Short: "Serve device readings over HTTP",
		Long: "Serve GET /readings?device_id=... from the readings table. Requests must\n" +
			"carry api.key in the x-api-key header when one is configured.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			t, err := a.table(ctx)
			if err != nil {
				return err
			}
			if a.cfg.API.Key == "" {
				a.logger.Warn("no api key set, readings are open to anyone")
			}
			e := api.New(t, a.cfg.API.Key, a.logger)
			a.logger.Info("serving readings", "listen", a.cfg.API.Listen)
			err = api.Serve(ctx, e, a.cfg.API.Listen)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}
