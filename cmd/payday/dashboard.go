package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/Veraticus/the-payday-must-flow/internal/service"
	"github.com/Veraticus/the-payday-must-flow/internal/tui"
)

func dashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "dashboard",
		Aliases: []string{"dash"},
		Short:   "Open the interactive dashboard",
		Long: `Browse safe-to-spend, reserved funds, buckets, and the forecast in a
full-screen view. Press r to reload after editing from another terminal.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStorage(cmd, func(ctx context.Context, store service.Storage) error {
				return tui.Run(ctx,
					tui.WithLoader(store),
					tui.WithClock(clock),
					tui.WithForecastDays(appConfig.Forecast.Days),
				)
			})
		},
	}
}
