package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/the-payday-must-flow/internal/calendar"
	"github.com/Veraticus/the-payday-must-flow/internal/cli"
	"github.com/Veraticus/the-payday-must-flow/internal/forecast"
	"github.com/Veraticus/the-payday-must-flow/internal/model"
	"github.com/Veraticus/the-payday-must-flow/internal/partner"
	"github.com/Veraticus/the-payday-must-flow/internal/service"
)

func forecastCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Project your cash balance day by day",
		Long: `Walk forward from today adding scheduled paychecks and subtracting
bills on their due dates, starting from your checking and savings
balances. The lowest point is flagged so you can see trouble coming.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			all, _ := cmd.Flags().GetBool("all")
			return withStorage(cmd, func(ctx context.Context, store service.Storage) error {
				return runForecast(ctx, store, cmd.OutOrStdout(), clock.Today(), appConfig.Forecast.Days, all)
			})
		},
	}

	cmd.Flags().Int("days", forecast.DefaultDays, "Days to project (1-90)")
	cmd.Flags().Bool("all", false, "Show every day, not just days with activity")

	_ = viper.BindPFlag("forecast.days", cmd.Flags().Lookup("days"))

	return cmd
}

func runForecast(ctx context.Context, store service.Storage, w io.Writer, today calendar.Date, days int, all bool) error {
	snap, err := store.LoadSnapshot(ctx)
	if err != nil {
		return err
	}
	buckets := model.ActiveBuckets(snap.Buckets)
	points := forecast.Project(forecast.Input{
		Today:    today,
		Accounts: model.ActiveAccounts(snap.Accounts),
		Incomes:  partner.WithVirtualIncomes(model.ActiveIncomes(snap.Incomes), snap.Partners, buckets),
		Buckets:  buckets,
		Days:     days,
	})

	var rows [][]string
	for _, p := range points {
		if !all && p.Net == 0 {
			continue
		}
		change := "-"
		if p.Net != 0 {
			change = cli.FormatMoney(p.Net)
		}
		rows = append(rows, []string{p.Date.String(), change, cli.FormatMoney(p.Balance)})
	}
	writeLine(w, cli.FormatTitle(fmt.Sprintf("%s Forecast for the next %d days", cli.ChartIcon, len(points))))
	if len(rows) == 0 {
		writeLine(w, cli.FormatInfo("Nothing scheduled."))
	} else {
		writeLine(w, cli.RenderTable([]string{"Date", "Change", "Balance"}, rows))
	}

	if low, ok := forecast.LowPoint(points); ok {
		msg := fmt.Sprintf("Lowest balance %s on %s", low.Balance, low.Date)
		if low.Balance < 0 {
			writeLine(w, cli.FormatWarning(msg))
		} else {
			writeLine(w, cli.FormatInfo(msg))
		}
	}
	return nil
}
