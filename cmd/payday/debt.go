package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/the-payday-must-flow/internal/cli"
	"github.com/Veraticus/the-payday-must-flow/internal/debt"
	"github.com/Veraticus/the-payday-must-flow/internal/model"
	"github.com/Veraticus/the-payday-must-flow/internal/service"
)

func debtCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "debt",
		Short: "Simulate paying off your cards and loans",
		Long: `Run a month-by-month payoff simulation over your credit and loan
accounts. Every debt gets its minimum payment; the extra amount goes to
the smallest balance (snowball) or the highest rate (avalanche).`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			schedule, _ := cmd.Flags().GetBool("schedule")
			opts := debt.Options{
				Today:    clock.Today(),
				Extra:    appConfig.Debt.Extra,
				Strategy: appConfig.Debt.Strategy,
				Cascade:  appConfig.Debt.Cascade,
			}
			return withStorage(cmd, func(ctx context.Context, store service.Storage) error {
				return runDebt(ctx, store, cmd.OutOrStdout(), opts, schedule)
			})
		},
	}

	cmd.Flags().String("strategy", string(debt.Snowball), "Payoff order (snowball, avalanche)")
	cmd.Flags().String("extra", "0", "Extra dollars per month beyond the minimums")
	cmd.Flags().Bool("cascade", false, "Roll leftover extra into the next debt in the same month")
	cmd.Flags().Bool("schedule", false, "Print the month-by-month schedule")

	_ = viper.BindPFlag("debt.strategy", cmd.Flags().Lookup("strategy"))
	_ = viper.BindPFlag("debt.extra", cmd.Flags().Lookup("extra"))
	_ = viper.BindPFlag("debt.cascade", cmd.Flags().Lookup("cascade"))

	return cmd
}

func runDebt(ctx context.Context, store service.Storage, w io.Writer, opts debt.Options, schedule bool) error {
	snap, err := store.LoadSnapshot(ctx)
	if err != nil {
		return err
	}
	debts := debt.FromAccounts(model.ActiveAccounts(snap.Accounts), model.ActiveBuckets(snap.Buckets))

	var rows [][]string
	names := make(map[string]string, len(debts))
	for _, d := range debts {
		names[d.ID] = d.Name
		if !d.Included {
			continue
		}
		rows = append(rows, []string{d.Name, dollars(d.Balance), d.Rate.StringFixed(2) + "%", dollars(d.MinimumPayment)})
	}
	if len(rows) == 0 {
		writeLine(w, cli.FormatSuccess("No debt to pay off."))
		return nil
	}
	writeLine(w, cli.RenderTable([]string{"Debt", "Balance", "APR", "Minimum"}, rows))

	res := debt.Simulate(debts, opts)

	if schedule {
		var months [][]string
		for _, m := range res.Schedule {
			var paid decimal.Decimal
			for _, p := range m.Payments {
				paid = paid.Add(p)
			}
			months = append(months, []string{m.Date.String(), names[m.Target], dollars(paid), dollars(m.Interest)})
		}
		writeLine(w, "")
		writeLine(w, cli.RenderTable([]string{"Month", "Focus", "Paid", "Interest"}, months))
	}

	order := make([]string, 0, len(res.PayoffOrder))
	for _, id := range res.PayoffOrder {
		order = append(order, names[id])
	}

	writeLine(w, "")
	if !res.DebtFree {
		writeLine(w, cli.FormatWarning(fmt.Sprintf("Not debt free after %d months at this rate (interest so far %s).",
			res.Months, dollars(res.TotalInterest))))
		return nil
	}
	summary := fmt.Sprintf("Strategy: %s\nDebt free: %s (%d months)\nTotal interest: %s\nPayoff order: %s",
		opts.Strategy, res.PayoffDate, res.Months, dollars(res.TotalInterest), strings.Join(order, " -> "))
	writeLine(w, cli.RenderBox("Payoff plan", summary))
	return nil
}

func dollars(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}
