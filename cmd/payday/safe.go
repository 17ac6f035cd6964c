package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Veraticus/the-payday-must-flow/internal/cli"
	"github.com/Veraticus/the-payday-must-flow/internal/model"
	"github.com/Veraticus/the-payday-must-flow/internal/reserve"
	"github.com/Veraticus/the-payday-must-flow/internal/service"
)

func safeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "safe",
		Short: "Show how much is safe to spend right now",
		Long: `Safe-to-spend is what sits in your checking accounts after every
earmarked bucket balance is set aside. Money reserved for bills paid
from a credit card is held in the checking account that pays the card.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			verbose, _ := cmd.Flags().GetBool("verbose")
			return withStorage(cmd, func(ctx context.Context, store service.Storage) error {
				return runSafe(ctx, store, cmd.OutOrStdout(), verbose)
			})
		},
	}

	cmd.Flags().BoolP("verbose", "v", false, "Show every reserved bucket")

	return cmd
}

func runSafe(ctx context.Context, store service.Storage, w io.Writer, verbose bool) error {
	snap, err := store.LoadSnapshot(ctx)
	if err != nil {
		return err
	}
	accounts := model.ActiveAccounts(snap.Accounts)
	strategy, summary := reserve.Compute(accounts, model.ActiveBuckets(snap.Buckets))

	rows := make([][]string, 0, len(summary.Accounts))
	for _, a := range summary.Accounts {
		r := strategy.For(a.AccountID)
		rows = append(rows, []string{
			a.Name,
			a.Balance.String(),
			r.Required.String(),
			r.Pending.String(),
			r.HeldForCredit.String(),
			cli.FormatMoney(a.Free),
		})
	}
	writeLine(w, cli.RenderTable([]string{"Account", "Balance", "Required", "Pending", "For cards", "Free"}, rows))

	if verbose {
		var items [][]string
		for _, id := range strategy.AccountIDs() {
			for _, it := range strategy.For(id).Items {
				via := "-"
				if it.ViaAccountID != "" {
					via = accountName(snap, it.ViaAccountID)
				}
				items = append(items, []string{accountName(snap, id), it.Name, string(it.Status), via, it.Amount.String()})
			}
		}
		if len(items) > 0 {
			writeLine(w, "")
			writeLine(w, cli.RenderTable([]string{"Held in", "Bucket", "Status", "Via", "Amount"}, items))
		}
	}

	writeLine(w, "")
	writeLine(w, cli.RenderBox(cli.MoneyIcon+" Safe to spend", cli.FormatMoney(summary.SafeToSpend)))
	for _, a := range summary.Accounts {
		if a.Free < 0 {
			writeLine(w, cli.FormatWarning(fmt.Sprintf("%s is short %s", a.Name, a.Free.Abs())))
		}
	}
	return nil
}
