package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/the-payday-must-flow/internal/calendar"
	"github.com/Veraticus/the-payday-must-flow/internal/cli"
	"github.com/Veraticus/the-payday-must-flow/internal/common"
	"github.com/Veraticus/the-payday-must-flow/internal/ledger"
	"github.com/Veraticus/the-payday-must-flow/internal/model"
	"github.com/Veraticus/the-payday-must-flow/internal/partner"
	"github.com/Veraticus/the-payday-must-flow/internal/payday"
	"github.com/Veraticus/the-payday-must-flow/internal/service"
)

func ritualCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ritual [income]",
		Short: "Allocate a paycheck across your buckets",
		Long: `Walk through a paycheck: confirm the amount, review the suggested
allocation to each bill and goal, settle the transfers needed to move
the money, then audit the resulting balances and commit.

Without an argument the next scheduled paycheck is used. Nothing is
written until you commit, and the commit is all or nothing.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref := ""
			if len(args) == 1 {
				ref = args[0]
			}
			return withStorage(cmd, func(ctx context.Context, store service.Storage) error {
				return runRitual(ctx, store, cmd.InOrStdin(), cmd.OutOrStdout(), ref, clock.Today(), clock.Now())
			})
		},
	}
}

func runRitual(ctx context.Context, store service.Storage, in io.Reader, out io.Writer, ref string, today calendar.Date, now time.Time) error {
	stored, err := store.LoadSnapshot(ctx)
	if err != nil {
		return err
	}
	snap := liveSnapshot(stored)

	income, err := pickIncome(partner.WithVirtualIncomes(snap.Incomes, snap.Partners, snap.Buckets), ref)
	if err != nil {
		return err
	}
	r, err := payday.Start(snap, income.ID, today, appConfig.PaydayOptions())
	if err != nil {
		return err
	}

	handler := cli.NewInterruptHandler(out)
	ctx = handler.HandleInterrupts(ctx)

	prompter := cli.NewRitualPrompter(in, out, snap.Accounts)
	outcome, err := prompter.Run(ctx, r, now)
	if err != nil {
		if handler.WasInterrupted() {
			return nil
		}
		if errors.Is(err, io.EOF) {
			return common.NewUserError("Input ended before the payday was committed. Nothing was saved.", err)
		}
		return err
	}

	var batch ledger.Batch
	var done string
	switch o := outcome.(type) {
	case payday.Completed:
		batch = o.Batch
		done = fmt.Sprintf("Payday committed for %s.", income.Name)
		if n := len(o.PendingTransfers); n > 0 {
			done += fmt.Sprintf(" %d transfer(s) pending; run 'payday transfers' once they land.", n)
		}
	case payday.Skipped:
		batch = o.Batch
		done = fmt.Sprintf("Skipped %s; deposit recorded and next payday scheduled.", income.Name)
	default:
		writeLine(out, cli.FormatInfo("Cancelled. Nothing was saved."))
		return nil
	}

	handler.SetCommitting(true)
	defer handler.SetCommitting(false)
	if err := commit(ctx, store, batch); err != nil {
		return err
	}
	slog.Info("Payday recorded", "income", income.ID, "ops", len(batch.Ops))
	writeLine(out, cli.FormatSuccess(done))
	return nil
}

// pickIncome matches ref by id or name. An empty ref picks the income with
// the earliest scheduled date, preferring the primary one on ties.
func pickIncome(incomes []model.Income, ref string) (model.Income, error) {
	if ref != "" {
		for _, in := range incomes {
			if in.ID == ref || strings.EqualFold(in.Name, ref) {
				return in, nil
			}
		}
		return model.Income{}, fmt.Errorf("income %q: %w", ref, common.ErrNotFound)
	}

	var best model.Income
	found := false
	for _, in := range incomes {
		if in.NextDate.IsZero() {
			continue
		}
		switch {
		case !found:
		case in.NextDate.Before(best.NextDate):
		case in.NextDate.Equal(best.NextDate) && in.IsPrimary && !best.IsPrimary:
		default:
			continue
		}
		best, found = in, true
	}
	if !found {
		return model.Income{}, fmt.Errorf("no scheduled income: %w", common.ErrNotFound)
	}
	return best, nil
}
