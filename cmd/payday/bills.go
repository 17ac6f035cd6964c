package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/the-payday-must-flow/internal/cli"
	"github.com/Veraticus/the-payday-must-flow/internal/common"
	"github.com/Veraticus/the-payday-must-flow/internal/ledger"
	"github.com/Veraticus/the-payday-must-flow/internal/model"
	"github.com/Veraticus/the-payday-must-flow/internal/service"
)

// recentLogLimit bounds how far back undo looks.
const recentLogLimit = 20

func payCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pay <bucket>",
		Short: "Mark a bill as paid",
		Long: `Mark a bucket as paid. Its balance moves from reserved to pending
until you clear it against the account.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStorage(cmd, func(ctx context.Context, store service.Storage) error {
				return runBucketAction(ctx, store, cmd.OutOrStdout(), args[0], ledger.MarkPaid, "Paid", clock.Now())
			})
		},
	}
}

func clearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear <bucket>",
		Short: "Clear a paid bill against its account",
		Long: `Reconcile a paid bucket: the account is debited by the bucket's
balance and the bucket is emptied. Recurring bills roll forward to their
next due date.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStorage(cmd, func(ctx context.Context, store service.Storage) error {
				return runBucketAction(ctx, store, cmd.OutOrStdout(), args[0], ledger.Clear, "Cleared", clock.Now())
			})
		},
	}
}

func undoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "undo [entry-id]",
		Short: "Undo the last pay or clear",
		Long: `Revert a pay or clear. Without an id the most recent entry that can
still be undone is reverted. The original entry is kept and flagged.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, _ := cmd.Flags().GetBool("list")
			return withStorage(cmd, func(ctx context.Context, store service.Storage) error {
				if list {
					return listLog(ctx, store, cmd.OutOrStdout())
				}
				id := ""
				if len(args) == 1 {
					id = args[0]
				}
				return runUndo(ctx, store, cmd.OutOrStdout(), id, clock.Now())
			})
		},
	}

	cmd.Flags().Bool("list", false, "Show recent history instead of undoing")

	return cmd
}

type bucketAction func(snap model.Snapshot, bucketID string, now time.Time) (ledger.Batch, error)

func runBucketAction(ctx context.Context, store service.Storage, w io.Writer, ref string, action bucketAction, verb string, now time.Time) error {
	snap, err := store.LoadSnapshot(ctx)
	if err != nil {
		return err
	}
	b, err := findBucket(snap, ref)
	if err != nil {
		return err
	}
	batch, err := action(snap, b.ID, now)
	if err != nil {
		return err
	}
	if err := commit(ctx, store, batch); err != nil {
		return err
	}
	writeLine(w, cli.FormatSuccess(fmt.Sprintf("%s %s (%s)", verb, b.Name, b.CurrentBalance)))
	return nil
}

func runUndo(ctx context.Context, store service.Storage, w io.Writer, id string, now time.Time) error {
	if id == "" {
		entries, err := store.RecentLog(ctx, recentLogLimit)
		if err != nil {
			return err
		}
		for i := len(entries) - 1; i >= 0; i-- {
			if e := entries[i]; e.Kind.Undoable() && !e.Reverted {
				id = e.ID
				break
			}
		}
		if id == "" {
			return fmt.Errorf("nothing to undo: %w", common.ErrNotFound)
		}
	}

	snap, err := store.LoadSnapshot(ctx)
	if err != nil {
		return err
	}
	batch, err := ledger.Undo(snap, id, now)
	if err != nil {
		return err
	}
	if err := commit(ctx, store, batch); err != nil {
		return err
	}
	entry, _ := snap.LogEntry(id)
	writeLine(w, cli.FormatSuccess(fmt.Sprintf("Undid %s %s", entry.Kind, entry.ItemName)))
	return nil
}

func listLog(ctx context.Context, store service.Storage, w io.Writer) error {
	entries, err := store.RecentLog(ctx, recentLogLimit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		writeLine(w, cli.FormatInfo("No history yet."))
		return nil
	}
	rows := make([][]string, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		state := ""
		if e.Reverted {
			state = cli.SubtleStyle.Render("reverted")
		}
		rows = append(rows, []string{
			e.ID,
			e.CreatedAt.Local().Format("2006-01-02 15:04"),
			string(e.Kind),
			e.ItemName,
			e.Amount.String(),
			state,
		})
	}
	writeLine(w, cli.RenderTable([]string{"ID", "When", "What", "Item", "Amount", ""}, rows))
	return nil
}
