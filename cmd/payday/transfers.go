package main

import (
	"context"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/the-payday-must-flow/internal/cli"
	"github.com/Veraticus/the-payday-must-flow/internal/ledger"
	"github.com/Veraticus/the-payday-must-flow/internal/model"
	"github.com/Veraticus/the-payday-must-flow/internal/service"
)

func transfersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transfers",
		Short: "List and settle transfers still in flight",
		Long: `A transfer left pending at the end of a payday holds the allocations
meant for its destination account. Clear it once the money lands to
apply them, or void it to put the money back.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStorage(cmd, func(ctx context.Context, store service.Storage) error {
				return listTransfers(ctx, store, cmd.OutOrStdout())
			})
		},
	}

	cmd.AddCommand(resolveTransferCmd("clear", "Mark a transfer as landed and apply its allocations", true))
	cmd.AddCommand(resolveTransferCmd("void", "Cancel a transfer and refund its source account", false))

	return cmd
}

func resolveTransferCmd(use, short string, clear bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <transfer-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStorage(cmd, func(ctx context.Context, store service.Storage) error {
				return runResolveTransfer(ctx, store, cmd.OutOrStdout(), args[0], clear, clock.Now())
			})
		},
	}
}

func runResolveTransfer(ctx context.Context, store service.Storage, w io.Writer, id string, clear bool, now time.Time) error {
	snap, err := store.LoadSnapshot(ctx)
	if err != nil {
		return err
	}
	batch, err := ledger.ResolveTransfer(snap, id, clear, now)
	if err != nil {
		return err
	}
	if err := commit(ctx, store, batch); err != nil {
		return err
	}
	verb := "Voided"
	if clear {
		verb = "Cleared"
	}
	writeLine(w, cli.FormatSuccess(verb+" transfer "+id))
	return nil
}

func listTransfers(ctx context.Context, store service.Storage, w io.Writer) error {
	snap, err := store.LoadSnapshot(ctx)
	if err != nil {
		return err
	}

	var rows [][]string
	for _, t := range snap.PendingTransfers {
		if t.Status != model.TransferPending {
			continue
		}
		rows = append(rows, []string{
			t.ID,
			t.CreatedAt.Format("2006-01-02"),
			accountName(snap, t.FromAccountID),
			accountName(snap, t.ToAccountID),
			t.Amount.String(),
			cli.SubtleStyle.Render(deferredSummary(snap, t)),
		})
	}
	if len(rows) == 0 {
		writeLine(w, cli.FormatSuccess("No transfers in flight."))
		return nil
	}
	writeLine(w, cli.RenderTable([]string{"ID", "Started", "From", "To", "Amount", "Holds"}, rows))
	return nil
}

func deferredSummary(snap model.Snapshot, t model.PendingTransfer) string {
	if len(t.Allocations) == 0 {
		return "-"
	}
	s := ""
	for i, a := range t.Allocations {
		if i > 0 {
			s += ", "
		}
		name := a.BucketID
		if b, ok := snap.Bucket(a.BucketID); ok {
			name = b.Name
		}
		s += name + " " + a.Amount.String()
	}
	return s
}
