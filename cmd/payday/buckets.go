package main

import (
	"context"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/the-payday-must-flow/internal/cli"
	"github.com/Veraticus/the-payday-must-flow/internal/model"
	"github.com/Veraticus/the-payday-must-flow/internal/service"
)

func bucketsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "buckets",
		Short: "List bills, spending pools, savings goals, and debt payments",
		RunE: func(cmd *cobra.Command, _ []string) error {
			kind, _ := cmd.Flags().GetString("kind")
			return withStorage(cmd, func(ctx context.Context, store service.Storage) error {
				return listBuckets(ctx, store, cmd.OutOrStdout(), model.BucketKind(strings.ToLower(kind)))
			})
		},
	}

	cmd.Flags().String("kind", "", "Only show one kind (bill, variable, savings, debt, loan)")
	cmd.AddCommand(bucketsDeleteCmd())

	return cmd
}

func bucketsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <bucket>",
		Short: "Delete a bucket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStorage(cmd, func(ctx context.Context, store service.Storage) error {
				snap, err := store.LoadSnapshot(ctx)
				if err != nil {
					return err
				}
				b, err := findBucket(snap, args[0])
				if err != nil {
					return err
				}
				if err := store.DeleteBucket(ctx, b.ID); err != nil {
					return err
				}
				writeLine(cmd.OutOrStdout(), cli.FormatSuccess("Deleted "+b.Name))
				return nil
			})
		},
	}
}

func bucketStatus(b model.Bucket) string {
	switch {
	case b.IsCleared:
		return cli.SubtleStyle.Render("cleared")
	case b.IsPaid:
		return cli.WarningStyle.Render("in transit")
	case b.OwedOnly():
		return cli.SubtleStyle.Render("owed")
	default:
		return "open"
	}
}

func listBuckets(ctx context.Context, store service.Storage, w io.Writer, kind model.BucketKind) error {
	snap, err := store.LoadSnapshot(ctx)
	if err != nil {
		return err
	}

	var rows [][]string
	for _, b := range model.ActiveBuckets(snap.Buckets) {
		if kind != "" && b.Kind != kind {
			continue
		}
		due := "-"
		if !b.DueDate.IsZero() {
			due = b.DueDate.String()
		}
		target := b.Amount.String()
		if b.TargetBalance != nil {
			target = b.TargetBalance.String()
		}
		rows = append(rows, []string{
			b.ID,
			b.Name,
			string(b.Kind),
			accountName(snap, b.AccountID),
			due,
			cli.FormatMoney(b.CurrentBalance),
			target,
			bucketStatus(b),
		})
	}
	if len(rows) == 0 {
		writeLine(w, cli.FormatInfo("No buckets found."))
		return nil
	}
	writeLine(w, cli.RenderTable([]string{"ID", "Bucket", "Kind", "Account", "Due", "Balance", "Target", "Status"}, rows))
	return nil
}
