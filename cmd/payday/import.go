package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Veraticus/the-payday-must-flow/internal/cli"
	"github.com/Veraticus/the-payday-must-flow/internal/config"
	"github.com/Veraticus/the-payday-must-flow/internal/model"
	"github.com/Veraticus/the-payday-must-flow/internal/payday"
	"github.com/Veraticus/the-payday-must-flow/internal/service"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <snapshot.json>",
		Short: "Import accounts, incomes, buckets, and partners from JSON",
		Long: `Load a JSON snapshot of your records into the local database.

Records are upserted by id, so importing the same file twice is safe.
The whole file is written in one transaction; if any record is invalid
nothing is saved.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dryRun, _ := cmd.Flags().GetBool("dry-run")

			f, err := os.Open(config.ExpandPath(args[0]))
			if err != nil {
				return fmt.Errorf("failed to open snapshot: %w", err)
			}
			defer func() { _ = f.Close() }()

			snap, err := decodeSnapshot(f)
			if err != nil {
				return err
			}
			if dryRun {
				return describeSnapshot(cmd.OutOrStdout(), snap)
			}

			return withStorage(cmd, func(ctx context.Context, store service.Storage) error {
				return runImport(ctx, store, snap, cmd.ErrOrStderr(), cmd.OutOrStdout())
			})
		},
	}

	cmd.Flags().Bool("dry-run", false, "Validate the file and show what would be imported")

	return cmd
}

func decodeSnapshot(r io.Reader) (model.Snapshot, error) {
	var snap model.Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return model.Snapshot{}, fmt.Errorf("failed to parse snapshot: %w", err)
	}
	return snap, nil
}

func describeSnapshot(w io.Writer, snap model.Snapshot) error {
	if err := payday.ValidateFundingGraph(snap.Accounts); err != nil {
		return err
	}
	rows := [][]string{
		{"Accounts", fmt.Sprint(len(snap.Accounts))},
		{"Incomes", fmt.Sprint(len(snap.Incomes))},
		{"Buckets", fmt.Sprint(len(snap.Buckets))},
		{"Partners", fmt.Sprint(len(snap.Partners))},
		{"Log entries", fmt.Sprint(len(snap.Log))},
		{"Pending transfers", fmt.Sprint(len(snap.PendingTransfers))},
	}
	writeLine(w, cli.RenderTable([]string{"Records", "Count"}, rows))
	return nil
}

func runImport(ctx context.Context, store service.Storage, snap model.Snapshot, progressOut, out io.Writer) error {
	progress := cli.NewImportProgress(progressOut, "Importing")
	if err := store.Import(ctx, snap, progress); err != nil {
		return err
	}
	writeLine(out, cli.FormatSuccess(fmt.Sprintf("Imported %d accounts, %d incomes, %d buckets, %d partners",
		len(snap.Accounts), len(snap.Incomes), len(snap.Buckets), len(snap.Partners))))
	return nil
}
