package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/the-payday-must-flow/internal/calendar"
	"github.com/Veraticus/the-payday-must-flow/internal/common"
	"github.com/Veraticus/the-payday-must-flow/internal/ledger"
	"github.com/Veraticus/the-payday-must-flow/internal/model"
	"github.com/Veraticus/the-payday-must-flow/internal/service"
	"github.com/Veraticus/the-payday-must-flow/internal/storage"
)

// clock decides "today" for every command.
var clock calendar.Clock = calendar.SystemClock{}

// initStorage opens the configured database and brings its schema up to date.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(appConfig.Database.Path)
	if err != nil {
		return nil, err
	}

	// Run migrations
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// withStorage runs fn against an open store and closes it afterwards.
func withStorage(cmd *cobra.Command, fn func(ctx context.Context, store service.Storage) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Warn("Failed to close database", "error", closeErr)
		}
	}()
	return fn(ctx, store)
}

// commit applies batch and translates a lost race into a message the user
// can act on.
func commit(ctx context.Context, store service.Storage, batch ledger.Batch) error {
	if err := store.Apply(ctx, batch); err != nil {
		if errors.Is(err, common.ErrConflict) {
			return common.NewUserError("Something changed while you were working. Nothing was saved; run the command again.", err)
		}
		return err
	}
	return nil
}

// findBucket matches an active bucket by id, then by case-insensitive name.
func findBucket(snap model.Snapshot, ref string) (model.Bucket, error) {
	buckets := model.ActiveBuckets(snap.Buckets)
	for _, b := range buckets {
		if b.ID == ref {
			return b, nil
		}
	}
	for _, b := range buckets {
		if strings.EqualFold(b.Name, ref) {
			return b, nil
		}
	}
	return model.Bucket{}, fmt.Errorf("bucket %q: %w", ref, common.ErrNotFound)
}

// findAccount matches an active account by id, then by case-insensitive name.
func findAccount(snap model.Snapshot, ref string) (model.Account, error) {
	accounts := model.ActiveAccounts(snap.Accounts)
	for _, a := range accounts {
		if a.ID == ref {
			return a, nil
		}
	}
	for _, a := range accounts {
		if strings.EqualFold(a.Name, ref) {
			return a, nil
		}
	}
	return model.Account{}, fmt.Errorf("account %q: %w", ref, common.ErrNotFound)
}

func accountName(snap model.Snapshot, id string) string {
	if id == "" {
		return "-"
	}
	for _, a := range snap.Accounts {
		if a.ID == id {
			return a.Name
		}
	}
	return id
}

func writeLine(w io.Writer, s string) {
	if _, err := fmt.Fprintln(w, s); err != nil {
		slog.Warn("Failed to write output", "error", err)
	}
}

// liveSnapshot drops tombstoned records.
func liveSnapshot(snap model.Snapshot) model.Snapshot {
	live := snap
	live.Accounts = model.ActiveAccounts(snap.Accounts)
	live.Incomes = model.ActiveIncomes(snap.Incomes)
	live.Buckets = model.ActiveBuckets(snap.Buckets)
	live.Partners = nil
	for _, p := range snap.Partners {
		if !p.Deleted {
			live.Partners = append(live.Partners, p)
		}
	}
	return live
}
