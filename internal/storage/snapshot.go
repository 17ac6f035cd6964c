package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/the-payday-must-flow/internal/model"
	"github.com/Veraticus/the-payday-must-flow/internal/payday"
	"github.com/Veraticus/the-payday-must-flow/internal/service"
)

var _ service.Storage = (*SQLiteStorage)(nil)

// LoadSnapshot reads every record, tombstones included, in one consistent
// read transaction.
func (s *SQLiteStorage) LoadSnapshot(ctx context.Context) (model.Snapshot, error) {
	if err := validateContext(ctx); err != nil {
		return model.Snapshot{}, err
	}

	var snap model.Snapshot
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var err error
		if snap.Accounts, err = s.loadAccounts(ctx, tx); err != nil {
			return err
		}
		if snap.Incomes, err = s.loadIncomes(ctx, tx); err != nil {
			return err
		}
		if snap.Buckets, err = s.loadBuckets(ctx, tx); err != nil {
			return err
		}
		if snap.Partners, err = s.loadPartners(ctx, tx); err != nil {
			return err
		}
		if snap.Log, err = s.loadLog(ctx, tx, 0); err != nil {
			return err
		}
		snap.PendingTransfers, err = s.loadPendingTransfers(ctx, tx)
		return err
	})
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("failed to load snapshot: %w", err)
	}
	return snap, nil
}

// Import upserts every record in snap inside a single transaction. Derived
// partner incomes are skipped. progress, if set, is called after each record.
func (s *SQLiteStorage) Import(ctx context.Context, snap model.Snapshot, progress service.ImportProgress) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	for i := range snap.Accounts {
		if err := validateAccount(&snap.Accounts[i]); err != nil {
			return err
		}
	}
	for i := range snap.Buckets {
		if err := validateBucket(&snap.Buckets[i]); err != nil {
			return err
		}
	}
	for i := range snap.Partners {
		if err := validatePartner(&snap.Partners[i]); err != nil {
			return err
		}
	}

	total := len(snap.Accounts) + len(snap.Incomes) + len(snap.Buckets) + len(snap.Partners) +
		len(snap.Log) + len(snap.PendingTransfers)
	start := time.Now()

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		existing, err := s.loadAccounts(ctx, tx)
		if err != nil {
			return err
		}
		for _, a := range snap.Accounts {
			existing = replaceAccount(existing, a)
		}
		if err := payday.ValidateFundingGraph(existing); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidAccount, err)
		}

		done := 0
		step := func() {
			done++
			if progress != nil {
				progress(done, total)
			}
		}

		for i := range snap.Accounts {
			if err := s.saveAccountTx(ctx, tx, &snap.Accounts[i]); err != nil {
				return err
			}
			step()
		}
		for i := range snap.Incomes {
			in := &snap.Incomes[i]
			if !in.IsDerived {
				if err := validateIncome(in); err != nil {
					return err
				}
				if err := s.saveIncomeTx(ctx, tx, in); err != nil {
					return err
				}
			}
			step()
		}
		for i := range snap.Buckets {
			if err := s.saveBucketTx(ctx, tx, &snap.Buckets[i]); err != nil {
				return err
			}
			step()
		}
		for i := range snap.Partners {
			if err := s.savePartnerTx(ctx, tx, &snap.Partners[i]); err != nil {
				return err
			}
			step()
		}
		for i := range snap.Log {
			if err := upsertLogEntry(ctx, tx, snap.Log[i]); err != nil {
				return err
			}
			step()
		}
		for i := range snap.PendingTransfers {
			if err := upsertPendingTransfer(ctx, tx, snap.PendingTransfers[i]); err != nil {
				return err
			}
			step()
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	slog.Info("Imported snapshot",
		"accounts", len(snap.Accounts),
		"incomes", len(snap.Incomes),
		"buckets", len(snap.Buckets),
		"partners", len(snap.Partners),
		"log_entries", len(snap.Log),
		"duration", time.Since(start))
	return nil
}
