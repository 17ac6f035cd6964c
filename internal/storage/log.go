package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Veraticus/the-payday-must-flow/internal/model"
)

const logColumns = `id, created_at, kind, item_id, item_name, account_name, original_account_id,
	reverts_id, amount, reverted, prior_due_date, prior_paid, prior_cleared, has_snapshot`

func insertLogEntry(ctx context.Context, q queryable, e model.LogEntry) error {
	_, err := q.ExecContext(ctx, `INSERT INTO log_entries (`+logColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, logArgs(e)...)
	if err != nil {
		return fmt.Errorf("failed to append log entry %s: %w", e.ID, err)
	}
	return nil
}

func upsertLogEntry(ctx context.Context, q queryable, e model.LogEntry) error {
	_, err := q.ExecContext(ctx, `INSERT OR REPLACE INTO log_entries (`+logColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, logArgs(e)...)
	if err != nil {
		return fmt.Errorf("failed to import log entry %s: %w", e.ID, err)
	}
	return nil
}

func logArgs(e model.LogEntry) []any {
	return []any{e.ID, e.CreatedAt.UTC(), string(e.Kind), e.ItemID, e.ItemName, e.AccountName,
		e.OriginalAccountID, e.RevertsID, int64(e.Amount), e.Reverted, e.PriorDueDate,
		e.PriorPaid, e.PriorCleared, e.HasSnapshot}
}

// loadLog returns entries oldest first. A positive limit keeps only the
// newest limit entries.
func (s *SQLiteStorage) loadLog(ctx context.Context, q queryable, limit int) ([]model.LogEntry, error) {
	query := `SELECT ` + logColumns + ` FROM log_entries ORDER BY created_at, rowid`
	var args []any
	if limit > 0 {
		query = `SELECT * FROM (SELECT ` + logColumns + `, rowid AS seq FROM log_entries
			ORDER BY created_at DESC, rowid DESC LIMIT ?) ORDER BY created_at, seq`
		args = append(args, limit)
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query log: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []model.LogEntry
	for rows.Next() {
		var e model.LogEntry
		dest := []any{&e.ID, &e.CreatedAt, &e.Kind, &e.ItemID, &e.ItemName, &e.AccountName,
			&e.OriginalAccountID, &e.RevertsID, &e.Amount, &e.Reverted, &e.PriorDueDate,
			&e.PriorPaid, &e.PriorCleared, &e.HasSnapshot}
		if limit > 0 {
			var seq int64
			dest = append(dest, &seq)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan log entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// RecentLog returns up to limit of the newest log entries, oldest first.
func (s *SQLiteStorage) RecentLog(ctx context.Context, limit int) ([]model.LogEntry, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, nil
	}
	return s.loadLog(ctx, s.db, limit)
}

const transferColumns = `id, created_at, from_account_id, to_account_id, income_id, status, amount, allocations`

func upsertPendingTransfer(ctx context.Context, q queryable, t model.PendingTransfer) error {
	allocs, err := toJSON(t.Allocations, len(t.Allocations) == 0)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx, `INSERT OR REPLACE INTO pending_transfers (`+transferColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.CreatedAt.UTC(), t.FromAccountID, t.ToAccountID, t.IncomeID, string(t.Status), int64(t.Amount), allocs)
	if err != nil {
		return fmt.Errorf("failed to save pending transfer %s: %w", t.ID, err)
	}
	return nil
}

func (s *SQLiteStorage) loadPendingTransfers(ctx context.Context, q queryable) ([]model.PendingTransfer, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+transferColumns+` FROM pending_transfers ORDER BY created_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending transfers: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var transfers []model.PendingTransfer
	for rows.Next() {
		var t model.PendingTransfer
		var allocs sql.NullString
		if err := rows.Scan(&t.ID, &t.CreatedAt, &t.FromAccountID, &t.ToAccountID, &t.IncomeID,
			&t.Status, &t.Amount, &allocs); err != nil {
			return nil, fmt.Errorf("failed to scan pending transfer: %w", err)
		}
		if err := fromJSON(allocs, &t.Allocations); err != nil {
			return nil, fmt.Errorf("pending transfer %s allocations: %w", t.ID, err)
		}
		transfers = append(transfers, t)
	}
	return transfers, rows.Err()
}
