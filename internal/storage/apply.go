package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/Veraticus/the-payday-must-flow/internal/common"
	"github.com/Veraticus/the-payday-must-flow/internal/ledger"
	"github.com/Veraticus/the-payday-must-flow/internal/model"
)

// Apply executes every op in batch inside one transaction. A failed
// expectation (a bucket no longer in the expected state, an income already
// advanced past its pay date, a transfer that is no longer pending, an entry
// already reverted) aborts the whole batch with common.ErrConflict and
// nothing is written.
func (s *SQLiteStorage) Apply(ctx context.Context, batch ledger.Batch) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if batch.Empty() {
		return nil
	}

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		for i, op := range batch.Ops {
			if err := applyOp(ctx, tx, op); err != nil {
				return fmt.Errorf("op %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", batch.Name, err)
	}

	slog.Info("Applied batch", "name", batch.Name, "ops", len(batch.Ops))
	return nil
}

func applyOp(ctx context.Context, tx *sql.Tx, o ledger.Op) error {
	switch op := o.(type) {
	case ledger.AdjustAccountBalance:
		return execOne(ctx, tx, fmt.Errorf("account %s: %w", op.AccountID, common.ErrNotFound),
			`UPDATE accounts SET current_balance = current_balance + ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
			int64(op.Delta), op.AccountID)

	case ledger.AdjustBucketBalance:
		return execOne(ctx, tx, fmt.Errorf("bucket %s: %w", op.BucketID, common.ErrNotFound),
			`UPDATE buckets SET current_balance = current_balance + ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
			int64(op.Delta), op.BucketID)

	case ledger.SetBucketStatus:
		return execOne(ctx, tx, fmt.Errorf("bucket %s changed status: %w", op.BucketID, common.ErrConflict),
			`UPDATE buckets SET is_paid = ?, is_cleared = ?, paid_amount = ?, updated_at = CURRENT_TIMESTAMP
			 WHERE id = ? AND is_paid = ? AND is_cleared = ? AND paid_amount IS ?`,
			op.To.Paid, op.To.Cleared, nullCents(op.To.PaidAmount),
			op.BucketID, op.Expect.Paid, op.Expect.Cleared, nullCents(op.Expect.PaidAmount))

	case ledger.SetBucketDueDate:
		return execOne(ctx, tx, fmt.Errorf("bucket %s: %w", op.BucketID, common.ErrNotFound),
			`UPDATE buckets SET due_date = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
			op.DueDate, op.BucketID)

	case ledger.SetIncomeNextDate:
		return execOne(ctx, tx, fmt.Errorf("income %s moved off %s: %w", op.IncomeID, op.Expect, common.ErrConflict),
			`UPDATE incomes SET next_date = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND next_date = ?`,
			op.NextDate, op.IncomeID, op.Expect)

	case ledger.SetPartnerNextPayDate:
		return execOne(ctx, tx, fmt.Errorf("partner %s moved off %s: %w", op.PartnerID, op.Expect, common.ErrConflict),
			`UPDATE partners SET next_pay_date = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND next_pay_date = ?`,
			op.NextPayDate, op.PartnerID, op.Expect)

	case ledger.CreatePendingTransfer:
		return insertPendingTransfer(ctx, tx, op.Transfer)

	case ledger.ResolvePendingTransfer:
		return execOne(ctx, tx, fmt.Errorf("transfer %s is not pending: %w", op.TransferID, common.ErrConflict),
			`UPDATE pending_transfers SET status = ? WHERE id = ? AND status = ?`,
			string(op.Status), op.TransferID, string(model.TransferPending))

	case ledger.AppendLog:
		return insertLogEntry(ctx, tx, op.Entry)

	case ledger.MarkLogReverted:
		return execOne(ctx, tx, fmt.Errorf("log entry %s already reverted: %w", op.EntryID, common.ErrConflict),
			`UPDATE log_entries SET reverted = 1 WHERE id = ? AND reverted = 0`, op.EntryID)

	default:
		return fmt.Errorf("unsupported op %T: %w", o, common.ErrInvalidState)
	}
}

func insertPendingTransfer(ctx context.Context, q queryable, t model.PendingTransfer) error {
	allocs, err := toJSON(t.Allocations, len(t.Allocations) == 0)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx, `INSERT INTO pending_transfers (`+transferColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.CreatedAt.UTC(), t.FromAccountID, t.ToAccountID, t.IncomeID, string(t.Status), int64(t.Amount), allocs)
	if err != nil {
		return fmt.Errorf("failed to create pending transfer %s: %w", t.ID, err)
	}
	return nil
}
