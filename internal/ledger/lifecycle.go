package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Veraticus/the-payday-must-flow/internal/calendar"
	"github.com/Veraticus/the-payday-must-flow/internal/common"
	"github.com/Veraticus/the-payday-must-flow/internal/model"
	"github.com/Veraticus/the-payday-must-flow/internal/money"
)

var (
	// ErrAlreadyPaid is returned when marking a paid bucket paid again.
	ErrAlreadyPaid = errors.New("bucket already paid")
	// ErrNotPaid is returned when clearing a bucket that was never paid.
	ErrNotPaid = errors.New("bucket not paid")
	// ErrAlreadyCleared is returned when clearing a cleared bucket.
	ErrAlreadyCleared = errors.New("bucket already cleared")
	// ErrNotUndoable is returned for log entries undo does not apply to.
	ErrNotUndoable = errors.New("entry cannot be undone")
	// ErrAlreadyReverted is returned when undoing an entry twice.
	ErrAlreadyReverted = errors.New("entry already reverted")
	// ErrNotPending is returned when resolving a transfer that already landed.
	ErrNotPending = errors.New("transfer not pending")
)

func stateOf(b model.Bucket) BucketState {
	return BucketState{Paid: b.IsPaid, Cleared: b.IsCleared, PaidAmount: b.PaidAmount}
}

func inTransit(amount money.Cents) BucketState {
	return BucketState{Paid: true, PaidAmount: &amount}
}

func findBucket(snap *model.Snapshot, id string) (model.Bucket, error) {
	b, ok := snap.Bucket(id)
	if !ok {
		return model.Bucket{}, fmt.Errorf("bucket %s: %w", id, common.ErrNotFound)
	}
	return b, nil
}

func newEntry(kind model.LogKind, b model.Bucket, acct model.Account, now time.Time) model.LogEntry {
	return model.LogEntry{
		ID:                uuid.NewString(),
		CreatedAt:         now,
		Kind:              kind,
		ItemID:            b.ID,
		ItemName:          b.Name,
		AccountName:       acct.Name,
		OriginalAccountID: b.AccountID,
		Amount:            b.CurrentBalance,
		PriorDueDate:      b.DueDate,
		PriorPaid:         b.IsPaid,
		PriorCleared:      b.IsCleared,
		HasSnapshot:       true,
	}
}

// MarkPaid moves an unpaid bucket into transit. Its balance at this moment
// is recorded as the paid amount; it stops counting as reserved and starts
// counting as pending.
func MarkPaid(snap model.Snapshot, bucketID string, now time.Time) (Batch, error) {
	b, err := findBucket(&snap, bucketID)
	if err != nil {
		return Batch{}, err
	}
	if b.IsPaid {
		return Batch{}, fmt.Errorf("%s: %w", b.Name, ErrAlreadyPaid)
	}
	acct, _ := snap.Account(b.AccountID)

	batch := Batch{Name: "mark paid " + b.Name}
	batch.Add(
		SetBucketStatus{BucketID: b.ID, Expect: stateOf(b), To: inTransit(b.CurrentBalance)},
		AppendLog{Entry: newEntry(model.LogBillPaid, b, acct, now)},
	)
	return batch, nil
}

// Clear reconciles a paid bucket against its account: the account and the
// bucket are debited by the amount in transit. Anything allocated to the
// bucket after it was paid stays for the next cycle. A recurring bucket
// then rolls to its next cycle, unpaid; a one-time bucket stays paid and
// cleared.
func Clear(snap model.Snapshot, bucketID string, now time.Time) (Batch, error) {
	b, err := findBucket(&snap, bucketID)
	if err != nil {
		return Batch{}, err
	}
	switch {
	case !b.IsPaid:
		return Batch{}, fmt.Errorf("%s: %w", b.Name, ErrNotPaid)
	case b.IsCleared:
		return Batch{}, fmt.Errorf("%s: %w", b.Name, ErrAlreadyCleared)
	}
	acct, hasAccount := snap.Account(b.AccountID)

	paid := b.InTransitAmount()
	batch := Batch{Name: "clear " + b.Name}
	if hasAccount && paid != 0 {
		batch.Add(AdjustAccountBalance{AccountID: acct.ID, Delta: -paid})
	}
	if paid != 0 {
		batch.Add(AdjustBucketBalance{BucketID: b.ID, Delta: -paid})
	}

	to := BucketState{Paid: true, Cleared: true}
	if b.Frequency.Recurring() {
		to = BucketState{}
		if !b.DueDate.IsZero() {
			batch.Add(SetBucketDueDate{BucketID: b.ID, DueDate: calendar.Next(b.DueDate, b.Frequency)})
		}
	}
	entry := newEntry(model.LogBillCleared, b, acct, now)
	entry.Amount = paid
	batch.Add(
		SetBucketStatus{BucketID: b.ID, Expect: stateOf(b), To: to},
		AppendLog{Entry: entry},
	)
	return batch, nil
}

// Undo reverts a bill_paid or bill_cleared entry with a compensating
// mutation. The original entry is flagged reverted, never edited, and a
// reverted entry is appended.
//
// Entries carrying a prior-state snapshot are restored exactly, due date
// included. Older entries without one get the lossy fallback: status and
// balances come back, but a recurring bill keeps its advanced due date.
func Undo(snap model.Snapshot, entryID string, now time.Time) (Batch, error) {
	entry, ok := snap.LogEntry(entryID)
	if !ok {
		return Batch{}, fmt.Errorf("log entry %s: %w", entryID, common.ErrNotFound)
	}
	if entry.Reverted {
		return Batch{}, fmt.Errorf("%s: %w", entry.ItemName, ErrAlreadyReverted)
	}
	if !entry.Kind.Undoable() {
		return Batch{}, fmt.Errorf("%s entry: %w", entry.Kind, ErrNotUndoable)
	}
	b, err := findBucket(&snap, entry.ItemID)
	if err != nil {
		return Batch{}, err
	}

	batch := Batch{Name: "undo " + string(entry.Kind) + " " + entry.ItemName}
	switch entry.Kind {
	case model.LogBillPaid:
		if !b.InTransit() {
			return Batch{}, fmt.Errorf("%s is no longer in transit: %w", b.Name, common.ErrInvalidState)
		}
		batch.Add(SetBucketStatus{BucketID: b.ID, Expect: stateOf(b), To: BucketState{}})

	case model.LogBillCleared:
		if b.InTransit() {
			return Batch{}, fmt.Errorf("%s was paid again since clearing: %w", b.Name, common.ErrInvalidState)
		}
		// Only an in-transit bucket can be cleared, so the prior state is
		// always in transit for the cleared amount.
		if entry.HasSnapshot && !entry.PriorDueDate.IsZero() && !entry.PriorDueDate.Equal(b.DueDate) {
			batch.Add(SetBucketDueDate{BucketID: b.ID, DueDate: entry.PriorDueDate})
		}
		if entry.Amount != 0 {
			batch.Add(AdjustBucketBalance{BucketID: b.ID, Delta: entry.Amount})
			if _, ok := snap.Account(entry.OriginalAccountID); ok {
				batch.Add(AdjustAccountBalance{AccountID: entry.OriginalAccountID, Delta: entry.Amount})
			}
		}
		batch.Add(SetBucketStatus{BucketID: b.ID, Expect: stateOf(b), To: inTransit(entry.Amount)})
	}

	batch.Add(
		MarkLogReverted{EntryID: entry.ID},
		AppendLog{Entry: model.LogEntry{
			ID:                uuid.NewString(),
			CreatedAt:         now,
			Kind:              model.LogReverted,
			ItemID:            entry.ItemID,
			ItemName:          entry.ItemName,
			AccountName:       entry.AccountName,
			OriginalAccountID: entry.OriginalAccountID,
			RevertsID:         entry.ID,
			Amount:            entry.Amount,
		}},
	)
	return batch, nil
}

// ResolveTransfer settles a pending transfer. Clearing credits the
// destination and applies the deferred allocations. Voiding refunds the
// source, which was debited when the transfer was committed, and drops
// the allocations.
func ResolveTransfer(snap model.Snapshot, transferID string, clear bool, now time.Time) (Batch, error) {
	pt, ok := snap.PendingTransfer(transferID)
	if !ok {
		return Batch{}, fmt.Errorf("transfer %s: %w", transferID, common.ErrNotFound)
	}
	if pt.Status != model.TransferPending {
		return Batch{}, fmt.Errorf("transfer %s is %s: %w", pt.ID, pt.Status, ErrNotPending)
	}

	kind := model.LogTransferVoided
	status := model.TransferSkipped
	account := pt.FromAccountID
	if clear {
		kind = model.LogTransferCleared
		status = model.TransferCleared
		account = pt.ToAccountID
	}

	batch := Batch{Name: string(kind) + " " + pt.ID}
	batch.Add(ResolvePendingTransfer{TransferID: pt.ID, Status: status})
	acct, hasAccount := snap.Account(account)
	if hasAccount {
		batch.Add(AdjustAccountBalance{AccountID: account, Delta: pt.Amount})
	}
	if clear {
		for _, a := range pt.Allocations {
			if _, ok := snap.Bucket(a.BucketID); !ok {
				continue
			}
			batch.Add(AdjustBucketBalance{BucketID: a.BucketID, Delta: a.Amount})
		}
	}
	batch.Add(AppendLog{Entry: model.LogEntry{
		ID:                uuid.NewString(),
		CreatedAt:         now,
		Kind:              kind,
		ItemID:            pt.ID,
		ItemName:          "transfer",
		AccountName:       acct.Name,
		OriginalAccountID: account,
		Amount:            pt.Amount,
	}})
	return batch, nil
}
