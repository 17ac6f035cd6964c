// Package ledger describes record mutations and builds them for the bill
// lifecycle (pay, clear, undo) and for pending transfers.
//
// Nothing here performs I/O. Every operation returns a Batch, and the
// persistence layer applies a Batch atomically or not at all.
package ledger

import (
	"github.com/Veraticus/the-payday-must-flow/internal/calendar"
	"github.com/Veraticus/the-payday-must-flow/internal/model"
	"github.com/Veraticus/the-payday-must-flow/internal/money"
)

// Op is a single record mutation.
type Op interface {
	op()
}

// AdjustAccountBalance adds Delta to an account's balance.
type AdjustAccountBalance struct {
	AccountID string
	Delta     money.Cents
}

// AdjustBucketBalance adds Delta to a bucket's balance.
type AdjustBucketBalance struct {
	BucketID string
	Delta    money.Cents
}

// BucketState is a bucket's paid/cleared pair and, while it is in transit,
// the amount that was paid.
type BucketState struct {
	PaidAmount *money.Cents
	Paid       bool
	Cleared    bool
}

// SetBucketStatus moves a bucket from Expect to To. The store must reject
// the whole batch when the bucket is no longer in Expect.
type SetBucketStatus struct {
	BucketID string
	Expect   BucketState
	To       BucketState
}

// SetBucketDueDate replaces a bucket's due date.
type SetBucketDueDate struct {
	DueDate  calendar.Date
	BucketID string
}

// SetIncomeNextDate advances an income from Expect to NextDate. The store
// must reject the batch when the income no longer sits on Expect, so a
// payday is committed at most once.
type SetIncomeNextDate struct {
	Expect   calendar.Date
	NextDate calendar.Date
	IncomeID string
}

// SetPartnerNextPayDate advances a partner's pay date from Expect to
// NextPayDate, with the same expectation as SetIncomeNextDate.
type SetPartnerNextPayDate struct {
	Expect      calendar.Date
	NextPayDate calendar.Date
	PartnerID   string
}

// CreatePendingTransfer records a transfer still in transit.
type CreatePendingTransfer struct {
	Transfer model.PendingTransfer
}

// ResolvePendingTransfer moves a pending transfer to a final status. The
// store must reject the batch unless the transfer is still pending.
type ResolvePendingTransfer struct {
	TransferID string
	Status     model.TransferStatus
}

// AppendLog adds an audit entry.
type AppendLog struct {
	Entry model.LogEntry
}

// MarkLogReverted flags an entry as undone. The store must reject the batch
// if the entry was already reverted.
type MarkLogReverted struct {
	EntryID string
}

func (AdjustAccountBalance) op()   {}
func (AdjustBucketBalance) op()    {}
func (SetBucketStatus) op()        {}
func (SetBucketDueDate) op()       {}
func (SetIncomeNextDate) op()      {}
func (SetPartnerNextPayDate) op()  {}
func (CreatePendingTransfer) op()  {}
func (ResolvePendingTransfer) op() {}
func (AppendLog) op()              {}
func (MarkLogReverted) op()        {}

// Batch is the set of mutations making up one logical operation.
type Batch struct {
	// Name identifies the operation in logs and error messages.
	Name string
	Ops  []Op
}

// Add appends ops to the batch.
func (b *Batch) Add(ops ...Op) {
	b.Ops = append(b.Ops, ops...)
}

// Empty reports whether the batch has nothing to apply.
func (b Batch) Empty() bool {
	return len(b.Ops) == 0
}

// Apply replays b over an in-memory snapshot, returning the updated copy.
// It mirrors what the store does and is used for previews and tests; it
// does not enforce the compare-and-set expectations.
func Apply(snap model.Snapshot, b Batch) model.Snapshot {
	out := model.Snapshot{
		Accounts:         append([]model.Account(nil), snap.Accounts...),
		Incomes:          append([]model.Income(nil), snap.Incomes...),
		Buckets:          append([]model.Bucket(nil), snap.Buckets...),
		Partners:         append([]model.Partner(nil), snap.Partners...),
		Log:              append([]model.LogEntry(nil), snap.Log...),
		PendingTransfers: append([]model.PendingTransfer(nil), snap.PendingTransfers...),
	}

	for _, o := range b.Ops {
		switch op := o.(type) {
		case AdjustAccountBalance:
			for i := range out.Accounts {
				if out.Accounts[i].ID == op.AccountID {
					out.Accounts[i].CurrentBalance += op.Delta
				}
			}
		case AdjustBucketBalance:
			for i := range out.Buckets {
				if out.Buckets[i].ID == op.BucketID {
					out.Buckets[i].CurrentBalance += op.Delta
				}
			}
		case SetBucketStatus:
			for i := range out.Buckets {
				if out.Buckets[i].ID == op.BucketID {
					out.Buckets[i].IsPaid = op.To.Paid
					out.Buckets[i].IsCleared = op.To.Cleared
					out.Buckets[i].PaidAmount = op.To.PaidAmount
				}
			}
		case SetBucketDueDate:
			for i := range out.Buckets {
				if out.Buckets[i].ID == op.BucketID {
					out.Buckets[i].DueDate = op.DueDate
				}
			}
		case SetIncomeNextDate:
			for i := range out.Incomes {
				if out.Incomes[i].ID == op.IncomeID {
					out.Incomes[i].NextDate = op.NextDate
				}
			}
		case SetPartnerNextPayDate:
			for i := range out.Partners {
				if out.Partners[i].ID == op.PartnerID {
					out.Partners[i].NextPayDate = op.NextPayDate
				}
			}
		case CreatePendingTransfer:
			out.PendingTransfers = append(out.PendingTransfers, op.Transfer)
		case ResolvePendingTransfer:
			for i := range out.PendingTransfers {
				if out.PendingTransfers[i].ID == op.TransferID {
					out.PendingTransfers[i].Status = op.Status
				}
			}
		case AppendLog:
			out.Log = append(out.Log, op.Entry)
		case MarkLogReverted:
			for i := range out.Log {
				if out.Log[i].ID == op.EntryID {
					out.Log[i].Reverted = true
				}
			}
		}
	}
	return out
}
