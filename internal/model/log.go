package model

import (
	"time"

	"github.com/Veraticus/the-payday-must-flow/internal/calendar"
	"github.com/Veraticus/the-payday-must-flow/internal/money"
)

// LogKind names what a log entry records.
type LogKind string

// Log kinds.
const (
	LogBillPaid        LogKind = "bill_paid"
	LogBillCleared     LogKind = "bill_cleared"
	LogReverted        LogKind = "reverted"
	LogPayday          LogKind = "payday"
	LogPaydaySkipped   LogKind = "payday_skipped"
	LogTransferCleared LogKind = "transfer_cleared"
	LogTransferVoided  LogKind = "transfer_voided"
)

// Undoable reports whether entries of this kind can be reverted.
func (k LogKind) Undoable() bool {
	return k == LogBillPaid || k == LogBillCleared
}

// LogEntry is an append-only audit record. Undo never edits an entry's
// amounts; it marks the entry reverted and appends a compensating entry.
type LogEntry struct {
	CreatedAt         time.Time   `json:"createdAt"`
	ID                string      `json:"id"`
	Kind              LogKind     `json:"type"`
	ItemID            string      `json:"itemId"`
	ItemName          string      `json:"itemName"`
	AccountName       string      `json:"accountName"`
	OriginalAccountID string      `json:"originalAccountId"`
	// RevertsID points a compensating entry at the entry it undid.
	RevertsID string      `json:"revertsId,omitempty"`
	Amount    money.Cents `json:"amount"`
	// Prior* hold the bucket state the forward mutation replaced, so undo can
	// restore it exactly.
	PriorDueDate calendar.Date `json:"priorDueDate"`
	HasSnapshot  bool          `json:"hasSnapshot"`
	PriorPaid    bool          `json:"priorPaid"`
	PriorCleared bool          `json:"priorCleared"`
	Reverted     bool          `json:"reverted"`
}

// TransferStatus is the tri-state status of a transfer edge.
type TransferStatus string

// Transfer statuses, cycled pending -> cleared -> skipped -> pending.
const (
	TransferPending TransferStatus = "pending"
	TransferCleared TransferStatus = "cleared"
	TransferSkipped TransferStatus = "skipped"
)

// Next returns the status after one click.
func (s TransferStatus) Next() TransferStatus {
	switch s {
	case TransferPending:
		return TransferCleared
	case TransferCleared:
		return TransferSkipped
	default:
		return TransferPending
	}
}

// DeferredAllocation is a bucket allocation waiting on a transfer to land.
type DeferredAllocation struct {
	BucketID string      `json:"bucketId"`
	Amount   money.Cents `json:"amount"`
}

// PendingTransfer is a committed transfer still in transit. Its allocations
// are applied exactly once, when the transfer clears.
type PendingTransfer struct {
	CreatedAt     time.Time            `json:"createdAt"`
	ID            string               `json:"id"`
	FromAccountID string               `json:"fromAccountId"`
	ToAccountID   string               `json:"toAccountId"`
	IncomeID      string               `json:"incomeId"`
	Status        TransferStatus       `json:"status"`
	Allocations   []DeferredAllocation `json:"allocations,omitempty"`
	Amount        money.Cents          `json:"amount"`
}
