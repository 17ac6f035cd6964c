// Package service defines the interfaces for all application services.
package service

import (
	"context"

	"github.com/Veraticus/the-payday-must-flow/internal/ledger"
	"github.com/Veraticus/the-payday-must-flow/internal/model"
)

// ImportProgress is called after each record an import writes.
type ImportProgress func(done, total int)

// Storage defines the contract for our persistence layer.
type Storage interface {
	// LoadSnapshot reads every record, tombstones included.
	LoadSnapshot(ctx context.Context) (model.Snapshot, error)

	// Record editing. Deletes are soft.
	SaveAccount(ctx context.Context, account *model.Account) error
	SaveIncome(ctx context.Context, income *model.Income) error
	SaveBucket(ctx context.Context, bucket *model.Bucket) error
	SavePartner(ctx context.Context, partner *model.Partner) error
	DeleteAccount(ctx context.Context, id string) error
	DeleteIncome(ctx context.Context, id string) error
	DeleteBucket(ctx context.Context, id string) error
	DeletePartner(ctx context.Context, id string) error

	// Import upserts a whole snapshot in one transaction.
	Import(ctx context.Context, snap model.Snapshot, progress ImportProgress) error

	// Apply runs every op of a batch in one transaction. Compare-and-set
	// failures reject the whole batch with common.ErrConflict.
	Apply(ctx context.Context, batch ledger.Batch) error

	// RecentLog returns up to limit of the newest log entries, oldest first.
	RecentLog(ctx context.Context, limit int) ([]model.LogEntry, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}
