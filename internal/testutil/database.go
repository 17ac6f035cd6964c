// Package testutil provides test databases seeded with payday records.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/the-payday-must-flow/internal/model"
	"github.com/Veraticus/the-payday-must-flow/internal/storage"
)

// TestDB represents a test database with associated test utilities.
type TestDB struct {
	Storage *storage.SQLiteStorage
	t       *testing.T
}

// SetupTestDB creates a migrated in-memory database holding snap. The
// database is closed when the test ends.
//
// Example:
//
//	db := testutil.SetupTestDB(t, fixtures.NewBuilder().
//		WithChecking("chk", "Checking", 300000).
//		Build())
func SetupTestDB(t *testing.T, snap model.Snapshot) *TestDB {
	t.Helper()

	// Create in-memory SQLite storage
	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	// Register cleanup
	t.Cleanup(func() {
		if closeErr := store.Close(); closeErr != nil {
			t.Logf("failed to close test database: %v", closeErr)
		}
	})

	// Run migrations
	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	if err := store.Import(ctx, snap, nil); err != nil {
		t.Fatalf("failed to seed snapshot: %v", err)
	}

	return &TestDB{Storage: store, t: t}
}

// MustLoad returns the current snapshot or fails the test.
func (db *TestDB) MustLoad() model.Snapshot {
	db.t.Helper()
	snap, err := db.Storage.LoadSnapshot(context.Background())
	if err != nil {
		db.t.Fatalf("failed to load snapshot: %v", err)
	}
	return snap
}

// MustAccount returns the active account with id or fails the test.
func (db *TestDB) MustAccount(id string) model.Account {
	db.t.Helper()
	snap := db.MustLoad()
	a, ok := snap.Account(id)
	if !ok {
		db.t.Fatalf("account %q not found", id)
	}
	return a
}

// MustBucket returns the active bucket with id or fails the test.
func (db *TestDB) MustBucket(id string) model.Bucket {
	db.t.Helper()
	snap := db.MustLoad()
	b, ok := snap.Bucket(id)
	if !ok {
		db.t.Fatalf("bucket %q not found", id)
	}
	return b
}

// MustIncome returns the active income with id or fails the test.
func (db *TestDB) MustIncome(id string) model.Income {
	db.t.Helper()
	snap := db.MustLoad()
	in, ok := snap.Income(id)
	if !ok {
		db.t.Fatalf("income %q not found", id)
	}
	return in
}
