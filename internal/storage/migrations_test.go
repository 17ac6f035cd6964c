package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/the-payday-must-flow/internal/money"
)

func TestMigrate_ReachesExpectedVersion(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	version, err := store.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, ExpectedSchemaVersion, version)

	// Running again is a no-op.
	require.NoError(t, store.Migrate(ctx))
	version, err = store.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, ExpectedSchemaVersion, version)
}

func TestMigrate_CreatesIndexes(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	for _, name := range []string{"idx_buckets_account", "idx_log_created", "idx_pending_status"} {
		var count int
		err := store.db.QueryRow(`
			SELECT COUNT(*) FROM sqlite_master
			WHERE type='index' AND name=?
		`, name).Scan(&count)
		require.NoError(t, err)
		assert.Equal(t, 1, count, name)
	}
}

func TestMigrate_UpgradesVersionOneDatabase(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "old.db")

	store, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)

	tx, err := store.db.BeginTx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, migrations[0].Up(tx))
	_, err = tx.Exec("PRAGMA user_version = 1")
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	_, err = store.db.Exec(`INSERT INTO log_entries (id, created_at, kind, item_id, amount)
		VALUES ('legacy', '2024-01-01 00:00:00', 'bill_cleared', 'rent', 150000)`)
	require.NoError(t, err)
	_, err = store.db.Exec(`INSERT INTO buckets (id, name, kind, current_balance, is_paid)
		VALUES ('rent', 'Rent', 'bill', 150000, 1)`)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store, err = NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	require.NoError(t, store.Migrate(ctx))

	snap, err := store.LoadSnapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Log, 1)
	assert.False(t, snap.Log[0].HasSnapshot, "legacy entries undo lossily")
	assert.True(t, snap.Log[0].PriorDueDate.IsZero())

	rent, ok := snap.Bucket("rent")
	require.True(t, ok)
	assert.Nil(t, rent.PaidAmount)
	assert.Equal(t, money.Cents(150000), rent.InTransitAmount(), "paid before amounts were recorded")
}

func TestBucketStatusCheckConstraint(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	_, err := store.db.Exec(`INSERT INTO buckets (id, name, kind, is_paid, is_cleared) VALUES ('b', 'B', 'bill', 0, 1)`)
	assert.Error(t, err)
}
