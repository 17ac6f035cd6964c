package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 4

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

func execAll(tx *sql.Tx, queries []string) error {
	for _, query := range queries {
		if _, err := tx.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}
	return nil
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			return execAll(tx, []string{
				`CREATE TABLE IF NOT EXISTS accounts (
					id TEXT PRIMARY KEY,
					name TEXT NOT NULL,
					kind TEXT NOT NULL,
					current_balance INTEGER NOT NULL DEFAULT 0,
					linked_account_id TEXT NOT NULL DEFAULT '',
					funded_from_id TEXT NOT NULL DEFAULT '',
					auto_config TEXT,
					interest_rate REAL,
					retirement_type TEXT NOT NULL DEFAULT '',
					deleted INTEGER NOT NULL DEFAULT 0,
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,

				`CREATE TABLE IF NOT EXISTS incomes (
					id TEXT PRIMARY KEY,
					name TEXT NOT NULL,
					amount INTEGER NOT NULL DEFAULT 0,
					frequency TEXT NOT NULL DEFAULT '',
					next_date TEXT NOT NULL DEFAULT '',
					account_id TEXT NOT NULL DEFAULT '',
					is_primary INTEGER NOT NULL DEFAULT 0,
					deleted INTEGER NOT NULL DEFAULT 0,
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,

				`CREATE TABLE IF NOT EXISTS partners (
					id TEXT PRIMARY KEY,
					name TEXT NOT NULL,
					pay_frequency TEXT NOT NULL DEFAULT '',
					next_pay_date TEXT NOT NULL DEFAULT '',
					deposit_account_id TEXT NOT NULL DEFAULT '',
					deleted INTEGER NOT NULL DEFAULT 0,
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,

				`CREATE TABLE IF NOT EXISTS buckets (
					id TEXT PRIMARY KEY,
					name TEXT NOT NULL,
					kind TEXT NOT NULL,
					amount INTEGER NOT NULL DEFAULT 0,
					current_balance INTEGER NOT NULL DEFAULT 0,
					frequency TEXT NOT NULL DEFAULT '',
					due_date TEXT NOT NULL DEFAULT '',
					account_id TEXT NOT NULL DEFAULT '',
					is_paid INTEGER NOT NULL DEFAULT 0,
					is_cleared INTEGER NOT NULL DEFAULT 0,
					split_config TEXT,
					debt_account_id TEXT NOT NULL DEFAULT '',
					target_balance INTEGER,
					savings_type TEXT NOT NULL DEFAULT '',
					exclude_from_payday INTEGER NOT NULL DEFAULT 0,
					is_essential INTEGER NOT NULL DEFAULT 0,
					is_subscription INTEGER NOT NULL DEFAULT 0,
					deleted INTEGER NOT NULL DEFAULT 0,
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					CHECK (is_cleared = 0 OR is_paid = 1)
				)`,
				`CREATE INDEX idx_buckets_account ON buckets(account_id)`,

				`CREATE TABLE IF NOT EXISTS log_entries (
					id TEXT PRIMARY KEY,
					created_at DATETIME NOT NULL,
					kind TEXT NOT NULL,
					item_id TEXT NOT NULL DEFAULT '',
					item_name TEXT NOT NULL DEFAULT '',
					account_name TEXT NOT NULL DEFAULT '',
					original_account_id TEXT NOT NULL DEFAULT '',
					reverts_id TEXT NOT NULL DEFAULT '',
					amount INTEGER NOT NULL DEFAULT 0,
					reverted INTEGER NOT NULL DEFAULT 0
				)`,
				`CREATE INDEX idx_log_created ON log_entries(created_at)`,

				`CREATE TABLE IF NOT EXISTS pending_transfers (
					id TEXT PRIMARY KEY,
					created_at DATETIME NOT NULL,
					from_account_id TEXT NOT NULL,
					to_account_id TEXT NOT NULL,
					income_id TEXT NOT NULL DEFAULT '',
					status TEXT NOT NULL DEFAULT 'pending',
					amount INTEGER NOT NULL DEFAULT 0,
					allocations TEXT
				)`,
			})
		},
	},
	{
		Version:     2,
		Description: "Add prior-state snapshot to log entries for exact undo",
		Up: func(tx *sql.Tx) error {
			return execAll(tx, []string{
				`ALTER TABLE log_entries ADD COLUMN prior_due_date TEXT NOT NULL DEFAULT ''`,
				`ALTER TABLE log_entries ADD COLUMN prior_paid INTEGER NOT NULL DEFAULT 0`,
				`ALTER TABLE log_entries ADD COLUMN prior_cleared INTEGER NOT NULL DEFAULT 0`,
				`ALTER TABLE log_entries ADD COLUMN has_snapshot INTEGER NOT NULL DEFAULT 0`,
			})
		},
	},
	{
		Version:     3,
		Description: "Add retirement tags and linked goal accounts to buckets",
		Up: func(tx *sql.Tx) error {
			return execAll(tx, []string{
				`ALTER TABLE buckets ADD COLUMN retirement_type TEXT NOT NULL DEFAULT ''`,
				`ALTER TABLE buckets ADD COLUMN is_pre_tax INTEGER NOT NULL DEFAULT 0`,
				`ALTER TABLE buckets ADD COLUMN linked_account_ids TEXT`,
				`CREATE INDEX idx_pending_status ON pending_transfers(status)`,
			})
		},
	},
	{
		Version:     4,
		Description: "Record the amount in transit on paid buckets",
		Up: func(tx *sql.Tx) error {
			return execAll(tx, []string{
				`ALTER TABLE buckets ADD COLUMN paid_amount INTEGER`,
			})
		},
	},
}

// Migrate brings the schema up to ExpectedSchemaVersion.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	// Get current version
	var currentVersion int
	err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	// Apply migrations
	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		// Update version
		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	// Verify we're at the expected schema version
	finalVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}

// SchemaVersion reports the database's current schema version.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to verify final schema version: %w", err)
	}
	return version, nil
}
