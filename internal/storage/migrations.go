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

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`CREATE TABLE IF NOT EXISTS accounts (
					id TEXT PRIMARY KEY,
					name TEXT NOT NULL,
					type TEXT NOT NULL,
					balance TEXT NOT NULL DEFAULT '0',
					opening_balance TEXT NOT NULL DEFAULT '0',
					color TEXT,
					icon TEXT,
					details TEXT,
					created_at TEXT NOT NULL,
					updated_at TEXT NOT NULL
				)`,

				`CREATE TABLE IF NOT EXISTS transactions (
					id TEXT PRIMARY KEY,
					account_id TEXT NOT NULL,
					to_account_id TEXT,
					category_id TEXT,
					type TEXT NOT NULL,
					amount TEXT NOT NULL,
					description TEXT,
					date TEXT NOT NULL,
					time TEXT,
					status TEXT,
					label_ids TEXT,
					payee_ids TEXT,
					splits TEXT,
					item_name TEXT,
					warranty_until TEXT,
					planned_id TEXT,
					created_at TEXT NOT NULL,
					updated_at TEXT NOT NULL
				)`,
				`CREATE INDEX idx_transactions_account ON transactions(account_id)`,
				`CREATE INDEX idx_transactions_to_account ON transactions(to_account_id)`,
				`CREATE INDEX idx_transactions_date ON transactions(date)`,

				`CREATE TABLE IF NOT EXISTS categories (
					id TEXT PRIMARY KEY,
					name TEXT NOT NULL,
					type TEXT NOT NULL,
					color TEXT,
					icon TEXT,
					parent_id TEXT,
					created_at TEXT NOT NULL,
					updated_at TEXT NOT NULL
				)`,

				`CREATE TABLE IF NOT EXISTS labels (
					id TEXT PRIMARY KEY,
					name TEXT NOT NULL,
					color TEXT,
					created_at TEXT NOT NULL,
					updated_at TEXT NOT NULL
				)`,

				`CREATE TABLE IF NOT EXISTS contacts (
					id TEXT PRIMARY KEY,
					name TEXT NOT NULL,
					email TEXT,
					phone TEXT,
					notes TEXT,
					created_at TEXT NOT NULL,
					updated_at TEXT NOT NULL
				)`,

				`CREATE TABLE IF NOT EXISTS budgets (
					id TEXT PRIMARY KEY,
					name TEXT NOT NULL,
					amount TEXT NOT NULL,
					period TEXT NOT NULL,
					category_ids TEXT,
					start_date TEXT NOT NULL,
					end_date TEXT,
					created_at TEXT NOT NULL,
					updated_at TEXT NOT NULL
				)`,

				`CREATE TABLE IF NOT EXISTS goals (
					id TEXT PRIMARY KEY,
					name TEXT NOT NULL,
					target_amount TEXT NOT NULL,
					current_amount TEXT NOT NULL DEFAULT '0',
					target_date TEXT,
					account_id TEXT,
					created_at TEXT NOT NULL,
					updated_at TEXT NOT NULL
				)`,

				`CREATE TABLE IF NOT EXISTS planned_transactions (
					id TEXT PRIMARY KEY,
					account_id TEXT NOT NULL,
					to_account_id TEXT,
					category_id TEXT,
					type TEXT NOT NULL,
					amount TEXT NOT NULL,
					description TEXT,
					item_name TEXT,
					warranty_until TEXT,
					label_ids TEXT,
					payee_ids TEXT,
					scheduled_date TEXT NOT NULL,
					recurrence TEXT NOT NULL DEFAULT 'none',
					end_date TEXT,
					auto_create INTEGER NOT NULL DEFAULT 0,
					status TEXT NOT NULL DEFAULT 'pending',
					last_created_date TEXT,
					next_occurrence_date TEXT,
					notify INTEGER NOT NULL DEFAULT 0,
					notify_days_before INTEGER NOT NULL DEFAULT 0,
					created_at TEXT NOT NULL,
					updated_at TEXT NOT NULL
				)`,
				`CREATE INDEX idx_planned_status ON planned_transactions(status)`,

				`CREATE TABLE IF NOT EXISTS bills (
					id TEXT PRIMARY KEY,
					name TEXT NOT NULL,
					amount TEXT NOT NULL,
					category_id TEXT,
					account_id TEXT,
					payee_id TEXT,
					notes TEXT,
					due_date_type TEXT NOT NULL,
					due_date TEXT,
					due_day INTEGER NOT NULL DEFAULT 0,
					recurrence TEXT NOT NULL DEFAULT 'none',
					start_date TEXT,
					end_date TEXT,
					last_paid_date TEXT,
					last_paid_amount TEXT,
					next_due_date TEXT,
					status TEXT NOT NULL DEFAULT 'pending',
					auto_pay INTEGER NOT NULL DEFAULT 0,
					notify INTEGER NOT NULL DEFAULT 0,
					notify_days_before INTEGER NOT NULL DEFAULT 0,
					created_at TEXT NOT NULL,
					updated_at TEXT NOT NULL
				)`,
			)
		},
	},
	{
		Version:     2,
		Description: "Add checkpoint metadata table",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`CREATE TABLE IF NOT EXISTS checkpoint_metadata (
					id TEXT PRIMARY KEY,
					created_at DATETIME NOT NULL,
					description TEXT,
					file_size INTEGER,
					row_counts TEXT,
					schema_version INTEGER,
					is_auto BOOLEAN DEFAULT 0,
					parent_checkpoint TEXT
				)`,
				`CREATE INDEX idx_checkpoint_metadata_created_at ON checkpoint_metadata(created_at)`,
				`CREATE INDEX idx_checkpoint_metadata_is_auto ON checkpoint_metadata(is_auto)`,
			)
		},
	},
	{
		Version:     3,
		Description: "Add external IDs for imported transactions",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`ALTER TABLE transactions ADD COLUMN external_id TEXT NOT NULL DEFAULT ''`,
				`CREATE UNIQUE INDEX idx_transactions_external
					ON transactions(account_id, external_id) WHERE external_id <> ''`,
			)
		},
	},
	{
		Version:     4,
		Description: "Track the cycle settled by the last bill payment",
		Up: func(tx *sql.Tx) error {
			return execAll(tx, `ALTER TABLE bills ADD COLUMN paid_through TEXT`)
		},
	},
}

func execAll(tx *sql.Tx, queries ...string) error {
	for _, query := range queries {
		if _, err := tx.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query '%s': %w", query, err)
		}
	}
	return nil
}

// Migrate runs all pending database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	currentVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}

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

	finalVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}
	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}

// SchemaVersion reports the schema version recorded in the database.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}
