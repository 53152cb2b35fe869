package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/service"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// queryable is satisfied by both *sql.DB and *sql.Tx.
type queryable interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLiteStorage implements service.Gateway using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	tx     *sql.Tx
	dbPath string
}

var _ service.Gateway = (*SQLiteStorage)(nil)

// NewSQLiteStorage creates a new SQLite storage instance.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	dsn := dbPath
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dsn = dbPath + "?_journal_mode=WAL&_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection also keeps an in-memory database alive and shared.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStorage{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *SQLiteStorage) Path() string {
	return s.dbPath
}

// NewCheckpointManager creates a new checkpoint manager for this storage instance.
func (s *SQLiteStorage) NewCheckpointManager() (*CheckpointManager, error) {
	return NewCheckpointManager(s.db, s.dbPath)
}

// WithTx runs fn against a gateway bound to a single database transaction.
// The transaction commits only if fn succeeds. Nested calls join the
// enclosing transaction.
func (s *SQLiteStorage) WithTx(ctx context.Context, fn func(service.Gateway) error) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if s.tx != nil {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(&SQLiteStorage{db: s.db, tx: tx, dbPath: s.dbPath}); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// inTx runs fn inside the current transaction, or a new one when the
// storage is not already bound to a transaction.
func (s *SQLiteStorage) inTx(ctx context.Context, fn func(queryable) error) error {
	if s.tx != nil {
		return fn(s.tx)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) queryer() queryable {
	if s.tx != nil {
		return s.tx
	}
	return s.db
}

// Accounts returns the account collection.
func (s *SQLiteStorage) Accounts() service.Collection[model.Account] {
	return newCollection(s, accountCodec)
}

// Transactions returns the transaction collection.
func (s *SQLiteStorage) Transactions() service.Collection[model.Transaction] {
	return newCollection(s, transactionCodec)
}

// Categories returns the category collection.
func (s *SQLiteStorage) Categories() service.Collection[model.Category] {
	return newCollection(s, categoryCodec)
}

// Labels returns the label collection.
func (s *SQLiteStorage) Labels() service.Collection[model.Label] {
	return newCollection(s, labelCodec)
}

// Contacts returns the contact collection.
func (s *SQLiteStorage) Contacts() service.Collection[model.Contact] {
	return newCollection(s, contactCodec)
}

// Budgets returns the budget collection.
func (s *SQLiteStorage) Budgets() service.Collection[model.Budget] {
	return newCollection(s, budgetCodec)
}

// Goals returns the goal collection.
func (s *SQLiteStorage) Goals() service.Collection[model.Goal] {
	return newCollection(s, goalCodec)
}

// PlannedTransactions returns the planned transaction collection.
func (s *SQLiteStorage) PlannedTransactions() service.Collection[model.PlannedTransaction] {
	return newCollection(s, plannedCodec)
}

// Bills returns the bill collection.
func (s *SQLiteStorage) Bills() service.Collection[model.Bill] {
	return newCollection(s, billCodec)
}
