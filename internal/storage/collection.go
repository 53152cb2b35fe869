package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"

	"github.com/Veraticus/tally/internal/common"
)

type rowScanner interface {
	Scan(dest ...any) error
}

// entityCodec maps one entity type onto its table. columns[0] is the
// primary key and values must return arguments in column order.
type entityCodec[E any] struct {
	id      func(E) string
	values  func(E) ([]any, error)
	scan    func(rowScanner) (E, error)
	table   string
	orderBy string
	columns []string
}

type collection[E any] struct {
	store *SQLiteStorage
	codec entityCodec[E]
}

func newCollection[E any](store *SQLiteStorage, codec entityCodec[E]) *collection[E] {
	return &collection[E]{store: store, codec: codec}
}

func (c *collection[E]) selectSQL() string {
	return "SELECT " + strings.Join(c.codec.columns, ", ") + " FROM " + c.codec.table
}

func (c *collection[E]) insertSQL() string {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(c.codec.columns)), ", ")
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		c.codec.table, strings.Join(c.codec.columns, ", "), placeholders)
}

func (c *collection[E]) updateSQL() string {
	sets := make([]string, 0, len(c.codec.columns)-1)
	for _, col := range c.codec.columns[1:] {
		sets = append(sets, col+" = ?")
	}
	return fmt.Sprintf("UPDATE %s SET %s WHERE %s = ?",
		c.codec.table, strings.Join(sets, ", "), c.codec.columns[0])
}

// GetAll returns every record in the collection.
func (c *collection[E]) GetAll(ctx context.Context) ([]E, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := c.selectSQL()
	if c.codec.orderBy != "" {
		query += " ORDER BY " + c.codec.orderBy
	}

	rows, err := c.store.queryer().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", c.codec.table, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	items := []E{}
	for rows.Next() {
		item, err := c.codec.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", c.codec.table, err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s: %w", c.codec.table, err)
	}
	return items, nil
}

// Get returns the record with the given id.
func (c *collection[E]) Get(ctx context.Context, id string) (*E, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := c.store.queryer().QueryRowContext(ctx,
		c.selectSQL()+" WHERE "+c.codec.columns[0]+" = ?", id)
	item, err := c.codec.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s %s: %w", c.codec.table, id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s %s: %w", c.codec.table, id, err)
	}
	return &item, nil
}

// SaveAll replaces the whole collection with items.
func (c *collection[E]) SaveAll(ctx context.Context, items []E) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return c.store.inTx(ctx, func(q queryable) error {
		if _, err := q.ExecContext(ctx, "DELETE FROM "+c.codec.table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", c.codec.table, err)
		}
		for _, item := range items {
			if err := c.insert(ctx, q, item); err != nil {
				return err
			}
		}
		return nil
	})
}

// Add inserts a new record.
func (c *collection[E]) Add(ctx context.Context, item E) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return c.insert(ctx, c.store.queryer(), item)
}

// Update replaces an existing record.
func (c *collection[E]) Update(ctx context.Context, item E) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return c.update(ctx, c.store.queryer(), item)
}

// UpdateMany replaces several records atomically.
func (c *collection[E]) UpdateMany(ctx context.Context, items []E) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	return c.store.inTx(ctx, func(q queryable) error {
		for _, item := range items {
			if err := c.update(ctx, q, item); err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete permanently removes the record with the given id.
func (c *collection[E]) Delete(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	result, err := c.store.queryer().ExecContext(ctx,
		"DELETE FROM "+c.codec.table+" WHERE "+c.codec.columns[0]+" = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete %s %s: %w", c.codec.table, id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete of %s %s: %w", c.codec.table, id, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s %s: %w", c.codec.table, id, common.ErrNotFound)
	}
	return nil
}

func (c *collection[E]) insert(ctx context.Context, q queryable, item E) error {
	args, err := c.codec.values(item)
	if err != nil {
		return fmt.Errorf("failed to encode %s %s: %w", c.codec.table, c.codec.id(item), err)
	}
	if _, err := q.ExecContext(ctx, c.insertSQL(), args...); err != nil {
		if isConstraintViolation(err) {
			return fmt.Errorf("%s %s: %w", c.codec.table, c.codec.id(item), common.ErrDuplicateEntry)
		}
		return fmt.Errorf("failed to insert %s %s: %w", c.codec.table, c.codec.id(item), err)
	}
	return nil
}

func (c *collection[E]) update(ctx context.Context, q queryable, item E) error {
	args, err := c.codec.values(item)
	if err != nil {
		return fmt.Errorf("failed to encode %s %s: %w", c.codec.table, c.codec.id(item), err)
	}
	// Key moves from the first column to the WHERE clause.
	args = append(args[1:], args[0])

	result, err := q.ExecContext(ctx, c.updateSQL(), args...)
	if err != nil {
		if isConstraintViolation(err) {
			return fmt.Errorf("%s %s: %w", c.codec.table, c.codec.id(item), common.ErrDuplicateEntry)
		}
		return fmt.Errorf("failed to update %s %s: %w", c.codec.table, c.codec.id(item), err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update of %s %s: %w", c.codec.table, c.codec.id(item), err)
	}
	if affected == 0 {
		return fmt.Errorf("%s %s: %w", c.codec.table, c.codec.id(item), common.ErrNotFound)
	}
	return nil
}

func isConstraintViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrConstraint
	}
	return false
}
