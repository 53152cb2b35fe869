// Package testutil provides shared test helpers: a migrated in-memory
// database, entity fixtures, and a gateway that injects write failures.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/tally/internal/storage"
)

// TestDB is a migrated in-memory database scoped to one test.
type TestDB struct {
	Storage *storage.SQLiteStorage
	t       *testing.T
}

// SetupTestDB creates a new in-memory test database seeded with fixtures.
// Migrations and cleanup are handled automatically.
//
// Example:
//
//	db := testutil.SetupTestDB(t, testutil.NewFixtures().
//		WithAccount(testutil.Account("checking", "100")))
func SetupTestDB(t *testing.T, fixtures *Fixtures) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	if fixtures != nil {
		if err := fixtures.Seed(ctx, store); err != nil {
			t.Fatalf("failed to seed fixtures: %v", err)
		}
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return &TestDB{Storage: store, t: t}
}
