package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFileStorage(t *testing.T) (*SQLiteStorage, string) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "tally.db")
	store, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Migrate(context.Background()))

	t.Cleanup(func() {
		_ = store.Close()
	})
	return store, dbPath
}

func TestCheckpoint_InMemoryRejected(t *testing.T) {
	store := newTestStorage(t)
	_, err := store.NewCheckpointManager()
	assert.ErrorIs(t, err, ErrCheckpointInMemory)
}

func TestCheckpoint_CreateListDelete(t *testing.T) {
	ctx := context.Background()
	store, _ := newFileStorage(t)
	require.NoError(t, store.Accounts().Add(ctx, testAccount("a1")))
	require.NoError(t, store.Transactions().Add(ctx, testTransaction("t1", "a1")))

	cm, err := store.NewCheckpointManager()
	require.NoError(t, err)

	info, err := cm.Create(ctx, "before-import", "manual snapshot")
	require.NoError(t, err)
	assert.Equal(t, "before-import", info.ID)
	assert.Equal(t, 1, info.Accounts)
	assert.Equal(t, 1, info.Transactions)
	assert.Equal(t, ExpectedSchemaVersion, info.SchemaVersion)
	assert.False(t, info.IsAuto)
	assert.Positive(t, info.FileSize)

	_, err = cm.Create(ctx, "before-import", "again")
	assert.ErrorIs(t, err, ErrCheckpointExists)

	list, err := cm.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "manual snapshot", list[0].Description)

	got, err := cm.Info(ctx, "before-import")
	require.NoError(t, err)
	assert.Equal(t, info.ID, got.ID)

	require.NoError(t, cm.Delete(ctx, "before-import"))
	assert.ErrorIs(t, cm.Delete(ctx, "before-import"), ErrCheckpointNotFound)

	list, err = cm.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCheckpoint_InvalidIDs(t *testing.T) {
	ctx := context.Background()
	store, _ := newFileStorage(t)
	cm, err := store.NewCheckpointManager()
	require.NoError(t, err)

	for _, id := range []string{"../escape", "a/b", `a\b`, "quote'd"} {
		_, err := cm.Create(ctx, id, "")
		assert.ErrorIs(t, err, ErrInvalidCheckpointID, id)
		assert.ErrorIs(t, cm.Restore(ctx, id), ErrInvalidCheckpointID, id)
	}
}

func TestCheckpoint_AutoCheckpointPrunes(t *testing.T) {
	ctx := context.Background()
	store, _ := newFileStorage(t)
	cm, err := store.NewCheckpointManager()
	require.NoError(t, err)

	current := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	cm.now = func() time.Time {
		current = current.Add(time.Minute)
		return current
	}

	for range maxAutoCheckpoints + 2 {
		require.NoError(t, cm.AutoCheckpoint(ctx, "process"))
	}
	_, err = cm.Create(ctx, "manual", "kept")
	require.NoError(t, err)

	list, err := cm.List(ctx)
	require.NoError(t, err)

	auto := 0
	for _, cp := range list {
		if cp.IsAuto {
			auto++
		}
	}
	assert.Equal(t, maxAutoCheckpoints, auto)
	assert.Len(t, list, maxAutoCheckpoints+1)
	assert.Equal(t, "manual", list[0].ID)
}

func TestCheckpoint_Restore(t *testing.T) {
	ctx := context.Background()
	store, dbPath := newFileStorage(t)
	require.NoError(t, store.Accounts().Add(ctx, testAccount("a1")))

	cm, err := store.NewCheckpointManager()
	require.NoError(t, err)
	_, err = cm.Create(ctx, "one-account", "")
	require.NoError(t, err)

	require.NoError(t, store.Accounts().Add(ctx, testAccount("a2")))
	require.NoError(t, cm.Restore(ctx, "one-account"))

	reopened, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	defer func() {
		_ = reopened.Close()
	}()

	accounts, err := reopened.Accounts().GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "a1", accounts[0].ID)
}
