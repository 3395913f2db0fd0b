package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestSQLite(t *testing.T) *SQLiteStore {
	// Use in-memory database for tests
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)

	require.NoError(t, store.RunMigrations())
	t.Cleanup(func() { store.Close() })

	return store
}

func TestSQLiteGet_NotFound(t *testing.T) {
	store := setupTestSQLite(t)

	value, err := store.Get(context.Background(), "token")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, value)
}

func TestSQLiteSet_ThenGet(t *testing.T) {
	store := setupTestSQLite(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "token", "abc"))

	value, err := store.Get(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, "abc", value)
}

func TestSQLiteSet_Overwrites(t *testing.T) {
	store := setupTestSQLite(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "token", "first"))
	require.NoError(t, store.Set(ctx, "token", "second"))

	value, err := store.Get(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, "second", value)
}

func TestSQLiteDelete(t *testing.T) {
	store := setupTestSQLite(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "token", "abc"))
	require.NoError(t, store.Delete(ctx, "token"))

	_, err := store.Get(ctx, "token")
	assert.ErrorIs(t, err, ErrNotFound)

	// deleting again is not an error
	assert.NoError(t, store.Delete(ctx, "token"))
}

func TestSQLiteRunMigrations_Twice(t *testing.T) {
	store := setupTestSQLite(t)

	assert.NoError(t, store.RunMigrations())
}

func TestSQLiteGet_CancelledContext(t *testing.T) {
	store := setupTestSQLite(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Get(ctx, "token")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}
