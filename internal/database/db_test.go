package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestGetMissingKey(t *testing.T) {
	db := newTestDB(t)

	_, ok, err := db.Get(context.Background(), "secuscan_history")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSetOverwritesWholeValue(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.Set(ctx, "secuscan_history", `[{"id":"1"}]`))
	require.NoError(t, db.Set(ctx, "secuscan_history", `[]`))

	v, ok, err := db.Get(ctx, "secuscan_history")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[]`, v)

	e, err := db.GetEntry(ctx, "secuscan_history")
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.False(t, e.UpdatedAt.IsZero())
}

func TestGetEntryMissingKey(t *testing.T) {
	db := newTestDB(t)

	e, err := db.GetEntry(context.Background(), "absent")
	require.NoError(t, err)
	assert.Nil(t, e)
}

func TestNewCreatesDatabaseDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "nested", "secuscan.db")
	db, err := New(path)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Set(context.Background(), "k", "v"))
	assert.FileExists(t, path)
}
