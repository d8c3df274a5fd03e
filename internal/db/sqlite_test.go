package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunMigrations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "app.db")

	require.NoError(t, RunMigrations(path))
	require.NoError(t, RunMigrations(path), "second run must be a no-op")

	db, err := NewSQLiteDB(path)
	require.NoError(t, err)
	defer db.Close()

	var tables []string
	require.NoError(t, db.Select(&tables, `SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'schema_%' ORDER BY name`))
	assert.Equal(t, []string{"action_items", "documents", "optimization_analyses"}, tables)
}

func TestNewSQLiteDB_AppliesPragmas(t *testing.T) {
	db, err := NewSQLiteDB(filepath.Join(t.TempDir(), "pragmas.db"))
	require.NoError(t, err)
	defer db.Close()

	var timeout int
	require.NoError(t, db.Get(&timeout, "PRAGMA busy_timeout"))
	assert.Equal(t, 5000, timeout)

	var fk int
	require.NoError(t, db.Get(&fk, "PRAGMA foreign_keys"))
	assert.Equal(t, 1, fk)
}
