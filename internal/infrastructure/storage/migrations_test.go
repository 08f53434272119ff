package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// expectedMigrationCount is the number of migrations we expect to have
// Update this when adding new migrations
// Note: goose adds a version 0 entry when initializing, so total count is migrations + 1
const expectedMigrationCount = 3
const gooseVersionCount = expectedMigrationCount + 1 // includes goose's version 0 entry

func createTempDB(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "test.db")
}

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	store, err := NewStorage(createTempDB(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestMigrations_FreshDatabase(t *testing.T) {
	store := newTestStorage(t)

	var count int
	err := store.db.QueryRow("SELECT COUNT(*) FROM goose_db_version WHERE is_applied = 1").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, gooseVersionCount, count, "Should have %d version entries (including goose init)", gooseVersionCount)

	version, err := store.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, int64(expectedMigrationCount), version)
}

func TestMigrations_Idempotency(t *testing.T) {
	path := createTempDB(t)

	store, err := NewStorage(path)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store, err = NewStorage(path)
	require.NoError(t, err)
	defer store.Close()

	var count int
	err = store.db.QueryRow("SELECT COUNT(*) FROM goose_db_version WHERE is_applied = 1").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, gooseVersionCount, count, "Should still have exactly %d version entries", gooseVersionCount)
}

func TestMigrations_Schema(t *testing.T) {
	store := newTestStorage(t)

	for _, table := range []string{"reconciliation_runs", "run_exceptions", "goose_db_version"} {
		err := store.db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(new(int))
		assert.NoError(t, err, "%s table should exist", table)
	}

	// exception_count comes from the Go migration
	err := store.db.QueryRow("SELECT exception_count FROM reconciliation_runs LIMIT 1").Scan(new(int))
	assert.ErrorContains(t, err, "no rows", "column should exist on an empty table")
}

func TestMigrations_ForeignKeyConstraints(t *testing.T) {
	store := newTestStorage(t)

	var fkEnabled int
	err := store.db.QueryRow("PRAGMA foreign_keys").Scan(&fkEnabled)
	require.NoError(t, err)
	assert.Equal(t, 1, fkEnabled, "Foreign keys should be enabled")

	_, err = store.db.Exec(`
		INSERT INTO run_exceptions (run_id, source, row_index, category, reason)
		VALUES ('missing-run', 'A', 0, 'other', 'x')
	`)
	require.Error(t, err, "Should fail to insert an exception for a non-existent run")
	assert.Contains(t, err.Error(), "FOREIGN KEY constraint failed")
}
