package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(Config{
		Path: filepath.Join(t.TempDir(), "panel.db"),
		Name: "panel",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestNew_DefaultsAndDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "panel.db")
	db, err := New(Config{Path: path, Name: "panel"})
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, "panel", db.Name())
	assert.Equal(t, path, db.Path())
}

func TestMigrate_IsIdempotent(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, db.Migrate())
	require.NoError(t, db.Migrate())

	var name string
	err := db.Conn().QueryRow(
		"SELECT name FROM sqlite_master WHERE type='table' AND name='notifications'",
	).Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "notifications", name)
}

func TestMigrate_UnknownSchema(t *testing.T) {
	db, err := New(Config{Path: filepath.Join(t.TempDir(), "x.db"), Name: "unknown"})
	require.NoError(t, err)
	defer db.Close()

	assert.Error(t, db.Migrate())
}

func TestBuildConnectionString(t *testing.T) {
	connStr := buildConnectionString("/tmp/a.db")
	assert.True(t, strings.HasPrefix(connStr, "/tmp/a.db?"))
	assert.Contains(t, connStr, "journal_mode(WAL)")
	assert.Contains(t, connStr, "synchronous(NORMAL)")
	assert.Contains(t, connStr, "busy_timeout(5000)")
}

func TestWithTransaction(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Migrate())

	insert := "INSERT INTO notifications (id, kind, text, created_at) VALUES (?, 'success', 'ok', 1)"

	err := WithTransaction(db.Conn(), func(tx *sql.Tx) error {
		_, err := tx.Exec(insert, "committed")
		return err
	})
	require.NoError(t, err)

	err = WithTransaction(db.Conn(), func(tx *sql.Tx) error {
		if _, err := tx.Exec(insert, "rolled-back"); err != nil {
			return err
		}
		return errors.New("abort")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transaction failed")

	err = WithTransaction(db.Conn(), func(tx *sql.Tx) error {
		panic("boom")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panic in transaction")

	var count int
	require.NoError(t, db.Conn().QueryRow("SELECT COUNT(*) FROM notifications").Scan(&count))
	assert.Equal(t, 1, count)

	assert.Error(t, WithTransaction(nil, func(*sql.Tx) error { return nil }))
}

func TestHealthCheckAndStats(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Migrate())

	require.NoError(t, db.HealthCheck(context.Background()))
	require.NoError(t, db.WALCheckpoint(""))

	stats, err := db.GetStats()
	require.NoError(t, err)
	assert.Greater(t, stats.PageCount, int64(0))
	assert.Greater(t, stats.PageSize, int64(0))
}

func TestMaintenanceJob(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Migrate())

	job := NewMaintenanceJob(db, zerolog.Nop())
	assert.Equal(t, "database_maintenance", job.Name())
	assert.NoError(t, job.Run())
}

func TestSchema(t *testing.T) {
	schema, err := Schema("panel")
	require.NoError(t, err)
	assert.Contains(t, schema, "CREATE TABLE IF NOT EXISTS notifications")

	_, err = Schema("missing")
	assert.Error(t, err)
}
