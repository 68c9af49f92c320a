package client

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`, name).Scan(&n)
	require.NoError(t, err)
	return n > 0
}

func TestOpenDatabase_CreatesSchema(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "hangar.db")

	db, err := OpenDatabase(ctx, dsn)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.PingContext(ctx))
	require.True(t, tableExists(t, db, "goose_db_version"))
	require.True(t, tableExists(t, db, "metadata"))
}

func TestRunMigrations_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "hangar.db")

	db, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, RunMigrations(ctx, db))
	require.NoError(t, RunMigrations(ctx, db))
	require.True(t, tableExists(t, db, "metadata"))
}

func TestOpenDatabase_MetadataTableIsUsable(t *testing.T) {
	ctx := context.Background()
	db, err := OpenDatabase(ctx, filepath.Join(t.TempDir(), "hangar.db"))
	require.NoError(t, err)
	defer db.Close()

	_, err = db.ExecContext(ctx, `INSERT INTO metadata(key, value) VALUES ('selectedStation', 'LOC1')`)
	require.NoError(t, err)

	var got string
	require.NoError(t, db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = 'selectedStation'`).Scan(&got))
	require.Equal(t, "LOC1", got)
}
