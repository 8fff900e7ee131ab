package database

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMigratedDB(t *testing.T, name string) *DB {
	t.Helper()
	db, err := New(Config{Path: filepath.Join(t.TempDir(), name+".db"), Name: name})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Migrate())
	return db
}

func TestNew_CreatesDirectoryAndDefaultsProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "portfolio.db")

	db, err := New(Config{Path: path, Name: NamePortfolio})
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, ProfileStandard, db.Profile())
	assert.Equal(t, NamePortfolio, db.Name())
	assert.True(t, filepath.IsAbs(db.Path()))
	_, err = os.Stat(filepath.Dir(path))
	assert.NoError(t, err)
}

func TestBuildConnectionString(t *testing.T) {
	standard := buildConnectionString("/tmp/a.db", ProfileStandard)
	assert.Contains(t, standard, "/tmp/a.db?_pragma=journal_mode(WAL)")
	assert.Contains(t, standard, "synchronous(NORMAL)")
	assert.Contains(t, standard, "foreign_keys(1)")

	cache := buildConnectionString("file:x?mode=memory", ProfileCache)
	assert.Contains(t, cache, "file:x?mode=memory&_pragma=journal_mode(WAL)")
	assert.Contains(t, cache, "synchronous(OFF)")
}

func TestMigrate_IsIdempotent(t *testing.T) {
	db := newMigratedDB(t, NamePortfolio)
	require.NoError(t, db.Migrate())

	var count int
	err := db.Conn().QueryRow(
		`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name IN ('portfolios','people','widgets')`,
	).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestMigrate_ClientDataTables(t *testing.T) {
	db := newMigratedDB(t, NameClientData)

	for _, table := range []string{"trades_snapshot", "news_items", "reddit_posts", "stock_prices"} {
		var name string
		err := db.Conn().QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		require.NoError(t, err, table)
	}
}

func TestMigrate_UnknownName(t *testing.T) {
	db, err := New(Config{Path: filepath.Join(t.TempDir(), "x.db"), Name: "mystery"})
	require.NoError(t, err)
	defer db.Close()

	assert.Error(t, db.Migrate())
}

func TestForeignKeysCascade(t *testing.T) {
	db := newMigratedDB(t, NamePortfolio)
	conn := db.Conn()

	res, err := conn.Exec(`INSERT INTO portfolios (name, created_at) VALUES ('p', '2024-01-01T00:00:00Z')`)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)

	_, err = conn.Exec(`INSERT INTO people (portfolio_id, id, name, type) VALUES (?, 0, 'n', 'politician')`, id)
	require.NoError(t, err)

	_, err = conn.Exec(`DELETE FROM portfolios WHERE id = ?`, id)
	require.NoError(t, err)

	var remaining int
	require.NoError(t, conn.QueryRow(`SELECT COUNT(*) FROM people`).Scan(&remaining))
	assert.Equal(t, 0, remaining)
}

func TestWithTransaction(t *testing.T) {
	db := newMigratedDB(t, NamePortfolio)
	conn := db.Conn()

	t.Run("commits on success", func(t *testing.T) {
		err := WithTransaction(conn, func(tx *sql.Tx) error {
			_, err := tx.Exec(`INSERT INTO portfolios (name, created_at) VALUES ('ok', 'now')`)
			return err
		})
		require.NoError(t, err)

		var n int
		require.NoError(t, conn.QueryRow(`SELECT COUNT(*) FROM portfolios WHERE name='ok'`).Scan(&n))
		assert.Equal(t, 1, n)
	})

	t.Run("rolls back on error and wraps it", func(t *testing.T) {
		sentinel := errors.New("boom")
		err := WithTransaction(conn, func(tx *sql.Tx) error {
			if _, err := tx.Exec(`INSERT INTO portfolios (name, created_at) VALUES ('rollback', 'now')`); err != nil {
				return err
			}
			return sentinel
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, sentinel)

		var n int
		require.NoError(t, conn.QueryRow(`SELECT COUNT(*) FROM portfolios WHERE name='rollback'`).Scan(&n))
		assert.Equal(t, 0, n)
	})

	t.Run("recovers from panic", func(t *testing.T) {
		err := WithTransaction(conn, func(tx *sql.Tx) error {
			panic("kaboom")
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "panic in transaction")
	})

	t.Run("nil connection", func(t *testing.T) {
		assert.Error(t, WithTransaction(nil, func(tx *sql.Tx) error { return nil }))
	})
}

func TestSnapshotTo(t *testing.T) {
	db := newMigratedDB(t, NamePortfolio)
	_, err := db.Conn().Exec(`INSERT INTO portfolios (name, created_at) VALUES ('snap', 'now')`)
	require.NoError(t, err)

	dest := filepath.Join(t.TempDir(), "copy.db")
	require.NoError(t, db.SnapshotTo(context.Background(), dest))

	copyDB, err := New(Config{Path: dest, Name: NamePortfolio})
	require.NoError(t, err)
	defer copyDB.Close()

	var name string
	require.NoError(t, copyDB.Conn().QueryRow(`SELECT name FROM portfolios`).Scan(&name))
	assert.Equal(t, "snap", name)
}

func TestHealthAndStats(t *testing.T) {
	db := newMigratedDB(t, NameClientData)
	ctx := context.Background()

	require.NoError(t, db.QuickCheck(ctx))
	require.NoError(t, db.HealthCheck(ctx))

	stats, err := db.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, NameClientData, stats.Name)
	assert.Positive(t, stats.PageCount)
	assert.Positive(t, stats.PageSize)
}
