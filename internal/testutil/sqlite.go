// Package testutil opens throwaway databases for package tests.
package testutil

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/Rana718/fixturegen/internal/database/sqlite"
	"github.com/stretchr/testify/require"
)

// SQLite returns an adapter over a fresh database file in t.TempDir. A file
// is used instead of :memory: so every pooled connection sees the same data.
func SQLite(t testing.TB) *sqlite.Adapter {
	t.Helper()

	path := filepath.Join(t.TempDir(), "fixtures.db")
	a := sqlite.New()
	require.NoError(t, a.Connect(context.Background(), "sqlite://"+path))
	t.Cleanup(func() { _ = a.Close() })
	return a
}

// Count returns SELECT COUNT(*) for query.
func Count(t testing.TB, db *sql.DB, query string, args ...any) int64 {
	t.Helper()

	var n int64
	require.NoError(t, db.QueryRow(query, args...).Scan(&n))
	return n
}
