package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/msgstore/internal/queryprovider"
	"github.com/roach88/msgstore/internal/serializer"
	"github.com/roach88/msgstore/internal/sqlbuilder"
	"github.com/roach88/msgstore/internal/testutil"
)

// openTestDB opens a fresh SQLite database in a temp dir.
func openTestDB(t *testing.T) *DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := Open(context.Background(), DriverSQLite, path)
	require.NoError(t, err, "Open() failed")
	t.Cleanup(func() { db.Close() })
	return db
}

// createTestRepository returns a SQLite-backed repository with the schema
// in place and a deterministic clock.
func createTestRepository(t *testing.T, s serializer.Serializer, opts ...Option) *Repository {
	t.Helper()
	db := openTestDB(t)

	p, err := queryprovider.New(sqlbuilder.SQLite, s)
	require.NoError(t, err)

	opts = append([]Option{WithClock(testutil.NewDeterministicClock().Now)}, opts...)
	repo, err := NewRepository(db, p, opts...)
	require.NoError(t, err)
	require.NoError(t, repo.EnsureSchema(context.Background()))
	return repo
}
