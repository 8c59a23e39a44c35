// Package sqlitetest provides migrated in-memory databases for tests.
package sqlitetest

import (
	"context"
	"testing"

	"github.com/and161185/taskhive/internal/migrate"
	"github.com/and161185/taskhive/internal/repository"
	"github.com/and161185/taskhive/internal/repository/sqlite"
)

// Open creates an in-memory database with all migrations applied.
// It is closed automatically when the test completes.
func Open(t testing.TB) *sqlite.DB {
	t.Helper()

	ctx := context.Background()
	db, err := sqlite.Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(db.Close)

	if _, err := migrate.Up(ctx, migrate.DriverSQLite, db.X.DB); err != nil {
		t.Fatalf("migrating test db: %v", err)
	}
	return db
}

// New returns a repository set backed by a fresh in-memory database.
func New(t testing.TB) repository.Set {
	t.Helper()
	return sqlite.NewSet(Open(t))
}
