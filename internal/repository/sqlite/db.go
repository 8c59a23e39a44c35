// Package sqlite contains SQLite implementations of repository interfaces.
// Identifiers are stored as TEXT, times as unix nanoseconds and task links
// as a JSON array.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/and161185/taskhive/internal/errs"
	"github.com/gofrs/uuid/v5"
	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// DB wraps the sqlx handle shared by all repositories.
type DB struct{ X *sqlx.DB }

// Open opens (or creates) the database at dsn. In-memory databases are
// pinned to one connection so every statement sees the same schema.
func Open(ctx context.Context, dsn string) (*DB, error) {
	x, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	if strings.Contains(dsn, ":memory:") {
		x.SetMaxOpenConns(1)
	} else if _, err := x.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		x.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}
	if _, err := x.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		x.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}
	return &DB{X: x}, nil
}

// Close closes the underlying handle.
func (db *DB) Close() { _ = db.X.Close() }

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	}
	return false
}

func mapInsertErr(err error) error {
	if isUniqueViolation(err) {
		return errs.ErrAlreadyExists
	}
	return err
}

func mapNoRows(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return errs.ErrNotFound
	}
	return err
}

func execOne(ctx context.Context, x *sqlx.DB, q string, args ...any) error {
	res, err := x.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func execCount(ctx context.Context, x *sqlx.DB, q string, args ...any) (int64, error) {
	res, err := x.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func idStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

func nanos(t time.Time) int64 { return t.UnixNano() }

func fromNanos(n int64) time.Time { return time.Unix(0, n).UTC() }

// mapRows converts scanned rows into models, never returning nil.
func mapRows[R, M any](rows []R, conv func(R) (M, error)) ([]M, error) {
	out := make([]M, 0, len(rows))
	for _, r := range rows {
		m, err := conv(r)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}
