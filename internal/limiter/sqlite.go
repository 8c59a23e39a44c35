package limiter

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

// SQLite is a limiter over the SQLite auth_limiter table, where times are
// unix nanoseconds.
type SQLite struct {
	db     *sqlx.DB
	policy Policy
	now    func() time.Time
}

// NewSQLite constructs a SQLite-backed limiter.
func NewSQLite(db *sqlx.DB, p Policy) *SQLite {
	return &SQLite{db: db, policy: p, now: time.Now}
}

// Allow reports whether login is currently allowed and a retry-after duration.
func (l *SQLite) Allow(ctx context.Context, username string, ipHash []byte) (bool, time.Duration, error) {
	var blockedUntil int64
	const q = `SELECT blocked_until FROM auth_limiter WHERE username = ? AND ip_hash = ?`
	err := l.db.GetContext(ctx, &blockedUntil, q, username, ipHash)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return true, 0, nil
	case err != nil:
		return false, 0, err
	}
	until := time.Unix(0, blockedUntil)
	if now := l.now(); until.After(now) {
		return false, until.Sub(now), nil
	}
	return true, 0, nil
}

// Success resets counters for (username, ip).
func (l *SQLite) Success(ctx context.Context, username string, ipHash []byte) error {
	const q = `
INSERT INTO auth_limiter (username, ip_hash, fail_count, blocked_until, updated_at)
VALUES (?, ?, 0, 0, ?)
ON CONFLICT (username, ip_hash)
DO UPDATE SET fail_count = 0, blocked_until = 0, updated_at = excluded.updated_at`
	_, err := l.db.ExecContext(ctx, q, username, ipHash, l.now().UnixNano())
	return err
}

// Failure records a failed attempt; may set a block until a future time.
func (l *SQLite) Failure(ctx context.Context, username string, ipHash []byte) (bool, time.Duration, error) {
	now := l.now()

	const q = `
INSERT INTO auth_limiter (username, ip_hash, fail_count, blocked_until, updated_at)
VALUES (?, ?, 1, 0, ?)
ON CONFLICT (username, ip_hash) DO UPDATE
SET
  fail_count = CASE WHEN excluded.updated_at - auth_limiter.updated_at > ? THEN 1 ELSE auth_limiter.fail_count + 1 END,
  updated_at = excluded.updated_at
RETURNING fail_count`
	var fails int
	if err := l.db.GetContext(ctx, &fails, q, username, ipHash, now.UnixNano(), int64(l.policy.Window)); err != nil {
		return false, 0, err
	}
	if fails >= l.policy.MaxFails {
		const upd = `UPDATE auth_limiter SET blocked_until = ? WHERE username = ? AND ip_hash = ?`
		if _, err := l.db.ExecContext(ctx, upd, now.Add(l.policy.BlockFor).UnixNano(), username, ipHash); err != nil {
			return false, 0, err
		}
		return true, l.policy.BlockFor, nil
	}
	return false, 0, nil
}
