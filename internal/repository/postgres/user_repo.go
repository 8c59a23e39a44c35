package postgres

import (
	"context"

	"github.com/and161185/taskhive/internal/model"
	"github.com/gofrs/uuid/v5"
)

// UserRepo implements UserRepository using PostgreSQL.
type UserRepo struct{ db *DB }

// NewUserRepo constructs a user repository.
func NewUserRepo(db *DB) *UserRepo { return &UserRepo{db: db} }

const userCols = `id, username, pwd_hash, salt_auth, created_at`

func scanUser(s scanner) (model.User, error) {
	var u model.User
	err := s.Scan(&u.ID, &u.Username, &u.PwdHash, &u.SaltAuth, &u.CreatedAt)
	return u, err
}

// Create inserts a new user row.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	const q = `
INSERT INTO users (id, username, pwd_hash, salt_auth, created_at)
VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.Pool.Exec(ctx, q, u.ID, u.Username, u.PwdHash, u.SaltAuth, u.CreatedAt)
	return mapInsertErr(err)
}

// GetByID selects a user by ID.
func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	const q = `SELECT ` + userCols + ` FROM users WHERE id=$1`
	u, err := scanUser(r.db.Pool.QueryRow(ctx, q, id))
	if err != nil {
		return nil, mapNoRows(err)
	}
	return &u, nil
}

// GetByUsername selects a user by username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	const q = `SELECT ` + userCols + ` FROM users WHERE username=$1`
	u, err := scanUser(r.db.Pool.QueryRow(ctx, q, username))
	if err != nil {
		return nil, mapNoRows(err)
	}
	return &u, nil
}

// List returns every user ordered by username.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	const q = `SELECT ` + userCols + ` FROM users ORDER BY username`
	rows, err := r.db.Pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanUser)
}

// ListByIDs returns users whose id is in ids.
func (r *UserRepo) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]model.User, error) {
	if len(ids) == 0 {
		return []model.User{}, nil
	}
	const q = `SELECT ` + userCols + ` FROM users WHERE id = ANY($1::uuid[])`
	rows, err := r.db.Pool.Query(ctx, q, idStrings(ids))
	if err != nil {
		return nil, err
	}
	return collect(rows, scanUser)
}

// UpdateUsername renames a user.
func (r *UserRepo) UpdateUsername(ctx context.Context, id uuid.UUID, username string) error {
	const q = `UPDATE users SET username=$2 WHERE id=$1`
	return mapInsertErr(execOne(ctx, r.db.Pool, q, id, username))
}

// UpdatePassword replaces the stored hash and salt.
func (r *UserRepo) UpdatePassword(ctx context.Context, id uuid.UUID, pwdHash, salt []byte) error {
	const q = `UPDATE users SET pwd_hash=$2, salt_auth=$3 WHERE id=$1`
	return execOne(ctx, r.db.Pool, q, id, pwdHash, salt)
}

// Delete removes a user row.
func (r *UserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return execOne(ctx, r.db.Pool, `DELETE FROM users WHERE id=$1`, id)
}

// SessionRepo implements SessionRepository using PostgreSQL.
type SessionRepo struct{ db *DB }

// NewSessionRepo constructs a session repository.
func NewSessionRepo(db *DB) *SessionRepo { return &SessionRepo{db: db} }

// Create inserts a session row.
func (r *SessionRepo) Create(ctx context.Context, s *model.Session) error {
	const q = `INSERT INTO sessions (id, user_id, created_at, expires_at) VALUES ($1, $2, $3, $4)`
	_, err := r.db.Pool.Exec(ctx, q, s.ID, s.UserID, s.CreatedAt, s.ExpiresAt)
	return mapInsertErr(err)
}

// Get loads a session by id.
func (r *SessionRepo) Get(ctx context.Context, id uuid.UUID) (*model.Session, error) {
	const q = `SELECT id, user_id, created_at, expires_at FROM sessions WHERE id=$1`
	var s model.Session
	if err := r.db.Pool.QueryRow(ctx, q, id).Scan(&s.ID, &s.UserID, &s.CreatedAt, &s.ExpiresAt); err != nil {
		return nil, mapNoRows(err)
	}
	return &s, nil
}

// Delete ends one session.
func (r *SessionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return execOne(ctx, r.db.Pool, `DELETE FROM sessions WHERE id=$1`, id)
}

// DeleteByUser ends all sessions of a user.
func (r *SessionRepo) DeleteByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	return execCount(ctx, r.db.Pool, `DELETE FROM sessions WHERE user_id=$1`, userID)
}
