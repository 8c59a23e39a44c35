package sqlite

import (
	"context"

	"github.com/and161185/taskhive/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/jmoiron/sqlx"
)

type userRow struct {
	ID        uuid.UUID `db:"id"`
	Username  string    `db:"username"`
	PwdHash   []byte    `db:"pwd_hash"`
	SaltAuth  []byte    `db:"salt_auth"`
	CreatedAt int64     `db:"created_at"`
}

func (r userRow) model() (model.User, error) {
	return model.User{
		ID:        r.ID,
		Username:  r.Username,
		PwdHash:   r.PwdHash,
		SaltAuth:  r.SaltAuth,
		CreatedAt: fromNanos(r.CreatedAt),
	}, nil
}

// UserRepo implements UserRepository using SQLite.
type UserRepo struct{ db *DB }

// NewUserRepo constructs a user repository.
func NewUserRepo(db *DB) *UserRepo { return &UserRepo{db: db} }

const userCols = `id, username, pwd_hash, salt_auth, created_at`

// Create inserts a new user row.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	const q = `INSERT INTO users (id, username, pwd_hash, salt_auth, created_at) VALUES (?, ?, ?, ?, ?)`
	_, err := r.db.X.ExecContext(ctx, q, u.ID, u.Username, u.PwdHash, u.SaltAuth, nanos(u.CreatedAt))
	return mapInsertErr(err)
}

func (r *UserRepo) getOne(ctx context.Context, q string, arg any) (*model.User, error) {
	var row userRow
	if err := r.db.X.GetContext(ctx, &row, q, arg); err != nil {
		return nil, mapNoRows(err)
	}
	u, _ := row.model()
	return &u, nil
}

// GetByID selects a user by ID.
func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return r.getOne(ctx, `SELECT `+userCols+` FROM users WHERE id = ?`, id)
}

// GetByUsername selects a user by username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.getOne(ctx, `SELECT `+userCols+` FROM users WHERE username = ?`, username)
}

// List returns every user ordered by username.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	var rows []userRow
	if err := r.db.X.SelectContext(ctx, &rows, `SELECT `+userCols+` FROM users ORDER BY username`); err != nil {
		return nil, err
	}
	return mapRows(rows, userRow.model)
}

// ListByIDs returns users whose id is in ids.
func (r *UserRepo) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]model.User, error) {
	if len(ids) == 0 {
		return []model.User{}, nil
	}
	q, args, err := sqlx.In(`SELECT `+userCols+` FROM users WHERE id IN (?)`, idStrings(ids))
	if err != nil {
		return nil, err
	}
	var rows []userRow
	if err := r.db.X.SelectContext(ctx, &rows, r.db.X.Rebind(q), args...); err != nil {
		return nil, err
	}
	return mapRows(rows, userRow.model)
}

// UpdateUsername renames a user.
func (r *UserRepo) UpdateUsername(ctx context.Context, id uuid.UUID, username string) error {
	return mapInsertErr(execOne(ctx, r.db.X, `UPDATE users SET username = ? WHERE id = ?`, username, id))
}

// UpdatePassword replaces the stored hash and salt.
func (r *UserRepo) UpdatePassword(ctx context.Context, id uuid.UUID, pwdHash, salt []byte) error {
	return execOne(ctx, r.db.X, `UPDATE users SET pwd_hash = ?, salt_auth = ? WHERE id = ?`, pwdHash, salt, id)
}

// Delete removes a user row.
func (r *UserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return execOne(ctx, r.db.X, `DELETE FROM users WHERE id = ?`, id)
}

type sessionRow struct {
	ID        uuid.UUID `db:"id"`
	UserID    uuid.UUID `db:"user_id"`
	CreatedAt int64     `db:"created_at"`
	ExpiresAt int64     `db:"expires_at"`
}

// SessionRepo implements SessionRepository using SQLite.
type SessionRepo struct{ db *DB }

// NewSessionRepo constructs a session repository.
func NewSessionRepo(db *DB) *SessionRepo { return &SessionRepo{db: db} }

// Create inserts a session row.
func (r *SessionRepo) Create(ctx context.Context, s *model.Session) error {
	const q = `INSERT INTO sessions (id, user_id, created_at, expires_at) VALUES (?, ?, ?, ?)`
	_, err := r.db.X.ExecContext(ctx, q, s.ID, s.UserID, nanos(s.CreatedAt), nanos(s.ExpiresAt))
	return mapInsertErr(err)
}

// Get loads a session by id.
func (r *SessionRepo) Get(ctx context.Context, id uuid.UUID) (*model.Session, error) {
	var row sessionRow
	const q = `SELECT id, user_id, created_at, expires_at FROM sessions WHERE id = ?`
	if err := r.db.X.GetContext(ctx, &row, q, id); err != nil {
		return nil, mapNoRows(err)
	}
	return &model.Session{
		ID:        row.ID,
		UserID:    row.UserID,
		CreatedAt: fromNanos(row.CreatedAt),
		ExpiresAt: fromNanos(row.ExpiresAt),
	}, nil
}

// Delete ends one session.
func (r *SessionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return execOne(ctx, r.db.X, `DELETE FROM sessions WHERE id = ?`, id)
}

// DeleteByUser ends all sessions of a user.
func (r *SessionRepo) DeleteByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	return execCount(ctx, r.db.X, `DELETE FROM sessions WHERE user_id = ?`, userID)
}
