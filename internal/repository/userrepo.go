// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/and161185/taskhive/internal/model"
	"github.com/gofrs/uuid/v5"
)

// UserRepository provides CRUD access for user accounts.
type UserRepository interface {
	// Create inserts a new user.
	Create(ctx context.Context, u *model.User) error
	// GetByID loads a user by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	// GetByUsername loads a user by username.
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	// List returns all users ordered by username.
	List(ctx context.Context) ([]model.User, error)
	// ListByIDs returns the users with the given IDs (unordered, missing IDs skipped).
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]model.User, error)
	// UpdateUsername renames a user.
	UpdateUsername(ctx context.Context, id uuid.UUID, username string) error
	// UpdatePassword replaces the password hash and salt.
	UpdatePassword(ctx context.Context, id uuid.UUID, pwdHash, salt []byte) error
	// Delete removes a user.
	Delete(ctx context.Context, id uuid.UUID) error
}

// SessionRepository stores login sessions.
type SessionRepository interface {
	Create(ctx context.Context, s *model.Session) error
	Get(ctx context.Context, id uuid.UUID) (*model.Session, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// DeleteByUser ends every session of a user and reports how many were removed.
	DeleteByUser(ctx context.Context, userID uuid.UUID) (int64, error)
}
