package concept

import (
	"context"
	"errors"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/taskhive/internal/errs"
	"github.com/and161185/taskhive/internal/model"
	"github.com/and161185/taskhive/internal/repository"
)

// Sessions owns server-side login sessions.
type Sessions struct {
	repo repository.SessionRepository
	now  Clock
}

// NewSessions constructs the Sessions concept.
func NewSessions(repo repository.SessionRepository, now Clock) *Sessions {
	return &Sessions{repo: repo, now: now}
}

// Start opens a session for user lasting ttl.
func (s *Sessions) Start(ctx context.Context, user uuid.UUID, ttl time.Duration) (*model.Session, error) {
	id, err := newID()
	if err != nil {
		return nil, err
	}
	now := s.now()
	sess := &model.Session{ID: id, UserID: user, CreatedAt: now, ExpiresAt: now.Add(ttl)}
	if err := s.repo.Create(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Get returns a live session. Expired sessions are removed on sight.
func (s *Sessions) Get(ctx context.Context, id uuid.UUID) (*model.Session, error) {
	sess, err := s.repo.Get(ctx, id)
	if errors.Is(err, errs.ErrNotFound) {
		return nil, errs.Unauthenticatedf("Must be logged in!")
	}
	if err != nil {
		return nil, err
	}
	if !sess.ExpiresAt.After(s.now()) {
		_ = s.repo.Delete(ctx, id)
		return nil, errs.Unauthenticatedf("Session expired, please log in again.")
	}
	return sess, nil
}

// End closes one session.
func (s *Sessions) End(ctx context.Context, id uuid.UUID) error {
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, errs.ErrNotFound) {
		return errs.Unauthenticatedf("Must be logged in!")
	}
	return err
}

// EndAll closes every session of user.
func (s *Sessions) EndAll(ctx context.Context, user uuid.UUID) (int64, error) {
	return s.repo.DeleteByUser(ctx, user)
}
