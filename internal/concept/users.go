package concept

import (
	"context"
	"errors"
	"strings"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/taskhive/internal/crypto"
	"github.com/and161185/taskhive/internal/errs"
	"github.com/and161185/taskhive/internal/model"
	"github.com/and161185/taskhive/internal/repository"
)

// Users owns accounts and password verification.
type Users struct {
	repo   repository.UserRepository
	hasher *crypto.Hasher
	now    Clock
}

// NewUsers constructs the Users concept.
func NewUsers(repo repository.UserRepository, h *crypto.Hasher, now Clock) *Users {
	return &Users{repo: repo, hasher: h, now: now}
}

// Create registers a user with a freshly salted password hash.
func (u *Users) Create(ctx context.Context, username, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, errs.Invalidf("Username and password must be non-empty!")
	}
	if err := u.assertUsernameFree(ctx, username); err != nil {
		return nil, err
	}
	hash, salt, err := u.hasher.NewCredentials(password)
	if err != nil {
		return nil, err
	}
	id, err := newID()
	if err != nil {
		return nil, err
	}
	user := &model.User{ID: id, Username: username, PwdHash: hash, SaltAuth: salt, CreatedAt: u.now()}
	if err := u.repo.Create(ctx, user); err != nil {
		if errors.Is(err, errs.ErrAlreadyExists) {
			return nil, usernameTaken(username)
		}
		return nil, err
	}
	return user, nil
}

func usernameTaken(username string) error {
	return errs.AlreadyExistsf("User with username %s already exists!", username)
}

func (u *Users) assertUsernameFree(ctx context.Context, username string) error {
	_, err := u.repo.GetByUsername(ctx, username)
	switch {
	case err == nil:
		return usernameTaken(username)
	case errors.Is(err, errs.ErrNotFound):
		return nil
	default:
		return err
	}
}

// Authenticate returns the user when the password matches. Unknown users and
// wrong passwords are indistinguishable to the caller.
func (u *Users) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	user, err := u.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, errs.Unauthenticatedf("Username or password is incorrect.")
		}
		return nil, err
	}
	if !u.hasher.Verify([]byte(password), user.SaltAuth, user.PwdHash) {
		return nil, errs.Unauthenticatedf("Username or password is incorrect.")
	}
	return user, nil
}

// Get loads a user by id.
func (u *Users) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := u.repo.GetByID(ctx, id)
	if errors.Is(err, errs.ErrNotFound) {
		return nil, errs.NotFoundf("User not found!")
	}
	return user, err
}

// GetByUsername loads a user by username.
func (u *Users) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	user, err := u.repo.GetByUsername(ctx, username)
	if errors.Is(err, errs.ErrNotFound) {
		return nil, errs.NotFoundf("User with username %s not found!", username)
	}
	return user, err
}

// List returns every user.
func (u *Users) List(ctx context.Context) ([]model.User, error) {
	return u.repo.List(ctx)
}

// IDsToUsernames resolves ids to usernames, keeping the order of ids.
func (u *Users) IDsToUsernames(ctx context.Context, ids []uuid.UUID) ([]string, error) {
	users, err := u.repo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]string, len(users))
	for _, user := range users {
		byID[user.ID] = user.Username
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		name, ok := byID[id]
		if !ok {
			return nil, errs.NotFoundf("User %s not found!", id)
		}
		out = append(out, name)
	}
	return out, nil
}

// UpdateUsername renames a user.
func (u *Users) UpdateUsername(ctx context.Context, id uuid.UUID, username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return errs.Invalidf("Username must be non-empty!")
	}
	if err := u.assertUsernameFree(ctx, username); err != nil {
		return err
	}
	err := u.repo.UpdateUsername(ctx, id, username)
	switch {
	case errors.Is(err, errs.ErrAlreadyExists):
		return usernameTaken(username)
	case errors.Is(err, errs.ErrNotFound):
		return errs.NotFoundf("User not found!")
	}
	return err
}

// UpdatePassword replaces the password after checking the current one.
func (u *Users) UpdatePassword(ctx context.Context, id uuid.UUID, current, next string) error {
	if next == "" {
		return errs.Invalidf("New password must be non-empty!")
	}
	user, err := u.Get(ctx, id)
	if err != nil {
		return err
	}
	if !u.hasher.Verify([]byte(current), user.SaltAuth, user.PwdHash) {
		return errs.Unauthorizedf("The given current password is wrong!")
	}
	hash, salt, err := u.hasher.NewCredentials(next)
	if err != nil {
		return err
	}
	return u.repo.UpdatePassword(ctx, id, hash, salt)
}

// Delete removes the account record only.
func (u *Users) Delete(ctx context.Context, id uuid.UUID) error {
	err := u.repo.Delete(ctx, id)
	if errors.Is(err, errs.ErrNotFound) {
		return errs.NotFoundf("User not found!")
	}
	return err
}
