package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/and161185/taskhive/internal/concept"
	"github.com/and161185/taskhive/internal/errs"
	"github.com/and161185/taskhive/internal/limiter"
	"github.com/and161185/taskhive/internal/model"
)

// AuthService defines account and session operations.
type AuthService interface {
	// Register creates a new user with secure password hashing.
	Register(ctx context.Context, username, password string) (*model.User, error)
	// Login applies rate limiting, authenticates the user and opens a session.
	Login(ctx context.Context, username, password, ip string) (model.Tokens, model.User, error)
	// Logout ends the caller's session.
	Logout(ctx context.Context, p Principal) error
	// Authenticate verifies a bearer token against its live session.
	Authenticate(ctx context.Context, token string) (Principal, error)
	Me(ctx context.Context, p Principal) (*model.User, error)
	UsernameByID(ctx context.Context, id uuid.UUID) (string, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	UserByUsername(ctx context.Context, username string) (*model.User, error)
	UpdateUsername(ctx context.Context, p Principal, username string) error
	UpdatePassword(ctx context.Context, p Principal, current, next string) error
	// DeleteAccount removes the caller and everything they own.
	DeleteAccount(ctx context.Context, p Principal) error
}

type AuthServiceImpl struct {
	c         *concept.Concepts
	lim       limiter.Limiter
	signKey   []byte
	accessTTL time.Duration
	log       *zap.Logger
	now       concept.Clock
}

// NewAuthService constructs AuthService with required dependencies.
func NewAuthService(c *concept.Concepts, lim limiter.Limiter, signKey []byte, accessTTL time.Duration, log *zap.Logger, now concept.Clock) *AuthServiceImpl {
	if now == nil {
		now = time.Now
	}
	return &AuthServiceImpl{c: c, lim: lim, signKey: signKey, accessTTL: accessTTL, log: log, now: now}
}

// Register creates a new user record.
func (s *AuthServiceImpl) Register(ctx context.Context, username, password string) (*model.User, error) {
	return s.c.Users.Create(ctx, username, password)
}

// Login authenticates with rate limiting by (username, ip).
func (s *AuthServiceImpl) Login(ctx context.Context, username, password, ip string) (model.Tokens, model.User, error) {
	ipHash := limiter.HashIP(ip)

	allowed, _, err := s.lim.Allow(ctx, username, ipHash)
	if err != nil {
		return model.Tokens{}, model.User{}, err
	}
	if !allowed {
		return model.Tokens{}, model.User{}, errs.ErrRateLimited
	}

	u, err := s.c.Users.Authenticate(ctx, username, password)
	if err != nil {
		if !errors.Is(err, errs.ErrUnauthenticated) {
			return model.Tokens{}, model.User{}, err
		}
		if blocked, _, ferr := s.lim.Failure(ctx, username, ipHash); ferr == nil && blocked {
			return model.Tokens{}, model.User{}, errs.ErrRateLimited
		}
		return model.Tokens{}, model.User{}, err
	}

	// best-effort reset
	_ = s.lim.Success(ctx, username, ipHash)

	sess, err := s.c.Sessions.Start(ctx, u.ID, s.accessTTL)
	if err != nil {
		return model.Tokens{}, model.User{}, err
	}
	access, err := s.issueAccessToken(sess)
	if err != nil {
		return model.Tokens{}, model.User{}, err
	}
	return model.Tokens{AccessToken: access, SessionID: sess.ID, ExpiresAt: sess.ExpiresAt}, *u, nil
}

// issueAccessToken signs an HS256 JWT bound to the session.
func (s *AuthServiceImpl) issueAccessToken(sess *model.Session) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   sess.UserID.String(),
		ID:        sess.ID.String(),
		IssuedAt:  jwt.NewNumericDate(sess.CreatedAt),
		ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(s.signKey)
}

func notLoggedIn() error { return errs.Unauthenticatedf("Must be logged in!") }

// Authenticate verifies signature and expiry of token, then requires the
// session named by its jti to be live and owned by its subject.
func (s *AuthServiceImpl) Authenticate(ctx context.Context, token string) (Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Principal{}, notLoggedIn()
	}
	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return s.signKey, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return Principal{}, notLoggedIn()
	}
	userID, err := uuid.FromString(claims.Subject)
	if err != nil {
		return Principal{}, notLoggedIn()
	}
	sessID, err := uuid.FromString(claims.ID)
	if err != nil {
		return Principal{}, notLoggedIn()
	}
	sess, err := s.c.Sessions.Get(ctx, sessID)
	if err != nil {
		return Principal{}, err
	}
	if sess.UserID != userID {
		return Principal{}, notLoggedIn()
	}
	return Principal{UserID: userID, SessionID: sessID}, nil
}

// Logout ends the caller's session.
func (s *AuthServiceImpl) Logout(ctx context.Context, p Principal) error {
	return s.c.Sessions.End(ctx, p.SessionID)
}

// Me returns the caller's account.
func (s *AuthServiceImpl) Me(ctx context.Context, p Principal) (*model.User, error) {
	return s.c.Users.Get(ctx, p.UserID)
}

// UsernameByID resolves a user id.
func (s *AuthServiceImpl) UsernameByID(ctx context.Context, id uuid.UUID) (string, error) {
	u, err := s.c.Users.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return u.Username, nil
}

func (s *AuthServiceImpl) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.c.Users.List(ctx)
}

func (s *AuthServiceImpl) UserByUsername(ctx context.Context, username string) (*model.User, error) {
	return s.c.Users.GetByUsername(ctx, username)
}

func (s *AuthServiceImpl) UpdateUsername(ctx context.Context, p Principal, username string) error {
	return s.c.Users.UpdateUsername(ctx, p.UserID, username)
}

func (s *AuthServiceImpl) UpdatePassword(ctx context.Context, p Principal, current, next string) error {
	return s.c.Users.UpdatePassword(ctx, p.UserID, current, next)
}

// DeleteAccount ends all sessions, deletes the projects the user created,
// detaches the user from the rest and finally removes the account.
func (s *AuthServiceImpl) DeleteAccount(ctx context.Context, p Principal) error {
	user := p.UserID
	if _, err := s.c.Users.Get(ctx, user); err != nil {
		return err
	}
	if _, err := s.c.Sessions.EndAll(ctx, user); err != nil {
		return err
	}
	owned, err := s.c.Projects.ListByCreator(ctx, user)
	if err != nil {
		return err
	}
	for _, proj := range owned {
		if err := deleteProjectCascade(ctx, s.c, s.log, proj.ID); err != nil {
			s.log.Warn("account deletion stopped at project",
				zap.String("user_id", user.String()),
				zap.String("project_id", proj.ID.String()),
				zap.Error(err),
			)
			return err
		}
	}
	if _, err := s.c.Members.DeleteUser(ctx, user); err != nil {
		return err
	}
	if _, err := s.c.Tasks.UnassignAll(ctx, user); err != nil {
		return err
	}
	if _, err := s.c.Rewards.DeleteForUser(ctx, user); err != nil {
		return err
	}
	if _, err := s.c.Notifications.DeleteForUser(ctx, user); err != nil {
		return err
	}
	return s.c.Users.Delete(ctx, user)
}
