package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/and161185/taskhive/internal/errs"
	"github.com/and161185/taskhive/internal/model"
)

func TestAuth_Register_Basics(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	ctx := context.Background()

	if _, err := e.svc.Auth.Register(ctx, "", ""); !errors.Is(err, errs.ErrInvalidArgument) {
		t.Fatalf("want validation error on empty username/password, got %v", err)
	}
	u, err := e.svc.Auth.Register(ctx, "alice", "pwd")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u.ID == uuid.Nil {
		t.Fatalf("empty user id")
	}
	if _, err := e.svc.Auth.Register(ctx, "alice", "pwd2"); !errors.Is(err, errs.ErrAlreadyExists) {
		t.Fatalf("want ErrAlreadyExists on duplicate username, got %v", err)
	}
}

func TestAuth_Login_RateLimiterAndCreds(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	ctx := context.Background()
	alice := e.user(t, "alice")

	e.lim.allowErr = errors.New("lim-err")
	if _, _, err := e.svc.Auth.Login(ctx, "alice", "pw-alice", "1.2.3.4"); err == nil {
		t.Fatalf("want limiter error propagate")
	}
	e.lim.allowErr = nil

	e.lim.allowOK = false
	if _, _, err := e.svc.Auth.Login(ctx, "alice", "pw-alice", "1.2.3.4"); !errors.Is(err, errs.ErrRateLimited) {
		t.Fatalf("want ErrRateLimited, got %v", err)
	}
	e.lim.allowOK = true

	if _, _, err := e.svc.Auth.Login(ctx, "nope", "x", ""); !errors.Is(err, errs.ErrUnauthenticated) {
		t.Fatalf("want ErrUnauthenticated on missing user, got %v", err)
	}

	e.lim.failBlocked = true
	if _, _, err := e.svc.Auth.Login(ctx, "alice", "wrong", ""); !errors.Is(err, errs.ErrRateLimited) {
		t.Fatalf("want ErrRateLimited on blocked after failure, got %v", err)
	}
	e.lim.failBlocked = false

	if _, _, err := e.svc.Auth.Login(ctx, "alice", "wrong", ""); !errors.Is(err, errs.ErrUnauthenticated) {
		t.Fatalf("want ErrUnauthenticated on wrong password, got %v", err)
	}

	tok, u, err := e.svc.Auth.Login(ctx, "alice", "pw-alice", "127.0.0.1")
	if err != nil {
		t.Fatalf("Login success: %v", err)
	}
	if tok.AccessToken == "" || tok.SessionID == uuid.Nil || !tok.ExpiresAt.After(e.clk.Now()) {
		t.Fatalf("bad token: %+v", tok)
	}
	if u.ID != alice {
		t.Fatalf("bad user returned: %+v", u)
	}
	if e.lim.successCalls == 0 {
		t.Fatalf("expected Success() to be called")
	}
}

func login(t *testing.T, e *env, name string) model.Tokens {
	t.Helper()
	tok, _, err := e.svc.Auth.Login(context.Background(), name, "pw-"+name, "")
	if err != nil {
		t.Fatalf("login %s: %v", name, err)
	}
	return tok
}

func TestAuth_AuthenticateAndLogout(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	ctx := context.Background()
	alice := e.user(t, "alice")
	tok := login(t, e, "alice")

	p, err := e.svc.Auth.Authenticate(ctx, tok.AccessToken)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if p.UserID != alice || p.SessionID != tok.SessionID {
		t.Fatalf("bad principal: %+v", p)
	}

	if _, err := e.svc.Auth.Authenticate(ctx, "garbage"); !errors.Is(err, errs.ErrUnauthenticated) {
		t.Fatalf("want ErrUnauthenticated on garbage, got %v", err)
	}

	if err := e.svc.Auth.Logout(ctx, p); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := e.svc.Auth.Authenticate(ctx, tok.AccessToken); !errors.Is(err, errs.ErrUnauthenticated) {
		t.Fatalf("want revoked session rejected, got %v", err)
	}
}

func TestAuth_Authenticate_RejectsForeignKeyAndExpiry(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	ctx := context.Background()
	e.user(t, "alice")
	tok := login(t, e, "alice")

	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(tok.AccessToken, &claims); err != nil {
		t.Fatalf("parse: %v", err)
	}
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("other-key"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := e.svc.Auth.Authenticate(ctx, forged); !errors.Is(err, errs.ErrUnauthenticated) {
		t.Fatalf("want forged token rejected, got %v", err)
	}

	e.clk.Advance(2 * time.Hour)
	if _, err := e.svc.Auth.Authenticate(ctx, tok.AccessToken); !errors.Is(err, errs.ErrUnauthenticated) {
		t.Fatalf("want expired token rejected, got %v", err)
	}
}

func TestAuth_UserLookups(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	ctx := context.Background()
	alice := e.user(t, "alice")
	e.user(t, "bob")

	name, err := e.svc.Auth.UsernameByID(ctx, alice)
	if err != nil || name != "alice" {
		t.Fatalf("UsernameByID: %q %v", name, err)
	}
	users, err := e.svc.Auth.ListUsers(ctx)
	if err != nil || len(users) != 2 {
		t.Fatalf("ListUsers: %d %v", len(users), err)
	}
	if _, err := e.svc.Auth.UserByUsername(ctx, "carol"); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}

	p := Principal{UserID: alice}
	if err := e.svc.Auth.UpdateUsername(ctx, p, "bob"); !errors.Is(err, errs.ErrAlreadyExists) {
		t.Fatalf("want ErrAlreadyExists, got %v", err)
	}
	if err := e.svc.Auth.UpdatePassword(ctx, p, "pw-alice", "fresh"); err != nil {
		t.Fatalf("UpdatePassword: %v", err)
	}
	if _, _, err := e.svc.Auth.Login(ctx, "alice", "fresh", ""); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
	me, err := e.svc.Auth.Me(ctx, p)
	if err != nil || me.Username != "alice" {
		t.Fatalf("Me: %+v %v", me, err)
	}
}

func TestAuth_DeleteAccount_Cascades(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	ctx := context.Background()
	alice := e.user(t, "alice")
	bob := e.user(t, "bob")

	own := e.project(t, alice, "Mine", "bob")
	e.task(t, alice, own, "Owned", "bob")
	other := e.project(t, bob, "Theirs", "alice")
	shared := e.task(t, bob, other, "Shared", "alice")
	if _, err := e.svc.Tasks.Complete(ctx, alice, shared); err != nil {
		t.Fatalf("complete: %v", err)
	}
	tok := login(t, e, "alice")

	if err := e.svc.Auth.DeleteAccount(ctx, Principal{UserID: alice, SessionID: tok.SessionID}); err != nil {
		t.Fatalf("DeleteAccount: %v", err)
	}

	if _, err := e.svc.Auth.Authenticate(ctx, tok.AccessToken); !errors.Is(err, errs.ErrUnauthenticated) {
		t.Fatalf("want sessions ended, got %v", err)
	}
	if _, err := e.c.Projects.Get(ctx, own); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("want owned project deleted, got %v", err)
	}
	members, err := e.svc.Projects.Members(ctx, bob, other)
	if err != nil || len(members) != 1 || members[0] != "bob" {
		t.Fatalf("want only bob left, got %v %v", members, err)
	}
	task, err := e.c.Tasks.Get(ctx, shared)
	if err != nil || task.Assigned() {
		t.Fatalf("want shared task unassigned, got %+v %v", task, err)
	}
	rewards, err := e.c.Rewards.List(ctx, model.RewardFilter{UserID: &alice})
	if err != nil || len(rewards) != 0 {
		t.Fatalf("want rewards deleted, got %d %v", len(rewards), err)
	}
	if _, err := e.c.Users.Get(ctx, alice); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("want user deleted, got %v", err)
	}
	rep, err := e.svc.Integrity.Check(ctx)
	if err != nil || rep.Total() != 0 {
		t.Fatalf("want no orphans, got %+v %v", rep, err)
	}
}
