package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/taskhive/internal/concept"
	"github.com/and161185/taskhive/internal/crypto"
	"github.com/and161185/taskhive/internal/limiter"
	"github.com/and161185/taskhive/internal/model"
	"github.com/and161185/taskhive/internal/repository"
	"github.com/and161185/taskhive/internal/repository/sqlite/sqlitetest"
)

type fakeLimiter struct {
	allowOK  bool
	allowErr error

	failBlocked bool
	failErr     error

	successErr error

	allowCalls   int
	failureCalls int
	successCalls int
}

var _ limiter.Limiter = (*fakeLimiter)(nil)

func (l *fakeLimiter) Allow(context.Context, string, []byte) (bool, time.Duration, error) {
	l.allowCalls++
	return l.allowOK, 0, l.allowErr
}
func (l *fakeLimiter) Success(context.Context, string, []byte) error {
	l.successCalls++
	return l.successErr
}
func (l *fakeLimiter) Failure(context.Context, string, []byte) (bool, time.Duration, error) {
	l.failureCalls++
	return l.failBlocked, 0, l.failErr
}

// failingMembers fails Add while addErr is set.
type failingMembers struct {
	repository.MembershipRepository
	addErr error
}

func (f *failingMembers) Add(ctx context.Context, m *model.Membership) error {
	if f.addErr != nil {
		return f.addErr
	}
	return f.MembershipRepository.Add(ctx, m)
}

// hidingTasks leaves hide out of project listings.
type hidingTasks struct {
	repository.TaskRepository
	hide uuid.UUID
}

func (h *hidingTasks) ListByProject(ctx context.Context, projectID uuid.UUID) ([]model.Task, error) {
	all, err := h.TaskRepository.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, t := range all {
		if t.ID != h.hide {
			out = append(out, t)
		}
	}
	return out, nil
}

type testClock struct{ t time.Time }

func (c *testClock) Now() time.Time          { return c.t }
func (c *testClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type env struct {
	repos repository.Set
	c     *concept.Concepts
	svc   *Services
	lim   *fakeLimiter
	clk   *testClock
}

func newEnv(t *testing.T, wrap ...func(*repository.Set)) *env {
	t.Helper()
	repos := sqlitetest.New(t)
	for _, w := range wrap {
		w(&repos)
	}
	clk := &testClock{t: time.Now().UTC().Truncate(time.Second)}
	c := concept.New(repos, concept.Options{
		Hasher:     crypto.NewHasher(crypto.FastParams),
		Clock:      clk.Now,
		RewardSeed: 42,
	})
	lim := &fakeLimiter{allowOK: true}
	svc := New(c, repos.Integrity, lim, Options{
		SignKey:   []byte("test-key"),
		AccessTTL: time.Hour,
		Clock:     clk.Now,
	})
	return &env{repos: repos, c: c, svc: svc, lim: lim, clk: clk}
}

func (e *env) user(t *testing.T, name string) uuid.UUID {
	t.Helper()
	u, err := e.svc.Auth.Register(context.Background(), name, "pw-"+name)
	if err != nil {
		t.Fatalf("register %s: %v", name, err)
	}
	return u.ID
}

func (e *env) project(t *testing.T, actor uuid.UUID, name string, members ...string) uuid.UUID {
	t.Helper()
	ctx := context.Background()
	p, err := e.svc.Projects.Create(ctx, actor, name)
	if err != nil {
		t.Fatalf("create project %s: %v", name, err)
	}
	for _, m := range members {
		if err := e.svc.Projects.AddMember(ctx, actor, p.ID, m); err != nil {
			t.Fatalf("add member %s: %v", m, err)
		}
	}
	return p.ID
}

func (e *env) task(t *testing.T, actor, project uuid.UUID, title, assignee string) uuid.UUID {
	t.Helper()
	res, err := e.svc.Tasks.Create(context.Background(), actor, NewTaskInput{ProjectID: project, Title: title, Assignee: assignee})
	if err != nil {
		t.Fatalf("create task %s: %v", title, err)
	}
	return res.Task.ID
}

func wantKind(t *testing.T, err, kind error) {
	t.Helper()
	if !errors.Is(err, kind) {
		t.Fatalf("want %v, got %v", kind, err)
	}
}
