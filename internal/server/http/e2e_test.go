package httpserver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/and161185/taskhive/internal/client"
	"github.com/and161185/taskhive/internal/concept"
	"github.com/and161185/taskhive/internal/convert"
	"github.com/and161185/taskhive/internal/crypto"
	"github.com/and161185/taskhive/internal/limiter"
	"github.com/and161185/taskhive/internal/repository/sqlite"
	"github.com/and161185/taskhive/internal/repository/sqlite/sqlitetest"
	"github.com/and161185/taskhive/internal/service"
)

type harness struct {
	url string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := sqlitetest.Open(t)
	repos := sqlite.NewSet(db)
	c := concept.New(repos, concept.Options{
		Hasher:     crypto.NewHasher(crypto.FastParams),
		RewardSeed: 7,
	})
	lim := limiter.NewSQLite(db.X, limiter.Policy{Window: time.Minute, MaxFails: 3, BlockFor: time.Minute})
	svc := service.New(c, repos.Integrity, lim, service.Options{
		SignKey:   []byte("e2e-key"),
		AccessTTL: time.Hour,
	})
	srv := httptest.NewServer(New(svc, zap.NewNop()).Handler())
	t.Cleanup(srv.Close)
	return &harness{url: srv.URL}
}

// login registers name and returns a client holding its token.
func (h *harness) login(t *testing.T, name string) *client.Client {
	t.Helper()
	ctx := context.Background()
	c := client.New(h.url, 5*time.Second)
	_, err := c.Register(ctx, name, "pw-"+name)
	require.NoError(t, err)
	_, err = c.Login(ctx, name, "pw-"+name)
	require.NoError(t, err)
	return c
}

func wantStatus(t *testing.T, err error, status int) *client.APIError {
	t.Helper()
	var apiErr *client.APIError
	require.True(t, errors.As(err, &apiErr), "want api error, got %v", err)
	require.Equal(t, status, apiErr.Status, apiErr.Msg)
	return apiErr
}

func TestE2E_AssignCompleteReward(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	alice := h.login(t, "alice")
	bob := h.login(t, "bob")

	proj, err := alice.CreateProject(ctx, "Launch")
	require.NoError(t, err)
	require.Equal(t, service.MsgProjectCreated, proj.Msg)

	msg, err := alice.AddMember(ctx, proj.Project.ID, "bob")
	require.NoError(t, err)
	require.Equal(t, service.MsgMemberAdded, msg)

	members, err := alice.Members(ctx, proj.Project.ID)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"alice", "bob"}, members)

	due := time.Now().Add(48 * time.Hour)
	created, err := alice.CreateTask(ctx, convert.NewTask{
		Title:    "Write docs",
		Project:  proj.Project.ID,
		Assignee: "bob",
		Deadline: &due,
	})
	require.NoError(t, err)
	require.NotNil(t, created.Deadline)
	taskID := created.Task.ID

	_, err = alice.Complete(ctx, taskID)
	wantStatus(t, err, http.StatusForbidden)

	done, err := bob.Complete(ctx, taskID)
	require.NoError(t, err)
	require.NotNil(t, done.Reward)
	require.Contains(t, done.Msg, concept.MsgTaskCompleted)
	require.True(t, strings.HasPrefix(done.Reward.Icon, "/icons/"))

	rewards, err := bob.Rewards(ctx, proj.Project.ID, "")
	require.NoError(t, err)
	require.Len(t, rewards, 1)

	mine, err := bob.MyTasks(ctx)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Equal(t, "Launch", mine[0].ProjectName)
	require.True(t, mine[0].Completion)

	msg, err = bob.Incomplete(ctx, taskID)
	require.NoError(t, err)
	require.Contains(t, msg, service.MsgRewardRemoved)

	rewards, err = bob.Rewards(ctx, "", "")
	require.NoError(t, err)
	require.Empty(t, rewards)
}

func TestE2E_DependenciesAndCycles(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	alice := h.login(t, "alice")

	proj, err := alice.CreateProject(ctx, "Pipeline")
	require.NoError(t, err)
	design, err := alice.CreateTask(ctx, convert.NewTask{Title: "design", Project: proj.Project.ID})
	require.NoError(t, err)
	build, err := alice.CreateTask(ctx, convert.NewTask{Title: "build", Project: proj.Project.ID})
	require.NoError(t, err)

	msg, err := alice.AddDependency(ctx, design.Task.ID, build.Task.ID)
	require.NoError(t, err)
	require.Equal(t, concept.MsgDependencyCreated, msg)

	ok, err := alice.CanStart(ctx, build.Task.ID)
	require.NoError(t, err)
	require.False(t, ok)
	ok, err = alice.CanStart(ctx, design.Task.ID)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = alice.AddDependency(ctx, design.Task.ID, build.Task.ID)
	wantStatus(t, err, http.StatusConflict)

	_, err = alice.AddDependency(ctx, build.Task.ID, design.Task.ID)
	apiErr := wantStatus(t, err, http.StatusConflict)
	require.Contains(t, apiErr.Msg, "cycle")

	_, err = alice.AddDependency(ctx, build.Task.ID, build.Task.ID)
	wantStatus(t, err, http.StatusConflict)

	_, err = alice.RemoveDependency(ctx, design.Task.ID, build.Task.ID)
	require.NoError(t, err)
	ok, err = alice.CanStart(ctx, build.Task.ID)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestE2E_PastDeadlineStillCreatesTask(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	alice := h.login(t, "alice")

	proj, err := alice.CreateProject(ctx, "Late")
	require.NoError(t, err)
	past := time.Now().Add(-time.Hour)
	created, err := alice.CreateTask(ctx, convert.NewTask{Title: "overdue", Project: proj.Project.ID, Deadline: &past})
	require.NoError(t, err)
	require.Nil(t, created.Deadline)
	require.Contains(t, created.Msg, "Can't set a deadline in the past!")

	_, err = alice.Deadline(ctx, created.Task.ID)
	wantStatus(t, err, http.StatusNotFound)

	tasks, err := alice.ProjectTasks(ctx, proj.Project.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
}

func TestE2E_AuthAndAccess(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	anon := client.New(h.url, 5*time.Second)
	require.NoError(t, anon.Health(ctx))
	_, err := anon.MyProjects(ctx)
	apiErr := wantStatus(t, err, http.StatusUnauthorized)
	require.Equal(t, "Must be logged in!", apiErr.Msg)

	alice := h.login(t, "alice")
	_, err = alice.Register(ctx, "again", "pw")
	wantStatus(t, err, http.StatusConflict)

	dup := client.New(h.url, 5*time.Second)
	_, err = dup.Register(ctx, "alice", "other")
	wantStatus(t, err, http.StatusConflict)

	_, err = dup.Login(ctx, "alice", "wrong")
	wantStatus(t, err, http.StatusUnauthorized)

	proj, err := alice.CreateProject(ctx, "Secret")
	require.NoError(t, err)
	_, err = alice.CreateProject(ctx, "Secret")
	wantStatus(t, err, http.StatusConflict)

	mallory := h.login(t, "mallory")
	_, err = mallory.ProjectTasks(ctx, proj.Project.ID)
	wantStatus(t, err, http.StatusForbidden)
	_, err = mallory.DeleteProject(ctx, proj.Project.ID)
	wantStatus(t, err, http.StatusForbidden)
	_, err = mallory.DeleteProject(ctx, "not-a-uuid")
	wantStatus(t, err, http.StatusBadRequest)

	_, err = alice.Logout(ctx)
	require.NoError(t, err)
	_, err = alice.Me(ctx)
	wantStatus(t, err, http.StatusUnauthorized)
}

func TestE2E_LoginRateLimited(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.login(t, "carol")

	c := client.New(h.url, 5*time.Second)
	var err error
	for i := 0; i < 3; i++ {
		_, err = c.Login(ctx, "carol", "nope")
	}
	require.Error(t, err)

	_, err = c.Login(ctx, "carol", "pw-carol")
	apiErr := wantStatus(t, err, http.StatusTooManyRequests)
	require.Equal(t, "Too many failed attempts, try again later.", apiErr.Msg)
}

func TestE2E_NotificationsAndProjectDelete(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	alice := h.login(t, "alice")
	bob := h.login(t, "bob")

	proj, err := alice.CreateProject(ctx, "Ops")
	require.NoError(t, err)
	_, err = alice.AddMember(ctx, proj.Project.ID, "bob")
	require.NoError(t, err)
	task, err := alice.CreateTask(ctx, convert.NewTask{Title: "rotate keys", Project: proj.Project.ID, Assignee: "bob"})
	require.NoError(t, err)

	msg, err := alice.NotifyAssignee(ctx, task.Task.ID, "please start")
	require.NoError(t, err)
	require.Equal(t, concept.MsgNotificationCreated, msg)
	_, err = alice.NotifyTeam(ctx, proj.Project.ID, "standup at 10")
	require.NoError(t, err)

	inbox, err := bob.Notifications(ctx)
	require.NoError(t, err)
	require.Len(t, inbox, 2)

	_, err = alice.Dismiss(ctx, inbox[0].ID)
	wantStatus(t, err, http.StatusForbidden)
	msg, err = bob.Dismiss(ctx, inbox[0].ID)
	require.NoError(t, err)
	require.Equal(t, concept.MsgNotificationDeleted, msg)

	_, err = bob.DeleteProject(ctx, proj.Project.ID)
	wantStatus(t, err, http.StatusForbidden)
	msg, err = alice.DeleteProject(ctx, proj.Project.ID)
	require.NoError(t, err)
	require.Equal(t, service.MsgProjectDeleted, msg)

	inbox, err = bob.Notifications(ctx)
	require.NoError(t, err)
	require.Empty(t, inbox)
	_, err = bob.Task(ctx, task.Task.ID)
	wantStatus(t, err, http.StatusNotFound)
}
