package concept

import (
	"context"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/require"

	"github.com/and161185/taskhive/internal/crypto"
	"github.com/and161185/taskhive/internal/errs"
	"github.com/and161185/taskhive/internal/model"
	"github.com/and161185/taskhive/internal/repository/sqlite/sqlitetest"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration)   { c.t = c.t.Add(d) }

func newConcepts(t *testing.T) (*Concepts, *fakeClock) {
	t.Helper()
	clk := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	c := New(sqlitetest.New(t), Options{
		Hasher:     crypto.NewHasher(crypto.FastParams),
		Clock:      clk.Now,
		RewardSeed: 7,
	})
	return c, clk
}

func mustID(t *testing.T) uuid.UUID {
	t.Helper()
	id, err := uuid.NewV4()
	require.NoError(t, err)
	return id
}

func TestUsers_CreateAuthenticate(t *testing.T) {
	ctx := context.Background()
	c, _ := newConcepts(t)

	u, err := c.Users.Create(ctx, "alice", "pw")
	require.NoError(t, err)
	require.Equal(t, "alice", u.Username)

	_, err = c.Users.Create(ctx, "alice", "other")
	require.ErrorIs(t, err, errs.ErrAlreadyExists)
	require.Equal(t, "User with username alice already exists!", errs.Message(err))

	_, err = c.Users.Create(ctx, " ", "pw")
	require.ErrorIs(t, err, errs.ErrInvalidArgument)

	got, err := c.Users.Authenticate(ctx, "alice", "pw")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)

	_, err = c.Users.Authenticate(ctx, "alice", "bad")
	require.ErrorIs(t, err, errs.ErrUnauthenticated)
	_, err = c.Users.Authenticate(ctx, "nobody", "pw")
	require.ErrorIs(t, err, errs.ErrUnauthenticated)
}

func TestUsers_UpdateAndResolve(t *testing.T) {
	ctx := context.Background()
	c, _ := newConcepts(t)

	a, err := c.Users.Create(ctx, "alice", "pw")
	require.NoError(t, err)
	b, err := c.Users.Create(ctx, "bob", "pw")
	require.NoError(t, err)

	names, err := c.Users.IDsToUsernames(ctx, []uuid.UUID{b.ID, a.ID})
	require.NoError(t, err)
	require.Equal(t, []string{"bob", "alice"}, names)

	_, err = c.Users.IDsToUsernames(ctx, []uuid.UUID{mustID(t)})
	require.ErrorIs(t, err, errs.ErrNotFound)

	require.ErrorIs(t, c.Users.UpdateUsername(ctx, a.ID, "bob"), errs.ErrAlreadyExists)
	require.NoError(t, c.Users.UpdateUsername(ctx, a.ID, "alicia"))

	require.ErrorIs(t, c.Users.UpdatePassword(ctx, a.ID, "wrong", "new"), errs.ErrUnauthorized)
	require.NoError(t, c.Users.UpdatePassword(ctx, a.ID, "pw", "new"))
	_, err = c.Users.Authenticate(ctx, "alicia", "new")
	require.NoError(t, err)

	require.NoError(t, c.Users.Delete(ctx, a.ID))
	_, err = c.Users.Get(ctx, a.ID)
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestSessions_Expiry(t *testing.T) {
	ctx := context.Background()
	c, clk := newConcepts(t)
	user := mustID(t)

	s, err := c.Sessions.Start(ctx, user, time.Hour)
	require.NoError(t, err)

	got, err := c.Sessions.Get(ctx, s.ID)
	require.NoError(t, err)
	require.Equal(t, user, got.UserID)

	clk.Advance(2 * time.Hour)
	_, err = c.Sessions.Get(ctx, s.ID)
	require.ErrorIs(t, err, errs.ErrUnauthenticated)
	// expired sessions are removed on read
	require.ErrorIs(t, c.Sessions.End(ctx, s.ID), errs.ErrUnauthenticated)

	_, err = c.Sessions.Start(ctx, user, time.Hour)
	require.NoError(t, err)
	_, err = c.Sessions.Start(ctx, user, time.Hour)
	require.NoError(t, err)
	n, err := c.Sessions.EndAll(ctx, user)
	require.NoError(t, err)
	require.EqualValues(t, 2, n)
}

func TestProjects_UniquePerCreator(t *testing.T) {
	ctx := context.Background()
	c, _ := newConcepts(t)
	alice, bob := mustID(t), mustID(t)

	p, err := c.Projects.Create(ctx, alice, "Launch")
	require.NoError(t, err)

	_, err = c.Projects.Create(ctx, alice, "Launch")
	require.ErrorIs(t, err, errs.ErrNotAllowed)
	require.Contains(t, errs.Message(err), "already exists! Please choose a different name.")

	_, err = c.Projects.Create(ctx, bob, "Launch")
	require.NoError(t, err)

	other, err := c.Projects.Create(ctx, alice, "Other")
	require.NoError(t, err)
	require.ErrorIs(t, c.Projects.Rename(ctx, other.ID, "Launch"), errs.ErrAlreadyExists)
	require.NoError(t, c.Projects.Rename(ctx, other.ID, "Renamed"))

	got, err := c.Projects.GetByName(ctx, alice, "Renamed")
	require.NoError(t, err)
	require.Equal(t, other.ID, got.ID)

	_, err = c.Projects.AssertCreator(ctx, p.ID, bob)
	require.ErrorIs(t, err, errs.ErrUnauthorized)
	_, err = c.Projects.AssertCreator(ctx, mustID(t), alice)
	require.ErrorIs(t, err, errs.ErrNotFound)

	require.ErrorIs(t, c.Projects.SetCreator(ctx, p.ID, bob), errs.ErrAlreadyExists)
	require.NoError(t, c.Projects.SetCreator(ctx, other.ID, bob))

	require.NoError(t, c.Projects.Delete(ctx, p.ID))
	require.ErrorIs(t, c.Projects.Delete(ctx, p.ID), errs.ErrNotFound)
}

func TestMembers(t *testing.T) {
	ctx := context.Background()
	c, _ := newConcepts(t)
	project, alice, bob := mustID(t), mustID(t), mustID(t)

	require.NoError(t, c.Members.Add(ctx, project, alice))
	require.ErrorIs(t, c.Members.Add(ctx, project, alice), errs.ErrNotAllowed)
	require.NoError(t, c.Members.Add(ctx, project, bob))

	ids, err := c.Members.Members(ctx, project)
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{alice, bob}, ids)

	require.NoError(t, c.Members.AssertMember(ctx, project, bob))
	require.ErrorIs(t, c.Members.AssertMember(ctx, project, mustID(t)), errs.ErrUnauthorized)

	require.NoError(t, c.Members.Remove(ctx, project, bob))
	require.ErrorIs(t, c.Members.Remove(ctx, project, bob), errs.ErrNotFound)

	projects, err := c.Members.ProjectsFor(ctx, alice)
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{project}, projects)
}

func TestMembers_InsertionOrderUnderFrozenClock(t *testing.T) {
	ctx := context.Background()
	c, _ := newConcepts(t)
	project := mustID(t)

	want := make([]uuid.UUID, 8)
	for i := range want {
		want[i] = mustID(t)
		require.NoError(t, c.Members.Add(ctx, project, want[i]))
	}

	for i := 0; i < 5; i++ {
		got, err := c.Members.Members(ctx, project)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestTasks_ForProjectInsertionOrderUnderFrozenClock(t *testing.T) {
	ctx := context.Background()
	c, _ := newConcepts(t)
	project := mustID(t)

	var want []uuid.UUID
	for _, title := range []string{"e", "d", "c", "b", "a", "f"} {
		task, err := c.Tasks.Create(ctx, NewTask{ProjectID: project, Title: title})
		require.NoError(t, err)
		want = append(want, task.ID)
	}

	got, err := c.Tasks.ListByProject(ctx, project)
	require.NoError(t, err)
	ids := make([]uuid.UUID, 0, len(got))
	for _, task := range got {
		ids = append(ids, task.ID)
	}
	require.Equal(t, want, ids)
}

func TestTasks_Lifecycle(t *testing.T) {
	ctx := context.Background()
	c, _ := newConcepts(t)
	project, alice := mustID(t), mustID(t)

	_, err := c.Tasks.Create(ctx, NewTask{ProjectID: project})
	require.ErrorIs(t, err, errs.ErrInvalidArgument)

	task, err := c.Tasks.Create(ctx, NewTask{ProjectID: project, Title: "Design"})
	require.NoError(t, err)
	require.False(t, task.Completion)
	require.Empty(t, task.Links)
	require.False(t, task.Assigned())

	require.NoError(t, c.Tasks.Assign(ctx, task.ID, uuid.NullUUID{UUID: alice, Valid: true}))
	got, err := c.Tasks.Get(ctx, task.ID)
	require.NoError(t, err)
	require.True(t, got.IsAssignee(alice))

	msg, err := c.Tasks.SetCompletion(ctx, task.ID, true)
	require.NoError(t, err)
	require.Equal(t, MsgTaskCompleted, msg)
	msg, err = c.Tasks.SetCompletion(ctx, task.ID, false)
	require.NoError(t, err)
	require.Equal(t, MsgTaskIncomplete, msg)

	require.NoError(t, c.Tasks.UpdateDetails(ctx, task.ID, "Design v2", "notes", []string{"https://x"}))
	got, err = c.Tasks.Get(ctx, task.ID)
	require.NoError(t, err)
	require.Equal(t, "Design v2", got.Title)
	require.Equal(t, []string{"https://x"}, got.Links)

	n, err := c.Tasks.UnassignMember(ctx, project, alice)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	require.NoError(t, c.Tasks.Delete(ctx, task.ID))
	_, err = c.Tasks.Get(ctx, task.ID)
	require.ErrorIs(t, err, errs.ErrNotFound)
	_, err = c.Tasks.SetCompletion(ctx, task.ID, true)
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestDependencies_GraphRules(t *testing.T) {
	ctx := context.Background()
	c, _ := newConcepts(t)
	a, b, d := mustID(t), mustID(t), mustID(t)

	_, err := c.Dependencies.Create(ctx, a, a)
	require.ErrorIs(t, err, errs.ErrNotAllowed)

	_, err = c.Dependencies.Create(ctx, a, b)
	require.NoError(t, err)
	_, err = c.Dependencies.Create(ctx, a, b)
	require.ErrorIs(t, err, errs.ErrNotAllowed)
	require.Equal(t, "A dependency already exists with independent: "+a.String()+" and dependent: "+b.String(), errs.Message(err))

	_, err = c.Dependencies.Create(ctx, b, d)
	require.NoError(t, err)
	// d -> a would close a -> b -> d -> a
	_, err = c.Dependencies.Create(ctx, d, a)
	require.ErrorIs(t, err, errs.ErrNotAllowed)
	require.Contains(t, errs.Message(err), "cycle")

	ok, err := c.Dependencies.CanStart(ctx, a)
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = c.Dependencies.CanStart(ctx, b)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, c.Dependencies.Remove(ctx, a, b))
	err = c.Dependencies.Remove(ctx, a, b)
	require.ErrorIs(t, err, errs.ErrNotAllowed)
	require.Equal(t, "Removal failed, "+b.String()+" does not have dependency on "+a.String(), errs.Message(err))

	ok, err = c.Dependencies.CanStart(ctx, b)
	require.NoError(t, err)
	require.True(t, ok)

	n, err := c.Dependencies.DeleteForTask(ctx, d)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
}

func TestDeadlines(t *testing.T) {
	ctx := context.Background()
	c, clk := newConcepts(t)
	task := mustID(t)

	_, err := c.Deadlines.Create(ctx, task, clk.Now().Add(-time.Minute))
	require.ErrorIs(t, err, errs.ErrNotAllowed)
	require.Equal(t, "Can't set a deadline in the past!", errs.Message(err))

	dl, err := c.Deadlines.Get(ctx, task)
	require.NoError(t, err)
	require.Nil(t, dl)
	require.ErrorIs(t, c.Deadlines.Update(ctx, task, clk.Now().Add(time.Hour)), errs.ErrNotFound)
	_, err = c.Deadlines.HasPassed(ctx, task)
	require.ErrorIs(t, err, errs.ErrNotFound)

	due := clk.Now().Add(48 * time.Hour)
	_, err = c.Deadlines.Create(ctx, task, due)
	require.NoError(t, err)
	_, err = c.Deadlines.Create(ctx, task, due)
	require.ErrorIs(t, err, errs.ErrAlreadyExists)

	left, err := c.Deadlines.TimeLeft(ctx, task)
	require.NoError(t, err)
	require.Equal(t, 48*time.Hour, left)

	require.ErrorIs(t, c.Deadlines.Update(ctx, task, clk.Now()), errs.ErrNotAllowed)
	require.NoError(t, c.Deadlines.Update(ctx, task, clk.Now().Add(time.Hour)))

	clk.Advance(2 * time.Hour)
	passed, err := c.Deadlines.HasPassed(ctx, task)
	require.NoError(t, err)
	require.True(t, passed)
	left, err = c.Deadlines.TimeLeft(ctx, task)
	require.NoError(t, err)
	require.Equal(t, -time.Hour, left)
}

type firstRand struct{}

func (firstRand) IntN(int) int { return 0 }

func TestPickReward(t *testing.T) {
	pool := []RewardKind{{Name: "A"}, {Name: "B"}, {Name: "C"}}

	k, ok := PickReward(pool, []string{"A"}, firstRand{})
	require.True(t, ok)
	require.Equal(t, "B", k.Name)

	_, ok = PickReward(pool, []string{"A", "B", "C"}, firstRand{})
	require.False(t, ok)

	rng := NewRandomSource(1)
	seen := map[string]bool{}
	for range 200 {
		k, ok := PickReward(pool, []string{"B"}, rng)
		require.True(t, ok)
		require.NotEqual(t, "B", k.Name)
		seen[k.Name] = true
	}
	require.Len(t, seen, 2)
}

func TestRewards_PoolExhaustion(t *testing.T) {
	ctx := context.Background()
	c, _ := newConcepts(t)
	user, project := mustID(t), mustID(t)

	names := map[string]bool{}
	for i := range DefaultRewardPool {
		g, err := c.Rewards.Create(ctx, user, project, mustID(t))
		require.NoError(t, err, "grant %d", i)
		require.NotNil(t, g.Reward)
		require.False(t, names[g.Reward.Name], "duplicate reward %s", g.Reward.Name)
		names[g.Reward.Name] = true
	}

	g, err := c.Rewards.Create(ctx, user, project, mustID(t))
	require.NoError(t, err)
	require.Nil(t, g.Reward)
	require.Equal(t, MsgRewardsExhausted, g.Msg)

	list, err := c.Rewards.List(ctx, model.RewardFilter{UserID: &user})
	require.NoError(t, err)
	require.Len(t, list, len(DefaultRewardPool))
}

func TestRewards_OnePerTask(t *testing.T) {
	ctx := context.Background()
	c, _ := newConcepts(t)
	alice, bob, project, task := mustID(t), mustID(t), mustID(t), mustID(t)

	g, err := c.Rewards.Create(ctx, alice, project, task)
	require.NoError(t, err)
	require.NotNil(t, g.Reward)

	_, err = c.Rewards.Create(ctx, bob, project, task)
	require.ErrorIs(t, err, errs.ErrNotAllowed)

	n, err := c.Rewards.DeleteForTask(ctx, task)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	rw, err := c.Rewards.ForTask(ctx, task)
	require.NoError(t, err)
	require.Nil(t, rw)

	g, err = c.Rewards.Create(ctx, bob, project, task)
	require.NoError(t, err)
	require.NotNil(t, g.Reward)
}

func TestNotifications(t *testing.T) {
	ctx := context.Background()
	c, clk := newConcepts(t)
	user, task := mustID(t), mustID(t)

	empty, err := c.Notifications.ListForUser(ctx, user)
	require.NoError(t, err)
	require.NotNil(t, empty)
	require.Empty(t, empty)

	_, err = c.Notifications.Create(ctx, user, "", uuid.NullUUID{})
	require.ErrorIs(t, err, errs.ErrInvalidArgument)

	first, err := c.Notifications.Create(ctx, user, "hello", uuid.NullUUID{UUID: task, Valid: true})
	require.NoError(t, err)
	clk.Advance(time.Second)
	second, err := c.Notifications.Create(ctx, user, "again", uuid.NullUUID{})
	require.NoError(t, err)

	list, err := c.Notifications.ListForUser(ctx, user)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, second.ID, list[0].ID)

	byRes, err := c.Notifications.ListForResource(ctx, task)
	require.NoError(t, err)
	require.Len(t, byRes, 1)

	require.NoError(t, c.Notifications.Delete(ctx, first.ID))
	require.ErrorIs(t, c.Notifications.Delete(ctx, first.ID), errs.ErrNotFound)
}
