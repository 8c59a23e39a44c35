package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/taskhive/internal/errs"
	"github.com/and161185/taskhive/internal/model"
	"github.com/and161185/taskhive/internal/repository"
)

func TestProjects_Create_EnrollsCreator(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	ctx := context.Background()
	alice := e.user(t, "alice")

	p, err := e.svc.Projects.Create(ctx, alice, "Launch")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	members, err := e.svc.Projects.Members(ctx, alice, p.ID)
	if err != nil || len(members) != 1 || members[0] != "alice" {
		t.Fatalf("want creator enrolled, got %v %v", members, err)
	}
	if _, err := e.svc.Projects.Create(ctx, alice, "Launch"); !errors.Is(err, errs.ErrNotAllowed) {
		t.Fatalf("want duplicate name rejected, got %v", err)
	}
}

func TestProjects_Create_CompensatesFailedMembership(t *testing.T) {
	t.Parallel()
	fm := &failingMembers{}
	e := newEnv(t, func(s *repository.Set) {
		fm.MembershipRepository = s.Memberships
		s.Memberships = fm
	})
	ctx := context.Background()
	alice := e.user(t, "alice")

	fm.addErr = errors.New("disk full")
	if _, err := e.svc.Projects.Create(ctx, alice, "Launch"); err == nil {
		t.Fatalf("want membership failure propagated")
	}
	owned, err := e.c.Projects.ListByCreator(ctx, alice)
	if err != nil || len(owned) != 0 {
		t.Fatalf("want compensating delete, got %d projects %v", len(owned), err)
	}

	fm.addErr = nil
	if _, err := e.svc.Projects.Create(ctx, alice, "Launch"); err != nil {
		t.Fatalf("name must be free again: %v", err)
	}
}

func TestProjects_Delete_FullCascade(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	ctx := context.Background()
	alice := e.user(t, "alice")
	bob := e.user(t, "bob")
	pid := e.project(t, alice, "Launch", "bob")

	due := e.clk.Now().Add(24 * time.Hour)
	res, err := e.svc.Tasks.Create(ctx, alice, NewTaskInput{ProjectID: pid, Title: "Design", Assignee: "bob", Deadline: &due})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	design := res.Task.ID
	review := e.task(t, alice, pid, "Review", "")
	if err := e.svc.Tasks.AddDependency(ctx, alice, design, review); err != nil {
		t.Fatalf("AddDependency: %v", err)
	}
	if _, err := e.svc.Tasks.Complete(ctx, bob, design); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if _, err := e.svc.Notifications.NotifyTeam(ctx, bob, pid, "ship it"); err != nil {
		t.Fatalf("NotifyTeam: %v", err)
	}

	if err := e.svc.Projects.Delete(ctx, bob, pid); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("want non-creator rejected, got %v", err)
	}
	if err := e.svc.Projects.Delete(ctx, alice, pid); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	tasks, err := e.c.Tasks.ListByProject(ctx, pid)
	if err != nil || len(tasks) != 0 {
		t.Fatalf("want no tasks, got %d %v", len(tasks), err)
	}
	for _, id := range []uuid.UUID{design, review} {
		if dl, err := e.c.Deadlines.Get(ctx, id); err != nil || dl != nil {
			t.Fatalf("want no deadline for %s, got %+v %v", id, dl, err)
		}
		if ok, err := e.c.Dependencies.CanStart(ctx, id); err != nil || !ok {
			t.Fatalf("want edges removed for %s, got %v %v", id, ok, err)
		}
	}
	rewards, err := e.c.Rewards.List(ctx, model.RewardFilter{ProjectID: &pid})
	if err != nil || len(rewards) != 0 {
		t.Fatalf("want no rewards, got %d %v", len(rewards), err)
	}
	inbox, err := e.svc.Notifications.Mine(ctx, bob)
	if err != nil || len(inbox) != 0 {
		t.Fatalf("want project notifications removed, got %d %v", len(inbox), err)
	}
	rep, err := e.svc.Integrity.Check(ctx)
	if err != nil || rep.Total() != 0 {
		t.Fatalf("want no orphans, got %+v %v", rep, err)
	}
}

func TestProjects_Membership(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	ctx := context.Background()
	alice := e.user(t, "alice")
	bob := e.user(t, "bob")
	e.user(t, "carol")
	pid := e.project(t, alice, "Launch", "bob")
	tid := e.task(t, alice, pid, "Design", "bob")

	if err := e.svc.Projects.AddMember(ctx, alice, pid, "bob"); !errors.Is(err, errs.ErrNotAllowed) {
		t.Fatalf("want duplicate member rejected, got %v", err)
	}
	if err := e.svc.Projects.AddMember(ctx, bob, pid, "carol"); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("want non-creator rejected, got %v", err)
	}
	if err := e.svc.Projects.RemoveMember(ctx, alice, pid, "alice"); !errors.Is(err, errs.ErrNotAllowed) {
		t.Fatalf("want creator removal rejected, got %v", err)
	}
	if err := e.svc.Projects.RemoveMember(ctx, alice, pid, "carol"); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("want ErrNotFound for non-member, got %v", err)
	}
	if err := e.svc.Projects.RemoveMember(ctx, alice, pid, "bob"); err != nil {
		t.Fatalf("RemoveMember: %v", err)
	}
	task, err := e.c.Tasks.Get(ctx, tid)
	if err != nil || task.Assigned() {
		t.Fatalf("want removed member unassigned, got %+v %v", task, err)
	}
	if _, err := e.svc.Projects.Get(ctx, bob, pid); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("want former member rejected, got %v", err)
	}
}

func TestProjects_Members_JoinOrderUnderFrozenClock(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	ctx := context.Background()
	owner := e.user(t, "zed")
	names := []string{"m5", "m0", "m3", "m1", "m4", "m2"}
	for _, n := range names {
		e.user(t, n)
	}
	pid := e.project(t, owner, "Launch", names...)

	want := append([]string{"zed"}, names...)
	got, err := e.svc.Projects.Members(ctx, owner, pid)
	if err != nil {
		t.Fatalf("Members: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("join order broken: got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("join order broken: got %v want %v", got, want)
		}
	}
}

func TestProjects_Delete_SweepsTasksOutsideList(t *testing.T) {
	t.Parallel()
	hidden := &hidingTasks{}
	e := newEnv(t, func(s *repository.Set) {
		hidden.TaskRepository = s.Tasks
		s.Tasks = hidden
	})
	ctx := context.Background()
	alice := e.user(t, "alice")
	pid := e.project(t, alice, "Launch")
	visible := e.task(t, alice, pid, "Listed", "")
	stray := e.task(t, alice, pid, "Stray", "")
	hidden.hide = stray

	if err := e.svc.Projects.Delete(ctx, alice, pid); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	for _, id := range []uuid.UUID{visible, stray} {
		if _, err := e.repos.Tasks.GetByID(ctx, id); !errors.Is(err, errs.ErrNotFound) {
			t.Fatalf("want task %s swept, got %v", id, err)
		}
	}
}

func TestProjects_RenameAndTransfer(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	ctx := context.Background()
	alice := e.user(t, "alice")
	bob := e.user(t, "bob")
	e.user(t, "carol")
	pid := e.project(t, alice, "Launch", "bob")
	e.project(t, alice, "Taken")

	if err := e.svc.Projects.Rename(ctx, alice, pid, "Taken"); !errors.Is(err, errs.ErrNotAllowed) {
		t.Fatalf("want name clash rejected, got %v", err)
	}
	if err := e.svc.Projects.Rename(ctx, alice, pid, "Liftoff"); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	got, err := e.svc.Projects.GetByName(ctx, bob, "Liftoff")
	if err != nil || got.ID != pid {
		t.Fatalf("GetByName as member: %+v %v", got, err)
	}

	if err := e.svc.Projects.TransferManager(ctx, alice, pid, "carol"); !errors.Is(err, errs.ErrNotAllowed) {
		t.Fatalf("want non-member manager rejected, got %v", err)
	}
	if err := e.svc.Projects.TransferManager(ctx, alice, pid, "bob"); err != nil {
		t.Fatalf("TransferManager: %v", err)
	}
	if err := e.svc.Projects.AddMember(ctx, bob, pid, "carol"); err != nil {
		t.Fatalf("new manager adds member: %v", err)
	}
	mine, err := e.svc.Projects.ListMine(ctx, alice)
	if err != nil || len(mine) != 2 {
		t.Fatalf("ListMine: %d %v", len(mine), err)
	}
}
