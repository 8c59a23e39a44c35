package service

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/and161185/taskhive/internal/concept"
	"github.com/and161185/taskhive/internal/errs"
	"github.com/and161185/taskhive/internal/model"
)

// Messages reported by task operations.
const (
	MsgTaskCreated         = "Task successfully created!"
	MsgTaskUpdated         = "Successfully updated task!"
	MsgTaskNotesUpdated    = "Task description successfully updated!"
	MsgTaskAssigneeUpdated = "Task assignee successfully updated!"
	MsgTaskUnassigned      = "Task successfully unassigned!"
	MsgTaskDeleted         = "Task deleted successfully!"
	MsgRewardRemoved       = "Reward successfully removed!"
	MsgDependencyRemoved   = "Dependency successfully removed!"
)

// viewLookups bounds concurrent reads while building task views.
const viewLookups = 8

// NewTaskInput describes a task to create. Assignee is a username; empty
// leaves the task unassigned. A nil Deadline skips the deadline step.
type NewTaskInput struct {
	ProjectID uuid.UUID
	Title     string
	Notes     string
	Links     []string
	Assignee  string
	Deadline  *time.Time
}

// TaskCreation reports both steps of task creation. Deadline is nil when
// none was requested or when its step failed; Msg says which.
type TaskCreation struct {
	Task     *model.Task
	Deadline *model.Deadline
	Msg      string
}

// TaskPatch holds optional detail updates.
type TaskPatch struct {
	Title *string
	Notes *string
	Links *[]string
}

// Completion is the outcome of marking a task complete.
type Completion struct {
	Msg    string
	Reward *model.Reward
}

// TaskView decorates a task with its project name and deadline.
type TaskView struct {
	Task        model.Task
	ProjectName string
	Deadline    *model.Deadline
}

// DeadlineView describes a task's deadline relative to now.
type DeadlineView struct {
	TaskID   uuid.UUID
	Time     time.Time
	Passed   bool
	TimeLeft time.Duration
}

// DependencyView lists the edges around a task.
type DependencyView struct {
	// Dependencies must finish before the task can start.
	Dependencies []model.Dependency
	// Dependents wait for the task.
	Dependents []model.Dependency
}

// TaskService defines task, deadline and dependency operations.
type TaskService interface {
	// Create makes a task in a project the actor created.
	Create(ctx context.Context, actor uuid.UUID, in NewTaskInput) (TaskCreation, error)
	Get(ctx context.Context, actor, id uuid.UUID) (*model.Task, error)
	Update(ctx context.Context, actor, id uuid.UUID, patch TaskPatch) error
	UpdateNotes(ctx context.Context, actor, id uuid.UUID, notes string) error
	Assign(ctx context.Context, actor, id uuid.UUID, username string) error
	Unassign(ctx context.Context, actor, id uuid.UUID) error
	// Complete marks the actor's task done and tries to grant a reward.
	Complete(ctx context.Context, actor, id uuid.UUID) (Completion, error)
	// Incomplete reopens the actor's task and drops its reward.
	Incomplete(ctx context.Context, actor, id uuid.UUID) (string, error)
	Delete(ctx context.Context, actor, id uuid.UUID) error
	CanStart(ctx context.Context, actor, id uuid.UUID) (bool, error)
	ListForProject(ctx context.Context, actor, project uuid.UUID) ([]TaskView, error)
	ListForUser(ctx context.Context, actor uuid.UUID) ([]TaskView, error)
	Deadline(ctx context.Context, actor, id uuid.UUID) (DeadlineView, error)
	UpdateDeadline(ctx context.Context, actor, id uuid.UUID, at time.Time) error
	// AddDependency makes dependent wait for independent.
	AddDependency(ctx context.Context, actor, independent, dependent uuid.UUID) error
	RemoveDependency(ctx context.Context, actor, independent, dependent uuid.UUID) error
	Dependencies(ctx context.Context, actor, id uuid.UUID) (DependencyView, error)
}

type TaskServiceImpl struct {
	c   *concept.Concepts
	log *zap.Logger
}

// NewTaskService constructs TaskService.
func NewTaskService(c *concept.Concepts, log *zap.Logger) *TaskServiceImpl {
	return &TaskServiceImpl{c: c, log: log}
}

// memberAssignee resolves username to a member of project.
func (s *TaskServiceImpl) memberAssignee(ctx context.Context, project uuid.UUID, username string) (uuid.UUID, error) {
	u, err := s.c.Users.GetByUsername(ctx, username)
	if err != nil {
		return uuid.Nil, err
	}
	ok, err := s.c.Members.IsMember(ctx, project, u.ID)
	if err != nil {
		return uuid.Nil, err
	}
	if !ok {
		return uuid.Nil, errs.NotAllowedf("User %s is not a member of the project!", username)
	}
	return u.ID, nil
}

func (s *TaskServiceImpl) Create(ctx context.Context, actor uuid.UUID, in NewTaskInput) (TaskCreation, error) {
	if _, err := s.c.Projects.AssertCreator(ctx, in.ProjectID, actor); err != nil {
		return TaskCreation{}, err
	}
	var assignee uuid.NullUUID
	if in.Assignee != "" {
		id, err := s.memberAssignee(ctx, in.ProjectID, in.Assignee)
		if err != nil {
			return TaskCreation{}, err
		}
		assignee = uuid.NullUUID{UUID: id, Valid: true}
	}
	task, err := s.c.Tasks.Create(ctx, concept.NewTask{
		ProjectID: in.ProjectID,
		Title:     in.Title,
		Notes:     in.Notes,
		Links:     in.Links,
		Assignee:  assignee,
	})
	if err != nil {
		return TaskCreation{}, err
	}
	out := TaskCreation{Task: task, Msg: MsgTaskCreated}
	if in.Deadline == nil {
		return out, nil
	}
	dl, err := s.c.Deadlines.Create(ctx, task.ID, *in.Deadline)
	if err != nil {
		s.log.Warn("task created without deadline",
			zap.String("task_id", task.ID.String()),
			zap.Error(err),
		)
		out.Msg += " " + userMessage(err)
		return out, nil
	}
	out.Deadline = dl
	out.Msg += " " + concept.MsgDeadlineCreated
	return out, nil
}

// memberTask loads a task and requires actor to be in its project.
func (s *TaskServiceImpl) memberTask(ctx context.Context, actor, id uuid.UUID) (*model.Task, error) {
	task, err := s.c.Tasks.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.c.Members.AssertMember(ctx, task.ProjectID, actor); err != nil {
		return nil, err
	}
	return task, nil
}

// creatorTask loads a task and requires actor to have created its project.
func (s *TaskServiceImpl) creatorTask(ctx context.Context, actor, id uuid.UUID) (*model.Task, error) {
	task, err := s.c.Tasks.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.c.Projects.AssertCreator(ctx, task.ProjectID, actor); err != nil {
		return nil, err
	}
	return task, nil
}

// assignedTask loads a task and requires actor to be its assignee.
func (s *TaskServiceImpl) assignedTask(ctx context.Context, actor, id uuid.UUID) (*model.Task, error) {
	task, err := s.c.Tasks.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !task.IsAssignee(actor) {
		return nil, errs.Unauthorizedf("You are not assigned to this task!")
	}
	return task, nil
}

func (s *TaskServiceImpl) Get(ctx context.Context, actor, id uuid.UUID) (*model.Task, error) {
	return s.memberTask(ctx, actor, id)
}

func (s *TaskServiceImpl) Update(ctx context.Context, actor, id uuid.UUID, patch TaskPatch) error {
	task, err := s.memberTask(ctx, actor, id)
	if err != nil {
		return err
	}
	title, notes, links := task.Title, task.Notes, task.Links
	if patch.Title != nil {
		title = *patch.Title
	}
	if patch.Notes != nil {
		notes = *patch.Notes
	}
	if patch.Links != nil {
		links = *patch.Links
	}
	return s.c.Tasks.UpdateDetails(ctx, id, title, notes, links)
}

func (s *TaskServiceImpl) UpdateNotes(ctx context.Context, actor, id uuid.UUID, notes string) error {
	return s.Update(ctx, actor, id, TaskPatch{Notes: &notes})
}

func (s *TaskServiceImpl) Assign(ctx context.Context, actor, id uuid.UUID, username string) error {
	task, err := s.creatorTask(ctx, actor, id)
	if err != nil {
		return err
	}
	user, err := s.memberAssignee(ctx, task.ProjectID, username)
	if err != nil {
		return err
	}
	return s.c.Tasks.Assign(ctx, id, uuid.NullUUID{UUID: user, Valid: true})
}

func (s *TaskServiceImpl) Unassign(ctx context.Context, actor, id uuid.UUID) error {
	if _, err := s.creatorTask(ctx, actor, id); err != nil {
		return err
	}
	return s.c.Tasks.Assign(ctx, id, uuid.NullUUID{})
}

// Complete marks the task done. Reward creation is best-effort: its outcome
// is appended to the message and never fails the call.
func (s *TaskServiceImpl) Complete(ctx context.Context, actor, id uuid.UUID) (Completion, error) {
	task, err := s.assignedTask(ctx, actor, id)
	if err != nil {
		return Completion{}, err
	}
	msg, err := s.c.Tasks.SetCompletion(ctx, id, true)
	if err != nil {
		return Completion{}, err
	}
	grant, err := s.c.Rewards.Create(ctx, actor, task.ProjectID, id)
	if err != nil {
		s.log.Warn("reward not granted",
			zap.String("task_id", id.String()),
			zap.String("user_id", actor.String()),
			zap.Error(err),
		)
		return Completion{Msg: msg + " " + userMessage(err)}, nil
	}
	return Completion{Msg: msg + " " + grant.Msg, Reward: grant.Reward}, nil
}

func (s *TaskServiceImpl) Incomplete(ctx context.Context, actor, id uuid.UUID) (string, error) {
	if _, err := s.assignedTask(ctx, actor, id); err != nil {
		return "", err
	}
	msg, err := s.c.Tasks.SetCompletion(ctx, id, false)
	if err != nil {
		return "", err
	}
	n, err := s.c.Rewards.DeleteForTask(ctx, id)
	if err != nil {
		s.log.Warn("reward not removed",
			zap.String("task_id", id.String()),
			zap.Error(err),
		)
		return msg, nil
	}
	if n > 0 {
		msg += " " + MsgRewardRemoved
	}
	return msg, nil
}

func (s *TaskServiceImpl) Delete(ctx context.Context, actor, id uuid.UUID) error {
	if _, err := s.creatorTask(ctx, actor, id); err != nil {
		return err
	}
	return deleteTaskCascade(ctx, s.c, id)
}

func (s *TaskServiceImpl) CanStart(ctx context.Context, actor, id uuid.UUID) (bool, error) {
	if _, err := s.memberTask(ctx, actor, id); err != nil {
		return false, err
	}
	return s.c.Dependencies.CanStart(ctx, id)
}

func (s *TaskServiceImpl) ListForProject(ctx context.Context, actor, project uuid.UUID) ([]TaskView, error) {
	if _, err := memberProject(ctx, s.c, actor, project); err != nil {
		return nil, err
	}
	tasks, err := s.c.Tasks.ListByProject(ctx, project)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, tasks)
}

func (s *TaskServiceImpl) ListForUser(ctx context.Context, actor uuid.UUID) ([]TaskView, error) {
	tasks, err := s.c.Tasks.ListByAssignee(ctx, actor)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, tasks)
}

// views resolves project names and deadlines concurrently. All lookups are
// reads.
func (s *TaskServiceImpl) views(ctx context.Context, tasks []model.Task) ([]TaskView, error) {
	out := make([]TaskView, len(tasks))
	if len(tasks) == 0 {
		return out, nil
	}

	var ids []uuid.UUID
	seen := map[uuid.UUID]bool{}
	for _, t := range tasks {
		if !seen[t.ProjectID] {
			seen[t.ProjectID] = true
			ids = append(ids, t.ProjectID)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(viewLookups)

	names := map[uuid.UUID]string{}
	g.Go(func() error {
		projects, err := s.c.Projects.ListByIDs(gctx, ids)
		if err != nil {
			return err
		}
		for _, p := range projects {
			names[p.ID] = p.Name
		}
		return nil
	})
	for i := range tasks {
		out[i].Task = tasks[i]
		g.Go(func() error {
			dl, err := s.c.Deadlines.Get(gctx, tasks[i].ID)
			if err != nil {
				return err
			}
			out[i].Deadline = dl
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for i := range out {
		out[i].ProjectName = names[out[i].Task.ProjectID]
	}
	return out, nil
}

func (s *TaskServiceImpl) Deadline(ctx context.Context, actor, id uuid.UUID) (DeadlineView, error) {
	if _, err := s.memberTask(ctx, actor, id); err != nil {
		return DeadlineView{}, err
	}
	dl, err := s.c.Deadlines.Get(ctx, id)
	if err != nil {
		return DeadlineView{}, err
	}
	if dl == nil {
		return DeadlineView{}, errs.NotFoundf("Task %s has no deadline!", id)
	}
	left, err := s.c.Deadlines.TimeLeft(ctx, id)
	if err != nil {
		return DeadlineView{}, err
	}
	return DeadlineView{TaskID: id, Time: dl.Time, Passed: left <= 0, TimeLeft: left}, nil
}

func (s *TaskServiceImpl) UpdateDeadline(ctx context.Context, actor, id uuid.UUID, at time.Time) error {
	if _, err := s.memberTask(ctx, actor, id); err != nil {
		return err
	}
	return s.c.Deadlines.Update(ctx, id, at)
}

// edgeProject checks both tasks share a project created by actor.
func (s *TaskServiceImpl) edgeProject(ctx context.Context, actor, independent, dependent uuid.UUID) error {
	a, err := s.c.Tasks.Get(ctx, independent)
	if err != nil {
		return err
	}
	b, err := s.c.Tasks.Get(ctx, dependent)
	if err != nil {
		return err
	}
	if a.ProjectID != b.ProjectID {
		return errs.NotAllowedf("Dependent tasks must belong to the same project!")
	}
	_, err = s.c.Projects.AssertCreator(ctx, a.ProjectID, actor)
	return err
}

func (s *TaskServiceImpl) AddDependency(ctx context.Context, actor, independent, dependent uuid.UUID) error {
	if err := s.edgeProject(ctx, actor, independent, dependent); err != nil {
		return err
	}
	_, err := s.c.Dependencies.Create(ctx, independent, dependent)
	return err
}

func (s *TaskServiceImpl) RemoveDependency(ctx context.Context, actor, independent, dependent uuid.UUID) error {
	if err := s.edgeProject(ctx, actor, independent, dependent); err != nil {
		return err
	}
	return s.c.Dependencies.Remove(ctx, independent, dependent)
}

func (s *TaskServiceImpl) Dependencies(ctx context.Context, actor, id uuid.UUID) (DependencyView, error) {
	if _, err := s.memberTask(ctx, actor, id); err != nil {
		return DependencyView{}, err
	}
	in, err := s.c.Dependencies.Dependencies(ctx, id)
	if err != nil {
		return DependencyView{}, err
	}
	out, err := s.c.Dependencies.Dependents(ctx, id)
	if err != nil {
		return DependencyView{}, err
	}
	return DependencyView{Dependencies: in, Dependents: out}, nil
}
