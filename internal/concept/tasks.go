package concept

import (
	"context"
	"errors"
	"strings"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/taskhive/internal/errs"
	"github.com/and161185/taskhive/internal/model"
	"github.com/and161185/taskhive/internal/repository"
)

// Messages reported by task state changes.
const (
	MsgTaskCompleted  = "Task marked as completed!"
	MsgTaskIncomplete = "Task marked incomplete."
)

// Tasks owns task records.
type Tasks struct {
	repo repository.TaskRepository
	now  Clock
}

// NewTasks constructs the Tasks concept.
func NewTasks(repo repository.TaskRepository, now Clock) *Tasks {
	return &Tasks{repo: repo, now: now}
}

// NewTask describes a task to create.
type NewTask struct {
	ProjectID uuid.UUID
	Title     string
	Notes     string
	Links     []string
	Assignee  uuid.NullUUID
}

// Create inserts an incomplete task.
func (t *Tasks) Create(ctx context.Context, in NewTask) (*model.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, errs.Invalidf("Task title must be non-empty!")
	}
	id, err := newID()
	if err != nil {
		return nil, err
	}
	links := in.Links
	if links == nil {
		links = []string{}
	}
	task := &model.Task{
		ID:         id,
		ProjectID:  in.ProjectID,
		Title:      title,
		Notes:      in.Notes,
		AssigneeID: in.Assignee,
		Links:      links,
		CreatedAt:  t.now(),
	}
	if err := t.repo.Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func taskNotFound(id uuid.UUID) error {
	return errs.NotFoundf("Task %s does not exist!", id)
}

func mapTaskErr(id uuid.UUID, err error) error {
	if errors.Is(err, errs.ErrNotFound) {
		return taskNotFound(id)
	}
	return err
}

// Get loads a task.
func (t *Tasks) Get(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	task, err := t.repo.GetByID(ctx, id)
	return task, mapTaskErr(id, err)
}

// ListByProject returns the tasks of project.
func (t *Tasks) ListByProject(ctx context.Context, project uuid.UUID) ([]model.Task, error) {
	return t.repo.ListByProject(ctx, project)
}

// ListByAssignee returns the tasks assigned to user.
func (t *Tasks) ListByAssignee(ctx context.Context, user uuid.UUID) ([]model.Task, error) {
	return t.repo.ListByAssignee(ctx, user)
}

// UpdateDetails overwrites title, notes and links.
func (t *Tasks) UpdateDetails(ctx context.Context, id uuid.UUID, title, notes string, links []string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return errs.Invalidf("Task title must be non-empty!")
	}
	if links == nil {
		links = []string{}
	}
	return mapTaskErr(id, t.repo.UpdateDetails(ctx, id, title, notes, links))
}

// Assign sets the assignee; an invalid NullUUID unassigns.
func (t *Tasks) Assign(ctx context.Context, id uuid.UUID, assignee uuid.NullUUID) error {
	return mapTaskErr(id, t.repo.SetAssignee(ctx, id, assignee))
}

// SetCompletion marks the task complete or incomplete.
func (t *Tasks) SetCompletion(ctx context.Context, id uuid.UUID, done bool) (string, error) {
	if err := mapTaskErr(id, t.repo.SetCompletion(ctx, id, done)); err != nil {
		return "", err
	}
	if done {
		return MsgTaskCompleted, nil
	}
	return MsgTaskIncomplete, nil
}

// Delete removes the task record only.
func (t *Tasks) Delete(ctx context.Context, id uuid.UUID) error {
	return mapTaskErr(id, t.repo.Delete(ctx, id))
}

// DeleteForProject removes every task record of project.
func (t *Tasks) DeleteForProject(ctx context.Context, project uuid.UUID) (int64, error) {
	return t.repo.DeleteByProject(ctx, project)
}

// UnassignMember clears user from their tasks in project.
func (t *Tasks) UnassignMember(ctx context.Context, project, user uuid.UUID) (int64, error) {
	return t.repo.UnassignInProject(ctx, project, user)
}

// UnassignAll clears user from every task.
func (t *Tasks) UnassignAll(ctx context.Context, user uuid.UUID) (int64, error) {
	return t.repo.UnassignAll(ctx, user)
}
