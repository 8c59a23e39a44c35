package repository

import (
	"context"
	"time"

	"github.com/and161185/taskhive/internal/model"
	"github.com/gofrs/uuid/v5"
)

// TaskRepository stores task metadata.
type TaskRepository interface {
	Create(ctx context.Context, t *model.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]model.Task, error)
	ListByAssignee(ctx context.Context, assigneeID uuid.UUID) ([]model.Task, error)
	// UpdateDetails overwrites title, notes and links.
	UpdateDetails(ctx context.Context, id uuid.UUID, title, notes string, links []string) error
	// SetAssignee sets or clears (Valid=false) the assignee.
	SetAssignee(ctx context.Context, id uuid.UUID, assignee uuid.NullUUID) error
	SetCompletion(ctx context.Context, id uuid.UUID, completion bool) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByProject(ctx context.Context, projectID uuid.UUID) (int64, error)
	// UnassignInProject clears the assignee on the member's tasks of one project.
	UnassignInProject(ctx context.Context, projectID, assigneeID uuid.UUID) (int64, error)
	// UnassignAll clears the assignee on every task of the user.
	UnassignAll(ctx context.Context, assigneeID uuid.UUID) (int64, error)
}

// DependencyRepository stores directed prerequisite edges between tasks.
type DependencyRepository interface {
	// Create inserts an edge; duplicates yield errs.ErrAlreadyExists.
	Create(ctx context.Context, d *model.Dependency) error
	// Delete removes the edge; errs.ErrNotFound when absent.
	Delete(ctx context.Context, independentID, dependentID uuid.UUID) error
	Exists(ctx context.Context, independentID, dependentID uuid.UUID) (bool, error)
	// ListByIndependent returns edges leaving the task (its dependents).
	ListByIndependent(ctx context.Context, independentID uuid.UUID) ([]model.Dependency, error)
	// ListByDependent returns edges entering the task (its prerequisites).
	ListByDependent(ctx context.Context, dependentID uuid.UUID) ([]model.Dependency, error)
	// DeleteByTask removes edges in both directions.
	DeleteByTask(ctx context.Context, taskID uuid.UUID) (int64, error)
}

// DeadlineRepository stores one due time per task.
type DeadlineRepository interface {
	// Create inserts a deadline; a second one for the task yields errs.ErrAlreadyExists.
	Create(ctx context.Context, d *model.Deadline) error
	GetByTask(ctx context.Context, taskID uuid.UUID) (*model.Deadline, error)
	// Update changes the time of an existing deadline; errs.ErrNotFound when none matched.
	Update(ctx context.Context, taskID uuid.UUID, t time.Time) error
	DeleteByTask(ctx context.Context, taskID uuid.UUID) (int64, error)
}
