package postgres

import (
	"context"

	"github.com/and161185/taskhive/internal/model"
	"github.com/gofrs/uuid/v5"
)

// TaskRepo implements TaskRepository using PostgreSQL.
type TaskRepo struct{ db *DB }

// NewTaskRepo constructs a task repository.
func NewTaskRepo(db *DB) *TaskRepo { return &TaskRepo{db: db} }

const taskCols = `id, project_id, title, notes, assignee_id, completion, links, created_at`

func scanTask(s scanner) (model.Task, error) {
	var t model.Task
	err := s.Scan(&t.ID, &t.ProjectID, &t.Title, &t.Notes, &t.AssigneeID, &t.Completion, &t.Links, &t.CreatedAt)
	if t.Links == nil {
		t.Links = []string{}
	}
	return t, err
}

func nonNilLinks(links []string) []string {
	if links == nil {
		return []string{}
	}
	return links
}

// Create inserts a task row.
func (r *TaskRepo) Create(ctx context.Context, t *model.Task) error {
	const q = `
INSERT INTO tasks (id, project_id, title, notes, assignee_id, completion, links, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.Pool.Exec(ctx, q,
		t.ID, t.ProjectID, t.Title, t.Notes, t.AssigneeID, t.Completion, nonNilLinks(t.Links), t.CreatedAt)
	return mapInsertErr(err)
}

// GetByID selects a task by id.
func (r *TaskRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	const q = `SELECT ` + taskCols + ` FROM tasks WHERE id=$1`
	t, err := scanTask(r.db.Pool.QueryRow(ctx, q, id))
	if err != nil {
		return nil, mapNoRows(err)
	}
	return &t, nil
}

// ListByProject selects the tasks of a project.
func (r *TaskRepo) ListByProject(ctx context.Context, projectID uuid.UUID) ([]model.Task, error) {
	const q = `SELECT ` + taskCols + ` FROM tasks WHERE project_id=$1 ORDER BY created_at, seq`
	rows, err := r.db.Pool.Query(ctx, q, projectID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanTask)
}

// ListByAssignee selects the tasks assigned to a user.
func (r *TaskRepo) ListByAssignee(ctx context.Context, assigneeID uuid.UUID) ([]model.Task, error) {
	const q = `SELECT ` + taskCols + ` FROM tasks WHERE assignee_id=$1 ORDER BY created_at, seq`
	rows, err := r.db.Pool.Query(ctx, q, assigneeID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanTask)
}

// UpdateDetails overwrites title, notes and links.
func (r *TaskRepo) UpdateDetails(ctx context.Context, id uuid.UUID, title, notes string, links []string) error {
	const q = `UPDATE tasks SET title=$2, notes=$3, links=$4 WHERE id=$1`
	return execOne(ctx, r.db.Pool, q, id, title, notes, nonNilLinks(links))
}

// SetAssignee sets or clears the assignee.
func (r *TaskRepo) SetAssignee(ctx context.Context, id uuid.UUID, assignee uuid.NullUUID) error {
	return execOne(ctx, r.db.Pool, `UPDATE tasks SET assignee_id=$2 WHERE id=$1`, id, assignee)
}

// SetCompletion flips the completion flag.
func (r *TaskRepo) SetCompletion(ctx context.Context, id uuid.UUID, completion bool) error {
	return execOne(ctx, r.db.Pool, `UPDATE tasks SET completion=$2 WHERE id=$1`, id, completion)
}

// Delete removes a task row.
func (r *TaskRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return execOne(ctx, r.db.Pool, `DELETE FROM tasks WHERE id=$1`, id)
}

// DeleteByProject removes every task of a project.
func (r *TaskRepo) DeleteByProject(ctx context.Context, projectID uuid.UUID) (int64, error) {
	return execCount(ctx, r.db.Pool, `DELETE FROM tasks WHERE project_id=$1`, projectID)
}

// UnassignInProject clears the member's assignments inside one project.
func (r *TaskRepo) UnassignInProject(ctx context.Context, projectID, assigneeID uuid.UUID) (int64, error) {
	const q = `UPDATE tasks SET assignee_id=NULL WHERE project_id=$1 AND assignee_id=$2`
	return execCount(ctx, r.db.Pool, q, projectID, assigneeID)
}

// UnassignAll clears every assignment of a user.
func (r *TaskRepo) UnassignAll(ctx context.Context, assigneeID uuid.UUID) (int64, error) {
	return execCount(ctx, r.db.Pool, `UPDATE tasks SET assignee_id=NULL WHERE assignee_id=$1`, assigneeID)
}
