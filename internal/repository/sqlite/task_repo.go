package sqlite

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/and161185/taskhive/internal/model"
	"github.com/gofrs/uuid/v5"
)

type taskRow struct {
	ID         uuid.UUID     `db:"id"`
	ProjectID  uuid.UUID     `db:"project_id"`
	Title      string        `db:"title"`
	Notes      string        `db:"notes"`
	AssigneeID uuid.NullUUID `db:"assignee_id"`
	Completion bool          `db:"completion"`
	Links      string        `db:"links"`
	CreatedAt  int64         `db:"created_at"`
}

func (r taskRow) model() (model.Task, error) {
	t := model.Task{
		ID:         r.ID,
		ProjectID:  r.ProjectID,
		Title:      r.Title,
		Notes:      r.Notes,
		AssigneeID: r.AssigneeID,
		Completion: r.Completion,
		Links:      []string{},
		CreatedAt:  fromNanos(r.CreatedAt),
	}
	if r.Links != "" {
		if err := json.Unmarshal([]byte(r.Links), &t.Links); err != nil {
			return model.Task{}, fmt.Errorf("unmarshaling links: %w", err)
		}
	}
	return t, nil
}

func encodeLinks(links []string) (string, error) {
	if links == nil {
		links = []string{}
	}
	b, err := json.Marshal(links)
	if err != nil {
		return "", fmt.Errorf("marshaling links: %w", err)
	}
	return string(b), nil
}

// TaskRepo implements TaskRepository using SQLite.
type TaskRepo struct{ db *DB }

// NewTaskRepo constructs a task repository.
func NewTaskRepo(db *DB) *TaskRepo { return &TaskRepo{db: db} }

const taskCols = `id, project_id, title, notes, assignee_id, completion, links, created_at`

// Create inserts a task row.
func (r *TaskRepo) Create(ctx context.Context, t *model.Task) error {
	links, err := encodeLinks(t.Links)
	if err != nil {
		return err
	}
	const q = `INSERT INTO tasks (` + taskCols + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.X.ExecContext(ctx, q,
		t.ID, t.ProjectID, t.Title, t.Notes, t.AssigneeID, t.Completion, links, nanos(t.CreatedAt))
	return mapInsertErr(err)
}

// GetByID selects a task by id.
func (r *TaskRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	var row taskRow
	if err := r.db.X.GetContext(ctx, &row, `SELECT `+taskCols+` FROM tasks WHERE id = ?`, id); err != nil {
		return nil, mapNoRows(err)
	}
	t, err := row.model()
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TaskRepo) list(ctx context.Context, q string, arg any) ([]model.Task, error) {
	var rows []taskRow
	if err := r.db.X.SelectContext(ctx, &rows, q, arg); err != nil {
		return nil, err
	}
	return mapRows(rows, taskRow.model)
}

// ListByProject selects the tasks of a project.
func (r *TaskRepo) ListByProject(ctx context.Context, projectID uuid.UUID) ([]model.Task, error) {
	return r.list(ctx, `SELECT `+taskCols+` FROM tasks WHERE project_id = ? ORDER BY created_at, rowid`, projectID)
}

// ListByAssignee selects the tasks assigned to a user across projects.
func (r *TaskRepo) ListByAssignee(ctx context.Context, assigneeID uuid.UUID) ([]model.Task, error) {
	return r.list(ctx, `SELECT `+taskCols+` FROM tasks WHERE assignee_id = ? ORDER BY created_at, rowid`, assigneeID)
}

// UpdateDetails replaces title, notes and links.
func (r *TaskRepo) UpdateDetails(ctx context.Context, id uuid.UUID, title, notes string, links []string) error {
	enc, err := encodeLinks(links)
	if err != nil {
		return err
	}
	return execOne(ctx, r.db.X, `UPDATE tasks SET title = ?, notes = ?, links = ? WHERE id = ?`, title, notes, enc, id)
}

// SetAssignee sets or clears the assignee.
func (r *TaskRepo) SetAssignee(ctx context.Context, id uuid.UUID, assignee uuid.NullUUID) error {
	return execOne(ctx, r.db.X, `UPDATE tasks SET assignee_id = ? WHERE id = ?`, assignee, id)
}

// SetCompletion flips the completion flag.
func (r *TaskRepo) SetCompletion(ctx context.Context, id uuid.UUID, completion bool) error {
	return execOne(ctx, r.db.X, `UPDATE tasks SET completion = ? WHERE id = ?`, completion, id)
}

// Delete removes a task row.
func (r *TaskRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return execOne(ctx, r.db.X, `DELETE FROM tasks WHERE id = ?`, id)
}

// DeleteByProject removes every task of a project.
func (r *TaskRepo) DeleteByProject(ctx context.Context, projectID uuid.UUID) (int64, error) {
	return execCount(ctx, r.db.X, `DELETE FROM tasks WHERE project_id = ?`, projectID)
}

// UnassignInProject clears assigneeID from the project's tasks.
func (r *TaskRepo) UnassignInProject(ctx context.Context, projectID, assigneeID uuid.UUID) (int64, error) {
	const q = `UPDATE tasks SET assignee_id = NULL WHERE project_id = ? AND assignee_id = ?`
	return execCount(ctx, r.db.X, q, projectID, assigneeID)
}

// UnassignAll clears assigneeID from every task.
func (r *TaskRepo) UnassignAll(ctx context.Context, assigneeID uuid.UUID) (int64, error) {
	return execCount(ctx, r.db.X, `UPDATE tasks SET assignee_id = NULL WHERE assignee_id = ?`, assigneeID)
}

type dependencyRow struct {
	ID            uuid.UUID `db:"id"`
	IndependentID uuid.UUID `db:"independent_id"`
	DependentID   uuid.UUID `db:"dependent_id"`
	CreatedAt     int64     `db:"created_at"`
}

func (r dependencyRow) model() (model.Dependency, error) {
	return model.Dependency{
		ID:            r.ID,
		IndependentID: r.IndependentID,
		DependentID:   r.DependentID,
		CreatedAt:     fromNanos(r.CreatedAt),
	}, nil
}

// DependencyRepo implements DependencyRepository using SQLite.
type DependencyRepo struct{ db *DB }

// NewDependencyRepo constructs a dependency repository.
func NewDependencyRepo(db *DB) *DependencyRepo { return &DependencyRepo{db: db} }

const dependencyCols = `id, independent_id, dependent_id, created_at`

// Create inserts an edge.
func (r *DependencyRepo) Create(ctx context.Context, d *model.Dependency) error {
	const q = `INSERT INTO dependencies (` + dependencyCols + `) VALUES (?, ?, ?, ?)`
	_, err := r.db.X.ExecContext(ctx, q, d.ID, d.IndependentID, d.DependentID, nanos(d.CreatedAt))
	return mapInsertErr(err)
}

// Delete removes the ordered pair.
func (r *DependencyRepo) Delete(ctx context.Context, independentID, dependentID uuid.UUID) error {
	const q = `DELETE FROM dependencies WHERE independent_id = ? AND dependent_id = ?`
	return execOne(ctx, r.db.X, q, independentID, dependentID)
}

// Exists reports whether the ordered pair is present.
func (r *DependencyRepo) Exists(ctx context.Context, independentID, dependentID uuid.UUID) (bool, error) {
	var ok bool
	const q = `SELECT EXISTS (SELECT 1 FROM dependencies WHERE independent_id = ? AND dependent_id = ?)`
	err := r.db.X.GetContext(ctx, &ok, q, independentID, dependentID)
	return ok, err
}

func (r *DependencyRepo) list(ctx context.Context, q string, arg uuid.UUID) ([]model.Dependency, error) {
	var rows []dependencyRow
	if err := r.db.X.SelectContext(ctx, &rows, q, arg); err != nil {
		return nil, err
	}
	return mapRows(rows, dependencyRow.model)
}

// ListByIndependent returns outgoing edges.
func (r *DependencyRepo) ListByIndependent(ctx context.Context, independentID uuid.UUID) ([]model.Dependency, error) {
	return r.list(ctx, `SELECT `+dependencyCols+` FROM dependencies WHERE independent_id = ? ORDER BY created_at, rowid`, independentID)
}

// ListByDependent returns incoming edges.
func (r *DependencyRepo) ListByDependent(ctx context.Context, dependentID uuid.UUID) ([]model.Dependency, error) {
	return r.list(ctx, `SELECT `+dependencyCols+` FROM dependencies WHERE dependent_id = ? ORDER BY created_at, rowid`, dependentID)
}

// DeleteByTask removes edges touching the task in either direction.
func (r *DependencyRepo) DeleteByTask(ctx context.Context, taskID uuid.UUID) (int64, error) {
	return execCount(ctx, r.db.X, `DELETE FROM dependencies WHERE independent_id = ? OR dependent_id = ?`, taskID, taskID)
}
