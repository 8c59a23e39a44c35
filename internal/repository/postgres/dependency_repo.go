package postgres

import (
	"context"
	"time"

	"github.com/and161185/taskhive/internal/model"
	"github.com/gofrs/uuid/v5"
)

// DependencyRepo implements DependencyRepository using PostgreSQL.
type DependencyRepo struct{ db *DB }

// NewDependencyRepo constructs a dependency repository.
func NewDependencyRepo(db *DB) *DependencyRepo { return &DependencyRepo{db: db} }

const dependencyCols = `id, independent_id, dependent_id, created_at`

func scanDependency(s scanner) (model.Dependency, error) {
	var d model.Dependency
	err := s.Scan(&d.ID, &d.IndependentID, &d.DependentID, &d.CreatedAt)
	return d, err
}

// Create inserts an edge.
func (r *DependencyRepo) Create(ctx context.Context, d *model.Dependency) error {
	const q = `INSERT INTO dependencies (id, independent_id, dependent_id, created_at) VALUES ($1, $2, $3, $4)`
	_, err := r.db.Pool.Exec(ctx, q, d.ID, d.IndependentID, d.DependentID, d.CreatedAt)
	return mapInsertErr(err)
}

// Delete removes the ordered pair.
func (r *DependencyRepo) Delete(ctx context.Context, independentID, dependentID uuid.UUID) error {
	const q = `DELETE FROM dependencies WHERE independent_id=$1 AND dependent_id=$2`
	return execOne(ctx, r.db.Pool, q, independentID, dependentID)
}

// Exists reports whether the ordered pair is present.
func (r *DependencyRepo) Exists(ctx context.Context, independentID, dependentID uuid.UUID) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM dependencies WHERE independent_id=$1 AND dependent_id=$2)`
	var ok bool
	err := r.db.Pool.QueryRow(ctx, q, independentID, dependentID).Scan(&ok)
	return ok, err
}

// ListByIndependent returns outgoing edges.
func (r *DependencyRepo) ListByIndependent(ctx context.Context, independentID uuid.UUID) ([]model.Dependency, error) {
	const q = `SELECT ` + dependencyCols + ` FROM dependencies WHERE independent_id=$1 ORDER BY created_at, seq`
	rows, err := r.db.Pool.Query(ctx, q, independentID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanDependency)
}

// ListByDependent returns incoming edges.
func (r *DependencyRepo) ListByDependent(ctx context.Context, dependentID uuid.UUID) ([]model.Dependency, error) {
	const q = `SELECT ` + dependencyCols + ` FROM dependencies WHERE dependent_id=$1 ORDER BY created_at, seq`
	rows, err := r.db.Pool.Query(ctx, q, dependentID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanDependency)
}

// DeleteByTask removes edges touching the task in either direction.
func (r *DependencyRepo) DeleteByTask(ctx context.Context, taskID uuid.UUID) (int64, error) {
	const q = `DELETE FROM dependencies WHERE independent_id=$1 OR dependent_id=$1`
	return execCount(ctx, r.db.Pool, q, taskID)
}

// DeadlineRepo implements DeadlineRepository using PostgreSQL.
type DeadlineRepo struct{ db *DB }

// NewDeadlineRepo constructs a deadline repository.
func NewDeadlineRepo(db *DB) *DeadlineRepo { return &DeadlineRepo{db: db} }

// Create inserts a deadline; task_id is unique.
func (r *DeadlineRepo) Create(ctx context.Context, d *model.Deadline) error {
	const q = `INSERT INTO deadlines (id, task_id, due_at, created_at) VALUES ($1, $2, $3, $4)`
	_, err := r.db.Pool.Exec(ctx, q, d.ID, d.TaskID, d.Time, d.CreatedAt)
	return mapInsertErr(err)
}

// GetByTask selects the deadline of a task.
func (r *DeadlineRepo) GetByTask(ctx context.Context, taskID uuid.UUID) (*model.Deadline, error) {
	const q = `SELECT id, task_id, due_at, created_at FROM deadlines WHERE task_id=$1`
	var d model.Deadline
	if err := r.db.Pool.QueryRow(ctx, q, taskID).Scan(&d.ID, &d.TaskID, &d.Time, &d.CreatedAt); err != nil {
		return nil, mapNoRows(err)
	}
	return &d, nil
}

// Update moves an existing deadline; it never inserts.
func (r *DeadlineRepo) Update(ctx context.Context, taskID uuid.UUID, t time.Time) error {
	return execOne(ctx, r.db.Pool, `UPDATE deadlines SET due_at=$2 WHERE task_id=$1`, taskID, t)
}

// DeleteByTask removes the deadline of a task.
func (r *DeadlineRepo) DeleteByTask(ctx context.Context, taskID uuid.UUID) (int64, error) {
	return execCount(ctx, r.db.Pool, `DELETE FROM deadlines WHERE task_id=$1`, taskID)
}
