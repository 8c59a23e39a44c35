package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/and161185/taskhive/internal/model"
	"github.com/gofrs/uuid/v5"
)

// RewardRepo implements RewardRepository using PostgreSQL.
type RewardRepo struct{ db *DB }

// NewRewardRepo constructs a reward repository.
func NewRewardRepo(db *DB) *RewardRepo { return &RewardRepo{db: db} }

const rewardCols = `id, name, icon, user_id, project_id, task_id, created_at`

func scanReward(s scanner) (model.Reward, error) {
	var rw model.Reward
	err := s.Scan(&rw.ID, &rw.Name, &rw.Icon, &rw.UserID, &rw.ProjectID, &rw.TaskID, &rw.CreatedAt)
	return rw, err
}

// Create inserts a reward; task_id and (user_id, name) are unique.
func (r *RewardRepo) Create(ctx context.Context, rw *model.Reward) error {
	const q = `
INSERT INTO rewards (id, name, icon, user_id, project_id, task_id, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.Pool.Exec(ctx, q, rw.ID, rw.Name, rw.Icon, rw.UserID, rw.ProjectID, rw.TaskID, rw.CreatedAt)
	return mapInsertErr(err)
}

// Get selects a reward by id.
func (r *RewardRepo) Get(ctx context.Context, id uuid.UUID) (*model.Reward, error) {
	const q = `SELECT ` + rewardCols + ` FROM rewards WHERE id=$1`
	rw, err := scanReward(r.db.Pool.QueryRow(ctx, q, id))
	if err != nil {
		return nil, mapNoRows(err)
	}
	return &rw, nil
}

// List selects rewards matching every non-nil filter field.
func (r *RewardRepo) List(ctx context.Context, f model.RewardFilter) ([]model.Reward, error) {
	var (
		conds []string
		args  []any
	)
	add := func(col string, v *uuid.UUID) {
		if v == nil {
			return
		}
		args = append(args, *v)
		conds = append(conds, fmt.Sprintf("%s=$%d", col, len(args)))
	}
	add("user_id", f.UserID)
	add("project_id", f.ProjectID)
	add("task_id", f.TaskID)

	q := `SELECT ` + rewardCols + ` FROM rewards`
	if len(conds) > 0 {
		q += ` WHERE ` + strings.Join(conds, " AND ")
	}
	q += ` ORDER BY created_at, seq`
	rows, err := r.db.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanReward)
}

// GetByTask selects the reward issued for a task.
func (r *RewardRepo) GetByTask(ctx context.Context, taskID uuid.UUID) (*model.Reward, error) {
	const q = `SELECT ` + rewardCols + ` FROM rewards WHERE task_id=$1`
	rw, err := scanReward(r.db.Pool.QueryRow(ctx, q, taskID))
	if err != nil {
		return nil, mapNoRows(err)
	}
	return &rw, nil
}

// HeldNames lists the reward names a user currently holds.
func (r *RewardRepo) HeldNames(ctx context.Context, userID uuid.UUID) ([]string, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT name FROM rewards WHERE user_id=$1`, userID)
	if err != nil {
		return nil, err
	}
	return collect(rows, func(s scanner) (string, error) {
		var name string
		err := s.Scan(&name)
		return name, err
	})
}

// DeleteByTask removes the reward of a task.
func (r *RewardRepo) DeleteByTask(ctx context.Context, taskID uuid.UUID) (int64, error) {
	return execCount(ctx, r.db.Pool, `DELETE FROM rewards WHERE task_id=$1`, taskID)
}

// DeleteByProject removes every reward issued inside a project.
func (r *RewardRepo) DeleteByProject(ctx context.Context, projectID uuid.UUID) (int64, error) {
	return execCount(ctx, r.db.Pool, `DELETE FROM rewards WHERE project_id=$1`, projectID)
}

// DeleteByUser removes every reward held by a user.
func (r *RewardRepo) DeleteByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	return execCount(ctx, r.db.Pool, `DELETE FROM rewards WHERE user_id=$1`, userID)
}
