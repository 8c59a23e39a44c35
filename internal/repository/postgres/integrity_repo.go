package postgres

import (
	"context"

	"github.com/and161185/taskhive/internal/model"
)

// IntegrityRepo implements IntegrityRepository using PostgreSQL.
type IntegrityRepo struct{ db *DB }

// NewIntegrityRepo constructs an integrity repository.
func NewIntegrityRepo(db *DB) *IntegrityRepo { return &IntegrityRepo{db: db} }

// orphanCheck pairs the table an orphan lives in with its predicate.
// Order matters for deletion: removing orphan tasks exposes their deadlines,
// dependencies and rewards to the following checks.
type orphanCheck struct {
	table string
	where string
	field func(*model.OrphanReport) *int64
}

var orphanChecks = []orphanCheck{
	{"memberships", `NOT EXISTS (SELECT 1 FROM projects p WHERE p.id = memberships.project_id)`,
		func(r *model.OrphanReport) *int64 { return &r.Memberships }},
	{"tasks", `NOT EXISTS (SELECT 1 FROM projects p WHERE p.id = tasks.project_id)`,
		func(r *model.OrphanReport) *int64 { return &r.Tasks }},
	{"deadlines", `NOT EXISTS (SELECT 1 FROM tasks t WHERE t.id = deadlines.task_id)`,
		func(r *model.OrphanReport) *int64 { return &r.Deadlines }},
	{"dependencies", `NOT EXISTS (SELECT 1 FROM tasks t WHERE t.id = dependencies.independent_id) OR NOT EXISTS (SELECT 1 FROM tasks t WHERE t.id = dependencies.dependent_id)`,
		func(r *model.OrphanReport) *int64 { return &r.Dependencies }},
	{"rewards", `NOT EXISTS (SELECT 1 FROM tasks t WHERE t.id = rewards.task_id)`,
		func(r *model.OrphanReport) *int64 { return &r.Rewards }},
	{"notifications", `resource_id IS NOT NULL AND NOT EXISTS (SELECT 1 FROM tasks t WHERE t.id = notifications.resource_id) AND NOT EXISTS (SELECT 1 FROM projects p WHERE p.id = notifications.resource_id)`,
		func(r *model.OrphanReport) *int64 { return &r.Notifications }},
}

// FindOrphans counts dangling records without modifying anything.
func (r *IntegrityRepo) FindOrphans(ctx context.Context) (model.OrphanReport, error) {
	var rep model.OrphanReport
	for _, c := range orphanChecks {
		q := `SELECT count(*) FROM ` + c.table + ` WHERE ` + c.where
		if err := r.db.Pool.QueryRow(ctx, q).Scan(c.field(&rep)); err != nil {
			return model.OrphanReport{}, err
		}
	}
	return rep, nil
}

// DeleteOrphans removes dangling records and reports how many went per table.
func (r *IntegrityRepo) DeleteOrphans(ctx context.Context) (model.OrphanReport, error) {
	var rep model.OrphanReport
	for _, c := range orphanChecks {
		n, err := execCount(ctx, r.db.Pool, `DELETE FROM `+c.table+` WHERE `+c.where)
		if err != nil {
			return rep, err
		}
		*c.field(&rep) = n
	}
	return rep, nil
}
