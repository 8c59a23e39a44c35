package sqlite

import (
	"context"

	"github.com/and161185/taskhive/internal/model"
)

// IntegrityRepo implements IntegrityRepository using SQLite.
type IntegrityRepo struct{ db *DB }

// NewIntegrityRepo constructs an integrity repository.
func NewIntegrityRepo(db *DB) *IntegrityRepo { return &IntegrityRepo{db: db} }

// Deletion runs in this order so that orphaned tasks take their deadlines,
// edges and rewards with them in the same pass.
var orphanChecks = []struct {
	table string
	where string
	field func(*model.OrphanReport) *int64
}{
	{"memberships", `project_id NOT IN (SELECT id FROM projects)`,
		func(r *model.OrphanReport) *int64 { return &r.Memberships }},
	{"tasks", `project_id NOT IN (SELECT id FROM projects)`,
		func(r *model.OrphanReport) *int64 { return &r.Tasks }},
	{"deadlines", `task_id NOT IN (SELECT id FROM tasks)`,
		func(r *model.OrphanReport) *int64 { return &r.Deadlines }},
	{"dependencies", `independent_id NOT IN (SELECT id FROM tasks) OR dependent_id NOT IN (SELECT id FROM tasks)`,
		func(r *model.OrphanReport) *int64 { return &r.Dependencies }},
	{"rewards", `task_id NOT IN (SELECT id FROM tasks)`,
		func(r *model.OrphanReport) *int64 { return &r.Rewards }},
	{"notifications", `resource_id IS NOT NULL AND resource_id NOT IN (SELECT id FROM tasks) AND resource_id NOT IN (SELECT id FROM projects)`,
		func(r *model.OrphanReport) *int64 { return &r.Notifications }},
}

// FindOrphans counts dangling records without modifying anything.
func (r *IntegrityRepo) FindOrphans(ctx context.Context) (model.OrphanReport, error) {
	var rep model.OrphanReport
	for _, c := range orphanChecks {
		if err := r.db.X.GetContext(ctx, c.field(&rep), `SELECT count(*) FROM `+c.table+` WHERE `+c.where); err != nil {
			return model.OrphanReport{}, err
		}
	}
	return rep, nil
}

// DeleteOrphans removes dangling records and reports how many went per table.
func (r *IntegrityRepo) DeleteOrphans(ctx context.Context) (model.OrphanReport, error) {
	var rep model.OrphanReport
	for _, c := range orphanChecks {
		n, err := execCount(ctx, r.db.X, `DELETE FROM `+c.table+` WHERE `+c.where)
		if err != nil {
			return rep, err
		}
		*c.field(&rep) = n
	}
	return rep, nil
}
