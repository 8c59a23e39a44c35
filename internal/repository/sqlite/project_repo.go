package sqlite

import (
	"context"

	"github.com/and161185/taskhive/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/jmoiron/sqlx"
)

type projectRow struct {
	ID        uuid.UUID `db:"id"`
	CreatorID uuid.UUID `db:"creator_id"`
	Name      string    `db:"name"`
	CreatedAt int64     `db:"created_at"`
}

func (r projectRow) model() (model.Project, error) {
	return model.Project{ID: r.ID, CreatorID: r.CreatorID, Name: r.Name, CreatedAt: fromNanos(r.CreatedAt)}, nil
}

// ProjectRepo implements ProjectRepository using SQLite.
type ProjectRepo struct{ db *DB }

// NewProjectRepo constructs a project repository.
func NewProjectRepo(db *DB) *ProjectRepo { return &ProjectRepo{db: db} }

const projectCols = `id, creator_id, name, created_at`

// Create inserts a project; (creator_id, name) is unique.
func (r *ProjectRepo) Create(ctx context.Context, p *model.Project) error {
	const q = `INSERT INTO projects (id, creator_id, name, created_at) VALUES (?, ?, ?, ?)`
	_, err := r.db.X.ExecContext(ctx, q, p.ID, p.CreatorID, p.Name, nanos(p.CreatedAt))
	return mapInsertErr(err)
}

func (r *ProjectRepo) getOne(ctx context.Context, q string, args ...any) (*model.Project, error) {
	var row projectRow
	if err := r.db.X.GetContext(ctx, &row, q, args...); err != nil {
		return nil, mapNoRows(err)
	}
	p, _ := row.model()
	return &p, nil
}

// GetByID selects a project by ID.
func (r *ProjectRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	return r.getOne(ctx, `SELECT `+projectCols+` FROM projects WHERE id = ?`, id)
}

// GetByCreatorAndName selects a project by its natural key.
func (r *ProjectRepo) GetByCreatorAndName(ctx context.Context, creatorID uuid.UUID, name string) (*model.Project, error) {
	return r.getOne(ctx, `SELECT `+projectCols+` FROM projects WHERE creator_id = ? AND name = ?`, creatorID, name)
}

// ListByIDs returns projects whose id is in ids.
func (r *ProjectRepo) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Project, error) {
	if len(ids) == 0 {
		return []model.Project{}, nil
	}
	q, args, err := sqlx.In(`SELECT `+projectCols+` FROM projects WHERE id IN (?) ORDER BY created_at, rowid`, idStrings(ids))
	if err != nil {
		return nil, err
	}
	var rows []projectRow
	if err := r.db.X.SelectContext(ctx, &rows, r.db.X.Rebind(q), args...); err != nil {
		return nil, err
	}
	return mapRows(rows, projectRow.model)
}

// ListByCreator returns projects administered by creatorID.
func (r *ProjectRepo) ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]model.Project, error) {
	var rows []projectRow
	const q = `SELECT ` + projectCols + ` FROM projects WHERE creator_id = ? ORDER BY created_at, rowid`
	if err := r.db.X.SelectContext(ctx, &rows, q, creatorID); err != nil {
		return nil, err
	}
	return mapRows(rows, projectRow.model)
}

// UpdateName renames a project.
func (r *ProjectRepo) UpdateName(ctx context.Context, id uuid.UUID, name string) error {
	return mapInsertErr(execOne(ctx, r.db.X, `UPDATE projects SET name = ? WHERE id = ?`, name, id))
}

// UpdateCreator hands the project to another user.
func (r *ProjectRepo) UpdateCreator(ctx context.Context, id, creatorID uuid.UUID) error {
	return mapInsertErr(execOne(ctx, r.db.X, `UPDATE projects SET creator_id = ? WHERE id = ?`, creatorID, id))
}

// Delete removes the project row only.
func (r *ProjectRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return execOne(ctx, r.db.X, `DELETE FROM projects WHERE id = ?`, id)
}

// MembershipRepo implements MembershipRepository using SQLite.
type MembershipRepo struct{ db *DB }

// NewMembershipRepo constructs a membership repository.
func NewMembershipRepo(db *DB) *MembershipRepo { return &MembershipRepo{db: db} }

// Add inserts a membership row.
func (r *MembershipRepo) Add(ctx context.Context, m *model.Membership) error {
	const q = `INSERT INTO memberships (id, project_id, member_id, created_at) VALUES (?, ?, ?, ?)`
	_, err := r.db.X.ExecContext(ctx, q, m.ID, m.ProjectID, m.MemberID, nanos(m.CreatedAt))
	return mapInsertErr(err)
}

// Remove deletes the (project, member) pair.
func (r *MembershipRepo) Remove(ctx context.Context, projectID, memberID uuid.UUID) error {
	return execOne(ctx, r.db.X, `DELETE FROM memberships WHERE project_id = ? AND member_id = ?`, projectID, memberID)
}

// Exists reports whether the pair is present.
func (r *MembershipRepo) Exists(ctx context.Context, projectID, memberID uuid.UUID) (bool, error) {
	var ok bool
	const q = `SELECT EXISTS (SELECT 1 FROM memberships WHERE project_id = ? AND member_id = ?)`
	err := r.db.X.GetContext(ctx, &ok, q, projectID, memberID)
	return ok, err
}

func (r *MembershipRepo) ids(ctx context.Context, q string, arg uuid.UUID) ([]uuid.UUID, error) {
	out := []uuid.UUID{}
	if err := r.db.X.SelectContext(ctx, &out, q, arg); err != nil {
		return nil, err
	}
	return out, nil
}

// ListMembers returns member ids of a project in join order.
func (r *MembershipRepo) ListMembers(ctx context.Context, projectID uuid.UUID) ([]uuid.UUID, error) {
	return r.ids(ctx, `SELECT member_id FROM memberships WHERE project_id = ? ORDER BY created_at, rowid`, projectID)
}

// ListProjects returns the ids of projects a user belongs to.
func (r *MembershipRepo) ListProjects(ctx context.Context, memberID uuid.UUID) ([]uuid.UUID, error) {
	return r.ids(ctx, `SELECT project_id FROM memberships WHERE member_id = ? ORDER BY created_at, rowid`, memberID)
}

// DeleteByProject drops the whole member set of a project.
func (r *MembershipRepo) DeleteByProject(ctx context.Context, projectID uuid.UUID) (int64, error) {
	return execCount(ctx, r.db.X, `DELETE FROM memberships WHERE project_id = ?`, projectID)
}

// DeleteByUser removes a user from every project.
func (r *MembershipRepo) DeleteByUser(ctx context.Context, memberID uuid.UUID) (int64, error) {
	return execCount(ctx, r.db.X, `DELETE FROM memberships WHERE member_id = ?`, memberID)
}
