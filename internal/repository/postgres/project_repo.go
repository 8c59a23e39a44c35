package postgres

import (
	"context"

	"github.com/and161185/taskhive/internal/model"
	"github.com/gofrs/uuid/v5"
)

// ProjectRepo implements ProjectRepository using PostgreSQL.
type ProjectRepo struct{ db *DB }

// NewProjectRepo constructs a project repository.
func NewProjectRepo(db *DB) *ProjectRepo { return &ProjectRepo{db: db} }

const projectCols = `id, creator_id, name, created_at`

func scanProject(s scanner) (model.Project, error) {
	var p model.Project
	err := s.Scan(&p.ID, &p.CreatorID, &p.Name, &p.CreatedAt)
	return p, err
}

// Create inserts a project; the (creator_id, name) constraint backs the pre-check.
func (r *ProjectRepo) Create(ctx context.Context, p *model.Project) error {
	const q = `INSERT INTO projects (id, creator_id, name, created_at) VALUES ($1, $2, $3, $4)`
	_, err := r.db.Pool.Exec(ctx, q, p.ID, p.CreatorID, p.Name, p.CreatedAt)
	return mapInsertErr(err)
}

// GetByID selects a project by id.
func (r *ProjectRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	const q = `SELECT ` + projectCols + ` FROM projects WHERE id=$1`
	p, err := scanProject(r.db.Pool.QueryRow(ctx, q, id))
	if err != nil {
		return nil, mapNoRows(err)
	}
	return &p, nil
}

// GetByCreatorAndName selects a creator-scoped project by name.
func (r *ProjectRepo) GetByCreatorAndName(ctx context.Context, creatorID uuid.UUID, name string) (*model.Project, error) {
	const q = `SELECT ` + projectCols + ` FROM projects WHERE creator_id=$1 AND name=$2`
	p, err := scanProject(r.db.Pool.QueryRow(ctx, q, creatorID, name))
	if err != nil {
		return nil, mapNoRows(err)
	}
	return &p, nil
}

// ListByIDs selects projects whose id is in ids.
func (r *ProjectRepo) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Project, error) {
	if len(ids) == 0 {
		return []model.Project{}, nil
	}
	const q = `SELECT ` + projectCols + ` FROM projects WHERE id = ANY($1::uuid[]) ORDER BY created_at, seq`
	rows, err := r.db.Pool.Query(ctx, q, idStrings(ids))
	if err != nil {
		return nil, err
	}
	return collect(rows, scanProject)
}

// ListByCreator selects projects created by a user.
func (r *ProjectRepo) ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]model.Project, error) {
	const q = `SELECT ` + projectCols + ` FROM projects WHERE creator_id=$1 ORDER BY created_at, seq`
	rows, err := r.db.Pool.Query(ctx, q, creatorID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanProject)
}

// UpdateName renames a project.
func (r *ProjectRepo) UpdateName(ctx context.Context, id uuid.UUID, name string) error {
	return mapInsertErr(execOne(ctx, r.db.Pool, `UPDATE projects SET name=$2 WHERE id=$1`, id, name))
}

// UpdateCreator hands the project to a new creator/manager.
func (r *ProjectRepo) UpdateCreator(ctx context.Context, id, creatorID uuid.UUID) error {
	return mapInsertErr(execOne(ctx, r.db.Pool, `UPDATE projects SET creator_id=$2 WHERE id=$1`, id, creatorID))
}

// Delete removes a project row.
func (r *ProjectRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return execOne(ctx, r.db.Pool, `DELETE FROM projects WHERE id=$1`, id)
}

// MembershipRepo implements MembershipRepository using PostgreSQL.
type MembershipRepo struct{ db *DB }

// NewMembershipRepo constructs a membership repository.
func NewMembershipRepo(db *DB) *MembershipRepo { return &MembershipRepo{db: db} }

// Add inserts a membership row.
func (r *MembershipRepo) Add(ctx context.Context, m *model.Membership) error {
	const q = `INSERT INTO memberships (id, project_id, member_id, created_at) VALUES ($1, $2, $3, $4)`
	_, err := r.db.Pool.Exec(ctx, q, m.ID, m.ProjectID, m.MemberID, m.CreatedAt)
	return mapInsertErr(err)
}

// Remove deletes the (project, member) pair.
func (r *MembershipRepo) Remove(ctx context.Context, projectID, memberID uuid.UUID) error {
	const q = `DELETE FROM memberships WHERE project_id=$1 AND member_id=$2`
	return execOne(ctx, r.db.Pool, q, projectID, memberID)
}

// Exists reports whether the pair is present.
func (r *MembershipRepo) Exists(ctx context.Context, projectID, memberID uuid.UUID) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM memberships WHERE project_id=$1 AND member_id=$2)`
	var ok bool
	err := r.db.Pool.QueryRow(ctx, q, projectID, memberID).Scan(&ok)
	return ok, err
}

func scanID(s scanner) (uuid.UUID, error) {
	var id uuid.UUID
	err := s.Scan(&id)
	return id, err
}

// ListMembers returns member ids of a project in join order.
func (r *MembershipRepo) ListMembers(ctx context.Context, projectID uuid.UUID) ([]uuid.UUID, error) {
	const q = `SELECT member_id FROM memberships WHERE project_id=$1 ORDER BY created_at, seq`
	rows, err := r.db.Pool.Query(ctx, q, projectID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanID)
}

// ListProjects returns project ids the member belongs to.
func (r *MembershipRepo) ListProjects(ctx context.Context, memberID uuid.UUID) ([]uuid.UUID, error) {
	const q = `SELECT project_id FROM memberships WHERE member_id=$1 ORDER BY created_at, seq`
	rows, err := r.db.Pool.Query(ctx, q, memberID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanID)
}

// DeleteByProject removes all memberships of a project.
func (r *MembershipRepo) DeleteByProject(ctx context.Context, projectID uuid.UUID) (int64, error) {
	return execCount(ctx, r.db.Pool, `DELETE FROM memberships WHERE project_id=$1`, projectID)
}

// DeleteByUser removes a user from every project.
func (r *MembershipRepo) DeleteByUser(ctx context.Context, memberID uuid.UUID) (int64, error) {
	return execCount(ctx, r.db.Pool, `DELETE FROM memberships WHERE member_id=$1`, memberID)
}
