package repository

import (
	"context"

	"github.com/and161185/taskhive/internal/model"
	"github.com/gofrs/uuid/v5"
)

// ProjectRepository stores project metadata.
type ProjectRepository interface {
	// Create inserts a project; (creator, name) collisions yield errs.ErrAlreadyExists.
	Create(ctx context.Context, p *model.Project) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Project, error)
	// GetByCreatorAndName finds the creator-scoped project with the given name.
	GetByCreatorAndName(ctx context.Context, creatorID uuid.UUID, name string) (*model.Project, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Project, error)
	ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]model.Project, error)
	UpdateName(ctx context.Context, id uuid.UUID, name string) error
	UpdateCreator(ctx context.Context, id, creatorID uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// MembershipRepository stores the project <-> member relation.
type MembershipRepository interface {
	// Add inserts a membership; duplicates yield errs.ErrAlreadyExists.
	Add(ctx context.Context, m *model.Membership) error
	// Remove deletes one membership; errs.ErrNotFound when absent.
	Remove(ctx context.Context, projectID, memberID uuid.UUID) error
	Exists(ctx context.Context, projectID, memberID uuid.UUID) (bool, error)
	// ListMembers returns member IDs in insertion order.
	ListMembers(ctx context.Context, projectID uuid.UUID) ([]uuid.UUID, error)
	// ListProjects returns the IDs of projects the member belongs to.
	ListProjects(ctx context.Context, memberID uuid.UUID) ([]uuid.UUID, error)
	DeleteByProject(ctx context.Context, projectID uuid.UUID) (int64, error)
	DeleteByUser(ctx context.Context, memberID uuid.UUID) (int64, error)
}
