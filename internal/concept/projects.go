package concept

import (
	"context"
	"errors"
	"strings"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/taskhive/internal/errs"
	"github.com/and161185/taskhive/internal/model"
	"github.com/and161185/taskhive/internal/repository"
)

// Projects owns project metadata. Names are unique per creator.
type Projects struct {
	repo repository.ProjectRepository
	now  Clock
}

// NewProjects constructs the Projects concept.
func NewProjects(repo repository.ProjectRepository, now Clock) *Projects {
	return &Projects{repo: repo, now: now}
}

func nameTaken(creator uuid.UUID, name string) error {
	return errs.AlreadyExistsf("Project by %s with name %s already exists! Please choose a different name.", creator, name)
}

func (p *Projects) assertNameFree(ctx context.Context, creator uuid.UUID, name string) error {
	_, err := p.repo.GetByCreatorAndName(ctx, creator, name)
	switch {
	case err == nil:
		return nameTaken(creator, name)
	case errors.Is(err, errs.ErrNotFound):
		return nil
	default:
		return err
	}
}

// Create inserts a project owned by creator.
func (p *Projects) Create(ctx context.Context, creator uuid.UUID, name string) (*model.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errs.Invalidf("Project name must be non-empty!")
	}
	if err := p.assertNameFree(ctx, creator, name); err != nil {
		return nil, err
	}
	id, err := newID()
	if err != nil {
		return nil, err
	}
	proj := &model.Project{ID: id, CreatorID: creator, Name: name, CreatedAt: p.now()}
	if err := p.repo.Create(ctx, proj); err != nil {
		if errors.Is(err, errs.ErrAlreadyExists) {
			return nil, nameTaken(creator, name)
		}
		return nil, err
	}
	return proj, nil
}

// Get loads a project by id.
func (p *Projects) Get(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	proj, err := p.repo.GetByID(ctx, id)
	if errors.Is(err, errs.ErrNotFound) {
		return nil, errs.NotFoundf("Project %s does not exist!", id)
	}
	return proj, err
}

// GetByName loads the creator's project with the given name.
func (p *Projects) GetByName(ctx context.Context, creator uuid.UUID, name string) (*model.Project, error) {
	proj, err := p.repo.GetByCreatorAndName(ctx, creator, name)
	if errors.Is(err, errs.ErrNotFound) {
		return nil, errs.NotFoundf("Project with name %s does not exist!", name)
	}
	return proj, err
}

// ListByIDs returns the projects with the given ids; unknown ids are skipped.
func (p *Projects) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Project, error) {
	return p.repo.ListByIDs(ctx, ids)
}

// ListByCreator returns the projects created by user.
func (p *Projects) ListByCreator(ctx context.Context, creator uuid.UUID) ([]model.Project, error) {
	return p.repo.ListByCreator(ctx, creator)
}

// Rename changes the name, keeping it unique among the creator's projects.
func (p *Projects) Rename(ctx context.Context, id uuid.UUID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errs.Invalidf("Project name must be non-empty!")
	}
	proj, err := p.Get(ctx, id)
	if err != nil {
		return err
	}
	if proj.Name == name {
		return nil
	}
	if err := p.assertNameFree(ctx, proj.CreatorID, name); err != nil {
		return err
	}
	err = p.repo.UpdateName(ctx, id, name)
	switch {
	case errors.Is(err, errs.ErrAlreadyExists):
		return nameTaken(proj.CreatorID, name)
	case errors.Is(err, errs.ErrNotFound):
		return errs.NotFoundf("Project %s does not exist!", id)
	}
	return err
}

// SetCreator hands the project to another user.
func (p *Projects) SetCreator(ctx context.Context, id, creator uuid.UUID) error {
	proj, err := p.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := p.assertNameFree(ctx, creator, proj.Name); err != nil {
		return err
	}
	err = p.repo.UpdateCreator(ctx, id, creator)
	switch {
	case errors.Is(err, errs.ErrAlreadyExists):
		return nameTaken(creator, proj.Name)
	case errors.Is(err, errs.ErrNotFound):
		return errs.NotFoundf("Project %s does not exist!", id)
	}
	return err
}

// Delete removes the project record only.
func (p *Projects) Delete(ctx context.Context, id uuid.UUID) error {
	err := p.repo.Delete(ctx, id)
	if errors.Is(err, errs.ErrNotFound) {
		return errs.NotFoundf("Project %s does not exist!", id)
	}
	return err
}

// AssertCreator returns the project when user created it. A missing project
// is NotFound; any other user is Unauthorized.
func (p *Projects) AssertCreator(ctx context.Context, id, user uuid.UUID) (*model.Project, error) {
	proj, err := p.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if proj.CreatorID != user {
		return nil, errs.Unauthorizedf("User %s is not the creator of project %s!", user, id)
	}
	return proj, nil
}
