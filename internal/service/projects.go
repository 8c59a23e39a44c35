package service

import (
	"context"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/and161185/taskhive/internal/concept"
	"github.com/and161185/taskhive/internal/errs"
	"github.com/and161185/taskhive/internal/model"
)

// Messages reported by project operations.
const (
	MsgProjectCreated = "Project successfully created!"
	MsgProjectDeleted = "Project successfully deleted!"
	MsgProjectRenamed = "Project name successfully updated!"
	MsgManagerUpdated = "Project manager successfully updated!"
	MsgMemberAdded    = "Added item to group!"
	MsgMemberRemoved  = "Removed item from group!"
)

// ProjectService defines project and membership operations.
type ProjectService interface {
	// Create makes a project and enrolls the actor as its first member.
	Create(ctx context.Context, actor uuid.UUID, name string) (*model.Project, error)
	// Delete removes the project with its memberships and tasks; creator only.
	Delete(ctx context.Context, actor, id uuid.UUID) error
	// Get returns a project the actor belongs to.
	Get(ctx context.Context, actor, id uuid.UUID) (*model.Project, error)
	// GetByName finds one of the actor's projects by name, preferring those
	// the actor created.
	GetByName(ctx context.Context, actor uuid.UUID, name string) (*model.Project, error)
	// ListMine returns the projects the actor belongs to.
	ListMine(ctx context.Context, actor uuid.UUID) ([]model.Project, error)
	Rename(ctx context.Context, actor, id uuid.UUID, name string) error
	// TransferManager hands the project to another member; creator only.
	TransferManager(ctx context.Context, actor, id uuid.UUID, username string) error
	AddMember(ctx context.Context, actor, id uuid.UUID, username string) error
	// RemoveMember takes a member out and unassigns their tasks in the project.
	RemoveMember(ctx context.Context, actor, id uuid.UUID, username string) error
	// Members lists member usernames in join order.
	Members(ctx context.Context, actor, id uuid.UUID) ([]string, error)
}

type ProjectServiceImpl struct {
	c   *concept.Concepts
	log *zap.Logger
}

// NewProjectService constructs ProjectService.
func NewProjectService(c *concept.Concepts, log *zap.Logger) *ProjectServiceImpl {
	return &ProjectServiceImpl{c: c, log: log}
}

// Create inserts the project, then the creator membership. When the second
// step fails the project is deleted again.
func (s *ProjectServiceImpl) Create(ctx context.Context, actor uuid.UUID, name string) (*model.Project, error) {
	proj, err := s.c.Projects.Create(ctx, actor, name)
	if err != nil {
		return nil, err
	}
	if err := s.c.Members.Add(ctx, proj.ID, actor); err != nil {
		s.log.Warn("creator membership failed, removing project",
			zap.String("project_id", proj.ID.String()),
			zap.String("user_id", actor.String()),
			zap.Error(err),
		)
		if derr := s.c.Projects.Delete(ctx, proj.ID); derr != nil {
			s.log.Warn("compensating project delete failed",
				zap.String("project_id", proj.ID.String()),
				zap.Error(derr),
			)
		}
		return nil, err
	}
	return proj, nil
}

func (s *ProjectServiceImpl) Delete(ctx context.Context, actor, id uuid.UUID) error {
	if _, err := s.c.Projects.AssertCreator(ctx, id, actor); err != nil {
		return err
	}
	return deleteProjectCascade(ctx, s.c, s.log, id)
}

// memberProject loads a project and requires actor to be in it.
func (s *ProjectServiceImpl) memberProject(ctx context.Context, actor, id uuid.UUID) (*model.Project, error) {
	return memberProject(ctx, s.c, actor, id)
}

func memberProject(ctx context.Context, c *concept.Concepts, actor, id uuid.UUID) (*model.Project, error) {
	proj, err := c.Projects.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := c.Members.AssertMember(ctx, id, actor); err != nil {
		return nil, err
	}
	return proj, nil
}

func (s *ProjectServiceImpl) Get(ctx context.Context, actor, id uuid.UUID) (*model.Project, error) {
	return s.memberProject(ctx, actor, id)
}

func (s *ProjectServiceImpl) GetByName(ctx context.Context, actor uuid.UUID, name string) (*model.Project, error) {
	if proj, err := s.c.Projects.GetByName(ctx, actor, name); err == nil {
		return proj, nil
	}
	mine, err := s.ListMine(ctx, actor)
	if err != nil {
		return nil, err
	}
	for i := range mine {
		if mine[i].Name == name {
			return &mine[i], nil
		}
	}
	return nil, errs.NotFoundf("Project with name %s does not exist!", name)
}

func (s *ProjectServiceImpl) ListMine(ctx context.Context, actor uuid.UUID) ([]model.Project, error) {
	ids, err := s.c.Members.ProjectsFor(ctx, actor)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []model.Project{}, nil
	}
	return s.c.Projects.ListByIDs(ctx, ids)
}

func (s *ProjectServiceImpl) Rename(ctx context.Context, actor, id uuid.UUID, name string) error {
	if _, err := s.c.Projects.AssertCreator(ctx, id, actor); err != nil {
		return err
	}
	return s.c.Projects.Rename(ctx, id, name)
}

func (s *ProjectServiceImpl) TransferManager(ctx context.Context, actor, id uuid.UUID, username string) error {
	if _, err := s.c.Projects.AssertCreator(ctx, id, actor); err != nil {
		return err
	}
	next, err := s.c.Users.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	ok, err := s.c.Members.IsMember(ctx, id, next.ID)
	if err != nil {
		return err
	}
	if !ok {
		return errs.NotAllowedf("New manager %s must be a member of the project!", username)
	}
	return s.c.Projects.SetCreator(ctx, id, next.ID)
}

func (s *ProjectServiceImpl) AddMember(ctx context.Context, actor, id uuid.UUID, username string) error {
	if _, err := s.c.Projects.AssertCreator(ctx, id, actor); err != nil {
		return err
	}
	u, err := s.c.Users.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	return s.c.Members.Add(ctx, id, u.ID)
}

func (s *ProjectServiceImpl) RemoveMember(ctx context.Context, actor, id uuid.UUID, username string) error {
	proj, err := s.c.Projects.AssertCreator(ctx, id, actor)
	if err != nil {
		return err
	}
	u, err := s.c.Users.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if u.ID == proj.CreatorID {
		return errs.NotAllowedf("The project creator cannot be removed from the project!")
	}
	if err := s.c.Members.Remove(ctx, id, u.ID); err != nil {
		return err
	}
	if _, err := s.c.Tasks.UnassignMember(ctx, id, u.ID); err != nil {
		s.log.Warn("unassigning removed member failed",
			zap.String("project_id", id.String()),
			zap.String("user_id", u.ID.String()),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (s *ProjectServiceImpl) Members(ctx context.Context, actor, id uuid.UUID) ([]string, error) {
	if _, err := s.memberProject(ctx, actor, id); err != nil {
		return nil, err
	}
	ids, err := s.c.Members.Members(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.c.Users.IDsToUsernames(ctx, ids)
}
