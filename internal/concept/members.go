package concept

import (
	"context"
	"errors"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/taskhive/internal/errs"
	"github.com/and161185/taskhive/internal/model"
	"github.com/and161185/taskhive/internal/repository"
)

// Members groups users into projects.
type Members struct {
	repo repository.MembershipRepository
	now  Clock
}

// NewMembers constructs the Members concept.
func NewMembers(repo repository.MembershipRepository, now Clock) *Members {
	return &Members{repo: repo, now: now}
}

func alreadyMember(project, user uuid.UUID) error {
	return errs.AlreadyExistsf("User %s is already in project %s!", user, project)
}

// Add puts user into project.
func (m *Members) Add(ctx context.Context, project, user uuid.UUID) error {
	if err := m.AssertNotMember(ctx, project, user); err != nil {
		return err
	}
	id, err := newID()
	if err != nil {
		return err
	}
	err = m.repo.Add(ctx, &model.Membership{ID: id, ProjectID: project, MemberID: user, CreatedAt: m.now()})
	if errors.Is(err, errs.ErrAlreadyExists) {
		return alreadyMember(project, user)
	}
	return err
}

// AssertNotMember fails with NotAllowed when user is already in project.
func (m *Members) AssertNotMember(ctx context.Context, project, user uuid.UUID) error {
	ok, err := m.repo.Exists(ctx, project, user)
	if err != nil {
		return err
	}
	if ok {
		return alreadyMember(project, user)
	}
	return nil
}

// AssertMember fails with Unauthorized when user is not in project.
func (m *Members) AssertMember(ctx context.Context, project, user uuid.UUID) error {
	ok, err := m.repo.Exists(ctx, project, user)
	if err != nil {
		return err
	}
	if !ok {
		return errs.Unauthorizedf("User %s is not a member of project %s!", user, project)
	}
	return nil
}

// IsMember reports whether user belongs to project.
func (m *Members) IsMember(ctx context.Context, project, user uuid.UUID) (bool, error) {
	return m.repo.Exists(ctx, project, user)
}

// Remove takes user out of project.
func (m *Members) Remove(ctx context.Context, project, user uuid.UUID) error {
	err := m.repo.Remove(ctx, project, user)
	if errors.Is(err, errs.ErrNotFound) {
		return errs.NotFoundf("User %s is not in project %s!", user, project)
	}
	return err
}

// Members lists member ids of project in the order they joined.
func (m *Members) Members(ctx context.Context, project uuid.UUID) ([]uuid.UUID, error) {
	return m.repo.ListMembers(ctx, project)
}

// ProjectsFor lists ids of the projects user belongs to.
func (m *Members) ProjectsFor(ctx context.Context, user uuid.UUID) ([]uuid.UUID, error) {
	return m.repo.ListProjects(ctx, user)
}

// DeleteAll empties project.
func (m *Members) DeleteAll(ctx context.Context, project uuid.UUID) (int64, error) {
	return m.repo.DeleteByProject(ctx, project)
}

// DeleteUser removes user from every project.
func (m *Members) DeleteUser(ctx context.Context, user uuid.UUID) (int64, error) {
	return m.repo.DeleteByUser(ctx, user)
}
