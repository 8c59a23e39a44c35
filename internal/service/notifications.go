package service

import (
	"context"
	"strings"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/taskhive/internal/concept"
	"github.com/and161185/taskhive/internal/errs"
	"github.com/and161185/taskhive/internal/model"
)

// NotificationService defines inbox operations.
type NotificationService interface {
	Mine(ctx context.Context, actor uuid.UUID) ([]model.Notification, error)
	// NotifyAssignee messages the assignee of a task in one of the actor's projects.
	NotifyAssignee(ctx context.Context, actor, task uuid.UUID, message string) (*model.Notification, error)
	// NotifyTeam messages every member of a project, the actor included.
	NotifyTeam(ctx context.Context, actor, project uuid.UUID, message string) ([]model.Notification, error)
	// Dismiss deletes one of the actor's notifications.
	Dismiss(ctx context.Context, actor, id uuid.UUID) error
}

type NotificationServiceImpl struct {
	c *concept.Concepts
}

// NewNotificationService constructs NotificationService.
func NewNotificationService(c *concept.Concepts) *NotificationServiceImpl {
	return &NotificationServiceImpl{c: c}
}

func (s *NotificationServiceImpl) Mine(ctx context.Context, actor uuid.UUID) ([]model.Notification, error) {
	return s.c.Notifications.ListForUser(ctx, actor)
}

func requireMessage(message string) error {
	if strings.TrimSpace(message) == "" {
		return errs.Invalidf("Notification message must be non-empty!")
	}
	return nil
}

func (s *NotificationServiceImpl) NotifyAssignee(ctx context.Context, actor, task uuid.UUID, message string) (*model.Notification, error) {
	if err := requireMessage(message); err != nil {
		return nil, err
	}
	t, err := s.c.Tasks.Get(ctx, task)
	if err != nil {
		return nil, err
	}
	if err := s.c.Members.AssertMember(ctx, t.ProjectID, actor); err != nil {
		return nil, err
	}
	if !t.Assigned() {
		return nil, errs.NotAllowedf("Task %s has no assignee to notify!", task)
	}
	return s.c.Notifications.Create(ctx, t.AssigneeID.UUID, message, uuid.NullUUID{UUID: task, Valid: true})
}

// NotifyTeam writes one notification per member, in join order, stopping
// at the first failure.
func (s *NotificationServiceImpl) NotifyTeam(ctx context.Context, actor, project uuid.UUID, message string) ([]model.Notification, error) {
	if err := requireMessage(message); err != nil {
		return nil, err
	}
	if _, err := memberProject(ctx, s.c, actor, project); err != nil {
		return nil, err
	}
	members, err := s.c.Members.Members(ctx, project)
	if err != nil {
		return nil, err
	}
	out := make([]model.Notification, 0, len(members))
	for _, m := range members {
		n, err := s.c.Notifications.Create(ctx, m, message, uuid.NullUUID{UUID: project, Valid: true})
		if err != nil {
			return out, err
		}
		out = append(out, *n)
	}
	return out, nil
}

func (s *NotificationServiceImpl) Dismiss(ctx context.Context, actor, id uuid.UUID) error {
	n, err := s.c.Notifications.Get(ctx, id)
	if err != nil {
		return err
	}
	if n.NotifeeID != actor {
		return errs.Unauthorizedf("Notification %s does not belong to you!", id)
	}
	return s.c.Notifications.Delete(ctx, id)
}
