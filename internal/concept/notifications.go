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

// Messages reported by the inbox.
const (
	MsgNotificationCreated = "Notif created successfully"
	MsgNotificationDeleted = "Notification successfully deleted"
)

// Notifications is a per-user inbox.
type Notifications struct {
	repo repository.NotificationRepository
	now  Clock
}

// NewNotifications constructs the Notifications concept.
func NewNotifications(repo repository.NotificationRepository, now Clock) *Notifications {
	return &Notifications{repo: repo, now: now}
}

// Create delivers message to notifee, optionally pointing at resource.
func (n *Notifications) Create(ctx context.Context, notifee uuid.UUID, message string, resource uuid.NullUUID) (*model.Notification, error) {
	if strings.TrimSpace(message) == "" {
		return nil, errs.Invalidf("Notification message must be non-empty!")
	}
	id, err := newID()
	if err != nil {
		return nil, err
	}
	notif := &model.Notification{ID: id, NotifeeID: notifee, Message: message, ResourceID: resource, CreatedAt: n.now()}
	if err := n.repo.Create(ctx, notif); err != nil {
		return nil, err
	}
	return notif, nil
}

// Get loads one notification.
func (n *Notifications) Get(ctx context.Context, id uuid.UUID) (*model.Notification, error) {
	notif, err := n.repo.Get(ctx, id)
	if errors.Is(err, errs.ErrNotFound) {
		return nil, errs.NotFoundf("Notification %s does not exist!", id)
	}
	return notif, err
}

// ListForUser returns the inbox of user, newest first.
func (n *Notifications) ListForUser(ctx context.Context, user uuid.UUID) ([]model.Notification, error) {
	out, err := n.repo.ListByNotifee(ctx, user)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []model.Notification{}
	}
	return out, nil
}

// ListForResource returns notifications pointing at resource.
func (n *Notifications) ListForResource(ctx context.Context, resource uuid.UUID) ([]model.Notification, error) {
	return n.repo.ListByResource(ctx, resource)
}

// Delete removes one notification.
func (n *Notifications) Delete(ctx context.Context, id uuid.UUID) error {
	err := n.repo.Delete(ctx, id)
	if errors.Is(err, errs.ErrNotFound) {
		return errs.NotFoundf("Notification %s does not exist!", id)
	}
	return err
}

// DeleteForUser empties the inbox of user.
func (n *Notifications) DeleteForUser(ctx context.Context, user uuid.UUID) (int64, error) {
	return n.repo.DeleteByNotifee(ctx, user)
}

// DeleteForResource removes notifications pointing at resource.
func (n *Notifications) DeleteForResource(ctx context.Context, resource uuid.UUID) (int64, error) {
	return n.repo.DeleteByResource(ctx, resource)
}
