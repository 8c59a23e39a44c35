package repository

import (
	"context"

	"github.com/and161185/taskhive/internal/model"
	"github.com/gofrs/uuid/v5"
)

// NotificationRepository stores per-user inbox entries.
type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) error
	Get(ctx context.Context, id uuid.UUID) (*model.Notification, error)
	// ListByNotifee returns the user's notifications, newest first.
	ListByNotifee(ctx context.Context, notifeeID uuid.UUID) ([]model.Notification, error)
	ListByResource(ctx context.Context, resourceID uuid.UUID) ([]model.Notification, error)
	// Delete removes one notification; errs.ErrNotFound when absent.
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByNotifee(ctx context.Context, notifeeID uuid.UUID) (int64, error)
	DeleteByResource(ctx context.Context, resourceID uuid.UUID) (int64, error)
}
