package postgres

import (
	"context"

	"github.com/and161185/taskhive/internal/model"
	"github.com/gofrs/uuid/v5"
)

// NotificationRepo implements NotificationRepository using PostgreSQL.
type NotificationRepo struct{ db *DB }

// NewNotificationRepo constructs a notification repository.
func NewNotificationRepo(db *DB) *NotificationRepo { return &NotificationRepo{db: db} }

const notificationCols = `id, notifee_id, message, resource_id, created_at`

func scanNotification(s scanner) (model.Notification, error) {
	var n model.Notification
	err := s.Scan(&n.ID, &n.NotifeeID, &n.Message, &n.ResourceID, &n.CreatedAt)
	return n, err
}

// Create inserts a notification.
func (r *NotificationRepo) Create(ctx context.Context, n *model.Notification) error {
	const q = `
INSERT INTO notifications (id, notifee_id, message, resource_id, created_at)
VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.Pool.Exec(ctx, q, n.ID, n.NotifeeID, n.Message, n.ResourceID, n.CreatedAt)
	return mapInsertErr(err)
}

// Get selects a notification by id.
func (r *NotificationRepo) Get(ctx context.Context, id uuid.UUID) (*model.Notification, error) {
	const q = `SELECT ` + notificationCols + ` FROM notifications WHERE id=$1`
	n, err := scanNotification(r.db.Pool.QueryRow(ctx, q, id))
	if err != nil {
		return nil, mapNoRows(err)
	}
	return &n, nil
}

// ListByNotifee selects a user's inbox, newest first.
func (r *NotificationRepo) ListByNotifee(ctx context.Context, notifeeID uuid.UUID) ([]model.Notification, error) {
	const q = `SELECT ` + notificationCols + ` FROM notifications WHERE notifee_id=$1 ORDER BY created_at DESC, seq DESC`
	rows, err := r.db.Pool.Query(ctx, q, notifeeID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanNotification)
}

// ListByResource selects notifications pointing at a resource.
func (r *NotificationRepo) ListByResource(ctx context.Context, resourceID uuid.UUID) ([]model.Notification, error) {
	const q = `SELECT ` + notificationCols + ` FROM notifications WHERE resource_id=$1 ORDER BY created_at DESC, seq DESC`
	rows, err := r.db.Pool.Query(ctx, q, resourceID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanNotification)
}

// Delete removes one notification.
func (r *NotificationRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return execOne(ctx, r.db.Pool, `DELETE FROM notifications WHERE id=$1`, id)
}

// DeleteByNotifee clears a user's inbox.
func (r *NotificationRepo) DeleteByNotifee(ctx context.Context, notifeeID uuid.UUID) (int64, error) {
	return execCount(ctx, r.db.Pool, `DELETE FROM notifications WHERE notifee_id=$1`, notifeeID)
}

// DeleteByResource removes notifications pointing at a resource.
func (r *NotificationRepo) DeleteByResource(ctx context.Context, resourceID uuid.UUID) (int64, error) {
	return execCount(ctx, r.db.Pool, `DELETE FROM notifications WHERE resource_id=$1`, resourceID)
}
