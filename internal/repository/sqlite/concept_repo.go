package sqlite

import (
	"context"
	"strings"
	"time"

	"github.com/and161185/taskhive/internal/model"
	"github.com/gofrs/uuid/v5"
)

type deadlineRow struct {
	ID        uuid.UUID `db:"id"`
	TaskID    uuid.UUID `db:"task_id"`
	DueAt     int64     `db:"due_at"`
	CreatedAt int64     `db:"created_at"`
}

// DeadlineRepo implements DeadlineRepository using SQLite.
type DeadlineRepo struct{ db *DB }

// NewDeadlineRepo constructs a deadline repository.
func NewDeadlineRepo(db *DB) *DeadlineRepo { return &DeadlineRepo{db: db} }

// Create inserts a deadline; task_id is unique.
func (r *DeadlineRepo) Create(ctx context.Context, d *model.Deadline) error {
	const q = `INSERT INTO deadlines (id, task_id, due_at, created_at) VALUES (?, ?, ?, ?)`
	_, err := r.db.X.ExecContext(ctx, q, d.ID, d.TaskID, nanos(d.Time), nanos(d.CreatedAt))
	return mapInsertErr(err)
}

// GetByTask selects the deadline of a task.
func (r *DeadlineRepo) GetByTask(ctx context.Context, taskID uuid.UUID) (*model.Deadline, error) {
	var row deadlineRow
	const q = `SELECT id, task_id, due_at, created_at FROM deadlines WHERE task_id = ?`
	if err := r.db.X.GetContext(ctx, &row, q, taskID); err != nil {
		return nil, mapNoRows(err)
	}
	return &model.Deadline{
		ID:        row.ID,
		TaskID:    row.TaskID,
		Time:      fromNanos(row.DueAt),
		CreatedAt: fromNanos(row.CreatedAt),
	}, nil
}

// Update moves an existing deadline; it never inserts.
func (r *DeadlineRepo) Update(ctx context.Context, taskID uuid.UUID, t time.Time) error {
	return execOne(ctx, r.db.X, `UPDATE deadlines SET due_at = ? WHERE task_id = ?`, nanos(t), taskID)
}

// DeleteByTask removes the deadline of a task.
func (r *DeadlineRepo) DeleteByTask(ctx context.Context, taskID uuid.UUID) (int64, error) {
	return execCount(ctx, r.db.X, `DELETE FROM deadlines WHERE task_id = ?`, taskID)
}

type rewardRow struct {
	ID        uuid.UUID `db:"id"`
	Name      string    `db:"name"`
	Icon      string    `db:"icon"`
	UserID    uuid.UUID `db:"user_id"`
	ProjectID uuid.UUID `db:"project_id"`
	TaskID    uuid.UUID `db:"task_id"`
	CreatedAt int64     `db:"created_at"`
}

func (r rewardRow) model() (model.Reward, error) {
	return model.Reward{
		ID:        r.ID,
		Name:      r.Name,
		Icon:      r.Icon,
		UserID:    r.UserID,
		ProjectID: r.ProjectID,
		TaskID:    r.TaskID,
		CreatedAt: fromNanos(r.CreatedAt),
	}, nil
}

// RewardRepo implements RewardRepository using SQLite.
type RewardRepo struct{ db *DB }

// NewRewardRepo constructs a reward repository.
func NewRewardRepo(db *DB) *RewardRepo { return &RewardRepo{db: db} }

const rewardCols = `id, name, icon, user_id, project_id, task_id, created_at`

// Create inserts a reward; task_id and (user_id, name) are unique.
func (r *RewardRepo) Create(ctx context.Context, rw *model.Reward) error {
	const q = `INSERT INTO rewards (` + rewardCols + `) VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.X.ExecContext(ctx, q, rw.ID, rw.Name, rw.Icon, rw.UserID, rw.ProjectID, rw.TaskID, nanos(rw.CreatedAt))
	return mapInsertErr(err)
}

func (r *RewardRepo) getOne(ctx context.Context, q string, arg uuid.UUID) (*model.Reward, error) {
	var row rewardRow
	if err := r.db.X.GetContext(ctx, &row, q, arg); err != nil {
		return nil, mapNoRows(err)
	}
	rw, _ := row.model()
	return &rw, nil
}

// Get selects a reward by id.
func (r *RewardRepo) Get(ctx context.Context, id uuid.UUID) (*model.Reward, error) {
	return r.getOne(ctx, `SELECT `+rewardCols+` FROM rewards WHERE id = ?`, id)
}

// GetByTask selects the reward issued for a task.
func (r *RewardRepo) GetByTask(ctx context.Context, taskID uuid.UUID) (*model.Reward, error) {
	return r.getOne(ctx, `SELECT `+rewardCols+` FROM rewards WHERE task_id = ?`, taskID)
}

// List selects rewards matching every non-nil filter field.
func (r *RewardRepo) List(ctx context.Context, f model.RewardFilter) ([]model.Reward, error) {
	var (
		conds []string
		args  []any
	)
	if f.UserID != nil {
		conds = append(conds, "user_id = ?")
		args = append(args, *f.UserID)
	}
	if f.ProjectID != nil {
		conds = append(conds, "project_id = ?")
		args = append(args, *f.ProjectID)
	}
	if f.TaskID != nil {
		conds = append(conds, "task_id = ?")
		args = append(args, *f.TaskID)
	}
	q := `SELECT ` + rewardCols + ` FROM rewards`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY created_at, rowid"

	var rows []rewardRow
	if err := r.db.X.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, err
	}
	return mapRows(rows, rewardRow.model)
}

// HeldNames lists the reward names a user currently holds.
func (r *RewardRepo) HeldNames(ctx context.Context, userID uuid.UUID) ([]string, error) {
	names := []string{}
	if err := r.db.X.SelectContext(ctx, &names, `SELECT name FROM rewards WHERE user_id = ?`, userID); err != nil {
		return nil, err
	}
	return names, nil
}

// DeleteByTask removes the reward of a task.
func (r *RewardRepo) DeleteByTask(ctx context.Context, taskID uuid.UUID) (int64, error) {
	return execCount(ctx, r.db.X, `DELETE FROM rewards WHERE task_id = ?`, taskID)
}

// DeleteByProject removes every reward issued inside a project.
func (r *RewardRepo) DeleteByProject(ctx context.Context, projectID uuid.UUID) (int64, error) {
	return execCount(ctx, r.db.X, `DELETE FROM rewards WHERE project_id = ?`, projectID)
}

// DeleteByUser removes every reward held by a user.
func (r *RewardRepo) DeleteByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	return execCount(ctx, r.db.X, `DELETE FROM rewards WHERE user_id = ?`, userID)
}

type notificationRow struct {
	ID         uuid.UUID     `db:"id"`
	NotifeeID  uuid.UUID     `db:"notifee_id"`
	Message    string        `db:"message"`
	ResourceID uuid.NullUUID `db:"resource_id"`
	CreatedAt  int64         `db:"created_at"`
}

func (r notificationRow) model() (model.Notification, error) {
	return model.Notification{
		ID:         r.ID,
		NotifeeID:  r.NotifeeID,
		Message:    r.Message,
		ResourceID: r.ResourceID,
		CreatedAt:  fromNanos(r.CreatedAt),
	}, nil
}

// NotificationRepo implements NotificationRepository using SQLite.
type NotificationRepo struct{ db *DB }

// NewNotificationRepo constructs a notification repository.
func NewNotificationRepo(db *DB) *NotificationRepo { return &NotificationRepo{db: db} }

const notificationCols = `id, notifee_id, message, resource_id, created_at`

// Create inserts a notification.
func (r *NotificationRepo) Create(ctx context.Context, n *model.Notification) error {
	const q = `INSERT INTO notifications (` + notificationCols + `) VALUES (?, ?, ?, ?, ?)`
	_, err := r.db.X.ExecContext(ctx, q, n.ID, n.NotifeeID, n.Message, n.ResourceID, nanos(n.CreatedAt))
	return mapInsertErr(err)
}

// Get selects a notification by id.
func (r *NotificationRepo) Get(ctx context.Context, id uuid.UUID) (*model.Notification, error) {
	var row notificationRow
	if err := r.db.X.GetContext(ctx, &row, `SELECT `+notificationCols+` FROM notifications WHERE id = ?`, id); err != nil {
		return nil, mapNoRows(err)
	}
	n, _ := row.model()
	return &n, nil
}

func (r *NotificationRepo) list(ctx context.Context, q string, arg uuid.UUID) ([]model.Notification, error) {
	var rows []notificationRow
	if err := r.db.X.SelectContext(ctx, &rows, q, arg); err != nil {
		return nil, err
	}
	return mapRows(rows, notificationRow.model)
}

// ListByNotifee selects a user's inbox, newest first.
func (r *NotificationRepo) ListByNotifee(ctx context.Context, notifeeID uuid.UUID) ([]model.Notification, error) {
	return r.list(ctx, `SELECT `+notificationCols+` FROM notifications WHERE notifee_id = ? ORDER BY created_at DESC, rowid DESC`, notifeeID)
}

// ListByResource selects notifications pointing at a resource.
func (r *NotificationRepo) ListByResource(ctx context.Context, resourceID uuid.UUID) ([]model.Notification, error) {
	return r.list(ctx, `SELECT `+notificationCols+` FROM notifications WHERE resource_id = ? ORDER BY created_at DESC, rowid DESC`, resourceID)
}

// Delete removes one notification.
func (r *NotificationRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return execOne(ctx, r.db.X, `DELETE FROM notifications WHERE id = ?`, id)
}

// DeleteByNotifee clears a user's inbox.
func (r *NotificationRepo) DeleteByNotifee(ctx context.Context, notifeeID uuid.UUID) (int64, error) {
	return execCount(ctx, r.db.X, `DELETE FROM notifications WHERE notifee_id = ?`, notifeeID)
}

// DeleteByResource removes notifications pointing at a resource.
func (r *NotificationRepo) DeleteByResource(ctx context.Context, resourceID uuid.UUID) (int64, error) {
	return execCount(ctx, r.db.X, `DELETE FROM notifications WHERE resource_id = ?`, resourceID)
}
