package repository

import (
	"context"

	"github.com/and161185/taskhive/internal/model"
	"github.com/gofrs/uuid/v5"
)

// RewardRepository stores granted rewards.
type RewardRepository interface {
	// Create inserts a reward; a second reward for the task or a repeated name for
	// the user yields errs.ErrAlreadyExists.
	Create(ctx context.Context, r *model.Reward) error
	Get(ctx context.Context, id uuid.UUID) (*model.Reward, error)
	List(ctx context.Context, f model.RewardFilter) ([]model.Reward, error)
	GetByTask(ctx context.Context, taskID uuid.UUID) (*model.Reward, error)
	// HeldNames returns the reward names the user currently holds.
	HeldNames(ctx context.Context, userID uuid.UUID) ([]string, error)
	DeleteByTask(ctx context.Context, taskID uuid.UUID) (int64, error)
	DeleteByProject(ctx context.Context, projectID uuid.UUID) (int64, error)
	DeleteByUser(ctx context.Context, userID uuid.UUID) (int64, error)
}
