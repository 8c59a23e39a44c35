package service

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/taskhive/internal/concept"
	"github.com/and161185/taskhive/internal/model"
)

// RewardService exposes granted rewards.
type RewardService interface {
	// Mine lists the actor's rewards, optionally narrowed to a project or task.
	Mine(ctx context.Context, actor uuid.UUID, project, task *uuid.UUID) ([]model.Reward, error)
	// ForProject lists every reward earned in a project the actor belongs to.
	ForProject(ctx context.Context, actor, project uuid.UUID) ([]model.Reward, error)
}

type RewardServiceImpl struct {
	c *concept.Concepts
}

// NewRewardService constructs RewardService.
func NewRewardService(c *concept.Concepts) *RewardServiceImpl {
	return &RewardServiceImpl{c: c}
}

func (s *RewardServiceImpl) Mine(ctx context.Context, actor uuid.UUID, project, task *uuid.UUID) ([]model.Reward, error) {
	return s.c.Rewards.List(ctx, model.RewardFilter{UserID: &actor, ProjectID: project, TaskID: task})
}

func (s *RewardServiceImpl) ForProject(ctx context.Context, actor, project uuid.UUID) ([]model.Reward, error) {
	if _, err := memberProject(ctx, s.c, actor, project); err != nil {
		return nil, err
	}
	return s.c.Rewards.List(ctx, model.RewardFilter{ProjectID: &project})
}
