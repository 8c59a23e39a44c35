package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/and161185/taskhive/internal/model"
	"github.com/and161185/taskhive/internal/repository"
)

// IntegrityService finds and removes records whose project or task is gone.
type IntegrityService interface {
	Check(ctx context.Context) (model.OrphanReport, error)
	Repair(ctx context.Context) (model.OrphanReport, error)
}

type IntegrityServiceImpl struct {
	repo repository.IntegrityRepository
	log  *zap.Logger
}

// NewIntegrityService constructs IntegrityService.
func NewIntegrityService(repo repository.IntegrityRepository, log *zap.Logger) *IntegrityServiceImpl {
	return &IntegrityServiceImpl{repo: repo, log: log}
}

func (s *IntegrityServiceImpl) Check(ctx context.Context) (model.OrphanReport, error) {
	return s.repo.FindOrphans(ctx)
}

func (s *IntegrityServiceImpl) Repair(ctx context.Context) (model.OrphanReport, error) {
	rep, err := s.repo.DeleteOrphans(ctx)
	if err != nil {
		return model.OrphanReport{}, err
	}
	s.log.Info("orphans removed",
		zap.Int64("memberships", rep.Memberships),
		zap.Int64("tasks", rep.Tasks),
		zap.Int64("deadlines", rep.Deadlines),
		zap.Int64("dependencies", rep.Dependencies),
		zap.Int64("rewards", rep.Rewards),
		zap.Int64("notifications", rep.Notifications),
	)
	return rep, nil
}
