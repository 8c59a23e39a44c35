package repository

import (
	"context"

	"github.com/and161185/taskhive/internal/model"
)

// IntegrityRepository inspects soft references across collections.
type IntegrityRepository interface {
	// FindOrphans counts records referencing missing projects or tasks.
	FindOrphans(ctx context.Context) (model.OrphanReport, error)
	// DeleteOrphans removes them and reports what was deleted.
	DeleteOrphans(ctx context.Context) (model.OrphanReport, error)
}

// Set bundles one repository per collection of a single backend.
type Set struct {
	Users         UserRepository
	Sessions      SessionRepository
	Projects      ProjectRepository
	Memberships   MembershipRepository
	Tasks         TaskRepository
	Dependencies  DependencyRepository
	Deadlines     DeadlineRepository
	Rewards       RewardRepository
	Notifications NotificationRepository
	Integrity     IntegrityRepository

	// Close releases the backend connection.
	Close func()
}
