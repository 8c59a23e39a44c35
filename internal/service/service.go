// Package service contains the application services behind the HTTP API.
// They authorize the caller and sequence concept calls; concepts never call
// each other.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/and161185/taskhive/internal/concept"
	"github.com/and161185/taskhive/internal/errs"
	"github.com/and161185/taskhive/internal/limiter"
	"github.com/and161185/taskhive/internal/repository"
)

// Principal identifies the authenticated caller.
type Principal struct {
	UserID    uuid.UUID
	SessionID uuid.UUID
}

// Services bundles every application service.
type Services struct {
	Auth          AuthService
	Projects      ProjectService
	Tasks         TaskService
	Rewards       RewardService
	Notifications NotificationService
	Integrity     IntegrityService
}

// Options configure New.
type Options struct {
	SignKey   []byte
	AccessTTL time.Duration
	Logger    *zap.Logger
	Clock     concept.Clock
}

// New wires all services over the given concepts.
func New(c *concept.Concepts, integrity repository.IntegrityRepository, lim limiter.Limiter, o Options) *Services {
	log := o.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Services{
		Auth:          NewAuthService(c, lim, o.SignKey, o.AccessTTL, log, o.Clock),
		Projects:      NewProjectService(c, log),
		Tasks:         NewTaskService(c, log),
		Rewards:       NewRewardService(c),
		Notifications: NewNotificationService(c),
		Integrity:     NewIntegrityService(integrity, log),
	}
}

// userMessage is the text reported for a failed best-effort step.
func userMessage(err error) string {
	var e *errs.Error
	if errors.As(err, &e) {
		return e.Msg
	}
	return "internal error"
}

// deleteTaskCascade removes a task and everything hanging off it. Steps run
// in order and stop at the first failure.
func deleteTaskCascade(ctx context.Context, c *concept.Concepts, task uuid.UUID) error {
	if _, err := c.Deadlines.Delete(ctx, task); err != nil {
		return err
	}
	if _, err := c.Dependencies.DeleteForTask(ctx, task); err != nil {
		return err
	}
	if _, err := c.Rewards.DeleteForTask(ctx, task); err != nil {
		return err
	}
	if _, err := c.Notifications.DeleteForResource(ctx, task); err != nil {
		return err
	}
	return c.Tasks.Delete(ctx, task)
}

// deleteProjectCascade removes memberships, tasks (with their cascade) and
// finally the project record.
func deleteProjectCascade(ctx context.Context, c *concept.Concepts, log *zap.Logger, project uuid.UUID) error {
	if _, err := c.Members.DeleteAll(ctx, project); err != nil {
		return err
	}
	tasks, err := c.Tasks.ListByProject(ctx, project)
	if err != nil {
		return err
	}
	for _, t := range tasks {
		if err := deleteTaskCascade(ctx, c, t.ID); err != nil {
			log.Warn("project cascade stopped at task",
				zap.String("project_id", project.String()),
				zap.String("task_id", t.ID.String()),
				zap.Error(err),
			)
			return err
		}
	}
	// Sweep tasks the listing above missed.
	if n, err := c.Tasks.DeleteForProject(ctx, project); err != nil {
		return err
	} else if n > 0 {
		log.Warn("project cascade swept unlisted tasks",
			zap.String("project_id", project.String()),
			zap.Int64("tasks", n),
		)
	}
	if _, err := c.Rewards.DeleteForProject(ctx, project); err != nil {
		return err
	}
	if _, err := c.Notifications.DeleteForResource(ctx, project); err != nil {
		return err
	}
	return c.Projects.Delete(ctx, project)
}
