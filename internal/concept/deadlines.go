package concept

import (
	"context"
	"errors"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/taskhive/internal/errs"
	"github.com/and161185/taskhive/internal/model"
	"github.com/and161185/taskhive/internal/repository"
)

// Messages reported by deadline changes.
const (
	MsgDeadlineCreated = "Successfully created new deadline"
	MsgDeadlineUpdated = "Succesfully updated deadline"
)

// Deadlines owns the single due time of each task.
type Deadlines struct {
	repo repository.DeadlineRepository
	now  Clock
}

// NewDeadlines constructs the Deadlines concept.
func NewDeadlines(repo repository.DeadlineRepository, now Clock) *Deadlines {
	return &Deadlines{repo: repo, now: now}
}

func (d *Deadlines) assertFuture(at time.Time) error {
	if !at.After(d.now()) {
		return errs.NotAllowedf("Can't set a deadline in the past!")
	}
	return nil
}

// Create sets the due time of task; at must lie in the future.
func (d *Deadlines) Create(ctx context.Context, task uuid.UUID, at time.Time) (*model.Deadline, error) {
	if err := d.assertFuture(at); err != nil {
		return nil, err
	}
	id, err := newID()
	if err != nil {
		return nil, err
	}
	dl := &model.Deadline{ID: id, TaskID: task, Time: at.UTC(), CreatedAt: d.now()}
	if err := d.repo.Create(ctx, dl); err != nil {
		if errors.Is(err, errs.ErrAlreadyExists) {
			return nil, errs.AlreadyExistsf("Task %s already has a deadline!", task)
		}
		return nil, err
	}
	return dl, nil
}

// Get returns the deadline of task, or nil when it has none.
func (d *Deadlines) Get(ctx context.Context, task uuid.UUID) (*model.Deadline, error) {
	dl, err := d.repo.GetByTask(ctx, task)
	if errors.Is(err, errs.ErrNotFound) {
		return nil, nil
	}
	return dl, err
}

func (d *Deadlines) mustGet(ctx context.Context, task uuid.UUID) (*model.Deadline, error) {
	dl, err := d.repo.GetByTask(ctx, task)
	if errors.Is(err, errs.ErrNotFound) {
		return nil, errs.NotFoundf("Task %s has no deadline!", task)
	}
	return dl, err
}

// HasPassed reports whether the deadline of task is behind us.
func (d *Deadlines) HasPassed(ctx context.Context, task uuid.UUID) (bool, error) {
	dl, err := d.mustGet(ctx, task)
	if err != nil {
		return false, err
	}
	return !dl.Time.After(d.now()), nil
}

// TimeLeft returns the duration until the deadline; negative once passed.
func (d *Deadlines) TimeLeft(ctx context.Context, task uuid.UUID) (time.Duration, error) {
	dl, err := d.mustGet(ctx, task)
	if err != nil {
		return 0, err
	}
	return dl.Time.Sub(d.now()), nil
}

// Update moves an existing deadline; it never creates one.
func (d *Deadlines) Update(ctx context.Context, task uuid.UUID, at time.Time) error {
	if err := d.assertFuture(at); err != nil {
		return err
	}
	err := d.repo.Update(ctx, task, at.UTC())
	if errors.Is(err, errs.ErrNotFound) {
		return errs.NotFoundf("Task %s has no deadline!", task)
	}
	return err
}

// Delete drops the deadline of task, if any.
func (d *Deadlines) Delete(ctx context.Context, task uuid.UUID) (int64, error) {
	return d.repo.DeleteByTask(ctx, task)
}
