package concept

import (
	"context"
	"errors"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/taskhive/internal/errs"
	"github.com/and161185/taskhive/internal/model"
	"github.com/and161185/taskhive/internal/repository"
)

// MsgDependencyCreated is reported after an edge is stored.
const MsgDependencyCreated = "Succesfully created new dependency!"

// Dependencies owns "must finish before" edges between tasks. The edge
// independent -> dependent means dependent cannot start until independent
// is done. The graph is kept acyclic.
type Dependencies struct {
	repo repository.DependencyRepository
	now  Clock
}

// NewDependencies constructs the Dependencies concept.
func NewDependencies(repo repository.DependencyRepository, now Clock) *Dependencies {
	return &Dependencies{repo: repo, now: now}
}

func duplicateEdge(independent, dependent uuid.UUID) error {
	return errs.AlreadyExistsf("A dependency already exists with independent: %s and dependent: %s", independent, dependent)
}

// Create stores the edge independent -> dependent.
func (d *Dependencies) Create(ctx context.Context, independent, dependent uuid.UUID) (*model.Dependency, error) {
	if independent == dependent {
		return nil, errs.NotAllowedf("A task cannot depend on itself!")
	}
	ok, err := d.repo.Exists(ctx, independent, dependent)
	if err != nil {
		return nil, err
	}
	if ok {
		return nil, duplicateEdge(independent, dependent)
	}
	cyclic, err := d.reaches(ctx, dependent, independent)
	if err != nil {
		return nil, err
	}
	if cyclic {
		return nil, errs.NotAllowedf("Dependency of %s on %s would create a cycle!", dependent, independent)
	}
	id, err := newID()
	if err != nil {
		return nil, err
	}
	edge := &model.Dependency{ID: id, IndependentID: independent, DependentID: dependent, CreatedAt: d.now()}
	if err := d.repo.Create(ctx, edge); err != nil {
		if errors.Is(err, errs.ErrAlreadyExists) {
			return nil, duplicateEdge(independent, dependent)
		}
		return nil, err
	}
	return edge, nil
}

// reaches walks outgoing edges from src and reports whether dst is reachable.
func (d *Dependencies) reaches(ctx context.Context, src, dst uuid.UUID) (bool, error) {
	seen := map[uuid.UUID]bool{src: true}
	stack := []uuid.UUID{src}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out, err := d.repo.ListByIndependent(ctx, cur)
		if err != nil {
			return false, err
		}
		for _, e := range out {
			next := e.DependentID
			if next == dst {
				return true, nil
			}
			if !seen[next] {
				seen[next] = true
				stack = append(stack, next)
			}
		}
	}
	return false, nil
}

// Remove deletes the edge independent -> dependent.
func (d *Dependencies) Remove(ctx context.Context, independent, dependent uuid.UUID) error {
	err := d.repo.Delete(ctx, independent, dependent)
	if errors.Is(err, errs.ErrNotFound) {
		return errs.NotAllowedf("Removal failed, %s does not have dependency on %s", dependent, independent)
	}
	return err
}

// Dependents returns the edges leaving task.
func (d *Dependencies) Dependents(ctx context.Context, task uuid.UUID) ([]model.Dependency, error) {
	return d.repo.ListByIndependent(ctx, task)
}

// Dependencies returns the edges entering task.
func (d *Dependencies) Dependencies(ctx context.Context, task uuid.UUID) ([]model.Dependency, error) {
	return d.repo.ListByDependent(ctx, task)
}

// CanStart reports whether task has no prerequisites. Completion of the
// prerequisites is not considered.
func (d *Dependencies) CanStart(ctx context.Context, task uuid.UUID) (bool, error) {
	in, err := d.repo.ListByDependent(ctx, task)
	if err != nil {
		return false, err
	}
	return len(in) == 0, nil
}

// DeleteForTask removes every edge touching task.
func (d *Dependencies) DeleteForTask(ctx context.Context, task uuid.UUID) (int64, error) {
	return d.repo.DeleteByTask(ctx, task)
}
