package concept

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/taskhive/internal/errs"
	"github.com/and161185/taskhive/internal/model"
	"github.com/and161185/taskhive/internal/repository"
)

// MsgRewardsExhausted is reported when the user already holds every reward.
const MsgRewardsExhausted = "You have already collected every reward!"

// RewardKind is one collectible reward.
type RewardKind struct {
	Name string
	Icon string
}

// DefaultRewardPool lists every reward a user can earn, each at most once.
var DefaultRewardPool = []RewardKind{
	{Name: "Early Bird", Icon: "/icons/early-bird.svg"},
	{Name: "Night Owl", Icon: "/icons/night-owl.svg"},
	{Name: "Busy Bee", Icon: "/icons/busy-bee.svg"},
	{Name: "Trailblazer", Icon: "/icons/trailblazer.svg"},
	{Name: "Team Player", Icon: "/icons/team-player.svg"},
	{Name: "Bug Squasher", Icon: "/icons/bug-squasher.svg"},
	{Name: "Finisher", Icon: "/icons/finisher.svg"},
}

// RandomSource picks an index in [0, n). Safe for concurrent use.
type RandomSource interface {
	IntN(n int) int
}

type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewRandomSource returns a seeded, mutex-guarded generator.
func NewRandomSource(seed uint64) RandomSource {
	return &lockedRand{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (l *lockedRand) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.IntN(n)
}

// PickReward chooses uniformly among the kinds in pool whose name is not in
// held. ok is false when nothing is left.
func PickReward(pool []RewardKind, held []string, rng RandomSource) (kind RewardKind, ok bool) {
	candidates := remaining(pool, held)
	if len(candidates) == 0 {
		return RewardKind{}, false
	}
	return candidates[rng.IntN(len(candidates))], true
}

func remaining(pool []RewardKind, held []string) []RewardKind {
	have := make(map[string]struct{}, len(held))
	for _, h := range held {
		have[h] = struct{}{}
	}
	out := make([]RewardKind, 0, len(pool))
	for _, k := range pool {
		if _, dup := have[k.Name]; !dup {
			out = append(out, k)
		}
	}
	return out
}

// Rewards grants collectible rewards for completed tasks.
type Rewards struct {
	repo repository.RewardRepository
	pool []RewardKind
	rng  RandomSource
	now  Clock
}

// NewRewards constructs the Rewards concept over pool.
func NewRewards(repo repository.RewardRepository, pool []RewardKind, rng RandomSource, now Clock) *Rewards {
	return &Rewards{repo: repo, pool: pool, rng: rng, now: now}
}

// Grant is the outcome of Create. Reward is nil when the pool was exhausted.
type Grant struct {
	Reward *model.Reward
	Msg    string
}

// Create grants user a reward for task. A user holding every reward gets a
// Grant without a reward and no error. A task that already issued a reward
// is NotAllowed.
func (r *Rewards) Create(ctx context.Context, user, project, task uuid.UUID) (Grant, error) {
	held, err := r.repo.HeldNames(ctx, user)
	if err != nil {
		return Grant{}, err
	}
	if len(remaining(r.pool, held)) == 0 {
		return Grant{Msg: MsgRewardsExhausted}, nil
	}
	if _, err := r.repo.GetByTask(ctx, task); err == nil {
		return Grant{}, errs.NotAllowedf("Task %s already issued a reward!", task)
	} else if !errors.Is(err, errs.ErrNotFound) {
		return Grant{}, err
	}
	kind, ok := PickReward(r.pool, held, r.rng)
	if !ok {
		return Grant{Msg: MsgRewardsExhausted}, nil
	}
	id, err := newID()
	if err != nil {
		return Grant{}, err
	}
	reward := &model.Reward{
		ID:        id,
		Name:      kind.Name,
		Icon:      kind.Icon,
		UserID:    user,
		ProjectID: project,
		TaskID:    task,
		CreatedAt: r.now(),
	}
	if err := r.repo.Create(ctx, reward); err != nil {
		if errors.Is(err, errs.ErrAlreadyExists) {
			return Grant{}, errs.NotAllowedf("Task %s already issued a reward!", task)
		}
		return Grant{}, err
	}
	return Grant{Reward: reward, Msg: fmt.Sprintf("You earned a new reward: %s!", kind.Name)}, nil
}

// List returns rewards matching f.
func (r *Rewards) List(ctx context.Context, f model.RewardFilter) ([]model.Reward, error) {
	out, err := r.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []model.Reward{}
	}
	return out, nil
}

// ForTask returns the reward issued for task, or nil.
func (r *Rewards) ForTask(ctx context.Context, task uuid.UUID) (*model.Reward, error) {
	rw, err := r.repo.GetByTask(ctx, task)
	if errors.Is(err, errs.ErrNotFound) {
		return nil, nil
	}
	return rw, err
}

// DeleteForTask removes the reward issued for task.
func (r *Rewards) DeleteForTask(ctx context.Context, task uuid.UUID) (int64, error) {
	return r.repo.DeleteByTask(ctx, task)
}

// DeleteForProject removes rewards earned in project.
func (r *Rewards) DeleteForProject(ctx context.Context, project uuid.UUID) (int64, error) {
	return r.repo.DeleteByProject(ctx, project)
}

// DeleteForUser removes every reward of user.
func (r *Rewards) DeleteForUser(ctx context.Context, user uuid.UUID) (int64, error) {
	return r.repo.DeleteByUser(ctx, user)
}
