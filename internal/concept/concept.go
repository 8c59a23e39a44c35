// Package concept holds one object per stored collection. Each one enforces
// the rules that can be checked against its own records (existence,
// uniqueness, time windows) and knows nothing about the other collections;
// cross-collection sequencing lives in package service.
package concept

import (
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/taskhive/internal/crypto"
	"github.com/and161185/taskhive/internal/repository"
)

// Clock returns the current time.
type Clock func() time.Time

func newID() (uuid.UUID, error) { return uuid.NewV4() }

// Concepts bundles every concept built over one repository set.
type Concepts struct {
	Users         *Users
	Sessions      *Sessions
	Projects      *Projects
	Members       *Members
	Tasks         *Tasks
	Dependencies  *Dependencies
	Deadlines     *Deadlines
	Rewards       *Rewards
	Notifications *Notifications
}

// Options tune New. Zero values select production defaults.
type Options struct {
	Hasher *crypto.Hasher
	Clock  Clock
	// RewardSeed seeds reward selection; zero picks a time-based seed.
	RewardSeed uint64
}

// New constructs all concepts.
func New(repos repository.Set, o Options) *Concepts {
	if o.Hasher == nil {
		o.Hasher = crypto.NewHasher(crypto.DefaultParams)
	}
	if o.Clock == nil {
		o.Clock = time.Now
	}
	seed := o.RewardSeed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Concepts{
		Users:         NewUsers(repos.Users, o.Hasher, o.Clock),
		Sessions:      NewSessions(repos.Sessions, o.Clock),
		Projects:      NewProjects(repos.Projects, o.Clock),
		Members:       NewMembers(repos.Memberships, o.Clock),
		Tasks:         NewTasks(repos.Tasks, o.Clock),
		Dependencies:  NewDependencies(repos.Dependencies, o.Clock),
		Deadlines:     NewDeadlines(repos.Deadlines, o.Clock),
		Rewards:       NewRewards(repos.Rewards, DefaultRewardPool, NewRandomSource(seed), o.Clock),
		Notifications: NewNotifications(repos.Notifications, o.Clock),
	}
}
