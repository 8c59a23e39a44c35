package sqlite

import "github.com/and161185/taskhive/internal/repository"

// NewSet wires every SQLite repository over one handle.
func NewSet(db *DB) repository.Set {
	return repository.Set{
		Users:         NewUserRepo(db),
		Sessions:      NewSessionRepo(db),
		Projects:      NewProjectRepo(db),
		Memberships:   NewMembershipRepo(db),
		Tasks:         NewTaskRepo(db),
		Dependencies:  NewDependencyRepo(db),
		Deadlines:     NewDeadlineRepo(db),
		Rewards:       NewRewardRepo(db),
		Notifications: NewNotificationRepo(db),
		Integrity:     NewIntegrityRepo(db),
		Close:         db.Close,
	}
}
