// Package model defines domain entities used by concepts, services and repositories.
package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// Tokens collects an issued access token and the session it is bound to.
type Tokens struct {
	AccessToken string
	SessionID   uuid.UUID
	ExpiresAt   time.Time // access token expiry (for diagnostics)
}

// User represents an account. Passwords are never stored in plaintext.
type User struct {
	ID        uuid.UUID // PK
	Username  string    // unique
	PwdHash   []byte    // Argon2id(password, SaltAuth)
	SaltAuth  []byte    // per-user auth salt
	CreatedAt time.Time
}

// Session is a server-side login session; its ID is the token's jti.
type Session struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Project holds project metadata. (CreatorID, Name) is unique.
type Project struct {
	ID        uuid.UUID
	CreatorID uuid.UUID // admin/manager of the project
	Name      string
	CreatedAt time.Time
}

// Membership asserts that a user belongs to a project's member set.
type Membership struct {
	ID        uuid.UUID
	ProjectID uuid.UUID // group key
	MemberID  uuid.UUID
	CreatedAt time.Time
}

// Task is a unit of work inside a project.
type Task struct {
	ID         uuid.UUID
	ProjectID  uuid.UUID
	Title      string
	Notes      string
	AssigneeID uuid.NullUUID // unset when unassigned
	Completion bool
	Links      []string
	CreatedAt  time.Time
}

// Assigned reports whether the task currently has an assignee.
func (t Task) Assigned() bool { return t.AssigneeID.Valid }

// IsAssignee reports whether userID is the task's current assignee.
func (t Task) IsAssignee(userID uuid.UUID) bool {
	return t.AssigneeID.Valid && t.AssigneeID.UUID == userID
}

// Dependency is a directed "must finish before" edge: Independent -> Dependent.
type Dependency struct {
	ID            uuid.UUID
	IndependentID uuid.UUID
	DependentID   uuid.UUID
	CreatedAt     time.Time
}

// Deadline is the single due time of a task.
type Deadline struct {
	ID        uuid.UUID
	TaskID    uuid.UUID
	Time      time.Time
	CreatedAt time.Time
}

// Reward is a cosmetic reward granted to a user for completing a task.
type Reward struct {
	ID        uuid.UUID
	Name      string
	Icon      string
	UserID    uuid.UUID
	ProjectID uuid.UUID
	TaskID    uuid.UUID
	CreatedAt time.Time
}

// RewardFilter narrows reward listings; nil fields are not applied.
type RewardFilter struct {
	UserID    *uuid.UUID
	ProjectID *uuid.UUID
	TaskID    *uuid.UUID
}

// Notification is a per-user inbox entry, optionally pointing at a resource.
type Notification struct {
	ID         uuid.UUID
	NotifeeID  uuid.UUID
	Message    string
	ResourceID uuid.NullUUID
	CreatedAt  time.Time
}

// OrphanReport counts records whose soft references point at nothing.
type OrphanReport struct {
	Memberships   int64 // project missing
	Tasks         int64 // project missing
	Deadlines     int64 // task missing
	Dependencies  int64 // either endpoint task missing
	Rewards       int64 // task missing
	Notifications int64 // resource set but neither a task nor a project
}

// Total sums all orphan counts.
func (r OrphanReport) Total() int64 {
	return r.Memberships + r.Tasks + r.Deadlines + r.Dependencies + r.Rewards + r.Notifications
}
