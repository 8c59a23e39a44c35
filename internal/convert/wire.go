// Package convert maps domain models to the JSON shapes of the HTTP API and
// holds the request bodies shared by the server and the CLI.
package convert

import (
	"time"

	u "github.com/gofrs/uuid/v5"

	"github.com/and161185/taskhive/internal/model"
	"github.com/and161185/taskhive/internal/service"
)

// --- helpers ---

func ts(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	t = t.UTC()
	return &t
}

func nullID(id u.NullUUID) *string {
	if !id.Valid {
		return nil
	}
	s := id.UUID.String()
	return &s
}

func mapSlice[M, W any](in []M, f func(M) W) []W {
	out := make([]W, 0, len(in))
	for _, m := range in {
		out = append(out, f(m))
	}
	return out
}

// --- responses (server -> client) ---

// Msg is the body of every error and of plain acknowledgements.
type Msg struct {
	Msg string `json:"msg"`
}

type User struct {
	ID        string     `json:"id"`
	Username  string     `json:"username"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// ToUser drops credentials.
func ToUser(m model.User) User {
	return User{ID: m.ID.String(), Username: m.Username, CreatedAt: ts(m.CreatedAt)}
}

func ToUsers(ms []model.User) []User { return mapSlice(ms, ToUser) }

type Project struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	CreatorID string     `json:"creator_id"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

func ToProject(m model.Project) Project {
	return Project{ID: m.ID.String(), Name: m.Name, CreatorID: m.CreatorID.String(), CreatedAt: ts(m.CreatedAt)}
}

func ToProjects(ms []model.Project) []Project { return mapSlice(ms, ToProject) }

type Task struct {
	ID         string     `json:"id"`
	ProjectID  string     `json:"project_id"`
	Title      string     `json:"title"`
	Notes      string     `json:"notes"`
	Links      []string   `json:"links"`
	AssigneeID *string    `json:"assignee_id"`
	Completion bool       `json:"completion"`
	CreatedAt  *time.Time `json:"created_at,omitempty"`
}

func ToTask(m model.Task) Task {
	links := m.Links
	if links == nil {
		links = []string{}
	}
	return Task{
		ID:         m.ID.String(),
		ProjectID:  m.ProjectID.String(),
		Title:      m.Title,
		Notes:      m.Notes,
		Links:      links,
		AssigneeID: nullID(m.AssigneeID),
		Completion: m.Completion,
		CreatedAt:  ts(m.CreatedAt),
	}
}

type Deadline struct {
	TaskID string    `json:"task_id"`
	Time   time.Time `json:"time"`
}

// ToDeadline returns nil for a task without deadline.
func ToDeadline(m *model.Deadline) *Deadline {
	if m == nil {
		return nil
	}
	return &Deadline{TaskID: m.TaskID.String(), Time: m.Time.UTC()}
}

// TaskView is a task listed with its project name and deadline.
type TaskView struct {
	Task
	ProjectName string    `json:"project_name"`
	Deadline    *Deadline `json:"deadline"`
}

func ToTaskView(v service.TaskView) TaskView {
	return TaskView{Task: ToTask(v.Task), ProjectName: v.ProjectName, Deadline: ToDeadline(v.Deadline)}
}

func ToTaskViews(vs []service.TaskView) []TaskView { return mapSlice(vs, ToTaskView) }

// DeadlineStatus describes a deadline relative to the time of the request.
type DeadlineStatus struct {
	TaskID          string    `json:"task_id"`
	Time            time.Time `json:"time"`
	Passed          bool      `json:"passed"`
	TimeLeftSeconds int64     `json:"time_left_seconds"`
}

func ToDeadlineStatus(v service.DeadlineView) DeadlineStatus {
	return DeadlineStatus{
		TaskID:          v.TaskID.String(),
		Time:            v.Time.UTC(),
		Passed:          v.Passed,
		TimeLeftSeconds: int64(v.TimeLeft / time.Second),
	}
}

type Dependency struct {
	Independent string `json:"independent"`
	Dependent   string `json:"dependent"`
}

func ToDependency(m model.Dependency) Dependency {
	return Dependency{Independent: m.IndependentID.String(), Dependent: m.DependentID.String()}
}

// Dependencies lists the edges around one task.
type Dependencies struct {
	Dependencies []Dependency `json:"dependencies"`
	Dependents   []Dependency `json:"dependents"`
}

func ToDependencies(v service.DependencyView) Dependencies {
	return Dependencies{
		Dependencies: mapSlice(v.Dependencies, ToDependency),
		Dependents:   mapSlice(v.Dependents, ToDependency),
	}
}

type Reward struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Icon      string     `json:"icon"`
	UserID    string     `json:"user_id"`
	ProjectID string     `json:"project_id"`
	TaskID    string     `json:"task_id"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// ToReward returns nil when nothing was granted.
func ToReward(m *model.Reward) *Reward {
	if m == nil {
		return nil
	}
	return &Reward{
		ID:        m.ID.String(),
		Name:      m.Name,
		Icon:      m.Icon,
		UserID:    m.UserID.String(),
		ProjectID: m.ProjectID.String(),
		TaskID:    m.TaskID.String(),
		CreatedAt: ts(m.CreatedAt),
	}
}

func ToRewards(ms []model.Reward) []Reward {
	return mapSlice(ms, func(m model.Reward) Reward { return *ToReward(&m) })
}

type Notification struct {
	ID         string     `json:"id"`
	Message    string     `json:"message"`
	ResourceID *string    `json:"resource_id"`
	CreatedAt  *time.Time `json:"created_at,omitempty"`
}

func ToNotification(m model.Notification) Notification {
	return Notification{ID: m.ID.String(), Message: m.Message, ResourceID: nullID(m.ResourceID), CreatedAt: ts(m.CreatedAt)}
}

func ToNotifications(ms []model.Notification) []Notification { return mapSlice(ms, ToNotification) }

// Login is returned by POST /login.
type Login struct {
	Msg       string    `json:"msg"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TaskCreated is returned by POST /tasks.
type TaskCreated struct {
	Msg      string    `json:"msg"`
	Task     Task      `json:"task"`
	Deadline *Deadline `json:"deadline"`
}

// TaskCompleted is returned by POST /tasks/{id}/complete.
type TaskCompleted struct {
	Msg    string  `json:"msg"`
	Reward *Reward `json:"reward"`
}

// --- requests (client -> server) ---

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type UsernameChange struct {
	Username string `json:"username"`
}

type PasswordChange struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type ProjectName struct {
	Name string `json:"name"`
}

type ManagerChange struct {
	Manager string `json:"manager"`
}

type MemberAdd struct {
	Username string `json:"username"`
}

// NewTask is the body of POST /tasks. Assignee is a username; empty leaves
// the task unassigned.
type NewTask struct {
	Title    string     `json:"title"`
	Notes    string     `json:"notes"`
	Project  string     `json:"project"`
	Links    []string   `json:"links"`
	Assignee string     `json:"assignee"`
	Deadline *time.Time `json:"deadline"`
}

// TaskPatch updates only the fields present.
type TaskPatch struct {
	Title *string   `json:"title"`
	Notes *string   `json:"notes"`
	Links *[]string `json:"links"`
}

type TaskNotes struct {
	Notes string `json:"notes"`
}

type Assignee struct {
	Assignee string `json:"assignee"`
}

type DeadlineChange struct {
	Deadline time.Time `json:"deadline"`
}

type DependencyAdd struct {
	Independent string `json:"independent"`
}

type Message struct {
	Message string `json:"message"`
}
