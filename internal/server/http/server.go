// Package httpserver exposes the services as a JSON HTTP API.
package httpserver

import (
	"net/http"

	"github.com/gofrs/uuid/v5"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/and161185/taskhive/internal/errs"
	"github.com/and161185/taskhive/internal/service"
)

// Server routes HTTP requests to the services.
type Server struct {
	svc *service.Services
	log *zap.Logger
}

// New constructs Server.
func New(svc *service.Services, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{svc: svc, log: log}
}

// Handler returns the routed handler wrapped in recovery and request logging.
func (s *Server) Handler() http.Handler {
	root := mux.NewRouter()
	root.Use(Recover(s.log), Logging(s.log))
	api := root.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", s.health).Methods(http.MethodGet)

	api.HandleFunc("/users", s.register).Methods(http.MethodPost)
	api.HandleFunc("/login", s.login).Methods(http.MethodPost)
	api.HandleFunc("/logout", s.authed(s.logout)).Methods(http.MethodPost)
	api.HandleFunc("/session", s.authed(s.session)).Methods(http.MethodGet)
	api.HandleFunc("/users", s.authed(s.listUsers)).Methods(http.MethodGet)
	api.HandleFunc("/users", s.authed(s.deleteAccount)).Methods(http.MethodDelete)
	api.HandleFunc("/users/username", s.authed(s.updateUsername)).Methods(http.MethodPatch)
	api.HandleFunc("/users/password", s.authed(s.updatePassword)).Methods(http.MethodPatch)
	api.HandleFunc("/users/id/{id}/username", s.authed(s.usernameByID)).Methods(http.MethodGet)
	api.HandleFunc("/users/{username}", s.authed(s.userByUsername)).Methods(http.MethodGet)

	api.HandleFunc("/projects", s.authed(s.createProject)).Methods(http.MethodPost)
	api.HandleFunc("/projects", s.authed(s.getProject)).Methods(http.MethodGet)
	api.HandleFunc("/user/projects", s.authed(s.myProjects)).Methods(http.MethodGet)
	api.HandleFunc("/projects/{id}", s.authed(s.deleteProject)).Methods(http.MethodDelete)
	api.HandleFunc("/projects/{id}/name", s.authed(s.renameProject)).Methods(http.MethodPatch)
	api.HandleFunc("/projects/{id}/manager", s.authed(s.transferManager)).Methods(http.MethodPatch)
	api.HandleFunc("/projects/{id}/members", s.authed(s.members)).Methods(http.MethodGet)
	api.HandleFunc("/projects/{id}/members", s.authed(s.addMember)).Methods(http.MethodPost)
	api.HandleFunc("/projects/{id}/members/{username}", s.authed(s.removeMember)).Methods(http.MethodDelete)
	api.HandleFunc("/projects/{id}/tasks", s.authed(s.projectTasks)).Methods(http.MethodGet)
	api.HandleFunc("/projects/{id}/rewards", s.authed(s.projectRewards)).Methods(http.MethodGet)
	api.HandleFunc("/projects/{id}/notify-team", s.authed(s.notifyTeam)).Methods(http.MethodPost)

	api.HandleFunc("/tasks", s.authed(s.createTask)).Methods(http.MethodPost)
	api.HandleFunc("/user/tasks", s.authed(s.myTasks)).Methods(http.MethodGet)
	api.HandleFunc("/tasks/{id}", s.authed(s.getTask)).Methods(http.MethodGet)
	api.HandleFunc("/tasks/{id}", s.authed(s.updateTask)).Methods(http.MethodPatch)
	api.HandleFunc("/tasks/{id}", s.authed(s.deleteTask)).Methods(http.MethodDelete)
	api.HandleFunc("/tasks/{id}/notes", s.authed(s.updateNotes)).Methods(http.MethodPatch)
	api.HandleFunc("/tasks/{id}/assignee", s.authed(s.assign)).Methods(http.MethodPost)
	api.HandleFunc("/tasks/{id}/assignee", s.authed(s.unassign)).Methods(http.MethodDelete)
	api.HandleFunc("/tasks/{id}/complete", s.authed(s.complete)).Methods(http.MethodPost)
	api.HandleFunc("/tasks/{id}/incomplete", s.authed(s.incomplete)).Methods(http.MethodPost)
	api.HandleFunc("/tasks/{id}/start", s.authed(s.canStart)).Methods(http.MethodGet)
	api.HandleFunc("/tasks/{id}/deadline", s.authed(s.deadline)).Methods(http.MethodGet)
	api.HandleFunc("/tasks/{id}/deadline", s.authed(s.updateDeadline)).Methods(http.MethodPatch)
	api.HandleFunc("/tasks/{id}/dependencies", s.authed(s.dependencies)).Methods(http.MethodGet)
	api.HandleFunc("/tasks/{id}/dependencies", s.authed(s.addDependency)).Methods(http.MethodPost)
	api.HandleFunc("/tasks/{id}/dependencies/{independent}", s.authed(s.removeDependency)).Methods(http.MethodDelete)
	api.HandleFunc("/tasks/{id}/notify", s.authed(s.notifyAssignee)).Methods(http.MethodPost)

	api.HandleFunc("/rewards", s.authed(s.myRewards)).Methods(http.MethodGet)
	api.HandleFunc("/notifications", s.authed(s.myNotifications)).Methods(http.MethodGet)
	api.HandleFunc("/notifications/{id}", s.authed(s.dismissNotification)).Methods(http.MethodDelete)

	root.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.writeMsg(w, http.StatusNotFound, "no such route")
	})
	root.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.writeMsg(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	return root
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// parseID parses a uuid taken from the path, query or body.
func parseID(what, raw string) (uuid.UUID, error) {
	id, err := uuid.FromString(raw)
	if err != nil {
		return uuid.Nil, errs.Invalidf("Invalid %s id %q", what, raw)
	}
	return id, nil
}

func pathID(r *http.Request, key, what string) (uuid.UUID, error) {
	return parseID(what, mux.Vars(r)[key])
}
