package httpserver

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/and161185/taskhive/internal/concept"
	"github.com/and161185/taskhive/internal/convert"
	"github.com/and161185/taskhive/internal/errs"
	"github.com/and161185/taskhive/internal/model"
	"github.com/and161185/taskhive/internal/service"
)

// createProject POST /api/projects
func (s *Server) createProject(w http.ResponseWriter, r *http.Request, p service.Principal) {
	var req convert.ProjectName
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	proj, err := s.svc.Projects.Create(r.Context(), p.UserID, req.Name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, struct {
		Msg     string          `json:"msg"`
		Project convert.Project `json:"project"`
	}{service.MsgProjectCreated, convert.ToProject(*proj)})
}

// getProject GET /api/projects?id=|name=
func (s *Server) getProject(w http.ResponseWriter, r *http.Request, p service.Principal) {
	q := r.URL.Query()
	var (
		proj *model.Project
		err  error
	)
	switch {
	case q.Get("id") != "":
		id, perr := parseID("project", q.Get("id"))
		if perr != nil {
			s.writeError(w, r, perr)
			return
		}
		proj, err = s.svc.Projects.Get(r.Context(), p.UserID, id)
	case q.Get("name") != "":
		proj, err = s.svc.Projects.GetByName(r.Context(), p.UserID, q.Get("name"))
	default:
		err = errs.Invalidf("Did not specify project to fetch!")
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, convert.ToProject(*proj))
}

// myProjects GET /api/user/projects
func (s *Server) myProjects(w http.ResponseWriter, r *http.Request, p service.Principal) {
	projects, err := s.svc.Projects.ListMine(r.Context(), p.UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, convert.ToProjects(projects))
}

// deleteProject DELETE /api/projects/{id}
func (s *Server) deleteProject(w http.ResponseWriter, r *http.Request, p service.Principal) {
	id, err := pathID(r, "id", "project")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.svc.Projects.Delete(r.Context(), p.UserID, id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeMsg(w, http.StatusOK, service.MsgProjectDeleted)
}

// renameProject PATCH /api/projects/{id}/name
func (s *Server) renameProject(w http.ResponseWriter, r *http.Request, p service.Principal) {
	id, err := pathID(r, "id", "project")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req convert.ProjectName
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.svc.Projects.Rename(r.Context(), p.UserID, id, req.Name); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeMsg(w, http.StatusOK, service.MsgProjectRenamed)
}

// transferManager PATCH /api/projects/{id}/manager
func (s *Server) transferManager(w http.ResponseWriter, r *http.Request, p service.Principal) {
	id, err := pathID(r, "id", "project")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req convert.ManagerChange
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.svc.Projects.TransferManager(r.Context(), p.UserID, id, req.Manager); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeMsg(w, http.StatusOK, service.MsgManagerUpdated)
}

// members GET /api/projects/{id}/members
func (s *Server) members(w http.ResponseWriter, r *http.Request, p service.Principal) {
	id, err := pathID(r, "id", "project")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	names, err := s.svc.Projects.Members(r.Context(), p.UserID, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, names)
}

// addMember POST /api/projects/{id}/members
func (s *Server) addMember(w http.ResponseWriter, r *http.Request, p service.Principal) {
	id, err := pathID(r, "id", "project")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req convert.MemberAdd
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.svc.Projects.AddMember(r.Context(), p.UserID, id, req.Username); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeMsg(w, http.StatusOK, service.MsgMemberAdded)
}

// removeMember DELETE /api/projects/{id}/members/{username}
func (s *Server) removeMember(w http.ResponseWriter, r *http.Request, p service.Principal) {
	id, err := pathID(r, "id", "project")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.svc.Projects.RemoveMember(r.Context(), p.UserID, id, mux.Vars(r)["username"]); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeMsg(w, http.StatusOK, service.MsgMemberRemoved)
}

// projectTasks GET /api/projects/{id}/tasks
func (s *Server) projectTasks(w http.ResponseWriter, r *http.Request, p service.Principal) {
	id, err := pathID(r, "id", "project")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	views, err := s.svc.Tasks.ListForProject(r.Context(), p.UserID, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, convert.ToTaskViews(views))
}

// projectRewards GET /api/projects/{id}/rewards
func (s *Server) projectRewards(w http.ResponseWriter, r *http.Request, p service.Principal) {
	id, err := pathID(r, "id", "project")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rewards, err := s.svc.Rewards.ForProject(r.Context(), p.UserID, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, convert.ToRewards(rewards))
}

// notifyTeam POST /api/projects/{id}/notify-team
func (s *Server) notifyTeam(w http.ResponseWriter, r *http.Request, p service.Principal) {
	id, err := pathID(r, "id", "project")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req convert.Message
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	sent, err := s.svc.Notifications.NotifyTeam(r.Context(), p.UserID, id, req.Message)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, struct {
		Msg           string                 `json:"msg"`
		Notifications []convert.Notification `json:"notifications"`
	}{concept.MsgNotificationCreated, convert.ToNotifications(sent)})
}
