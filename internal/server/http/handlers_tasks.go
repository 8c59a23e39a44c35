package httpserver

import (
	"net/http"

	"github.com/and161185/taskhive/internal/concept"
	"github.com/and161185/taskhive/internal/convert"
	"github.com/and161185/taskhive/internal/service"
)

// createTask POST /api/tasks
func (s *Server) createTask(w http.ResponseWriter, r *http.Request, p service.Principal) {
	var req convert.NewTask
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	project, err := parseID("project", req.Project)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.svc.Tasks.Create(r.Context(), p.UserID, service.NewTaskInput{
		ProjectID: project,
		Title:     req.Title,
		Notes:     req.Notes,
		Links:     req.Links,
		Assignee:  req.Assignee,
		Deadline:  req.Deadline,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, convert.TaskCreated{
		Msg:      res.Msg,
		Task:     convert.ToTask(*res.Task),
		Deadline: convert.ToDeadline(res.Deadline),
	})
}

// myTasks GET /api/user/tasks
func (s *Server) myTasks(w http.ResponseWriter, r *http.Request, p service.Principal) {
	views, err := s.svc.Tasks.ListForUser(r.Context(), p.UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, convert.ToTaskViews(views))
}

// getTask GET /api/tasks/{id}
func (s *Server) getTask(w http.ResponseWriter, r *http.Request, p service.Principal) {
	id, err := pathID(r, "id", "task")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	t, err := s.svc.Tasks.Get(r.Context(), p.UserID, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, convert.ToTask(*t))
}

// updateTask PATCH /api/tasks/{id}
func (s *Server) updateTask(w http.ResponseWriter, r *http.Request, p service.Principal) {
	id, err := pathID(r, "id", "task")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req convert.TaskPatch
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	patch := service.TaskPatch{Title: req.Title, Notes: req.Notes, Links: req.Links}
	if err := s.svc.Tasks.Update(r.Context(), p.UserID, id, patch); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeMsg(w, http.StatusOK, service.MsgTaskUpdated)
}

// updateNotes PATCH /api/tasks/{id}/notes
func (s *Server) updateNotes(w http.ResponseWriter, r *http.Request, p service.Principal) {
	id, err := pathID(r, "id", "task")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req convert.TaskNotes
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.svc.Tasks.UpdateNotes(r.Context(), p.UserID, id, req.Notes); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeMsg(w, http.StatusOK, service.MsgTaskNotesUpdated)
}

// deleteTask DELETE /api/tasks/{id}
func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request, p service.Principal) {
	id, err := pathID(r, "id", "task")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.svc.Tasks.Delete(r.Context(), p.UserID, id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeMsg(w, http.StatusOK, service.MsgTaskDeleted)
}

// assign POST /api/tasks/{id}/assignee
func (s *Server) assign(w http.ResponseWriter, r *http.Request, p service.Principal) {
	id, err := pathID(r, "id", "task")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req convert.Assignee
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.svc.Tasks.Assign(r.Context(), p.UserID, id, req.Assignee); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeMsg(w, http.StatusOK, service.MsgTaskAssigneeUpdated)
}

// unassign DELETE /api/tasks/{id}/assignee
func (s *Server) unassign(w http.ResponseWriter, r *http.Request, p service.Principal) {
	id, err := pathID(r, "id", "task")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.svc.Tasks.Unassign(r.Context(), p.UserID, id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeMsg(w, http.StatusOK, service.MsgTaskUnassigned)
}

// complete POST /api/tasks/{id}/complete
func (s *Server) complete(w http.ResponseWriter, r *http.Request, p service.Principal) {
	id, err := pathID(r, "id", "task")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.svc.Tasks.Complete(r.Context(), p.UserID, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, convert.TaskCompleted{Msg: res.Msg, Reward: convert.ToReward(res.Reward)})
}

// incomplete POST /api/tasks/{id}/incomplete
func (s *Server) incomplete(w http.ResponseWriter, r *http.Request, p service.Principal) {
	id, err := pathID(r, "id", "task")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	msg, err := s.svc.Tasks.Incomplete(r.Context(), p.UserID, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeMsg(w, http.StatusOK, msg)
}

// canStart GET /api/tasks/{id}/start
func (s *Server) canStart(w http.ResponseWriter, r *http.Request, p service.Principal) {
	id, err := pathID(r, "id", "task")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ok, err := s.svc.Tasks.CanStart(r.Context(), p.UserID, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"can_start": ok})
}

// deadline GET /api/tasks/{id}/deadline
func (s *Server) deadline(w http.ResponseWriter, r *http.Request, p service.Principal) {
	id, err := pathID(r, "id", "task")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	v, err := s.svc.Tasks.Deadline(r.Context(), p.UserID, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, convert.ToDeadlineStatus(v))
}

// updateDeadline PATCH /api/tasks/{id}/deadline
func (s *Server) updateDeadline(w http.ResponseWriter, r *http.Request, p service.Principal) {
	id, err := pathID(r, "id", "task")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req convert.DeadlineChange
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.svc.Tasks.UpdateDeadline(r.Context(), p.UserID, id, req.Deadline); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeMsg(w, http.StatusOK, concept.MsgDeadlineUpdated)
}

// dependencies GET /api/tasks/{id}/dependencies
func (s *Server) dependencies(w http.ResponseWriter, r *http.Request, p service.Principal) {
	id, err := pathID(r, "id", "task")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	v, err := s.svc.Tasks.Dependencies(r.Context(), p.UserID, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, convert.ToDependencies(v))
}

// addDependency POST /api/tasks/{id}/dependencies makes {id} wait for the
// independent task in the body.
func (s *Server) addDependency(w http.ResponseWriter, r *http.Request, p service.Principal) {
	id, err := pathID(r, "id", "task")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req convert.DependencyAdd
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	independent, err := parseID("task", req.Independent)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.svc.Tasks.AddDependency(r.Context(), p.UserID, independent, id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeMsg(w, http.StatusCreated, concept.MsgDependencyCreated)
}

// removeDependency DELETE /api/tasks/{id}/dependencies/{independent}
func (s *Server) removeDependency(w http.ResponseWriter, r *http.Request, p service.Principal) {
	id, err := pathID(r, "id", "task")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	independent, err := pathID(r, "independent", "task")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.svc.Tasks.RemoveDependency(r.Context(), p.UserID, independent, id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeMsg(w, http.StatusOK, service.MsgDependencyRemoved)
}

// notifyAssignee POST /api/tasks/{id}/notify
func (s *Server) notifyAssignee(w http.ResponseWriter, r *http.Request, p service.Principal) {
	id, err := pathID(r, "id", "task")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req convert.Message
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	n, err := s.svc.Notifications.NotifyAssignee(r.Context(), p.UserID, id, req.Message)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, struct {
		Msg          string               `json:"msg"`
		Notification convert.Notification `json:"notification"`
	}{concept.MsgNotificationCreated, convert.ToNotification(*n)})
}
