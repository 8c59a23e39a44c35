package httpserver

import (
	"net/http"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/taskhive/internal/concept"
	"github.com/and161185/taskhive/internal/convert"
	"github.com/and161185/taskhive/internal/service"
)

// optionalID parses query parameter key; absent means no filter.
func optionalID(r *http.Request, key string) (*uuid.UUID, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, nil
	}
	id, err := parseID(key, raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// myRewards GET /api/rewards?project=&task=
func (s *Server) myRewards(w http.ResponseWriter, r *http.Request, p service.Principal) {
	project, err := optionalID(r, "project")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	task, err := optionalID(r, "task")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rewards, err := s.svc.Rewards.Mine(r.Context(), p.UserID, project, task)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, convert.ToRewards(rewards))
}

// myNotifications GET /api/notifications
func (s *Server) myNotifications(w http.ResponseWriter, r *http.Request, p service.Principal) {
	list, err := s.svc.Notifications.Mine(r.Context(), p.UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, convert.ToNotifications(list))
}

// dismissNotification DELETE /api/notifications/{id}
func (s *Server) dismissNotification(w http.ResponseWriter, r *http.Request, p service.Principal) {
	id, err := pathID(r, "id", "notification")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.svc.Notifications.Dismiss(r.Context(), p.UserID, id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeMsg(w, http.StatusOK, concept.MsgNotificationDeleted)
}
