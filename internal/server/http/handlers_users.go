package httpserver

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/and161185/taskhive/internal/convert"
	"github.com/and161185/taskhive/internal/errs"
	"github.com/and161185/taskhive/internal/service"
)

// register POST /api/users. A caller with a live session is turned away.
func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	if tok, ok := bearerToken(r); ok {
		if _, err := s.svc.Auth.Authenticate(r.Context(), tok); err == nil {
			s.writeError(w, r, errs.NotAllowedf("You are already logged in!"))
			return
		}
	}
	var req convert.Credentials
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	u, err := s.svc.Auth.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, struct {
		Msg  string       `json:"msg"`
		User convert.User `json:"user"`
	}{"User created successfully!", convert.ToUser(*u)})
}

// login POST /api/login
func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req convert.Credentials
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	tok, _, err := s.svc.Auth.Login(r.Context(), req.Username, req.Password, remoteIP(r))
	if err != nil {
		if errors.Is(err, errs.ErrRateLimited) {
			err = &errs.Error{Kind: errs.ErrRateLimited, Msg: "Too many failed attempts, try again later."}
		}
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, convert.Login{Msg: "Logged in!", Token: tok.AccessToken, ExpiresAt: tok.ExpiresAt.UTC()})
}

// logout POST /api/logout
func (s *Server) logout(w http.ResponseWriter, r *http.Request, p service.Principal) {
	if err := s.svc.Auth.Logout(r.Context(), p); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeMsg(w, http.StatusOK, "Logged out!")
}

// session GET /api/session
func (s *Server) session(w http.ResponseWriter, r *http.Request, p service.Principal) {
	u, err := s.svc.Auth.Me(r.Context(), p)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, convert.ToUser(*u))
}

// listUsers GET /api/users
func (s *Server) listUsers(w http.ResponseWriter, r *http.Request, _ service.Principal) {
	users, err := s.svc.Auth.ListUsers(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, convert.ToUsers(users))
}

// userByUsername GET /api/users/{username}
func (s *Server) userByUsername(w http.ResponseWriter, r *http.Request, _ service.Principal) {
	u, err := s.svc.Auth.UserByUsername(r.Context(), mux.Vars(r)["username"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, convert.ToUser(*u))
}

// usernameByID GET /api/users/id/{id}/username
func (s *Server) usernameByID(w http.ResponseWriter, r *http.Request, _ service.Principal) {
	id, err := pathID(r, "id", "user")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	name, err := s.svc.Auth.UsernameByID(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, convert.UsernameChange{Username: name})
}

// updateUsername PATCH /api/users/username
func (s *Server) updateUsername(w http.ResponseWriter, r *http.Request, p service.Principal) {
	var req convert.UsernameChange
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.svc.Auth.UpdateUsername(r.Context(), p, req.Username); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeMsg(w, http.StatusOK, "Username updated successfully!")
}

// updatePassword PATCH /api/users/password
func (s *Server) updatePassword(w http.ResponseWriter, r *http.Request, p service.Principal) {
	var req convert.PasswordChange
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.svc.Auth.UpdatePassword(r.Context(), p, req.CurrentPassword, req.NewPassword); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeMsg(w, http.StatusOK, "Password updated successfully!")
}

// deleteAccount DELETE /api/users
func (s *Server) deleteAccount(w http.ResponseWriter, r *http.Request, p service.Principal) {
	if err := s.svc.Auth.DeleteAccount(r.Context(), p); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeMsg(w, http.StatusOK, "User deleted!")
}
