package httpapi

import (
	"net/http"

	"barsandbios/internal/app/users"
	"barsandbios/internal/store"
)

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	if _, err := requireIdentity(r); err != nil {
		s.writeError(w, r, err)
		return
	}
	f, req, err := listParams(r, store.UserSpec)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	page, err := s.users.List(r.Context(), f, req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writePage(w, page)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	if _, err := requireIdentity(r); err != nil {
		s.writeError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	user, err := s.users.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, user)
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var patch users.ProfilePatch
	if err := decode(w, r, &patch); err != nil {
		s.writeError(w, r, err)
		return
	}
	user, err := s.users.UpdateProfile(r.Context(), identity(r), id, patch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, user)
}

func (s *Server) handleUpdateUserRole(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var body struct {
		Role string `json:"role"`
	}
	if err := decode(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	user, err := s.users.UpdateRole(r.Context(), identity(r), id, body.Role)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, user)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.users.Delete(r.Context(), identity(r), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeMessage(w, "User deleted successfully")
}
