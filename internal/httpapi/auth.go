package httpapi

import (
	"net/http"
	"strings"

	"barsandbios/internal/app/users"
)

// loginRequest accepts the identifier under any of the names clients use.
type loginRequest struct {
	Login    string `json:"login"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

func (l loginRequest) identifier() string {
	for _, v := range []string{l.Login, l.Email, l.Username} {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in users.RegisterInput
	if err := decode(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.users.Register(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, res)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.users.Login(r.Context(), users.LoginInput{Login: req.identifier(), Password: req.Password})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, res)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	caller, err := requireIdentity(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	user, err := s.users.Get(r.Context(), caller.UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, user)
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var in users.PasswordChange
	if err := decode(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.users.ChangePassword(r.Context(), identity(r), in); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeMessage(w, "Password updated successfully")
}
