package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"fintrack/internal/core"
)

const (
	sessionName   = "fintrack_session"
	sessionUserID = "user_id"

	minPasswordLen = 8
)

type credentials struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userView struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// requireAuth resolves the session user and passes it to the handler.
func (s *Server) requireAuth(next func(http.ResponseWriter, *http.Request, int64)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := s.sessionUser(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next(w, r, userID)
	}
}

func (s *Server) sessionUser(r *http.Request) (int64, bool) {
	sess, err := s.sessions.Get(r, sessionName)
	if err != nil {
		return 0, false
	}
	id, ok := sess.Values[sessionUserID].(int64)
	return id, ok && id > 0
}

func (s *Server) saveSession(w http.ResponseWriter, r *http.Request, userID int64) error {
	sess, _ := s.sessions.New(r, sessionName)
	sess.Values[sessionUserID] = userID
	return sess.Save(r, w)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req credentials
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	name := core.SanitizeText(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	switch {
	case name == "":
		writeError(w, http.StatusUnprocessableEntity, "name is required")
		return
	case !strings.Contains(email, "@"):
		writeError(w, http.StatusUnprocessableEntity, "invalid email address")
		return
	case len(req.Password) < minPasswordLen:
		writeError(w, http.StatusUnprocessableEntity, "password must be at least 8 characters")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		slog.ErrorContext(r.Context(), "Password hashing failed", "error", err)
		writeError(w, http.StatusInternalServerError, "registration failed")
		return
	}

	user, err := s.store.CreateUser(r.Context(), email, name, string(hash))
	if errors.Is(err, core.ErrDuplicateEmail) {
		writeError(w, http.StatusConflict, "email already registered")
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "User creation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "registration failed")
		return
	}

	if err := s.saveSession(w, r, user.ID); err != nil {
		slog.ErrorContext(r.Context(), "Session save failed", "error", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "registration failed")
		return
	}

	writeJSON(w, http.StatusCreated, userView{ID: user.ID, Name: user.Name, Email: user.Email})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req credentials
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := s.store.UserByEmail(r.Context(), email)
	if errors.Is(err, core.ErrNotFound) {
		// Same response as a wrong password, no account probing.
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "User lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if err := s.saveSession(w, r, user.ID); err != nil {
		slog.ErrorContext(r.Context(), "Session save failed", "error", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}

	slog.InfoContext(r.Context(), "User logged in", "user_id", user.ID)
	writeJSON(w, http.StatusOK, userView{ID: user.ID, Name: user.Name, Email: user.Email})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	sess, err := s.sessions.Get(r, sessionName)
	if err == nil {
		sess.Options.MaxAge = -1
		_ = sess.Save(r, w)
	}
	w.WriteHeader(http.StatusNoContent)
}
