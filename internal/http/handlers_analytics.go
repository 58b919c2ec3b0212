package http

import (
	"log/slog"
	"net/http"
)

// handleDashboard serves the analytics snapshot for a trailing month
// window. An absent or unusable months parameter falls back to the
// configured default.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request, userID int64) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	months := queryInt(r, "months", s.defaultMonths)
	if months <= 0 {
		months = s.defaultMonths
	}

	snap, err := s.analytics.Build(r.Context(), userID, months)
	if err != nil {
		slog.ErrorContext(r.Context(), "Analytics build failed", "error", err, "user_id", userID, "months", months)
		writeError(w, http.StatusInternalServerError, "could not build analytics")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}
