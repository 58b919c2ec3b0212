package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"fintrack/internal/core"
)

type limitRequest struct {
	LimitID  int64       `json:"limitId,omitempty"`
	Category string      `json:"category"`
	Limit    json.Number `json:"limit"`
}

type limitView struct {
	ID       int64   `json:"id"`
	Category string  `json:"category"`
	Limit    float64 `json:"limit"`
}

func viewLimit(l core.CategoryLimit) limitView {
	return limitView{ID: l.ID, Category: l.Category, Limit: l.Limit.Amount()}
}

func (s *Server) handleLimits(w http.ResponseWriter, r *http.Request, userID int64) {
	switch r.Method {
	case http.MethodGet:
		s.listLimits(w, r, userID)
	case http.MethodPost:
		s.saveLimit(w, r, userID)
	default:
		w.Header().Set("Allow", "GET, POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) listLimits(w http.ResponseWriter, r *http.Request, userID int64) {
	limits, err := s.store.ListCategoryLimits(r.Context(), userID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Limit list failed", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "could not list limits")
		return
	}
	out := make([]limitView, 0, len(limits))
	for _, l := range limits {
		out = append(out, viewLimit(l))
	}
	writeJSON(w, http.StatusOK, out)
}

// saveLimit creates or replaces a limit. With limitId it updates that
// row in place; without it the limit is upserted on the normalized
// category, replacing any existing amount for the same key.
func (s *Server) saveLimit(w http.ResponseWriter, r *http.Request, userID int64) {
	var req limitRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cents, err := parseAmount(req.Limit)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid limit amount")
		return
	}

	l := core.CategoryLimit{
		ID:                 req.LimitID,
		UserID:             userID,
		Category:           core.SanitizeText(req.Category),
		NormalizedCategory: core.NormalizeCategory(req.Category),
		Limit:              core.Money{Cents: cents},
	}
	if err := l.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if l.ID > 0 {
		err = s.store.UpdateCategoryLimit(r.Context(), l)
		switch {
		case errors.Is(err, core.ErrNotFound):
			writeError(w, http.StatusNotFound, "limit not found")
			return
		case errors.Is(err, core.ErrDuplicateLimit):
			writeError(w, http.StatusConflict, err.Error())
			return
		case err != nil:
			slog.ErrorContext(r.Context(), "Limit update failed", "error", err, "user_id", userID, "limit_id", l.ID)
			writeError(w, http.StatusInternalServerError, "could not save limit")
			return
		}
		writeJSON(w, http.StatusOK, viewLimit(l))
		return
	}

	if err := s.store.UpsertCategoryLimit(r.Context(), l); err != nil {
		slog.ErrorContext(r.Context(), "Limit upsert failed", "error", err, "user_id", userID, "category", l.Category)
		writeError(w, http.StatusInternalServerError, "could not save limit")
		return
	}

	// The upsert does not report the row id, so re-read by key.
	limits, err := s.store.ListCategoryLimits(r.Context(), userID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Limit list failed", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "could not save limit")
		return
	}
	for _, stored := range limits {
		if stored.NormalizedCategory == l.NormalizedCategory {
			writeJSON(w, http.StatusOK, viewLimit(stored))
			return
		}
	}
	writeJSON(w, http.StatusOK, viewLimit(l))
}

func (s *Server) handleLimitByID(w http.ResponseWriter, r *http.Request, userID int64) {
	id, ok := pathID(r.URL.Path, "/limits/")
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if r.Method != http.MethodDelete {
		w.Header().Set("Allow", "DELETE")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	err := s.store.DeleteCategoryLimit(r.Context(), userID, id)
	if errors.Is(err, core.ErrNotFound) {
		writeError(w, http.StatusNotFound, "limit not found")
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Limit delete failed", "error", err, "user_id", userID, "limit_id", id)
		writeError(w, http.StatusInternalServerError, "could not delete limit")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
