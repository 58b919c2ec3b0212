package http

import (
	"bytes"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"fintrack/internal/report"
)

func reportOptions(r *http.Request) report.Options {
	q := r.URL.Query()
	return report.Options{
		StartDate: q.Get("startDate"),
		EndDate:   q.Get("endDate"),
		Category:  q.Get("category"),
	}
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request, userID int64) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	snap, err := s.reports.Build(r.Context(), userID, reportOptions(r))
	if err != nil {
		slog.ErrorContext(r.Context(), "Report build failed", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "could not build report")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// handleReportExport streams the report as a CSV or PDF attachment.
// Unknown formats fall back to PDF.
func (s *Server) handleReportExport(w http.ResponseWriter, r *http.Request, userID int64) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))
	snap, err := s.reports.Build(r.Context(), userID, reportOptions(r))
	if err != nil {
		slog.ErrorContext(r.Context(), "Report build failed", "error", err, "user_id", userID, "format", format)
		writeError(w, http.StatusInternalServerError, "could not build report")
		return
	}

	if format == "csv" {
		body := report.BuildCSV(snap)
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="expense-report.csv"`)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(body))
		return
	}

	// Render to a buffer first so a failure can still become a 500.
	var buf bytes.Buffer
	if err := report.RenderPDF(&buf, snap, time.Now()); err != nil {
		slog.ErrorContext(r.Context(), "PDF rendering failed", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "could not render report")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="expense-report.pdf"`)
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
