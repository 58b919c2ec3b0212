package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"fintrack/internal/core"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type transactionRequest struct {
	Amount      json.Number `json:"amount"`
	Date        string      `json:"date"`
	Type        string      `json:"type"`
	Category    string      `json:"category"`
	Description string      `json:"description"`
}

type transactionView struct {
	ID          int64   `json:"id"`
	Amount      float64 `json:"amount"`
	Date        string  `json:"date"`
	Type        string  `json:"type"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
}

type transactionPage struct {
	Transactions []transactionView `json:"transactions"`
	Total        int64             `json:"total"`
	Page         int               `json:"page"`
	PageSize     int               `json:"pageSize"`
}

func viewTransaction(t core.Transaction) transactionView {
	return transactionView{
		ID:          t.ID,
		Amount:      t.Amount.Amount(),
		Date:        t.Date.Format(isoDateLayout),
		Type:        string(t.Type),
		Category:    t.Category,
		Description: t.Description,
	}
}

// parseTransaction turns a request payload into a validated domain
// transaction for the given owner.
func parseTransaction(req transactionRequest, userID int64) (core.Transaction, string) {
	cents, err := parseAmount(req.Amount)
	if err != nil {
		return core.Transaction{}, "invalid amount"
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return core.Transaction{}, "invalid date, expected YYYY-MM-DD"
	}

	t := core.Transaction{
		UserID:      userID,
		Amount:      core.Money{Cents: cents},
		Date:        date,
		Type:        core.TransactionType(req.Type),
		Category:    core.SanitizeText(req.Category),
		Description: core.SanitizeText(req.Description),
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err.Error()
	}
	return t, ""
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request, userID int64) {
	switch r.Method {
	case http.MethodGet:
		s.listTransactions(w, r, userID)
	case http.MethodPost:
		s.createTransaction(w, r, userID)
	default:
		w.Header().Set("Allow", "GET, POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request, userID int64) {
	page := queryInt(r, "page", 1)
	if page < 1 {
		page = 1
	}
	pageSize := queryInt(r, "pageSize", defaultPageSize)
	if pageSize < 1 || pageSize > maxPageSize {
		pageSize = defaultPageSize
	}

	items, err := s.store.ListTransactionsPage(r.Context(), userID, pageSize, (page-1)*pageSize)
	if err != nil {
		slog.ErrorContext(r.Context(), "Transaction list failed", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "could not list transactions")
		return
	}
	total, err := s.store.CountTransactions(r.Context(), userID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Transaction count failed", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "could not list transactions")
		return
	}

	out := transactionPage{
		Transactions: make([]transactionView, 0, len(items)),
		Total:        total,
		Page:         page,
		PageSize:     pageSize,
	}
	for _, t := range items {
		out.Transactions = append(out.Transactions, viewTransaction(t))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createTransaction(w http.ResponseWriter, r *http.Request, userID int64) {
	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	t, msg := parseTransaction(req, userID)
	if msg != "" {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	created, err := s.store.CreateTransaction(r.Context(), t)
	if err != nil {
		slog.ErrorContext(r.Context(), "Transaction create failed", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "could not save transaction")
		return
	}
	writeJSON(w, http.StatusCreated, viewTransaction(created))
}

func (s *Server) handleTransactionByID(w http.ResponseWriter, r *http.Request, userID int64) {
	id, ok := pathID(r.URL.Path, "/transactions/")
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	switch r.Method {
	case http.MethodPut, http.MethodPost:
		s.updateTransaction(w, r, userID, id)
	case http.MethodDelete:
		s.deleteTransaction(w, r, userID, id)
	default:
		w.Header().Set("Allow", "PUT, POST, DELETE")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) updateTransaction(w http.ResponseWriter, r *http.Request, userID, id int64) {
	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	t, msg := parseTransaction(req, userID)
	if msg != "" {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}
	t.ID = id

	err := s.store.UpdateTransaction(r.Context(), t)
	if errors.Is(err, core.ErrNotFound) {
		writeError(w, http.StatusNotFound, "transaction not found")
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Transaction update failed", "error", err, "user_id", userID, "transaction_id", id)
		writeError(w, http.StatusInternalServerError, "could not update transaction")
		return
	}
	writeJSON(w, http.StatusOK, viewTransaction(t))
}

func (s *Server) deleteTransaction(w http.ResponseWriter, r *http.Request, userID, id int64) {
	err := s.store.DeleteTransaction(r.Context(), userID, id)
	if errors.Is(err, core.ErrNotFound) {
		writeError(w, http.StatusNotFound, "transaction not found")
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Transaction delete failed", "error", err, "user_id", userID, "transaction_id", id)
		writeError(w, http.StatusInternalServerError, "could not delete transaction")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleDeleteAllTransactions wipes a user's history. The current
// password must be re-supplied; a session cookie alone is not enough.
func (s *Server) handleDeleteAllTransactions(w http.ResponseWriter, r *http.Request, userID int64) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req struct {
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := s.store.UserByID(r.Context(), userID)
	if err != nil {
		slog.ErrorContext(r.Context(), "User lookup failed", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "could not delete transactions")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		writeError(w, http.StatusForbidden, "password confirmation failed")
		return
	}

	deleted, err := s.store.DeleteAllTransactions(r.Context(), userID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Delete all transactions failed", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "could not delete transactions")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": deleted})
}
