// Package storage implements the SQLite-backed repository for users,
// transactions and category limits, including the grouped-sum queries
// the analytics and report builders consume.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fintrack/internal/core"

	_ "modernc.org/sqlite"
)

// dateLayout is the canonical text form for transaction dates. Dates are
// stored in UTC so lexicographic comparison and strftime bucketing agree
// with time ordering.
const dateLayout = "2006-01-02 15:04:05"

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func formatDate(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

func parseStoredDate(s string) (time.Time, error) {
	return time.ParseInLocation(dateLayout, s, time.UTC)
}

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint
// failure. The pure-Go driver exposes no typed error for this.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// === Users ===

func (r *SQLiteRepository) CreateUser(ctx context.Context, email, name, passwordHash string) (core.User, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (email, name, password_hash) VALUES (?, ?, ?)`,
		email, name, passwordHash)
	if err != nil {
		if isUniqueViolation(err) {
			return core.User{}, core.ErrDuplicateEmail
		}
		return core.User{}, fmt.Errorf("create user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.User{}, fmt.Errorf("create user id: %w", err)
	}

	slog.InfoContext(ctx, "User created", "user_id", id)
	return core.User{ID: id, Email: email, Name: name, PasswordHash: passwordHash}, nil
}

func (r *SQLiteRepository) UserByEmail(ctx context.Context, email string) (core.User, error) {
	var u core.User
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, name, password_hash FROM users WHERE email = ?`, email).
		Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, core.ErrNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("find user by email: %w", err)
	}
	return u, nil
}

func (r *SQLiteRepository) UserByID(ctx context.Context, id int64) (core.User, error) {
	var u core.User
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, name, password_hash FROM users WHERE id = ?`, id).
		Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, core.ErrNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("find user by id: %w", err)
	}
	return u, nil
}

// === Transactions ===

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (user_id, amount_cents, date, type, category, description)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		t.UserID, t.Amount.Cents, formatDate(t.Date), string(t.Type), t.Category, t.Description)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction id: %w", err)
	}
	t.ID = id

	slog.InfoContext(ctx, "Transaction saved",
		"transaction_id", t.ID,
		"user_id", t.UserID,
		"transaction_type", string(t.Type),
		"category", t.Category,
		"amount_cents", t.Amount.Cents)

	return t, nil
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions
		 SET amount_cents = ?, date = ?, type = ?, category = ?, description = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND user_id = ?`,
		t.Amount.Cents, formatDate(t.Date), string(t.Type), t.Category, t.Description, t.ID, t.UserID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update transaction rows: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete transaction rows: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// DeleteAllTransactions removes every transaction for a user and returns
// the number deleted. Callers gate this behind a password re-check.
func (r *SQLiteRepository) DeleteAllTransactions(ctx context.Context, userID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE user_id = ?`, userID)
	if err != nil {
		return 0, fmt.Errorf("delete all transactions: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete all transactions rows: %w", err)
	}

	slog.InfoContext(ctx, "All transactions deleted", "user_id", userID, "deleted", n)
	return n, nil
}

// filterClause renders the WHERE conditions for a TransactionFilter.
// Category matching is case-insensitive and anchored.
func filterClause(f core.TransactionFilter) (string, []any) {
	conds := []string{"user_id = ?"}
	args := []any{f.UserID}

	if !f.Start.IsZero() {
		conds = append(conds, "date >= ?")
		args = append(args, formatDate(f.Start))
	}
	if !f.End.IsZero() {
		conds = append(conds, "date <= ?")
		args = append(args, formatDate(f.End))
	}
	if f.Category != "" {
		conds = append(conds, "LOWER(category) = LOWER(?)")
		args = append(args, f.Category)
	}

	return strings.Join(conds, " AND "), args
}

// ListTransactions returns the transactions matching the filter, newest
// first.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, f core.TransactionFilter) ([]core.Transaction, error) {
	where, args := filterClause(f)
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, amount_cents, date, type, category, description
		 FROM transactions WHERE `+where+` ORDER BY date DESC, id DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// ListTransactionsPage returns one page of a user's transactions, newest
// first, for the dashboard listing.
func (r *SQLiteRepository) ListTransactionsPage(ctx context.Context, userID int64, limit, offset int) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, amount_cents, date, type, category, description
		 FROM transactions WHERE user_id = ? ORDER BY date DESC, id DESC LIMIT ? OFFSET ?`,
		userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list transactions page: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

func (r *SQLiteRepository) CountTransactions(ctx context.Context, userID int64) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE user_id = ?`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return n, nil
}

func scanTransactions(rows *sql.Rows) ([]core.Transaction, error) {
	var out []core.Transaction
	for rows.Next() {
		var (
			t       core.Transaction
			dateStr string
			typStr  string
		)
		if err := rows.Scan(&t.ID, &t.UserID, &t.Amount.Cents, &dateStr, &typStr, &t.Category, &t.Description); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		date, err := parseStoredDate(dateStr)
		if err != nil {
			return nil, fmt.Errorf("parse transaction date: %w", err)
		}
		t.Date = date
		t.Type = core.TransactionType(typStr)
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}
