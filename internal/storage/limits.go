package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"fintrack/internal/core"
)

// ListCategoryLimits returns a user's limits sorted by category name.
func (r *SQLiteRepository) ListCategoryLimits(ctx context.Context, userID int64) ([]core.CategoryLimit, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, category, normalized_category, limit_cents
		 FROM category_limits WHERE user_id = ?
		 ORDER BY category COLLATE NOCASE ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list category limits: %w", err)
	}
	defer rows.Close()

	var out []core.CategoryLimit
	for rows.Next() {
		var l core.CategoryLimit
		if err := rows.Scan(&l.ID, &l.UserID, &l.Category, &l.NormalizedCategory, &l.Limit.Cents); err != nil {
			return nil, fmt.Errorf("scan category limit: %w", err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category limits: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) GetCategoryLimit(ctx context.Context, userID, id int64) (core.CategoryLimit, error) {
	var l core.CategoryLimit
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, category, normalized_category, limit_cents
		 FROM category_limits WHERE id = ? AND user_id = ?`, id, userID).
		Scan(&l.ID, &l.UserID, &l.Category, &l.NormalizedCategory, &l.Limit.Cents)
	if errors.Is(err, sql.ErrNoRows) {
		return core.CategoryLimit{}, core.ErrNotFound
	}
	if err != nil {
		return core.CategoryLimit{}, fmt.Errorf("get category limit: %w", err)
	}
	return l, nil
}

// UpdateCategoryLimit rewrites a limit by id, scoped to its owner.
// Renaming onto a category that already has a limit violates the unique
// index and surfaces as ErrDuplicateLimit.
func (r *SQLiteRepository) UpdateCategoryLimit(ctx context.Context, l core.CategoryLimit) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE category_limits
		 SET category = ?, normalized_category = ?, limit_cents = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND user_id = ?`,
		l.Category, l.NormalizedCategory, l.Limit.Cents, l.ID, l.UserID)
	if err != nil {
		if isUniqueViolation(err) {
			return core.ErrDuplicateLimit
		}
		return fmt.Errorf("update category limit: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update category limit rows: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// UpsertCategoryLimit creates or replaces the limit keyed by
// (user, normalized category). Last write wins; no merging.
func (r *SQLiteRepository) UpsertCategoryLimit(ctx context.Context, l core.CategoryLimit) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO category_limits (user_id, category, normalized_category, limit_cents)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(user_id, normalized_category) DO UPDATE SET
		   category = excluded.category,
		   limit_cents = excluded.limit_cents,
		   updated_at = CURRENT_TIMESTAMP`,
		l.UserID, l.Category, l.NormalizedCategory, l.Limit.Cents)
	if err != nil {
		return fmt.Errorf("upsert category limit: %w", err)
	}

	slog.InfoContext(ctx, "Category limit upserted",
		"user_id", l.UserID,
		"category", l.Category,
		"amount_cents", l.Limit.Cents)
	return nil
}

func (r *SQLiteRepository) DeleteCategoryLimit(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM category_limits WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete category limit: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete category limit rows: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}
