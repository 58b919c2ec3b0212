package storage

import (
	"context"
	"fmt"

	"fintrack/internal/core"
)

// Aggregation query layer. Each query sums amount_cents over one group
// key combination; sort orders here are part of the contract with the
// analytics and report builders.

// SumByType returns the total amount per transaction type for a user.
// At most two rows come back; absent types are simply missing.
func (r *SQLiteRepository) SumByType(ctx context.Context, userID int64) ([]core.TypeTotal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT type, SUM(amount_cents) FROM transactions
		 WHERE user_id = ? GROUP BY type`, userID)
	if err != nil {
		return nil, fmt.Errorf("sum by type: %w", err)
	}
	defer rows.Close()

	var out []core.TypeTotal
	for rows.Next() {
		var (
			typ   string
			total int64
		)
		if err := rows.Scan(&typ, &total); err != nil {
			return nil, fmt.Errorf("scan type total: %w", err)
		}
		out = append(out, core.TypeTotal{Type: core.TransactionType(typ), TotalCents: total})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate type totals: %w", err)
	}
	return out, nil
}

// SumByCategory returns per-category totals within one type, sorted
// descending by total. Tie order is whatever SQLite yields.
func (r *SQLiteRepository) SumByCategory(ctx context.Context, userID int64, typ core.TransactionType) ([]core.CategoryTotal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT category, SUM(amount_cents) AS total FROM transactions
		 WHERE user_id = ? AND type = ? GROUP BY category ORDER BY total DESC`,
		userID, string(typ))
	if err != nil {
		return nil, fmt.Errorf("sum by category: %w", err)
	}
	defer rows.Close()

	var out []core.CategoryTotal
	for rows.Next() {
		var ct core.CategoryTotal
		if err := rows.Scan(&ct.Category, &ct.TotalCents); err != nil {
			return nil, fmt.Errorf("scan category total: %w", err)
		}
		out = append(out, ct)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category totals: %w", err)
	}
	return out, nil
}

// SumByMonth returns (year, month, type) totals for transactions
// matching the filter, ascending by year then month.
func (r *SQLiteRepository) SumByMonth(ctx context.Context, f core.TransactionFilter) ([]core.MonthTypeTotal, error) {
	where, args := filterClause(f)
	rows, err := r.db.QueryContext(ctx,
		`SELECT CAST(strftime('%Y', date) AS INTEGER) AS y,
		        CAST(strftime('%m', date) AS INTEGER) AS m,
		        type, SUM(amount_cents)
		 FROM transactions WHERE `+where+`
		 GROUP BY y, m, type ORDER BY y ASC, m ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("sum by month: %w", err)
	}
	defer rows.Close()

	var out []core.MonthTypeTotal
	for rows.Next() {
		var (
			mt  core.MonthTypeTotal
			typ string
		)
		if err := rows.Scan(&mt.Year, &mt.Month, &typ, &mt.TotalCents); err != nil {
			return nil, fmt.Errorf("scan month total: %w", err)
		}
		mt.Type = core.TransactionType(typ)
		out = append(out, mt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate month totals: %w", err)
	}
	return out, nil
}

// SumByYear returns (year, type) totals for transactions matching the
// filter, ascending by year.
func (r *SQLiteRepository) SumByYear(ctx context.Context, f core.TransactionFilter) ([]core.YearTypeTotal, error) {
	where, args := filterClause(f)
	rows, err := r.db.QueryContext(ctx,
		`SELECT CAST(strftime('%Y', date) AS INTEGER) AS y,
		        type, SUM(amount_cents)
		 FROM transactions WHERE `+where+`
		 GROUP BY y, type ORDER BY y ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("sum by year: %w", err)
	}
	defer rows.Close()

	var out []core.YearTypeTotal
	for rows.Next() {
		var (
			yt  core.YearTypeTotal
			typ string
		)
		if err := rows.Scan(&yt.Year, &typ, &yt.TotalCents); err != nil {
			return nil, fmt.Errorf("scan year total: %w", err)
		}
		yt.Type = core.TransactionType(typ)
		out = append(out, yt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate year totals: %w", err)
	}
	return out, nil
}

// DistinctCategories returns every category value a user has recorded,
// unfiltered. The report builder sanitizes and sorts the result.
func (r *SQLiteRepository) DistinctCategories(ctx context.Context, userID int64) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT category FROM transactions WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("distinct categories: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return out, nil
}
