// Package report builds filtered multi-granularity reports over a
// user's transactions and renders them as CSV or PDF documents.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/core"
)

const (
	isoDateLayout     = "2006-01-02"
	displayDateLayout = "Jan 2, 2006"
	monthLabelLayout  = "Jan 2006"
)

// Store is the read interface the builder needs from the repository.
type Store interface {
	ListTransactions(ctx context.Context, f core.TransactionFilter) ([]core.Transaction, error)
	SumByMonth(ctx context.Context, f core.TransactionFilter) ([]core.MonthTypeTotal, error)
	SumByYear(ctx context.Context, f core.TransactionFilter) ([]core.YearTypeTotal, error)
	DistinctCategories(ctx context.Context, userID int64) ([]string, error)
}

// Options are the raw report filters as received from the request.
// Unparseable dates mean "no bound"; the category is sanitized before
// matching.
type Options struct {
	StartDate string
	EndDate   string
	Category  string
}

type Builder struct {
	store Store
}

func NewBuilder(store Store) *Builder {
	return &Builder{store: store}
}

// Build assembles a report snapshot. The transaction list, monthly and
// yearly rollups and the category list are fetched concurrently; any
// failure aborts the build. Summary totals are summed from the fetched
// list itself rather than a separate aggregate, so the exported summary
// always matches the exported rows.
func (b *Builder) Build(ctx context.Context, userID int64, opts Options) (Snapshot, error) {
	start := parseBound(opts.StartDate, false)
	end := parseBound(opts.EndDate, true)
	category := core.SanitizeText(opts.Category)

	filter := core.TransactionFilter{
		UserID:   userID,
		Start:    start,
		End:      end,
		Category: category,
	}

	var (
		transactions []core.Transaction
		monthly      []core.MonthTypeTotal
		yearly       []core.YearTypeTotal
		categories   []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		transactions, err = b.store.ListTransactions(gctx, filter)
		return err
	})
	g.Go(func() (err error) {
		monthly, err = b.store.SumByMonth(gctx, filter)
		return err
	})
	g.Go(func() (err error) {
		yearly, err = b.store.SumByYear(gctx, filter)
		return err
	})
	g.Go(func() (err error) {
		// Unfiltered on purpose: the filter UI always offers the full set.
		categories, err = b.store.DistinctCategories(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, fmt.Errorf("build report: %w", err)
	}

	var incomeCents, expenseCents int64
	rows := make([]Transaction, 0, len(transactions))
	for _, t := range transactions {
		switch t.Type {
		case core.Income:
			incomeCents += t.Amount.Cents
		case core.Expense:
			expenseCents += t.Amount.Cents
		}
		rows = append(rows, Transaction{
			ID:          t.ID,
			Date:        t.Date.Format(isoDateLayout),
			Type:        string(t.Type),
			Category:    core.SanitizeText(t.Category),
			Description: core.SanitizeText(t.Description),
			Amount:      t.Amount.Amount(),
		})
	}

	snap := Snapshot{
		Filters: Filters{
			StartDate:    formatBound(start),
			EndDate:      formatBound(end),
			Category:     category,
			DisplayRange: displayRange(start, end),
		},
		Summary: Summary{
			TotalIncome:      core.CentsToAmount(incomeCents),
			TotalExpense:     core.CentsToAmount(expenseCents),
			Net:              core.CentsToAmount(incomeCents - expenseCents),
			TransactionCount: len(rows),
		},
		Monthly:      monthlyRollups(monthly),
		Yearly:       yearlyRollups(yearly),
		Transactions: rows,
		Categories:   cleanCategories(categories),
	}

	slog.DebugContext(ctx, "Report built",
		"user_id", userID,
		"transactions", len(rows),
		"category", category)

	return snap, nil
}

// parseBound parses an ISO date and pins it to the start or end of its
// calendar day. Anything unparseable becomes a zero time, meaning no
// bound.
func parseBound(value string, endOfDay bool) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	d, err := time.ParseInLocation(isoDateLayout, value, time.UTC)
	if err != nil {
		return time.Time{}
	}
	if endOfDay {
		return time.Date(d.Year(), d.Month(), d.Day(), 23, 59, 59, int(999*time.Millisecond), time.UTC)
	}
	return d
}

func formatBound(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(isoDateLayout)
}

func displayRange(start, end time.Time) string {
	switch {
	case !start.IsZero() && !end.IsZero():
		return start.Format(displayDateLayout) + " - " + end.Format(displayDateLayout)
	case !start.IsZero():
		return "From " + start.Format(displayDateLayout)
	case !end.IsZero():
		return "Up to " + end.Format(displayDateLayout)
	default:
		return "All time"
	}
}

// monthlyRollups merges (year, month, type) totals into per-month
// buckets and orders them newest first. Reports emphasize recency; the
// dashboard trend is the one that ascends.
func monthlyRollups(monthly []core.MonthTypeTotal) []Rollup {
	type bucket struct {
		year, month     int
		income, expense int64
	}
	byKey := make(map[string]*bucket, len(monthly))
	for _, mt := range monthly {
		key := core.MonthKey(mt.Year, mt.Month)
		b, ok := byKey[key]
		if !ok {
			b = &bucket{year: mt.Year, month: mt.Month}
			byKey[key] = b
		}
		switch mt.Type {
		case core.Income:
			b.income = mt.TotalCents
		case core.Expense:
			b.expense = mt.TotalCents
		}
	}

	buckets := make([]*bucket, 0, len(byKey))
	for _, b := range byKey {
		buckets = append(buckets, b)
	}
	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].year != buckets[j].year {
			return buckets[i].year > buckets[j].year
		}
		return buckets[i].month > buckets[j].month
	})

	out := make([]Rollup, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, Rollup{
			Label:   time.Date(b.year, time.Month(b.month), 1, 0, 0, 0, 0, time.UTC).Format(monthLabelLayout),
			Income:  core.CentsToAmount(b.income),
			Expense: core.CentsToAmount(b.expense),
			Net:     core.CentsToAmount(b.income - b.expense),
		})
	}
	return out
}

func yearlyRollups(yearly []core.YearTypeTotal) []Rollup {
	type bucket struct {
		year            int
		income, expense int64
	}
	byYear := make(map[int]*bucket, len(yearly))
	for _, yt := range yearly {
		b, ok := byYear[yt.Year]
		if !ok {
			b = &bucket{year: yt.Year}
			byYear[yt.Year] = b
		}
		switch yt.Type {
		case core.Income:
			b.income = yt.TotalCents
		case core.Expense:
			b.expense = yt.TotalCents
		}
	}

	buckets := make([]*bucket, 0, len(byYear))
	for _, b := range byYear {
		buckets = append(buckets, b)
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].year > buckets[j].year })

	out := make([]Rollup, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, Rollup{
			Label:   fmt.Sprintf("%d", b.year),
			Income:  core.CentsToAmount(b.income),
			Expense: core.CentsToAmount(b.expense),
			Net:     core.CentsToAmount(b.income - b.expense),
		})
	}
	return out
}

// cleanCategories sanitizes, drops empties and sorts case-insensitively.
func cleanCategories(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, c := range raw {
		if cleaned := core.SanitizeText(c); cleaned != "" {
			out = append(out, cleaned)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i]) < strings.ToLower(out[j])
	})
	return out
}
