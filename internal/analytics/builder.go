// Package analytics builds the dashboard snapshot: overall totals,
// chart-ready series for a trailing month window, and category-limit
// usage. Everything is recomputed from the store on every call.
package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/core"
)

// DefaultMonths is the trend window used when the caller passes a
// non-positive month count.
const DefaultMonths = 6

// Store is the read interface the builder needs from the repository.
type Store interface {
	SumByType(ctx context.Context, userID int64) ([]core.TypeTotal, error)
	SumByCategory(ctx context.Context, userID int64, typ core.TransactionType) ([]core.CategoryTotal, error)
	SumByMonth(ctx context.Context, f core.TransactionFilter) ([]core.MonthTypeTotal, error)
	ListCategoryLimits(ctx context.Context, userID int64) ([]core.CategoryLimit, error)
}

type Builder struct {
	store Store
	now   func() time.Time
}

func NewBuilder(store Store) *Builder {
	return &Builder{store: store, now: time.Now}
}

// Build computes the analytics snapshot for a trailing window of
// `months` calendar months ending in the current month. The five
// aggregate queries run concurrently; any failure aborts the build.
func (b *Builder) Build(ctx context.Context, userID int64, months int) (Snapshot, error) {
	if months <= 0 {
		months = DefaultMonths
	}

	now := b.now().UTC()
	rangeStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).
		AddDate(0, -(months - 1), 0)

	var (
		typeTotals  []core.TypeTotal
		expenseCats []core.CategoryTotal
		incomeCats  []core.CategoryTotal
		monthly     []core.MonthTypeTotal
		limits      []core.CategoryLimit
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		typeTotals, err = b.store.SumByType(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		expenseCats, err = b.store.SumByCategory(gctx, userID, core.Expense)
		return err
	})
	g.Go(func() (err error) {
		incomeCats, err = b.store.SumByCategory(gctx, userID, core.Income)
		return err
	})
	g.Go(func() (err error) {
		monthly, err = b.store.SumByMonth(gctx, core.TransactionFilter{UserID: userID, Start: rangeStart})
		return err
	})
	g.Go(func() (err error) {
		limits, err = b.store.ListCategoryLimits(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, fmt.Errorf("build analytics: %w", err)
	}

	var incomeCents, expenseCents int64
	for _, tt := range typeTotals {
		switch tt.Type {
		case core.Income:
			incomeCents = tt.TotalCents
		case core.Expense:
			expenseCents = tt.TotalCents
		}
	}

	income := core.CentsToAmount(incomeCents)
	expense := core.CentsToAmount(expenseCents)
	savings := income - expense
	savingsRate := 0.0
	if income > 0 {
		savingsRate = savings / income * 100
	}

	snap := Snapshot{
		Totals: Totals{
			Income:      income,
			Expense:     expense,
			Savings:     savings,
			SavingsRate: savingsRate,
		},
		Charts: Charts{
			IncomeVsExpense: Series{
				Labels:    []string{"Income", "Expense"},
				Data:      []float64{income, expense},
				HasValues: income > 0 || expense > 0,
			},
			SavingsTrend:      buildTrend(rangeStart, months, monthly),
			ExpenseByCategory: buildCategorySeries(expenseCats),
			IncomeBySource:    buildCategorySeries(incomeCats),
		},
		CategoryLimits: buildLimitUsage(limits, expenseCats),
	}

	slog.DebugContext(ctx, "Analytics snapshot built",
		"user_id", userID,
		"months", months,
		"limits", len(snap.CategoryLimits))

	return snap, nil
}

// buildTrend folds the monthly aggregate into exactly `months` entries,
// chronological, zero-filling months with no transactions.
func buildTrend(rangeStart time.Time, months int, monthly []core.MonthTypeTotal) TrendSeries {
	type bucket struct {
		income  int64
		expense int64
	}
	buckets := make(map[string]bucket, len(monthly))
	for _, mt := range monthly {
		key := core.MonthKey(mt.Year, mt.Month)
		b := buckets[key]
		switch mt.Type {
		case core.Income:
			b.income = mt.TotalCents
		case core.Expense:
			b.expense = mt.TotalCents
		}
		buckets[key] = b
	}

	trend := TrendSeries{
		Labels:  make([]string, 0, months),
		Income:  make([]float64, 0, months),
		Expense: make([]float64, 0, months),
		Savings: make([]float64, 0, months),
	}
	for i := 0; i < months; i++ {
		month := rangeStart.AddDate(0, i, 0)
		b := buckets[core.MonthKey(month.Year(), int(month.Month()))]
		trend.Labels = append(trend.Labels, month.Format("Jan 2006"))
		trend.Income = append(trend.Income, core.CentsToAmount(b.income))
		trend.Expense = append(trend.Expense, core.CentsToAmount(b.expense))
		trend.Savings = append(trend.Savings, core.CentsToAmount(b.income-b.expense))
		if b.income > 0 || b.expense > 0 {
			trend.HasValues = true
		}
	}
	return trend
}

func buildCategorySeries(cats []core.CategoryTotal) Series {
	s := Series{
		Labels: make([]string, 0, len(cats)),
		Data:   make([]float64, 0, len(cats)),
	}
	for _, ct := range cats {
		label := ct.Category
		if label == "" {
			label = "Uncategorized"
		}
		s.Labels = append(s.Labels, label)
		s.Data = append(s.Data, core.CentsToAmount(ct.TotalCents))
		if ct.TotalCents > 0 {
			s.HasValues = true
		}
	}
	return s
}

// buildLimitUsage joins limits against the expense aggregate via the
// normalized category key. Raw categories that normalize to the same
// key roll up into one spent figure.
func buildLimitUsage(limits []core.CategoryLimit, expenseCats []core.CategoryTotal) []LimitUsage {
	spentByKey := make(map[string]int64, len(expenseCats))
	for _, ct := range expenseCats {
		spentByKey[core.NormalizeCategory(ct.Category)] += ct.TotalCents
	}

	usage := make([]LimitUsage, 0, len(limits))
	for _, l := range limits {
		spentCents := spentByKey[l.NormalizedCategory]
		limit := l.Limit.Amount()
		spent := core.CentsToAmount(spentCents)

		remaining := limit - spent
		if remaining < 0 {
			remaining = 0
		}
		percentageUsed := 0.0
		if limit > 0 {
			percentageUsed = spent / limit * 100
		}
		exceeded := spent > limit
		percentageExceeded := 0.0
		if exceeded && limit > 0 {
			percentageExceeded = (spent - limit) / limit * 100
		}

		usage = append(usage, LimitUsage{
			ID:                 l.ID,
			Category:           l.Category,
			Limit:              limit,
			Spent:              spent,
			Remaining:          remaining,
			PercentageUsed:     percentageUsed,
			Exceeded:           exceeded,
			PercentageExceeded: percentageExceeded,
		})
	}
	return usage
}
