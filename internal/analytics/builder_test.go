package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"fintrack/internal/core"
)

type fakeStore struct {
	typeTotals []core.TypeTotal
	expense    []core.CategoryTotal
	income     []core.CategoryTotal
	monthly    []core.MonthTypeTotal
	limits     []core.CategoryLimit

	monthFilter core.TransactionFilter
	err         error
}

func (f *fakeStore) SumByType(ctx context.Context, userID int64) ([]core.TypeTotal, error) {
	return f.typeTotals, f.err
}

func (f *fakeStore) SumByCategory(ctx context.Context, userID int64, typ core.TransactionType) ([]core.CategoryTotal, error) {
	if f.err != nil {
		return nil, f.err
	}
	if typ == core.Expense {
		return f.expense, nil
	}
	return f.income, nil
}

func (f *fakeStore) SumByMonth(ctx context.Context, filter core.TransactionFilter) ([]core.MonthTypeTotal, error) {
	f.monthFilter = filter
	return f.monthly, f.err
}

func (f *fakeStore) ListCategoryLimits(ctx context.Context, userID int64) ([]core.CategoryLimit, error) {
	return f.limits, f.err
}

func newTestBuilder(store *fakeStore, now time.Time) *Builder {
	b := NewBuilder(store)
	b.now = func() time.Time { return now }
	return b
}

func TestBuildSingleMonth(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	store := &fakeStore{
		typeTotals: []core.TypeTotal{
			{Type: core.Income, TotalCents: 100000},
			{Type: core.Expense, TotalCents: 30000},
		},
		expense: []core.CategoryTotal{{Category: "Food", TotalCents: 30000}},
		income:  []core.CategoryTotal{{Category: "Salary", TotalCents: 100000}},
		monthly: []core.MonthTypeTotal{
			{Year: 2024, Month: 3, Type: core.Income, TotalCents: 100000},
			{Year: 2024, Month: 3, Type: core.Expense, TotalCents: 30000},
		},
	}

	snap, err := newTestBuilder(store, now).Build(context.Background(), 1, 1)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if snap.Totals.Income != 1000 || snap.Totals.Expense != 300 {
		t.Errorf("totals = %+v, want income 1000 expense 300", snap.Totals)
	}
	if snap.Totals.Savings != 700 {
		t.Errorf("savings = %v, want 700", snap.Totals.Savings)
	}
	if snap.Totals.SavingsRate != 70 {
		t.Errorf("savingsRate = %v, want 70", snap.Totals.SavingsRate)
	}

	ec := snap.Charts.ExpenseByCategory
	if len(ec.Labels) != 1 || ec.Labels[0] != "Food" || ec.Data[0] != 300 || !ec.HasValues {
		t.Errorf("expenseByCategory = %+v", ec)
	}

	want := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	if !store.monthFilter.Start.Equal(want) {
		t.Errorf("monthly range start = %v, want %v", store.monthFilter.Start, want)
	}
}

func TestBuildEmptyUser(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	snap, err := newTestBuilder(&fakeStore{}, now).Build(context.Background(), 1, 6)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if snap.Totals != (Totals{}) {
		t.Errorf("totals = %+v, want all zero", snap.Totals)
	}
	if snap.Charts.IncomeVsExpense.HasValues {
		t.Error("incomeVsExpense.hasValues = true, want false")
	}
	if snap.Charts.SavingsTrend.HasValues {
		t.Error("savingsTrend.hasValues = true, want false")
	}
	if snap.Charts.ExpenseByCategory.HasValues || snap.Charts.IncomeBySource.HasValues {
		t.Error("category charts hasValues = true, want false")
	}
	if len(snap.CategoryLimits) != 0 {
		t.Errorf("categoryLimits = %v, want empty", snap.CategoryLimits)
	}
}

func TestBuildTrendWindow(t *testing.T) {
	// Window spans a year boundary; months without data zero-fill.
	now := time.Date(2024, 2, 20, 8, 0, 0, 0, time.UTC)
	store := &fakeStore{
		monthly: []core.MonthTypeTotal{
			{Year: 2023, Month: 12, Type: core.Expense, TotalCents: 5000},
			{Year: 2024, Month: 2, Type: core.Income, TotalCents: 20000},
		},
	}

	snap, err := newTestBuilder(store, now).Build(context.Background(), 1, 4)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	trend := snap.Charts.SavingsTrend
	wantLabels := []string{"Nov 2023", "Dec 2023", "Jan 2024", "Feb 2024"}
	if len(trend.Labels) != 4 {
		t.Fatalf("trend has %d entries, want 4", len(trend.Labels))
	}
	for i, want := range wantLabels {
		if trend.Labels[i] != want {
			t.Errorf("label[%d] = %q, want %q", i, trend.Labels[i], want)
		}
	}

	wantExpense := []float64{0, 50, 0, 0}
	wantIncome := []float64{0, 0, 0, 200}
	for i := range wantExpense {
		if trend.Expense[i] != wantExpense[i] {
			t.Errorf("expense[%d] = %v, want %v", i, trend.Expense[i], wantExpense[i])
		}
		if trend.Income[i] != wantIncome[i] {
			t.Errorf("income[%d] = %v, want %v", i, trend.Income[i], wantIncome[i])
		}
		if want := wantIncome[i] - wantExpense[i]; trend.Savings[i] != want {
			t.Errorf("savings[%d] = %v, want %v", i, trend.Savings[i], want)
		}
	}
	if !trend.HasValues {
		t.Error("trend.hasValues = false, want true")
	}
}

func TestBuildInvalidMonthsFallsBack(t *testing.T) {
	now := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	for _, months := range []int{0, -3} {
		snap, err := newTestBuilder(&fakeStore{}, now).Build(context.Background(), 1, months)
		if err != nil {
			t.Fatalf("Build(%d) error = %v", months, err)
		}
		if got := len(snap.Charts.SavingsTrend.Labels); got != DefaultMonths {
			t.Errorf("Build(%d) trend entries = %d, want %d", months, got, DefaultMonths)
		}
	}
}

func TestBuildLimitUsage(t *testing.T) {
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	store := &fakeStore{
		expense: []core.CategoryTotal{
			{Category: "Food", TotalCents: 30000},
			{Category: " FOOD ", TotalCents: 0}, // same normalized key
			{Category: "Rent", TotalCents: 40000},
		},
		limits: []core.CategoryLimit{
			{ID: 1, Category: "Food", NormalizedCategory: "food", Limit: core.Money{Cents: 20000}},
			{ID: 2, Category: "Rent", NormalizedCategory: "rent", Limit: core.Money{Cents: 80000}},
			{ID: 3, Category: "Travel", NormalizedCategory: "travel", Limit: core.Money{Cents: 10000}},
		},
	}

	snap, err := newTestBuilder(store, now).Build(context.Background(), 1, 1)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(snap.CategoryLimits) != 3 {
		t.Fatalf("got %d limit usages, want 3", len(snap.CategoryLimits))
	}

	food := snap.CategoryLimits[0]
	if food.Spent != 300 || food.Remaining != 0 || food.PercentageUsed != 150 {
		t.Errorf("food usage = %+v", food)
	}
	if !food.Exceeded || food.PercentageExceeded != 50 {
		t.Errorf("food exceeded = %v pct = %v, want true / 50", food.Exceeded, food.PercentageExceeded)
	}

	rent := snap.CategoryLimits[1]
	if rent.Spent != 400 || rent.Remaining != 400 || rent.PercentageUsed != 50 || rent.Exceeded {
		t.Errorf("rent usage = %+v", rent)
	}

	travel := snap.CategoryLimits[2]
	if travel.Spent != 0 || travel.Remaining != 100 || travel.PercentageUsed != 0 || travel.Exceeded {
		t.Errorf("travel usage = %+v", travel)
	}
}

func TestBuildStoreErrorAborts(t *testing.T) {
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	storeErr := errors.New("database gone")
	_, err := newTestBuilder(&fakeStore{err: storeErr}, now).Build(context.Background(), 1, 6)
	if !errors.Is(err, storeErr) {
		t.Errorf("Build() error = %v, want wrapped %v", err, storeErr)
	}
}
