package analytics

// Snapshot is the dashboard analytics payload, computed fresh per
// request and never persisted. Field names are part of the JSON
// contract with the dashboard frontend.
type Snapshot struct {
	Totals         Totals       `json:"totals"`
	Charts         Charts       `json:"charts"`
	CategoryLimits []LimitUsage `json:"categoryLimits"`
}

type Totals struct {
	Income      float64 `json:"income"`
	Expense     float64 `json:"expense"`
	Savings     float64 `json:"savings"`
	SavingsRate float64 `json:"savingsRate"`
}

type Charts struct {
	IncomeVsExpense   Series      `json:"incomeVsExpense"`
	SavingsTrend      TrendSeries `json:"savingsTrend"`
	ExpenseByCategory Series      `json:"expenseByCategory"`
	IncomeBySource    Series      `json:"incomeBySource"`
}

// Series is a chart with one data array parallel to its labels.
// HasValues tells the frontend whether to draw the chart or an
// empty-state placeholder.
type Series struct {
	Labels    []string  `json:"labels"`
	Data      []float64 `json:"data"`
	HasValues bool      `json:"hasValues"`
}

// TrendSeries is the savings trend: one entry per month in the window,
// chronological, with income/expense/savings arrays parallel to Labels.
type TrendSeries struct {
	Labels    []string  `json:"labels"`
	Income    []float64 `json:"income"`
	Expense   []float64 `json:"expense"`
	Savings   []float64 `json:"savings"`
	HasValues bool      `json:"hasValues"`
}

// LimitUsage joins one persisted category limit against the current
// expense-by-category aggregate.
type LimitUsage struct {
	ID                 int64   `json:"id"`
	Category           string  `json:"category"`
	Limit              float64 `json:"limit"`
	Spent              float64 `json:"spent"`
	Remaining          float64 `json:"remaining"`
	PercentageUsed     float64 `json:"percentageUsed"`
	Exceeded           bool    `json:"exceeded"`
	PercentageExceeded float64 `json:"percentageExceeded"`
}
