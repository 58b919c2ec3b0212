package report

// Snapshot is a built report: effective filters, totals, time rollups,
// the full matching transaction list and the distinct category list for
// the filter UI. Computed fresh per request, never persisted.
type Snapshot struct {
	Filters      Filters       `json:"filters"`
	Summary      Summary       `json:"summary"`
	Monthly      []Rollup      `json:"monthly"`
	Yearly       []Rollup      `json:"yearly"`
	Transactions []Transaction `json:"transactions"`
	Categories   []string      `json:"categories"`
}

// Filters echoes the effective filter values back to the caller.
// StartDate/EndDate are ISO dates or empty; DisplayRange is the
// human-readable label ("All time", "From X", "Up to Y", "X - Y").
type Filters struct {
	StartDate    string `json:"startDate"`
	EndDate      string `json:"endDate"`
	Category     string `json:"category"`
	DisplayRange string `json:"displayRange"`
}

// Summary totals are derived from the fetched transaction list itself,
// so they always match the rows below them, including in exports.
type Summary struct {
	TotalIncome      float64 `json:"totalIncome"`
	TotalExpense     float64 `json:"totalExpense"`
	Net              float64 `json:"net"`
	TransactionCount int     `json:"transactionCount"`
}

// Rollup is one month or year bucket. Label is "Jan 2006" for monthly
// buckets and "2006" for yearly ones.
type Rollup struct {
	Label   string  `json:"label"`
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
	Net     float64 `json:"net"`
}

// Transaction is a report row. Date is an ISO calendar date.
type Transaction struct {
	ID          int64   `json:"id"`
	Date        string  `json:"date"`
	Type        string  `json:"type"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}
