package core

import "time"

// TypeTotal is the amount summed over one transaction type.
type TypeTotal struct {
	Type       TransactionType
	TotalCents int64
}

// CategoryTotal is the amount summed over one category within a type.
type CategoryTotal struct {
	Category   string
	TotalCents int64
}

// MonthTypeTotal is the amount summed over one (year, month, type) bucket.
type MonthTypeTotal struct {
	Year       int
	Month      int // 1-12
	Type       TransactionType
	TotalCents int64
}

// YearTypeTotal is the amount summed over one (year, type) bucket.
type YearTypeTotal struct {
	Year       int
	Type       TransactionType
	TotalCents int64
}

// TransactionFilter narrows queries to one user's transactions, with
// optional inclusive date bounds and an optional case-insensitive exact
// category match. Zero times mean no bound; an empty category matches all.
type TransactionFilter struct {
	UserID   int64
	Start    time.Time
	End      time.Time
	Category string
}

// MonthKey renders a (year, month) pair as the zero-padded "YYYY-MM"
// bucket key used when folding monthly aggregates.
func MonthKey(year, month int) string {
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
}
