package report

import (
	"fmt"
	"strings"
)

// BuildCSV renders a snapshot as a CRLF-terminated, section-oriented CSV
// document: title, filter header, summary block, optional monthly and
// yearly sections, then the full transaction list. Numeric fields carry
// exactly two decimals.
func BuildCSV(snap Snapshot) string {
	var lines []string

	lines = append(lines, "Expense Tracker Report")
	lines = append(lines, "Date Range,"+escapeCSV(snap.Filters.DisplayRange))
	if snap.Filters.Category != "" {
		lines = append(lines, "Category,"+escapeCSV(snap.Filters.Category))
	}
	lines = append(lines, "")

	lines = append(lines, "Summary")
	lines = append(lines, "Total Income,Total Expense,Net,Transaction Count")
	lines = append(lines, fmt.Sprintf("%.2f,%.2f,%.2f,%d",
		snap.Summary.TotalIncome, snap.Summary.TotalExpense, snap.Summary.Net, snap.Summary.TransactionCount))
	lines = append(lines, "")

	if len(snap.Monthly) > 0 {
		lines = append(lines, "Monthly Summary")
		lines = append(lines, "Month,Income,Expense,Net")
		for _, entry := range snap.Monthly {
			lines = append(lines, fmt.Sprintf("%s,%.2f,%.2f,%.2f",
				escapeCSV(entry.Label), entry.Income, entry.Expense, entry.Net))
		}
		lines = append(lines, "")
	}

	if len(snap.Yearly) > 0 {
		lines = append(lines, "Yearly Summary")
		lines = append(lines, "Year,Income,Expense,Net")
		for _, entry := range snap.Yearly {
			lines = append(lines, fmt.Sprintf("%s,%.2f,%.2f,%.2f",
				escapeCSV(entry.Label), entry.Income, entry.Expense, entry.Net))
		}
		lines = append(lines, "")
	}

	lines = append(lines, "Transactions")
	lines = append(lines, "Date,Type,Category,Description,Amount")
	for _, t := range snap.Transactions {
		lines = append(lines, fmt.Sprintf("%s,%s,%s,%s,%.2f",
			t.Date, t.Type, escapeCSV(t.Category), escapeCSV(t.Description), t.Amount))
	}

	return strings.Join(lines, "\r\n")
}

// escapeCSV applies standard CSV quoting: internal quotes are doubled,
// and any field containing a comma, quote or newline is wrapped in
// quotes.
func escapeCSV(value string) string {
	escaped := strings.ReplaceAll(value, `"`, `""`)
	if strings.ContainsAny(escaped, ",\"\n\r") {
		return `"` + escaped + `"`
	}
	return escaped
}
