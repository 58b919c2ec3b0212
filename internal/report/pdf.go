package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
)

const (
	// maxPDFMonthly caps the monthly rollup at the most recent entries.
	maxPDFMonthly = 24

	currencyPrefix = "Rs "
)

// RenderPDF writes a snapshot as a paginated PDF document: title,
// generation timestamp, applied filters, summary, monthly rollup (24
// newest), full yearly rollup and up to 50 transactions. The renderer
// performs no data access; document-writing failures surface as errors.
func RenderPDF(w io.Writer, snap Snapshot, generatedAt time.Time) error {
	const maxTransactions = 50

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 10, "Expense Tracker Report", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(85, 85, 85)
	pdf.CellFormat(0, 6, "Generated on "+generatedAt.Format("Jan 2, 2006 15:04:05"), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, "Date range: "+snap.Filters.DisplayRange, "", 1, "L", false, 0, "")
	if snap.Filters.Category != "" {
		pdf.CellFormat(0, 6, "Category filter: "+snap.Filters.Category, "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	sectionHeader(pdf, "Summary")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, "Total Income: "+currency(snap.Summary.TotalIncome), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Total Expense: "+currency(snap.Summary.TotalExpense), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Net: "+currency(snap.Summary.Net), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Transactions: %d", snap.Summary.TransactionCount), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	sectionHeader(pdf, "Monthly Summary")
	pdf.SetFont("Helvetica", "", 11)
	if len(snap.Monthly) == 0 {
		pdf.CellFormat(0, 6, "No monthly data for the selected filters.", "", 1, "L", false, 0, "")
	} else {
		monthly := snap.Monthly
		if len(monthly) > maxPDFMonthly {
			monthly = monthly[:maxPDFMonthly]
		}
		for _, entry := range monthly {
			rollupLine(pdf, entry)
		}
	}
	pdf.Ln(4)

	sectionHeader(pdf, "Yearly Summary")
	pdf.SetFont("Helvetica", "", 11)
	if len(snap.Yearly) == 0 {
		pdf.CellFormat(0, 6, "No yearly data for the selected filters.", "", 1, "L", false, 0, "")
	} else {
		for _, entry := range snap.Yearly {
			rollupLine(pdf, entry)
		}
	}
	pdf.Ln(4)

	sectionHeader(pdf, "Transactions")
	if len(snap.Transactions) == 0 {
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(0, 6, "No transactions for the selected filters.", "", 1, "L", false, 0, "")
	} else {
		transactions := snap.Transactions
		truncated := false
		if len(transactions) > maxTransactions {
			transactions = transactions[:maxTransactions]
			truncated = true
		}
		for _, t := range transactions {
			pdf.SetFont("Helvetica", "", 10)
			line := fmt.Sprintf("%s | %s | %s | %s",
				t.Date, strings.ToUpper(t.Type), orDefault(t.Category, "Uncategorized"), currency(t.Amount))
			pdf.CellFormat(0, 5.5, line, "", 1, "L", false, 0, "")
			if t.Description != "" {
				pdf.SetFont("Helvetica", "", 9)
				pdf.SetTextColor(85, 85, 85)
				pdf.CellFormat(0, 5, "   "+t.Description, "", 1, "L", false, 0, "")
				pdf.SetTextColor(0, 0, 0)
			}
			pdf.Ln(1)
		}
		if truncated {
			pdf.SetFont("Helvetica", "I", 9)
			pdf.SetTextColor(85, 85, 85)
			pdf.CellFormat(0, 6, fmt.Sprintf("(Showing first %d transactions)", maxTransactions), "", 1, "L", false, 0, "")
			pdf.SetTextColor(0, 0, 0)
		}
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func sectionHeader(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, title, "B", 1, "L", false, 0, "")
	pdf.Ln(1)
}

func rollupLine(pdf *gofpdf.Fpdf, entry Rollup) {
	line := fmt.Sprintf("%s: Income %s | Expense %s | Net %s",
		entry.Label, currency(entry.Income), currency(entry.Expense), currency(entry.Net))
	pdf.CellFormat(0, 6, line, "", 1, "L", false, 0, "")
}

func currency(v float64) string {
	return fmt.Sprintf("%s%.2f", currencyPrefix, v)
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
