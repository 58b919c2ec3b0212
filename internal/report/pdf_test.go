package report

import (
	"bytes"
	"fmt"
	"testing"
	"time"
)

func TestRenderPDF(t *testing.T) {
	var buf bytes.Buffer
	generatedAt := time.Date(2024, 3, 15, 12, 30, 0, 0, time.UTC)

	if err := RenderPDF(&buf, sampleSnapshot(), generatedAt); err != nil {
		t.Fatalf("RenderPDF() error = %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("empty PDF output")
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Errorf("output does not start with PDF header: %q", buf.Bytes()[:8])
	}
}

func TestRenderPDFEmptyReport(t *testing.T) {
	var buf bytes.Buffer
	snap := Snapshot{Filters: Filters{DisplayRange: "All time"}}

	if err := RenderPDF(&buf, snap, time.Now()); err != nil {
		t.Fatalf("RenderPDF() error = %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Error("output does not start with PDF header")
	}
}

func TestRenderPDFTruncatesLongLists(t *testing.T) {
	snap := sampleSnapshot()
	snap.Transactions = nil
	for i := 0; i < 80; i++ {
		snap.Transactions = append(snap.Transactions, Transaction{
			Date:     "2024-01-01",
			Type:     "expense",
			Category: "Food",
			Amount:   float64(i + 1),
		})
	}
	for i := 0; i < 30; i++ {
		snap.Monthly = append(snap.Monthly, Rollup{Label: fmt.Sprintf("Month %d", i)})
	}

	var buf bytes.Buffer
	if err := RenderPDF(&buf, snap, time.Now()); err != nil {
		t.Fatalf("RenderPDF() error = %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("empty PDF output")
	}
}
