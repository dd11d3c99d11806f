package reporter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"causacion-reconciler/internal/dataset"
	"causacion-reconciler/internal/matcher"
	"causacion-reconciler/internal/models"
	"causacion-reconciler/internal/reconciler"
)

func sampleResult() *reconciler.Result {
	date := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	tax := &models.TaxRecord{
		Folio:     "F1001",
		IssueDate: date,
		Total:     decimal.NewFromInt(100000),
	}
	movement := &models.LedgerMovement{
		DocumentNumber: "F1001",
		Amount:         decimal.NewFromInt(100000),
		Date:           date,
	}
	unmatchedTax := &models.TaxRecord{
		Folio:     "F2002",
		IssueDate: date,
		Total:     decimal.NewFromInt(50000),
	}

	return &reconciler.Result{
		TaxReport:    &dataset.QualityReport{Score: 100, IsAcceptable: true},
		LedgerReport: &dataset.QualityReport{Score: 90, IsAcceptable: true},
		Pairs: []*matcher.MatchPair{
			{
				Tax:             tax,
				Movement:        movement,
				Tier:            matcher.TierPrimary,
				ValueDifference: decimal.Zero,
				Grade:           matcher.GradePerfect,
			},
		},
		Unmatched: []*matcher.UnmatchedRecord{
			{
				Side:    matcher.SideTax,
				Tax:     unmatchedTax,
				Reasons: []matcher.Reason{matcher.ReasonNoCounterpart},
			},
		},
		Summary: &reconciler.Summary{
			TotalTaxRecords:  2,
			TotalMovements:   1,
			MatchedPairs:     1,
			UnmatchedTax:     1,
			MatchRatePercent: 66.7,
			TierCounts:       map[string]int{"primary": 1},
			GradeCounts:      map[string]int{"Perfect": 1},

			MatchedTaxAmount:      decimal.NewFromInt(100000),
			UnmatchedTaxAmount:    decimal.NewFromInt(50000),
			MatchedLedgerAmount:   decimal.NewFromInt(100000),
			UnmatchedLedgerAmount: decimal.Zero,
			TotalValueDifference:  decimal.Zero,

			OverallScore: 86.7,
			OverallLabel: "Excellent",
		},
		ProcessedAt: date,
	}
}

func TestConsoleReport(t *testing.T) {
	generator, err := NewReportGenerator(nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	var buf bytes.Buffer
	if err := generator.GenerateReport(sampleResult(), &buf); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	output := buf.String()
	for _, want := range []string{
		"=== SUMMARY ===",
		"Matched pairs:    1",
		"=== MATCH BREAKDOWN ===",
		"=== FINANCIAL SUMMARY ===",
		"=== DATA QUALITY ===",
		"F2002",
		"no counterpart found",
		"Score: 86.7/100 (Excellent)",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("Console output missing %q", want)
		}
	}
}

func TestJSONReport(t *testing.T) {
	config := DefaultReportConfig()
	config.Format = FormatJSON
	generator, err := NewReportGenerator(config)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	var buf bytes.Buffer
	if err := generator.GenerateReport(sampleResult(), &buf); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}

	summary, ok := decoded["summary"].(map[string]interface{})
	if !ok {
		t.Fatal("JSON output missing summary object")
	}
	if summary["overall_label"] != "Excellent" {
		t.Errorf("overall_label = %v", summary["overall_label"])
	}
	if _, ok := decoded["pairs"]; !ok {
		t.Error("JSON output missing pairs")
	}
}

func TestJSONReportExcludesSections(t *testing.T) {
	config := DefaultReportConfig()
	config.Format = FormatJSON
	config.IncludeMatches = false
	generator, _ := NewReportGenerator(config)

	var buf bytes.Buffer
	if err := generator.GenerateReport(sampleResult(), &buf); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}
	if pairs, ok := decoded["pairs"]; ok && pairs != nil {
		t.Error("Pairs should be omitted when excluded")
	}
}

func TestCSVReport(t *testing.T) {
	config := DefaultReportConfig()
	config.Format = FormatCSV
	generator, err := NewReportGenerator(config)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	var buf bytes.Buffer
	if err := generator.GenerateReport(sampleResult(), &buf); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("Output is not valid CSV: %v", err)
	}

	// Header + one match + one unmatched
	if len(rows) != 3 {
		t.Fatalf("Expected 3 CSV rows, got %d", len(rows))
	}
	if rows[0][0] != "Type" {
		t.Errorf("First header = %s", rows[0][0])
	}
	if rows[1][0] != "Matched" || rows[1][1] != "F1001" {
		t.Errorf("Match row = %v", rows[1])
	}
	if rows[2][0] != "Unmatched" || rows[2][1] != "F2002" {
		t.Errorf("Unmatched row = %v", rows[2])
	}
	if rows[2][11] != "no counterpart found" {
		t.Errorf("Reasons column = %s", rows[2][11])
	}
}

func TestExcelReport(t *testing.T) {
	config := DefaultReportConfig()
	config.Format = FormatExcel
	generator, err := NewReportGenerator(config)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	var buf bytes.Buffer
	if err := generator.GenerateReport(sampleResult(), &buf); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("Output is not a valid workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	for _, want := range []string{"Matches", "Unmatched", "Summary"} {
		found := false
		for _, sheet := range sheets {
			if sheet == want {
				found = true
			}
		}
		if !found {
			t.Errorf("Workbook missing sheet %s, got %v", want, sheets)
		}
	}

	folio, err := f.GetCellValue("Matches", "A2")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if folio != "F1001" {
		t.Errorf("Matches!A2 = %s, want F1001", folio)
	}

	grade, err := f.GetCellValue("Matches", "H2")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if grade != "Perfect" {
		t.Errorf("Matches!H2 = %s, want Perfect", grade)
	}

	label, err := f.GetCellValue("Summary", "B23")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if label != "Excellent" {
		t.Errorf("Summary!B23 = %s, want Excellent", label)
	}
}

func TestInvalidFormatRejected(t *testing.T) {
	config := DefaultReportConfig()
	config.Format = "yaml"

	if _, err := NewReportGenerator(config); err == nil {
		t.Fatal("Expected error for unsupported format")
	}
}
