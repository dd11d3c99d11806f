package matcher

import (
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"causacion-reconciler/internal/models"
)

func TestAnalyzeUnmatchedTaxEmptyKey(t *testing.T) {
	record := &models.TaxRecord{
		Folio:     "nan",
		IssueDate: testDate,
		Total:     decimal.NewFromFloat(100.00),
	}

	unmatched := AnalyzeUnmatchedTax(record)

	expected := []Reason{ReasonEmptyKeyField, ReasonNoCounterpart}
	if !reflect.DeepEqual(unmatched.Reasons, expected) {
		t.Errorf("Reasons = %v, want %v", unmatched.Reasons, expected)
	}
	if unmatched.Side != SideTax {
		t.Errorf("Side = %s, want %s", unmatched.Side, SideTax)
	}
}

func TestAnalyzeUnmatchedTaxExtremeAmount(t *testing.T) {
	record := &models.TaxRecord{
		Folio:     "F9999",
		IssueDate: testDate,
		Total:     decimal.RequireFromString("5000000000000"), // past 1e12
	}

	unmatched := AnalyzeUnmatchedTax(record)

	expected := []Reason{ReasonExtremeAmount, ReasonNoCounterpart}
	if !reflect.DeepEqual(unmatched.Reasons, expected) {
		t.Errorf("Reasons = %v, want %v", unmatched.Reasons, expected)
	}
}

func TestAnalyzeUnmatchedTaxAccumulatesReasons(t *testing.T) {
	record := &models.TaxRecord{
		Folio: "",
		Total: decimal.NewFromFloat(-50.00),
	}

	unmatched := AnalyzeUnmatchedTax(record)

	expected := []Reason{
		ReasonEmptyKeyField,
		ReasonNegativeAmount,
		ReasonInvalidDate,
		ReasonNoCounterpart,
	}
	if !reflect.DeepEqual(unmatched.Reasons, expected) {
		t.Errorf("Reasons = %v, want %v", unmatched.Reasons, expected)
	}
}

func TestAnalyzeCleanRecordOnlyFallback(t *testing.T) {
	record := &models.TaxRecord{
		Folio:     "F1234",
		IssueDate: testDate,
		Total:     decimal.NewFromFloat(100.00),
	}

	unmatched := AnalyzeUnmatchedTax(record)

	expected := []Reason{ReasonNoCounterpart}
	if !reflect.DeepEqual(unmatched.Reasons, expected) {
		t.Errorf("Reasons = %v, want %v", unmatched.Reasons, expected)
	}
}

func TestAnalyzeUnmatchedMovement(t *testing.T) {
	movement := &models.LedgerMovement{
		DocumentNumber: "CT-55",
		Amount:         decimal.NewFromFloat(-10.00),
		Date:           time.Time{},
	}

	unmatched := AnalyzeUnmatchedMovement(movement)

	expected := []Reason{ReasonNegativeAmount, ReasonInvalidDate, ReasonNoCounterpart}
	if !reflect.DeepEqual(unmatched.Reasons, expected) {
		t.Errorf("Reasons = %v, want %v", unmatched.Reasons, expected)
	}
	if unmatched.Side != SideLedger {
		t.Errorf("Side = %s, want %s", unmatched.Side, SideLedger)
	}
}

func TestAnalyzeUnmatchedPreservesInputOrder(t *testing.T) {
	engine := NewEngine(nil)

	taxRecords := []*models.TaxRecord{
		taxRecord("F1", testDate, 100.00),
		taxRecord("F2", testDate, 200.00),
	}
	movements := []*models.LedgerMovement{
		ledgerMovement("X1", testDate, 999.00),
	}

	result, err := engine.Reconcile(taxRecords, movements)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	records := AnalyzeUnmatched(result)
	if len(records) != 3 {
		t.Fatalf("Expected 3 annotated records, got %d", len(records))
	}
	if records[0].Tax != taxRecords[0] || records[1].Tax != taxRecords[1] {
		t.Error("Tax records out of input order")
	}
	if records[2].Movement != movements[0] {
		t.Error("Movements should follow tax records")
	}
}
