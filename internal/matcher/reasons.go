package matcher

import "causacion-reconciler/internal/models"

// Reason is one candidate explanation for a record failing to pair
type Reason string

const (
	// ReasonEmptyKeyField: folio or document number empty or placeholder
	ReasonEmptyKeyField Reason = "empty key field"

	// ReasonExtremeAmount: monetary value beyond the capture-error bound
	ReasonExtremeAmount Reason = "extreme amount (probable capture error)"

	// ReasonNegativeAmount: monetary value below zero
	ReasonNegativeAmount Reason = "negative amount"

	// ReasonInvalidDate: date empty or unparseable
	ReasonInvalidDate Reason = "empty or invalid date"

	// ReasonNoCounterpart is the catch-all appended to every reason list:
	// a structurally valid record may still lack a true counterpart
	ReasonNoCounterpart Reason = "no counterpart found"
)

// Side identifies which source an unmatched record came from
type Side string

const (
	SideTax    Side = "tax"
	SideLedger Side = "ledger"
)

// UnmatchedRecord is a record that survived every tier without pairing,
// annotated with its ranked candidate reasons
type UnmatchedRecord struct {
	Side     Side                   `json:"side"`
	Tax      *models.TaxRecord      `json:"tax,omitempty"`
	Movement *models.LedgerMovement `json:"movement,omitempty"`
	Reasons  []Reason               `json:"reasons"`
}

// AnalyzeUnmatchedTax determines why a tax record failed to pair. Reasons
// are evaluated independently, so one record can carry several, in a fixed
// priority order; the no-counterpart fallback is always appended last.
func AnalyzeUnmatchedTax(record *models.TaxRecord) *UnmatchedRecord {
	var reasons []Reason

	if models.IsPlaceholder(record.Folio) {
		reasons = append(reasons, ReasonEmptyKeyField)
	}
	if record.HasExtremeTotal() {
		reasons = append(reasons, ReasonExtremeAmount)
	}
	if record.HasNegativeTotal() {
		reasons = append(reasons, ReasonNegativeAmount)
	}
	if record.IssueDate.IsZero() {
		reasons = append(reasons, ReasonInvalidDate)
	}
	reasons = append(reasons, ReasonNoCounterpart)

	return &UnmatchedRecord{
		Side:    SideTax,
		Tax:     record,
		Reasons: reasons,
	}
}

// AnalyzeUnmatchedMovement determines why a ledger movement failed to pair
func AnalyzeUnmatchedMovement(movement *models.LedgerMovement) *UnmatchedRecord {
	var reasons []Reason

	if models.IsPlaceholder(movement.DocumentNumber) {
		reasons = append(reasons, ReasonEmptyKeyField)
	}
	if movement.HasExtremeAmount() {
		reasons = append(reasons, ReasonExtremeAmount)
	}
	if movement.HasNegativeAmount() {
		reasons = append(reasons, ReasonNegativeAmount)
	}
	if movement.Date.IsZero() {
		reasons = append(reasons, ReasonInvalidDate)
	}
	reasons = append(reasons, ReasonNoCounterpart)

	return &UnmatchedRecord{
		Side:     SideLedger,
		Movement: movement,
		Reasons:  reasons,
	}
}

// AnalyzeUnmatched annotates both residual pools from a matching result,
// preserving input order
func AnalyzeUnmatched(result *Result) []*UnmatchedRecord {
	records := make([]*UnmatchedRecord, 0, len(result.UnmatchedTax)+len(result.UnmatchedMovements))

	for _, record := range result.UnmatchedTax {
		records = append(records, AnalyzeUnmatchedTax(record))
	}
	for _, movement := range result.UnmatchedMovements {
		records = append(records, AnalyzeUnmatchedMovement(movement))
	}

	return records
}
