package reconciler

import (
	"github.com/shopspring/decimal"

	"causacion-reconciler/internal/matcher"
)

// Summary condenses a full run into the figures an accountant reviews
// first: volumes, tier and grade breakdowns, and monetary totals per side
type Summary struct {
	TotalTaxRecords int `json:"total_tax_records"`
	TotalMovements  int `json:"total_movements"`
	MatchedPairs    int `json:"matched_pairs"`
	UnmatchedTax    int `json:"unmatched_tax"`
	UnmatchedLedger int `json:"unmatched_ledger"`

	// MatchRatePercent counts both sides of each pair against all records
	MatchRatePercent float64 `json:"match_rate_percent"`

	TierCounts  map[string]int `json:"tier_counts"`
	GradeCounts map[string]int `json:"grade_counts"`

	// Pairs whose sides disagree on amount or date
	PairsWithValueDeviation int `json:"pairs_with_value_deviation"`
	PairsWithDateDeviation  int `json:"pairs_with_date_deviation"`

	MatchedTaxAmount      decimal.Decimal `json:"matched_tax_amount"`
	UnmatchedTaxAmount    decimal.Decimal `json:"unmatched_tax_amount"`
	MatchedLedgerAmount   decimal.Decimal `json:"matched_ledger_amount"`
	UnmatchedLedgerAmount decimal.Decimal `json:"unmatched_ledger_amount"`

	// TotalValueDifference is the sum of absolute per-pair deltas
	TotalValueDifference decimal.Decimal `json:"total_value_difference"`

	OverallScore float64 `json:"overall_score"`
	OverallLabel string  `json:"overall_label"`
}

// buildSummary derives the summary figures from a matching result. The
// overall score and label are filled in by the caller once both quality
// reports exist.
func buildSummary(result *matcher.Result) *Summary {
	summary := &Summary{
		MatchedPairs:    len(result.Pairs),
		UnmatchedTax:    len(result.UnmatchedTax),
		UnmatchedLedger: len(result.UnmatchedMovements),
		TotalTaxRecords: len(result.Pairs) + len(result.UnmatchedTax),
		TotalMovements:  len(result.Pairs) + len(result.UnmatchedMovements),
		TierCounts:      make(map[string]int),
		GradeCounts:     make(map[string]int),

		MatchedTaxAmount:      decimal.Zero,
		UnmatchedTaxAmount:    decimal.Zero,
		MatchedLedgerAmount:   decimal.Zero,
		UnmatchedLedgerAmount: decimal.Zero,
		TotalValueDifference:  decimal.Zero,
	}

	totalRecords := summary.TotalTaxRecords + summary.TotalMovements
	if totalRecords > 0 {
		summary.MatchRatePercent = 100 * float64(2*summary.MatchedPairs) / float64(totalRecords)
	}

	for _, pair := range result.Pairs {
		summary.TierCounts[pair.Tier.String()]++
		summary.GradeCounts[pair.Grade.String()]++

		summary.MatchedTaxAmount = summary.MatchedTaxAmount.Add(pair.Tax.Total)
		summary.MatchedLedgerAmount = summary.MatchedLedgerAmount.Add(pair.Movement.Amount)
		summary.TotalValueDifference = summary.TotalValueDifference.Add(pair.ValueDifference)

		if !pair.ValueDifference.IsZero() {
			summary.PairsWithValueDeviation++
		}
		if pair.DateDifference != 0 {
			summary.PairsWithDateDeviation++
		}
	}

	for _, record := range result.UnmatchedTax {
		summary.UnmatchedTaxAmount = summary.UnmatchedTaxAmount.Add(record.Total)
	}
	for _, movement := range result.UnmatchedMovements {
		summary.UnmatchedLedgerAmount = summary.UnmatchedLedgerAmount.Add(movement.Amount)
	}

	return summary
}
