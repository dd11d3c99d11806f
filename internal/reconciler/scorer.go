package reconciler

import (
	"fmt"

	"causacion-reconciler/internal/dataset"
	"causacion-reconciler/internal/matcher"
)

// Default weights for the overall run score. They sum to 1 so a run that
// is perfect on every axis scores exactly 100.
const (
	DefaultMatchRateWeight    = 0.40
	DefaultMatchQualityWeight = 0.30
	DefaultCompletenessWeight = 0.30
)

// Default band floors for the overall score label
const (
	DefaultExcellentFloor = 85.0
	DefaultGoodFloor      = 70.0
	DefaultFairFloor      = 50.0
)

// ScoreWeights controls the blend of the three run-level quality axes
type ScoreWeights struct {
	// MatchRate weights the share of records that found a counterpart
	MatchRate float64 `json:"match_rate"`

	// MatchQuality weights the share of pairs graded Perfect
	MatchQuality float64 `json:"match_quality"`

	// DataCompleteness weights the mean of the two input quality scores
	DataCompleteness float64 `json:"data_completeness"`
}

// DefaultScoreWeights returns the standard weight blend
func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{
		MatchRate:        DefaultMatchRateWeight,
		MatchQuality:     DefaultMatchQualityWeight,
		DataCompleteness: DefaultCompletenessWeight,
	}
}

// Validate checks that the weights are non-negative and sum to 1
func (w ScoreWeights) Validate() error {
	if w.MatchRate < 0 || w.MatchQuality < 0 || w.DataCompleteness < 0 {
		return fmt.Errorf("score weights must be non-negative, got %+v", w)
	}

	sum := w.MatchRate + w.MatchQuality + w.DataCompleteness
	if sum < 0.999 || sum > 1.001 {
		return fmt.Errorf("score weights must sum to 1, got %.3f", sum)
	}

	return nil
}

// ScoreBands maps an overall score to a human label. Each field is the
// inclusive floor of its band; anything below Fair is Poor.
type ScoreBands struct {
	Excellent float64 `json:"excellent"`
	Good      float64 `json:"good"`
	Fair      float64 `json:"fair"`
}

// DefaultScoreBands returns the standard band floors
func DefaultScoreBands() ScoreBands {
	return ScoreBands{
		Excellent: DefaultExcellentFloor,
		Good:      DefaultGoodFloor,
		Fair:      DefaultFairFloor,
	}
}

// Validate checks that the band floors are ordered and within range
func (b ScoreBands) Validate() error {
	if b.Excellent < b.Good || b.Good < b.Fair {
		return fmt.Errorf("band floors must be non-increasing, got %+v", b)
	}
	if b.Excellent > 100 || b.Fair < 0 {
		return fmt.Errorf("band floors must lie within [0, 100], got %+v", b)
	}
	return nil
}

// Label returns the band name for a score
func (b ScoreBands) Label(score float64) string {
	switch {
	case score >= b.Excellent:
		return "Excellent"
	case score >= b.Good:
		return "Good"
	case score >= b.Fair:
		return "Fair"
	default:
		return "Poor"
	}
}

// ScoreRun computes the 0-100 overall score for a finished run. Each axis
// is computed on a 0-100 scale; ratios with a zero denominator are 0, so
// an empty run scores by data completeness alone and never divides by
// zero. The result is clamped to [0, 100].
func ScoreRun(result *matcher.Result, taxReport, ledgerReport *dataset.QualityReport, weights ScoreWeights) float64 {
	pairs := len(result.Pairs)
	totalRecords := 2*pairs + len(result.UnmatchedTax) + len(result.UnmatchedMovements)

	var matchRate float64
	if totalRecords > 0 {
		matchRate = 100 * float64(2*pairs) / float64(totalRecords)
	}

	var perfectShare float64
	if pairs > 0 {
		perfect := 0
		for _, pair := range result.Pairs {
			if pair.Grade == matcher.GradePerfect {
				perfect++
			}
		}
		perfectShare = 100 * float64(perfect) / float64(pairs)
	}

	var completeness float64
	if taxReport != nil && ledgerReport != nil {
		completeness = (taxReport.Score + ledgerReport.Score) / 2
	}

	score := weights.MatchRate*matchRate +
		weights.MatchQuality*perfectShare +
		weights.DataCompleteness*completeness

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
