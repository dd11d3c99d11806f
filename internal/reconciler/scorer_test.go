package reconciler

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"

	"causacion-reconciler/internal/dataset"
	"causacion-reconciler/internal/matcher"
	"causacion-reconciler/internal/models"
)

func qualityReport(score float64) *dataset.QualityReport {
	return &dataset.QualityReport{Score: score, IsAcceptable: score >= 70}
}

func pairWithGrade(grade matcher.Grade) *matcher.MatchPair {
	return &matcher.MatchPair{
		Tax:             &models.TaxRecord{Folio: "F1", Total: decimal.NewFromInt(100)},
		Movement:        &models.LedgerMovement{DocumentNumber: "F1", Amount: decimal.NewFromInt(100)},
		Tier:            matcher.TierPrimary,
		ValueDifference: decimal.Zero,
		Grade:           grade,
	}
}

func TestScoreRunPerfectInputs(t *testing.T) {
	result := &matcher.Result{
		Pairs: []*matcher.MatchPair{pairWithGrade(matcher.GradePerfect)},
	}

	score := ScoreRun(result, qualityReport(100), qualityReport(100), DefaultScoreWeights())
	if math.Abs(score-100) > 1e-9 {
		t.Errorf("Expected score 100 for a fully matched perfect run, got %.2f", score)
	}
	if label := DefaultScoreBands().Label(score); label != "Excellent" {
		t.Errorf("Expected Excellent, got %s", label)
	}
}

func TestScoreRunEmptyInputs(t *testing.T) {
	result := &matcher.Result{}

	// No records at all: match axes are 0, only completeness contributes
	score := ScoreRun(result, qualityReport(100), qualityReport(100), DefaultScoreWeights())
	if math.Abs(score-30) > 1e-9 {
		t.Errorf("Expected 30 for empty inputs with clean reports, got %.2f", score)
	}
}

func TestScoreRunNoPairs(t *testing.T) {
	result := &matcher.Result{
		UnmatchedTax: []*models.TaxRecord{
			{Folio: "F1", Total: decimal.NewFromInt(100)},
		},
	}

	// Zero pairs: perfect share must be 0, not a division by zero
	score := ScoreRun(result, qualityReport(80), qualityReport(60), DefaultScoreWeights())
	expected := 0.30 * 70.0
	if math.Abs(score-expected) > 1e-9 {
		t.Errorf("Expected %.2f, got %.2f", expected, score)
	}
}

func TestScoreRunBounded(t *testing.T) {
	results := []*matcher.Result{
		{},
		{Pairs: []*matcher.MatchPair{pairWithGrade(matcher.GradePerfect)}},
		{Pairs: []*matcher.MatchPair{pairWithGrade(matcher.GradeNeedsReview)}},
		{UnmatchedTax: []*models.TaxRecord{{Folio: "F1", Total: decimal.Zero}}},
	}
	reports := []float64{0, 50, 100}

	for _, result := range results {
		for _, taxScore := range reports {
			for _, ledgerScore := range reports {
				score := ScoreRun(result, qualityReport(taxScore), qualityReport(ledgerScore), DefaultScoreWeights())
				if score < 0 || score > 100 {
					t.Errorf("Score %.2f outside [0, 100]", score)
				}
			}
		}
	}
}

func TestScoreBandLabels(t *testing.T) {
	bands := DefaultScoreBands()

	tests := []struct {
		score    float64
		expected string
	}{
		{100, "Excellent"},
		{85, "Excellent"},
		{84.9, "Good"},
		{70, "Good"},
		{69.9, "Fair"},
		{50, "Fair"},
		{49.9, "Poor"},
		{0, "Poor"},
	}

	for _, tt := range tests {
		if got := bands.Label(tt.score); got != tt.expected {
			t.Errorf("Label(%.1f) = %s, want %s", tt.score, got, tt.expected)
		}
	}
}

func TestScoreWeightsValidate(t *testing.T) {
	if err := DefaultScoreWeights().Validate(); err != nil {
		t.Errorf("Default weights should validate: %v", err)
	}

	bad := ScoreWeights{MatchRate: 0.5, MatchQuality: 0.5, DataCompleteness: 0.5}
	if err := bad.Validate(); err == nil {
		t.Error("Weights summing to 1.5 should fail validation")
	}

	negative := ScoreWeights{MatchRate: -0.1, MatchQuality: 0.6, DataCompleteness: 0.5}
	if err := negative.Validate(); err == nil {
		t.Error("Negative weight should fail validation")
	}
}

func TestScoreBandsValidate(t *testing.T) {
	if err := DefaultScoreBands().Validate(); err != nil {
		t.Errorf("Default bands should validate: %v", err)
	}

	inverted := ScoreBands{Excellent: 50, Good: 70, Fair: 85}
	if err := inverted.Validate(); err == nil {
		t.Error("Inverted band floors should fail validation")
	}
}
