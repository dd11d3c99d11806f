// Package reconciler orchestrates a full reconciliation run: quality
// validation of both inputs, the tiered matching cascade, non-match
// analysis, and run-level scoring.
package reconciler

import (
	"context"
	"fmt"
	"time"

	"causacion-reconciler/internal/dataset"
	"causacion-reconciler/internal/matcher"
	"causacion-reconciler/internal/models"
	apperrors "causacion-reconciler/pkg/errors"
	"causacion-reconciler/pkg/logger"
)

// Config aggregates the knobs of every phase of a run
type Config struct {
	Matching   *matcher.Config          `json:"matching"`
	Validation *dataset.ValidatorConfig `json:"validation"`
	Weights    ScoreWeights             `json:"weights"`
	Bands      ScoreBands               `json:"bands"`
}

// DefaultConfig returns the standard run configuration
func DefaultConfig() *Config {
	return &Config{
		Matching:   matcher.DefaultConfig(),
		Validation: dataset.DefaultValidatorConfig(),
		Weights:    DefaultScoreWeights(),
		Bands:      DefaultScoreBands(),
	}
}

// Validate checks every phase's configuration
func (c *Config) Validate() error {
	if c.Matching == nil {
		return fmt.Errorf("matching configuration is required")
	}
	if err := c.Matching.Validate(); err != nil {
		return err
	}

	if c.Validation == nil {
		return fmt.Errorf("validation configuration is required")
	}
	if err := c.Validation.Validate(); err != nil {
		return err
	}

	if err := c.Weights.Validate(); err != nil {
		return err
	}
	return c.Bands.Validate()
}

// TaxInput carries one side of a run: the raw dataset for quality
// validation and the typed records for matching
type TaxInput struct {
	Dataset *dataset.Dataset
	Records []*models.TaxRecord
}

// LedgerInput is the accounting-side counterpart of TaxInput
type LedgerInput struct {
	Dataset   *dataset.Dataset
	Movements []*models.LedgerMovement
}

// Result is the complete outcome of one reconciliation run
type Result struct {
	TaxReport    *dataset.QualityReport     `json:"tax_report"`
	LedgerReport *dataset.QualityReport     `json:"ledger_report"`
	Pairs        []*matcher.MatchPair       `json:"pairs"`
	Unmatched    []*matcher.UnmatchedRecord `json:"unmatched"`
	Summary      *Summary                   `json:"summary"`
	ProcessedAt  time.Time                  `json:"processed_at"`
}

// Service runs reconciliations. It is stateless between runs; one service
// can process any number of input pairs sequentially.
type Service struct {
	config    *Config
	validator *dataset.Validator
	engine    *matcher.Engine
	log       logger.Logger
}

// NewService creates a reconciliation service; a nil config selects the
// defaults
func NewService(config *Config) (*Service, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CategoryConfiguration, apperrors.CodeInvalidConfig,
			"invalid reconciliation configuration")
	}

	validator, err := dataset.NewValidator(config.Validation)
	if err != nil {
		return nil, err
	}

	return &Service{
		config:    config,
		validator: validator,
		engine:    matcher.NewEngine(config.Matching),
		log:       logger.GetGlobalLogger().WithComponent("reconciler"),
	}, nil
}

// Reconcile executes the full pipeline over one pair of inputs. Quality
// validation runs first and is fatal only for structurally unusable
// datasets; every later phase works with whatever records survived
// loading. The context is checked between phases.
func (s *Service) Reconcile(ctx context.Context, tax *TaxInput, ledger *LedgerInput) (*Result, error) {
	started := time.Now()
	s.log.WithFields(logger.Fields{
		"tax_records": len(tax.Records),
		"movements":   len(ledger.Movements),
	}).Info("Starting reconciliation run")

	taxReport, err := s.validator.Validate(tax.Dataset)
	if err != nil {
		return nil, err
	}
	ledgerReport, err := s.validator.Validate(ledger.Dataset)
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logger.Fields{
		"tax_score":    taxReport.Score,
		"ledger_score": ledgerReport.Score,
	}).Info("Input validation completed")

	if !taxReport.IsAcceptable {
		s.log.WithField("score", taxReport.Score).Warn("Tax dataset quality below acceptable threshold")
	}
	if !ledgerReport.IsAcceptable {
		s.log.WithField("score", ledgerReport.Score).Warn("Ledger dataset quality below acceptable threshold")
	}

	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CategoryReconciliation, apperrors.CodeProcessingError,
			"reconciliation cancelled after validation")
	}

	matchResult, err := s.engine.Reconcile(tax.Records, ledger.Movements)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CategoryReconciliation, apperrors.CodeProcessingError,
			"reconciliation cancelled after matching")
	}

	unmatched := matcher.AnalyzeUnmatched(matchResult)

	summary := buildSummary(matchResult)
	summary.OverallScore = ScoreRun(matchResult, taxReport, ledgerReport, s.config.Weights)
	summary.OverallLabel = s.config.Bands.Label(summary.OverallScore)

	s.log.WithFields(logger.Fields{
		"pairs":         summary.MatchedPairs,
		"match_rate":    fmt.Sprintf("%.1f%%", summary.MatchRatePercent),
		"overall_score": fmt.Sprintf("%.1f", summary.OverallScore),
		"overall_label": summary.OverallLabel,
		"elapsed":       time.Since(started).String(),
	}).Info("Reconciliation run completed")

	return &Result{
		TaxReport:    taxReport,
		LedgerReport: ledgerReport,
		Pairs:        matchResult.Pairs,
		Unmatched:    unmatched,
		Summary:      summary,
		ProcessedAt:  started,
	}, nil
}
