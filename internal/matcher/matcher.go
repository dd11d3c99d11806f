package matcher

import (
	"github.com/shopspring/decimal"

	"causacion-reconciler/internal/models"
	apperrors "causacion-reconciler/pkg/errors"
	"causacion-reconciler/pkg/logger"
)

// MatchPair associates one tax record with one ledger movement. Each record
// appears in at most one pair per run.
type MatchPair struct {
	Tax      *models.TaxRecord      `json:"tax"`
	Movement *models.LedgerMovement `json:"movement"`

	// Tier is the cascade stage at which the pair was found
	Tier Tier `json:"tier"`

	// ValueDifference is the absolute monetary delta between the two sides
	ValueDifference decimal.Decimal `json:"value_difference"`

	// DateDifference is the absolute whole-day delta between the two dates
	DateDifference int `json:"date_difference"`

	// Grade classifies the pair's confidence, derived from the deltas
	Grade Grade `json:"grade"`
}

// Result is the complete outcome of one matching run: the realized pairs
// and the residual unmatched pools from both sides, all in input order
type Result struct {
	Pairs              []*MatchPair             `json:"pairs"`
	UnmatchedTax       []*models.TaxRecord      `json:"unmatched_tax"`
	UnmatchedMovements []*models.LedgerMovement `json:"unmatched_movements"`
}

// Engine runs the tiered matching cascade. It owns the two record pools
// only for the duration of one Reconcile call and keeps no state between
// runs.
type Engine struct {
	config *Config
	log    logger.Logger
}

// NewEngine creates a matching engine; a nil config selects the defaults
func NewEngine(config *Config) *Engine {
	if config == nil {
		config = DefaultConfig()
	}

	return &Engine{
		config: config,
		log:    logger.GetGlobalLogger().WithComponent("matcher"),
	}
}

// Config returns a copy of the engine's configuration
func (e *Engine) Config() *Config {
	return e.config.Clone()
}

// Reconcile pairs tax records with ledger movements through the three-tier
// cascade. Tiers run in strict priority order over the records still
// uncommitted after earlier tiers; a committed record never re-enters the
// pool. The output is deterministic for identical inputs in identical
// order.
func (e *Engine) Reconcile(taxRecords []*models.TaxRecord, movements []*models.LedgerMovement) (*Result, error) {
	if err := e.config.Validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CategoryConfiguration, apperrors.CodeInvalidConfig,
			"invalid matching configuration")
	}

	index := NewMovementIndex(movements)
	committedTax := make([]bool, len(taxRecords))
	committedMovements := make([]bool, len(movements))

	stats := index.Stats()
	e.log.WithFields(logger.Fields{
		"tax_records":   len(taxRecords),
		"movements":     stats.TotalMovements,
		"documents":     stats.UniqueDocuments,
		"third_parties": stats.UniqueThirdParties,
	}).Info("Starting matching cascade")

	var pairs []*MatchPair
	for _, tier := range []Tier{TierPrimary, TierSecondary, TierTertiary} {
		tierPairs := e.runTier(tier, taxRecords, index, committedTax, committedMovements)
		e.log.WithFields(logger.Fields{
			"tier":  tier.String(),
			"pairs": len(tierPairs),
		}).Info("Tier completed")
		pairs = append(pairs, tierPairs...)
	}

	result := &Result{Pairs: pairs}
	for i, record := range taxRecords {
		if !committedTax[i] {
			result.UnmatchedTax = append(result.UnmatchedTax, record)
		}
	}
	for i, movement := range movements {
		if !committedMovements[i] {
			result.UnmatchedMovements = append(result.UnmatchedMovements, movement)
		}
	}

	e.log.WithFields(logger.Fields{
		"pairs":               len(result.Pairs),
		"unmatched_tax":       len(result.UnmatchedTax),
		"unmatched_movements": len(result.UnmatchedMovements),
	}).Info("Matching cascade completed")

	return result, nil
}

// runTier scans the uncommitted tax records in input order and commits the
// best eligible movement for each, per the tier's rule
func (e *Engine) runTier(tier Tier, taxRecords []*models.TaxRecord, index *MovementIndex, committedTax, committedMovements []bool) []*MatchPair {
	progress := logger.NewProgressTracker(e.log, "tier "+tier.String()+" scan", len(taxRecords), e.config.ProgressInterval)

	var pairs []*MatchPair
	for i, record := range taxRecords {
		progress.Increment()

		if committedTax[i] || !record.Matchable() {
			continue
		}

		best := e.selectCandidate(tier, record, index, committedMovements)
		if best < 0 {
			continue
		}

		movement := index.All[best]
		valueDiff := models.AmountDifference(record.Total, movement.Amount)
		dateDiff := models.DayDifference(record.IssueDate, movement.Date)

		pairs = append(pairs, &MatchPair{
			Tax:             record,
			Movement:        movement,
			Tier:            tier,
			ValueDifference: valueDiff,
			DateDifference:  dateDiff,
			Grade:           e.GradePair(valueDiff, dateDiff),
		})
		committedTax[i] = true
		committedMovements[best] = true
	}

	progress.Complete()
	return pairs
}

// selectCandidate returns the position of the best eligible movement for a
// tax record at the given tier, or -1. Candidates are ranked by the
// lexicographic minimum of (value difference, date difference); ties keep
// the first-seen candidate in input order.
func (e *Engine) selectCandidate(tier Tier, record *models.TaxRecord, index *MovementIndex, committedMovements []bool) int {
	var candidates []int
	switch tier {
	case TierSecondary:
		candidates = index.ThirdPartyCandidates(record.IssuerID, record.ReceiverID)
	default:
		candidates = index.DocumentCandidates(record.Folio)
	}

	best := -1
	var bestValue decimal.Decimal
	var bestDate int

	for _, pos := range candidates {
		if committedMovements[pos] {
			continue
		}

		movement := index.All[pos]
		if !movement.Matchable() {
			continue
		}

		valueDiff := models.AmountDifference(record.Total, movement.Amount)
		if valueDiff.GreaterThan(e.config.AmountTolerance) {
			continue
		}

		// The primary and secondary tiers require the same calendar day;
		// only the tertiary tier tolerates a date drift
		if tier != TierTertiary && !models.SameDay(record.IssueDate, movement.Date) {
			continue
		}
		dateDiff := models.DayDifference(record.IssueDate, movement.Date)

		if best < 0 || lessByDifference(valueDiff, dateDiff, bestValue, bestDate) {
			best = pos
			bestValue = valueDiff
			bestDate = dateDiff
		}
	}

	return best
}

// lessByDifference implements the lexicographic (value, date) ordering.
// Strict inequality keeps earlier candidates on ties.
func lessByDifference(value decimal.Decimal, date int, bestValue decimal.Decimal, bestDate int) bool {
	if !value.Equal(bestValue) {
		return value.LessThan(bestValue)
	}
	return date < bestDate
}
