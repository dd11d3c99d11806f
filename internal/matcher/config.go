// Package matcher implements the tiered matching cascade that pairs DIAN
// tax records with accounting ledger movements.
//
// Matching runs as a strict-priority cascade:
//  1. primary: folio equals document number, same calendar date, amounts
//     within tolerance
//  2. secondary: issuer or receiver tax ID equals the movement's third
//     party, amounts within tolerance, same calendar date
//  3. tertiary: folio equals document number, amounts within tolerance,
//     date ignored
//
// A record committed at one tier is permanently removed from the candidate
// pool of later tiers; matching is one-to-one and deterministic for a fixed
// input order. Realized pairs are graded by value and date deviation, and
// leftover records receive ranked non-match reasons.
package matcher

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Tier identifies the cascade stage at which a pair was found
type Tier int

const (
	// TierPrimary matches on document key, date and amount together
	TierPrimary Tier = iota

	// TierSecondary recovers pairs through the counterparty tax ID when
	// the document key diverges
	TierSecondary

	// TierTertiary matches on document key and amount, ignoring the date,
	// to catch date-entry discrepancies
	TierTertiary
)

// String returns the string representation of Tier
func (t Tier) String() string {
	switch t {
	case TierPrimary:
		return "primary"
	case TierSecondary:
		return "secondary"
	case TierTertiary:
		return "tertiary"
	default:
		return "unknown"
	}
}

// Grade classifies how closely a realized pair's amounts and dates agree
type Grade int

const (
	// GradePerfect: value delta within rounding tolerance, same date
	GradePerfect Grade = iota

	// GradeGood: value delta within one unit, dates within one day
	GradeGood

	// GradeFair: value delta within ten units, dates within one week
	GradeFair

	// GradeNeedsReview: everything else; grading never rejects a pair
	GradeNeedsReview
)

// String returns the string representation of Grade
func (g Grade) String() string {
	switch g {
	case GradePerfect:
		return "Perfect"
	case GradeGood:
		return "Good"
	case GradeFair:
		return "Fair"
	case GradeNeedsReview:
		return "NeedsReview"
	default:
		return "Unknown"
	}
}

// GradeBound is one row of the grade threshold table: both bounds are
// inclusive and both must hold for the grade to apply
type GradeBound struct {
	MaxValueDifference decimal.Decimal `json:"max_value_difference"`
	MaxDateDifference  int             `json:"max_date_difference"`
}

// Config holds the tolerances of the matching cascade and the grade
// threshold table. The defaults reproduce the established policy exactly;
// Strict and Relaxed variants exist for exploratory runs.
type Config struct {
	// AmountTolerance is the inclusive monetary tolerance used by every
	// tier's amount comparison. The default equals the widest grade bound:
	// two records farther apart than the Fair threshold are not considered
	// the same economic event, while anything inside it pairs and lets the
	// grade express how far off it is.
	AmountTolerance decimal.Decimal `json:"amount_tolerance"`

	// PerfectBound, GoodBound and FairBound are evaluated in order; a pair
	// failing all three is graded NeedsReview
	PerfectBound GradeBound `json:"perfect_bound"`
	GoodBound    GradeBound `json:"good_bound"`
	FairBound    GradeBound `json:"fair_bound"`

	// ProgressInterval is the record interval for progress logging during
	// tier scans; zero disables intermediate progress lines
	ProgressInterval int `json:"progress_interval"`
}

// DefaultConfig returns the standard matching configuration
func DefaultConfig() *Config {
	return &Config{
		AmountTolerance: decimal.NewFromFloat(10.0),
		PerfectBound: GradeBound{
			MaxValueDifference: decimal.NewFromFloat(0.01),
			MaxDateDifference:  0,
		},
		GoodBound: GradeBound{
			MaxValueDifference: decimal.NewFromFloat(1.0),
			MaxDateDifference:  1,
		},
		FairBound: GradeBound{
			MaxValueDifference: decimal.NewFromFloat(10.0),
			MaxDateDifference:  7,
		},
		ProgressInterval: 100,
	}
}

// StrictConfig returns a configuration that pairs only on rounding-level
// amount agreement
func StrictConfig() *Config {
	config := DefaultConfig()
	config.AmountTolerance = decimal.NewFromFloat(0.01)
	return config
}

// RelaxedConfig returns a configuration with a wider amount tolerance for
// exploratory matching
func RelaxedConfig() *Config {
	config := DefaultConfig()
	config.AmountTolerance = decimal.NewFromFloat(100.0)
	return config
}

// Validate checks that the configuration is internally consistent
func (c *Config) Validate() error {
	if c.AmountTolerance.IsNegative() {
		return fmt.Errorf("amount tolerance cannot be negative: %s", c.AmountTolerance)
	}

	bounds := []struct {
		name  string
		bound GradeBound
	}{
		{"perfect", c.PerfectBound},
		{"good", c.GoodBound},
		{"fair", c.FairBound},
	}
	for _, b := range bounds {
		if b.bound.MaxValueDifference.IsNegative() {
			return fmt.Errorf("%s bound value difference cannot be negative: %s", b.name, b.bound.MaxValueDifference)
		}
		if b.bound.MaxDateDifference < 0 {
			return fmt.Errorf("%s bound date difference cannot be negative: %d", b.name, b.bound.MaxDateDifference)
		}
	}

	// The table must widen monotonically or grading loses its meaning
	if c.GoodBound.MaxValueDifference.LessThan(c.PerfectBound.MaxValueDifference) ||
		c.FairBound.MaxValueDifference.LessThan(c.GoodBound.MaxValueDifference) {
		return fmt.Errorf("grade value bounds must be non-decreasing")
	}
	if c.GoodBound.MaxDateDifference < c.PerfectBound.MaxDateDifference ||
		c.FairBound.MaxDateDifference < c.GoodBound.MaxDateDifference {
		return fmt.Errorf("grade date bounds must be non-decreasing")
	}

	if c.ProgressInterval < 0 {
		return fmt.Errorf("progress interval cannot be negative: %d", c.ProgressInterval)
	}

	return nil
}

// Clone creates a copy of the configuration
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}

// String returns a human-readable description of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{AmountTolerance: %s, Perfect: (%s, %dd), Good: (%s, %dd), Fair: (%s, %dd)}",
		c.AmountTolerance,
		c.PerfectBound.MaxValueDifference, c.PerfectBound.MaxDateDifference,
		c.GoodBound.MaxValueDifference, c.GoodBound.MaxDateDifference,
		c.FairBound.MaxValueDifference, c.FairBound.MaxDateDifference)
}
