// Package config assembles the parser and service configurations the CLI
// passes into the engine, starting from the package defaults and applying
// flag overrides.
package config

import (
	"github.com/shopspring/decimal"

	"causacion-reconciler/internal/matcher"
	"causacion-reconciler/internal/parsers"
	"causacion-reconciler/internal/reconciler"
)

// CreateTaxParserConfig returns the DIAN parser configuration
func CreateTaxParserConfig() *parsers.TaxParserConfig {
	return parsers.DefaultTaxParserConfig()
}

// CreateLedgerParserConfig returns the contable parser configuration with
// the flag-selected banner row count
func CreateLedgerParserConfig(metadataRows int) *parsers.LedgerParserConfig {
	config := parsers.DefaultLedgerParserConfig()
	config.MetadataRows = metadataRows
	return config
}

// CreateServiceConfig builds the run configuration from a preset name and
// an optional tolerance override. A zero tolerance keeps the preset's
// value.
func CreateServiceConfig(preset string, amountTolerance float64) *reconciler.Config {
	config := reconciler.DefaultConfig()

	switch preset {
	case "strict":
		config.Matching = matcher.StrictConfig()
	case "relaxed":
		config.Matching = matcher.RelaxedConfig()
	}

	if amountTolerance > 0 {
		config.Matching.AmountTolerance = decimal.NewFromFloat(amountTolerance)
	}

	return config
}
