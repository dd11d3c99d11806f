package config

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestCreateServiceConfigPresets(t *testing.T) {
	tests := []struct {
		preset    string
		tolerance string
	}{
		{"default", "10"},
		{"strict", "0.01"},
		{"relaxed", "100"},
	}

	for _, tt := range tests {
		t.Run(tt.preset, func(t *testing.T) {
			config := CreateServiceConfig(tt.preset, 0)
			if err := config.Validate(); err != nil {
				t.Fatalf("Preset %s should validate: %v", tt.preset, err)
			}
			expected := decimal.RequireFromString(tt.tolerance)
			if !config.Matching.AmountTolerance.Equal(expected) {
				t.Errorf("AmountTolerance = %s, want %s", config.Matching.AmountTolerance, expected)
			}
		})
	}
}

func TestCreateServiceConfigToleranceOverride(t *testing.T) {
	config := CreateServiceConfig("strict", 5.5)
	if !config.Matching.AmountTolerance.Equal(decimal.RequireFromString("5.5")) {
		t.Errorf("AmountTolerance = %s, want 5.5", config.Matching.AmountTolerance)
	}
}

func TestCreateLedgerParserConfig(t *testing.T) {
	config := CreateLedgerParserConfig(0)
	if config.MetadataRows != 0 {
		t.Errorf("MetadataRows = %d, want 0", config.MetadataRows)
	}
	if err := config.Validate(); err != nil {
		t.Errorf("Config should validate: %v", err)
	}
}
