// Package reporter renders reconciliation results for review: console
// output for terminal runs, JSON for downstream tooling, CSV for
// spreadsheet work, and a styled Excel workbook for accountants.
package reporter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"causacion-reconciler/internal/matcher"
	"causacion-reconciler/internal/reconciler"
)

// OutputFormat selects the rendering of a report
type OutputFormat string

const (
	FormatConsole OutputFormat = "console"
	FormatJSON    OutputFormat = "json"
	FormatCSV     OutputFormat = "csv"
	FormatExcel   OutputFormat = "excel"
)

// IsValid checks whether the format is supported
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatConsole, FormatJSON, FormatCSV, FormatExcel:
		return true
	default:
		return false
	}
}

// ReportConfig holds report generation options
type ReportConfig struct {
	Format OutputFormat `json:"format"`

	IncludeMatches   bool `json:"include_matches"`
	IncludeUnmatched bool `json:"include_unmatched"`
	IncludeQuality   bool `json:"include_quality"`

	CSVDelimiter rune `json:"csv_delimiter"`
	CSVHeaders   bool `json:"csv_headers"`
}

// DefaultReportConfig returns the standard options
func DefaultReportConfig() *ReportConfig {
	return &ReportConfig{
		Format:           FormatConsole,
		IncludeMatches:   true,
		IncludeUnmatched: true,
		IncludeQuality:   true,
		CSVDelimiter:     ',',
		CSVHeaders:       true,
	}
}

// Validate validates the report configuration
func (c *ReportConfig) Validate() error {
	if !c.Format.IsValid() {
		return fmt.Errorf("invalid output format: %s", c.Format)
	}
	return nil
}

// ReportGenerator renders reconciliation results
type ReportGenerator struct {
	config *ReportConfig
}

// NewReportGenerator creates a generator; a nil config selects the
// defaults
func NewReportGenerator(config *ReportConfig) (*ReportGenerator, error) {
	if config == nil {
		config = DefaultReportConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid report configuration: %w", err)
	}
	return &ReportGenerator{config: config}, nil
}

// GenerateReport writes the result in the configured format. The Excel
// format writes a binary workbook and is valid for file-backed writers.
func (rg *ReportGenerator) GenerateReport(result *reconciler.Result, writer io.Writer) error {
	if result == nil {
		return fmt.Errorf("reconciliation result cannot be nil")
	}

	switch rg.config.Format {
	case FormatConsole:
		return rg.generateConsoleReport(result, writer)
	case FormatJSON:
		return rg.generateJSONReport(result, writer)
	case FormatCSV:
		return rg.generateCSVReport(result, writer)
	case FormatExcel:
		return rg.generateExcelReport(result, writer)
	default:
		return fmt.Errorf("unsupported output format: %s", rg.config.Format)
	}
}

func (rg *ReportGenerator) generateConsoleReport(result *reconciler.Result, writer io.Writer) error {
	summary := result.Summary

	fmt.Fprintf(writer, "CAUSACION RECONCILIATION REPORT\n")
	fmt.Fprintf(writer, "Generated: %s\n\n", result.ProcessedAt.Format(time.RFC3339))

	fmt.Fprintf(writer, "=== SUMMARY ===\n")
	fmt.Fprintf(writer, "Tax records:      %d\n", summary.TotalTaxRecords)
	fmt.Fprintf(writer, "Ledger movements: %d\n", summary.TotalMovements)
	fmt.Fprintf(writer, "Matched pairs:    %d (%.1f%% of all records)\n", summary.MatchedPairs, summary.MatchRatePercent)
	fmt.Fprintf(writer, "Unmatched tax:    %d\n", summary.UnmatchedTax)
	fmt.Fprintf(writer, "Unmatched ledger: %d\n\n", summary.UnmatchedLedger)

	fmt.Fprintf(writer, "=== MATCH BREAKDOWN ===\n")
	fmt.Fprintf(writer, "By tier:\n")
	for _, tier := range []string{"primary", "secondary", "tertiary"} {
		fmt.Fprintf(writer, "  %-10s %d\n", tier+":", summary.TierCounts[tier])
	}
	fmt.Fprintf(writer, "By grade:\n")
	for _, grade := range []string{"Perfect", "Good", "Fair", "NeedsReview"} {
		fmt.Fprintf(writer, "  %-12s %d\n", grade+":", summary.GradeCounts[grade])
	}
	fmt.Fprintf(writer, "Pairs with value deviation: %d\n", summary.PairsWithValueDeviation)
	fmt.Fprintf(writer, "Pairs with date deviation:  %d\n\n", summary.PairsWithDateDeviation)

	fmt.Fprintf(writer, "=== FINANCIAL SUMMARY ===\n")
	fmt.Fprintf(writer, "Matched tax amount:      %s\n", summary.MatchedTaxAmount.StringFixed(2))
	fmt.Fprintf(writer, "Unmatched tax amount:    %s\n", summary.UnmatchedTaxAmount.StringFixed(2))
	fmt.Fprintf(writer, "Matched ledger amount:   %s\n", summary.MatchedLedgerAmount.StringFixed(2))
	fmt.Fprintf(writer, "Unmatched ledger amount: %s\n", summary.UnmatchedLedgerAmount.StringFixed(2))
	fmt.Fprintf(writer, "Total value difference:  %s\n\n", summary.TotalValueDifference.StringFixed(2))

	if rg.config.IncludeQuality {
		fmt.Fprintf(writer, "=== DATA QUALITY ===\n")
		fmt.Fprintf(writer, "Tax dataset:    %.1f/100 (acceptable: %t)\n", result.TaxReport.Score, result.TaxReport.IsAcceptable)
		fmt.Fprintf(writer, "Ledger dataset: %.1f/100 (acceptable: %t)\n\n", result.LedgerReport.Score, result.LedgerReport.IsAcceptable)
	}

	if rg.config.IncludeUnmatched && len(result.Unmatched) > 0 {
		fmt.Fprintf(writer, "=== UNMATCHED RECORDS ===\n")
		for _, record := range result.Unmatched {
			fmt.Fprintf(writer, "  [%s] %s: %s\n", record.Side, unmatchedKey(record), joinReasons(record.Reasons))
		}
		fmt.Fprintf(writer, "\n")
	}

	fmt.Fprintf(writer, "=== OVERALL ===\n")
	fmt.Fprintf(writer, "Score: %.1f/100 (%s)\n", summary.OverallScore, summary.OverallLabel)

	return nil
}

func (rg *ReportGenerator) generateJSONReport(result *reconciler.Result, writer io.Writer) error {
	filtered := *result
	if !rg.config.IncludeMatches {
		filtered.Pairs = nil
	}
	if !rg.config.IncludeUnmatched {
		filtered.Unmatched = nil
	}

	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(&filtered)
}

func (rg *ReportGenerator) generateCSVReport(result *reconciler.Result, writer io.Writer) error {
	csvWriter := csv.NewWriter(writer)
	csvWriter.Comma = rg.config.CSVDelimiter
	defer csvWriter.Flush()

	if rg.config.CSVHeaders {
		headers := []string{
			"Type", "Folio", "Document_Number", "Tax_Total", "Ledger_Amount",
			"Tax_Date", "Ledger_Date", "Tier", "Grade",
			"Value_Difference", "Date_Difference", "Reasons",
		}
		if err := csvWriter.Write(headers); err != nil {
			return fmt.Errorf("failed to write CSV headers: %w", err)
		}
	}

	if rg.config.IncludeMatches {
		for _, pair := range result.Pairs {
			record := []string{
				"Matched",
				pair.Tax.Folio,
				pair.Movement.DocumentNumber,
				pair.Tax.Total.StringFixed(2),
				pair.Movement.Amount.StringFixed(2),
				pair.Tax.IssueDate.Format("2006-01-02"),
				pair.Movement.Date.Format("2006-01-02"),
				pair.Tier.String(),
				pair.Grade.String(),
				pair.ValueDifference.StringFixed(2),
				strconv.Itoa(pair.DateDifference),
				"",
			}
			if err := csvWriter.Write(record); err != nil {
				return fmt.Errorf("failed to write matched record: %w", err)
			}
		}
	}

	if rg.config.IncludeUnmatched {
		for _, unmatched := range result.Unmatched {
			record := rg.unmatchedCSVRecord(unmatched)
			if err := csvWriter.Write(record); err != nil {
				return fmt.Errorf("failed to write unmatched record: %w", err)
			}
		}
	}

	return csvWriter.Error()
}

func (rg *ReportGenerator) unmatchedCSVRecord(unmatched *matcher.UnmatchedRecord) []string {
	record := []string{
		"Unmatched", "", "", "", "", "", "", "", "", "", "",
		joinReasons(unmatched.Reasons),
	}

	if unmatched.Tax != nil {
		record[1] = unmatched.Tax.Folio
		record[3] = unmatched.Tax.Total.StringFixed(2)
		if !unmatched.Tax.IssueDate.IsZero() {
			record[5] = unmatched.Tax.IssueDate.Format("2006-01-02")
		}
	}
	if unmatched.Movement != nil {
		record[2] = unmatched.Movement.DocumentNumber
		record[4] = unmatched.Movement.Amount.StringFixed(2)
		if !unmatched.Movement.Date.IsZero() {
			record[6] = unmatched.Movement.Date.Format("2006-01-02")
		}
	}

	return record
}

func unmatchedKey(record *matcher.UnmatchedRecord) string {
	switch {
	case record.Tax != nil && record.Tax.Folio != "":
		return record.Tax.Folio
	case record.Movement != nil && record.Movement.DocumentNumber != "":
		return record.Movement.DocumentNumber
	default:
		return "(no key)"
	}
}

func joinReasons(reasons []matcher.Reason) string {
	parts := make([]string, len(reasons))
	for i, reason := range reasons {
		parts[i] = string(reason)
	}
	return strings.Join(parts, "; ")
}
