package reporter

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"causacion-reconciler/internal/matcher"
	"causacion-reconciler/internal/reconciler"
)

const (
	sheetMatches   = "Matches"
	sheetUnmatched = "Unmatched"
	sheetSummary   = "Summary"
)

// Fill colors for the grade column, one per grade
var gradeFillColors = map[matcher.Grade]string{
	matcher.GradePerfect:     "C6EFCE",
	matcher.GradeGood:        "DDEBF7",
	matcher.GradeFair:        "FFEB9C",
	matcher.GradeNeedsReview: "FFC7CE",
}

// generateExcelReport renders the result as a styled workbook with one
// sheet per concern and data-validation rules on the amount and date
// columns so manual corrections stay within plausible ranges
func (rg *ReportGenerator) generateExcelReport(result *reconciler.Result, writer io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := rg.writeMatchesSheet(f, result); err != nil {
		return err
	}
	if err := rg.writeUnmatchedSheet(f, result); err != nil {
		return err
	}
	if err := rg.writeSummarySheet(f, result); err != nil {
		return err
	}

	// Drop the default sheet and present Summary first
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to remove default sheet: %w", err)
	}
	index, err := f.GetSheetIndex(sheetSummary)
	if err != nil {
		return fmt.Errorf("failed to locate summary sheet: %w", err)
	}
	f.SetActiveSheet(index)

	if err := f.Write(writer); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func headerStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"4472C4"}},
	})
}

func (rg *ReportGenerator) writeMatchesSheet(f *excelize.File, result *reconciler.Result) error {
	if _, err := f.NewSheet(sheetMatches); err != nil {
		return fmt.Errorf("failed to create matches sheet: %w", err)
	}

	headers := []string{
		"Folio", "Document Number", "Tax Total", "Ledger Amount",
		"Tax Date", "Ledger Date", "Tier", "Grade", "Value Difference", "Date Difference",
	}
	if err := writeHeaderRow(f, sheetMatches, headers); err != nil {
		return err
	}

	gradeStyles := make(map[matcher.Grade]int)
	for grade, color := range gradeFillColors {
		style, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}},
		})
		if err != nil {
			return fmt.Errorf("failed to create grade style: %w", err)
		}
		gradeStyles[grade] = style
	}

	for i, pair := range result.Pairs {
		row := i + 2
		values := []interface{}{
			pair.Tax.Folio,
			pair.Movement.DocumentNumber,
			pair.Tax.Total.InexactFloat64(),
			pair.Movement.Amount.InexactFloat64(),
			pair.Tax.IssueDate.Format("2006-01-02"),
			pair.Movement.Date.Format("2006-01-02"),
			pair.Tier.String(),
			pair.Grade.String(),
			pair.ValueDifference.InexactFloat64(),
			pair.DateDifference,
		}
		if err := writeRow(f, sheetMatches, row, values); err != nil {
			return err
		}

		cell, err := excelize.CoordinatesToCellName(8, row)
		if err != nil {
			return fmt.Errorf("failed to build cell name: %w", err)
		}
		if err := f.SetCellStyle(sheetMatches, cell, cell, gradeStyles[pair.Grade]); err != nil {
			return fmt.Errorf("failed to style grade cell: %w", err)
		}
	}

	return rg.addValidationRules(f, sheetMatches, len(result.Pairs))
}

// addValidationRules constrains the amount columns to non-negative values
// and the date columns to the supported calendar range
func (rg *ReportGenerator) addValidationRules(f *excelize.File, sheet string, rows int) error {
	if rows == 0 {
		return nil
	}
	lastRow := rows + 1

	amountValidation := excelize.NewDataValidation(true)
	amountValidation.Sqref = fmt.Sprintf("C2:D%d", lastRow)
	if err := amountValidation.SetRange(0.0, 1e12, excelize.DataValidationTypeDecimal, excelize.DataValidationOperatorBetween); err != nil {
		return fmt.Errorf("failed to configure amount validation: %w", err)
	}
	amountValidation.SetError(excelize.DataValidationErrorStyleStop, "Invalid amount", "Amounts must lie between 0 and 1e12")
	if err := f.AddDataValidation(sheet, amountValidation); err != nil {
		return fmt.Errorf("failed to add amount validation: %w", err)
	}

	dateValidation := excelize.NewDataValidation(true)
	dateValidation.Sqref = fmt.Sprintf("E2:F%d", lastRow)
	if err := dateValidation.SetRange("DATE(1900,1,1)", "DATE(2100,12,31)", excelize.DataValidationTypeDate, excelize.DataValidationOperatorBetween); err != nil {
		return fmt.Errorf("failed to configure date validation: %w", err)
	}
	dateValidation.SetError(excelize.DataValidationErrorStyleStop, "Invalid date", "Dates must lie between 1900 and 2100")
	if err := f.AddDataValidation(sheet, dateValidation); err != nil {
		return fmt.Errorf("failed to add date validation: %w", err)
	}

	return nil
}

func (rg *ReportGenerator) writeUnmatchedSheet(f *excelize.File, result *reconciler.Result) error {
	if _, err := f.NewSheet(sheetUnmatched); err != nil {
		return fmt.Errorf("failed to create unmatched sheet: %w", err)
	}

	headers := []string{"Side", "Key", "Amount", "Date", "Reasons"}
	if err := writeHeaderRow(f, sheetUnmatched, headers); err != nil {
		return err
	}

	for i, unmatched := range result.Unmatched {
		var amount, date string
		if unmatched.Tax != nil {
			amount = unmatched.Tax.Total.StringFixed(2)
			if !unmatched.Tax.IssueDate.IsZero() {
				date = unmatched.Tax.IssueDate.Format("2006-01-02")
			}
		}
		if unmatched.Movement != nil {
			amount = unmatched.Movement.Amount.StringFixed(2)
			if !unmatched.Movement.Date.IsZero() {
				date = unmatched.Movement.Date.Format("2006-01-02")
			}
		}

		values := []interface{}{
			string(unmatched.Side),
			unmatchedKey(unmatched),
			amount,
			date,
			joinReasons(unmatched.Reasons),
		}
		if err := writeRow(f, sheetUnmatched, i+2, values); err != nil {
			return err
		}
	}

	return nil
}

func (rg *ReportGenerator) writeSummarySheet(f *excelize.File, result *reconciler.Result) error {
	if _, err := f.NewSheet(sheetSummary); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}

	summary := result.Summary
	rows := [][]interface{}{
		{"Metric", "Value"},
		{"Tax records", summary.TotalTaxRecords},
		{"Ledger movements", summary.TotalMovements},
		{"Matched pairs", summary.MatchedPairs},
		{"Match rate (%)", summary.MatchRatePercent},
		{"Unmatched tax", summary.UnmatchedTax},
		{"Unmatched ledger", summary.UnmatchedLedger},
		{"Primary-tier pairs", summary.TierCounts["primary"]},
		{"Secondary-tier pairs", summary.TierCounts["secondary"]},
		{"Tertiary-tier pairs", summary.TierCounts["tertiary"]},
		{"Perfect pairs", summary.GradeCounts["Perfect"]},
		{"Good pairs", summary.GradeCounts["Good"]},
		{"Fair pairs", summary.GradeCounts["Fair"]},
		{"NeedsReview pairs", summary.GradeCounts["NeedsReview"]},
		{"Matched tax amount", summary.MatchedTaxAmount.InexactFloat64()},
		{"Unmatched tax amount", summary.UnmatchedTaxAmount.InexactFloat64()},
		{"Matched ledger amount", summary.MatchedLedgerAmount.InexactFloat64()},
		{"Unmatched ledger amount", summary.UnmatchedLedgerAmount.InexactFloat64()},
		{"Total value difference", summary.TotalValueDifference.InexactFloat64()},
		{"Tax data quality", result.TaxReport.Score},
		{"Ledger data quality", result.LedgerReport.Score},
		{"Overall score", summary.OverallScore},
		{"Overall label", summary.OverallLabel},
	}

	for i, row := range rows {
		if err := writeRow(f, sheetSummary, i+1, row); err != nil {
			return err
		}
	}

	style, err := headerStyle(f)
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	if err := f.SetCellStyle(sheetSummary, "A1", "B1", style); err != nil {
		return fmt.Errorf("failed to style summary header: %w", err)
	}
	return nil
}

func writeHeaderRow(f *excelize.File, sheet string, headers []string) error {
	values := make([]interface{}, len(headers))
	for i, h := range headers {
		values[i] = h
	}
	if err := writeRow(f, sheet, 1, values); err != nil {
		return err
	}

	style, err := headerStyle(f)
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return fmt.Errorf("failed to build cell name: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return fmt.Errorf("failed to style header row: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("failed to build cell name: %w", err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d on %s: %w", row, sheet, err)
	}
	return nil
}
