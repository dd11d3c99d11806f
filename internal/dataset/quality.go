package dataset

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	apperrors "causacion-reconciler/pkg/errors"
	"causacion-reconciler/internal/models"
)

// ValidatorConfig holds the thresholds and penalties for quality scoring.
// The defaults reproduce the established scoring policy; they are exposed
// as configuration because they are policy, not structural law.
type ValidatorConfig struct {
	// CriticalMissingThresholdPercent is the missing-value share above
	// which a critical column is reported as critical-with-gaps
	CriticalMissingThresholdPercent float64 `json:"critical_missing_threshold_percent"`

	// PenaltyPerIssue is subtracted from 100 once per critical-field gap,
	// date violation and numeric violation
	PenaltyPerIssue float64 `json:"penalty_per_issue"`

	// AcceptableScore is the minimum score for IsAcceptable
	AcceptableScore float64 `json:"acceptable_score"`
}

// DefaultValidatorConfig returns the standard validation thresholds
func DefaultValidatorConfig() *ValidatorConfig {
	return &ValidatorConfig{
		CriticalMissingThresholdPercent: 50.0,
		PenaltyPerIssue:                 10.0,
		AcceptableScore:                 70.0,
	}
}

// Validate checks the validator configuration
func (c *ValidatorConfig) Validate() error {
	if c.CriticalMissingThresholdPercent < 0 || c.CriticalMissingThresholdPercent > 100 {
		return fmt.Errorf("critical missing threshold must be between 0 and 100: %f", c.CriticalMissingThresholdPercent)
	}
	if c.PenaltyPerIssue < 0 {
		return fmt.Errorf("penalty per issue cannot be negative: %f", c.PenaltyPerIssue)
	}
	if c.AcceptableScore < 0 || c.AcceptableScore > 100 {
		return fmt.Errorf("acceptable score must be between 0 and 100: %f", c.AcceptableScore)
	}
	return nil
}

// ColumnStats describes missing values in one column
type ColumnStats struct {
	MissingCount   int     `json:"missing_count"`
	MissingPercent float64 `json:"missing_percent"`
}

// QualityReport is the advisory outcome of validating one dataset
type QualityReport struct {
	Source        SourceKind             `json:"source"`
	TotalRows     int                    `json:"total_rows"`
	TotalColumns  int                    `json:"total_columns"`
	MissingValues map[string]ColumnStats `json:"missing_values"`

	// CriticalGaps lists critical columns whose missing share exceeds the
	// configured threshold
	CriticalGaps []string `json:"critical_gaps"`

	// DateFormatViolations and NumericFormatViolations count per-column
	// format problems in non-empty cells
	DateFormatViolations    map[string]int `json:"date_format_violations"`
	NumericFormatViolations map[string]int `json:"numeric_format_violations"`

	Score        float64 `json:"score"`
	IsAcceptable bool    `json:"is_acceptable"`
}

// TotalViolations returns the combined issue count behind the score
func (r *QualityReport) TotalViolations() int {
	total := len(r.CriticalGaps)
	for _, n := range r.DateFormatViolations {
		total += n
	}
	for _, n := range r.NumericFormatViolations {
		total += n
	}
	return total
}

// Validator scores the completeness and format quality of loaded datasets
type Validator struct {
	config *ValidatorConfig
}

// NewValidator creates a validator; a nil config selects the defaults
func NewValidator(config *ValidatorConfig) (*Validator, error) {
	if config == nil {
		config = DefaultValidatorConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CategoryConfiguration, apperrors.CodeInvalidConfig,
			"invalid validator configuration")
	}
	return &Validator{config: config}, nil
}

// Validate produces a QualityReport for one dataset. It fails only on the
// fatal conditions (nil/empty dataset, no document-role column); every
// other finding is advisory and lands in the report.
func (v *Validator) Validate(ds *Dataset) (*QualityReport, error) {
	if ds == nil {
		return nil, apperrors.New(apperrors.CategoryValidation, apperrors.CodeEmptyDataset,
			"dataset is missing")
	}

	source := SourceKind("unknown")
	if ds.Schema != nil {
		source = ds.Schema.Source
	}

	if len(ds.Rows) == 0 {
		return nil, apperrors.NewEmptyDatasetError(string(source))
	}

	if !ds.Schema.HasRole(RoleDocument) {
		return nil, apperrors.NewMissingKeyColumnError(string(source), string(RoleDocument))
	}

	report := &QualityReport{
		Source:                  source,
		TotalRows:               len(ds.Rows),
		TotalColumns:            len(ds.Columns),
		MissingValues:           make(map[string]ColumnStats),
		DateFormatViolations:    make(map[string]int),
		NumericFormatViolations: make(map[string]int),
	}

	for colIdx, col := range ds.Columns {
		stats := v.missingStats(ds, colIdx)
		report.MissingValues[col] = stats

		role := ds.Schema.RoleOf(col)
		if role.IsCritical() && stats.MissingPercent > v.config.CriticalMissingThresholdPercent {
			report.CriticalGaps = append(report.CriticalGaps,
				fmt.Sprintf("column '%s' has %.1f%% missing values", col, stats.MissingPercent))
		}

		switch role {
		case RoleDate:
			if n := v.countDateViolations(ds, colIdx); n > 0 {
				report.DateFormatViolations[col] = n
			}
		case RoleAmount:
			if n := v.countNumericViolations(ds, colIdx); n > 0 {
				report.NumericFormatViolations[col] = n
			}
		}
	}

	v.checkSplitDates(ds, report)

	report.Score = v.score(report)
	report.IsAcceptable = report.Score >= v.config.AcceptableScore

	return report, nil
}

// missingStats counts placeholder cells in one column
func (v *Validator) missingStats(ds *Dataset, colIdx int) ColumnStats {
	missing := 0
	for row := range ds.Rows {
		if models.IsPlaceholder(ds.Value(row, colIdx)) {
			missing++
		}
	}

	percent := 0.0
	if len(ds.Rows) > 0 {
		percent = float64(missing) / float64(len(ds.Rows)) * 100
	}

	return ColumnStats{MissingCount: missing, MissingPercent: percent}
}

// checkSplitDates validates datasets whose date ships as separate year,
// month and day columns: every row with at least one non-empty component
// must combine into a valid calendar date. Failures count as date-format
// violations under the joined column names.
func (v *Validator) checkSplitDates(ds *Dataset, report *QualityReport) {
	yearCols := ds.ColumnsWithRole(RoleYear)
	monthCols := ds.ColumnsWithRole(RoleMonth)
	dayCols := ds.ColumnsWithRole(RoleDay)
	if len(yearCols) == 0 || len(monthCols) == 0 || len(dayCols) == 0 {
		return
	}

	yearIdx, _ := ds.ColumnIndex(yearCols[0])
	monthIdx, _ := ds.ColumnIndex(monthCols[0])
	dayIdx, _ := ds.ColumnIndex(dayCols[0])

	violations := 0
	for row := range ds.Rows {
		yearCell := ds.Value(row, yearIdx)
		monthCell := ds.Value(row, monthIdx)
		dayCell := ds.Value(row, dayIdx)
		if models.IsPlaceholder(yearCell) && models.IsPlaceholder(monthCell) && models.IsPlaceholder(dayCell) {
			continue
		}

		year, okY := parseDateComponent(yearCell)
		month, okM := parseDateComponent(monthCell)
		day, okD := parseDateComponent(dayCell)
		if !okY || !okM || !okD {
			violations++
			continue
		}
		if _, err := models.CombineDateParts(year, month, day); err != nil {
			violations++
		}
	}

	if violations > 0 {
		key := yearCols[0] + "/" + monthCols[0] + "/" + dayCols[0]
		report.DateFormatViolations[key] = violations
	}
}

// parseDateComponent reads one year/month/day cell, tolerating the ".0"
// suffix spreadsheet exports add to numeric cells
func parseDateComponent(cell string) (int, bool) {
	if models.IsPlaceholder(cell) {
		return 0, false
	}
	cell = strings.TrimSuffix(strings.TrimSpace(cell), ".0")
	n, err := strconv.Atoi(cell)
	if err != nil {
		return 0, false
	}
	return n, true
}

// countDateViolations counts non-empty cells that do not parse as a
// calendar date with day-before-month inference
func (v *Validator) countDateViolations(ds *Dataset, colIdx int) int {
	violations := 0
	for row := range ds.Rows {
		cell := ds.Value(row, colIdx)
		if models.IsPlaceholder(cell) {
			continue
		}
		if _, err := models.ParseDateDayFirst(cell); err != nil {
			violations++
		}
	}
	return violations
}

// countNumericViolations counts non-empty cells that are infinite,
// unparseable, or beyond the capture-error magnitude bound
func (v *Validator) countNumericViolations(ds *Dataset, colIdx int) int {
	violations := 0
	for row := range ds.Rows {
		cell := ds.Value(row, colIdx)
		if models.IsPlaceholder(cell) {
			continue
		}

		lower := strings.ToLower(strings.TrimSpace(cell))
		if lower == "inf" || lower == "+inf" || lower == "-inf" || lower == "infinity" {
			violations++
			continue
		}

		d, err := models.ParseDecimalFromString(cell)
		if err != nil {
			violations++
			continue
		}
		if d.Abs().GreaterThan(models.MaxReasonableAmount) {
			violations++
		}
	}
	return violations
}

// score applies the penalty formula: 100 minus a fixed penalty per issue,
// clamped to [0, 100]. More violations never increase the score.
func (v *Validator) score(report *QualityReport) float64 {
	score := 100.0 - float64(report.TotalViolations())*v.config.PenaltyPerIssue
	return math.Max(0, math.Min(100, score))
}
