package parsers

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"causacion-reconciler/internal/dataset"
	"causacion-reconciler/internal/models"
	apperrors "causacion-reconciler/pkg/errors"
	"causacion-reconciler/pkg/logger"
)

// LedgerSource is one loaded contable export
type LedgerSource struct {
	Dataset   *dataset.Dataset
	Movements []*models.LedgerMovement
	Stats     *ParseStats
}

// LedgerParser loads accounting ledger (contable) exports. These files
// carry a few report-banner rows before the header and split each
// movement's amount across debit and credit columns.
type LedgerParser struct {
	config *LedgerParserConfig
	log    logger.Logger
}

// NewLedgerParser creates a contable parser; a nil config selects the
// defaults
func NewLedgerParser(config *LedgerParserConfig) (*LedgerParser, error) {
	if config == nil {
		config = DefaultLedgerParserConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CategoryConfiguration, apperrors.CodeInvalidConfig,
			"invalid ledger parser configuration")
	}

	return &LedgerParser{
		config: config,
		log:    logger.GetGlobalLogger().WithComponent("ledger_parser"),
	}, nil
}

// ledgerColumns holds the resolved positions of one export
type ledgerColumns struct {
	document, account, debit, credit, year, month, day, thirdParty, nature int
}

// ParseFile loads a contable export: skips the configured banner rows,
// resolves the header by alias with positional fallback, and builds one
// movement per data row. Amounts are rounded to 2 decimals; a nonzero
// debit wins over the credit column for the movement's value and nature.
func (p *LedgerParser) ParseFile(path string) (*LedgerSource, error) {
	rows, err := readTable(path, p.log)
	if err != nil {
		return nil, err
	}
	if len(rows) <= p.config.MetadataRows {
		return nil, apperrors.NewEmptyDatasetError(path)
	}

	rows = rows[p.config.MetadataRows:]
	headers := rows[0]
	cols, schema, err := p.resolveColumns(path, headers)
	if err != nil {
		return nil, err
	}

	stats := &ParseStats{TotalRows: len(rows) - 1}
	source := &LedgerSource{
		Dataset: &dataset.Dataset{
			Name:    path,
			Schema:  schema,
			Columns: trimmedHeaders(headers),
		},
		Stats: stats,
	}

	for _, row := range rows[1:] {
		if isEmptyRow(row) {
			stats.SkippedRows++
			continue
		}

		normalized := make([]string, len(headers))
		for i := range headers {
			normalized[i] = normalizeCell(cellAt(row, i))
		}
		source.Dataset.Rows = append(source.Dataset.Rows, normalized)

		movement := &models.LedgerMovement{
			DocumentNumber: valueAt(normalized, cols.document),
			Account:        valueAt(normalized, cols.account),
			ThirdPartyID:   valueAt(normalized, cols.thirdParty),
		}

		p.fillAmount(movement, normalized, cols, stats)
		p.fillDate(movement, normalized, cols, stats)

		source.Movements = append(source.Movements, movement)
		stats.LoadedRecords++
	}

	if len(source.Movements) == 0 {
		return nil, apperrors.NewEmptyDatasetError(path)
	}

	p.log.WithFields(logger.Fields{
		"file":      path,
		"movements": stats.LoadedRecords,
		"skipped":   stats.SkippedRows,
		"errors":    stats.ParseErrors,
	}).Info("Contable export loaded")

	return source, nil
}

// fillAmount resolves the movement's value from the debit and credit
// columns. Non-finite tokens are treated as missing. When the export
// carries an explicit nature column its value overrides the nature
// derived from which amount column is populated.
func (p *LedgerParser) fillAmount(movement *models.LedgerMovement, cells []string, cols *ledgerColumns, stats *ParseStats) {
	debit := p.parseAmount(valueAt(cells, cols.debit), stats)
	credit := p.parseAmount(valueAt(cells, cols.credit), stats)

	switch {
	case !debit.IsZero():
		movement.Amount = debit.Round(2)
		movement.Nature = models.NatureDebit
	case !credit.IsZero():
		movement.Amount = credit.Round(2)
		movement.Nature = models.NatureCredit
	default:
		movement.Amount = decimal.Zero
		movement.Nature = models.NatureDebit
	}

	if raw := valueAt(cells, cols.nature); raw != "" {
		nature, err := models.ParseMovementNature(raw)
		if err != nil {
			stats.ParseErrors++
			return
		}
		movement.Nature = nature
	}
}

func (p *LedgerParser) parseAmount(raw string, stats *ParseStats) decimal.Decimal {
	if raw == "" || isInfiniteToken(raw) {
		return decimal.Zero
	}
	amount, err := models.ParseDecimalFromString(raw)
	if err != nil {
		stats.ParseErrors++
		return decimal.Zero
	}
	return amount
}

// fillDate combines the year, month and day columns into the movement's
// date. Failed combinations leave the date zero, keeping the movement
// visible but unmatchable.
func (p *LedgerParser) fillDate(movement *models.LedgerMovement, cells []string, cols *ledgerColumns, stats *ParseStats) {
	year, okY := parseDatePart(valueAt(cells, cols.year))
	month, okM := parseDatePart(valueAt(cells, cols.month))
	day, okD := parseDatePart(valueAt(cells, cols.day))
	if !okY || !okM || !okD {
		stats.ParseErrors++
		return
	}

	movement.Year, movement.Month, movement.Day = year, month, day
	date, err := models.CombineDateParts(year, month, day)
	if err != nil {
		stats.ParseErrors++
		return
	}
	movement.Date = date
}

// parseDatePart reads a year/month/day cell, tolerating the zero-padded
// and decimal-suffixed forms spreadsheets produce
func parseDatePart(raw string) (int, bool) {
	if raw == "" {
		return 0, false
	}
	raw = strings.TrimSuffix(raw, ".0")
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, false
	}
	return n, true
}

func isInfiniteToken(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "inf", "+inf", "-inf", "infinity", "-infinity":
		return true
	}
	return false
}

// resolveColumns maps aliases to positions, falling back to the
// configured fixed positions for headerless exports. Only the document
// column is mandatory.
func (p *LedgerParser) resolveColumns(path string, headers []string) (*ledgerColumns, *dataset.Schema, error) {
	roles := make(map[string]dataset.Role)

	resolve := func(aliases []string, fallback int, role dataset.Role) int {
		if pos, ok := findColumn(headers, aliases); ok {
			if role != dataset.RoleOther {
				roles[trimmed(headers[pos])] = role
			}
			return pos
		}
		if fallback >= 0 && fallback < len(headers) {
			if role != dataset.RoleOther {
				roles[trimmed(headers[fallback])] = role
			}
			return fallback
		}
		return -1
	}

	cols := &ledgerColumns{
		document:   resolve(p.config.DocumentAliases, p.config.DocumentPosition, dataset.RoleDocument),
		account:    resolve(p.config.AccountAliases, p.config.AccountPosition, dataset.RoleAccount),
		debit:      resolve(p.config.DebitAliases, p.config.DebitPosition, dataset.RoleAmount),
		credit:     resolve(p.config.CreditAliases, p.config.CreditPosition, dataset.RoleAmount),
		year:       resolve(p.config.YearAliases, p.config.YearPosition, dataset.RoleYear),
		month:      resolve(p.config.MonthAliases, p.config.MonthPosition, dataset.RoleMonth),
		day:        resolve(p.config.DayAliases, p.config.DayPosition, dataset.RoleDay),
		thirdParty: resolve(p.config.ThirdPartyAliases, p.config.ThirdPartyPosition, dataset.RoleTaxID),
		nature:     resolve(p.config.NatureAliases, p.config.NaturePosition, dataset.RoleNature),
	}

	if cols.document < 0 {
		return nil, nil, apperrors.NewMissingKeyColumnError(path, "document")
	}

	return cols, &dataset.Schema{Source: dataset.SourceLedger, Roles: roles}, nil
}
