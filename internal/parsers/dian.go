package parsers

import (
	"causacion-reconciler/internal/dataset"
	"causacion-reconciler/internal/models"
	apperrors "causacion-reconciler/pkg/errors"
	"causacion-reconciler/pkg/logger"
)

// TaxSource is one loaded DIAN export: typed records for the matcher and
// the raw dataset for the quality validator
type TaxSource struct {
	Dataset *dataset.Dataset
	Records []*models.TaxRecord
	Stats   *ParseStats
}

// TaxParser loads DIAN tax-record exports
type TaxParser struct {
	config *TaxParserConfig
	log    logger.Logger
}

// NewTaxParser creates a DIAN parser; a nil config selects the defaults
func NewTaxParser(config *TaxParserConfig) (*TaxParser, error) {
	if config == nil {
		config = DefaultTaxParserConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CategoryConfiguration, apperrors.CodeInvalidConfig,
			"invalid tax parser configuration")
	}

	return &TaxParser{
		config: config,
		log:    logger.GetGlobalLogger().WithComponent("tax_parser"),
	}, nil
}

// taxColumns holds the resolved header positions of one export
type taxColumns struct {
	folio, date, issuer, receiver, total, docType, status int
}

// ParseFile loads a DIAN export. Empty rows are dropped; rows with
// unparseable dates or totals are kept as records with zero values, which
// leaves them visible to the quality validator and the reason analyzer
// instead of silently vanishing.
func (p *TaxParser) ParseFile(path string) (*TaxSource, error) {
	rows, err := readTable(path, p.log)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apperrors.NewEmptyDatasetError(path)
	}

	headers := rows[0]
	cols, schema, err := p.resolveColumns(path, headers)
	if err != nil {
		return nil, err
	}

	stats := &ParseStats{TotalRows: len(rows) - 1}
	source := &TaxSource{
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

		record := &models.TaxRecord{
			Folio:        normalized[cols.folio],
			IssuerID:     valueAt(normalized, cols.issuer),
			ReceiverID:   valueAt(normalized, cols.receiver),
			DocumentType: valueAt(normalized, cols.docType),
			Status:       valueAt(normalized, cols.status),
		}

		if raw := normalized[cols.date]; raw != "" {
			date, err := models.ParseDateDayFirst(raw)
			if err != nil {
				stats.ParseErrors++
			} else {
				record.IssueDate = date
			}
		}

		if raw := normalized[cols.total]; raw != "" {
			total, err := models.ParseDecimalFromString(raw)
			if err != nil {
				stats.ParseErrors++
			} else {
				record.Total = total
			}
		}

		source.Records = append(source.Records, record)
		stats.LoadedRecords++
	}

	if len(source.Records) == 0 {
		return nil, apperrors.NewEmptyDatasetError(path)
	}

	p.log.WithFields(logger.Fields{
		"file":    path,
		"records": stats.LoadedRecords,
		"skipped": stats.SkippedRows,
		"errors":  stats.ParseErrors,
	}).Info("DIAN export loaded")

	return source, nil
}

// resolveColumns maps aliases to header positions and builds the schema.
// Folio, date and total are required; the rest degrade to absent.
func (p *TaxParser) resolveColumns(path string, headers []string) (*taxColumns, *dataset.Schema, error) {
	cols := &taxColumns{issuer: -1, receiver: -1, docType: -1, status: -1}
	roles := make(map[string]dataset.Role)

	var ok bool
	if cols.folio, ok = findColumn(headers, p.config.FolioAliases); !ok {
		return nil, nil, apperrors.NewMissingKeyColumnError(path, "document")
	}
	roles[trimmed(headers[cols.folio])] = dataset.RoleDocument

	if cols.date, ok = findColumn(headers, p.config.DateAliases); !ok {
		return nil, nil, apperrors.NewMissingKeyColumnError(path, "date")
	}
	roles[trimmed(headers[cols.date])] = dataset.RoleDate

	if cols.total, ok = findColumn(headers, p.config.TotalAliases); !ok {
		return nil, nil, apperrors.NewMissingKeyColumnError(path, "amount")
	}
	roles[trimmed(headers[cols.total])] = dataset.RoleAmount

	if pos, ok := findColumn(headers, p.config.IssuerAliases); ok {
		cols.issuer = pos
		roles[trimmed(headers[pos])] = dataset.RoleTaxID
	}
	if pos, ok := findColumn(headers, p.config.ReceiverAliases); ok {
		cols.receiver = pos
		roles[trimmed(headers[pos])] = dataset.RoleTaxID
	}
	if pos, ok := findColumn(headers, p.config.DocumentTypeAliases); ok {
		cols.docType = pos
	}
	if pos, ok := findColumn(headers, p.config.StatusAliases); ok {
		cols.status = pos
	}

	return cols, &dataset.Schema{Source: dataset.SourceTax, Roles: roles}, nil
}

func valueAt(cells []string, pos int) string {
	if pos < 0 {
		return ""
	}
	return cellAt(cells, pos)
}

func trimmed(s string) string {
	return normalizeCell(s)
}

func trimmedHeaders(headers []string) []string {
	out := make([]string, len(headers))
	for i, h := range headers {
		out[i] = trimmed(h)
	}
	return out
}
