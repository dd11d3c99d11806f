// Package parsers loads the two reconciliation sources from disk: DIAN
// tax-record exports and accounting ledger (contable) exports, in xlsx or
// CSV form. Loaders produce both the typed records for matching and the
// raw dataset for quality validation, with placeholder tokens already
// normalized to empty cells.
package parsers

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"causacion-reconciler/internal/models"
	apperrors "causacion-reconciler/pkg/errors"
	"causacion-reconciler/pkg/logger"
)

// ParseStats summarizes one file load
type ParseStats struct {
	TotalRows     int `json:"total_rows"`
	LoadedRecords int `json:"loaded_records"`
	SkippedRows   int `json:"skipped_rows"`
	ParseErrors   int `json:"parse_errors"`
}

// readTable loads a tabular file as raw string rows. The format is chosen
// by extension: xlsx/xlsm through excelize, anything else as CSV. Ragged
// rows are preserved; callers pad as needed.
func readTable(path string, log logger.Logger) ([][]string, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, apperrors.NewFileError(apperrors.CodeFileNotFound, path, err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	log.WithFields(logger.Fields{
		"file":   path,
		"format": ext,
	}).Debug("Reading input table")

	switch ext {
	case ".xlsx", ".xlsm":
		return readExcel(path)
	default:
		return readCSV(path)
	}
}

func readExcel(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CategoryFile, apperrors.CodeFileCorrupted,
			"failed to open workbook "+path)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperrors.New(apperrors.CategoryFile, apperrors.CodeFileCorrupted,
			"workbook "+path+" has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CategoryParse, apperrors.CodeInvalidFormat,
			"failed to read sheet "+sheets[0])
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewFileError(apperrors.CodeFilePermission, path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CategoryParse, apperrors.CodeInvalidFormat,
			"failed to parse CSV file "+path)
	}
	return rows, nil
}

// normalizeCell trims a raw cell and maps placeholder tokens to ""
func normalizeCell(s string) string {
	s = strings.TrimSpace(s)
	if models.IsPlaceholder(s) {
		return ""
	}
	return s
}

// isEmptyRow reports whether every cell normalizes to empty
func isEmptyRow(cells []string) bool {
	for _, cell := range cells {
		if normalizeCell(cell) != "" {
			return false
		}
	}
	return true
}

// cellAt returns the cell at a position, tolerating short rows
func cellAt(cells []string, pos int) string {
	if pos < 0 || pos >= len(cells) {
		return ""
	}
	return cells[pos]
}

// findColumn locates the first header matching any alias, case-insensitive
// and accent-tolerant on exact trimmed equality
func findColumn(headers []string, aliases []string) (int, bool) {
	for i, header := range headers {
		h := strings.ToLower(strings.TrimSpace(header))
		for _, alias := range aliases {
			if h == strings.ToLower(alias) {
				return i, true
			}
		}
	}
	return 0, false
}
