// Package models defines the normalized record types for both reconciliation
// sources: DIAN electronic-invoicing records and internal accounting ledger
// movements, together with the tolerant parsing helpers the loaders use to
// build them from dirty tabular exports.
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MaxReasonableAmount is the upper bound above which a monetary value is
// treated as a probable capture error. Values beyond it are flagged but the
// record still participates in matching attempts.
var MaxReasonableAmount = decimal.New(1, 12)

// Placeholder tokens the upstream exports use for missing values. The
// loaders normalize them but the check is repeated here so records built
// from other callers behave identically.
var placeholderTokens = map[string]bool{
	"":     true,
	"nan":  true,
	"none": true,
	"null": true,
	"nat":  true,
	"-":    true,
}

// IsPlaceholder reports whether a raw cell value represents a missing value
func IsPlaceholder(s string) bool {
	return placeholderTokens[strings.ToLower(strings.TrimSpace(s))]
}

// MovementNature distinguishes debit and credit ledger movements
type MovementNature string

const (
	NatureDebit  MovementNature = "DEBIT"
	NatureCredit MovementNature = "CREDIT"
)

// String returns the string representation of MovementNature
func (n MovementNature) String() string {
	return string(n)
}

// IsValid checks if the movement nature is valid
func (n MovementNature) IsValid() bool {
	return n == NatureDebit || n == NatureCredit
}

// ParseMovementNature parses a debit/credit marker from the ledger export
func ParseMovementNature(s string) (MovementNature, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBIT", "DEBITO", "DÉBITO", "D", "DB":
		return NatureDebit, nil
	case "CREDIT", "CREDITO", "CRÉDITO", "C", "CR":
		return NatureCredit, nil
	default:
		return "", fmt.Errorf("invalid movement nature '%s': must be debit or credit", s)
	}
}

// TaxRecord represents one electronic invoicing document from the DIAN export
type TaxRecord struct {
	Folio        string          `json:"folio"`
	IssueDate    time.Time       `json:"issue_date"`
	IssuerID     string          `json:"issuer_id"`
	ReceiverID   string          `json:"receiver_id"`
	Total        decimal.Decimal `json:"total"`
	DocumentType string          `json:"document_type"`
	Status       string          `json:"status"`
}

// Matchable reports whether the record can participate in the matching
// cascade: folio and issue date must be present and non-placeholder.
// Extreme or negative totals do not disqualify a record.
func (r *TaxRecord) Matchable() bool {
	return !IsPlaceholder(r.Folio) && !r.IssueDate.IsZero()
}

// HasExtremeTotal reports whether the total exceeds the capture-error bound
func (r *TaxRecord) HasExtremeTotal() bool {
	return r.Total.Abs().GreaterThan(MaxReasonableAmount)
}

// HasNegativeTotal reports whether the total is negative
func (r *TaxRecord) HasNegativeTotal() bool {
	return r.Total.IsNegative()
}

// String returns a string representation of the TaxRecord
func (r *TaxRecord) String() string {
	return fmt.Sprintf("TaxRecord{Folio: %s, Date: %s, Total: %s}",
		r.Folio, r.IssueDate.Format("2006-01-02"), r.Total.String())
}

// LedgerMovement represents one bookkeeping entry from the accounting export
type LedgerMovement struct {
	DocumentNumber string          `json:"document_number"`
	Account        string          `json:"account"`
	Nature         MovementNature  `json:"nature"`
	Amount         decimal.Decimal `json:"amount"`
	Year           int             `json:"year"`
	Month          int             `json:"month"`
	Day            int             `json:"day"`
	Date           time.Time       `json:"date"`
	ThirdPartyID   string          `json:"third_party_id"`
}

// Matchable reports whether the movement can participate in matching: the
// document number must be present and the year/month/day components must
// have combined into a valid calendar date.
func (m *LedgerMovement) Matchable() bool {
	return !IsPlaceholder(m.DocumentNumber) && !m.Date.IsZero()
}

// HasExtremeAmount reports whether the amount exceeds the capture-error bound
func (m *LedgerMovement) HasExtremeAmount() bool {
	return m.Amount.Abs().GreaterThan(MaxReasonableAmount)
}

// HasNegativeAmount reports whether the amount is negative
func (m *LedgerMovement) HasNegativeAmount() bool {
	return m.Amount.IsNegative()
}

// String returns a string representation of the LedgerMovement
func (m *LedgerMovement) String() string {
	return fmt.Sprintf("LedgerMovement{Doc: %s, Date: %s, Amount: %s}",
		m.DocumentNumber, m.Date.Format("2006-01-02"), m.Amount.String())
}

// CombineDateParts builds a calendar date from separate year, month and day
// export columns. It rejects component combinations that time.Date would
// silently normalize (e.g. month 13 or February 30).
func CombineDateParts(year, month, day int) (time.Time, error) {
	if year < 1900 || year > 2100 {
		return time.Time{}, fmt.Errorf("year %d out of range", year)
	}
	if month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("month %d out of range", month)
	}
	if day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("day %d out of range", day)
	}

	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if date.Year() != year || int(date.Month()) != month || date.Day() != day {
		return time.Time{}, fmt.Errorf("invalid calendar date %04d-%02d-%02d", year, month, day)
	}

	return date, nil
}

// ParseDecimalFromString parses a monetary value from a raw export cell.
// Currency symbols, spaces and thousand separators are removed; a trailing
// comma-decimal (Latin American convention) is normalized to a point.
func ParseDecimalFromString(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if IsPlaceholder(s) {
		return decimal.Zero, fmt.Errorf("amount string is empty")
	}

	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, " ", "")

	// "1.234.567,89" style: points are thousand separators, comma is decimal
	if lastComma := strings.LastIndex(s, ","); lastComma >= 0 && lastComma > strings.LastIndex(s, ".") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	} else {
		s = strings.ReplaceAll(s, ",", "")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid decimal format '%s': %w", s, err)
	}

	return d, nil
}

// Date formats accepted for DIAN issue dates, day-first variants before
// year-first ones to honor the export's DD-MM-YYYY convention.
var dateFormats = []string{
	"02-01-2006",
	"02/01/2006",
	"02-01-2006 15:04:05",
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006/01/02",
	time.RFC3339,
}

// ParseDateDayFirst parses a calendar date preferring day-before-month
// interpretation. The time portion, if any, is discarded.
func ParseDateDayFirst(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if IsPlaceholder(s) {
		return time.Time{}, fmt.Errorf("date string is empty")
	}

	var lastErr error
	for _, format := range dateFormats {
		if t, err := time.Parse(format, s); err == nil {
			year, month, day := t.Date()
			return time.Date(year, month, day, 0, 0, 0, 0, time.UTC), nil
		} else {
			lastErr = err
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse date '%s': %w", s, lastErr)
}

// SameDay reports whether two timestamps fall on the same calendar date
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// DayDifference returns the absolute whole-day difference between two dates
func DayDifference(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	da := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	db := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)

	diff := da.Sub(db)
	if diff < 0 {
		diff = -diff
	}
	return int(diff / (24 * time.Hour))
}

// AmountDifference returns the absolute difference between two amounts
func AmountDifference(a, b decimal.Decimal) decimal.Decimal {
	return a.Sub(b).Abs()
}

// NormalizeKey normalizes a matching key (folio, document number, tax ID)
// for comparison: trimmed, uppercased, with a trailing ".0" stripped since
// spreadsheet exports frequently render numeric identifiers as floats.
func NormalizeKey(s string) string {
	key := strings.ToUpper(strings.TrimSpace(s))
	key = strings.TrimSuffix(key, ".0")
	return key
}
