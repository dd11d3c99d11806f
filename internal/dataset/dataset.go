// Package dataset models the raw tabular inputs handed to the core and the
// data-quality validation that runs over them before matching is attempted.
//
// Field semantics are declared once, at ingestion time, through a Schema
// that maps column names to roles. Downstream components consume roles, so
// the matching and validation logic stays free of column-name heuristics.
package dataset

// Role identifies the semantic function of a column in a source dataset
type Role string

const (
	// RoleDocument marks the primary matching key column (folio on the tax
	// side, document number on the ledger side)
	RoleDocument Role = "document"

	// RoleDate marks a full calendar-date column
	RoleDate Role = "date"

	// RoleYear, RoleMonth and RoleDay mark split date-component columns
	RoleYear  Role = "year"
	RoleMonth Role = "month"
	RoleDay   Role = "day"

	// RoleAmount marks a monetary column
	RoleAmount Role = "amount"

	// RoleTaxID marks a tax identification column (issuer, receiver or
	// third party)
	RoleTaxID Role = "tax_id"

	// RoleAccount marks the ledger account code column
	RoleAccount Role = "account"

	// RoleNature marks the debit/credit indicator column
	RoleNature Role = "nature"

	// RoleOther marks columns carried along without matching semantics
	RoleOther Role = "other"
)

// IsCritical reports whether gaps in a column of this role degrade the
// dataset's quality score
func (r Role) IsCritical() bool {
	switch r {
	case RoleDocument, RoleDate, RoleYear, RoleMonth, RoleDay, RoleAmount, RoleTaxID:
		return true
	default:
		return false
	}
}

// SourceKind identifies which side of the reconciliation a dataset belongs to
type SourceKind string

const (
	SourceTax    SourceKind = "tax"
	SourceLedger SourceKind = "ledger"
)

// Schema is the declarative field-role mapping for one source dataset,
// built at ingestion time and passed into the core
type Schema struct {
	Source SourceKind      `json:"source"`
	Roles  map[string]Role `json:"roles"` // column name -> role
}

// RoleOf returns the role mapped to a column, defaulting to RoleOther
func (s *Schema) RoleOf(column string) Role {
	if s == nil || s.Roles == nil {
		return RoleOther
	}
	if role, ok := s.Roles[column]; ok {
		return role
	}
	return RoleOther
}

// HasRole reports whether any column is mapped to the given role
func (s *Schema) HasRole(role Role) bool {
	if s == nil {
		return false
	}
	for _, r := range s.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Dataset is one loaded tabular source: stable column names plus rows of
// raw string cells, with placeholders already normalized to "" by the
// loader. The validator never mutates it.
type Dataset struct {
	Name    string     `json:"name"`
	Schema  *Schema    `json:"schema"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// ColumnIndex returns the position of a column by name
func (d *Dataset) ColumnIndex(name string) (int, bool) {
	for i, col := range d.Columns {
		if col == name {
			return i, true
		}
	}
	return 0, false
}

// Value returns the cell at (row, column index), tolerating ragged rows
func (d *Dataset) Value(row, col int) string {
	if row < 0 || row >= len(d.Rows) {
		return ""
	}
	cells := d.Rows[row]
	if col < 0 || col >= len(cells) {
		return ""
	}
	return cells[col]
}

// ColumnsWithRole returns the columns mapped to a role, in declaration
// order, so every traversal over them is deterministic
func (d *Dataset) ColumnsWithRole(role Role) []string {
	var columns []string
	for _, col := range d.Columns {
		if d.Schema.RoleOf(col) == role {
			columns = append(columns, col)
		}
	}
	return columns
}
