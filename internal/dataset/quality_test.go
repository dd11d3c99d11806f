package dataset

import (
	"testing"

	apperrors "causacion-reconciler/pkg/errors"
)

func taxSchema() *Schema {
	return &Schema{
		Source: SourceTax,
		Roles: map[string]Role{
			"Folio":          RoleDocument,
			"Fecha Emision":  RoleDate,
			"NIT Emisor":     RoleTaxID,
			"Total":          RoleAmount,
			"Tipo Documento": RoleOther,
		},
	}
}

func taxDataset(rows [][]string) *Dataset {
	return &Dataset{
		Name:    "dian",
		Schema:  taxSchema(),
		Columns: []string{"Folio", "Fecha Emision", "NIT Emisor", "Total", "Tipo Documento"},
		Rows:    rows,
	}
}

func TestValidateCleanDataset(t *testing.T) {
	validator, err := NewValidator(nil)
	if err != nil {
		t.Fatalf("Unexpected error creating validator: %v", err)
	}

	ds := taxDataset([][]string{
		{"F1001", "01-07-2025", "900123456", "100000.00", "FV"},
		{"F1002", "02-07-2025", "900123456", "250000.00", "FV"},
	})

	report, err := validator.Validate(ds)
	if err != nil {
		t.Fatalf("Unexpected validation error: %v", err)
	}

	if report.Score != 100 {
		t.Errorf("Expected score 100 for clean data, got %f", report.Score)
	}
	if !report.IsAcceptable {
		t.Error("Expected clean dataset to be acceptable")
	}
	if report.TotalRows != 2 || report.TotalColumns != 5 {
		t.Errorf("Unexpected dimensions: %d rows, %d columns", report.TotalRows, report.TotalColumns)
	}
}

func ledgerDataset(rows [][]string) *Dataset {
	return &Dataset{
		Name: "contable",
		Schema: &Schema{
			Source: SourceLedger,
			Roles: map[string]Role{
				"DOCUMENTO": RoleDocument,
				"AÑO":       RoleYear,
				"MES":       RoleMonth,
				"DÍA":       RoleDay,
			},
		},
		Columns: []string{"DOCUMENTO", "AÑO", "MES", "DÍA"},
		Rows:    rows,
	}
}

func TestValidateSplitDateColumns(t *testing.T) {
	validator, _ := NewValidator(nil)

	ds := ledgerDataset([][]string{
		{"F1001", "2025", "7", "1"},
		{"F1002", "2025", "13", "45"},
		{"F1003", "2025", "x", "3"},
		{"F1004", "", "", ""},
	})

	report, err := validator.Validate(ds)
	if err != nil {
		t.Fatalf("Unexpected validation error: %v", err)
	}

	// One impossible date plus one non-numeric component; the all-empty
	// row is a completeness matter, not a format violation
	if got := report.DateFormatViolations["AÑO/MES/DÍA"]; got != 2 {
		t.Errorf("Expected 2 split-date violations, got %d (report: %v)", got, report.DateFormatViolations)
	}
	if report.Score != 80 {
		t.Errorf("Expected score 80 after 2 violations, got %f", report.Score)
	}
}

func TestValidateSplitDateCleanRows(t *testing.T) {
	validator, _ := NewValidator(nil)

	ds := ledgerDataset([][]string{
		{"F1001", "2025", "7", "1"},
		{"F1002", "2024.0", "2.0", "29.0"},
	})

	report, err := validator.Validate(ds)
	if err != nil {
		t.Fatalf("Unexpected validation error: %v", err)
	}

	if len(report.DateFormatViolations) != 0 {
		t.Errorf("Expected no violations for valid components, got %v", report.DateFormatViolations)
	}
	if report.Score != 100 {
		t.Errorf("Expected score 100, got %f", report.Score)
	}
}

func TestValidateEmptyDatasetIsFatal(t *testing.T) {
	validator, _ := NewValidator(nil)

	if _, err := validator.Validate(nil); err == nil {
		t.Fatal("Expected error for nil dataset")
	}

	_, err := validator.Validate(taxDataset(nil))
	if err == nil {
		t.Fatal("Expected error for empty dataset")
	}
	if !apperrors.IsCode(err, apperrors.CodeEmptyDataset) {
		t.Errorf("Expected empty_dataset code, got %v", err)
	}
}

func TestValidateMissingKeyColumnIsFatal(t *testing.T) {
	validator, _ := NewValidator(nil)

	ds := &Dataset{
		Name: "dian",
		Schema: &Schema{
			Source: SourceTax,
			Roles:  map[string]Role{"Total": RoleAmount},
		},
		Columns: []string{"Total"},
		Rows:    [][]string{{"100"}},
	}

	_, err := validator.Validate(ds)
	if err == nil {
		t.Fatal("Expected error for missing key column")
	}
	if !apperrors.IsCode(err, apperrors.CodeMissingKeyColumn) {
		t.Errorf("Expected missing_key_column code, got %v", err)
	}
}

func TestValidateScorePenalties(t *testing.T) {
	validator, _ := NewValidator(nil)

	// One bad date and one extreme amount: two violations, 20 points off
	ds := taxDataset([][]string{
		{"F1001", "01-07-2025", "900123456", "100000.00", "FV"},
		{"F1002", "not-a-date", "900123456", "2000000000000", "FV"},
	})

	report, err := validator.Validate(ds)
	if err != nil {
		t.Fatalf("Unexpected validation error: %v", err)
	}

	if report.Score != 80 {
		t.Errorf("Expected score 80 after two violations, got %f", report.Score)
	}
	if report.DateFormatViolations["Fecha Emision"] != 1 {
		t.Errorf("Expected 1 date violation, got %d", report.DateFormatViolations["Fecha Emision"])
	}
	if report.NumericFormatViolations["Total"] != 1 {
		t.Errorf("Expected 1 numeric violation, got %d", report.NumericFormatViolations["Total"])
	}
}

func TestValidateCriticalGaps(t *testing.T) {
	validator, _ := NewValidator(nil)

	// Folio missing in 2 of 3 rows: above the 50% threshold
	ds := taxDataset([][]string{
		{"F1001", "01-07-2025", "900123456", "100", "FV"},
		{"nan", "02-07-2025", "900123456", "200", "FV"},
		{"", "03-07-2025", "900123456", "300", "FV"},
	})

	report, err := validator.Validate(ds)
	if err != nil {
		t.Fatalf("Unexpected validation error: %v", err)
	}

	if len(report.CriticalGaps) != 1 {
		t.Fatalf("Expected 1 critical gap, got %v", report.CriticalGaps)
	}
	if report.MissingValues["Folio"].MissingCount != 2 {
		t.Errorf("Expected 2 missing folios, got %d", report.MissingValues["Folio"].MissingCount)
	}
	if report.Score != 90 {
		t.Errorf("Expected score 90 after one critical gap, got %f", report.Score)
	}
}

func TestValidateScoreBounded(t *testing.T) {
	validator, _ := NewValidator(nil)

	// Every row broken in every scored column: score must clamp at 0
	var rows [][]string
	for i := 0; i < 20; i++ {
		rows = append(rows, []string{"F1", "garbage", "900", "inf", "FV"})
	}

	report, err := validator.Validate(taxDataset(rows))
	if err != nil {
		t.Fatalf("Unexpected validation error: %v", err)
	}

	if report.Score < 0 || report.Score > 100 {
		t.Errorf("Score out of bounds: %f", report.Score)
	}
	if report.Score != 0 {
		t.Errorf("Expected fully clamped score 0, got %f", report.Score)
	}
	if report.IsAcceptable {
		t.Error("Expected pathological dataset to be unacceptable")
	}
}

func TestValidateDoesNotMutateDataset(t *testing.T) {
	validator, _ := NewValidator(nil)

	rows := [][]string{{"F1001", "01-07-2025", "900123456", "100", "FV"}}
	ds := taxDataset(rows)

	if _, err := validator.Validate(ds); err != nil {
		t.Fatalf("Unexpected validation error: %v", err)
	}

	if ds.Rows[0][0] != "F1001" || ds.Rows[0][3] != "100" {
		t.Error("Validator must not mutate the dataset")
	}
}

func TestColumnsWithRoleOrder(t *testing.T) {
	ds := taxDataset([][]string{{"F1", "01-07-2025", "900", "100", "FV"}})

	cols := ds.ColumnsWithRole(RoleAmount)
	if len(cols) != 1 || cols[0] != "Total" {
		t.Errorf("Expected [Total], got %v", cols)
	}

	if got := ds.Schema.RoleOf("missing-column"); got != RoleOther {
		t.Errorf("Expected RoleOther for unknown column, got %s", got)
	}
}
