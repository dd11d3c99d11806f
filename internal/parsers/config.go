package parsers

import (
	"fmt"
)

// TaxParserConfig maps the logical DIAN record fields to the header names
// that identify them. Each field accepts several aliases because export
// headers vary between DIAN portal versions; the first matching header
// wins.
type TaxParserConfig struct {
	FolioAliases        []string `json:"folio_aliases"`
	DateAliases         []string `json:"date_aliases"`
	IssuerAliases       []string `json:"issuer_aliases"`
	ReceiverAliases     []string `json:"receiver_aliases"`
	TotalAliases        []string `json:"total_aliases"`
	DocumentTypeAliases []string `json:"document_type_aliases"`
	StatusAliases       []string `json:"status_aliases"`
}

// DefaultTaxParserConfig returns the aliases seen in real DIAN exports
func DefaultTaxParserConfig() *TaxParserConfig {
	return &TaxParserConfig{
		FolioAliases:        []string{"Folio", "Prefijo-Folio", "Número de documento"},
		DateAliases:         []string{"Fecha Emisión", "Fecha Emision", "Fecha de Emisión", "Fecha de Emision"},
		IssuerAliases:       []string{"NIT Emisor", "Nit Emisor", "NIT del Emisor"},
		ReceiverAliases:     []string{"NIT Receptor", "Nit Receptor", "NIT del Receptor"},
		TotalAliases:        []string{"Total", "Valor Total", "Total Factura"},
		DocumentTypeAliases: []string{"Tipo de documento", "Tipo Documento"},
		StatusAliases:       []string{"Estado", "Estado Documento"},
	}
}

// Validate checks that the key fields have at least one alias each
func (c *TaxParserConfig) Validate() error {
	if len(c.FolioAliases) == 0 {
		return fmt.Errorf("folio aliases are required")
	}
	if len(c.DateAliases) == 0 {
		return fmt.Errorf("date aliases are required")
	}
	if len(c.TotalAliases) == 0 {
		return fmt.Errorf("total aliases are required")
	}
	return nil
}

// LedgerParserConfig describes the shape of a contable export: the number
// of leading metadata rows before the header, the header aliases for named
// columns, and the fallback positions used when the export ships without
// recognizable headers.
type LedgerParserConfig struct {
	// MetadataRows is the count of report-banner rows preceding the header
	MetadataRows int `json:"metadata_rows"`

	DocumentAliases   []string `json:"document_aliases"`
	AccountAliases    []string `json:"account_aliases"`
	DebitAliases      []string `json:"debit_aliases"`
	CreditAliases     []string `json:"credit_aliases"`
	YearAliases       []string `json:"year_aliases"`
	MonthAliases      []string `json:"month_aliases"`
	DayAliases        []string `json:"day_aliases"`
	ThirdPartyAliases []string `json:"third_party_aliases"`
	NatureAliases     []string `json:"nature_aliases"`

	// Positional fallbacks, used for any field whose aliases match no
	// header. -1 disables the fallback for that field.
	DocumentPosition   int `json:"document_position"`
	AccountPosition    int `json:"account_position"`
	DebitPosition      int `json:"debit_position"`
	CreditPosition     int `json:"credit_position"`
	YearPosition       int `json:"year_position"`
	MonthPosition      int `json:"month_position"`
	DayPosition        int `json:"day_position"`
	ThirdPartyPosition int `json:"third_party_position"`
	NaturePosition     int `json:"nature_position"`
}

// DefaultLedgerParserConfig returns the layout of the standard contable
// export: four banner rows, then a header row with these names
func DefaultLedgerParserConfig() *LedgerParserConfig {
	return &LedgerParserConfig{
		MetadataRows: 4,

		DocumentAliases:   []string{"NÚMERO DOCUMENTO CRUCE", "NUMERO DOCUMENTO CRUCE", "Documento Cruce"},
		AccountAliases:    []string{"CUENTA", "Cuenta", "Código Cuenta"},
		DebitAliases:      []string{"DÉBITOS", "DEBITOS", "Débito", "Debito"},
		CreditAliases:     []string{"CRÉDITOS", "CREDITOS", "Crédito", "Credito"},
		YearAliases:       []string{"AÑO", "ANO", "Año"},
		MonthAliases:      []string{"MES", "Mes"},
		DayAliases:        []string{"DÍA", "DIA", "Día"},
		ThirdPartyAliases: []string{"NIT TERCERO", "Nit Tercero", "NIT"},
		NatureAliases:     []string{"NATURALEZA", "Naturaleza", "TIPO MOVIMIENTO"},

		DocumentPosition:   -1,
		AccountPosition:    -1,
		DebitPosition:      -1,
		CreditPosition:     -1,
		YearPosition:       -1,
		MonthPosition:      -1,
		DayPosition:        -1,
		ThirdPartyPosition: -1,
		NaturePosition:     -1,
	}
}

// Validate checks the structural invariants of the layout
func (c *LedgerParserConfig) Validate() error {
	if c.MetadataRows < 0 {
		return fmt.Errorf("metadata rows must be non-negative, got %d", c.MetadataRows)
	}
	if len(c.DocumentAliases) == 0 && c.DocumentPosition < 0 {
		return fmt.Errorf("document column needs an alias or a position")
	}
	return nil
}
