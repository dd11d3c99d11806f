package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"causacion-reconciler/cmd/reconciler/config"
	"causacion-reconciler/internal/parsers"
	"causacion-reconciler/internal/reconciler"
	"causacion-reconciler/internal/reporter"
)

// Flags for the reconcile command
var (
	dianFile        string
	ledgerFile      string
	outputFormat    string
	outputFile      string
	amountTolerance float64
	preset          string
	metadataRows    int
	showProgress    bool
)

// reconcileCmd represents the reconcile command
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile DIAN records with an accounting ledger",
	Long: `Reconcile compares a DIAN electronic invoice export with a contable
(accounting ledger) export and reports matched pairs, unmatched records
with their probable causes, data quality findings and an overall score.

This command requires:
- A DIAN export file (xlsx or CSV)
- A contable export file (xlsx or CSV)

Examples:
  # Basic reconciliation
  reconciler reconcile --dian-file facturas.xlsx --ledger-file auxiliar.xlsx

  # JSON report to a file
  reconciler reconcile --dian-file facturas.csv --ledger-file auxiliar.csv \
    --output-format json --output-file report.json

  # Styled Excel workbook for review
  reconciler reconcile --dian-file facturas.xlsx --ledger-file auxiliar.xlsx \
    --output-format excel --output-file conciliacion.xlsx

  # Strict amount tolerance
  reconciler reconcile --dian-file facturas.xlsx --ledger-file auxiliar.xlsx \
    --preset strict`,

	PreRunE: validateReconcileFlags,
	RunE:    runReconcile,
}

func init() {
	rootCmd.AddCommand(reconcileCmd)

	reconcileCmd.Flags().StringVarP(&dianFile, "dian-file", "d", "", "path to the DIAN export file (required)")
	reconcileCmd.Flags().StringVarP(&ledgerFile, "ledger-file", "l", "", "path to the contable export file (required)")

	reconcileCmd.Flags().StringVarP(&outputFormat, "output-format", "f", "console", "output format: console, json, csv, excel")
	reconcileCmd.Flags().StringVarP(&outputFile, "output-file", "o", "", "output file path (default: stdout)")

	reconcileCmd.Flags().Float64VarP(&amountTolerance, "amount-tolerance", "a", 0, "pairing amount tolerance (0 keeps the preset's value)")
	reconcileCmd.Flags().StringVar(&preset, "preset", "default", "matching preset: default, strict, relaxed")
	reconcileCmd.Flags().IntVar(&metadataRows, "metadata-rows", 4, "banner rows before the contable header")

	reconcileCmd.Flags().BoolVar(&showProgress, "progress", false, "show progress indicators")

	reconcileCmd.MarkFlagRequired("dian-file")
	reconcileCmd.MarkFlagRequired("ledger-file")

	viper.BindPFlag("dian-file", reconcileCmd.Flags().Lookup("dian-file"))
	viper.BindPFlag("ledger-file", reconcileCmd.Flags().Lookup("ledger-file"))
	viper.BindPFlag("output-format", reconcileCmd.Flags().Lookup("output-format"))
	viper.BindPFlag("output-file", reconcileCmd.Flags().Lookup("output-file"))
	viper.BindPFlag("amount-tolerance", reconcileCmd.Flags().Lookup("amount-tolerance"))
	viper.BindPFlag("preset", reconcileCmd.Flags().Lookup("preset"))
	viper.BindPFlag("metadata-rows", reconcileCmd.Flags().Lookup("metadata-rows"))
	viper.BindPFlag("progress", reconcileCmd.Flags().Lookup("progress"))
}

func validateReconcileFlags(cmd *cobra.Command, args []string) error {
	dianFile = viper.GetString("dian-file")
	ledgerFile = viper.GetString("ledger-file")
	outputFormat = viper.GetString("output-format")
	outputFile = viper.GetString("output-file")
	amountTolerance = viper.GetFloat64("amount-tolerance")
	preset = viper.GetString("preset")
	metadataRows = viper.GetInt("metadata-rows")
	showProgress = viper.GetBool("progress")

	if dianFile == "" {
		return fmt.Errorf("dian-file is required")
	}
	if ledgerFile == "" {
		return fmt.Errorf("ledger-file is required")
	}

	if err := validateFileExists(dianFile, "DIAN export file"); err != nil {
		return err
	}
	if err := validateFileExists(ledgerFile, "contable export file"); err != nil {
		return err
	}

	if !reporter.OutputFormat(outputFormat).IsValid() {
		return fmt.Errorf("invalid output format '%s'. Valid formats: console, json, csv, excel", outputFormat)
	}
	if outputFormat == string(reporter.FormatExcel) && outputFile == "" {
		return fmt.Errorf("excel output requires --output-file")
	}

	switch preset {
	case "default", "strict", "relaxed":
	default:
		return fmt.Errorf("invalid preset '%s'. Valid presets: default, strict, relaxed", preset)
	}

	if amountTolerance < 0 {
		return fmt.Errorf("amount tolerance cannot be negative")
	}
	if metadataRows < 0 {
		return fmt.Errorf("metadata rows cannot be negative")
	}

	if outputFile != "" {
		dir := filepath.Dir(outputFile)
		if dir != "." {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				return fmt.Errorf("output directory does not exist: %s", dir)
			}
		}
	}

	return nil
}

func validateFileExists(filePath, description string) error {
	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return fmt.Errorf("%s does not exist: %s", description, filePath)
	}
	if err != nil {
		return fmt.Errorf("error accessing %s: %w", description, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, expected a file: %s", description, filePath)
	}

	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("%s is not readable: %w", description, err)
	}
	file.Close()

	return nil
}

func runReconcile(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	taxParser, err := parsers.NewTaxParser(config.CreateTaxParserConfig())
	if err != nil {
		return err
	}
	ledgerParser, err := parsers.NewLedgerParser(config.CreateLedgerParserConfig(metadataRows))
	if err != nil {
		return err
	}

	if showProgress {
		fmt.Fprintf(os.Stderr, "Loading %s...\n", dianFile)
	}
	taxSource, err := taxParser.ParseFile(dianFile)
	if err != nil {
		return err
	}

	if showProgress {
		fmt.Fprintf(os.Stderr, "Loading %s...\n", ledgerFile)
	}
	ledgerSource, err := ledgerParser.ParseFile(ledgerFile)
	if err != nil {
		return err
	}

	serviceConfig := config.CreateServiceConfig(preset, amountTolerance)
	service, err := reconciler.NewService(serviceConfig)
	if err != nil {
		return err
	}

	if showProgress {
		fmt.Fprintf(os.Stderr, "Reconciling %d tax records against %d movements...\n",
			len(taxSource.Records), len(ledgerSource.Movements))
	}

	result, err := service.Reconcile(ctx,
		&reconciler.TaxInput{Dataset: taxSource.Dataset, Records: taxSource.Records},
		&reconciler.LedgerInput{Dataset: ledgerSource.Dataset, Movements: ledgerSource.Movements},
	)
	if err != nil {
		return err
	}

	return writeReport(result)
}

func writeReport(result *reconciler.Result) error {
	reportConfig := reporter.DefaultReportConfig()
	reportConfig.Format = reporter.OutputFormat(outputFormat)

	generator, err := reporter.NewReportGenerator(reportConfig)
	if err != nil {
		return err
	}

	var writer io.Writer = os.Stdout
	if outputFile != "" {
		file, err := os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer file.Close()
		writer = file
	}

	if err := generator.GenerateReport(result, writer); err != nil {
		return err
	}

	if outputFile != "" {
		fmt.Fprintf(os.Stderr, "Report written to %s\n", outputFile)
	}
	return nil
}
