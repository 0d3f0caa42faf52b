package cmd

import (
	"context"
	"fmt"
	"os"

	"golang-ingestion-service/cmd/ingestor/config"
	"golang-ingestion-service/internal/ingest"
	"golang-ingestion-service/internal/models"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flags for the ingest-csv command
var (
	csvFile         string
	csvOwnerID      uint
	csvAccountID    uint
	csvSourceTag    string
	csvDelimiter    string
	csvOutputFormat string
	csvOutputFile   string
)

// ingestCSVCmd represents the ingest-csv command
var ingestCSVCmd = &cobra.Command{
	Use:   "ingest-csv",
	Short: "Ingest transactions from a CSV or TSV export",
	Long: `Ingest-csv reads a delimited bank or budgeting export, normalizes each
row into a canonical transaction, and loads the batch into the store.
Files in Windows-1251 encoding are decoded automatically.

Examples:
  # Basic CSV ingestion
  ingestor ingest-csv --file export.csv --owner 1

  # Tab-separated file into a specific account
  ingestor ingest-csv --file export.tsv --delimiter tab --owner 1 --account 3

  # Custom source tag and JSON report
  ingestor ingest-csv --file kapital.csv --owner 1 --source kapitalbank \
    --output-format json --output-file report.json`,

	PreRunE: validateIngestCSVFlags,
	RunE:    runIngestCSV,
}

func init() {
	rootCmd.AddCommand(ingestCSVCmd)

	// Required flags
	ingestCSVCmd.Flags().StringVarP(&csvFile, "file", "f", "", "path to the delimited export file (required)")
	ingestCSVCmd.Flags().UintVar(&csvOwnerID, "owner", 0, "owning user id (required)")

	// Optional flags
	ingestCSVCmd.Flags().UintVar(&csvAccountID, "account", 0, "account id to attach transactions to")
	ingestCSVCmd.Flags().StringVar(&csvSourceTag, "source", models.SourceCSV, "source tag recorded on each transaction")
	ingestCSVCmd.Flags().StringVar(&csvDelimiter, "delimiter", ",", "field delimiter (single character or 'tab')")

	// Output flags
	ingestCSVCmd.Flags().StringVarP(&csvOutputFormat, "output-format", "o", "console", "output format: console, json, csv")
	ingestCSVCmd.Flags().StringVar(&csvOutputFile, "output-file", "", "output file path (default: stdout)")

	ingestCSVCmd.MarkFlagRequired("file")
	ingestCSVCmd.MarkFlagRequired("owner")
}

func validateIngestCSVFlags(cmd *cobra.Command, args []string) error {
	if err := validateFileExists(csvFile, "export file"); err != nil {
		return err
	}
	if err := validateOwnerFlag(csvOwnerID); err != nil {
		return err
	}
	if err := validateOutputFormat(csvOutputFormat); err != nil {
		return err
	}
	if _, err := config.CreateTextConfig(csvDelimiter); err != nil {
		return err
	}
	if csvSourceTag == "" {
		return fmt.Errorf("source tag cannot be empty")
	}
	return nil
}

func runIngestCSV(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "Ingesting CSV file: %s\n", csvFile)
	}

	data, err := os.ReadFile(csvFile)
	if err != nil {
		return fmt.Errorf("failed to read export file: %w", err)
	}

	textConfig, err := config.CreateTextConfig(csvDelimiter)
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return fmt.Errorf("failed to open transaction store: %w", err)
	}

	pipeline := ingest.NewPipeline(st, ingest.WithTextConfig(textConfig))
	result, err := pipeline.IngestFromCSV(ctx, data, csvOwnerID, accountIDFlag(csvAccountID), csvSourceTag)
	if err != nil {
		handler := NewCLIErrorHandler()
		os.Exit(handler.HandleError(err))
	}

	return writeReport(result, csvSourceTag, csvOutputFormat, csvOutputFile)
}
