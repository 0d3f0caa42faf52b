package cmd

import (
	"fmt"
	"os"

	"golang-ingestion-service/cmd/ingestor/config"
	"golang-ingestion-service/internal/models"
	"golang-ingestion-service/internal/reporter"
	"golang-ingestion-service/internal/store"

	"github.com/spf13/viper"
)

// openStore opens the transaction store at the configured database path
func openStore() (store.Store, error) {
	db, err := store.Open(viper.GetString("db"))
	if err != nil {
		return nil, err
	}
	return store.New(db), nil
}

// accountIDFlag converts the --account flag to the optional account reference.
// Zero means no account was given.
func accountIDFlag(id uint) *uint {
	if id == 0 {
		return nil
	}
	return &id
}

// validateOwnerFlag checks the required --owner flag
func validateOwnerFlag(ownerID uint) error {
	if ownerID == 0 {
		return fmt.Errorf("owner is required and must be a positive user id")
	}
	return nil
}

// validateOutputFormat checks the --output-format flag
func validateOutputFormat(format string) error {
	validFormats := map[string]bool{"console": true, "json": true, "csv": true}
	if !validFormats[format] {
		return fmt.Errorf("invalid output format '%s'. Valid formats: console, json, csv", format)
	}
	return nil
}

// writeReport renders the ingestion result to the output file or stdout
func writeReport(result *models.IngestResult, source, format, outputFile string) error {
	reportConfig := config.CreateReportConfig(format)
	reportGenerator, err := reporter.NewReportGenerator(reportConfig)
	if err != nil {
		return fmt.Errorf("failed to create report generator: %w", err)
	}

	var output *os.File
	if outputFile != "" {
		output, err = os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer output.Close()
	} else {
		output = os.Stdout
	}

	report := reporter.NewReport(source, result)
	if err := reportGenerator.Generate(report, output); err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}

	return nil
}

func validateFileExists(filePath, description string) error {
	if filePath == "" {
		return fmt.Errorf("%s path cannot be empty", description)
	}

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

	return nil
}
