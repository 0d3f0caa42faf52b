// Package reporter renders ingestion results for the CLI.
//
// Supported output formats:
//   - Console: human-readable summary for terminal display
//   - JSON: structured output for programmatic consumption
//   - CSV: flat metric rows for spreadsheets
package reporter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"golang-ingestion-service/internal/models"
)

// OutputFormat represents the supported report output formats
type OutputFormat string

const (
	FormatConsole OutputFormat = "console"
	FormatJSON    OutputFormat = "json"
	FormatCSV     OutputFormat = "csv"
)

// IsValid checks if the output format is supported
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatConsole, FormatJSON, FormatCSV:
		return true
	default:
		return false
	}
}

// ReportConfig holds configuration options for report generation
type ReportConfig struct {
	Format           OutputFormat `json:"format"`
	IncludeRowErrors bool         `json:"include_row_errors"`

	// CSV options
	CSVDelimiter rune `json:"csv_delimiter"`
	CSVHeaders   bool `json:"csv_headers"`
}

// DefaultReportConfig returns a default report configuration
func DefaultReportConfig() *ReportConfig {
	return &ReportConfig{
		Format:           FormatConsole,
		IncludeRowErrors: true,
		CSVDelimiter:     ',',
		CSVHeaders:       true,
	}
}

// Validate validates the report configuration
func (c *ReportConfig) Validate() error {
	if !c.Format.IsValid() {
		return fmt.Errorf("invalid output format: %s", c.Format)
	}
	if c.CSVDelimiter == 0 {
		return fmt.Errorf("csv delimiter cannot be empty")
	}
	return nil
}

// Report wraps one ingestion result with its run metadata
type Report struct {
	Source      string               `json:"source"`
	GeneratedAt time.Time            `json:"generated_at"`
	Result      *models.IngestResult `json:"result"`
}

// NewReport creates a report for an ingestion run
func NewReport(source string, result *models.IngestResult) *Report {
	return &Report{
		Source:      source,
		GeneratedAt: time.Now().UTC(),
		Result:      result,
	}
}

// ReportGenerator renders reports in the configured format
type ReportGenerator struct {
	config *ReportConfig
}

// NewReportGenerator creates a generator with the given configuration
func NewReportGenerator(config *ReportConfig) (*ReportGenerator, error) {
	if config == nil {
		config = DefaultReportConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &ReportGenerator{config: config}, nil
}

// Generate writes the report to the writer in the configured format
func (rg *ReportGenerator) Generate(report *Report, writer io.Writer) error {
	switch rg.config.Format {
	case FormatJSON:
		return rg.generateJSON(report, writer)
	case FormatCSV:
		return rg.generateCSV(report, writer)
	default:
		return rg.generateConsole(report, writer)
	}
}

func (rg *ReportGenerator) generateConsole(report *Report, writer io.Writer) error {
	result := report.Result

	fmt.Fprintf(writer, "Ingestion Report (%s)\n", report.Source)
	fmt.Fprintf(writer, "=====================================\n")
	fmt.Fprintf(writer, "  Total records:  %d\n", result.Total)
	fmt.Fprintf(writer, "  Saved:          %d\n", result.Saved)
	fmt.Fprintf(writer, "  Duplicates:     %d\n", result.Duplicates)
	fmt.Fprintf(writer, "  Row errors:     %d\n", len(result.Errors))

	if rg.config.IncludeRowErrors && len(result.Errors) > 0 {
		fmt.Fprintf(writer, "\nFailed rows:\n")
		for _, rowErr := range result.Errors {
			fmt.Fprintf(writer, "  %s\n", rowErr.Error())
		}
	}

	return nil
}

func (rg *ReportGenerator) generateJSON(report *Report, writer io.Writer) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}

func (rg *ReportGenerator) generateCSV(report *Report, writer io.Writer) error {
	csvWriter := csv.NewWriter(writer)
	csvWriter.Comma = rg.config.CSVDelimiter

	if rg.config.CSVHeaders {
		if err := csvWriter.Write([]string{"metric", "value"}); err != nil {
			return err
		}
	}

	result := report.Result
	rows := [][]string{
		{"source", report.Source},
		{"total", strconv.Itoa(result.Total)},
		{"saved", strconv.Itoa(result.Saved)},
		{"duplicates", strconv.Itoa(result.Duplicates)},
		{"errors", strconv.Itoa(len(result.Errors))},
	}
	for _, row := range rows {
		if err := csvWriter.Write(row); err != nil {
			return err
		}
	}

	if rg.config.IncludeRowErrors {
		for _, rowErr := range result.Errors {
			row := []string{"row_error", fmt.Sprintf("%d: %s", rowErr.Position, rowErr.Message)}
			if err := csvWriter.Write(row); err != nil {
				return err
			}
		}
	}

	csvWriter.Flush()
	return csvWriter.Error()
}
