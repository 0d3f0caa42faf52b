package config

import (
	"fmt"
	"strings"

	"golang-ingestion-service/internal/readers"
	"golang-ingestion-service/internal/reporter"
)

// CreateTextConfig creates a text reader configuration from the CLI delimiter flag
func CreateTextConfig(delimiter string) (*readers.TextConfig, error) {
	config := readers.DefaultTextConfig()

	switch delimiter {
	case "", ",":
		// default comma delimiter
	case "\\t", "tab":
		config.Delimiter = '\t'
	default:
		runes := []rune(delimiter)
		if len(runes) != 1 {
			return nil, fmt.Errorf("delimiter must be a single character, got %q", delimiter)
		}
		config.Delimiter = runes[0]
	}

	return config, nil
}

// CreateReportConfig creates a report configuration for the specified output format
func CreateReportConfig(format string) *reporter.ReportConfig {
	config := reporter.DefaultReportConfig()

	switch format {
	case "json":
		config.Format = reporter.FormatJSON
	case "csv":
		config.Format = reporter.FormatCSV
		config.CSVHeaders = true
		config.CSVDelimiter = ','
	default:
		config.Format = reporter.FormatConsole
	}

	return config
}

// ParseKeyValueFlags parses repeated key=value flags into a map
func ParseKeyValueFlags(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	result := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid key=value pair: %q", pair)
		}
		result[key] = value
	}

	return result, nil
}
