package reporter

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"golang-ingestion-service/internal/models"
)

func sampleResult() *models.IngestResult {
	return &models.IngestResult{
		Total:      5,
		Saved:      3,
		Duplicates: 1,
		Errors: []models.RowError{
			{Position: 4, Message: "payload not serializable"},
		},
	}
}

func TestOutputFormatIsValid(t *testing.T) {
	tests := []struct {
		format OutputFormat
		valid  bool
	}{
		{FormatConsole, true},
		{FormatJSON, true},
		{FormatCSV, true},
		{OutputFormat("xml"), false},
		{OutputFormat(""), false},
	}

	for _, tt := range tests {
		if got := tt.format.IsValid(); got != tt.valid {
			t.Errorf("IsValid(%q) = %v, want %v", tt.format, got, tt.valid)
		}
	}
}

func TestReportConfigValidate(t *testing.T) {
	config := DefaultReportConfig()
	if err := config.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}

	config.Format = OutputFormat("yaml")
	if err := config.Validate(); err == nil {
		t.Error("expected error for invalid format")
	}

	config = DefaultReportConfig()
	config.CSVDelimiter = 0
	if err := config.Validate(); err == nil {
		t.Error("expected error for empty delimiter")
	}
}

func TestNewReportGeneratorNilConfig(t *testing.T) {
	rg, err := NewReportGenerator(nil)
	if err != nil {
		t.Fatalf("NewReportGenerator(nil) failed: %v", err)
	}
	if rg.config.Format != FormatConsole {
		t.Errorf("expected console default, got %s", rg.config.Format)
	}
}

func TestGenerateConsole(t *testing.T) {
	rg, err := NewReportGenerator(DefaultReportConfig())
	if err != nil {
		t.Fatalf("NewReportGenerator failed: %v", err)
	}

	var buf bytes.Buffer
	report := NewReport("csv", sampleResult())
	if err := rg.Generate(report, &buf); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	output := buf.String()
	for _, want := range []string{
		"Ingestion Report (csv)",
		"Total records:  5",
		"Saved:          3",
		"Duplicates:     1",
		"Row errors:     1",
		"row 4: payload not serializable",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("console output missing %q:\n%s", want, output)
		}
	}
}

func TestGenerateConsoleWithoutRowErrors(t *testing.T) {
	config := DefaultReportConfig()
	config.IncludeRowErrors = false
	rg, err := NewReportGenerator(config)
	if err != nil {
		t.Fatalf("NewReportGenerator failed: %v", err)
	}

	var buf bytes.Buffer
	if err := rg.Generate(NewReport("csv", sampleResult()), &buf); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if strings.Contains(buf.String(), "Failed rows") {
		t.Error("row error detail should be omitted")
	}
}

func TestGenerateJSON(t *testing.T) {
	config := DefaultReportConfig()
	config.Format = FormatJSON
	rg, err := NewReportGenerator(config)
	if err != nil {
		t.Fatalf("NewReportGenerator failed: %v", err)
	}

	var buf bytes.Buffer
	if err := rg.Generate(NewReport("api", sampleResult()), &buf); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	var decoded Report
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Source != "api" {
		t.Errorf("expected source api, got %s", decoded.Source)
	}
	if decoded.Result.Saved != 3 {
		t.Errorf("expected 3 saved, got %d", decoded.Result.Saved)
	}
}

func TestGenerateCSV(t *testing.T) {
	config := DefaultReportConfig()
	config.Format = FormatCSV
	rg, err := NewReportGenerator(config)
	if err != nil {
		t.Fatalf("NewReportGenerator failed: %v", err)
	}

	var buf bytes.Buffer
	if err := rg.Generate(NewReport("uzum_webhook", sampleResult()), &buf); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if lines[0] != "metric,value" {
		t.Errorf("expected header row, got %q", lines[0])
	}
	joined := buf.String()
	for _, want := range []string{"source,uzum_webhook", "total,5", "saved,3", "duplicates,1", "errors,1", "row_error,4: payload not serializable"} {
		if !strings.Contains(joined, want) {
			t.Errorf("csv output missing %q:\n%s", want, joined)
		}
	}
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) { return 0, errors.New("sink closed") }

func TestGenerateCSVSurfacesWriteError(t *testing.T) {
	config := DefaultReportConfig()
	config.Format = FormatCSV
	rg, err := NewReportGenerator(config)
	if err != nil {
		t.Fatalf("NewReportGenerator failed: %v", err)
	}

	if err := rg.Generate(NewReport("csv", sampleResult()), failingWriter{}); err == nil {
		t.Error("expected the write error to surface from Generate")
	}
}

func TestGenerateCSVCustomDelimiter(t *testing.T) {
	config := DefaultReportConfig()
	config.Format = FormatCSV
	config.CSVDelimiter = ';'
	config.CSVHeaders = false
	rg, err := NewReportGenerator(config)
	if err != nil {
		t.Fatalf("NewReportGenerator failed: %v", err)
	}

	var buf bytes.Buffer
	if err := rg.Generate(NewReport("csv", sampleResult()), &buf); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "total;5") {
		t.Errorf("expected semicolon delimiter:\n%s", output)
	}
	if strings.HasPrefix(output, "metric") {
		t.Error("headers should be omitted")
	}
}
