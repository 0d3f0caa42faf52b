package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang-ingestion-service/internal/store"

	"github.com/spf13/viper"
	"gorm.io/datatypes"
)

func TestValidateFileExists(t *testing.T) {
	// Create temporary test files
	tmpDir := t.TempDir()
	validFile := filepath.Join(tmpDir, "valid.csv")
	if err := os.WriteFile(validFile, []byte("test"), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	tests := []struct {
		name        string
		filePath    string
		description string
		expectError bool
	}{
		{
			name:        "valid file",
			filePath:    validFile,
			description: "test file",
			expectError: false,
		},
		{
			name:        "empty path",
			filePath:    "",
			description: "test file",
			expectError: true,
		},
		{
			name:        "non-existent file",
			filePath:    "/non/existent/file.csv",
			description: "test file",
			expectError: true,
		},
		{
			name:        "directory instead of file",
			filePath:    tmpDir,
			description: "test file",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateFileExists(tt.filePath, tt.description)

			if tt.expectError && err == nil {
				t.Errorf("expected error but got none")
			}
			if !tt.expectError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateOwnerFlag(t *testing.T) {
	if err := validateOwnerFlag(0); err == nil {
		t.Error("expected error for zero owner id")
	}
	if err := validateOwnerFlag(1); err != nil {
		t.Errorf("unexpected error for valid owner id: %v", err)
	}
}

func TestValidateOutputFormat(t *testing.T) {
	for _, format := range []string{"console", "json", "csv"} {
		if err := validateOutputFormat(format); err != nil {
			t.Errorf("unexpected error for format %q: %v", format, err)
		}
	}
	if err := validateOutputFormat("xml"); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestAccountIDFlag(t *testing.T) {
	if got := accountIDFlag(0); got != nil {
		t.Errorf("expected nil for zero account id, got %v", *got)
	}
	got := accountIDFlag(7)
	if got == nil || *got != 7 {
		t.Errorf("expected pointer to 7, got %v", got)
	}
}

func TestValidateIngestCSVFlags(t *testing.T) {
	tmpDir := t.TempDir()
	exportFile := filepath.Join(tmpDir, "export.csv")
	if err := os.WriteFile(exportFile, []byte("date,amount\n2025-01-01,100"), 0644); err != nil {
		t.Fatalf("failed to create export file: %v", err)
	}

	tests := []struct {
		name        string
		file        string
		owner       uint
		format      string
		delimiter   string
		source      string
		expectError bool
	}{
		{"valid", exportFile, 1, "console", ",", "csv", false},
		{"missing file", filepath.Join(tmpDir, "missing.csv"), 1, "console", ",", "csv", true},
		{"zero owner", exportFile, 0, "console", ",", "csv", true},
		{"bad format", exportFile, 1, "xml", ",", "csv", true},
		{"bad delimiter", exportFile, 1, "console", "abc", "csv", true},
		{"empty source", exportFile, 1, "console", ",", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			csvFile = tt.file
			csvOwnerID = tt.owner
			csvOutputFormat = tt.format
			csvDelimiter = tt.delimiter
			csvSourceTag = tt.source

			err := validateIngestCSVFlags(ingestCSVCmd, nil)
			if tt.expectError && err == nil {
				t.Error("expected error but got none")
			}
			if !tt.expectError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateIngestAPIFlags(t *testing.T) {
	tests := []struct {
		name        string
		url         string
		owner       uint
		headers     []string
		format      string
		source      string
		expectError bool
	}{
		{"valid", "https://api.example.com/transactions", 1, nil, "console", "api", false},
		{"with headers", "https://api.example.com/tx", 1, []string{"Authorization=Bearer x"}, "json", "api", false},
		{"empty url", "", 1, nil, "console", "api", true},
		{"relative url", "/transactions", 1, nil, "console", "api", true},
		{"zero owner", "https://api.example.com/tx", 0, nil, "console", "api", true},
		{"bad header", "https://api.example.com/tx", 1, []string{"noequals"}, "console", "api", true},
		{"bad format", "https://api.example.com/tx", 1, nil, "xml", "api", true},
		{"empty source", "https://api.example.com/tx", 1, nil, "console", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiURL = tt.url
			apiOwnerID = tt.owner
			apiHeaders = tt.headers
			apiParams = nil
			apiOutputFormat = tt.format
			apiSourceTag = tt.source

			err := validateIngestAPIFlags(ingestAPICmd, nil)
			if tt.expectError && err == nil {
				t.Error("expected error but got none")
			}
			if !tt.expectError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateStatusFlags(t *testing.T) {
	statusOwnerID = 0
	if err := validateStatusFlags(statusCmd, nil); err == nil {
		t.Error("expected error for zero owner id")
	}

	statusOwnerID = 1
	if err := validateStatusFlags(statusCmd, nil); err != nil {
		t.Errorf("unexpected error for valid owner id: %v", err)
	}
}

func TestRunStatusReportsUnprocessedCount(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "status.db")
	viper.Set("db", dbPath)
	t.Cleanup(func() { viper.Set("db", "ingestor.db") })

	// Seed one unprocessed transaction for the owner
	db, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	st := store.New(db)
	batch, err := st.Begin(context.Background())
	if err != nil {
		t.Fatalf("failed to begin batch: %v", err)
	}
	now := time.Now().UTC()
	err = batch.Stage(&store.Transaction{
		OwnerID:         2,
		Amount:          "-5000",
		Merchant:        "KORZINKA",
		RawPayload:      datatypes.JSON([]byte(`{}`)),
		TransactionHash: "status-hash",
		CreatedAt:       now,
		IngestedAt:      now,
	})
	if err != nil {
		t.Fatalf("failed to stage: %v", err)
	}
	if err := batch.Commit(); err != nil {
		t.Fatalf("failed to commit: %v", err)
	}

	statusOwnerID = 2
	var buf bytes.Buffer
	statusCmd.SetOut(&buf)
	if err := runStatus(statusCmd, nil); err != nil {
		t.Fatalf("status command failed: %v", err)
	}

	if !strings.Contains(buf.String(), "Owner 2: 1 unprocessed") {
		t.Errorf("unexpected status output: %q", buf.String())
	}
}

func TestValidateIngestWebhookFlags(t *testing.T) {
	tmpDir := t.TempDir()
	payloadFile := filepath.Join(tmpDir, "event.json")
	if err := os.WriteFile(payloadFile, []byte(`{"transId":"abc"}`), 0644); err != nil {
		t.Fatalf("failed to create payload file: %v", err)
	}

	tests := []struct {
		name        string
		eventType   string
		owner       uint
		payload     string
		format      string
		expectError bool
	}{
		{"valid with file", "payment.created", 1, payloadFile, "console", false},
		{"valid stdin", "payment.created", 1, "", "console", false},
		{"empty event type", "", 1, payloadFile, "console", true},
		{"zero owner", "payment.created", 0, payloadFile, "console", true},
		{"missing payload file", "payment.created", 1, filepath.Join(tmpDir, "nope.json"), "console", true},
		{"bad format", "payment.created", 1, payloadFile, "xml", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			webhookEventType = tt.eventType
			webhookOwnerID = tt.owner
			webhookPayloadFile = tt.payload
			webhookOutputFormat = tt.format

			err := validateIngestWebhookFlags(ingestWebhookCmd, nil)
			if tt.expectError && err == nil {
				t.Error("expected error but got none")
			}
			if !tt.expectError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
