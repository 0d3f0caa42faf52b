package config

import (
	"testing"

	"golang-ingestion-service/internal/reporter"
)

func TestCreateTextConfig(t *testing.T) {
	tests := []struct {
		name      string
		delimiter string
		want      rune
		wantErr   bool
	}{
		{"default", "", ',', false},
		{"comma", ",", ',', false},
		{"semicolon", ";", ';', false},
		{"tab escape", "\\t", '\t', false},
		{"tab word", "tab", '\t', false},
		{"multi char", "ab", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := CreateTextConfig(tt.delimiter)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("CreateTextConfig failed: %v", err)
			}
			if config.Delimiter != tt.want {
				t.Errorf("expected delimiter %q, got %q", tt.want, config.Delimiter)
			}
		})
	}
}

func TestCreateReportConfig(t *testing.T) {
	tests := []struct {
		format string
		want   reporter.OutputFormat
	}{
		{"console", reporter.FormatConsole},
		{"json", reporter.FormatJSON},
		{"csv", reporter.FormatCSV},
		{"unknown", reporter.FormatConsole},
	}

	for _, tt := range tests {
		config := CreateReportConfig(tt.format)
		if config.Format != tt.want {
			t.Errorf("CreateReportConfig(%q) = %s, want %s", tt.format, config.Format, tt.want)
		}
		if err := config.Validate(); err != nil {
			t.Errorf("CreateReportConfig(%q) produced invalid config: %v", tt.format, err)
		}
	}
}

func TestParseKeyValueFlags(t *testing.T) {
	headers, err := ParseKeyValueFlags([]string{"Authorization=Bearer token", "X-Req=a=b"})
	if err != nil {
		t.Fatalf("ParseKeyValueFlags failed: %v", err)
	}
	if headers["Authorization"] != "Bearer token" {
		t.Errorf("unexpected value: %q", headers["Authorization"])
	}
	if headers["X-Req"] != "a=b" {
		t.Errorf("value should keep embedded equals, got %q", headers["X-Req"])
	}

	if _, err := ParseKeyValueFlags([]string{"novalue"}); err == nil {
		t.Error("expected error for pair without equals")
	}
	if _, err := ParseKeyValueFlags([]string{"=value"}); err == nil {
		t.Error("expected error for empty key")
	}

	result, err := ParseKeyValueFlags(nil)
	if err != nil {
		t.Fatalf("ParseKeyValueFlags(nil) failed: %v", err)
	}
	if result != nil {
		t.Errorf("expected nil map for no pairs, got %v", result)
	}
}
