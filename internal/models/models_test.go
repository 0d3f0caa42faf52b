package models

import (
	"strings"
	"testing"
)

func TestRowErrorFormatting(t *testing.T) {
	err := RowError{Position: 3, Message: "payload not serializable"}

	expected := "row 3: payload not serializable"
	if err.Error() != expected {
		t.Errorf("expected %q, got %q", expected, err.Error())
	}
}

func TestIngestResultString(t *testing.T) {
	tests := []struct {
		name     string
		result   IngestResult
		contains []string
	}{
		{
			name:     "clean batch",
			result:   IngestResult{Total: 5, Saved: 5},
			contains: []string{"5 records", "5 saved", "0 duplicates", "0 errors"},
		},
		{
			name: "batch with row errors",
			result: IngestResult{
				Total:      3,
				Saved:      1,
				Duplicates: 1,
				Errors:     []RowError{{Position: 2, Message: "bad payload"}},
			},
			contains: []string{"1 saved", "1 duplicates", "1 errors", "row 2: bad payload"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tt.result.String()
			for _, want := range tt.contains {
				if !strings.Contains(s, want) {
					t.Errorf("expected summary to contain %q, got %q", want, s)
				}
			}
		})
	}
}

func TestIngestResultHasErrors(t *testing.T) {
	clean := IngestResult{Total: 2, Saved: 2}
	if clean.HasErrors() {
		t.Error("clean result should not report errors")
	}

	failed := IngestResult{Total: 1, Errors: []RowError{{Position: 1, Message: "x"}}}
	if !failed.HasErrors() {
		t.Error("result with row errors should report errors")
	}
}

func TestCanonicalTransactionString(t *testing.T) {
	txn := &CanonicalTransaction{
		Date:            "2025-01-15",
		Amount:          "-12000",
		Merchant:        "MAKRO TASHKENT",
		Source:          SourceCSV,
		TransactionHash: "abcdef0123456789",
	}

	s := txn.String()
	if !strings.Contains(s, "MAKRO TASHKENT") {
		t.Errorf("expected merchant in %q", s)
	}
	if !strings.Contains(s, "abcdef01") || strings.Contains(s, "abcdef0123456789") {
		t.Errorf("expected truncated hash in %q", s)
	}
}
