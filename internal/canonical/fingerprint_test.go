package canonical

import (
	"testing"

	"golang-ingestion-service/internal/models"
)

func TestFingerprintDeterminism(t *testing.T) {
	a := &models.CanonicalTransaction{
		Date:     "2025-01-15",
		Amount:   "-12000",
		Merchant: "MAKRO TASHKENT",
		Source:   models.SourceCSV,
	}
	b := &models.CanonicalTransaction{
		Date:     "2025-01-15",
		Amount:   "-12000",
		Merchant: "MAKRO TASHKENT",
		Source:   models.SourceCSV,

		// Non-identifying fields differ
		Category:    "Groceries",
		Description: "weekly shop",
		ExternalID:  "other-id",
	}

	if Fingerprint(a) != Fingerprint(b) {
		t.Error("Category, description and external id must not affect the fingerprint")
	}
}

func TestFingerprintSensitivity(t *testing.T) {
	base := models.CanonicalTransaction{
		Date:     "2025-01-15",
		Amount:   "-12000",
		Merchant: "MAKRO TASHKENT",
		Source:   models.SourceCSV,
	}

	tests := []struct {
		name   string
		mutate func(*models.CanonicalTransaction)
	}{
		{"date", func(t *models.CanonicalTransaction) { t.Date = "2025-01-16" }},
		{"amount", func(t *models.CanonicalTransaction) { t.Amount = "-12001" }},
		{"merchant", func(t *models.CanonicalTransaction) { t.Merchant = "Makro" }},
		{"source", func(t *models.CanonicalTransaction) { t.Source = models.SourceAPI }},
	}

	original := Fingerprint(&base)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			changed := base
			tt.mutate(&changed)
			if Fingerprint(&changed) == original {
				t.Errorf("Changing %s should change the fingerprint", tt.name)
			}
		})
	}
}

func TestFingerprintMissingFields(t *testing.T) {
	empty := &models.CanonicalTransaction{Source: models.SourceCSV}

	digest := Fingerprint(empty)
	if len(digest) != 64 {
		t.Errorf("Expected 64-char hex digest, got %d chars", len(digest))
	}

	// Stable across calls
	if Fingerprint(empty) != digest {
		t.Error("Fingerprint of empty fields should be stable")
	}
}

func TestFingerprintMatchesCanonicalize(t *testing.T) {
	raw := models.RawRecord{"date": "2025-01-15", "amount": "-500", "merchant": "Evos"}

	txn := Canonicalize(raw, models.SourceCSV)
	if txn.TransactionHash != Fingerprint(&txn) {
		t.Error("Canonicalize must compute the fingerprint of the finished instance")
	}
}
