// Package models defines the record shapes flowing through the ingestion
// pipeline.
//
// A RawRecord is whatever a source reader could extract from its input: a
// loosely-typed field map whose keys follow the source's own vocabulary
// (casing and language included). The canonicalizer maps RawRecords into
// CanonicalTransactions, the single shape every later stage operates on.
package models

import (
	"fmt"
	"strings"
)

// RawRecord is a loosely-typed field map produced by a source reader.
// It is ephemeral: never persisted as-is except inside a transaction's
// raw payload.
type RawRecord map[string]interface{}

// Source tags identifying ingestion origin.
const (
	SourceCSV         = "csv"
	SourceAPI         = "api"
	SourceUzumWebhook = "uzum_webhook"
)

// CanonicalTransaction is the normalized transaction shape. Field values
// keep their source formatting: dates and amounts are not unified or
// cleaned of locale formatting at this layer. An empty string means the
// source carried no recognizable value for the field.
type CanonicalTransaction struct {
	Date        string      `json:"date,omitempty"`
	Amount      string      `json:"amount,omitempty"`
	Merchant    string      `json:"merchant,omitempty"`
	Category    string      `json:"category,omitempty"`
	Description string      `json:"description,omitempty"`
	ExternalID  string      `json:"external_id,omitempty"`
	RawPayload  interface{} `json:"raw_payload,omitempty"`
	Source      string      `json:"source"`

	// TransactionHash is derived from (Date, Amount, Merchant, Source) of
	// this instance, computed last. Mutating identifying fields afterwards
	// invalidates it.
	TransactionHash string `json:"transaction_hash"`
}

// String returns a compact representation for logging
func (t *CanonicalTransaction) String() string {
	hash := t.TransactionHash
	if len(hash) > 8 {
		hash = hash[:8]
	}
	return fmt.Sprintf("CanonicalTransaction{Date: %s, Amount: %s, Merchant: %s, Source: %s, Hash: %s}",
		t.Date, t.Amount, t.Merchant, t.Source, hash)
}

// RowError records a single record that failed staging without aborting
// its batch. Position is 1-based within the input order.
type RowError struct {
	Position int    `json:"position"`
	Message  string `json:"message"`
}

// Error implements the error interface
func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Position, e.Message)
}

// IngestResult summarizes one ingestion call. Every input record is
// accounted for in exactly one of Saved, Duplicates or Errors.
type IngestResult struct {
	Total      int        `json:"total"`
	Saved      int        `json:"saved"`
	Duplicates int        `json:"duplicates"`
	Errors     []RowError `json:"errors"`
}

// HasErrors returns true if any record failed staging
func (r *IngestResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// String returns a human-readable summary of the ingestion result
func (r *IngestResult) String() string {
	summary := fmt.Sprintf("Ingested %d records: %d saved, %d duplicates, %d errors",
		r.Total, r.Saved, r.Duplicates, len(r.Errors))
	if len(r.Errors) == 0 {
		return summary
	}

	var msgs []string
	for _, rowErr := range r.Errors {
		msgs = append(msgs, rowErr.Error())
	}
	return summary + " (" + strings.Join(msgs, "; ") + ")"
}
