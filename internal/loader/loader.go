// Package loader persists canonical transactions in deduplicated batches.
//
// Loading is a fold over the batch: each record resolves to exactly one
// tagged outcome (inserted, duplicate, or failed) and the fold tallies
// them into the result. Row-level failures never abort the batch; the
// whole staged set is committed once, and a commit failure rolls the
// entire call back.
package loader

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang-ingestion-service/internal/models"
	"golang-ingestion-service/internal/store"
	"golang-ingestion-service/pkg/errors"
	"golang-ingestion-service/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// dateLayouts are tried in order when deriving the stored created_at from
// a canonical date. Sources that match none fall back to ingestion time.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02.01.2006",
}

// Loader persists canonical transaction batches against a storage
// collaborator
type Loader struct {
	store  store.Store
	logger logger.Logger
}

// New creates a Loader backed by the given store
func New(st store.Store) *Loader {
	return &Loader{
		store:  st,
		logger: logger.GetGlobalLogger().WithComponent("loader"),
	}
}

type outcomeKind int

const (
	outcomeInserted outcomeKind = iota
	outcomeDuplicate
	outcomeFailed
)

// rowOutcome tags the result of staging one record
type rowOutcome struct {
	kind    outcomeKind
	failure string
}

// Load persists the batch in input order, skipping records whose
// fingerprint already exists and collecting per-record errors without
// aborting. The staged set commits once; on commit failure everything
// staged by this call is rolled back and the failure surfaces to the
// caller.
func (l *Loader) Load(ctx context.Context, txns []models.CanonicalTransaction, ownerID uint, accountID *uint) (*models.IngestResult, error) {
	result := &models.IngestResult{Total: len(txns), Errors: []models.RowError{}}
	if len(txns) == 0 {
		return result, nil
	}

	batchID := uuid.NewString()
	log := l.logger.WithFields(logger.Fields{
		"batch_id": batchID,
		"owner_id": ownerID,
		"records":  len(txns),
	})

	batch, err := l.store.Begin(ctx)
	if err != nil {
		return nil, errors.StorageError(errors.CodeBeginFailed, "begin", err)
	}

	ingestedAt := time.Now().UTC()
	progress := logger.NewProgressTracker(logger.ProgressConfig{
		Operation: "load_batch",
		Total:     int64(len(txns)),
		Logger:    log,
	})

	for i, txn := range txns {
		outcome := l.stageOne(batch, &txn, ownerID, accountID, ingestedAt)
		switch outcome.kind {
		case outcomeInserted:
			result.Saved++
		case outcomeDuplicate:
			result.Duplicates++
		case outcomeFailed:
			result.Errors = append(result.Errors, models.RowError{
				Position: i + 1,
				Message:  outcome.failure,
			})
		}
		progress.Update(int64(i + 1))
	}
	progress.Complete()

	if err := batch.Commit(); err != nil {
		if rbErr := batch.Rollback(); rbErr != nil {
			log.WithError(rbErr).Warn("Rollback after failed commit also failed")
		}
		log.WithError(err).Error("Batch commit failed, all staged records rolled back")
		return nil, errors.CommitError(err)
	}

	log.WithFields(logger.Fields{
		"saved":      result.Saved,
		"duplicates": result.Duplicates,
		"errors":     len(result.Errors),
	}).Info("Batch loaded")

	return result, nil
}

// stageOne resolves a single record to its outcome. A uniqueness
// violation surfaced by the constraint at staging counts as a duplicate,
// not an error: the existence check and the insert are not atomic, so
// the constraint is the authoritative dedup guard.
func (l *Loader) stageOne(batch store.Batch, txn *models.CanonicalTransaction, ownerID uint, accountID *uint, ingestedAt time.Time) rowOutcome {
	exists, err := batch.Exists(txn.TransactionHash)
	if err != nil {
		return rowOutcome{kind: outcomeFailed, failure: fmt.Sprintf("existence check failed: %v", err)}
	}
	if exists {
		return rowOutcome{kind: outcomeDuplicate}
	}

	record, err := buildStored(txn, ownerID, accountID, ingestedAt)
	if err != nil {
		return rowOutcome{kind: outcomeFailed, failure: err.Error()}
	}

	if err := batch.Stage(record); err != nil {
		if store.IsDuplicateErr(err) {
			return rowOutcome{kind: outcomeDuplicate}
		}
		return rowOutcome{kind: outcomeFailed, failure: fmt.Sprintf("staging failed: %v", err)}
	}

	return rowOutcome{kind: outcomeInserted}
}

// buildStored converts a canonical transaction into its persisted form
func buildStored(txn *models.CanonicalTransaction, ownerID uint, accountID *uint, ingestedAt time.Time) (*store.Transaction, error) {
	payload, err := json.Marshal(txn.RawPayload)
	if err != nil {
		return nil, fmt.Errorf("raw payload not serializable: %v", err)
	}

	return &store.Transaction{
		OwnerID:         ownerID,
		AccountID:       accountID,
		Amount:          txn.Amount,
		Merchant:        txn.Merchant,
		Category:        txn.Category,
		Description:     txn.Description,
		ExternalID:      txn.ExternalID,
		RawPayload:      datatypes.JSON(payload),
		TransactionHash: txn.TransactionHash,
		Processed:       false,
		CreatedAt:       transactionTime(txn.Date, ingestedAt),
		IngestedAt:      ingestedAt,
	}, nil
}

// transactionTime parses the canonical date against the known layouts,
// falling back to ingestion time
func transactionTime(date string, fallback time.Time) time.Time {
	if date == "" {
		return fallback
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, date); err == nil {
			return parsed.UTC()
		}
	}
	return fallback
}
