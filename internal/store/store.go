// Package store is the storage collaborator of the ingestion pipeline.
//
// The pipeline needs four things from storage: lookup by fingerprint,
// staging of typed records, atomic commit/rollback of a staged batch, and
// a hard uniqueness constraint on the transaction hash. The Store and
// Batch interfaces capture exactly that; the GORM implementation backs
// them with SQLite by default.
package store

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
)

// Store provides fingerprint lookup and batch staging against durable
// storage
type Store interface {
	// ExistsByHash reports whether a transaction with the fingerprint is
	// already persisted
	ExistsByHash(ctx context.Context, hash string) (bool, error)

	// Begin opens a staging batch. Staged inserts become visible only
	// after Commit; Rollback discards all of them.
	Begin(ctx context.Context) (Batch, error)

	// UnprocessedCount returns how many stored transactions of an owner
	// still await the downstream transform stage
	UnprocessedCount(ctx context.Context, ownerID uint) (int64, error)
}

// Batch stages transaction inserts inside one storage transaction.
// Exists reads through the same transaction, so it also sees records
// staged earlier in the batch.
type Batch interface {
	Exists(hash string) (bool, error)
	Stage(txn *Transaction) error
	Commit() error
	Rollback() error
}

// IsDuplicateErr reports whether a staging error was caused by the
// transaction-hash uniqueness constraint. The loader classifies such
// failures as duplicates rather than row errors, which closes the
// check-then-insert race under concurrent ingestion.
func IsDuplicateErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key")
}
