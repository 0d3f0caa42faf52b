package store

import (
	"context"
	"fmt"

	"golang-ingestion-service/pkg/logger"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// gormStore implements Store on top of a *gorm.DB
type gormStore struct {
	db     *gorm.DB
	logger logger.Logger
}

// New wraps an existing database handle as a Store
func New(db *gorm.DB) Store {
	return &gormStore{
		db:     db,
		logger: logger.GetGlobalLogger().WithComponent("store"),
	}
}

// Open opens (or creates) a SQLite database at the given DSN and migrates
// the ingestion schema. Use "file::memory:?cache=shared" for an ephemeral
// database.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(&User{}, &Account{}, &Transaction{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return db, nil
}

func (s *gormStore) ExistsByHash(ctx context.Context, hash string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&Transaction{}).
		Where("transaction_hash = ?", hash).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *gormStore) UnprocessedCount(ctx context.Context, ownerID uint) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&Transaction{}).
		Where("owner_id = ? AND processed = ?", ownerID, false).
		Count(&count).Error
	return count, err
}

func (s *gormStore) Begin(ctx context.Context) (Batch, error) {
	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &gormBatch{tx: tx, logger: s.logger}, nil
}

// gormBatch stages inserts inside one database transaction
type gormBatch struct {
	tx     *gorm.DB
	logger logger.Logger
	staged int
	done   bool
}

func (b *gormBatch) Exists(hash string) (bool, error) {
	var count int64
	err := b.tx.Model(&Transaction{}).
		Where("transaction_hash = ?", hash).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (b *gormBatch) Stage(txn *Transaction) error {
	if err := b.tx.Create(txn).Error; err != nil {
		return err
	}
	b.staged++
	return nil
}

func (b *gormBatch) Commit() error {
	if b.done {
		return nil
	}

	// done is latched only on success so a failed commit leaves the
	// batch open for the caller's compensating Rollback.
	if err := b.tx.Commit().Error; err != nil {
		b.logger.WithError(err).WithField("staged", b.staged).Error("Batch commit failed")
		return err
	}
	b.done = true
	b.logger.WithField("staged", b.staged).Debug("Batch committed")
	return nil
}

func (b *gormBatch) Rollback() error {
	if b.done {
		return nil
	}
	b.done = true
	return b.tx.Rollback().Error
}
