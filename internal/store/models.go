package store

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Transaction is the raw persistence layer: every ingested record lands
// here as-is, keeping the original payload for audit and reprocessing.
// Downstream transform and aggregate stages consume rows with
// Processed=false and flip the flag; they never re-ingest.
type Transaction struct {
	ID uint `gorm:"primaryKey"`

	OwnerID   uint  `gorm:"not null;index;index:idx_owner_processed,priority:1;index:idx_owner_date,priority:1"`
	AccountID *uint `gorm:"index"`

	// Amount is stored as extracted from the source, locale formatting
	// included. Positive = inflow, negative = outflow.
	Amount   string `gorm:"size:64"`
	Currency string `gorm:"size:3;default:UZS"`

	Merchant    string `gorm:"size:255"`
	Category    string `gorm:"size:100;index"`
	Description string `gorm:"type:text"`

	// Original source record, stored verbatim and never interpreted here
	RawPayload datatypes.JSON

	TransactionHash string `gorm:"size:64;uniqueIndex"`
	Processed       bool   `gorm:"index;index:idx_owner_processed,priority:2;default:false"`
	ExternalID      string `gorm:"size:255;index"`

	// CreatedAt is the transaction time when the source provided a
	// parseable date, otherwise the ingestion time. IngestedAt is always
	// the insertion time.
	CreatedAt  time.Time `gorm:"not null;index;index:idx_owner_date,priority:2"`
	IngestedAt time.Time `gorm:"not null"`
	UpdatedAt  time.Time
}

// AmountValue parses the stored amount into a decimal, tolerating
// thousands separators and surrounding whitespace. Intended for
// downstream consumers; the ingestion pipeline itself never cleans
// amounts.
func (t *Transaction) AmountValue() (decimal.Decimal, error) {
	cleaned := strings.NewReplacer(",", "", " ", "", " ", "").Replace(t.Amount)
	return decimal.NewFromString(cleaned)
}

// Account is a financial source a transaction may belong to: a bank
// account, an e-wallet or a manual CSV upload. Owned by the account
// service outside this pipeline; the loader only references its id.
type Account struct {
	ID uint `gorm:"primaryKey"`

	Name     string `gorm:"not null"`
	Provider string `gorm:"not null"`

	AccountType string
	Currency    string          `gorm:"size:3;not null;default:UZS"`
	Balance     decimal.Decimal `gorm:"type:decimal(15,2)"`

	OwnerID  uint `gorm:"not null;index"`
	IsActive bool `gorm:"default:true"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time
}

// User owns accounts and transactions. Managed entirely by the excluded
// auth service; present here only as the migration target for the
// ownership foreign keys.
type User struct {
	ID uint `gorm:"primaryKey"`

	Email     string    `gorm:"not null;uniqueIndex"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName keeps the historical table name used by the wider system
func (User) TableName() string { return "users_table" }
