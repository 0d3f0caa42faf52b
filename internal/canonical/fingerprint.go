package canonical

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"golang-ingestion-service/internal/models"
)

// Fingerprint derives the deduplication identity of a transaction: the
// hex SHA-256 digest of its pipe-joined identifying fields (date, amount,
// merchant, source), missing fields as empty strings.
//
// Category, description and external id deliberately do not participate:
// two records describing the same economic event must collide here even
// when their annotations differ.
func Fingerprint(txn *models.CanonicalTransaction) string {
	key := strings.Join([]string{
		txn.Date,
		txn.Amount,
		txn.Merchant,
		txn.Source,
	}, "|")

	digest := sha256.Sum256([]byte(key))
	return hex.EncodeToString(digest[:])
}
