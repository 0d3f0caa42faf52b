// Package canonical maps loosely-typed source records into the single
// canonical transaction shape and derives their content fingerprint.
//
// Source schemas are not controlled by this system: every bank, wallet and
// export tool names its fields differently, often in a different language.
// Each canonical field is therefore resolved through an ordered list of
// candidate source keys, first present non-empty value wins. A source
// using a key outside the table loses that field silently; that is an
// accepted trade-off over rejecting the upload.
package canonical

import (
	"fmt"
	"strconv"

	"golang-ingestion-service/internal/models"
)

// Candidate source keys per canonical field, in precedence order.
// Case-sensitive; Cyrillic variants cover Uzbek and Russian bank exports.
var (
	dateKeys = []string{"date", "Date", "created_at", "timestamp", "Дата"}

	amountKeys = []string{"amount", "Amount", "Сумма", "value"}

	merchantKeys = []string{"merchant", "Merchant", "recipient", "payee", "Получатель"}

	categoryKeys = []string{"category", "Category", "Категория"}

	descriptionKeys = []string{"description", "Description", "note", "Описание"}

	externalIDKeys = []string{"id", "transaction_id", "payment_id", "external_id"}
)

// Canonicalize maps an arbitrary RawRecord into a CanonicalTransaction
// tagged with the given source, computing the fingerprint last. Fields
// with no matching candidate key stay empty.
func Canonicalize(raw models.RawRecord, source string) models.CanonicalTransaction {
	txn := models.CanonicalTransaction{
		Date:        firstPresent(raw, dateKeys),
		Amount:      firstPresent(raw, amountKeys),
		Merchant:    firstPresent(raw, merchantKeys),
		Category:    firstPresent(raw, categoryKeys),
		Description: firstPresent(raw, descriptionKeys),
		ExternalID:  firstPresent(raw, externalIDKeys),
		RawPayload:  rawPayloadOf(raw),
		Source:      source,
	}
	txn.TransactionHash = Fingerprint(&txn)
	return txn
}

// CanonicalizeAll maps a record sequence in order
func CanonicalizeAll(raws []models.RawRecord, source string) []models.CanonicalTransaction {
	txns := make([]models.CanonicalTransaction, 0, len(raws))
	for _, raw := range raws {
		txns = append(txns, Canonicalize(raw, source))
	}
	return txns
}

// rawPayloadOf keeps the full raw map for audit unless the map already
// carries its own raw_payload, so re-canonicalizing an already-canonical
// record (webhook-derived maps) stays idempotent.
func rawPayloadOf(raw models.RawRecord) interface{} {
	if payload, ok := raw["raw_payload"]; ok && payload != nil {
		return payload
	}
	if raw == nil {
		return nil
	}
	return map[string]interface{}(raw)
}

// firstPresent resolves a canonical field by taking the first candidate
// key holding a non-absent, non-empty value
func firstPresent(raw models.RawRecord, keys []string) string {
	for _, key := range keys {
		value, ok := raw[key]
		if !ok || value == nil {
			continue
		}
		if s := coerceString(value); s != "" {
			return s
		}
	}
	return ""
}

// coerceString stringifies a raw scalar. JSON numbers arrive as float64;
// whole values must not grow a trailing ".0" or fingerprints would differ
// between sources encoding the same amount as int and float.
func coerceString(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
