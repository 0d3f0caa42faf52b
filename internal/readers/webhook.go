package readers

import (
	"fmt"
	"strconv"
	"time"

	"golang-ingestion-service/internal/models"
	"golang-ingestion-service/pkg/logger"
)

// UzumMerchantLabel is the fixed counterparty name attached to records
// derived from Uzum Bank webhook deliveries.
const UzumMerchantLabel = "Uzum Bank"

// uzumTimestampFields are the millisecond-epoch fields an Uzum payload may
// carry, in precedence order. First present wins.
var uzumTimestampFields = []string{"timestamp", "transTime", "confirmTime"}

// TranslateUzumWebhook converts a single Uzum Bank webhook payload into a
// RawRecord shaped for the canonicalizer. Exactly one record is produced
// per call; the original payload is retained as the raw payload.
func TranslateUzumWebhook(payload models.RawRecord, eventType string) models.RawRecord {
	log := logger.GetGlobalLogger().WithComponent("webhook_translator")

	record := models.RawRecord{
		"merchant":    UzumMerchantLabel,
		"description": fmt.Sprintf("Uzum webhook: %s", eventType),
		"raw_payload": map[string]interface{}(payload),
		"source":      models.SourceUzumWebhook,
	}

	if amount, ok := payload["amount"]; ok && amount != nil {
		record["amount"] = amount
	}
	if transID, ok := payload["transId"]; ok && transID != nil {
		record["external_id"] = transID
	}

	for _, field := range uzumTimestampFields {
		value, ok := payload[field]
		if !ok || value == nil {
			continue
		}
		ms, ok := toMilliseconds(value)
		if !ok {
			log.WithFields(logger.Fields{
				"field": field,
				"value": value,
			}).Warn("Webhook timestamp field is not numeric")
			continue
		}
		record["date"] = time.UnixMilli(ms).UTC().Format(time.RFC3339)
		break
	}

	return record
}

// toMilliseconds coerces the JSON value of an epoch field to int64
// milliseconds. JSON numbers decode as float64; some gateways send them
// as strings.
func toMilliseconds(value interface{}) (int64, bool) {
	switch v := value.(type) {
	case float64:
		return int64(v), true
	case int64:
		return v, true
	case int:
		return int64(v), true
	case string:
		ms, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, false
		}
		return ms, true
	default:
		return 0, false
	}
}
