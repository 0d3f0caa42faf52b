package readers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang-ingestion-service/internal/models"
	"golang-ingestion-service/pkg/errors"
	"golang-ingestion-service/pkg/logger"
)

// DefaultFetchTimeout bounds a single upstream fetch.
const DefaultFetchTimeout = 30 * time.Second

// APIFetcher pulls transaction records from a generic JSON endpoint
type APIFetcher struct {
	client *http.Client
	logger logger.Logger
}

// NewAPIFetcher creates an APIFetcher. A nil client gets a default one
// with the standard fetch timeout.
func NewAPIFetcher(client *http.Client) *APIFetcher {
	if client == nil {
		client = &http.Client{Timeout: DefaultFetchTimeout}
	}
	return &APIFetcher{
		client: client,
		logger: logger.GetGlobalLogger().WithComponent("api_fetcher"),
	}
}

// Fetch performs a single GET against the endpoint and normalizes the JSON
// body into a record sequence. A non-2xx status fails the call.
func (f *APIFetcher) Fetch(ctx context.Context, endpoint string, headers, params map[string]string) ([]models.RawRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.UpstreamRequestError(endpoint, err)
	}

	if len(params) > 0 {
		query := req.URL.Query()
		for key, value := range params {
			query.Set(key, value)
		}
		req.URL.RawQuery = query.Encode()
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	f.logger.WithField("url", redactedURL(req.URL)).Debug("Fetching transactions from upstream")

	resp, err := f.client.Do(req)
	if err != nil {
		f.logger.WithError(err).Error("Upstream request failed")
		return nil, errors.UpstreamRequestError(endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		f.logger.WithField("status", resp.StatusCode).Error("Upstream returned non-success status")
		return nil, errors.UpstreamStatusError(endpoint, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.UpstreamRequestError(endpoint, err)
	}

	var decoded interface{}
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, errors.Wrap(err, errors.CategoryUpstream, errors.CodeUnexpectedShape,
			"upstream response is not valid JSON").
			WithContext("url", endpoint)
	}

	records, err := NormalizeResponse(decoded)
	if err != nil {
		return nil, err
	}

	f.logger.WithField("records", len(records)).Debug("Fetched transaction records")
	return records, nil
}

// NormalizeResponse locates the record sequence inside an upstream JSON
// body. A bare array is used as-is. For an object the sequence is looked
// up under "data", "transactions" and "result.transactions" in that
// order; an object with none of those yields an empty sequence. Anything
// else is an unexpected shape.
func NormalizeResponse(body interface{}) ([]models.RawRecord, error) {
	switch value := body.(type) {
	case []interface{}:
		return toRawRecords(value), nil
	case map[string]interface{}:
		if seq, ok := sequenceAt(value, "data"); ok {
			return toRawRecords(seq), nil
		}
		if seq, ok := sequenceAt(value, "transactions"); ok {
			return toRawRecords(seq), nil
		}
		if nested, ok := value["result"].(map[string]interface{}); ok {
			if seq, ok := sequenceAt(nested, "transactions"); ok {
				return toRawRecords(seq), nil
			}
		}
		return []models.RawRecord{}, nil
	default:
		return nil, errors.UnexpectedShapeError(fmt.Sprintf("%T", body))
	}
}

// sequenceAt returns a non-empty record sequence under the key. Empty
// sequences fall through so later candidate keys can still match.
func sequenceAt(obj map[string]interface{}, key string) ([]interface{}, bool) {
	seq, ok := obj[key].([]interface{})
	if !ok || len(seq) == 0 {
		return nil, false
	}
	return seq, true
}

func toRawRecords(seq []interface{}) []models.RawRecord {
	records := make([]models.RawRecord, 0, len(seq))
	for _, item := range seq {
		if fields, ok := item.(map[string]interface{}); ok {
			records = append(records, models.RawRecord(fields))
			continue
		}
		// Scalar entries carry no extractable fields; keep the original
		// value for the audit trail.
		records = append(records, models.RawRecord{"raw_payload": item})
	}
	return records
}

func redactedURL(u *url.URL) string {
	redacted := *u
	redacted.RawQuery = ""
	redacted.User = nil
	return redacted.String()
}
