// Package ingest composes the ingestion pipelines: source reader →
// canonicalizer → fingerprint → batch loader.
//
// The three entry points mirror the three source kinds. Each call is one
// independent, sequential batch; orchestrators hold no state between
// calls and are safe to re-invoke with the same input, because re-loading
// already-stored fingerprints is counted as duplicates rather than
// re-persisted.
package ingest

import (
	"context"
	"net/http"

	"golang-ingestion-service/internal/canonical"
	"golang-ingestion-service/internal/loader"
	"golang-ingestion-service/internal/models"
	"golang-ingestion-service/internal/readers"
	"golang-ingestion-service/internal/store"
	"golang-ingestion-service/pkg/logger"
)

// Pipeline wires the ingestion stages against one storage collaborator
type Pipeline struct {
	loader  *loader.Loader
	fetcher *readers.APIFetcher
	text    *readers.TextConfig
	logger  logger.Logger
}

// Option configures optional pipeline collaborators
type Option func(*Pipeline)

// WithHTTPClient overrides the HTTP client used for API ingestion
func WithHTTPClient(client *http.Client) Option {
	return func(p *Pipeline) {
		p.fetcher = readers.NewAPIFetcher(client)
	}
}

// WithTextConfig overrides the delimited-text parsing configuration
func WithTextConfig(config *readers.TextConfig) Option {
	return func(p *Pipeline) {
		p.text = config
	}
}

// NewPipeline creates a Pipeline backed by the given store
func NewPipeline(st store.Store, opts ...Option) *Pipeline {
	p := &Pipeline{
		loader:  loader.New(st),
		fetcher: readers.NewAPIFetcher(nil),
		text:    readers.DefaultTextConfig(),
		logger:  logger.GetGlobalLogger().WithComponent("ingest"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// IngestFromCSV decodes and loads a delimited-text export. The sourceTag
// defaults to "csv" and lands on every stored record.
func (p *Pipeline) IngestFromCSV(ctx context.Context, data []byte, ownerID uint, accountID *uint, sourceTag string) (*models.IngestResult, error) {
	if sourceTag == "" {
		sourceTag = models.SourceCSV
	}

	rows, err := readers.ReadDelimited(data, p.text)
	if err != nil {
		return nil, err
	}

	p.logger.WithFields(logger.Fields{
		"source": sourceTag,
		"rows":   len(rows),
	}).Debug("Ingesting delimited-text export")

	txns := canonical.CanonicalizeAll(rows, sourceTag)
	return p.loader.Load(ctx, txns, ownerID, accountID)
}

// IngestFromAPI fetches records from a JSON endpoint and loads them
func (p *Pipeline) IngestFromAPI(ctx context.Context, url string, headers, params map[string]string, ownerID uint, accountID *uint, sourceTag string) (*models.IngestResult, error) {
	if sourceTag == "" {
		sourceTag = models.SourceAPI
	}

	rows, err := p.fetcher.Fetch(ctx, url, headers, params)
	if err != nil {
		return nil, err
	}

	p.logger.WithFields(logger.Fields{
		"source": sourceTag,
		"rows":   len(rows),
	}).Debug("Ingesting API response")

	txns := canonical.CanonicalizeAll(rows, sourceTag)
	return p.loader.Load(ctx, txns, ownerID, accountID)
}

// IngestFromWebhook translates and loads a single Uzum Bank webhook
// delivery. The result total is always 1.
func (p *Pipeline) IngestFromWebhook(ctx context.Context, payload models.RawRecord, eventType string, ownerID uint, accountID *uint) (*models.IngestResult, error) {
	record := readers.TranslateUzumWebhook(payload, eventType)
	txn := canonical.Canonicalize(record, models.SourceUzumWebhook)

	p.logger.WithFields(logger.Fields{
		"event_type":  eventType,
		"fingerprint": txn.TransactionHash,
	}).Debug("Ingesting webhook delivery")

	return p.loader.Load(ctx, []models.CanonicalTransaction{txn}, ownerID, accountID)
}
