package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"golang-ingestion-service/internal/ingest"
	"golang-ingestion-service/internal/models"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flags for the ingest-webhook command
var (
	webhookPayloadFile  string
	webhookEventType    string
	webhookOwnerID      uint
	webhookAccountID    uint
	webhookOutputFormat string
	webhookOutputFile   string
)

// ingestWebhookCmd represents the ingest-webhook command
var ingestWebhookCmd = &cobra.Command{
	Use:   "ingest-webhook",
	Short: "Ingest a single Uzum bank webhook event",
	Long: `Ingest-webhook translates one Uzum bank webhook payload into a canonical
transaction and loads it into the store. Redelivered events are detected
as duplicates and skipped.

The payload is read from the file given with --payload, or from stdin
when --payload is omitted.

Examples:
  # Payload from a file
  ingestor ingest-webhook --payload event.json --event-type payment.created --owner 1

  # Payload from stdin
  cat event.json | ingestor ingest-webhook --event-type payment.created --owner 1`,

	PreRunE: validateIngestWebhookFlags,
	RunE:    runIngestWebhook,
}

func init() {
	rootCmd.AddCommand(ingestWebhookCmd)

	// Required flags
	ingestWebhookCmd.Flags().StringVarP(&webhookEventType, "event-type", "e", "", "webhook event type (required)")
	ingestWebhookCmd.Flags().UintVar(&webhookOwnerID, "owner", 0, "owning user id (required)")

	// Optional flags
	ingestWebhookCmd.Flags().StringVarP(&webhookPayloadFile, "payload", "p", "", "path to the payload JSON file (default: stdin)")
	ingestWebhookCmd.Flags().UintVar(&webhookAccountID, "account", 0, "account id to attach the transaction to")

	// Output flags
	ingestWebhookCmd.Flags().StringVarP(&webhookOutputFormat, "output-format", "o", "console", "output format: console, json, csv")
	ingestWebhookCmd.Flags().StringVar(&webhookOutputFile, "output-file", "", "output file path (default: stdout)")

	ingestWebhookCmd.MarkFlagRequired("event-type")
	ingestWebhookCmd.MarkFlagRequired("owner")
}

func validateIngestWebhookFlags(cmd *cobra.Command, args []string) error {
	if webhookEventType == "" {
		return fmt.Errorf("event-type is required")
	}
	if err := validateOwnerFlag(webhookOwnerID); err != nil {
		return err
	}
	if err := validateOutputFormat(webhookOutputFormat); err != nil {
		return err
	}
	if webhookPayloadFile != "" {
		if err := validateFileExists(webhookPayloadFile, "payload file"); err != nil {
			return err
		}
	}
	return nil
}

func readWebhookPayload() (models.RawRecord, error) {
	var data []byte
	var err error

	if webhookPayloadFile != "" {
		data, err = os.ReadFile(webhookPayloadFile)
	} else {
		data, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read payload: %w", err)
	}

	var payload models.RawRecord
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("payload is not a JSON object: %w", err)
	}

	return payload, nil
}

func runIngestWebhook(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "Ingesting webhook event: %s\n", webhookEventType)
	}

	payload, err := readWebhookPayload()
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return fmt.Errorf("failed to open transaction store: %w", err)
	}

	pipeline := ingest.NewPipeline(st)
	result, err := pipeline.IngestFromWebhook(ctx, payload, webhookEventType, webhookOwnerID, accountIDFlag(webhookAccountID))
	if err != nil {
		handler := NewCLIErrorHandler()
		os.Exit(handler.HandleError(err))
	}

	return writeReport(result, models.SourceUzumWebhook, webhookOutputFormat, webhookOutputFile)
}
