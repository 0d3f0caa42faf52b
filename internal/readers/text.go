// Package readers decodes raw bytes and payloads from each transaction
// source into sequences of loosely-typed RawRecords.
//
// Three readers are provided:
//   - delimited-text reader for bank export files, with a legacy
//     Windows-1251 fallback for non-UTF-8 uploads
//   - API fetcher for generic JSON transaction endpoints, normalizing the
//     handful of response envelopes seen in the wild
//   - webhook translator converting a single Uzum Bank callback payload
//     into one RawRecord
//
// Readers extract fields best-effort; interpreting them is the
// canonicalizer's job.
package readers

import (
	"encoding/csv"
	"io"
	"strings"
	"unicode/utf8"

	"golang-ingestion-service/internal/models"
	"golang-ingestion-service/pkg/errors"
	"golang-ingestion-service/pkg/logger"

	"golang.org/x/text/encoding/charmap"
)

// TextConfig holds configuration for delimited-text parsing
type TextConfig struct {
	Delimiter        rune
	TrimLeadingSpace bool
}

// DefaultTextConfig returns a configuration matching common bank exports
func DefaultTextConfig() *TextConfig {
	return &TextConfig{
		Delimiter:        ',',
		TrimLeadingSpace: true,
	}
}

// DecodeText decodes file bytes as UTF-8, falling back to Windows-1251 for
// legacy bank exports. Bytes that neither encoding can represent fail with
// a decode error.
func DecodeText(data []byte) (string, error) {
	if utf8.Valid(data) {
		return string(data), nil
	}

	decoded, err := charmap.Windows1251.NewDecoder().Bytes(data)
	if err != nil {
		return "", errors.DecodeError(err)
	}

	// The charmap decoder substitutes U+FFFD for bytes with no mapping
	// instead of failing, so treat its presence as an unreadable input.
	if strings.ContainsRune(string(decoded), utf8.RuneError) {
		return "", errors.DecodeError(nil).
			WithContext("fallback_encoding", "windows-1251")
	}

	return string(decoded), nil
}

// ReadDelimited parses a header-delimited table into one RawRecord per
// row. Rows whose every field is empty or whitespace are dropped silently;
// trailing blank lines in exports are common and not an error.
func ReadDelimited(data []byte, config *TextConfig) ([]models.RawRecord, error) {
	if config == nil {
		config = DefaultTextConfig()
	}

	log := logger.GetGlobalLogger().WithComponent("text_reader")

	text, err := DecodeText(data)
	if err != nil {
		log.WithError(err).Error("Failed to decode input bytes")
		return nil, err
	}

	reader := csv.NewReader(strings.NewReader(text))
	reader.Comma = config.Delimiter
	reader.TrimLeadingSpace = config.TrimLeadingSpace
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			log.Debug("Input contains no header row")
			return []models.RawRecord{}, nil
		}
		return nil, errors.Wrap(err, errors.CategoryDecode, errors.CodeMalformedData,
			"failed to read header row").
			WithSuggestion("check that the file is a valid delimited-text export")
	}

	for i, header := range headers {
		headers[i] = strings.TrimSpace(header)
	}

	records := make([]models.RawRecord, 0)
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, errors.Wrap(err, errors.CategoryDecode, errors.CodeMalformedData,
				"failed to parse delimited row").
				WithContext("line", line)
		}

		if isEmptyRow(row) {
			log.WithField("line", line).Debug("Skipping empty row")
			continue
		}

		record := make(models.RawRecord, len(headers))
		for i, header := range headers {
			if header == "" {
				continue
			}
			if i < len(row) {
				record[header] = strings.TrimSpace(row[i])
			}
		}
		records = append(records, record)
	}

	log.WithFields(logger.Fields{
		"rows":    len(records),
		"columns": len(headers),
	}).Debug("Parsed delimited input")

	return records, nil
}

func isEmptyRow(row []string) bool {
	for _, field := range row {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}
