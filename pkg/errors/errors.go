// Package errors defines the error taxonomy used across the ingestion
// pipeline.
//
// Every fatal error raised by the pipeline is an *IngestError carrying a
// category, a machine-readable code, optional context values and a
// human-facing suggestion. Row-level failures are not represented here;
// they are collected into the batch result instead of being raised.
package errors

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorCategory groups errors by the stage of the pipeline that raised them
type ErrorCategory string

const (
	CategoryDecode        ErrorCategory = "decode"
	CategoryUpstream      ErrorCategory = "upstream"
	CategoryStorage       ErrorCategory = "storage"
	CategoryConfiguration ErrorCategory = "configuration"
	CategoryInternal      ErrorCategory = "internal"
)

// ErrorCode identifies a specific failure within a category
type ErrorCode string

const (
	// Decode errors
	CodeEncodingError ErrorCode = "encoding_error"
	CodeMalformedData ErrorCode = "malformed_data"

	// Upstream errors
	CodeRequestFailed   ErrorCode = "request_failed"
	CodeBadStatus       ErrorCode = "bad_status"
	CodeUnexpectedShape ErrorCode = "unexpected_shape"

	// Storage errors
	CodeLookupFailed ErrorCode = "lookup_failed"
	CodeBeginFailed  ErrorCode = "begin_failed"
	CodeCommitFailed ErrorCode = "commit_failed"

	// Configuration errors
	CodeInvalidConfig ErrorCode = "invalid_config"
	CodeMissingConfig ErrorCode = "missing_config"

	// Internal errors
	CodeUnexpectedError ErrorCode = "unexpected_error"
)

// IngestError is the base error type for all fatal pipeline errors
type IngestError struct {
	Category   ErrorCategory     `json:"category"`
	Code       ErrorCode         `json:"code"`
	Message    string            `json:"message"`
	Suggestion string            `json:"suggestion,omitempty"`
	Context    Context           `json:"context,omitempty"`
	Cause      error             `json:"-"`
	StackTrace errors.StackTrace `json:"-"`
}

// Context provides additional information about the error
type Context map[string]interface{}

// Error implements the error interface
func (e *IngestError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%s (suggestion: %s)", e.Message, e.Suggestion)
	}
	return e.Message
}

// Unwrap returns the underlying cause error
func (e *IngestError) Unwrap() error {
	return e.Cause
}

// GetExitCode returns an appropriate process exit code for the error
func (e *IngestError) GetExitCode() int {
	switch e.Category {
	case CategoryDecode:
		return 2
	case CategoryConfiguration:
		return 4
	case CategoryStorage, CategoryInternal:
		return 5
	case CategoryUpstream:
		return 6
	default:
		return 1
	}
}

// WithContext adds context information to the error
func (e *IngestError) WithContext(key string, value interface{}) *IngestError {
	if e.Context == nil {
		e.Context = make(Context)
	}
	e.Context[key] = value
	return e
}

// WithSuggestion adds a suggestion for fixing the error
func (e *IngestError) WithSuggestion(suggestion string) *IngestError {
	e.Suggestion = suggestion
	return e
}

// New creates a new IngestError
func New(category ErrorCategory, code ErrorCode, message string) *IngestError {
	return &IngestError{
		Category:   category,
		Code:       code,
		Message:    message,
		StackTrace: errors.New("").(stackTracer).StackTrace(),
	}
}

// Wrap wraps an existing error with IngestError context
func Wrap(err error, category ErrorCategory, code ErrorCode, message string) *IngestError {
	if err == nil {
		return nil
	}

	return &IngestError{
		Category:   category,
		Code:       code,
		Message:    message,
		Cause:      err,
		StackTrace: errors.WithStack(err).(stackTracer).StackTrace(),
	}
}

// stackTracer interface for extracting stack traces
type stackTracer interface {
	StackTrace() errors.StackTrace
}

// DecodeError creates an error for byte sequences unreadable under every
// supported text encoding
func DecodeError(err error) *IngestError {
	result := Wrap(err, CategoryDecode, CodeEncodingError,
		"input bytes are not valid under any supported encoding")
	if result == nil {
		result = New(CategoryDecode, CodeEncodingError,
			"input bytes are not valid under any supported encoding")
	}
	return result.WithSuggestion("re-export the file as UTF-8 and upload again")
}

// UpstreamStatusError creates an error for a non-success HTTP status from a
// transaction source
func UpstreamStatusError(url string, status int) *IngestError {
	return New(CategoryUpstream, CodeBadStatus,
		fmt.Sprintf("upstream returned status %d", status)).
		WithSuggestion("check the endpoint URL and credentials").
		WithContext("url", url).
		WithContext("status", status)
}

// UpstreamRequestError creates an error for a failed HTTP request
func UpstreamRequestError(url string, err error) *IngestError {
	return Wrap(err, CategoryUpstream, CodeRequestFailed,
		fmt.Sprintf("request to upstream failed: %v", err)).
		WithSuggestion("verify network connectivity and the endpoint URL").
		WithContext("url", url)
}

// UnexpectedShapeError creates an error for an API response body that is
// neither a record sequence nor a recognized mapping
func UnexpectedShapeError(shape string) *IngestError {
	return New(CategoryUpstream, CodeUnexpectedShape,
		fmt.Sprintf("unexpected API response shape: %s", shape)).
		WithSuggestion("expected a JSON array or an object with a 'data', 'transactions' or 'result.transactions' key").
		WithContext("shape", shape)
}

// CommitError creates an error for a failed batch commit. All staged
// insertions are rolled back before this surfaces to the caller.
func CommitError(err error) *IngestError {
	return Wrap(err, CategoryStorage, CodeCommitFailed,
		fmt.Sprintf("batch commit failed: %v", err)).
		WithSuggestion("check storage connectivity; no records from this call were persisted")
}

// StorageError creates an error for non-commit storage failures
func StorageError(code ErrorCode, operation string, err error) *IngestError {
	return Wrap(err, CategoryStorage, code,
		fmt.Sprintf("storage %s failed: %v", operation, err)).
		WithContext("operation", operation)
}

// ConfigError creates a configuration-related error
func ConfigError(code ErrorCode, field string, err error) *IngestError {
	var message string
	switch code {
	case CodeMissingConfig:
		message = fmt.Sprintf("required configuration '%s' is missing", field)
	default:
		message = fmt.Sprintf("invalid configuration '%s'", field)
	}

	var result *IngestError
	if err != nil {
		result = Wrap(err, CategoryConfiguration, code, message)
	} else {
		result = New(CategoryConfiguration, code, message)
	}
	return result.WithContext("field", field)
}

// InternalError creates an error for unexpected internal failures
func InternalError(operation string, err error) *IngestError {
	return Wrap(err, CategoryInternal, CodeUnexpectedError,
		fmt.Sprintf("internal error during %s: %v", operation, err)).
		WithContext("operation", operation)
}

// AsIngestError attempts to extract an IngestError from an error chain
func AsIngestError(err error) (*IngestError, bool) {
	if err == nil {
		return nil, false
	}

	var ingestErr *IngestError
	if errors.As(err, &ingestErr) {
		return ingestErr, true
	}
	return nil, false
}

// GetExitCode returns the exit code for any error, defaulting to 1 for
// errors outside the taxonomy
func GetExitCode(err error) int {
	if err == nil {
		return 0
	}
	if ingestErr, ok := AsIngestError(err); ok {
		return ingestErr.GetExitCode()
	}
	return 1
}

// IsCategory checks whether an error belongs to the given category
func IsCategory(err error, category ErrorCategory) bool {
	if ingestErr, ok := AsIngestError(err); ok {
		return ingestErr.Category == category
	}
	return false
}

// IsCode checks whether an error carries the given code
func IsCode(err error, code ErrorCode) bool {
	if ingestErr, ok := AsIngestError(err); ok {
		return ingestErr.Code == code
	}
	return false
}
