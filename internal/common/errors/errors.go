// Package errors provides standardized error handling for the intake engine.
package errors

import (
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// User-correctable validation failures. Returned alongside the still
	// pending question, never fatal to a session.
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"

	// Non-fatal ingestion issues, surfaced as warnings on the response.
	ErrCodeExtractionWarning ErrorCode = "EXTRACTION_WARNING"
	ErrCodeUnsupportedInput  ErrorCode = "UNSUPPORTED_INPUT"
	ErrCodeDuplicateUpload   ErrorCode = "DUPLICATE_UPLOAD"

	// External collaborator failures, caught at the call site and
	// degraded to warnings or deterministic fallbacks.
	ErrCodeCollaboratorFailure   ErrorCode = "COLLABORATOR_FAILURE"
	ErrCodeIntentAPITimeout      ErrorCode = "INTENT_API_TIMEOUT"
	ErrCodeAssistedSearchFailed  ErrorCode = "ASSISTED_SEARCH_FAILED"
	ErrCodeAssistedSearchTimeout ErrorCode = "ASSISTED_SEARCH_TIMEOUT"

	// Resolver / storage tier.
	ErrCodeResourceNotFound    ErrorCode = "RESOURCE_NOT_FOUND"
	ErrCodeStoreQueryFailed    ErrorCode = "STORE_QUERY_FAILED"
	ErrCodeManualEntryInvalid  ErrorCode = "MANUAL_ENTRY_INVALID"
	ErrCodeSessionStoreFailed  ErrorCode = "SESSION_STORE_FAILED"
	ErrCodeSessionNotFound     ErrorCode = "SESSION_NOT_FOUND"
	ErrCodeConfigurationBroken ErrorCode = "CONFIGURATION_BROKEN"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// New creates a StandardError with the given code and message.
func New(code ErrorCode, message string) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Retryable: IsRetryable(code),
		Timestamp: time.Now(),
	}
}

// Wrap creates a StandardError carrying the underlying error as details.
func Wrap(code ErrorCode, message string, err error) *StandardError {
	stdErr := New(code, message)
	if err != nil {
		stdErr.Details = err.Error()
	}
	return stdErr
}

// WithMetadata attaches contextual metadata to the error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// retryableCodes lists error codes where a retry can plausibly succeed.
var retryableCodes = map[ErrorCode]bool{
	ErrCodeIntentAPITimeout:      true,
	ErrCodeAssistedSearchTimeout: true,
	ErrCodeStoreQueryFailed:      true,
	ErrCodeSessionStoreFailed:    true,
	ErrCodeCollaboratorFailure:   true,
}

// IsRetryable reports whether an error code represents a transient failure.
func IsRetryable(code ErrorCode) bool {
	return retryableCodes[code]
}

// AsStandard normalizes any error into a StandardError.
func AsStandard(err error) *StandardError {
	if err == nil {
		return nil
	}
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr
	}
	return Wrap(ErrCodeCollaboratorFailure, "unexpected error", err)
}

// AsWarning renders an error as a human-readable warning string. Used
// wherever a collaborator failure must degrade instead of propagate.
func AsWarning(err error) string {
	stdErr := AsStandard(err)
	if stdErr.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", stdErr.Code, stdErr.Message, stdErr.Details)
	}
	return fmt.Sprintf("%s: %s", stdErr.Code, stdErr.Message)
}
