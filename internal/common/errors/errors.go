// Package errors provides standardized error handling for the HTTP API and workflow jobs.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeValidationFailed   ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidVariant     ErrorCode = "INVALID_VARIANT"
	ErrCodeUnknownSectionType ErrorCode = "UNKNOWN_SECTION_TYPE"
	ErrCodeInvalidContent     ErrorCode = "INVALID_SECTION_CONTENT"

	ErrCodeSiteNotFound    ErrorCode = "SITE_NOT_FOUND"
	ErrCodeSectionNotFound ErrorCode = "SECTION_NOT_FOUND"

	ErrCodeSwitchInProgress ErrorCode = "SWITCH_IN_PROGRESS"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodePersistenceFailed        ErrorCode = "PERSISTENCE_FAILED"
	ErrCodeCacheFailed              ErrorCode = "CACHE_FAILED"
	ErrCodeQueryTimeout             ErrorCode = "QUERY_TIMEOUT"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
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

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	for k, v := range e.ErrorVariables {
		vars[k] = v
	}

	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewValidationError creates a non-retryable request validation error.
func NewValidationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Request validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidVariantError reports a variant number outside 1..5.
func NewInvalidVariantError(variant int) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidVariant,
		Message:   "Variant must be between 1 and 5",
		Details:   fmt.Sprintf("variant: %d", variant),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUnknownSectionTypeError reports a section type outside the known set.
func NewUnknownSectionTypeError(sectionType string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnknownSectionType,
		Message:   "Unknown section type",
		Details:   fmt.Sprintf("sectionType: %s", sectionType),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidContentError reports section content that failed its schema.
func NewInvalidContentError(sectionType, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidContent,
		Message:   "Section content failed validation",
		Details:   fmt.Sprintf("sectionType: %s, %s", sectionType, details),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSiteNotFoundError creates a non-retryable lookup error.
func NewSiteNotFoundError(siteID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSiteNotFound,
		Message:   "Site not found",
		Details:   fmt.Sprintf("siteId: %s", siteID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSectionNotFoundError creates a non-retryable lookup error.
func NewSectionNotFoundError(siteID, ref string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSectionNotFound,
		Message:   "Section not found",
		Details:   fmt.Sprintf("siteId: %s, section: %s", siteID, ref),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSwitchInProgressError is returned when another switch holds the site lock.
func NewSwitchInProgressError(siteID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSwitchInProgress,
		Message:   "Another variant switch is in progress for this site",
		Details:   fmt.Sprintf("siteId: %s", siteID),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewPersistenceFailedError creates a retryable write/read failure.
func NewPersistenceFailedError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodePersistenceFailed,
		Message:   "Persistence operation failed",
		Details:   fmt.Sprintf("operation: %s, error: %s", operation, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCacheFailedError creates a retryable cache error.
func NewCacheFailedError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCacheFailed,
		Message:   "Cache operation failed",
		Details:   fmt.Sprintf("operation: %s, error: %s", operation, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryTimeoutError creates a retryable query timeout error.
func NewQueryTimeoutError(operation string) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryTimeout,
		Message:   "Database query timeout",
		Details:   fmt.Sprintf("operation: %s", operation),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewInternalError wraps an unexpected failure.
func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// AsStandardError unwraps err into a StandardError, wrapping unknown errors as INTERNAL_ERROR.
func AsStandardError(err error) *StandardError {
	if err == nil {
		return nil
	}
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return NewInternalError(err)
}

// HasCode reports whether err is a StandardError with the given code.
func HasCode(err error, code ErrorCode) bool {
	var stdErr *StandardError
	return stderrors.As(err, &stdErr) && stdErr.Code == code
}

// ==========================
// 4. Error Conversion
// ==========================

// HTTPStatus maps an error code to the status the API responds with.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeValidationFailed, ErrCodeInvalidVariant, ErrCodeUnknownSectionType, ErrCodeInvalidContent:
		return http.StatusBadRequest
	case ErrCodeSiteNotFound, ErrCodeSectionNotFound:
		return http.StatusNotFound
	case ErrCodeSwitchInProgress:
		return http.StatusConflict
	case ErrCodeQueryTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// GetRetryCount returns the recommended retry count for a workflow job.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseConnectionFailed,
		ErrCodePersistenceFailed,
		ErrCodeCacheFailed:
		return 3

	case ErrCodeQueryTimeout,
		ErrCodeSwitchInProgress:
		return 2

	default:
		return 0 // Business errors: no retry
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      string(stdErr.Code),
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "NOT_FOUND"):
		return "LOOKUP"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY") || strings.Contains(codeStr, "PERSISTENCE"):
		return "DATABASE"
	case strings.Contains(codeStr, "CACHE") || strings.Contains(codeStr, "SWITCH"):
		return "CONCURRENCY"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "VALIDATION") || strings.Contains(codeStr, "UNKNOWN"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
