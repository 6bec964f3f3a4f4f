// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"strings"
	"time"

	"dms-workers/internal/dms"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeDMSParsingFailed         ErrorCode = "DMS_PARSING_FAILED"
	ErrCodeDMSUnknownState          ErrorCode = "DMS_UNKNOWN_STATE"
	ErrCodeDMSUnknownVersion        ErrorCode = "DMS_UNKNOWN_VERSION"
	ErrCodeDMSMissingConfiguration  ErrorCode = "DMS_MISSING_CONFIGURATION"
	ErrCodeDMSMissingWatermark      ErrorCode = "DMS_MISSING_WATERMARK"
	ErrCodeDMSAPIUnavailable        ErrorCode = "DMS_API_UNAVAILABLE"
	ErrCodeDMSAPIRejected           ErrorCode = "DMS_API_REJECTED"
	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeDatabaseQueryFailed      ErrorCode = "DATABASE_QUERY_FAILED"
	ErrCodeDatabaseInsertFailed     ErrorCode = "DATABASE_INSERT_FAILED"
	ErrCodeCacheUnavailable         ErrorCode = "CACHE_UNAVAILABLE"
	ErrCodeSearchIndexFailed        ErrorCode = "SEARCH_INDEX_FAILED"
	ErrCodeNotificationSendFailed   ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeEventPublishFailed       ErrorCode = "EVENT_PUBLISH_FAILED"
	ErrCodeWorkflowEngine           ErrorCode = "WORKFLOW_ENGINE_FAILED"
	ErrCodeInvalidInput             ErrorCode = "INVALID_INPUT"
	ErrCodeInternal                 ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error { return e.cause }

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

func newError(code ErrorCode, message string, cause error, retryable bool) *StandardError {
	e := &StandardError{
		Code:      code,
		Message:   message,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
	if cause != nil {
		e.Details = cause.Error()
	}
	return e
}

// NewParsingFailedError carries the per-field errors as metadata.
func NewParsingFailedError(perr *dms.ParsingError) *StandardError {
	e := newError(ErrCodeDMSParsingFailed, "Application fields could not be parsed", perr, false)
	e.Metadata = map[string]interface{}{
		"email":  perr.Email,
		"fields": perr.Fields(),
	}
	return e
}

func NewUnknownStateError(err error) *StandardError {
	return newError(ErrCodeDMSUnknownState, "Unknown Demarches Simplifiées state", err, false)
}

func NewUnknownVersionError(err error) *StandardError {
	return newError(ErrCodeDMSUnknownVersion, "Unknown procedure schema version", err, false)
}

func NewMissingConfigurationError(err error) *StandardError {
	return newError(ErrCodeDMSMissingConfiguration, "Demarches Simplifiées configuration is incomplete", err, false)
}

func NewMissingWatermarkError(err error) *StandardError {
	return newError(ErrCodeDMSMissingWatermark, "No watermark for received applications", err, false)
}

// NewAPIUnavailableError is used for 429, 5xx and network failures.
func NewAPIUnavailableError(err error) *StandardError {
	return newError(ErrCodeDMSAPIUnavailable, "Demarches Simplifiées API unavailable", err, true)
}

func NewAPIRejectedError(err error) *StandardError {
	return newError(ErrCodeDMSAPIRejected, "Demarches Simplifiées API rejected the request", err, false)
}

func NewDatabaseConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseConnectionFailed, "Database connection error", err, true)
}

func NewDatabaseQueryFailedError(query string, err error) *StandardError {
	e := newError(ErrCodeDatabaseQueryFailed, "Database query execution error", err, true)
	e.Details = fmt.Sprintf("query: %s, error: %s", query, err.Error())
	return e
}

func NewDatabaseInsertFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseInsertFailed, "Database insert operation failed", err, true)
}

func NewCacheUnavailableError(err error) *StandardError {
	return newError(ErrCodeCacheUnavailable, "Cache unavailable", err, true)
}

func NewSearchIndexFailedError(index string, err error) *StandardError {
	e := newError(ErrCodeSearchIndexFailed, "Elasticsearch indexing failed", err, true)
	e.Details = fmt.Sprintf("index: %s, error: %s", index, err.Error())
	return e
}

func NewNotificationSendFailedError(notificationType string, err error) *StandardError {
	e := newError(ErrCodeNotificationSendFailed, "Notification delivery failed", err, true)
	e.Details = fmt.Sprintf("type: %s, error: %s", notificationType, err.Error())
	return e
}

func NewEventPublishFailedError(topic string, err error) *StandardError {
	e := newError(ErrCodeEventPublishFailed, "Event publication failed", err, true)
	e.Details = fmt.Sprintf("topic: %s, error: %s", topic, err.Error())
	return e
}

// NewWorkflowEngineError wraps a failed Zeebe command issued outside a job.
func NewWorkflowEngineError(operation string, err error, retryable bool) *StandardError {
	e := newError(ErrCodeWorkflowEngine, "Workflow engine command failed", err, retryable)
	e.Details = fmt.Sprintf("operation: %s, error: %s", operation, err.Error())
	return e
}

func NewInvalidInputError(details string) *StandardError {
	e := newError(ErrCodeInvalidInput, "Invalid job input", nil, false)
	e.Details = details
	return e
}

// ==========================
// 4. Mapping of domain errors
// ==========================

type retryable interface {
	IsRetryable() bool
}

// FromDMSError maps an error returned by the core package or the API connector
// to a StandardError. StandardErrors pass through unchanged.
func FromDMSError(err error) *StandardError {
	if err == nil {
		return nil
	}

	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}

	var parsingErr *dms.ParsingError
	var stateErr *dms.CannotRegisterBankInformationError
	var versionErr *dms.UnknownVersionError
	var transportErr retryable
	var netErr net.Error

	switch {
	case stderrors.As(err, &parsingErr):
		return NewParsingFailedError(parsingErr)
	case stderrors.As(err, &stateErr):
		return NewUnknownStateError(err)
	case stderrors.As(err, &versionErr):
		return NewUnknownVersionError(err)
	case stderrors.Is(err, dms.ErrMissingConfiguration):
		return NewMissingConfigurationError(err)
	case stderrors.Is(err, dms.ErrMissingWatermark):
		return NewMissingWatermarkError(err)
	case stderrors.As(err, &transportErr):
		if transportErr.IsRetryable() {
			return NewAPIUnavailableError(err)
		}
		return NewAPIRejectedError(err)
	case stderrors.Is(err, context.DeadlineExceeded):
		return NewAPIUnavailableError(err)
	case stderrors.As(err, &netErr):
		return NewAPIUnavailableError(err)
	default:
		return newError(ErrCodeInternal, "Unexpected error", err, false)
	}
}

// ==========================
// 5. Error Conversion to BPMN
// ==========================

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseConnectionFailed,
		ErrCodeDatabaseQueryFailed,
		ErrCodeDatabaseInsertFailed,
		ErrCodeSearchIndexFailed,
		ErrCodeNotificationSendFailed,
		ErrCodeEventPublishFailed:
		return 3

	case ErrCodeDMSAPIUnavailable,
		ErrCodeCacheUnavailable:
		return 5

	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           string(stdErr.Code),
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// ==========================
// 6. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "DMS_API"):
		return "UPSTREAM"
	case strings.HasPrefix(codeStr, "DMS_"):
		return "DMS"
	case strings.Contains(codeStr, "DATABASE"):
		return "DATABASE"
	case strings.Contains(codeStr, "CACHE"):
		return "CACHE"
	case strings.Contains(codeStr, "SEARCH"):
		return "SEARCH"
	case strings.Contains(codeStr, "NOTIFICATION") || strings.Contains(codeStr, "EVENT"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "INVALID"):
		return "VALIDATION"
	case strings.HasPrefix(codeStr, "WORKFLOW"):
		return "WORKFLOW"
	default:
		return "OTHER"
	}
}
