// Package errors provides standardized error handling for the proxy.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeUpstreamUnavailable ErrorCode = "UPSTREAM_UNAVAILABLE"
	ErrCodeUpstreamTimeout     ErrorCode = "UPSTREAM_TIMEOUT"
	ErrCodeUpstreamBadStatus   ErrorCode = "UPSTREAM_BAD_STATUS"

	ErrCodeMalformedUpstreamResponse ErrorCode = "MALFORMED_UPSTREAM_RESPONSE"

	ErrCodeCacheBackendUnavailable ErrorCode = "CACHE_BACKEND_UNAVAILABLE"

	ErrCodeConfigurationInvalid ErrorCode = "CONFIGURATION_INVALID"

	ErrCodeTransformationFailed ErrorCode = "TRANSFORMATION_FAILED"
	ErrCodeRequestInvalid       ErrorCode = "REQUEST_INVALID"
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
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// NewUpstreamUnavailableError creates a retryable upstream connectivity error.
func NewUpstreamUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeUpstreamUnavailable,
		Message:   "Upstream analytics API unreachable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewUpstreamTimeoutError creates a retryable upstream timeout error.
func NewUpstreamTimeoutError(endpoint string, timeout time.Duration) *StandardError {
	return &StandardError{
		Code:      ErrCodeUpstreamTimeout,
		Message:   "Upstream analytics API timeout",
		Details:   fmt.Sprintf("endpoint: %s, timeout: %s", endpoint, timeout),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewUpstreamBadStatusError creates a retryable non-2xx response error.
func NewUpstreamBadStatusError(endpoint string, status int) *StandardError {
	return &StandardError{
		Code:      ErrCodeUpstreamBadStatus,
		Message:   "Upstream analytics API returned error status",
		Details:   fmt.Sprintf("endpoint: %s, status: %d", endpoint, status),
		Retryable: status >= 500,
		Timestamp: time.Now().UTC(),
	}
}

// NewMalformedUpstreamResponseError creates a non-retryable payload error.
// The orchestrator recovers from it by regenerating, the same path it takes
// for the override-detection trigger.
func NewMalformedUpstreamResponseError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMalformedUpstreamResponse,
		Message:   "Upstream response failed schema validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCacheBackendUnavailableError creates a recoverable cache backend error.
// Never surfaced to callers; the fallback tier absorbs it.
func NewCacheBackendUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCacheBackendUnavailable,
		Message:   "Primary cache backend unreachable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewConfigurationInvalidError creates a startup-fatal configuration error.
func NewConfigurationInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeConfigurationInvalid,
		Message:   "Invalid configuration",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTransformationFailedError creates a non-retryable transformation error.
func NewTransformationFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTransformationFailed,
		Message:   "Niche transformation failed",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRequestInvalidError creates a non-retryable request validation error.
func NewRequestInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRequestInvalid,
		Message:   "Invalid request payload",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// IsCode reports whether err is, or wraps, a StandardError carrying
// the given code.
func IsCode(err error, code ErrorCode) bool {
	var stdErr *StandardError
	if !stderrors.As(err, &stdErr) {
		return false
	}
	return stdErr.Code == code
}

// AsStandard extracts the StandardError from err, unwrapping as needed.
func AsStandard(err error) (*StandardError, bool) {
	var stdErr *StandardError
	ok := stderrors.As(err, &stdErr)
	return stdErr, ok
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "UPSTREAM"):
		return "UPSTREAM"
	case strings.Contains(codeStr, "CACHE"):
		return "CACHE"
	case strings.Contains(codeStr, "CONFIGURATION"):
		return "CONFIG"
	case strings.Contains(codeStr, "TRANSFORMATION"):
		return "TRANSFORM"
	default:
		return "OTHER"
	}
}
