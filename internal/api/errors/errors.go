package errors

import (
	"fmt"
	"strings"
)

// ErrorCode represents a standardized error code
type ErrorCode string

const (
	// Client errors (4xx)
	ErrCodeBadRequest       ErrorCode = "bad_request"
	ErrCodeValidationFailed ErrorCode = "validation_failed"
	ErrCodeTooManyWallets   ErrorCode = "too_many_wallets"
	ErrCodeUnauthorized     ErrorCode = "unauthorized"

	// Server errors (5xx)
	ErrCodeInternalError ErrorCode = "internal_error"
	ErrCodeUpstreamError ErrorCode = "upstream_error"
	ErrCodeTimeout       ErrorCode = "timeout"
)

// APIError represents a structured API error that carries error code and details
type APIError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	if e.Details == "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
}

func newError(code ErrorCode, message string, details []string) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
		Details: strings.Join(details, ", "),
	}
}

// Error constructors for common error types
func NewBadRequestError(message string, details ...string) *APIError {
	return newError(ErrCodeBadRequest, message, details)
}

func NewValidationError(details ...string) *APIError {
	return newError(ErrCodeValidationFailed, "Validation failed", details)
}

func NewTooManyWalletsError(max int) *APIError {
	return newError(ErrCodeTooManyWallets, "Too many wallets", []string{fmt.Sprintf("at most %d wallets are accepted per request", max)})
}

func NewUnauthorizedError(message string, details ...string) *APIError {
	return newError(ErrCodeUnauthorized, message, details)
}

func NewInternalError(message string, details ...string) *APIError {
	return newError(ErrCodeInternalError, message, details)
}

func NewUpstreamError(message string, details ...string) *APIError {
	return newError(ErrCodeUpstreamError, message, details)
}

func NewTimeoutError(message string, details ...string) *APIError {
	return newError(ErrCodeTimeout, message, details)
}
