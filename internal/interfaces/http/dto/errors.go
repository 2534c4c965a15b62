package dto

import (
	"net/http"

	"github.com/storefront/backend/internal/domain/shared"
)

// Domain error codes surface unchanged so clients can match on them
const (
	ErrCodeNotFound            = shared.CodeNotFound
	ErrCodeInvalidInput        = shared.CodeInvalidInput
	ErrCodeInsufficientStock   = shared.CodeInsufficientStock
	ErrCodeAlreadyProcessed    = shared.CodeAlreadyProcessed
	ErrCodeTransientConflict   = shared.CodeTransientConflict
	ErrCodeConcurrencyConflict = shared.CodeConcurrencyFailure
	ErrCodeInvalidState        = shared.CodeInvalidState
	ErrCodeSystem              = shared.CodeSystemError
)

// Transport error codes
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeUnauthorized is used when a service token is missing or invalid
	ErrCodeUnauthorized = "UNAUTHORIZED"
	// ErrCodeTokenExpired is used when the service token has expired
	ErrCodeTokenExpired = "TOKEN_EXPIRED"
	// ErrCodeForbidden is used when the token lacks the required scope
	ErrCodeForbidden = "FORBIDDEN"
	// ErrCodeRateLimited is used when rate limit is exceeded
	ErrCodeRateLimited = "RATE_LIMITED"
	// ErrCodeRequestTooLarge is used when the body exceeds the configured limit
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
	// ErrCodeTimeout is used when the request deadline passes
	ErrCodeTimeout = "REQUEST_TIMEOUT"
	// ErrCodeInternal is used for unexpected failures
	ErrCodeInternal = "INTERNAL_ERROR"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInvalidInput:        http.StatusBadRequest,
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeInsufficientStock:   http.StatusUnprocessableEntity,
	ErrCodeAlreadyProcessed:    http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeInvalidState:        http.StatusConflict,
	// the client may retry the whole call
	ErrCodeTransientConflict: http.StatusServiceUnavailable,
	ErrCodeSystem:            http.StatusInternalServerError,

	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeUnauthorized:    http.StatusUnauthorized,
	ErrCodeTokenExpired:    http.StatusUnauthorized,
	ErrCodeForbidden:       http.StatusForbidden,
	ErrCodeRateLimited:     http.StatusTooManyRequests,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
	ErrCodeTimeout:         http.StatusGatewayTimeout,
	ErrCodeInternal:        http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
