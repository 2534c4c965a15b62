package shared

import "errors"

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target carries the same error code, so wrapped copies
// created with a custom message still match the sentinel values below.
func (e *DomainError) Is(target error) bool {
	var other *DomainError
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code
}

// WithDetails returns a copy of the error carrying structured details
func (e *DomainError) WithDetails(details any) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
	}
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Error codes shared by the reservation engine
const (
	CodeNotFound           = "NOT_FOUND"
	CodeInvalidInput       = "INVALID_INPUT"
	CodeInsufficientStock  = "INSUFFICIENT_STOCK"
	CodeAlreadyProcessed   = "ALREADY_PROCESSED"
	CodeTransientConflict  = "TRANSIENT_CONFLICT"
	CodeConcurrencyFailure = "CONCURRENCY_CONFLICT"
	CodeInvalidState       = "INVALID_STATE"
	CodeSystemError        = "SYSTEM_ERROR"
)

// Common domain errors
var (
	ErrNotFound            = NewDomainError(CodeNotFound, "Resource not found")
	ErrInvalidInput        = NewDomainError(CodeInvalidInput, "Invalid input provided")
	ErrInsufficientStock   = NewDomainError(CodeInsufficientStock, "Insufficient stock available")
	ErrAlreadyProcessed    = NewDomainError(CodeAlreadyProcessed, "No active reservation found for order")
	ErrTransientConflict   = NewDomainError(CodeTransientConflict, "Transaction conflicted with a concurrent update")
	ErrConcurrencyConflict = NewDomainError(CodeConcurrencyFailure, "Resource was modified by another process")
	ErrInvalidState        = NewDomainError(CodeInvalidState, "Operation not allowed in current state")
	ErrSystem              = NewDomainError(CodeSystemError, "Inventory store unavailable")
)
