package shared

import "fmt"

// DomainError represents a business rule violation
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewDomainErrorf creates a new domain error with a formatted message
func NewDomainErrorf(code, format string, args ...interface{}) *DomainError {
	return &DomainError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "entity not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "entity already exists")
	ErrInvalidInput        = NewDomainError("VALIDATION_ERROR", "invalid input")
	ErrConcurrencyConflict = NewDomainError("CONCURRENT_MODIFICATION", "entity was modified by another process")
	ErrUnauthorized        = NewDomainError("UNAUTHORIZED", "unauthorized")
	ErrForbidden           = NewDomainError("FORBIDDEN", "operation not allowed")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "invalid state for this operation")
	ErrInternal            = NewDomainError("INTERNAL_ERROR", "internal error")
)

// IsNotFound reports whether err carries the NOT_FOUND code
func IsNotFound(err error) bool {
	if derr, ok := err.(*DomainError); ok {
		return derr.Code == ErrNotFound.Code
	}
	return false
}
