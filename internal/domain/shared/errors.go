package shared

import "errors"

// Error codes surfaced at the API boundary. Every error crossing a module
// boundary is classified under one of these.
const (
	CodeForbidden             = "FORBIDDEN"
	CodeNotFound              = "NOT_FOUND"
	CodeIdempotencyConflict   = "IDEMPOTENCY_CONFLICT"
	CodeInvalidRequest        = "INVALID_REQUEST"
	CodeBusinessRuleViolation = "BUSINESS_RULE_VIOLATION"
	CodeComplianceViolation   = "COMPLIANCE_VIOLATION"
	CodeDecryptionFailed      = "DECRYPTION_FAILED"
	CodeServiceUnavailable    = "SERVICE_UNAVAILABLE"
	CodeInternalError         = "INTERNAL_ERROR"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewForbidden creates a FORBIDDEN error. The message never reveals whether
// the underlying resource exists beyond "not linked".
func NewForbidden(message string) *DomainError {
	return NewDomainError(CodeForbidden, message)
}

// NewNotFound creates a NOT_FOUND error
func NewNotFound(message string) *DomainError {
	return NewDomainError(CodeNotFound, message)
}

// NewBusinessRuleViolation creates a BUSINESS_RULE_VIOLATION error
func NewBusinessRuleViolation(message string) *DomainError {
	return NewDomainError(CodeBusinessRuleViolation, message)
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError(CodeNotFound, "Resource not found")
	ErrForbidden           = NewDomainError(CodeForbidden, "Access to this resource is forbidden")
	ErrIdempotencyConflict = NewDomainError(CodeIdempotencyConflict, "Idempotency key reused with a different request payload")
	ErrInvalidRequest      = NewDomainError(CodeInvalidRequest, "Invalid input provided")
	ErrServiceUnavailable  = NewDomainError(CodeServiceUnavailable, "Required upstream service has no data")
	ErrInternal            = NewDomainError(CodeInternalError, "Internal error")
)

// ErrorCode extracts the machine-readable code from err. Unclassified errors
// map to INTERNAL_ERROR so internals never leak to callers.
func ErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternalError
}

// IsCode reports whether err is a DomainError with the given code
func IsCode(err error, code string) bool {
	return ErrorCode(err) == code
}
