package shared

import "errors"

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

// Error codes used across the allocation core. Handlers map these to HTTP
// status codes; callers can branch on them with errors.As.
const (
	CodeNotFound         = "NOT_FOUND"
	CodeAlreadyExists    = "ALREADY_EXISTS"
	CodeInvalidInput     = "INVALID_INPUT"
	CodeInvalidState     = "INVALID_STATE"
	CodeParseError       = "PARSE_ERROR"
	CodeValidationError  = "VALIDATION_ERROR"
	CodeInsufficientData = "INSUFFICIENT_DATA"
	CodeReconciliation   = "RECONCILIATION_FAILED"
)

// Common domain errors
var (
	ErrNotFound      = NewDomainError(CodeNotFound, "Resource not found")
	ErrAlreadyExists = NewDomainError(CodeAlreadyExists, "Resource already exists")
	ErrInvalidInput  = NewDomainError(CodeInvalidInput, "Invalid input provided")
	ErrInvalidState  = NewDomainError(CodeInvalidState, "Operation not allowed in current state")
)

// IsDomainError reports whether err wraps a DomainError
func IsDomainError(err error) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr)
}

// AsDomainError extracts the DomainError from err, if any
func AsDomainError(err error) (*DomainError, bool) {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr, true
	}
	return nil, false
}

// NewParseError signals malformed money or date input at a boundary.
func NewParseError(message string) *DomainError {
	return NewDomainError(CodeParseError, message)
}

// NewValidationError signals input the caller must correct and resubmit.
func NewValidationError(message string) *DomainError {
	return NewDomainError(CodeValidationError, message)
}

// NewInsufficientDataError signals that a proportional distribution was
// requested with no weight signal; the caller must explicitly choose an
// equal split or supply revenue data.
func NewInsufficientDataError(message string) *DomainError {
	return NewDomainError(CodeInsufficientData, message)
}

// NewReconciliationError signals the defensive internal check that computed
// shares failed to sum to the input total. It indicates an implementation
// defect, never a user input problem.
func NewReconciliationError(message string) *DomainError {
	return NewDomainError(CodeReconciliation, message)
}
