package dto

import (
	"net/http"

	"github.com/rentbooks/backend/internal/domain/shared"
)

// Error codes originating at the HTTP boundary rather than in the domain
const (
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "INTERNAL_ERROR"
	// ErrCodeBadRequest is used for malformed request bodies
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeValidation is used when request binding or validation fails
	ErrCodeValidation = "VALIDATION_ERROR"
)

// ErrorCodeHTTPStatus maps domain and boundary error codes to HTTP status
// codes. Reconciliation failures signal an internal defect, never bad input,
// so they surface as 500.
var ErrorCodeHTTPStatus = map[string]int{
	shared.CodeParseError:       http.StatusBadRequest,
	shared.CodeValidationError:  http.StatusBadRequest,
	shared.CodeInvalidInput:     http.StatusBadRequest,
	shared.CodeNotFound:         http.StatusNotFound,
	shared.CodeInvalidState:     http.StatusConflict,
	shared.CodeAlreadyExists:    http.StatusConflict,
	shared.CodeInsufficientData: http.StatusUnprocessableEntity,
	shared.CodeReconciliation:   http.StatusInternalServerError,

	ErrCodeInternal:   http.StatusInternalServerError,
	ErrCodeBadRequest: http.StatusBadRequest,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Returns 500 Internal Server Error if the error code is not found.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
