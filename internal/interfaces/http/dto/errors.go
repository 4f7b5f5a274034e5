package dto

import (
	"net/http"

	"github.com/openfinance/backend/internal/domain/shared"
)

// ErrorCodeHTTPStatus maps domain error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	shared.CodeInvalidRequest:        http.StatusBadRequest,
	shared.CodeForbidden:             http.StatusForbidden,
	shared.CodeNotFound:              http.StatusNotFound,
	shared.CodeIdempotencyConflict:   http.StatusConflict,
	shared.CodeBusinessRuleViolation: http.StatusUnprocessableEntity,
	shared.CodeComplianceViolation:   http.StatusUnprocessableEntity,
	shared.CodeDecryptionFailed:      http.StatusUnprocessableEntity,
	shared.CodeServiceUnavailable:    http.StatusServiceUnavailable,
	shared.CodeInternalError:         http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Returns 500 Internal Server Error if the error code is not found.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
