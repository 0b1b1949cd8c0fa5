package dto

import (
	"errors"
	"net/http"

	"github.com/farmledger/backend/internal/domain/shared"
)

// Error codes returned in the envelope. Domain errors keep their own code;
// these cover failures raised by the HTTP layer itself.
const (
	ErrCodeValidation        = "VALIDATION_ERROR"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeInsufficientFunds = "INSUFFICIENT_FUNDS"
	ErrCodeConsistency       = "CONSISTENCY_ERROR"
	ErrCodeAlreadyExists     = "ALREADY_EXISTS"
	ErrCodeConcurrent        = "CONCURRENT_MODIFICATION"
	ErrCodeUnauthorized      = "UNAUTHORIZED"
	ErrCodeTokenExpired      = "TOKEN_EXPIRED"
	ErrCodeTokenInvalid      = "TOKEN_INVALID"
	ErrCodeTokenRevoked      = "TOKEN_REVOKED"
	ErrCodeBadRequest        = "BAD_REQUEST"
	ErrCodeInvalidJSON       = "INVALID_JSON"
	ErrCodeDuplicateRequest  = "DUPLICATE_REQUEST"
	ErrCodeRequestTooLarge   = "REQUEST_TOO_LARGE"
	ErrCodeServiceDisabled   = "SERVICE_UNAVAILABLE"
	ErrCodeInternal          = "INTERNAL_ERROR"
)

// KindHTTPStatus maps each domain error kind to its status code
var KindHTTPStatus = map[shared.ErrorKind]int{
	shared.KindValidation:        http.StatusBadRequest,
	shared.KindNotFound:          http.StatusNotFound,
	shared.KindInsufficientFunds: http.StatusUnprocessableEntity,
	shared.KindConsistency:       http.StatusInternalServerError,
	shared.KindConflict:          http.StatusConflict,
	shared.KindUnauthorized:      http.StatusUnauthorized,
}

// ErrorCodeHTTPStatus maps HTTP-layer error codes to status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeValidation:       http.StatusBadRequest,
	ErrCodeBadRequest:       http.StatusBadRequest,
	ErrCodeInvalidJSON:      http.StatusBadRequest,
	ErrCodeUnauthorized:     http.StatusUnauthorized,
	ErrCodeTokenExpired:     http.StatusUnauthorized,
	ErrCodeTokenInvalid:     http.StatusUnauthorized,
	ErrCodeTokenRevoked:     http.StatusUnauthorized,
	ErrCodeNotFound:         http.StatusNotFound,
	ErrCodeDuplicateRequest: http.StatusConflict,
	ErrCodeRequestTooLarge:  http.StatusRequestEntityTooLarge,
	ErrCodeServiceDisabled:  http.StatusServiceUnavailable,
	ErrCodeInternal:         http.StatusInternalServerError,
}

// GetHTTPStatus returns the status for code, or 500 for unknown codes
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// StatusFor classifies err. ok is false when err carries no *shared.DomainError.
func StatusFor(err error) (status int, domainErr *shared.DomainError, ok bool) {
	if !errors.As(err, &domainErr) {
		return http.StatusInternalServerError, nil, false
	}
	if status, found := KindHTTPStatus[domainErr.Kind]; found {
		return status, domainErr, true
	}
	return GetHTTPStatus(domainErr.Code), domainErr, true
}
