package shared

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrorKind classifies a domain error so callers can react without matching codes
type ErrorKind string

const (
	KindValidation        ErrorKind = "VALIDATION"
	KindNotFound          ErrorKind = "NOT_FOUND"
	KindInsufficientFunds ErrorKind = "INSUFFICIENT_FUNDS"
	KindConsistency       ErrorKind = "CONSISTENCY"
	KindConflict          ErrorKind = "CONFLICT"
	KindUnauthorized      ErrorKind = "UNAUTHORIZED"
)

// DomainError represents a domain-level error
type DomainError struct {
	Kind    ErrorKind `json:"-"`
	Code    string    `json:"code"`
	Message string    `json:"message"`
	// Field names the offending input for validation errors
	Field string `json:"field,omitempty"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// Is reports whether target is a DomainError with the same code
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(kind ErrorKind, code, message string) *DomainError {
	return &DomainError{
		Kind:    kind,
		Code:    code,
		Message: message,
	}
}

// NewValidationError reports a malformed or missing input field
func NewValidationError(field, message string) *DomainError {
	return &DomainError{
		Kind:    KindValidation,
		Code:    "VALIDATION_ERROR",
		Message: message,
		Field:   field,
	}
}

// NewNotFoundError reports an unknown entity or one the caller does not own
func NewNotFoundError(entity string, id fmt.Stringer) *DomainError {
	return &DomainError{
		Kind:    KindNotFound,
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s %s not found", entity, id),
	}
}

// NewInsufficientFundsError reports a transfer larger than the source balance
func NewInsufficientFundsError(accountName string, balance, requested decimal.Decimal) *DomainError {
	return &DomainError{
		Kind: KindInsufficientFunds,
		Code: "INSUFFICIENT_FUNDS",
		Message: fmt.Sprintf("insufficient balance in %s: available %s, requested %s",
			accountName, balance.StringFixed(2), requested.StringFixed(2)),
	}
}

// NewConsistencyError reports stored state that disagrees with the ledger
func NewConsistencyError(message string) *DomainError {
	return &DomainError{
		Kind:    KindConsistency,
		Code:    "CONSISTENCY_ERROR",
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError(KindNotFound, "NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError(KindConflict, "ALREADY_EXISTS", "Resource already exists")
	ErrConcurrencyConflict = NewDomainError(KindConflict, "CONCURRENT_MODIFICATION", "Resource was modified by another process")
	ErrUnauthorized        = NewDomainError(KindUnauthorized, "UNAUTHORIZED", "Not authorized to perform this action")
)

func kindOf(err error) ErrorKind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// IsValidation reports whether err is a validation failure
func IsValidation(err error) bool { return kindOf(err) == KindValidation }

// IsNotFound reports whether err is a not-found failure
func IsNotFound(err error) bool { return kindOf(err) == KindNotFound }

// IsInsufficientFunds reports whether err is an overdraft rejection
func IsInsufficientFunds(err error) bool { return kindOf(err) == KindInsufficientFunds }

// IsConsistency reports whether err is an internal consistency failure
func IsConsistency(err error) bool { return kindOf(err) == KindConsistency }

// IsConflict reports whether err is a uniqueness or concurrency conflict
func IsConflict(err error) bool { return kindOf(err) == KindConflict }
