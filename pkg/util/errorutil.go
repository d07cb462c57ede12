package util

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes shared by the engine and its shells.
const (
	CodeValidation            = "VALIDATION_FAILED"
	CodeNotFound              = "NOT_FOUND"
	CodeSelectionOutOfRange   = "SELECTION_OUT_OF_RANGE"
	CodeNotANumber            = "NOT_A_NUMBER"
	CodeMissingClassification = "MISSING_CLASSIFICATION"
	CodeStaleSelection        = "STALE_SELECTION"
	CodeUnauthorized          = "UNAUTHORIZED"
	CodeIOFailure             = "IO_FAILURE"
	CodeInternal              = "INTERNAL_ERROR"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidation, message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

// NewSelectionOutOfRange reports a 1-based position outside [1, size].
func NewSelectionOutOfRange(position, size int) error {
	return NewDomainError(CodeSelectionOutOfRange,
		fmt.Sprintf("selection %d is out of range 1..%d", position, size),
		http.StatusBadRequest,
		map[string]any{"position": position, "size": size})
}

// NewNotANumber reports a selector that does not parse as an integer.
func NewNotANumber(selector string) error {
	return NewDomainError(CodeNotANumber,
		fmt.Sprintf("selection %q is not a number", selector),
		http.StatusBadRequest,
		map[string]any{"selector": selector})
}

func NewMissingClassification(message string) error {
	return NewDomainError(CodeMissingClassification, message, http.StatusBadRequest, nil)
}

func NewStaleSelection(expected, actual string) error {
	return NewDomainError(CodeStaleSelection,
		"selected record changed since it was listed",
		http.StatusConflict,
		map[string]any{"expected_id": expected, "actual_id": actual})
}

func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthorized, message, http.StatusUnauthorized, nil)
}

// NewIOFailure wraps a storage error. It is never retried.
func NewIOFailure(op string, err error) error {
	return &DomainError{
		Code:       CodeIOFailure,
		Message:    op + " failed",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// HasCode reports whether err carries a DomainError with the given code.
func HasCode(err error, code string) bool {
	var domainErr *DomainError
	if !errors.As(err, &domainErr) {
		return false
	}
	return domainErr.Code == code
}
