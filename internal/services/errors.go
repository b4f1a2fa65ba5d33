package services

import (
	"errors"
	"fmt"

	apperrors "github.com/SAP-F-2025/refdata-service/internal/errors"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrForbidden        = errors.New("forbidden - insufficient permissions")
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")
	ErrConflict         = errors.New("resource conflict")

	// Import specific errors
	ErrUnknownDataType   = errors.New("unknown data type")
	ErrUnknownImportKind = errors.New("unknown import kind")
	ErrImportInProgress  = errors.New("another import is in progress")
	ErrImportJobNotFound = errors.New("import job not found")
	ErrEmptyWorkbook     = errors.New("workbook has no sheets")

	// User/Permission errors
	ErrUserNotFound    = errors.New("user not found")
	ErrUnauthenticated = errors.New("user not authenticated")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

// ImportError is one reported problem of an import run
type ImportError = apperrors.ImportError

// UnknownDataTypeError names the data type a request asked for that no importer or exporter handles
type UnknownDataTypeError struct {
	DataType string
}

func (e *UnknownDataTypeError) Error() string {
	return fmt.Sprintf("%s: %s", ErrUnknownDataType.Error(), e.DataType)
}

func (e *UnknownDataTypeError) Unwrap() error {
	return ErrUnknownDataType
}

// PermissionError is a denied create or write on a model
type PermissionError struct {
	Verb string `json:"verb"`
	Noun string `json:"noun"`
}

func (pe *PermissionError) Error() string {
	return fmt.Sprintf("ForbiddenError: No permission to perform action %q on %q", pe.Verb, pe.Noun)
}

// ===== ERROR HELPERS =====

// NewValidationError creates a new validation error using the shared type
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

func NewPermissionError(verb, noun string) *PermissionError {
	return &PermissionError{Verb: verb, Noun: noun}
}

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrImportJobNotFound) ||
		errors.Is(err, ErrUserNotFound)
}

// IsUnauthorized checks if error represents an "unauthorized" condition
func IsUnauthorized(err error) bool {
	var pe *PermissionError
	return errors.Is(err, ErrForbidden) || errors.Is(err, ErrUnauthenticated) || errors.As(err, &pe)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) ||
		errors.Is(err, ErrUnknownDataType) ||
		errors.Is(err, ErrUnknownImportKind) ||
		errors.Is(err, ErrEmptyWorkbook) ||
		errors.Is(err, ErrBadRequest) {
		return true
	}
	var ve ValidationErrors
	return errors.As(err, &ve)
}

// IsConflict checks if error represents a resource conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrImportInProgress)
}
