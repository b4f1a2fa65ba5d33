package errors

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule,omitempty"`
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	if len(ve) == 1 {
		return fmt.Sprintf("validation failed: %s %s", ve[0].Field, ve[0].Message)
	}
	return fmt.Sprintf("validation failed: %d field errors", len(ve))
}

func (pe *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", pe.Field, pe.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	}
}

// NewValidationErrorWithRule creates a new validation error with rule
func NewValidationErrorWithRule(field, message, rule string, value interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
		Rule:    rule,
	}
}

// ToValidationErrors converts validator.ValidationErrors to our custom type
func ToValidationErrors(err error) ValidationErrors {
	var errors ValidationErrors

	if validatorErr, ok := err.(validator.ValidationErrors); ok {
		for _, err := range validatorErr {
			errors = append(errors, ValidationError{
				Field:   err.Field(),
				Message: getErrorMessage(err),
				Value:   err.Value(),
				Rule:    err.Tag(),
			})
		}
	}

	return errors
}

// getErrorMessage returns user-friendly error messages
func getErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", err.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", err.Param())
	case "len":
		return fmt.Sprintf("must be exactly %s characters", err.Param())
	case "email":
		return "must be a valid email address"
	case "uuid":
		return "must be a valid UUID"
	case "numeric":
		return "must be a number"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", err.Param())

	// Custom validators
	case "id_format":
		return "must not have spaces or punctuation other than -"
	case "code_format":
		return "must not have spaces or punctuation other than -./"
	case "visibility_status":
		return "must be one of: current, historical, merged"
	case "yn_cell":
		return "must only use the letter y or n"

	default:
		return fmt.Sprintf("validation failed for rule '%s'", err.Tag())
	}
}

// RowMessage renders a spreadsheet row field failure the way it is reported back to the
// person who uploaded the workbook.
func RowMessage(field string, err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return RequiredFieldMessage(field)
	case "id_format":
		return "id must not have spaces or punctuation other than -"
	case "code_format":
		return "code must not have spaces or punctuation other than -./"
	case "yn_cell":
		return "permissions matrix must only use the letter y or n"
	case "max_occupancy":
		return "maxOccupancy must be 1 or null for unrestricted occupancy"
	case "oneof":
		return fmt.Sprintf("%s must be one of the following values: %s", field, strings.Join(strings.Fields(err.Param()), ", "))
	case "visibility_status":
		return fmt.Sprintf("%s must be one of the following values: current, historical, merged", field)
	case "min":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, err.Param())
	case "max":
		return fmt.Sprintf("%s must be less than or equal to %s", field, err.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	default:
		return fmt.Sprintf("%s %s", field, getErrorMessage(err))
	}
}

// RequiredFieldMessage is the row message for a missing mandatory column value
func RequiredFieldMessage(field string) string {
	return fmt.Sprintf("%s is a required field", field)
}
