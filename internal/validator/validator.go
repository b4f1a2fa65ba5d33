package validator

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/SAP-F-2025/refdata-service/internal/models"
	"github.com/go-playground/validator/v10"
)

var (
	safeIDRegex   = regexp.MustCompile(`^[A-Za-z0-9-]+$`)
	safeCodeRegex = regexp.MustCompile(`^[A-Za-z0-9-./]+$`)
)

// Validator checks request payloads and spreadsheet rows
type Validator struct {
	structValidator *validator.Validate
	schemas         map[string]RowSchema
}

// New creates a new centralized validator instance
func New() *Validator {
	structValidator := validator.New()

	// Register all custom validators once
	registerCustomValidators(structValidator)

	return &Validator{
		structValidator: structValidator,
		schemas:         defaultRowSchemas(),
	}
}

// ValidateStruct validates struct tags only
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.structValidator.Struct(s)
}

// registerCustomValidators registers all custom validation functions
func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("id_format", validateIDFormat)
	validate.RegisterValidation("code_format", validateCodeFormat)
	validate.RegisterValidation("visibility_status", validateVisibilityStatus)
	validate.RegisterValidation("yn_cell", validateYNCell)
	validate.RegisterValidation("max_occupancy", validateMaxOccupancy)

	// Custom tag name function for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// Custom validation functions
func validateIDFormat(fl validator.FieldLevel) bool {
	return safeIDRegex.MatchString(fl.Field().String())
}

func validateCodeFormat(fl validator.FieldLevel) bool {
	return safeCodeRegex.MatchString(fl.Field().String())
}

func validateVisibilityStatus(fl validator.FieldLevel) bool {
	validStatuses := []models.VisibilityStatus{
		models.VisibilityCurrent,
		models.VisibilityHistorical,
		models.VisibilityMerged,
	}

	value := fl.Field().String()
	for _, validStatus := range validStatuses {
		if string(validStatus) == value {
			return true
		}
	}
	return false
}

func validateYNCell(fl validator.FieldLevel) bool {
	value := strings.ToLower(strings.TrimSpace(fl.Field().String()))
	return value == "y" || value == "n"
}

func validateMaxOccupancy(fl validator.FieldLevel) bool {
	switch fl.Field().Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return fl.Field().Int() == 1
	default:
		return false
	}
}
