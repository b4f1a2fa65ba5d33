package validator

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/SAP-F-2025/refdata-service/internal/errors"
	"github.com/SAP-F-2025/refdata-service/internal/translations"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// FieldKind selects how a raw cell value is coerced before rules run
type FieldKind int

const (
	KindString FieldKind = iota
	KindBool
	KindInt
	KindDecimal
	KindDate
	KindTimestamp
	KindOptions
)

// Field declares one column of a row schema. Rules are validator tags applied to the coerced
// value when it is present.
type Field struct {
	Name     string
	Kind     FieldKind
	Required bool
	Rules    string
	Default  interface{}
	Virtual  bool // validated but not kept in the output values
}

// RowSchema is the declarative shape of one model's worksheet rows
type RowSchema struct {
	Name   string
	Fields []Field
}

// Field returns the field declaration by name
func (s RowSchema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"02/01/2006",
	"01-02-06",
	"1/2/06",
}

// SchemaFor picks the schema for a model, preferring a data type specific variant
// ("ReferenceData/village") over the model schema and falling back to Base.
func (v *Validator) SchemaFor(model, dataType string) RowSchema {
	if s, ok := v.schemas[model+"/"+dataType]; ok {
		return s
	}
	if s, ok := v.schemas[model]; ok {
		return s
	}
	return v.schemas[baseSchema]
}

// ValidateRow coerces and checks one row. It returns the cleaned values (schema fields only)
// and every failure message. A row is valid when no message is returned.
func (v *Validator) ValidateRow(schema RowSchema, values map[string]interface{}) (map[string]interface{}, []string) {
	out := make(map[string]interface{}, len(schema.Fields))
	var messages []string

	for _, field := range schema.Fields {
		raw, present := values[field.Name]
		if !present && !field.Required && field.Default == nil {
			// absent columns leave the stored value alone
			continue
		}

		value, err := coerce(field, raw)
		if err != nil {
			messages = append(messages, err.Error())
			continue
		}
		if value == nil && field.Default != nil {
			value = field.Default
		}

		if value == nil {
			if field.Required {
				messages = append(messages, apperrors.RequiredFieldMessage(field.Name))
			} else if !field.Virtual {
				out[field.Name] = nil
			}
			continue
		}

		if field.Rules != "" {
			if err := v.structValidator.Var(value, field.Rules); err != nil {
				if verrs, ok := err.(validator.ValidationErrors); ok {
					for _, fe := range verrs {
						messages = append(messages, apperrors.RowMessage(field.Name, fe))
					}
				} else {
					messages = append(messages, fmt.Sprintf("%s is invalid: %v", field.Name, err))
				}
				continue
			}
		}

		if !field.Virtual {
			out[field.Name] = value
		}
	}

	return out, messages
}

// coerce turns a raw cell value into the field's Go type. Blank input yields nil.
func coerce(field Field, raw interface{}) (interface{}, error) {
	if raw == nil {
		return nil, nil
	}

	if field.Kind == KindOptions {
		options := translations.NormaliseOptions(raw)
		if len(options) == 0 {
			return nil, nil
		}
		return options, nil
	}

	s, isString := raw.(string)
	if !isString {
		// already typed, e.g. a value set while expanding a sheet
		return raw, nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	switch field.Kind {
	case KindBool:
		switch strings.ToLower(s) {
		case "true", "yes", "y", "1":
			return true, nil
		case "false", "no", "n", "0":
			return false, nil
		}
		return nil, fmt.Errorf("%s must be a boolean (true/false or yes/no)", field.Name)
	case KindInt:
		n, err := strconv.Atoi(s)
		if err != nil {
			f, ferr := strconv.ParseFloat(s, 64)
			if ferr != nil || f != float64(int(f)) {
				return nil, fmt.Errorf("%s must be a number", field.Name)
			}
			n = int(f)
		}
		return n, nil
	case KindDecimal:
		d, err := decimal.NewFromString(s)
		if err != nil {
			return nil, fmt.Errorf("%s must be a number", field.Name)
		}
		return d, nil
	case KindDate, KindTimestamp:
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
		}
		return nil, fmt.Errorf("%s must be a valid date", field.Name)
	default:
		return s, nil
	}
}
