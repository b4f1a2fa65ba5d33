package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/SAP-F-2025/refdata-service/internal/repositories"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// textOf renders a cell or column value as trimmed text
func textOf(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case *string:
		if t == nil {
			return ""
		}
		return strings.TrimSpace(*t)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

func isTrue(v interface{}) bool {
	switch t := v.(type) {
	case bool:
		return t
	case *bool:
		return t != nil && *t
	case string:
		return strings.EqualFold(t, "true")
	}
	return false
}

func copyRecord(r repositories.Record) repositories.Record {
	out := make(repositories.Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// hasChanges reports whether any incoming value differs from the stored row. Only columns
// the stored row carries are compared.
func hasChanges(model string, incoming, existing repositories.Record) bool {
	for field, v := range incoming {
		if field == "deletedAt" {
			continue
		}
		// components are re-numbered on every import of a survey
		if model == "SurveyScreenComponent" && field == "componentIndex" {
			continue
		}
		current, ok := existing[field]
		if !ok {
			continue
		}
		if !sameValue(v, current) {
			return true
		}
	}
	return false
}

func sameValue(a, b interface{}) bool {
	if da, ok := a.(decimal.Decimal); ok {
		return decimalEquals(da, b)
	}
	if db, ok := b.(decimal.Decimal); ok {
		return decimalEquals(db, a)
	}
	return canonical(a) == canonical(b)
}

func decimalEquals(d decimal.Decimal, other interface{}) bool {
	s := canonical(other)
	if s == "" {
		return false
	}
	o, err := decimal.NewFromString(s)
	return err == nil && d.Equal(o)
}

// canonical renders a value so that the workbook and database forms of the same value compare equal
func canonical(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		if strings.HasPrefix(t, "[") || strings.HasPrefix(t, "{") {
			return compactJSON([]byte(t))
		}
		return t
	case *string:
		if t == nil {
			return ""
		}
		return canonical(*t)
	case []interface{}, map[string]interface{}:
		b, _ := json.Marshal(t)
		return string(b)
	case []byte:
		return compactJSON(t)
	case datatypes.JSON:
		return compactJSON(t)
	case []string:
		b, _ := json.Marshal(t)
		return string(b)
	case time.Time:
		return t.UTC().Format(time.RFC3339Nano)
	case *time.Time:
		if t == nil {
			return ""
		}
		return t.UTC().Format(time.RFC3339Nano)
	case decimal.Decimal:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

func compactJSON(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, b); err != nil {
		return string(b)
	}
	if buf.String() == "null" {
		return ""
	}
	return buf.String()
}
