package translations

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// NormaliseOptions flattens an options value into an ordered list of option strings.
// Accepted shapes: a JSON array, a JSON object (values in document order, keys discarded),
// a comma separated string, or an already decoded slice/map. Blank options are dropped.
func NormaliseOptions(raw interface{}) []string {
	switch v := raw.(type) {
	case nil:
		return nil
	case []string:
		return cleanOptions(v)
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, stringify(item))
		}
		return cleanOptions(out)
	case map[string]interface{}:
		// decoded maps have lost their order, sort values by key for determinism
		return cleanOptions(sortedValues(v))
	case json.RawMessage:
		return NormaliseOptions(string(v))
	case []byte:
		return NormaliseOptions(string(v))
	case string:
		return normaliseOptionString(v)
	default:
		return normaliseOptionString(fmt.Sprint(v))
	}
}

func normaliseOptionString(s string) []string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}

	if strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, "{") {
		if values, err := orderedJSONValues(trimmed); err == nil {
			return cleanOptions(values)
		}
	}

	return cleanOptions(strings.Split(trimmed, ","))
}

// orderedJSONValues decodes a JSON array or object and returns its top-level values in
// document order.
func orderedJSONValues(s string) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.UseNumber()

	open, err := dec.Token()
	if err != nil {
		return nil, err
	}
	delim, ok := open.(json.Delim)
	if !ok || (delim != '[' && delim != '{') {
		return nil, fmt.Errorf("options must be a JSON array or object")
	}

	var values []string
	for dec.More() {
		if delim == '{' {
			if _, err := dec.Token(); err != nil { // key
				return nil, err
			}
		}
		var value interface{}
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		values = append(values, stringify(value))
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return values, nil
}

func stringify(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}

func cleanOptions(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func sortedValues(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, stringify(m[k]))
	}
	return out
}
