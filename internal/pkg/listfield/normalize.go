// Package listfield coerces the encodings used for list-typed student fields
// (native arrays, JSON-encoded strings and comma-separated strings) into []string.
package listfield

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Normalize converts v into an ordered list of strings. It never fails: values it
// cannot interpret yield an empty, non-nil list.
func Normalize(v any) []string {
	switch value := v.(type) {
	case nil:
		return []string{}
	case []string:
		if value == nil {
			return []string{}
		}
		return value
	case []any:
		out := make([]string, 0, len(value))
		for _, item := range value {
			out = append(out, stringify(item))
		}
		return out
	case string:
		return fromString(value)
	case *string:
		if value == nil {
			return []string{}
		}
		return fromString(*value)
	case json.RawMessage:
		return FromJSONB(value)
	default:
		return []string{}
	}
}

// FromJSONB normalizes a raw JSONB column value. Bytes that are not valid JSON are
// treated as a plain string.
func FromJSONB(raw []byte) []string {
	if len(raw) == 0 {
		return []string{}
	}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return fromString(string(raw))
	}
	return Normalize(decoded)
}

// Encode renders a list as the JSON array text stored in JSONB columns
func Encode(values []string) string {
	if values == nil {
		values = []string{}
	}
	encoded, err := json.Marshal(values)
	if err != nil {
		return "[]"
	}
	return string(encoded)
}

func fromString(s string) []string {
	if s == "" {
		return []string{}
	}

	var parsed any
	if err := json.Unmarshal([]byte(s), &parsed); err == nil {
		if list, ok := parsed.([]any); ok {
			return Normalize(list)
		}
		return []string{}
	}

	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func stringify(item any) string {
	switch v := item.(type) {
	case string:
		return v
	case nil:
		return ""
	case float64, bool:
		return fmt.Sprint(v)
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(encoded)
	}
}
