package dto

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FormBool interprets a form or JSON value as a boolean the way the portal
// front-end sends it ("true" or true).
func FormBool(v interface{}) bool {
	switch value := v.(type) {
	case bool:
		return value
	case string:
		return strings.EqualFold(strings.TrimSpace(value), "true")
	default:
		return false
	}
}

// FormString renders a form or JSON scalar as a string
func FormString(v interface{}) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case json.Number:
		return value.String()
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	default:
		return fmt.Sprint(value)
	}
}

// FormInt parses an integer field sent as a string or a JSON number
func FormInt(v interface{}) (int, error) {
	switch value := v.(type) {
	case float64:
		if value != float64(int(value)) {
			return 0, fmt.Errorf("not an integer: %v", value)
		}
		return int(value), nil
	case json.Number:
		return strconv.Atoi(value.String())
	default:
		return strconv.Atoi(strings.TrimSpace(FormString(v)))
	}
}

// FormFloat parses an optional decimal. A blank value reports ok=false.
func FormFloat(v interface{}) (value float64, ok bool, err error) {
	if f, isFloat := v.(float64); isFloat {
		return f, true, nil
	}
	s := strings.TrimSpace(FormString(v))
	if s == "" {
		return 0, false, nil
	}
	value, err = strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, err
	}
	return value, true, nil
}
