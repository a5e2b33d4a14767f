package helpers

import "strings"

// NullIfEmpty returns nil for a blank string so optional columns are stored as NULL
func NullIfEmpty(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

// StringValue dereferences a nullable column, returning "" for NULL
func StringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
