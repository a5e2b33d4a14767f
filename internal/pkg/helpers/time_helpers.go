package helpers

import (
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// DateLayout is the calendar-date format used for event dates
const DateLayout = "2006-01-02"

// DurationOr parses a configured duration such as "144h". Blank, malformed and
// non-positive values yield fallback; only malformed ones are logged.
func DurationOr(value string, fallback time.Duration) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Warn().Err(err).Str("value", value).Dur("fallback", fallback).Msg("Invalid duration in configuration")
		return fallback
	}
	if d <= 0 {
		return fallback
	}
	return d
}

// UTCDate formats t as the UTC calendar date (YYYY-MM-DD)
func UTCDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}
