package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel(" DEBUG "))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("warn"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("chatty"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
}

func TestConfigureStampsServiceAndEnv(t *testing.T) {
	var buf bytes.Buffer
	t.Cleanup(func() { Configure(Config{Level: "info", Pretty: true}) })

	Configure(Config{Level: "debug", Service: "student-portal", Env: "test", Output: &buf})
	migrationLog := WithField("migration", "001_create_students.sql")
	migrationLog.Debug().Msg("applied")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "student-portal", entry["service"])
	assert.Equal(t, "test", entry["env"])
	assert.Equal(t, "001_create_students.sql", entry["migration"])
	assert.Equal(t, "applied", entry["message"])
}

func TestConfigureRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	t.Cleanup(func() { Configure(Config{Level: "info", Pretty: true}) })

	Configure(Config{Level: "error", Output: &buf})
	Info().Msg("hidden")
	assert.Empty(t, buf.String())

	Error().Msg("shown")
	assert.Contains(t, buf.String(), "shown")
}
