package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfigDefaultsAndYAML(t *testing.T) {
	path := writeConfigFile(t, `
server:
  port: "9090"
jwt:
  secret: yaml-secret
registration:
  mode: preprovision
storage:
  bucket: cmis-resumes
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "yaml-secret", cfg.JWT.Secret)
	assert.Equal(t, RegistrationModePreprovision, cfg.Registration.Mode)
	assert.Equal(t, "cmis-resumes", cfg.Storage.Bucket)
	assert.Equal(t, int64(10*1024*1024), cfg.Registration.MaxResumeBytes)
	assert.Equal(t, "resumes", cfg.Storage.ResumesFolder)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, "jwt:\n  secret: from-file\n")

	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("DB_SSL", "true")
	t.Setenv("DB_MAX_OPEN_CONNS", "7")
	t.Setenv("APP_ENV", "production")
	t.Setenv("NEXT_PUBLIC_N8N_WEBHOOK_URL", "https://n8n.example.com/webhook/abc")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.True(t, cfg.Database.SSL)
	assert.Equal(t, 7, cfg.Database.MaxOpenConns)
	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, "https://n8n.example.com/webhook/abc", cfg.Webhook.N8NURL)
	assert.Contains(t, cfg.GetPostgresConnectionString(), "sslmode=require")
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "missing secret", body: "server:\n  port: \"8080\"\n"},
		{name: "unknown registration mode", body: "jwt:\n  secret: s\nregistration:\n  mode: invite\n"},
		{name: "bad duration", body: "jwt:\n  secret: s\nwebhook:\n  timeout: soon\n"},
		{name: "empty cors origins", body: "jwt:\n  secret: s\ncors:\n  allowed_origins: \" , \"\n"},
		{name: "cors origin without scheme", body: "jwt:\n  secret: s\ncors:\n  allowed_origins: localhost:3000\n"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfigFile(t, tc.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfigRejectsEmptyCORSOriginsFromEnv(t *testing.T) {
	path := writeConfigFile(t, "jwt:\n  secret: s\n")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")

	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "CORS allowed origin")
}

func TestApplyEnvOverridesRejectsMalformedNumbers(t *testing.T) {
	cfg := &Config{}
	lookup := func(key string) (string, bool) {
		if key == "REDIS_DB" {
			return "zero", true
		}
		return "", false
	}

	err := applyEnvOverrides(reflect.ValueOf(cfg), lookup)
	assert.ErrorContains(t, err, "REDIS_DB")
}

func TestAllowedOrigins(t *testing.T) {
	cfg := &Config{}
	cfg.CORS.AllowedOrigins = "http://localhost:3000, https://portal.example.edu ,"

	assert.Equal(t, []string{"http://localhost:3000", "https://portal.example.edu"}, cfg.AllowedOrigins())
}

func TestApplyEnvOverridesReportsEveryBadVariable(t *testing.T) {
	cfg := &Config{}
	env := map[string]string{
		"REDIS_DB":       "zero",
		"DB_SSL":         "maybe",
		"SERVER_PORT":    " 9090 ",
		"RATE_LIMIT_RPS": "5",
	}
	lookup := func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}

	err := applyEnvOverrides(reflect.ValueOf(cfg), lookup)
	assert.ErrorContains(t, err, "REDIS_DB")
	assert.ErrorContains(t, err, "DB_SSL")
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 5, cfg.RateLimit.RequestsPerSecond)
}
