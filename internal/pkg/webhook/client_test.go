package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cmis/studentportal/internal/pkg/apperrors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTriggerPostsPayload(t *testing.T) {
	var got Payload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"executionId":"abc"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second, zerolog.Nop())
	client.now = func() time.Time { return time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC) }

	reply, err := client.Trigger(context.Background(), 42)
	require.NoError(t, err)

	assert.Equal(t, Payload{StudentID: 42, Timestamp: "2025-05-01T12:00:00.000Z", Source: "cmis-student-portal"}, got)
	assert.Equal(t, map[string]interface{}{"executionId": "abc"}, reply)
}

func TestTriggerNonJSONReply(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("Workflow was started"))
	}))
	defer server.Close()

	reply, err := NewClient(server.URL, time.Second, zerolog.Nop()).Trigger(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"message": "Pipeline triggered successfully"}, reply)
}

func TestTriggerUpstreamFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "workflow inactive", http.StatusNotFound)
	}))
	defer server.Close()

	_, err := NewClient(server.URL, time.Second, zerolog.Nop()).Trigger(context.Background(), 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUpstreamService)
	assert.Equal(t, "Failed to trigger n8n pipeline", apperrors.Message(err, ""))

	var custom *apperrors.CustomError
	require.ErrorAs(t, err, &custom)
	assert.Equal(t, "n8n returned status 404", custom.Detail)
}

func TestTriggerNotConfigured(t *testing.T) {
	client := NewClient("", time.Second, zerolog.Nop())
	assert.False(t, client.Configured())

	_, err := client.Trigger(context.Background(), 1)
	assert.ErrorIs(t, err, apperrors.ErrNotConfigured)
}
