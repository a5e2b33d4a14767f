// Package webhook forwards student pipeline triggers to the n8n automation endpoint.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cmis/studentportal/internal/pkg/apperrors"
	"github.com/rs/zerolog"
)

// Source identifies this service in payloads sent to n8n
const Source = "cmis-student-portal"

// maxErrorBody bounds how much of a failed upstream reply is logged
const maxErrorBody = 4 << 10

var (
	ErrNotConfigured = apperrors.NewCustomError(apperrors.ErrNotConfigured, "Webhook service is not configured. Please contact administrator.")
	ErrTriggerFailed = apperrors.NewCustomError(apperrors.ErrUpstreamService, "Failed to trigger n8n pipeline")
)

// Payload is the body posted to n8n
type Payload struct {
	StudentID int64  `json:"student_id"`
	Timestamp string `json:"timestamp"`
	Source    string `json:"source"`
}

// Client posts trigger payloads to a single webhook URL
type Client struct {
	url        string
	httpClient *http.Client
	logger     zerolog.Logger
	now        func() time.Time
}

// NewClient creates a client. An empty url yields a client whose Trigger
// always returns ErrNotConfigured.
func NewClient(url string, timeout time.Duration, logger zerolog.Logger) *Client {
	return &Client{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With().Str("component", "n8n-webhook").Logger(),
		now:        time.Now,
	}
}

// Configured reports whether a webhook URL is set
func (c *Client) Configured() bool {
	return c.url != ""
}

// Trigger posts the student id to n8n and returns the decoded reply. A reply that
// is not JSON is replaced by a generic acknowledgement.
func (c *Client) Trigger(ctx context.Context, studentID int64) (interface{}, error) {
	if !c.Configured() {
		c.logger.Error().Msg("N8N_WEBHOOK_URL is not configured")
		return nil, ErrNotConfigured
	}

	body, err := json.Marshal(Payload{
		StudentID: studentID,
		Timestamp: c.now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		Source:    Source,
	})
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to encode webhook payload", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to build webhook request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	log := c.logger.With().Int64("student_id", studentID).Logger()
	log.Info().Msg("Triggering n8n webhook")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error().Err(err).Msg("n8n webhook request failed")
		return nil, ErrTriggerFailed.WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errorText, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		log.Error().
			Int("status", resp.StatusCode).
			Str("status_text", resp.Status).
			Str("body", string(errorText)).
			Msg("n8n webhook error")
		detail := fmt.Sprintf("n8n returned status %d", resp.StatusCode)
		return nil, ErrTriggerFailed.WithDetail(detail).WithCause(fmt.Errorf("%s", detail))
	}

	var reply interface{}
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		reply = map[string]interface{}{"message": "Pipeline triggered successfully"}
	}

	log.Info().Msg("n8n webhook triggered successfully")
	return reply, nil
}
