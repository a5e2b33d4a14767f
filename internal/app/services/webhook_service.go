package services

import (
	"context"
	"strconv"
	"strings"

	"github.com/cmis/studentportal/internal/app/models/dto"
	"github.com/cmis/studentportal/internal/pkg/apperrors"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// Webhook errors with their client messages
var (
	ErrStudentIDRequired = apperrors.NewCustomError(apperrors.ErrValidation, "student_id is required")
	ErrStudentIDInvalid  = apperrors.NewCustomError(apperrors.ErrValidation, "student_id must be a valid positive number")
)

// WebhookService forwards pipeline triggers to the automation webhook
type WebhookService struct {
	notifier Notifier
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewWebhookService creates a new WebhookService
func NewWebhookService(notifier Notifier, logger zerolog.Logger) *WebhookService {
	return &WebhookService{
		notifier: notifier,
		validate: validator.New(),
		logger:   logger,
	}
}

// ParseStudentID accepts a JSON number or a numeric string
func (s *WebhookService) ParseStudentID(raw interface{}) (int64, error) {
	var id int64
	switch value := raw.(type) {
	case nil:
		return 0, ErrStudentIDRequired
	case float64:
		if value != float64(int64(value)) {
			return 0, ErrStudentIDInvalid
		}
		id = int64(value)
	case string:
		value = strings.TrimSpace(value)
		if value == "" {
			return 0, ErrStudentIDRequired
		}
		parsed, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return 0, ErrStudentIDInvalid
		}
		id = parsed
	default:
		return 0, ErrStudentIDInvalid
	}

	if err := s.validate.Var(id, "gt=0"); err != nil {
		return 0, ErrStudentIDInvalid
	}
	return id, nil
}

// Trigger starts the pipeline for the student identified by raw
func (s *WebhookService) Trigger(ctx context.Context, raw interface{}) (*dto.TriggerWebhookResponse, error) {
	studentID, err := s.ParseStudentID(raw)
	if err != nil {
		return nil, err
	}

	reply, err := s.notifier.Trigger(ctx, studentID)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("student_id", studentID).Msg("n8n pipeline triggered")
	return &dto.TriggerWebhookResponse{
		Success:     true,
		Message:     "n8n pipeline triggered successfully",
		StudentID:   studentID,
		N8NResponse: reply,
	}, nil
}
