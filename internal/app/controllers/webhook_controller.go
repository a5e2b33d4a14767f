package controllers

import (
	"context"
	"net/http"

	"github.com/cmis/studentportal/internal/app/models/dto"
	"github.com/cmis/studentportal/internal/middleware"
	"github.com/cmis/studentportal/internal/pkg/apperrors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// WebhookService is the trigger surface used by WebhookController
type WebhookService interface {
	Trigger(ctx context.Context, rawStudentID interface{}) (*dto.TriggerWebhookResponse, error)
}

var (
	errStudentIDRequired      = apperrors.NewCustomError(apperrors.ErrValidation, "student_id is required")
	errStudentIDQueryRequired = apperrors.NewCustomError(apperrors.ErrValidation, "student_id query parameter is required")
)

// WebhookController forwards pipeline triggers to n8n
type WebhookController struct {
	webhookService WebhookService
	logger         zerolog.Logger
}

// NewWebhookController creates a new WebhookController
func NewWebhookController(webhookService WebhookService, logger zerolog.Logger) *WebhookController {
	return &WebhookController{
		webhookService: webhookService,
		logger:         logger,
	}
}

// Trigger handles POST /webhook/n8n
// @Summary Trigger n8n pipeline
// @Description Forwards a student id to the n8n automation webhook
// @Tags webhook
// @Accept json
// @Produce json
// @Param request body dto.TriggerWebhookRequest true "Student to process"
// @Success 200 {object} dto.TriggerWebhookResponse
// @Failure 400 {object} dto.ErrorResponse "student_id is required"
// @Failure 500 {object} dto.ErrorResponse "Webhook service is not configured"
// @Failure 502 {object} dto.ErrorResponse "Failed to trigger n8n pipeline"
// @Router /webhook/n8n [post]
func (c *WebhookController) Trigger(ctx *gin.Context) {
	var req dto.TriggerWebhookRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.logger.Warn().Err(err).Msg("Invalid webhook request payload")
		middleware.HandleAPIError(ctx, errStudentIDRequired)
		return
	}

	c.trigger(ctx, req.StudentID)
}

// TriggerFromQuery handles GET /webhook/n8n?student_id=
// @Summary Trigger n8n pipeline (test)
// @Description Same as POST, with the student id taken from the query string
// @Tags webhook
// @Produce json
// @Param student_id query int true "Student ID"
// @Success 200 {object} dto.TriggerWebhookResponse
// @Failure 400 {object} dto.ErrorResponse "student_id query parameter is required"
// @Failure 502 {object} dto.ErrorResponse "Failed to trigger n8n pipeline"
// @Router /webhook/n8n [get]
func (c *WebhookController) TriggerFromQuery(ctx *gin.Context) {
	studentID := ctx.Query("student_id")
	if studentID == "" {
		middleware.HandleAPIError(ctx, errStudentIDQueryRequired)
		return
	}

	c.trigger(ctx, studentID)
}

func (c *WebhookController) trigger(ctx *gin.Context, rawStudentID interface{}) {
	resp, err := c.webhookService.Trigger(ctx.Request.Context(), rawStudentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}
