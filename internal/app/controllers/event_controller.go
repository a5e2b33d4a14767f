package controllers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/cmis/studentportal/internal/app/models/dto"
	"github.com/cmis/studentportal/internal/middleware"
	"github.com/cmis/studentportal/internal/pkg/apperrors"
	"github.com/cmis/studentportal/internal/pkg/helpers"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// EventService is the catalog surface used by EventController
type EventService interface {
	List(ctx context.Context, page, limit int, upcomingOnly bool) (*dto.EventListResponse, error)
	GetByID(ctx context.Context, id int64) (*dto.EventResponse, error)
}

var errInvalidEventID = apperrors.NewCustomError(apperrors.ErrValidation, "Invalid event ID. Must be a positive number.")

// EventController serves the event catalog
type EventController struct {
	eventService EventService
	logger       zerolog.Logger
}

// NewEventController creates a new EventController
func NewEventController(eventService EventService, logger zerolog.Logger) *EventController {
	return &EventController{
		eventService: eventService,
		logger:       logger,
	}
}

// ListEvents handles GET /events
// @Summary List events
// @Description Returns events ordered by date and start time, latest first
// @Tags events
// @Produce json
// @Param page query int false "Page number (1-based)" default(1)
// @Param limit query int false "Page size" default(50)
// @Param upcoming query bool false "Only events dated today or later"
// @Success 200 {object} dto.EventListResponse
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /events [get]
func (c *EventController) ListEvents(ctx *gin.Context) {
	page, limit := helpers.ParsePaginationParams(ctx)
	upcoming := strings.EqualFold(ctx.Query("upcoming"), "true")

	resp, err := c.eventService.List(ctx.Request.Context(), page, limit, upcoming)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, resp)
}

// GetEvent handles GET /events/:id
// @Summary Get event
// @Tags events
// @Produce json
// @Param id path int true "Event ID"
// @Success 200 {object} dto.EventEnvelope
// @Failure 400 {object} dto.ErrorResponse "Invalid event ID"
// @Failure 404 {object} dto.ErrorResponse "Event not found"
// @Router /events/{id} [get]
func (c *EventController) GetEvent(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		middleware.HandleAPIError(ctx, errInvalidEventID)
		return
	}

	event, err := c.eventService.GetByID(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.EventEnvelope{Success: true, Event: *event})
}
