package services

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/cmis/studentportal/internal/app/models"
	"github.com/cmis/studentportal/internal/app/models/dto"
	"github.com/cmis/studentportal/internal/app/repositories"
	"github.com/cmis/studentportal/internal/pkg/filestorage"
	"github.com/cmis/studentportal/internal/pkg/helpers"
	"github.com/cmis/studentportal/internal/pkg/listfield"
	"github.com/rs/zerolog"
)

// EventService serves the read-only event catalog
type EventService struct {
	events     EventStore
	storage    filestorage.ObjectStorage
	readURLTTL time.Duration
	logger     zerolog.Logger
	now        func() time.Time
}

// NewEventService creates a new EventService
func NewEventService(events EventStore, storage filestorage.ObjectStorage, readURLTTL time.Duration, logger zerolog.Logger) *EventService {
	return &EventService{
		events:     events,
		storage:    storage,
		readURLTTL: readURLTTL,
		logger:     logger,
		now:        time.Now,
	}
}

// List returns one page of events, latest first. With upcomingOnly, events
// dated before today (UTC) are excluded.
func (s *EventService) List(ctx context.Context, page, limit int, upcomingOnly bool) (*dto.EventListResponse, error) {
	if page < 1 {
		page = helpers.DefaultPage
	}
	if limit <= 0 {
		limit = helpers.DefaultPageSize
	}

	now := s.now()
	filter := repositories.EventFilter{Page: page, Limit: limit}
	if upcomingOnly {
		filter.UpcomingFrom = now
	}

	events, total, err := s.events.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	today := helpers.UTCDate(now)
	items := make([]dto.EventResponse, 0, len(events))
	for i := range events {
		items = append(items, s.toResponse(ctx, &events[i], today))
	}

	return &dto.EventListResponse{
		Success:    true,
		Events:     items,
		Pagination: helpers.NewPaginationInfo(total, page, limit),
	}, nil
}

// GetByID returns a single event
func (s *EventService) GetByID(ctx context.Context, id int64) (*dto.EventResponse, error) {
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := s.toResponse(ctx, event, helpers.UTCDate(s.now()))
	return &resp, nil
}

func (s *EventService) toResponse(ctx context.Context, e *models.Event, today string) dto.EventResponse {
	resp := dto.EventResponse{
		ID:           e.ID,
		Title:        e.Title,
		Description:  e.Description,
		EventDate:    e.EventDate,
		StartTime:    e.StartTime,
		EndTime:      e.EndTime,
		LocationType: e.LocationType,
		FileName:     e.FileName,
		FileKey:      e.FileKey,
		EventSummary: e.EventSummary,
		AboutEvent:   e.AboutEvent,
		EventAgenda:  e.EventAgenda,
		Agenda:       ParseAgenda(helpers.StringValue(e.EventAgenda)),
		IsPast:       e.EventDate < today,
	}

	if url := s.storage.PresignOrFallback(ctx, helpers.StringValue(e.FileKey), helpers.StringValue(e.FileName), s.readURLTTL); url != "" {
		resp.FileURL = &url
	}
	return resp
}

// ParseAgenda reads an agenda stored as a JSON list or as one item per line
func ParseAgenda(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{}
	}

	var decoded []any
	if err := json.Unmarshal([]byte(raw), &decoded); err == nil {
		return listfield.Normalize(decoded)
	}

	items := []string{}
	for _, line := range strings.Split(raw, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			items = append(items, line)
		}
	}
	return items
}
