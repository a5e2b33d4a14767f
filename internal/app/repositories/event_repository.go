package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/cmis/studentportal/internal/app/models"
	"github.com/cmis/studentportal/internal/pkg/apperrors"
	"github.com/cmis/studentportal/internal/pkg/helpers"
	"github.com/cmis/studentportal/internal/pkg/logger"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EventFilter holds parameters for filtering and pagination
type EventFilter struct {
	Page  int
	Limit int
	// UpcomingFrom, when non-zero, keeps events dated on or after that calendar day
	UpcomingFrom time.Time
}

// EventRepository handles read access to the events table
type EventRepository struct {
	DB *pgxpool.Pool
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *pgxpool.Pool) *EventRepository {
	return &EventRepository{DB: db}
}

func selectEvents() squirrel.SelectBuilder {
	return squirrel.Select(
		"event_id", "title", "description",
		"to_char(event_date, 'YYYY-MM-DD')", "start_time::text", "end_time::text",
		"location_type", "file_name", "file_key",
		"event_summary", "about_event", "event_agenda",
	).From("events").PlaceholderFormat(squirrel.Dollar)
}

func scanEvent(row pgx.Row) (*models.Event, error) {
	var e models.Event
	err := row.Scan(
		&e.ID, &e.Title, &e.Description,
		&e.EventDate, &e.StartTime, &e.EndTime,
		&e.LocationType, &e.FileName, &e.FileKey,
		&e.EventSummary, &e.AboutEvent, &e.EventAgenda,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func applyEventFilter(builder squirrel.SelectBuilder, filter EventFilter) squirrel.SelectBuilder {
	if !filter.UpcomingFrom.IsZero() {
		from := filter.UpcomingFrom.UTC()
		day := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
		builder = builder.Where(squirrel.GtOrEq{"event_date": day})
	}
	return builder
}

// List returns one page of events, latest first, with the total count of matching rows
func (r *EventRepository) List(ctx context.Context, filter EventFilter) ([]models.Event, int64, error) {
	countSQL, countArgs, err := applyEventFilter(
		squirrel.Select("count(*)").From("events").PlaceholderFormat(squirrel.Dollar), filter,
	).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building count events SQL")
		return nil, 0, err
	}

	var total int64
	if err := r.DB.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		logger.Error().Err(err).Msg("Error executing count events query")
		return nil, 0, fmt.Errorf("error counting events: %w", err)
	}
	if total == 0 {
		return []models.Event{}, 0, nil
	}

	offset, limit := helpers.CalculateOffsetLimit(filter.Page, filter.Limit)
	sql, args, err := applyEventFilter(selectEvents(), filter).
		OrderBy("event_date DESC", "start_time DESC").
		Limit(limit).
		Offset(offset).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list events SQL")
		return nil, 0, err
	}

	rows, err := r.DB.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list events query")
		return nil, 0, fmt.Errorf("error listing events: %w", err)
	}
	defer rows.Close()

	events := make([]models.Event, 0, limit)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			logger.Error().Err(err).Msg("Error scanning event row")
			return nil, 0, err
		}
		events = append(events, *event)
	}
	if err := rows.Err(); err != nil {
		logger.Error().Err(err).Msg("Error iterating event rows")
		return nil, 0, err
	}

	return events, total, nil
}

// GetByID retrieves a single event
func (r *EventRepository) GetByID(ctx context.Context, id int64) (*models.Event, error) {
	sql, args, err := selectEvents().Where(squirrel.Eq{"event_id": id}).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get event SQL")
		return nil, err
	}

	event, err := scanEvent(r.DB.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrEventNotFound
		}
		logger.Error().Err(err).Int64("event_id", id).Msg("Error executing get event query")
		return nil, fmt.Errorf("error retrieving event: %w", err)
	}
	return event, nil
}

// CountAll returns the number of stored events regardless of date
func (r *EventRepository) CountAll(ctx context.Context) (int64, error) {
	var total int64
	if err := r.DB.QueryRow(ctx, "SELECT count(*) FROM events").Scan(&total); err != nil {
		return 0, fmt.Errorf("error counting events: %w", err)
	}
	return total, nil
}

func insertEvent(e *models.Event) squirrel.InsertBuilder {
	return squirrel.Insert("events").
		Columns(
			"title", "description", "event_date", "start_time", "end_time",
			"location_type", "file_name", "file_key",
			"event_summary", "about_event", "event_agenda",
		).
		Values(
			e.Title, e.Description, squirrel.Expr("?::date", e.EventDate),
			squirrel.Expr("?::time", e.StartTime), squirrel.Expr("?::time", e.EndTime),
			e.LocationType, e.FileName, e.FileKey,
			e.EventSummary, e.AboutEvent, e.EventAgenda,
		).
		Suffix("RETURNING event_id").
		PlaceholderFormat(squirrel.Dollar)
}

// Create inserts an event and sets its generated id. Events are normally
// published outside the API; this serves the development seed.
func (r *EventRepository) Create(ctx context.Context, e *models.Event) error {
	sql, args, err := insertEvent(e).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create event SQL")
		return err
	}

	if err := r.DB.QueryRow(ctx, sql, args...).Scan(&e.ID); err != nil {
		logger.Error().Err(err).Str("title", e.Title).Msg("Error executing create event query")
		return fmt.Errorf("error creating event: %w", err)
	}
	return nil
}
