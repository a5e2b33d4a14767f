// Package seed fills an empty development database with sample events
package seed

import (
	"context"
	"errors"
	"time"

	appModels "github.com/cmis/studentportal/internal/app/models"
	"github.com/rs/zerolog"
)

// EventWriter is the event storage used by the seed
type EventWriter interface {
	CountAll(ctx context.Context) (int64, error)
	Create(ctx context.Context, e *appModels.Event) error
}

func text(s string) *string { return &s }

// SampleEvents returns a few events around today so both the upcoming and
// past views have something to show
func SampleEvents(today time.Time) []appModels.Event {
	day := func(offset int) string {
		return today.UTC().AddDate(0, 0, offset).Format("2006-01-02")
	}

	return []appModels.Event{
		{
			Title:        "Resume Workshop",
			Description:  text("Bring a printed resume for one-on-one feedback."),
			EventDate:    day(7),
			StartTime:    text("17:30"),
			EndTime:      text("19:00"),
			LocationType: text("In-Person"),
			EventSummary: text("Polish your resume before recruiting season."),
			EventAgenda:  text("Welcome\nResume teardown\nOne-on-one reviews"),
		},
		{
			Title:        "Mock Interviews",
			EventDate:    day(14),
			StartTime:    text("09:00"),
			EndTime:      text("12:00"),
			LocationType: text("Virtual"),
			EventAgenda:  text(`["Behavioral round","Case round","Debrief"]`),
		},
		{
			Title:        "Industry Night",
			Description:  text("Meet CMIS alumni from consulting, finance and tech."),
			EventDate:    day(30),
			StartTime:    text("18:00"),
			LocationType: text("In-Person"),
		},
		{
			Title:        "Orientation",
			EventDate:    day(-10),
			StartTime:    text("10:00"),
			EndTime:      text("11:30"),
			LocationType: text("In-Person"),
		},
		{
			Title:        "LinkedIn Photo Booth",
			EventDate:    day(-3),
			StartTime:    text("13:00"),
			LocationType: text("In-Person"),
		},
	}
}

// CreateDefaultData inserts the sample events when the events table is empty
func CreateDefaultData(ctx context.Context, events EventWriter, lgr zerolog.Logger) error {
	total, err := events.CountAll(ctx)
	if err != nil {
		return err
	}
	if total > 0 {
		lgr.Info().Int64("events", total).Msg("Events already present, skipping seed")
		return nil
	}

	var finalErr error
	created := 0
	for _, event := range SampleEvents(time.Now()) {
		if err := events.Create(ctx, &event); err != nil {
			lgr.Error().Err(err).Str("title", event.Title).Msg("Error creating sample event")
			finalErr = errors.Join(finalErr, err)
			continue
		}
		created++
	}

	lgr.Info().Int("events", created).Msg("Sample events created")
	return finalErr
}
