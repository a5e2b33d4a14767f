package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/cmis/studentportal/internal/app/models"
	"github.com/cmis/studentportal/internal/pkg/apperrors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strp(s string) *string { return &s }

// catalog returns 5 events after 2025-06-15 and 3 before it
func catalog() []models.Event {
	var events []models.Event
	for i := 1; i <= 5; i++ {
		events = append(events, models.Event{
			ID:        int64(i),
			Title:     fmt.Sprintf("Upcoming %d", i),
			EventDate: fmt.Sprintf("2025-07-%02d", i),
			StartTime: strp("17:00:00"),
		})
	}
	for i := 1; i <= 3; i++ {
		events = append(events, models.Event{
			ID:        int64(10 + i),
			Title:     fmt.Sprintf("Past %d", i),
			EventDate: fmt.Sprintf("2025-05-%02d", i),
		})
	}
	return events
}

func newEventFixture(events []models.Event) *EventService {
	svc := NewEventService(&fakeEventStore{events: events}, &fakeStorage{}, time.Hour, zerolog.Nop())
	svc.now = func() time.Time { return time.Date(2025, 6, 15, 23, 0, 0, 0, time.UTC) }
	return svc
}

func TestListUpcomingEvents(t *testing.T) {
	svc := newEventFixture(catalog())

	resp, err := svc.List(context.Background(), 1, 2, true)
	require.NoError(t, err)

	require.Len(t, resp.Events, 2)
	assert.Equal(t, "2025-07-05", resp.Events[0].EventDate)
	assert.Equal(t, "2025-07-04", resp.Events[1].EventDate)
	assert.Equal(t, int64(5), resp.Pagination.Total)
	assert.Equal(t, 3, resp.Pagination.TotalPages)
	for _, e := range resp.Events {
		assert.False(t, e.IsPast)
	}
}

func TestListAllEventsMarksPast(t *testing.T) {
	svc := newEventFixture(catalog())

	resp, err := svc.List(context.Background(), 0, 0, false)
	require.NoError(t, err)

	assert.Equal(t, 1, resp.Pagination.Page)
	assert.Equal(t, 50, resp.Pagination.Limit)
	require.Len(t, resp.Events, 8)
	assert.True(t, resp.Events[7].IsPast)
	assert.False(t, resp.Events[0].IsPast)
}

func TestEventTodayIsNotPast(t *testing.T) {
	svc := newEventFixture([]models.Event{{ID: 1, Title: "Today", EventDate: "2025-06-15"}})

	event, err := svc.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, event.IsPast)
}

func TestEventFileURL(t *testing.T) {
	svc := newEventFixture([]models.Event{
		{ID: 1, EventDate: "2025-07-01", FileKey: strp("events/flyer.pdf"), FileName: strp("flyer.pdf")},
		{ID: 2, EventDate: "2025-07-01", FileName: strp("https://cdn.example/flyer.pdf")},
		{ID: 3, EventDate: "2025-07-01"},
	})
	ctx := context.Background()

	withKey, err := svc.GetByID(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, withKey.FileURL)
	assert.Equal(t, "https://signed.example/events/flyer.pdf", *withKey.FileURL)

	nameOnly, err := svc.GetByID(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/flyer.pdf", *nameOnly.FileURL)

	nothing, err := svc.GetByID(ctx, 3)
	require.NoError(t, err)
	assert.Nil(t, nothing.FileURL)

	_, err = svc.GetByID(ctx, 404)
	assert.Equal(t, "Event not found", apperrors.Message(err, ""))
}

func TestParseAgenda(t *testing.T) {
	assert.Equal(t, []string{"Welcome", "Panel"}, ParseAgenda(`["Welcome","Panel"]`))
	assert.Equal(t, []string{"5:30 Check-in", "6:00 Talk"}, ParseAgenda("5:30 Check-in\n\n  6:00 Talk  \n"))
	assert.Equal(t, []string{}, ParseAgenda("   "))
}
