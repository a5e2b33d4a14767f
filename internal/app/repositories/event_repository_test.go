package repositories

import (
	"testing"
	"time"

	"github.com/cmis/studentportal/internal/app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyEventFilterUpcoming(t *testing.T) {
	from := time.Date(2025, 10, 14, 22, 30, 0, 0, time.FixedZone("CDT", -5*3600))

	sql, args, err := applyEventFilter(selectEvents(), EventFilter{UpcomingFrom: from}).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "WHERE event_date >= $1")
	require.Len(t, args, 1)
	// 22:30 CDT is already the next UTC day
	assert.Equal(t, time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC), args[0])
}

func TestApplyEventFilterAll(t *testing.T) {
	sql, args, err := applyEventFilter(selectEvents(), EventFilter{}).ToSql()
	require.NoError(t, err)

	assert.NotContains(t, sql, "WHERE")
	assert.Empty(t, args)
	assert.Contains(t, sql, "to_char(event_date, 'YYYY-MM-DD')")
}

func TestInsertEventCastsDateAndTimes(t *testing.T) {
	start := "17:30"
	sql, args, err := insertEvent(&models.Event{Title: "Career Fair", EventDate: "2025-10-20", StartTime: &start}).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "VALUES ($1,$2,$3::date,$4::time,$5::time,")
	assert.Contains(t, sql, "RETURNING event_id")
	assert.Equal(t, "Career Fair", args[0])
	assert.Equal(t, "2025-10-20", args[2])
	assert.Equal(t, &start, args[3])
}
