package seed

import (
	"context"
	"errors"
	"testing"
	"time"

	appModels "github.com/cmis/studentportal/internal/app/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryEvents struct {
	existing int64
	created  []appModels.Event
	failOn   string
}

func (m *memoryEvents) CountAll(context.Context) (int64, error) {
	return m.existing, nil
}

func (m *memoryEvents) Create(_ context.Context, e *appModels.Event) error {
	if e.Title == m.failOn {
		return errors.New("insert failed")
	}
	e.ID = int64(len(m.created) + 1)
	m.created = append(m.created, *e)
	return nil
}

func TestSampleEventsSpanPastAndFuture(t *testing.T) {
	today := time.Date(2025, 10, 14, 12, 0, 0, 0, time.UTC)
	var upcoming, past int
	for _, e := range SampleEvents(today) {
		if e.EventDate >= "2025-10-14" {
			upcoming++
		} else {
			past++
		}
	}
	assert.Equal(t, 3, upcoming)
	assert.Equal(t, 2, past)
}

func TestCreateDefaultDataOnEmptyTable(t *testing.T) {
	store := &memoryEvents{}
	require.NoError(t, CreateDefaultData(context.Background(), store, zerolog.Nop()))
	assert.Len(t, store.created, 5)
}

func TestCreateDefaultDataSkipsPopulatedTable(t *testing.T) {
	store := &memoryEvents{existing: 2}
	require.NoError(t, CreateDefaultData(context.Background(), store, zerolog.Nop()))
	assert.Empty(t, store.created)
}

func TestCreateDefaultDataCollectsErrors(t *testing.T) {
	store := &memoryEvents{failOn: "Mock Interviews"}
	err := CreateDefaultData(context.Background(), store, zerolog.Nop())
	assert.Error(t, err)
	assert.Len(t, store.created, 4)
}
