package boltstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hray3182/calendar/internal/models"
	"github.com/hray3182/calendar/internal/service"
)

var _ service.Store = (*Store)(nil)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(Config{Path: filepath.Join(t.TempDir(), "calendar.db")})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func daily(date string) models.Event {
	return models.Event{
		Title:     "Standup",
		Date:      date,
		StartTime: "09:00",
		EndTime:   "09:15",
		Repeat:    models.Repeat{Type: models.RepeatDaily, Interval: 1, EndDate: "2025-11-28"},
	}
}

func TestStore_CRUD(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, models.Event{
		Title: "Dentist", Date: "2025-11-25", StartTime: "10:00", EndTime: "11:00", Repeat: models.NoRepeat(),
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	got, err := s.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	created.Title = "Dentist (moved)"
	_, err = s.Update(ctx, created)
	require.NoError(t, err)

	events, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Dentist (moved)", events[0].Title)

	require.NoError(t, s.Delete(ctx, created.ID))
	assert.ErrorIs(t, s.Delete(ctx, created.ID), models.ErrNotFound)

	_, err = s.Update(ctx, created)
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = s.Get(ctx, "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestStore_SeriesLifecycle(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	created, err := s.CreateBatch(ctx, []models.Event{daily("2025-11-24"), daily("2025-11-25"), daily("2025-11-26")})
	require.NoError(t, err)
	seriesID := created[0].Repeat.ID
	require.NotEmpty(t, seriesID)
	assert.Equal(t, seriesID, created[2].Repeat.ID)

	// no reference id: the earliest member anchors the offset
	date := "2025-11-27"
	updated, err := s.UpdateSeries(ctx, seriesID, models.SeriesPatch{Date: &date})
	require.NoError(t, err)
	require.Len(t, updated, 3)

	events, err := s.List(ctx)
	require.NoError(t, err)
	var dates []string
	for _, e := range events {
		dates = append(dates, e.Date)
	}
	assert.Equal(t, []string{"2025-11-27", "2025-11-28", "2025-11-29"}, dates)

	_, err = s.UpdateSeries(ctx, "unknown", models.SeriesPatch{Date: &date})
	assert.ErrorIs(t, err, models.ErrNotFound)

	require.NoError(t, s.DeleteSeries(ctx, seriesID))
	assert.ErrorIs(t, s.DeleteSeries(ctx, seriesID), models.ErrNotFound)

	events, err = s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestStore_Batches(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	created, err := s.CreateBatch(ctx, []models.Event{daily("2025-11-24"), daily("2025-11-25")})
	require.NoError(t, err)

	ghost := created[0]
	ghost.ID = "missing"
	created[1].Location = "Room 3"

	updated, err := s.UpdateBatch(ctx, []models.Event{ghost, created[1]})
	require.NoError(t, err)
	require.Len(t, updated, 1)
	assert.Equal(t, "Room 3", updated[0].Location)

	_, err = s.UpdateBatch(ctx, []models.Event{ghost})
	assert.ErrorIs(t, err, models.ErrNotFound)

	require.NoError(t, s.DeleteBatch(ctx, []string{created[0].ID, "missing"}))
	events, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, created[1].ID, events[0].ID)
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calendar.db")
	s, err := Open(Config{Path: path})
	require.NoError(t, err)
	_, err = s.Create(context.Background(), daily("2025-11-24"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(Config{Path: path})
	require.NoError(t, err)
	defer s.Close()
	events, err := s.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestStore_BacksService(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	svc := service.New(s)
	require.NoError(t, svc.Reload(ctx))

	e := daily("2025-11-24")
	created, err := svc.Create(ctx, e, service.Options{})
	require.NoError(t, err)
	require.Len(t, created, 5)

	_, err = svc.Move(ctx, created[2].ID, "2025-11-27", service.Options{Scope: service.ScopeSeries})
	require.NoError(t, err)

	events := svc.Events()
	require.Len(t, events, 5)
	assert.Equal(t, "2025-11-25", events[0].Date)
	assert.Equal(t, "2025-11-29", events[4].Date)

	require.NoError(t, svc.Delete(ctx, created[0].ID, service.Options{Scope: service.ScopeSeries}))
	assert.Empty(t, svc.Events())
}
