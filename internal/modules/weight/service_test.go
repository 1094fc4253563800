package weight

import (
	"context"
	"errors"
	"testing"

	"github.com/aristath/nutriplan/internal/database"
	"github.com/aristath/nutriplan/internal/domain"
	"github.com/aristath/nutriplan/internal/events"
	testingutil "github.com/aristath/nutriplan/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, *testingutil.MockSettings, *events.Bus) {
	db, cleanup := testingutil.NewTestDB(t, database.NameJournal)
	t.Cleanup(cleanup)

	log := zerolog.New(nil).Level(zerolog.Disabled)
	settings := testingutil.NewMockSettings()
	bus := events.NewBus(log)
	s := NewService(NewRepository(db.Conn(), log), settings, events.NewManager(bus, log), log)
	s.today = func() string { return "2026-03-14" }
	return s, settings, bus
}

func TestService_LogValidation(t *testing.T) {
	s, _, _ := newTestService(t)

	tests := []struct {
		name string
		in   Input
	}{
		{"too light", Input{Date: "2026-03-14", WeightKg: 10}},
		{"too heavy", Input{Date: "2026-03-14", WeightKg: 450}},
		{"bad date", Input{Date: "14-03-2026", WeightKg: 70}},
		{"future date", Input{Date: "2026-03-15", WeightKg: 70}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Log(context.Background(), tt.in)
			assert.True(t, errors.Is(err, domain.ErrValidation))
		})
	}
}

func TestService_LogUpdatesProfile(t *testing.T) {
	s, settings, bus := newTestService(t)
	ctx := context.Background()

	var logged []*events.WeightLoggedData
	bus.Subscribe(events.WeightLogged, func(e *events.Event) {
		logged = append(logged, e.GetTypedData().(*events.WeightLoggedData))
	})

	_, err := s.Log(ctx, Input{WeightKg: 72.5})
	require.NoError(t, err)
	assert.Equal(t, 72.5, settings.Float("profile_weight_kg"))

	_, err = s.Log(ctx, Input{Date: "2026-03-10", WeightKg: 74})
	require.NoError(t, err)
	assert.Equal(t, 72.5, settings.Float("profile_weight_kg"), "older entries leave the profile alone")

	_, err = s.Log(ctx, Input{Date: "2026-03-14", WeightKg: 72})
	require.NoError(t, err)
	assert.Equal(t, 72.0, settings.Float("profile_weight_kg"), "last write wins")

	require.Len(t, logged, 3)
	assert.Equal(t, "2026-03-14", logged[0].Date)
}

func TestService_History(t *testing.T) {
	s, settings, _ := newTestService(t)
	ctx := context.Background()
	settings.SetFloat("weight_trend_window", 3)

	for _, in := range []Input{
		{Date: "2026-03-10", WeightKg: 75},
		{Date: "2026-03-11", WeightKg: 74.6},
		{Date: "2026-03-12", WeightKg: 74.4},
		{Date: "2026-03-13", WeightKg: 74.2},
		{Date: "2025-01-01", WeightKg: 80},
	} {
		_, err := s.Log(ctx, in)
		require.NoError(t, err)
	}

	history, err := s.History(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-08", history.Start)
	assert.Equal(t, "2026-03-14", history.End)
	require.Len(t, history.Entries, 4)
	assert.Equal(t, "2026-03-10", history.Entries[0].Date)

	assert.Equal(t, 3, history.Trend.Window)
	require.NotNil(t, history.Trend.SMA)
	assert.InDelta(t, 74.4, *history.Trend.SMA, 1e-9)
	assert.InDelta(t, -0.8, history.Trend.Change, 1e-9)
	assert.Equal(t, DirectionLosing, history.Trend.Direction)

	all, err := s.History(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all.Entries, 4, "default window is 90 days")

	_, err = s.History(ctx, MaxHistoryDays+1)
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestService_Delete(t *testing.T) {
	s, settings, _ := newTestService(t)
	ctx := context.Background()

	_, err := s.Log(ctx, Input{Date: "2026-03-12", WeightKg: 71})
	require.NoError(t, err)
	_, err = s.Log(ctx, Input{Date: "2026-03-13", WeightKg: 70})
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, "2026-03-13"))
	assert.Equal(t, 71.0, settings.Float("profile_weight_kg"))

	err = s.Delete(ctx, "2026-03-13")
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	require.NoError(t, s.Delete(ctx, "2026-03-12"))
	err = s.Delete(ctx, "yesterday")
	assert.True(t, errors.Is(err, domain.ErrValidation))
}
