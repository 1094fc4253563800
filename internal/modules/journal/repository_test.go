package journal

import (
	"context"
	"testing"
	"time"

	"github.com/aristath/nutriplan/internal/database"
	"github.com/aristath/nutriplan/internal/domain"
	testingutil "github.com/aristath/nutriplan/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJournalDB(t *testing.T) *database.DB {
	db, cleanup := testingutil.NewTestDB(t, database.NameJournal)
	t.Cleanup(cleanup)
	return db
}

func newCacheDB(t *testing.T) *database.DB {
	db, cleanup := testingutil.NewTestDB(t, database.NameCache)
	t.Cleanup(cleanup)
	return db
}

func entry(date, foodID string, qty float64, unit domain.QuantityUnit) domain.LoggedEntry {
	return domain.LoggedEntry{
		Date:      date,
		FoodID:    foodID,
		Source:    domain.SourceCatalog,
		Quantity:  qty,
		Unit:      unit,
		PrepStyle: domain.PrepStandard,
	}
}

func TestEntryRepository_CreateAndList(t *testing.T) {
	repo := NewEntryRepository(newJournalDB(t).Conn(), zerolog.Nop())
	ctx := context.Background()

	first, err := repo.Create(ctx, entry("2026-03-14", "foul", 250, domain.UnitGrams))
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.False(t, first.CreatedAt.IsZero())

	second, err := repo.Create(ctx, entry("2026-03-14", "koshary", 1, domain.UnitServings))
	require.NoError(t, err)
	_, err = repo.Create(ctx, entry("2026-03-15", "foul", 100, domain.UnitGrams))
	require.NoError(t, err)

	day, err := repo.ListByDate(ctx, "2026-03-14")
	require.NoError(t, err)
	require.Len(t, day, 2)
	assert.Equal(t, first.ID, day[0].ID)
	assert.Equal(t, second.ID, day[1].ID)
	assert.Equal(t, domain.UnitServings, day[1].Unit)
	assert.True(t, first.CreatedAt.Equal(day[0].CreatedAt))

	rng, err := repo.ListRange(ctx, "2026-03-14", "2026-03-15")
	require.NoError(t, err)
	assert.Len(t, rng, 3)

	recent, err := repo.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "2026-03-15", recent[0].Date)
}

func TestEntryRepository_StoresLoggedNutrition(t *testing.T) {
	repo := NewEntryRepository(newJournalDB(t).Conn(), zerolog.Nop())
	ctx := context.Background()

	e := entry("2026-03-14", "foul", 250, domain.UnitGrams)
	e.FoodName = "Foul"
	e.Nutrition = &domain.ScaledNutrition{WeightG: 250, Calories: 300, ProteinG: 18, CarbsG: 40, FatG: 6, FiberG: 9, Price: 10}
	_, err := repo.Create(ctx, e)
	require.NoError(t, err)
	_, err = repo.Create(ctx, entry("2026-03-14", "koshary", 300, domain.UnitGrams))
	require.NoError(t, err)

	day, err := repo.ListByDate(ctx, "2026-03-14")
	require.NoError(t, err)
	require.Len(t, day, 2)
	assert.Equal(t, "Foul", day[0].FoodName)
	require.NotNil(t, day[0].Nutrition)
	assert.Equal(t, *e.Nutrition, *day[0].Nutrition)
	assert.Nil(t, day[1].Nutrition, "entries stored without nutrition read back without it")
}

func TestEntryRepository_CreateBatch(t *testing.T) {
	repo := NewEntryRepository(newJournalDB(t).Conn(), zerolog.Nop())
	ctx := context.Background()

	created, err := repo.CreateBatch(ctx, []domain.LoggedEntry{
		entry("2026-03-14", "foul", 250, domain.UnitGrams),
		entry("2026-03-14", "koshary", 300, domain.UnitGrams),
	})
	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.NotEqual(t, created[0].ID, created[1].ID)

	day, err := repo.ListByDate(ctx, "2026-03-14")
	require.NoError(t, err)
	require.Len(t, day, 2)
	assert.Equal(t, "foul", day[0].FoodID)

	// a failing row rolls back the whole batch
	bad := entry("2026-03-15", "foul", 100, domain.UnitGrams)
	bad.Unit = "cups"
	_, err = repo.CreateBatch(ctx, []domain.LoggedEntry{entry("2026-03-15", "koshary", 300, domain.UnitGrams), bad})
	require.Error(t, err)

	next, err := repo.ListByDate(ctx, "2026-03-15")
	require.NoError(t, err)
	assert.Empty(t, next)
}

func TestEntryRepository_DeleteIsSoft(t *testing.T) {
	repo := NewEntryRepository(newJournalDB(t).Conn(), zerolog.Nop())
	ctx := context.Background()

	e, err := repo.Create(ctx, entry("2026-03-14", "foul", 250, domain.UnitGrams))
	require.NoError(t, err)

	deleted, err := repo.Delete(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-14", deleted.Date)

	day, err := repo.ListByDate(ctx, "2026-03-14")
	require.NoError(t, err)
	assert.Empty(t, day)

	_, err = repo.Delete(ctx, e.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = repo.Get(ctx, e.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEntryRepository_Amend(t *testing.T) {
	repo := NewEntryRepository(newJournalDB(t).Conn(), zerolog.Nop())
	ctx := context.Background()

	e, err := repo.Create(ctx, entry("2026-03-14", "foul", 250, domain.UnitGrams))
	require.NoError(t, err)

	old, amended, err := repo.Amend(ctx, e.ID, entry("2026-03-14", "foul", 400, domain.UnitGrams))
	require.NoError(t, err)
	assert.Equal(t, e.ID, old.ID)
	assert.Equal(t, e.ID, amended.Supersedes)
	assert.NotEqual(t, e.ID, amended.ID)

	day, err := repo.ListByDate(ctx, "2026-03-14")
	require.NoError(t, err)
	require.Len(t, day, 1)
	assert.Equal(t, 400.0, day[0].Quantity)
	assert.Equal(t, e.ID, day[0].Supersedes)

	_, _, err = repo.Amend(ctx, "missing", entry("2026-03-14", "foul", 1, domain.UnitGrams))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDayStatusRepository(t *testing.T) {
	repo := NewDayStatusRepository(newJournalDB(t).Conn(), zerolog.Nop())
	ctx := context.Background()

	status, err := repo.Get(ctx, "2026-03-14")
	require.NoError(t, err)
	assert.Equal(t, domain.DayStandard, status)

	require.NoError(t, repo.Set(ctx, "2026-03-14", domain.DayCheat))
	status, err = repo.Get(ctx, "2026-03-14")
	require.NoError(t, err)
	assert.Equal(t, domain.DayCheat, status)

	assert.ErrorIs(t, repo.Set(ctx, "2026-03-14", "feast"), domain.ErrValidation)

	statuses, err := repo.Range(ctx, "2026-03-01", "2026-03-31")
	require.NoError(t, err)
	assert.Equal(t, map[string]domain.DayStatus{"2026-03-14": domain.DayCheat}, statuses)
}

func TestDayCache(t *testing.T) {
	cache := NewDayCache(newCacheDB(t).Conn(), zerolog.Nop())
	ctx := context.Background()

	record := domain.DayRecord{
		Date:       "2026-03-14",
		Status:     domain.DayCheat,
		Totals:     domain.Totals{Calories: 750, ProteinG: 27, Spend: 35},
		Goals:      domain.GoalComparison{CalorieGoal: 2000, Suppressed: true},
		EntryCount: 2,
	}
	require.NoError(t, cache.Store(ctx, record, 3, time.Hour))

	got, err := cache.GetIfFresh(ctx, "2026-03-14", 3)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, record, *got)

	// Another catalog version misses
	got, err = cache.GetIfFresh(ctx, "2026-03-14", 4)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, cache.Invalidate(ctx, "2026-03-14"))
	got, err = cache.GetIfFresh(ctx, "2026-03-14", 3)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDayCache_DeleteExpired(t *testing.T) {
	cache := NewDayCache(newCacheDB(t).Conn(), zerolog.Nop())
	ctx := context.Background()

	require.NoError(t, cache.Store(ctx, domain.DayRecord{Date: "2026-03-01"}, 5, -time.Hour))
	require.NoError(t, cache.Store(ctx, domain.DayRecord{Date: "2026-03-02"}, 4, time.Hour))
	require.NoError(t, cache.Store(ctx, domain.DayRecord{Date: "2026-03-03"}, 5, time.Hour))

	deleted, err := cache.DeleteExpired(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	got, err := cache.GetIfFresh(ctx, "2026-03-03", 5)
	require.NoError(t, err)
	assert.NotNil(t, got)
}
