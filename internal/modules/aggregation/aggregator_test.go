package aggregation

import (
	"testing"
	"time"

	"github.com/aristath/nutriplan/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const day = "2026-03-14"

func testSnapshot() *domain.Snapshot {
	return domain.NewSnapshot([]domain.FoodItem{
		{ID: "koshary", Name: "Koshary", ReferenceWeightG: 300, Calories: 450, ProteinG: 12, CarbsG: 80, FatG: 8, Price: 25, Source: domain.SourceCatalog},
		{ID: "foul", Name: "Foul", ReferenceWeightG: 250, Calories: 300, ProteinG: 18, CarbsG: 40, FatG: 6, FiberG: 9, Price: 10, Source: domain.SourceCatalog},
		{ID: "shake", Name: "Protein Shake", ReferenceWeightG: 330, Calories: 200, ProteinG: 30, Price: 15, Source: domain.SourceCustom},
	})
}

func testEntries() []domain.LoggedEntry {
	base := time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)
	return []domain.LoggedEntry{
		{ID: "e1", Date: day, FoodID: "foul", Source: domain.SourceCatalog, Quantity: 250, Unit: domain.UnitGrams, PrepStyle: domain.PrepStandard, CreatedAt: base},
		{ID: "e2", Date: day, FoodID: "koshary", Source: domain.SourceCatalog, Quantity: 2, Unit: domain.UnitServings, PrepStyle: domain.PrepHeavy, CreatedAt: base.Add(4 * time.Hour)},
		{ID: "e3", Date: day, FoodID: "shake", Source: domain.SourceCustom, Quantity: 1, Unit: domain.UnitServings, PrepStyle: domain.PrepLight, CreatedAt: base.Add(9 * time.Hour)},
	}
}

func TestAggregate(t *testing.T) {
	goals := domain.Goals{Calories: 2000, Budget: 100}
	record, err := Aggregate(day, testEntries(), testSnapshot(), domain.DayStandard, goals)
	require.NoError(t, err)

	// 300 + 900*1.3 + 200*0.85
	assert.InDelta(t, 300+1170+170, record.Totals.Calories, 1e-9)
	// price is never modified by prep style: 10 + 50 + 15
	assert.InDelta(t, 75.0, record.Totals.Spend, 1e-9)
	assert.Equal(t, 3, record.EntryCount)
	assert.Equal(t, domain.DayStandard, record.Status)
	assert.InDelta(t, 360.0, record.Goals.CaloriesRemaining, 1e-9)
	assert.InDelta(t, 25.0, record.Goals.BudgetRemaining, 1e-9)
	assert.False(t, record.Goals.OverCalories)
	assert.False(t, record.Goals.OverBudget)
}

func TestAggregate_Empty(t *testing.T) {
	record, err := Aggregate(day, nil, testSnapshot(), "", domain.Goals{Calories: 1800, Budget: 50})
	require.NoError(t, err)
	assert.Equal(t, domain.Totals{}, record.Totals)
	assert.Equal(t, domain.DayStandard, record.Status)
	assert.Equal(t, 1800.0, record.Goals.CaloriesRemaining)
}

func TestAggregate_Idempotent(t *testing.T) {
	entries := testEntries()
	first, err := Aggregate(day, entries, testSnapshot(), domain.DayStandard, domain.Goals{})
	require.NoError(t, err)

	reversed := []domain.LoggedEntry{entries[2], entries[0], entries[1]}
	second, err := Aggregate(day, reversed, testSnapshot(), domain.DayStandard, domain.Goals{})
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestAggregate_MonotonicUnderRemoval(t *testing.T) {
	entries := testEntries()
	full, err := Aggregate(day, entries, testSnapshot(), domain.DayStandard, domain.Goals{})
	require.NoError(t, err)

	for i := range entries {
		rest := append(append([]domain.LoggedEntry{}, entries[:i]...), entries[i+1:]...)
		partial, err := Aggregate(day, rest, testSnapshot(), domain.DayStandard, domain.Goals{})
		require.NoError(t, err)

		assert.Less(t, partial.Totals.Calories, full.Totals.Calories)
		assert.LessOrEqual(t, partial.Totals.ProteinG, full.Totals.ProteinG)
		assert.Less(t, partial.Totals.Spend, full.Totals.Spend)
	}
}

func TestAggregate_Errors(t *testing.T) {
	t.Run("unknown food", func(t *testing.T) {
		entries := []domain.LoggedEntry{{ID: "x", Date: day, FoodID: "ghost", Source: domain.SourceCatalog, Quantity: 100, Unit: domain.UnitGrams}}
		_, err := Aggregate(day, entries, testSnapshot(), domain.DayStandard, domain.Goals{})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("source mismatch", func(t *testing.T) {
		entries := []domain.LoggedEntry{{ID: "x", Date: day, FoodID: "shake", Source: domain.SourceCatalog, Quantity: 1, Unit: domain.UnitServings}}
		_, err := Aggregate(day, entries, testSnapshot(), domain.DayStandard, domain.Goals{})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("non-positive quantity", func(t *testing.T) {
		entries := []domain.LoggedEntry{{ID: "x", Date: day, FoodID: "foul", Source: domain.SourceCatalog, Quantity: 0, Unit: domain.UnitGrams}}
		_, err := Aggregate(day, entries, testSnapshot(), domain.DayStandard, domain.Goals{})
		var servingErr *domain.InvalidServingError
		assert.ErrorAs(t, err, &servingErr)
	})

	t.Run("wrong date", func(t *testing.T) {
		entries := testEntries()
		entries[1].Date = "2026-03-15"
		_, err := Aggregate(day, entries, testSnapshot(), domain.DayStandard, domain.Goals{})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestCheatDayNonDestructive(t *testing.T) {
	goals := domain.Goals{Calories: 1000, Budget: 40}

	standard, err := Aggregate(day, testEntries(), testSnapshot(), domain.DayStandard, goals)
	require.NoError(t, err)
	assert.True(t, standard.Goals.OverCalories)
	assert.True(t, standard.Goals.OverBudget)

	cheat := ToggleStatus(standard, goals)
	assert.Equal(t, domain.DayCheat, cheat.Status)
	assert.Equal(t, standard.Totals, cheat.Totals)
	assert.True(t, cheat.Goals.Suppressed)
	assert.False(t, cheat.Goals.OverCalories)
	assert.False(t, cheat.Goals.OverBudget)

	back := ToggleStatus(cheat, goals)
	assert.Equal(t, standard, back)

	direct, err := Aggregate(day, testEntries(), testSnapshot(), domain.DayCheat, goals)
	require.NoError(t, err)
	assert.Equal(t, cheat, direct)
}

func TestCompareGoals_ZeroGoalsNeverOver(t *testing.T) {
	cmp := CompareGoals(domain.Totals{Calories: 5000, Spend: 500}, domain.DayStandard, domain.Goals{})
	assert.False(t, cmp.OverCalories)
	assert.False(t, cmp.OverBudget)
	assert.Equal(t, 0.0, cmp.CaloriesRemaining)
}

func TestAggregate_LoggedNutritionIgnoresCatalog(t *testing.T) {
	snap := testSnapshot()
	var frozen []domain.LoggedEntry
	for _, e := range testEntries() {
		f, err := Freeze(e, snap)
		require.NoError(t, err)
		require.NotNil(t, f.Nutrition)
		frozen = append(frozen, f)
	}
	assert.Equal(t, "Foul", frozen[0].FoodName)

	goals := domain.Goals{Calories: 2000, Budget: 100}
	want, err := Aggregate(day, testEntries(), snap, domain.DayStandard, goals)
	require.NoError(t, err)

	// Repricing, emptying or dropping the catalog changes nothing for logged entries
	repriced := domain.NewSnapshot([]domain.FoodItem{
		{ID: "foul", Name: "Foul", ReferenceWeightG: 250, Calories: 300, Price: 40, Source: domain.SourceCatalog},
	})
	for _, lookup := range []domain.FoodLookup{snap, repriced, domain.NewSnapshot(nil), nil} {
		got, err := Aggregate(day, frozen, lookup, domain.DayStandard, goals)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestFreeze_UnknownFood(t *testing.T) {
	_, err := Freeze(domain.LoggedEntry{ID: "x", Date: day, FoodID: "ghost", Source: domain.SourceCatalog, Quantity: 100, Unit: domain.UnitGrams}, testSnapshot())
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = Resolve(domain.LoggedEntry{ID: "x", Date: day, FoodID: "foul", Source: domain.SourceCatalog, Quantity: 100, Unit: domain.UnitGrams}, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
}
