package scoring

import (
	"fmt"
	"sort"
	"testing"

	"github.com/aristath/nutriplan/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scenarioFoods() []domain.FoodItem {
	return []domain.FoodItem{
		{ID: "koshary", Name: "Koshary", ReferenceWeightG: 300, Calories: 450, ProteinG: 12, Price: 25, Source: domain.SourceCatalog},
		{ID: "foul", Name: "Foul", ReferenceWeightG: 250, Calories: 300, ProteinG: 18, Price: 10, Source: domain.SourceCatalog},
	}
}

func TestScoreCatalog_Scenario(t *testing.T) {
	result := ScoreCatalog(scenarioFoods(), DefaultConfig())
	require.Len(t, result.Foods, 2)
	assert.Empty(t, result.Warnings)

	koshary, foul := result.Foods[0], result.Foods[1]

	assert.InDelta(t, 18.0, koshary.CalorieEfficiency, 1e-9)
	assert.InDelta(t, 30.0, foul.CalorieEfficiency, 1e-9)
	assert.InDelta(t, 1.8, foul.ProteinEfficiency, 1e-9)

	assert.Equal(t, 1, foul.Rank)
	assert.Equal(t, 2, koshary.Rank)

	// Foul is 24% protein, Koshary under 11%: neither clears 30%
	assert.False(t, foul.HasBadge(domain.BadgeHighProtein))
	assert.False(t, koshary.HasBadge(domain.BadgeHighProtein))

	assert.True(t, foul.HasBadge(domain.BadgeBestValue))
	assert.False(t, koshary.HasBadge(domain.BadgeBestValue))
}

func TestScoreCatalog_UndefinedEfficiency(t *testing.T) {
	foods := append(scenarioFoods(), domain.FoodItem{
		ID: "free-bread", Name: "Free Bread", ReferenceWeightG: 100, Calories: 250, ProteinG: 40, Price: 0,
	})

	result := ScoreCatalog(foods, DefaultConfig())
	require.Len(t, result.Foods, 3)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, "free-bread", result.Warnings[0].FoodID)

	free := result.Foods[2]
	assert.False(t, free.EfficiencyDefined)
	assert.Equal(t, 0, free.Rank)
	assert.Empty(t, free.Badges)

	ranked := Ranked(result)
	require.Len(t, ranked, 2)
	assert.Equal(t, "foul", ranked[0].Food.ID)
	assert.Equal(t, "koshary", ranked[1].Food.ID)
}

func TestScoreCatalog_HighProtein(t *testing.T) {
	foods := []domain.FoodItem{
		{ID: "chicken", Name: "Chicken", ReferenceWeightG: 100, Calories: 165, ProteinG: 31, Price: 20},
		{ID: "rice", Name: "Rice", ReferenceWeightG: 100, Calories: 130, ProteinG: 2.7, Price: 3},
		{ID: "broth", Name: "Broth", ReferenceWeightG: 100, Calories: 0, ProteinG: 1, Price: 2},
	}

	result := ScoreCatalog(foods, DefaultConfig())
	assert.True(t, result.Foods[0].HasBadge(domain.BadgeHighProtein))
	assert.False(t, result.Foods[1].HasBadge(domain.BadgeHighProtein))
	assert.False(t, result.Foods[2].HasBadge(domain.BadgeHighProtein))

	// HighProtein does not depend on the rest of the catalog
	alone := ScoreCatalog(foods[:1], DefaultConfig())
	assert.True(t, alone.Foods[0].HasBadge(domain.BadgeHighProtein))
}

func TestScoreCatalog_Deterministic(t *testing.T) {
	foods := generatedCatalog(40)

	first := ScoreCatalog(foods, DefaultConfig())
	for i := 0; i < 5; i++ {
		again := ScoreCatalog(foods, DefaultConfig())
		assert.Equal(t, first, again)
	}
}

func TestScoreCatalog_BestValueQuartile(t *testing.T) {
	for _, n := range []int{1, 2, 3, 4, 5, 8, 13, 40} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			result := ScoreCatalog(generatedCatalog(n), DefaultConfig())

			efficiencies := make([]float64, 0, n)
			for _, sf := range result.Foods {
				efficiencies = append(efficiencies, sf.CalorieEfficiency)
			}
			sort.Float64s(efficiencies)

			for _, sf := range result.Foods {
				if !sf.HasBadge(domain.BadgeBestValue) {
					continue
				}
				below := 0
				for _, e := range efficiencies {
					if e <= sf.CalorieEfficiency {
						below++
					}
				}
				assert.GreaterOrEqual(t, float64(below), 0.75*float64(n),
					"%s badged BestValue below the 75th percentile", sf.Food.ID)
			}

			// the most efficient food always earns the badge
			top := Ranked(result)[0]
			assert.True(t, top.HasBadge(domain.BadgeBestValue))
		})
	}
}

func TestScoreCatalog_TieBreaks(t *testing.T) {
	foods := []domain.FoodItem{
		{ID: "b", Name: "Beans", ReferenceWeightG: 100, Calories: 200, Price: 10},
		{ID: "a", Name: "Beans", ReferenceWeightG: 100, Calories: 200, Price: 10},
		{ID: "c", Name: "Apples", ReferenceWeightG: 100, Calories: 200, Price: 10},
		{ID: "d", Name: "Dates", ReferenceWeightG: 100, Calories: 100, Price: 5},
	}

	ranked := Ranked(ScoreCatalog(foods, DefaultConfig()))
	ids := []string{}
	for _, sf := range ranked {
		ids = append(ids, sf.Food.ID)
	}
	// all efficiencies are 20: cheaper first, then name, then id
	assert.Equal(t, []string{"d", "c", "a", "b"}, ids)
}

func TestConfigNormalized(t *testing.T) {
	cfg := Config{BestValuePercentile: 0, HighProteinRatio: -1}.normalized()
	assert.Equal(t, DefaultConfig(), cfg)

	custom := Config{BestValuePercentile: 0.5, HighProteinRatio: 0.2}
	assert.Equal(t, custom, custom.normalized())
}

func generatedCatalog(n int) []domain.FoodItem {
	foods := make([]domain.FoodItem, n)
	for i := 0; i < n; i++ {
		foods[i] = domain.FoodItem{
			ID:               fmt.Sprintf("food-%02d", i),
			Name:             fmt.Sprintf("Food %02d", i),
			ReferenceWeightG: 100,
			Calories:         float64(100 + (i*37)%400),
			ProteinG:         float64(5 + (i*11)%30),
			Price:            float64(5 + (i*7)%20),
		}
	}
	return foods
}
