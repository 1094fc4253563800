package targets

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBMR(t *testing.T) {
	male := Profile{Gender: "M", Age: 30, HeightCm: 180, WeightKg: 80}
	// 800 + 1125 - 150 + 5
	assert.InDelta(t, 1780.0, BMR(male), 1e-9)

	female := Profile{Gender: "F", Age: 30, HeightCm: 165, WeightKg: 60}
	// 600 + 1031.25 - 150 - 161
	assert.InDelta(t, 1320.25, BMR(female), 1e-9)

	lean := Profile{Gender: "M", Age: 30, HeightCm: 180, WeightKg: 80, BodyFatPct: 20}
	// 370 + 21.6 * 64
	assert.InDelta(t, 1752.4, BMR(lean), 1e-9)
}

func TestActivityMultiplier(t *testing.T) {
	tests := map[string]float64{
		"Sedentary":         1.2,
		"Light":             1.375,
		"Lightly Active":    1.375,
		"moderate":          1.55,
		"Moderately Active": 1.55,
		"Active":            1.725,
		"Very Active":       1.725,
		"Extremely Active":  1.9,
		"couch":             1.2,
		"":                  1.2,
	}
	for level, expected := range tests {
		assert.Equal(t, expected, ActivityMultiplier(level), level)
	}
}

func TestCalorieGoal(t *testing.T) {
	assert.Equal(t, 1500, CalorieGoal(2000, 80, 70))
	assert.Equal(t, 2500, CalorieGoal(2000, 60, 70))
	assert.Equal(t, 2000, CalorieGoal(2000.9, 70, 70))
}

func TestIdealWeight(t *testing.T) {
	assert.InDelta(t, 71.3, IdealWeight(180), 1e-9)
}

func TestCompute(t *testing.T) {
	p := DefaultProfile()
	p.City = "Alexandria"
	p.GoalWeightKg = 65

	tg := Compute(p)
	// BMR 700 + 1062.5 - 100 + 5 = 1667.5; TDEE * 1.2 = 2001
	assert.InDelta(t, 1667.5, tg.BMR, 1e-9)
	assert.InDelta(t, 2001.0, tg.TDEE, 1e-9)
	assert.Equal(t, 1501, tg.CalorieGoal)
	assert.Equal(t, CategoryMajorCity, tg.LocationCategory)
	assert.Equal(t, 0.95, tg.LocationMultiplier)
	assert.Equal(t, DefaultDailyBudget, tg.DailyBudget)
	assert.Equal(t, DefaultMealCount, tg.MealsPerDay)

	p.CalorieGoal = 1800
	assert.Equal(t, 1800, Compute(p).CalorieGoal)

	p.City = ""
	p.LocationCategory = "moon"
	assert.Equal(t, CategoryMetro, Compute(p).LocationCategory)
}

func TestLocation(t *testing.T) {
	assert.Equal(t, CategoryProvincial, CityCategory("  Luxor "))
	assert.Equal(t, CategoryMetro, CityCategory("Atlantis"))
	assert.Equal(t, 0.70, LocationMultiplier(CategoryRural))
	assert.Equal(t, 1.0, LocationMultiplier("unknown"))
	assert.Len(t, Categories(), 5)
}

func TestClamps(t *testing.T) {
	assert.Equal(t, MinCalories, ClampCalories(100))
	assert.Equal(t, MaxCalories, ClampCalories(9000))
	assert.Equal(t, 2200, ClampCalories(2200))
	assert.Equal(t, MinBudget, ClampBudget(0.2))
	assert.Equal(t, 1, ClampMeals(0))
	assert.Equal(t, 6, ClampMeals(9))
}
