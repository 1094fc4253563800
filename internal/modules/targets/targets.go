// Package targets derives daily calorie and budget targets from the user profile.
package targets

import (
	"math"
	"strings"
)

// Request clamps applied before planning
const (
	MinCalories  = 500
	MaxCalories  = 5000
	MinBudget    = 1.0
	MinMealCount = 1
	MaxMealCount = 6

	// CalorieAdjustment is added to or removed from TDEE when moving towards a goal weight
	CalorieAdjustment = 500.0
	// IdealBMI is the BMI used for the ideal-weight estimate
	IdealBMI = 22.0

	DefaultDailyBudget = 50.0
	DefaultMealCount   = 3
)

// Profile holds the body and preference data targets are computed from
type Profile struct {
	Gender           string  `json:"gender"` // M or F
	ActivityLevel    string  `json:"activity_level"`
	City             string  `json:"city"`
	LocationCategory string  `json:"location_category"`
	Age              int     `json:"age"`
	HeightCm         float64 `json:"height_cm"`
	WeightKg         float64 `json:"weight_kg"`
	GoalWeightKg     float64 `json:"goal_weight_kg"`
	BodyFatPct       float64 `json:"body_fat_pct"` // 0 when unknown
	DailyBudget      float64 `json:"daily_budget"`
	CalorieGoal      int     `json:"calorie_goal"` // explicit override, 0 to derive
	MealsPerDay      int     `json:"meals_per_day"`
}

// DefaultProfile mirrors the defaults a new user starts with
func DefaultProfile() Profile {
	return Profile{
		Gender:           "M",
		ActivityLevel:    "Sedentary",
		LocationCategory: CategoryMetro,
		Age:              20,
		HeightCm:         170,
		WeightKg:         70,
		GoalWeightKg:     70,
		DailyBudget:      DefaultDailyBudget,
		MealsPerDay:      DefaultMealCount,
	}
}

// Targets are the derived daily targets
type Targets struct {
	LocationCategory   string  `json:"location_category"`
	BMR                float64 `json:"bmr"`
	TDEE               float64 `json:"tdee"`
	IdealWeightKg      float64 `json:"ideal_weight_kg"`
	LocationMultiplier float64 `json:"location_multiplier"`
	DailyBudget        float64 `json:"daily_budget"`
	CalorieGoal        int     `json:"calorie_goal"`
	MealsPerDay        int     `json:"meals_per_day"`
}

var activityMultipliers = map[string]float64{
	"sedentary":         1.2,
	"light":             1.375,
	"lightly active":    1.375,
	"moderate":          1.55,
	"moderately active": 1.55,
	"active":            1.725,
	"very active":       1.725,
	"extremely active":  1.9,
}

// BMR returns the basal metabolic rate in kcal/day.
// Katch-McArdle is used when body fat is known, Mifflin-St Jeor otherwise.
func BMR(p Profile) float64 {
	if p.BodyFatPct > 0 && p.BodyFatPct < 100 {
		leanMass := p.WeightKg * (1 - p.BodyFatPct/100)
		return 370 + 21.6*leanMass
	}
	base := 10*p.WeightKg + 6.25*p.HeightCm - 5*float64(p.Age)
	if strings.EqualFold(p.Gender, "F") {
		return base - 161
	}
	return base + 5
}

// ActivityMultiplier returns the TDEE multiplier for an activity level; unknown levels count as sedentary
func ActivityMultiplier(level string) float64 {
	if m, ok := activityMultipliers[strings.ToLower(strings.TrimSpace(level))]; ok {
		return m
	}
	return 1.2
}

// TDEE applies the activity multiplier to bmr
func TDEE(bmr float64, activityLevel string) float64 {
	return bmr * ActivityMultiplier(activityLevel)
}

// CalorieGoal moves TDEE 500 kcal towards the goal weight, truncated to whole kcal
func CalorieGoal(tdee, currentKg, goalKg float64) int {
	switch {
	case goalKg > 0 && goalKg < currentKg:
		return int(tdee - CalorieAdjustment)
	case goalKg > currentKg:
		return int(tdee + CalorieAdjustment)
	default:
		return int(tdee)
	}
}

// IdealWeight returns the weight at BMI 22 for a height in cm
func IdealWeight(heightCm float64) float64 {
	m := heightCm / 100
	return math.Round(IdealBMI*m*m*10) / 10
}

// Compute derives all targets for a profile
func Compute(p Profile) Targets {
	bmr := BMR(p)
	tdee := TDEE(bmr, p.ActivityLevel)

	goal := p.CalorieGoal
	if goal <= 0 {
		goal = CalorieGoal(tdee, p.WeightKg, p.GoalWeightKg)
	}

	category := p.LocationCategory
	if p.City != "" {
		category = CityCategory(p.City)
	}
	if _, ok := locationMultipliers[category]; !ok {
		category = CategoryMetro
	}

	budget := p.DailyBudget
	if budget <= 0 {
		budget = DefaultDailyBudget
	}
	meals := p.MealsPerDay
	if meals <= 0 {
		meals = DefaultMealCount
	}

	return Targets{
		BMR:                bmr,
		TDEE:               tdee,
		CalorieGoal:        goal,
		IdealWeightKg:      IdealWeight(p.HeightCm),
		LocationCategory:   category,
		LocationMultiplier: LocationMultiplier(category),
		DailyBudget:        budget,
		MealsPerDay:        meals,
	}
}

// ClampCalories bounds a calorie target to [MinCalories, MaxCalories]
func ClampCalories(kcal int) int {
	return min(max(kcal, MinCalories), MaxCalories)
}

// ClampBudget raises a budget to at least MinBudget
func ClampBudget(budget float64) float64 {
	return math.Max(budget, MinBudget)
}

// ClampMeals bounds a meal count to [MinMealCount, MaxMealCount]
func ClampMeals(n int) int {
	return min(max(n, MinMealCount), MaxMealCount)
}
