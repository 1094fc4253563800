package planning

import "math"

// Default planner constants
const (
	DefaultCalorieTolerance     = 0.10
	DefaultCalorieMatchWeight   = 0.7
	DefaultEfficiencyWeight     = 0.3
	DefaultEfficiencyNormalizer = 50.0
	DefaultMinCalorieScale      = 100.0
	DefaultStrategyWeight       = 0.2
	// DefaultMealTypeWeight applies when slot allocation is switched on
	DefaultMealTypeWeight = 0.1
)

// Config tunes the plan generator.
// CalorieTolerance is overridable via the plan_calorie_tolerance setting.
type Config struct {
	// CalorieTolerance is the allowed relative deviation from the calorie target
	CalorieTolerance float64
	// CalorieMatchWeight weighs closeness to the per-meal calorie need
	CalorieMatchWeight float64
	// EfficiencyWeight weighs calorie efficiency
	EfficiencyWeight float64
	// EfficiencyNormalizer is the calorie efficiency (kcal per currency unit) that scores 1.0
	EfficiencyNormalizer float64
	// MinCalorieScale is the smallest denominator used for the calorie-match score
	MinCalorieScale float64
	// StrategyWeight weighs the bias of the requested strategy
	StrategyWeight float64
	// SlotShares splits the calorie target by meal slot instead of evenly
	SlotShares bool
	// MealTypeWeight rewards foods whose meal type suits the slot; 0 ignores meal types
	MealTypeWeight float64
}

// DefaultConfig returns the standard planner constants
func DefaultConfig() Config {
	return Config{
		CalorieTolerance:     DefaultCalorieTolerance,
		CalorieMatchWeight:   DefaultCalorieMatchWeight,
		EfficiencyWeight:     DefaultEfficiencyWeight,
		EfficiencyNormalizer: DefaultEfficiencyNormalizer,
		MinCalorieScale:      DefaultMinCalorieScale,
		StrategyWeight:       DefaultStrategyWeight,
	}
}

func (c Config) normalized() Config {
	d := DefaultConfig()
	if !(c.CalorieTolerance > 0 && c.CalorieTolerance < 1) {
		c.CalorieTolerance = d.CalorieTolerance
	}
	if !(c.CalorieMatchWeight >= 0) || !(c.EfficiencyWeight >= 0) || c.CalorieMatchWeight+c.EfficiencyWeight == 0 {
		c.CalorieMatchWeight = d.CalorieMatchWeight
		c.EfficiencyWeight = d.EfficiencyWeight
	}
	if !(c.EfficiencyNormalizer > 0) {
		c.EfficiencyNormalizer = d.EfficiencyNormalizer
	}
	if !(c.MinCalorieScale > 0) {
		c.MinCalorieScale = d.MinCalorieScale
	}
	if !(c.StrategyWeight > 0) || math.IsInf(c.StrategyWeight, 0) {
		c.StrategyWeight = d.StrategyWeight
	}
	if !(c.MealTypeWeight >= 0) || math.IsInf(c.MealTypeWeight, 0) {
		c.MealTypeWeight = 0
	}
	return c
}
