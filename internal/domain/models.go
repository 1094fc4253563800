// Package domain provides core domain models and types.
package domain

import (
	"fmt"
	"math"
	"time"
)

// Source identifies where a food in the catalog comes from
type Source string

const (
	// SourceCatalog is a market food ingested into the shared catalog
	SourceCatalog Source = "catalog"
	// SourceCustom is a user-created food
	SourceCustom Source = "custom"
	// SourceRecipe is a per-serving profile derived from a user recipe
	SourceRecipe Source = "recipe"
)

// IsUserCreated reports whether foods of this source are only plannable with include_custom
func (s Source) IsUserCreated() bool {
	return s == SourceCustom || s == SourceRecipe
}

// Valid reports whether s is a known source
func (s Source) Valid() bool {
	switch s {
	case SourceCatalog, SourceCustom, SourceRecipe:
		return true
	}
	return false
}

// FoodItem is a cataloged, priceable nutrition source.
// All nutrition figures and the price are recorded at ReferenceWeightG.
type FoodItem struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	ReferenceWeightG float64 `json:"reference_weight_g"`
	Calories         float64 `json:"calories"`
	ProteinG         float64 `json:"protein_g"`
	CarbsG           float64 `json:"carbs_g"`
	FatG             float64 `json:"fat_g"`
	FiberG           float64 `json:"fiber_g"`
	Price            float64 `json:"price"`
	Location         string  `json:"location,omitempty"`
	MealType         string  `json:"meal_type,omitempty"`
	Source           Source  `json:"source"`
}

// Validate checks the FoodItem invariants: non-negative nutrition and price,
// positive reference weight.
func (f FoodItem) Validate() error {
	if f.ID == "" {
		return NewValidationError("id", "food id is required")
	}
	if !(f.ReferenceWeightG > 0) || math.IsInf(f.ReferenceWeightG, 0) {
		return NewValidationError("reference_weight_g", fmt.Sprintf("reference weight must be positive, got %v", f.ReferenceWeightG))
	}
	fields := []struct {
		name  string
		value float64
	}{
		{"calories", f.Calories},
		{"protein_g", f.ProteinG},
		{"carbs_g", f.CarbsG},
		{"fat_g", f.FatG},
		{"fiber_g", f.FiberG},
		{"price", f.Price},
	}
	for _, field := range fields {
		if field.value < 0 || math.IsNaN(field.value) || math.IsInf(field.value, 0) {
			return NewValidationError(field.name, fmt.Sprintf("%s must be a non-negative number, got %v", field.name, field.value))
		}
	}
	if f.Source != "" && !f.Source.Valid() {
		return NewValidationError("source", fmt.Sprintf("unknown source %q", f.Source))
	}
	return nil
}

// ScaledNutrition is a FoodItem's profile scaled to a requested weight.
// It is computed on demand and never persisted.
type ScaledNutrition struct {
	WeightG  float64 `json:"weight_g"`
	Calories float64 `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
	FiberG   float64 `json:"fiber_g"`
	Price    float64 `json:"price"`
}

// Badge is a qualitative label assigned by the scorer
type Badge string

const (
	BadgeBestValue   Badge = "BestValue"
	BadgeHighProtein Badge = "HighProtein"
)

// ScoredFood is a FoodItem annotated with ranking data for one catalog snapshot
type ScoredFood struct {
	Food              FoodItem `json:"food"`
	CalorieEfficiency float64  `json:"calorie_efficiency"`
	ProteinEfficiency float64  `json:"protein_efficiency"`
	EfficiencyDefined bool     `json:"efficiency_defined"`
	Badges            []Badge  `json:"badges"`
	Rank              int      `json:"rank"` // 1-based among ranked foods, 0 when unranked
}

// HasBadge reports whether the food carries the given badge
func (s ScoredFood) HasBadge(b Badge) bool {
	for _, have := range s.Badges {
		if have == b {
			return true
		}
	}
	return false
}

// QuantityUnit says how a LoggedEntry's quantity is expressed
type QuantityUnit string

const (
	UnitGrams    QuantityUnit = "grams"
	UnitServings QuantityUnit = "servings"
)

// PrepStyle adjusts logged nutrition for how a dish was prepared
type PrepStyle string

const (
	PrepLight    PrepStyle = "LIGHT"
	PrepStandard PrepStyle = "STANDARD"
	PrepHeavy    PrepStyle = "HEAVY"
)

// Modifier returns the nutrition multiplier for the preparation style.
// Unknown styles behave like STANDARD.
func (p PrepStyle) Modifier() float64 {
	switch p {
	case PrepLight:
		return 0.85
	case PrepHeavy:
		return 1.3
	default:
		return 1.0
	}
}

// LoggedEntry is one instance of consuming a food or recipe on a date.
// Entries are never mutated; an amendment is a new entry that supersedes the old one.
//
// Nutrition is the contribution resolved when the entry was logged, with the
// prep modifier applied and the price paid at the time. Once set, later
// catalog edits, repricing or deletion never change what the entry adds to its day.
type LoggedEntry struct {
	CreatedAt  time.Time        `json:"created_at"`
	Nutrition  *ScaledNutrition `json:"nutrition,omitempty"`
	ID         string           `json:"id"`
	Date       string           `json:"date"` // YYYY-MM-DD
	FoodID     string           `json:"food_id"`
	FoodName   string           `json:"food_name,omitempty"`
	Source     Source           `json:"source"`
	Unit       QuantityUnit     `json:"unit"`
	PrepStyle  PrepStyle        `json:"prep_style"`
	Supersedes string           `json:"supersedes,omitempty"`
	Quantity   float64          `json:"quantity"`
}

// DayStatus is the per-date cheat-day flag
type DayStatus string

const (
	DayStandard DayStatus = "standard"
	DayCheat    DayStatus = "cheat"
)

// Toggled returns the opposite status
func (s DayStatus) Toggled() DayStatus {
	if s == DayCheat {
		return DayStandard
	}
	return DayCheat
}

// Totals are the raw sums over a day's entries
type Totals struct {
	Calories float64 `json:"calories" msgpack:"calories"`
	ProteinG float64 `json:"protein_g" msgpack:"protein_g"`
	CarbsG   float64 `json:"carbs_g" msgpack:"carbs_g"`
	FatG     float64 `json:"fat_g" msgpack:"fat_g"`
	FiberG   float64 `json:"fiber_g" msgpack:"fiber_g"`
	Spend    float64 `json:"spend" msgpack:"spend"`
}

// Goals are the daily targets the totals are compared against
type Goals struct {
	Calories float64 `json:"calories" msgpack:"calories"`
	Budget   float64 `json:"budget" msgpack:"budget"`
}

// GoalComparison is the interpretation of Totals against Goals.
// On a cheat day violations are suppressed but remaining amounts are still reported.
type GoalComparison struct {
	CalorieGoal       float64 `json:"calorie_goal" msgpack:"calorie_goal"`
	BudgetGoal        float64 `json:"budget_goal" msgpack:"budget_goal"`
	CaloriesRemaining float64 `json:"calories_remaining" msgpack:"calories_remaining"`
	BudgetRemaining   float64 `json:"budget_remaining" msgpack:"budget_remaining"`
	OverCalories      bool    `json:"over_calories" msgpack:"over_calories"`
	OverBudget        bool    `json:"over_budget" msgpack:"over_budget"`
	Suppressed        bool    `json:"suppressed" msgpack:"suppressed"`
}

// DayRecord is the aggregate state for one calendar date
type DayRecord struct {
	Date       string         `json:"date" msgpack:"date"`
	Status     DayStatus      `json:"status" msgpack:"status"`
	Totals     Totals         `json:"totals" msgpack:"totals"`
	Goals      GoalComparison `json:"goals" msgpack:"goals"`
	EntryCount int            `json:"entry_count" msgpack:"entry_count"`
}

// RecipeItem is one ingredient of a recipe, in grams
type RecipeItem struct {
	Ingredient FoodItem `json:"ingredient"`
	AmountG    float64  `json:"amount_g"`
}

// Recipe is a user recipe made of catalog ingredients
type Recipe struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Items    []RecipeItem `json:"items"`
	Servings int          `json:"servings"`
}

// PlanStrategy biases plan generation toward one goal
type PlanStrategy string

const (
	StrategyBalanced    PlanStrategy = "balanced"
	StrategyHighProtein PlanStrategy = "high_protein"
	StrategyBudgetSaver PlanStrategy = "budget_saver"
	StrategyHighEnergy  PlanStrategy = "high_energy"
)

// PlanStrategies lists the strategies in rotation order
var PlanStrategies = []PlanStrategy{
	StrategyBalanced,
	StrategyHighProtein,
	StrategyBudgetSaver,
	StrategyHighEnergy,
}

// Valid reports whether s is a known strategy
func (s PlanStrategy) Valid() bool {
	for _, known := range PlanStrategies {
		if s == known {
			return true
		}
	}
	return false
}

// PlanRequest is an ephemeral request for a daily plan.
// An empty Strategy plans balanced.
type PlanRequest struct {
	TargetCalories int          `json:"target_calories"`
	Budget         float64      `json:"budget"`
	MealCount      int          `json:"meal_count"`
	IncludeCustom  bool         `json:"include_custom"`
	Strategy       PlanStrategy `json:"strategy,omitempty"`
}

// PlanSelection is one meal of a plan. Slot is the meal slot it fills
// (breakfast, lunch, dinner, snack_1, ...) and Label its display name.
type PlanSelection struct {
	Food           FoodItem        `json:"food"`
	Nutrition      ScaledNutrition `json:"nutrition"`
	ServingWeightG float64         `json:"serving_weight_g"`
	Slot           string          `json:"slot"`
	Label          string          `json:"label"`
}

// PlanResult is an ordered, feasible selection of meals
type PlanResult struct {
	Selections     []PlanSelection `json:"selections"`
	TargetCalories int             `json:"target_calories"`
	Budget         float64         `json:"budget"`
	TotalCalories  float64         `json:"total_calories"`
	TotalProteinG  float64         `json:"total_protein_g"`
	TotalCarbsG    float64         `json:"total_carbs_g"`
	TotalFatG      float64         `json:"total_fat_g"`
	TotalPrice     float64         `json:"total_price"`
	Retries        int             `json:"retries"`
	Strategy       PlanStrategy    `json:"strategy"`
}

// UndefinedEfficiencyWarning reports a food excluded from ranking because its price is not positive
type UndefinedEfficiencyWarning struct {
	FoodID string  `json:"food_id"`
	Name   string  `json:"name"`
	Price  float64 `json:"price"`
}

func (w UndefinedEfficiencyWarning) String() string {
	return fmt.Sprintf("food %s (%s) has non-positive price %v; excluded from ranking", w.FoodID, w.Name, w.Price)
}
