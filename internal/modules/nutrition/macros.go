package nutrition

import (
	"math"

	"github.com/aristath/nutriplan/internal/domain"
)

// Atwater factors (kcal per gram)
const (
	KcalPerGramProtein = 4.0
	KcalPerGramCarbs   = 4.0
	KcalPerGramFat     = 9.0

	// IntegrityTolerance is the largest relative gap between stated and macro-derived
	// calories for a profile to count as precise
	IntegrityTolerance = 0.10
)

// MacroCalories applies the 4-4-9 rule
func MacroCalories(proteinG, carbsG, fatG float64) float64 {
	return proteinG*KcalPerGramProtein + carbsG*KcalPerGramCarbs + fatG*KcalPerGramFat
}

// ProteinCalorieRatio is the share of calories coming from protein.
// Returns 0 when calories is not positive.
func ProteinCalorieRatio(proteinG, calories float64) float64 {
	if calories <= 0 {
		return 0
	}
	return proteinG * KcalPerGramProtein / calories
}

// Integrity describes how well a food's stated calories match its macros
type Integrity struct {
	MacroCalories   float64 `json:"macro_calories"`
	DiscrepancyKcal float64 `json:"discrepancy_kcal"`
	Precise         bool    `json:"is_precise"`
}

// CheckIntegrity compares stated calories against 4-4-9 macro calories
func CheckIntegrity(food domain.FoodItem) Integrity {
	macro := MacroCalories(food.ProteinG, food.CarbsG, food.FatG)
	if food.Calories == 0 {
		return Integrity{MacroCalories: macro, Precise: true}
	}
	discrepancy := math.Abs(food.Calories - macro)
	return Integrity{
		MacroCalories:   macro,
		DiscrepancyKcal: discrepancy,
		Precise:         discrepancy < food.Calories*IntegrityTolerance,
	}
}
