// Package nutrition scales food nutrition profiles to arbitrary serving sizes.
// Every nutrition figure in the system originates here; callers never multiply
// FoodItem fields themselves.
package nutrition

import (
	"math"

	"github.com/aristath/nutriplan/internal/domain"
)

// Scale returns the food's nutrition and price at weightG grams.
//
// Each of calories, protein, carbs, fat, fiber and price is multiplied by
// weightG / food.ReferenceWeightG. No rounding is applied; rounding for
// display is the caller's concern.
//
// Returns *domain.InvalidServingError when weightG is not a positive finite
// number, and a *domain.ValidationError when the food itself is malformed.
func Scale(food domain.FoodItem, weightG float64) (domain.ScaledNutrition, error) {
	if !(weightG > 0) || math.IsInf(weightG, 0) {
		return domain.ScaledNutrition{}, &domain.InvalidServingError{FoodID: food.ID, WeightG: weightG}
	}
	if !(food.ReferenceWeightG > 0) {
		return domain.ScaledNutrition{}, domain.NewValidationError("reference_weight_g", "food "+food.ID+" has no positive reference weight")
	}

	ratio := weightG / food.ReferenceWeightG
	return domain.ScaledNutrition{
		WeightG:  weightG,
		Calories: food.Calories * ratio,
		ProteinG: food.ProteinG * ratio,
		CarbsG:   food.CarbsG * ratio,
		FatG:     food.FatG * ratio,
		FiberG:   food.FiberG * ratio,
		Price:    food.Price * ratio,
	}, nil
}

// ScaleServings scales by a multiple of the reference serving
func ScaleServings(food domain.FoodItem, servings float64) (domain.ScaledNutrition, error) {
	if !(servings > 0) || math.IsInf(servings, 0) {
		return domain.ScaledNutrition{}, &domain.InvalidServingError{FoodID: food.ID, WeightG: servings * food.ReferenceWeightG}
	}
	return Scale(food, servings*food.ReferenceWeightG)
}

// Reference returns the food's nutrition at its own reference serving
func Reference(food domain.FoodItem) domain.ScaledNutrition {
	return domain.ScaledNutrition{
		WeightG:  food.ReferenceWeightG,
		Calories: food.Calories,
		ProteinG: food.ProteinG,
		CarbsG:   food.CarbsG,
		FatG:     food.FatG,
		FiberG:   food.FiberG,
		Price:    food.Price,
	}
}

// Add sums two scaled profiles (weights add too)
func Add(a, b domain.ScaledNutrition) domain.ScaledNutrition {
	return domain.ScaledNutrition{
		WeightG:  a.WeightG + b.WeightG,
		Calories: a.Calories + b.Calories,
		ProteinG: a.ProteinG + b.ProteinG,
		CarbsG:   a.CarbsG + b.CarbsG,
		FatG:     a.FatG + b.FatG,
		FiberG:   a.FiberG + b.FiberG,
		Price:    a.Price + b.Price,
	}
}
