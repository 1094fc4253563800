package nutrition

import (
	"fmt"

	"github.com/aristath/nutriplan/internal/domain"
)

// RecipeProfile collapses a recipe into the FoodItem of one serving.
//
// Each ingredient is scaled to its amount, the results are summed and then
// divided by the number of servings. The reference weight of the returned
// food is the total recipe weight divided by servings, so logging "1 serving"
// of the recipe scales by exactly that profile.
func RecipeProfile(recipe domain.Recipe) (domain.FoodItem, error) {
	if recipe.Servings <= 0 {
		return domain.FoodItem{}, domain.NewValidationError("servings", fmt.Sprintf("recipe %s must have at least one serving, got %d", recipe.ID, recipe.Servings))
	}
	if len(recipe.Items) == 0 {
		return domain.FoodItem{}, domain.NewValidationError("items", fmt.Sprintf("recipe %s has no ingredients", recipe.ID))
	}

	var total domain.ScaledNutrition
	for _, item := range recipe.Items {
		scaled, err := Scale(item.Ingredient, item.AmountG)
		if err != nil {
			return domain.FoodItem{}, fmt.Errorf("recipe %s ingredient %s: %w", recipe.ID, item.Ingredient.ID, err)
		}
		total = Add(total, scaled)
	}

	servings := float64(recipe.Servings)
	return domain.FoodItem{
		ID:               recipe.ID,
		Name:             recipe.Name,
		ReferenceWeightG: total.WeightG / servings,
		Calories:         total.Calories / servings,
		ProteinG:         total.ProteinG / servings,
		CarbsG:           total.CarbsG / servings,
		FatG:             total.FatG / servings,
		FiberG:           total.FiberG / servings,
		Price:            total.Price / servings,
		Source:           domain.SourceRecipe,
	}, nil
}
