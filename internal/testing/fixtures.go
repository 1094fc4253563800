package testing

import (
	"time"

	"github.com/aristath/nutriplan/internal/domain"
)

// NewFoodFixtures returns a small Cairo street-food catalog
func NewFoodFixtures() []domain.FoodItem {
	return []domain.FoodItem{
		{
			ID:               "koshary",
			Name:             "Koshary",
			ReferenceWeightG: 300,
			Calories:         450,
			ProteinG:         12,
			CarbsG:           80,
			FatG:             8,
			FiberG:           6,
			Price:            25,
			Location:         "metro",
			MealType:         "lunch",
			Source:           domain.SourceCatalog,
		},
		{
			ID:               "foul",
			Name:             "Foul",
			ReferenceWeightG: 250,
			Calories:         300,
			ProteinG:         18,
			CarbsG:           40,
			FatG:             6,
			FiberG:           9,
			Price:            10,
			Location:         "metro",
			MealType:         "breakfast",
			Source:           domain.SourceCatalog,
		},
		{
			ID:               "taameya",
			Name:             "Taameya Sandwich",
			ReferenceWeightG: 150,
			Calories:         330,
			ProteinG:         11,
			CarbsG:           42,
			FatG:             13,
			FiberG:           5,
			Price:            8,
			Location:         "metro",
			MealType:         "breakfast",
			Source:           domain.SourceCatalog,
		},
		{
			ID:               "grilled-chicken",
			Name:             "Grilled Chicken Quarter",
			ReferenceWeightG: 200,
			Calories:         330,
			ProteinG:         50,
			CarbsG:           0,
			FatG:             14,
			Price:            70,
			Location:         "metro",
			MealType:         "dinner",
			Source:           domain.SourceCatalog,
		},
	}
}

// NewCustomFoodFixture returns a user-created food
func NewCustomFoodFixture() domain.FoodItem {
	return domain.FoodItem{
		ID:               "protein-shake",
		Name:             "Protein Shake",
		ReferenceWeightG: 330,
		Calories:         200,
		ProteinG:         30,
		CarbsG:           8,
		FatG:             4,
		Price:            15,
		Source:           domain.SourceCustom,
	}
}

// NewEntryFixtures returns entries for date referencing NewFoodFixtures
func NewEntryFixtures(date string) []domain.LoggedEntry {
	base := time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)
	return []domain.LoggedEntry{
		{ID: "entry-1", Date: date, FoodID: "foul", Source: domain.SourceCatalog, Quantity: 250, Unit: domain.UnitGrams, PrepStyle: domain.PrepStandard, CreatedAt: base},
		{ID: "entry-2", Date: date, FoodID: "koshary", Source: domain.SourceCatalog, Quantity: 1, Unit: domain.UnitServings, PrepStyle: domain.PrepStandard, CreatedAt: base.Add(5 * time.Hour)},
	}
}
