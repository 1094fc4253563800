package planning

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/aristath/nutriplan/internal/domain"
	"github.com/aristath/nutriplan/internal/modules/scoring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scored(foods ...domain.FoodItem) []domain.ScoredFood {
	return scoring.ScoreCatalog(foods, scoring.DefaultConfig()).Foods
}

func food(id string, weight, calories, protein, price float64) domain.FoodItem {
	return domain.FoodItem{
		ID:               id,
		Name:             id,
		ReferenceWeightG: weight,
		Calories:         calories,
		ProteinG:         protein,
		Price:            price,
		Source:           domain.SourceCatalog,
	}
}

func selectionIDs(res domain.PlanResult) []string {
	ids := make([]string, len(res.Selections))
	for i, s := range res.Selections {
		ids[i] = s.Food.ID
	}
	return ids
}

func TestGenerate_KosharyFoulScenario(t *testing.T) {
	catalog := scored(
		food("koshary", 300, 450, 12, 25),
		food("foul", 250, 300, 18, 10),
	)

	res, err := NewGenerator(DefaultConfig()).Generate(catalog, domain.PlanRequest{
		TargetCalories: 750,
		Budget:         35,
		MealCount:      2,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"foul", "koshary"}, selectionIDs(res))
	assert.InDelta(t, 750.0, res.TotalCalories, 1e-9)
	assert.InDelta(t, 35.0, res.TotalPrice, 1e-9)
	assert.InDelta(t, 30.0, res.TotalProteinG, 1e-9)
	assert.Equal(t, 0, res.Retries)
	assert.Equal(t, 250.0, res.Selections[0].ServingWeightG)
}

func TestGenerate_Validation(t *testing.T) {
	gen := NewGenerator(DefaultConfig())
	catalog := scored(food("foul", 250, 300, 18, 10))

	tests := []struct {
		name  string
		req   domain.PlanRequest
		field string
	}{
		{"zero meals", domain.PlanRequest{TargetCalories: 2000, Budget: 100, MealCount: 0}, "meal_count"},
		{"negative calories", domain.PlanRequest{TargetCalories: -1, Budget: 100, MealCount: 3}, "target_calories"},
		{"zero budget", domain.PlanRequest{TargetCalories: 2000, Budget: 0, MealCount: 3}, "budget"},
		{"nan budget", domain.PlanRequest{TargetCalories: 2000, Budget: math.NaN(), MealCount: 3}, "budget"},
		{"infinite budget", domain.PlanRequest{TargetCalories: 2000, Budget: math.Inf(1), MealCount: 3}, "budget"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := gen.Generate(catalog, tt.req)
			var vErr *domain.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
			assert.False(t, errors.Is(err, domain.ErrInfeasiblePlan))
		})
	}
}

func TestGenerate_InfeasibleBudget(t *testing.T) {
	catalog := scored(
		food("koshary", 300, 450, 12, 25),
		food("foul", 250, 300, 18, 10),
	)

	_, err := NewGenerator(DefaultConfig()).Generate(catalog, domain.PlanRequest{
		TargetCalories: 750,
		Budget:         5,
		MealCount:      1,
	})

	var infeasible *domain.InfeasiblePlanError
	require.ErrorAs(t, err, &infeasible)
	assert.Equal(t, domain.ConstraintBudget, infeasible.Constraint)
	assert.Equal(t, 10.0, infeasible.Achieved)
	assert.ErrorIs(t, err, domain.ErrInfeasiblePlan)
}

func TestGenerate_InfeasibleCalories(t *testing.T) {
	catalog := scored(
		food("cracker", 30, 100, 2, 2),
		food("apple", 150, 80, 0, 3),
	)

	res, err := NewGenerator(DefaultConfig()).Generate(catalog, domain.PlanRequest{
		TargetCalories: 2000,
		Budget:         100,
		MealCount:      2,
	})

	assert.Empty(t, res.Selections)
	var infeasible *domain.InfeasiblePlanError
	require.ErrorAs(t, err, &infeasible)
	assert.Equal(t, domain.ConstraintCalories, infeasible.Constraint)
	assert.Equal(t, 2000.0, infeasible.Target)
	assert.Equal(t, 180.0, infeasible.Achieved)
}

func TestGenerate_EmptyCatalog(t *testing.T) {
	freebie := food("freebie", 100, 500, 5, 0)

	_, err := NewGenerator(DefaultConfig()).Generate(scored(freebie), domain.PlanRequest{
		TargetCalories: 500,
		Budget:         10,
		MealCount:      1,
	})

	var infeasible *domain.InfeasiblePlanError
	require.ErrorAs(t, err, &infeasible)
	assert.Equal(t, domain.ConstraintCalories, infeasible.Constraint)
}

func TestGenerate_RetryRepairsSlot(t *testing.T) {
	catalog := scored(
		food("a", 100, 500, 10, 10),
		food("b", 100, 380, 10, 5),
		food("e", 100, 300, 10, 1),
		food("f", 100, 480, 10, 20),
	)

	res, err := NewGenerator(DefaultConfig()).Generate(catalog, domain.PlanRequest{
		TargetCalories: 1000,
		Budget:         100,
		MealCount:      2,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "f"}, selectionIDs(res))
	assert.Equal(t, 1, res.Retries)
	assert.InDelta(t, 980.0, res.TotalCalories, 1e-9)
}

func TestGenerate_RepeatsOnlyWhenCatalogExhausted(t *testing.T) {
	catalog := scored(food("foul", 250, 300, 18, 10))

	res, err := NewGenerator(DefaultConfig()).Generate(catalog, domain.PlanRequest{
		TargetCalories: 900,
		Budget:         30,
		MealCount:      3,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"foul", "foul", "foul"}, selectionIDs(res))

	catalog = scored(
		food("foul", 250, 300, 18, 10),
		food("taameya", 100, 330, 13, 8),
		food("koshary", 300, 450, 12, 25),
	)
	res, err = NewGenerator(DefaultConfig()).Generate(catalog, domain.PlanRequest{
		TargetCalories: 1100,
		Budget:         60,
		MealCount:      3,
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"foul", "taameya", "koshary"}, selectionIDs(res))
}

func TestGenerate_IncludeCustom(t *testing.T) {
	shake := food("shake", 330, 400, 30, 5)
	shake.Source = domain.SourceCustom
	catalog := scored(
		food("koshary", 300, 450, 12, 25),
		food("foul", 250, 300, 18, 10),
		shake,
	)
	req := domain.PlanRequest{TargetCalories: 750, Budget: 35, MealCount: 2}

	res, err := NewGenerator(DefaultConfig()).Generate(catalog, req)
	require.NoError(t, err)
	assert.NotContains(t, selectionIDs(res), "shake")

	req.IncludeCustom = true
	res, err = NewGenerator(DefaultConfig()).Generate(catalog, req)
	require.NoError(t, err)
	assert.Contains(t, selectionIDs(res), "shake")
}

func TestGenerate_Deterministic(t *testing.T) {
	catalog := generatedCatalog(30)
	req := domain.PlanRequest{TargetCalories: 2200, Budget: 120, MealCount: 4}
	gen := NewGenerator(DefaultConfig())

	first, firstErr := gen.Generate(catalog, req)
	for i := 0; i < 5; i++ {
		again, err := gen.Generate(catalog, req)
		assert.Equal(t, firstErr, err)
		assert.Equal(t, first, again)
	}
}

func TestGenerate_FeasibilityProperty(t *testing.T) {
	gen := NewGenerator(DefaultConfig())
	catalog := generatedCatalog(25)

	cheapest := math.Inf(1)
	for _, sf := range catalog {
		cheapest = math.Min(cheapest, sf.Food.Price)
	}

	for _, target := range []int{800, 1500, 2000, 2600, 3500} {
		for _, budget := range []float64{3, 20, 60, 150} {
			for _, meals := range []int{1, 2, 3, 5} {
				req := domain.PlanRequest{TargetCalories: target, Budget: budget, MealCount: meals}
				t.Run(fmt.Sprintf("%d/%.0f/%d", target, budget, meals), func(t *testing.T) {
					res, err := gen.Generate(catalog, req)
					if err != nil {
						var infeasible *domain.InfeasiblePlanError
						require.ErrorAs(t, err, &infeasible)
						if cheapest > budget {
							assert.Equal(t, domain.ConstraintBudget, infeasible.Constraint)
						}
						return
					}
					assert.Len(t, res.Selections, meals)
					assert.LessOrEqual(t, math.Abs(res.TotalCalories-float64(target)), 0.10*float64(target)+1e-9)
					assert.LessOrEqual(t, res.TotalPrice, budget+1e-9)
					assert.LessOrEqual(t, res.Retries, meals)
				})
			}
		}
	}
}

func TestGenerate_TwoSwapRepairIsOutOfReach(t *testing.T) {
	// b+c is 910 kcal for 35, but repairing the greedy a+d pick needs both
	// slots swapped at once and each slot is rescanned on its own
	catalog := scored(
		food("a", 100, 651, 10, 23),
		food("b", 100, 192, 10, 17),
		food("c", 100, 718, 10, 18),
		food("d", 100, 548, 10, 3),
	)

	_, err := NewGenerator(DefaultConfig()).Generate(catalog, domain.PlanRequest{
		TargetCalories: 990,
		Budget:         46,
		MealCount:      2,
	})
	var infeasible *domain.InfeasiblePlanError
	require.ErrorAs(t, err, &infeasible)
	assert.Equal(t, domain.ConstraintCalories, infeasible.Constraint)
	assert.Equal(t, 843.0, infeasible.Achieved)
}

func cairoCatalog() []domain.ScoredFood {
	foods := []domain.FoodItem{
		food("koshary", 300, 450, 12, 25),
		food("foul", 250, 300, 18, 10),
		food("taameya", 150, 330, 11, 8),
		food("grilled-chicken", 200, 330, 50, 70),
	}
	for i, mealType := range []string{"lunch", "breakfast", "breakfast", "dinner"} {
		foods[i].MealType = mealType
	}
	return scored(foods...)
}

func TestGenerate_SlotLabels(t *testing.T) {
	req := domain.PlanRequest{TargetCalories: 1100, Budget: 60, MealCount: 3}

	res, err := NewGenerator(DefaultConfig()).Generate(cairoCatalog(), req)
	require.NoError(t, err)
	assert.Equal(t, []string{"taameya", "foul", "koshary"}, selectionIDs(res))
	assert.Equal(t, domain.StrategyBalanced, res.Strategy)

	labels := make([]string, len(res.Selections))
	for i, sel := range res.Selections {
		labels[i] = sel.Slot + "/" + sel.Label
	}
	assert.Equal(t, []string{"breakfast/Breakfast", "lunch/Lunch", "dinner/Dinner"}, labels)
}

func TestGenerate_SlotSharesPreferMealType(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SlotShares = true
	cfg.MealTypeWeight = DefaultMealTypeWeight
	req := domain.PlanRequest{TargetCalories: 1100, Budget: 60, MealCount: 3}

	res, err := NewGenerator(cfg).Generate(cairoCatalog(), req)
	require.NoError(t, err)
	assert.Equal(t, []string{"foul", "koshary", "taameya"}, selectionIDs(res))
	assert.InDelta(t, 1080.0, res.TotalCalories, 1e-9)
	assert.InDelta(t, 43.0, res.TotalPrice, 1e-9)

	req.Strategy = domain.StrategyBudgetSaver
	res, err = NewGenerator(cfg).Generate(cairoCatalog(), req)
	require.NoError(t, err)
	assert.Equal(t, []string{"taameya", "koshary", "foul"}, selectionIDs(res))
	assert.Equal(t, domain.StrategyBudgetSaver, res.Strategy)
}

func TestGenerate_StrategyCanBeInfeasible(t *testing.T) {
	catalog := scored(
		food("f0", 100, 450, 42, 16),
		food("f1", 100, 150, 30, 4),
		food("f2", 100, 400, 14, 14),
		food("f3", 100, 600, 2, 10),
	)
	req := domain.PlanRequest{TargetCalories: 700, Budget: 55, MealCount: 2}
	gen := NewGenerator(DefaultConfig())

	res, err := gen.Generate(catalog, req)
	require.NoError(t, err)
	assert.Equal(t, []string{"f3", "f1"}, selectionIDs(res))

	req.Strategy = domain.StrategyHighEnergy
	_, err = gen.Generate(catalog, req)
	var infeasible *domain.InfeasiblePlanError
	require.ErrorAs(t, err, &infeasible)
	assert.Equal(t, domain.ConstraintCalories, infeasible.Constraint)

	req.Strategy = "variety"
	_, err = gen.Generate(catalog, req)
	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "strategy", vErr.Field)
}

func TestConfigNormalized(t *testing.T) {
	assert.Equal(t, DefaultConfig(), Config{}.normalized())

	cfg := DefaultConfig()
	cfg.CalorieTolerance = 0.05
	assert.Equal(t, 0.05, NewGenerator(cfg).Config().CalorieTolerance)
}

func generatedCatalog(n int) []domain.ScoredFood {
	foods := make([]domain.FoodItem, n)
	for i := 0; i < n; i++ {
		foods[i] = food(
			fmt.Sprintf("food-%02d", i),
			float64(100+(i*13)%200),
			float64(150+(i*53)%600),
			float64(3+(i*7)%35),
			float64(4+(i*11)%30),
		)
	}
	return scored(foods...)
}
