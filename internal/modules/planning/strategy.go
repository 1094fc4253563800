package planning

import (
	"math"

	"github.com/aristath/nutriplan/internal/domain"
)

// proteinRatioCap is the protein share of calories that earns the full high-protein bonus
const proteinRatioCap = 0.5

// strategyBias scores how well a candidate serves a strategy, in [0, 1].
// It is relative to the pool so no single food dominates on scale alone.
type strategyBias struct {
	strategy    domain.PlanStrategy
	cheapest    float64
	maxCalories float64
}

func newStrategyBias(strategy domain.PlanStrategy, pool []candidate) strategyBias {
	b := strategyBias{strategy: strategy, cheapest: math.Inf(1)}
	for _, c := range pool {
		b.cheapest = math.Min(b.cheapest, c.nutrition.Price)
		b.maxCalories = math.Max(b.maxCalories, c.nutrition.Calories)
	}
	return b
}

func (b strategyBias) of(c candidate) float64 {
	n := c.nutrition
	switch b.strategy {
	case domain.StrategyHighProtein:
		if n.Calories <= 0 {
			return 0
		}
		return math.Min(n.ProteinG*4/n.Calories/proteinRatioCap, 1)
	case domain.StrategyBudgetSaver:
		if n.Price <= 0 {
			return 0
		}
		return math.Min(b.cheapest/n.Price, 1)
	case domain.StrategyHighEnergy:
		if b.maxCalories <= 0 {
			return 0
		}
		return n.Calories / b.maxCalories
	}
	return 0
}

// nextStrategy returns the strategy after last in rotation order.
// An unknown or empty last starts the rotation over.
func nextStrategy(last domain.PlanStrategy) domain.PlanStrategy {
	for i, s := range domain.PlanStrategies {
		if s == last {
			return domain.PlanStrategies[(i+1)%len(domain.PlanStrategies)]
		}
	}
	return domain.PlanStrategies[0]
}
