// Package scoring ranks catalog foods by cost-efficiency and assigns badges.
package scoring

import (
	"sort"

	"github.com/aristath/nutriplan/internal/domain"
	"github.com/aristath/nutriplan/internal/modules/nutrition"
	"gonum.org/v1/gonum/stat"
)

// Result is the scored catalog: one ScoredFood per input food, in input order,
// plus a warning for every food whose efficiency is undefined.
type Result struct {
	Foods    []domain.ScoredFood                 `json:"foods"`
	Warnings []domain.UndefinedEfficiencyWarning `json:"warnings"`
}

// ScoreCatalog computes efficiencies, badges and ranks for a catalog snapshot.
//
// Efficiencies are taken at the reference serving. Foods with a non-positive
// price have undefined efficiency: they get no badges, rank 0 and a warning,
// and do not take part in the percentile. The result depends only on foods
// and cfg, so identical snapshots always score identically.
func ScoreCatalog(foods []domain.FoodItem, cfg Config) Result {
	cfg = cfg.normalized()

	result := Result{
		Foods:    make([]domain.ScoredFood, len(foods)),
		Warnings: []domain.UndefinedEfficiencyWarning{},
	}

	defined := make([]int, 0, len(foods))
	for i, food := range foods {
		sf := domain.ScoredFood{Food: food, Badges: []domain.Badge{}}
		if food.Price > 0 {
			sf.EfficiencyDefined = true
			sf.CalorieEfficiency = food.Calories / food.Price
			sf.ProteinEfficiency = food.ProteinG / food.Price
			defined = append(defined, i)
		} else {
			result.Warnings = append(result.Warnings, domain.UndefinedEfficiencyWarning{
				FoodID: food.ID,
				Name:   food.Name,
				Price:  food.Price,
			})
		}
		result.Foods[i] = sf
	}

	if len(defined) == 0 {
		return result
	}

	threshold := bestValueThreshold(result.Foods, defined, cfg.BestValuePercentile)

	for _, i := range defined {
		sf := &result.Foods[i]
		if sf.CalorieEfficiency >= threshold {
			sf.Badges = append(sf.Badges, domain.BadgeBestValue)
		}
		if isHighProtein(sf.Food, cfg.HighProteinRatio) {
			sf.Badges = append(sf.Badges, domain.BadgeHighProtein)
		}
	}

	order := make([]int, len(defined))
	copy(order, defined)
	sort.SliceStable(order, func(a, b int) bool {
		return rankedBefore(result.Foods[order[a]], result.Foods[order[b]])
	})
	for rank, i := range order {
		result.Foods[i].Rank = rank + 1
	}

	return result
}

// Ranked returns the ranked foods of a result in rank order
func Ranked(result Result) []domain.ScoredFood {
	ranked := make([]domain.ScoredFood, 0, len(result.Foods))
	for _, sf := range result.Foods {
		if sf.Rank > 0 {
			ranked = append(ranked, sf)
		}
	}
	sort.Slice(ranked, func(i, j int) bool {
		return ranked[i].Rank < ranked[j].Rank
	})
	return ranked
}

// bestValueThreshold is the empirical p-quantile of the defined calorie efficiencies
func bestValueThreshold(foods []domain.ScoredFood, defined []int, p float64) float64 {
	values := make([]float64, len(defined))
	for k, i := range defined {
		values[k] = foods[i].CalorieEfficiency
	}
	sort.Float64s(values)
	return stat.Quantile(p, stat.Empirical, values, nil)
}

func isHighProtein(food domain.FoodItem, ratio float64) bool {
	if food.Calories <= 0 {
		return false
	}
	return nutrition.ProteinCalorieRatio(food.ProteinG, food.Calories) > ratio
}

// rankedBefore orders by calorie efficiency desc, price asc, name asc, id asc
func rankedBefore(a, b domain.ScoredFood) bool {
	if a.CalorieEfficiency != b.CalorieEfficiency {
		return a.CalorieEfficiency > b.CalorieEfficiency
	}
	if a.Food.Price != b.Food.Price {
		return a.Food.Price < b.Food.Price
	}
	if a.Food.Name != b.Food.Name {
		return a.Food.Name < b.Food.Name
	}
	return a.Food.ID < b.Food.ID
}
