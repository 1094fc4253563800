// Package aggregation folds a day's logged entries into a DayRecord and
// compares the totals against the daily goals.
package aggregation

import (
	"fmt"
	"sort"

	"github.com/aristath/nutriplan/internal/domain"
	"github.com/aristath/nutriplan/internal/modules/nutrition"
)

// Aggregate computes the DayRecord for date.
//
// Every entry must belong to date. Entries that carry their logged nutrition
// are folded from it; lookup is only consulted for entries that do not, and may
// be nil when every entry does. Entries are folded in (CreatedAt, ID) order,
// so the same entries in any input order produce bit-identical totals. The
// status only affects the goal comparison, never the totals.
func Aggregate(
	date string,
	entries []domain.LoggedEntry,
	lookup domain.FoodLookup,
	status domain.DayStatus,
	goals domain.Goals,
) (domain.DayRecord, error) {
	if status == "" {
		status = domain.DayStandard
	}

	ordered := make([]domain.LoggedEntry, len(entries))
	copy(ordered, entries)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].CreatedAt.Equal(ordered[j].CreatedAt) {
			return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
		}
		return ordered[i].ID < ordered[j].ID
	})

	var totals domain.Totals
	for _, entry := range ordered {
		if entry.Date != date {
			return domain.DayRecord{}, domain.NewValidationError("date",
				fmt.Sprintf("entry %s is dated %s, not %s", entry.ID, entry.Date, date))
		}
		contribution, err := Contribution(entry, lookup)
		if err != nil {
			return domain.DayRecord{}, err
		}
		totals.Calories += contribution.Calories
		totals.ProteinG += contribution.ProteinG
		totals.CarbsG += contribution.CarbsG
		totals.FatG += contribution.FatG
		totals.FiberG += contribution.FiberG
		totals.Spend += contribution.Price
	}

	return domain.DayRecord{
		Date:       date,
		Status:     status,
		Totals:     totals,
		Goals:      CompareGoals(totals, status, goals),
		EntryCount: len(ordered),
	}, nil
}

// Contribution returns the nutrition one entry adds to its day.
// An entry that carries its logged nutrition uses it as is; otherwise the food
// is resolved through lookup. The prep style multiplies nutrition but never the price.
func Contribution(entry domain.LoggedEntry, lookup domain.FoodLookup) (domain.ScaledNutrition, error) {
	if entry.Nutrition != nil {
		return *entry.Nutrition, nil
	}
	return Resolve(entry, lookup)
}

// Freeze resolves entry against lookup and records the result on the entry,
// together with the food name, so the entry no longer depends on the catalog.
func Freeze(entry domain.LoggedEntry, lookup domain.FoodLookup) (domain.LoggedEntry, error) {
	n, err := Resolve(entry, lookup)
	if err != nil {
		return domain.LoggedEntry{}, err
	}
	food, _ := lookup.LookupFood(entry.FoodID, entry.Source)
	entry.FoodName = food.Name
	entry.Nutrition = &n
	return entry, nil
}

// Resolve scales the referenced food to the entry's quantity using the current lookup
func Resolve(entry domain.LoggedEntry, lookup domain.FoodLookup) (domain.ScaledNutrition, error) {
	var (
		food domain.FoodItem
		ok   bool
	)
	if lookup != nil {
		food, ok = lookup.LookupFood(entry.FoodID, entry.Source)
	}
	if !ok {
		return domain.ScaledNutrition{}, domain.NewValidationError("food_id",
			fmt.Sprintf("entry %s references unknown %s food %q", entry.ID, entry.Source, entry.FoodID))
	}

	weight := entry.Quantity
	if entry.Unit == domain.UnitServings {
		weight = entry.Quantity * food.ReferenceWeightG
	}
	if !(entry.Quantity > 0) {
		return domain.ScaledNutrition{}, &domain.InvalidServingError{FoodID: food.ID, WeightG: weight}
	}

	scaled, err := nutrition.Scale(food, weight)
	if err != nil {
		return domain.ScaledNutrition{}, err
	}

	m := entry.PrepStyle.Modifier()
	scaled.Calories *= m
	scaled.ProteinG *= m
	scaled.CarbsG *= m
	scaled.FatG *= m
	scaled.FiberG *= m
	return scaled, nil
}

// CompareGoals interprets totals against goals.
// On a cheat day the over-goal flags are suppressed; remaining amounts are still reported.
func CompareGoals(totals domain.Totals, status domain.DayStatus, goals domain.Goals) domain.GoalComparison {
	cmp := domain.GoalComparison{
		CalorieGoal:       goals.Calories,
		BudgetGoal:        goals.Budget,
		CaloriesRemaining: remaining(goals.Calories, totals.Calories),
		BudgetRemaining:   remaining(goals.Budget, totals.Spend),
	}
	if status == domain.DayCheat {
		cmp.Suppressed = true
		return cmp
	}
	cmp.OverCalories = goals.Calories > 0 && totals.Calories > goals.Calories
	cmp.OverBudget = goals.Budget > 0 && totals.Spend > goals.Budget
	return cmp
}

// ToggleStatus flips a record between standard and cheat.
// Totals are untouched; only the goal comparison is recomputed.
func ToggleStatus(record domain.DayRecord, goals domain.Goals) domain.DayRecord {
	record.Status = record.Status.Toggled()
	record.Goals = CompareGoals(record.Totals, record.Status, goals)
	return record
}

func remaining(goal, total float64) float64 {
	if goal-total < 0 {
		return 0
	}
	return goal - total
}
