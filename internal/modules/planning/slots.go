package planning

import (
	"fmt"
	"strings"
)

// MealSlot is one meal of a day plan and its share of the calorie target
type MealSlot struct {
	Name     string  `json:"name"`
	Label    string  `json:"label"`
	MealType string  `json:"meal_type"`
	Share    float64 `json:"share"`
}

// MealSlots allocates the daily calorie target over mealCount slots.
// One meal is dinner, two are lunch and dinner, three add breakfast.
// Past three, the fixed meals keep 80% and the snacks split the rest.
func MealSlots(mealCount int) []MealSlot {
	switch {
	case mealCount <= 0:
		return nil
	case mealCount == 1:
		return []MealSlot{mainMeal("dinner", 1.0)}
	case mealCount == 2:
		return []MealSlot{mainMeal("lunch", 0.5), mainMeal("dinner", 0.5)}
	case mealCount == 3:
		return []MealSlot{mainMeal("breakfast", 0.25), mainMeal("lunch", 0.45), mainMeal("dinner", 0.30)}
	}

	slots := []MealSlot{mainMeal("breakfast", 0.2), mainMeal("lunch", 0.35), mainMeal("dinner", 0.25)}
	snacks := mealCount - 3
	for i := 1; i <= snacks; i++ {
		slots = append(slots, MealSlot{
			Name:     fmt.Sprintf("snack_%d", i),
			Label:    "Snack",
			MealType: "snack",
			Share:    0.2 / float64(snacks),
		})
	}
	return slots
}

func mainMeal(name string, share float64) MealSlot {
	return MealSlot{
		Name:     name,
		Label:    strings.ToUpper(name[:1]) + name[1:],
		MealType: name,
		Share:    share,
	}
}

// evenSlots labels mealCount slots like MealSlots but shares the target evenly
func evenSlots(mealCount int) []MealSlot {
	slots := MealSlots(mealCount)
	for i := range slots {
		slots[i].Share = 1 / float64(mealCount)
	}
	return slots
}

// Matches reports whether a food tagged mealType suits the slot.
// Lunch and dinner foods are interchangeable; untagged foods match nothing.
func (s MealSlot) Matches(mealType string) bool {
	mt := strings.ToLower(strings.TrimSpace(mealType))
	if mt == "" {
		return false
	}
	if mt == s.MealType {
		return true
	}
	return isMainMeal(mt) && isMainMeal(s.MealType)
}

func isMainMeal(mealType string) bool {
	return mealType == "lunch" || mealType == "dinner"
}
