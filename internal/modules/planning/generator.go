package planning

import (
	"fmt"
	"math"
	"sort"

	"github.com/aristath/nutriplan/internal/domain"
	"github.com/aristath/nutriplan/internal/modules/nutrition"
)

// priceEpsilon absorbs float noise when comparing sums of prices against a budget
const priceEpsilon = 1e-9

// Generator builds daily meal plans from a scored catalog.
// It is stateless apart from its config and safe for concurrent use.
type Generator struct {
	cfg Config
}

// NewGenerator creates a generator; out-of-range config values fall back to defaults
func NewGenerator(cfg Config) *Generator {
	return &Generator{cfg: cfg.normalized()}
}

// Config returns the effective configuration
func (g *Generator) Config() Config {
	return g.cfg
}

// candidate is one eligible food at its reference serving
type candidate struct {
	food      domain.FoodItem
	nutrition domain.ScaledNutrition
	calEff    float64
}

// Generate selects MealCount foods whose total calories land within tolerance of
// the target and whose total price stays within the budget.
//
// Selection is greedy per meal slot, followed by at most one corrective rescan
// per slot. Slots split the target evenly unless the config enables slot
// shares; req.Strategy adds its bias to every slot's ranking. The result is deterministic for identical inputs. Failure to fit
// is reported as *domain.InfeasiblePlanError; malformed requests as
// *domain.ValidationError.
func (g *Generator) Generate(catalog []domain.ScoredFood, req domain.PlanRequest) (domain.PlanResult, error) {
	if err := ValidateRequest(req); err != nil {
		return domain.PlanResult{}, err
	}

	pool, err := g.eligible(catalog, req.IncludeCustom)
	if err != nil {
		return domain.PlanResult{}, err
	}
	if len(pool) == 0 {
		return domain.PlanResult{}, &domain.InfeasiblePlanError{
			Constraint: domain.ConstraintCalories,
			Reason:     "no eligible foods in catalog",
			Target:     float64(req.TargetCalories),
		}
	}

	if bound := lowestSpend(pool, req.MealCount); bound > req.Budget+priceEpsilon {
		return domain.PlanResult{}, &domain.InfeasiblePlanError{
			Constraint: domain.ConstraintBudget,
			Reason:     fmt.Sprintf("cheapest %d meals cost more than the budget", req.MealCount),
			Target:     req.Budget,
			Achieved:   bound,
		}
	}

	meals := evenSlots(req.MealCount)
	if g.cfg.SlotShares {
		meals = MealSlots(req.MealCount)
	}
	if req.Strategy == "" {
		req.Strategy = domain.StrategyBalanced
	}
	p := &plan{
		gen:    g,
		pool:   pool,
		req:    req,
		target: float64(req.TargetCalories),
		meals:  meals,
		bias:   newStrategyBias(req.Strategy, pool),
		slots:  make([]int, 0, req.MealCount),
	}
	p.fillGreedy()

	retries := 0
	retried := make([]bool, req.MealCount)
	for !p.feasible() {
		slot := p.worstUnretriedSlot(retried)
		if slot < 0 {
			break
		}
		retried[slot] = true
		retries++
		p.retrySlot(slot)
	}

	if !p.feasible() {
		calories, price := p.totals()
		if price > req.Budget+priceEpsilon {
			return domain.PlanResult{}, &domain.InfeasiblePlanError{
				Constraint: domain.ConstraintBudget,
				Reason:     "selected meals exceed the budget",
				Target:     req.Budget,
				Achieved:   price,
			}
		}
		return domain.PlanResult{}, &domain.InfeasiblePlanError{
			Constraint: domain.ConstraintCalories,
			Reason:     fmt.Sprintf("total calories outside %.0f%% of target", g.cfg.CalorieTolerance*100),
			Target:     p.target,
			Achieved:   calories,
		}
	}

	return p.result(retries), nil
}

// ValidateRequest rejects malformed plan requests before any work is done
func ValidateRequest(req domain.PlanRequest) error {
	if req.MealCount <= 0 {
		return domain.NewValidationError("meal_count", fmt.Sprintf("must be positive, got %d", req.MealCount))
	}
	if req.TargetCalories <= 0 {
		return domain.NewValidationError("target_calories", fmt.Sprintf("must be positive, got %d", req.TargetCalories))
	}
	if !(req.Budget > 0) || math.IsInf(req.Budget, 0) {
		return domain.NewValidationError("budget", fmt.Sprintf("must be a positive number, got %v", req.Budget))
	}
	if req.Strategy != "" && !req.Strategy.Valid() {
		return domain.NewValidationError("strategy", fmt.Sprintf("unknown strategy %q", req.Strategy))
	}
	return nil
}

// eligible filters the catalog to plannable foods, in a stable order
func (g *Generator) eligible(catalog []domain.ScoredFood, includeCustom bool) ([]candidate, error) {
	pool := make([]candidate, 0, len(catalog))
	for _, sf := range catalog {
		if !sf.EfficiencyDefined {
			continue
		}
		if sf.Food.Source.IsUserCreated() && !includeCustom {
			continue
		}
		n, err := nutrition.Scale(sf.Food, sf.Food.ReferenceWeightG)
		if err != nil {
			return nil, fmt.Errorf("catalog food %s: %w", sf.Food.ID, err)
		}
		pool = append(pool, candidate{food: sf.Food, nutrition: n, calEff: sf.CalorieEfficiency})
	}
	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].food.ID < pool[j].food.ID
	})
	return pool, nil
}

// lowestSpend is the cheapest possible cost of mealCount meals, where every
// food must be used once before any food repeats
func lowestSpend(pool []candidate, mealCount int) float64 {
	prices := make([]float64, len(pool))
	for i, c := range pool {
		prices[i] = c.nutrition.Price
	}
	sort.Float64s(prices)

	total := 0.0
	for k := 0; k < mealCount; k++ {
		total += prices[k%len(prices)]
	}
	return total
}

// score is the composite desirability of c for a slot needing need kcal
func (g *Generator) score(c candidate, need float64) float64 {
	scale := math.Max(need, g.cfg.MinCalorieScale)
	match := math.Max(0, 1-math.Abs(need-c.nutrition.Calories)/scale)
	eff := math.Min(c.calEff/g.cfg.EfficiencyNormalizer, 1)
	return g.cfg.CalorieMatchWeight*match + g.cfg.EfficiencyWeight*eff
}

// better orders candidates by score desc, price asc, name asc, id asc
func better(a, b candidate, scoreA, scoreB float64) bool {
	if scoreA != scoreB {
		return scoreA > scoreB
	}
	if a.nutrition.Price != b.nutrition.Price {
		return a.nutrition.Price < b.nutrition.Price
	}
	if a.food.Name != b.food.Name {
		return a.food.Name < b.food.Name
	}
	return a.food.ID < b.food.ID
}

// plan is the mutable working state of one Generate call
type plan struct {
	gen    *Generator
	pool   []candidate
	req    domain.PlanRequest
	target float64
	meals  []MealSlot
	bias   strategyBias
	slots  []int // pool indexes, one per meal
}

// score ranks c for slot: the generator's composite score plus the meal type
// and strategy bonuses
func (p *plan) score(c candidate, slot int, need float64) float64 {
	s := p.gen.score(c, need)
	if p.meals[slot].Matches(c.food.MealType) {
		s += p.gen.cfg.MealTypeWeight
	}
	return s + p.gen.cfg.StrategyWeight*p.bias.of(c)
}

// need is the calorie need of slot given the calories already selected
func (p *plan) need(slot int, calories float64) float64 {
	if !p.gen.cfg.SlotShares {
		return (p.target - calories) / float64(p.req.MealCount-slot)
	}
	rest := 0.0
	for _, m := range p.meals[slot:] {
		rest += m.Share
	}
	return (p.target - calories) * p.meals[slot].Share / rest
}

// slotTarget is the slot's share of the whole day's target
func (p *plan) slotTarget(slot int) float64 {
	if !p.gen.cfg.SlotShares {
		return p.target / float64(p.req.MealCount)
	}
	return p.target * p.meals[slot].Share
}

func (p *plan) totals() (calories, price float64) {
	for _, idx := range p.slots {
		calories += p.pool[idx].nutrition.Calories
		price += p.pool[idx].nutrition.Price
	}
	return calories, price
}

// uses counts how often each pool entry is selected, ignoring slot skip
func (p *plan) uses(skip int) []int {
	counts := make([]int, len(p.pool))
	for slot, idx := range p.slots {
		if slot != skip {
			counts[idx]++
		}
	}
	return counts
}

// fresh returns the pool indexes that are least used so far.
// Repeats only become eligible once every food has been used.
func fresh(counts []int) []int {
	least := math.MaxInt
	for _, n := range counts {
		if n < least {
			least = n
		}
	}
	out := make([]int, 0, len(counts))
	for i, n := range counts {
		if n == least {
			out = append(out, i)
		}
	}
	return out
}

func (p *plan) cheapestPrice() float64 {
	cheapest := math.Inf(1)
	for _, c := range p.pool {
		cheapest = math.Min(cheapest, c.nutrition.Price)
	}
	return cheapest
}

func (p *plan) fillGreedy() {
	minPrice := p.cheapestPrice()
	for slot := 0; slot < p.req.MealCount; slot++ {
		calories, price := p.totals()
		left := float64(p.req.MealCount - slot)
		need := p.need(slot, calories)
		remainingBudget := p.req.Budget - price
		reserve := minPrice * (left - 1)

		options := fresh(p.uses(-1))
		tiers := []float64{remainingBudget - reserve, remainingBudget, math.Inf(1)}
		for _, ceiling := range tiers {
			if idx, ok := p.best(options, slot, need, ceiling); ok {
				p.slots = append(p.slots, idx)
				break
			}
		}
	}
}

// best picks the highest-scoring option priced within ceiling
func (p *plan) best(options []int, slot int, need, ceiling float64) (int, bool) {
	bestIdx, bestScore, found := -1, 0.0, false
	for _, idx := range options {
		c := p.pool[idx]
		if c.nutrition.Price > ceiling+priceEpsilon {
			continue
		}
		s := p.score(c, slot, need)
		if !found || better(c, p.pool[bestIdx], s, bestScore) {
			bestIdx, bestScore, found = idx, s, true
		}
	}
	return bestIdx, found
}

// violation measures how far totals are from feasibility; 0 means feasible
func (p *plan) violation(calories, price float64) float64 {
	allowed := p.gen.cfg.CalorieTolerance * p.target
	v := math.Max(0, math.Abs(calories-p.target)-allowed) / p.target
	v += math.Max(0, price-p.req.Budget-priceEpsilon) / p.req.Budget
	return v
}

func (p *plan) feasible() bool {
	calories, price := p.totals()
	return p.violation(calories, price) == 0
}

// worstUnretriedSlot returns the not-yet-retried slot whose meal deviates most
// from its share of the target, or -1 when every slot was retried
func (p *plan) worstUnretriedSlot(retried []bool) int {
	worst, worstDev := -1, -1.0
	for slot, idx := range p.slots {
		if retried[slot] {
			continue
		}
		dev := math.Abs(p.pool[idx].nutrition.Calories - p.slotTarget(slot))
		if dev > worstDev {
			worst, worstDev = slot, dev
		}
	}
	return worst
}

// retrySlot rescans the pool for the slot's residual need and keeps the
// substitute only when it reduces the violation
func (p *plan) retrySlot(slot int) {
	current := p.slots[slot]
	calories, price := p.totals()
	restCalories := calories - p.pool[current].nutrition.Calories
	restPrice := price - p.pool[current].nutrition.Price
	need := p.target - restCalories

	bestIdx := current
	bestViolation := p.violation(calories, price)
	bestScore := p.score(p.pool[current], slot, need)

	for _, idx := range fresh(p.uses(slot)) {
		if idx == current {
			continue
		}
		c := p.pool[idx]
		v := p.violation(restCalories+c.nutrition.Calories, restPrice+c.nutrition.Price)
		s := p.score(c, slot, need)
		if v < bestViolation || (v == bestViolation && bestIdx != current && better(c, p.pool[bestIdx], s, bestScore)) {
			bestIdx, bestViolation, bestScore = idx, v, s
		}
	}
	p.slots[slot] = bestIdx
}

func (p *plan) result(retries int) domain.PlanResult {
	res := domain.PlanResult{
		Selections:     make([]domain.PlanSelection, 0, len(p.slots)),
		TargetCalories: p.req.TargetCalories,
		Budget:         p.req.Budget,
		Retries:        retries,
		Strategy:       p.req.Strategy,
	}
	for slot, idx := range p.slots {
		c := p.pool[idx]
		res.Selections = append(res.Selections, domain.PlanSelection{
			Food:           c.food,
			Nutrition:      c.nutrition,
			ServingWeightG: c.nutrition.WeightG,
			Slot:           p.meals[slot].Name,
			Label:          p.meals[slot].Label,
		})
		res.TotalCalories += c.nutrition.Calories
		res.TotalProteinG += c.nutrition.ProteinG
		res.TotalCarbsG += c.nutrition.CarbsG
		res.TotalFatG += c.nutrition.FatG
		res.TotalPrice += c.nutrition.Price
	}
	return res
}
