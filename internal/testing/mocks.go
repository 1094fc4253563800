package testing

import (
	"context"
	"sync"

	"github.com/aristath/nutriplan/internal/domain"
	"github.com/aristath/nutriplan/internal/modules/targets"
)

// MockCatalogProvider is a mock implementation of domain.CatalogProvider for testing
type MockCatalogProvider struct {
	mu      sync.RWMutex
	foods   []domain.FoodItem
	recipes []domain.Recipe
	err     error
}

// NewMockCatalogProvider creates a new mock catalog provider
func NewMockCatalogProvider(foods ...domain.FoodItem) *MockCatalogProvider {
	return &MockCatalogProvider{foods: foods}
}

// SetFoods sets the foods to return
func (m *MockCatalogProvider) SetFoods(foods []domain.FoodItem) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.foods = foods
}

// SetRecipes sets the recipes to return
func (m *MockCatalogProvider) SetRecipes(recipes []domain.Recipe) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recipes = recipes
}

// SetError sets the error to return
func (m *MockCatalogProvider) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// ListFoods returns the configured foods
func (m *MockCatalogProvider) ListFoods(ctx context.Context) ([]domain.FoodItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make([]domain.FoodItem, len(m.foods))
	copy(out, m.foods)
	return out, nil
}

// ListRecipes returns the configured recipes
func (m *MockCatalogProvider) ListRecipes(ctx context.Context) ([]domain.Recipe, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make([]domain.Recipe, len(m.recipes))
	copy(out, m.recipes)
	return out, nil
}

// MockEntryProvider is a mock implementation of domain.EntryProvider for testing
type MockEntryProvider struct {
	mu      sync.RWMutex
	entries map[string][]domain.LoggedEntry
	err     error
}

// NewMockEntryProvider creates a new mock entry provider
func NewMockEntryProvider() *MockEntryProvider {
	return &MockEntryProvider{entries: make(map[string][]domain.LoggedEntry)}
}

// SetEntries sets the entries returned for date
func (m *MockEntryProvider) SetEntries(date string, entries []domain.LoggedEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[date] = entries
}

// SetError sets the error to return
func (m *MockEntryProvider) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// ListByDate returns the entries for date
func (m *MockEntryProvider) ListByDate(ctx context.Context, date string) ([]domain.LoggedEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	return append([]domain.LoggedEntry(nil), m.entries[date]...), nil
}

// MockDayFlagStore is a mock implementation of domain.DayFlagStore for testing
type MockDayFlagStore struct {
	mu       sync.RWMutex
	statuses map[string]domain.DayStatus
	err      error
}

// NewMockDayFlagStore creates a new mock day flag store
func NewMockDayFlagStore() *MockDayFlagStore {
	return &MockDayFlagStore{statuses: make(map[string]domain.DayStatus)}
}

// SetError sets the error to return
func (m *MockDayFlagStore) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Get returns the status for date, standard when unset
func (m *MockDayFlagStore) Get(ctx context.Context, date string) (domain.DayStatus, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return "", m.err
	}
	if s, ok := m.statuses[date]; ok {
		return s, nil
	}
	return domain.DayStandard, nil
}

// Set stores the status for date
func (m *MockDayFlagStore) Set(ctx context.Context, date string, status domain.DayStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.statuses[date] = status
	return nil
}

// MockSettings is a settings reader backed by a map, for services that read tunables.
// Float returns 0 for keys that were never set.
type MockSettings struct {
	mu      sync.RWMutex
	values  map[string]float64
	strings map[string]string
	targets targets.Targets
}

// NewMockSettings creates mock settings holding the production defaults for
// the planning and scoring thresholds, and metro targets of 2000 kcal and 50 per day
func NewMockSettings() *MockSettings {
	return &MockSettings{
		values: map[string]float64{
			"plan_calorie_tolerance":      0.10,
			"badge_best_value_percentile": 0.75,
			"badge_high_protein_ratio":    0.30,
			"hydration_goal_cups":         8,
			"cache_day_ttl_hours":         24,
			"plan_ttl_hours":              24,
			"weight_trend_window":         7,
			"analytics_default_days":      30,
			"backup_retention_days":       30,
		},
		strings: make(map[string]string),
		targets: targets.Targets{
			LocationCategory:   targets.CategoryMetro,
			LocationMultiplier: 1.0,
			CalorieGoal:        2000,
			DailyBudget:        50,
			MealsPerDay:        3,
		},
	}
}

// SetFloat sets a numeric value
func (m *MockSettings) SetFloat(key string, value float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
}

// SetTargets sets the targets returned by Targets
func (m *MockSettings) SetTargets(t targets.Targets) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.targets = t
}

// Float returns a numeric value
func (m *MockSettings) Float(key string) float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.values[key]
}

// Int returns a numeric value truncated to int
func (m *MockSettings) Int(key string) int {
	return int(m.Float(key))
}

// String returns a string value
func (m *MockSettings) String(key string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.strings[key]
}

// Targets returns the configured targets
func (m *MockSettings) Targets() targets.Targets {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.targets
}

// Goals returns the configured targets as aggregation goals
func (m *MockSettings) Goals() domain.Goals {
	t := m.Targets()
	return domain.Goals{Calories: float64(t.CalorieGoal), Budget: t.DailyBudget}
}

// RecordWeight records the weight in the numeric values under profile_weight_kg
func (m *MockSettings) RecordWeight(weightKg float64) error {
	m.SetFloat("profile_weight_kg", weightKg)
	return nil
}

// SetString sets a string value
func (m *MockSettings) SetString(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.strings[key] = value
}

// RecordPlanStrategy stores the strategy under plan_last_strategy
func (m *MockSettings) RecordPlanStrategy(strategy domain.PlanStrategy) error {
	m.SetString("plan_last_strategy", string(strategy))
	return nil
}

// Enabled reports whether a flag value is non-zero
func (m *MockSettings) Enabled(key string) bool {
	return m.Float(key) != 0
}
