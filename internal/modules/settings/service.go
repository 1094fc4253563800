package settings

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/aristath/nutriplan/internal/domain"
	"github.com/aristath/nutriplan/internal/events"
	"github.com/aristath/nutriplan/internal/modules/targets"
	"github.com/rs/zerolog"
)

// Service provides typed access to settings on top of the Repository.
// Unknown keys are rejected; stored values fall back to SettingDefaults.
type Service struct {
	repo   *Repository
	events *events.Manager
	log    zerolog.Logger
}

// NewService creates a settings service. events may be nil.
func NewService(repo *Repository, eventManager *events.Manager, log zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		events: eventManager,
		log:    log.With().Str("service", "settings").Logger(),
	}
}

// GetAll returns every known setting with stored values applied over the defaults
func (s *Service) GetAll() (map[string]interface{}, error) {
	stored, err := s.repo.GetAll()
	if err != nil {
		return nil, err
	}

	result := make(map[string]interface{}, len(SettingDefaults))
	for key, def := range SettingDefaults {
		raw, ok := stored[key]
		if !ok {
			result[key] = def
			continue
		}
		if StringSettings[key] {
			result[key] = raw
			continue
		}
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			s.log.Warn().Str("key", key).Str("value", raw).Msg("Stored setting is not numeric, using default")
			result[key] = def
			continue
		}
		result[key] = f
	}
	return result, nil
}

// Keys returns the known setting keys, sorted
func (s *Service) Keys() []string {
	keys := make([]string, 0, len(SettingDefaults))
	for k := range SettingDefaults {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Set validates and stores a setting, then emits SETTINGS_CHANGED.
// Numbers arrive from JSON as float64; numeric strings are accepted too.
func (s *Service) Set(key string, value interface{}) (interface{}, error) {
	if _, known := SettingDefaults[key]; !known {
		return nil, domain.NewValidationError("key", fmt.Sprintf("unknown setting %q", key))
	}

	var stored string
	var normalized interface{}

	if StringSettings[key] {
		str, ok := value.(string)
		if !ok {
			return nil, domain.NewValidationError(key, "value must be a string")
		}
		if allowed, ok := allowedValues[key]; ok && !contains(allowed, str) {
			return nil, domain.NewValidationError(key, fmt.Sprintf("must be one of %v", allowed))
		}
		stored, normalized = str, str
	} else {
		f, err := toFloat(value)
		if err != nil {
			return nil, domain.NewValidationError(key, err.Error())
		}
		if rng, ok := settingRanges[key]; ok && (f < rng.Min || f > rng.Max) {
			return nil, domain.NewValidationError(key, fmt.Sprintf("must be between %v and %v, got %v", rng.Min, rng.Max, f))
		}
		stored, normalized = strconv.FormatFloat(f, 'f', -1, 64), f
	}

	var description *string
	if desc, ok := SettingDescriptions[key]; ok {
		description = &desc
	}
	if err := s.repo.Set(key, stored, description); err != nil {
		return nil, err
	}

	s.log.Info().Str("key", key).Str("value", stored).Msg("Setting updated")
	s.events.EmitTyped(events.SettingsChanged, "settings", &events.SettingsChangedData{
		Key:   key,
		Value: normalized,
	})

	return normalized, nil
}

// Reset drops the stored value of key so its default applies again.
// SETTINGS_CHANGED carries the default when a stored value was dropped.
func (s *Service) Reset(key string) (interface{}, error) {
	def, known := SettingDefaults[key]
	if !known {
		return nil, domain.NewValidationError("key", fmt.Sprintf("unknown setting %q", key))
	}
	removed, err := s.repo.Delete(key)
	if err != nil {
		return nil, err
	}
	if removed {
		s.log.Info().Str("key", key).Msg("Setting reset to default")
		s.events.EmitTyped(events.SettingsChanged, "settings", &events.SettingsChangedData{
			Key:   key,
			Value: def,
		})
	}
	return def, nil
}

// Float returns a numeric setting, falling back to its default
func (s *Service) Float(key string) float64 {
	def, _ := SettingDefaults[key].(float64)
	v, err := s.repo.GetFloat(key, def)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Failed to read setting, using default")
		return def
	}
	return v
}

// Int returns a numeric setting truncated to int
func (s *Service) Int(key string) int {
	return int(s.Float(key))
}

// String returns a string setting, falling back to its default
func (s *Service) String(key string) string {
	def, _ := SettingDefaults[key].(string)
	v, err := s.repo.GetString(key, def)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Failed to read setting, using default")
		return def
	}
	return v
}

// Enabled reports whether a 0/1 flag setting is on
func (s *Service) Enabled(key string) bool {
	return s.Float(key) >= 0.5
}

// Profile assembles the user profile from the profile_* settings
func (s *Service) Profile() targets.Profile {
	return targets.Profile{
		Gender:           s.String(KeyGender),
		ActivityLevel:    s.String(KeyActivityLevel),
		City:             s.String(KeyCity),
		LocationCategory: s.String(KeyLocationCategory),
		Age:              s.Int(KeyAge),
		HeightCm:         s.Float(KeyHeightCm),
		WeightKg:         s.Float(KeyWeightKg),
		GoalWeightKg:     s.Float(KeyGoalWeightKg),
		BodyFatPct:       s.Float(KeyBodyFatPct),
		DailyBudget:      s.Float(KeyDailyBudget),
		CalorieGoal:      s.Int(KeyDailyCalorieGoal),
		MealsPerDay:      s.Int(KeyMealsPerDay),
	}
}

// Targets computes the daily targets for the stored profile.
// The calorie goal and budget are clamped to the planning bounds.
func (s *Service) Targets() targets.Targets {
	t := targets.Compute(s.Profile())
	t.CalorieGoal = targets.ClampCalories(t.CalorieGoal)
	t.DailyBudget = targets.ClampBudget(t.DailyBudget)
	t.MealsPerDay = targets.ClampMeals(t.MealsPerDay)
	return t
}

// Goals returns the daily goals used by the aggregator
func (s *Service) Goals() domain.Goals {
	t := s.Targets()
	return domain.Goals{
		Calories: float64(t.CalorieGoal),
		Budget:   t.DailyBudget,
	}
}

// RecordWeight stores a new current weight on the profile
func (s *Service) RecordWeight(weightKg float64) error {
	_, err := s.Set(KeyWeightKg, weightKg)
	return err
}

// RecordPlanStrategy remembers the strategy of the last rotated plan.
// Rotation state does not change any goal, so no SETTINGS_CHANGED is emitted.
func (s *Service) RecordPlanStrategy(strategy domain.PlanStrategy) error {
	if !strategy.Valid() {
		return domain.NewValidationError(KeyPlanLastStrategy, fmt.Sprintf("unknown strategy %q", strategy))
	}
	desc := SettingDescriptions[KeyPlanLastStrategy]
	if err := s.repo.Set(KeyPlanLastStrategy, string(strategy), &desc); err != nil {
		return err
	}
	s.log.Debug().Str("strategy", string(strategy)).Msg("Plan strategy recorded")
	return nil
}

func toFloat(value interface{}) (float64, error) {
	var f float64
	switch v := value.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case bool:
		if v {
			f = 1
		}
	case string:
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, fmt.Errorf("value %q is not a number", v)
		}
		f = parsed
	default:
		return 0, fmt.Errorf("value must be a number")
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("value must be finite")
	}
	return f, nil
}

func contains(values []string, v string) bool {
	for _, have := range values {
		if have == v {
			return true
		}
	}
	return false
}
