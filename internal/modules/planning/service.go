package planning

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aristath/nutriplan/internal/domain"
	"github.com/aristath/nutriplan/internal/events"
	"github.com/aristath/nutriplan/internal/modules/catalog"
	"github.com/aristath/nutriplan/internal/modules/journal"
	"github.com/aristath/nutriplan/internal/modules/settings"
	"github.com/aristath/nutriplan/internal/modules/targets"
	"github.com/aristath/nutriplan/internal/utils"
	"github.com/rs/zerolog"
)

const (
	// DefaultPlanTTL applies when plan_ttl_hours is unset
	DefaultPlanTTL = 24 * time.Hour
	// PlanRetention is how long plans are kept before deletion
	PlanRetention = 30 * 24 * time.Hour
	// DefaultListLimit bounds plan listings
	DefaultListLimit = 20
)

// ScoredSource supplies the scored catalog the generator picks from
type ScoredSource interface {
	Scored(ctx context.Context) (catalog.ScoredCatalog, error)
}

// SettingsReader reads the planner settings and the profile targets, and
// remembers the last rotated strategy
type SettingsReader interface {
	Float(key string) float64
	String(key string) string
	Enabled(key string) bool
	Targets() targets.Targets
	RecordPlanStrategy(strategy domain.PlanStrategy) error
}

// EntryLogger records the meals of an applied plan, all or none
type EntryLogger interface {
	LogEntries(ctx context.Context, ins []journal.EntryInput) ([]domain.LoggedEntry, error)
}

// Service generates daily plans against the current catalog and profile
type Service struct {
	catalog  ScoredSource
	settings SettingsReader
	plans    *PlanRepository
	journal  EntryLogger
	events   *events.Manager
	log      zerolog.Logger
	today    func() string
}

// NewService creates a planning service. eventManager may be nil.
func NewService(
	catalogSource ScoredSource,
	settingsReader SettingsReader,
	plans *PlanRepository,
	entryLogger EntryLogger,
	eventManager *events.Manager,
	log zerolog.Logger,
) *Service {
	return &Service{
		catalog:  catalogSource,
		settings: settingsReader,
		plans:    plans,
		journal:  entryLogger,
		events:   eventManager,
		log:      log.With().Str("service", "planning").Logger(),
		today:    utils.Today,
	}
}

// Config builds the generator config from settings
func (s *Service) Config() Config {
	cfg := DefaultConfig()
	if tol := s.settings.Float(settings.KeyCalorieTolerance); tol > 0 {
		cfg.CalorieTolerance = tol
	}
	if s.settings.Enabled(settings.KeyPlanMealSlots) {
		cfg.SlotShares = true
		cfg.MealTypeWeight = DefaultMealTypeWeight
	}
	return cfg
}

// profileStrategy resolves the plan_strategy setting. rotating is true when
// the strategy advances on every generated plan.
func (s *Service) profileStrategy() (strategy domain.PlanStrategy, rotating bool) {
	mode := s.settings.String(settings.KeyPlanStrategy)
	if mode == settings.StrategyRotate {
		last := domain.PlanStrategy(s.settings.String(settings.KeyPlanLastStrategy))
		return nextStrategy(last), true
	}
	if st := domain.PlanStrategy(mode); st.Valid() {
		return st, false
	}
	return domain.StrategyBalanced, false
}

// Request resolves an input against the profile targets and clamps it to the supported ranges.
// Explicit non-positive values are rejected rather than clamped.
func (s *Service) Request(in GenerateInput) (domain.PlanRequest, error) {
	t := s.settings.Targets()
	req := domain.PlanRequest{
		TargetCalories: t.CalorieGoal,
		Budget:         t.DailyBudget,
		MealCount:      t.MealsPerDay,
		IncludeCustom:  in.IncludeCustom,
		Strategy:       in.Strategy,
	}
	if in.TargetCalories != nil {
		req.TargetCalories = *in.TargetCalories
	}
	if in.Budget != nil {
		req.Budget = *in.Budget
	}
	if in.MealCount != nil {
		req.MealCount = *in.MealCount
	}

	if err := ValidateRequest(req); err != nil {
		return domain.PlanRequest{}, err
	}

	req.TargetCalories = targets.ClampCalories(req.TargetCalories)
	req.Budget = targets.ClampBudget(req.Budget)
	req.MealCount = targets.ClampMeals(req.MealCount)
	return req, nil
}

// Generate builds a plan. With in.Save the plan is stored as pending and
// returned with its id; otherwise the returned StoredPlan has no id.
//
// Without an explicit strategy the profile's plan_strategy applies. A strategy
// that cannot fit the request falls back to a balanced plan.
func (s *Service) Generate(ctx context.Context, in GenerateInput) (StoredPlan, error) {
	defer utils.OperationTimer("plan_generate", s.log)()

	req, err := s.Request(in)
	if err != nil {
		return StoredPlan{}, err
	}

	scored, err := s.catalog.Scored(ctx)
	if err != nil {
		return StoredPlan{}, fmt.Errorf("failed to load scored catalog: %w", err)
	}

	rotating := false
	if req.Strategy == "" {
		req.Strategy, rotating = s.profileStrategy()
	}

	gen := NewGenerator(s.Config())
	result, err := gen.Generate(scored.Foods, req)
	var infeasible *domain.InfeasiblePlanError
	if errors.As(err, &infeasible) && req.Strategy != domain.StrategyBalanced {
		s.log.Debug().
			Str("strategy", string(req.Strategy)).
			Str("constraint", string(infeasible.Constraint)).
			Msg("Strategy infeasible, falling back to balanced")
		fallback := req
		fallback.Strategy = domain.StrategyBalanced
		result, err = gen.Generate(scored.Foods, fallback)
	}
	if rotating && err == nil {
		if recErr := s.settings.RecordPlanStrategy(req.Strategy); recErr != nil {
			s.log.Warn().Err(recErr).Str("strategy", string(req.Strategy)).Msg("Failed to record plan strategy")
		}
	}
	if err != nil {
		if errors.As(err, &infeasible) {
			s.log.Info().
				Str("constraint", string(infeasible.Constraint)).
				Float64("target", infeasible.Target).
				Float64("achieved", infeasible.Achieved).
				Msg("No feasible plan")
			s.events.EmitTyped(events.PlanGenerated, "planning", &events.PlanGeneratedData{
				TargetCalories: req.TargetCalories,
				Budget:         req.Budget,
				MealCount:      req.MealCount,
				Feasible:       false,
				Constraint:     string(infeasible.Constraint),
			})
		}
		return StoredPlan{}, err
	}
	req.Strategy = result.Strategy

	plan := StoredPlan{Request: req, Result: result, Status: PlanPending}
	if in.Save {
		plan, err = s.plans.Create(ctx, req, result, s.ttl())
		if err != nil {
			return StoredPlan{}, err
		}
	}

	s.log.Info().
		Str("plan_id", plan.ID).
		Int("target_calories", req.TargetCalories).
		Float64("budget", req.Budget).
		Float64("total_calories", result.TotalCalories).
		Float64("total_price", result.TotalPrice).
		Int("retries", result.Retries).
		Str("strategy", string(result.Strategy)).
		Msg("Plan generated")
	s.events.EmitTyped(events.PlanGenerated, "planning", &events.PlanGeneratedData{
		PlanID:         plan.ID,
		TargetCalories: req.TargetCalories,
		Budget:         req.Budget,
		MealCount:      req.MealCount,
		TotalCalories:  result.TotalCalories,
		TotalPrice:     result.TotalPrice,
		Retries:        result.Retries,
		Feasible:       true,
	})
	return plan, nil
}

// Plans lists stored plans, newest first
func (s *Service) Plans(ctx context.Context, status PlanStatus, limit int) ([]StoredPlan, error) {
	if status != "" && !status.Valid() {
		return nil, domain.NewValidationError("status", fmt.Sprintf("unknown plan status %q", status))
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}
	return s.plans.List(ctx, status, limit)
}

// Plan returns one stored plan
func (s *Service) Plan(ctx context.Context, id string) (StoredPlan, error) {
	return s.plans.Get(ctx, id)
}

// Apply logs every meal of a pending plan on date (today when empty) and marks the plan applied
func (s *Service) Apply(ctx context.Context, id string, in ApplyInput) (Applied, error) {
	date := in.Date
	if date == "" {
		date = s.today()
	}
	if _, err := utils.ParseDate(date); err != nil {
		return Applied{}, domain.NewValidationError("date", err.Error())
	}

	plan, err := s.plans.Get(ctx, id)
	if err != nil {
		return Applied{}, err
	}

	// Claim the plan first so two concurrent applies cannot both log its meals
	if err := s.plans.Transition(ctx, id, PlanApplied, date); err != nil {
		return Applied{}, err
	}

	inputs := make([]journal.EntryInput, len(plan.Result.Selections))
	for i, sel := range plan.Result.Selections {
		inputs[i] = journal.EntryInput{
			Date:      date,
			FoodID:    sel.Food.ID,
			Source:    sel.Food.Source,
			Unit:      domain.UnitGrams,
			PrepStyle: domain.PrepStandard,
			Quantity:  sel.ServingWeightG,
		}
	}

	entries, err := s.journal.LogEntries(ctx, inputs)
	if err != nil {
		// Nothing was logged; hand the plan back so it can be applied again
		if reopenErr := s.plans.Reopen(ctx, id); reopenErr != nil {
			s.log.Error().Err(reopenErr).Str("plan_id", id).Msg("Failed to reopen plan after logging failed")
		}
		return Applied{}, fmt.Errorf("failed to log meals of plan %s: %w", id, err)
	}

	plan.Status = PlanApplied
	plan.AppliedDate = date

	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	s.log.Info().Str("plan_id", id).Str("date", date).Int("entries", len(entries)).Msg("Plan applied")
	s.events.EmitTyped(events.PlanApplied, "planning", &events.PlanAppliedData{
		PlanID:   id,
		Date:     date,
		EntryIDs: ids,
	})
	return Applied{Plan: plan, Entries: entries}, nil
}

// Dismiss marks a pending plan dismissed
func (s *Service) Dismiss(ctx context.Context, id string) error {
	if err := s.plans.Transition(ctx, id, PlanDismissed, ""); err != nil {
		return err
	}
	s.log.Debug().Str("plan_id", id).Msg("Plan dismissed")
	return nil
}

// Cleanup expires stale pending plans and deletes plans past retention
func (s *Service) Cleanup(ctx context.Context) (expired, deleted int64, err error) {
	expired, err = s.plans.ExpirePending(ctx)
	if err != nil {
		return 0, 0, err
	}
	deleted, err = s.plans.DeleteOlderThan(ctx, PlanRetention)
	if err != nil {
		return expired, 0, err
	}
	return expired, deleted, nil
}

func (s *Service) ttl() time.Duration {
	hours := s.settings.Float(settings.KeyPlanTTLHours)
	if hours <= 0 {
		return DefaultPlanTTL
	}
	return time.Duration(hours * float64(time.Hour))
}
