package catalog

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/aristath/nutriplan/internal/domain"
	"github.com/aristath/nutriplan/internal/events"
	"github.com/aristath/nutriplan/internal/modules/nutrition"
	"github.com/aristath/nutriplan/internal/modules/scoring"
	"github.com/aristath/nutriplan/internal/modules/settings"
	"github.com/aristath/nutriplan/internal/modules/targets"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// SettingsReader is the slice of the settings service the catalog needs
type SettingsReader interface {
	Float(key string) float64
	Targets() targets.Targets
}

// Service owns catalog writes and builds the snapshots every computation reads
type Service struct {
	repo      *Repository
	settings  SettingsReader
	validator *PriceValidator
	events    *events.Manager
	log       zerolog.Logger

	mu         sync.Mutex
	cached     *domain.Snapshot
	cachedVer  int64
	cachedMult float64
}

// NewService creates a catalog service. eventManager may be nil.
func NewService(repo *Repository, settingsReader SettingsReader, eventManager *events.Manager, log zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		settings:  settingsReader,
		validator: NewPriceValidator(log),
		events:    eventManager,
		log:       log.With().Str("service", "catalog").Logger(),
	}
}

// Version returns the current catalog version
func (s *Service) Version(ctx context.Context) (int64, error) {
	return s.repo.Version(ctx)
}

// Snapshot returns an immutable view of every food plus one per-serving food per recipe.
// Catalog prices are adjusted by the location multiplier of the user's profile;
// custom foods keep the price the user entered. Snapshots are memoized per
// catalog version and multiplier.
func (s *Service) Snapshot(ctx context.Context) (*domain.Snapshot, error) {
	version, err := s.repo.Version(ctx)
	if err != nil {
		return nil, err
	}
	mult := s.locationMultiplier()

	s.mu.Lock()
	if s.cached != nil && s.cachedVer == version && s.cachedMult == mult {
		snap := s.cached
		s.mu.Unlock()
		return snap, nil
	}
	s.mu.Unlock()

	foods, err := s.repo.ListFoods(ctx)
	if err != nil {
		return nil, err
	}
	for i := range foods {
		foods[i] = adjustPrice(foods[i], mult)
	}

	recipes, err := s.repo.ListRecipes(ctx)
	if err != nil {
		return nil, err
	}
	for _, rec := range recipes {
		for i := range rec.Items {
			rec.Items[i].Ingredient = adjustPrice(rec.Items[i].Ingredient, mult)
		}
		profile, err := nutrition.RecipeProfile(rec)
		if err != nil {
			s.log.Warn().Err(err).Str("recipe_id", rec.ID).Msg("Skipping recipe without a valid profile")
			continue
		}
		foods = append(foods, profile)
	}

	snap := domain.NewSnapshot(foods)

	s.mu.Lock()
	s.cached, s.cachedVer, s.cachedMult = snap, version, mult
	s.mu.Unlock()

	s.log.Debug().
		Int64("version", version).
		Float64("location_multiplier", mult).
		Int("foods", snap.Len()).
		Msg("Catalog snapshot built")
	return snap, nil
}

// ScoringConfig reads the badge thresholds from settings
func (s *Service) ScoringConfig() scoring.Config {
	return scoring.Config{
		BestValuePercentile: s.settings.Float(settings.KeyBestValuePercentile),
		HighProteinRatio:    s.settings.Float(settings.KeyHighProteinRatio),
	}
}

// Scored scores the current snapshot
func (s *Service) Scored(ctx context.Context) (ScoredCatalog, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return ScoredCatalog{}, err
	}
	version, err := s.repo.Version(ctx)
	if err != nil {
		return ScoredCatalog{}, err
	}

	result := scoring.ScoreCatalog(snap.Foods(), s.ScoringConfig())
	for _, w := range result.Warnings {
		s.log.Warn().Str("food_id", w.FoodID).Float64("price", w.Price).Msg(w.String())
	}

	return ScoredCatalog{
		Foods:    result.Foods,
		Warnings: result.Warnings,
		Version:  version,
	}, nil
}

// ListFoods returns the snapshot's foods, optionally filtered by a case-insensitive name query
func (s *Service) ListFoods(ctx context.Context, query string) ([]domain.FoodItem, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	foods := snap.Foods()
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return foods, nil
	}

	out := make([]domain.FoodItem, 0, len(foods))
	for _, f := range foods {
		if strings.Contains(strings.ToLower(f.Name), query) || strings.Contains(strings.ToLower(f.ID), query) {
			out = append(out, f)
		}
	}
	return out, nil
}

// GetFood resolves a food (or recipe profile) from the current snapshot
func (s *Service) GetFood(ctx context.Context, id string, source domain.Source) (domain.FoodItem, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return domain.FoodItem{}, err
	}
	food, ok := snap.LookupFood(id, source)
	if !ok {
		return domain.FoodItem{}, fmt.Errorf("food %s: %w", id, domain.ErrNotFound)
	}
	return food, nil
}

// Nutrition scales a food to weightG
func (s *Service) Nutrition(ctx context.Context, id string, source domain.Source, weightG float64) (domain.ScaledNutrition, error) {
	food, err := s.GetFood(ctx, id, source)
	if err != nil {
		return domain.ScaledNutrition{}, err
	}
	return nutrition.Scale(food, weightG)
}

// Integrity runs the 4-4-9 macro check on a stored food
func (s *Service) Integrity(ctx context.Context, id string, source domain.Source) (nutrition.Integrity, error) {
	food, err := s.GetFood(ctx, id, source)
	if err != nil {
		return nutrition.Integrity{}, err
	}
	return nutrition.CheckIntegrity(food), nil
}

// SaveFood stores a food. Custom foods without an id get a generated one.
func (s *Service) SaveFood(ctx context.Context, food domain.FoodItem) (domain.FoodItem, error) {
	if food.Source == "" {
		food.Source = domain.SourceCatalog
	}
	if food.ID == "" && food.Source == domain.SourceCustom {
		food.ID = uuid.NewString()
	}
	food.Name = strings.TrimSpace(food.Name)
	if food.Name == "" {
		return domain.FoodItem{}, domain.NewValidationError("name", "food name is required")
	}

	if err := s.repo.UpsertFood(ctx, food); err != nil {
		return domain.FoodItem{}, err
	}

	if integrity := nutrition.CheckIntegrity(food); !integrity.Precise {
		s.log.Warn().
			Str("food_id", food.ID).
			Float64("declared_kcal", food.Calories).
			Float64("macro_kcal", integrity.MacroCalories).
			Msg("Declared calories disagree with macros")
	}

	s.emitCatalogChanged(ctx, food.ID, "upsert")
	return food, nil
}

// DeleteFood removes a stored food
func (s *Service) DeleteFood(ctx context.Context, id string, source domain.Source) error {
	if err := s.repo.DeleteFood(ctx, id, source); err != nil {
		return err
	}
	s.emitCatalogChanged(ctx, id, "delete")
	return nil
}

// RecipeView is a recipe together with its per-serving profile
type RecipeView struct {
	Recipe  domain.Recipe   `json:"recipe"`
	Profile domain.FoodItem `json:"profile"`
}

// SaveRecipe stores a recipe and returns its per-serving profile
func (s *Service) SaveRecipe(ctx context.Context, in RecipeInput) (RecipeView, error) {
	if in.ID == "" {
		in.ID = uuid.NewString()
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := s.repo.SaveRecipe(ctx, in); err != nil {
		return RecipeView{}, err
	}
	s.emitCatalogChanged(ctx, in.ID, "recipe")
	return s.GetRecipe(ctx, in.ID)
}

// GetRecipe returns a recipe with its location-adjusted profile
func (s *Service) GetRecipe(ctx context.Context, id string) (RecipeView, error) {
	rec, err := s.repo.GetRecipe(ctx, id)
	if err != nil {
		return RecipeView{}, err
	}
	mult := s.locationMultiplier()
	for i := range rec.Items {
		rec.Items[i].Ingredient = adjustPrice(rec.Items[i].Ingredient, mult)
	}
	profile, err := nutrition.RecipeProfile(rec)
	if err != nil {
		return RecipeView{}, err
	}
	return RecipeView{Recipe: rec, Profile: profile}, nil
}

// ListRecipes returns every recipe
func (s *Service) ListRecipes(ctx context.Context) ([]domain.Recipe, error) {
	return s.repo.ListRecipes(ctx)
}

// DeleteRecipe removes a recipe
func (s *Service) DeleteRecipe(ctx context.Context, id string) error {
	if err := s.repo.DeleteRecipe(ctx, id); err != nil {
		return err
	}
	s.emitCatalogChanged(ctx, id, "recipe")
	return nil
}

// SubmitPrice validates a price submission and queues it for review
func (s *Service) SubmitPrice(ctx context.Context, sub PriceSubmission) (PriceReview, error) {
	sub.FoodID = strings.TrimSpace(sub.FoodID)
	if sub.FoodID == "" {
		return PriceReview{}, domain.NewValidationError("food_id", "food id is required")
	}
	if sub.Price < 0 || math.IsNaN(sub.Price) || math.IsInf(sub.Price, 0) {
		return PriceReview{}, domain.NewValidationError("price", fmt.Sprintf("must be a non-negative number, got %v", sub.Price))
	}

	current, err := s.repo.GetFood(ctx, sub.FoodID, domain.SourceCatalog)
	known := err == nil
	if err != nil && !isNotFound(err) {
		return PriceReview{}, err
	}
	_, flag := s.validator.Check(sub.Price, current.Price, known)

	review, err := s.repo.SubmitPrice(ctx, sub, flag)
	if err != nil {
		return PriceReview{}, err
	}
	s.log.Info().
		Int64("review_id", review.ID).
		Str("food_id", sub.FoodID).
		Float64("price", sub.Price).
		Str("flag", flag).
		Msg("Price submitted for review")
	return review, nil
}

// Reviews lists price reviews by status, pending when status is empty
func (s *Service) Reviews(ctx context.Context, status ReviewStatus) ([]PriceReview, error) {
	if status == "" {
		status = ReviewPending
	}
	switch status {
	case ReviewPending, ReviewApproved, ReviewRejected:
	default:
		return nil, domain.NewValidationError("status", fmt.Sprintf("unknown review status %q", status))
	}
	return s.repo.ListReviews(ctx, status)
}

// ResolveReview approves or rejects a pending price
func (s *Service) ResolveReview(ctx context.Context, id int64, approve bool) (PriceReview, error) {
	review, err := s.repo.ResolveReview(ctx, id, approve)
	if err != nil {
		return PriceReview{}, err
	}

	s.events.EmitTyped(events.PriceReviewed, "catalog", &events.PriceReviewedData{
		ReviewID: review.ID,
		FoodID:   review.FoodID,
		Price:    review.Price,
		Approved: approve,
	})
	if approve {
		s.emitCatalogChanged(ctx, review.FoodID, "price")
	}
	return review, nil
}

func (s *Service) emitCatalogChanged(ctx context.Context, foodID, action string) {
	version, err := s.repo.Version(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to read catalog version for event")
	}
	s.events.EmitTyped(events.CatalogChanged, "catalog", &events.CatalogChangedData{
		Version: version,
		FoodID:  foodID,
		Action:  action,
	})
}

func (s *Service) locationMultiplier() float64 {
	if s.settings == nil {
		return 1.0
	}
	m := s.settings.Targets().LocationMultiplier
	if !(m > 0) {
		return 1.0
	}
	return m
}

// adjustPrice scales market prices by the location multiplier
func adjustPrice(food domain.FoodItem, mult float64) domain.FoodItem {
	if mult != 1 && (food.Source == domain.SourceCatalog || food.Source == "") {
		food.Price *= mult
	}
	return food
}

func isNotFound(err error) bool {
	return err != nil && errors.Is(err, domain.ErrNotFound)
}
