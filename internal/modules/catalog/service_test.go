package catalog

import (
	"context"
	"testing"

	"github.com/aristath/nutriplan/internal/domain"
	"github.com/aristath/nutriplan/internal/events"
	"github.com/aristath/nutriplan/internal/modules/targets"
	testingutil "github.com/aristath/nutriplan/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, *testingutil.MockSettings, *events.Bus) {
	repo := newTestRepository(t)
	seedFoods(t, repo)

	log := zerolog.New(nil).Level(zerolog.Disabled)
	bus := events.NewBus(log)
	mock := testingutil.NewMockSettings()
	return NewService(repo, mock, events.NewManager(bus, log), log), mock, bus
}

func TestService_ScoredScenario(t *testing.T) {
	s, _, _ := newTestService(t)

	scored, err := s.Scored(context.Background())
	require.NoError(t, err)
	require.Len(t, scored.Foods, 4)
	assert.Empty(t, scored.Warnings)

	byID := make(map[string]domain.ScoredFood)
	for _, f := range scored.Foods {
		byID[f.Food.ID] = f
	}
	// Foul yields 30 kcal per unit, Koshary 18
	assert.Less(t, byID["foul"].Rank, byID["koshary"].Rank)
	assert.True(t, byID["grilled-chicken"].HasBadge(domain.BadgeHighProtein))
	assert.False(t, byID["foul"].HasBadge(domain.BadgeHighProtein))
	assert.False(t, byID["koshary"].HasBadge(domain.BadgeHighProtein))
}

func TestService_Nutrition(t *testing.T) {
	s, _, _ := newTestService(t)

	scaled, err := s.Nutrition(context.Background(), "koshary", domain.SourceCatalog, 600)
	require.NoError(t, err)
	assert.InDelta(t, 900, scaled.Calories, 1e-9)
	assert.InDelta(t, 24, scaled.ProteinG, 1e-9)
	assert.InDelta(t, 50, scaled.Price, 1e-9)

	_, err = s.Nutrition(context.Background(), "koshary", domain.SourceCatalog, 0)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = s.Nutrition(context.Background(), "caviar", domain.SourceCatalog, 100)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestService_LocationMultiplier(t *testing.T) {
	s, mock, _ := newTestService(t)
	ctx := context.Background()

	mock.SetTargets(targets.Targets{LocationCategory: targets.CategoryRural, LocationMultiplier: 0.70})

	food, err := s.GetFood(ctx, "koshary", domain.SourceCatalog)
	require.NoError(t, err)
	assert.InDelta(t, 17.5, food.Price, 1e-9)

	// Custom foods keep their entered price
	custom := testingutil.NewCustomFoodFixture()
	_, err = s.SaveFood(ctx, custom)
	require.NoError(t, err)
	saved, err := s.GetFood(ctx, custom.ID, domain.SourceCustom)
	require.NoError(t, err)
	assert.Equal(t, custom.Price, saved.Price)
}

func TestService_SnapshotSeesWrites(t *testing.T) {
	s, _, bus := newTestService(t)
	ctx := context.Background()

	var changes []*events.CatalogChangedData
	bus.Subscribe(events.CatalogChanged, func(e *events.Event) {
		changes = append(changes, e.GetTypedData().(*events.CatalogChangedData))
	})

	before, err := s.Snapshot(ctx)
	require.NoError(t, err)
	again, err := s.Snapshot(ctx)
	require.NoError(t, err)
	assert.Same(t, before, again)

	require.NoError(t, s.DeleteFood(ctx, "taameya", domain.SourceCatalog))
	after, err := s.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, after.Len())
	assert.Equal(t, 4, before.Len())

	require.Len(t, changes, 1)
	assert.Equal(t, "delete", changes[0].Action)
	assert.Equal(t, "taameya", changes[0].FoodID)
}

func TestService_SaveCustomFoodGeneratesID(t *testing.T) {
	s, _, _ := newTestService(t)

	food, err := s.SaveFood(context.Background(), domain.FoodItem{
		Name:             "Lentil Soup",
		ReferenceWeightG: 300,
		Calories:         230,
		ProteinG:         15,
		CarbsG:           35,
		FatG:             3,
		Price:            12,
		Source:           domain.SourceCustom,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, food.ID)

	_, err = s.SaveFood(context.Background(), domain.FoodItem{ReferenceWeightG: 100})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestService_RecipeInSnapshot(t *testing.T) {
	s, _, _ := newTestService(t)
	ctx := context.Background()

	view, err := s.SaveRecipe(ctx, RecipeInput{
		ID:       "double-foul",
		Name:     "Double Foul",
		Servings: 2,
		Items:    []RecipeItemInput{{IngredientID: "foul", AmountG: 500}},
	})
	require.NoError(t, err)
	assert.InDelta(t, 250, view.Profile.ReferenceWeightG, 1e-9)
	assert.InDelta(t, 300, view.Profile.Calories, 1e-9)
	assert.InDelta(t, 10, view.Profile.Price, 1e-9)

	food, err := s.GetFood(ctx, "double-foul", domain.SourceRecipe)
	require.NoError(t, err)
	assert.Equal(t, "Double Foul", food.Name)
}

func TestService_PriceReviewFlow(t *testing.T) {
	s, _, bus := newTestService(t)
	ctx := context.Background()

	var reviewed []*events.PriceReviewedData
	bus.Subscribe(events.PriceReviewed, func(e *events.Event) {
		reviewed = append(reviewed, e.GetTypedData().(*events.PriceReviewedData))
	})

	_, err := s.SubmitPrice(ctx, PriceSubmission{FoodID: "foul", Price: -1})
	assert.ErrorIs(t, err, domain.ErrValidation)

	review, err := s.SubmitPrice(ctx, PriceSubmission{FoodID: "foul", Price: 40})
	require.NoError(t, err)
	assert.Equal(t, FlagSpike, review.Flag)

	unknown, err := s.SubmitPrice(ctx, PriceSubmission{FoodID: "caviar", Price: 40})
	require.NoError(t, err)
	assert.Equal(t, FlagUnknownFood, unknown.Flag)

	pending, err := s.Reviews(ctx, "")
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	_, err = s.Reviews(ctx, "archived")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = s.ResolveReview(ctx, review.ID, true)
	require.NoError(t, err)

	foul, err := s.GetFood(ctx, "foul", domain.SourceCatalog)
	require.NoError(t, err)
	assert.Equal(t, 40.0, foul.Price)

	require.Len(t, reviewed, 1)
	assert.True(t, reviewed[0].Approved)
}
