package planning

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aristath/nutriplan/internal/database"
	"github.com/aristath/nutriplan/internal/domain"
	testingutil "github.com/aristath/nutriplan/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPlanRepository(t *testing.T) *PlanRepository {
	db, cleanup := testingutil.NewTestDB(t, database.NameCache)
	t.Cleanup(cleanup)
	return NewPlanRepository(db.Conn(), zerolog.Nop())
}

func samplePlan() (domain.PlanRequest, domain.PlanResult) {
	req := domain.PlanRequest{TargetCalories: 750, Budget: 35, MealCount: 2, Strategy: domain.StrategyHighProtein}
	foul := food("foul", 250, 300, 18, 10)
	result := domain.PlanResult{
		Selections: []domain.PlanSelection{{
			Food:           foul,
			ServingWeightG: 250,
			Nutrition:      domain.ScaledNutrition{WeightG: 250, Calories: 300, ProteinG: 18, Price: 10},
			Slot:           "lunch",
			Label:          "Lunch",
		}},
		TargetCalories: 750,
		Budget:         35,
		TotalCalories:  300,
		TotalProteinG:  18,
		TotalPrice:     10,
		Strategy:       domain.StrategyHighProtein,
	}
	return req, result
}

func TestPlanRepository_CreateAndGet(t *testing.T) {
	repo := newPlanRepository(t)
	ctx := context.Background()
	req, result := samplePlan()

	created, err := repo.Create(ctx, req, result, time.Hour)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, PlanPending, created.Status)

	got, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, req, got.Request)
	assert.Equal(t, PlanPending, got.Status)
	require.Len(t, got.Result.Selections, 1)
	assert.Equal(t, "foul", got.Result.Selections[0].Food.ID)
	assert.Equal(t, 250.0, got.Result.Selections[0].ServingWeightG)
	assert.Equal(t, "Lunch", got.Result.Selections[0].Label)
	assert.InDelta(t, 10.0, got.Result.TotalPrice, 1e-9)

	_, err = repo.Get(ctx, "missing")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestPlanRepository_ListByStatus(t *testing.T) {
	repo := newPlanRepository(t)
	ctx := context.Background()
	req, result := samplePlan()

	first, err := repo.Create(ctx, req, result, time.Hour)
	require.NoError(t, err)
	second, err := repo.Create(ctx, req, result, time.Hour)
	require.NoError(t, err)
	require.NoError(t, repo.Transition(ctx, first.ID, PlanDismissed, ""))

	all, err := repo.List(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID, "newest first")

	pending, err := repo.List(ctx, PlanPending, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, second.ID, pending[0].ID)

	limited, err := repo.List(ctx, "", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestPlanRepository_Transition(t *testing.T) {
	repo := newPlanRepository(t)
	ctx := context.Background()
	req, result := samplePlan()

	plan, err := repo.Create(ctx, req, result, time.Hour)
	require.NoError(t, err)

	require.NoError(t, repo.Transition(ctx, plan.ID, PlanApplied, "2026-03-14"))
	got, err := repo.Get(ctx, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, PlanApplied, got.Status)
	assert.Equal(t, "2026-03-14", got.AppliedDate)

	err = repo.Transition(ctx, plan.ID, PlanDismissed, "")
	assert.True(t, errors.Is(err, domain.ErrValidation), "applied plans cannot change state")

	err = repo.Transition(ctx, "missing", PlanDismissed, "")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestPlanRepository_Reopen(t *testing.T) {
	repo := newPlanRepository(t)
	ctx := context.Background()
	req, result := samplePlan()

	plan, err := repo.Create(ctx, req, result, time.Hour)
	require.NoError(t, err)

	err = repo.Reopen(ctx, plan.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound), "only applied plans reopen")

	require.NoError(t, repo.Transition(ctx, plan.ID, PlanApplied, "2026-03-14"))
	require.NoError(t, repo.Reopen(ctx, plan.ID))

	got, err := repo.Get(ctx, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, PlanPending, got.Status)
	assert.Empty(t, got.AppliedDate)

	require.NoError(t, repo.Transition(ctx, plan.ID, PlanApplied, "2026-03-15"))
}

func TestPlanRepository_Expiry(t *testing.T) {
	repo := newPlanRepository(t)
	ctx := context.Background()
	req, result := samplePlan()

	stale, err := repo.Create(ctx, req, result, -time.Hour)
	require.NoError(t, err)
	fresh, err := repo.Create(ctx, req, result, time.Hour)
	require.NoError(t, err)

	err = repo.Transition(ctx, stale.ID, PlanApplied, "2026-03-14")
	assert.True(t, errors.Is(err, domain.ErrValidation), "expired plans cannot be applied")

	expired, err := repo.ExpirePending(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), expired)

	got, err := repo.Get(ctx, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, PlanExpired, got.Status)

	got, err = repo.Get(ctx, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, PlanPending, got.Status)
}

func TestPlanRepository_DeleteOlderThan(t *testing.T) {
	repo := newPlanRepository(t)
	ctx := context.Background()
	req, result := samplePlan()

	_, err := repo.Create(ctx, req, result, time.Hour)
	require.NoError(t, err)

	deleted, err := repo.DeleteOlderThan(ctx, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(0), deleted)

	deleted, err = repo.DeleteOlderThan(ctx, -time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}
