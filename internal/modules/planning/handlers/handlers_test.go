package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aristath/nutriplan/internal/database"
	"github.com/aristath/nutriplan/internal/domain"
	"github.com/aristath/nutriplan/internal/modules/catalog"
	"github.com/aristath/nutriplan/internal/modules/journal"
	"github.com/aristath/nutriplan/internal/modules/planning"
	"github.com/aristath/nutriplan/internal/modules/scoring"
	"github.com/aristath/nutriplan/internal/modules/targets"
	testingutil "github.com/aristath/nutriplan/internal/testing"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticScored struct{}

func (staticScored) Scored(ctx context.Context) (catalog.ScoredCatalog, error) {
	result := scoring.ScoreCatalog(testingutil.NewFoodFixtures(), scoring.DefaultConfig())
	return catalog.ScoredCatalog{Foods: result.Foods, Version: 1}, nil
}

type nopJournal struct{}

func (nopJournal) LogEntries(ctx context.Context, ins []journal.EntryInput) ([]domain.LoggedEntry, error) {
	out := make([]domain.LoggedEntry, len(ins))
	for i, in := range ins {
		out[i] = domain.LoggedEntry{ID: in.FoodID, Date: in.Date, FoodID: in.FoodID, Quantity: in.Quantity}
	}
	return out, nil
}

func setupRouter(t *testing.T) chi.Router {
	db, cleanup := testingutil.NewTestDB(t, database.NameCache)
	t.Cleanup(cleanup)

	log := zerolog.New(nil).Level(zerolog.Disabled)
	settings := testingutil.NewMockSettings()
	settings.SetTargets(targets.Targets{
		LocationCategory:   targets.CategoryMetro,
		LocationMultiplier: 1,
		CalorieGoal:        1100,
		DailyBudget:        60,
		MealsPerDay:        3,
	})
	service := planning.NewService(
		staticScored{},
		settings,
		planning.NewPlanRepository(db.Conn(), log),
		nopJournal{},
		nil,
		log,
	)

	r := chi.NewRouter()
	NewHandler(service, log).RegisterRoutes(r)
	return r
}

func do(router chi.Router, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandleGenerate(t *testing.T) {
	router := setupRouter(t)

	tests := []struct {
		name           string
		body           string
		expectedStatus int
		expectedError  string
	}{
		{"profile defaults", "", http.StatusOK, ""},
		{"explicit request", `{"target_calories":1100,"budget":60,"meal_count":3}`, http.StatusOK, ""},
		{"saved", `{"target_calories":1100,"budget":60,"meal_count":3,"save":true}`, http.StatusCreated, ""},
		{"invalid meal count", `{"meal_count":0}`, http.StatusBadRequest, "invalid_input"},
		{"unknown field", `{"calories":1500}`, http.StatusBadRequest, "invalid_input"},
		{"unknown strategy", `{"strategy":"variety"}`, http.StatusBadRequest, "invalid_input"},
		{"explicit strategy", `{"strategy":"high_protein"}`, http.StatusOK, ""},
		{"budget too small", `{"target_calories":1100,"budget":5,"meal_count":3}`, http.StatusUnprocessableEntity, "infeasible_plan"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(router, http.MethodPost, "/plans/generate", tt.body)
			assert.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
			if tt.expectedError != "" {
				var body map[string]interface{}
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				assert.Equal(t, tt.expectedError, body["error"])
			}
		})
	}
}

func TestPlanLifecycle(t *testing.T) {
	router := setupRouter(t)

	w := do(router, http.MethodPost, "/plans/generate", `{"target_calories":1100,"budget":60,"meal_count":3,"save":true}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		Data planning.StoredPlan `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	id := created.Data.ID
	require.NotEmpty(t, id)

	w = do(router, http.MethodGet, "/plans/?status=pending", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Data []planning.StoredPlan `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Data, 1)

	w = do(router, http.MethodGet, "/plans/"+id, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(router, http.MethodPost, "/plans/"+id+"/apply", `{"date":"2026-03-14"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var applied struct {
		Data planning.Applied `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &applied))
	assert.Equal(t, planning.PlanApplied, applied.Data.Plan.Status)
	assert.Len(t, applied.Data.Entries, 3)

	w = do(router, http.MethodPost, "/plans/"+id+"/apply", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(router, http.MethodPost, "/plans/"+id+"/dismiss", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(router, http.MethodPost, "/plans/missing/dismiss", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(router, http.MethodGet, "/plans/?limit=abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegisterRoutes_NoPanic(t *testing.T) {
	h := NewHandler(nil, zerolog.Nop())
	assert.NotPanics(t, func() {
		h.RegisterRoutes(chi.NewRouter())
	})
}
