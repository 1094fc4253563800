package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aristath/nutriplan/internal/database"
	"github.com/aristath/nutriplan/internal/modules/catalog"
	testingutil "github.com/aristath/nutriplan/internal/testing"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T) chi.Router {
	db, cleanup := testingutil.NewTestDB(t, database.NameCatalog)
	t.Cleanup(cleanup)

	log := zerolog.New(nil).Level(zerolog.Disabled)
	repo := catalog.NewRepository(db.Conn(), log)
	for _, f := range testingutil.NewFoodFixtures() {
		require.NoError(t, repo.UpsertFood(context.Background(), f))
	}
	service := catalog.NewService(repo, testingutil.NewMockSettings(), nil, log)

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

func TestRoutes(t *testing.T) {
	router := setupRouter(t)

	tests := []struct {
		name           string
		method         string
		path           string
		body           string
		expectedStatus int
	}{
		{"list foods", http.MethodGet, "/foods/", "", http.StatusOK},
		{"search foods", http.MethodGet, "/foods/?q=kosh", "", http.StatusOK},
		{"scored", http.MethodGet, "/foods/scored", "", http.StatusOK},
		{"feed", http.MethodGet, "/foods/feed", "", http.StatusOK},
		{"feed by category", http.MethodGet, "/foods/feed?category=breakfast", "", http.StatusOK},
		{"feed unknown category", http.MethodGet, "/foods/feed?category=brunch", "", http.StatusBadRequest},
		{"get food", http.MethodGet, "/foods/foul", "", http.StatusOK},
		{"missing food", http.MethodGet, "/foods/caviar", "", http.StatusNotFound},
		{"nutrition", http.MethodGet, "/foods/koshary/nutrition?weight=600", "", http.StatusOK},
		{"nutrition bad weight", http.MethodGet, "/foods/koshary/nutrition?weight=abc", "", http.StatusBadRequest},
		{"nutrition zero weight", http.MethodGet, "/foods/koshary/nutrition?weight=0", "", http.StatusBadRequest},
		{"integrity", http.MethodGet, "/foods/koshary/integrity", "", http.StatusOK},
		{"invalid food", http.MethodPost, "/foods/", `{"id":"x","name":"X","reference_weight_g":-1}`, http.StatusBadRequest},
		{"unknown field", http.MethodPost, "/foods/", `{"id":"x","colour":"red"}`, http.StatusBadRequest},
		{"list recipes", http.MethodGet, "/recipes/", "", http.StatusOK},
		{"missing recipe", http.MethodGet, "/recipes/none", "", http.StatusNotFound},
		{"pending reviews", http.MethodGet, "/prices/review", "", http.StatusOK},
		{"bad review id", http.MethodPost, "/prices/review/abc/approve", "", http.StatusBadRequest},
		{"missing review", http.MethodPost, "/prices/review/42/approve", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(router, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
		})
	}
}

func TestHandleFeed_Body(t *testing.T) {
	router := setupRouter(t)

	w := do(router, http.MethodGet, "/foods/feed?category=dinner", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		Data []catalog.FeedItem `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	ids := make([]string, len(body.Data))
	for i, item := range body.Data {
		ids[i] = item.Food.ID
	}
	// Lunch foods are served for dinner too; 18 kcal per unit beats 4.7
	assert.Equal(t, []string{"koshary", "grilled-chicken"}, ids)
}

func TestHandleNutrition_Body(t *testing.T) {
	router := setupRouter(t)

	w := do(router, http.MethodGet, "/foods/koshary/nutrition?weight=600", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data map[string]float64 `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.InDelta(t, 900, body.Data["calories"], 1e-9)
	assert.InDelta(t, 24, body.Data["protein_g"], 1e-9)
	assert.InDelta(t, 50, body.Data["price"], 1e-9)
}

func TestPriceReviewEndpoints(t *testing.T) {
	router := setupRouter(t)

	w := do(router, http.MethodPost, "/prices/", `{"food_id":"foul","price":11,"vendor":"Gad"}`)
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())

	var submitted struct {
		Data catalog.PriceReview `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &submitted))
	assert.Equal(t, catalog.ReviewPending, submitted.Data.Status)

	w = do(router, http.MethodPost, "/prices/review/1/approve", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(router, http.MethodPost, "/prices/review/1/reject", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(router, http.MethodGet, "/foods/foul", "")
	var food struct {
		Data map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &food))
	assert.Equal(t, 11.0, food.Data["price"])
}

func TestRegisterRoutes_NoPanic(t *testing.T) {
	h := NewHandler(nil, zerolog.Nop())
	assert.NotPanics(t, func() {
		h.RegisterRoutes(chi.NewRouter())
	})
}
