package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aristath/nutriplan/internal/database"
	"github.com/aristath/nutriplan/internal/modules/settings"
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
	service := settings.NewService(settings.NewRepository(db.Conn(), log), nil, log)

	r := chi.NewRouter()
	NewHandler(service, log).RegisterRoutes(r)
	return r
}

func TestHandleUpdate(t *testing.T) {
	tests := []struct {
		name           string
		key            string
		body           string
		expectedStatus int
	}{
		{"valid tolerance", "plan_calorie_tolerance", `{"value": 0.15}`, http.StatusOK},
		{"valid gender", "profile_gender", `{"value": "F"}`, http.StatusOK},
		{"unknown key", "risk_tolerance", `{"value": 0.5}`, http.StatusBadRequest},
		{"out of range", "meals_per_day", `{"value": 12}`, http.StatusBadRequest},
		{"wrong type", "profile_gender", `{"value": 1}`, http.StatusBadRequest},
		{"malformed body", "daily_budget", `{"value":`, http.StatusBadRequest},
	}

	router := setupRouter(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPut, "/settings/"+tt.key, strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
		})
	}
}

func TestHandleGetAllReflectsUpdates(t *testing.T) {
	router := setupRouter(t)

	req := httptest.NewRequest(http.MethodPut, "/settings/daily_budget", strings.NewReader(`{"value": 80}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/settings/", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 80.0, body.Data["daily_budget"])
	assert.Equal(t, 0.10, body.Data["plan_calorie_tolerance"])
}

func TestHandleGetTargets(t *testing.T) {
	router := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/profile/targets", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "metro", body.Data["location_category"])
	assert.Equal(t, 50.0, body.Data["daily_budget"])
	assert.Equal(t, 3.0, body.Data["meals_per_day"])
}

func TestHandleReset(t *testing.T) {
	router := setupRouter(t)

	req := httptest.NewRequest(http.MethodPut, "/settings/meals_per_day", strings.NewReader(`{"value": 5}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodDelete, "/settings/meals_per_day", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		Data map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 3.0, body.Data["meals_per_day"])

	req = httptest.NewRequest(http.MethodDelete, "/settings/risk_tolerance", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
