package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aristath/nutriplan/internal/database"
	"github.com/aristath/nutriplan/internal/modules/weight"
	testingutil "github.com/aristath/nutriplan/internal/testing"
	"github.com/aristath/nutriplan/internal/utils"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func setupRouter(t *testing.T) chi.Router {
	db, cleanup := testingutil.NewTestDB(t, database.NameJournal)
	t.Cleanup(cleanup)

	log := zerolog.New(nil).Level(zerolog.Disabled)
	service := weight.NewService(weight.NewRepository(db.Conn(), log), testingutil.NewMockSettings(), nil, log)

	r := chi.NewRouter()
	NewHandler(service, log).RegisterRoutes(r)
	return r
}

func TestRoutes(t *testing.T) {
	router := setupRouter(t)
	today := utils.Today()

	tests := []struct {
		name           string
		method         string
		path           string
		body           string
		expectedStatus int
	}{
		{"log", http.MethodPost, "/weight/", `{"weight_kg":70.5}`, http.StatusCreated},
		{"log dated", http.MethodPost, "/weight/", `{"date":"2026-01-01","weight_kg":71}`, http.StatusCreated},
		{"log invalid", http.MethodPost, "/weight/", `{"weight_kg":5}`, http.StatusBadRequest},
		{"log malformed", http.MethodPost, "/weight/", `{"weight":70}`, http.StatusBadRequest},
		{"history", http.MethodGet, "/weight/?days=30", "", http.StatusOK},
		{"history bad days", http.MethodGet, "/weight/?days=month", "", http.StatusBadRequest},
		{"delete", http.MethodDelete, "/weight/" + today, "", http.StatusNoContent},
		{"delete missing", http.MethodDelete, "/weight/" + today, "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body *strings.Reader
			if tt.body != "" {
				body = strings.NewReader(tt.body)
			}
			var req *http.Request
			if body != nil {
				req = httptest.NewRequest(tt.method, tt.path, body)
			} else {
				req = httptest.NewRequest(tt.method, tt.path, nil)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
		})
	}
}

func TestRegisterRoutes_NoPanic(t *testing.T) {
	h := NewHandler(nil, zerolog.Nop())
	assert.NotPanics(t, func() {
		h.RegisterRoutes(chi.NewRouter())
	})
}
