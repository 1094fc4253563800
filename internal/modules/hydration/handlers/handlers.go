// Package handlers provides HTTP handlers for hydration tracking.
package handlers

import (
	"net/http"

	"github.com/aristath/nutriplan/internal/domain"
	"github.com/aristath/nutriplan/internal/modules/hydration"
	"github.com/aristath/nutriplan/internal/utils"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler handles hydration HTTP requests
type Handler struct {
	service *hydration.Service
	log     zerolog.Logger
}

// NewHandler creates a new hydration handler
func NewHandler(service *hydration.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "hydration").Logger(),
	}
}

// RegisterRoutes registers hydration routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/water", func(r chi.Router) {
		r.Post("/increment", h.HandleIncrement)
		r.Get("/stats", h.HandleStats)
		r.Get("/history", h.HandleHistory)
		r.Post("/achievements/seen", h.HandleMarkSeen)
	})
}

// HandleIncrement handles POST /api/water/increment
func (h *Handler) HandleIncrement(w http.ResponseWriter, r *http.Request) {
	progress, err := h.service.Increment(r.Context())
	if err != nil {
		utils.WriteError(w, err, h.log)
		return
	}
	utils.WriteData(w, http.StatusOK, progress, h.log)
}

// HandleStats handles GET /api/water/stats
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		utils.WriteError(w, err, h.log)
		return
	}
	utils.WriteData(w, http.StatusOK, stats, h.log)
}

// HandleHistory handles GET /api/water/history?start=&end=
// Without a range it returns the trailing 30 days.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	end := r.URL.Query().Get("end")
	if end == "" {
		end = utils.Today()
	}
	start := r.URL.Query().Get("start")
	if start == "" {
		var err error
		if start, err = utils.AddDays(end, -29); err != nil {
			utils.WriteError(w, domain.NewValidationError("end", err.Error()), h.log)
			return
		}
	}

	days, err := h.service.History(r.Context(), start, end)
	if err != nil {
		utils.WriteError(w, err, h.log)
		return
	}
	utils.WriteData(w, http.StatusOK, days, h.log)
}

// HandleMarkSeen handles POST /api/water/achievements/seen
func (h *Handler) HandleMarkSeen(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.MarkAchievementsSeen(r.Context())
	if err != nil {
		utils.WriteError(w, err, h.log)
		return
	}
	utils.WriteData(w, http.StatusOK, map[string]int64{"marked": n}, h.log)
}
