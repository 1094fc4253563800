// Package handlers provides HTTP handlers for the weight log.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/aristath/nutriplan/internal/domain"
	"github.com/aristath/nutriplan/internal/modules/weight"
	"github.com/aristath/nutriplan/internal/utils"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler handles weight HTTP requests
type Handler struct {
	service *weight.Service
	log     zerolog.Logger
}

// NewHandler creates a new weight handler
func NewHandler(service *weight.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "weight").Logger(),
	}
}

// RegisterRoutes registers weight routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/weight", func(r chi.Router) {
		r.Get("/", h.HandleHistory)
		r.Post("/", h.HandleLog)
		r.Delete("/{date}", h.HandleDelete)
	})
}

// HandleLog handles POST /api/weight
func (h *Handler) HandleLog(w http.ResponseWriter, r *http.Request) {
	var in weight.Input
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.WriteError(w, err, h.log)
		return
	}

	entry, err := h.service.Log(r.Context(), in)
	if err != nil {
		utils.WriteError(w, err, h.log)
		return
	}
	utils.WriteData(w, http.StatusCreated, entry, h.log)
}

// HandleHistory handles GET /api/weight?days=
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	days := 0
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			utils.WriteError(w, domain.NewValidationError("days", "must be an integer"), h.log)
			return
		}
		days = n
	}

	history, err := h.service.History(r.Context(), days)
	if err != nil {
		utils.WriteError(w, err, h.log)
		return
	}
	utils.WriteData(w, http.StatusOK, history, h.log)
}

// HandleDelete handles DELETE /api/weight/{date}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "date")); err != nil {
		utils.WriteError(w, err, h.log)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
