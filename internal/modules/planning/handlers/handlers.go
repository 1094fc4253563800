// Package handlers provides HTTP handlers for plan generation.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/aristath/nutriplan/internal/domain"
	"github.com/aristath/nutriplan/internal/modules/planning"
	"github.com/aristath/nutriplan/internal/utils"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler handles planning HTTP requests
type Handler struct {
	service *planning.Service
	log     zerolog.Logger
}

// NewHandler creates a new planning handler
func NewHandler(service *planning.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "planning").Logger(),
	}
}

// HandleGenerate handles POST /api/plans/generate
func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	var in planning.GenerateInput
	if r.ContentLength != 0 {
		if err := utils.DecodeJSON(r, &in); err != nil {
			utils.WriteError(w, err, h.log)
			return
		}
	}

	plan, err := h.service.Generate(r.Context(), in)
	if err != nil {
		utils.WriteError(w, err, h.log)
		return
	}

	status := http.StatusOK
	if plan.ID != "" {
		status = http.StatusCreated
	}
	utils.WriteData(w, status, plan, h.log)
}

// HandleList handles GET /api/plans?status=&limit=
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			utils.WriteError(w, domain.NewValidationError("limit", "must be an integer"), h.log)
			return
		}
		limit = n
	}

	plans, err := h.service.Plans(r.Context(), planning.PlanStatus(r.URL.Query().Get("status")), limit)
	if err != nil {
		utils.WriteError(w, err, h.log)
		return
	}
	utils.WriteData(w, http.StatusOK, plans, h.log)
}

// HandleGet handles GET /api/plans/{id}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	plan, err := h.service.Plan(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		utils.WriteError(w, err, h.log)
		return
	}
	utils.WriteData(w, http.StatusOK, plan, h.log)
}

// HandleApply handles POST /api/plans/{id}/apply
func (h *Handler) HandleApply(w http.ResponseWriter, r *http.Request) {
	var in planning.ApplyInput
	if r.ContentLength != 0 {
		if err := utils.DecodeJSON(r, &in); err != nil {
			utils.WriteError(w, err, h.log)
			return
		}
	}

	applied, err := h.service.Apply(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		utils.WriteError(w, err, h.log)
		return
	}
	utils.WriteData(w, http.StatusOK, applied, h.log)
}

// HandleDismiss handles POST /api/plans/{id}/dismiss
func (h *Handler) HandleDismiss(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Dismiss(r.Context(), chi.URLParam(r, "id")); err != nil {
		utils.WriteError(w, err, h.log)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
