// Package handlers provides HTTP handlers for settings and profile targets.
package handlers

import (
	"net/http"

	"github.com/aristath/nutriplan/internal/domain"
	"github.com/aristath/nutriplan/internal/modules/settings"
	"github.com/aristath/nutriplan/internal/utils"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler provides HTTP handlers for settings endpoints
type Handler struct {
	service *settings.Service
	log     zerolog.Logger
}

// NewHandler creates a new settings handler
func NewHandler(service *settings.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "settings").Logger(),
	}
}

// RegisterRoutes registers settings routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/settings", func(r chi.Router) {
		r.Get("/", h.HandleGetAll)
		r.Get("/descriptions", h.HandleGetDescriptions)
		r.Put("/{key}", h.HandleUpdate)
		r.Delete("/{key}", h.HandleReset)
	})
	r.Route("/profile", func(r chi.Router) {
		r.Get("/", h.HandleGetProfile)
		r.Get("/targets", h.HandleGetTargets)
	})
}

// HandleGetAll handles GET /api/settings
func (h *Handler) HandleGetAll(w http.ResponseWriter, r *http.Request) {
	all, err := h.service.GetAll()
	if err != nil {
		utils.WriteError(w, err, h.log)
		return
	}
	utils.WriteData(w, http.StatusOK, all, h.log)
}

// HandleGetDescriptions handles GET /api/settings/descriptions
func (h *Handler) HandleGetDescriptions(w http.ResponseWriter, r *http.Request) {
	utils.WriteData(w, http.StatusOK, settings.SettingDescriptions, h.log)
}

// HandleUpdate handles PUT /api/settings/{key}
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if key == "" {
		utils.WriteError(w, domain.NewValidationError("key", "key is required"), h.log)
		return
	}

	var update settings.SettingUpdate
	if err := utils.DecodeJSON(r, &update); err != nil {
		utils.WriteError(w, err, h.log)
		return
	}

	value, err := h.service.Set(key, update.Value)
	if err != nil {
		h.log.Warn().Err(err).Str("key", key).Interface("value", update.Value).Msg("Failed to update setting")
		utils.WriteError(w, err, h.log)
		return
	}

	utils.WriteData(w, http.StatusOK, map[string]interface{}{key: value}, h.log)
}

// HandleReset handles DELETE /api/settings/{key}
func (h *Handler) HandleReset(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	value, err := h.service.Reset(key)
	if err != nil {
		utils.WriteError(w, err, h.log)
		return
	}
	utils.WriteData(w, http.StatusOK, map[string]interface{}{key: value}, h.log)
}

// HandleGetProfile handles GET /api/profile
func (h *Handler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	utils.WriteData(w, http.StatusOK, h.service.Profile(), h.log)
}

// HandleGetTargets handles GET /api/profile/targets
func (h *Handler) HandleGetTargets(w http.ResponseWriter, r *http.Request) {
	utils.WriteData(w, http.StatusOK, h.service.Targets(), h.log)
}
