// Package handlers provides HTTP handlers for the food journal.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/aristath/nutriplan/internal/domain"
	"github.com/aristath/nutriplan/internal/modules/journal"
	"github.com/aristath/nutriplan/internal/utils"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler handles journal HTTP requests
type Handler struct {
	service *journal.Service
	log     zerolog.Logger
}

// NewHandler creates a new journal handler
func NewHandler(service *journal.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "journal").Logger(),
	}
}

// HandleLogEntry handles POST /api/entries
func (h *Handler) HandleLogEntry(w http.ResponseWriter, r *http.Request) {
	var in journal.EntryInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.WriteError(w, err, h.log)
		return
	}

	entry, err := h.service.LogEntry(r.Context(), in)
	if err != nil {
		utils.WriteError(w, err, h.log)
		return
	}
	utils.WriteData(w, http.StatusCreated, entry, h.log)
}

// HandleDeleteEntry handles DELETE /api/entries/{id}
func (h *Handler) HandleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteEntry(r.Context(), chi.URLParam(r, "id")); err != nil {
		utils.WriteError(w, err, h.log)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleAmendEntry handles POST /api/entries/{id}/amend
func (h *Handler) HandleAmendEntry(w http.ResponseWriter, r *http.Request) {
	var in journal.EntryInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.WriteError(w, err, h.log)
		return
	}

	entry, err := h.service.AmendEntry(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		utils.WriteError(w, err, h.log)
		return
	}
	utils.WriteData(w, http.StatusCreated, entry, h.log)
}

// HandleHistory handles GET /api/entries/history?limit=
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit")
	if err != nil {
		utils.WriteError(w, err, h.log)
		return
	}

	items, err := h.service.History(r.Context(), limit)
	if err != nil {
		utils.WriteError(w, err, h.log)
		return
	}
	utils.WriteData(w, http.StatusOK, items, h.log)
}

// HandleGetDay handles GET /api/days/{date}
func (h *Handler) HandleGetDay(w http.ResponseWriter, r *http.Request) {
	record, err := h.service.Day(r.Context(), chi.URLParam(r, "date"))
	if err != nil {
		utils.WriteError(w, err, h.log)
		return
	}
	utils.WriteData(w, http.StatusOK, record, h.log)
}

// HandleDayEntries handles GET /api/days/{date}/entries
func (h *Handler) HandleDayEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.Entries(r.Context(), chi.URLParam(r, "date"))
	if err != nil {
		utils.WriteError(w, err, h.log)
		return
	}
	if entries == nil {
		entries = []domain.LoggedEntry{}
	}
	utils.WriteData(w, http.StatusOK, entries, h.log)
}

// HandleToggleDay handles POST /api/days/{date}/toggle
func (h *Handler) HandleToggleDay(w http.ResponseWriter, r *http.Request) {
	record, err := h.service.ToggleDay(r.Context(), chi.URLParam(r, "date"))
	if err != nil {
		utils.WriteError(w, err, h.log)
		return
	}
	utils.WriteData(w, http.StatusOK, record, h.log)
}

// HandleTimeline handles GET /api/timeline?start=&end=
func (h *Handler) HandleTimeline(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	days, err := h.service.Timeline(r.Context(), q.Get("start"), q.Get("end"))
	if err != nil {
		utils.WriteError(w, err, h.log)
		return
	}
	utils.WriteData(w, http.StatusOK, days, h.log)
}

// HandleFinancial handles GET /api/analytics/financial?days=
func (h *Handler) HandleFinancial(w http.ResponseWriter, r *http.Request) {
	days, err := intParam(r, "days")
	if err != nil {
		utils.WriteError(w, err, h.log)
		return
	}

	report, err := h.service.FinancialReport(r.Context(), days)
	if err != nil {
		utils.WriteError(w, err, h.log)
		return
	}
	utils.WriteData(w, http.StatusOK, report, h.log)
}

// intParam parses an optional integer query parameter, 0 when absent
func intParam(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.NewValidationError(name, "must be an integer")
	}
	return v, nil
}
