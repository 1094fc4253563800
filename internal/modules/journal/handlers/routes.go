package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers journal routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/entries", func(r chi.Router) {
		r.Post("/", h.HandleLogEntry)
		r.Get("/history", h.HandleHistory)
		r.Delete("/{id}", h.HandleDeleteEntry)
		r.Post("/{id}/amend", h.HandleAmendEntry)
	})

	r.Route("/days/{date}", func(r chi.Router) {
		r.Get("/", h.HandleGetDay)
		r.Get("/entries", h.HandleDayEntries)
		r.Post("/toggle", h.HandleToggleDay)
	})

	r.Get("/timeline", h.HandleTimeline)
	r.Get("/analytics/financial", h.HandleFinancial)
}
