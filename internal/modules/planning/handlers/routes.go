package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers planning routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/plans", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Post("/generate", h.HandleGenerate)
		r.Get("/{id}", h.HandleGet)
		r.Post("/{id}/apply", h.HandleApply)
		r.Post("/{id}/dismiss", h.HandleDismiss)
	})
}
