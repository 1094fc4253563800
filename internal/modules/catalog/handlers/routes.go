package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers catalog routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/foods", func(r chi.Router) {
		r.Get("/", h.HandleListFoods)
		r.Post("/", h.HandleSaveFood)
		r.Get("/scored", h.HandleScoredFoods)
		r.Get("/feed", h.HandleFeed)
		r.Get("/{id}", h.HandleGetFood)
		r.Delete("/{id}", h.HandleDeleteFood)
		r.Get("/{id}/nutrition", h.HandleNutrition)
		r.Get("/{id}/integrity", h.HandleIntegrity)
	})

	r.Route("/recipes", func(r chi.Router) {
		r.Get("/", h.HandleListRecipes)
		r.Post("/", h.HandleSaveRecipe)
		r.Get("/{id}", h.HandleGetRecipe)
		r.Delete("/{id}", h.HandleDeleteRecipe)
	})

	r.Route("/prices", func(r chi.Router) {
		r.Post("/", h.HandleSubmitPrice)
		r.Get("/review", h.HandleListReviews)
		r.Post("/review/{id}/approve", h.HandleApprove)
		r.Post("/review/{id}/reject", h.HandleReject)
	})
}
