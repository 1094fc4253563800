// Package handlers provides HTTP handlers for the food catalog.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/aristath/nutriplan/internal/domain"
	"github.com/aristath/nutriplan/internal/modules/catalog"
	"github.com/aristath/nutriplan/internal/utils"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler handles catalog HTTP requests
type Handler struct {
	service *catalog.Service
	log     zerolog.Logger
}

// NewHandler creates a new catalog handler
func NewHandler(service *catalog.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "catalog").Logger(),
	}
}

// HandleListFoods handles GET /api/foods
func (h *Handler) HandleListFoods(w http.ResponseWriter, r *http.Request) {
	foods, err := h.service.ListFoods(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		utils.WriteError(w, err, h.log)
		return
	}
	utils.WriteData(w, http.StatusOK, map[string]interface{}{
		"foods": foods,
		"count": len(foods),
	}, h.log)
}

// HandleScoredFoods handles GET /api/foods/scored
func (h *Handler) HandleScoredFoods(w http.ResponseWriter, r *http.Request) {
	scored, err := h.service.Scored(r.Context())
	if err != nil {
		utils.WriteError(w, err, h.log)
		return
	}
	utils.WriteData(w, http.StatusOK, scored, h.log)
}

// HandleFeed handles GET /api/foods/feed?category=
func (h *Handler) HandleFeed(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.Feed(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		utils.WriteError(w, err, h.log)
		return
	}
	utils.WriteData(w, http.StatusOK, items, h.log)
}

// HandleSaveFood handles POST /api/foods
func (h *Handler) HandleSaveFood(w http.ResponseWriter, r *http.Request) {
	var food domain.FoodItem
	if err := utils.DecodeJSON(r, &food); err != nil {
		utils.WriteError(w, err, h.log)
		return
	}

	saved, err := h.service.SaveFood(r.Context(), food)
	if err != nil {
		utils.WriteError(w, err, h.log)
		return
	}
	utils.WriteData(w, http.StatusCreated, saved, h.log)
}

// HandleGetFood handles GET /api/foods/{id}
func (h *Handler) HandleGetFood(w http.ResponseWriter, r *http.Request) {
	food, err := h.service.GetFood(r.Context(), chi.URLParam(r, "id"), sourceParam(r))
	if err != nil {
		utils.WriteError(w, err, h.log)
		return
	}
	utils.WriteData(w, http.StatusOK, food, h.log)
}

// HandleDeleteFood handles DELETE /api/foods/{id}
func (h *Handler) HandleDeleteFood(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteFood(r.Context(), chi.URLParam(r, "id"), sourceParam(r)); err != nil {
		utils.WriteError(w, err, h.log)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleNutrition handles GET /api/foods/{id}/nutrition?weight=
func (h *Handler) HandleNutrition(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("weight")
	weight, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		utils.WriteError(w, domain.NewValidationError("weight", "weight query parameter must be a number"), h.log)
		return
	}

	scaled, err := h.service.Nutrition(r.Context(), chi.URLParam(r, "id"), sourceParam(r), weight)
	if err != nil {
		utils.WriteError(w, err, h.log)
		return
	}
	utils.WriteData(w, http.StatusOK, scaled, h.log)
}

// HandleIntegrity handles GET /api/foods/{id}/integrity
func (h *Handler) HandleIntegrity(w http.ResponseWriter, r *http.Request) {
	integrity, err := h.service.Integrity(r.Context(), chi.URLParam(r, "id"), sourceParam(r))
	if err != nil {
		utils.WriteError(w, err, h.log)
		return
	}
	utils.WriteData(w, http.StatusOK, integrity, h.log)
}

// HandleListRecipes handles GET /api/recipes
func (h *Handler) HandleListRecipes(w http.ResponseWriter, r *http.Request) {
	recipes, err := h.service.ListRecipes(r.Context())
	if err != nil {
		utils.WriteError(w, err, h.log)
		return
	}
	utils.WriteData(w, http.StatusOK, recipes, h.log)
}

// HandleSaveRecipe handles POST /api/recipes
func (h *Handler) HandleSaveRecipe(w http.ResponseWriter, r *http.Request) {
	var in catalog.RecipeInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.WriteError(w, err, h.log)
		return
	}

	view, err := h.service.SaveRecipe(r.Context(), in)
	if err != nil {
		utils.WriteError(w, err, h.log)
		return
	}
	utils.WriteData(w, http.StatusCreated, view, h.log)
}

// HandleGetRecipe handles GET /api/recipes/{id}
func (h *Handler) HandleGetRecipe(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.GetRecipe(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		utils.WriteError(w, err, h.log)
		return
	}
	utils.WriteData(w, http.StatusOK, view, h.log)
}

// HandleDeleteRecipe handles DELETE /api/recipes/{id}
func (h *Handler) HandleDeleteRecipe(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteRecipe(r.Context(), chi.URLParam(r, "id")); err != nil {
		utils.WriteError(w, err, h.log)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleSubmitPrice handles POST /api/prices
func (h *Handler) HandleSubmitPrice(w http.ResponseWriter, r *http.Request) {
	var sub catalog.PriceSubmission
	if err := utils.DecodeJSON(r, &sub); err != nil {
		utils.WriteError(w, err, h.log)
		return
	}

	review, err := h.service.SubmitPrice(r.Context(), sub)
	if err != nil {
		utils.WriteError(w, err, h.log)
		return
	}
	utils.WriteData(w, http.StatusAccepted, review, h.log)
}

// HandleListReviews handles GET /api/prices/review?status=
func (h *Handler) HandleListReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.service.Reviews(r.Context(), catalog.ReviewStatus(r.URL.Query().Get("status")))
	if err != nil {
		utils.WriteError(w, err, h.log)
		return
	}
	utils.WriteData(w, http.StatusOK, reviews, h.log)
}

// HandleApprove handles POST /api/prices/review/{id}/approve
func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, true)
}

// HandleReject handles POST /api/prices/review/{id}/reject
func (h *Handler) HandleReject(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, false)
}

func (h *Handler) resolve(w http.ResponseWriter, r *http.Request, approve bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		utils.WriteError(w, domain.NewValidationError("id", "review id must be an integer"), h.log)
		return
	}

	review, err := h.service.ResolveReview(r.Context(), id, approve)
	if err != nil {
		utils.WriteError(w, err, h.log)
		return
	}
	utils.WriteData(w, http.StatusOK, review, h.log)
}

func sourceParam(r *http.Request) domain.Source {
	if s := r.URL.Query().Get("source"); s != "" {
		return domain.Source(s)
	}
	return domain.SourceCatalog
}
