// Package catalog stores the foods and recipes the planner and journal draw from.
package catalog

import (
	"time"

	"github.com/aristath/nutriplan/internal/domain"
)

// ReviewStatus is the state of a submitted price
type ReviewStatus string

const (
	ReviewPending  ReviewStatus = "pending"
	ReviewApproved ReviewStatus = "approved"
	ReviewRejected ReviewStatus = "rejected"
)

// PriceSubmission is a price observed at a vendor, waiting to be reviewed
type PriceSubmission struct {
	FoodID string  `json:"food_id"`
	Vendor string  `json:"vendor"`
	Price  float64 `json:"price"`
}

// PriceReview is a queued price submission.
// Flag is set by the price validator when the submitted price looks abnormal.
type PriceReview struct {
	SubmittedAt  time.Time    `json:"submitted_at"`
	ReviewedAt   *time.Time   `json:"reviewed_at,omitempty"`
	FoodID       string       `json:"food_id"`
	Vendor       string       `json:"vendor"`
	Status       ReviewStatus `json:"status"`
	Flag         string       `json:"flag,omitempty"`
	ID           int64        `json:"id"`
	Price        float64      `json:"price"`
	CurrentPrice float64      `json:"current_price"`
}

// RecipeItemInput references an ingredient by id
type RecipeItemInput struct {
	IngredientID string        `json:"ingredient_id"`
	Source       domain.Source `json:"source,omitempty"`
	AmountG      float64       `json:"amount_g"`
}

// RecipeInput is a recipe as submitted by the user
type RecipeInput struct {
	ID       string            `json:"id,omitempty"`
	Name     string            `json:"name"`
	Items    []RecipeItemInput `json:"items"`
	Servings int               `json:"servings"`
}

// ScoredCatalog is the scored view of a snapshot
type ScoredCatalog struct {
	Foods    []domain.ScoredFood                 `json:"foods"`
	Warnings []domain.UndefinedEfficiencyWarning `json:"warnings"`
	Version  int64                               `json:"version"`
}
