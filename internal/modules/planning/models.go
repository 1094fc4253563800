package planning

import (
	"time"

	"github.com/aristath/nutriplan/internal/domain"
)

// PlanStatus is the lifecycle state of a stored plan
type PlanStatus string

const (
	PlanPending   PlanStatus = "pending"
	PlanApplied   PlanStatus = "applied"
	PlanDismissed PlanStatus = "dismissed"
	PlanExpired   PlanStatus = "expired"
)

// Valid reports whether s is a known status
func (s PlanStatus) Valid() bool {
	switch s {
	case PlanPending, PlanApplied, PlanDismissed, PlanExpired:
		return true
	}
	return false
}

// StoredPlan is a generated plan kept in cache.db until it is applied,
// dismissed or expires
type StoredPlan struct {
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
	ExpiresAt   time.Time          `json:"expires_at"`
	Request     domain.PlanRequest `json:"request"`
	Result      domain.PlanResult  `json:"result"`
	ID          string             `json:"id"`
	Status      PlanStatus         `json:"status"`
	AppliedDate string             `json:"applied_date,omitempty"`
}

// GenerateInput is a plan request where omitted fields fall back to the profile targets
type GenerateInput struct {
	TargetCalories *int     `json:"target_calories,omitempty"`
	Budget         *float64 `json:"budget,omitempty"`
	MealCount      *int     `json:"meal_count,omitempty"`
	IncludeCustom  bool     `json:"include_custom"`
	// Strategy overrides the profile's plan_strategy for this plan
	Strategy domain.PlanStrategy `json:"strategy,omitempty"`
	// Save keeps the generated plan so it can be applied later
	Save bool `json:"save"`
}

// ApplyInput names the date a plan's meals are logged on; empty means today
type ApplyInput struct {
	Date string `json:"date"`
}

// Applied is the outcome of applying a plan
type Applied struct {
	Plan    StoredPlan           `json:"plan"`
	Entries []domain.LoggedEntry `json:"entries"`
}
