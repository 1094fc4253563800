package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation matches every input validation failure via errors.Is
	ErrValidation = errors.New("validation failed")
	// ErrInfeasiblePlan matches every infeasible planning outcome via errors.Is
	ErrInfeasiblePlan = errors.New("infeasible plan")
	// ErrNotFound is returned by providers when a referenced record does not exist
	ErrNotFound = errors.New("not found")
)

// ValidationError is a malformed or out-of-range input.
// It is raised before any algorithmic work begins.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError creates a ValidationError for the given field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Is makes errors.Is(err, ErrValidation) true
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// InvalidServingError is a non-positive (or non-finite) serving weight or quantity
type InvalidServingError struct {
	FoodID  string
	WeightG float64
}

func (e *InvalidServingError) Error() string {
	if e.FoodID == "" {
		return fmt.Sprintf("invalid serving: weight must be positive, got %v", e.WeightG)
	}
	return fmt.Sprintf("invalid serving for %s: weight must be positive, got %v", e.FoodID, e.WeightG)
}

// Is makes an InvalidServingError also a validation error
func (e *InvalidServingError) Is(target error) bool {
	return target == ErrValidation
}

// Constraint names the planning constraint that could not be met
type Constraint string

const (
	ConstraintCalories Constraint = "calories"
	ConstraintBudget   Constraint = "budget"
)

// InfeasiblePlanError is the expected, reportable outcome when no selection fits
// the calorie target and budget. It is never a transport or storage failure.
type InfeasiblePlanError struct {
	Constraint Constraint
	Reason     string
	Target     float64
	Achieved   float64
}

func (e *InfeasiblePlanError) Error() string {
	return fmt.Sprintf("infeasible plan: %s constraint not met: %s (target %.2f, achieved %.2f)",
		e.Constraint, e.Reason, e.Target, e.Achieved)
}

// Is makes errors.Is(err, ErrInfeasiblePlan) true
func (e *InfeasiblePlanError) Is(target error) bool {
	return target == ErrInfeasiblePlan
}
