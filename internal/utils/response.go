package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/aristath/nutriplan/internal/domain"
	"github.com/rs/zerolog"
)

// WriteJSON writes data as JSON with the given status
func WriteJSON(w http.ResponseWriter, status int, data interface{}, log zerolog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// WriteData writes the standard {"data": ..., "metadata": {...}} envelope
func WriteData(w http.ResponseWriter, status int, data interface{}, log zerolog.Logger) {
	WriteJSON(w, status, map[string]interface{}{
		"data": data,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}, log)
}

// WriteError maps an error to its HTTP status and error body.
// Validation errors are 400, infeasible plans 422, missing records 404,
// anything else 500 with the detail only logged.
func WriteError(w http.ResponseWriter, err error, log zerolog.Logger) {
	var infeasible *domain.InfeasiblePlanError
	var validation *domain.ValidationError

	switch {
	case errors.As(err, &infeasible):
		WriteJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error":      "infeasible_plan",
			"constraint": infeasible.Constraint,
			"message":    infeasible.Reason,
			"target":     infeasible.Target,
			"achieved":   infeasible.Achieved,
		}, log)
	case errors.As(err, &validation):
		WriteJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":   "invalid_input",
			"field":   validation.Field,
			"message": validation.Error(),
		}, log)
	case errors.Is(err, domain.ErrValidation):
		WriteJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":   "invalid_input",
			"message": err.Error(),
		}, log)
	case errors.Is(err, domain.ErrNotFound):
		WriteJSON(w, http.StatusNotFound, map[string]interface{}{
			"error":   "not_found",
			"message": err.Error(),
		}, log)
	default:
		log.Error().Err(err).Msg("Request failed")
		WriteJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"error": "internal_error",
		}, log)
	}
}

// DecodeJSON decodes a request body into dst, returning a validation error on malformed input
func DecodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return domain.NewValidationError("body", "invalid request body: "+err.Error())
	}
	return nil
}
