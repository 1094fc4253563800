package server

import (
	"net/http"

	"github.com/aristath/nutriplan/internal/di"
	"github.com/aristath/nutriplan/internal/utils"
)

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"version": di.Version,
		"service": "nutriplan",
	}, s.log)
}
