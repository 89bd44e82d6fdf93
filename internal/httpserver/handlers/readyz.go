package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/checkin/internal/httpserver/deps"
	"github.com/MrSnakeDoc/checkin/internal/logger"
)

type readyzResponse struct {
	Ready bool `json:"ready"`
}

// Readyz reports readiness: the record store must answer.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := d.Backend.Get(r.Context(), "readyz_probe"); err != nil {
			d.Logger.Warn("readiness probe failed", logger.Error(err))
			respondJSON(w, http.StatusServiceUnavailable, readyzResponse{Ready: false})
			return
		}
		respondJSON(w, http.StatusOK, readyzResponse{Ready: true})
	}
}
