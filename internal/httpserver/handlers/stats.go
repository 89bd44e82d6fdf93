package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/checkin/internal/httpserver/deps"
	"github.com/MrSnakeDoc/checkin/internal/logger"
)

// Stats returns the per-site streaks and counters. Pure read.
func Stats(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := d.Engine.Statistics(r.Context())
		if err != nil {
			d.Logger.Error("statistics read failed", logger.Error(err))
			respondError(w, http.StatusInternalServerError, "record store unavailable")
			return
		}
		respondJSON(w, http.StatusOK, stats)
	}
}
