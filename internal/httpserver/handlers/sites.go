package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/checkin/internal/httpserver/deps"
	"github.com/MrSnakeDoc/checkin/internal/logger"
	"github.com/MrSnakeDoc/checkin/internal/store"
)

// Sites lists the registered connectors and their enabled flags.
func Sites(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, d.Engine.ListSites())
	}
}

type setEnabledRequest struct {
	Enabled *bool `json:"enabled"`
}

// SetSiteEnabled flips a site's enabled flag and persists the choice so
// it survives restarts.
func SetSiteEnabled(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		siteID := chi.URLParam(r, "siteID")

		var req setEnabledRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Enabled == nil {
			respondError(w, http.StatusBadRequest, "body must be {\"enabled\": true|false}")
			return
		}

		if !d.Engine.SetEnabled(siteID, *req.Enabled) {
			respondError(w, http.StatusNotFound, "site not found")
			return
		}

		if err := store.SetDisabled(r.Context(), d.Backend, siteID, !*req.Enabled); err != nil {
			d.Logger.Error("persist site flag failed",
				logger.String("site", siteID),
				logger.Error(err))
			respondError(w, http.StatusInternalServerError, "flag updated but not persisted")
			return
		}

		respondJSON(w, http.StatusOK, map[string]any{"id": siteID, "enabled": *req.Enabled})
	}
}
