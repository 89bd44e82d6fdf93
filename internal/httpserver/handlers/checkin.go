package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/checkin/internal/engine"
	"github.com/MrSnakeDoc/checkin/internal/httpserver/deps"
	"github.com/MrSnakeDoc/checkin/internal/logger"
)

// CheckinSite triggers the daily check-in for one site.
func CheckinSite(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		siteID := chi.URLParam(r, "siteID")

		if !d.Engine.HasSite(siteID) {
			respondError(w, http.StatusNotFound, "site not found")
			return
		}

		credential, ok := d.Credentials[siteID]
		if !ok {
			respondError(w, http.StatusBadRequest, "no credential configured for site")
			return
		}

		result, err := d.Engine.CheckinSite(r.Context(), siteID, credential)
		if err != nil {
			d.Logger.Error("check-in persistence failed",
				logger.String("site", siteID),
				logger.Error(err))
			respondError(w, http.StatusInternalServerError, "record store unavailable")
			return
		}

		respondJSON(w, http.StatusOK, result)
	}
}

// CheckinAll triggers a batch run over every enabled, credentialed site
// and returns the report. Concurrent triggers are rejected.
func CheckinAll(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, err := d.Engine.CheckinAll(r.Context(), d.Credentials)
		if err != nil {
			if errors.Is(err, engine.ErrBatchRunning) {
				respondError(w, http.StatusConflict, err.Error())
				return
			}
			d.Logger.Error("batch check-in failed", logger.Error(err))
			respondError(w, http.StatusInternalServerError, "record store unavailable")
			return
		}
		respondJSON(w, http.StatusOK, report)
	}
}
