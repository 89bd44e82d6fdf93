package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/checkin/internal/httpserver/deps"
)

// Login probes a site's credential without checking in.
func Login(d deps.Deps) http.HandlerFunc {
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

		status := d.Engine.CheckLoginStatus(r.Context(), siteID, credential)
		respondJSON(w, http.StatusOK, status)
	}
}
