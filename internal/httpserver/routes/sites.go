package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/checkin/internal/httpserver/deps"
	"github.com/MrSnakeDoc/checkin/internal/httpserver/handlers"
)

func init() { Register(registerSites) }

func registerSites(r chi.Router, d deps.Deps) {
	r.Get("/api/sites", handlers.Sites(d))
	r.Patch("/api/sites/{siteID}", handlers.SetSiteEnabled(d))
}
