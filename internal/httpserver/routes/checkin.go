package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/checkin/internal/httpserver/deps"
	"github.com/MrSnakeDoc/checkin/internal/httpserver/handlers"
)

func init() { Register(registerCheckin) }

func registerCheckin(r chi.Router, d deps.Deps) {
	r.Post("/api/checkin", handlers.CheckinAll(d))
	r.Post("/api/checkin/{siteID}", handlers.CheckinSite(d))
}
