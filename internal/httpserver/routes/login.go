package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/checkin/internal/httpserver/deps"
	"github.com/MrSnakeDoc/checkin/internal/httpserver/handlers"
)

func init() { Register(registerLogin) }

func registerLogin(r chi.Router, d deps.Deps) {
	r.Get("/api/login/{siteID}", handlers.Login(d))
}
