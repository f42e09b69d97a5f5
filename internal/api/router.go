package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(app *App) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/ping", PingHandler)
	r.Post("/analyze", app.AnalyzeHandler)
	r.Post("/footages", app.FootagesHandler)
	r.Post("/api/add-footage", app.AddFootageHandler)
	r.Post("/conversation", app.ConversationHandler)

	return r
}
