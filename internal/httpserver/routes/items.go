package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/vault/internal/httpserver/deps"
	"github.com/MrSnakeDoc/vault/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/vault/internal/httpserver/mw"
)

func init() { Register(registerItems) }

func registerItems(r chi.Router, d deps.Deps) {
	// One limiter shared by every mutation so the budget is per client, not per route.
	limit := mw.RateLimit(mw.RateLimitConfig{
		PerSecond:  d.RateLimit,
		Burst:      d.RateBurst,
		TrustProxy: d.TrustProxy,
	})

	r.Route("/api/items", func(r chi.Router) {
		r.Get("/", handlers.ListItems(d))
		r.Get("/{id}", handlers.GetItem(d))

		r.Group(func(r chi.Router) {
			r.Use(limit)
			r.Post("/", handlers.CreateItem(d))
			r.Patch("/{id}", handlers.UpdateItem(d))
			r.Delete("/{id}", handlers.DeleteItem(d))
		})
	})
}
