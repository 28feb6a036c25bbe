package routes

import (
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MrSnakeDoc/vault/internal/httpserver/deps"
	"github.com/MrSnakeDoc/vault/internal/httpserver/handlers"
)

func init() {
	Register(registerStatus, allowedCIDRS, allowedHosts)
	Register(registerMetrics, allowedCIDRS)
}

func registerStatus(r chi.Router, d deps.Deps) {
	r.Get("/status", handlers.Status(d))
}

func registerMetrics(r chi.Router, _ deps.Deps) {
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
}
