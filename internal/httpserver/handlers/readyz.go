package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/vault/internal/httpserver/deps"
	"github.com/MrSnakeDoc/vault/internal/logger"
)

const probeTimeout = 2 * time.Second

type readyzResponse struct {
	Ready   bool   `json:"ready"`
	Store   bool   `json:"store"`
	Catalog bool   `json:"catalog"`
	Error   string `json:"error,omitempty"`
}

// Readyz reports ready once the store answers and the catalog holds a snapshot.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
		defer cancel()

		resp := readyzResponse{Store: true, Catalog: d.Catalog.Loaded()}
		if err := d.Store.Ping(ctx); err != nil {
			resp.Store = false
			resp.Error = err.Error()
			d.Logger.Warn("readiness probe: store unavailable", logger.Error(err))
		}
		resp.Ready = resp.Store && resp.Catalog

		status := http.StatusOK
		if !resp.Ready {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, resp)
	}
}
