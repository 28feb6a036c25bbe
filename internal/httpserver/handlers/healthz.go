package handlers

import (
	"net/http"
	"time"

	"github.com/MrSnakeDoc/vault/internal/httpserver/deps"
)

type healthzResponse struct {
	Service       string       `json:"service"`
	Status        string       `json:"status"`
	UptimeSeconds float64      `json:"uptime_seconds"`
	Catalog       *catalogLive `json:"catalog,omitempty"`
	Build         buildInfo    `json:"build"`
}

type catalogLive struct {
	Loaded bool `json:"loaded"`
	Items  int  `json:"items"`
}

type buildInfo struct {
	Version   string `json:"version,omitempty"`
	Commit    string `json:"commit,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
	GoVersion string `json:"go_version,omitempty"`
}

// Healthz reports that the vault process is alive. It reads the in-memory
// catalog counters but never the badger store, so a stalled disk cannot fail
// liveness; /readyz covers that.
func Healthz(d deps.Deps) http.HandlerFunc {
	now := d.TimeNow
	if now == nil {
		now = time.Now
	}
	build := buildInfo{
		Version:   d.Version,
		Commit:    d.Commit,
		BuildDate: d.BuildDate,
		GoVersion: d.GoVersion,
	}
	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthzResponse{
			Service:       "vault",
			Status:        "alive",
			UptimeSeconds: now().Sub(d.StartTime).Seconds(),
			Build:         build,
		}
		if d.Catalog != nil {
			resp.Catalog = &catalogLive{Loaded: d.Catalog.Loaded(), Items: d.Catalog.Count()}
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
