package handlers

import (
	"context"
	"net/http"

	"github.com/MrSnakeDoc/vault/internal/domain"
	"github.com/MrSnakeDoc/vault/internal/httpserver/deps"
)

type componentStatus struct {
	OK         bool           `json:"ok"`
	Items      *int           `json:"items,omitempty"`
	ByCategory map[string]int `json:"by_category,omitempty"`
	LastReload string         `json:"last_reload,omitempty"`
	Mode       string         `json:"mode,omitempty"`
	Error      string         `json:"error,omitempty"`
}

type statusResponse struct {
	Mode       string                     `json:"mode"`
	Components map[string]componentStatus `json:"components"`
}

// Status reports the state of the store, the catalog and the cache tiers.
func Status(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
		defer cancel()

		components := map[string]componentStatus{
			"store":   storeStatus(ctx, d),
			"catalog": catalogStatus(d),
			"redis":   redisStatus(ctx, d),
		}
		writeJSON(w, http.StatusOK, statusResponse{
			Mode:       overallMode(components),
			Components: components,
		})
	}
}

func storeStatus(ctx context.Context, d deps.Deps) componentStatus {
	total, err := d.Store.Count(ctx)
	if err != nil {
		return componentStatus{Error: err.Error()}
	}
	byCat := make(map[string]int, len(domain.Categories))
	for _, c := range domain.Categories {
		n, err := d.Store.CountByCategory(ctx, c)
		if err != nil {
			return componentStatus{Error: err.Error()}
		}
		byCat[string(c)] = n
	}
	return componentStatus{OK: true, Items: &total, ByCategory: byCat}
}

func catalogStatus(d deps.Deps) componentStatus {
	n := d.Catalog.Count()
	last := "never"
	if t := d.Catalog.LastReload(); !t.IsZero() {
		last = t.Format("2006-01-02 15:04:05")
	}
	return componentStatus{OK: d.Catalog.Loaded(), Items: &n, LastReload: last}
}

func redisStatus(ctx context.Context, d deps.Deps) componentStatus {
	if d.RedisPing == nil {
		return componentStatus{OK: true, Mode: "disabled"}
	}
	if err := d.RedisPing(ctx); err != nil {
		return componentStatus{Mode: "degraded", Error: err.Error()}
	}
	return componentStatus{OK: true, Mode: "enabled"}
}

// overallMode is "critical" when the store or catalog is down and
// "degraded" when only the shared cache tier is.
func overallMode(components map[string]componentStatus) string {
	if !components["store"].OK || !components["catalog"].OK {
		return "critical"
	}
	if !components["redis"].OK {
		return "degraded"
	}
	return "ok"
}
