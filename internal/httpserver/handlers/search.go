package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/vault/internal/domain"
	"github.com/MrSnakeDoc/vault/internal/httpserver/deps"
)

// Search serves GET /api/search?q=&rating=&category=.
// Search never fails: an unparseable rating or an unknown category is
// dropped and the request is served as if that filter were absent.
func Search(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params := r.URL.Query()

		q := domain.SearchQuery{
			Text:   params.Get("q"),
			Rating: domain.ParseRatingFilter(params.Get("rating")),
		}
		if cat, err := domain.ParseCategory(params.Get("category")); err == nil {
			q.Category = &cat
		}

		res := d.Search.Search(r.Context(), q)
		if res.Items == nil {
			res.Items = []*domain.Item{}
		}
		writeJSON(w, http.StatusOK, res)
	}
}
