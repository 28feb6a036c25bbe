package routes

import (
	"net/http"
	"sort"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/vault/internal/httpserver/deps"
	"github.com/MrSnakeDoc/vault/internal/logger"
)

func TestRegisterAll_MountsEveryRoute(t *testing.T) {
	r := chi.NewRouter()
	RegisterAll(r, deps.Deps{Logger: logger.NewNop(), ReloadTrigger: make(chan struct{}, 1)})

	var got []string
	err := chi.Walk(r, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		got = append(got, method+" "+strings.TrimSuffix(route, "/"))
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	sort.Strings(got)

	want := []string{
		"DELETE /api/items/{id}",
		"GET /api/items",
		"GET /api/items/{id}",
		"GET /api/search",
		"GET /healthz",
		"GET /metrics",
		"GET /readyz",
		"GET /status",
		"PATCH /api/items/{id}",
		"POST /api/items",
		"POST /reload",
	}
	have := make(map[string]bool, len(got))
	for _, g := range got {
		have[g] = true
	}
	for _, w := range want {
		if !have[w] {
			t.Errorf("route %q not mounted; have %v", w, got)
		}
	}
}

func TestRegisterAll_AppliesGuards(t *testing.T) {
	saved := registry
	t.Cleanup(func() { registry = saved })
	registry = nil

	var calls []string
	guard := func(name string) Guard {
		return func(deps.Deps) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					calls = append(calls, name)
					next.ServeHTTP(w, r)
				})
			}
		}
	}
	Register(func(r chi.Router, _ deps.Deps) {
		r.Get("/x", func(http.ResponseWriter, *http.Request) {})
	}, guard("first"), guard("second"))

	r := chi.NewRouter()
	RegisterAll(r, deps.Deps{})
	req, _ := http.NewRequest(http.MethodGet, "/x", nil)
	r.ServeHTTP(noopWriter{}, req)

	if strings.Join(calls, ",") != "first,second" {
		t.Errorf("guards ran as %v, want [first second]", calls)
	}
}

type noopWriter struct{}

func (noopWriter) Header() http.Header        { return http.Header{} }
func (noopWriter) Write(b []byte) (int, error) { return len(b), nil }
func (noopWriter) WriteHeader(int)             {}
