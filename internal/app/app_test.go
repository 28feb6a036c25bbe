package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/MrSnakeDoc/vault/internal/config"
	"github.com/MrSnakeDoc/vault/internal/domain"
	"github.com/MrSnakeDoc/vault/internal/logger"
)

func testConfig(seedFile string) *config.Config {
	return &config.Config{
		ListenPort:      ":0",
		ShutdownTimeout: time.Second,
		InMemory:        true,
		SeedFile:        seedFile,
		SearchMinScore:  0.3,
		SearchLimit:     50,
		CacheSize:       16,
		DefaultPageSize: 20,
		MaxPageSize:     100,
		CORSOrigins:     []string{"*"},
	}
}

func closeApp(t *testing.T, a *App) {
	t.Helper()
	t.Cleanup(func() {
		a.unwatch()
		a.catalog.Close()
		_ = a.store.Close()
	})
}

func TestNew_ImportsSeedIntoEmptyStore(t *testing.T) {
	seed := filepath.Join(t.TempDir(), "seed.yaml")
	content := "items:\n  - name: Dune\n    category: book\n    rating: 8\n  - name: Alien\n    category: movie\n"
	if err := os.WriteFile(seed, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	a, err := New(context.Background(), testConfig(seed), logger.NewNop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	closeApp(t, a)

	if n, _ := a.store.Count(context.Background()); n != 2 {
		t.Errorf("store holds %d items, want 2", n)
	}
	if a.catalog.Count() != 2 {
		t.Errorf("catalog holds %d items, want 2", a.catalog.Count())
	}

	res := a.search.Search(context.Background(), domain.SearchQuery{Text: "dune"})
	if res.ResultsCount != 1 {
		t.Errorf("search for dune = %+v", res)
	}
}

func TestNew_WithoutSeed(t *testing.T) {
	a, err := New(context.Background(), testConfig(""), logger.NewNop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	closeApp(t, a)

	if !a.catalog.Loaded() || a.catalog.Count() != 0 {
		t.Errorf("catalog loaded=%v count=%d", a.catalog.Loaded(), a.catalog.Count())
	}
	if a.redisClient != nil {
		t.Error("redis client should stay nil when no address is configured")
	}
}

func TestNew_BadSeedFails(t *testing.T) {
	seed := filepath.Join(t.TempDir(), "seed.yaml")
	if err := os.WriteFile(seed, []byte("items:\n  - name: ''\n    category: book\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := New(context.Background(), testConfig(seed), logger.NewNop()); err == nil {
		t.Fatal("New() should fail on an invalid seed")
	}
}
