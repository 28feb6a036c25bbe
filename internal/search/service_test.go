package search

import (
	"context"
	"testing"
	"time"

	"github.com/MrSnakeDoc/vault/internal/cache"
	"github.com/MrSnakeDoc/vault/internal/domain"
	"github.com/MrSnakeDoc/vault/internal/events"
	"github.com/MrSnakeDoc/vault/internal/logger"
)

type staticCatalog struct {
	items      []*domain.Item
	generation uint64
}

func (c *staticCatalog) Snapshot() ([]*domain.Item, uint64) {
	return c.items, c.generation
}

// countingCache wraps an LRU and records hits.
type countingCache struct {
	*cache.LRU
	hits, purges int
}

func (c *countingCache) Get(ctx context.Context, key string) (domain.SearchResult, bool) {
	res, ok := c.LRU.Get(ctx, key)
	if ok {
		c.hits++
	}
	return res, ok
}

func (c *countingCache) Purge(ctx context.Context) {
	c.purges++
	c.LRU.Purge(ctx)
}

func sampleCatalog() *staticCatalog {
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	return &staticCatalog{
		generation: 1,
		items: []*domain.Item{
			{ID: 3, CreatedAt: now, Name: "Notes", Description: "Personal notes", Category: domain.CategoryOther},
			{ID: 2, CreatedAt: now.Add(-time.Hour), Name: "Interstellar", Description: "Space sci-fi movie", Category: domain.CategoryMovie, Rating: domain.IntPtr(8)},
			{ID: 1, CreatedAt: now.Add(-2 * time.Hour), Name: "War and Peace", Description: "Tolstoy's epic novel", Category: domain.CategoryBook, Rating: domain.IntPtr(9)},
		},
	}
}

func newCountingCache(t *testing.T) *countingCache {
	t.Helper()
	l, err := cache.NewLRU(8)
	if err != nil {
		t.Fatal(err)
	}
	return &countingCache{LRU: l}
}

func TestService_Search(t *testing.T) {
	svc := NewService(sampleCatalog(), nil, domain.SearchOptions{}, logger.NewNop())

	res := svc.Search(context.Background(), domain.SearchQuery{Text: "war"})
	if res.ResultsCount != 1 || res.Items[0].Name != "War and Peace" {
		t.Errorf("Search(war) = %+v", res)
	}
	if !res.IsSearching || res.IsFiltering || res.TotalCount != 3 {
		t.Errorf("Search(war) flags = %+v", res)
	}

	res = svc.Search(context.Background(), domain.SearchQuery{Rating: domain.MinRatingFilter(9)})
	if res.ResultsCount != 2 {
		t.Errorf("min:9 filter returned %d items, want War and Peace plus Notes", res.ResultsCount)
	}
}

func TestService_CachesByGeneration(t *testing.T) {
	cat := sampleCatalog()
	cc := newCountingCache(t)
	svc := NewService(cat, cc, domain.SearchOptions{}, logger.NewNop())
	ctx := context.Background()
	q := domain.SearchQuery{Text: "interstellar"}

	svc.Search(ctx, q)
	svc.Search(ctx, q)
	if cc.hits != 1 {
		t.Errorf("hits = %d, want 1", cc.hits)
	}

	cat.generation++
	svc.Search(ctx, q)
	if cc.hits != 1 {
		t.Errorf("hits after generation bump = %d, want still 1", cc.hits)
	}
}

func TestService_WatchPurgesOnChange(t *testing.T) {
	cc := newCountingCache(t)
	svc := NewService(sampleCatalog(), cc, domain.SearchOptions{}, logger.NewNop())
	broker := events.NewBroker()

	unsubscribe := svc.Watch(broker)
	svc.Search(context.Background(), domain.SearchQuery{Text: "notes"})

	broker.Publish(domain.ChangeEvent{Op: domain.ChangeDeleted, ID: 3})
	if cc.purges != 1 || cc.Len() != 0 {
		t.Errorf("purges = %d len = %d, want 1 and 0", cc.purges, cc.Len())
	}

	unsubscribe()
	broker.Publish(domain.ChangeEvent{Op: domain.ChangeAdded, ID: 4})
	if cc.purges != 1 {
		t.Errorf("purged after unsubscribe: %d", cc.purges)
	}
}

func TestMode(t *testing.T) {
	book := domain.CategoryBook
	tests := []struct {
		q    domain.SearchQuery
		want string
	}{
		{domain.SearchQuery{}, "browse"},
		{domain.SearchQuery{Text: "  "}, "browse"},
		{domain.SearchQuery{Category: &book}, "filter"},
		{domain.SearchQuery{Text: "x", Category: &book}, "search"},
	}
	for _, tt := range tests {
		if got := mode(tt.q); got != tt.want {
			t.Errorf("mode(%+v) = %q, want %q", tt.q, got, tt.want)
		}
	}
}
