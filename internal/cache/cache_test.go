package cache

import (
	"context"
	"testing"

	"github.com/MrSnakeDoc/vault/internal/domain"
)

func TestKey(t *testing.T) {
	book := domain.CategoryBook
	base := domain.SearchQuery{Text: "War"}
	opts := domain.SearchOptions{Fields: domain.DefaultSearchFields, MinScore: 0.3, Limit: 50}

	k := Key(base, opts, 1)
	if k != Key(domain.SearchQuery{Text: "  war "}, opts, 1) {
		t.Error("Key() should ignore case and surrounding whitespace")
	}

	variants := map[string]string{
		"generation": Key(base, opts, 2),
		"rating":     Key(domain.SearchQuery{Text: "War", Rating: domain.MinRatingFilter(7)}, opts, 1),
		"category":   Key(domain.SearchQuery{Text: "War", Category: &book}, opts, 1),
		"limit":      Key(base, domain.SearchOptions{Fields: domain.DefaultSearchFields, MinScore: 0.3, Limit: 5}, 1),
	}
	for name, v := range variants {
		if v == k {
			t.Errorf("Key() did not change with %s", name)
		}
	}
}

func TestLRU(t *testing.T) {
	ctx := context.Background()
	c, err := NewLRU(2)
	if err != nil {
		t.Fatal(err)
	}

	if _, ok := c.Get(ctx, "a"); ok {
		t.Error("Get() on empty cache should miss")
	}

	c.Set(ctx, "a", domain.SearchResult{ResultsCount: 1})
	c.Set(ctx, "b", domain.SearchResult{ResultsCount: 2})
	c.Set(ctx, "c", domain.SearchResult{ResultsCount: 3})

	if _, ok := c.Get(ctx, "a"); ok {
		t.Error("oldest entry should have been evicted")
	}
	if res, ok := c.Get(ctx, "c"); !ok || res.ResultsCount != 3 {
		t.Errorf("Get(c) = %+v, %v", res, ok)
	}

	c.Purge(ctx)
	if c.Len() != 0 {
		t.Errorf("Len() after Purge = %d, want 0", c.Len())
	}
}

func TestNewLRU_DefaultSize(t *testing.T) {
	c, err := NewLRU(0)
	if err != nil {
		t.Fatalf("NewLRU(0) error = %v", err)
	}
	for i := 0; i < DefaultSize+1; i++ {
		c.Set(context.Background(), Key(domain.SearchQuery{}, domain.SearchOptions{}, uint64(i)), domain.SearchResult{})
	}
	if c.Len() != DefaultSize {
		t.Errorf("Len() = %d, want %d", c.Len(), DefaultSize)
	}
}

func TestTiered_BackfillsFasterTier(t *testing.T) {
	ctx := context.Background()
	fast, _ := NewLRU(4)
	slow, _ := NewLRU(4)
	tiers := Tiered{fast, slow}

	slow.Set(ctx, "k", domain.SearchResult{TotalCount: 9})

	res, ok := tiers.Get(ctx, "k")
	if !ok || res.TotalCount != 9 {
		t.Fatalf("Tiered.Get() = %+v, %v", res, ok)
	}
	if _, ok := fast.Get(ctx, "k"); !ok {
		t.Error("hit in slow tier was not copied into fast tier")
	}

	tiers.Purge(ctx)
	if fast.Len() != 0 || slow.Len() != 0 {
		t.Error("Purge() should clear every tier")
	}
}
