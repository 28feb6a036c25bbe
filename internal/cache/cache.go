// Package cache memoizes search results between catalog changes.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/MrSnakeDoc/vault/internal/domain"
	"github.com/MrSnakeDoc/vault/internal/metrics"
)

// DefaultSize is the LRU capacity used when none is configured.
const DefaultSize = 256

// ResultCache stores search results by query key.
type ResultCache interface {
	Get(ctx context.Context, key string) (domain.SearchResult, bool)
	Set(ctx context.Context, key string, res domain.SearchResult)
	Purge(ctx context.Context)
}

// Key derives a stable cache key from everything that shapes a result.
// The catalog generation makes entries from an older snapshot unreachable
// even before a purge lands.
func Key(q domain.SearchQuery, opts domain.SearchOptions, generation uint64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "g=%d|t=%s", generation, strings.ToLower(strings.TrimSpace(q.Text)))
	if q.Rating != nil {
		fmt.Fprintf(&b, "|r=%s", q.Rating)
	}
	if q.Category != nil {
		fmt.Fprintf(&b, "|c=%s", *q.Category)
	}
	fields := make([]string, 0, len(opts.Fields))
	for _, f := range opts.Fields {
		fields = append(fields, string(f))
	}
	fmt.Fprintf(&b, "|f=%s|m=%g|l=%d", strings.Join(fields, ","), opts.MinScore, opts.Limit)

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:16])
}

// LRU is the in-process tier.
type LRU struct {
	cache *lru.Cache[string, domain.SearchResult]
}

// NewLRU creates an LRU holding up to size results.
func NewLRU(size int) (*LRU, error) {
	if size <= 0 {
		size = DefaultSize
	}
	c, err := lru.New[string, domain.SearchResult](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create lru cache: %w", err)
	}
	return &LRU{cache: c}, nil
}

func (l *LRU) Get(_ context.Context, key string) (domain.SearchResult, bool) {
	res, ok := l.cache.Get(key)
	if ok {
		metrics.CacheHitsTotal.WithLabelValues("lru").Inc()
		return res, true
	}
	metrics.CacheMissesTotal.WithLabelValues("lru").Inc()
	return domain.SearchResult{}, false
}

func (l *LRU) Set(_ context.Context, key string, res domain.SearchResult) {
	l.cache.Add(key, res)
}

func (l *LRU) Purge(context.Context) {
	l.cache.Purge()
}

// Len returns the number of cached results.
func (l *LRU) Len() int {
	return l.cache.Len()
}

// Tiered consults each cache in order and back-fills the faster tiers on a hit.
type Tiered []ResultCache

func (t Tiered) Get(ctx context.Context, key string) (domain.SearchResult, bool) {
	for i, c := range t {
		res, ok := c.Get(ctx, key)
		if !ok {
			continue
		}
		for _, faster := range t[:i] {
			faster.Set(ctx, key, res)
		}
		return res, true
	}
	return domain.SearchResult{}, false
}

func (t Tiered) Set(ctx context.Context, key string, res domain.SearchResult) {
	for _, c := range t {
		c.Set(ctx, key, res)
	}
}

func (t Tiered) Purge(ctx context.Context) {
	for _, c := range t {
		c.Purge(ctx)
	}
}
