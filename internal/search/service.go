// Package search runs queries against the catalog snapshot and caches the results.
package search

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/vault/internal/cache"
	"github.com/MrSnakeDoc/vault/internal/domain"
	"github.com/MrSnakeDoc/vault/internal/logger"
	"github.com/MrSnakeDoc/vault/internal/metrics"
)

// Snapshotter exposes a versioned view of the collection.
type Snapshotter interface {
	Snapshot() ([]*domain.Item, uint64)
}

// Notifier reports committed changes.
type Notifier interface {
	Subscribe(fn func(domain.ChangeEvent)) (unsubscribe func())
}

// Service answers search and filter requests.
type Service struct {
	catalog Snapshotter
	cache   cache.ResultCache
	opts    domain.SearchOptions
	logger  logger.Logger
}

// NewService wires a search service. A nil cache disables caching.
func NewService(catalog Snapshotter, rc cache.ResultCache, opts domain.SearchOptions, log logger.Logger) *Service {
	return &Service{
		catalog: catalog,
		cache:   rc,
		opts:    opts,
		logger:  log,
	}
}

// Options returns the engine options in effect.
func (s *Service) Options() domain.SearchOptions {
	return s.opts
}

// Search filters and ranks the current snapshot.
func (s *Service) Search(ctx context.Context, q domain.SearchQuery) domain.SearchResult {
	metrics.SearchesTotal.WithLabelValues(mode(q)).Inc()

	items, generation := s.catalog.Snapshot()

	var key string
	if s.cache != nil {
		key = cache.Key(q, s.opts, generation)
		if res, ok := s.cache.Get(ctx, key); ok {
			return res
		}
	}

	start := time.Now()
	res := domain.Search(items, q, s.opts)
	metrics.SearchDuration.Observe(time.Since(start).Seconds())

	s.logger.Debug("search executed",
		logger.String("text", q.Text),
		logger.Int("results", res.ResultsCount),
		logger.Int("total", res.TotalCount),
		logger.Uint64("generation", generation))

	if s.cache != nil {
		s.cache.Set(ctx, key, res)
	}
	return res
}

// Watch purges the cache on every change reported by n.
func (s *Service) Watch(n Notifier) (unsubscribe func()) {
	return n.Subscribe(func(ev domain.ChangeEvent) {
		s.Purge(context.Background())
	})
}

// Purge drops every cached result.
func (s *Service) Purge(ctx context.Context) {
	if s.cache != nil {
		s.cache.Purge(ctx)
	}
}

func mode(q domain.SearchQuery) string {
	switch {
	case q.Active():
		return "search"
	case q.Filtering():
		return "filter"
	default:
		return "browse"
	}
}
