package index

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MrSnakeDoc/vault/internal/domain"
	"github.com/MrSnakeDoc/vault/internal/logger"
	"github.com/MrSnakeDoc/vault/internal/metrics"
)

// DefaultReloadTimeout bounds a reload triggered by a change event.
const DefaultReloadTimeout = 10 * time.Second

// Source is what the catalog mirrors. The collection store satisfies it.
type Source interface {
	GetAll(ctx context.Context) ([]*domain.Item, error)
	Subscribe(fn func(domain.ChangeEvent)) (unsubscribe func())
}

// Catalog keeps an in-memory, newest-first snapshot of the collection
// and refreshes it whenever the source reports a change.
// It acts as the read model for search.
type Catalog struct {
	source Source
	logger logger.Logger

	// reloadMu serializes reloads so an older read never overwrites a newer one.
	reloadMu sync.Mutex

	mu          sync.RWMutex
	items       []*domain.Item
	lastReload  time.Time
	generation  uint64
	loaded      bool
	unsubscribe func()
}

// NewCatalog creates an empty catalog over source.
func NewCatalog(source Source, log logger.Logger) *Catalog {
	return &Catalog{
		source: source,
		logger: log,
		items:  []*domain.Item{},
	}
}

// Start loads the initial snapshot and subscribes to changes.
func (c *Catalog) Start(ctx context.Context) error {
	if err := c.Reload(ctx); err != nil {
		return fmt.Errorf("initial catalog load failed: %w", err)
	}

	unsubscribe := c.source.Subscribe(c.onChange)

	c.mu.Lock()
	c.unsubscribe = unsubscribe
	c.mu.Unlock()
	return nil
}

// Close stops following the source. The last snapshot stays readable.
func (c *Catalog) Close() {
	c.mu.Lock()
	unsubscribe := c.unsubscribe
	c.unsubscribe = nil
	c.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

// Reload replaces the snapshot with the source's current content.
// On failure the previous snapshot is kept.
func (c *Catalog) Reload(ctx context.Context) error {
	c.reloadMu.Lock()
	defer c.reloadMu.Unlock()

	items, err := c.source.GetAll(ctx)
	if err != nil {
		return err
	}
	if items == nil {
		items = []*domain.Item{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = items
	c.lastReload = time.Now()
	c.generation++
	c.loaded = true
	metrics.StoreItems.Set(float64(len(items)))
	return nil
}

func (c *Catalog) onChange(ev domain.ChangeEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), DefaultReloadTimeout)
	defer cancel()

	if err := c.Reload(ctx); err != nil {
		c.logger.Error("failed to refresh catalog",
			logger.String("op", string(ev.Op)),
			logger.Uint64("item_id", ev.ID),
			logger.Error(err))
		return
	}
	c.logger.Debug("catalog refreshed",
		logger.String("op", string(ev.Op)),
		logger.Uint64("item_id", ev.ID))
}

// Items returns the current snapshot, newest first.
// The slice is a copy; the items themselves are shared and must not be mutated.
func (c *Catalog) Items() []*domain.Item {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*domain.Item, len(c.items))
	copy(out, c.items)
	return out
}

// Snapshot returns the items together with the generation they belong to.
func (c *Catalog) Snapshot() ([]*domain.Item, uint64) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*domain.Item, len(c.items))
	copy(out, c.items)
	return out, c.generation
}

// Count returns the number of items in the snapshot.
func (c *Catalog) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.items)
}

// Generation increases with every successful reload.
func (c *Catalog) Generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.generation
}

// Loaded reports whether at least one reload succeeded.
func (c *Catalog) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.loaded
}

// LastReload returns the timestamp of the last successful reload.
func (c *Catalog) LastReload() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.lastReload
}
