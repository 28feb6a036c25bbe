package index

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/MrSnakeDoc/vault/internal/domain"
	"github.com/MrSnakeDoc/vault/internal/events"
	"github.com/MrSnakeDoc/vault/internal/logger"
)

// fakeSource is an in-memory Source whose content and failures tests control.
type fakeSource struct {
	mu     sync.Mutex
	items  []*domain.Item
	err    error
	broker *events.Broker
}

func newFakeSource(items ...*domain.Item) *fakeSource {
	return &fakeSource{items: items, broker: events.NewBroker()}
}

func (f *fakeSource) GetAll(context.Context) ([]*domain.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return append([]*domain.Item(nil), f.items...), nil
}

func (f *fakeSource) Subscribe(fn func(domain.ChangeEvent)) func() {
	return f.broker.Subscribe(fn)
}

func (f *fakeSource) add(it *domain.Item) {
	f.mu.Lock()
	f.items = append([]*domain.Item{it}, f.items...)
	f.mu.Unlock()
	f.broker.Publish(domain.ChangeEvent{Op: domain.ChangeAdded, ID: it.ID})
}

func (f *fakeSource) fail(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

func TestNewCatalog(t *testing.T) {
	c := NewCatalog(newFakeSource(), logger.NewNop())
	if c.Count() != 0 || c.Loaded() {
		t.Errorf("new catalog count=%d loaded=%v, want empty and not loaded", c.Count(), c.Loaded())
	}
	if c.Items() == nil {
		t.Error("Items() should never be nil")
	}
}

func TestCatalog_StartLoadsSnapshot(t *testing.T) {
	src := newFakeSource(
		&domain.Item{ID: 2, Name: "Interstellar", Category: domain.CategoryMovie},
		&domain.Item{ID: 1, Name: "War and Peace", Category: domain.CategoryBook},
	)
	c := NewCatalog(src, logger.NewNop())

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer c.Close()

	items := c.Items()
	if len(items) != 2 || items[0].ID != 2 {
		t.Errorf("Items() = %v, want ids [2 1]", items)
	}
	if c.LastReload().IsZero() || !c.Loaded() {
		t.Error("LastReload not recorded")
	}
}

func TestCatalog_FollowsChanges(t *testing.T) {
	src := newFakeSource()
	c := NewCatalog(src, logger.NewNop())
	if err := c.Start(context.Background()); err != nil {
		t.Fatal(err)
	}

	gen := c.Generation()
	src.add(&domain.Item{ID: 1, Name: "Dune", Category: domain.CategoryBook})

	if c.Count() != 1 {
		t.Errorf("Count() after add = %d, want 1", c.Count())
	}
	if c.Generation() <= gen {
		t.Errorf("Generation() = %d, want > %d", c.Generation(), gen)
	}

	c.Close()
	src.add(&domain.Item{ID: 2, Name: "Solaris", Category: domain.CategoryBook})
	if c.Count() != 1 {
		t.Errorf("Count() after Close = %d, want 1 (no longer following)", c.Count())
	}
}

func TestCatalog_FailedReloadKeepsSnapshot(t *testing.T) {
	src := newFakeSource(&domain.Item{ID: 1, Name: "Dune", Category: domain.CategoryBook})
	c := NewCatalog(src, logger.NewNop())
	if err := c.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	src.fail(errors.New("disk on fire"))
	src.add(&domain.Item{ID: 2, Name: "Solaris", Category: domain.CategoryBook})

	if c.Count() != 1 {
		t.Errorf("Count() after failed reload = %d, want last good snapshot of 1", c.Count())
	}
	if err := c.Reload(context.Background()); err == nil {
		t.Error("Reload() should surface the source error")
	}
}

func TestCatalog_StartFails(t *testing.T) {
	src := newFakeSource()
	src.fail(errors.New("unavailable"))

	c := NewCatalog(src, logger.NewNop())
	if err := c.Start(context.Background()); err == nil {
		t.Fatal("Start() should fail when the first load fails")
	}
	if src.broker.Len() != 0 {
		t.Error("failed Start() must not leave a subscription behind")
	}
}

func TestCatalog_ItemsIsACopy(t *testing.T) {
	src := newFakeSource(&domain.Item{ID: 1, Name: "Dune", Category: domain.CategoryBook})
	c := NewCatalog(src, logger.NewNop())
	_ = c.Start(context.Background())
	defer c.Close()

	items := c.Items()
	items[0] = nil

	if c.Items()[0] == nil {
		t.Error("mutating the returned slice changed the snapshot")
	}
}

func TestCatalog_ConcurrentAccess(t *testing.T) {
	src := newFakeSource()
	c := NewCatalog(src, logger.NewNop())
	_ = c.Start(context.Background())
	defer c.Close()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(id uint64) {
			defer wg.Done()
			src.add(&domain.Item{ID: id, Name: "x", Category: domain.CategoryOther})
		}(uint64(i + 1))
		go func() {
			defer wg.Done()
			_, _ = c.Snapshot()
		}()
	}
	wg.Wait()

	if c.Count() != 20 {
		t.Errorf("Count() = %d, want 20", c.Count())
	}
}
