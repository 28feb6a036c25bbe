package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/MrSnakeDoc/vault/internal/logger"
)

// Reloader rebuilds a read model from the store.
type Reloader interface {
	Reload(ctx context.Context) error
}

// CatalogRefresher resyncs the catalog on a timer and on demand.
// Change events keep the catalog current; this catches anything they missed.
type CatalogRefresher struct {
	catalog       Reloader
	logger        logger.Logger
	interval      time.Duration
	timeout       time.Duration
	stopCh        chan struct{}
	stopOnce      sync.Once
	manualTrigger chan struct{}
}

// NewCatalogRefresher creates a refresher. manualTrigger may be nil.
func NewCatalogRefresher(
	catalog Reloader,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *CatalogRefresher {
	return &CatalogRefresher{
		catalog:       catalog,
		logger:        log,
		interval:      interval,
		timeout:       30 * time.Second,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start begins the refresh loop. A non-positive interval leaves only the
// manual trigger active.
func (cr *CatalogRefresher) Start(ctx context.Context) {
	go func() {
		var tick <-chan time.Time
		if cr.interval > 0 {
			ticker := time.NewTicker(cr.interval)
			defer ticker.Stop()
			tick = ticker.C
		}

		for {
			select {
			case <-tick:
				cr.refresh(ctx, "periodic")
			case <-cr.manualTrigger:
				cr.logger.Info("manual catalog resync triggered")
				cr.refresh(ctx, "manual")
			case <-cr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the refresher. Safe to call more than once.
func (cr *CatalogRefresher) Stop() {
	cr.stopOnce.Do(func() { close(cr.stopCh) })
}

// Refresh runs one resync immediately.
func (cr *CatalogRefresher) Refresh(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, cr.timeout)
	defer cancel()
	return cr.catalog.Reload(ctx)
}

func (cr *CatalogRefresher) refresh(ctx context.Context, reason string) {
	start := time.Now()
	if err := cr.Refresh(ctx); err != nil {
		cr.logger.Error("catalog resync failed",
			logger.String("reason", reason),
			logger.Error(err))
		return
	}
	cr.logger.Debug("catalog resynced",
		logger.String("reason", reason),
		logger.Duration("took", time.Since(start)))
}
