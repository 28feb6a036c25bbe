package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/MrSnakeDoc/vault/internal/logger"
	"github.com/MrSnakeDoc/vault/internal/metrics"
)

const (
	// DefaultDiscardRatio rewrites a value-log file once half of it is garbage.
	DefaultDiscardRatio = 0.5

	// maxRewritesPerRun bounds one collection so a huge backlog cannot
	// monopolise the disk.
	maxRewritesPerRun = 16
)

// ValueLogCollector is the store's value-log compaction hook.
type ValueLogCollector interface {
	RunValueLogGC(discardRatio float64) (bool, error)
}

// ValueLogGC periodically reclaims space in the store's value log.
type ValueLogGC struct {
	store        ValueLogCollector
	logger       logger.Logger
	interval     time.Duration
	discardRatio float64
	stopCh       chan struct{}
	stopOnce     sync.Once
}

// NewValueLogGC creates a new value-log garbage collector.
func NewValueLogGC(
	store ValueLogCollector,
	log logger.Logger,
	interval time.Duration,
	discardRatio float64,
) *ValueLogGC {
	if discardRatio <= 0 || discardRatio >= 1 {
		discardRatio = DefaultDiscardRatio
	}

	return &ValueLogGC{
		store:        store,
		logger:       log,
		interval:     interval,
		discardRatio: discardRatio,
		stopCh:       make(chan struct{}),
	}
}

// Start begins the periodic collection. A non-positive interval disables it.
func (gc *ValueLogGC) Start(ctx context.Context) {
	if gc.interval <= 0 {
		gc.logger.Info("value log gc disabled")
		return
	}

	ticker := time.NewTicker(gc.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				gc.Collect()
			case <-gc.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the garbage collector. Safe to call more than once.
func (gc *ValueLogGC) Stop() {
	gc.stopOnce.Do(func() { close(gc.stopCh) })
}

// Collect rewrites value-log files until badger reports nothing left to do.
// It returns the number of files rewritten.
func (gc *ValueLogGC) Collect() int {
	start := time.Now()
	rewritten := 0

	for rewritten < maxRewritesPerRun {
		ok, err := gc.store.RunValueLogGC(gc.discardRatio)
		if err != nil {
			metrics.ValueLogGCRuns.WithLabelValues("error").Inc()
			gc.logger.Error("value log gc failed",
				logger.Int("rewritten", rewritten),
				logger.Error(err))
			return rewritten
		}
		if !ok {
			break
		}
		rewritten++
	}

	if rewritten > 0 {
		metrics.ValueLogGCRuns.WithLabelValues("rewritten").Inc()
		gc.logger.Info("value log gc completed",
			logger.Int("rewritten", rewritten),
			logger.Duration("took", time.Since(start)))
	} else {
		metrics.ValueLogGCRuns.WithLabelValues("noop").Inc()
		gc.logger.Debug("value log gc: nothing to rewrite")
	}
	return rewritten
}
