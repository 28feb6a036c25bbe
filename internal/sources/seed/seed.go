// Package seed imports and exports the collection as YAML.
package seed

import (
	"context"
	"fmt"

	"github.com/MrSnakeDoc/vault/internal/domain"
	"github.com/MrSnakeDoc/vault/internal/logger"
)

// Store is the subset of the collection store used by import and export.
type Store interface {
	GetAll(ctx context.Context) ([]*domain.Item, error)
	Count(ctx context.Context) (int, error)
	BulkAdd(ctx context.Context, drafts []domain.Draft) ([]uint64, error)
}

// Import loads path and adds every entry in one transaction.
func Import(ctx context.Context, store Store, path string, log logger.Logger) (int, error) {
	f, err := NewLoader(path).Load()
	if err != nil {
		return 0, err
	}

	drafts, err := NewMapper().MapDrafts(f)
	if err != nil {
		return 0, fmt.Errorf("invalid seed file %s: %w", path, err)
	}

	ids, err := store.BulkAdd(ctx, drafts)
	if err != nil {
		return 0, fmt.Errorf("failed to import seed: %w", err)
	}

	log.Info("seed imported",
		logger.String("file", path),
		logger.Int("count", len(ids)))
	return len(ids), nil
}

// ImportIfEmpty imports path only when the store holds no item yet.
func ImportIfEmpty(ctx context.Context, store Store, path string, log logger.Logger) (int, error) {
	n, err := store.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		log.Debug("store not empty, skipping seed",
			logger.String("file", path),
			logger.Int("items", n))
		return 0, nil
	}
	return Import(ctx, store, path, log)
}

// Export writes every stored item to path, newest first.
func Export(ctx context.Context, store Store, path string, log logger.Logger) (int, error) {
	items, err := store.GetAll(ctx)
	if err != nil {
		return 0, err
	}

	if err := NewLoader(path).Write(NewMapper().MapFile(items)); err != nil {
		return 0, err
	}

	log.Info("collection exported",
		logger.String("file", path),
		logger.Int("count", len(items)))
	return len(items), nil
}
