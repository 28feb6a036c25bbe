package deps

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/vault/internal/domain"
	"github.com/MrSnakeDoc/vault/internal/logger"
)

// ItemStore is the part of the collection store the HTTP layer drives.
type ItemStore interface {
	GetAll(ctx context.Context) ([]*domain.Item, error)
	GetPage(ctx context.Context, page, pageSize int) (*domain.Page, error)
	GetByCategory(ctx context.Context, cat domain.Category) ([]*domain.Item, error)
	GetByCategoryPage(ctx context.Context, cat domain.Category, page, pageSize int) (*domain.Page, error)
	GetByID(ctx context.Context, id uint64) (*domain.Item, error)
	Add(ctx context.Context, d domain.Draft) (uint64, error)
	Update(ctx context.Context, id uint64, p *domain.Patch) error
	Delete(ctx context.Context, id uint64) error
	Count(ctx context.Context) (int, error)
	CountByCategory(ctx context.Context, cat domain.Category) (int, error)
	Ping(ctx context.Context) error
}

// Searcher runs queries over the catalog snapshot.
type Searcher interface {
	Search(ctx context.Context, q domain.SearchQuery) domain.SearchResult
}

// CatalogStatus reports the state of the in-memory read model.
type CatalogStatus interface {
	Count() int
	Loaded() bool
	LastReload() time.Time
}

type Deps struct {
	Logger          logger.Logger
	StartTime       time.Time
	Version         string
	Commit          string
	BuildDate       string
	GoVersion       string
	TimeNow         func() time.Time            // for testing, defaults to time.Now
	AllowedHosts    []string                    // Host headers allowed to reach ops endpoints
	AllowedCIDRS    []string                    // IPs allowed to access ops endpoints
	TrustProxy      bool                        // true if running behind a trusted reverse proxy
	Store           ItemStore                   // Collection store
	Catalog         CatalogStatus               // Live snapshot used by search
	Search          Searcher                    // Search service (engine + result cache)
	RedisPing       func(context.Context) error // nil when the Redis cache tier is disabled
	DefaultPageSize int                         // page size when the client omits it
	MaxPageSize     int                         // largest page size accepted
	RateLimit       float64                     // mutations per second per client IP (0 = unlimited)
	RateBurst       int                         // burst above RateLimit
	ReloadTrigger   chan struct{}               // Channel to trigger a manual catalog resync
}
