package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/vault/internal/cache"
	"github.com/MrSnakeDoc/vault/internal/config"
	"github.com/MrSnakeDoc/vault/internal/domain"
	"github.com/MrSnakeDoc/vault/internal/httpserver"
	"github.com/MrSnakeDoc/vault/internal/httpserver/deps"
	"github.com/MrSnakeDoc/vault/internal/index"
	"github.com/MrSnakeDoc/vault/internal/logger"
	"github.com/MrSnakeDoc/vault/internal/redis"
	"github.com/MrSnakeDoc/vault/internal/scheduler"
	"github.com/MrSnakeDoc/vault/internal/search"
	"github.com/MrSnakeDoc/vault/internal/sources/seed"
	badgerstore "github.com/MrSnakeDoc/vault/internal/store/badger"
	redisstore "github.com/MrSnakeDoc/vault/internal/store/redis"
	"github.com/MrSnakeDoc/vault/internal/utils"
	"github.com/MrSnakeDoc/vault/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	store       *badgerstore.Store
	redisClient *goredis.Client
	catalog     *index.Catalog
	search      *search.Service
	unwatch     func()
	refresher   *scheduler.CatalogRefresher
	gc          *scheduler.ValueLogGC
}

// OpenStore opens the collection store described by cfg.
func OpenStore(ctx context.Context, cfg *config.Config, log logger.Logger) (*badgerstore.Store, error) {
	return badgerstore.Open(ctx, badgerstore.Options{
		Dir:        cfg.DataDir,
		InMemory:   cfg.InMemory,
		SyncWrites: cfg.SyncWrites,
	}, log)
}

func New(ctx context.Context, cfg *config.Config, loggerClient logger.Logger) (*App, error) {
	store, err := OpenStore(ctx, cfg, loggerClient)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	// Seed an empty collection before anything reads it
	if cfg.SeedFile != "" {
		if _, err := seed.ImportIfEmpty(ctx, store, cfg.SeedFile, loggerClient); err != nil {
			utils.Close(store)
			return nil, fmt.Errorf("failed to import seed: %w", err)
		}
	}

	catalog := index.NewCatalog(store, loggerClient)
	if err := catalog.Start(ctx); err != nil {
		utils.Close(store)
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	// Result cache: in-process LRU, optionally backed by Redis
	lru, err := cache.NewLRU(cfg.CacheSize)
	if err != nil {
		catalog.Close()
		utils.Close(store)
		return nil, err
	}
	var (
		resultCache cache.ResultCache = lru
		redisClient *goredis.Client
		redisPing   func(context.Context) error
	)
	if cfg.RedisEnabled() {
		redisClient, err = redis.Connect(ctx, redis.ConnectOptions{
			Addr:           cfg.RedisAddr,
			User:           cfg.RedisUser,
			Password:       cfg.RedisPassword,
			DB:             cfg.RedisDB,
			DialTimeout:    cfg.RedisDT,
			ReadTimeout:    cfg.RedisRT,
			WriteTimeout:   cfg.RedisWT,
			PoolSize:       cfg.RedisPoolSize,
			ConnectTimeout: cfg.RedisConnectTimeout,
			RetryInterval:  cfg.RedisRetryInterval,
			MaxWait:        cfg.RedisMaxWait,
			PingTimeout:    cfg.RedisPingTimeout,
			WarnThreshold:  cfg.RedisWarnThreshold,
		}, loggerClient)
		if err != nil {
			// The shared tier is optional; search keeps working on the LRU alone
			loggerClient.Warn("redis cache tier disabled", logger.Error(err))
		} else {
			shared := redisstore.NewStore(redisClient, loggerClient, cfg.CacheTTL)
			resultCache = cache.Tiered{lru, shared}
			redisPing = shared.Ping
			loggerClient.Info("redis cache tier enabled", logger.Duration("ttl", cfg.CacheTTL))
		}
	} else {
		loggerClient.Info("redis not configured, using in-process result cache only")
	}

	searchSvc := search.NewService(catalog, resultCache, domain.SearchOptions{
		MinScore: cfg.SearchMinScore,
		Limit:    cfg.SearchLimit,
	}, loggerClient)
	unwatch := searchSvc.Watch(store)

	// Entries written by a previous run are keyed by a stale generation
	searchSvc.Purge(ctx)

	// Create manual reload trigger channel
	reloadTrigger := make(chan struct{}, 1)

	refresher := scheduler.NewCatalogRefresher(catalog, loggerClient, cfg.ResyncInterval, reloadTrigger)
	gc := scheduler.NewValueLogGC(store, loggerClient, cfg.GCInterval, cfg.GCDiscardRatio)

	// Dependencies passed to routes (extend as needed).
	d := deps.Deps{
		Logger:          loggerClient,
		StartTime:       time.Now(),
		Version:         version.Version,
		Commit:          version.Commit,
		BuildDate:       version.BuildDate,
		GoVersion:       version.GoVersion,
		TimeNow:         time.Now,
		AllowedHosts:    cfg.AllowedHosts,
		AllowedCIDRS:    cfg.AllowedCIDRS,
		TrustProxy:      cfg.TrustProxy,
		Store:           store,
		Catalog:         catalog,
		Search:          searchSvc,
		RedisPing:       redisPing,
		DefaultPageSize: cfg.DefaultPageSize,
		MaxPageSize:     cfg.MaxPageSize,
		RateLimit:       cfg.RateLimit,
		RateBurst:       cfg.RateBurst,
		ReloadTrigger:   reloadTrigger,
	}

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      httpserver.New(cfg, loggerClient, d),
		store:       store,
		redisClient: redisClient,
		catalog:     catalog,
		search:      searchSvc,
		unwatch:     unwatch,
		refresher:   refresher,
		gc:          gc,
	}, nil
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting Vault v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("Vault %s", version.String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.refresher.Start(ctx)
	a.logger.Info("catalog refresher started",
		logger.Duration("interval", a.cfg.ResyncInterval))

	a.gc.Start(ctx)
	a.logger.Info("value log gc started",
		logger.Duration("interval", a.cfg.GCInterval))

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case runErr = <-errCh:
	}

	a.refresher.Stop()
	a.gc.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil && runErr == nil {
		runErr = fmt.Errorf("failed to stop server: %w", err)
	}

	a.unwatch()
	a.catalog.Close()

	if a.redisClient != nil {
		utils.CloseLogged(a.redisClient, a.logger, "redis")
	}
	utils.CloseLogged(a.store, a.logger, "store")

	if runErr == nil {
		a.logger.Info("✅ Vault stopped cleanly")
	}
	return runErr
}
