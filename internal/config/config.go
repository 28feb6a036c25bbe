package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per-request deadline applied by the router

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Collection store
	DataDir    string // badger directory (ignored when InMemory)
	InMemory   bool   // keep the database in RAM only (demo, tests)
	SyncWrites bool   // fsync every commit
	SeedFile   string // optional YAML imported on serve when the store is empty

	// Search
	SearchMinScore float64       // relevance threshold (default: 0.3)
	SearchLimit    int           // max results per search (default: 50)
	CacheSize      int           // in-process result cache entries (default: 256)
	CacheTTL       time.Duration // Redis result TTL (default: 10m)

	// Pagination
	DefaultPageSize int // page size when the client omits it (default: 20)
	MaxPageSize     int // upper bound accepted from clients (default: 100)

	// Maintenance
	GCInterval     time.Duration // value-log GC period (default: 10m)
	GCDiscardRatio float64       // badger discard ratio (default: 0.5)
	ResyncInterval time.Duration // periodic catalog resync (default: 1h)

	// Redis (optional result cache tier, enabled when RedisAddr is set)
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password, false => allow empty password
	RedisDB               int           // Redis DB number
	RedisDT               time.Duration // Redis dial timeout (ex: 5s)
	RedisRT               time.Duration // Redis read timeout (ex: 3s)
	RedisWT               time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait          time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout      time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize         int           // Redis connection pool size
	RedisConnectTimeout   time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval    time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold    int           // warn after this many attempts

	// Access restrictions
	RateLimit    float64  // mutations per second per client IP (0 = unlimited)
	RateBurst    int      // burst allowed above RateLimit
	CORSOrigins  []string // allowed origins for the browser client
	AllowedHosts []string // optional, restrict ops endpoints to specific Host headers
	AllowedCIDRS []string // optional, restrict ops endpoints to specific IP ranges
	TrustProxy   bool     // true => trust X-Forwarded-For headers
}

// RedisEnabled reports whether the Redis cache tier is configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisAddr != ""
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("VAULT_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("VAULT_SHUTDOWN_TIMEOUT", 5*time.Second),
		RequestTimeout:  mustDuration("VAULT_REQUEST_TIMEOUT", 15*time.Second),

		// Logging
		LogLevel:  getenv("VAULT_LOG_LEVEL", "info"),
		PrettyLog: mustBool("VAULT_PRETTY_LOG", true),

		// Store
		DataDir:    getenv("VAULT_DATA_DIR", "/data/vault"),
		InMemory:   mustBool("VAULT_IN_MEMORY", false),
		SyncWrites: mustBool("VAULT_SYNC_WRITES", false),
		SeedFile:   getenv("VAULT_SEED_FILE", ""),

		// Search
		SearchMinScore: mustFloat("VAULT_SEARCH_MIN_SCORE", 0.3),
		SearchLimit:    getenvInt("VAULT_SEARCH_LIMIT", 50),
		CacheSize:      getenvInt("VAULT_CACHE_SIZE", 256),
		CacheTTL:       mustDuration("VAULT_CACHE_TTL", 10*time.Minute),

		// Pagination
		DefaultPageSize: getenvInt("VAULT_DEFAULT_PAGE_SIZE", 20),
		MaxPageSize:     getenvInt("VAULT_MAX_PAGE_SIZE", 100),

		// Maintenance
		GCInterval:     mustDuration("VAULT_GC_INTERVAL", 10*time.Minute),
		GCDiscardRatio: mustFloat("VAULT_GC_DISCARD_RATIO", 0.5),
		ResyncInterval: mustDuration("VAULT_RESYNC_INTERVAL", time.Hour),

		// Redis settings
		RedisAddr:             getenv("VAULT_REDIS_ADDR", ""),
		RedisUser:             getenv("VAULT_REDIS_USERNAME", "default"),
		RedisPasswordRequired: mustBool("VAULT_REDIS_PASSWORD_REQUIRED", false),
		RedisPassword:         getenv("VAULT_REDIS_PASSWORD", ""),
		RedisDB:               getenvInt("VAULT_REDIS_DB", 0),
		RedisDT:               mustDuration("VAULT_REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:               mustDuration("VAULT_REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:               mustDuration("VAULT_REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:          mustDuration("VAULT_REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:      mustDuration("VAULT_REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:         getenvInt("VAULT_REDIS_POOL_SIZE", 10),
		RedisConnectTimeout:   mustDuration("VAULT_REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:    mustDuration("VAULT_REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:    getenvInt("VAULT_REDIS_WARN_THRESHOLD", 3),

		// Access restrictions
		RateLimit:    mustFloat("VAULT_RATE_LIMIT", 5),
		RateBurst:    getenvInt("VAULT_RATE_BURST", 10),
		CORSOrigins:  splitAndTrim(getenv("VAULT_CORS_ORIGINS", "*")),
		AllowedHosts: splitAndTrim(getenv("VAULT_ALLOWED_HOSTS", "")),
		AllowedCIDRS: parseAllowedIPs(getenv("VAULT_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("VAULT_TRUST_PROXY", false),
	}

	if !cfg.InMemory && cfg.DataDir == "" {
		panic("❌ FATAL: VAULT_DATA_DIR is required unless VAULT_IN_MEMORY=true")
	}

	// Validate Redis password configuration
	if cfg.RedisEnabled() && cfg.RedisPasswordRequired {
		cfg.RedisPassword = requireEnv("VAULT_REDIS_PASSWORD")
	}

	if cfg.DefaultPageSize < 1 || cfg.MaxPageSize < cfg.DefaultPageSize {
		panic(fmt.Sprintf("❌ FATAL: invalid page sizes: default=%d max=%d", cfg.DefaultPageSize, cfg.MaxPageSize))
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		log.Printf("[DEBUG] cfg: %+v\n", cfg.Redacted())
	}

	return cfg
}

// Redacted returns a copy safe to print.
func (c *Config) Redacted() Config {
	cp := *c
	if cp.RedisPassword != "" {
		cp.RedisPassword = "***REDACTED***"
	}
	if cp.RedisUser != "" {
		cp.RedisUser = "***REDACTED***"
	}
	return cp
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
