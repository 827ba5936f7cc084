package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store backends.
const (
	StoreRedis  = "redis"
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

// Blob backends.
const (
	BlobSupabase = "supabase"
	BlobLocal    = "local"
)

// Title resolver modes.
const (
	ResolverHTTP    = "http"
	ResolverService = "service"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per request, imports included (ex: 2m)

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Record store
	StoreBackend string // "redis" | "sqlite" | "memory"
	SQLitePath   string // ex: /data/archivist.db

	// Redis
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

	// Blob store
	BlobBackend    string // "supabase" | "local"
	SupabaseURL    string // ex: https://xyz.supabase.co
	SupabaseKey    string // service role key
	SupabaseBucket string // default: "archives"
	BlobDir        string // root directory of the local blob store

	// Title resolution
	TitleResolver           string        // "http" | "service"
	TitleTimeout            time.Duration // per lookup (default: 2s)
	TitleServiceURL         string        // endpoint receiving {"url"} (service mode)
	TitleServiceKey         string        // optional bearer key (service mode)
	ProvidersFile           string        // optional oEmbed providers YAML, empty = built-in table
	ProvidersReloadInterval time.Duration // interval to reload the providers file (default: 24h)
	TitleCacheTTL           time.Duration // 0 disables the Redis title cache
	EnrichConcurrency       int           // max title lookups in flight per message (default: 5)

	// Circuit breaker around the resolver
	BreakerMinRequests      int           // requests before the failure ratio is considered
	BreakerFailureThreshold float64       // failure ratio that opens the breaker (0..1)
	BreakerOpenTimeout      time.Duration // time spent open before half-open probes

	// HTTP surface
	MaxUploadSize    int64         // bytes accepted for one archive upload
	CORSOrigins      []string      // allowed CORS origins, empty = "*"
	RateLimitBurst   int           // tokens per client IP
	RateLimitPerMin  int           // refill per client IP per minute
	RateLimitIdleTTL time.Duration // drop idle client buckets after this
	RateLimitSweep   time.Duration // bucket sweep interval
	RateLimitMaxIPs  int           // max tracked client IPs
	AllowedHosts     []string      // optional, restrict access to specific Host headers
	AllowedCIDRS     []string      // optional, restrict /reload, /readyz and /metrics (e.g. "10.0.0.0/8, 127.0.0.1")
	TrustProxy       bool          // true => trust X-Forwarded-For headers (e.g. cloudflared)
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("ARCHIVIST_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("ARCHIVIST_SHUTDOWN_TIMEOUT", 5*time.Second),
		RequestTimeout:  mustDuration("ARCHIVIST_REQUEST_TIMEOUT", 2*time.Minute),

		// Logging
		LogLevel:  getenv("ARCHIVIST_LOG_LEVEL", "info"),
		PrettyLog: mustBool("ARCHIVIST_PRETTY_LOG", true),

		// Record store
		StoreBackend: strings.ToLower(getenv("ARCHIVIST_STORE", StoreRedis)),
		SQLitePath:   getenv("ARCHIVIST_SQLITE_PATH", "/data/archivist.db"),

		// Redis settings
		RedisAddr:             getenv("ARCHIVIST_REDIS_ADDR", "localhost:6379"),
		RedisUser:             getenv("ARCHIVIST_REDIS_USERNAME", "default"),
		RedisPasswordRequired: mustBool("ARCHIVIST_REDIS_PASSWORD_REQUIRED", true),
		RedisPassword:         getenv("ARCHIVIST_REDIS_PASSWORD", ""),
		RedisDB:               getenvInt("ARCHIVIST_REDIS_DB", 0),
		RedisDT:               mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:               mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:               mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:          mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:      mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:         getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout:   mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:    mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:    getenvInt("REDIS_WARN_THRESHOLD", 3),

		// Blob store
		BlobBackend:    strings.ToLower(getenv("ARCHIVIST_BLOB", BlobSupabase)),
		SupabaseURL:    getenv("ARCHIVIST_SUPABASE_URL", ""),
		SupabaseKey:    getenv("ARCHIVIST_SUPABASE_KEY", ""),
		SupabaseBucket: getenv("ARCHIVIST_SUPABASE_BUCKET", "archives"),
		BlobDir:        getenv("ARCHIVIST_BLOB_DIR", "/data/blobs"),

		// Title resolution
		TitleResolver:           strings.ToLower(getenv("ARCHIVIST_TITLE_RESOLVER", ResolverHTTP)),
		TitleTimeout:            mustDuration("ARCHIVIST_TITLE_TIMEOUT", 2*time.Second),
		TitleServiceURL:         getenv("ARCHIVIST_TITLE_SERVICE_URL", ""),
		TitleServiceKey:         getenv("ARCHIVIST_TITLE_SERVICE_KEY", ""),
		ProvidersFile:           getenv("ARCHIVIST_PROVIDERS_FILE", ""),
		ProvidersReloadInterval: mustDuration("ARCHIVIST_PROVIDERS_RELOAD_INTERVAL", 24*time.Hour),
		TitleCacheTTL:           mustDuration("ARCHIVIST_TITLE_CACHE_TTL", 7*24*time.Hour),
		EnrichConcurrency:       getenvInt("ARCHIVIST_ENRICH_CONCURRENCY", 5),

		// Breaker
		BreakerMinRequests:      getenvInt("ARCHIVIST_BREAKER_MIN_REQUESTS", 10),
		BreakerFailureThreshold: mustFloat("ARCHIVIST_BREAKER_FAILURE_RATIO", 0.8),
		BreakerOpenTimeout:      mustDuration("ARCHIVIST_BREAKER_OPEN_TIMEOUT", 30*time.Second),

		// HTTP surface
		MaxUploadSize:    int64(getenvInt("ARCHIVIST_MAX_UPLOAD_MB", 20)) << 20,
		CORSOrigins:      splitAndTrim(getenv("ARCHIVIST_CORS_ORIGINS", "")),
		RateLimitBurst:   getenvInt("ARCHIVIST_RATE_LIMIT_BURST", 30),
		RateLimitPerMin:  getenvInt("ARCHIVIST_RATE_LIMIT_PER_MIN", 60),
		RateLimitIdleTTL: mustDuration("ARCHIVIST_RATE_LIMIT_IDLE_TTL", 10*time.Minute),
		RateLimitSweep:   mustDuration("ARCHIVIST_RATE_LIMIT_SWEEP", time.Minute),
		RateLimitMaxIPs:  getenvInt("ARCHIVIST_RATE_LIMIT_MAX_IPS", 10000),
		AllowedHosts:     splitAndTrim(getenv("ARCHIVIST_ALLOWED_HOSTS", "")),
		AllowedCIDRS:     parseAllowedIPs(getenv("ARCHIVIST_ALLOWED_CIDRS", "")),
		TrustProxy:       mustBool("ARCHIVIST_TRUST_PROXY", true),
	}

	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("❌ FATAL: %v", err))
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		log.Printf("[DEBUG] cfg: %+v\n", cfg.Redacted())
	}

	return cfg
}

// Validate checks the backend-specific requirements.
func (c *Config) Validate() error {
	var errs []error

	switch c.StoreBackend {
	case StoreRedis:
		if c.RedisAddr == "" {
			errs = append(errs, errors.New("ARCHIVIST_REDIS_ADDR is required when ARCHIVIST_STORE=redis"))
		}
		if c.RedisPasswordRequired && c.RedisPassword == "" {
			errs = append(errs, errors.New("ARCHIVIST_REDIS_PASSWORD is required when ARCHIVIST_REDIS_PASSWORD_REQUIRED=true"))
		}
	case StoreSQLite:
		if c.SQLitePath == "" {
			errs = append(errs, errors.New("ARCHIVIST_SQLITE_PATH is required when ARCHIVIST_STORE=sqlite"))
		}
	case StoreMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown ARCHIVIST_STORE %q (want redis, sqlite or memory)", c.StoreBackend))
	}

	switch c.BlobBackend {
	case BlobSupabase:
		if c.SupabaseURL == "" || c.SupabaseKey == "" {
			errs = append(errs, errors.New("ARCHIVIST_SUPABASE_URL and ARCHIVIST_SUPABASE_KEY are required when ARCHIVIST_BLOB=supabase"))
		}
		if c.SupabaseBucket == "" {
			errs = append(errs, errors.New("ARCHIVIST_SUPABASE_BUCKET must not be empty"))
		}
	case BlobLocal:
		if c.BlobDir == "" {
			errs = append(errs, errors.New("ARCHIVIST_BLOB_DIR is required when ARCHIVIST_BLOB=local"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown ARCHIVIST_BLOB %q (want supabase or local)", c.BlobBackend))
	}

	switch c.TitleResolver {
	case ResolverHTTP:
	case ResolverService:
		if c.TitleServiceURL == "" {
			errs = append(errs, errors.New("ARCHIVIST_TITLE_SERVICE_URL is required when ARCHIVIST_TITLE_RESOLVER=service"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown ARCHIVIST_TITLE_RESOLVER %q (want http or service)", c.TitleResolver))
	}

	if c.EnrichConcurrency < 1 {
		errs = append(errs, fmt.Errorf("ARCHIVIST_ENRICH_CONCURRENCY must be >= 1, got %d", c.EnrichConcurrency))
	}
	if c.BreakerFailureThreshold <= 0 || c.BreakerFailureThreshold > 1 {
		errs = append(errs, fmt.Errorf("ARCHIVIST_BREAKER_FAILURE_RATIO must be in (0, 1], got %v", c.BreakerFailureThreshold))
	}
	if c.MaxUploadSize <= 0 {
		errs = append(errs, errors.New("ARCHIVIST_MAX_UPLOAD_MB must be > 0"))
	}

	return errors.Join(errs...)
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
	if cp.SupabaseKey != "" {
		cp.SupabaseKey = "***REDACTED***"
	}
	if cp.TitleServiceKey != "" {
		cp.TitleServiceKey = "***REDACTED***"
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

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
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

func mustFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
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
