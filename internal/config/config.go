package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backends.
const (
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
	StoreMemory   = "memory"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per-request timeout for plain API calls
	BulkTimeout     time.Duration // per-request timeout for import/validate/duplicates

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Storage
	Store       string // sqlite | postgres | redis | memory
	SQLitePath  string // database file for sqlite
	DatabaseURL string // DSN for postgres

	// Link validation
	ValidateTimeout     time.Duration // per-record check timeout (default: 10s)
	ValidateConcurrency int           // max checks in flight (default: 8)
	ValidateDeadline    time.Duration // bound for a whole run (0 = none)
	ValidateInterval    time.Duration // periodic validation (0 = disabled)
	SkipTLSValidation   bool          // accept invalid certificates when probing links
	UserAgent           string        // User-Agent of link checks

	// Import
	MaxImportBytes int64  // upload size limit
	SeedFile       string // optional Homepage bookmarks.yaml imported on first start

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

	AllowedHosts    []string // optional, restrict access to specific Host headers
	AllowedCIDRS    []string // optional, restrict access to specific IP (e.g. "1.2.3.4, 5.6.7.8")
	TrustProxy      bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)
	CORSOrigins     []string // allowed browser origins, "*" for any
	RateLimitBurst  int      // bulk endpoints: requests per burst
	RateLimitPerMin int      // bulk endpoints: refill per IP per minute
}

// Load reads the configuration from the environment. A .env file (or the
// one named by FAVORG_ENV_FILE) is loaded first and never overrides
// variables that are already set.
func Load() *Config {
	loadDotEnv(getenv("FAVORG_ENV_FILE", ".env"))

	cfg := &Config{
		// Server settings
		ListenPort:      getenv("FAVORG_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("FAVORG_SHUTDOWN_TIMEOUT", 5*time.Second),
		RequestTimeout:  mustDuration("FAVORG_REQUEST_TIMEOUT", 30*time.Second),
		BulkTimeout:     mustDuration("FAVORG_BULK_TIMEOUT", 5*time.Minute),

		// Logging
		LogLevel:  getenv("FAVORG_LOG_LEVEL", "info"),
		PrettyLog: mustBool("FAVORG_PRETTY_LOG", true),

		// Storage
		Store:      strings.ToLower(getenv("FAVORG_STORE", StoreSQLite)),
		SQLitePath: getenv("FAVORG_SQLITE_PATH", "./data/favorg.db"),

		// Link validation
		ValidateTimeout:     mustDuration("FAVORG_VALIDATE_TIMEOUT", 10*time.Second),
		ValidateConcurrency: getenvInt("FAVORG_VALIDATE_CONCURRENCY", 8),
		ValidateDeadline:    mustDuration("FAVORG_VALIDATE_DEADLINE", 2*time.Minute),
		ValidateInterval:    mustDuration("FAVORG_VALIDATE_INTERVAL", 0),
		SkipTLSValidation:   mustBool("FAVORG_SKIP_TLS_VALIDATION", false),
		UserAgent:           getenv("FAVORG_USER_AGENT", ""),

		// Import
		MaxImportBytes: int64(getenvInt("FAVORG_MAX_IMPORT_BYTES", 10<<20)),
		SeedFile:       getenv("FAVORG_SEED_FILE", ""),

		// Access restrictions
		AllowedHosts:    splitAndTrim(getenv("FAVORG_ALLOWED_HOSTS", "")),
		AllowedCIDRS:    parseAllowedIPs(getenv("FAVORG_ALLOWED_CIDRS", "")),
		TrustProxy:      mustBool("FAVORG_TRUST_PROXY", false),
		CORSOrigins:     splitAndTrim(getenv("FAVORG_CORS_ORIGINS", "")),
		RateLimitBurst:  getenvInt("FAVORG_RATE_LIMIT_BURST", 5),
		RateLimitPerMin: getenvInt("FAVORG_RATE_LIMIT_PER_MIN", 10),
	}

	switch cfg.Store {
	case StoreSQLite, StoreMemory:
	case StorePostgres:
		cfg.DatabaseURL = requireEnv("FAVORG_DATABASE_URL")
	case StoreRedis:
		loadRedis(cfg)
	default:
		panic(fmt.Sprintf("❌ FATAL: Invalid FAVORG_STORE %q (sqlite, postgres, redis, memory)", cfg.Store))
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		log.Printf("[DEBUG] cfg: %+v\n", cfg.Redacted())
	}

	return cfg
}

func loadRedis(cfg *Config) {
	cfg.RedisAddr = requireEnv("FAVORG_REDIS_ADDR")
	cfg.RedisUser = getenv("FAVORG_REDIS_USERNAME", "default")
	cfg.RedisPasswordRequired = mustBool("FAVORG_REDIS_PASSWORD_REQUIRED", true)
	cfg.RedisPassword = getenv("FAVORG_REDIS_PASSWORD", "")
	cfg.RedisDB = getenvInt("FAVORG_REDIS_DB", 0)
	cfg.RedisDT = mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second)
	cfg.RedisRT = mustDuration("REDIS_READ_TIMEOUT", 3*time.Second)
	cfg.RedisWT = mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second)
	cfg.RedisMaxWait = mustDuration("REDIS_MAX_WAIT", 10*time.Second)
	cfg.RedisPingTimeout = mustDuration("REDIS_PING_TIMEOUT", 5*time.Second)
	cfg.RedisPoolSize = getenvInt("REDIS_POOL_SIZE", 10)
	cfg.RedisConnectTimeout = mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second)
	cfg.RedisRetryInterval = mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second)
	cfg.RedisWarnThreshold = getenvInt("REDIS_WARN_THRESHOLD", 3)

	if cfg.RedisPasswordRequired && cfg.RedisPassword == "" {
		panic("❌ FATAL: FAVORG_REDIS_PASSWORD is required when FAVORG_REDIS_PASSWORD_REQUIRED=true")
	}
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
	if cp.DatabaseURL != "" {
		cp.DatabaseURL = "***REDACTED***"
	}
	return cp
}

func loadDotEnv(path string) {
	if _, err := os.Stat(path); err != nil {
		return
	}
	if err := godotenv.Load(path); err != nil {
		panic(fmt.Sprintf("❌ FATAL: Invalid env file %s: %v", path, err))
	}
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
