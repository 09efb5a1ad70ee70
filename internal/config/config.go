package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Page session
	SiteURL       string        // backend origin serving the listing pages (ex: https://auctions.domain.ext)
	ListingID     string        // auction id of the listing page to drive
	CatalogURL    string        // external anime catalog search endpoint
	ProfileFile   string        // optional YAML page profile (empty = built-in DOM contract)
	SessionCookie string        // optional session cookie value to seed the cookie jar
	HTTPTimeout   time.Duration // per-request timeout of the outgoing HTTP client

	// Development backend
	DevListenPort string // ex: ":8000"
	DevStore      string // "memory" | "redis"
	DevUser       string // username recorded on comments posted to the dev backend

	// Redis (dev backend only)
	RedisAddr           string        // ex: "localhost:6379"
	RedisUser           string        // optional
	RedisPassword       string        // optional
	RedisDB             int           // Redis DB number
	RedisDT             time.Duration // Redis dial timeout (ex: 5s)
	RedisRT             time.Duration // Redis read timeout (ex: 3s)
	RedisWT             time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait        time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout    time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize       int           // Redis connection pool size
	RedisConnectTimeout time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval  time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold  int           // warn after this many attempts

	// Per-client rate limit on UI events and backend mutations
	EventBurst        int // bucket capacity
	EventRefillPerMin int // tokens refilled per minute

	AllowedCIDRS []string // optional, restrict access to health/metrics endpoints
	TrustProxy   bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)
}

// Load reads the page session configuration.
func Load() *Config {
	loadDotEnv()

	cfg := &Config{
		ListenPort:      getenv("AUCTIONSYNC_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("AUCTIONSYNC_SHUTDOWN_TIMEOUT", 5*time.Second),

		LogLevel:  getenv("AUCTIONSYNC_LOG_LEVEL", "info"),
		PrettyLog: mustBool("AUCTIONSYNC_PRETTY_LOG", true),

		SiteURL:       strings.TrimRight(requireEnv("AUCTIONSYNC_SITE_URL"), "/"),
		ListingID:     requireEnv("AUCTIONSYNC_LISTING_ID"),
		CatalogURL:    getenv("AUCTIONSYNC_CATALOG_URL", "https://api.jikan.moe/v4/anime"),
		ProfileFile:   getenv("AUCTIONSYNC_PROFILE_FILE", ""),
		SessionCookie: getenv("AUCTIONSYNC_SESSION_COOKIE", ""),
		HTTPTimeout:   mustDuration("AUCTIONSYNC_HTTP_TIMEOUT", 10*time.Second),

		EventBurst:        getenvInt("AUCTIONSYNC_EVENT_BURST", 20),
		EventRefillPerMin: getenvInt("AUCTIONSYNC_EVENT_REFILL_PER_MIN", 120),

		AllowedCIDRS: parseAllowedIPs(getenv("AUCTIONSYNC_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("AUCTIONSYNC_TRUST_PROXY", true),
	}

	debugDump(cfg)
	return cfg
}

// LoadDev reads the development backend configuration.
func LoadDev() *Config {
	loadDotEnv()

	cfg := &Config{
		ShutdownTimeout: mustDuration("AUCTIONSYNC_SHUTDOWN_TIMEOUT", 5*time.Second),

		LogLevel:  getenv("AUCTIONSYNC_LOG_LEVEL", "info"),
		PrettyLog: mustBool("AUCTIONSYNC_PRETTY_LOG", true),

		DevListenPort: getenv("AUCTIONSYNC_DEV_LISTEN_PORT", ":8000"),
		DevStore:      strings.ToLower(getenv("AUCTIONSYNC_DEV_STORE", "memory")),
		DevUser:       getenv("AUCTIONSYNC_DEV_USER", "demo"),

		EventBurst:        getenvInt("AUCTIONSYNC_EVENT_BURST", 20),
		EventRefillPerMin: getenvInt("AUCTIONSYNC_EVENT_REFILL_PER_MIN", 120),

		AllowedCIDRS: parseAllowedIPs(getenv("AUCTIONSYNC_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("AUCTIONSYNC_TRUST_PROXY", true),
	}

	switch cfg.DevStore {
	case "memory":
	case "redis":
		cfg.RedisAddr = requireEnv("AUCTIONSYNC_REDIS_ADDR")
		cfg.RedisUser = getenv("AUCTIONSYNC_REDIS_USERNAME", "default")
		cfg.RedisPassword = getenv("AUCTIONSYNC_REDIS_PASSWORD", "")
		cfg.RedisDB = getenvInt("AUCTIONSYNC_REDIS_DB", 0)
		cfg.RedisDT = mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second)
		cfg.RedisRT = mustDuration("REDIS_READ_TIMEOUT", 3*time.Second)
		cfg.RedisWT = mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second)
		cfg.RedisMaxWait = mustDuration("REDIS_MAX_WAIT", 10*time.Second)
		cfg.RedisPingTimeout = mustDuration("REDIS_PING_TIMEOUT", 5*time.Second)
		cfg.RedisPoolSize = getenvInt("REDIS_POOL_SIZE", 10)
		cfg.RedisConnectTimeout = mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second)
		cfg.RedisRetryInterval = mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second)
		cfg.RedisWarnThreshold = getenvInt("REDIS_WARN_THRESHOLD", 3)
	default:
		panic(fmt.Sprintf("❌ FATAL: AUCTIONSYNC_DEV_STORE must be \"memory\" or \"redis\", got %q", cfg.DevStore))
	}

	debugDump(cfg)
	return cfg
}

// loadDotEnv pre-loads a .env file from the working directory if one exists.
// Variables already present in the environment win.
func loadDotEnv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("[WARN] failed to load .env: %v\n", err)
	}
}

// Log config only in debug mode with redacted sensitive fields
func debugDump(cfg *Config) {
	if cfg.LogLevel != "debug" {
		return
	}
	cfgCopy := *cfg
	if cfgCopy.RedisPassword != "" {
		cfgCopy.RedisPassword = "***REDACTED***"
	}
	if cfgCopy.SessionCookie != "" {
		cfgCopy.SessionCookie = "***REDACTED***"
	}
	log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
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
