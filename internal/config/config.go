// Package config loads the storefront settings from the environment. A .env
// file in the working directory is read first when present.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

type Config struct {
	APIURL   string `env:"API_URL,default=http://localhost:3000"`
	HTTPPort string `env:"HTTP_PORT,default=8080"`

	StorageBackend string `env:"STORAGE_BACKEND,default=sqlite"`
	SQLitePath     string `env:"SQLITE_PATH,default=mueblix.db"`
	RedisAddr      string `env:"REDIS_ADDR,default=localhost:6379"`
	RedisPassword  string `env:"REDIS_PASSWORD"`
	RedisDB        int    `env:"REDIS_DB,default=0"`

	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT,default=30s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s"`

	CatalogPageLimit int `env:"CATALOG_PAGE_LIMIT,default=20"`

	// requests per second towards the remote API, 0 disables the limiter
	RemoteRateLimit float64       `env:"REMOTE_RATE_LIMIT,default=0"`
	RemoteRateBurst int           `env:"REMOTE_RATE_BURST,default=1"`
	BreakerFailures int           `env:"BREAKER_FAILURES,default=5"`
	BreakerTimeout  time.Duration `env:"BREAKER_TIMEOUT,default=30s"`

	LogLevel string `env:"LOG_LEVEL,default=info"`
}

// Load reads the given .env files (".env" when none are named) and decodes the
// environment. Missing files are skipped.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("failed to decode environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("invalid API_URL %q", c.APIURL)
	}

	c.StorageBackend = strings.ToLower(strings.TrimSpace(c.StorageBackend))
	switch c.StorageBackend {
	case BackendSQLite, BackendRedis, BackendMemory:
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend)
	}

	if c.CatalogPageLimit <= 0 {
		return fmt.Errorf("CATALOG_PAGE_LIMIT must be positive, got %d", c.CatalogPageLimit)
	}
	if c.RemoteRateLimit < 0 {
		return fmt.Errorf("REMOTE_RATE_LIMIT must not be negative")
	}
	if c.BreakerFailures < 0 {
		return fmt.Errorf("BREAKER_FAILURES must not be negative")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}
	return nil
}
