package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Cache backend selectors.
const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// Config holds the application configuration. It is built once at startup
// and passed by reference; nothing mutates it afterwards.
type Config struct {
	ServerPort      int
	DatabasePath    string
	CacheBackend    string // "memory" or "redis"
	RedisAddr       string
	RedisPassword   string
	CacheTTL        time.Duration
	CacheAggregates bool // also cache the get-all snapshots
	LogLevel        string
}

// Load reads configuration from a .env file (if present) and the
// environment, applies defaults and validates the result.
func Load() (*Config, error) {
	// Best-effort: a missing .env file is fine, the environment wins.
	_ = godotenv.Load()

	port, err := strconv.Atoi(getEnv("PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	ttlSeconds, err := strconv.Atoi(getEnv("CACHE_TTL_SECONDS", "3600"))
	if err != nil {
		return nil, fmt.Errorf("invalid CACHE_TTL_SECONDS: %w", err)
	}

	aggregates, err := strconv.ParseBool(getEnv("CACHE_AGGREGATES", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid CACHE_AGGREGATES: %w", err)
	}

	cfg := &Config{
		ServerPort:      port,
		DatabasePath:    getEnv("DATABASE_PATH", "./posts.db"),
		CacheBackend:    getEnv("CACHE_BACKEND", CacheBackendMemory),
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		CacheTTL:        time.Duration(ttlSeconds) * time.Second,
		CacheAggregates: aggregates,
		LogLevel:        getEnv("LOG_LEVEL", "info"),
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		return fmt.Errorf("PORT out of range: %d", c.ServerPort)
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("CACHE_TTL_SECONDS must be positive")
	}
	switch c.CacheBackend {
	case CacheBackendMemory:
	case CacheBackendRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required when CACHE_BACKEND=redis")
		}
	default:
		return fmt.Errorf("unknown CACHE_BACKEND %q", c.CacheBackend)
	}
	return nil
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
