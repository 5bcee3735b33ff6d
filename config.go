package client

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/hierovision/hierovision/client/internal/shardqueue"
	"github.com/hierovision/hierovision/client/internal/store"
)

// DefaultBaseURL is the API root used when none is configured.
const DefaultBaseURL = "http://localhost:5000/api"

// Config holds the client configuration.
// Environment variables are parsed from the HIEROVISION_ prefix, e.g.
// HIEROVISION_API_BASE_URL, HIEROVISION_STORE, HIEROVISION_QUEUE_SHARDS.
type Config struct {
	APIBaseURL  string        `envconfig:"API_BASE_URL" default:"http://localhost:5000/api"`
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"30s"`

	// Credential store: memory, file, sqlite or redis.
	Store         string `envconfig:"STORE" default:"file"`
	StorePath     string `envconfig:"STORE_PATH" default:""`
	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
	RedisPrefix   string `envconfig:"REDIS_PREFIX" default:"hierovision:"`

	// Client-side throttling; 0 disables it.
	RateLimit float64 `envconfig:"RATE_LIMIT" default:"0"`
	RateBurst int     `envconfig:"RATE_BURST" default:"1"`

	Queue shardqueue.Config `envconfig:"QUEUE"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Debug    bool   `envconfig:"DEBUG" default:"false"`
}

// ResolveDefaults validates the store kind and normalizes the base URL.
func (c *Config) ResolveDefaults() error {
	c.Store = strings.ToLower(strings.TrimSpace(c.Store))
	switch store.Kind(c.Store) {
	case store.KindMemory, store.KindFile, store.KindSQLite:
	case store.KindRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("HIEROVISION_REDIS_ADDR is required for the redis store")
		}
	default:
		return fmt.Errorf("unsupported STORE: %s", c.Store)
	}

	c.APIBaseURL = strings.TrimRight(strings.TrimSpace(c.APIBaseURL), "/")
	if c.APIBaseURL == "" {
		c.APIBaseURL = DefaultBaseURL
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be > 0")
	}
	return nil
}

// StoreOptions converts the store settings for store.Open.
func (c *Config) StoreOptions() store.Options {
	return store.Options{
		Kind:          store.Kind(c.Store),
		Path:          c.StorePath,
		RedisAddr:     c.RedisAddr,
		RedisPassword: c.RedisPassword,
		RedisDB:       c.RedisDB,
		RedisPrefix:   c.RedisPrefix,
	}
}

// LoadConfig reads HIEROVISION_* environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("HIEROVISION", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}
	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
