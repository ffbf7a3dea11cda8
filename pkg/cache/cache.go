package cache

import (
	"context"
	"time"
)

// Cache is the shared cache abstraction. The local backend is the default;
// redis is used when several server instances must agree (e.g. the alert
// dedup window).
type Cache interface {
	// Get returns the cached value and whether it exists.
	Get(ctx context.Context, key string) (interface{}, bool)

	// Set stores a value with an expiration.
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error

	// SetNX stores the value only when the key is absent. It reports
	// whether the value was stored.
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error)

	// Delete removes a key.
	Delete(ctx context.Context, key string) error

	// Exists reports whether a key is present.
	Exists(ctx context.Context, key string) bool

	// Clear drops all entries.
	Clear(ctx context.Context) error

	// Close releases the underlying connection, if any.
	Close() error
}

// Config selects and configures a cache backend.
type Config struct {
	// "local" or "redis"
	Type string `json:"type" env:"CACHE_TYPE"`

	Redis RedisConfig `json:"redis"`
	Local LocalConfig `json:"local"`
}

type RedisConfig struct {
	Addr     string `json:"addr" env:"REDIS_ADDR"`
	Password string `json:"password" env:"REDIS_PASSWORD"`
	DB       int    `json:"db" env:"REDIS_DB"`
}

type LocalConfig struct {
	DefaultExpiration time.Duration `json:"default_expiration"`
	CleanupInterval   time.Duration `json:"cleanup_interval"`
}
