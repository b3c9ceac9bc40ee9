package cache

import (
	"context"
	"time"

	"github.com/viccon/sturdyc"
)

// LocalConfig configures the in-process sturdyc backend.
type LocalConfig struct {
	// Capacity is the maximum number of entries. Must be greater than 0.
	Capacity int

	// NumShards controls lock striping. Must be greater than 0.
	NumShards int

	// TTL applies to every entry; sturdyc has no per-entry TTL.
	TTL time.Duration

	// EvictionPercentage is how much of a full shard is dropped, 1-100.
	EvictionPercentage int
}

// DefaultLocalConfig returns the settings used when only a TTL is configured.
func DefaultLocalConfig(ttl time.Duration) LocalConfig {
	return LocalConfig{
		Capacity:           10000,
		NumShards:          64,
		TTL:                ttl,
		EvictionPercentage: 10,
	}
}

// Validate checks the configuration before building the client.
func (c LocalConfig) Validate() error {
	switch {
	case c.Capacity <= 0:
		return &ConfigError{Field: "Capacity", Message: "must be greater than 0"}
	case c.NumShards <= 0:
		return &ConfigError{Field: "NumShards", Message: "must be greater than 0"}
	case c.TTL <= 0:
		return &ConfigError{Field: "TTL", Message: "must be greater than 0"}
	case c.EvictionPercentage < 1 || c.EvictionPercentage > 100:
		return &ConfigError{Field: "EvictionPercentage", Message: "must be between 1 and 100"}
	}
	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "cache config error in field " + e.Field + ": " + e.Message
}

// LocalCache is a Cache held in process memory. Entries written by other
// processes are invisible to it; see the invalidation consumer.
type LocalCache struct {
	client *sturdyc.Client[[]byte]
}

// NewLocalCache validates cfg and builds the sturdyc client.
func NewLocalCache(cfg LocalConfig) (*LocalCache, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	client := sturdyc.New[[]byte](cfg.Capacity, cfg.NumShards, cfg.TTL, cfg.EvictionPercentage)
	return &LocalCache{client: client}, nil
}

func (l *LocalCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := l.client.Get(key)
	if !ok {
		return nil, false, nil
	}
	return v, true, nil
}

// Set ignores ttl: the client-wide TTL from LocalConfig applies.
func (l *LocalCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	l.client.Set(key, value)
	return nil
}

func (l *LocalCache) Delete(_ context.Context, key string) (bool, error) {
	_, ok := l.client.Get(key)
	l.client.Delete(key)
	return ok, nil
}
