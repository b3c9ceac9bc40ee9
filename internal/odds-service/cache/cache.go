// Package cache holds the key/value contract used by the odds service and
// its backends (Redis, in-process sturdyc) plus the instrumented decorator.
package cache

import (
	"context"
	"errors"
	"strconv"
	"time"
)

// Cache is a key -> bytes store with per-key TTL on write. Get reports a
// hit explicitly; it never infers one from latency.
type Cache interface {
	Get(ctx context.Context, key string) (value []byte, hit bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete reports whether the key was present.
	Delete(ctx context.Context, key string) (bool, error)
}

const keyPrefix = "odds:"

// ErrBadKey is returned by ParseOddsKey for keys outside the odds namespace.
var ErrBadKey = errors.New("not an odds cache key")

// OddsKey returns the namespaced key for an odds record, e.g. "odds:42".
func OddsKey(id int64) string { return keyPrefix + strconv.FormatInt(id, 10) }

// ParseOddsKey is the inverse of OddsKey.
func ParseOddsKey(key string) (int64, error) {
	if len(key) <= len(keyPrefix) || key[:len(keyPrefix)] != keyPrefix {
		return 0, ErrBadKey
	}
	id, err := strconv.ParseInt(key[len(keyPrefix):], 10, 64)
	if err != nil {
		return 0, ErrBadKey
	}
	return id, nil
}
