// Package cache provides byte-oriented caches for registry responses.
//
// Four backends implement [Cache]:
//
//   - [FileCache]: hash-sharded JSON files, the default for CLI use
//   - [RedisCache]: a shared Redis instance (github.com/redis/go-redis/v9)
//   - [MongoCache]: a MongoDB collection (go.mongodb.org/mongo-driver)
//   - [NullCache]: never stores anything, used with --no-cache
//
// [Open] selects a backend from [Options]. Keys are built with a [Keyer] so
// that different repositories never collide in a shared backend.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values under string keys with an optional TTL.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Keyer builds cache keys.
type Keyer interface {
	// HTTPKey returns the key for a cached response body. namespace
	// separates clients sharing a backend, typically one per repository URL.
	HTTPKey(namespace, key string) string
}

// DefaultKeyer produces human-readable "http:<namespace>:<key>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

// ScopedKeyer prefixes every key of an inner Keyer so several projects can
// share one Redis or MongoDB backend without seeing each other's entries.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner, or the default keyer if inner is nil.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.prefix + k.inner.HTTPKey(namespace, key)
}
