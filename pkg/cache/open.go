package cache

import (
	"context"
	"fmt"
)

// Backend names accepted by [Open].
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
	BackendNone  = "none"
)

// Options selects and configures a cache backend.
type Options struct {
	Backend string
	Dir     string // file backend
	Redis   RedisOptions
	Mongo   MongoOptions

	// Prefix scopes every key, for backends shared between projects.
	Prefix string
}

// Keyer returns the key builder matching opts.
func (opts Options) Keyer() Keyer {
	if opts.Prefix == "" {
		return NewDefaultKeyer()
	}
	return NewScopedKeyer(nil, opts.Prefix)
}

// Open creates the backend named by opts.Backend. An empty backend means
// the file cache.
func Open(ctx context.Context, opts Options) (Cache, error) {
	var (
		c   Cache
		err error
	)
	switch opts.Backend {
	case "", BackendFile:
		var fc *FileCache
		if fc, err = NewFileCache(opts.Dir); err == nil {
			c = fc
		}
	case BackendRedis:
		var rc *RedisCache
		if rc, err = NewRedisCache(ctx, opts.Redis); err == nil {
			c = rc
		}
	case BackendMongo:
		var mc *MongoCache
		if mc, err = NewMongoCache(ctx, opts.Mongo); err == nil {
			c = mc
		}
	case BackendNone:
		c = NewNullCache()
	default:
		err = fmt.Errorf("unknown cache backend %q", opts.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s cache: %w", opts.Backend, err)
	}
	return c, nil
}
