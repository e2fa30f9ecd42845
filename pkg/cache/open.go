package cache

import (
	"context"
	"fmt"
	"slices"
)

// Backend names accepted by [Open].
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
	BackendNone   = "none"
)

// Backends lists every backend name [Open] understands.
func Backends() []string {
	return []string{BackendMemory, BackendFile, BackendRedis, BackendMongo, BackendNone}
}

// ValidBackend reports whether name is a known backend.
func ValidBackend(name string) bool {
	return slices.Contains(Backends(), name)
}

// Options selects and configures a store for [Open].
type Options struct {
	Backend string // one of Backends(); empty means memory

	Dir        string // file backend directory
	MemorySize int    // memory backend capacity (entries)

	RedisURL    string // redis backend connection URL
	RedisPrefix string // prefix for every redis key

	MongoURI        string
	MongoDatabase   string
	MongoCollection string
}

// Open builds the store described by opts. Network backends are pinged with
// retries before Open returns.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case "", BackendMemory:
		return NewMemoryStore(opts.MemorySize), nil
	case BackendFile:
		if opts.Dir == "" {
			return nil, fmt.Errorf("file cache: directory not set")
		}
		return NewFileStore(opts.Dir)
	case BackendRedis:
		if opts.RedisURL == "" {
			return nil, fmt.Errorf("redis cache: url not set")
		}
		return DialRedis(ctx, opts.RedisURL, opts.RedisPrefix)
	case BackendMongo:
		if opts.MongoURI == "" {
			return nil, fmt.Errorf("mongo cache: uri not set")
		}
		return DialMongo(ctx, opts.MongoURI, opts.MongoDatabase, opts.MongoCollection)
	case BackendNone:
		return NewNullStore(), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", opts.Backend)
	}
}
