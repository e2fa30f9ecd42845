// Package cache provides the key-value stores behind the RMD fetcher.
//
// Every store implements [Store]: opaque byte values with an absolute expiry
// and a set of tags, plus bulk invalidation by tag. Tags let a host
// application purge everything it knows is stale, for example all entries for
// one user after their profile page changes:
//
//	store.Set(ctx, "psul_rmd_data:profile:abc123", data, time.Now().Add(ttl),
//	    []string{"rmd_data", "rmd_data:profile:abc123"})
//	store.InvalidateTags(ctx, "rmd_data:profile:abc123")
//
// # Backends
//
//   - [MemoryStore]: in-process LRU, the default
//   - [FileStore]: JSON files under ~/.cache/rmdlink, for the CLI
//   - [RedisStore]: shared cache for multi-instance deployments
//   - [MongoStore]: shared cache with server-side TTL reaping
//   - [NullStore]: caching disabled
//
// [Open] selects a backend by name.
//
// # Keys
//
// [Keyer] builds record keys of the form "{namespace}:{endpoint}:{username}";
// [ScopedKeyer] adds a prefix so several sites can share one backend.
package cache
