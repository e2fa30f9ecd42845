// Package observability provides hooks for metrics and tracing of RMD lookups.
//
// This package enables optional instrumentation without adding hard
// dependencies to the fetcher. The fetcher calls the registered hooks; the
// application decides what (if anything) listens.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// The prom subpackage implements every hook with Prometheus collectors.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    m := prom.New(prometheus.DefaultRegisterer)
//	    observability.SetCacheHooks(m)
//	    observability.SetHTTPHooks(m)
//	    observability.SetFetchHooks(m)
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Cache().OnCacheHit(ctx, "profile")
package observability

import (
	"context"
	"sync"
	"time"
)

// Fetch outcomes reported to [FetchHooks.OnFetchComplete].
const (
	OutcomeHit      = "hit"       // served from cache
	OutcomeFetched  = "fetched"   // remote 2xx with data, cached
	OutcomeEmpty    = "empty"     // remote 2xx without data, not cached
	OutcomeNotFound = "not_found" // remote "user not found", negatively cached
	OutcomeError    = "error"     // remote failure, not cached
)

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, endpoint string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, endpoint string)

	// OnCacheSet records a cache write. negative is true for "user not
	// found" entries.
	OnCacheSet(ctx context.Context, endpoint string, size int, negative bool)

	// OnCacheInvalidate records a tag invalidation and how many entries it
	// removed.
	OnCacheInvalidate(ctx context.Context, tags []string, removed int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from HTTP client operations.
type HTTPHooks interface {
	// OnRequest records an outgoing HTTP request.
	OnRequest(ctx context.Context, method, host, path string)

	// OnResponse records an HTTP response.
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)

	// OnError records an HTTP error (network failure, timeout).
	OnError(ctx context.Context, method, host, path string, err error)
}

// =============================================================================
// Fetch Hooks
// =============================================================================

// FetchHooks receives one event per completed fetcher lookup.
type FetchHooks interface {
	// OnFetchComplete records how a lookup for endpoint was resolved.
	OnFetchComplete(ctx context.Context, endpoint, outcome string, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)               {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)              {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int, bool)    {}
func (NoopCacheHooks) OnCacheInvalidate(context.Context, []string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// NoopFetchHooks is a no-op implementation of FetchHooks.
type NoopFetchHooks struct{}

func (NoopFetchHooks) OnFetchComplete(context.Context, string, string, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	cacheHooks CacheHooks = NoopCacheHooks{}
	httpHooks  HTTPHooks  = NoopHTTPHooks{}
	fetchHooks FetchHooks = NoopFetchHooks{}
	hooksMu    sync.RWMutex
)

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any lookups.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
// This should be called once at application startup before any HTTP operations.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// SetFetchHooks registers custom fetch hooks.
func SetFetchHooks(h FetchHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		fetchHooks = h
	}
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Fetch returns the registered fetch hooks.
func Fetch() FetchHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return fetchHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
	fetchHooks = NoopFetchHooks{}
}
