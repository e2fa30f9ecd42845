// Package httputil provides retry helpers for rmdlink's network dependencies.
//
// [Retry] wraps an operation with automatic retry for transient failures,
// using exponential backoff:
//
//	err := httputil.RetryWithBackoff(ctx, func() error {
//	    if err := rdb.Ping(ctx).Err(); err != nil {
//	        return httputil.Retryable(err)
//	    }
//	    return nil
//	})
//
// Only errors wrapped with [Retryable] are retried; anything else is returned
// immediately.
//
// The cache backends use it to wait for Redis or MongoDB during startup. The
// RMD profile fetch path does not retry: each profile lookup
// performs at most one outbound request and falls back to an empty result.
package httputil
