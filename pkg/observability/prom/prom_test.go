package prom

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/psulibraries/rmdlink/pkg/observability"
)

func TestMetricsCount(t *testing.T) {
	ctx := context.Background()
	m := New(prometheus.NewRegistry())

	m.OnCacheHit(ctx, "profile")
	m.OnCacheHit(ctx, "profile")
	m.OnCacheMiss(ctx, "profile")
	m.OnCacheSet(ctx, "profile", 10, true)
	m.OnCacheInvalidate(ctx, []string{"rmd_data"}, 4)
	m.OnResponse(ctx, "GET", "rmd.example", "/v1/users/u/profile", 404, time.Millisecond)
	m.OnResponse(ctx, "GET", "rmd.example", "/v1/users/u/profile", 200, time.Millisecond)
	m.OnFetchComplete(ctx, "profile", observability.OutcomeNotFound, time.Millisecond)

	if got := testutil.ToFloat64(m.cacheHits.WithLabelValues("profile")); got != 2 {
		t.Errorf("cache hits = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.cacheMisses.WithLabelValues("profile")); got != 1 {
		t.Errorf("cache misses = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.cacheSets.WithLabelValues("profile", "true")); got != 1 {
		t.Errorf("negative cache sets = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.cacheInvalidated); got != 4 {
		t.Errorf("invalidated = %v, want 4", got)
	}
	if got := testutil.ToFloat64(m.httpRequests.WithLabelValues("rmd.example", "404")); got != 1 {
		t.Errorf("404 responses = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.fetches.WithLabelValues("profile", observability.OutcomeNotFound)); got != 1 {
		t.Errorf("not_found fetches = %v, want 1", got)
	}
}

func TestInstall(t *testing.T) {
	defer observability.Reset()

	m := New(prometheus.NewRegistry())
	m.Install()

	if observability.Cache() != m || observability.HTTP() != m || observability.Fetch() != m {
		t.Error("Install() should register all hooks")
	}
}

func TestStatusLabel(t *testing.T) {
	tests := map[int]string{200: "2xx", 204: "2xx", 301: "3xx", 400: "4xx", 404: "404", 503: "5xx", 0: "other"}
	for code, want := range tests {
		if got := statusLabel(code); got != want {
			t.Errorf("statusLabel(%d) = %q, want %q", code, got, want)
		}
	}
}
