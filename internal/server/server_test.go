package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/psulibraries/rmdlink/pkg/cache"
	"github.com/psulibraries/rmdlink/pkg/rmd"
)

const profileBody = `{"data":{"id":"1","type":"user","attributes":{"title":"Prof","publications":["P1"],"grants":[]}}}`

// newRMDAPI starts a fake RMD API that knows the user abc123.
func newRMDAPI(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path == "/users/abc123/profile" {
			fmt.Fprint(w, profileBody)
			return
		}
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message":"User not found"}`)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

type testEnv struct {
	handler http.Handler
	calls   *atomic.Int32
	store   *cache.MemoryStore
	logs    *bytes.Buffer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	api, calls := newRMDAPI(t)
	store := cache.NewMemoryStore(100)
	t.Cleanup(func() { store.Close() })

	logs := &bytes.Buffer{}
	logger := log.New(logs)
	f := rmd.NewFetcher(store, rmd.NewHTTPClient(time.Second, nil), rmd.StaticConfig{
		URL:     api.URL + "/",
		Display: []string{"grants", "publications"},
	}, rmd.WithLogger(logger))

	reg := prometheus.NewRegistry()
	s := New(f, Options{
		Logger:  logger,
		Metrics: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	})
	return &testEnv{handler: s.Handler(), calls: calls, store: store, logs: logs}
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("GET /healthz = %d %s", rec.Code, rec.Body)
	}
}

func TestProfile(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/v1/profiles/abc123", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var got struct {
		Username   string         `json:"username"`
		Found      bool           `json:"found"`
		Attributes map[string]any `json:"attributes"`
	}
	decode(t, rec, &got)
	if got.Username != "abc123" || !got.Found || got.Attributes["title"] != "Prof" {
		t.Errorf("profile = %+v", got)
	}

	env.do(t, http.MethodGet, "/v1/profiles/abc123", "")
	if n := env.calls.Load(); n != 1 {
		t.Errorf("RMD API calls = %d, want 1", n)
	}
}

func TestProfile_NotFound(t *testing.T) {
	env := newTestEnv(t)

	for range 2 {
		rec := env.do(t, http.MethodGet, "/v1/profiles/ghost", "")
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
		var got errorEnvelope
		decode(t, rec, &got)
		if got.Error.Code != "NOT_FOUND" {
			t.Errorf("error code = %q", got.Error.Code)
		}
	}
	if n := env.calls.Load(); n != 1 {
		t.Errorf("RMD API calls = %d, want 1 (negative result cached)", n)
	}
}

func TestProfile_InvalidUsername(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/v1/profiles/a..b", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var got errorEnvelope
	decode(t, rec, &got)
	if got.Error.Code != "INVALID_USERNAME" || got.Error.Message == "" {
		t.Errorf("error = %+v", got.Error)
	}
	if env.calls.Load() != 0 {
		t.Error("invalid usernames must not reach the RMD API")
	}
}

func TestAttribute(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/v1/profiles/abc123/attributes/title", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got attributeResponse
	decode(t, rec, &got)
	if got.Attribute != "title" || got.Value != "Prof" {
		t.Errorf("attribute = %+v", got)
	}

	rec = env.do(t, http.MethodGet, "/v1/profiles/abc123/attributes/email", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing attribute status = %d, want 404", rec.Code)
	}
}

func TestPublications(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/v1/profiles/abc123/publications", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got publicationsResponse
	decode(t, rec, &got)
	if len(got.Sections) != 1 || got.Sections[0].Key != "publications" || got.Sections[0].ID != "rmd-publications" {
		t.Errorf("sections = %+v", got.Sections)
	}

	rec = env.do(t, http.MethodGet, "/v1/profiles/ghost/publications", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"sections":[]`) {
		t.Errorf("ghost publications = %d %s", rec.Code, rec.Body)
	}
}

func TestInvalidate(t *testing.T) {
	env := newTestEnv(t)

	env.do(t, http.MethodGet, "/v1/profiles/abc123?tag=node:5", "")

	rec := env.do(t, http.MethodPost, "/v1/cache/invalidate", `{"tags":["node:5"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var got invalidateResponse
	decode(t, rec, &got)
	if got.Invalidated != 1 {
		t.Errorf("invalidated = %d, want 1", got.Invalidated)
	}

	env.do(t, http.MethodGet, "/v1/profiles/abc123", "")
	if n := env.calls.Load(); n != 2 {
		t.Errorf("RMD API calls = %d, want 2 after invalidation", n)
	}

	rec = env.do(t, http.MethodPost, "/v1/cache/invalidate", `{"username":"abc123"}`)
	decode(t, rec, &got)
	if got.Invalidated != 1 {
		t.Errorf("invalidated by username = %d, want 1", got.Invalidated)
	}

	env.do(t, http.MethodGet, "/v1/profiles/ghost", "")
	rec = env.do(t, http.MethodPost, "/v1/cache/invalidate", `{"all":true}`)
	decode(t, rec, &got)
	if got.Invalidated != 1 {
		t.Errorf("invalidated all = %d, want 1", got.Invalidated)
	}
}

func TestInvalidate_BadRequests(t *testing.T) {
	env := newTestEnv(t)
	tests := []struct {
		name string
		body string
		want int
	}{
		{"empty", `{}`, http.StatusBadRequest},
		{"not json", `tags=x`, http.StatusBadRequest},
		{"unknown field", `{"tag":"x"}`, http.StatusBadRequest},
		{"bad username", `{"username":"../x"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/v1/cache/invalidate", tt.body)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d (%s)", rec.Code, tt.want, rec.Body)
			}
		})
	}

	env.store.Close()
	rec := env.do(t, http.MethodPost, "/v1/cache/invalidate", `{"all":true}`)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("closed store status = %d, want 503", rec.Code)
	}
}

func TestRequestID(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/healthz", "")
	id := rec.Header().Get(RequestIDHeader)
	if _, err := uuid.Parse(id); err != nil {
		t.Errorf("generated request id %q is not a UUID", id)
	}

	want := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, want)
	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	if got := rec.Header().Get(RequestIDHeader); got != want {
		t.Errorf("request id = %q, want %q", got, want)
	}
	if !strings.Contains(env.logs.String(), want) {
		t.Error("request log should carry the request id")
	}
}

func TestUnknownRoute(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/v2/nothing", "")
	if rec.Code != http.StatusNotFound || !strings.Contains(rec.Body.String(), `"NOT_FOUND"`) {
		t.Errorf("GET /v2/nothing = %d %s", rec.Code, rec.Body)
	}
}

func TestMetricsRoute(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Errorf("GET /metrics = %d", rec.Code)
	}
}

func TestListenAndServeShutsDown(t *testing.T) {
	s := New(rmd.NewFetcher(cache.NewNullStore(), rmd.NewHTTPClient(time.Second, nil), rmd.StaticConfig{}), Options{
		Logger: log.New(&bytes.Buffer{}),
	})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("ListenAndServe = %v, want nil after cancel", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
