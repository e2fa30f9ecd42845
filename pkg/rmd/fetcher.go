package rmd

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/psulibraries/rmdlink/pkg/cache"
	"github.com/psulibraries/rmdlink/pkg/errors"
	"github.com/psulibraries/rmdlink/pkg/observability"
)

// EndpointProfile is the API endpoint holding a user's profile.
const EndpointProfile = "profile"

// userNotFoundMessage marks the 404 responses that are cached.
const userNotFoundMessage = "user not found"

// Fetcher looks up RMD profiles through a cache.
//
// A Fetcher holds no per-lookup state and is safe for concurrent use.
type Fetcher struct {
	store  cache.Store
	http   HTTPGetter
	config ConfigSource
	keyer  cache.Keyer
	logger *log.Logger
	now    func() time.Time

	mu      sync.Mutex
	pending []string // tags queued by AddCacheTags
}

// Option configures a [Fetcher].
type Option func(*Fetcher)

// WithLogger sets the logger failures are reported to. The default is
// log.Default().
func WithLogger(l *log.Logger) Option {
	return func(f *Fetcher) {
		if l != nil {
			f.logger = l
		}
	}
}

// WithKeyer sets how cache keys are built. The default writes
// "psul_rmd_data:{endpoint}:{username}".
func WithKeyer(k cache.Keyer) Option {
	return func(f *Fetcher) {
		if k != nil {
			f.keyer = k
		}
	}
}

// WithClock sets the time source used to compute cache expiry.
func WithClock(now func() time.Time) Option {
	return func(f *Fetcher) {
		if now != nil {
			f.now = now
		}
	}
}

// NewFetcher creates a Fetcher. store, getter and cfg are required; a nil
// value is a wiring bug and panics.
func NewFetcher(store cache.Store, getter HTTPGetter, cfg ConfigSource, opts ...Option) *Fetcher {
	switch {
	case store == nil:
		panic("rmd: NewFetcher called with nil cache store")
	case getter == nil:
		panic("rmd: NewFetcher called with nil HTTP getter")
	case cfg == nil:
		panic("rmd: NewFetcher called with nil config")
	}
	f := &Fetcher{
		store:  store,
		http:   getter,
		config: cfg,
		keyer:  cache.NewDefaultKeyer(""),
		logger: log.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FetchOption configures a single lookup.
type FetchOption func(*fetchOptions)

type fetchOptions struct {
	tags []string
	ids  *IDRegistry
}

// WithCacheTags attaches tags to the cache write made by this lookup only.
func WithCacheTags(tags ...string) FetchOption {
	return func(o *fetchOptions) {
		o.tags = append(o.tags, tags...)
	}
}

// WithIDRegistry makes [Fetcher.FetchPublications] draw section ids from r,
// so ids stay unique across several calls rendered into one page.
func WithIDRegistry(r *IDRegistry) FetchOption {
	return func(o *fetchOptions) {
		o.ids = r
	}
}

// AddCacheTags queues tags for the next lookup's cache write. The queue is
// emptied by that lookup whether or not it writes to the cache.
func (f *Fetcher) AddCacheTags(tags ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending = append(f.pending, tags...)
}

func (f *Fetcher) drainTags() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	tags := f.pending
	f.pending = nil
	return tags
}

// FetchProfile returns the profile record for username. The result is empty
// when the user is unknown or the lookup failed.
func (f *Fetcher) FetchProfile(ctx context.Context, username string, opts ...FetchOption) Record {
	return f.lookup(ctx, EndpointProfile, username, buildOptions(opts))
}

// FetchAttribute returns one profile attribute. ok is false when the
// attribute is absent or the record is empty.
func (f *Fetcher) FetchAttribute(ctx context.Context, username, attribute string, opts ...FetchOption) (any, bool) {
	return f.FetchProfile(ctx, username, opts...).Attribute(attribute)
}

// FetchPublications returns the enabled, non-empty publication categories of
// username's profile in configured display order.
func (f *Fetcher) FetchPublications(ctx context.Context, username string, opts ...FetchOption) Publications {
	o := buildOptions(opts)
	rec := f.lookup(ctx, EndpointProfile, username, o)
	if rec.Empty() {
		return nil
	}
	ids := o.ids
	if ids == nil {
		ids = NewIDRegistry()
	}
	return buildPublications(rec, f.config.PublicationsDisplay(), ids)
}

// InvalidateUser drops every cached record for username.
func (f *Fetcher) InvalidateUser(ctx context.Context, username string) (int, error) {
	if err := errors.ValidateUsername(username); err != nil {
		return 0, err
	}
	return f.InvalidateTags(ctx, ProfileTag(username))
}

// InvalidateAll drops every record the fetcher has cached.
func (f *Fetcher) InvalidateAll(ctx context.Context) (int, error) {
	return f.InvalidateTags(ctx, BaseTag)
}

// InvalidateTags drops every cached entry carrying any of tags.
func (f *Fetcher) InvalidateTags(ctx context.Context, tags ...string) (int, error) {
	n, err := f.store.InvalidateTags(ctx, tags...)
	if err != nil {
		return n, errors.Wrap(errors.ErrCodeCache, err, "invalidate %s", strings.Join(tags, ","))
	}
	observability.Cache().OnCacheInvalidate(ctx, tags, n)
	f.logger.Debug("cache invalidated", "tags", tags, "removed", n)
	return n, nil
}

func buildOptions(opts []FetchOption) fetchOptions {
	var o fetchOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// lookup resolves one (endpoint, username) pair. It never fails: every
// error path is logged and yields an empty record.
func (f *Fetcher) lookup(ctx context.Context, endpoint, username string, o fetchOptions) Record {
	start := time.Now()
	tags := NewTagSet(username)
	tags.Add(f.drainTags()...)
	tags.Add(o.tags...)

	done := func(outcome string) {
		observability.Fetch().OnFetchComplete(ctx, endpoint, outcome, time.Since(start))
	}

	if err := errors.ValidateUsername(username); err != nil {
		f.logger.Warn("rmd lookup skipped", "username", username, "err", err)
		done(observability.OutcomeError)
		return emptyRecord(username)
	}

	key := f.keyer.RecordKey(endpoint, username)
	if rec, ok := f.cached(ctx, key, endpoint); ok {
		done(observability.OutcomeHit)
		return rec
	}

	rec, err := f.fetch(ctx, endpoint, username)
	switch {
	case err == nil && rec.Found:
		f.write(ctx, key, endpoint, rec, tags)
		done(observability.OutcomeFetched)
		return rec

	case err == nil:
		f.logger.Debug("rmd response without data", "username", username, "endpoint", endpoint)
		done(observability.OutcomeEmpty)
		return emptyRecord(username)

	case errors.Is(err, errors.ErrCodeUserNotFound):
		f.logger.Debug("rmd user not found", "username", username)
		f.write(ctx, key, endpoint, emptyRecord(username), tags)
		done(observability.OutcomeNotFound)
		return emptyRecord(username)

	default:
		f.logger.Error("rmd fetch failed",
			"username", username,
			"endpoint", endpoint,
			"code", errors.GetCode(err),
			"err", err)
		done(observability.OutcomeError)
		return emptyRecord(username)
	}
}

// cached reads key from the store. Read and decode failures count as misses.
func (f *Fetcher) cached(ctx context.Context, key, endpoint string) (Record, bool) {
	hooks := observability.Cache()
	data, ok, err := f.store.Get(ctx, key)
	if err != nil {
		f.logger.Warn("cache read failed", "key", key, "code", errors.ErrCodeCache, "err", err)
		hooks.OnCacheMiss(ctx, endpoint)
		return Record{}, false
	}
	if !ok {
		hooks.OnCacheMiss(ctx, endpoint)
		return Record{}, false
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		f.logger.Warn("cache entry undecodable", "key", key, "err", err)
		hooks.OnCacheMiss(ctx, endpoint)
		return Record{}, false
	}
	hooks.OnCacheHit(ctx, endpoint)
	return rec, true
}

func (f *Fetcher) write(ctx context.Context, key, endpoint string, rec Record, tags *TagSet) {
	data, err := json.Marshal(rec)
	if err != nil {
		f.logger.Error("cache encode failed", "key", key, "err", err)
		return
	}
	expiresAt := f.now().Add(f.ttl())
	if err := f.store.Set(ctx, key, data, expiresAt, tags.Tags()); err != nil {
		f.logger.Warn("cache write failed", "key", key, "code", errors.ErrCodeCache, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, endpoint, len(data), !rec.Found)
}

// fetch performs the single outbound request for a lookup.
func (f *Fetcher) fetch(ctx context.Context, endpoint, username string) (Record, error) {
	u := f.endpointURL(endpoint, username)
	status, body, err := f.http.Get(ctx, u, map[string]string{"Accept": "application/json"})
	if err != nil {
		return Record{}, err
	}

	switch {
	case status == http.StatusNotFound && isUserNotFound(body):
		return Record{}, errors.New(errors.ErrCodeUserNotFound, "user %q not found", username)
	case status < 200 || status > 299:
		return Record{}, errors.New(errors.ErrCodeBadStatus, "GET %s: status %d", u, status)
	}

	rec, err := decodeProfile(username, body)
	if err != nil {
		return Record{}, errors.Wrap(errors.ErrCodeMalformedResponse, err, "GET %s: decode body", u)
	}
	return rec, nil
}

func (f *Fetcher) endpointURL(endpoint, username string) string {
	base := f.config.APIURL()
	if base == "" {
		base = DefaultAPIURL
	}
	return base + "users/" + url.PathEscape(username) + "/" + endpoint
}

func (f *Fetcher) ttl() time.Duration {
	if ttl := f.config.CacheTTL(); ttl > 0 {
		return ttl
	}
	return DefaultCacheTTL
}

func isUserNotFound(body []byte) bool {
	return strings.Contains(strings.ToLower(string(body)), userNotFoundMessage)
}
