// Package config loads rmdlink settings.
//
// Settings come from, in increasing precedence: built-in defaults, a TOML
// file, a .env file and RMD_* environment variables. A minimal file:
//
//	api_url = "https://metadata.libraries.psu.edu/v1/"
//	cache_ttl = 172800
//	publications_display = ["publications", "grants"]
//
//	[cache]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
//
//	[server]
//	addr = ":8080"
//
// [Config] implements rmd.ConfigSource.
package config

import (
	"net/url"
	"slices"
	"time"

	"github.com/psulibraries/rmdlink/pkg/cache"
	"github.com/psulibraries/rmdlink/pkg/rmd"
)

// Defaults.
const (
	DefaultCacheTTLSeconds    = 172800
	DefaultHTTPTimeoutSeconds = 10
	DefaultServerAddr         = ":8080"
)

// Config holds every rmdlink setting.
type Config struct {
	APIBaseURL   string   `toml:"api_url"`
	APIKey       string   `toml:"api_key"`
	CacheTTLSecs int      `toml:"cache_ttl"`
	Publications []string `toml:"publications_display"`

	// Host CMS wiring. Carried so one file can configure both sides; the
	// fetcher never reads them.
	AttachedContentType   string `toml:"attached_content_type"`
	AttachedUsernameField string `toml:"attached_username_field"`

	HTTPTimeoutSecs int `toml:"http_timeout"`

	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`

	// Source is the file the config was read from, empty for defaults only.
	Source string `toml:"-"`
}

// CacheConfig selects the cache backend.
type CacheConfig struct {
	// Backend is one of cache.Backends(). Empty lets the command pick:
	// file for one-shot CLI lookups, memory for the server.
	Backend         string `toml:"backend"`
	Dir             string `toml:"dir"`
	Namespace       string `toml:"namespace"`
	MemorySize      int    `toml:"memory_size"`
	RedisURL        string `toml:"redis_url"`
	RedisPrefix     string `toml:"redis_prefix"`
	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`
}

// ServerConfig configures `rmdlink serve`.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		APIBaseURL:      rmd.DefaultAPIURL,
		CacheTTLSecs:    DefaultCacheTTLSeconds,
		Publications:    rmd.CategoryKeys(),
		HTTPTimeoutSecs: DefaultHTTPTimeoutSeconds,
		Server:          ServerConfig{Addr: DefaultServerAddr},
	}
}

// APIURL implements rmd.ConfigSource.
func (c *Config) APIURL() string { return c.APIBaseURL }

// CacheTTL implements rmd.ConfigSource.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSecs) * time.Second
}

// PublicationsDisplay implements rmd.ConfigSource.
func (c *Config) PublicationsDisplay() []string {
	return slices.Clone(c.Publications)
}

// HTTPTimeout returns the outbound request timeout.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSecs) * time.Second
}

// CacheOptions converts the cache table for cache.Open. fallback is used
// when no backend is configured.
func (c *Config) CacheOptions(fallback string) cache.Options {
	backend := c.Cache.Backend
	if backend == "" {
		backend = fallback
	}
	return cache.Options{
		Backend:         backend,
		Dir:             c.Cache.Dir,
		MemorySize:      c.Cache.MemorySize,
		RedisURL:        c.Cache.RedisURL,
		RedisPrefix:     c.Cache.RedisPrefix,
		MongoURI:        c.Cache.MongoURI,
		MongoDatabase:   c.Cache.MongoDatabase,
		MongoCollection: c.Cache.MongoCollection,
	}
}

// Keyer returns the cache keyer for the configured namespace.
func (c *Config) Keyer() cache.Keyer {
	return cache.NewDefaultKeyer(c.Cache.Namespace)
}

// Redacted returns a copy safe to print: the API key is masked and
// connection URLs lose their passwords.
func (c *Config) Redacted() *Config {
	out := *c
	out.Publications = slices.Clone(c.Publications)
	if out.APIKey != "" {
		out.APIKey = "********"
	}
	out.Cache.RedisURL = redactURL(out.Cache.RedisURL)
	out.Cache.MongoURI = redactURL(out.Cache.MongoURI)
	return &out
}

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "********"
	}
	return u.Redacted()
}

var _ rmd.ConfigSource = (*Config)(nil)
