package rmd

import (
	"slices"
	"time"
)

// Defaults applied when a [ConfigSource] leaves a setting unset.
const (
	DefaultAPIURL   = "https://metadata.libraries.psu.edu/v1/"
	DefaultCacheTTL = 172800 * time.Second
)

// ConfigSource supplies the settings a [Fetcher] reads on every lookup.
// Implementations must be safe for concurrent use.
type ConfigSource interface {
	// APIURL returns the API base URL, ending in "/". Empty selects
	// [DefaultAPIURL].
	APIURL() string

	// CacheTTL returns how long records stay cached. Zero or negative
	// selects [DefaultCacheTTL].
	CacheTTL() time.Duration

	// PublicationsDisplay returns the enabled publication category keys in
	// display order.
	PublicationsDisplay() []string
}

// StaticConfig is a fixed [ConfigSource].
type StaticConfig struct {
	URL     string
	TTL     time.Duration
	Display []string
}

func (c StaticConfig) APIURL() string                { return c.URL }
func (c StaticConfig) CacheTTL() time.Duration       { return c.TTL }
func (c StaticConfig) PublicationsDisplay() []string { return slices.Clone(c.Display) }
