package config

import (
	"fmt"
	"strings"

	"github.com/psulibraries/rmdlink/pkg/cache"
	"github.com/psulibraries/rmdlink/pkg/errors"
	"github.com/psulibraries/rmdlink/pkg/rmd"
)

// Validate checks the configuration and reports every problem in a single
// INVALID_CONFIG error.
func (c *Config) Validate() error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if err := errors.ValidateAPIURL(c.APIBaseURL); err != nil {
		add("%s", errors.UserMessage(err))
	}
	if c.CacheTTLSecs < 0 {
		add("cache_ttl must not be negative")
	}
	if c.HTTPTimeoutSecs < 0 {
		add("http_timeout must not be negative")
	}

	seen := make(map[string]bool, len(c.Publications))
	for _, key := range c.Publications {
		if _, ok := rmd.CategoryLabel(key); !ok {
			add("publications_display: unknown category %q", key)
		}
		if seen[key] {
			add("publications_display: %q listed twice", key)
		}
		seen[key] = true
	}

	switch b := c.Cache.Backend; {
	case b == "":
	case !cache.ValidBackend(b):
		add("cache.backend %q must be one of %s", b, strings.Join(cache.Backends(), ", "))
	case b == cache.BackendRedis && c.Cache.RedisURL == "":
		add("cache.redis_url is required for the redis backend")
	case b == cache.BackendMongo && c.Cache.MongoURI == "":
		add("cache.mongo_uri is required for the mongo backend")
	}
	if c.Cache.MemorySize < 0 {
		add("cache.memory_size must not be negative")
	}

	if len(problems) > 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "%s", strings.Join(problems, "; "))
	}
	return nil
}
