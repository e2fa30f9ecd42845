package cache

import (
	"context"
	"errors"
	"slices"
	"time"
)

// ErrClosed is returned by stores that have been closed.
var ErrClosed = errors.New("cache store closed")

// Store is a key-value cache with absolute expiry and tag-based invalidation.
//
// Values are opaque bytes; callers own the encoding. A zero expiresAt means
// the entry never expires. An entry is a miss once the current time is after
// its expiresAt.
//
// All implementations are safe for concurrent use.
type Store interface {
	// Get returns the stored value for key. The boolean is false on a miss,
	// including expired entries; err is reserved for backend failures.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key until expiresAt and associates it with tags.
	// Set replaces any existing entry and its tags.
	Set(ctx context.Context, key string, data []byte, expiresAt time.Time, tags []string) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// InvalidateTags removes every entry carrying any of tags and returns
	// the number of entries removed.
	InvalidateTags(ctx context.Context, tags ...string) (int, error)

	// Close releases backend resources.
	Close() error
}

// entry is the serialized form used by stores that keep metadata next to
// the value (file store, memory store).
type entry struct {
	Data      []byte    `json:"data"`
	ExpiresAt time.Time `json:"expires_at"`
	Tags      []string  `json:"tags,omitempty"`
}

func (e *entry) expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && now.After(e.ExpiresAt)
}

func (e *entry) hasAnyTag(tags []string) bool {
	for _, t := range tags {
		if slices.Contains(e.Tags, t) {
			return true
		}
	}
	return false
}

// normalizeTags returns tags sorted with empties and duplicates removed.
func normalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t != "" {
			out = append(out, t)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
