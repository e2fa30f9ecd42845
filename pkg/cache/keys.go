package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// DefaultNamespace is the key namespace used for RMD records. It matches the
// key layout of the host CMS integration so entries can be shared.
const DefaultNamespace = "psul_rmd_data"

// Keyer builds cache keys for RMD records.
type Keyer interface {
	// RecordKey returns the key for one (endpoint, username) pair.
	RecordKey(endpoint, username string) string
}

// DefaultKeyer produces keys of the form "{namespace}:{endpoint}:{username}".
type DefaultKeyer struct {
	namespace string
}

// NewDefaultKeyer creates a keyer for namespace. An empty namespace selects
// [DefaultNamespace].
func NewDefaultKeyer(namespace string) *DefaultKeyer {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &DefaultKeyer{namespace: namespace}
}

// Namespace returns the namespace this keyer writes under.
func (k *DefaultKeyer) Namespace() string { return k.namespace }

// RecordKey implements [Keyer].
func (k *DefaultKeyer) RecordKey(endpoint, username string) string {
	return k.namespace + ":" + endpoint + ":" + username
}

// ScopedKeyer wraps a Keyer with a prefix so several sites can share one
// backend without seeing each other's entries.
//
// Example usage:
//
//	// Keys for the libraries site
//	siteKeyer := NewScopedKeyer(NewDefaultKeyer(""), "libraries:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys. A nil inner uses a
// [DefaultKeyer] with the default namespace.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer("")
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// RecordKey implements [Keyer].
func (k *ScopedKeyer) RecordKey(endpoint, username string) string {
	return k.prefix + k.inner.RecordKey(endpoint, username)
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
