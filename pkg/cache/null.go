package cache

import (
	"context"
	"time"
)

// NullStore is a no-op store that never keeps anything.
// It backs --no-cache runs and the "none" backend.
type NullStore struct{}

// NewNullStore creates a null store.
func NewNullStore() Store {
	return &NullStore{}
}

// Get always returns a cache miss.
func (s *NullStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, nil
}

// Set does nothing.
func (s *NullStore) Set(ctx context.Context, key string, data []byte, expiresAt time.Time, tags []string) error {
	return nil
}

// Delete does nothing.
func (s *NullStore) Delete(ctx context.Context, key string) error {
	return nil
}

// InvalidateTags removes nothing.
func (s *NullStore) InvalidateTags(ctx context.Context, tags ...string) (int, error) {
	return 0, nil
}

// Close does nothing.
func (s *NullStore) Close() error {
	return nil
}

var _ Store = (*NullStore)(nil)
