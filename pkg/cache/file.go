package cache

import (
	"context"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// FileStore implements a file-based store for CLI usage.
// Each entry is a JSON file holding the value, its expiry and its tags.
//
// Tag invalidation scans every entry file, which is fine for the few thousand
// profiles a single site caches but makes FileStore a poor fit for a shared
// server deployment; use Redis or MongoDB there.
type FileStore struct {
	dir string
	now func() time.Time

	// mu serializes invalidation scans with writes in this process.
	mu sync.RWMutex
}

// NewFileStore creates a file-based store in the given directory.
// The directory will be created if it doesn't exist.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir, now: time.Now}, nil
}

// Dir returns the directory entries are written to.
func (s *FileStore) Dir() string { return s.dir }

// Get retrieves a value from the store.
func (s *FileStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	path := s.path(key)
	e, err := readEntry(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if e == nil {
		// Invalid entry - treat as miss
		_ = os.Remove(path)
		return nil, false, nil
	}
	if e.expired(s.now()) {
		_ = os.Remove(path)
		return nil, false, nil
	}
	return e.Data, true, nil
}

// Set stores a value in the store.
func (s *FileStore) Set(ctx context.Context, key string, data []byte, expiresAt time.Time, tags []string) error {
	entryData, err := json.Marshal(entry{
		Data:      data,
		ExpiresAt: expiresAt,
		Tags:      normalizeTags(tags),
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	// Write to a sibling and rename so readers never see a torn entry.
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(entryData); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Delete removes a value from the store.
func (s *FileStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// InvalidateTags removes every entry carrying any of tags.
// Expired entries encountered during the scan are removed as well but are
// not counted.
func (s *FileStore) InvalidateTags(ctx context.Context, tags ...string) (int, error) {
	tags = normalizeTags(tags)
	if len(tags) == 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	count := 0
	err := s.walk(func(path string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		e, err := readEntry(path)
		if err != nil {
			return nil // Skip unreadable files, continue walking
		}
		switch {
		case e == nil || e.expired(now):
			_ = os.Remove(path)
		case e.hasAnyTag(tags):
			if err := os.Remove(path); err == nil {
				count++
			}
		}
		return nil
	})
	return count, err
}

// Clear removes every entry and returns how many were removed.
func (s *FileStore) Clear(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	err := s.walk(func(path string) error {
		if err := os.Remove(path); err == nil {
			count++
		}
		return nil
	})
	if err != nil {
		return count, err
	}

	// Clean up empty subdirectories
	subdirs, _ := os.ReadDir(s.dir)
	for _, d := range subdirs {
		if d.IsDir() {
			_ = os.Remove(filepath.Join(s.dir, d.Name()))
		}
	}
	return count, nil
}

// Close does nothing for file store.
func (s *FileStore) Close() error {
	return nil
}

// walk calls fn for every entry file under the store directory.
func (s *FileStore) walk(fn func(path string) error) error {
	return filepath.WalkDir(s.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // Skip errors, continue walking
		}
		if d.IsDir() || !strings.HasSuffix(path, ".json") {
			return nil
		}
		return fn(path)
	})
}

// path converts a cache key to a file path.
// Uses a simple hash-based directory structure to avoid too many files in one dir.
func (s *FileStore) path(key string) string {
	hash := Hash([]byte(key))
	// Use first 2 chars as subdirectory for distribution
	subdir := hash[:2]
	filename := hash[2:] + ".json"
	return filepath.Join(s.dir, subdir, filename)
}

// readEntry loads an entry file. A nil entry with a nil error means the file
// exists but does not hold a valid entry.
func readEntry(path string) (*entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, nil
	}
	return &e, nil
}

// Ensure FileStore implements Store.
var _ Store = (*FileStore)(nil)
