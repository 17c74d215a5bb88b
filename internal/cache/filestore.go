package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bdougie/clipforge/internal/models"
)

// FileStore keeps one JSON file per (fingerprint, model) key under a cache
// directory. Writes go through a temp file and rename, so concurrent
// writers for the same key are last-write-wins and never torn.
type FileStore struct {
	dir    string
	logger *slog.Logger
}

// NewFileStore creates the cache directory if needed.
func NewFileStore(dir string, logger *slog.Logger) (*FileStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}
	return &FileStore{dir: dir, logger: logger}, nil
}

func (s *FileStore) entryPath(fingerprint, model string) string {
	return filepath.Join(s.dir, fingerprint+"_"+model+".json")
}

// Get reads the entry for the key. A missing file is a miss, not an error.
func (s *FileStore) Get(ctx context.Context, fingerprint, model string) (*models.CacheEntry, bool, error) {
	data, err := os.ReadFile(s.entryPath(fingerprint, model))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}

	var entry models.CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		// A corrupt entry behaves like a miss; the next Put repairs it.
		s.logger.Warn("discarding corrupt cache entry", "fingerprint", fingerprint, "model", model, "error", err)
		return nil, false, nil
	}
	return &entry, true, nil
}

// Put upserts the entry for the key via atomic replace.
func (s *FileStore) Put(ctx context.Context, fingerprint, model string, entry *models.CacheEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}

	tmp, err := os.CreateTemp(s.dir, ".put-*")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}

	if err := os.Rename(tmpPath, s.entryPath(fingerprint, model)); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}
	return nil
}

// Evict removes entries whose CreatedAt is older than the retention window.
func (s *FileStore) Evict(ctx context.Context, olderThan time.Duration) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}

	cutoff := time.Now().UTC().Add(-olderThan)
	removed := 0

	for _, dirEntry := range entries {
		name := dirEntry.Name()
		if dirEntry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}

		path := filepath.Join(s.dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}

		var entry models.CacheEntry
		stale := json.Unmarshal(data, &entry) != nil || entry.CreatedAt.Before(cutoff)
		if !stale {
			continue
		}
		if err := os.Remove(path); err != nil {
			s.logger.Warn("failed to evict cache entry", "path", path, "error", err)
			continue
		}
		removed++
	}
	return removed, nil
}
