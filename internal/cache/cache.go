// Package cache provides the content-addressed transcription cache keyed by
// (file fingerprint, model id).
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/bdougie/clipforge/internal/models"
)

// ErrCacheUnavailable means the cache backend failed. Callers degrade to
// recomputing; a cache error never fails a pipeline run.
var ErrCacheUnavailable = errors.New("cache unavailable")

// Cache is the get-or-compute store for transcription results. Put is an
// upsert on the (fingerprint, model) key: last writer wins, no merge.
type Cache interface {
	// Get returns the cached entry and whether it was found.
	Get(ctx context.Context, fingerprint, model string) (*models.CacheEntry, bool, error)

	// Put stores an entry, replacing any prior value for the same key.
	Put(ctx context.Context, fingerprint, model string, entry *models.CacheEntry) error

	// Evict removes entries older than the retention window and returns
	// how many were removed. Eviction is unconditional by age.
	Evict(ctx context.Context, olderThan time.Duration) (int, error)
}

// Fingerprint returns the hex SHA-256 of the file's bytes, used as the
// cache and identity key for media assets.
func Fingerprint(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("fingerprint %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("fingerprint %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
