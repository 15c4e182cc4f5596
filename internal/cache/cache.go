// Package cache keeps change records loaded from git history on disk so
// repeated runs against an unchanged HEAD skip the history walk.
package cache

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/zeebo/blake3"

	"github.com/panbanda/commitscope/pkg/models"
)

// ErrDisabled is returned by Clear on a disabled cache.
var ErrDisabled = errors.New("cache is disabled")

// Cache provides file-based caching of loaded change records.
type Cache struct {
	dir     string
	ttl     time.Duration
	enabled bool
}

// entry is the on-disk form of one cached record set.
type entry struct {
	Key       string                `json:"key"`
	Revision  string                `json:"revision"`
	Timestamp time.Time             `json:"timestamp"`
	Records   []models.ChangeRecord `json:"records"`
}

// New creates a new cache instance.
func New(dir string, ttlHours int, enabled bool) (*Cache, error) {
	if !enabled {
		return &Cache{enabled: false}, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	return &Cache{
		dir:     dir,
		ttl:     time.Duration(ttlHours) * time.Hour,
		enabled: true,
	}, nil
}

// Enabled reports whether the cache reads and writes entries.
func (c *Cache) Enabled() bool {
	return c.enabled
}

// Key builds the cache key for a history load. Extra distinguishes loader
// settings that change the records produced.
func Key(repoPath string, since time.Time, extra ...string) string {
	parts := []string{"git", filepath.Clean(repoPath)}
	if !since.IsZero() {
		parts = append(parts, since.UTC().Format(time.RFC3339))
	}
	parts = append(parts, extra...)
	return strings.Join(parts, "|")
}

// HashBytes computes a BLAKE3 hash of bytes and returns it as a hex string.
func HashBytes(data []byte) string {
	hash := blake3.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// GetRecords returns cached records for key when they were stored at
// the same revision and have not expired.
func (c *Cache) GetRecords(key, revision string) ([]models.ChangeRecord, bool) {
	if !c.enabled {
		return nil, false
	}

	path := c.keyPath(key)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, false
	}
	if e.Key != key || e.Revision != revision {
		return nil, false
	}
	if c.ttl > 0 && time.Since(e.Timestamp) > c.ttl {
		os.Remove(path)
		return nil, false
	}
	return e.Records, true
}

// PutRecords stores records for key at revision.
func (c *Cache) PutRecords(key, revision string, records []models.ChangeRecord) error {
	if !c.enabled {
		return nil
	}

	data, err := json.Marshal(entry{
		Key:       key,
		Revision:  revision,
		Timestamp: time.Now(),
		Records:   records,
	})
	if err != nil {
		return err
	}
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return err
	}
	return os.WriteFile(c.keyPath(key), data, 0600)
}

// Invalidate removes a cache entry.
func (c *Cache) Invalidate(key string) error {
	if !c.enabled {
		return nil
	}
	err := os.Remove(c.keyPath(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// Clear removes all cache entries.
func (c *Cache) Clear() error {
	if !c.enabled {
		return ErrDisabled
	}
	return os.RemoveAll(c.dir)
}

// keyPath converts a key to a filesystem path.
func (c *Cache) keyPath(key string) string {
	return filepath.Join(c.dir, HashBytes([]byte(key))+".json")
}

// Stats returns cache statistics.
type Stats struct {
	Entries   int   `json:"entries"`
	TotalSize int64 `json:"total_size"`
}

// GetStats returns statistics about the cache.
func (c *Cache) GetStats() (*Stats, error) {
	if !c.enabled {
		return &Stats{}, nil
	}

	stats := &Stats{}
	err := filepath.Walk(c.dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}
		stats.Entries++
		stats.TotalSize += info.Size()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}
