// Package cache stores accessor check results on disk, keyed by the content
// of the analyzed files.
package cache

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/panbanda/accessorlint/pkg/analyzer/accessors"
	"github.com/panbanda/accessorlint/pkg/source"
	"github.com/zeebo/blake3"
)

// Cache provides file-based caching for analysis results.
type Cache struct {
	dir     string
	ttl     time.Duration
	enabled bool
}

// Entry represents a cached analysis result.
type Entry struct {
	Key       string    `json:"key"`
	Timestamp time.Time `json:"timestamp"`
	Data      []byte    `json:"data"`
}

// New creates a new cache instance.
func New(dir string, ttlHours int, enabled bool) (*Cache, error) {
	if !enabled {
		return &Cache{enabled: false}, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	return &Cache{
		dir:     dir,
		ttl:     time.Duration(ttlHours) * time.Hour,
		enabled: true,
	}, nil
}

// Enabled reports whether the cache stores anything.
func (c *Cache) Enabled() bool {
	return c.enabled
}

// HashBytes computes a BLAKE3 hash of bytes and returns it as a hex string.
func HashBytes(data []byte) string {
	hash := blake3.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// RunKey derives the key of a check run from the options fingerprint and the
// path and content hash of every file. File order does not matter.
func RunKey(fingerprint string, files []string, src source.ContentSource) (string, error) {
	sorted := append([]string(nil), files...)
	sort.Strings(sorted)

	h := blake3.New()
	_, _ = h.WriteString(fingerprint)
	_, _ = h.WriteString("\x00")
	for _, path := range sorted {
		content, err := src.Read(path)
		if err != nil {
			return "", fmt.Errorf("hashing %s: %w", path, err)
		}
		_, _ = h.WriteString(path)
		_, _ = h.WriteString("\x00")
		_, _ = h.WriteString(HashBytes(content))
		_, _ = h.WriteString("\n")
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Get retrieves a cached entry if it exists and is not expired.
func (c *Cache) Get(key string) ([]byte, bool) {
	if !c.enabled {
		return nil, false
	}

	path := c.keyPath(key)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false
	}
	if entry.Key != key {
		return nil, false
	}

	if c.ttl > 0 && time.Since(entry.Timestamp) > c.ttl {
		os.Remove(path)
		return nil, false
	}

	return entry.Data, true
}

// Set stores data in the cache.
func (c *Cache) Set(key string, data []byte) error {
	if !c.enabled {
		return nil
	}

	entryData, err := json.Marshal(Entry{
		Key:       key,
		Timestamp: time.Now(),
		Data:      data,
	})
	if err != nil {
		return err
	}

	return os.WriteFile(c.keyPath(key), entryData, 0600)
}

// LoadAnalysis returns the cached analysis stored under key. Entries that no
// longer decode are removed.
func (c *Cache) LoadAnalysis(key string) (*accessors.Analysis, bool) {
	data, ok := c.Get(key)
	if !ok {
		return nil, false
	}
	var analysis accessors.Analysis
	if err := json.Unmarshal(data, &analysis); err != nil {
		_ = c.Invalidate(key)
		return nil, false
	}
	return &analysis, true
}

// StoreAnalysis caches analysis under key.
func (c *Cache) StoreAnalysis(key string, analysis *accessors.Analysis) error {
	if !c.enabled || analysis == nil {
		return nil
	}
	data, err := json.Marshal(analysis)
	if err != nil {
		return fmt.Errorf("encoding analysis: %w", err)
	}
	return c.Set(key, data)
}

// Invalidate removes a cache entry.
func (c *Cache) Invalidate(key string) error {
	if !c.enabled {
		return nil
	}
	return os.Remove(c.keyPath(key))
}

// Clear removes all cache entries.
func (c *Cache) Clear() error {
	if !c.enabled {
		return nil
	}
	return os.RemoveAll(c.dir)
}

// keyPath converts a key to a filesystem path.
func (c *Cache) keyPath(key string) string {
	hash := blake3.Sum256([]byte(key))
	return filepath.Join(c.dir, hex.EncodeToString(hash[:])+".json")
}

// Stats returns cache statistics.
type Stats struct {
	Entries   int           `json:"entries"`
	TotalSize int64         `json:"total_size"`
	OldestAge time.Duration `json:"oldest_age"`
	NewestAge time.Duration `json:"newest_age"`
}

// GetStats returns statistics about the cache.
func (c *Cache) GetStats() (*Stats, error) {
	if !c.enabled {
		return &Stats{}, nil
	}

	stats := &Stats{}
	var oldest, newest time.Time

	err := filepath.Walk(c.dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}

		stats.Entries++
		stats.TotalSize += info.Size()

		modTime := info.ModTime()
		if oldest.IsZero() || modTime.Before(oldest) {
			oldest = modTime
		}
		if newest.IsZero() || modTime.After(newest) {
			newest = modTime
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !oldest.IsZero() {
		stats.OldestAge = time.Since(oldest)
	}
	if !newest.IsZero() {
		stats.NewestAge = time.Since(newest)
	}
	return stats, nil
}
