// Package seen is the persistent dedup cache: a flat, human-inspectable JSON
// set of fingerprints with first-seen timestamps, pruned on a rolling window.
package seen

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.uber.org/zap"
)

const DefaultWindowDays = 30

// Record is one cache entry. Records are never mutated; they are created on
// first sight and dropped when they age out of the window.
type Record struct {
	Fingerprint string    `json:"fingerprint"`
	FirstSeen   time.Time `json:"first_seen"`
}

// Cache holds previously seen fingerprints plus the marks buffered during the
// current run. Buffered marks become visible to IsNew immediately but are not
// written to disk until Save, so a run that fails before delivery leaves the
// prior snapshot untouched.
type Cache struct {
	path    string
	logger  *zap.Logger
	records map[string]time.Time
	pending map[string]time.Time
}

// Load reads the cache file at path. A missing or corrupt file yields an
// empty cache; corruption is logged, never propagated.
func Load(path string, logger *zap.Logger) *Cache {
	cache := &Cache{
		path:    path,
		logger:  logger,
		records: make(map[string]time.Time),
		pending: make(map[string]time.Time),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Warn("reading seen cache failed, starting empty",
				zap.String("path", path), zap.Error(err))
		}
		return cache
	}

	var stored []Record
	if err := json.Unmarshal(data, &stored); err != nil {
		logger.Warn("seen cache is corrupt, starting empty",
			zap.String("path", path), zap.Error(err))
		return cache
	}

	for _, record := range stored {
		if record.Fingerprint == "" {
			continue
		}
		cache.records[record.Fingerprint] = record.FirstSeen
	}

	return cache
}

func (c *Cache) Len() int {
	return len(c.records) + len(c.pending)
}

// IsNew reports whether no live record exists for the fingerprint, counting
// marks buffered in the current run.
func (c *Cache) IsNew(fingerprint string) bool {
	if _, ok := c.records[fingerprint]; ok {
		return false
	}
	_, ok := c.pending[fingerprint]
	return !ok
}

// MarkSeen buffers the fingerprint as seen at now. Idempotent: marking a
// fingerprint already known keeps its original first-seen timestamp.
func (c *Cache) MarkSeen(fingerprint string, now time.Time) {
	if fingerprint == "" {
		return
	}
	if _, ok := c.records[fingerprint]; ok {
		return
	}
	if _, ok := c.pending[fingerprint]; ok {
		return
	}
	c.pending[fingerprint] = now.UTC()
}

// Prune drops records older than windowDays relative to now and returns the
// number removed.
func (c *Cache) Prune(now time.Time, windowDays int) int {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	cutoff := now.Add(-time.Duration(windowDays) * 24 * time.Hour)

	pruned := 0
	for fingerprint, firstSeen := range c.records {
		if firstSeen.Before(cutoff) {
			delete(c.records, fingerprint)
			pruned++
		}
	}
	return pruned
}

// Records returns all live records, buffered marks included, ordered by
// first-seen then fingerprint.
func (c *Cache) Records() []Record {
	all := make([]Record, 0, c.Len())
	for fingerprint, firstSeen := range c.records {
		all = append(all, Record{Fingerprint: fingerprint, FirstSeen: firstSeen})
	}
	for fingerprint, firstSeen := range c.pending {
		all = append(all, Record{Fingerprint: fingerprint, FirstSeen: firstSeen})
	}

	sort.Slice(all, func(i, j int) bool {
		if !all[i].FirstSeen.Equal(all[j].FirstSeen) {
			return all[i].FirstSeen.Before(all[j].FirstSeen)
		}
		return all[i].Fingerprint < all[j].Fingerprint
	})

	return all
}

// Save commits the full set, buffered marks included, by writing a temp file
// next to the target and renaming it over the old snapshot. A crash mid-save
// never corrupts the previous file.
func (c *Cache) Save() error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("creating seen cache directory: %w", err)
	}

	data, err := json.MarshalIndent(c.Records(), "", "  ")
	if err != nil {
		return fmt.Errorf("encoding seen cache: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(c.path), ".seen_jobs_*.json")
	if err != nil {
		return fmt.Errorf("creating temp seen cache: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing temp seen cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("closing temp seen cache: %w", err)
	}

	if err := os.Rename(tmp.Name(), c.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replacing seen cache: %w", err)
	}

	for fingerprint, firstSeen := range c.pending {
		c.records[fingerprint] = firstSeen
	}
	c.pending = make(map[string]time.Time)

	return nil
}
