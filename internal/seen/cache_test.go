package seen

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func tempCachePath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "seen_jobs.json")
}

func TestLoadMissingFileStartsEmpty(t *testing.T) {
	cache := Load(tempCachePath(t), zap.NewNop())

	assert.Equal(t, 0, cache.Len())
	assert.True(t, cache.IsNew("anything"))
}

func TestLoadCorruptFileStartsEmpty(t *testing.T) {
	path := tempCachePath(t)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	cache := Load(path, zap.NewNop())
	assert.Equal(t, 0, cache.Len())
}

func TestMarkSeenIsIdempotent(t *testing.T) {
	cache := Load(tempCachePath(t), zap.NewNop())

	first := time.Date(2026, 8, 1, 8, 0, 0, 0, time.UTC)
	cache.MarkSeen("aaa", first)
	cache.MarkSeen("aaa", first.Add(48*time.Hour))

	assert.Equal(t, 1, cache.Len())
	assert.False(t, cache.IsNew("aaa"))

	records := cache.Records()
	require.Len(t, records, 1)
	assert.Equal(t, first, records[0].FirstSeen)
}

func TestSaveAndReload(t *testing.T) {
	path := tempCachePath(t)
	now := time.Date(2026, 8, 1, 8, 0, 0, 0, time.UTC)

	cache := Load(path, zap.NewNop())
	cache.MarkSeen("aaa", now)
	cache.MarkSeen("bbb", now.Add(time.Hour))
	require.NoError(t, cache.Save())

	reloaded := Load(path, zap.NewNop())
	assert.Equal(t, 2, reloaded.Len())
	assert.False(t, reloaded.IsNew("aaa"))
	assert.False(t, reloaded.IsNew("bbb"))
}

func TestPendingMarksInvisibleUntilSave(t *testing.T) {
	path := tempCachePath(t)
	now := time.Now()

	cache := Load(path, zap.NewNop())
	cache.MarkSeen("aaa", now)

	// No Save: a fresh load must not know about the mark.
	reloaded := Load(path, zap.NewNop())
	assert.True(t, reloaded.IsNew("aaa"))
}

func TestPruneWindowBoundaries(t *testing.T) {
	path := tempCachePath(t)
	now := time.Date(2026, 8, 31, 8, 0, 0, 0, time.UTC)

	cache := Load(path, zap.NewNop())
	cache.MarkSeen("fresh", now.Add(-24*time.Hour))
	cache.MarkSeen("inside", now.Add(-29*24*time.Hour))
	cache.MarkSeen("expired", now.Add(-31*24*time.Hour))
	require.NoError(t, cache.Save())

	cache = Load(path, zap.NewNop())
	pruned := cache.Prune(now, 30)

	assert.Equal(t, 1, pruned)
	assert.Equal(t, 2, cache.Len())
	assert.False(t, cache.IsNew("inside"))
	assert.True(t, cache.IsNew("expired"))
}

func TestPruneDefaultsWindow(t *testing.T) {
	path := tempCachePath(t)
	now := time.Date(2026, 8, 31, 8, 0, 0, 0, time.UTC)

	cache := Load(path, zap.NewNop())
	cache.MarkSeen("old", now.Add(-45*24*time.Hour))
	require.NoError(t, cache.Save())

	cache = Load(path, zap.NewNop())
	assert.Equal(t, 1, cache.Prune(now, 0))
}

func TestRecordsSortedByFirstSeen(t *testing.T) {
	cache := Load(tempCachePath(t), zap.NewNop())
	now := time.Date(2026, 8, 1, 8, 0, 0, 0, time.UTC)

	cache.MarkSeen("late", now.Add(time.Hour))
	cache.MarkSeen("early", now)
	cache.MarkSeen("tie-b", now.Add(2*time.Hour))
	cache.MarkSeen("tie-a", now.Add(2*time.Hour))

	records := cache.Records()
	require.Len(t, records, 4)
	assert.Equal(t, "early", records[0].Fingerprint)
	assert.Equal(t, "late", records[1].Fingerprint)
	assert.Equal(t, "tie-a", records[2].Fingerprint)
	assert.Equal(t, "tie-b", records[3].Fingerprint)
}

func TestSaveCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "seen_jobs.json")

	cache := Load(path, zap.NewNop())
	cache.MarkSeen("aaa", time.Now())
	require.NoError(t, cache.Save())

	_, err := os.Stat(path)
	assert.NoError(t, err)
}
