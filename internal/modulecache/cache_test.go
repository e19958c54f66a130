package modulecache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestCacheRoundtrip covers spec.md Scenario 5 and invariant 3.
func TestCacheRoundtrip(t *testing.T) {
	cache, err := WithCacheDir(t.TempDir(), nil)
	require.NoError(t, err)

	key := Key{FileHash: "abcd1234", TestMode: true, DevMode: true}
	module := NewCachedModule([]byte("bytecode-for-M"), "test.move")

	require.NoError(t, cache.Insert(key, module))

	got := cache.Get(key)
	require.NotNil(t, got)
	require.Equal(t, module.SourcePath, got.SourcePath)
	require.Equal(t, module.BytecodeBytes, got.BytecodeBytes)
}

// TestCacheMiss covers spec.md Scenario 6 and invariant 4.
func TestCacheMiss(t *testing.T) {
	cache, err := WithCacheDir(t.TempDir(), nil)
	require.NoError(t, err)

	got := cache.Get(Key{FileHash: "nonexistent", TestMode: false, DevMode: false})
	require.Nil(t, got)
}

func TestCacheGetPromotesDiskHitToMemory(t *testing.T) {
	dir := t.TempDir()
	first, err := WithCacheDir(dir, nil)
	require.NoError(t, err)

	key := Key{FileHash: "deadbeef", TestMode: false, DevMode: true}
	require.NoError(t, first.Insert(key, NewCachedModule([]byte("x"), "a.move")))

	// A second cache instance over the same directory only has the disk tier.
	second, err := WithCacheDir(dir, nil)
	require.NoError(t, err)

	got := second.Get(key)
	require.NotNil(t, got)
	// Now served from memory without touching disk again.
	require.Equal(t, 1, second.Stats().MemoryEntries)
}

func TestCacheCorruptFileIsTreatedAsMiss(t *testing.T) {
	dir := t.TempDir()
	cache, err := WithCacheDir(dir, nil)
	require.NoError(t, err)

	key := Key{FileHash: "0123abcd", TestMode: false, DevMode: false}
	path := filepath.Join(dir, key.Filename())
	require.NoError(t, os.WriteFile(path, []byte("not a valid cache blob"), 0o644))

	got := cache.Get(key)
	require.Nil(t, got)

	// The corrupt file is left in place, not deleted.
	require.FileExists(t, path)
}

func TestCacheRejectsNonHexFingerprint(t *testing.T) {
	cache, err := WithCacheDir(t.TempDir(), nil)
	require.NoError(t, err)

	key := Key{FileHash: "../../etc/passwd", TestMode: false, DevMode: false}
	err = cache.Insert(key, NewCachedModule([]byte("x"), "a.move"))
	require.Error(t, err)
}

func TestCacheStatsAndClear(t *testing.T) {
	dir := t.TempDir()
	cache, err := WithCacheDir(dir, nil)
	require.NoError(t, err)

	require.NoError(t, cache.Insert(Key{FileHash: "aa", TestMode: false, DevMode: false}, NewCachedModule([]byte("x"), "a.move")))
	require.NoError(t, cache.Insert(Key{FileHash: "bb", TestMode: true, DevMode: false}, NewCachedModule([]byte("y"), "b.move")))

	stats := cache.Stats()
	require.Equal(t, 2, stats.MemoryEntries)
	require.Equal(t, 2, stats.DiskEntries)
	require.Equal(t, dir, stats.CacheDir)

	require.NoError(t, cache.Clear())
	stats = cache.Stats()
	require.Equal(t, 0, stats.MemoryEntries)
	require.Equal(t, 0, stats.DiskEntries)
	require.DirExists(t, dir)
}

func TestCacheFilenameIsDeterministic(t *testing.T) {
	key := Key{FileHash: "ABCDEF", TestMode: true, DevMode: false}
	require.Equal(t, "ABCDEF_test1_dev0.bin", key.Filename())
}
