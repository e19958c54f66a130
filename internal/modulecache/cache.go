// Package modulecache is the content-addressed, two-tier (memory + disk)
// store of compiled Move bytecode artifacts described in spec.md §4.C.
//
// It is grounded on module_cache.rs in original_source, translated from a
// BCS-serialized blob to a gob envelope behind a one-byte schema-version
// header (see blob.go), and
// on the temp-file-then-rename atomic write idiom distribution/distribution
// uses throughout its own content-addressed blob store
// (registry/storage/driver/filesystem/driver.go).
package modulecache

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"go.uber.org/zap"

	"github.com/movelang/movecore/internal/movecoreerr"
)

// DefaultCacheDirName is the directory created under the user's home
// directory when no explicit cache directory is supplied.
const DefaultCacheDirName = ".move/module_cache"

// Key is a cache lookup key: a file fingerprint plus the two build-mode
// flags that affect compilation output.
type Key struct {
	FileHash string
	TestMode bool
	DevMode  bool
}

// Filename returns the deterministic, filesystem-safe cache filename for
// this key: "{fingerprint}_test{0|1}_dev{0|1}.bin".
func (k Key) Filename() string {
	return fmt.Sprintf("%s_test%s_dev%s.bin", k.FileHash, boolFlag(k.TestMode), boolFlag(k.DevMode))
}

func boolFlag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// isHex reports whether s looks like a fingerprint: non-empty and built
// entirely from hex digits. Rejecting anything else keeps an attacker- or
// bug-supplied key from escaping the cache directory via path traversal,
// per spec.md §9 "Avoid path injection by rejecting any key whose
// fingerprint component is not a hex string."
func isHex(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

// CachedModule is one compiled-module cache entry.
type CachedModule struct {
	// BytecodeBytes is the compiler's serialized module output.
	BytecodeBytes []byte
	// SourcePath is the originating source file path, kept for diagnostics.
	SourcePath string
	// CacheTimestamp is the insertion time, seconds since the Unix epoch.
	CacheTimestamp int64
}

// NewCachedModule stamps module with the current time.
func NewCachedModule(bytecodeBytes []byte, sourcePath string) *CachedModule {
	return &CachedModule{
		BytecodeBytes:  bytecodeBytes,
		SourcePath:     sourcePath,
		CacheTimestamp: time.Now().Unix(),
	}
}

// Stats summarizes cache occupancy.
type Stats struct {
	MemoryEntries int
	DiskEntries   int
	CacheDir      string
}

// Cache is the two-tier module cache. The memory tier is per-process; the
// disk tier is shared across processes via the cache directory.
type Cache struct {
	cacheDir string
	logger   *zap.Logger

	mu    sync.Mutex
	memory map[Key]*CachedModule
}

// New creates a cache rooted at $HOME/.move/module_cache/, creating the
// directory if it does not exist.
func New(logger *zap.Logger) (*Cache, error) {
	dir, err := defaultCacheDir()
	if err != nil {
		return nil, err
	}
	return WithCacheDir(dir, logger)
}

func defaultCacheDir() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", movecoreerr.NewIoError("failed to determine home directory", err)
	}
	return filepath.Join(home, DefaultCacheDirName), nil
}

// WithCacheDir creates a cache rooted at the given directory.
func WithCacheDir(dir string, logger *zap.Logger) (*Cache, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, movecoreerr.NewIoError(fmt.Sprintf("failed to create cache directory: %s", dir), err)
	}
	return &Cache{
		cacheDir: dir,
		logger:   logger,
		memory:   make(map[Key]*CachedModule),
	}, nil
}

// Get returns the cached module for key, or nil if absent. Memory is
// consulted first; a disk hit is promoted into memory. A file that exists
// but fails to decode is treated as a miss and is left on disk untouched.
func (c *Cache) Get(key Key) *CachedModule {
	c.mu.Lock()
	if cached, ok := c.memory[key]; ok {
		c.mu.Unlock()
		return cached
	}
	c.mu.Unlock()

	if !isHex(key.FileHash) {
		return nil
	}

	path := c.path(key)
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	cached, err := decodeCachedModule(bytes)
	if err != nil {
		c.logger.Debug("cache entry failed to decode, treating as miss",
			zap.String("path", path), zap.Error(err))
		return nil
	}

	c.mu.Lock()
	c.memory[key] = cached
	c.mu.Unlock()
	return cached
}

// Insert stores module under key: write-through to memory, then an atomic
// temp-file-then-rename write to disk.
func (c *Cache) Insert(key Key, module *CachedModule) error {
	if !isHex(key.FileHash) {
		return movecoreerr.NewConfigError(fmt.Sprintf("cache key fingerprint is not hex: %q", key.FileHash), nil)
	}

	c.mu.Lock()
	c.memory[key] = module
	c.mu.Unlock()

	bytes, err := encodeCachedModule(module)
	if err != nil {
		return movecoreerr.NewSerializationError("failed to serialize cached module", err)
	}

	path := c.path(key)
	tmpPath := path + ".tmp"

	if err := os.WriteFile(tmpPath, bytes, 0o644); err != nil {
		return movecoreerr.NewIoError(fmt.Sprintf("failed to write cache file: %s", tmpPath), err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return movecoreerr.NewIoError(fmt.Sprintf("failed to rename cache file: %s", path), err)
	}

	c.logger.Debug("inserted cache entry", zap.String("path", path))
	return nil
}

// Stats reports current occupancy. Disk entries are a raw, non-recursive
// directory listing count.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	memEntries := len(c.memory)
	c.mu.Unlock()

	diskEntries := 0
	if entries, err := os.ReadDir(c.cacheDir); err == nil {
		diskEntries = len(entries)
	}

	return Stats{
		MemoryEntries: memEntries,
		DiskEntries:   diskEntries,
		CacheDir:      c.cacheDir,
	}
}

// Clear drops the memory tier and removes then recreates the disk
// directory tree. Mutual exclusion between Clear and other operations
// across processes is the caller's responsibility, per spec.md §5.
func (c *Cache) Clear() error {
	c.mu.Lock()
	c.memory = make(map[Key]*CachedModule)
	c.mu.Unlock()

	if _, err := os.Stat(c.cacheDir); err == nil {
		if err := os.RemoveAll(c.cacheDir); err != nil {
			return movecoreerr.NewIoError(fmt.Sprintf("failed to clear cache directory: %s", c.cacheDir), err)
		}
	}
	if err := os.MkdirAll(c.cacheDir, 0o755); err != nil {
		return movecoreerr.NewIoError(fmt.Sprintf("failed to recreate cache directory: %s", c.cacheDir), err)
	}
	return nil
}

func (c *Cache) path(key Key) string {
	return filepath.Join(c.cacheDir, key.Filename())
}
