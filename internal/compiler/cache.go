package compiler

import (
	"fmt"
	"io"

	"github.com/movelang/movecore/internal/digest"
	"github.com/movelang/movecore/internal/modulecache"
	"github.com/movelang/movecore/internal/movecoreerr"
)

// CachingCompiler decorates a Toolchain with the Module Cache lookup
// spec.md §4.G requires: "the cache is consulted before each module
// compilation using that module's source-file fingerprint as the cache-key
// basis." GenerateAST passes straight through; CompileModule and
// CompilePackage consult and populate the cache.
type CachingCompiler struct {
	inner    Toolchain
	cache    *modulecache.Cache
	testMode bool
	devMode  bool
}

// NewCachingCompiler wraps inner with cache, keyed additionally by testMode
// and devMode as spec.md §4.C requires.
func NewCachingCompiler(inner Toolchain, cache *modulecache.Cache, testMode, devMode bool) *CachingCompiler {
	return &CachingCompiler{inner: inner, cache: cache, testMode: testMode, devMode: devMode}
}

var _ Toolchain = (*CachingCompiler)(nil)

func (c *CachingCompiler) GenerateAST(namedAddresses map[string]string, sources []string, packageRoot string) (*ParsedProgram, error) {
	return c.inner.GenerateAST(namedAddresses, sources, packageRoot)
}

// CompileModule returns the cached bytecode for path's current fingerprint
// if present; otherwise it delegates to inner and inserts the result.
func (c *CachingCompiler) CompileModule(path string, sink io.Writer) ([]byte, error) {
	if sink == nil {
		sink = io.Discard
	}

	key, err := c.keyFor(path)
	if err != nil {
		return nil, err
	}

	if cached := c.cache.Get(key); cached != nil {
		fmt.Fprintf(sink, "cache hit: %s\n", path)
		return cached.BytecodeBytes, nil
	}

	bytecode, err := c.inner.CompileModule(path, sink)
	if err != nil {
		return nil, err
	}

	if err := c.cache.Insert(key, modulecache.NewCachedModule(bytecode, path)); err != nil {
		return nil, movecoreerr.NewCompilerError(fmt.Errorf("failed to cache compiled module %s: %w", path, err))
	}
	return bytecode, nil
}

// CompilePackage compiles every module under root through CompileModule, so
// each module benefits individually from the cache.
func (c *CachingCompiler) CompilePackage(root string, sink io.Writer) error {
	files, err := MoveFilesUnder(root)
	if err != nil {
		return err
	}
	for _, f := range files {
		if _, err := c.CompileModule(f, sink); err != nil {
			return err
		}
	}
	return nil
}

func (c *CachingCompiler) keyFor(path string) (modulecache.Key, error) {
	d, err := digest.Compute([]string{path}, "", nil)
	if err != nil {
		return modulecache.Key{}, err
	}
	hash, ok := d.FileDigests[path]
	if !ok {
		return modulecache.Key{}, movecoreerr.NewIoError(fmt.Sprintf("failed to fingerprint %s", path), fmt.Errorf("not an eligible source file"))
	}
	return modulecache.Key{FileHash: hash, TestMode: c.testMode, DevMode: c.devMode}, nil
}
