// Package digest computes stable, content-addressed fingerprints for the
// set of files that contribute to a Move package build.
//
// The approach mirrors resolution/digest.rs in original_source: every
// eligible file is hashed independently, the per-file hashes are sorted by
// path, and an overall package hash is derived from the concatenation of
// those sorted hashes. Renaming a file without touching its content changes
// the overall hash, because the path participates in sort order even though
// it is not itself hashed.
package digest

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/movelang/movecore/internal/movecoreerr"
)

// MoveExtension is the source file extension that always contributes to a
// package digest.
const MoveExtension = ".move"

// PackageDigest is a stable fingerprint of every file contributing to a
// package build: an overall hash plus the per-path fingerprint map it was
// derived from.
type PackageDigest struct {
	// PackageHash is the uppercase hex SHA-256 of the sorted concatenation
	// of every FileDigests value.
	PackageHash string
	// FileDigests maps relative (or as-given) file path to its own
	// uppercase hex SHA-256 fingerprint.
	FileDigests map[string]string
}

// FileChanged reports whether path is absent from this digest, or its
// stored fingerprint differs from newHash.
func (d *PackageDigest) FileChanged(path string, newHash string) bool {
	oldHash, ok := d.FileDigests[path]
	if !ok {
		return true
	}
	return oldHash != newHash
}

// GetChangedFiles returns the symmetric difference between this digest and
// other: every path whose fingerprint differs, plus every path present in
// only one of the two digests. Order is deterministic (ascending path) but
// unspecified beyond that, per spec.
func (d *PackageDigest) GetChangedFiles(other *PackageDigest) []string {
	changedSet := make(map[string]struct{})

	for path, newHash := range other.FileDigests {
		if d.FileChanged(path, newHash) {
			changedSet[path] = struct{}{}
		}
	}
	for path := range d.FileDigests {
		if _, ok := other.FileDigests[path]; !ok {
			changedSet[path] = struct{}{}
		}
	}

	changed := make([]string, 0, len(changedSet))
	for path := range changedSet {
		changed = append(changed, path)
	}
	sort.Strings(changed)
	return changed
}

// Compute produces a PackageDigest for the given input paths. Each path is
// either a file or a directory root; directory roots are walked recursively,
// following symlinks. Eligible files are those with a ".move" extension, or
// whose final path component equals manifestFilename. A path that is
// neither a regular file nor a directory is silently skipped.
func Compute(paths []string, manifestFilename string, logger *zap.Logger) (*PackageDigest, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	fileDigests := make(map[string]string)
	var sortedPaths []string

	hashFile := func(path string) error {
		contents, err := os.ReadFile(path)
		if err != nil {
			return movecoreerr.NewIoError(fmt.Sprintf("failed to read %s", path), err)
		}
		sum := sha256.Sum256(contents)
		hash := strings.ToUpper(fmt.Sprintf("%x", sum))
		fileDigests[path] = hash
		sortedPaths = append(sortedPaths, path)
		logger.Debug("hashed file", zap.String("path", path), zap.String("hash", hash))
		return nil
	}

	maybeHashFile := func(path string) error {
		if eligible(path, manifestFilename) {
			return hashFile(path)
		}
		return nil
	}

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, movecoreerr.NewIoError(fmt.Sprintf("failed to stat %s", root), err)
		}
		if info.Mode().IsRegular() {
			if err := maybeHashFile(root); err != nil {
				return nil, err
			}
			continue
		}
		if !info.IsDir() {
			continue
		}
		if err := walkFollowingSymlinks(root, maybeHashFile); err != nil {
			return nil, err
		}
	}

	sort.Strings(sortedPaths)

	hasher := sha256.New()
	for _, path := range sortedPaths {
		hasher.Write([]byte(fileDigests[path]))
	}
	packageHash := strings.ToUpper(fmt.Sprintf("%x", hasher.Sum(nil)))

	logger.Debug("computed package digest",
		zap.Int("file_count", len(fileDigests)),
		zap.String("package_hash", packageHash),
	)

	return &PackageDigest{
		PackageHash: packageHash,
		FileDigests: fileDigests,
	}, nil
}

func eligible(path string, manifestFilename string) bool {
	if strings.EqualFold(filepath.Ext(path), MoveExtension) {
		return true
	}
	return filepath.Base(path) == manifestFilename
}

// walkFollowingSymlinks walks root recursively, visiting every regular file
// (resolving symlinked directories and files along the way) and calling fn
// with its path. Cycles caused by symlinks pointing back into an ancestor
// directory are avoided by tracking visited real directories.
func walkFollowingSymlinks(root string, fn func(path string) error) error {
	visitedDirs := make(map[string]struct{})
	return walkDir(root, visitedDirs, fn)
}

func walkDir(dir string, visitedDirs map[string]struct{}, fn func(path string) error) error {
	realDir, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return movecoreerr.NewIoError(fmt.Sprintf("failed to resolve %s", dir), err)
	}
	if _, ok := visitedDirs[realDir]; ok {
		return nil
	}
	visitedDirs[realDir] = struct{}{}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return movecoreerr.NewIoError(fmt.Sprintf("failed to list %s", dir), err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		info, err := os.Stat(path) // follows symlinks
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return movecoreerr.NewIoError(fmt.Sprintf("failed to stat %s", path), err)
		}
		switch {
		case info.IsDir():
			if err := walkDir(path, visitedDirs, fn); err != nil {
				return err
			}
		case info.Mode().IsRegular():
			if err := fn(path); err != nil {
				return err
			}
		}
	}
	return nil
}
