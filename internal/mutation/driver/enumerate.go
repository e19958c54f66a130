package driver

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/movelang/movecore/internal/compiler"
	"github.com/movelang/movecore/internal/movecoreerr"
)

// defaultSourcesDir is the package layout convention spec.md §4.F step 1
// falls back to when no sources are explicitly configured.
const defaultSourcesDir = "sources"

// enumerateSources resolves the configured move_sources (or the package's
// standard sources/ directory when none are configured), then applies
// include-only and exclude filters, returning an ascending, de-duplicated
// path list.
func enumerateSources(packageRoot string, configured, includeOnly, exclude []string) ([]string, error) {
	var candidates []string
	if len(configured) > 0 {
		for _, c := range configured {
			if filepath.IsAbs(c) {
				candidates = append(candidates, c)
			} else {
				candidates = append(candidates, filepath.Join(packageRoot, c))
			}
		}
	} else {
		walked, err := walkMoveSources(filepath.Join(packageRoot, defaultSourcesDir))
		if err != nil {
			return nil, err
		}
		candidates = walked
	}

	filtered := candidates[:0:0]
	for _, path := range candidates {
		if len(includeOnly) > 0 && !matchesAny(path, includeOnly) {
			continue
		}
		if matchesAny(path, exclude) {
			continue
		}
		filtered = append(filtered, path)
	}

	seen := make(map[string]struct{}, len(filtered))
	unique := filtered[:0:0]
	for _, p := range filtered {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		unique = append(unique, p)
	}

	sort.Strings(unique)
	return unique, nil
}

// matchesAny reports whether path matches any of patterns, either by
// substring (a bare filename fragment) or by filepath.Match glob.
func matchesAny(path string, patterns []string) bool {
	base := filepath.Base(path)
	for _, pat := range patterns {
		if strings.Contains(path, pat) || strings.Contains(base, pat) {
			return true
		}
		if ok, err := filepath.Match(pat, base); err == nil && ok {
			return true
		}
	}
	return false
}

func walkMoveSources(root string) ([]string, error) {
	files, err := moveFilesUnder(root)
	if err != nil {
		return nil, movecoreerr.NewIoError("failed to enumerate package sources", err)
	}
	return files, nil
}

// moveFilesUnder is a thin re-export of the compiler package's walk so this
// package does not need to reimplement directory traversal; enumeration and
// compilation share the same notion of "source file".
func moveFilesUnder(root string) ([]string, error) {
	return compiler.MoveFilesUnder(root)
}
