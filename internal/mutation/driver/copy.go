package driver

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/movelang/movecore/internal/movecoreerr"
)

// copyPackage copies every file under src into dst, preserving relative
// structure, skipping the mutant output directory and the compiler's
// interface-files scratch directory. This is spec.md §9's "preserve
// relative-path dependencies by copying the whole package root" applied to
// a verification scratch directory.
func copyPackage(src, dst, outMutantDir string) error {
	skip := map[string]struct{}{
		"mutator_build":              {},
		filepath.Clean(outMutantDir): {},
	}

	return filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		top := strings.SplitN(rel, string(filepath.Separator), 2)[0]
		if _, skipped := skip[top]; skipped {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		return copyFile(path, target)
	})
}

func copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return movecoreerr.NewIoError("failed to create scratch directory", err)
	}
	in, err := os.Open(src)
	if err != nil {
		return movecoreerr.NewIoError("failed to open "+src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return movecoreerr.NewIoError("failed to create "+dst, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return movecoreerr.NewIoError("failed to copy "+src+" to "+dst, err)
	}
	return nil
}
