package digest

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func sha256Upper(t *testing.T, contents string) string {
	t.Helper()
	sum := sha256.Sum256([]byte(contents))
	return strings.ToUpper(fmt.Sprintf("%x", sum))
}

// TestDigestStability covers spec.md Scenario 1.
func TestDigestStability(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sources"), 0o755))

	moveContents := "module A {}"
	manifestContents := "[package]\nname=\"p\"\nversion=\"0.0.1\""

	require.NoError(t, os.WriteFile(filepath.Join(dir, "sources", "a.move"), []byte(moveContents), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Move.toml"), []byte(manifestContents), 0o644))

	d, err := Compute([]string{dir}, "Move.toml", nil)
	require.NoError(t, err)
	require.Len(t, d.FileDigests, 2)

	moveHash := sha256Upper(t, moveContents)
	manifestHash := sha256Upper(t, manifestContents)

	// sorted path order: "Move.toml" < "sources/a.move"
	hasher := sha256.New()
	hasher.Write([]byte(manifestHash))
	hasher.Write([]byte(moveHash))
	expected := strings.ToUpper(fmt.Sprintf("%x", hasher.Sum(nil)))

	require.Equal(t, expected, d.PackageHash)

	// repeat invocation is byte-identical
	d2, err := Compute([]string{dir}, "Move.toml", nil)
	require.NoError(t, err)
	require.Equal(t, d.PackageHash, d2.PackageHash)
	require.Equal(t, d.FileDigests, d2.FileDigests)
}

// TestRenameChangesPackageHash covers spec.md invariant 2.
func TestRenameChangesPackageHash(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.move"), []byte("module A {}"), 0o644))

	before, err := Compute([]string{dir}, "Move.toml", nil)
	require.NoError(t, err)

	require.NoError(t, os.Rename(filepath.Join(dir, "a.move"), filepath.Join(dir, "b.move")))

	after, err := Compute([]string{dir}, "Move.toml", nil)
	require.NoError(t, err)

	require.NotEqual(t, before.PackageHash, after.PackageHash)
}

func TestComputeSkipsIneligibleFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.move"), []byte("module A {}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("hello"), 0o644))

	d, err := Compute([]string{dir}, "Move.toml", nil)
	require.NoError(t, err)
	require.Len(t, d.FileDigests, 1)
}

func TestComputeSkipsNonFileNonDirPaths(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "does-not-exist")

	d, err := Compute([]string{missing}, "Move.toml", nil)
	require.NoError(t, err)
	require.Empty(t, d.FileDigests)
}

func TestUnreadableFileIsIoError(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("running as root can read any file regardless of permissions")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "a.move")
	require.NoError(t, os.WriteFile(path, []byte("module A {}"), 0o000))

	_, err := Compute([]string{path}, "Move.toml", nil)
	require.Error(t, err)
}

func TestFileChangedAndGetChangedFiles(t *testing.T) {
	a := &PackageDigest{FileDigests: map[string]string{"x.move": "AAA", "y.move": "BBB"}}
	b := &PackageDigest{FileDigests: map[string]string{"x.move": "AAA", "y.move": "CCC", "z.move": "DDD"}}

	require.False(t, a.FileChanged("x.move", "AAA"))
	require.True(t, a.FileChanged("y.move", "CCC"))
	require.True(t, a.FileChanged("missing.move", "whatever"))

	changed := a.GetChangedFiles(b)
	require.ElementsMatch(t, []string{"y.move", "z.move"}, changed)

	// self-comparison is empty, per spec.md invariant 8.
	require.Empty(t, a.GetChangedFiles(a))
}

func TestWalkFollowsSymlinkedDirectories(t *testing.T) {
	dir := t.TempDir()
	real := filepath.Join(dir, "real")
	require.NoError(t, os.MkdirAll(real, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(real, "a.move"), []byte("module A {}"), 0o644))

	linked := filepath.Join(dir, "linked")
	require.NoError(t, os.Symlink(real, linked))

	d, err := Compute([]string{linked}, "Move.toml", nil)
	require.NoError(t, err)
	require.Len(t, d.FileDigests, 1)
}
