package driver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/movelang/movecore/internal/compiler"
	"github.com/movelang/movecore/internal/mutation/config"
	"github.com/movelang/movecore/internal/mutation/report"
)

func writePackage(t *testing.T, root string) {
	t.Helper()
	srcDir := filepath.Join(root, "sources")
	require.NoError(t, os.MkdirAll(srcDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(srcDir, "a.move"), []byte(
		"module M {\n    fun f(a: u64, b: u64): u64 {\n        a * b\n    }\n}\n",
	), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "Move.toml"), []byte(
		"[package]\nname=\"p\"\nversion=\"0.0.1\"\n",
	), 0o644))
}

func TestRunGeneratesMutantsAndReport(t *testing.T) {
	root := t.TempDir()
	writePackage(t, root)

	cfg := config.Default()
	d := New(cfg, compiler.NewScanningToolchain(), nil, false)

	result, err := d.Run(root)
	require.NoError(t, err)
	require.Equal(t, 4, result.Generated) // '*' has 4 family siblings
	require.Equal(t, 4, result.Kept)

	loaded, err := report.LoadFromJSONFile(filepath.Join(root, "mutants_output", "report.json"))
	require.NoError(t, err)
	require.Len(t, loaded.Mutants, 4)

	require.FileExists(t, filepath.Join(root, "mutants_output", "report.txt"))
}

func TestRunNoOverwriteSkipsExistingMutantFile(t *testing.T) {
	root := t.TempDir()
	writePackage(t, root)

	existing := filepath.Join(root, "mutants_output", "sources", "a_0.move")
	require.NoError(t, os.MkdirAll(filepath.Dir(existing), 0o755))
	require.NoError(t, os.WriteFile(existing, []byte("placeholder"), 0o644))

	cfg := config.Default()
	cfg.NoOverwrite = true
	d := New(cfg, compiler.NewScanningToolchain(), nil, false)

	result, err := d.Run(root)
	require.NoError(t, err)
	require.Equal(t, 3, result.Generated)

	contents, err := os.ReadFile(existing)
	require.NoError(t, err)
	require.Equal(t, "placeholder", string(contents))
}

func TestRunRejectsUnknownDownsampleFilter(t *testing.T) {
	root := t.TempDir()
	writePackage(t, root)

	cfg := config.Default()
	cfg.DownsampleFilter = "nonsense"
	d := New(cfg, compiler.NewScanningToolchain(), nil, false)

	_, err := d.Run(root)
	require.Error(t, err)
}

func TestRunRandomDownsampleKeepsRequestedCount(t *testing.T) {
	root := t.TempDir()
	writePackage(t, root)

	cfg := config.Default()
	cfg.DownsampleFilter = "random:2"
	cfg.Seed = 7
	d := New(cfg, compiler.NewScanningToolchain(), nil, false)

	result, err := d.Run(root)
	require.NoError(t, err)
	require.Equal(t, 4, result.Generated)
	require.Equal(t, 2, result.Kept)
}

func TestRunVerificationKeepsCompilableMutants(t *testing.T) {
	root := t.TempDir()
	srcDir := filepath.Join(root, "sources")
	require.NoError(t, os.MkdirAll(srcDir, 0o755))
	// Mutating "break" to "{}" keeps delimiters balanced; this fixture only
	// exercises the verification wiring (every candidate mutant compiles).
	require.NoError(t, os.WriteFile(filepath.Join(srcDir, "a.move"), []byte(
		"module M {\n    fun f() {\n        while (true) { break }\n    }\n}\n",
	), 0o644))

	cfg := config.Default()
	cfg.VerifyMutants = true
	d := New(cfg, compiler.NewScanningToolchain(), nil, false)

	result, err := d.Run(root)
	require.NoError(t, err)
	require.Equal(t, 0, result.VerificationDropped)
	require.Equal(t, result.Generated, result.Kept)
}
