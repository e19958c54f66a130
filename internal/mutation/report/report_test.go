package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestEmptyReportJSON(t *testing.T) {
	r := New()
	s, err := r.ToJSON()
	require.NoError(t, err)
	require.Equal(t, "{\n  \"mutants\": []\n}", s)
}

func TestReportJSONRoundTrip(t *testing.T) {
	r := New()
	entry := NewMutationReport("mutants_output/a_0.move", "sources/a.move", "--- original\n+++ modified\n@@ -1 +1 @@\n-old\n+new\n")
	entry.AddModification(NewMutation(NewRange(0, 10), "binary_operator", "old", "new"))
	r.AddEntry(entry)

	dir := t.TempDir()
	path := filepath.Join(dir, "report.json")
	require.NoError(t, r.SaveToJSONFile(path))

	loaded, err := LoadFromJSONFile(path)
	require.NoError(t, err)
	if diff := cmp.Diff(r, loaded); diff != "" {
		t.Fatalf("round-tripped report differs (-want +got):\n%s", diff)
	}
}

func TestSaveToTextFile(t *testing.T) {
	r := New()
	entry := NewMutationReport("file", "original_file", "diff\n")
	entry.AddModification(NewMutation(NewRange(0, 10), "operator", "old", "new"))
	r.AddEntry(entry)

	dir := t.TempDir()
	path := filepath.Join(dir, "report.txt")
	require.NoError(t, r.SaveToTextFile(path))

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	s := string(contents)

	require.Contains(t, s, "Mutant path: file")
	require.Contains(t, s, "Original file: original_file")
	require.Contains(t, s, "Mutations:")
	require.Contains(t, s, "Operator: operator")
	require.Contains(t, s, "Old value: old")
	require.Contains(t, s, "New value: new")
	require.Contains(t, s, "Changed place: 0-10")
	require.Contains(t, s, "----------------------------------------")
}

func TestSaveToTextFileFailsOnMissingDirectory(t *testing.T) {
	r := New()
	err := r.SaveToTextFile(filepath.Join(t.TempDir(), "missing-dir", "report.txt"))
	require.Error(t, err)
}

func TestRangePanicsOnInvertedBounds(t *testing.T) {
	require.Panics(t, func() { NewRange(10, 5) })
}

func TestAppendOrderIsPreserved(t *testing.T) {
	r := New()
	r.AddEntry(NewMutationReport("a", "a", ""))
	r.AddEntry(NewMutationReport("b", "b", ""))
	r.AddEntry(NewMutationReport("c", "c", ""))

	require.Equal(t, []string{"a", "b", "c"}, []string{
		r.Mutants[0].MutantPath, r.Mutants[1].MutantPath, r.Mutants[2].MutantPath,
	})
}
