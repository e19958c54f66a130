// Package report accumulates and serializes the catalog of mutants produced
// by a mutation run, mirroring report.rs in original_source: a Report is an
// ordered, append-only list of MutationReport entries, each carrying the
// Mutations applied to one mutant and a unified diff against the original.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Range is an inclusive-start/exclusive-end byte range within the
// pre-mutation source.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// NewRange builds a Range, panicking if start > end — this is an invariant
// violation by the caller (an operator bug), not a runtime condition to
// recover from, matching original_source's `assert!(start <= end)`.
func NewRange(start, end int) Range {
	if start > end {
		panic(fmt.Sprintf("mutation range start %d > end %d", start, end))
	}
	return Range{Start: start, End: end}
}

// Mutation records one applied change: where, by which operator, and the
// old/new literal text.
type Mutation struct {
	ChangedPlace Range  `json:"changed_place"`
	OperatorName string `json:"operator_name"`
	OldValue     string `json:"old_value"`
	NewValue     string `json:"new_value"`
}

// NewMutation builds a Mutation record.
func NewMutation(changedPlace Range, operatorName, oldValue, newValue string) Mutation {
	return Mutation{
		ChangedPlace: changedPlace,
		OperatorName: operatorName,
		OldValue:     oldValue,
		NewValue:     newValue,
	}
}

// MutationReport groups everything produced for one mutant: where it was
// written, what it was derived from, which edits were applied, and the
// unified diff between original and mutated source.
type MutationReport struct {
	MutantPath   string     `json:"mutant_path"`
	OriginalFile string     `json:"original_file"`
	Mutations    []Mutation `json:"mutations"`
	Diff         string     `json:"diff"`
}

// NewMutationReport builds a MutationReport entry. diff is the
// already-rendered unified diff text between originalSource and
// mutatedSource (see internal/mutation/driver, which owns diff generation
// so this package stays free of a diffing dependency).
func NewMutationReport(mutantPath, originalFile, diff string) *MutationReport {
	return &MutationReport{
		MutantPath:   mutantPath,
		OriginalFile: originalFile,
		Mutations:    []Mutation{},
		Diff:         diff,
	}
}

// AddModification appends a Mutation to this entry.
func (r *MutationReport) AddModification(m Mutation) {
	r.Mutations = append(r.Mutations, m)
}

// Report is the ordered, append-only catalog of mutants produced by a run.
type Report struct {
	Mutants []*MutationReport `json:"mutants"`
}

// New returns an empty Report.
func New() *Report {
	return &Report{Mutants: []*MutationReport{}}
}

// AddEntry appends entry, preserving append order.
func (r *Report) AddEntry(entry *MutationReport) {
	r.Mutants = append(r.Mutants, entry)
}

// ToJSON renders the report as pretty-printed JSON.
func (r *Report) ToJSON() (string, error) {
	bytes, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// SaveToJSONFile writes the report as pretty-printed JSON to path.
func (r *Report) SaveToJSONFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	return encoder.Encode(r)
}

// LoadFromJSONFile is the inverse of SaveToJSONFile.
func LoadFromJSONFile(path string) (*Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r Report
	if err := json.NewDecoder(f).Decode(&r); err != nil {
		return nil, err
	}
	return &r, nil
}

// SaveToTextFile writes the fixed line-per-field text layout: mutant path,
// original, each mutation's operator/old/new/range, the unified diff, and a
// 40-character dashed separator.
func (r *Report) SaveToTextFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return r.writeText(f)
}

func (r *Report) writeText(w io.Writer) error {
	for _, entry := range r.Mutants {
		if _, err := fmt.Fprintf(w, "Mutant path: %s\n", entry.MutantPath); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "Original file: %s\n", entry.OriginalFile); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w, "Mutations:"); err != nil {
			return err
		}
		for _, m := range entry.Mutations {
			fmt.Fprintf(w, "  Operator: %s\n", m.OperatorName)
			fmt.Fprintf(w, "  Old value: %s\n", m.OldValue)
			fmt.Fprintf(w, "  New value: %s\n", m.NewValue)
			fmt.Fprintf(w, "  Changed place: %d-%d\n", m.ChangedPlace.Start, m.ChangedPlace.End)
		}
		if _, err := fmt.Fprintln(w, "Diff:"); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w, entry.Diff); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w, "----------------------------------------"); err != nil {
			return err
		}
	}
	return nil
}
