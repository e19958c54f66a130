package operator

import (
	"fmt"

	"github.com/movelang/movecore/internal/mutation/report"
)

// binaryFamilies groups the operator tokens original_source's operator.rs
// treats as mutually substitutable: swapping one member of a family for
// another in the same family is the Binary operator's whole job. Families
// never overlap, so each token belongs to exactly one.
var binaryFamilies = [][]string{
	{"+", "-", "*", "/", "%"},
	{"&", "|", "^", "<<", ">>"},
	{"==", "!=", "<", "<=", ">", ">="},
	{"&&", "||"},
}

func familyFor(op string) []string {
	for _, family := range binaryFamilies {
		for _, tok := range family {
			if tok == op {
				return family
			}
		}
	}
	return nil
}

// Binary is the binary-operator mutation of spec.md §4.D: replace the
// operator at Loc with every other member of its arithmetic/bitwise/
// comparison/boolean family.
type Binary struct {
	Op       string
	Loc      report.Range
	FileHash string
}

// NewBinary builds a Binary operator instance for the operator token op
// found at loc in the file identified by fileHash.
func NewBinary(op string, loc report.Range, fileHash string) *Binary {
	return &Binary{Op: op, Loc: loc, FileHash: fileHash}
}

// Apply produces one mutant per other operator in op's family, in fixed
// family-table order, so mutant ordering is deterministic across runs.
func (b *Binary) Apply(source string) []MutantInfo {
	family := familyFor(b.Op)
	if family == nil {
		return nil
	}

	var mutants []MutantInfo
	for _, candidate := range family {
		if candidate == b.Op {
			continue
		}
		mutated := source[:b.Loc.Start] + candidate + source[b.Loc.End:]
		mutation := report.NewMutation(b.Loc, b.String(), b.Op, candidate)
		mutants = append(mutants, NewMutantInfo(mutated, mutation))
	}
	return mutants
}

// FileFingerprint returns the fingerprint of the file this operator was
// built from.
func (b *Binary) FileFingerprint() string { return b.FileHash }

// String is the operator name recorded in Mutation.OperatorName.
func (b *Binary) String() string { return fmt.Sprintf("binary_operator(%s)", b.Op) }
