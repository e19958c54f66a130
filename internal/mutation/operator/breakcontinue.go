package operator

import (
	"fmt"

	"github.com/movelang/movecore/internal/mutation/report"
)

// BreakContinue is the loop-control mutation of spec.md §4.D: a `break`
// mutates to `continue` and to `{}`; a `continue` mutates to `break` and to
// `{}`. Kind holds the original token as found in source.
type BreakContinue struct {
	Kind     string // "break" or "continue"
	Loc      report.Range
	FileHash string
}

// NewBreakContinue builds a BreakContinue operator instance. kind must be
// "break" or "continue".
func NewBreakContinue(kind string, loc report.Range, fileHash string) *BreakContinue {
	return &BreakContinue{Kind: kind, Loc: loc, FileHash: fileHash}
}

// Apply produces the two candidate mutants for bc.Kind, in fixed order:
// the opposite keyword first, then the empty block.
func (bc *BreakContinue) Apply(source string) []MutantInfo {
	var opposite string
	switch bc.Kind {
	case "break":
		opposite = "continue"
	case "continue":
		opposite = "break"
	default:
		return nil
	}

	replacements := []string{opposite, "{}"}
	mutants := make([]MutantInfo, 0, len(replacements))
	for _, replacement := range replacements {
		mutated := source[:bc.Loc.Start] + replacement + source[bc.Loc.End:]
		mutation := report.NewMutation(bc.Loc, bc.String(), bc.Kind, replacement)
		mutants = append(mutants, NewMutantInfo(mutated, mutation))
	}
	return mutants
}

// FileFingerprint returns the fingerprint of the file this operator was
// built from.
func (bc *BreakContinue) FileFingerprint() string { return bc.FileHash }

// String is the operator name recorded in Mutation.OperatorName.
func (bc *BreakContinue) String() string { return fmt.Sprintf("break_continue_operator(%s)", bc.Kind) }
