package operator

import "github.com/movelang/movecore/internal/mutation/report"

// Unary is the unary-not mutation of spec.md §4.D: delete the `!` token by
// replacing it with a single space, so byte offsets downstream of the
// mutation stay unshifted.
type Unary struct {
	Loc      report.Range
	FileHash string
}

// NewUnary builds a Unary operator instance for the `!` found at loc in the
// file identified by fileHash.
func NewUnary(loc report.Range, fileHash string) *Unary {
	return &Unary{Loc: loc, FileHash: fileHash}
}

// Apply produces exactly one mutant: `!` replaced with a space.
func (u *Unary) Apply(source string) []MutantInfo {
	mutated := source[:u.Loc.Start] + " " + source[u.Loc.End:]
	mutation := report.NewMutation(u.Loc, u.String(), "!", " ")
	return []MutantInfo{NewMutantInfo(mutated, mutation)}
}

// FileFingerprint returns the fingerprint of the file this operator was
// built from.
func (u *Unary) FileFingerprint() string { return u.FileHash }

// String is the operator name recorded in Mutation.OperatorName.
func (u *Unary) String() string { return "unary_operator(!)" }
