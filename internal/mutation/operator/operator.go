// Package operator implements the per-construct mutation rules of
// spec.md §4.D: binary-operator swaps, unary-not deletion, and
// break/continue substitution.
//
// Operators are modeled as a closed tagged union (sum type) over a shared
// capability set — apply, origin-file fingerprint, display name — per
// spec.md §9's design note, rather than as runtime dispatch over a
// heterogeneous slice of interfaces. This keeps the operator set
// exhaustively matchable wherever new mutants are generated, the same shape
// MutationOp takes over Binary/Unary/BreakContinue in original_source's
// operator.rs.
package operator

import (
	"fmt"

	"github.com/movelang/movecore/internal/mutation/report"
)

// MutantInfo is one candidate produced by an operator: the mutated source
// and the Mutation record describing the edit.
type MutantInfo struct {
	MutatedSource string
	Mutation      report.Mutation
}

// NewMutantInfo builds a MutantInfo.
func NewMutantInfo(mutatedSource string, mutation report.Mutation) MutantInfo {
	return MutantInfo{MutatedSource: mutatedSource, Mutation: mutation}
}

// MutationOperator is the capability set every operator variant implements.
type MutationOperator interface {
	// Apply applies the operator to source, returning zero or more
	// candidate mutants. Each mutant edits exactly one byte range.
	Apply(source string) []MutantInfo
	// FileFingerprint returns the content fingerprint of the file this
	// operator instance originated from.
	FileFingerprint() string
}

// Kind discriminates the members of the MutationOp union.
type Kind int

const (
	KindBinary Kind = iota
	KindUnary
	KindBreakContinue
)

// MutationOp is the closed tagged union over the three operator kinds.
type MutationOp struct {
	Kind          Kind
	Binary        *Binary
	Unary         *Unary
	BreakContinue *BreakContinue
}

var (
	_ MutationOperator = (*Binary)(nil)
	_ MutationOperator = (*Unary)(nil)
	_ MutationOperator = (*BreakContinue)(nil)
)

// Apply dispatches to the wrapped operator's Apply method.
func (op MutationOp) Apply(source string) []MutantInfo {
	switch op.Kind {
	case KindBinary:
		return op.Binary.Apply(source)
	case KindUnary:
		return op.Unary.Apply(source)
	case KindBreakContinue:
		return op.BreakContinue.Apply(source)
	default:
		return nil
	}
}

// FileFingerprint dispatches to the wrapped operator's FileFingerprint method.
func (op MutationOp) FileFingerprint() string {
	switch op.Kind {
	case KindBinary:
		return op.Binary.FileFingerprint()
	case KindUnary:
		return op.Unary.FileFingerprint()
	case KindBreakContinue:
		return op.BreakContinue.FileFingerprint()
	default:
		return ""
	}
}

// String returns the stable, human-readable operator name used in reports
// and logs.
func (op MutationOp) String() string {
	switch op.Kind {
	case KindBinary:
		return op.Binary.String()
	case KindUnary:
		return op.Unary.String()
	case KindBreakContinue:
		return op.BreakContinue.String()
	default:
		return fmt.Sprintf("unknown operator kind %d", op.Kind)
	}
}

// NewBinaryOp wraps a Binary operator in the union.
func NewBinaryOp(b *Binary) MutationOp { return MutationOp{Kind: KindBinary, Binary: b} }

// NewUnaryOp wraps a Unary operator in the union.
func NewUnaryOp(u *Unary) MutationOp { return MutationOp{Kind: KindUnary, Unary: u} }

// NewBreakContinueOp wraps a BreakContinue operator in the union.
func NewBreakContinueOp(bc *BreakContinue) MutationOp {
	return MutationOp{Kind: KindBreakContinue, BreakContinue: bc}
}
