package compiler

import (
	"strings"

	"github.com/movelang/movecore/internal/mutation/report"
)

// NodeKind discriminates the handful of constructs the mutation engine
// cares about. Nothing past the parse phase is modeled: this adapter never
// builds a type-checked AST, only the byte-range locations operator.go
// needs.
type NodeKind int

const (
	NodeBinOp NodeKind = iota
	NodeUnaryNot
	NodeBreak
	NodeContinue
)

// Node is one mutation-relevant construct found in a source file: its kind,
// its byte range, the literal token text, and the file it came from.
type Node struct {
	Kind  NodeKind
	Loc   report.Range
	Token string
	File  string
}

// ParsedProgram is the result of GenerateAST: the source text for every
// scanned file, keyed by path, and the mutation-relevant nodes found across
// all of them, ordered by ascending file path and then by position within
// the file — the traversal order spec.md §4.F requires for deterministic
// mutant ordering.
type ParsedProgram struct {
	Files map[string]string
	Nodes []Node
}

// binaryTokens is every token the scanner treats as a candidate binary
// operator, ordered longest-first so a greedy match never splits a
// multi-byte operator (e.g. "<<" must win over "<").
var binaryTokens = []string{
	"<<", ">>", "==", "!=", "<=", ">=", "&&", "||",
	"+", "-", "*", "/", "%", "&", "|", "^", "<", ">",
}

// scanFile tokenizes source looking for binary operators, unary `!`, and
// `break`/`continue` keywords, skipping over comments and quoted literals so
// occurrences inside them are never mistaken for code. Nodes are appended in
// left-to-right scan order.
func scanFile(file, source string) []Node {
	var nodes []Node
	i := 0
	n := len(source)

	isIdentByte := func(b byte) bool {
		return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
	}

	for i < n {
		switch {
		case strings.HasPrefix(source[i:], "//"):
			end := strings.IndexByte(source[i:], '\n')
			if end < 0 {
				i = n
			} else {
				i += end + 1
			}
			continue
		case strings.HasPrefix(source[i:], "/*"):
			end := strings.Index(source[i+2:], "*/")
			if end < 0 {
				i = n
			} else {
				i += 2 + end + 2
			}
			continue
		case source[i] == '"':
			j := i + 1
			for j < n && source[j] != '"' {
				if source[j] == '\\' && j+1 < n {
					j++
				}
				j++
			}
			i = j + 1
			continue
		}

		if (source[i] >= 'a' && source[i] <= 'z') || (source[i] >= 'A' && source[i] <= 'Z') || source[i] == '_' {
			j := i
			for j < n && isIdentByte(source[j]) {
				j++
			}
			word := source[i:j]
			switch word {
			case "break":
				nodes = append(nodes, Node{Kind: NodeBreak, Loc: report.NewRange(i, j), Token: word, File: file})
			case "continue":
				nodes = append(nodes, Node{Kind: NodeContinue, Loc: report.NewRange(i, j), Token: word, File: file})
			}
			i = j
			continue
		}

		if source[i] == '!' && !(i+1 < n && source[i+1] == '=') {
			nodes = append(nodes, Node{Kind: NodeUnaryNot, Loc: report.NewRange(i, i+1), Token: "!", File: file})
			i++
			continue
		}

		matched := false
		for _, tok := range binaryTokens {
			if strings.HasPrefix(source[i:], tok) {
				nodes = append(nodes, Node{Kind: NodeBinOp, Loc: report.NewRange(i, i+len(tok)), Token: tok, File: file})
				i += len(tok)
				matched = true
				break
			}
		}
		if matched {
			continue
		}
		i++
	}

	return nodes
}
