// Package compiler is the narrow façade spec.md §4.G calls the Compiler
// Adapter: it isolates the mutation core from the Move compiler front end.
// No Move compiler library exists anywhere in the Go ecosystem (see
// DESIGN.md), so ScanningToolchain plays the adapter's two roles — parsing
// up to mutation-relevant constructs, and a syntactic stand-in for
// compilation — with a hand-rolled lexical scanner over byte offsets,
// grounded on private/buf/cmd/buf-digest/digest.go's and
// bufcore/bufmodule's "treat the external tool as a narrow collaborator"
// seam in the teacher.
package compiler

import (
	"bufio"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/movelang/movecore/internal/movecoreerr"
)

// Toolchain is the adapter surface the mutation driver depends on: generate
// a parsed-up-to-mutation-relevant-constructs program, and compile either a
// single module or a whole package.
type Toolchain interface {
	// GenerateAST collects mutation-relevant nodes from every source file,
	// after setting up the build's interface-files scratch directory.
	GenerateAST(namedAddresses map[string]string, sources []string, packageRoot string) (*ParsedProgram, error)
	// CompileModule compiles one source file, returning its serialized
	// bytecode blob. Human-readable diagnostics go to sink.
	CompileModule(path string, sink io.Writer) ([]byte, error)
	// CompilePackage compiles every module rooted at root, in path order.
	CompilePackage(root string, sink io.Writer) error
}

// generatedInterfaceFilesDir is the build-scratch subpath spec.md §4.G
// names for GenerateAST's interface-files directory.
const generatedInterfaceFilesDir = "mutator_build/generated_interface_files"

// ScanningToolchain is the real Toolchain: a deterministic lexical scan
// standing in for the Move compiler's parse and bytecode-serialization
// phases.
type ScanningToolchain struct{}

// NewScanningToolchain builds a ScanningToolchain.
func NewScanningToolchain() *ScanningToolchain { return &ScanningToolchain{} }

var _ Toolchain = (*ScanningToolchain)(nil)

// GenerateAST reads every source file, scans it for mutation-relevant
// nodes, and ensures the interface-files scratch directory exists.
// namedAddresses is accepted for interface parity with the original
// compiler entrypoint; this adapter does not need it to locate mutation
// targets.
func (t *ScanningToolchain) GenerateAST(namedAddresses map[string]string, sources []string, packageRoot string) (*ParsedProgram, error) {
	scratchDir := filepath.Join(packageRoot, generatedInterfaceFilesDir)
	if err := os.MkdirAll(scratchDir, 0o755); err != nil {
		return nil, movecoreerr.NewCompilerError(fmt.Errorf("failed to set up interface-files directory: %w", err))
	}

	sorted := append([]string(nil), sources...)
	sort.Strings(sorted)

	program := &ParsedProgram{Files: make(map[string]string, len(sorted))}
	for _, path := range sorted {
		contents, err := os.ReadFile(path)
		if err != nil {
			return nil, movecoreerr.NewCompilerError(fmt.Errorf("failed to read %s: %w", path, err))
		}
		source := string(contents)
		program.Files[path] = source
		program.Nodes = append(program.Nodes, scanFile(path, source)...)
	}
	return program, nil
}

// CompileModule performs a syntactic balanced-delimiter check in place of a
// real compile, and returns a bytecode blob derived from the source's
// SHA-256 digest — a stand-in "serialized module" the cache can round-trip.
func (t *ScanningToolchain) CompileModule(path string, sink io.Writer) ([]byte, error) {
	if sink == nil {
		sink = io.Discard
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, movecoreerr.NewCompilerError(fmt.Errorf("failed to read %s: %w", path, err))
	}

	if err := checkBalancedDelimiters(string(contents)); err != nil {
		color.New(color.FgRed).Fprintf(sink, "error: %s: %v\n", path, err)
		return nil, movecoreerr.NewCompilerError(fmt.Errorf("%s: %w", path, err))
	}

	color.New(color.FgCyan).Fprintf(sink, "compiled %s\n", path)
	sum := sha256.Sum256(contents)
	return sum[:], nil
}

// CompilePackage walks root for every .move file outside the interface-files
// scratch directory and compiles each in path order, aborting on the first
// failure.
func (t *ScanningToolchain) CompilePackage(root string, sink io.Writer) error {
	files, err := MoveFilesUnder(root)
	if err != nil {
		return err
	}
	for _, f := range files {
		if _, err := t.CompileModule(f, sink); err != nil {
			return err
		}
	}
	return nil
}

// NopToolchain is a Toolchain that never fails compilation, for callers
// that need AST generation without any real verification.
type NopToolchain struct {
	inner *ScanningToolchain
}

// NewNopToolchain builds a NopToolchain. GenerateAST still performs the real
// scan (mutants cannot be produced without it); CompileModule and
// CompilePackage are unconditional no-ops.
func NewNopToolchain() *NopToolchain {
	return &NopToolchain{inner: NewScanningToolchain()}
}

var _ Toolchain = (*NopToolchain)(nil)

func (t *NopToolchain) GenerateAST(namedAddresses map[string]string, sources []string, packageRoot string) (*ParsedProgram, error) {
	return t.inner.GenerateAST(namedAddresses, sources, packageRoot)
}

func (t *NopToolchain) CompileModule(path string, sink io.Writer) ([]byte, error) {
	sum := sha256.Sum256([]byte(path))
	return sum[:], nil
}

func (t *NopToolchain) CompilePackage(root string, sink io.Writer) error {
	return nil
}

// MoveFilesUnder lists every .move file under root, excluding the
// interface-files scratch directory, in ascending path order.
func MoveFilesUnder(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == "mutator_build" {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".move") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, movecoreerr.NewIoError(fmt.Sprintf("failed to walk %s", root), err)
	}
	sort.Strings(files)
	return files, nil
}

// checkBalancedDelimiters is the syntactic stand-in for the parse phase's
// error surfacing: mismatched {}, (), [] are the one class of malformed
// source it detects. None of the mutation operators changes delimiter
// balance (the `{}` loop-control replacement is itself balanced), so it
// rejects only sources that were unbalanced before mutation, such as a
// hand-written fixture.
func checkBalancedDelimiters(source string) error {
	var stack []byte
	pairs := map[byte]byte{')': '(', ']': '[', '}': '{'}

	reader := bufio.NewReader(strings.NewReader(source))
	inString := false
	inLineComment := false
	var prev byte

	for {
		b, err := reader.ReadByte()
		if err != nil {
			break
		}
		if inLineComment {
			if b == '\n' {
				inLineComment = false
			}
			prev = b
			continue
		}
		if inString {
			if b == '"' && prev != '\\' {
				inString = false
			}
			prev = b
			continue
		}
		switch b {
		case '"':
			inString = true
		case '/':
			if prev == '/' {
				inLineComment = true
			}
		case '(', '[', '{':
			stack = append(stack, b)
		case ')', ']', '}':
			if len(stack) == 0 || stack[len(stack)-1] != pairs[b] {
				return fmt.Errorf("unbalanced delimiter %q", b)
			}
			stack = stack[:len(stack)-1]
		}
		prev = b
	}
	if len(stack) != 0 {
		return fmt.Errorf("unclosed delimiter %q", stack[len(stack)-1])
	}
	return nil
}
