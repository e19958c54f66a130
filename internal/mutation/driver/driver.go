// Package driver implements the Mutation Driver orchestration algorithm of
// spec.md §4.F: enumerate sources, ask the Compiler Adapter for mutation-
// relevant AST nodes, dispatch each to its operator, write mutants, build
// and optionally verify a Report, downsample, and persist.
package driver

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/hako/durafmt"
	"go.uber.org/zap"

	"github.com/movelang/movecore/internal/compiler"
	"github.com/movelang/movecore/internal/digest"
	"github.com/movelang/movecore/internal/movecoreerr"
	"github.com/movelang/movecore/internal/mutation/config"
	"github.com/movelang/movecore/internal/mutation/operator"
	"github.com/movelang/movecore/internal/mutation/report"
)

// Driver orchestrates one mutation run over a package rooted at a given
// directory, per the configured Toolchain and Configuration.
type Driver struct {
	cfg       config.Configuration
	toolchain compiler.Toolchain
	logger    *zap.Logger
	verbose   bool
}

// New builds a Driver. verbose routes compile diagnostics to stdout instead
// of a null sink, per spec.md §4.G.
func New(cfg config.Configuration, toolchain compiler.Toolchain, logger *zap.Logger, verbose bool) *Driver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Driver{cfg: cfg, toolchain: toolchain, logger: logger, verbose: verbose}
}

// Result is what a run returns to its caller: the persisted Report, plus
// the count of mutants discarded at each stage for the summary line.
type Result struct {
	Report              *report.Report
	Generated           int
	VerificationDropped int
	Kept                int
	Duration            time.Duration
}

// Run executes the full orchestration algorithm against packageRoot.
func (d *Driver) Run(packageRoot string) (*Result, error) {
	start := time.Now()

	if err := d.cfg.Validate(); err != nil {
		return nil, err
	}

	sources, err := enumerateSources(packageRoot, d.cfg.MoveSources, d.cfg.IncludeOnlyFiles, d.cfg.ExcludeFiles)
	if err != nil {
		return nil, err
	}

	program, err := d.toolchain.GenerateAST(nil, sources, packageRoot)
	if err != nil {
		return nil, err
	}

	fingerprints := make(map[string]string, len(program.Files))
	for file := range program.Files {
		fileDigest, err := digest.Compute([]string{file}, "", nil)
		if err != nil {
			return nil, err
		}
		fingerprints[file] = fileDigest.FileDigests[file]
	}

	var candidates []candidate
	mutantCounters := make(map[string]int)
	nodeIndex := 0

	for _, node := range program.Nodes {
		source := program.Files[node.File]
		op := operatorFor(node, fingerprints[node.File])
		if op == nil {
			continue
		}

		for _, mutant := range op.Apply(source) {
			outPath, err := mutantOutputPath(packageRoot, node.File, d.cfg.OutMutantDir, mutantCounters)
			if err != nil {
				return nil, err
			}

			if d.cfg.NoOverwrite {
				if _, err := os.Stat(outPath); err == nil {
					continue
				}
			}

			candidates = append(candidates, candidate{
				mutantPath:    outPath,
				originalFile:  node.File,
				mutatedSource: mutant.MutatedSource,
				diff:          unifiedDiff(node.File, source, mutant.MutatedSource),
				mutation:      mutant.Mutation,
				node:          nodeIndex,
			})
			nodeIndex++

			if err := writeMutant(outPath, mutant.MutatedSource); err != nil {
				return nil, err
			}

			d.logger.Debug("wrote mutant",
				zap.String("origin", node.File),
				zap.String("mutant", outPath),
			)
		}
	}

	generated := len(candidates)

	valid := candidates
	verificationDropped := 0
	if d.cfg.VerifyMutants {
		valid, verificationDropped, err = d.verify(packageRoot, candidates)
		if err != nil {
			return nil, err
		}
	}

	kept, err := downsample(d.cfg.DownsampleFilter, valid, d.cfg.Seed)
	if err != nil {
		return nil, err
	}

	rep := report.New()
	for _, c := range kept {
		entry := report.NewMutationReport(c.mutantPath, c.originalFile, c.diff)
		entry.AddModification(c.mutation)
		rep.AddEntry(entry)
	}

	outDir := resolveOutDir(packageRoot, d.cfg.OutMutantDir)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, movecoreerr.NewIoError("failed to create output directory", err)
	}
	if err := rep.SaveToJSONFile(filepath.Join(outDir, "report.json")); err != nil {
		return nil, movecoreerr.NewSerializationError("failed to write report.json", err)
	}
	if err := rep.SaveToTextFile(filepath.Join(outDir, "report.txt")); err != nil {
		return nil, movecoreerr.NewIoError("failed to write report.txt", err)
	}

	duration := time.Since(start)
	d.logger.Info("mutation run completed",
		zap.Int("generated", generated),
		zap.Int("survived", len(kept)),
		zap.String("duration", humanDuration(duration)),
	)

	return &Result{
		Report:              rep,
		Generated:           generated,
		VerificationDropped: verificationDropped,
		Kept:                len(kept),
		Duration:            duration,
	}, nil
}

// verify copies the package to a scratch directory per mutant, overwrites
// the mutated file, and asks the Toolchain to compile. A compile failure
// discards the mutant and is not fatal to the run.
func (d *Driver) verify(packageRoot string, candidates []candidate) ([]candidate, int, error) {
	var sink io.Writer = io.Discard
	if d.verbose {
		sink = os.Stdout
	}

	var valid []candidate
	dropped := 0

	for _, c := range candidates {
		scratchDir := filepath.Join(os.TempDir(), "movemutate-"+uuid.NewString())
		if err := copyPackage(packageRoot, scratchDir, d.cfg.OutMutantDir); err != nil {
			os.RemoveAll(scratchDir)
			return nil, 0, err
		}

		rel, err := filepath.Rel(packageRoot, c.originalFile)
		if err != nil {
			os.RemoveAll(scratchDir)
			return nil, 0, movecoreerr.NewIoError("failed to resolve mutant path for verification", err)
		}
		target := filepath.Join(scratchDir, rel)
		if err := os.WriteFile(target, []byte(c.mutatedSource), 0o644); err != nil {
			os.RemoveAll(scratchDir)
			return nil, 0, movecoreerr.NewIoError("failed to stage mutant for verification", err)
		}

		err = d.toolchain.CompilePackage(scratchDir, sink)
		os.RemoveAll(scratchDir)
		if err != nil {
			d.logger.Info("mutant failed verification, discarding",
				zap.String("mutant", c.mutantPath),
				zap.Error(err),
			)
			dropped++
			continue
		}
		valid = append(valid, c)
	}

	return valid, dropped, nil
}

func operatorFor(node compiler.Node, fileHash string) operator.MutationOperator {
	switch node.Kind {
	case compiler.NodeBinOp:
		return operator.NewBinary(node.Token, node.Loc, fileHash)
	case compiler.NodeUnaryNot:
		return operator.NewUnary(node.Loc, fileHash)
	case compiler.NodeBreak, compiler.NodeContinue:
		kind := "break"
		if node.Kind == compiler.NodeContinue {
			kind = "continue"
		}
		return operator.NewBreakContinue(kind, node.Loc, fileHash)
	default:
		return nil
	}
}

func resolveOutDir(packageRoot, outMutantDir string) string {
	if filepath.IsAbs(outMutantDir) {
		return outMutantDir
	}
	return filepath.Join(packageRoot, outMutantDir)
}

func writeMutant(path, source string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return movecoreerr.NewIoError("failed to create mutant directory", err)
	}
	if err := os.WriteFile(path, []byte(source), 0o644); err != nil {
		return movecoreerr.NewIoError(fmt.Sprintf("failed to write mutant %s", path), err)
	}
	return nil
}

// humanDuration renders d the way build-tool summaries report elapsed wall
// clock time to operators, falling back to d.String() on the rare duration
// durafmt can't parse.
func humanDuration(d time.Duration) string {
	formatted, err := durafmt.Parse(d)
	if err != nil {
		return d.String()
	}
	return formatted.String()
}

// mutantOutputPath computes the deterministic, monotonically-suffixed
// output path for the next mutant of originFile, mirroring originFile's
// position relative to packageRoot under outMutantDir.
func mutantOutputPath(packageRoot, originFile, outMutantDir string, counters map[string]int) (string, error) {
	rel, err := filepath.Rel(packageRoot, originFile)
	if err != nil {
		return "", movecoreerr.NewIoError("failed to resolve relative mutant path", err)
	}
	dir := filepath.Dir(rel)
	ext := filepath.Ext(rel)
	stem := rel[:len(rel)-len(ext)]

	n := counters[rel]
	counters[rel] = n + 1

	name := fmt.Sprintf("%s_%d%s", filepath.Base(stem), n, ext)
	outDir := resolveOutDir(packageRoot, outMutantDir)
	if dir == "." {
		return filepath.Join(outDir, name), nil
	}
	return filepath.Join(outDir, dir, name), nil
}
