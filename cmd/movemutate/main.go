// Command movemutate is the CLI surface of the mutation engine retained by
// spec.md §6: the one piece of the original command-line tool's surface
// that parameterizes the core directly, everything else (build/test/
// docgen/disassemble/prove/publish) being out of scope per spec.md §1.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/movelang/movecore/internal/app/clizap"
	"github.com/movelang/movecore/internal/compiler"
	"github.com/movelang/movecore/internal/modulecache"
	"github.com/movelang/movecore/internal/mutation/config"
	"github.com/movelang/movecore/internal/mutation/driver"
)

var (
	flagMoveSources       []string
	flagIncludeOnly       []string
	flagExcludeFiles      []string
	flagOutMutantDir      string
	flagVerifyMutants     bool
	flagNoOverwrite       bool
	flagDownsampleFilter  string
	flagConfigurationFile string

	flagLogLevel  string
	flagLogFormat string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "movemutate [package-root]",
		Short: "Generate and optionally verify source mutants for a Move package",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runMutate,
	}

	bindFlags(cmd.Flags())

	return cmd
}

// bindFlags wires the flag set spec.md §6 names onto the package-level flag
// vars, one call per flag in the teacher's BindXxx style.
func bindFlags(flagSet *pflag.FlagSet) {
	flagSet.StringArrayVarP(&flagMoveSources, "move-sources", "m", nil, "source file to mutate (repeatable)")
	flagSet.StringArrayVarP(&flagIncludeOnly, "include-only-files", "i", nil, "restrict mutation to files matching this pattern (repeatable)")
	flagSet.StringArrayVarP(&flagExcludeFiles, "exclude-files", "e", nil, "exclude files matching this pattern (repeatable)")
	flagSet.StringVarP(&flagOutMutantDir, "out-mutant-dir", "o", "", "directory to write mutants and reports to")
	flagSet.BoolVar(&flagVerifyMutants, "verify-mutants", false, "compile each mutant and discard those that fail")
	flagSet.BoolVarP(&flagNoOverwrite, "no-overwrite", "n", false, "skip writing a mutant whose output path already exists")
	flagSet.StringVar(&flagDownsampleFilter, "downsample-filter", "", `named filter to trim the mutant set ("all", "random:N")`)
	flagSet.StringVarP(&flagConfigurationFile, "configuration-file", "c", "", "path to a TOML configuration file")
	flagSet.StringVar(&flagLogLevel, "log-level", "info", "log level [debug,info,warn,error]")
	flagSet.StringVar(&flagLogFormat, "log-format", "color", "log format [text,color,json]")
}

func runMutate(cmd *cobra.Command, args []string) error {
	logger, err := clizap.NewLogger(os.Stderr, flagLogLevel, flagLogFormat)
	if err != nil {
		return err
	}
	defer logger.Sync()

	packageRoot := "."
	if len(args) == 1 {
		packageRoot = args[0]
	}

	cfg := config.Default()
	if flagConfigurationFile != "" {
		contents, err := os.ReadFile(flagConfigurationFile)
		if err != nil {
			return fmt.Errorf("failed to read configuration file: %w", err)
		}
		cfg, err = config.ParseFile(contents)
		if err != nil {
			return err
		}
	}

	cfg = cfg.Overlay(config.Overrides{
		MoveSources:      flagMoveSources,
		IncludeOnlyFiles: flagIncludeOnly,
		ExcludeFiles:     flagExcludeFiles,
		OutMutantDir:     flagOutMutantDir,
		VerifyMutantsSet: cmd.Flags().Changed("verify-mutants"),
		VerifyMutants:    flagVerifyMutants,
		NoOverwriteSet:   cmd.Flags().Changed("no-overwrite"),
		NoOverwrite:      flagNoOverwrite,
		DownsampleFilter: flagDownsampleFilter,
	})

	var toolchain compiler.Toolchain = compiler.NewScanningToolchain()
	if cfg.VerifyMutants {
		cache, err := modulecache.New(logger)
		if err != nil {
			return err
		}
		toolchain = compiler.NewCachingCompiler(toolchain, cache, false, false)
	}

	verbose := clizap.IsDebug(flagLogLevel)
	d := driver.New(cfg, toolchain, logger, verbose)

	result, err := d.Run(packageRoot)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "generated %d mutant(s), %d survived verification/downsampling\n",
		result.Generated, result.Kept)
	return nil
}
