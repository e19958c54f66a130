// Package config models the mutation engine's run configuration: the
// `[project]` table of a TOML configuration file, layered under whatever
// flags the CLI surface (spec.md §6) supplies, per SPEC_FULL.md §6's CLI
// flags-override-file precedence decision.
package config

import (
	"bytes"
	"errors"

	"github.com/pelletier/go-toml/v2"

	"github.com/movelang/movecore/internal/movecoreerr"
)

// Configuration is the fully resolved set of knobs the Mutation Driver
// consumes, after merging an optional configuration file with CLI flags.
type Configuration struct {
	MoveSources      []string
	IncludeOnlyFiles []string
	ExcludeFiles     []string
	OutMutantDir     string
	VerifyMutants    bool
	NoOverwrite      bool
	DownsampleFilter string
	Seed             int64
}

// DefaultOutMutantDir is the output directory used when neither the
// configuration file nor the CLI supplies one.
const DefaultOutMutantDir = "mutants_output"

// Default returns the zero-value configuration with spec.md §6's documented
// defaults: no_overwrite unset is treated as false (spec.md §9 Open
// Question (a)), downsample filter "all", out dir "mutants_output".
func Default() Configuration {
	return Configuration{
		OutMutantDir:     DefaultOutMutantDir,
		VerifyMutants:    false,
		NoOverwrite:      false,
		DownsampleFilter: "all",
	}
}

type rawConfiguration struct {
	Project rawProject `toml:"project"`
}

type rawProject struct {
	MoveSources      []string `toml:"move_sources"`
	IncludeOnlyFiles []string `toml:"include_only_files"`
	ExcludeFiles     []string `toml:"exclude_files"`
	OutMutantDir     string   `toml:"out_mutant_dir"`
	VerifyMutants    bool     `toml:"verify_mutants"`
	NoOverwrite      bool     `toml:"no_overwrite"`
	DownsampleFilter string   `toml:"downsample_filter"`
	Seed             int64    `toml:"seed"`
}

// ParseFile parses a configuration file's contents into a Configuration,
// starting from Default() and overlaying whatever fields the file sets.
// Unknown fields are rejected, matching spec.md §7's ConfigError for
// "unknown configuration option".
func ParseFile(contents []byte) (Configuration, error) {
	cfg := Default()

	var raw rawConfiguration
	decoder := toml.NewDecoder(bytes.NewReader(contents))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&raw); err != nil {
		var strictErr *toml.StrictMissingError
		if errors.As(err, &strictErr) {
			return Configuration{}, movecoreerr.NewConfigError("unknown configuration option", err)
		}
		return Configuration{}, movecoreerr.NewConfigError("malformed configuration file", err)
	}

	if len(raw.Project.MoveSources) > 0 {
		cfg.MoveSources = raw.Project.MoveSources
	}
	if len(raw.Project.IncludeOnlyFiles) > 0 {
		cfg.IncludeOnlyFiles = raw.Project.IncludeOnlyFiles
	}
	if len(raw.Project.ExcludeFiles) > 0 {
		cfg.ExcludeFiles = raw.Project.ExcludeFiles
	}
	if raw.Project.OutMutantDir != "" {
		cfg.OutMutantDir = raw.Project.OutMutantDir
	}
	cfg.VerifyMutants = raw.Project.VerifyMutants
	cfg.NoOverwrite = raw.Project.NoOverwrite
	if raw.Project.DownsampleFilter != "" {
		cfg.DownsampleFilter = raw.Project.DownsampleFilter
	}
	cfg.Seed = raw.Project.Seed

	return cfg, nil
}

// Overrides holds the CLI-flag values Overlay applies on top of cfg, per
// SPEC_FULL.md §6: CLI flags always win when both a file value and a flag
// value are present. Empty strings and slices are treated as "not
// supplied". The two bare booleans (VerifyMutants, NoOverwrite) and Seed
// are applied only when their companion *Set field is true, which the
// cobra layer sets when the flag was actually changed on the command line.
type Overrides struct {
	MoveSources      []string
	IncludeOnlyFiles []string
	ExcludeFiles     []string
	OutMutantDir     string
	VerifyMutantsSet bool
	VerifyMutants    bool
	NoOverwriteSet   bool
	NoOverwrite      bool
	DownsampleFilter string
	SeedSet          bool
	Seed             int64
}

// Overlay returns cfg with every non-empty Overrides field applied.
func (cfg Configuration) Overlay(o Overrides) Configuration {
	if len(o.MoveSources) > 0 {
		cfg.MoveSources = o.MoveSources
	}
	if len(o.IncludeOnlyFiles) > 0 {
		cfg.IncludeOnlyFiles = o.IncludeOnlyFiles
	}
	if len(o.ExcludeFiles) > 0 {
		cfg.ExcludeFiles = o.ExcludeFiles
	}
	if o.OutMutantDir != "" {
		cfg.OutMutantDir = o.OutMutantDir
	}
	if o.VerifyMutantsSet {
		cfg.VerifyMutants = o.VerifyMutants
	}
	if o.NoOverwriteSet {
		cfg.NoOverwrite = o.NoOverwrite
	}
	if o.DownsampleFilter != "" {
		cfg.DownsampleFilter = o.DownsampleFilter
	}
	if o.SeedSet {
		cfg.Seed = o.Seed
	}
	return cfg
}

// Validate checks fields Overlay and ParseFile cannot check in isolation.
func (cfg Configuration) Validate() error {
	if cfg.OutMutantDir == "" {
		return movecoreerr.NewConfigError("out_mutant_dir must not be empty", nil)
	}
	if cfg.DownsampleFilter == "" {
		return movecoreerr.NewConfigError("downsample_filter must not be empty", nil)
	}
	return nil
}
