// Package manifest models a parsed Move package manifest (Move.toml),
// mirroring source_package/parsed_manifest.rs in original_source: package
// metadata, named address declarations, and normal/dev dependency tables.
//
// A Manifest is read-only after parsing; the derived operations are the
// dependency checks (Validate, ValidateSubstitutions, ValidateVersion) and
// String (matching the persisted TOML layout at the category level). No
// equality method is defined on Manifest. The file-change helpers
// (FileChanged, GetChangedFiles) live on digest.PackageDigest, which a
// Dependency embeds as its pinned digest.
package manifest

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/movelang/movecore/internal/digest"
)

// Version is a semantic version triple.
type Version struct {
	Major uint64
	Minor uint64
	Patch uint64
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// canonical renders v in the "vMAJOR.MINOR.PATCH" form golang.org/x/mod/semver
// requires of its inputs.
func (v Version) canonical() string {
	return "v" + v.String()
}

// AtLeast reports whether v is the same as or newer than other, per
// semantic-version precedence rules (golang.org/x/mod/semver.Compare).
func (v Version) AtLeast(other Version) bool {
	return semver.Compare(v.canonical(), other.canonical()) >= 0
}

// PackageInfo is the `[package]` section.
type PackageInfo struct {
	Name             string
	Version          Version
	Authors          []string
	License          string
	CustomProperties map[string]string
}

// BuildInfo is the optional `[build]` section.
type BuildInfo struct {
	LanguageVersion *Version
}

// SubstKind distinguishes the two forms a named-address substitution can take.
type SubstKind int

const (
	// SubstRenameFrom renames an address from another named address
	// declared by the depending package.
	SubstRenameFrom SubstKind = iota
	// SubstAssign assigns a literal address value.
	SubstAssign
)

// SubstOrRename is one entry of a dependency's address substitution table.
type SubstOrRename struct {
	Kind       SubstKind
	RenameFrom string // valid when Kind == SubstRenameFrom
	Assign     string // hex address literal, valid when Kind == SubstAssign
}

// GitInfo describes a git-sourced dependency.
type GitInfo struct {
	GitURL     string
	GitRev     string
	Subdir     string
	DownloadTo string
}

// CustomDepInfo describes a dependency resolved from a custom registry node.
type CustomDepInfo struct {
	NodeURL        string
	PackageAddress string
	PackageName    string
	DownloadTo     string
}

// Dependency is one entry of a `[dependencies]` or `[dev-dependencies]` table.
type Dependency struct {
	Local      string
	Subst      map[string]SubstOrRename
	Version    *Version
	Digest     *digest.PackageDigest
	GitInfo    *GitInfo
	CustomInfo *CustomDepInfo
}

// HasGit reports whether the dependency carries a git source descriptor.
func (d *Dependency) HasGit() bool { return d.GitInfo != nil }

// HasCustom reports whether the dependency carries a custom-registry descriptor.
func (d *Dependency) HasCustom() bool { return d.CustomInfo != nil }

// Validate enforces "a dependency carries at most one of {git, custom}".
func (d *Dependency) Validate() error {
	if d.HasGit() && d.HasCustom() {
		return fmt.Errorf("dependency declares both a git and a custom-registry source")
	}
	return nil
}

// Manifest is the parsed representation of a Move.toml file.
type Manifest struct {
	Package           PackageInfo
	Addresses         map[string]*string // nil value means unassigned ("_")
	DevAddressAssigns map[string]string
	Build             *BuildInfo
	Dependencies      map[string]*Dependency
	DevDependencies   map[string]*Dependency
}

// Validate checks every per-dependency invariant (currently: at most one of
// git/custom per dependency). Cross-package named-address resolution is an
// external collaborator's job (see SPEC_FULL.md §4.B) and is exposed
// separately via ValidateSubstitutions.
func (m *Manifest) Validate() error {
	for name, dep := range m.Dependencies {
		if err := dep.Validate(); err != nil {
			return fmt.Errorf("dependency %q: %w", name, err)
		}
	}
	for name, dep := range m.DevDependencies {
		if err := dep.Validate(); err != nil {
			return fmt.Errorf("dev-dependency %q: %w", name, err)
		}
	}
	return nil
}

// ValidateSubstitutions checks that every named address referenced by a
// rename-from substitution in dep is declared by the depended-upon
// manifest's address table.
func ValidateSubstitutions(dep *Dependency, dependedUpon *Manifest) error {
	for localName, subst := range dep.Subst {
		if subst.Kind != SubstRenameFrom {
			continue
		}
		if _, ok := dependedUpon.Addresses[subst.RenameFrom]; !ok {
			return fmt.Errorf(
				"substitution for %q renames from undeclared named address %q",
				localName, subst.RenameFrom,
			)
		}
	}
	return nil
}

// ValidateVersion checks that dep's pinned version constraint, if any, is
// satisfied by dependedUpon's actual package version.
func ValidateVersion(dep *Dependency, dependedUpon *Manifest) error {
	if dep.Version == nil {
		return nil
	}
	if !dependedUpon.Package.Version.AtLeast(*dep.Version) {
		return fmt.Errorf(
			"dependency requires version >= %s, depended-upon package is at %s",
			dep.Version, dependedUpon.Package.Version,
		)
	}
	return nil
}

// String renders the manifest's persisted-format category layout:
// [package], [addresses], [dependencies].
func (m *Manifest) String() string {
	var b strings.Builder

	fmt.Fprintln(&b, "[package]")
	fmt.Fprintf(&b, "name = \"%s\"\n", m.Package.Name)
	fmt.Fprintf(&b, "version = \"%s\"\n", m.Package.Version)

	fmt.Fprintln(&b, "[addresses]")
	for _, name := range sortedKeys(m.Addresses) {
		addr := m.Addresses[name]
		if addr == nil {
			fmt.Fprintf(&b, "%s = \"_\"\n", name)
		} else {
			fmt.Fprintf(&b, "%s = \"%s\"\n", name, *addr)
		}
	}

	fmt.Fprintln(&b, "[dependencies]")
	for _, name := range sortedDepKeys(m.Dependencies) {
		fmt.Fprintf(&b, "%s = { local = %q }\n", name, m.Dependencies[name].Local)
	}

	return b.String()
}

func sortedKeys(m map[string]*string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedDepKeys(m map[string]*Dependency) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
