package manifest

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/movelang/movecore/internal/digest"
	"github.com/movelang/movecore/internal/movecoreerr"
)

// rawManifest is the wire shape decoded straight off disk, before it is
// lowered into the richer Manifest/Dependency types the rest of the core
// consumes. Field names mirror the TOML section names in spec.md §6.
//
// Package is decoded into a map rather than a struct: go-toml's
// DisallowUnknownFields only rejects unrecognized keys for struct
// destinations, so keeping it a map lets unknown [package] keys pass
// through as custom properties (spec.md line 39, original_source's
// `custom_properties: BTreeMap<Symbol, String>`) while every other
// top-level section still rejects keys it doesn't recognize.
type rawManifest struct {
	Package         map[string]interface{}  `toml:"package"`
	Addresses       map[string]string       `toml:"addresses"`
	DevAddresses    map[string]string       `toml:"dev-addresses"`
	Build           *rawBuildInfo           `toml:"build"`
	Dependencies    map[string]rawDependency `toml:"dependencies"`
	DevDependencies map[string]rawDependency `toml:"dev-dependencies"`
}

// knownPackageKeys are the [package] keys with a dedicated PackageInfo
// field; everything else collected into raw.Package is a custom property.
var knownPackageKeys = map[string]struct{}{
	"name":    {},
	"version": {},
	"authors": {},
	"license": {},
}

type rawBuildInfo struct {
	LanguageVersion string `toml:"language_version"`
}

type rawDependency struct {
	Local      string            `toml:"local"`
	Subst      map[string]string `toml:"addr_subst"`
	Version    string            `toml:"version"`
	Digest     string            `toml:"digest"`
	Git        string            `toml:"git"`
	Rev        string            `toml:"rev"`
	Subdir     string            `toml:"subdir"`
	Node       string            `toml:"node"`
	Address    string            `toml:"address"`
	PkgName    string            `toml:"package"`
	DownloadTo string            `toml:"download_to"`
}

// Parse decodes a Move.toml file's contents into a Manifest. Unknown
// top-level sections are rejected as a ConfigError via go-toml's strict
// decoding, matching original_source's `#[serde(deny_unknown_fields)]` on
// the mutator's own configuration type (see config.go for that one).
// Unknown keys inside [package] are tolerated and surfaced as
// PackageInfo.CustomProperties rather than rejected.
func Parse(contents []byte) (*Manifest, error) {
	var raw rawManifest
	decoder := toml.NewDecoder(strings.NewReader(string(contents)))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&raw); err != nil {
		var strictErr *toml.StrictMissingError
		if errors.As(err, &strictErr) {
			return nil, movecoreerr.NewConfigError("unknown manifest field", err)
		}
		return nil, movecoreerr.NewConfigError("malformed manifest", err)
	}

	pkgName, _ := raw.Package["name"].(string)
	if pkgName == "" {
		return nil, movecoreerr.NewConfigError("manifest is missing [package] name", nil)
	}
	rawVersion, _ := raw.Package["version"].(string)
	version, err := parseVersion(rawVersion)
	if err != nil {
		return nil, movecoreerr.NewConfigError("malformed [package] version", err)
	}
	license, _ := raw.Package["license"].(string)

	var authors []string
	if rawAuthors, ok := raw.Package["authors"].([]interface{}); ok {
		authors = make([]string, 0, len(rawAuthors))
		for _, a := range rawAuthors {
			if s, ok := a.(string); ok {
				authors = append(authors, s)
			}
		}
	}

	customProperties := map[string]string{}
	for key, value := range raw.Package {
		if _, known := knownPackageKeys[key]; known {
			continue
		}
		customProperties[key] = fmt.Sprintf("%v", value)
	}

	m := &Manifest{
		Package: PackageInfo{
			Name:             pkgName,
			Version:          version,
			Authors:          authors,
			License:          license,
			CustomProperties: customProperties,
		},
		Addresses:         map[string]*string{},
		DevAddressAssigns: map[string]string{},
		Dependencies:      map[string]*Dependency{},
		DevDependencies:   map[string]*Dependency{},
	}

	for name, value := range raw.Addresses {
		if value == "_" || value == "" {
			m.Addresses[name] = nil
			continue
		}
		v := value
		m.Addresses[name] = &v
	}
	for name, value := range raw.DevAddresses {
		m.DevAddressAssigns[name] = value
	}

	if raw.Build != nil && raw.Build.LanguageVersion != "" {
		lv, err := parseVersion(raw.Build.LanguageVersion)
		if err != nil {
			return nil, movecoreerr.NewConfigError("malformed [build] language_version", err)
		}
		m.Build = &BuildInfo{LanguageVersion: &lv}
	}

	for name, rd := range raw.Dependencies {
		dep, err := lowerDependency(rd)
		if err != nil {
			return nil, movecoreerr.NewConfigError(fmt.Sprintf("dependency %q", name), err)
		}
		m.Dependencies[name] = dep
	}
	for name, rd := range raw.DevDependencies {
		dep, err := lowerDependency(rd)
		if err != nil {
			return nil, movecoreerr.NewConfigError(fmt.Sprintf("dev-dependency %q", name), err)
		}
		m.DevDependencies[name] = dep
	}

	if err := m.Validate(); err != nil {
		return nil, movecoreerr.NewConfigError("invalid manifest", err)
	}

	return m, nil
}

func lowerDependency(rd rawDependency) (*Dependency, error) {
	dep := &Dependency{Local: rd.Local}

	if len(rd.Subst) > 0 {
		dep.Subst = make(map[string]SubstOrRename, len(rd.Subst))
		for name, value := range rd.Subst {
			if strings.HasPrefix(value, "0x") {
				dep.Subst[name] = SubstOrRename{Kind: SubstAssign, Assign: value}
			} else {
				dep.Subst[name] = SubstOrRename{Kind: SubstRenameFrom, RenameFrom: value}
			}
		}
	}

	if rd.Version != "" {
		v, err := parseVersion(rd.Version)
		if err != nil {
			return nil, fmt.Errorf("malformed version: %w", err)
		}
		dep.Version = &v
	}

	if rd.Digest != "" {
		dep.Digest = &digest.PackageDigest{PackageHash: rd.Digest, FileDigests: map[string]string{}}
	}

	if rd.Git != "" {
		dep.GitInfo = &GitInfo{
			GitURL:     rd.Git,
			GitRev:     rd.Rev,
			Subdir:     rd.Subdir,
			DownloadTo: rd.DownloadTo,
		}
	}
	if rd.Node != "" {
		dep.CustomInfo = &CustomDepInfo{
			NodeURL:        rd.Node,
			PackageAddress: rd.Address,
			PackageName:    rd.PkgName,
			DownloadTo:     rd.DownloadTo,
		}
	}

	if err := dep.Validate(); err != nil {
		return nil, err
	}
	return dep, nil
}

func parseVersion(s string) (Version, error) {
	parts := strings.SplitN(s, ".", 3)
	if len(parts) != 3 {
		return Version{}, fmt.Errorf("expected major.minor.patch, got %q", s)
	}
	nums := make([]uint64, 3)
	for i, p := range parts {
		n, err := strconv.ParseUint(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return Version{}, fmt.Errorf("invalid version component %q: %w", p, err)
		}
		nums[i] = n
	}
	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}
