package manifest

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseBasicManifest(t *testing.T) {
	contents := []byte(`
[package]
name = "example"
version = "1.2.3"
authors = ["alice"]
license = "Apache-2.0"

[addresses]
example = "0x1"
unassigned = "_"

[dependencies]
MoveStdlib = { local = "../move-stdlib" }
`)

	m, err := Parse(contents)
	require.NoError(t, err)
	require.Equal(t, "example", m.Package.Name)
	require.Equal(t, Version{1, 2, 3}, m.Package.Version)
	require.Equal(t, []string{"alice"}, m.Package.Authors)

	require.NotNil(t, m.Addresses["example"])
	require.Equal(t, "0x1", *m.Addresses["example"])
	require.Nil(t, m.Addresses["unassigned"])

	dep, ok := m.Dependencies["MoveStdlib"]
	require.True(t, ok)
	require.Equal(t, "../move-stdlib", dep.Local)
	require.False(t, dep.HasGit())
	require.False(t, dep.HasCustom())
}

func TestParseGitDependency(t *testing.T) {
	contents := []byte(`
[package]
name = "example"
version = "0.0.1"

[dependencies.Dep]
local = "build/Dep"
git = "https://example.com/dep.git"
rev = "abc123"
subdir = "move"
`)
	m, err := Parse(contents)
	require.NoError(t, err)
	dep := m.Dependencies["Dep"]
	require.True(t, dep.HasGit())
	require.Equal(t, "https://example.com/dep.git", dep.GitInfo.GitURL)
	require.Equal(t, "abc123", dep.GitInfo.GitRev)
}

func TestDependencyCannotHaveGitAndCustom(t *testing.T) {
	dep := &Dependency{
		GitInfo:    &GitInfo{GitURL: "https://example.com"},
		CustomInfo: &CustomDepInfo{NodeURL: "https://node.example.com"},
	}
	require.Error(t, dep.Validate())
}

func TestParseRejectsUnknownSection(t *testing.T) {
	contents := []byte(`
[package]
name = "example"
version = "0.0.1"

[nonsense]
foo = "bar"
`)
	_, err := Parse(contents)
	require.Error(t, err)
}

func TestParseTreatsUnknownPackageKeysAsCustomProperties(t *testing.T) {
	contents := []byte(`
[package]
name = "example"
version = "0.0.1"
edition = "2024"
published-at = "0x1"
`)
	m, err := Parse(contents)
	require.NoError(t, err)
	require.Equal(t, "example", m.Package.Name)
	require.Equal(t, "2024", m.Package.CustomProperties["edition"])
	require.Equal(t, "0x1", m.Package.CustomProperties["published-at"])
	_, hasKnownKeyLeaking := m.Package.CustomProperties["name"]
	require.False(t, hasKnownKeyLeaking)
}

func TestParseRejectsMissingName(t *testing.T) {
	contents := []byte(`
[package]
version = "0.0.1"
`)
	_, err := Parse(contents)
	require.Error(t, err)
}

func TestValidateSubstitutions(t *testing.T) {
	upstream := &Manifest{
		Addresses: map[string]*string{"Std": nil},
	}
	dep := &Dependency{
		Subst: map[string]SubstOrRename{
			"Local": {Kind: SubstRenameFrom, RenameFrom: "Std"},
		},
	}
	require.NoError(t, ValidateSubstitutions(dep, upstream))

	badDep := &Dependency{
		Subst: map[string]SubstOrRename{
			"Local": {Kind: SubstRenameFrom, RenameFrom: "Undeclared"},
		},
	}
	require.Error(t, ValidateSubstitutions(badDep, upstream))
}

func TestVersionAtLeast(t *testing.T) {
	require.True(t, (Version{1, 2, 3}).AtLeast(Version{1, 2, 0}))
	require.True(t, (Version{1, 2, 3}).AtLeast(Version{1, 2, 3}))
	require.False(t, (Version{1, 2, 3}).AtLeast(Version{1, 3, 0}))
}

func TestValidateVersionRejectsTooOldDependedUpon(t *testing.T) {
	upstream := &Manifest{Package: PackageInfo{Version: Version{1, 0, 0}}}
	dep := &Dependency{Version: &Version{1, 1, 0}}
	require.Error(t, ValidateVersion(dep, upstream))

	dep.Version = &Version{0, 9, 0}
	require.NoError(t, ValidateVersion(dep, upstream))
}

func TestManifestStringMirrorsPersistedFormat(t *testing.T) {
	addr := "0x1"
	m := &Manifest{
		Package: PackageInfo{Name: "p", Version: Version{0, 0, 1}},
		Addresses: map[string]*string{
			"assigned":   &addr,
			"unassigned": nil,
		},
		Dependencies: map[string]*Dependency{
			"Dep": {Local: "../dep"},
		},
	}
	s := m.String()
	require.Contains(t, s, "[package]")
	require.Contains(t, s, "[addresses]")
	require.Contains(t, s, "[dependencies]")
	require.Contains(t, s, `assigned = "0x1"`)
	require.Contains(t, s, `unassigned = "_"`)
}
