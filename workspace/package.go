// Package workspace implements C5: discovery of a directory tree of
// packages, the package table, and the validation facade, per spec.md §3
// (Package/PackageInfo/Workspace) and §4.5.
package workspace

import (
	"path/filepath"
	"sort"

	"github.com/websublime/workspace-tools-sub006/manifest"
)

// Dependency is a package's declared dependency, as recorded in the
// workspace's package table (spec.md §3 Dependency, prior to registry
// interning).
type Dependency struct {
	Name  string
	Range string
	Field manifest.DependencyField
}

// Package is the identity + state view of spec.md §3 Package: name,
// version, ordered dependency list.
type Package struct {
	Name         string
	Version      string
	Dependencies []Dependency
}

// DependencyNames returns the sorted set of distinct dependency names.
func (p Package) DependencyNames() []string {
	seen := make(map[string]bool, len(p.Dependencies))
	var names []string
	for _, d := range p.Dependencies {
		if !seen[d.Name] {
			seen[d.Name] = true
			names = append(names, d.Name)
		}
	}
	sort.Strings(names)
	return names
}

// PackageInfo is a Package plus its filesystem coordinates (spec.md §3
// PackageInfo).
type PackageInfo struct {
	Package

	ManifestPath string
	PackageDir   string
	RelativeDir  string

	doc *manifest.Manifest
}

// Manifest returns the raw manifest document backing this package, for
// callers (the planner) that need to stage edits via manifest.Manifest.
func (pi *PackageInfo) Manifest() *manifest.Manifest { return pi.doc }

func fromManifest(root, manifestPath string, m *manifest.Manifest, filter manifest.DependencyFilter) *PackageInfo {
	dir := filepath.Dir(manifestPath)
	rel, _ := filepath.Rel(root, dir)

	deps := make([]Dependency, 0, len(m.Dependencies))
	for _, d := range m.Dependencies {
		deps = append(deps, Dependency{Name: d.Name, Range: d.Range, Field: d.Field})
	}

	return &PackageInfo{
		Package: Package{
			Name:         m.Name,
			Version:      m.Version,
			Dependencies: deps,
		},
		ManifestPath: manifestPath,
		PackageDir:   dir,
		RelativeDir:  filepath.ToSlash(rel),
		doc:          m,
	}
}
