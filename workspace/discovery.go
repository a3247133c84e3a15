package workspace

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/karrick/godirwalk"
	"github.com/pkg/errors"

	"github.com/websublime/workspace-tools-sub006/manifest"
	"github.com/websublime/workspace-tools-sub006/vcs"
)

// Workspace is the discovered package table plus its filesystem root and
// optional collaborators (spec.md §3 Workspace).
type Workspace struct {
	RootPath           string
	VCS                vcs.Adapter
	PackageManagerHint string

	byName map[string]*PackageInfo
	order  []string // package names sorted by name, for stable diagnostics
}

// Discover walks root per cfg, parsing every manifest it finds into the
// package table (spec.md §4.5).
func Discover(root string, cfg DiscoveryConfig) (*Workspace, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, &InvalidConfigurationError{Reason: err.Error()}
	}

	if fi, statErr := os.Stat(absRoot); statErr != nil || !fi.IsDir() {
		return nil, &RootNotFoundError{Path: root}
	}

	if cfg.MaxDepth < 0 {
		return nil, &InvalidConfigurationError{Reason: "max depth must be >= 0"}
	}
	if len(cfg.IncludePatterns) == 0 {
		return nil, &InvalidConfigurationError{Reason: "include_patterns must not be empty"}
	}

	var manifestPaths []string
	walkErr := godirwalk.Walk(absRoot, &godirwalk.Options{
		Unsorted: true,
		Callback: func(path string, de *godirwalk.Dirent) error {
			rel, relErr := filepath.Rel(absRoot, path)
			if relErr != nil {
				return relErr
			}
			rel = filepath.ToSlash(rel)

			if de.IsDir() {
				if cfg.MaxDepth > 0 && rel != "." && strings.Count(rel, "/")+1 > cfg.MaxDepth {
					return filepath.SkipDir
				}
				if rel != "." && matchesAny(cfg.ExcludePatterns, rel+"/") {
					return filepath.SkipDir
				}
				return nil
			}

			if matchesAny(cfg.ExcludePatterns, rel) {
				return nil
			}
			if matchesAny(cfg.IncludePatterns, rel) {
				manifestPaths = append(manifestPaths, path)
			}
			return nil
		},
	})
	if walkErr != nil {
		return nil, errors.Wrapf(walkErr, "walking %s", absRoot)
	}

	manifestPaths = append(manifestPaths, cfg.AdditionalPackagePaths...)
	sort.Strings(manifestPaths)

	ws := &Workspace{RootPath: absRoot, byName: make(map[string]*PackageInfo)}

	for _, mp := range manifestPaths {
		m, err := manifest.ReadFile(mp, cfg.DependencyFilter)
		if err != nil {
			return nil, err
		}
		pi := fromManifest(absRoot, mp, m, cfg.DependencyFilter)
		if existing, ok := ws.byName[pi.Name]; ok {
			return nil, &DuplicatePackageNameError{Name: pi.Name, FirstPath: existing.ManifestPath, SecondPath: pi.ManifestPath}
		}
		ws.byName[pi.Name] = pi
		ws.order = append(ws.order, pi.Name)
	}

	if len(ws.byName) == 0 {
		return nil, &NoPackagesFoundError{Path: absRoot}
	}

	if cfg.DetectPackageManager {
		ws.PackageManagerHint = detectPackageManager(absRoot)
	}

	sort.Strings(ws.order)
	return ws, nil
}

func matchesAny(patterns []string, path string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, path); ok {
			return true
		}
	}
	return false
}

func detectPackageManager(root string) string {
	markers := []struct {
		file string
		name string
	}{
		{"pnpm-workspace.yaml", "pnpm"},
		{"pnpm-lock.yaml", "pnpm"},
		{"yarn.lock", "yarn"},
		{"package-lock.json", "npm"},
		{"lerna.json", "lerna"},
	}
	for _, m := range markers {
		if _, err := os.Stat(filepath.Join(root, m.file)); err == nil {
			return m.name
		}
	}
	return ""
}

// Packages returns every discovered package, sorted by name.
func (w *Workspace) Packages() []*PackageInfo {
	out := make([]*PackageInfo, 0, len(w.byName))
	for _, name := range w.Names() {
		out = append(out, w.byName[name])
	}
	return out
}

// Names returns every discovered package name, sorted.
func (w *Workspace) Names() []string {
	names := make([]string, 0, len(w.byName))
	for n := range w.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Get returns the named package, or (nil, false).
func (w *Workspace) Get(name string) (*PackageInfo, bool) {
	pi, ok := w.byName[name]
	return pi, ok
}

// MustGet returns the named package or a PackageNotFoundError.
func (w *Workspace) MustGet(name string) (*PackageInfo, error) {
	pi, ok := w.byName[name]
	if !ok {
		return nil, &PackageNotFoundError{Name: name}
	}
	return pi, nil
}

// IsInternal reports whether name matches a discovered workspace package
// (spec.md §3 Workspace invariant: internal vs external dependency).
func (w *Workspace) IsInternal(name string) bool {
	_, ok := w.byName[name]
	return ok
}

// Len returns the number of discovered packages.
func (w *Workspace) Len() int { return len(w.byName) }
