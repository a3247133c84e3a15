package ledger

import (
	"path/filepath"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/websublime/workspace-tools-sub006/workspace"
)

// ScopeKind distinguishes the three places a changed file can live
// (spec.md §4.6 "Change-scope detection").
type ScopeKind int

const (
	ScopePackage ScopeKind = iota
	ScopeMonorepo
	ScopeRoot
)

// ChangeScope is the classification of one changed file path.
type ChangeScope struct {
	Kind ScopeKind
	Name string // only meaningful when Kind == ScopePackage
}

// defaultMonorepoPatterns matches root-level manifest, CI, and workspace
// configuration files (spec.md §4.6 point 2).
var defaultMonorepoPatterns = []string{
	"package.json",
	"pnpm-workspace.yaml",
	"pnpm-lock.yaml",
	"lerna.json",
	".github/workflows/*",
	"*.code-workspace",
}

// ScopeDetector classifies changed file paths against a Workspace,
// memoizing lookups per instance (spec.md §4.6).
type ScopeDetector struct {
	ws       *workspace.Workspace
	patterns []string

	mu    sync.Mutex
	cache map[string]ChangeScope
}

// NewScopeDetector builds a ScopeDetector over ws. patterns overrides the
// default monorepo-infrastructure glob set when non-empty.
func NewScopeDetector(ws *workspace.Workspace, patterns []string) *ScopeDetector {
	if len(patterns) == 0 {
		patterns = defaultMonorepoPatterns
	}
	return &ScopeDetector{ws: ws, patterns: patterns, cache: make(map[string]ChangeScope)}
}

// ClearCache invalidates every memoized scope lookup (spec.md §4.6
// "Scope lookup is memoized... invalidated via clear_cache").
func (d *ScopeDetector) ClearCache() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cache = make(map[string]ChangeScope)
}

// ScopeOf classifies path, which is expected relative to the workspace
// root, using forward slashes.
func (d *ScopeDetector) ScopeOf(path string) ChangeScope {
	rel := filepath.ToSlash(path)

	d.mu.Lock()
	if cached, ok := d.cache[rel]; ok {
		d.mu.Unlock()
		return cached
	}
	d.mu.Unlock()

	scope := d.classify(rel)

	d.mu.Lock()
	d.cache[rel] = scope
	d.mu.Unlock()

	return scope
}

func (d *ScopeDetector) classify(rel string) ChangeScope {
	for _, pkg := range d.ws.Packages() {
		pkgRel := pkg.RelativeDir
		if pkgRel == "." {
			pkgRel = ""
		}
		if pkgRel == "" {
			continue // root-package files fall through to the monorepo-pattern and root checks below
		}
		if rel == pkgRel || strings.HasPrefix(rel, pkgRel+"/") {
			return ChangeScope{Kind: ScopePackage, Name: pkg.Name}
		}
	}

	for _, pattern := range d.patterns {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return ChangeScope{Kind: ScopeMonorepo}
		}
	}

	return ChangeScope{Kind: ScopeRoot}
}
