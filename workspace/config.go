package workspace

import "github.com/websublime/workspace-tools-sub006/manifest"

// DiscoveryConfig controls how Discover walks the workspace root (spec.md
// §4.5 / §6 "Discovery" configuration surface).
type DiscoveryConfig struct {
	// IncludePatterns are doublestar glob patterns matched against paths
	// relative to the workspace root. Default: []string{"**/package.json"}.
	IncludePatterns []string
	// ExcludePatterns are doublestar glob patterns excluded even if they
	// match an include pattern. Default excludes nested dependency
	// directories.
	ExcludePatterns []string
	// MaxDepth bounds how many directory levels below root are walked; 0
	// means unbounded.
	MaxDepth int
	// IncludePrivate is carried for callers; Discover does not read it, and
	// packages whose manifest marks them private are always discovered.
	IncludePrivate bool
	// AdditionalPackagePaths are extra manifest paths to include beyond
	// what the glob finds (e.g. a root-level "workspace" package).
	AdditionalPackagePaths []string
	// DependencyFilter controls which dependency map variants are read
	// from each manifest (spec.md §4.2).
	DependencyFilter manifest.DependencyFilter
	// AutoDetectRoot is carried for callers; Discover does not read it and
	// walks only the root it is given, with no upward search for a marker.
	AutoDetectRoot bool
	// RootMarkers are filenames that identify a workspace root (e.g.
	// "pnpm-workspace.yaml", "lerna.json"); Discover does not read them.
	RootMarkers []string
	// DetectPackageManager enables best-effort detection of which package
	// manager owns the workspace, surfaced as Workspace.PackageManagerHint.
	DetectPackageManager bool
}

// DefaultDiscoveryConfig returns the configuration spec.md §4.5 describes as
// the default.
func DefaultDiscoveryConfig() DiscoveryConfig {
	return DiscoveryConfig{
		IncludePatterns: []string{"**/package.json"},
		ExcludePatterns: []string{
			"**/node_modules/**",
			"**/vendor/**",
			"**/dist/**",
			"**/build/**",
		},
		DependencyFilter:     manifest.DefaultDependencyFilter(),
		DetectPackageManager: true,
		RootMarkers:          []string{"package.json", "pnpm-workspace.yaml", "lerna.json"},
	}
}

// ValidationOptions controls Workspace.Validate (spec.md §4.5).
type ValidationOptions struct {
	// TreatUnresolvedAsExternal, when true, means Unresolved graph nodes
	// never become a ValidationIssue.
	TreatUnresolvedAsExternal bool
	// InternalDependencies names dependency names that should be treated
	// as internal even if no matching workspace package was discovered
	// (diagnostic aid for partially-discovered workspaces).
	InternalDependencies []string
}
