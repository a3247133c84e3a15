// Package planner implements C7: bump strategies, dependency-bump
// propagation, cycle harmonization, preview/apply with atomic manifest
// writes and rollback, changelog generation, and release marking, per
// spec.md §4.7.
//
// Grounded on NatoNathan-shipyard's internal/version.Propagator
// (other_examples/610e2d67_...propagator.go.go), which runs the same
// direct-bumps -> propagate-through-graph pipeline over its own
// DependencyGraph/Consignment types that this component runs over
// depgraph.Graph/ledger.Change; and on golang-dep's txn_writer.go for the
// stage-everything-then-commit-with-rollback write discipline.
package planner

import "github.com/websublime/workspace-tools-sub006/semver"

// StrategyKind selects one of spec.md §4.7's four bump strategies.
type StrategyKind int

const (
	Synchronized StrategyKind = iota
	Independent
	ConventionalCommits
	Manual
)

// Strategy parameterizes one bump computation. Only the fields relevant to
// Kind are consulted.
type Strategy struct {
	Kind StrategyKind

	// Synchronized
	Version           semver.Version
	IncludeUnchanged  bool // assign Version to every package, not just those with unreleased changes

	// Independent / ConventionalCommits
	MajorIfBreaking bool // default true
	MinorIfFeature  bool // default true

	// ConventionalCommits
	FromRef string

	// Manual
	Assignments map[string]semver.Version

	// Shared
	HarmonizeCycles bool         // default true (spec.md §4.7 "Cycle harmonization")
	PropagationBump semver.BumpType // bump applied to a dependent when its dependency had a breaking change; default Patch
}

// NewSynchronizedStrategy returns a Synchronized strategy targeting
// version v. When includeUnchanged is false, only packages with at least
// one unreleased change are bumped to v.
func NewSynchronizedStrategy(v semver.Version, includeUnchanged bool) Strategy {
	return Strategy{Kind: Synchronized, Version: v, IncludeUnchanged: includeUnchanged, HarmonizeCycles: true, PropagationBump: semver.Patch}
}

// NewIndependentStrategy returns an Independent strategy.
func NewIndependentStrategy(majorIfBreaking, minorIfFeature bool) Strategy {
	return Strategy{Kind: Independent, MajorIfBreaking: majorIfBreaking, MinorIfFeature: minorIfFeature, HarmonizeCycles: true, PropagationBump: semver.Patch}
}

// NewConventionalCommitsStrategy returns a ConventionalCommits strategy
// sourcing changes from commit history since fromRef.
func NewConventionalCommitsStrategy(fromRef string, majorIfBreaking, minorIfFeature bool) Strategy {
	return Strategy{Kind: ConventionalCommits, FromRef: fromRef, MajorIfBreaking: majorIfBreaking, MinorIfFeature: minorIfFeature, HarmonizeCycles: true, PropagationBump: semver.Patch}
}

// NewManualStrategy returns a Manual strategy assigning exact versions.
func NewManualStrategy(assignments map[string]semver.Version) Strategy {
	return Strategy{Kind: Manual, Assignments: assignments, HarmonizeCycles: true, PropagationBump: semver.Patch}
}

// BumpReasonKind tags why a package received a particular suggestion.
type BumpReasonKind int

const (
	ReasonDirect BumpReasonKind = iota
	ReasonDependencyUpdate
	ReasonCycleHarmonization
)

// BumpReason is one contributing cause of a VersionSuggestion.
type BumpReason struct {
	Kind       BumpReasonKind
	Dependency string // only meaningful for ReasonDependencyUpdate
}

// VersionSuggestion is one package's computed bump, prior to apply
// (spec.md §3 VersionSuggestion).
type VersionSuggestion struct {
	Package    string
	Current    semver.Version
	Suggested  semver.Version
	BumpType   semver.BumpType
	Reasons    []BumpReason
	CycleGroup []string // nil unless part of a cycle group

	IsDependencyUpdate bool
	IsCycleUpdate      bool
}

// VersionBumpPreview is the result of preview_bumps (spec.md §4.7).
type VersionBumpPreview struct {
	Changes       []VersionSuggestion
	CycleDetected bool
	CycleGroups   [][]string
}

// PackageVersionChange is one applied bump (spec.md §3
// PackageVersionChange).
type PackageVersionChange struct {
	Package            string
	Previous           semver.Version
	New                semver.Version
	BumpType           semver.BumpType
	IsDependencyUpdate bool
	IsCycleUpdate      bool
	CycleGroup         []string
}

// ApplyResult is the result of apply_bumps.
type ApplyResult struct {
	Changes []PackageVersionChange
	DryRun  bool
}
