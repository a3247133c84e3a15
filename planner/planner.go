package planner

import (
	"context"
	"sort"

	"github.com/pkg/errors"

	"github.com/websublime/workspace-tools-sub006/depgraph"
	"github.com/websublime/workspace-tools-sub006/ledger"
	"github.com/websublime/workspace-tools-sub006/semver"
	"github.com/websublime/workspace-tools-sub006/vcs"
	"github.com/websublime/workspace-tools-sub006/workspace"
)

// Planner is the stateless service of spec.md §4.7, parameterized by the
// workspace, its graph, and its change ledger. It owns nothing persistent
// itself (spec.md §3 "Ownership").
type Planner struct {
	ws    *workspace.Workspace
	graph *depgraph.Graph
	store ledger.ChangeStore

	vcsAdapter vcs.Adapter
	detector   *ledger.ScopeDetector
}

// New returns a Planner over ws/graph/store. vcsAdapter and detector may
// be nil unless the caller uses the ConventionalCommits strategy.
func New(ws *workspace.Workspace, graph *depgraph.Graph, store ledger.ChangeStore, vcsAdapter vcs.Adapter, detector *ledger.ScopeDetector) *Planner {
	return &Planner{ws: ws, graph: graph, store: store, vcsAdapter: vcsAdapter, detector: detector}
}

func currentVersionOf(ws *workspace.Workspace, name string) (semver.Version, error) {
	pkg, ok := ws.Get(name)
	if !ok {
		return semver.Version{}, &PackageNotFoundError{Name: name}
	}
	return semver.Parse(pkg.Version)
}

// bumpTypeFromRelationship derives an approximate BumpType for a
// Synchronized or Manual assignment, where the target version is given
// directly rather than computed from a bump level.
func bumpTypeFromRelationship(current, target semver.Version) semver.BumpType {
	switch semver.RelationshipOf(current, target) {
	case semver.MajorUpgrade, semver.MajorDowngrade:
		return semver.Major
	case semver.MinorUpgrade, semver.MinorDowngrade:
		return semver.Minor
	case semver.PatchUpgrade, semver.PatchDowngrade:
		return semver.Patch
	default:
		return semver.None
	}
}

// classifyChanges applies spec.md §4.7 Independent's classification rule
// to a package's unreleased (or commit-sourced) changes.
func classifyChanges(changes []ledger.Change, majorIfBreaking, minorIfFeature bool) semver.BumpType {
	if len(changes) == 0 {
		return semver.None
	}
	anyBreaking := false
	anyFeature := false
	for _, c := range changes {
		if c.Breaking {
			anyBreaking = true
		}
		if c.ChangeType == ledger.Feature {
			anyFeature = true
		}
	}
	switch {
	case anyBreaking && majorIfBreaking:
		return semver.Major
	case anyBreaking:
		return semver.Minor
	case anyFeature && minorIfFeature:
		return semver.Minor
	default:
		return semver.Patch
	}
}

// directBumps computes each package's direct suggestion (before
// propagation and cycle harmonization) per the strategy's Kind.
func (p *Planner) directBumps(ctx context.Context, strategy Strategy) (map[string]VersionSuggestion, error) {
	switch strategy.Kind {
	case Synchronized:
		return p.directBumpsSynchronized(ctx, strategy)
	case Independent:
		return p.directBumpsIndependent(ctx, strategy)
	case ConventionalCommits:
		return p.directBumpsConventional(ctx, strategy)
	case Manual:
		return p.directBumpsManual(strategy)
	default:
		return nil, errors.Errorf("planner: unknown strategy kind %d", strategy.Kind)
	}
}

func (p *Planner) directBumpsSynchronized(ctx context.Context, strategy Strategy) (map[string]VersionSuggestion, error) {
	out := make(map[string]VersionSuggestion)

	eligible := make(map[string]bool)
	if strategy.IncludeUnchanged {
		for _, name := range p.ws.Names() {
			eligible[name] = true
		}
	} else {
		unreleased, err := p.store.UnreleasedChanges(ctx, "")
		if err != nil {
			return nil, err
		}
		for _, c := range unreleased {
			if p.ws.IsInternal(c.Package) {
				eligible[c.Package] = true
			}
		}
	}

	for name := range eligible {
		current, err := currentVersionOf(p.ws, name)
		if err != nil {
			return nil, err
		}
		out[name] = VersionSuggestion{
			Package:   name,
			Current:   current,
			Suggested: strategy.Version,
			BumpType:  bumpTypeFromRelationship(current, strategy.Version),
			Reasons:   []BumpReason{{Kind: ReasonDirect}},
		}
	}
	return out, nil
}

func (p *Planner) directBumpsIndependent(ctx context.Context, strategy Strategy) (map[string]VersionSuggestion, error) {
	changes, err := p.store.UnreleasedChanges(ctx, "")
	if err != nil {
		return nil, err
	}
	byPackage := make(map[string][]ledger.Change)
	for _, c := range changes {
		byPackage[c.Package] = append(byPackage[c.Package], c)
	}

	out := make(map[string]VersionSuggestion)
	for _, name := range p.ws.Names() {
		bump := classifyChanges(byPackage[name], strategy.MajorIfBreaking, strategy.MinorIfFeature)
		if bump == semver.None {
			continue
		}

		current, err := currentVersionOf(p.ws, name)
		if err != nil {
			return nil, err
		}
		suggested, err := semver.Bump(current, bump)
		if err != nil {
			return nil, err
		}
		out[name] = VersionSuggestion{
			Package:   name,
			Current:   current,
			Suggested: suggested,
			BumpType:  bump,
			Reasons:   []BumpReason{{Kind: ReasonDirect}},
		}
	}
	return out, nil
}

func (p *Planner) directBumpsConventional(ctx context.Context, strategy Strategy) (map[string]VersionSuggestion, error) {
	if p.vcsAdapter == nil || p.detector == nil {
		return nil, &ledger.NoGitRepositoryError{}
	}
	to, err := p.vcsAdapter.CurrentSHA(ctx)
	if err != nil {
		return nil, err
	}
	changes, err := ledger.DetectChangesBetween(ctx, p.vcsAdapter, p.detector, strategy.FromRef, to)
	if err != nil {
		return nil, err
	}

	byPackage := make(map[string][]ledger.Change)
	for _, c := range changes {
		byPackage[c.Package] = append(byPackage[c.Package], c)
	}

	out := make(map[string]VersionSuggestion)
	for name, mine := range byPackage {
		if !p.ws.IsInternal(name) {
			continue
		}
		bump := classifyChanges(mine, strategy.MajorIfBreaking, strategy.MinorIfFeature)
		if bump == semver.None {
			continue
		}
		current, err := currentVersionOf(p.ws, name)
		if err != nil {
			return nil, err
		}
		suggested, err := semver.Bump(current, bump)
		if err != nil {
			return nil, err
		}
		out[name] = VersionSuggestion{
			Package:   name,
			Current:   current,
			Suggested: suggested,
			BumpType:  bump,
			Reasons:   []BumpReason{{Kind: ReasonDirect}},
		}
	}
	return out, nil
}

func (p *Planner) directBumpsManual(strategy Strategy) (map[string]VersionSuggestion, error) {
	out := make(map[string]VersionSuggestion)
	names := make([]string, 0, len(strategy.Assignments))
	for name := range strategy.Assignments {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if !p.ws.IsInternal(name) {
			return nil, &PackageNotFoundError{Name: name}
		}
		current, err := currentVersionOf(p.ws, name)
		if err != nil {
			return nil, err
		}
		target := strategy.Assignments[name]
		out[name] = VersionSuggestion{
			Package:   name,
			Current:   current,
			Suggested: target,
			BumpType:  bumpTypeFromRelationship(current, target),
			Reasons:   []BumpReason{{Kind: ReasonDirect}},
		}
	}
	return out, nil
}
