package planner

import (
	"context"
	"sort"

	"github.com/pkg/errors"

	"github.com/websublime/workspace-tools-sub006/ledger"
	"github.com/websublime/workspace-tools-sub006/manifest"
	"github.com/websublime/workspace-tools-sub006/semver"
)

// ApplyBumps performs PreviewBumps and, unless dryRun, writes the
// resulting versions (and any dependent manifests whose internal
// dependency range needs re-pinning) to disk (spec.md §4.7).
//
// Apply order is leaves-first over the acyclic portion of the graph
// (depgraph.SortedPackages), followed by every cycle group's members in
// alphabetical order. A cycle's members mutually depend on versions none
// of them has written yet, so no order within — or relative to — a cycle
// group can satisfy the "never point at a version not yet on disk"
// invariant for its own internal edges; that invariant only has bite on
// the acyclic portion, which is exactly where this ordering enforces it.
func (p *Planner) ApplyBumps(ctx context.Context, strategy Strategy, dryRun bool) (*ApplyResult, error) {
	preview, err := p.PreviewBumps(ctx, strategy)
	if err != nil {
		return nil, err
	}
	if strategy.Kind == Synchronized && !strategy.HarmonizeCycles && preview.CycleDetected {
		return nil, &CyclicDependenciesError{CycleGroups: preview.CycleGroups}
	}

	suggestions := make(map[string]VersionSuggestion, len(preview.Changes))
	for _, s := range preview.Changes {
		suggestions[s.Package] = s
	}

	changes := make([]PackageVersionChange, 0, len(preview.Changes))
	for _, s := range preview.Changes {
		changes = append(changes, PackageVersionChange{
			Package:            s.Package,
			Previous:           s.Current,
			New:                s.Suggested,
			BumpType:           s.BumpType,
			IsDependencyUpdate: s.IsDependencyUpdate,
			IsCycleUpdate:      s.IsCycleUpdate,
			CycleGroup:         s.CycleGroup,
		})
	}

	if dryRun || len(suggestions) == 0 {
		return &ApplyResult{Changes: changes, DryRun: true}, nil
	}

	// A one-member cycle group is a self-dependency; no version is written
	// while such a package has a suggested bump.
	for _, group := range preview.CycleGroups {
		if len(group) == 1 {
			if _, ok := suggestions[group[0]]; ok {
				return nil, &CyclicDependenciesError{CycleGroups: [][]string{{group[0], group[0]}}}
			}
		}
	}

	if err := p.writeManifests(suggestions); err != nil {
		return nil, err
	}

	return &ApplyResult{Changes: changes, DryRun: false}, nil
}

// rangeAccepts reports whether raw, parsed as a range, already matches v,
// so apply can skip re-pinning a dependent's manifest when the existing
// range already covers the new version (an unparseable range is treated
// as not accepting, so it still gets normalized to a caret pin).
func rangeAccepts(raw string, v semver.Version) bool {
	r, err := semver.ParseRange(raw)
	if err != nil {
		return false
	}
	return semver.Matches(r, v)
}

func (p *Planner) writeOrder() []string {
	order := append([]string(nil), p.graph.SortedPackages()...)
	for _, group := range p.graph.SCCs() {
		sorted := append([]string(nil), group...)
		sort.Strings(sorted)
		order = append(order, sorted...)
	}
	return order
}

func (p *Planner) touchedSet(suggestions map[string]VersionSuggestion) map[string]bool {
	touched := make(map[string]bool, len(suggestions))
	for name := range suggestions {
		touched[name] = true
		for _, dependent := range p.graph.DependentsOf(name) {
			touched[dependent] = true
		}
	}
	return touched
}

func (p *Planner) writeManifests(suggestions map[string]VersionSuggestion) error {
	order := p.writeOrder()
	touched := p.touchedSet(suggestions)

	staged := make(map[string]*manifest.Manifest)
	stage := func(name string) (*manifest.Manifest, error) {
		if doc, ok := staged[name]; ok {
			return doc, nil
		}
		pkg, ok := p.ws.Get(name)
		if !ok {
			return nil, &PackageNotFoundError{Name: name}
		}
		staged[name] = pkg.Manifest()
		return staged[name], nil
	}

	var writePlan []string
	for _, name := range order {
		if !touched[name] {
			continue
		}
		doc, err := stage(name)
		if err != nil {
			return err
		}

		changed := false

		if suggestion, ok := suggestions[name]; ok {
			updated, err := doc.WithVersion(suggestion.Suggested.String())
			if err != nil {
				return errors.Wrapf(err, "staging version for %s", name)
			}
			doc = updated
			changed = true
		}

		pkg, _ := p.ws.Get(name)
		for _, dep := range pkg.Dependencies {
			depSuggestion, ok := suggestions[dep.Name]
			if !ok {
				continue
			}
			if rangeAccepts(dep.Range, depSuggestion.Suggested) {
				// The existing range already covers the new version; leave
				// it as-is rather than rewrite a manifest with no effective
				// change.
				continue
			}
			updated, err := doc.WithDependencyRange(dep.Field, dep.Name, semver.Pin(depSuggestion.Suggested, semver.PinCaret))
			if err != nil {
				return errors.Wrapf(err, "staging dependency range %s -> %s", name, dep.Name)
			}
			doc = updated
			changed = true
		}

		if !changed {
			continue
		}

		staged[name] = doc
		writePlan = append(writePlan, name)
	}

	var snapshots []manifest.Snapshot
	for _, name := range writePlan {
		pkg, _ := p.ws.Get(name)
		snap, err := manifest.TakeSnapshot(pkg.ManifestPath)
		if err != nil {
			return errors.Wrapf(err, "snapshotting %s before apply", name)
		}
		snapshots = append(snapshots, snap)
	}

	for i, name := range writePlan {
		pkg, _ := p.ws.Get(name)
		if err := manifest.WriteFile(pkg.ManifestPath, staged[name]); err != nil {
			rollbackErr := rollback(snapshots[:i])
			return &ApplyError{Package: name, Cause: err, RolledBack: rollbackErr == nil, RollbackErr: rollbackErr}
		}
	}

	return nil
}

func rollback(snapshots []manifest.Snapshot) error {
	var firstErr error
	for i := len(snapshots) - 1; i >= 0; i-- {
		if err := snapshots[i].Restore(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// MarkChangesAsReleased invokes store's mark-released for every
// package+version pair present in result, per spec.md §4.7 ("apply does
// not do it implicitly").
func (p *Planner) MarkChangesAsReleased(ctx context.Context, store ledger.ChangeStore, result *ApplyResult, dryRun bool) ([]ledger.Change, error) {
	var all []ledger.Change
	for _, change := range result.Changes {
		released, err := store.MarkReleased(ctx, change.Package, change.New.String(), dryRun)
		if err != nil {
			return nil, err
		}
		all = append(all, released...)
	}
	return all, nil
}

// MarkChangesAsReleasedForEnvironment is MarkChangesAsReleased restricted to
// changes scoped to env (spec.md §8 Scenario 5), so releasing one
// environment never releases a change scoped to a different one.
func (p *Planner) MarkChangesAsReleasedForEnvironment(ctx context.Context, store ledger.ChangeStore, result *ApplyResult, env string, dryRun bool) ([]ledger.Change, error) {
	var all []ledger.Change
	for _, change := range result.Changes {
		released, err := store.MarkReleasedForEnvironment(ctx, change.Package, change.New.String(), env, dryRun)
		if err != nil {
			return nil, err
		}
		all = append(all, released...)
	}
	return all, nil
}
