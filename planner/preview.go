package planner

import (
	"context"
	"sort"

	"github.com/websublime/workspace-tools-sub006/errs"
	"github.com/websublime/workspace-tools-sub006/semver"
)

// PreviewBumps computes spec.md §4.7's direct-bumps -> propagate ->
// harmonize pipeline and returns the result without writing anything.
func (p *Planner) PreviewBumps(ctx context.Context, strategy Strategy) (*VersionBumpPreview, error) {
	suggestions, err := p.directBumps(ctx, strategy)
	if err != nil {
		return nil, err
	}

	p.propagate(suggestions, strategy)
	p.harmonizeCycles(suggestions, strategy)

	names := make([]string, 0, len(suggestions))
	for name := range suggestions {
		names = append(names, name)
	}
	sort.Strings(names)

	changes := make([]VersionSuggestion, 0, len(names))
	for _, name := range names {
		changes = append(changes, suggestions[name])
	}

	cycleGroups := p.graph.SCCs()
	return &VersionBumpPreview{
		Changes:       changes,
		CycleDetected: len(cycleGroups) > 0,
		CycleGroups:   cycleGroups,
	}, nil
}

// ValidateVersions reports cycles (from the graph) plus inconsistencies
// where a package's declared range for an internal dependency does not
// accept that dependency's current concrete version (spec.md §4.7
// validate_versions).
func (p *Planner) ValidateVersions() *errs.ValidationReport {
	report := p.graph.Validate()

	for _, pkg := range p.ws.Packages() {
		for _, dep := range pkg.Dependencies {
			if !p.ws.IsInternal(dep.Name) {
				continue
			}
			rng, err := semver.ParseRange(dep.Range)
			if err != nil {
				continue
			}
			depCurrent, err := currentVersionOf(p.ws, dep.Name)
			if err != nil {
				continue
			}
			if !semver.Matches(rng, depCurrent) {
				report.Add(errs.NewRangeMismatch(pkg.Name, dep.Name, dep.Range, depCurrent.String()))
			}
		}
	}

	return report
}
