package workspace

import (
	"sort"

	"github.com/websublime/workspace-tools-sub006/errs"
)

// Validate runs the workspace-level validation facade described in
// spec.md §4.5: every internal dependency edge must resolve to a
// discovered package or be explicitly treated as external; unresolved
// internal-looking dependencies otherwise surface as warnings (or nothing,
// per opts.TreatUnresolvedAsExternal).
//
// Cycle detection and version-conflict detection are graph-level concerns
// (C4, depgraph.Graph.Validate) and are not duplicated here; this method
// only covers the dependency-resolution facet that belongs to discovery.
func (w *Workspace) Validate(opts ValidationOptions) *errs.ValidationReport {
	forced := make(map[string]bool, len(opts.InternalDependencies))
	for _, n := range opts.InternalDependencies {
		forced[n] = true
	}

	report := &errs.ValidationReport{}
	var unresolved []errs.ValidationIssue

	for _, pkg := range w.Packages() {
		for _, dep := range pkg.Dependencies {
			if w.IsInternal(dep.Name) || forced[dep.Name] {
				continue
			}
			severity := errs.SeverityWarning
			if opts.TreatUnresolvedAsExternal {
				continue
			}
			unresolved = append(unresolved, errs.NewUnresolvedDependency(dep.Name, dep.Range, severity))
		}
	}

	sort.Slice(unresolved, func(i, j int) bool {
		if unresolved[i].Name != unresolved[j].Name {
			return unresolved[i].Name < unresolved[j].Name
		}
		return unresolved[i].Range < unresolved[j].Range
	})
	for _, u := range unresolved {
		report.Add(u)
	}

	return report
}
