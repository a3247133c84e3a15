package planner

import "github.com/websublime/workspace-tools-sub006/semver"

// propagate runs the fixed-point dependency-bump pass of spec.md §4.7: if
// package P depends on Q and Q's new version is breaking relative to Q's
// old version, P is bumped at least strategy.PropagationBump. Propagation
// walks the acyclic portion in leaves-first order (depgraph.SortedPackages
// already gives dependencies before dependents), so each package's final
// suggestion is settled before its dependents are considered — a single
// pass suffices; no fixed-point iteration is needed beyond that ordering.
func (p *Planner) propagate(suggestions map[string]VersionSuggestion, strategy Strategy) {
	for _, name := range p.graph.SortedPackages() {
		p.propagateInto(suggestions, name, strategy)
	}
}

// propagateInto updates suggestions[name] in place if any of its internal
// dependencies carries a breaking change, per spec.md §4.7.
func (p *Planner) propagateInto(suggestions map[string]VersionSuggestion, name string, strategy Strategy) {
	needsBump := false
	var causes []string
	for _, dep := range p.graph.DependenciesOf(name) {
		depSuggestion, ok := suggestions[dep]
		if !ok {
			continue
		}
		if semver.IsBreaking(depSuggestion.Current, depSuggestion.Suggested) {
			needsBump = true
			causes = append(causes, dep)
		}
	}
	if !needsBump {
		return
	}

	current, ok := suggestions[name]
	if !ok {
		baseCurrent, err := currentVersionOf(p.ws, name)
		if err != nil {
			return
		}
		current = VersionSuggestion{Package: name, Current: baseCurrent, Suggested: baseCurrent, BumpType: semver.None}
	}

	bump := strategy.PropagationBump
	if bump == semver.None {
		bump = semver.Patch
	}
	if current.BumpType >= bump {
		// Already getting at least as large a bump from its own changes;
		// still record the propagation reasons for diagnostics.
		for _, dep := range causes {
			current.Reasons = append(current.Reasons, BumpReason{Kind: ReasonDependencyUpdate, Dependency: dep})
		}
		current.IsDependencyUpdate = true
		suggestions[name] = current
		return
	}

	suggested, err := semver.Bump(current.Current, bump)
	if err != nil {
		return
	}
	current.Suggested = suggested
	current.BumpType = bump
	current.IsDependencyUpdate = true
	for _, dep := range causes {
		current.Reasons = append(current.Reasons, BumpReason{Kind: ReasonDependencyUpdate, Dependency: dep})
	}
	suggestions[name] = current
}

// harmonizeCycles implements spec.md §4.7 "Cycle harmonization": every
// member of an SCC with >=2 nodes receives the maximum bump level any
// member received (propagated in first, from each member's acyclic
// dependencies), then all members are raised to that level.
func (p *Planner) harmonizeCycles(suggestions map[string]VersionSuggestion, strategy Strategy) {
	if !strategy.HarmonizeCycles {
		return
	}

	for _, group := range p.graph.SCCs() {
		// Propagate from each member's acyclic dependencies first, so a
		// cycle member that itself depends on a breaking acyclic package
		// is bumped before harmonization reads the group's bump levels.
		for _, name := range group {
			p.propagateInto(suggestions, name, strategy)
		}

		maxBump := semver.None
		for _, name := range group {
			if s, ok := suggestions[name]; ok && s.BumpType > maxBump {
				maxBump = s.BumpType
			}
		}
		if maxBump == semver.None {
			continue
		}

		for _, name := range group {
			current, ok := suggestions[name]
			if !ok {
				baseCurrent, err := currentVersionOf(p.ws, name)
				if err != nil {
					continue
				}
				current = VersionSuggestion{Package: name, Current: baseCurrent, Suggested: baseCurrent, BumpType: semver.None}
			}

			if strategy.Kind == Synchronized {
				current.Suggested = strategy.Version
			} else if current.BumpType < maxBump {
				suggested, err := semver.Bump(current.Current, maxBump)
				if err != nil {
					continue
				}
				current.Suggested = suggested
			}
			current.BumpType = maxBump
			current.IsCycleUpdate = true
			current.CycleGroup = group
			suggestions[name] = current
		}
	}
}
