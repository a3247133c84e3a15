package depgraph

import "sort"

// DependenciesOf returns the direct internal (Resolved) dependency names of
// name, sorted.
func (gr *Graph) DependenciesOf(name string) []string {
	fromID, ok := gr.resolvedID[name]
	if !ok {
		return nil
	}
	var out []string
	to := gr.g.From(fromID)
	for to.Next() {
		identity := gr.identity[to.Node().ID()]
		if identity.Kind == Resolved {
			out = append(out, identity.Name)
		}
	}
	sort.Strings(out)
	return out
}

// ExternalDependenciesOf returns the direct external (Unresolved)
// dependencies of name as Identity values, sorted by name then range.
func (gr *Graph) ExternalDependenciesOf(name string) []Identity {
	fromID, ok := gr.resolvedID[name]
	if !ok {
		return nil
	}
	var out []Identity
	to := gr.g.From(fromID)
	for to.Next() {
		identity := gr.identity[to.Node().ID()]
		if identity.Kind == Unresolved {
			out = append(out, identity)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Range < out[j].Range
	})
	return out
}

// DependentsOf returns the direct internal dependents of name (packages
// whose dependency list includes name), sorted.
func (gr *Graph) DependentsOf(name string) []string {
	out := append([]string(nil), gr.dependents[name]...)
	sort.Strings(out)
	return out
}

// AffectedPackages returns the transitive closure of dependents of seeds,
// unioned with seeds themselves, sorted (spec.md §4.4).
func (gr *Graph) AffectedPackages(seeds []string) []string {
	visited := make(map[string]bool)
	var queue []string
	for _, s := range seeds {
		if !visited[s] {
			visited[s] = true
			queue = append(queue, s)
		}
	}

	for i := 0; i < len(queue); i++ {
		for _, dep := range gr.DependentsOf(queue[i]) {
			if !visited[dep] {
				visited[dep] = true
				queue = append(queue, dep)
			}
		}
	}

	out := make([]string, 0, len(visited))
	for n := range visited {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// cycleMembers returns the set of package names that belong to any cycle
// group (size >= 2, or self-loop).
func (gr *Graph) cycleMembers() map[string]bool {
	set := make(map[string]bool)
	for _, grp := range gr.sccs {
		for _, n := range grp {
			set[n] = true
		}
	}
	return set
}

// SortedPackages returns every non-cycle package name in reverse
// topological order (dependencies before dependents — "leaves first"),
// excluding any package that belongs to a cycle group. Within a wave of
// mutually-independent packages, names are ordered ascending for
// determinism (spec.md §4.4, §9 "Determinism").
func (gr *Graph) SortedPackages() []string {
	members := gr.cycleMembers()

	remaining := make(map[string]int)
	for _, name := range gr.PackageNames() {
		if members[name] {
			continue
		}
		count := 0
		for _, dep := range gr.DependenciesOf(name) {
			if !members[dep] {
				count++
			}
		}
		remaining[name] = count
	}

	var ordered []string
	for len(remaining) > 0 {
		var ready []string
		for name, c := range remaining {
			if c == 0 {
				ready = append(ready, name)
			}
		}
		if len(ready) == 0 {
			// Should not happen once cycle members are excluded; bail out
			// deterministically rather than loop forever.
			break
		}
		sort.Strings(ready)
		ordered = append(ordered, ready...)
		for _, name := range ready {
			delete(remaining, name)
		}
		for name, c := range remaining {
			for _, dep := range gr.DependenciesOf(name) {
				if contains(ready, dep) {
					c--
				}
			}
			remaining[name] = c
		}
	}

	return ordered
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// SortedWithCirculars returns the acyclic suffix (as SortedPackages would)
// together with every cycle group, reported separately (spec.md §4.4
// sorted_with_circulars).
type SortedResult struct {
	Acyclic     []string
	CycleGroups [][]string
}

// SortedWithCirculars implements spec.md §4.4's sorted_with_circulars.
func (gr *Graph) SortedWithCirculars() SortedResult {
	return SortedResult{
		Acyclic:     gr.SortedPackages(),
		CycleGroups: gr.SCCs(),
	}
}

// VersionConflict is one external dependency name requested with more than
// one distinct range across the workspace.
type VersionConflict struct {
	Name   string
	Ranges []string
}

// FindVersionConflicts groups Unresolved nodes by name and returns those
// with two or more distinct ranges, sorted by name (spec.md §4.4).
func (gr *Graph) FindVersionConflicts() []VersionConflict {
	byName := make(map[string]map[string]bool)
	for _, identity := range gr.identity {
		if identity.Kind != Unresolved {
			continue
		}
		set, ok := byName[identity.Name]
		if !ok {
			set = make(map[string]bool)
			byName[identity.Name] = set
		}
		set[identity.Range] = true
	}

	var out []VersionConflict
	for name, set := range byName {
		if len(set) < 2 {
			continue
		}
		ranges := make([]string, 0, len(set))
		for r := range set {
			ranges = append(ranges, r)
		}
		sort.Strings(ranges)
		out = append(out, VersionConflict{Name: name, Ranges: ranges})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
