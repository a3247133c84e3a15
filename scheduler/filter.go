package scheduler

import (
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// TaskFilter narrows a TaskGraph's task set before execution (spec.md §4.8
// "Filtering"). Include/Exclude are doublestar glob patterns matched
// against task names; Packages restricts to tasks scoped to the named
// packages. An empty TaskFilter selects every task.
type TaskFilter struct {
	Include []string
	Exclude []string
	Packages []string

	IncludeDependencies bool // pull in the transitive dependencies of matched tasks
	IncludeDependents   bool // pull in the transitive dependents of matched tasks
}

// Apply returns the names of tasks in g selected by f, transitively closed
// per IncludeDependencies/IncludeDependents, sorted by name.
func (f TaskFilter) Apply(g *TaskGraph) []string {
	selected := make(map[string]bool)
	for _, name := range g.Names() {
		if f.matches(g, name) {
			selected[name] = true
		}
	}

	if f.IncludeDependencies {
		for name := range copySet(selected) {
			closeDependencies(g, name, selected)
		}
	}
	if f.IncludeDependents {
		for name := range copySet(selected) {
			closeDependents(g, name, selected)
		}
	}

	out := make([]string, 0, len(selected))
	for name := range selected {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (f TaskFilter) matches(g *TaskGraph, name string) bool {
	if len(f.Include) > 0 && !matchesAny(f.Include, name) {
		return false
	}
	if matchesAny(f.Exclude, name) {
		return false
	}
	if len(f.Packages) > 0 {
		t, ok := g.Task(name)
		if !ok || !containsPackage(f.Packages, t.Package) {
			return false
		}
	}
	return true
}

func matchesAny(patterns []string, name string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, name); ok {
			return true
		}
	}
	return false
}

func containsPackage(packages []string, pkg string) bool {
	for _, p := range packages {
		if p == pkg {
			return true
		}
	}
	return false
}

func copySet(m map[string]bool) map[string]bool {
	out := make(map[string]bool, len(m))
	for k := range m {
		out[k] = true
	}
	return out
}

func closeDependencies(g *TaskGraph, name string, selected map[string]bool) {
	t, ok := g.Task(name)
	if !ok {
		return
	}
	for _, dep := range t.Dependencies {
		if !selected[dep] {
			selected[dep] = true
			closeDependencies(g, dep, selected)
		}
	}
}

func closeDependents(g *TaskGraph, name string, selected map[string]bool) {
	for _, dependent := range g.Dependents(name) {
		if !selected[dependent] {
			selected[dependent] = true
			closeDependents(g, dependent, selected)
		}
	}
}
