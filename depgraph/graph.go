// Package depgraph implements C4: the dependency graph built on demand from
// a Workspace — Resolved/Unresolved nodes, SCC detection, topological
// ordering, and the dependents/dependencies/affected-packages/version
// conflict queries of spec.md §4.4.
//
// Grounded on distr1-distri's cmd/distri/batch.go and bump.go, which build
// a gonum.org/v1/gonum/graph/simple.DirectedGraph over package dependencies
// and run topo.TarjanSCC over it — the same operation this component needs
// for cycle detection. Topological ordering with the spec's specific
// tie-break and "cycle groups reported separately" semantics is built on
// top of that SCC grouping rather than relied upon from topo.Sort directly,
// since spec.md §4.4 pins down ordering guarantees gonum's generic sort
// doesn't promise.
package depgraph

import (
	"sort"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/websublime/workspace-tools-sub006/workspace"
)

// NodeKind distinguishes a graph node that resolved to a workspace package
// from one that didn't (spec.md §3 DependencyGraph nodes).
type NodeKind int

const (
	Resolved NodeKind = iota
	Unresolved
)

// Identity is a graph node's logical identity, independent of its gonum
// int64 ID.
type Identity struct {
	Kind  NodeKind
	Name  string
	Range string // only meaningful when Kind == Unresolved
}

func (id Identity) key() string {
	if id.Kind == Resolved {
		return "r:" + id.Name
	}
	return "u:" + id.Name + "@" + id.Range
}

type node struct {
	id int64
}

func (n node) ID() int64 { return n.id }

// Graph is the built dependency graph plus its derived views.
type Graph struct {
	g *simple.DirectedGraph

	idOf     map[string]int64
	identity map[int64]Identity
	nextID   int64

	resolvedID map[string]int64 // package name -> node id, Resolved only

	selfDeps   map[string]bool     // package names that depend on themselves
	sccs       [][]string          // each entry: sorted package names forming one SCC (size >= 2, or a self-loop)
	dependents map[string][]string
}

func newGraph() *Graph {
	return &Graph{
		g:          simple.NewDirectedGraph(),
		idOf:       make(map[string]int64),
		identity:   make(map[int64]Identity),
		resolvedID: make(map[string]int64),
		selfDeps:   make(map[string]bool),
	}
}

func (gr *Graph) nodeFor(id Identity) int64 {
	key := id.key()
	if existing, ok := gr.idOf[key]; ok {
		return existing
	}
	n := node{id: gr.nextID}
	gr.nextID++
	gr.g.AddNode(n)
	gr.idOf[key] = n.id
	gr.identity[n.id] = id
	if id.Kind == Resolved {
		gr.resolvedID[id.Name] = n.id
	}
	return n.id
}

// Build constructs a Graph from every package in ws and its dependency
// edges, classifying each dependency as Resolved (internal) or Unresolved
// (external) per spec.md §3's Workspace invariant.
func Build(ws *workspace.Workspace) (*Graph, error) {
	gr := newGraph()

	for _, name := range ws.Names() {
		gr.nodeFor(Identity{Kind: Resolved, Name: name})
	}

	for _, pkg := range ws.Packages() {
		fromID := gr.resolvedID[pkg.Name]
		for _, dep := range pkg.Dependencies {
			var toID int64
			if ws.IsInternal(dep.Name) {
				toID = gr.nodeFor(Identity{Kind: Resolved, Name: dep.Name})
			} else {
				toID = gr.nodeFor(Identity{Kind: Unresolved, Name: dep.Name, Range: dep.Range})
			}
			if fromID == toID {
				// simple.DirectedGraph.SetEdge panics on a self-loop (from == to).
				// A package depending on itself is a cycle of length 1
				// (spec.md §4.4, §8) recorded directly rather than as a graph edge.
				gr.selfDeps[pkg.Name] = true
				continue
			}
			if !gr.g.HasEdgeFromTo(fromID, toID) {
				gr.g.SetEdge(gr.g.NewEdge(gr.g.Node(fromID), gr.g.Node(toID)))
			}
		}
	}

	gr.computeSCCs()
	gr.computeDependents()
	return gr, nil
}

// computeSCCs runs Tarjan's algorithm (via gonum/graph/topo) and records
// every component of size >= 2, plus single-node components with a
// self-loop, as a cycle group — restricted to Resolved (package) nodes,
// since Unresolved nodes are graph leaves by construction and can never
// participate in a cycle.
func (gr *Graph) computeSCCs() {
	for _, comp := range topo.TarjanSCC(gr.g) {
		if len(comp) < 2 {
			continue
		}

		var names []string
		for _, n := range comp {
			identity := gr.identity[n.ID()]
			if identity.Kind != Resolved {
				continue
			}
			names = append(names, identity.Name)
		}
		if len(names) == 0 {
			continue
		}
		sort.Strings(names)
		gr.sccs = append(gr.sccs, names)
	}

	// Self-dependencies never reach the graph as edges (SetEdge panics on
	// from == to), so they can't surface via TarjanSCC; record each as its
	// own length-1 cycle group. Validate reports this as path [name, name]
	// per spec.md §8.
	for name := range gr.selfDeps {
		gr.sccs = append(gr.sccs, []string{name})
	}

	sort.Slice(gr.sccs, func(i, j int) bool { return gr.sccs[i][0] < gr.sccs[j][0] })
}

func (gr *Graph) computeDependents() {
	gr.dependents = make(map[string][]string)
	for name := range gr.resolvedID {
		gr.dependents[name] = nil
	}
	for key, fromID := range gr.idOf {
		identity := gr.identity[fromID]
		if identity.Kind != Resolved {
			continue
		}
		_ = key
		to := gr.g.From(fromID)
		for to.Next() {
			toIdentity := gr.identity[to.Node().ID()]
			if toIdentity.Kind == Resolved {
				gr.dependents[toIdentity.Name] = append(gr.dependents[toIdentity.Name], identity.Name)
			}
		}
	}
	for name := range gr.dependents {
		sort.Strings(gr.dependents[name])
	}
}

// SCCs returns every cycle group (size >= 2, or a self-loop), each as a
// sorted slice of package names, sorted themselves by first member name.
func (gr *Graph) SCCs() [][]string {
	out := make([][]string, len(gr.sccs))
	copy(out, gr.sccs)
	return out
}

// CycleGroupFor returns the cycle group containing name, if any.
func (gr *Graph) CycleGroupFor(name string) ([]string, bool) {
	for _, grp := range gr.sccs {
		for _, n := range grp {
			if n == name {
				return grp, true
			}
		}
	}
	return nil, false
}

// PackageNames returns every Resolved node's name, sorted.
func (gr *Graph) PackageNames() []string {
	names := make([]string, 0, len(gr.resolvedID))
	for n := range gr.resolvedID {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
