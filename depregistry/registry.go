// Package depregistry implements C3: a name-keyed intern table of shared
// Dependency cells, and resolution of cross-package version conflicts on
// the same dependency name.
//
// Grounded in golang-dep/gps's project-constraint maps
// (gps.ProjectConstraints is a name-keyed table of constraint values) for
// the interning shape, generalized here to an explicitly mutable shared
// cell per spec.md §3/§4.3 ("shared reference" design note, §9).
package depregistry

import (
	"sort"
	"sync"

	"github.com/websublime/workspace-tools-sub006/semver"
)

// Cell is a single interned dependency record, shared by every package that
// requests the same name. Mutations performed through UpdateVersion are
// observed by every holder of the same *Cell (spec.md §9 "shared
// dependency cells" design note).
type Cell struct {
	Name string

	mu    sync.Mutex
	rng   string
	owner string // most recent owner to request a fresh cell; informational
}

// Range returns the cell's current shared range string.
func (c *Cell) Range() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rng
}

func (c *Cell) setRange(rng string) {
	c.mu.Lock()
	c.rng = rng
	c.mu.Unlock()
}

// request records one package's originally requested range for a name, kept
// purely for conflict detection — it does not affect the shared Cell.
type request struct {
	Owner string
	Range string
}

// Registry is the intern table. It is not internally thread-safe beyond the
// per-Cell mutex used for Range mutation (spec.md §5: callers serialize
// mutations to a single Registry instance).
type Registry struct {
	cells    map[string]*Cell
	requests map[string][]request
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{
		cells:    make(map[string]*Cell),
		requests: make(map[string][]request),
	}
}

// GetOrCreate returns the shared Cell for name, creating it with the given
// initial range if this is the first request for that name. A later call
// for the same name with a different range never overwrites the existing
// cell's range — only UpdateVersion does that (spec.md §4.3).
//
// owner identifies the requesting package and is recorded for
// ResolveVersionConflicts; rng must parse as a valid Range or an error is
// returned.
func (r *Registry) GetOrCreate(owner, name, rng string) (*Cell, error) {
	if _, err := semver.ParseRange(rng); err != nil {
		return nil, err
	}

	cell, ok := r.cells[name]
	if !ok {
		cell = &Cell{Name: name, rng: rng, owner: owner}
		r.cells[name] = cell
	}

	r.recordRequest(owner, name, rng)
	return cell, nil
}

func (r *Registry) recordRequest(owner, name, rng string) {
	reqs := r.requests[name]
	for i, req := range reqs {
		if req.Owner == owner {
			reqs[i].Range = rng
			return
		}
	}
	r.requests[name] = append(reqs, request{Owner: owner, Range: rng})
}

// UpdateVersion explicitly sets name's shared cell to a new range, observed
// by every holder of that *Cell. Returns an error if name is unknown or rng
// does not parse.
func (r *Registry) UpdateVersion(name, rng string) error {
	cell, ok := r.cells[name]
	if !ok {
		return &NotFoundError{Name: name}
	}
	if _, err := semver.ParseRange(rng); err != nil {
		return err
	}
	cell.setRange(rng)
	return nil
}

// Get returns the cell for name, if one has been interned.
func (r *Registry) Get(name string) (*Cell, bool) {
	c, ok := r.cells[name]
	return c, ok
}

// Names returns every interned name, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.cells))
	for n := range r.cells {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// DistinctRanges returns the sorted, de-duplicated set of ranges requested
// for name across all owners.
func (r *Registry) DistinctRanges(name string) []string {
	set := make(map[string]bool)
	for _, req := range r.requests[name] {
		set[req.Range] = true
	}
	out := make([]string, 0, len(set))
	for rng := range set {
		out = append(out, rng)
	}
	sort.Strings(out)
	return out
}
