package depregistry

import (
	"sort"

	"github.com/websublime/workspace-tools-sub006/semver"
)

// DependencyUpdate describes one package's range needing to change to adopt
// a conflict-resolution result (spec.md §4.3 ResolutionResult).
type DependencyUpdate struct {
	Package string
	DepName string
	Current string
	New     string
}

// ResolutionResult is the outcome of ResolveVersionConflicts: the chosen
// concrete version per name (where resolvable) plus the per-package range
// edits required to converge on it.
type ResolutionResult struct {
	Chosen  map[string]semver.Version
	Updates []DependencyUpdate
}

// ResolveVersionConflicts groups every interned name's distinct requested
// ranges and, where a name has more than one distinct range, attempts to
// pick the highest concrete version (from knownVersions) that satisfies all
// of them. knownVersions supplies the only concrete versions the registry
// is allowed to consider — per spec.md §1 Non-goals, resolving transitive
// external-registry versions is out of scope, so candidates come from the
// caller (typically: internal workspace packages' own current versions,
// plus any externally-resolved versions the caller already knows about).
//
// Names with a single distinct range are left alone; they are not in
// conflict.
func (r *Registry) ResolveVersionConflicts(knownVersions map[string][]semver.Version) (ResolutionResult, []IncompatibleVersionsError) {
	result := ResolutionResult{Chosen: make(map[string]semver.Version)}
	var failures []IncompatibleVersionsError

	for _, name := range r.Names() {
		ranges := r.DistinctRanges(name)
		if len(ranges) < 2 {
			continue
		}

		parsed := make([]semver.Range, 0, len(ranges))
		for _, rs := range ranges {
			rng, err := semver.ParseRange(rs)
			if err != nil {
				continue // already validated at GetOrCreate time; defensive only
			}
			parsed = append(parsed, rng)
		}

		candidates := append([]semver.Version(nil), knownVersions[name]...)
		sort.Slice(candidates, func(i, j int) bool {
			return semver.Compare(candidates[i], candidates[j]) > 0
		})

		var chosen semver.Version
		found := false
		for _, v := range candidates {
			ok := true
			for _, rng := range parsed {
				if !semver.Matches(rng, v) {
					ok = false
					break
				}
			}
			if ok {
				chosen = v
				found = true
				break
			}
		}

		if !found {
			failures = append(failures, IncompatibleVersionsError{
				Name:         name,
				Versions:     versionStrings(candidates),
				Requirements: ranges,
			})
			continue
		}

		result.Chosen[name] = chosen
		for _, req := range r.requests[name] {
			if req.Range == chosen.String() {
				continue
			}
			result.Updates = append(result.Updates, DependencyUpdate{
				Package: req.Owner,
				DepName: name,
				Current: req.Range,
				New:     chosen.String(),
			})
		}
	}

	sort.Slice(result.Updates, func(i, j int) bool {
		if result.Updates[i].DepName != result.Updates[j].DepName {
			return result.Updates[i].DepName < result.Updates[j].DepName
		}
		return result.Updates[i].Package < result.Updates[j].Package
	})

	return result, failures
}

// Apply writes the resolution's chosen versions back into the registry's
// shared cells, rendered with the given pin style. It does not write
// manifests to disk; callers (typically the workspace or planner layer)
// are responsible for persisting the resulting DependencyUpdate set.
func (r *Registry) Apply(result ResolutionResult, style semver.PinStyle) error {
	for name, v := range result.Chosen {
		if err := r.UpdateVersion(name, semver.Pin(v, style)); err != nil {
			return err
		}
	}
	return nil
}

func versionStrings(vs []semver.Version) []string {
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		out = append(out, v.String())
	}
	return out
}
