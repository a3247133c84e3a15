// Package semver implements the version arithmetic described in C1: parsing,
// comparison, bumping, and relationship classification for semantic
// versions, plus a snapshot extension the underlying spec requires.
package semver

import (
	"fmt"
	"strings"

	mmsemver "github.com/Masterminds/semver/v3"
	"github.com/pkg/errors"
)

// Version is a concrete, parsed semantic version.
type Version struct {
	sv *mmsemver.Version
}

func (v Version) _private() {}

// Parse parses s as a semantic version. A leading "v" is tolerated, matching
// Masterminds/semver's own leniency.
func Parse(s string) (Version, error) {
	sv, err := mmsemver.NewVersion(s)
	if err != nil {
		return Version{}, &VersionParseError{Input: s, Cause: err}
	}
	return Version{sv: sv}, nil
}

// MustParse parses s and panics on failure. Intended for tests and constants.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// String renders the version in canonical semver form.
func (v Version) String() string {
	if v.sv == nil {
		return ""
	}
	return v.sv.String()
}

// IsZero reports whether v is the zero Version (no version parsed).
func (v Version) IsZero() bool { return v.sv == nil }

// Major, Minor, Patch return the numeric components.
func (v Version) Major() uint64 { return v.sv.Major() }
func (v Version) Minor() uint64 { return v.sv.Minor() }
func (v Version) Patch() uint64 { return v.sv.Patch() }

// Prerelease returns the prerelease component, or "" if stable.
func (v Version) Prerelease() string { return v.sv.Prerelease() }

// IsPrerelease reports whether v carries a prerelease component.
func (v Version) IsPrerelease() bool { return v.sv.Prerelease() != "" }

// Is0x reports whether the major version is 0, which changes breaking-change
// semantics per spec.md §4.1.
func (v Version) Is0x() bool { return v.sv.Major() == 0 }

// Compare returns -1, 0, or 1 per semver 2.0 total order; prereleases sort
// below the stable version they precede.
func Compare(a, b Version) int {
	return a.sv.Compare(b.sv)
}

// Equal reports whether a and b are the same version.
func Equal(a, b Version) bool { return Compare(a, b) == 0 }

// BumpType is the size of a version change.
type BumpType int

const (
	None BumpType = iota
	Patch
	Minor
	Major
	Snapshot
)

func (b BumpType) String() string {
	switch b {
	case None:
		return "none"
	case Patch:
		return "patch"
	case Minor:
		return "minor"
	case Major:
		return "major"
	case Snapshot:
		return "snapshot"
	default:
		return "unknown"
	}
}

// MaxBump returns the larger of two bump types, where Major > Minor > Patch > None
// and Snapshot is treated as larger than Major for harmonization purposes
// (a snapshot always wins, since it is explicitly requested).
func MaxBump(a, b BumpType) BumpType {
	if a > b {
		return a
	}
	return b
}

// BumpMajor zeroes the minor/patch components and drops prerelease/build.
func BumpMajor(v Version) Version {
	sv := v.sv.IncMajor()
	return Version{sv: &sv}
}

// BumpMinor zeroes the patch component and drops prerelease/build.
func BumpMinor(v Version) Version {
	sv := v.sv.IncMinor()
	return Version{sv: &sv}
}

// BumpPatch drops prerelease/build and increments the patch component.
func BumpPatch(v Version) Version {
	sv := mmsemver.New(v.sv.Major(), v.sv.Minor(), v.sv.Patch()+1, "", "")
	return Version{sv: sv}
}

// Bump applies the given BumpType to v. None returns v unchanged. Snapshot
// requires a non-empty sha and is handled by BumpSnapshot instead (calling
// Bump with Snapshot and no sha returns an error).
func Bump(v Version, t BumpType) (Version, error) {
	switch t {
	case None:
		return v, nil
	case Patch:
		return BumpPatch(v), nil
	case Minor:
		return BumpMinor(v), nil
	case Major:
		return BumpMajor(v), nil
	default:
		return Version{}, errors.Errorf("semver: cannot bump with type %s without a snapshot sha", t)
	}
}

// BumpSnapshot appends a "-snapshot.<shortsha>" prerelease tag to v. It is
// idempotent: calling it again with the same sha on an already-snapshotted
// version of the same base returns the same result.
func BumpSnapshot(v Version, sha string) (Version, error) {
	sha = strings.TrimSpace(sha)
	if sha == "" {
		return Version{}, errors.New("semver: snapshot bump requires a non-empty sha")
	}
	base := v
	if v.IsPrerelease() && strings.HasPrefix(v.Prerelease(), "snapshot.") {
		// Idempotent: strip the existing snapshot tag from the base before
		// re-appending, so repeated calls with the same sha are stable.
		stripped, err := Parse(fmt.Sprintf("%d.%d.%d", v.Major(), v.Minor(), v.Patch()))
		if err != nil {
			return Version{}, err
		}
		base = stripped
	}
	s := fmt.Sprintf("%d.%d.%d-snapshot.%s", base.Major(), base.Minor(), base.Patch(), sha)
	return Parse(s)
}

// Relationship classifies how b relates to a (i.e. "b relative to a").
type Relationship int

const (
	Identical Relationship = iota
	MajorUpgrade
	MinorUpgrade
	PatchUpgrade
	PrereleaseToStable
	NewerPrerelease
	MajorDowngrade
	MinorDowngrade
	PatchDowngrade
	StableToPrerelease
	OlderPrerelease
	Indeterminate
)

func (r Relationship) String() string {
	switch r {
	case Identical:
		return "identical"
	case MajorUpgrade:
		return "major-upgrade"
	case MinorUpgrade:
		return "minor-upgrade"
	case PatchUpgrade:
		return "patch-upgrade"
	case PrereleaseToStable:
		return "prerelease-to-stable"
	case NewerPrerelease:
		return "newer-prerelease"
	case MajorDowngrade:
		return "major-downgrade"
	case MinorDowngrade:
		return "minor-downgrade"
	case PatchDowngrade:
		return "patch-downgrade"
	case StableToPrerelease:
		return "stable-to-prerelease"
	case OlderPrerelease:
		return "older-prerelease"
	default:
		return "indeterminate"
	}
}

// RelationshipOf classifies b relative to a per spec.md §4.1.
func RelationshipOf(a, b Version) Relationship {
	if Equal(a, b) {
		return Identical
	}

	cmp := Compare(a, b)

	if a.Major() != b.Major() {
		if cmp < 0 {
			return MajorUpgrade
		}
		return MajorDowngrade
	}
	if a.Minor() != b.Minor() {
		if cmp < 0 {
			return MinorUpgrade
		}
		return MinorDowngrade
	}
	if a.Patch() != b.Patch() {
		if cmp < 0 {
			return PatchUpgrade
		}
		return PatchDowngrade
	}

	// Same major.minor.patch, differing only in prerelease status.
	switch {
	case a.IsPrerelease() && !b.IsPrerelease():
		return PrereleaseToStable
	case !a.IsPrerelease() && b.IsPrerelease():
		return StableToPrerelease
	case a.IsPrerelease() && b.IsPrerelease():
		if cmp < 0 {
			return NewerPrerelease
		}
		return OlderPrerelease
	}
	return Indeterminate
}

// IsBreaking reports whether moving from a to b is a breaking change: a
// major upgrade, or (mandatory 0.x rule) a minor upgrade when a's major
// version is 0.
func IsBreaking(a, b Version) bool {
	rel := RelationshipOf(a, b)
	if rel == MajorUpgrade {
		return true
	}
	if rel == MinorUpgrade && a.Is0x() {
		return true
	}
	return false
}
