package semver

import mmsemver "github.com/Masterminds/semver/v3"

// PinStyle controls how a concrete version is rendered back into a range
// when the dependency registry (C3) applies a resolution (spec.md §4.3).
type PinStyle int

const (
	PinCaret PinStyle = iota // default
	PinTilde
	PinExact
)

// Range is a parsed dependency version constraint: caret, tilde, exact, or
// comparator forms (spec.md §3 Dependency.range).
type Range struct {
	raw string
	c   *mmsemver.Constraints
}

func (r Range) _private() {}

// ParseRange parses s as a version range/constraint.
func ParseRange(s string) (Range, error) {
	c, err := mmsemver.NewConstraint(s)
	if err != nil {
		return Range{}, &VersionParseError{Input: s, Cause: err}
	}
	return Range{raw: s, c: c}, nil
}

// String returns the original constraint text.
func (r Range) String() string { return r.raw }

// IsZero reports whether r is the zero Range.
func (r Range) IsZero() bool { return r.c == nil }

// Matches reports whether v satisfies the range.
func Matches(r Range, v Version) bool {
	if r.IsZero() || v.IsZero() {
		return false
	}
	ok, _ := r.c.Validate(v.sv)
	return ok
}

// RangeMatches is the spec.md §4.1 named operation; it is an alias of
// Matches kept for readers mapping directly back to the spec's vocabulary.
func RangeMatches(r Range, v Version) bool { return Matches(r, v) }

// Pin renders v as a range string using the given pin style, e.g.
// PinCaret -> "^1.2.3", PinTilde -> "~1.2.3", PinExact -> "1.2.3".
func Pin(v Version, style PinStyle) string {
	switch style {
	case PinTilde:
		return "~" + v.String()
	case PinExact:
		return v.String()
	default:
		return "^" + v.String()
	}
}
