// Package ledger implements C6: change-scope detection, automatic
// VCS-driven change detection with conventional-commit parsing, and
// changeset persistence (in-memory and file-backed), per spec.md §3 and
// §4.6.
//
// Grounded on golang-dep's vcs_repo.go for the "adapter as a narrow
// interface, concrete implementation elsewhere" shape this package
// consumes (vcs.Adapter / vcsgit.Adapter), and on untoldecay-BeadsLog's
// use of google/uuid for opaque entity identifiers, which this package
// borrows for Change.ID.
package ledger

import "time"

// ChangeType classifies a Change by conventional-commit type, or by
// explicit caller intent for manually recorded changes (spec.md §3).
type ChangeType int

const (
	Unknown ChangeType = iota
	Feature
	Fix
	Documentation
	Performance
	Refactor
	Test
	Chore
	Build
	CI
	Revert
	Style
	Breaking
	Custom
)

func (t ChangeType) String() string {
	switch t {
	case Feature:
		return "feature"
	case Fix:
		return "fix"
	case Documentation:
		return "documentation"
	case Performance:
		return "performance"
	case Refactor:
		return "refactor"
	case Test:
		return "test"
	case Chore:
		return "chore"
	case Build:
		return "build"
	case CI:
		return "ci"
	case Revert:
		return "revert"
	case Style:
		return "style"
	case Breaking:
		return "breaking"
	case Custom:
		return "custom"
	default:
		return "unknown"
	}
}

// conventionalTypeOf maps a conventional-commit type token to a
// ChangeType, per spec.md §4.6.
func conventionalTypeOf(token string) ChangeType {
	switch token {
	case "feat":
		return Feature
	case "fix":
		return Fix
	case "docs":
		return Documentation
	case "perf":
		return Performance
	case "refactor":
		return Refactor
	case "test":
		return Test
	case "chore":
		return Chore
	case "build":
		return Build
	case "ci":
		return CI
	case "revert":
		return Revert
	case "style":
		return Style
	default:
		return Unknown
	}
}

// monorepoPackage and rootPackage are the two reserved Package values a
// Change may carry instead of a workspace package name (spec.md §3).
const (
	monorepoPackage = "_monorepo"
	rootPackage     = "_root"
)

// Change is one recorded unit of work against a package, the monorepo as
// a whole, or the repository root (spec.md §3 Change).
type Change struct {
	ID             string
	Package        string
	ChangeType     ChangeType
	CustomType     string // only meaningful when ChangeType == Custom
	Description    string
	Breaking       bool
	Timestamp      time.Time
	Author         string
	Issues         []string
	ReleaseVersion string // empty ⇒ unreleased
	Environments   []string
}

// Unreleased reports whether this change has not yet been tied to a
// release.
func (c Change) Unreleased() bool { return c.ReleaseVersion == "" }

// AppliesToEnvironment reports whether c applies to env: its
// Environments list is empty (applies everywhere) or contains env
// (spec.md §4.6 "Environments").
func (c Change) AppliesToEnvironment(env string) bool {
	if len(c.Environments) == 0 {
		return true
	}
	for _, e := range c.Environments {
		if e == env {
			return true
		}
	}
	return false
}

// Changeset is an immutable, id-keyed grouping of Changes (spec.md §3
// Changeset). Only the ReleaseVersion field of its contained changes may
// be mutated after storage, via the owning ChangeStore's MarkReleased
// methods.
type Changeset struct {
	ID        string
	Summary   string
	Changes   []Change
	CreatedAt time.Time
}
