package planner

import "fmt"

// PackageNotFoundError is returned when a strategy (typically Manual)
// names a package the workspace doesn't have.
type PackageNotFoundError struct {
	Name string
}

func (e *PackageNotFoundError) Error() string {
	return fmt.Sprintf("planner: package %q not found in workspace", e.Name)
}

// CyclicDependenciesError is returned when a strategy cannot proceed
// because of an unharmonized cycle (spec.md §4.7 "Synchronized... Fails
// with CyclicDependencies only if the strategy variant cannot proceed").
type CyclicDependenciesError struct {
	CycleGroups [][]string
}

func (e *CyclicDependenciesError) Error() string {
	return fmt.Sprintf("planner: cannot proceed with %d unresolved cycle group(s)", len(e.CycleGroups))
}

// ApplyError wraps the first write failure during apply_bumps, after any
// best-effort rollback has been attempted.
type ApplyError struct {
	Package     string
	Cause       error
	RolledBack  bool
	RollbackErr error
}

func (e *ApplyError) Error() string {
	if e.RolledBack {
		return fmt.Sprintf("planner: apply failed writing %s, rolled back: %v", e.Package, e.Cause)
	}
	if e.RollbackErr != nil {
		return fmt.Sprintf("planner: apply failed writing %s: %v (rollback also failed: %v)", e.Package, e.Cause, e.RollbackErr)
	}
	return fmt.Sprintf("planner: apply failed writing %s: %v", e.Package, e.Cause)
}

func (e *ApplyError) Unwrap() error { return e.Cause }
