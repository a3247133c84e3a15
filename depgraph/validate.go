package depgraph

import "github.com/websublime/workspace-tools-sub006/errs"

// Validate runs the graph-level validation facade of spec.md §4.4: every
// cycle group becomes a critical CircularDependency issue, and every
// external dependency requested under two or more distinct ranges becomes
// a critical VersionConflict issue. Unresolved-dependency reporting is a
// Workspace-level concern (workspace.Validate) and is not duplicated here.
func (gr *Graph) Validate() *errs.ValidationReport {
	report := &errs.ValidationReport{}

	for _, grp := range gr.SCCs() {
		path := grp
		if len(path) == 1 {
			// A self-dependency group has one member; report it as a
			// length-1 cycle path [name, name] per spec.md §8.
			path = []string{path[0], path[0]}
		}
		report.Add(errs.NewCircularDependency(path))
	}
	for _, vc := range gr.FindVersionConflicts() {
		report.Add(errs.NewVersionConflict(vc.Name, vc.Ranges))
	}

	return report
}
