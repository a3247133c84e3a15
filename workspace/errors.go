package workspace

import "fmt"

// RootNotFoundError reports that the configured workspace root does not
// exist or is not a directory (spec.md §7 Workspace.RootNotFound).
type RootNotFoundError struct {
	Path string
}

func (e *RootNotFoundError) Error() string {
	return fmt.Sprintf("workspace: root not found: %s", e.Path)
}

// NoPackagesFoundError reports that discovery found zero valid manifests
// (spec.md §4.5 / §8 boundary case).
type NoPackagesFoundError struct {
	Path string
}

func (e *NoPackagesFoundError) Error() string {
	return fmt.Sprintf("workspace: no packages found under %s", e.Path)
}

// InvalidConfigurationError reports a rejected DiscoveryConfig value
// (spec.md §7 Workspace.InvalidConfiguration).
type InvalidConfigurationError struct {
	Reason string
}

func (e *InvalidConfigurationError) Error() string {
	return fmt.Sprintf("workspace: invalid configuration: %s", e.Reason)
}

// PackageNotFoundError reports a lookup for a package name the workspace
// does not contain (spec.md §7 Workspace.PackageNotFound).
type PackageNotFoundError struct {
	Name string
}

func (e *PackageNotFoundError) Error() string {
	return fmt.Sprintf("workspace: package not found: %s", e.Name)
}

// DuplicatePackageNameError reports that two discovered manifests declared
// the same package name (spec.md §3 Package "unique across workspace").
type DuplicatePackageNameError struct {
	Name        string
	FirstPath   string
	SecondPath  string
}

func (e *DuplicatePackageNameError) Error() string {
	return fmt.Sprintf("workspace: duplicate package name %q at %s and %s", e.Name, e.FirstPath, e.SecondPath)
}
