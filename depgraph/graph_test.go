package depgraph_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/websublime/workspace-tools-sub006/depgraph"
	"github.com/websublime/workspace-tools-sub006/workspace"
)

func writePackage(t *testing.T, root, dir, doc string) {
	t.Helper()
	full := filepath.Join(root, dir)
	require.NoError(t, os.MkdirAll(full, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(full, "package.json"), []byte(doc), 0o644))
}

func discover(t *testing.T, root string) *workspace.Workspace {
	t.Helper()
	ws, err := workspace.Discover(root, workspace.DefaultDiscoveryConfig())
	require.NoError(t, err)
	return ws
}

func TestBuildLinearChain(t *testing.T) {
	root := t.TempDir()
	writePackage(t, root, "packages/a", `{"name":"a","version":"1.0.0","dependencies":{"b":"^1.0.0"}}`)
	writePackage(t, root, "packages/b", `{"name":"b","version":"1.0.0","dependencies":{"c":"^1.0.0"}}`)
	writePackage(t, root, "packages/c", `{"name":"c","version":"1.0.0","dependencies":{"left-pad":"^2.0.0"}}`)

	gr, err := depgraph.Build(discover(t, root))
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c"}, gr.PackageNames())
	assert.Equal(t, []string{"b"}, gr.DependenciesOf("a"))
	assert.Equal(t, []string{"a"}, gr.DependentsOf("b"))
	assert.Empty(t, gr.SCCs())

	assert.Equal(t, []string{"c", "b", "a"}, gr.SortedPackages(), "leaves first: c has no internal deps, a depends on everything")

	ext := gr.ExternalDependenciesOf("c")
	require.Len(t, ext, 1)
	assert.Equal(t, "left-pad", ext[0].Name)
	assert.Equal(t, depgraph.Unresolved, ext[0].Kind)
}

func TestAffectedPackages(t *testing.T) {
	root := t.TempDir()
	writePackage(t, root, "packages/a", `{"name":"a","version":"1.0.0","dependencies":{"b":"^1.0.0"}}`)
	writePackage(t, root, "packages/b", `{"name":"b","version":"1.0.0","dependencies":{"c":"^1.0.0"}}`)
	writePackage(t, root, "packages/c", `{"name":"c","version":"1.0.0"}`)
	writePackage(t, root, "packages/d", `{"name":"d","version":"1.0.0"}`)

	gr, err := depgraph.Build(discover(t, root))
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c"}, gr.AffectedPackages([]string{"c"}))
	assert.Equal(t, []string{"d"}, gr.AffectedPackages([]string{"d"}))
}

func TestCycleDetection(t *testing.T) {
	root := t.TempDir()
	writePackage(t, root, "packages/a", `{"name":"a","version":"1.0.0","dependencies":{"b":"^1.0.0"}}`)
	writePackage(t, root, "packages/b", `{"name":"b","version":"1.0.0","dependencies":{"a":"^1.0.0"}}`)
	writePackage(t, root, "packages/c", `{"name":"c","version":"1.0.0"}`)

	gr, err := depgraph.Build(discover(t, root))
	require.NoError(t, err)

	sccs := gr.SCCs()
	require.Len(t, sccs, 1)
	assert.Equal(t, []string{"a", "b"}, sccs[0])

	grp, ok := gr.CycleGroupFor("a")
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, grp)

	_, ok = gr.CycleGroupFor("c")
	assert.False(t, ok)

	assert.Equal(t, []string{"c"}, gr.SortedPackages(), "cycle members excluded from the acyclic ordering")

	result := gr.SortedWithCirculars()
	assert.Equal(t, []string{"c"}, result.Acyclic)
	assert.Equal(t, [][]string{{"a", "b"}}, result.CycleGroups)

	report := gr.Validate()
	require.Len(t, report.Issues, 1)
	assert.True(t, report.HasCritical())
}

func TestSelfDependencyIsACycle(t *testing.T) {
	root := t.TempDir()
	writePackage(t, root, "packages/a", `{"name":"a","version":"1.0.0","dependencies":{"a":"^1.0.0"}}`)

	gr, err := depgraph.Build(discover(t, root))
	require.NoError(t, err)

	grp, ok := gr.CycleGroupFor("a")
	require.True(t, ok)
	assert.Equal(t, []string{"a"}, grp)
}

func TestFindVersionConflicts(t *testing.T) {
	root := t.TempDir()
	writePackage(t, root, "packages/a", `{"name":"a","version":"1.0.0","dependencies":{"left-pad":"^1.0.0"}}`)
	writePackage(t, root, "packages/b", `{"name":"b","version":"1.0.0","dependencies":{"left-pad":"^2.0.0"}}`)
	writePackage(t, root, "packages/c", `{"name":"c","version":"1.0.0","dependencies":{"left-pad":"^1.0.0"}}`)

	gr, err := depgraph.Build(discover(t, root))
	require.NoError(t, err)

	conflicts := gr.FindVersionConflicts()
	require.Len(t, conflicts, 1)
	assert.Equal(t, "left-pad", conflicts[0].Name)
	assert.Equal(t, []string{"^1.0.0", "^2.0.0"}, conflicts[0].Ranges)

	report := gr.Validate()
	require.Len(t, report.Issues, 1)
	assert.Equal(t, "left-pad", report.Issues[0].Name)
}
