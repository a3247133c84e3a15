package workspace_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/websublime/workspace-tools-sub006/workspace"
)

func writePackage(t *testing.T, root, dir, doc string) {
	t.Helper()
	full := filepath.Join(root, dir)
	require.NoError(t, os.MkdirAll(full, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(full, "package.json"), []byte(doc), 0o644))
}

func TestDiscoverBasic(t *testing.T) {
	root := t.TempDir()
	writePackage(t, root, "packages/a", `{"name":"a","version":"1.0.0","dependencies":{"b":"^1.0.0"}}`)
	writePackage(t, root, "packages/b", `{"name":"b","version":"1.0.0"}`)
	writePackage(t, root, "packages/a/node_modules/ignored", `{"name":"ignored","version":"9.9.9"}`)

	ws, err := workspace.Discover(root, workspace.DefaultDiscoveryConfig())
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, ws.Names())
	assert.True(t, ws.IsInternal("b"))
	assert.False(t, ws.IsInternal("ignored"), "node_modules must be excluded by default")

	a, ok := ws.Get("a")
	require.True(t, ok)
	assert.Equal(t, "packages/a", a.RelativeDir)
}

func TestDiscoverEmptyWorkspace(t *testing.T) {
	root := t.TempDir()
	_, err := workspace.Discover(root, workspace.DefaultDiscoveryConfig())
	require.Error(t, err)
	var npf *workspace.NoPackagesFoundError
	assert.ErrorAs(t, err, &npf)
}

func TestDiscoverRootNotFound(t *testing.T) {
	_, err := workspace.Discover("/does/not/exist/at/all", workspace.DefaultDiscoveryConfig())
	require.Error(t, err)
	var rnf *workspace.RootNotFoundError
	assert.ErrorAs(t, err, &rnf)
}

func TestDiscoverDuplicateName(t *testing.T) {
	root := t.TempDir()
	writePackage(t, root, "packages/a", `{"name":"dup","version":"1.0.0"}`)
	writePackage(t, root, "packages/b", `{"name":"dup","version":"2.0.0"}`)

	_, err := workspace.Discover(root, workspace.DefaultDiscoveryConfig())
	require.Error(t, err)
	var dup *workspace.DuplicatePackageNameError
	assert.ErrorAs(t, err, &dup)
}

func TestDiscoverInvalidConfiguration(t *testing.T) {
	root := t.TempDir()
	writePackage(t, root, "packages/a", `{"name":"a","version":"1.0.0"}`)

	cfg := workspace.DefaultDiscoveryConfig()
	cfg.MaxDepth = -1
	_, err := workspace.Discover(root, cfg)
	require.Error(t, err)
	var ic *workspace.InvalidConfigurationError
	assert.ErrorAs(t, err, &ic)
}

func TestValidateUnresolvedDependency(t *testing.T) {
	root := t.TempDir()
	writePackage(t, root, "packages/a", `{"name":"a","version":"1.0.0","dependencies":{"missing-internal":"^1.0.0"}}`)

	ws, err := workspace.Discover(root, workspace.DefaultDiscoveryConfig())
	require.NoError(t, err)

	report := ws.Validate(workspace.ValidationOptions{})
	require.Len(t, report.Issues, 1)
	assert.Equal(t, "missing-internal", report.Issues[0].Name)

	reportExternal := ws.Validate(workspace.ValidationOptions{TreatUnresolvedAsExternal: true})
	assert.Empty(t, reportExternal.Issues)

	reportForced := ws.Validate(workspace.ValidationOptions{InternalDependencies: []string{"missing-internal"}})
	assert.Empty(t, reportForced.Issues)
}
