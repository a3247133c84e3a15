package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/websublime/workspace-tools-sub006/config"
)

func TestLoadDefaultsWithNoFile(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Load(dir)
	require.NoError(t, err)

	assert.Equal(t, []string{"**/package.json"}, cfg.Discovery.IncludePatterns)
	assert.Equal(t, 4, cfg.Parallel.MaxParallel)
	assert.Equal(t, "independent", cfg.DefaultStrategy)
}

func TestLoadReadsFileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	contents := "parallel:\n  max-parallel: 8\nstrategy:\n  default: synchronized\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "workspace-tools.yaml"), []byte(contents), 0o644))

	t.Setenv("WORKSPACETOOLS_STRATEGY_DEFAULT", "manual")

	cfg, err := config.Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Parallel.MaxParallel)
	assert.Equal(t, "manual", cfg.DefaultStrategy, "environment variable overrides config file")
}

func TestFindsConfigFileInParentDirectory(t *testing.T) {
	root := t.TempDir()
	contents := "parallel:\n  fail-fast: true\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, "workspace-tools.yaml"), []byte(contents), 0o644))

	nested := filepath.Join(root, "packages", "a")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	cfg, err := config.Load(nested)
	require.NoError(t, err)
	assert.True(t, cfg.Parallel.FailFast)
}

func TestLoadDecodesTasks(t *testing.T) {
	dir := t.TempDir()
	contents := "" +
		"tasks:\n" +
		"  - name: build\n" +
		"    command: \"echo building\"\n" +
		"  - name: test\n" +
		"    command: \"echo testing\"\n" +
		"    dependencies: [build]\n" +
		"    timeout: 30s\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "workspace-tools.yaml"), []byte(contents), 0o644))

	cfg, err := config.Load(dir)
	require.NoError(t, err)
	require.Len(t, cfg.Tasks, 2)
	assert.Equal(t, "build", cfg.Tasks[0].Name)
	assert.Equal(t, []string{"build"}, cfg.Tasks[1].Dependencies)
	assert.Equal(t, 30*time.Second, cfg.Tasks[1].Config.Timeout)
}
