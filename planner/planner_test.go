package planner_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/websublime/workspace-tools-sub006/depgraph"
	"github.com/websublime/workspace-tools-sub006/ledger"
	"github.com/websublime/workspace-tools-sub006/planner"
	"github.com/websublime/workspace-tools-sub006/semver"
	"github.com/websublime/workspace-tools-sub006/workspace"
)

func writePackage(t *testing.T, root, dir, doc string) {
	t.Helper()
	full := filepath.Join(root, dir)
	require.NoError(t, os.MkdirAll(full, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(full, "package.json"), []byte(doc), 0o644))
}

func setup(t *testing.T, root string) (*workspace.Workspace, *depgraph.Graph) {
	t.Helper()
	ws, err := workspace.Discover(root, workspace.DefaultDiscoveryConfig())
	require.NoError(t, err)
	gr, err := depgraph.Build(ws)
	require.NoError(t, err)
	return ws, gr
}

func TestIndependentStrategyWithPropagation(t *testing.T) {
	root := t.TempDir()
	writePackage(t, root, "packages/a", `{"name":"a","version":"1.0.0","dependencies":{"b":"^1.0.0"}}`)
	writePackage(t, root, "packages/b", `{"name":"b","version":"0.4.0"}`)

	ws, gr := setup(t, root)
	store := ledger.NewMemoryStore()
	require.NoError(t, store.Store(context.Background(), ledger.Changeset{
		ID: "cs1",
		Changes: []ledger.Change{
			{ID: "c1", Package: "b", ChangeType: ledger.Feature, Description: "new capability"},
		},
	}))

	p := planner.New(ws, gr, store, nil, nil)
	strategy := planner.NewIndependentStrategy(true, true)

	preview, err := p.PreviewBumps(context.Background(), strategy)
	require.NoError(t, err)
	require.Len(t, preview.Changes, 2)

	byName := make(map[string]planner.VersionSuggestion)
	for _, c := range preview.Changes {
		byName[c.Package] = c
	}

	b := byName["b"]
	assert.Equal(t, semver.Minor, b.BumpType)
	assert.True(t, semver.IsBreaking(semver.MustParse("0.4.0"), b.Suggested), "0.x minor bump is breaking per the mandatory 0-major rule")

	a := byName["a"]
	assert.True(t, a.IsDependencyUpdate)
	assert.Equal(t, "1.0.1", a.Suggested.String())
}

func TestSynchronizedStrategyApply(t *testing.T) {
	root := t.TempDir()
	writePackage(t, root, "packages/a", `{"name":"a","version":"1.0.0"}`)
	writePackage(t, root, "packages/b", `{"name":"b","version":"1.0.0","dependencies":{"a":"^1.0.0"}}`)

	ws, gr := setup(t, root)
	store := ledger.NewMemoryStore()

	p := planner.New(ws, gr, store, nil, nil)
	strategy := planner.NewSynchronizedStrategy(semver.MustParse("2.0.0"), true)

	result, err := p.ApplyBumps(context.Background(), strategy, false)
	require.NoError(t, err)
	assert.Len(t, result.Changes, 2)

	ws2, err := workspace.Discover(root, workspace.DefaultDiscoveryConfig())
	require.NoError(t, err)
	a, ok := ws2.Get("a")
	require.True(t, ok)
	assert.Equal(t, "2.0.0", a.Version)

	b, ok := ws2.Get("b")
	require.True(t, ok)
	assert.Equal(t, "2.0.0", b.Version)
	rng, ok := b.Manifest().RangeFor("a", "dependencies")
	require.True(t, ok)
	assert.Equal(t, "^2.0.0", rng)
}

func TestApplyLeavesDependentManifestUntouchedWhenRangeAlreadyAccepts(t *testing.T) {
	root := t.TempDir()
	writePackage(t, root, "packages/a", `{"name":"a","version":"1.0.0"}`)
	writePackage(t, root, "packages/b", `{"name":"b","version":"1.0.0","dependencies":{"a":"^1.0.0"}}`)

	ws, gr := setup(t, root)
	store := ledger.NewMemoryStore()
	require.NoError(t, store.Store(context.Background(), ledger.Changeset{
		ID: "cs1",
		Changes: []ledger.Change{
			{ID: "c1", Package: "a", ChangeType: ledger.Fix, Description: "patch fix"},
		},
	}))

	bPath := filepath.Join(root, "packages", "b", "package.json")
	before, err := os.ReadFile(bPath)
	require.NoError(t, err)

	p := planner.New(ws, gr, store, nil, nil)
	strategy := planner.NewIndependentStrategy(true, true)

	result, err := p.ApplyBumps(context.Background(), strategy, false)
	require.NoError(t, err)
	assert.Len(t, result.Changes, 1, "b's ^1.0.0 range on a already accepts a's 1.0.1 patch bump, so b is not a version change")

	after, err := os.ReadFile(bPath)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after), "b's manifest must not be rewritten when its dependency range needs no change")

	ws2, err := workspace.Discover(root, workspace.DefaultDiscoveryConfig())
	require.NoError(t, err)
	a, ok := ws2.Get("a")
	require.True(t, ok)
	assert.Equal(t, "1.0.1", a.Version)
}

func TestCycleHarmonization(t *testing.T) {
	root := t.TempDir()
	writePackage(t, root, "packages/a", `{"name":"a","version":"1.0.0","dependencies":{"b":"^1.0.0"}}`)
	writePackage(t, root, "packages/b", `{"name":"b","version":"1.0.0","dependencies":{"a":"^1.0.0"}}`)

	ws, gr := setup(t, root)
	store := ledger.NewMemoryStore()
	require.NoError(t, store.Store(context.Background(), ledger.Changeset{
		ID: "cs1",
		Changes: []ledger.Change{
			{ID: "c1", Package: "a", ChangeType: ledger.Feature, Breaking: true},
		},
	}))

	p := planner.New(ws, gr, store, nil, nil)
	strategy := planner.NewIndependentStrategy(true, true)

	preview, err := p.PreviewBumps(context.Background(), strategy)
	require.NoError(t, err)

	byName := make(map[string]planner.VersionSuggestion)
	for _, c := range preview.Changes {
		byName[c.Package] = c
	}
	require.Contains(t, byName, "b")
	assert.True(t, byName["b"].IsCycleUpdate)
	assert.Equal(t, byName["a"].BumpType, byName["b"].BumpType, "cycle members harmonize to the same bump level")
}

func TestValidateVersionsRangeMismatch(t *testing.T) {
	root := t.TempDir()
	writePackage(t, root, "packages/a", `{"name":"a","version":"1.0.0","dependencies":{"b":"^2.0.0"}}`)
	writePackage(t, root, "packages/b", `{"name":"b","version":"1.0.0"}`)

	ws, gr := setup(t, root)
	p := planner.New(ws, gr, ledger.NewMemoryStore(), nil, nil)

	report := p.ValidateVersions()
	require.Len(t, report.Issues, 1)
	assert.Equal(t, "a", report.Issues[0].Package)
	assert.Equal(t, "b", report.Issues[0].Name)
}

func TestGenerateChangelog(t *testing.T) {
	store := ledger.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Store(ctx, ledger.Changeset{
		ID: "cs1",
		Changes: []ledger.Change{
			{ID: "c1", Package: "a", ChangeType: ledger.Feature, Description: "add widgets", ReleaseVersion: "1.1.0"},
			{ID: "c2", Package: "a", ChangeType: ledger.Fix, Description: "fix off-by-one", Breaking: true, ReleaseVersion: "1.1.0"},
		},
	}))

	out, err := planner.GenerateChangelog(ctx, store, "a", "1.1.0", planner.DefaultChangelogConfig(), time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Contains(t, out, "## a 1.1.0 - 2026-01-02")
	assert.Contains(t, out, "fix off-by-one")
	assert.Contains(t, out, "add widgets")
}

func TestRenderTemplateEscaping(t *testing.T) {
	store := ledger.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Store(ctx, ledger.Changeset{
		ID:      "cs1",
		Changes: []ledger.Change{{ID: "c1", Package: "a", ChangeType: ledger.Feature, Description: "x", ReleaseVersion: "1.0.0"}},
	}))

	cfg := planner.DefaultChangelogConfig()
	cfg.HeaderTemplate = "literal {{brace}} then {package}\n"
	out, err := planner.GenerateChangelog(ctx, store, "a", "1.0.0", cfg, time.Now())
	require.NoError(t, err)
	assert.Contains(t, out, "literal {brace} then a")
}
