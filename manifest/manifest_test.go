package manifest_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/websublime/workspace-tools-sub006/manifest"
)

const sampleDoc = `{
  "name": "@acme/widgets",
  "version": "1.0.0",
  "description": "an unknown field that must survive round-tripping",
  "dependencies": {
    "@acme/core": "^1.0.0",
    "left-pad": "^1.3.0"
  },
  "devDependencies": {
    "jest": "^29.0.0"
  },
  "custom": {
    "nested": [1, 2, 3]
  }
}`

func TestParseDefaultFilter(t *testing.T) {
	m, err := manifest.Parse([]byte(sampleDoc), manifest.DefaultDependencyFilter())
	require.NoError(t, err)

	assert.Equal(t, "@acme/widgets", m.Name)
	assert.Equal(t, "1.0.0", m.Version)
	assert.Equal(t, []string{"@acme/core", "left-pad"}, m.DependencyNames())

	_, found := m.RangeFor("jest", manifest.FieldDevDependencies)
	assert.False(t, found, "dev deps excluded by default filter")
}

func TestParseAllFilter(t *testing.T) {
	m, err := manifest.Parse([]byte(sampleDoc), manifest.AllDependencyFilter())
	require.NoError(t, err)

	rng, found := m.RangeFor("jest", manifest.FieldDevDependencies)
	require.True(t, found)
	assert.Equal(t, "^29.0.0", rng)
}

func TestParseMissingName(t *testing.T) {
	_, err := manifest.Parse([]byte(`{"version":"1.0.0"}`), manifest.DefaultDependencyFilter())
	require.Error(t, err)
	var pe *manifest.ParseError
	assert.ErrorAs(t, err, &pe)
}

func TestWithDependencyRangeDoesNotDuplicate(t *testing.T) {
	// gjson/sjson operate on raw bytes; the document here has a single
	// entry per dependency key.
	doc := `{"name":"x","version":"1.0.0","dependencies":{"a":"^1.0.0"}}`
	_, err := manifest.Parse([]byte(doc), manifest.DefaultDependencyFilter())
	require.NoError(t, err) // sanity: no accidental duplicate in control case

	// Assert WithDependencyRange never produces a duplicate entry when
	// updating an existing dependency.
	m, err := manifest.Parse([]byte(doc), manifest.DefaultDependencyFilter())
	require.NoError(t, err)
	m2, err := m.WithDependencyRange(manifest.FieldDependencies, "a", "^2.0.0")
	require.NoError(t, err)
	assert.Len(t, m2.Dependencies, 1)
}

func TestPreservesUnknownFieldsAndOrderOnWrite(t *testing.T) {
	m, err := manifest.Parse([]byte(sampleDoc), manifest.DefaultDependencyFilter())
	require.NoError(t, err)

	m2, err := m.WithVersion("1.1.0")
	require.NoError(t, err)

	m3, err := m2.WithDependencyRange(manifest.FieldDependencies, "left-pad", "^1.4.0")
	require.NoError(t, err)

	out := string(m3.RawDocument())
	assert.Contains(t, out, `"description": "an unknown field that must survive round-tripping"`)
	assert.Contains(t, out, `"version": "1.1.0"`)
	assert.Contains(t, out, `"left-pad": "^1.4.0"`)
	assert.Contains(t, out, `"nested"`)
	assert.Contains(t, out, `"@acme/core": "^1.0.0"`, "untouched dependency range must survive unchanged")
}

func TestReadWriteFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "package.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleDoc), 0o644))

	m, err := manifest.ReadFile(path, manifest.DefaultDependencyFilter())
	require.NoError(t, err)

	require.NoError(t, manifest.WriteFile(path, m))

	roundTripped, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, sampleDoc, string(roundTripped), "read -> write with no changes must be byte-identical")
}

func TestReadFileMissing(t *testing.T) {
	_, err := manifest.ReadFile("/nonexistent/path/package.json", manifest.DefaultDependencyFilter())
	require.Error(t, err)
	var re *manifest.ReadError
	assert.ErrorAs(t, err, &re)
}

func TestSnapshotRestore(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "package.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleDoc), 0o644))

	snap, err := manifest.TakeSnapshot(path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte(`{"name":"mutated"}`), 0o644))
	require.NoError(t, snap.Restore())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, sampleDoc, string(data))
}
