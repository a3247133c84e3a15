package depregistry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/websublime/workspace-tools-sub006/depregistry"
	"github.com/websublime/workspace-tools-sub006/semver"
)

func TestGetOrCreateSharedCell(t *testing.T) {
	r := depregistry.New()

	c1, err := r.GetOrCreate("pkg-a", "left-pad", "^1.0.0")
	require.NoError(t, err)

	c2, err := r.GetOrCreate("pkg-b", "left-pad", "^2.0.0")
	require.NoError(t, err)

	assert.Same(t, c1, c2, "same name must intern to the same cell")
	assert.Equal(t, "^1.0.0", c1.Range(), "get_or_create must not overwrite an existing cell's range")

	require.NoError(t, r.UpdateVersion("left-pad", "^2.0.0"))
	assert.Equal(t, "^2.0.0", c1.Range(), "update_version mutates the shared cell observed by all holders")
	assert.Equal(t, "^2.0.0", c2.Range())
}

func TestGetOrCreateInvalidRange(t *testing.T) {
	r := depregistry.New()
	_, err := r.GetOrCreate("pkg-a", "left-pad", "not-a-range!!")
	require.Error(t, err)
}

func TestUpdateVersionUnknown(t *testing.T) {
	r := depregistry.New()
	err := r.UpdateVersion("nope", "^1.0.0")
	require.Error(t, err)
	var nf *depregistry.NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestResolveVersionConflicts(t *testing.T) {
	r := depregistry.New()
	_, err := r.GetOrCreate("P", "L", "^1.2.0")
	require.NoError(t, err)
	_, err = r.GetOrCreate("Q", "L", "^1.5.0")
	require.NoError(t, err)

	known := map[string][]semver.Version{
		"L": {semver.MustParse("1.2.0"), semver.MustParse("1.5.0"), semver.MustParse("1.9.0"), semver.MustParse("2.0.0")},
	}

	result, failures := r.ResolveVersionConflicts(known)
	require.Empty(t, failures)
	require.Contains(t, result.Chosen, "L")
	assert.Equal(t, "1.9.0", result.Chosen["L"].String(), "must pick the highest concrete version satisfying all ranges")

	require.Len(t, result.Updates, 2)
	for _, u := range result.Updates {
		assert.Equal(t, "L", u.DepName)
		assert.Equal(t, "1.9.0", u.New)
	}
}

func TestResolveVersionConflictsIncompatible(t *testing.T) {
	r := depregistry.New()
	_, err := r.GetOrCreate("P", "L", "^1.2.0")
	require.NoError(t, err)
	_, err = r.GetOrCreate("Q", "L", "^2.0.0")
	require.NoError(t, err)

	known := map[string][]semver.Version{
		"L": {semver.MustParse("1.5.0"), semver.MustParse("2.1.0")},
	}

	result, failures := r.ResolveVersionConflicts(known)
	assert.Empty(t, result.Chosen)
	require.Len(t, failures, 1)
	assert.Equal(t, "L", failures[0].Name)
}

func TestResolveVersionConflictsSingleRangeIsNotAConflict(t *testing.T) {
	r := depregistry.New()
	_, err := r.GetOrCreate("P", "L", "^1.2.0")
	require.NoError(t, err)
	_, err = r.GetOrCreate("Q", "L", "^1.2.0")
	require.NoError(t, err)

	result, failures := r.ResolveVersionConflicts(map[string][]semver.Version{"L": {semver.MustParse("1.2.0")}})
	assert.Empty(t, failures)
	assert.Empty(t, result.Chosen)
}
