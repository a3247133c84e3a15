package semver_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/websublime/workspace-tools-sub006/semver"
)

func TestParse(t *testing.T) {
	v, err := semver.Parse("1.2.3-alpha+build.1")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), v.Major())
	assert.Equal(t, uint64(2), v.Minor())
	assert.Equal(t, uint64(3), v.Patch())
	assert.True(t, v.IsPrerelease())

	_, err = semver.Parse("not-a-version")
	require.Error(t, err)
	var perr *semver.VersionParseError
	assert.ErrorAs(t, err, &perr)
}

func TestBumps(t *testing.T) {
	v := semver.MustParse("1.2.3-rc.1+meta")

	assert.Equal(t, "2.0.0", semver.BumpMajor(v).String())
	assert.Equal(t, "1.3.0", semver.BumpMinor(v).String())
	assert.Equal(t, "1.2.4", semver.BumpPatch(v).String())
}

func TestBumpSnapshotIdempotent(t *testing.T) {
	v := semver.MustParse("1.2.3")

	s1, err := semver.BumpSnapshot(v, "abc1234")
	require.NoError(t, err)
	assert.Equal(t, "1.2.3-snapshot.abc1234", s1.String())

	s2, err := semver.BumpSnapshot(s1, "abc1234")
	require.NoError(t, err)
	assert.Equal(t, s1.String(), s2.String())

	_, err = semver.BumpSnapshot(v, "")
	require.Error(t, err)
}

func TestRelationshipOf(t *testing.T) {
	cases := []struct {
		a, b string
		want semver.Relationship
	}{
		{"1.0.0", "2.0.0", semver.MajorUpgrade},
		{"1.2.0", "1.3.0", semver.MinorUpgrade},
		{"1.2.3", "1.2.4", semver.PatchUpgrade},
		{"1.0.0-alpha", "1.0.0", semver.PrereleaseToStable},
		{"1.0.0", "1.0.0-alpha", semver.StableToPrerelease},
		{"1.0.0-alpha", "1.0.0-beta", semver.NewerPrerelease},
		{"1.0.0-beta", "1.0.0-alpha", semver.OlderPrerelease},
		{"2.0.0", "1.0.0", semver.MajorDowngrade},
		{"1.3.0", "1.2.0", semver.MinorDowngrade},
		{"1.2.4", "1.2.3", semver.PatchDowngrade},
		{"1.0.0", "1.0.0", semver.Identical},
	}

	for _, c := range cases {
		a, b := semver.MustParse(c.a), semver.MustParse(c.b)
		assert.Equalf(t, c.want, semver.RelationshipOf(a, b), "%s -> %s", c.a, c.b)
	}
}

func TestIsBreaking(t *testing.T) {
	assert.True(t, semver.IsBreaking(semver.MustParse("1.0.0"), semver.MustParse("2.0.0")))
	assert.False(t, semver.IsBreaking(semver.MustParse("1.0.0"), semver.MustParse("1.1.0")))

	// Mandatory 0.x rule: minor bump on a 0.x version is breaking.
	assert.True(t, semver.IsBreaking(semver.MustParse("0.1.0"), semver.MustParse("0.2.0")))
	assert.False(t, semver.IsBreaking(semver.MustParse("0.1.0"), semver.MustParse("0.1.1")))
}

func TestPrereleaseOrdering(t *testing.T) {
	alpha := semver.MustParse("1.0.0-alpha")
	beta := semver.MustParse("1.0.0-beta")
	stable := semver.MustParse("1.0.0")
	patch := semver.MustParse("1.0.1")

	assert.True(t, semver.Compare(alpha, beta) < 0)
	assert.True(t, semver.Compare(beta, stable) < 0)
	assert.True(t, semver.Compare(stable, patch) < 0)
}
