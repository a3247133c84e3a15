package semver_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/websublime/workspace-tools-sub006/semver"
)

func TestRangeMatches(t *testing.T) {
	r, err := semver.ParseRange("^1.2.0")
	require.NoError(t, err)

	assert.True(t, semver.RangeMatches(r, semver.MustParse("1.2.5")))
	assert.True(t, semver.RangeMatches(r, semver.MustParse("1.9.0")))
	assert.False(t, semver.RangeMatches(r, semver.MustParse("2.0.0")))
	assert.False(t, semver.RangeMatches(r, semver.MustParse("1.1.0")))
}

func TestParseRangeInvalid(t *testing.T) {
	_, err := semver.ParseRange("not a range!!")
	require.Error(t, err)
}

func TestPin(t *testing.T) {
	v := semver.MustParse("1.2.3")
	assert.Equal(t, "^1.2.3", semver.Pin(v, semver.PinCaret))
	assert.Equal(t, "~1.2.3", semver.Pin(v, semver.PinTilde))
	assert.Equal(t, "1.2.3", semver.Pin(v, semver.PinExact))
}
