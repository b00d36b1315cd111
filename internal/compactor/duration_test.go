package compactor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHumanDuration_RoundTrip(t *testing.T) {
	d, err := ParseHumanDuration("3w2h15ms")
	require.NoError(t, err)
	assert.Equal(t, "3w2h15ms", d.String())
}

func TestParseHumanDuration_CollapsesRepeatedUnits(t *testing.T) {
	d, err := ParseHumanDuration("5s5s5s5s5s")
	require.NoError(t, err)
	assert.Equal(t, "25s", d.String())
}

func TestDuration_ZeroDisplaysAsZeroSeconds(t *testing.T) {
	var d Duration
	assert.Equal(t, "0s", d.String())

	parsed, err := ParseHumanDuration("0")
	require.NoError(t, err)
	assert.Equal(t, "0s", parsed.String())
}

func TestParseHumanDuration_RejectsUnknownUnit(t *testing.T) {
	_, err := ParseHumanDuration("3x")
	assert.Error(t, err)
}

func TestParseHumanDuration_RejectsMissingNumber(t *testing.T) {
	_, err := ParseHumanDuration("w")
	assert.Error(t, err)
}
