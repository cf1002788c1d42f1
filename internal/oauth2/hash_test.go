package oauth2

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeftHash_RS256ProducesUnpaddedBase64URL(t *testing.T) {
	got, err := LeftHash("RS256", "jHkWEdUXMU1BwAsC4vtUsZwnNvTIxEl0z9K3vx5KF0Y")
	require.NoError(t, err)
	assert.NotEmpty(t, got)
	assert.NotContains(t, got, "=")
	assert.NotContains(t, got, "+")
	assert.NotContains(t, got, "/")
}

func TestLeftHash_UnsupportedAlgorithm(t *testing.T) {
	_, err := LeftHash("HS256", "token")
	assert.Error(t, err)
}

func TestLeftHash_DeterministicPerAlgorithm(t *testing.T) {
	a, err := LeftHash("RS256", "same-token")
	require.NoError(t, err)
	b, err := LeftHash("RS256", "same-token")
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := LeftHash("RS384", "same-token")
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}
