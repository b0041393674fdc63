package parse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeSince(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	normalized, wasSet, err := NormalizeSince("", now)
	require.NoError(t, err)
	assert.False(t, wasSet)
	assert.Empty(t, normalized)

	normalized, wasSet, err = NormalizeSince("2024-03-01T00:00:00Z", now)
	require.NoError(t, err)
	assert.True(t, wasSet)
	assert.Equal(t, "2024-03-01T00:00:00Z", normalized)

	normalized, wasSet, err = NormalizeSince("72h", now)
	require.NoError(t, err)
	assert.True(t, wasSet)
	assert.Equal(t, "2024-03-12T12:00:00Z", normalized)

	normalized, wasSet, err = NormalizeSince("7d", now)
	require.NoError(t, err)
	assert.True(t, wasSet)
	assert.Equal(t, "2024-03-08T12:00:00Z", normalized)

	normalized, wasSet, err = NormalizeSince("2w", now)
	require.NoError(t, err)
	assert.True(t, wasSet)
	assert.Equal(t, "2024-03-01T12:00:00Z", normalized)

	_, wasSet, err = NormalizeSince("yesterday", now)
	require.Error(t, err)
	assert.True(t, wasSet)
}
