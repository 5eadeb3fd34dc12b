package ratelimit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabledAllowsEverything(t *testing.T) {
	var l Limiter = Disabled{}

	for i := 0; i < 100; i++ {
		allowed, err := l.Allow(context.Background(), VoteKey("203.0.113.7", "app-1"))
		require.NoError(t, err)
		assert.True(t, allowed)
	}
}

func TestVoteKey(t *testing.T) {
	key := VoteKey("203.0.113.7", "f1f9c2be")
	assert.Equal(t, "vote:203.0.113.7:f1f9c2be", key)

	// Distinct candidates and clients never share a bucket.
	assert.NotEqual(t, key, VoteKey("203.0.113.7", "other"))
	assert.NotEqual(t, key, VoteKey("198.51.100.1", "f1f9c2be"))
}
