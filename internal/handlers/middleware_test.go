package handlers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterBurst(t *testing.T) {
	rl := NewRateLimiter(1, 2)

	assert.True(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.2"), "buckets are per client")
}

func TestRateLimiterSweep(t *testing.T) {
	rl := NewRateLimiter(10, 10)
	rl.Allow("10.0.0.1")
	rl.Allow("10.0.0.2")

	assert.Equal(t, 0, rl.Sweep(time.Hour))
	assert.Equal(t, 2, rl.Len())

	assert.Equal(t, 2, rl.Sweep(0))
	assert.Equal(t, 0, rl.Len())

	assert.True(t, rl.Allow("10.0.0.1"), "evicted client starts with a fresh bucket")
	assert.Equal(t, 1, rl.Len())
}
