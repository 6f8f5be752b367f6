package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTokenBucketExhaustion(t *testing.T) {
	bucket := NewTokenBucket(3, 1, time.Hour)

	for i := 0; i < 3; i++ {
		allowed, _ := bucket.Allow()
		assert.True(t, allowed, "request %d should pass", i)
	}

	allowed, wait := bucket.Allow()
	assert.False(t, allowed)
	assert.Greater(t, wait, time.Duration(0))
}

func TestRateLimiterIsolatesUsersAndActions(t *testing.T) {
	rl := NewRateLimiter()

	// Drain one user's send_message budget.
	for i := 0; i < 10; i++ {
		allowed, _ := rl.Allow("buyer-1", "send_message")
		assert.True(t, allowed)
	}
	allowed, _ := rl.Allow("buyer-1", "send_message")
	assert.False(t, allowed)

	// A different user and a different action are unaffected.
	allowed, _ = rl.Allow("buyer-2", "send_message")
	assert.True(t, allowed)
	allowed, _ = rl.Allow("buyer-1", "upload_file")
	assert.True(t, allowed)
}

func TestCleanupDropsStaleBuckets(t *testing.T) {
	rl := NewRateLimiter()

	rl.Allow("buyer-1", "send_message")

	rl.mutex.Lock()
	for _, bucket := range rl.buckets {
		bucket.lastRefill = time.Now().Add(-2 * time.Hour)
	}
	rl.mutex.Unlock()

	rl.Cleanup()

	rl.mutex.RLock()
	defer rl.mutex.RUnlock()
	assert.Empty(t, rl.buckets)
}
