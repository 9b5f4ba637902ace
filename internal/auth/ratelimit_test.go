package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestLimiter(t *testing.T, now *time.Time) *RateLimiter {
	t.Helper()
	rl := NewRateLimiter(RateLimitConfig{
		MaxAttempts:     3,
		WindowDuration:  time.Minute,
		LockoutDuration: 10 * time.Minute,
		CleanupInterval: time.Hour,
	})
	rl.now = func() time.Time { return *now }
	t.Cleanup(rl.Stop)
	return rl
}

func TestRateLimiter_LocksAfterMaxAttempts(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	rl := newTestLimiter(t, &now)

	for i := 0; i < 2; i++ {
		locked, _ := rl.RecordFailure("10.0.0.1", "alice")
		assert.False(t, locked)
		allowed, _ := rl.Allow("10.0.0.1", "alice")
		assert.True(t, allowed)
	}

	locked, retry := rl.RecordFailure("10.0.0.1", "alice")
	assert.True(t, locked)
	assert.Equal(t, 10*time.Minute, retry)

	allowed, wait := rl.Allow("10.0.0.1", "alice")
	assert.False(t, allowed)
	assert.Equal(t, 10*time.Minute, wait)

	// Other clients and logins are unaffected
	allowed, _ = rl.Allow("10.0.0.2", "alice")
	assert.True(t, allowed)
	allowed, _ = rl.Allow("10.0.0.1", "bob")
	assert.True(t, allowed)

	now = now.Add(11 * time.Minute)
	allowed, _ = rl.Allow("10.0.0.1", "alice")
	assert.True(t, allowed)
}

func TestRateLimiter_WindowResets(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	rl := newTestLimiter(t, &now)

	rl.RecordFailure("ip", "alice")
	rl.RecordFailure("ip", "alice")

	now = now.Add(2 * time.Minute)
	locked, _ := rl.RecordFailure("ip", "alice")
	assert.False(t, locked, "failures from an expired window should not count")
}

func TestRateLimiter_SuccessClears(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	rl := newTestLimiter(t, &now)

	rl.RecordFailure("ip", "alice")
	rl.RecordFailure("ip", "alice")
	rl.RecordSuccess("ip", "alice")

	locked, _ := rl.RecordFailure("ip", "alice")
	assert.False(t, locked)
}

func TestRateLimiter_Cleanup(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	rl := newTestLimiter(t, &now)

	rl.RecordFailure("ip", "alice")
	now = now.Add(time.Hour)
	rl.cleanup()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.Empty(t, rl.attempts)
}

func TestRateLimiter_StopTwice(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{})
	rl.Stop()
	assert.NotPanics(t, rl.Stop)
}
