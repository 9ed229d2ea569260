package localstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterWindow(t *testing.T) {
	base := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	r := NewRateLimiter(5 * time.Second)

	assert.True(t, r.Allow(base))
	assert.False(t, r.Allow(base.Add(time.Second)))
	assert.False(t, r.Allow(base.Add(4999*time.Millisecond)))
	assert.True(t, r.Allow(base.Add(5*time.Second)))
}

func TestRateLimiterReset(t *testing.T) {
	base := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	r := NewRateLimiter(time.Hour)

	assert.True(t, r.Allow(base))
	assert.False(t, r.Allow(base.Add(time.Second)))

	r.Reset()
	assert.True(t, r.Allow(base.Add(2*time.Second)))
}

func TestRateLimiterZeroInterval(t *testing.T) {
	base := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	r := NewRateLimiter(0)

	assert.True(t, r.Allow(base))
	assert.True(t, r.Allow(base))
}
