package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemoryLimiterWindow(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	lim := NewMemory(2, time.Minute)
	lim.now = func() time.Time { return now }
	ctx := context.Background()

	d := lim.Allow(ctx, "alice")
	assert.True(t, d.Allowed)
	assert.Equal(t, 1, d.Remaining)

	assert.True(t, lim.Allow(ctx, "alice").Allowed)

	d = lim.Allow(ctx, "alice")
	assert.False(t, d.Allowed)
	assert.Equal(t, 3, d.Count)
	assert.Equal(t, 0, d.Remaining)
	assert.Equal(t, now.Add(time.Minute), d.ResetAt)

	// other keys have their own window
	assert.True(t, lim.Allow(ctx, "bob").Allowed)

	now = now.Add(time.Minute)
	d = lim.Allow(ctx, "alice")
	assert.True(t, d.Allowed)
	assert.Equal(t, 1, d.Count)
}

func TestNewMemoryDefaults(t *testing.T) {
	lim := NewMemory(0, 0)
	assert.Equal(t, 1, lim.limit)
	assert.Equal(t, time.Minute, lim.period)
}
