package limiter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalLimiter_PerKeyBurst(t *testing.T) {
	// Tiny refill rate so the test only observes burst consumption.
	l := NewLocalLimiter(1000, 1000, 1, 2)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := l.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		assert.True(t, ok, "request %d within burst should pass", i)
	}

	ok, err := l.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, ok, "request beyond burst should be rejected")

	// A different caller has its own bucket.
	ok, err = l.Allow(ctx, "5.6.7.8")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLocalLimiter_GlobalBucket(t *testing.T) {
	l := NewLocalLimiter(1, 2, 1000, 1000)
	ctx := context.Background()

	// Distinct keys all drain the shared global bucket.
	ok, err := l.Allow(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = l.Allow(ctx, "b")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = l.Allow(ctx, "c")
	require.NoError(t, err)
	assert.False(t, ok)
}
