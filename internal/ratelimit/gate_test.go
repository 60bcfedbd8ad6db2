package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDelayGrowsStrictlyUnderConsecutiveFailures(t *testing.T) {
	g := New(Config{
		BaseDelay:  time.Second,
		JitterFrac: 0.2,
		MaxRetries: 10,
		MaxBackoff: 60 * time.Second,
	})

	prev := g.Delay()
	capped := 0
	for i := 0; i < 8; i++ {
		g.Failure()
		d := g.Delay()
		if d >= time.Duration(float64(60*time.Second)*0.9) {
			capped++
		} else {
			assert.Greater(t, d, prev, "delay must grow until the cap (failure %d)", i+1)
		}
		prev = d
	}
	assert.Greater(t, capped, 0, "backoff never reached the cap")
}

func TestSuccessResetsToBaseJitteredDelay(t *testing.T) {
	g := New(Config{BaseDelay: time.Second, JitterFrac: 0.2, MaxRetries: 5, MaxBackoff: time.Minute})

	for i := 0; i < 4; i++ {
		g.Failure()
	}
	require.Greater(t, g.Delay(), 2*time.Second)

	g.Success()
	d := g.Delay()
	assert.GreaterOrEqual(t, d, time.Duration(0.9*float64(time.Second)))
	assert.LessOrEqual(t, d, time.Duration(1.1*float64(time.Second)))
}

func TestExhaustedAfterRetryBudget(t *testing.T) {
	g := New(Config{BaseDelay: time.Millisecond, MaxRetries: 3, MaxBackoff: time.Second})

	assert.False(t, g.Exhausted())
	g.Failure()
	g.Failure()
	assert.False(t, g.Exhausted())
	g.Failure()
	assert.True(t, g.Exhausted())

	g.Success()
	assert.False(t, g.Exhausted(), "success must clear the exhausted state")
}

func TestWaitEnforcesMinimumInterval(t *testing.T) {
	g := New(Config{BaseDelay: 50 * time.Millisecond, MaxRetries: 3, MaxBackoff: time.Second})
	ctx := context.Background()

	require.NoError(t, g.Wait(ctx))
	start := time.Now()
	require.NoError(t, g.Wait(ctx))
	assert.GreaterOrEqual(t, time.Since(start), 45*time.Millisecond)
}

func TestWaitSerializesConcurrentCallers(t *testing.T) {
	g := New(Config{BaseDelay: 30 * time.Millisecond, MaxRetries: 3, MaxBackoff: time.Second})
	ctx := context.Background()

	// Burn the free first slot so every measured call pays the interval.
	require.NoError(t, g.Wait(ctx))

	const callers = 4
	start := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, g.Wait(ctx))
		}()
	}
	wg.Wait()

	// Each caller claims its own slot, so the burst still takes at
	// least one full interval per caller.
	assert.GreaterOrEqual(t, time.Since(start), time.Duration(callers)*25*time.Millisecond)
}

func TestWaitHonorsCancellation(t *testing.T) {
	g := New(Config{BaseDelay: 10 * time.Second, MaxRetries: 3, MaxBackoff: time.Minute})

	require.NoError(t, g.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := g.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
