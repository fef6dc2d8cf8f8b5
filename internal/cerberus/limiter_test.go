package cerberus

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testMax    = 5
	testWindow = 15 * time.Minute
)

func TestLimiter_AllowsUpToMaxThenRejects(t *testing.T) {
	clock := newFakeClock()
	l := NewLimiter(testMax, testWindow, clock.Now)

	for i := 1; i <= testMax; i++ {
		res := l.Check("10.0.0.1")
		require.True(t, res.Allowed, "attempt %d", i)
		assert.Equal(t, testMax-i, res.Remaining)
	}

	res := l.Check("10.0.0.1")
	assert.False(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)

	// Other keys are independent.
	assert.True(t, l.Check("10.0.0.2").Allowed)
}

func TestLimiter_WindowResets(t *testing.T) {
	clock := newFakeClock()
	l := NewLimiter(testMax, testWindow, clock.Now)

	for i := 0; i < testMax; i++ {
		l.Check("k")
	}
	clock.Advance(testWindow - time.Second)
	assert.False(t, l.Check("k").Allowed)

	// The window is measured from the first attempt.
	clock.Advance(time.Second)
	res := l.Check("k")
	assert.True(t, res.Allowed)
	assert.Equal(t, testMax-1, res.Remaining)
}

func TestLimiter_RefundSkipsSuccessfulAttempts(t *testing.T) {
	clock := newFakeClock()
	l := NewLimiter(testMax, testWindow, clock.Now)

	// Four failures, one success, then another failure: no rejection.
	for i := 0; i < 4; i++ {
		require.True(t, l.Check("k").Allowed)
	}
	require.True(t, l.Check("k").Allowed)
	l.Refund("k")
	res := l.Check("k")
	assert.True(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)

	// The quota is now spent by five failures.
	assert.False(t, l.Check("k").Allowed)
}

func TestLimiter_RefundEdges(t *testing.T) {
	clock := newFakeClock()
	l := NewLimiter(testMax, testWindow, clock.Now)

	l.Refund("unknown")
	assert.Equal(t, 0, l.Len())

	l.Check("k")
	l.Refund("k")
	l.Refund("k")
	assert.Equal(t, testMax-1, l.Check("k").Remaining, "refund never goes below zero")

	clock.Advance(testWindow)
	l.Refund("k")
	assert.Equal(t, testMax-1, l.Check("k").Remaining, "refund ignores a rolled-over window")
}

func TestLimiter_Sweep(t *testing.T) {
	clock := newFakeClock()
	l := NewLimiter(testMax, testWindow, clock.Now)

	l.Check("old")
	clock.Advance(10 * time.Minute)
	l.Check("new")
	clock.Advance(5 * time.Minute)

	assert.Equal(t, 1, l.Sweep())
	assert.Equal(t, 1, l.Len())
	assert.Equal(t, testMax-2, l.Check("new").Remaining)
}

func TestLimiter_ConcurrentChecksNeverExceedMax(t *testing.T) {
	l := NewLimiter(testMax, testWindow, nil)

	var allowed int64
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Check("shared").Allowed {
				atomic.AddInt64(&allowed, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(testMax), allowed)
}
