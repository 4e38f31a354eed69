package utils

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fortytw2/leaktest"
	"github.com/stretchr/testify/assert"
)

// Tests that restart keeps a single pending callback.
func TestSlotTimerRestart(t *testing.T) {
	var fired int32
	s := NewSlotTimer(nil)
	for ii := 0; ii < 5; ii++ {
		s.Start(30*time.Millisecond, func() {
			atomic.AddInt32(&fired, 1)
		})
		time.Sleep(5 * time.Millisecond)
	}

	assert.True(t, s.Active())
	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&fired))
	assert.False(t, s.Active())
}

// Tests stop.
func TestSlotTimerStop(t *testing.T) {
	var fired int32
	s := NewSlotTimer(nil)
	s.Start(20*time.Millisecond, func() {
		atomic.AddInt32(&fired, 1)
	})
	s.Stop()

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&fired))
	assert.False(t, s.Active())
}

// Tests that callback which already expired, but waits for the owner lock,
// is discarded after stop.
func TestSlotTimerStaleUnderLock(t *testing.T) {
	var mu sync.Mutex
	var fired int32
	s := NewSlotTimer(&mu)

	mu.Lock()
	s.Start(5*time.Millisecond, func() {
		atomic.AddInt32(&fired, 1)
	})
	time.Sleep(30 * time.Millisecond)
	s.Stop()
	mu.Unlock()

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&fired))
}

// Tests retry policy offsets.
func TestRetryPolicy(t *testing.T) {
	defer leaktest.Check(t)()

	r := NewRetryPolicy(0, 20*time.Millisecond, 50*time.Millisecond)
	start := time.Now()
	offsets := make([]time.Duration, 0)
	r.Run(context.Background(), func(ctx context.Context, idx int) {
		offsets = append(offsets, time.Since(start))
	})

	assert.Len(t, offsets, 3)
	assert.True(t, offsets[0] < 20*time.Millisecond)
	assert.True(t, offsets[1] >= 20*time.Millisecond)
	assert.True(t, offsets[2] >= 50*time.Millisecond)
}

// Tests retry policy cancellation.
func TestRetryPolicyCancel(t *testing.T) {
	defer leaktest.Check(t)()

	r := NewRetryPolicy(0, 30*time.Millisecond, 60*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	count := 0
	r.Run(ctx, func(ctx context.Context, idx int) {
		count++
		if 1 == idx {
			cancel()
		}
	})

	assert.Equal(t, 2, count)
}
