package utils

import (
	"context"
	"sync"
	"time"
)

// SlotTimer holds at most one pending callback.
// Starting a new one cancels the previous. If locker is provided,
// callback is invoked under it and stale callbacks are discarded.
type SlotTimer struct {
	sync.Mutex
	locker sync.Locker
	timer  *time.Timer
	gen    uint64
}

// NewSlotTimer constructs a new timer slot guarded by owner's locker.
func NewSlotTimer(locker sync.Locker) *SlotTimer {
	return &SlotTimer{
		locker: locker,
	}
}

// Start schedules callback after the duration.
func (s *SlotTimer) Start(d time.Duration, fn func()) {
	s.Lock()
	defer s.Unlock()

	s.stop()
	s.gen++
	gen := s.gen
	s.timer = time.AfterFunc(d, func() {
		s.fire(gen, fn)
	})
}

// Stop cancels pending callback.
func (s *SlotTimer) Stop() {
	s.Lock()
	defer s.Unlock()

	s.stop()
	s.gen++
}

// Active returns whether callback is pending.
func (s *SlotTimer) Active() bool {
	s.Lock()
	defer s.Unlock()

	return nil != s.timer
}

// Cancels underlying timer. Must be called under lock.
func (s *SlotTimer) stop() {
	if nil != s.timer {
		s.timer.Stop()
		s.timer = nil
	}
}

// Invokes callback if slot was not re-started or stopped meanwhile.
func (s *SlotTimer) fire(gen uint64, fn func()) {
	if nil != s.locker {
		s.locker.Lock()
		defer s.locker.Unlock()
	}

	s.Lock()
	if gen != s.gen {
		s.Unlock()
		return
	}
	s.timer = nil
	s.Unlock()

	fn()
}

// RetryPolicy defines bounded number of attempts at fixed offsets from the start.
type RetryPolicy struct {
	Delays []time.Duration
}

// NewRetryPolicy constructs a new policy.
func NewRetryPolicy(delays ...time.Duration) *RetryPolicy {
	return &RetryPolicy{
		Delays: delays,
	}
}

// Run invokes attempt at every offset. Blocks until all attempts are done
// or context is cancelled.
func (r *RetryPolicy) Run(ctx context.Context, attempt func(ctx context.Context, idx int)) {
	start := time.Now()
	for ii, d := range r.Delays {
		wait := d - time.Since(start)
		if wait > 0 {
			t := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				t.Stop()
				return
			case <-t.C:
			}
		}

		if nil != ctx.Err() {
			return
		}

		attempt(ctx, ii)
	}
}
