package llm

import (
	"context"
	"sync"
	"time"
)

// bucket spaces provider calls to one per interval after an initial burst.
// It tracks the theoretical arrival time of the next call instead of running
// a refill goroutine: a reservation pushes tat forward by one interval, and a
// caller waits until tat minus the burst allowance.
type bucket struct {
	interval time.Duration
	burst    int
	now      func() time.Time

	mu  sync.Mutex
	tat time.Time

	closed    chan struct{}
	closeOnce sync.Once
}

// newBucket returns nil when rps <= 0; a nil bucket never waits.
func newBucket(rps float64, burst int) *bucket {
	if rps <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	interval := time.Duration(float64(time.Second) / rps)
	if interval <= 0 {
		interval = time.Nanosecond
	}
	return &bucket{
		interval: interval,
		burst:    burst,
		now:      time.Now,
		closed:   make(chan struct{}),
	}
}

// reserve claims the next slot and returns how long the caller must wait.
func (b *bucket) reserve() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	now := b.now()
	if b.tat.Before(now) {
		b.tat = now
	}
	allowance := time.Duration(b.burst-1) * b.interval
	delay := b.tat.Add(-allowance).Sub(now)
	b.tat = b.tat.Add(b.interval)
	if delay < 0 {
		return 0
	}
	return delay
}

// wait blocks until the reserved slot, ctx is done or the bucket is closed.
func (b *bucket) wait(ctx context.Context) error {
	if b == nil {
		return nil
	}
	delay := b.reserve()
	if delay == 0 {
		return ctx.Err()
	}
	t := time.NewTimer(delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-b.closed:
		return context.Canceled
	case <-t.C:
		return nil
	}
}

func (b *bucket) close() {
	if b == nil {
		return
	}
	b.closeOnce.Do(func() { close(b.closed) })
}
