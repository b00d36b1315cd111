package compactor

import (
	"context"
	"sync"
)

// ComputePermits implements the engine's permit formula: a plan whose
// schema is at least cfg.SingleThreadedColumnCount wide gets every
// permit (it runs alone), while narrower schemas get a quota that
// shrinks with the square of their column fraction. Squaring gives
// narrow schemas a generous allowance and only forces serialization as
// columns approaches the cap.
func ComputePermits(totalPermits, columns int, cfg DefaultConfig) int {
	if columns >= cfg.SingleThreadedColumnCount {
		return totalPermits
	}
	fraction := float64(columns) / float64(cfg.SingleThreadedColumnCount)
	permits := int(float64(totalPermits) * fraction * fraction)
	if permits < 1 {
		permits = 1
	}
	return permits
}

// LimiterStats is the observability surface of the weighted semaphore:
// counts of the permits and holders currently acquired or waiting.
type LimiterStats struct {
	Acquired        int64
	Pending         int64
	HoldersAcquired int64
	HoldersPending  int64
}

// Limiter is an instrumented weighted semaphore. total_permits is fixed
// at construction to the configured degree of parallelism; Acquire
// blocks until enough permits are free (or ctx is done) and returns a
// release function the caller must call exactly once.
type Limiter struct {
	mu    sync.Mutex
	cond  *sync.Cond
	total int
	held  int

	holders int
	pending int
}

// NewLimiter constructs a Limiter with the given total permit budget.
func NewLimiter(totalPermits int) *Limiter {
	l := &Limiter{total: totalPermits}
	l.cond = sync.NewCond(&l.mu)
	return l
}

// Acquire blocks until n permits (n above total is clamped to total) are available,
// then marks them held. The Plan Executor calls this before planning
// even begins, since the planner may itself pre-allocate memory
// proportional to the plan's permits.
func (l *Limiter) Acquire(ctx context.Context, n int) (func(), error) {
	if n > l.total {
		n = l.total
	}

	done := make(chan struct{})
	stopWatch := make(chan struct{})
	var acquired bool

	// cond.Wait only wakes on Broadcast/Signal; without this watcher a
	// canceled ctx would never unblock a waiter stuck behind a permit
	// that's never released.
	go func() {
		select {
		case <-ctx.Done():
			l.cond.Broadcast()
		case <-stopWatch:
		}
	}()

	go func() {
		l.mu.Lock()
		l.pending++
		for l.held+n > l.total {
			if ctx.Err() != nil {
				l.pending--
				l.mu.Unlock()
				close(done)
				return
			}
			l.cond.Wait()
		}
		l.pending--
		l.held += n
		l.holders++
		acquired = true
		l.mu.Unlock()
		close(done)
	}()

	select {
	case <-done:
		close(stopWatch)
		if !acquired {
			return nil, ctx.Err()
		}
		released := false
		release := func() {
			if released {
				return
			}
			released = true
			l.mu.Lock()
			l.held -= n
			l.holders--
			l.mu.Unlock()
			l.cond.Broadcast()
		}
		return release, nil
	}
}

// Stats returns a snapshot of the limiter's counters.
func (l *Limiter) Stats() LimiterStats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return LimiterStats{
		Acquired:        int64(l.held),
		Pending:         int64(l.pending),
		HoldersAcquired: int64(l.holders),
		HoldersPending:  int64(l.pending),
	}
}
