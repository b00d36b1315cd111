package compactor

import (
	"context"
	"time"
)

// TimeoutOutcome is the closed set of results a progress-aware timeout
// can produce.
type TimeoutOutcome int

const (
	// Completed means the operation finished before the deadline.
	Completed TimeoutOutcome = iota
	// SomeWorkTryAgain means the deadline passed but the operation sent
	// at least one progress signal before it did.
	SomeWorkTryAgain
	// NoWorkTimeOutError means the deadline passed with no progress
	// signal ever observed.
	NoWorkTimeOutError
)

func (o TimeoutOutcome) String() string {
	switch o {
	case Completed:
		return "completed"
	case SomeWorkTryAgain:
		return "some_work_try_again"
	default:
		return "no_work_timeout"
	}
}

// ProgressSignal is handed to the wrapped operation so it can declare
// forward progress. It is the operation's sole means of doing so; a
// failed Send (because the caller already gave up and stopped
// listening) is reported via ErrProgressSendFailed.
type ProgressSignal struct {
	ch chan struct{}
}

// Send reports progress. It never blocks: the channel is buffered by
// one slot, and a slot already full just means progress was already
// recorded for this deadline. Send only fails if the channel has been
// closed out from under it, which the wrapper never does while op is
// still running — a caller that sees ErrProgressSendFailed has a bug.
func (p *ProgressSignal) Send() (err error) {
	defer func() {
		if recover() != nil {
			err = ErrProgressSendFailed
		}
	}()
	select {
	case p.ch <- struct{}{}:
	default:
	}
	return nil
}

// RunWithProgressAwareTimeout runs op with deadline d. op receives a
// ProgressSignal and a context that is canceled once the deadline
// passes, so a well-behaved op can abort promptly instead of running on
// in the background; op's return value is only used when the outcome is
// Completed.
func RunWithProgressAwareTimeout(ctx context.Context, d time.Duration, op func(ctx context.Context, progress *ProgressSignal) error) (TimeoutOutcome, error) {
	deadlineCtx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	progress := &ProgressSignal{ch: make(chan struct{}, 1)}
	resultCh := make(chan error, 1)

	go func() {
		resultCh <- op(deadlineCtx, progress)
	}()

	select {
	case err := <-resultCh:
		return Completed, err
	case <-deadlineCtx.Done():
	}

	select {
	case <-progress.ch:
		return SomeWorkTryAgain, nil
	default:
		return NoWorkTimeOutError, nil
	}
}
