package compactor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputePermits_Scaling(t *testing.T) {
	cfg := DefaultEngineConfig()

	assert.Equal(t, 1, ComputePermits(100, 1, cfg))
	assert.Equal(t, 1, ComputePermits(100, 10, cfg))
	assert.Equal(t, 4, ComputePermits(100, 20, cfg))
	assert.Equal(t, 25, ComputePermits(100, 50, cfg))
	assert.Equal(t, 100, ComputePermits(100, 100, cfg))
	assert.Equal(t, 100, ComputePermits(100, 10000, cfg))
}

func TestComputePermits_Monotonic(t *testing.T) {
	cfg := DefaultEngineConfig()
	prev := 0
	for columns := 0; columns <= 120; columns++ {
		got := ComputePermits(100, columns, cfg)
		assert.GreaterOrEqual(t, got, prev)
		prev = got
	}
}

func TestLimiter_AcquireRelease(t *testing.T) {
	l := NewLimiter(10)

	release, err := l.Acquire(context.Background(), 6)
	require.NoError(t, err)
	assert.Equal(t, int64(6), l.Stats().Acquired)

	release()
	assert.Equal(t, int64(0), l.Stats().Acquired)
}

func TestLimiter_BlocksUntilReleased(t *testing.T) {
	l := NewLimiter(10)

	release1, err := l.Acquire(context.Background(), 8)
	require.NoError(t, err)

	acquired := make(chan struct{})
	go func() {
		release2, err := l.Acquire(context.Background(), 5)
		require.NoError(t, err)
		close(acquired)
		release2()
	}()

	select {
	case <-acquired:
		t.Fatal("second acquire should not have succeeded while the first holds 8/10 permits")
	case <-time.After(50 * time.Millisecond):
	}

	release1()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second acquire should have succeeded once the first released")
	}
}

func TestLimiter_CancelUnblocksWaiter(t *testing.T) {
	l := NewLimiter(10)
	release, err := l.Acquire(context.Background(), 10)
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := l.Acquire(ctx, 1)
		errCh <- err
	}()

	cancel()

	select {
	case err := <-errCh:
		assert.Error(t, err)
	case <-time.After(time.Second):
		t.Fatal("canceled acquire never returned")
	}
}
