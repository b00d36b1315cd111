package compactor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunWithProgressAwareTimeout_Completed(t *testing.T) {
	outcome, err := RunWithProgressAwareTimeout(context.Background(), 100*time.Millisecond, func(ctx context.Context, progress *ProgressSignal) error {
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, Completed, outcome)
}

func TestRunWithProgressAwareTimeout_SomeWorkTryAgain(t *testing.T) {
	outcome, err := RunWithProgressAwareTimeout(context.Background(), 30*time.Millisecond, func(ctx context.Context, progress *ProgressSignal) error {
		require.NoError(t, progress.Send())
		time.Sleep(100 * time.Millisecond)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, SomeWorkTryAgain, outcome)
}

func TestRunWithProgressAwareTimeout_NoWorkTimeOutError(t *testing.T) {
	outcome, err := RunWithProgressAwareTimeout(context.Background(), 30*time.Millisecond, func(ctx context.Context, progress *ProgressSignal) error {
		time.Sleep(100 * time.Millisecond)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, NoWorkTimeOutError, outcome)
}
