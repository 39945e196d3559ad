package schedule

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskRunsImmediatelyThenOnInterval(t *testing.T) {
	var runs atomic.Int32

	task := Every(context.Background(), 50*time.Millisecond, func(context.Context) {
		runs.Add(1)
	})
	defer task.Stop()

	require.Eventually(t, func() bool {
		return runs.Load() >= 1
	}, time.Second, 5*time.Millisecond, "first run fires without waiting for a tick")

	require.Eventually(t, func() bool {
		return runs.Load() >= 3
	}, time.Second, 5*time.Millisecond)
}

func TestTaskStopCancelsJobContext(t *testing.T) {
	started := make(chan struct{})
	var cancelled atomic.Bool

	task := Every(context.Background(), time.Hour, func(ctx context.Context) {
		close(started)
		<-ctx.Done()
		cancelled.Store(true)
	})

	<-started
	task.Stop()

	assert.True(t, cancelled.Load(), "Stop must cancel the in-flight job context and wait for it")
}

func TestTaskStopIsIdempotent(t *testing.T) {
	task := Every(context.Background(), time.Hour, func(context.Context) {})
	task.Stop()
	task.Stop()
}
