package jobs

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueProcessesJobs(t *testing.T) {
	done := make(chan Job, 1)
	q := NewQueue("test", func(ctx context.Context, job Job) error {
		done <- job
		return nil
	}, QueueConfig{})

	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "job-1", Type: "noop"}))

	select {
	case job := <-done:
		assert.Equal(t, "job-1", job.ID)
		assert.False(t, job.Enqueued.IsZero())
	case <-time.After(time.Second):
		t.Fatal("job was not processed")
	}
}

func TestQueueCoalescesPendingDuplicates(t *testing.T) {
	release := make(chan struct{})
	var handled int32
	q := NewQueue("test", func(ctx context.Context, job Job) error {
		atomic.AddInt32(&handled, 1)
		select {
		case <-release:
		case <-ctx.Done():
		}
		return nil
	}, QueueConfig{Workers: 1, BufferSize: 4})

	q.Start(context.Background())
	defer q.Stop()

	// First job occupies the single worker, the second waits in the buffer.
	require.NoError(t, q.Enqueue(Job{ID: "recalc:ta-1:per-1"}))
	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&handled) == 1
	}, time.Second, 5*time.Millisecond)
	require.NoError(t, q.Enqueue(Job{ID: "recalc:ta-1:per-1"}))

	// Duplicates of the waiting job are dropped.
	require.NoError(t, q.Enqueue(Job{ID: "recalc:ta-1:per-1"}))
	require.NoError(t, q.Enqueue(Job{ID: "recalc:ta-1:per-1"}))

	close(release)
	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&handled) == 2
	}, time.Second, 5*time.Millisecond)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(2), atomic.LoadInt32(&handled))
}

func TestQueueRetriesFailedJobs(t *testing.T) {
	var attempts int32
	q := NewQueue("test", func(ctx context.Context, job Job) error {
		if atomic.AddInt32(&attempts, 1) < 3 {
			return assert.AnError
		}
		return nil
	}, QueueConfig{MaxRetries: 3, RetryDelay: 5 * time.Millisecond})

	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "flaky"}))

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&attempts) == 3
	}, time.Second, 5*time.Millisecond)
}

func TestQueueEnqueueBeforeStart(t *testing.T) {
	q := NewQueue("test", func(ctx context.Context, job Job) error { return nil }, QueueConfig{})
	assert.Error(t, q.Enqueue(Job{ID: "early"}))
}
