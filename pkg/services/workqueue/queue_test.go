package workqueue

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func waitCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestQueue_EmptyWaitReturnsImmediately(t *testing.T) {
	q := New(zap.NewNop())
	assert.NoError(t, q.Wait(waitCtx(t)))
}

func TestQueue_RunsAllTasks(t *testing.T) {
	q := New(zap.NewNop(), WithConcurrency(3))

	var executed atomic.Int32
	for i := 0; i < 10; i++ {
		q.Enqueue(NewFuncTask("task", func(ctx context.Context) error {
			executed.Add(1)
			return nil
		}))
	}

	require.NoError(t, q.Wait(waitCtx(t)))
	assert.Equal(t, int32(10), executed.Load())
	assert.Equal(t, 10, q.Counts()[TaskStatusCompleted])

	for _, snap := range q.Tasks() {
		assert.Equal(t, TaskStatusCompleted, snap.Status)
		assert.NotNil(t, snap.StartedAt)
		assert.NotNil(t, snap.CompletedAt)
	}
}

func TestQueue_RespectsConcurrencyLimit(t *testing.T) {
	const limit = 2
	q := New(zap.NewNop(), WithConcurrency(limit))

	var current, peak atomic.Int32
	for i := 0; i < 8; i++ {
		q.Enqueue(NewFuncTask("task", func(ctx context.Context) error {
			n := current.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			current.Add(-1)
			return nil
		}))
	}

	require.NoError(t, q.Wait(waitCtx(t)))
	assert.LessOrEqual(t, peak.Load(), int32(limit))
}

func TestQueue_DefaultRunsSerially(t *testing.T) {
	q := New(zap.NewNop(), WithConcurrency(0))

	var current, peak atomic.Int32
	for i := 0; i < 4; i++ {
		q.Enqueue(NewFuncTask("task", func(ctx context.Context) error {
			if n := current.Add(1); n > peak.Load() {
				peak.Store(n)
			}
			time.Sleep(5 * time.Millisecond)
			current.Add(-1)
			return nil
		}))
	}

	require.NoError(t, q.Wait(waitCtx(t)))
	assert.Equal(t, int32(1), peak.Load())
}

func TestQueue_WaitJoinsFailures(t *testing.T) {
	q := New(zap.NewNop(), WithConcurrency(2))
	errBad := errors.New("bad row")

	q.Enqueue(NewFuncTask("a.txt", func(ctx context.Context) error { return errBad }))
	q.Enqueue(NewFuncTask("b.txt", func(ctx context.Context) error { return nil }))
	q.Enqueue(NewFuncTask("c.txt", func(ctx context.Context) error { return errBad }))

	err := q.Wait(waitCtx(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, errBad)
	assert.Contains(t, err.Error(), "a.txt: bad row")
	assert.Contains(t, err.Error(), "c.txt: bad row")

	counts := q.Counts()
	assert.Equal(t, 2, counts[TaskStatusFailed])
	assert.Equal(t, 1, counts[TaskStatusCompleted])
}

func TestQueue_CancelStopsRunningAndPending(t *testing.T) {
	q := New(zap.NewNop())
	started := make(chan struct{})

	q.Enqueue(NewFuncTask("blocking", func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	}))
	q.Enqueue(NewFuncTask("never", func(ctx context.Context) error {
		t.Error("pending task should not run after cancel")
		return nil
	}))

	<-started
	q.Cancel()

	require.NoError(t, q.Wait(waitCtx(t)))
	assert.Equal(t, 2, q.Counts()[TaskStatusCancelled])

	q.Enqueue(NewFuncTask("late", func(ctx context.Context) error { return nil }))
	assert.Len(t, q.Tasks(), 2)
}

func TestQueue_WaitContextCancelled(t *testing.T) {
	q := New(zap.NewNop())
	q.Enqueue(NewFuncTask("blocking", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, q.Wait(ctx), context.Canceled)
}

func TestQueue_ReusableAfterBatch(t *testing.T) {
	q := New(zap.NewNop())

	q.Enqueue(NewFuncTask("first", func(ctx context.Context) error { return nil }))
	require.NoError(t, q.Wait(waitCtx(t)))

	q.Enqueue(NewFuncTask("second", func(ctx context.Context) error { return nil }))
	require.NoError(t, q.Wait(waitCtx(t)))

	assert.Equal(t, 2, q.Counts()[TaskStatusCompleted])
}
