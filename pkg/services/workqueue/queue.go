package workqueue

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// Queue runs tasks with at most a fixed number executing at once. Tasks start
// in enqueue order.
type Queue struct {
	mu        sync.Mutex
	tasks     []*TaskState
	running   int
	limit     int
	cancelled bool

	// done is closed when every enqueued task reaches a terminal state.
	done chan struct{}

	ctx    context.Context
	cancel context.CancelFunc

	logger *zap.Logger
}

// QueueOption configures a Queue.
type QueueOption func(*Queue)

// WithConcurrency caps the number of tasks running at once. Values below 1
// are ignored.
func WithConcurrency(n int) QueueOption {
	return func(q *Queue) {
		if n > 0 {
			q.limit = n
		}
	}
}

// New creates a queue that runs one task at a time unless configured otherwise.
func New(logger *zap.Logger, opts ...QueueOption) *Queue {
	ctx, cancel := context.WithCancel(context.Background())
	q := &Queue{
		limit:  1,
		done:   make(chan struct{}),
		ctx:    ctx,
		cancel: cancel,
		logger: logger.Named("workqueue"),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Enqueue adds a task and starts it if a slot is free.
func (q *Queue) Enqueue(task Task) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.cancelled {
		q.logger.Warn("queue cancelled, ignoring enqueue",
			zap.String("task_id", task.ID()),
			zap.String("task_name", task.Name()))
		return
	}

	select {
	case <-q.done:
		q.done = make(chan struct{})
	default:
	}

	q.tasks = append(q.tasks, newTaskState(task))
	q.startLocked()
}

// startLocked fills free slots with pending tasks. Must be called with lock held.
func (q *Queue) startLocked() {
	for _, ts := range q.tasks {
		if q.running >= q.limit {
			return
		}
		if ts.status() != TaskStatusPending {
			continue
		}
		q.running++
		ts.setStatus(TaskStatusRunning, nil)
		q.logger.Debug("starting task",
			zap.String("task_id", ts.Task.ID()),
			zap.String("task_name", ts.Task.Name()))
		go q.run(ts)
	}
}

func (q *Queue) run(ts *TaskState) {
	err := ts.Task.Execute(q.ctx)

	q.mu.Lock()
	defer q.mu.Unlock()
	q.running--

	switch {
	case err == nil:
		ts.setStatus(TaskStatusCompleted, nil)
		q.logger.Debug("task completed", zap.String("task_name", ts.Task.Name()))
	case errors.Is(err, context.Canceled) && q.cancelled:
		ts.setStatus(TaskStatusCancelled, err)
		q.logger.Info("task cancelled", zap.String("task_name", ts.Task.Name()))
	default:
		ts.setStatus(TaskStatusFailed, err)
		q.logger.Error("task failed",
			zap.String("task_id", ts.Task.ID()),
			zap.String("task_name", ts.Task.Name()),
			zap.Error(err))
	}

	q.startLocked()
	if q.allDoneLocked() {
		q.closeDoneLocked()
	}
}

func (q *Queue) allDoneLocked() bool {
	for _, ts := range q.tasks {
		s := ts.status()
		if s == TaskStatusPending || s == TaskStatusRunning {
			return false
		}
	}
	return true
}

func (q *Queue) closeDoneLocked() {
	select {
	case <-q.done:
	default:
		close(q.done)
	}
}

// Wait blocks until every task finishes or ctx is done. It returns the
// failures of all failed tasks joined together, or ctx.Err() after cancelling
// the queue.
func (q *Queue) Wait(ctx context.Context) error {
	q.mu.Lock()
	if len(q.tasks) == 0 {
		q.mu.Unlock()
		return nil
	}
	done := q.done
	q.mu.Unlock()

	select {
	case <-done:
		q.mu.Lock()
		defer q.mu.Unlock()
		var errs []error
		for _, ts := range q.tasks {
			if ts.status() == TaskStatusFailed {
				errs = append(errs, ts.failure())
			}
		}
		return errors.Join(errs...)
	case <-ctx.Done():
		q.Cancel()
		return ctx.Err()
	}
}

// Cancel stops accepting tasks, cancels running ones and marks pending ones
// cancelled.
func (q *Queue) Cancel() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.cancelled {
		return
	}
	q.cancelled = true
	q.cancel()

	for _, ts := range q.tasks {
		if ts.status() == TaskStatusPending {
			ts.setStatus(TaskStatusCancelled, context.Canceled)
		}
	}
	if q.allDoneLocked() {
		q.closeDoneLocked()
	}
}

// Tasks returns a snapshot of every task in enqueue order.
func (q *Queue) Tasks() []TaskSnapshot {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]TaskSnapshot, len(q.tasks))
	for i, ts := range q.tasks {
		out[i] = ts.Snapshot()
	}
	return out
}

// Counts tallies tasks by status.
func (q *Queue) Counts() map[TaskStatus]int {
	q.mu.Lock()
	defer q.mu.Unlock()

	counts := make(map[TaskStatus]int)
	for _, ts := range q.tasks {
		counts[ts.status()]++
	}
	return counts
}
