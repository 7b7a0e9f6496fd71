package workqueue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the current state of a task.
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusRunning   TaskStatus = "running"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusFailed    TaskStatus = "failed"
	TaskStatusCancelled TaskStatus = "cancelled"
)

// Task is a unit of work run by a Queue.
type Task interface {
	ID() string
	// Name identifies the task in logs and snapshots, e.g. the report path.
	Name() string
	Execute(ctx context.Context) error
}

// TaskState holds the runtime state of a task.
type TaskState struct {
	Task        Task
	Status      TaskStatus
	StartedAt   *time.Time
	CompletedAt *time.Time
	Error       error

	mu sync.RWMutex
}

func newTaskState(task Task) *TaskState {
	return &TaskState{Task: task, Status: TaskStatusPending}
}

func (ts *TaskState) status() TaskStatus {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	return ts.Status
}

func (ts *TaskState) setStatus(status TaskStatus, err error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	ts.Status = status
	ts.Error = err
	now := time.Now()
	switch status {
	case TaskStatusRunning:
		ts.StartedAt = &now
	case TaskStatusCompleted, TaskStatusFailed, TaskStatusCancelled:
		ts.CompletedAt = &now
	}
}

// failure returns the task error prefixed with the task name.
func (ts *TaskState) failure() error {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	return fmt.Errorf("%s: %w", ts.Task.Name(), ts.Error)
}

// Snapshot returns an immutable copy of the task state.
func (ts *TaskState) Snapshot() TaskSnapshot {
	ts.mu.RLock()
	defer ts.mu.RUnlock()

	var errMsg string
	if ts.Error != nil {
		errMsg = ts.Error.Error()
	}
	return TaskSnapshot{
		ID:          ts.Task.ID(),
		Name:        ts.Task.Name(),
		Status:      ts.Status,
		StartedAt:   ts.StartedAt,
		CompletedAt: ts.CompletedAt,
		Error:       errMsg,
	}
}

// TaskSnapshot is an immutable view of task state for serialization.
type TaskSnapshot struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Status      TaskStatus `json:"status"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       string     `json:"error,omitempty"`
}

// FuncTask adapts a function into a Task.
type FuncTask struct {
	id   string
	name string
	fn   func(ctx context.Context) error
}

// NewFuncTask wraps fn in a task with a fresh ID.
func NewFuncTask(name string, fn func(ctx context.Context) error) *FuncTask {
	return &FuncTask{id: uuid.New().String(), name: name, fn: fn}
}

func (t *FuncTask) ID() string   { return t.id }
func (t *FuncTask) Name() string { return t.name }

func (t *FuncTask) Execute(ctx context.Context) error {
	return t.fn(ctx)
}
