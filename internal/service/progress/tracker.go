// Package progress is the task-registration interface the pipeline reports its
// steps through. LogTracker keeps the task list in memory and logs transitions.
package progress

import (
	"context"
	"slices"
	"sync"

	"github.com/oshokin/tauri-release/internal/logger"
)

// Status is the lifecycle state of a task.
type Status string

const (
	// StatusRunning marks a task in progress.
	StatusRunning Status = "running"
	// StatusCompleted marks a finished task.
	StatusCompleted Status = "completed"
	// StatusFailed marks a task that stopped with an error.
	StatusFailed Status = "failed"
)

// Task is a snapshot of one registered task.
type Task struct {
	ID       string
	Name     string
	Progress int
	Status   Status
	Message  string
}

// Tracker receives task updates.
type Tracker interface {
	// Add registers a running task, replacing any task with the same id.
	Add(ctx context.Context, id, name string)
	// Update sets progress (0 to 100); an empty status or message keeps the previous one.
	Update(ctx context.Context, id string, progress int, status Status, message string)
	// Remove forgets the task.
	Remove(ctx context.Context, id string)
}

// LogTracker is a Tracker that logs every transition.
type LogTracker struct {
	mu    sync.Mutex
	tasks []Task
}

// NewLogTracker returns an empty tracker.
func NewLogTracker() *LogTracker {
	return new(LogTracker)
}

// Add implements Tracker.
func (t *LogTracker) Add(ctx context.Context, id, name string) {
	t.mu.Lock()
	t.tasks = slices.DeleteFunc(t.tasks, func(task Task) bool { return task.ID == id })
	t.tasks = append(t.tasks, Task{ID: id, Name: name, Status: StatusRunning})
	t.mu.Unlock()

	logger.InfoKV(ctx, name, "task", id, "status", StatusRunning)
}

// Update implements Tracker. Unknown ids are ignored.
func (t *LogTracker) Update(ctx context.Context, id string, progress int, status Status, message string) {
	t.mu.Lock()

	idx := slices.IndexFunc(t.tasks, func(task Task) bool { return task.ID == id })
	if idx < 0 {
		t.mu.Unlock()
		return
	}

	task := &t.tasks[idx]
	task.Progress = min(max(progress, 0), 100)

	if status != "" {
		task.Status = status
	}

	if message != "" {
		task.Message = message
	}

	snapshot := *task
	t.mu.Unlock()

	kvs := []any{"task", snapshot.ID, "status", snapshot.Status, "progress", snapshot.Progress}
	if snapshot.Message != "" {
		kvs = append(kvs, "message", snapshot.Message)
	}

	if snapshot.Status == StatusFailed {
		logger.ErrorKV(ctx, snapshot.Name, kvs...)
		return
	}

	logger.InfoKV(ctx, snapshot.Name, kvs...)
}

// Remove implements Tracker.
func (t *LogTracker) Remove(_ context.Context, id string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.tasks = slices.DeleteFunc(t.tasks, func(task Task) bool { return task.ID == id })
}

// Tasks returns a copy of every registered task in registration order.
func (t *LogTracker) Tasks() []Task {
	t.mu.Lock()
	defer t.mu.Unlock()

	return slices.Clone(t.tasks)
}

// Active returns the running tasks.
func (t *LogTracker) Active() []Task {
	tasks := t.Tasks()

	return slices.DeleteFunc(tasks, func(task Task) bool { return task.Status != StatusRunning })
}
