package queue

import (
	"context"

	"github.com/slok/flowtrack/internal/model"
)

// Task states, as reported by the task queue backends.
const (
	StatusPending  = "PENDING"
	StatusStarted  = "STARTED"
	StatusProgress = "PROGRESS"
	StatusSuccess  = "SUCCESS"
	StatusFailure  = "FAILURE"
	StatusRevoked  = "REVOKED"
)

// IsReadyStatus returns true if the status is terminal.
func IsReadyStatus(status string) bool {
	switch status {
	case StatusSuccess, StatusFailure, StatusRevoked:
		return true
	}
	return false
}

// SubmitOpts are the options used to submit a task graph.
type SubmitOpts struct {
	// TaskID is the ID assigned to the root handle (the chain tail).
	TaskID string
	// Queue is the worker queue the tasks are routed to.
	Queue string
	// RetainResult keeps the task states after they finish until they are forgotten.
	RetainResult bool
}

// ResultHandle is the handle of a submitted step. The handle returned by a submission
// is the chain tail, previous steps are reachable following Parent.
type ResultHandle struct {
	ID     string
	Name   string
	Parent *ResultHandle
	// Children is only set for group handles.
	Children []*ResultHandle
	group    bool
}

// NewTaskHandle returns a handle for a single task.
func NewTaskHandle(id, name string, parent *ResultHandle) *ResultHandle {
	return &ResultHandle{ID: id, Name: name, Parent: parent}
}

// NewGroupHandle returns a handle for a parallel group of tasks.
func NewGroupHandle(id, name string, parent *ResultHandle, children []*ResultHandle) *ResultHandle {
	return &ResultHandle{ID: id, Name: name, Parent: parent, Children: children, group: true}
}

// IsGroup returns true if the handle represents a parallel group.
func (r *ResultHandle) IsGroup() bool { return r.group }

// TaskState is a snapshot of a task state on the backend.
type TaskState struct {
	ID     string
	Status string
	// Result is the task result, only meaningful on success.
	Result any
	// Error is the task error payload, only meaningful on failure or revocation.
	Error string
	// Info is the in-flight progress payload.
	Info map[string]any
}

// Backend is the task queue client capability consumed by the tracker.
type Backend interface {
	// Submit submits the task graph and returns the handle of the chain tail.
	Submit(ctx context.Context, graph model.TaskGraph, opts SubmitOpts) (*ResultHandle, error)
	// State returns the current state of a task. Unknown or forgotten tasks are pending.
	State(ctx context.Context, id string) (*TaskState, error)
	// Forget releases the backend-held result data. It is idempotent.
	Forget(ctx context.Context, id string) error
	// Cancel requests the cancellation of a queued or running task.
	Cancel(ctx context.Context, id string, terminate bool) error
}

// TaskContext is the context received by task handlers.
type TaskContext struct {
	ID   string
	Name string
	Args map[string]any
	// Progress publishes the in-flight info payload of the task.
	Progress func(info map[string]any)
}

// Handler runs a task on a worker.
type Handler func(ctx context.Context, t TaskContext) (any, error)

// Registry maps task names to their handlers.
type Registry map[string]Handler
