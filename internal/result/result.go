package result

import (
	"context"
	"fmt"

	"github.com/slok/flowtrack/internal/log"
	"github.com/slok/flowtrack/internal/model"
	"github.com/slok/flowtrack/internal/queue"
)

// TaskError is the error payload of a failed task.
type TaskError struct {
	TaskID  string
	Message string
}

func (e *TaskError) Error() string { return e.Message }

// AdapterConfig is the configuration for the result adapter.
type AdapterConfig struct {
	Backend queue.Backend
	Logger  log.Logger
}

func (c *AdapterConfig) defaults() error {
	if c.Backend == nil {
		return fmt.Errorf("backend is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "result.Adapter"})

	return nil
}

// Adapter exposes the per node result view of the task queue backend.
type Adapter struct {
	backend queue.Backend
	logger  log.Logger
}

// NewAdapter returns a new result adapter.
func NewAdapter(cfg AdapterConfig) (*Adapter, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Adapter{
		backend: cfg.Backend,
		logger:  cfg.Logger,
	}, nil
}

// Submit submits a task graph and returns the handle of the chain tail.
func (a *Adapter) Submit(ctx context.Context, graph model.TaskGraph, opts queue.SubmitOpts) (*queue.ResultHandle, error) {
	h, err := a.backend.Submit(ctx, graph, opts)
	if err != nil {
		return nil, err
	}
	if h == nil {
		return nil, fmt.Errorf("backend returned no result handle for %s", opts.TaskID)
	}

	a.logger.Debugf("Submitted task graph %s to queue %s", h.ID, opts.Queue)
	return h, nil
}

// Lookup gets the current result of a task node from the backend.
func (a *Adapter) Lookup(ctx context.Context, id string) (*Node, error) {
	st, err := a.backend.State(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("could not get task %s state: %w", id, err)
	}

	return &Node{state: *st}, nil
}

// Forget releases the backend-held result data of a task. Forgetting an already
// forgotten task is a no-op.
func (a *Adapter) Forget(ctx context.Context, id string) error {
	if err := a.backend.Forget(ctx, id); err != nil {
		return fmt.Errorf("could not forget task %s: %w", id, err)
	}
	return nil
}

// Cancel requests the cancellation of a task.
func (a *Adapter) Cancel(ctx context.Context, id string, terminate bool) error {
	if err := a.backend.Cancel(ctx, id, terminate); err != nil {
		return fmt.Errorf("could not cancel task %s: %w", id, err)
	}

	a.logger.Debugf("Cancel requested for task %s (terminate: %t)", id, terminate)
	return nil
}

// Node is the result view of a single task at lookup time.
type Node struct {
	state queue.TaskState
}

// IsReady returns true when the task has finished, successfully or not.
func (n *Node) IsReady() bool { return queue.IsReadyStatus(n.state.Status) }

// IsSuccessful returns true when the task succeeded. Only valid when ready.
func (n *Node) IsSuccessful() bool { return n.state.Status == queue.StatusSuccess }

// Status returns the backend status, empty when the backend doesn't know it.
func (n *Node) Status() string { return n.state.Status }

// Info returns the in-flight progress payload, nil when the task reported none.
func (n *Node) Info() map[string]any {
	if n.IsReady() || len(n.state.Info) == 0 {
		return nil
	}
	return n.state.Info
}

// Result returns the task result or a *TaskError with the error payload if the task failed.
func (n *Node) Result() (any, error) {
	if n.IsReady() && !n.IsSuccessful() {
		msg := n.state.Error
		if msg == "" {
			msg = n.state.Status
		}
		return nil, &TaskError{TaskID: n.state.ID, Message: msg}
	}

	return n.state.Result, nil
}

// ErrorMessage returns the string form of the task error payload, empty if it didn't fail.
func (n *Node) ErrorMessage() string {
	_, err := n.Result()
	if err == nil {
		return ""
	}
	return err.Error()
}
