package tracker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/slok/flowtrack/internal/log"
	"github.com/slok/flowtrack/internal/model"
	"github.com/slok/flowtrack/internal/queue"
	"github.com/slok/flowtrack/internal/tree"
)

// LaunchRequest represents the workflow launch parameters.
type LaunchRequest struct {
	Project string
	// Graph is the task chain to run.
	Graph model.TaskGraph
	// Description is the original, unexpanded workflow, stored as is.
	Description json.RawMessage
	// Author launching the workflow, empty for system launched workflows.
	Author string
}

func (r LaunchRequest) validate() error {
	if r.Project == "" {
		return fmt.Errorf("project is required: %w", model.ErrNotValid)
	}

	return r.Graph.Validate()
}

// Launch records a new workflow in the history, submits its task graph to the task queue
// using the history ID as the root task ID and returns the ID.
//
// If the submission fails the history entry stays without tasks and never finishes.
func (t *Tracker) Launch(ctx context.Context, req LaunchRequest) (string, error) {
	if err := req.validate(); err != nil {
		return "", fmt.Errorf("invalid request: %w", err)
	}

	id, err := t.repo.InsertWorkflow(ctx, req.Project, req.Description, req.Author)
	if err != nil {
		return "", fmt.Errorf("could not create workflow history: %w", err)
	}
	logger := t.logger.WithValues(log.Kv{"project": req.Project, "workflow": id})

	h, err := t.results.Submit(ctx, req.Graph, queue.SubmitOpts{
		TaskID:       id,
		Queue:        t.queue,
		RetainResult: true,
	})
	if err != nil {
		logger.Warningf("Workflow submission failed, history entry left unfinished")
		return "", fmt.Errorf("could not submit workflow %s: %w", id, err)
	}

	tasks := tree.Extract(h)
	if err := tree.Name(tasks, req.Graph); err != nil {
		return "", fmt.Errorf("could not name workflow %s tasks: %w", id, err)
	}

	if err := t.repo.UpdateTasks(ctx, req.Project, id, tasks); err != nil {
		return "", fmt.Errorf("could not store workflow %s tasks: %w", id, err)
	}

	t.cache.Set(req.Project, id, tasks)

	logger.Infof("Workflow launched with %d steps", len(tasks))
	return id, nil
}
