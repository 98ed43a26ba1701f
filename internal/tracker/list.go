package tracker

import (
	"context"
	"errors"
	"fmt"

	"github.com/slok/flowtrack/internal/model"
)

// ListActiveIDs returns the IDs of the running workflows, newest first, caching their trees.
func (t *Tracker) ListActiveIDs(ctx context.Context, project string) ([]string, error) {
	ws, err := t.repo.ListActiveWorkflows(ctx, project)
	if err != nil {
		return nil, fmt.Errorf("could not list active workflows: %w", err)
	}

	ids := make([]string, 0, len(ws))
	for _, w := range ws {
		t.cache.Set(project, w.ID, w.Tasks)
		ids = append(ids, w.ID)
	}

	return ids, nil
}

// ListWorkflows returns the workflows of a project, newest first.
func (t *Tracker) ListWorkflows(ctx context.Context, project string, opts model.ListOpts) ([]model.WorkflowRecord, error) {
	ws, err := t.repo.ListWorkflows(ctx, project, opts)
	if err != nil {
		return nil, fmt.Errorf("could not list workflows: %w", err)
	}

	return ws, nil
}

// PollAll returns every workflow of the project with its live task tree. Finished
// workflows are returned as stored, running ones are polled (and finalized if they
// finished in the meantime).
func (t *Tracker) PollAll(ctx context.Context, project string) ([]model.WorkflowRecord, error) {
	ws, err := t.ListWorkflows(ctx, project, model.ListOpts{Filter: model.WorkflowFilterBoth})
	if err != nil {
		return nil, err
	}

	for i, w := range ws {
		if w.Finished() {
			continue
		}

		tasks, finished, err := t.PollWorkflow(ctx, project, w.ID)
		if err != nil {
			return nil, fmt.Errorf("could not poll workflow %s: %w", w.ID, err)
		}

		// Get the outcome if it finished in the meantime.
		if finished {
			nw, err := t.repo.GetWorkflow(ctx, project, w.ID)
			switch {
			case errors.Is(err, model.ErrNotFound):
			case err != nil:
				return nil, fmt.Errorf("could not get workflow %s: %w", w.ID, err)
			default:
				nw.Tasks = tasks
				ws[i] = *nw
				continue
			}
		}

		ws[i].Tasks = tasks
	}

	return ws, nil
}

// GetWorkflow returns the history entry of a workflow.
func (t *Tracker) GetWorkflow(ctx context.Context, project, id string) (*model.WorkflowRecord, error) {
	w, err := t.repo.GetWorkflow(ctx, project, id)
	if err != nil {
		return nil, fmt.Errorf("could not get workflow: %w", err)
	}

	return w, nil
}
