package storage

import (
	"context"
	"encoding/json"

	"github.com/slok/flowtrack/internal/model"
)

// HistoryRepository is the durable workflow history, scoped per project.
type HistoryRepository interface {
	// InsertWorkflow creates the history entry of a new workflow and returns its ID.
	InsertWorkflow(ctx context.Context, project string, description json.RawMessage, launchedBy string) (string, error)
	// UpdateTasks stores the task tree of a submitted workflow.
	UpdateTasks(ctx context.Context, project, id string, tasks model.TaskTree) error
	// FinalizeWorkflow sets the workflow outcome if it's not finished yet. Returns false
	// when the workflow was already finished, in that case nothing changes.
	FinalizeWorkflow(ctx context.Context, project, id string, succeeded bool, messages []string, tasks model.TaskTree) (bool, error)
	// AbortWorkflow marks an unfinished workflow as failed and aborted by a user, storing the
	// revoked task tree when not nil. Returns false when the workflow was already finished, in
	// that case nothing changes.
	AbortWorkflow(ctx context.Context, project, id, by string, tasks model.TaskTree) (bool, error)
	// GetWorkflow returns a workflow.
	GetWorkflow(ctx context.Context, project, id string) (*model.WorkflowRecord, error)
	// ListActiveWorkflows returns the workflows that have not finished nor been aborted, newest first.
	ListActiveWorkflows(ctx context.Context, project string) ([]model.WorkflowRecord, error)
	// ListWorkflows returns the workflows matching the options, newest first.
	ListWorkflows(ctx context.Context, project string, opts model.ListOpts) ([]model.WorkflowRecord, error)
}
