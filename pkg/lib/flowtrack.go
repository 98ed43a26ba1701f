package lib

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/slok/flowtrack/internal/conventions"
	"github.com/slok/flowtrack/internal/log"
	"github.com/slok/flowtrack/internal/model"
	"github.com/slok/flowtrack/internal/queue/builtin"
	"github.com/slok/flowtrack/internal/queue/fake"
	"github.com/slok/flowtrack/internal/storage"
	"github.com/slok/flowtrack/internal/storage/memory"
	"github.com/slok/flowtrack/internal/storage/sqlite"
	"github.com/slok/flowtrack/internal/tracker"
)

// Config configures the SDK client.
//
// All fields are optional. An empty Config{} stores the history in
// ~/.flowtrack/flowtrack.db and only knows the built-in tasks.
type Config struct {
	// DBPath is the SQLite database path.
	// Default: ~/.flowtrack/flowtrack.db.
	DBPath string

	// InMemory keeps the history in memory instead of SQLite.
	InMemory bool

	// Handlers are the tasks the embedded workers can run, on top of the
	// built-in ones (echo, sleep, fail, count).
	Handlers map[string]TaskHandler

	// Workers is the number of tasks that can run at the same time. Default: 4.
	Workers int

	// Queue is the worker queue the workflows are submitted to. Default: "workers".
	Queue string

	// Logger receives structured log output from the SDK.
	// Default: noop (silent).
	Logger log.Logger
}

func (c *Config) defaults() error {
	if c.DBPath == "" && !c.InMemory {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("could not get user home dir: %w", err)
		}
		c.DBPath = conventions.DBPath(filepath.Join(home, conventions.DefaultDataDir))
	}

	if c.Queue == "" {
		c.Queue = conventions.DefaultQueue
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}

	return nil
}

// Client is the main SDK entry point to launch and track workflows.
//
// Create a Client with [New] and release its resources with [Client.Close].
type Client struct {
	tracker *tracker.Tracker
	closeFn func() error
}

// New creates a new SDK client.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	var (
		repo      storage.HistoryRepository
		closeRepo = func() error { return nil }
	)
	if cfg.InMemory {
		r, err := memory.NewRepository(memory.RepositoryConfig{Logger: cfg.Logger})
		if err != nil {
			return nil, fmt.Errorf("could not create repository: %w", err)
		}
		repo = r
	} else {
		r, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
			DBPath: cfg.DBPath,
			Logger: cfg.Logger,
		})
		if err != nil {
			return nil, fmt.Errorf("could not create repository: %w", err)
		}
		repo = r
		closeRepo = r.Close
	}

	handlers := builtin.Registry()
	for name, h := range cfg.Handlers {
		handlers[name] = h
	}

	backend, err := fake.NewBackend(fake.BackendConfig{
		Handlers: handlers,
		Workers:  cfg.Workers,
		Queues:   []string{cfg.Queue},
		Logger:   cfg.Logger,
	})
	if err != nil {
		_ = closeRepo()
		return nil, fmt.Errorf("could not create task queue backend: %w", err)
	}

	t, err := tracker.NewTracker(tracker.TrackerConfig{
		Repository: repo,
		Backend:    backend,
		Queue:      cfg.Queue,
		Logger:     cfg.Logger,
	})
	if err != nil {
		_ = backend.Close()
		_ = closeRepo()
		return nil, fmt.Errorf("could not create tracker: %w", err)
	}

	return &Client{
		tracker: t,
		closeFn: func() error {
			if err := backend.Close(); err != nil {
				return err
			}
			return closeRepo()
		},
	}, nil
}

// Close stops the embedded workers and releases the storage.
// After Close returns, the client must not be used.
func (c *Client) Close() error {
	if c.closeFn != nil {
		return c.closeFn()
	}
	return nil
}

// LaunchWorkflowOpts are the options to launch a workflow.
type LaunchWorkflowOpts struct {
	Project string
	// Steps run in order, a step starts when the previous one succeeded.
	Steps []Step
	// Description is stored as is in the history, optional.
	Description json.RawMessage
	// Author launching the workflow, optional.
	Author string
}

// LaunchWorkflow records and launches a workflow, returns its ID.
//
// Returns [ErrNotValid] if the workflow has no steps or a step is malformed.
func (c *Client) LaunchWorkflow(ctx context.Context, opts LaunchWorkflowOpts) (string, error) {
	id, err := c.tracker.Launch(ctx, tracker.LaunchRequest{
		Project:     opts.Project,
		Graph:       toInternalGraph(opts.Steps),
		Description: opts.Description,
		Author:      opts.Author,
	})
	if err != nil {
		return "", mapError(err)
	}

	return id, nil
}

// PollTaskStatus refreshes and returns the task tree of a workflow. The workflow
// outcome is recorded when its last step finishes.
func (c *Client) PollTaskStatus(ctx context.Context, project, id string) (TaskTree, error) {
	tasks, err := c.tracker.Poll(ctx, project, id)
	if err != nil {
		return nil, mapError(err)
	}

	return tasks, nil
}

// GetActiveTaskIDs returns the IDs of the running workflows, newest first.
func (c *Client) GetActiveTaskIDs(ctx context.Context, project string) ([]string, error) {
	ids, err := c.tracker.ListActiveIDs(ctx, project)
	if err != nil {
		return nil, mapError(err)
	}

	return ids, nil
}

// GetTasksOpts are the options to list workflows.
type GetTasksOpts struct {
	// Filter defaults to both.
	Filter WorkflowFilter
	// MinCreated only returns the workflows created after this time.
	MinCreated *time.Time
	// Limit is the max number of workflows, 0 means no limit.
	Limit int
}

// GetTasks returns the workflows of a project, newest first.
func (c *Client) GetTasks(ctx context.Context, project string, opts GetTasksOpts) ([]Workflow, error) {
	filter, err := model.ParseWorkflowFilter(string(opts.Filter))
	if err != nil {
		return nil, mapError(err)
	}

	ws, err := c.tracker.ListWorkflows(ctx, project, model.ListOpts{
		Filter:     filter,
		MinCreated: opts.MinCreated,
		Limit:      opts.Limit,
	})
	if err != nil {
		return nil, mapError(err)
	}

	return fromInternalWorkflowList(ws), nil
}

// PollAllTaskStatuses returns every workflow of a project with its refreshed task tree.
func (c *Client) PollAllTaskStatuses(ctx context.Context, project string) ([]Workflow, error) {
	ws, err := c.tracker.PollAll(ctx, project)
	if err != nil {
		return nil, mapError(err)
	}

	return fromInternalWorkflowList(ws), nil
}

// RevokeTask cancels all the tasks of a workflow and marks it as aborted by the user.
func (c *Client) RevokeTask(ctx context.Context, username, project, id string) error {
	return mapError(c.tracker.Revoke(ctx, username, project, id))
}

// GetWorkflow returns the history entry of a workflow.
func (c *Client) GetWorkflow(ctx context.Context, project, id string) (*Workflow, error) {
	w, err := c.tracker.GetWorkflow(ctx, project, id)
	if err != nil {
		return nil, mapError(err)
	}

	wf := fromInternalWorkflow(*w)
	return &wf, nil
}
