// Package tracker launches workflows on the task queue and tracks them until
// they finish, keeping the workflow history up to date.
//
// The task state lives in three places: the task queue backend (live), the
// process cache and the workflow history storage (durable). The tracker trusts
// the cache for the workflows it knows are running, falls back to the storage
// otherwise and always asks the backend for the live state of each task.
package tracker

import (
	"context"
	"fmt"

	"github.com/slok/flowtrack/internal/cache"
	"github.com/slok/flowtrack/internal/conventions"
	"github.com/slok/flowtrack/internal/log"
	"github.com/slok/flowtrack/internal/model"
	"github.com/slok/flowtrack/internal/queue"
	"github.com/slok/flowtrack/internal/result"
	"github.com/slok/flowtrack/internal/storage"
)

// TrackerConfig is the configuration for the workflow tracker.
type TrackerConfig struct {
	Repository storage.HistoryRepository
	Backend    queue.Backend
	// Cache is the process cache of task trees, a new one is created if missing.
	Cache *cache.Cache
	// Queue is the worker queue where workflows are submitted.
	Queue  string
	Logger log.Logger
}

func (c *TrackerConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}

	if c.Backend == nil {
		return fmt.Errorf("backend is required")
	}

	if c.Cache == nil {
		c.Cache = cache.New()
	}

	if c.Queue == "" {
		c.Queue = conventions.DefaultQueue
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "tracker.Tracker"})

	return nil
}

// Tracker launches, polls, lists and revokes workflows.
type Tracker struct {
	repo    storage.HistoryRepository
	results *result.Adapter
	cache   *cache.Cache
	queue   string
	logger  log.Logger
}

// NewTracker creates a new workflow tracker.
func NewTracker(cfg TrackerConfig) (*Tracker, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	results, err := result.NewAdapter(result.AdapterConfig{
		Backend: cfg.Backend,
		Logger:  cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create result adapter: %w", err)
	}

	return &Tracker{
		repo:    cfg.Repository,
		results: results,
		cache:   cfg.Cache,
		queue:   cfg.Queue,
		logger:  cfg.Logger,
	}, nil
}

// resolveTree returns the task tree of a workflow, from the cache if present or from
// the storage otherwise. Storage trees of running workflows are cached. When the
// storage reports the workflow finished, finished is true.
func (t *Tracker) resolveTree(ctx context.Context, project, id string) (tasks model.TaskTree, finished bool, err error) {
	if tasks, ok := t.cache.Get(project, id); ok {
		return tasks, false, nil
	}

	w, err := t.repo.GetWorkflow(ctx, project, id)
	if err != nil {
		return nil, false, fmt.Errorf("could not get workflow: %w", err)
	}

	if w.Finished() {
		return w.Tasks, true, nil
	}

	t.cache.Set(project, id, w.Tasks)
	return w.Tasks, false, nil
}
