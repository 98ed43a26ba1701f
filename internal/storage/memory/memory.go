package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/slok/flowtrack/internal/log"
	"github.com/slok/flowtrack/internal/model"
)

// RepositoryConfig is the configuration for the memory repository.
type RepositoryConfig struct {
	TimeNow func() time.Time
	Logger  log.Logger
}

func (c *RepositoryConfig) defaults() error {
	if c.TimeNow == nil {
		c.TimeNow = time.Now
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.Memory"})
	return nil
}

// Repository is an in-memory implementation of storage.HistoryRepository.
type Repository struct {
	workflows map[string]model.WorkflowRecord
	mu        sync.RWMutex
	timeNow   func() time.Time
	logger    log.Logger
}

// NewRepository creates a new memory repository.
func NewRepository(cfg RepositoryConfig) (*Repository, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Repository{
		workflows: make(map[string]model.WorkflowRecord),
		timeNow:   cfg.TimeNow,
		logger:    cfg.Logger,
	}, nil
}

func key(project, id string) string { return project + "/" + id }

// InsertWorkflow creates the history entry of a new workflow.
func (r *Repository) InsertWorkflow(ctx context.Context, project string, description json.RawMessage, launchedBy string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := ulid.Make().String()
	r.workflows[key(project, id)] = model.WorkflowRecord{
		ID:          id,
		Project:     project,
		Description: slices.Clone(description),
		LaunchedBy:  launchedBy,
		TimeCreated: r.timeNow().UTC(),
		Messages:    []string{},
	}

	r.logger.Debugf("Inserted workflow %s in project %s", id, project)
	return id, nil
}

// UpdateTasks stores the task tree of a workflow.
func (r *Repository) UpdateTasks(ctx context.Context, project, id string, tasks model.TaskTree) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, ok := r.workflows[key(project, id)]
	if !ok {
		return fmt.Errorf("workflow %s: %w", id, model.ErrNotFound)
	}
	w.Tasks = tasks.Clone()
	r.workflows[key(project, id)] = w

	return nil
}

// FinalizeWorkflow sets the workflow outcome only if it's not finished yet.
func (r *Repository) FinalizeWorkflow(ctx context.Context, project, id string, succeeded bool, messages []string, tasks model.TaskTree) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, ok := r.workflows[key(project, id)]
	if !ok {
		return false, fmt.Errorf("workflow %s: %w", id, model.ErrNotFound)
	}
	if w.Finished() {
		return false, nil
	}

	now := r.timeNow().UTC()
	w.TimeFinished = &now
	w.Succeeded = &succeeded
	w.Messages = append([]string{}, messages...)
	w.Tasks = tasks.Clone()
	r.workflows[key(project, id)] = w

	r.logger.Debugf("Finalized workflow %s (succeeded: %t)", id, succeeded)
	return true, nil
}

// AbortWorkflow marks an unfinished workflow as aborted. A nil tree keeps the stored one.
func (r *Repository) AbortWorkflow(ctx context.Context, project, id, by string, tasks model.TaskTree) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, ok := r.workflows[key(project, id)]
	if !ok {
		return false, fmt.Errorf("workflow %s: %w", id, model.ErrNotFound)
	}
	if w.Finished() {
		return false, nil
	}

	now := r.timeNow().UTC()
	failed := false
	w.TimeFinished = &now
	w.Succeeded = &failed
	w.AbortedBy = by
	if tasks != nil {
		w.Tasks = tasks.Clone()
	}
	r.workflows[key(project, id)] = w

	r.logger.Debugf("Aborted workflow %s by %q", id, by)
	return true, nil
}

// GetWorkflow retrieves a workflow by ID.
func (r *Repository) GetWorkflow(ctx context.Context, project, id string) (*model.WorkflowRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	w, ok := r.workflows[key(project, id)]
	if !ok {
		return nil, fmt.Errorf("workflow %s: %w", id, model.ErrNotFound)
	}

	c := copyRecord(w)
	return &c, nil
}

// ListActiveWorkflows returns the workflows not finished nor aborted, newest first.
func (r *Repository) ListActiveWorkflows(ctx context.Context, project string) ([]model.WorkflowRecord, error) {
	return r.list(project, 0, func(w model.WorkflowRecord) bool {
		return !w.Finished() && w.Succeeded == nil && !w.Aborted()
	}), nil
}

// ListWorkflows returns the workflows matching the options, newest first.
func (r *Repository) ListWorkflows(ctx context.Context, project string, opts model.ListOpts) ([]model.WorkflowRecord, error) {
	switch opts.Filter {
	case model.WorkflowFilterRunning, model.WorkflowFilterFinished, model.WorkflowFilterBoth, "":
	default:
		return nil, fmt.Errorf("unknown filter %q: %w", opts.Filter, model.ErrNotValid)
	}

	return r.list(project, opts.Limit, func(w model.WorkflowRecord) bool {
		if opts.Filter == model.WorkflowFilterRunning && w.Finished() {
			return false
		}
		if opts.Filter == model.WorkflowFilterFinished && !w.Finished() {
			return false
		}
		if opts.MinCreated != nil && !w.TimeCreated.After(*opts.MinCreated) {
			return false
		}
		return true
	}), nil
}

func (r *Repository) list(project string, limit int, match func(w model.WorkflowRecord) bool) []model.WorkflowRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	workflows := []model.WorkflowRecord{}
	for _, w := range r.workflows {
		if w.Project == project && match(w) {
			workflows = append(workflows, copyRecord(w))
		}
	}

	slices.SortFunc(workflows, func(a, b model.WorkflowRecord) int {
		if c := b.TimeCreated.Compare(a.TimeCreated); c != 0 {
			return c
		}
		return strings.Compare(b.ID, a.ID)
	})

	if limit > 0 && len(workflows) > limit {
		workflows = workflows[:limit]
	}

	return workflows
}

func copyRecord(w model.WorkflowRecord) model.WorkflowRecord {
	c := w
	c.Description = slices.Clone(w.Description)
	c.Messages = append([]string{}, w.Messages...)
	c.Tasks = w.Tasks.Clone()
	if w.TimeFinished != nil {
		t := *w.TimeFinished
		c.TimeFinished = &t
	}
	if w.Succeeded != nil {
		s := *w.Succeeded
		c.Succeeded = &s
	}
	return c
}
