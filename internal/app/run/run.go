package run

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/slok/flowtrack/internal/log"
	"github.com/slok/flowtrack/internal/model"
	"github.com/slok/flowtrack/internal/tracker"
)

// WorkflowLoader loads workflow definitions.
type WorkflowLoader interface {
	GetWorkflow(ctx context.Context, path string) (model.WorkflowDefinition, error)
}

// ServiceConfig is the configuration for the run service.
type ServiceConfig struct {
	Tracker *tracker.Tracker
	Loader  WorkflowLoader
	// PollInterval is the interval between polls when following a workflow.
	PollInterval time.Duration
	Logger       log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Tracker == nil {
		return fmt.Errorf("tracker is required")
	}

	if c.Loader == nil {
		return fmt.Errorf("loader is required")
	}

	if c.PollInterval <= 0 {
		c.PollInterval = 500 * time.Millisecond
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}

	return nil
}

// Service launches workflows and optionally follows them until they finish.
type Service struct {
	tracker      *tracker.Tracker
	loader       WorkflowLoader
	pollInterval time.Duration
	logger       log.Logger
}

// NewService creates a new run service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		tracker:      cfg.Tracker,
		loader:       cfg.Loader,
		pollInterval: cfg.PollInterval,
		logger:       cfg.Logger,
	}, nil
}

// Request represents the run request parameters.
type Request struct {
	Project string
	// WorkflowPath is the workflow definition file.
	WorkflowPath string
	// Author launching the workflow.
	Author string
	// Follow polls the workflow until it finishes.
	Follow bool
	// OnPoll is called with every polled tree while following.
	OnPoll func(tasks model.TaskTree)
}

// Run launches a workflow. When following, the workflow is polled until it finishes and
// revoked if the context is cancelled before.
func (s *Service) Run(ctx context.Context, req Request) (*model.WorkflowRecord, error) {
	def, err := s.loader.GetWorkflow(ctx, req.WorkflowPath)
	if err != nil {
		return nil, fmt.Errorf("could not load workflow: %w", err)
	}

	id, err := s.tracker.Launch(ctx, tracker.LaunchRequest{
		Project:     req.Project,
		Graph:       def.Graph,
		Description: def.Description,
		Author:      req.Author,
	})
	if err != nil {
		return nil, fmt.Errorf("could not launch workflow: %w", err)
	}
	s.logger.Infof("launched workflow %q: %s", def.Name, id)

	if !req.Follow {
		return s.tracker.GetWorkflow(ctx, req.Project, id)
	}

	if err := s.follow(ctx, req, id); err != nil {
		return nil, err
	}

	return s.tracker.GetWorkflow(ctx, req.Project, id)
}

func (s *Service) follow(ctx context.Context, req Request, id string) error {
	t := time.NewTicker(s.pollInterval)
	defer t.Stop()

	for {
		tasks, finished, err := s.tracker.PollWorkflow(ctx, req.Project, id)
		if err != nil {
			return fmt.Errorf("could not poll workflow: %w", err)
		}
		if req.OnPoll != nil {
			req.OnPoll(tasks)
		}

		// Revoked workflows finish in the history without their tasks finishing.
		if finished {
			return nil
		}

		select {
		case <-ctx.Done():
			s.logger.Warningf("workflow %s interrupted, revoking", id)
			// The caller context is gone, revoke with a fresh one.
			if err := s.tracker.Revoke(context.WithoutCancel(ctx), req.Author, req.Project, id); err != nil {
				return errors.Join(ctx.Err(), fmt.Errorf("could not revoke workflow: %w", err))
			}
			return ctx.Err()
		case <-t.C:
		}
	}
}
