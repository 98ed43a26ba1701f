package status

import (
	"context"
	"fmt"

	"github.com/slok/flowtrack/internal/log"
	"github.com/slok/flowtrack/internal/model"
	"github.com/slok/flowtrack/internal/tracker"
)

// ServiceConfig is the configuration for the status service.
type ServiceConfig struct {
	Tracker *tracker.Tracker
	Logger  log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Tracker == nil {
		return fmt.Errorf("tracker is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}

	return nil
}

// Service retrieves the live status of a workflow.
type Service struct {
	tracker *tracker.Tracker
	logger  log.Logger
}

// NewService creates a new status service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		tracker: cfg.Tracker,
		logger:  cfg.Logger,
	}, nil
}

// Request represents the status request parameters.
type Request struct {
	Project string
	// ID is the workflow ID to query.
	ID string
}

// Run polls the workflow and returns its history entry with the polled task tree.
func (s *Service) Run(ctx context.Context, req Request) (*model.WorkflowRecord, error) {
	s.logger.Debugf("getting status for workflow: %s", req.ID)

	tasks, err := s.tracker.Poll(ctx, req.Project, req.ID)
	if err != nil {
		return nil, fmt.Errorf("could not poll workflow: %w", err)
	}

	w, err := s.tracker.GetWorkflow(ctx, req.Project, req.ID)
	if err != nil {
		return nil, err
	}
	w.Tasks = tasks

	return w, nil
}
