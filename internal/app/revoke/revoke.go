package revoke

import (
	"context"
	"fmt"

	"github.com/slok/flowtrack/internal/log"
	"github.com/slok/flowtrack/internal/model"
	"github.com/slok/flowtrack/internal/tracker"
)

// ServiceConfig is the configuration for the revoke service.
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

// Service revokes running workflows.
type Service struct {
	tracker *tracker.Tracker
	logger  log.Logger
}

// NewService creates a new revoke service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		tracker: cfg.Tracker,
		logger:  cfg.Logger,
	}, nil
}

// Request represents the revoke request parameters.
type Request struct {
	Project string
	// ID is the workflow ID to revoke.
	ID string
	// Username revoking the workflow.
	Username string
}

// Run revokes a workflow and returns its history entry.
func (s *Service) Run(ctx context.Context, req Request) (*model.WorkflowRecord, error) {
	if req.Username == "" {
		return nil, fmt.Errorf("username is required: %w", model.ErrNotValid)
	}

	s.logger.Debugf("revoking workflow: %s", req.ID)

	if err := s.tracker.Revoke(ctx, req.Username, req.Project, req.ID); err != nil {
		return nil, fmt.Errorf("could not revoke workflow: %w", err)
	}

	return s.tracker.GetWorkflow(ctx, req.Project, req.ID)
}
