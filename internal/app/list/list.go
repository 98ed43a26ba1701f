package list

import (
	"context"
	"fmt"
	"time"

	"github.com/slok/flowtrack/internal/log"
	"github.com/slok/flowtrack/internal/model"
	"github.com/slok/flowtrack/internal/tracker"
)

// ServiceConfig is the configuration for the list service.
type ServiceConfig struct {
	Tracker *tracker.Tracker
	TimeNow func() time.Time
	Logger  log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Tracker == nil {
		return fmt.Errorf("tracker is required")
	}

	if c.TimeNow == nil {
		c.TimeNow = time.Now
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}

	return nil
}

// Service lists workflows with optional filtering.
type Service struct {
	tracker *tracker.Tracker
	timeNow func() time.Time
	logger  log.Logger
}

// NewService creates a new list service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		tracker: cfg.Tracker,
		timeNow: cfg.TimeNow,
		logger:  cfg.Logger,
	}, nil
}

// Request represents the list request parameters.
type Request struct {
	Project string
	Filter  model.WorkflowFilter
	// Since only lists the workflows created in this last period, 0 means all.
	Since time.Duration
	// Limit is the max number of workflows, 0 means no limit.
	Limit int
	// Live polls every running workflow, ignoring the rest of the filters.
	Live bool
}

// Run lists the workflows of a project, newest first.
func (s *Service) Run(ctx context.Context, req Request) ([]model.WorkflowRecord, error) {
	if req.Live {
		s.logger.Debugf("polling all workflows of project %s", req.Project)
		ws, err := s.tracker.PollAll(ctx, req.Project)
		if err != nil {
			return nil, fmt.Errorf("could not poll workflows: %w", err)
		}
		return ws, nil
	}

	if req.Limit < 0 {
		return nil, fmt.Errorf("limit can't be negative: %w", model.ErrNotValid)
	}

	opts := model.ListOpts{Filter: req.Filter, Limit: req.Limit}
	if req.Since > 0 {
		minCreated := s.timeNow().Add(-req.Since)
		opts.MinCreated = &minCreated
	}

	s.logger.Debugf("listing workflows with filter: %s", req.Filter)
	ws, err := s.tracker.ListWorkflows(ctx, req.Project, opts)
	if err != nil {
		return nil, err
	}

	s.logger.Debugf("found %d workflows", len(ws))
	return ws, nil
}
