package active

import (
	"context"
	"fmt"

	"github.com/slok/flowtrack/internal/log"
	"github.com/slok/flowtrack/internal/tracker"
)

// ServiceConfig is the configuration for the active service.
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

// Service lists the running workflow IDs.
type Service struct {
	tracker *tracker.Tracker
	logger  log.Logger
}

// NewService creates a new active service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		tracker: cfg.Tracker,
		logger:  cfg.Logger,
	}, nil
}

// Request represents the active request parameters.
type Request struct {
	Project string
}

// Run returns the IDs of the running workflows, newest first.
func (s *Service) Run(ctx context.Context, req Request) ([]string, error) {
	ids, err := s.tracker.ListActiveIDs(ctx, req.Project)
	if err != nil {
		return nil, err
	}

	s.logger.Debugf("found %d active workflows", len(ids))
	return ids, nil
}
