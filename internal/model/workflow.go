package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// WorkflowRecord is the durable history entry of a submitted workflow.
type WorkflowRecord struct {
	// ID is also the task ID of the chain tail in the task queue.
	ID      string
	Project string
	// Description is the original, unexpanded workflow. It is stored for replay
	// and audit only, never interpreted.
	Description json.RawMessage
	// LaunchedBy is empty for system launched workflows.
	LaunchedBy   string
	AbortedBy    string
	TimeCreated  time.Time
	TimeFinished *time.Time
	// Succeeded is nil while running.
	Succeeded *bool
	Messages  []string
	Tasks     TaskTree
}

// Finished returns true when the workflow has a terminal outcome.
func (w WorkflowRecord) Finished() bool { return w.TimeFinished != nil }

// Aborted returns true when the workflow was revoked.
func (w WorkflowRecord) Aborted() bool { return w.AbortedBy != "" }

// WorkflowFilter selects workflows by their running state.
type WorkflowFilter string

const (
	WorkflowFilterRunning  WorkflowFilter = "running"
	WorkflowFilterFinished WorkflowFilter = "finished"
	WorkflowFilterBoth     WorkflowFilter = "both"
)

// ParseWorkflowFilter parses a filter in a case insensitive way, empty means both.
func ParseWorkflowFilter(s string) (WorkflowFilter, error) {
	f := WorkflowFilter(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case "":
		return WorkflowFilterBoth, nil
	case WorkflowFilterRunning, WorkflowFilterFinished, WorkflowFilterBoth:
		return f, nil
	default:
		return "", fmt.Errorf("invalid workflow filter %q (must be: running, finished, both): %w", s, ErrNotValid)
	}
}

// ListOpts are the options to list workflow history.
type ListOpts struct {
	Filter WorkflowFilter
	// MinCreated, when set, only returns workflows created after it.
	MinCreated *time.Time
	// Limit bounds the number of results when greater than zero.
	Limit int
}

// WorkflowDefinition is a workflow ready to be launched: the declarative description
// and the task graph expanded from it.
type WorkflowDefinition struct {
	Name        string
	Description json.RawMessage
	Graph       TaskGraph
}
