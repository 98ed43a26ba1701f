package model

import (
	"fmt"
)

// TaskSignature is a single task invocation.
type TaskSignature struct {
	Name string
	Args map[string]any
}

// TaskStep is a chain step. Exactly one of Task or Group is set.
type TaskStep struct {
	// Name is optional and overrides the declared task-type name of the step.
	Name  string
	Task  *TaskSignature
	Group []TaskSignature
}

// IsGroup returns true if the step fans out into a parallel group.
func (s TaskStep) IsGroup() bool { return s.Task == nil && len(s.Group) > 0 }

// TaskGraph is the task chain submitted to the task queue for a workflow.
// Every step depends on all the previous ones.
type TaskGraph struct {
	Steps []TaskStep
}

// StepName returns the declared task-type name of the step at the given position.
func (g TaskGraph) StepName(i int) string {
	if i < 0 || i >= len(g.Steps) {
		return ""
	}

	s := g.Steps[i]
	switch {
	case s.Name != "":
		return s.Name
	case s.Task != nil:
		return s.Task.Name
	default:
		return "group"
	}
}

// Validate checks the graph can be submitted.
func (g TaskGraph) Validate() error {
	if len(g.Steps) == 0 {
		return fmt.Errorf("task graph requires at least one step: %w", ErrNotValid)
	}

	for i, s := range g.Steps {
		switch {
		case s.Task != nil && len(s.Group) > 0:
			return fmt.Errorf("step %d can't be a task and a group at the same time: %w", i, ErrNotValid)
		case s.Task == nil && s.Group == nil:
			return fmt.Errorf("step %d requires a task or a group: %w", i, ErrNotValid)
		case s.Task == nil && len(s.Group) == 0:
			return fmt.Errorf("step %d group can't be empty: %w", i, ErrNotValid)
		}

		if s.Task != nil && s.Task.Name == "" {
			return fmt.Errorf("step %d task name is required: %w", i, ErrNotValid)
		}
		for j, t := range s.Group {
			if t.Name == "" {
				return fmt.Errorf("step %d group task %d name is required: %w", i, j, ErrNotValid)
			}
		}
	}

	return nil
}
