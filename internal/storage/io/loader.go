package io

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"

	"gopkg.in/yaml.v3"

	"github.com/slok/flowtrack/internal/model"
)

// WorkflowYAMLRepository loads workflow definitions from YAML files.
type WorkflowYAMLRepository struct {
	fs fs.FS
}

// NewWorkflowYAMLRepository creates a new YAML workflow repository.
func NewWorkflowYAMLRepository(filesystem fs.FS) *WorkflowYAMLRepository {
	return &WorkflowYAMLRepository{fs: filesystem}
}

// GetWorkflow loads a workflow definition from a YAML file, the original document is kept
// as the workflow description and the steps are expanded into the task graph.
func (r *WorkflowYAMLRepository) GetWorkflow(ctx context.Context, path string) (model.WorkflowDefinition, error) {
	data, err := fs.ReadFile(r.fs, path)
	if err != nil {
		return model.WorkflowDefinition{}, fmt.Errorf("reading workflow file: %w", err)
	}

	if ctx.Err() != nil {
		return model.WorkflowDefinition{}, ctx.Err()
	}

	var wf Workflow
	if err := yaml.Unmarshal(data, &wf); err != nil {
		return model.WorkflowDefinition{}, fmt.Errorf("parsing YAML: %w", err)
	}

	if err := wf.validate(); err != nil {
		return model.WorkflowDefinition{}, fmt.Errorf("invalid workflow: %w", err)
	}

	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return model.WorkflowDefinition{}, fmt.Errorf("parsing YAML: %w", err)
	}
	description, err := json.Marshal(raw)
	if err != nil {
		return model.WorkflowDefinition{}, fmt.Errorf("could not convert workflow to JSON: %w", err)
	}

	return model.WorkflowDefinition{
		Name:        wf.Name,
		Description: description,
		Graph:       wf.toModel(),
	}, nil
}

// Workflow represents the YAML structure of a workflow.
type Workflow struct {
	Name  string `yaml:"name"`
	Steps []Step `yaml:"steps"`
}

// Step represents a workflow step, a single task or a parallel group of tasks.
type Step struct {
	Name  string         `yaml:"name"`
	Task  string         `yaml:"task"`
	Args  map[string]any `yaml:"args"`
	Group []Task         `yaml:"group"`
}

// Task represents a task of a parallel group.
type Task struct {
	Task string         `yaml:"task"`
	Args map[string]any `yaml:"args"`
}

func (w Workflow) validate() error {
	if w.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(w.Steps) == 0 {
		return fmt.Errorf("at least one step is required")
	}

	for i, s := range w.Steps {
		if s.Task != "" && len(s.Group) > 0 {
			return fmt.Errorf("step %d: task and group can't be set at the same time", i)
		}
		if s.Task == "" && len(s.Group) == 0 {
			return fmt.Errorf("step %d: task or group is required", i)
		}
		if len(s.Group) > 0 && len(s.Args) > 0 {
			return fmt.Errorf("step %d: args must be set on the group tasks", i)
		}
		for j, t := range s.Group {
			if t.Task == "" {
				return fmt.Errorf("step %d: group task %d: task is required", i, j)
			}
		}
	}

	return nil
}

func (w Workflow) toModel() model.TaskGraph {
	g := model.TaskGraph{Steps: make([]model.TaskStep, 0, len(w.Steps))}
	for _, s := range w.Steps {
		step := model.TaskStep{Name: s.Name}
		if s.Task != "" {
			step.Task = &model.TaskSignature{Name: s.Task, Args: s.Args}
		}
		for _, t := range s.Group {
			step.Group = append(step.Group, model.TaskSignature{Name: t.Task, Args: t.Args})
		}
		g.Steps = append(g.Steps, step)
	}

	return g
}
