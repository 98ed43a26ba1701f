package lib

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/slok/flowtrack/internal/model"
	"github.com/slok/flowtrack/internal/queue"
)

var (
	// ErrNotFound is returned when a workflow does not exist.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when a task ID is already in use.
	ErrAlreadyExists = errors.New("already exists")
	// ErrNotValid is returned when the input is invalid.
	ErrNotValid = errors.New("not valid")
)

// TaskHandler runs a task on the embedded workers.
type TaskHandler = queue.Handler

// TaskContext is the task information received by a [TaskHandler].
type TaskContext = queue.TaskContext

// TaskNode is a workflow step or a group child with its last known state.
type TaskNode = model.TaskNode

// TaskTree is the ordered list of workflow steps, earliest first.
type TaskTree = model.TaskTree

// Task statuses reported on [TaskNode].Status.
const (
	StatusPending  = queue.StatusPending
	StatusStarted  = queue.StatusStarted
	StatusProgress = queue.StatusProgress
	StatusSuccess  = queue.StatusSuccess
	StatusFailure  = queue.StatusFailure
	StatusRevoked  = queue.StatusRevoked
)

// Task is a single task invocation.
type Task struct {
	// Name is the registered handler name.
	Name string
	Args map[string]any
}

// Step is one step of a workflow chain: a single task or a parallel group.
type Step struct {
	// Name is optional, the task name is used if missing.
	Name  string
	Task  *Task
	Group []Task
}

// WorkflowFilter selects workflows by their running state.
type WorkflowFilter string

const (
	WorkflowFilterRunning  WorkflowFilter = WorkflowFilter(model.WorkflowFilterRunning)
	WorkflowFilterFinished WorkflowFilter = WorkflowFilter(model.WorkflowFilterFinished)
	WorkflowFilterBoth     WorkflowFilter = WorkflowFilter(model.WorkflowFilterBoth)
)

// Workflow is a workflow history entry.
type Workflow struct {
	ID      string
	Project string
	// Description is the workflow description stored at launch.
	Description json.RawMessage
	LaunchedBy  string
	// AbortedBy is the user that revoked the workflow, empty otherwise.
	AbortedBy    string
	TimeCreated  time.Time
	TimeFinished *time.Time
	// Succeeded is nil while the workflow is running.
	Succeeded *bool
	// Messages are the error messages of the failed tasks.
	Messages []string
	Tasks    TaskTree
}

// Finished returns true if the workflow finished, successfully or not.
func (w Workflow) Finished() bool { return w.TimeFinished != nil }

func toInternalGraph(steps []Step) model.TaskGraph {
	g := model.TaskGraph{Steps: make([]model.TaskStep, 0, len(steps))}
	for _, s := range steps {
		ms := model.TaskStep{Name: s.Name}
		if s.Task != nil {
			ms.Task = &model.TaskSignature{Name: s.Task.Name, Args: s.Task.Args}
		}
		for _, t := range s.Group {
			ms.Group = append(ms.Group, model.TaskSignature{Name: t.Name, Args: t.Args})
		}
		g.Steps = append(g.Steps, ms)
	}
	return g
}

func fromInternalWorkflow(w model.WorkflowRecord) Workflow {
	return Workflow{
		ID:           w.ID,
		Project:      w.Project,
		Description:  w.Description,
		LaunchedBy:   w.LaunchedBy,
		AbortedBy:    w.AbortedBy,
		TimeCreated:  w.TimeCreated,
		TimeFinished: w.TimeFinished,
		Succeeded:    w.Succeeded,
		Messages:     w.Messages,
		Tasks:        w.Tasks,
	}
}

func fromInternalWorkflowList(ws []model.WorkflowRecord) []Workflow {
	result := make([]Workflow, len(ws))
	for i, w := range ws {
		result[i] = fromInternalWorkflow(w)
	}
	return result
}

func mapError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, model.ErrNotFound):
		return &mappedError{original: err, sentinel: ErrNotFound}
	case errors.Is(err, model.ErrAlreadyExists):
		return &mappedError{original: err, sentinel: ErrAlreadyExists}
	case errors.Is(err, model.ErrNotValid):
		return &mappedError{original: err, sentinel: ErrNotValid}
	default:
		return err
	}
}

type mappedError struct {
	original error
	sentinel error
}

func (e *mappedError) Error() string { return e.original.Error() }

func (e *mappedError) Is(target error) bool { return target == e.sentinel }

func (e *mappedError) Unwrap() error { return e.original }
