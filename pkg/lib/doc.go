// Package lib provides a Go SDK to launch and track workflows programmatically.
//
// A workflow is a chain of steps, each step runs a single task or fans out into a
// parallel group of tasks. The client records every workflow in the history, runs
// the tasks on embedded workers and lets callers poll or revoke them.
//
// # Quick Start
//
//	client, err := lib.New(ctx, lib.Config{
//	    Handlers: map[string]lib.TaskHandler{
//	        "double": func(ctx context.Context, t lib.TaskContext) (any, error) {
//	            return t.Args["n"].(int) * 2, nil
//	        },
//	    },
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	id, err := client.LaunchWorkflow(ctx, lib.LaunchWorkflowOpts{
//	    Project: "proj1",
//	    Steps: []lib.Step{
//	        {Task: &lib.Task{Name: "double", Args: map[string]any{"n": 1}}},
//	        {Group: []lib.Task{{Name: "double"}, {Name: "double"}}},
//	    },
//	})
//
//	tasks, err := client.PollTaskStatus(ctx, "proj1", id)
//
// # Storage
//
// The history is stored in SQLite by default (~/.flowtrack/flowtrack.db). Set
// [Config].InMemory to keep it in memory, useful for tests.
//
// # Error Handling
//
// All methods return errors that can be inspected with [errors.Is]:
//
//   - [ErrNotFound]: The workflow does not exist.
//   - [ErrAlreadyExists]: A task with the same ID is already known.
//   - [ErrNotValid]: Invalid input (e.g. a workflow without steps).
//
// # Thread Safety
//
// A [Client] is safe for concurrent use from multiple goroutines.
package lib
