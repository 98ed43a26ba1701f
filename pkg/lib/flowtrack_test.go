package lib_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/flowtrack/pkg/lib"
)

// newTestClient creates a client with a temp SQLite DB for test isolation.
func newTestClient(t *testing.T) *lib.Client {
	t.Helper()

	client, err := lib.New(context.Background(), lib.Config{
		DBPath: filepath.Join(t.TempDir(), "test.db"),
		Handlers: map[string]lib.TaskHandler{
			"divide": func(ctx context.Context, t lib.TaskContext) (any, error) {
				if t.Args["by"] == 0 {
					return nil, errors.New("division by zero")
				}
				return 1, nil
			},
		},
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = client.Close()
	})

	return client
}

func waitFinished(t *testing.T, client *lib.Client, project, id string) lib.TaskTree {
	t.Helper()

	var tasks lib.TaskTree
	require.Eventually(t, func() bool {
		var err error
		tasks, err = client.PollTaskStatus(context.Background(), project, id)
		return err == nil && tasks.Last().Successful != nil
	}, 5*time.Second, 10*time.Millisecond)

	return tasks
}

func TestLaunchWorkflow(t *testing.T) {
	tests := map[string]struct {
		steps        []lib.Step
		expErr       bool
		expIs        error
		expSucceeded bool
		expMessages  []string
	}{
		"A chain with a fan out where every task succeeds should succeed.": {
			steps: []lib.Step{
				{Name: "prepare", Task: &lib.Task{Name: "echo"}},
				{Name: "split", Group: []lib.Task{
					{Name: "divide", Args: map[string]any{"by": 1}},
					{Name: "divide", Args: map[string]any{"by": 2}},
					{Name: "divide", Args: map[string]any{"by": 3}},
				}},
			},
			expSucceeded: true,
			expMessages:  []string{},
		},

		"A chain with a failed fan out child should fail with the child error.": {
			steps: []lib.Step{
				{Task: &lib.Task{Name: "echo"}},
				{Group: []lib.Task{
					{Name: "divide", Args: map[string]any{"by": 1}},
					{Name: "divide", Args: map[string]any{"by": 0}},
					{Name: "divide", Args: map[string]any{"by": 3}},
				}},
			},
			expSucceeded: false,
			expMessages:  []string{"division by zero"},
		},

		"A workflow without steps should fail.": {
			steps:  nil,
			expErr: true,
			expIs:  lib.ErrNotValid,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)
			assert := assert.New(t)

			client := newTestClient(t)
			ctx := context.Background()

			id, err := client.LaunchWorkflow(ctx, lib.LaunchWorkflowOpts{
				Project: "proj1",
				Steps:   test.steps,
				Author:  "alice",
			})

			if test.expErr {
				require.Error(err)
				if test.expIs != nil {
					assert.True(errors.Is(err, test.expIs), "expected error %v, got: %v", test.expIs, err)
				}
				return
			}
			require.NoError(err)

			tasks := waitFinished(t, client, "proj1", id)
			require.Len(tasks, len(test.steps))
			last := tasks.Last()
			require.NotNil(last.NumDone)
			assert.Equal(3, *last.NumDone)

			w, err := client.GetWorkflow(ctx, "proj1", id)
			require.NoError(err)
			require.NotNil(w.Succeeded)
			assert.Equal(test.expSucceeded, *w.Succeeded)
			assert.Equal(test.expMessages, w.Messages)
			assert.Equal("alice", w.LaunchedBy)
		})
	}
}

func TestRevokeTask(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	client := newTestClient(t)
	ctx := context.Background()

	id, err := client.LaunchWorkflow(ctx, lib.LaunchWorkflowOpts{
		Project: "proj1",
		Steps:   []lib.Step{{Task: &lib.Task{Name: "sleep", Args: map[string]any{"duration": "1m"}}}},
	})
	require.NoError(err)

	ids, err := client.GetActiveTaskIDs(ctx, "proj1")
	require.NoError(err)
	assert.Equal([]string{id}, ids)

	err = client.RevokeTask(ctx, "alice", "proj1", id)
	require.NoError(err)

	w, err := client.GetWorkflow(ctx, "proj1", id)
	require.NoError(err)
	assert.Equal("alice", w.AbortedBy)
	require.NotNil(w.Succeeded)
	assert.False(*w.Succeeded)
	assert.True(w.Finished())

	ids, err = client.GetActiveTaskIDs(ctx, "proj1")
	require.NoError(err)
	assert.Empty(ids)
}

func TestGetTasks(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	client := newTestClient(t)
	ctx := context.Background()

	finished, err := client.LaunchWorkflow(ctx, lib.LaunchWorkflowOpts{
		Project: "proj1",
		Steps:   []lib.Step{{Task: &lib.Task{Name: "echo"}}},
	})
	require.NoError(err)
	waitFinished(t, client, "proj1", finished)

	running, err := client.LaunchWorkflow(ctx, lib.LaunchWorkflowOpts{
		Project: "proj1",
		Steps:   []lib.Step{{Task: &lib.Task{Name: "sleep", Args: map[string]any{"duration": "1m"}}}},
	})
	require.NoError(err)

	ws, err := client.GetTasks(ctx, "proj1", lib.GetTasksOpts{Filter: lib.WorkflowFilterFinished, Limit: 10})
	require.NoError(err)
	require.Len(ws, 1)
	assert.Equal(finished, ws[0].ID)

	ws, err = client.PollAllTaskStatuses(ctx, "proj1")
	require.NoError(err)
	require.Len(ws, 2)
	assert.Equal(running, ws[0].ID)
	assert.False(ws[0].Finished())
	assert.True(ws[1].Finished())

	_, err = client.GetTasks(ctx, "proj1", lib.GetTasksOpts{Filter: "wrong"})
	assert.True(errors.Is(err, lib.ErrNotValid))

	_, err = client.PollTaskStatus(ctx, "proj1", "missing")
	assert.True(errors.Is(err, lib.ErrNotFound))
}
