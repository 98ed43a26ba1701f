package run_test

import (
	"context"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/flowtrack/internal/app/run"
	"github.com/slok/flowtrack/internal/model"
	"github.com/slok/flowtrack/internal/queue/builtin"
	"github.com/slok/flowtrack/internal/queue/fake"
	storageio "github.com/slok/flowtrack/internal/storage/io"
	"github.com/slok/flowtrack/internal/storage/memory"
	"github.com/slok/flowtrack/internal/tracker"
)

var workflows = fstest.MapFS{
	"echo.yaml": {Data: []byte(`name: echo
steps:
  - task: echo
    args: {message: hello}
  - name: echoes
    group:
      - task: echo
      - task: echo
`)},
	"fail.yaml": {Data: []byte(`name: fail
steps:
  - task: echo
  - task: fail
    args: {message: boom}
`)},
	"long.yaml": {Data: []byte(`name: long
steps:
  - task: count
    args: {total: 1000, interval: 1s}
`)},
}

func TestServiceRun(t *testing.T) {
	tests := map[string]struct {
		req     run.Request
		timeout time.Duration
		expErr  error
		expWF   func(t *testing.T, w *model.WorkflowRecord)
	}{
		"Launching without following should return the running workflow.": {
			req: run.Request{Project: "proj1", WorkflowPath: "echo.yaml", Author: "alice"},
			expWF: func(t *testing.T, w *model.WorkflowRecord) {
				assert.False(t, w.Finished())
				assert.Equal(t, "alice", w.LaunchedBy)
				assert.JSONEq(t, `{"name":"echo","steps":[{"task":"echo","args":{"message":"hello"}},{"name":"echoes","group":[{"task":"echo"},{"task":"echo"}]}]}`, string(w.Description))
				assert.Len(t, w.Tasks, 2)
			},
		},

		"Following a successful workflow should return it finished.": {
			req: run.Request{Project: "proj1", WorkflowPath: "echo.yaml", Follow: true},
			expWF: func(t *testing.T, w *model.WorkflowRecord) {
				require.True(t, w.Finished())
				assert.True(t, *w.Succeeded)
				assert.Equal(t, 2, *w.Tasks[1].NumDone)
			},
		},

		"Following a failing workflow should return the failure messages.": {
			req: run.Request{Project: "proj1", WorkflowPath: "fail.yaml", Follow: true},
			expWF: func(t *testing.T, w *model.WorkflowRecord) {
				require.True(t, w.Finished())
				assert.False(t, *w.Succeeded)
				assert.Equal(t, []string{"boom"}, w.Messages)
			},
		},

		"A missing workflow file should fail.": {
			req:    run.Request{Project: "proj1", WorkflowPath: "missing.yaml"},
			expErr: assert.AnError,
		},

		"A cancelled follow should revoke the workflow.": {
			req:     run.Request{Project: "proj1", WorkflowPath: "long.yaml", Author: "alice", Follow: true},
			timeout: 100 * time.Millisecond,
			expErr:  context.DeadlineExceeded,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)

			repo, err := memory.NewRepository(memory.RepositoryConfig{})
			require.NoError(err)
			backend, err := fake.NewBackend(fake.BackendConfig{Handlers: builtin.Registry()})
			require.NoError(err)
			t.Cleanup(func() { _ = backend.Close() })
			tr, err := tracker.NewTracker(tracker.TrackerConfig{Repository: repo, Backend: backend})
			require.NoError(err)

			svc, err := run.NewService(run.ServiceConfig{
				Tracker:      tr,
				Loader:       storageio.NewWorkflowYAMLRepository(workflows),
				PollInterval: 5 * time.Millisecond,
			})
			require.NoError(err)

			ctx := context.Background()
			if test.timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, test.timeout)
				defer cancel()
			}

			polls := 0
			test.req.OnPoll = func(model.TaskTree) { polls++ }
			w, err := svc.Run(ctx, test.req)

			switch {
			case test.expErr == context.DeadlineExceeded:
				require.ErrorIs(err, context.DeadlineExceeded)
				ws, err := repo.ListWorkflows(context.Background(), "proj1", model.ListOpts{Filter: model.WorkflowFilterBoth})
				require.NoError(err)
				require.Len(ws, 1)
				assert.Equal(t, "alice", ws[0].AbortedBy)
				assert.False(t, *ws[0].Succeeded)
			case test.expErr != nil:
				require.Error(err)
			default:
				require.NoError(err)
				test.expWF(t, w)
				if test.req.Follow {
					assert.Positive(t, polls)
				}
			}
		})
	}
}

func TestServiceRunRevokedWhileFollowing(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	repo, err := memory.NewRepository(memory.RepositoryConfig{})
	require.NoError(err)
	backend, err := fake.NewBackend(fake.BackendConfig{Handlers: builtin.Registry()})
	require.NoError(err)
	t.Cleanup(func() { _ = backend.Close() })
	tr, err := tracker.NewTracker(tracker.TrackerConfig{Repository: repo, Backend: backend})
	require.NoError(err)

	svc, err := run.NewService(run.ServiceConfig{
		Tracker:      tr,
		Loader:       storageio.NewWorkflowYAMLRepository(workflows),
		PollInterval: 5 * time.Millisecond,
	})
	require.NoError(err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	// Another user revokes the workflow while it is being followed.
	polls := 0
	var last model.TaskTree
	req := run.Request{Project: "proj1", WorkflowPath: "long.yaml", Author: "alice", Follow: true}
	req.OnPoll = func(tasks model.TaskTree) {
		polls++
		last = tasks
		if polls == 3 {
			assert.NoError(tr.Revoke(context.Background(), "bob", "proj1", tasks.Last().ID))
		}
	}

	w, err := svc.Run(ctx, req)
	require.NoError(err)
	assert.Equal(4, polls)
	assert.Equal("bob", w.AbortedBy)
	require.True(w.Finished())
	assert.False(*w.Succeeded)

	tail := last.Last()
	require.NotNil(tail.Successful)
	assert.False(*tail.Successful)
	assert.Equal("REVOKED", tail.Status)
}
