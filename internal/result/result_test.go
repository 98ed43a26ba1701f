package result_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/slok/flowtrack/internal/model"
	"github.com/slok/flowtrack/internal/queue"
	"github.com/slok/flowtrack/internal/queue/queuemock"
	"github.com/slok/flowtrack/internal/result"
)

func TestNewAdapter(t *testing.T) {
	tests := map[string]struct {
		config result.AdapterConfig
		expErr bool
	}{
		"valid config should create the adapter": {
			config: result.AdapterConfig{Backend: &queuemock.MockBackend{}},
		},
		"missing backend should fail": {
			config: result.AdapterConfig{},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)

			a, err := result.NewAdapter(test.config)

			if test.expErr {
				require.Error(err)
				require.Nil(a)
			} else {
				require.NoError(err)
				require.NotNil(a)
			}
		})
	}
}

func TestAdapterLookup(t *testing.T) {
	tests := map[string]struct {
		mock            func(m *queuemock.MockBackend)
		expErr          bool
		expReady        bool
		expSuccessful   bool
		expStatus       string
		expInfo         map[string]any
		expResult       any
		expErrorMessage string
	}{
		"A pending task should not be ready.": {
			mock: func(m *queuemock.MockBackend) {
				m.On("State", mock.Anything, "t1").Once().Return(&queue.TaskState{ID: "t1", Status: queue.StatusPending}, nil)
			},
			expStatus: queue.StatusPending,
		},

		"A task in progress should expose its info.": {
			mock: func(m *queuemock.MockBackend) {
				m.On("State", mock.Anything, "t1").Once().Return(&queue.TaskState{
					ID: "t1", Status: queue.StatusProgress, Info: map[string]any{"done": 3},
				}, nil)
			},
			expStatus: queue.StatusProgress,
			expInfo:   map[string]any{"done": 3},
		},

		"A successful task should be ready with its result.": {
			mock: func(m *queuemock.MockBackend) {
				m.On("State", mock.Anything, "t1").Once().Return(&queue.TaskState{
					ID: "t1", Status: queue.StatusSuccess, Result: 42, Info: map[string]any{"stale": true},
				}, nil)
			},
			expReady:      true,
			expSuccessful: true,
			expStatus:     queue.StatusSuccess,
			expResult:     42,
		},

		"A failed task should be ready with the error payload.": {
			mock: func(m *queuemock.MockBackend) {
				m.On("State", mock.Anything, "t1").Once().Return(&queue.TaskState{
					ID: "t1", Status: queue.StatusFailure, Error: "division by zero",
				}, nil)
			},
			expReady:        true,
			expStatus:       queue.StatusFailure,
			expErrorMessage: "division by zero",
		},

		"A revoked task without error should use the status as message.": {
			mock: func(m *queuemock.MockBackend) {
				m.On("State", mock.Anything, "t1").Once().Return(&queue.TaskState{ID: "t1", Status: queue.StatusRevoked}, nil)
			},
			expReady:        true,
			expStatus:       queue.StatusRevoked,
			expErrorMessage: queue.StatusRevoked,
		},

		"A backend error should fail.": {
			mock: func(m *queuemock.MockBackend) {
				m.On("State", mock.Anything, "t1").Once().Return(nil, errors.New("broker down"))
			},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)
			assert := assert.New(t)

			mb := queuemock.NewMockBackend(t)
			test.mock(mb)

			a, err := result.NewAdapter(result.AdapterConfig{Backend: mb})
			require.NoError(err)

			n, err := a.Lookup(context.Background(), "t1")
			if test.expErr {
				assert.Error(err)
				return
			}
			require.NoError(err)

			assert.Equal(test.expReady, n.IsReady())
			assert.Equal(test.expSuccessful, n.IsSuccessful())
			assert.Equal(test.expStatus, n.Status())
			assert.Equal(test.expInfo, n.Info())
			assert.Equal(test.expErrorMessage, n.ErrorMessage())

			res, err := n.Result()
			if test.expErrorMessage != "" {
				var terr *result.TaskError
				require.ErrorAs(err, &terr)
				assert.Equal("t1", terr.TaskID)
			} else {
				require.NoError(err)
				assert.Equal(test.expResult, res)
			}
		})
	}
}

func TestAdapterSubmit(t *testing.T) {
	graph := model.TaskGraph{Steps: []model.TaskStep{{Task: &model.TaskSignature{Name: "echo"}}}}
	opts := queue.SubmitOpts{TaskID: "w1", Queue: "workers", RetainResult: true}

	tests := map[string]struct {
		mock   func(m *queuemock.MockBackend)
		expErr bool
	}{
		"A submission should return the backend handle.": {
			mock: func(m *queuemock.MockBackend) {
				m.On("Submit", mock.Anything, graph, opts).Once().Return(queue.NewTaskHandle("w1", "echo", nil), nil)
			},
		},

		"A backend error should fail.": {
			mock: func(m *queuemock.MockBackend) {
				m.On("Submit", mock.Anything, graph, opts).Once().Return(nil, errors.New("broker down"))
			},
			expErr: true,
		},

		"A missing handle should fail.": {
			mock: func(m *queuemock.MockBackend) {
				m.On("Submit", mock.Anything, graph, opts).Once().Return(nil, nil)
			},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)

			mb := queuemock.NewMockBackend(t)
			test.mock(mb)

			a, err := result.NewAdapter(result.AdapterConfig{Backend: mb})
			require.NoError(err)

			h, err := a.Submit(context.Background(), graph, opts)
			if test.expErr {
				require.Error(err)
				return
			}
			require.NoError(err)
			require.Equal("w1", h.ID)
		})
	}
}

func TestAdapterForgetAndCancel(t *testing.T) {
	require := require.New(t)

	mb := queuemock.NewMockBackend(t)
	mb.On("Forget", mock.Anything, "t1").Once().Return(nil)
	mb.On("Forget", mock.Anything, "t2").Once().Return(errors.New("broker down"))
	mb.On("Cancel", mock.Anything, "t1", true).Once().Return(nil)

	a, err := result.NewAdapter(result.AdapterConfig{Backend: mb})
	require.NoError(err)

	require.NoError(a.Forget(context.Background(), "t1"))
	require.Error(a.Forget(context.Background(), "t2"))
	require.NoError(a.Cancel(context.Background(), "t1", true))
}
