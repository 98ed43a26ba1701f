package list_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/slok/flowtrack/internal/app/list"
	"github.com/slok/flowtrack/internal/model"
	"github.com/slok/flowtrack/internal/queue"
	"github.com/slok/flowtrack/internal/queue/queuemock"
	"github.com/slok/flowtrack/internal/storage/storagemock"
	"github.com/slok/flowtrack/internal/tracker"
)

func TestServiceRun(t *testing.T) {
	now := time.Date(2026, 1, 30, 10, 0, 0, 0, time.UTC)
	since := now.Add(-time.Hour)

	tests := map[string]struct {
		req    list.Request
		mock   func(mr *storagemock.MockHistoryRepository, mb *queuemock.MockBackend)
		expIDs []string
		expErr bool
	}{
		"Listing should pass the filters to the storage.": {
			req: list.Request{Project: "proj1", Filter: model.WorkflowFilterFinished, Limit: 10},
			mock: func(mr *storagemock.MockHistoryRepository, mb *queuemock.MockBackend) {
				mr.On("ListWorkflows", mock.Anything, "proj1", model.ListOpts{Filter: model.WorkflowFilterFinished, Limit: 10}).
					Once().Return([]model.WorkflowRecord{{ID: "wf2"}, {ID: "wf1"}}, nil)
			},
			expIDs: []string{"wf2", "wf1"},
		},

		"Listing with a period should set the min creation time.": {
			req: list.Request{Project: "proj1", Filter: model.WorkflowFilterBoth, Since: time.Hour},
			mock: func(mr *storagemock.MockHistoryRepository, mb *queuemock.MockBackend) {
				mr.On("ListWorkflows", mock.Anything, "proj1", model.ListOpts{Filter: model.WorkflowFilterBoth, MinCreated: &since}).
					Once().Return([]model.WorkflowRecord{{ID: "wf1"}}, nil)
			},
			expIDs: []string{"wf1"},
		},

		"A negative limit should fail.": {
			req:    list.Request{Project: "proj1", Limit: -1},
			mock:   func(mr *storagemock.MockHistoryRepository, mb *queuemock.MockBackend) {},
			expErr: true,
		},

		"Listing live should poll the running workflows.": {
			req: list.Request{Project: "proj1", Live: true, Limit: -1},
			mock: func(mr *storagemock.MockHistoryRepository, mb *queuemock.MockBackend) {
				mr.On("ListWorkflows", mock.Anything, "proj1", model.ListOpts{Filter: model.WorkflowFilterBoth}).
					Once().Return([]model.WorkflowRecord{
					{ID: "wf2", Tasks: model.TaskTree{{ID: "wf2", Kind: model.NodeKindLeaf}}},
					{ID: "wf1", TimeFinished: &now, Tasks: model.TaskTree{{ID: "wf1", Kind: model.NodeKindLeaf}}},
				}, nil)
				mr.On("GetWorkflow", mock.Anything, "proj1", "wf2").Once().Return(&model.WorkflowRecord{
					ID: "wf2", Tasks: model.TaskTree{{ID: "wf2", Kind: model.NodeKindLeaf}},
				}, nil)
				mb.On("State", mock.Anything, "wf2").Once().Return(&queue.TaskState{ID: "wf2", Status: queue.StatusStarted}, nil)
			},
			expIDs: []string{"wf2", "wf1"},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)

			mr := storagemock.NewMockHistoryRepository(t)
			mb := queuemock.NewMockBackend(t)
			test.mock(mr, mb)

			tr, err := tracker.NewTracker(tracker.TrackerConfig{Repository: mr, Backend: mb})
			require.NoError(err)
			svc, err := list.NewService(list.ServiceConfig{
				Tracker: tr,
				TimeNow: func() time.Time { return now },
			})
			require.NoError(err)

			ws, err := svc.Run(context.Background(), test.req)

			if test.expErr {
				assert.ErrorIs(t, err, model.ErrNotValid)
				return
			}
			require.NoError(err)
			ids := []string{}
			for _, w := range ws {
				ids = append(ids, w.ID)
			}
			assert.Equal(t, test.expIDs, ids)
		})
	}
}
