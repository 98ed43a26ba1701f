package tracker

import (
	"context"
	"fmt"

	"github.com/slok/flowtrack/internal/log"
	"github.com/slok/flowtrack/internal/model"
)

// Poll refreshes the task tree of a workflow with the live task states and returns it.
//
// When the chain tail is observed ready the workflow is finalized in the history, the
// task results are released from the backend and the cache entry is evicted. Workflows
// already finished in the history are returned as stored.
func (t *Tracker) Poll(ctx context.Context, project, id string) (model.TaskTree, error) {
	tasks, _, err := t.PollWorkflow(ctx, project, id)
	return tasks, err
}

// PollWorkflow is like Poll and also returns if the workflow is finished in the history,
// either finished before or by this poll.
func (t *Tracker) PollWorkflow(ctx context.Context, project, id string) (tasks model.TaskTree, finished bool, err error) {
	tasks, finished, err = t.resolveTree(ctx, project, id)
	if err != nil {
		return nil, false, err
	}
	if finished {
		return tasks, true, nil
	}

	errs := []string{}
	lastReady := false
	for i, n := range tasks {
		ready, nodeErrs, err := t.refreshNode(ctx, n)
		if err != nil {
			return nil, false, err
		}
		errs = append(errs, nodeErrs...)
		if i == len(tasks)-1 {
			lastReady = ready
		}
	}

	if !lastReady {
		t.cache.Set(project, id, tasks)
		return tasks, false, nil
	}

	if err := t.finalize(ctx, project, id, errs, tasks); err != nil {
		return nil, false, err
	}

	return tasks, true, nil
}

// refreshNode updates a node and its children in place with the backend state, returns
// whether the node is ready and the error messages of the failed nodes.
func (t *Tracker) refreshNode(ctx context.Context, n *model.TaskNode) (ready bool, errs []string, err error) {
	res, err := t.results.Lookup(ctx, n.ID)
	if err != nil {
		return false, nil, err
	}

	if n.IsGroup() {
		done := 0
		for _, cid := range n.ChildIDs() {
			childReady, childErrs, err := t.refreshNode(ctx, n.Children[cid])
			if err != nil {
				return false, nil, err
			}
			if childReady {
				done++
			}
			errs = append(errs, childErrs...)
		}
		n.NumDone = &done
	}

	if st := res.Status(); st != "" {
		n.Status = st
	}

	if !res.IsReady() {
		if info := res.Info(); info != nil {
			n.Info = info
		}
		return false, errs, nil
	}

	ok := res.IsSuccessful()
	n.Successful = &ok
	if ok {
		n.Info = nil
		return true, errs, nil
	}

	msg := res.ErrorMessage()
	n.Info = map[string]any{"message": msg}
	// Group failures mirror their children ones.
	if !n.IsGroup() || len(errs) == 0 {
		errs = append(errs, msg)
	}

	return true, errs, nil
}

func (t *Tracker) finalize(ctx context.Context, project, id string, errs []string, tasks model.TaskTree) error {
	logger := t.logger.WithValues(log.Kv{"project": project, "workflow": id})

	succeeded := len(errs) == 0
	applied, err := t.repo.FinalizeWorkflow(ctx, project, id, succeeded, errs, tasks)
	if err != nil {
		return fmt.Errorf("could not finalize workflow %s: %w", id, err)
	}
	if !applied {
		logger.Debugf("Workflow already finalized, ignoring outcome")
	}

	for _, tid := range tasks.IDs() {
		if err := t.results.Forget(ctx, tid); err != nil {
			return err
		}
	}

	t.cache.Delete(project, id)

	logger.Infof("Workflow finished (succeeded: %t)", succeeded)
	return nil
}
