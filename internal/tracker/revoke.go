package tracker

import (
	"context"
	"fmt"

	"github.com/slok/flowtrack/internal/log"
	"github.com/slok/flowtrack/internal/model"
	"github.com/slok/flowtrack/internal/queue"
)

const revokedMessage = "revoked"

// Revoke cancels every task of a workflow, terminating the running ones, and marks the
// workflow as aborted by the user.
//
// Cancellation is best effort, the workflow is aborted in the history regardless of the
// workers honoring the termination. The stored tree is terminal: tasks that were not
// finished are recorded as revoked.
func (t *Tracker) Revoke(ctx context.Context, username, project, id string) error {
	tasks, finished, err := t.resolveTree(ctx, project, id)
	if err != nil {
		return err
	}

	var cancelErr error
	tasks.Walk(func(n *model.TaskNode) {
		if cancelErr != nil {
			return
		}
		cancelErr = t.results.Cancel(ctx, n.ID, true)
	})
	if cancelErr != nil {
		return cancelErr
	}

	logger := t.logger.WithValues(log.Kv{"project": project, "workflow": id})

	// Finished workflows already have their results released, the stored tree is kept.
	var revoked model.TaskTree
	if !finished {
		for _, n := range tasks {
			if _, _, err := t.refreshNode(ctx, n); err != nil {
				return err
			}
		}
		markRevoked(tasks)
		revoked = tasks
	}

	applied, err := t.repo.AbortWorkflow(ctx, project, id, username, revoked)
	if err != nil {
		return fmt.Errorf("could not abort workflow %s: %w", id, err)
	}
	t.cache.Delete(project, id)

	if !applied {
		logger.Warningf("Workflow already finished, not marked as aborted")
		return nil
	}

	for _, tid := range tasks.IDs() {
		if err := t.results.Forget(ctx, tid); err != nil {
			return err
		}
	}

	logger.Infof("Workflow revoked by %q", username)
	return nil
}

// markRevoked sets every unfinished node as revoked, groups end with all their children done.
func markRevoked(tasks model.TaskTree) {
	tasks.Walk(func(n *model.TaskNode) {
		if n.IsGroup() {
			done := len(n.Children)
			n.NumDone = &done
		}
		if n.Successful != nil {
			return
		}

		failed := false
		n.Status = queue.StatusRevoked
		n.Successful = &failed
		n.Info = map[string]any{"message": revokedMessage}
	})
}
