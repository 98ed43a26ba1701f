// Package tree builds the task trees of submitted workflows from the task queue
// result handles.
package tree

import (
	"fmt"
	"slices"

	"github.com/slok/flowtrack/internal/model"
	"github.com/slok/flowtrack/internal/queue"
)

// Extract returns the task tree of a submitted chain from the handle returned by the
// submission (the chain tail). The top level nodes are ordered in submission order.
func Extract(root *queue.ResultHandle) model.TaskTree {
	if root == nil {
		return model.TaskTree{}
	}

	t := chainOf(root)
	slices.Reverse(t)
	return t
}

// chainOf walks the parent links, returns the nodes from the tail to the head.
func chainOf(h *queue.ResultHandle) model.TaskTree {
	t := model.TaskTree{nodeOf(h)}
	if h.Parent != nil {
		t = append(t, chainOf(h.Parent)...)
	}
	return t
}

func nodeOf(h *queue.ResultHandle) *model.TaskNode {
	if !h.IsGroup() {
		return &model.TaskNode{ID: h.ID, Kind: model.NodeKindLeaf}
	}

	n := &model.TaskNode{
		ID:       h.ID,
		Kind:     model.NodeKindGroup,
		Children: make(map[string]*model.TaskNode, len(h.Children)),
	}
	for _, c := range h.Children {
		child := nodeOf(c)
		child.Name = c.Name
		n.Children[c.ID] = child
	}

	return n
}

// Name sets the name of each top level node from the declared task-type names of
// the graph steps, matched by position.
func Name(t model.TaskTree, graph model.TaskGraph) error {
	if len(t) != len(graph.Steps) {
		return fmt.Errorf("task tree has %d steps and the graph %d: %w", len(t), len(graph.Steps), model.ErrNotValid)
	}

	for i, n := range t {
		n.Name = graph.StepName(i)
	}

	return nil
}
