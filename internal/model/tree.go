package model

import (
	"maps"
	"slices"
)

// NodeKind tags a task tree node as a single task or a parallel group.
type NodeKind string

const (
	// NodeKindLeaf is a node without children.
	NodeKindLeaf NodeKind = "leaf"
	// NodeKindGroup is a node that fanned out into a parallel group of children.
	NodeKindGroup NodeKind = "group"
)

// TaskNode is one entry of a task tree: a chain step or a group child.
//
// Status, Successful, Info and NumDone are filled lazily while polling.
type TaskNode struct {
	ID       string               `json:"id"`
	Name     string               `json:"name,omitempty"`
	Kind     NodeKind             `json:"kind"`
	Children map[string]*TaskNode `json:"children,omitempty"`

	Status     string         `json:"status,omitempty"`
	Successful *bool          `json:"successful,omitempty"`
	Info       map[string]any `json:"info,omitempty"`
	NumDone    *int           `json:"num_done,omitempty"`
}

// IsGroup returns true if the node fanned out into a parallel group.
func (n *TaskNode) IsGroup() bool { return n.Kind == NodeKindGroup }

// ChildIDs returns the group children IDs in a stable order.
func (n *TaskNode) ChildIDs() []string {
	return slices.Sorted(maps.Keys(n.Children))
}

// Clone returns a deep copy of the node.
func (n *TaskNode) Clone() *TaskNode {
	if n == nil {
		return nil
	}

	c := *n
	if n.Successful != nil {
		s := *n.Successful
		c.Successful = &s
	}
	if n.NumDone != nil {
		d := *n.NumDone
		c.NumDone = &d
	}
	if n.Info != nil {
		c.Info = maps.Clone(n.Info)
	}
	if n.Children != nil {
		c.Children = make(map[string]*TaskNode, len(n.Children))
		for id, child := range n.Children {
			c.Children[id] = child.Clone()
		}
	}

	return &c
}

// TaskTree is the ordered list of top-level workflow nodes, earliest step first.
type TaskTree []*TaskNode

// Last returns the chain tail, the node that gates the workflow completion.
func (t TaskTree) Last() *TaskNode {
	if len(t) == 0 {
		return nil
	}
	return t[len(t)-1]
}

// Walk calls fn for every node, parents before their children.
func (t TaskTree) Walk(fn func(n *TaskNode)) {
	for _, n := range t {
		walkNode(n, fn)
	}
}

func walkNode(n *TaskNode, fn func(n *TaskNode)) {
	if n == nil {
		return
	}
	fn(n)
	for _, id := range n.ChildIDs() {
		walkNode(n.Children[id], fn)
	}
}

// IDs returns all the task IDs of the tree in walk order.
func (t TaskTree) IDs() []string {
	ids := []string{}
	t.Walk(func(n *TaskNode) { ids = append(ids, n.ID) })
	return ids
}

// Clone returns a deep copy of the tree.
func (t TaskTree) Clone() TaskTree {
	if t == nil {
		return nil
	}

	c := make(TaskTree, 0, len(t))
	for _, n := range t {
		c = append(c, n.Clone())
	}
	return c
}
