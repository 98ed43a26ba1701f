// Package cache has the in-process cache of workflow task trees.
//
// The cache lives as long as the process that owns it and it's not shared nor
// synchronized with other processes, it only saves storage round trips for the
// workflows this process launched or polled. It's not a source of truth.
package cache

import (
	"sync"

	"github.com/slok/flowtrack/internal/model"
)

// Cache maps a project and workflow ID to the last known task tree.
type Cache struct {
	mu       sync.Mutex
	projects map[string]map[string]model.TaskTree
}

// New returns a new empty cache.
func New() *Cache {
	return &Cache{projects: map[string]map[string]model.TaskTree{}}
}

// Get returns a copy of the cached tree.
func (c *Cache) Get(project, id string) (model.TaskTree, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	t, ok := c.projects[project][id]
	if !ok {
		return nil, false
	}
	return t.Clone(), true
}

// Set stores a copy of the tree.
func (c *Cache) Set(project, id string, t model.TaskTree) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.projects[project]
	if !ok {
		p = map[string]model.TaskTree{}
		c.projects[project] = p
	}
	p[id] = t.Clone()
}

// Delete removes a tree, it's a no-op if missing.
func (c *Cache) Delete(project, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.projects[project]
	if !ok {
		return
	}
	delete(p, id)
	if len(p) == 0 {
		delete(c.projects, project)
	}
}

// Len returns the number of cached trees of a project.
func (c *Cache) Len(project string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.projects[project])
}
