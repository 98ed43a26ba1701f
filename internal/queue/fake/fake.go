package fake

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/slok/flowtrack/internal/log"
	"github.com/slok/flowtrack/internal/model"
	"github.com/slok/flowtrack/internal/queue"
)

// BackendConfig is the configuration for the fake task queue backend.
type BackendConfig struct {
	// Handlers are the task handlers the fake workers know how to run.
	Handlers queue.Registry
	// Workers is the number of tasks that can run at the same time.
	Workers int
	// Queues are the queues served by the fake workers, empty serves all of them.
	// Tasks routed to other queues stay pending forever.
	Queues []string
	Logger log.Logger
}

func (c *BackendConfig) defaults() error {
	if c.Handlers == nil {
		c.Handlers = queue.Registry{}
	}

	if c.Workers <= 0 {
		c.Workers = 4
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "queue.Fake"})

	return nil
}

// Backend is a fake implementation of the queue.Backend interface.
// It runs the submitted chains in-process without any broker or remote worker.
type Backend struct {
	handlers queue.Registry
	queues   map[string]bool
	slots    chan struct{}
	logger   log.Logger

	mu      sync.Mutex
	states  map[string]*taskState
	running map[string]context.CancelFunc

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type taskState struct {
	queue.TaskState
	retain bool
}

// NewBackend creates a new fake backend.
func NewBackend(cfg BackendConfig) (*Backend, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	queues := map[string]bool{}
	for _, q := range cfg.Queues {
		queues[q] = true
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Backend{
		handlers: cfg.Handlers,
		queues:   queues,
		slots:    make(chan struct{}, cfg.Workers),
		logger:   cfg.Logger,
		states:   map[string]*taskState{},
		running:  map[string]context.CancelFunc{},
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

var _ queue.Backend = &Backend{}

type plannedTask struct {
	id  string
	sig model.TaskSignature
}

type plannedStep struct {
	id       string
	name     string
	task     *plannedTask
	children []plannedTask
}

// Submit registers all the graph tasks as pending and starts running the chain.
func (b *Backend) Submit(ctx context.Context, graph model.TaskGraph, opts queue.SubmitOpts) (*queue.ResultHandle, error) {
	if err := graph.Validate(); err != nil {
		return nil, fmt.Errorf("invalid task graph: %w", err)
	}

	if opts.TaskID == "" {
		opts.TaskID = uuid.NewString()
	}

	// Plan the IDs, the chain tail gets the requested task ID.
	steps := make([]plannedStep, 0, len(graph.Steps))
	var handle *queue.ResultHandle
	for i, s := range graph.Steps {
		id := uuid.NewString()
		if i == len(graph.Steps)-1 {
			id = opts.TaskID
		}

		step := plannedStep{id: id, name: graph.StepName(i)}
		if s.IsGroup() {
			children := make([]*queue.ResultHandle, 0, len(s.Group))
			for _, sig := range s.Group {
				t := plannedTask{id: uuid.NewString(), sig: sig}
				step.children = append(step.children, t)
				children = append(children, queue.NewTaskHandle(t.id, sig.Name, nil))
			}
			handle = queue.NewGroupHandle(id, step.name, handle, children)
		} else {
			step.task = &plannedTask{id: id, sig: *s.Task}
			handle = queue.NewTaskHandle(id, s.Task.Name, handle)
		}
		steps = append(steps, step)
	}

	b.mu.Lock()
	if _, ok := b.states[opts.TaskID]; ok {
		b.mu.Unlock()
		return nil, fmt.Errorf("task %s: %w", opts.TaskID, model.ErrAlreadyExists)
	}
	for _, s := range steps {
		b.states[s.id] = &taskState{TaskState: queue.TaskState{ID: s.id, Status: queue.StatusPending}, retain: opts.RetainResult}
		for _, c := range s.children {
			b.states[c.id] = &taskState{TaskState: queue.TaskState{ID: c.id, Status: queue.StatusPending}, retain: opts.RetainResult}
		}
	}
	b.mu.Unlock()

	if len(b.queues) > 0 && !b.queues[opts.Queue] {
		b.logger.Warningf("Queue %q is not served, tasks of %s will stay pending", opts.Queue, opts.TaskID)
		return handle, nil
	}

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.runChain(steps)
	}()

	b.logger.Debugf("Submitted chain %s with %d steps", opts.TaskID, len(steps))

	return handle, nil
}

// State returns the state of a task.
func (b *Backend) State(ctx context.Context, id string) (*queue.TaskState, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	st, ok := b.states[id]
	if !ok {
		return &queue.TaskState{ID: id, Status: queue.StatusPending}, nil
	}

	c := st.TaskState
	c.Info = maps.Clone(st.Info)
	return &c, nil
}

// Forget removes the task state.
func (b *Backend) Forget(ctx context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.states, id)
	return nil
}

// Cancel revokes a task that has not finished, terminating it if it's running and requested.
func (b *Backend) Cancel(ctx context.Context, id string, terminate bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	st, ok := b.states[id]
	if !ok || queue.IsReadyStatus(st.Status) {
		return nil
	}

	st.Status = queue.StatusRevoked
	st.Error = "revoked"
	st.Info = nil

	if cancel, ok := b.running[id]; ok && terminate {
		cancel()
	}

	b.logger.Debugf("Revoked task %s", id)
	return nil
}

// Close stops all the running chains and waits for them to end.
func (b *Backend) Close() error {
	b.cancel()
	b.wg.Wait()
	return nil
}

func (b *Backend) runChain(steps []plannedStep) {
	for i, s := range steps {
		var err error
		if s.task != nil {
			_, err = b.runTask(*s.task)
		} else {
			err = b.runGroup(s)
		}

		if err != nil {
			msg := fmt.Sprintf("upstream task %s failed", s.id)
			for _, next := range steps[i+1:] {
				b.fail(next.id, msg)
				for _, c := range next.children {
					b.fail(c.id, msg)
				}
			}
			return
		}
	}
}

func (b *Backend) runGroup(s plannedStep) error {
	b.mu.Lock()
	if st, ok := b.states[s.id]; ok && !queue.IsReadyStatus(st.Status) {
		st.Status = queue.StatusStarted
	}
	b.mu.Unlock()

	results := make([]any, len(s.children))
	var g errgroup.Group
	for i, c := range s.children {
		g.Go(func() error {
			res, err := b.runTask(c)
			results[i] = res
			return err
		})
	}
	err := g.Wait()

	return b.complete(s.id, results, err)
}

func (b *Backend) runTask(t plannedTask) (any, error) {
	// Wait for a free worker.
	select {
	case b.slots <- struct{}{}:
	case <-b.ctx.Done():
		b.fail(t.id, "worker shutdown")
		return nil, b.ctx.Err()
	}
	defer func() { <-b.slots }()

	b.mu.Lock()
	st, ok := b.states[t.id]
	if ok && queue.IsReadyStatus(st.Status) {
		b.mu.Unlock()
		return nil, fmt.Errorf("task %s %s", t.id, st.Error)
	}
	taskCtx, cancel := context.WithCancel(b.ctx)
	defer cancel()
	b.running[t.id] = cancel
	if ok {
		st.Status = queue.StatusStarted
	}
	b.mu.Unlock()

	res, err := b.execute(taskCtx, t)

	return res, b.complete(t.id, res, err)
}

func (b *Backend) execute(ctx context.Context, t plannedTask) (res any, err error) {
	h, ok := b.handlers[t.sig.Name]
	if !ok {
		return nil, fmt.Errorf("unregistered task %q", t.sig.Name)
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v", r)
		}
	}()

	return h(ctx, queue.TaskContext{
		ID:       t.id,
		Name:     t.sig.Name,
		Args:     t.sig.Args,
		Progress: func(info map[string]any) { b.progress(t.id, info) },
	})
}

func (b *Backend) progress(id string, info map[string]any) {
	b.mu.Lock()
	defer b.mu.Unlock()

	st, ok := b.states[id]
	if !ok || queue.IsReadyStatus(st.Status) {
		return
	}
	st.Status = queue.StatusProgress
	st.Info = maps.Clone(info)
}

// complete stores the task outcome unless the task already reached a terminal state.
// It returns the error that the chain should observe for the task.
func (b *Backend) complete(id string, res any, taskErr error) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.running, id)

	st, ok := b.states[id]
	if !ok {
		// Forgotten while running.
		return taskErr
	}

	if queue.IsReadyStatus(st.Status) {
		if st.Status == queue.StatusSuccess {
			return nil
		}
		return fmt.Errorf("task %s %s", id, st.Error)
	}

	st.Info = nil
	if taskErr != nil {
		st.Status = queue.StatusFailure
		st.Error = taskErr.Error()
	} else {
		st.Status = queue.StatusSuccess
		st.Result = res
	}

	if !st.retain {
		delete(b.states, id)
	}

	b.logger.Debugf("Task %s finished with status %s", id, st.Status)
	return taskErr
}

func (b *Backend) fail(id, msg string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	st, ok := b.states[id]
	if !ok || queue.IsReadyStatus(st.Status) {
		return
	}
	st.Status = queue.StatusFailure
	st.Error = msg
	st.Info = nil
}
