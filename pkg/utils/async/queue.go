package async

import (
	"context"
	"runtime/debug"
	"sort"
	"sync"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/lanchanto/pkg/domain/types"
)

// ErrorHandler receives errors returned by (or recovered from) a task
type ErrorHandler func(ctx context.Context, name string, err error)

type task struct {
	name    string
	handler func(ctx context.Context) error
}

// Queue is a bounded task queue consumed by a fixed number of worker goroutines.
// Tasks run on a background context that keeps the logger of the context
// given to NewQueue but is never cancelled by callers of Enqueue.
type Queue struct {
	tasks   chan *task
	baseCtx context.Context
	onError ErrorHandler

	wg sync.WaitGroup

	mu      sync.RWMutex
	closed  bool
	running map[string]int
}

// Option is a functional option for Queue
type Option func(*Queue)

// WithErrorHandler replaces the default handler that logs task errors
func WithErrorHandler(h ErrorHandler) Option {
	return func(q *Queue) {
		q.onError = h
	}
}

// NewQueue starts workers goroutines consuming a queue with capacity size
func NewQueue(ctx context.Context, workers, size int, opts ...Option) *Queue {
	if workers < 1 {
		workers = 1
	}
	if size < 0 {
		size = 0
	}

	q := &Queue{
		tasks:   make(chan *task, size),
		baseCtx: newBackgroundContext(ctx),
		onError: logError,
		running: make(map[string]int),
	}
	for _, opt := range opts {
		opt(q)
	}

	q.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go q.work(i)
	}

	return q
}

// Enqueue adds a task without blocking. It fails when the queue is full or closed.
func (q *Queue) Enqueue(ctx context.Context, name string, handler func(ctx context.Context) error) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return goerr.New("queue is closed", goerr.T(types.ErrTagQueueClosed), goerr.V("task", name))
	}

	select {
	case q.tasks <- &task{name: name, handler: handler}:
		ctxlog.From(ctx).Debug("task enqueued", "task", name, "queued", len(q.tasks))
		return nil
	default:
		return goerr.New("queue is full",
			goerr.T(types.ErrTagQueueFull),
			goerr.V("task", name),
			goerr.V("capacity", cap(q.tasks)),
		)
	}
}

// Close stops accepting tasks and waits until queued and running tasks finish
// or ctx is done. Tasks still running or queued at that point are abandoned
// and logged.
func (q *Queue) Close(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.tasks)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		running := q.runningTasks()
		ctxlog.From(ctx).Warn("abandoning unfinished tasks",
			"running", running,
			"queued", len(q.tasks),
		)
		return goerr.Wrap(ctx.Err(), "workers did not finish in time",
			goerr.V("running", running),
			goerr.V("queued", len(q.tasks)),
		)
	}
}

func (q *Queue) work(id int) {
	defer q.wg.Done()

	for t := range q.tasks {
		ctx := ctxlog.With(q.baseCtx, ctxlog.From(q.baseCtx).With("worker", id, "task", t.name))
		q.markRunning(t.name, 1)
		q.run(ctx, t)
		q.markRunning(t.name, -1)
	}
}

// run executes a task with panic recovery
func (q *Queue) run(ctx context.Context, t *task) {
	defer func() {
		if r := recover(); r != nil {
			stack := debug.Stack()
			ctxlog.From(ctx).Error("panic in async handler",
				"recover", r,
				"stack", string(stack))
			q.onError(ctx, t.name, goerr.New("panic in async handler", goerr.V("recover", r)))
		}
	}()

	if err := t.handler(ctx); err != nil {
		q.onError(ctx, t.name, err)
	}
}

func (q *Queue) markRunning(name string, delta int) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.running[name] += delta
	if q.running[name] <= 0 {
		delete(q.running, name)
	}
}

func (q *Queue) runningTasks() []string {
	q.mu.RLock()
	defer q.mu.RUnlock()

	names := make([]string, 0, len(q.running))
	for name := range q.running {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func logError(ctx context.Context, name string, err error) {
	ctxlog.From(ctx).Error("error in async handler", "task", name, "error", err)
}

// newBackgroundContext creates a new background context preserving important values
//
// Preserved values:
//   - ctxlog logger
//
// Returns: New context.Background() with preserved values
func newBackgroundContext(ctx context.Context) context.Context {
	newCtx := context.Background()
	newCtx = ctxlog.With(newCtx, ctxlog.From(ctx))
	return newCtx
}
