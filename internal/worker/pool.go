// Package worker provides a bounded pool for fire-and-forget background
// tasks. Callers submit work after their own request has finished; task
// failures are logged, never propagated.
package worker

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"
)

type task struct {
	name string
	fn   func(ctx context.Context)
}

// Pool runs submitted tasks on a fixed set of goroutines over a bounded
// queue. When the queue is full, Submit reports failure instead of
// blocking; the caller decides whether a drop matters.
type Pool struct {
	tasks chan task
	count int
	wg    sync.WaitGroup
	log   *slog.Logger

	mu      sync.Mutex
	stopped bool
}

// New creates a pool with the given worker count and queue capacity.
func New(count, queueSize int, logger *slog.Logger) *Pool {
	if count < 1 {
		count = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	return &Pool{
		tasks: make(chan task, queueSize),
		count: count,
		log:   logger.With("component", "worker_pool"),
	}
}

// Start launches the workers. ctx cancellation is passed through to running
// tasks; queued tasks still drain on Stop.
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.count; i++ {
		p.wg.Add(1)
		go p.run(ctx)
	}
}

// Submit enqueues a task. Returns false when the pool is stopped or the
// queue is full.
func (p *Pool) Submit(name string, fn func(ctx context.Context)) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return false
	}

	select {
	case p.tasks <- task{name: name, fn: fn}:
		return true
	default:
		return false
	}
}

// Stop rejects new submissions, drains the queue, and waits for in-flight
// tasks to finish.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		p.wg.Wait()
		return
	}
	p.stopped = true
	close(p.tasks)
	p.mu.Unlock()

	p.wg.Wait()
}

func (p *Pool) run(ctx context.Context) {
	defer p.wg.Done()
	for t := range p.tasks {
		p.execute(ctx, t)
	}
}

// execute runs one task, containing panics so a bad task cannot take the
// worker down.
func (p *Pool) execute(ctx context.Context, t task) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("background task panicked",
				slog.String("task", t.name),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())),
			)
		}
	}()

	t.fn(ctx)
}
