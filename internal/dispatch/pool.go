package dispatch

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/andy-wagner/gecco/types"
)

// Worker processes work items taken from the queue. One Worker instance is
// created per pool goroutine, so implementations may keep unsynchronized
// per-worker state such as cached remote clients.
type Worker interface {
	// Process executes one work item to completion, including applying its
	// edit. Failures are the worker's own business; Process does not return
	// an error because a per-item failure never aborts the pool.
	Process(ctx context.Context, item Item)

	// Close releases per-worker resources after the worker's goroutine has
	// exited.
	Close()
}

// Pool is a fixed-size set of workers draining a queue.
//
// Lifecycle: NewPool → Start → (producer enqueues, then closes the queue)
// → Wait. Wait returns once every worker has exited, which happens when
// the queue is closed and empty: the drain barrier. Stop is an optional
// early halt that keeps workers from taking further items; items already
// in flight still run to completion.
type Pool struct {
	size      int
	queue     *Queue
	newWorker func(id int) Worker
	logger    types.Logger

	// stopping is the cooperative stop signal, checked at each queue take.
	// It is pool state, not queue state: stopping a pool must not drain
	// items another pool could still process.
	stopping atomic.Bool

	mu      sync.Mutex
	started bool
	wg      sync.WaitGroup
}

// NewPool creates a pool of size workers over the given queue.
//
// Parameters:
//   - size: Number of worker goroutines (callers validate size >= 1)
//   - queue: Queue the workers drain
//   - newWorker: Factory invoked once per worker goroutine, with the
//     worker's index
//   - logger: Logger for worker lifecycle events
func NewPool(size int, queue *Queue, newWorker func(id int) Worker, logger types.Logger) *Pool {
	return &Pool{
		size:      size,
		queue:     queue,
		newWorker: newWorker,
		logger:    logger,
	}
}

// Start launches the worker goroutines. Calling Start twice is a no-op.
func (p *Pool) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return
	}
	p.started = true

	for i := 0; i < p.size; i++ {
		p.wg.Add(1)
		go p.run(ctx, i)
	}
}

// Wait blocks until all workers have exited. Together with Queue.Close on
// the producer side this forms the drain barrier: when Wait returns, every
// enqueued item has been fully processed.
func (p *Pool) Wait() {
	p.wg.Wait()
}

// Stop signals workers to exit before the queue drains. Workers finish the
// item they currently hold, then return without taking another. Idempotent.
func (p *Pool) Stop() {
	if p.stopping.CompareAndSwap(false, true) {
		p.queue.Interrupt()
	}
}

// Stopping reports whether Stop has been called.
func (p *Pool) Stopping() bool {
	return p.stopping.Load()
}

func (p *Pool) run(ctx context.Context, id int) {
	defer p.wg.Done()

	worker := p.newWorker(id)
	defer worker.Close()

	p.logger.Debug("worker started", "worker", id)
	defer p.logger.Debug("worker stopped", "worker", id)

	for {
		item, ok := p.queue.Take(p.stopping.Load)
		if !ok {
			return
		}

		worker.Process(ctx, item)
	}
}
