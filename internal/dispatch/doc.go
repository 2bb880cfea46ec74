// Package dispatch provides the work queue and worker pool that drive one
// correction run.
//
// The queue is an unbounded FIFO of (module, unit) work items with a
// close/drain barrier: producers enqueue without ever blocking, workers
// block while the queue is empty and open, and a run is complete exactly
// when the queue is both closed and empty and every taken item has
// finished.
//
// The pool is a fixed set of goroutines draining the queue. A cooperative
// stop flag prevents workers from taking new items; a worker that already
// holds an item always runs it to completion. Per-item failures and panics
// are contained: they are reported to the worker implementation's owner
// and never abort the pool.
package dispatch
