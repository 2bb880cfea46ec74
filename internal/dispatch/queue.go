package dispatch

import (
	"sync"

	"github.com/andy-wagner/gecco/types"
)

// Item is one unit of pending work: a module paired with the document unit
// it should process. Items are immutable once created.
type Item struct {
	Module types.Module
	Unit   types.Unit
}

// Queue is a concurrent, unbounded, FIFO, blocking work queue.
//
// Enqueue never blocks the producer. Take blocks while the queue is empty
// and still open; it returns ok=false once the queue is closed and
// drained, or when the caller's stop condition becomes true.
//
// A Queue is created per run and must not be reused after Close.
type Queue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []Item
	head   int
	closed bool
}

// NewQueue creates an empty open queue.
func NewQueue() *Queue {
	q := &Queue{}
	q.cond = sync.NewCond(&q.mu)

	return q
}

// Enqueue appends one work item.
//
// Returns:
//   - error: types.ErrQueueClosed if Close was already called, nil otherwise
func (q *Queue) Enqueue(item Item) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return types.ErrQueueClosed
	}

	q.items = append(q.items, item)
	q.cond.Signal()

	return nil
}

// Take removes and returns the oldest item, blocking while the queue is
// empty and open.
//
// The stopped callback is re-checked every time the taker wakes up; it
// implements the cooperative stop signal, which prevents taking a new item
// without interrupting one already in flight. Pass nil when no stop signal
// is needed.
//
// Returns:
//   - Item: The next work item (zero value when ok is false)
//   - bool: false when the queue is closed and empty, or stopped reported true
func (q *Queue) Take(stopped func() bool) (Item, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for {
		if stopped != nil && stopped() {
			return Item{}, false
		}
		if q.head < len(q.items) {
			item := q.items[q.head]
			q.items[q.head] = Item{}
			q.head++

			// Reclaim the consumed prefix once it dominates the backing slice.
			if q.head > 256 && q.head*2 >= len(q.items) {
				q.items = append([]Item(nil), q.items[q.head:]...)
				q.head = 0
			}

			return item, true
		}
		if q.closed {
			return Item{}, false
		}

		q.cond.Wait()
	}
}

// Close marks the queue as complete: no further items may be enqueued and
// blocked takers drain the remainder, then return ok=false. Idempotent.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	q.closed = true
	q.cond.Broadcast()
}

// Interrupt wakes all blocked takers so they re-check their stop condition.
// The queue itself is left unchanged.
func (q *Queue) Interrupt() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.cond.Broadcast()
}

// Len returns the number of items currently waiting in the queue.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.items) - q.head
}

// Closed reports whether Close has been called.
func (q *Queue) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.closed
}
