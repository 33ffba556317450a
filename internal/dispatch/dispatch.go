// Package dispatch delivers consumer callbacks on a single goroutine, in the
// order they were posted, without ever blocking the poster.
package dispatch

import (
	"sync"
)

// Queue is an unbounded FIFO of callbacks executed by one goroutine.
type Queue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []func()
	closed bool
	done   chan struct{}
}

// NewQueue creates a queue and starts its delivery goroutine.
func NewQueue() *Queue {
	q := &Queue{done: make(chan struct{})}
	q.cond = sync.NewCond(&q.mu)
	go q.run()
	return q
}

// Post schedules fn. It reports false if the queue is already closed.
func (q *Queue) Post(fn func()) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.items = append(q.items, fn)
	q.cond.Signal()
	return true
}

// Flush blocks until every callback posted before the call has run.
func (q *Queue) Flush() {
	done := make(chan struct{})
	if !q.Post(func() { close(done) }) {
		<-q.done
		return
	}
	<-done
}

// Close stops accepting callbacks, runs the ones already queued and waits
// for the delivery goroutine to exit.
func (q *Queue) Close() {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		q.cond.Signal()
	}
	q.mu.Unlock()
	<-q.done
}

func (q *Queue) run() {
	defer close(q.done)
	for {
		q.mu.Lock()
		for len(q.items) == 0 && !q.closed {
			q.cond.Wait()
		}
		if len(q.items) == 0 && q.closed {
			q.mu.Unlock()
			return
		}
		fn := q.items[0]
		q.items[0] = nil
		q.items = q.items[1:]
		q.mu.Unlock()

		fn()
	}
}
