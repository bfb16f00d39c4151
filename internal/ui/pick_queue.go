package ui

import (
	"context"
	"sync"
)

// pickQueueSize bounds picks waiting behind a slow preview
const pickQueueSize = 16

// pickQueue applies selection changes one at a time, in the order the user
// made them. Picks and drops do file I/O and preview work, so they run off
// the UI goroutine, but the store must still see them in user order.
type pickQueue struct {
	ctx   context.Context
	jobs  chan func()
	done  chan struct{}
	start sync.Once
}

func newPickQueue(ctx context.Context) *pickQueue {
	return &pickQueue{
		ctx:  ctx,
		jobs: make(chan func(), pickQueueSize),
		done: make(chan struct{}),
	}
}

// Enqueue schedules job after every previously enqueued one. It reports
// false once the queue's context is done.
func (q *pickQueue) Enqueue(job func()) bool {
	q.start.Do(func() { go q.run() })
	select {
	case <-q.ctx.Done():
		return false
	default:
	}
	select {
	case q.jobs <- job:
		return true
	case <-q.ctx.Done():
		return false
	}
}

// Done is closed when the worker has stopped
func (q *pickQueue) Done() <-chan struct{} {
	return q.done
}

func (q *pickQueue) run() {
	defer close(q.done)
	for {
		select {
		case <-q.ctx.Done():
			return
		case job := <-q.jobs:
			job()
		}
	}
}
