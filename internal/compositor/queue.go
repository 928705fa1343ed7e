package compositor

import (
	"context"
	"errors"
)

// ErrQueueClosed is returned by Queue.Do after Close.
var ErrQueueClosed = errors.New("dispatch queue closed")

// Queue hands closures from other goroutines (IPC handlers, the reconciler)
// to the goroutine that owns the Server. The owner drains it with C or Drain.
type Queue struct {
	ch   chan func()
	done chan struct{}
}

// NewQueue creates a queue with room for size pending closures.
func NewQueue(size int) *Queue {
	if size < 0 {
		size = 0
	}
	return &Queue{
		ch:   make(chan func(), size),
		done: make(chan struct{}),
	}
}

// C returns the channel the owning goroutine receives closures from.
func (q *Queue) C() <-chan func() {
	return q.ch
}

// Do runs fn on the owning goroutine and waits for it to return.
func (q *Queue) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	wrapped := func() {
		defer close(finished)
		fn()
	}

	select {
	case q.ch <- wrapped:
	case <-q.done:
		return ErrQueueClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-finished:
		return nil
	case <-q.done:
		// Close drains before closing done, so fn either ran or never will.
		select {
		case <-finished:
			return nil
		default:
			return ErrQueueClosed
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Drain runs every closure currently pending without blocking.
func (q *Queue) Drain() int {
	n := 0
	for {
		select {
		case fn := <-q.ch:
			fn()
			n++
		default:
			return n
		}
	}
}

// Close runs what is still pending and rejects further work. It must be
// called from the owning goroutine, at most once.
func (q *Queue) Close() {
	q.Drain()
	close(q.done)
}
