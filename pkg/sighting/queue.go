package sighting

import "sync"

// Queue is an unbounded FIFO mailbox between a single producer (the
// capture adapter) and a single consumer (the persistence writer).
// Put never blocks; Get blocks until an item or the sentinel arrives.
//
// The sentinel is enqueued exactly once, by the session controller's
// shutdown path. Events enqueued after the sentinel are accepted but
// never consumed: the producer is detached and may still be running
// when shutdown begins.
type Queue struct {
	mu    sync.Mutex
	cond  *sync.Cond
	items []*Event // nil entry marks the sentinel
}

// NewQueue returns an empty queue.
func NewQueue() *Queue {
	q := &Queue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Put enqueues an event. It never blocks.
func (q *Queue) Put(ev *Event) {
	if ev == nil {
		return
	}
	q.mu.Lock()
	q.items = append(q.items, ev)
	q.mu.Unlock()
	q.cond.Signal()
}

// PutSentinel enqueues the shutdown sentinel. Callers must enqueue it at
// most once per queue.
func (q *Queue) PutSentinel() {
	q.mu.Lock()
	q.items = append(q.items, nil)
	q.mu.Unlock()
	q.cond.Signal()
}

// Get blocks until an item is available and dequeues it. It returns
// ok=false when the dequeued item is the sentinel; the consumer must not
// call Get again after that.
func (q *Queue) Get() (*Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) == 0 {
		q.cond.Wait()
	}
	ev := q.items[0]
	q.items = q.items[1:]
	if ev == nil {
		return nil, false
	}
	return ev, true
}

// Len reports the number of queued items, the sentinel included.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
