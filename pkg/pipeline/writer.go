// Package pipeline contains the persistence writer that drains the
// sighting queue into the durable log.
package pipeline

import (
	"context"
	"fmt"

	"github.com/owlmon/owl/pkg/sighting"
	"github.com/owlmon/owl/pkg/storage"
)

// Writer is the single persistence worker. It runs for the full session
// lifetime and terminates when it observes the queue sentinel.
type Writer struct {
	queue *sighting.Queue
	store *storage.Store
	done  chan struct{}
}

// NewWriter binds a writer to its queue and store.
func NewWriter(queue *sighting.Queue, store *storage.Store) *Writer {
	return &Writer{
		queue: queue,
		store: store,
		done:  make(chan struct{}),
	}
}

// Run appends one durable log entry per dequeued event, in enqueue
// order, committing each insert individually. Announcement rates are low
// enough that per-event durability beats batching throughput. A failed
// write is fatal to the writer; there are no retries.
func (w *Writer) Run(ctx context.Context) error {
	defer close(w.done)
	for {
		ev, ok := w.queue.Get()
		if !ok {
			return nil
		}
		if err := w.store.Append(ctx, ev.ObservedAt.Unix(), ev.SourceIP, ev.HostName); err != nil {
			return fmt.Errorf("failed to append sighting of %s: %w", ev.HostName, err)
		}
	}
}

// Done is closed when the writer has exited, whether by draining to the
// sentinel or by a fatal storage fault. The session controller blocks on
// it during shutdown.
func (w *Writer) Done() <-chan struct{} {
	return w.done
}
