package controller

import "sync"

// DefaultQueueCapacity is the bounded command queue size (spec section 5,
// "device command queues are bounded (256)").
const DefaultQueueCapacity = 256

// commandQueue is a FIFO of queuedCommand with the spec's backpressure
// policy: when full, a non-stop arrival evicts the oldest non-stop command
// already queued for the *same* feature, making room without disturbing
// other features' pending work. If no such entry exists, the arrival is
// appended anyway, so the queue can grow past capacity. Stop commands are
// always appended, even past capacity, since they must never be dropped.
//
// A plain mutex-guarded slice is used rather than a ring-buffer library:
// the eviction rule needs a scan-and-remove-by-predicate operation (oldest
// non-stop entry for a given feature index), which no ring buffer in the
// pack (hedzr/go-ringbuf, smallnest/ringbuffer) exposes — both are
// FIFO-or-overwrite-oldest-unconditionally primitives. hedzr/go-ringbuf is
// used instead for the simpler overwrite-oldest semantics of the input
// subscription sinks (see subscription.go), which is the shape it's built for.
type commandQueue struct {
	mu       sync.Mutex
	items    []queuedCommand
	capacity int
}

func newCommandQueue(capacity int) *commandQueue {
	if capacity <= 0 {
		capacity = DefaultQueueCapacity
	}
	return &commandQueue{capacity: capacity}
}

// enqueue adds item, applying the eviction policy if the queue is full.
func (q *commandQueue) enqueue(item queuedCommand) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) >= q.capacity && !item.isStop {
		for i, existing := range q.items {
			if !existing.isStop && existing.cmd.FeatureIndex == item.cmd.FeatureIndex {
				if existing.result != nil {
					existing.result <- errQueueOverflow
				}
				q.items = append(q.items[:i], q.items[i+1:]...)
				break
			}
		}
	}
	q.items = append(q.items, item)
}

// dequeueAll drains every item currently queued, in FIFO order.
func (q *commandQueue) dequeueAll() []queuedCommand {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}

func (q *commandQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
