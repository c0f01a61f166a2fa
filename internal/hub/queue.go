package hub

import "sync"

// queue is the outbound buffer for one connection: FIFO, unbounded, safe for
// many producers and a single consumer (that connection's pump).
//
// Enqueue never blocks and fails only after Close. Dequeue keeps returning
// buffered items after Close until the queue is drained, then reports done.
type queue struct {
	mu       sync.Mutex
	items    [][]byte
	head     int
	closed   bool
	notEmpty chan struct{}
}

func newQueue() *queue {
	return &queue{notEmpty: make(chan struct{})}
}

// enqueue appends msg and reports whether the queue still accepts items.
func (q *queue) enqueue(msg []byte) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.items = append(q.items, msg)
	if len(q.items)-q.head == 1 {
		close(q.notEmpty)
		q.notEmpty = make(chan struct{})
	}
	return true
}

// dequeue blocks until an item is available or the queue is closed and drained.
// The second return value is false once no further item will ever arrive.
func (q *queue) dequeue() ([]byte, bool) {
	for {
		q.mu.Lock()
		if q.head < len(q.items) {
			msg := q.items[q.head]
			q.items[q.head] = nil
			q.head++
			if q.head == len(q.items) {
				q.items = q.items[:0]
				q.head = 0
			}
			q.mu.Unlock()
			return msg, true
		}
		if q.closed {
			q.mu.Unlock()
			return nil, false
		}
		wait := q.notEmpty
		q.mu.Unlock()
		<-wait
	}
}

// close stops the queue from accepting items and wakes a blocked dequeue.
// Idempotent.
func (q *queue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.notEmpty)
}

// size returns the number of buffered, not yet dequeued items.
func (q *queue) size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items) - q.head
}
