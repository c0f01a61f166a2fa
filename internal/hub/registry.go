package hub

import (
	"sync"
	"sync/atomic"
)

// allocator issues connection identifiers. Ids start at 1, strictly increase,
// and are never reused for the lifetime of the process.
type allocator struct {
	last atomic.Uint64
}

func (a *allocator) next() uint64 {
	return a.last.Add(1)
}

type entry struct {
	id    uint64
	queue *queue
}

// registry maps connection ids to their outbound queues. Membership defines
// "connected": an id is in the map exactly between connect and disconnect.
//
// The mutex guards map operations only and is never held across enqueues or
// transport writes. The map itself never escapes; iteration goes through
// snapshot copies.
type registry struct {
	mu      sync.Mutex
	entries map[uint64]*queue
}

func newRegistry() *registry {
	return &registry{entries: make(map[uint64]*queue)}
}

func (r *registry) insert(id uint64, q *queue) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[id] = q
}

// remove deletes the entry and returns its queue. Removing an absent id is a
// no-op reported through ok.
func (r *registry) remove(id uint64) (*queue, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	q, ok := r.entries[id]
	if ok {
		delete(r.entries, id)
	}
	return q, ok
}

// snapshot copies all entries under a single critical section.
func (r *registry) snapshot() []entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := make([]entry, 0, len(r.entries))
	for id, q := range r.entries {
		entries = append(entries, entry{id: id, queue: q})
	}
	return entries
}

func (r *registry) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
