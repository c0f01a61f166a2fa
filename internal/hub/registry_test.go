package hub

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocatorStartsAtOne(t *testing.T) {
	var a allocator
	assert.Equal(t, uint64(1), a.next())
	assert.Equal(t, uint64(2), a.next())
}

func TestAllocatorConcurrentIdsAreDistinct(t *testing.T) {
	const goroutines = 50
	const perGoroutine = 200

	var a allocator
	results := make(chan uint64, goroutines*perGoroutine)

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			prev := uint64(0)
			for i := 0; i < perGoroutine; i++ {
				id := a.next()
				if id <= prev {
					t.Errorf("ids not increasing within goroutine: %d after %d", id, prev)
				}
				prev = id
				results <- id
			}
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[uint64]bool, goroutines*perGoroutine)
	for id := range results {
		require.False(t, seen[id], "id %d issued twice", id)
		seen[id] = true
	}
	assert.Len(t, seen, goroutines*perGoroutine)
}

func TestRegistryInsertRemove(t *testing.T) {
	r := newRegistry()
	assert.Equal(t, 0, r.size())

	q1 := newQueue()
	q2 := newQueue()
	r.insert(1, q1)
	r.insert(2, q2)
	assert.Equal(t, 2, r.size())

	got, ok := r.remove(1)
	require.True(t, ok)
	assert.Same(t, q1, got)
	assert.Equal(t, 1, r.size())

	// Removing an absent id is a no-op.
	_, ok = r.remove(1)
	assert.False(t, ok)
	assert.Equal(t, 1, r.size())
}

func TestRegistrySnapshotIsACopy(t *testing.T) {
	r := newRegistry()
	r.insert(1, newQueue())
	r.insert(2, newQueue())

	snap := r.snapshot()
	require.Len(t, snap, 2)

	r.remove(1)
	r.remove(2)

	// The earlier snapshot still holds both entries.
	assert.Len(t, snap, 2)
	assert.Equal(t, 0, r.size())
}

func TestRegistryConcurrentChurn(t *testing.T) {
	r := newRegistry()
	var a allocator

	var wg sync.WaitGroup
	for g := 0; g < 10; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				id := a.next()
				r.insert(id, newQueue())
				r.snapshot()
				r.remove(id)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, r.size())
}
