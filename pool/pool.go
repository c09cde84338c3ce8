// Package pool provides a bounded free list of reusable records.
//
// A Pool hands out records with Acquire and takes them back with Release. Records that do not fit
// into the pool when released are dropped and left to the garbage collector. The pool never
// blocks and never fails: if it is empty, Acquire allocates.
//
// The pool is safe for concurrent use. Ownership is not tracked by the pool itself, a caller must
// not touch a record after releasing it.
package pool

import (
	"sync"
	"sync/atomic"
)

// DefaultCapacity is the capacity used by New if the capacity passed is not positive.
const DefaultCapacity = 50

// Pool is a bounded, synchronized free list of *T.
type Pool[T any] struct {
	mu   sync.Mutex
	free []*T
	cap  int

	hits, misses, drops atomic.Uint64
}

// New creates a pool that retains at most capacity released records.
func New[T any](capacity int) *Pool[T] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Pool[T]{
		free: make([]*T, 0, capacity),
		cap:  capacity,
	}
}

// Acquire returns a record from the pool, or a freshly allocated one if the pool is empty. The
// returned record still carries the fields it had when it was released; callers are expected to
// overwrite all of them.
func (p *Pool[T]) Acquire() *T {
	p.mu.Lock()
	n := len(p.free)
	if n == 0 {
		p.mu.Unlock()
		p.misses.Add(1)
		return new(T)
	}
	r := p.free[n-1]
	p.free[n-1] = nil
	p.free = p.free[:n-1]
	p.mu.Unlock()
	p.hits.Add(1)
	return r
}

// Release returns r to the pool. It reports whether r was retained; if the pool is full, r is
// dropped.
func (p *Pool[T]) Release(r *T) bool {
	if r == nil {
		return false
	}
	p.mu.Lock()
	if len(p.free) >= p.cap {
		p.mu.Unlock()
		p.drops.Add(1)
		return false
	}
	p.free = append(p.free, r)
	p.mu.Unlock()
	return true
}

// Len returns the number of records currently held by the pool.
func (p *Pool[T]) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.free)
}

// Cap returns the maximum number of records the pool retains.
func (p *Pool[T]) Cap() int { return p.cap }

// Stats is a snapshot of a pool's counters.
type Stats struct {
	Hits   uint64 // Acquire calls served from the pool
	Misses uint64 // Acquire calls that had to allocate
	Drops  uint64 // Release calls that found the pool full
}

// Stats returns the current counters of the pool.
func (p *Pool[T]) Stats() Stats {
	return Stats{
		Hits:   p.hits.Load(),
		Misses: p.misses.Load(),
		Drops:  p.drops.Load(),
	}
}
